package object

import (
	"bufio"
	"io"

	"github.com/vcslab/gitkit/plumbing"
	"github.com/vcslab/gitkit/plumbing/filemode"
	"github.com/vcslab/gitkit/plumbing/storer"
)

// File represents a file tracked at a particular path in a tree, pairing
// the path it was found at with the blob holding its content.
type File struct {
	// Name is the path of the file, as found when walking the tree that
	// produced it (slash-separated, relative to the tree root).
	Name string
	// Mode is the file mode.
	Mode filemode.FileMode
	// Hash is the hash of the blob.
	Hash plumbing.Hash

	blob *Blob
}

// NewFile returns a File representing the given blob at path, with mode.
func NewFile(path string, m filemode.FileMode, b *Blob) *File {
	return &File{Name: path, Mode: m, Hash: b.Hash, blob: b}
}

// Reader returns a reader for the file's content.
func (f *File) Reader() (io.ReadCloser, error) {
	return f.blob.Reader()
}

// Contents returns the contents of a file as a string.
func (f *File) Contents() (string, error) {
	r, err := f.Reader()
	if err != nil {
		return "", err
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// IsBinary returns whether the file is binary by checking for null bytes
// at the start of the content.
func (f *File) IsBinary() (bool, error) {
	reader, err := f.Reader()
	if err != nil {
		return false, err
	}
	defer reader.Close()

	return isBinary(reader)
}

func isBinary(r io.Reader) (bool, error) {
	buf := make([]byte, 8000)
	n, err := io.ReadFull(bufio.NewReader(r), buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, err
	}

	for i := 0; i < n; i++ {
		if buf[i] == 0 {
			return true, nil
		}
	}

	return false, nil
}

// FileIter provides an iterator for the files in a tree, recursing into
// subtrees and yielding only blobs (no directory entries).
type FileIter struct {
	s     storer.EncodedObjectStorer
	stack []fileIterFrame
}

type fileIterFrame struct {
	base    string
	tree    *Tree
	pos     int
	subiter *FileIter
}

// NewFileIter returns a FileIter for all the files in t, recursively.
func NewFileIter(s storer.EncodedObjectStorer, t *Tree) *FileIter {
	return &FileIter{s: s, stack: []fileIterFrame{{tree: t}}}
}

// Next returns the next file, wrapped in io.EOF when exhausted.
func (iter *FileIter) Next() (*File, error) {
	for len(iter.stack) > 0 {
		top := &iter.stack[len(iter.stack)-1]

		if top.subiter != nil {
			f, err := top.subiter.Next()
			if err == io.EOF {
				top.subiter = nil
				continue
			}
			if err != nil {
				return nil, err
			}
			return f, nil
		}

		if top.pos >= len(top.tree.Entries) {
			iter.stack = iter.stack[:len(iter.stack)-1]
			continue
		}

		e := top.tree.Entries[top.pos]
		top.pos++

		name := e.Name
		if top.base != "" {
			name = top.base + "/" + name
		}

		if e.Mode == filemode.Dir {
			sub, err := GetTree(iter.s, e.Hash)
			if err != nil {
				return nil, err
			}

			top.subiter = NewFileIter(iter.s, sub)
			top.subiter.stack[0].base = name
			continue
		}

		if e.Mode == filemode.Submodule {
			continue
		}

		blob, err := GetBlob(iter.s, e.Hash)
		if err != nil {
			return nil, err
		}

		return NewFile(name, e.Mode, blob), nil
	}

	return nil, io.EOF
}

// ForEach calls cb for every file in the iterator.
func (iter *FileIter) ForEach(cb func(*File) error) error {
	for {
		f, err := iter.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if err := cb(f); err != nil {
			if err == storer.ErrStop {
				return nil
			}
			return err
		}
	}
}

// Close releases the resources used by the iterator.
func (iter *FileIter) Close() {
	iter.stack = nil
}
