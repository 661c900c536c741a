package object

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/vcslab/gitkit/plumbing"
	"github.com/vcslab/gitkit/plumbing/filemode"
	"github.com/vcslab/gitkit/plumbing/storer"
)

// ErrEntryNotFound is returned when a tree entry is not found.
var ErrEntryNotFound = errors.New("entry not found")

// ErrDirectoryNotFound is returned when a directory is not found.
var ErrDirectoryNotFound = errors.New("directory not found")

// ErrFileNotFound is returned when a file is not found.
var ErrFileNotFound = errors.New("file not found")

// ErrMaxTreeDepth is returned when the maximum tree depth is exceeded.
var ErrMaxTreeDepth = errors.New("maximum tree depth exceeded")

// MaxTreeDepth is the maximum depth tree path lookups will recurse before
// giving up, as a guard against cyclic or pathological input.
const MaxTreeDepth = 1024

// TreeEntry represents a node (blob, tree, submodule or symlink) inside
// a Tree.
type TreeEntry struct {
	Name string
	Mode filemode.FileMode
	Hash plumbing.Hash
}

// Tree is a collection of entries, each of which points to a blob or
// another tree, forming the hierarchical structure of a snapshot.
type Tree struct {
	Entries []TreeEntry
	Hash    plumbing.Hash

	s storer.EncodedObjectStorer
	m map[string]*TreeEntry
}

// ID returns the object hash of the tree.
func (t *Tree) ID() plumbing.Hash {
	return t.Hash
}

// Type returns the type of object.
func (t *Tree) Type() plumbing.ObjectType {
	return plumbing.TreeObject
}

// File returns the file identified by the `path` argument.
// The path is interpreted as relative to the root of the tree.
func (t *Tree) File(path string) (*File, error) {
	e, err := t.FindEntry(path)
	if err != nil {
		return nil, ErrFileNotFound
	}

	blob, err := GetBlob(t.s, e.Hash)
	if err != nil {
		if err == plumbing.ErrObjectNotFound {
			return nil, ErrFileNotFound
		}
		return nil, err
	}

	return NewFile(path, e.Mode, blob), nil
}

// Tree returns the tree identified by the `path` argument. The path is
// interpreted as relative to the root of the tree.
func (t *Tree) Tree(path string) (*Tree, error) {
	e, err := t.FindEntry(path)
	if err != nil {
		return nil, ErrDirectoryNotFound
	}

	tree, err := GetTree(t.s, e.Hash)
	if err != nil {
		if err == plumbing.ErrObjectNotFound {
			return nil, ErrDirectoryNotFound
		}
		return nil, err
	}

	return tree, nil
}

// FindEntry searches for an entry at the given path, which can traverse
// several levels of subtrees using "/" as the separator.
func (t *Tree) FindEntry(p string) (*TreeEntry, error) {
	p = path.Clean(p)

	pathParts := strings.Split(p, "/")
	current := t

	var depth int
	for {
		depth++
		if depth > MaxTreeDepth {
			return nil, ErrMaxTreeDepth
		}

		if len(pathParts) == 0 {
			return nil, ErrEntryNotFound
		}

		if len(pathParts) == 1 {
			return current.entry(pathParts[0])
		}

		e, err := current.entry(pathParts[0])
		if err != nil {
			return nil, ErrEntryNotFound
		}

		current, err = GetTree(current.s, e.Hash)
		if err != nil {
			return nil, err
		}

		pathParts = pathParts[1:]
	}
}

func (t *Tree) entry(name string) (*TreeEntry, error) {
	if t.m == nil {
		t.buildMap()
	}

	e, ok := t.m[name]
	if !ok {
		return nil, ErrEntryNotFound
	}

	return e, nil
}

func (t *Tree) buildMap() {
	t.m = make(map[string]*TreeEntry, len(t.Entries))
	for i := range t.Entries {
		t.m[t.Entries[i].Name] = &t.Entries[i]
	}
}

// Files returns a FileIter allowing to iterate over the Tree, recursively,
// yielding every blob reachable from it.
func (t *Tree) Files() *FileIter {
	return NewFileIter(t.s, t)
}

// Walk calls cb for every entry reachable from the tree, recursing into
// subtrees and prefixing each name with its path from the root.
func (t *Tree) Walk(cb func(name string, entry TreeEntry) error) error {
	return t.walk("", cb)
}

func (t *Tree) walk(base string, cb func(name string, entry TreeEntry) error) error {
	for _, e := range t.Entries {
		name := e.Name
		if base != "" {
			name = base + "/" + name
		}

		if err := cb(name, e); err != nil {
			return err
		}

		if e.Mode == filemode.Dir {
			sub, err := GetTree(t.s, e.Hash)
			if err != nil {
				return err
			}

			if err := sub.walk(name, cb); err != nil {
				return err
			}
		}
	}

	return nil
}

// Decode transforms a plumbing.EncodedObject into a Tree struct.
func (t *Tree) Decode(o plumbing.EncodedObject) error {
	if o.Type() != plumbing.TreeObject {
		return plumbing.ErrInvalidType
	}

	t.Hash = o.Hash()
	t.Entries = nil
	t.m = nil

	r, err := o.Reader()
	if err != nil {
		return err
	}
	defer r.Close()

	reader := bufio.NewReader(r)
	for {
		mode, err := reader.ReadString(' ')
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		mode = strings.TrimSuffix(mode, " ")

		name, err := reader.ReadString(0)
		if err != nil {
			return err
		}
		name = strings.TrimSuffix(name, "\x00")

		var h plumbing.Hash
		if _, err := io.ReadFull(reader, h[:]); err != nil {
			return err
		}

		fm, err := filemode.New(mode)
		if err != nil {
			return fmt.Errorf("malformed tree entry %q: %w", name, err)
		}

		t.Entries = append(t.Entries, TreeEntry{Name: name, Mode: fm, Hash: h})
	}

	return nil
}

// Encode transforms a Tree into a plumbing.EncodedObject. Entries are
// written in canonical git tree order (byte-wise, directories sorted as if
// their name carried a trailing "/"), whatever the order of t.Entries.
func (t *Tree) Encode(o plumbing.EncodedObject) error {
	o.SetType(plumbing.TreeObject)

	w, err := o.Writer()
	if err != nil {
		return err
	}
	defer w.Close()

	entries := make([]TreeEntry, len(t.Entries))
	copy(entries, t.Entries)
	sort.Slice(entries, func(i, j int) bool {
		return treeEntryLess(entries[i], entries[j])
	})

	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%o %s\x00", uint32(e.Mode), e.Name); err != nil {
			return err
		}
		if _, err := w.Write(e.Hash[:]); err != nil {
			return err
		}
	}

	return nil
}

func treeEntryLess(a, b TreeEntry) bool {
	an, bn := a.Name, b.Name
	if a.Mode == filemode.Dir {
		an += "/"
	}
	if b.Mode == filemode.Dir {
		bn += "/"
	}

	return an < bn
}
