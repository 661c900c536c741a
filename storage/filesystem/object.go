package filesystem

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-git/go-billy/v5"

	"github.com/vcslab/gitkit/plumbing"
	"github.com/vcslab/gitkit/plumbing/storer"
)

// ObjectStorage stores git objects as loose objects under objects/xx/yyyy...,
// zlib-deflated, in the classic on-disk format: "<type> <size>\0<content>".
// Packfiles are out of scope; every object written through this storage
// stays loose.
type ObjectStorage struct {
	fs billy.Filesystem
}

func newObjectStorage(fs billy.Filesystem) ObjectStorage {
	return ObjectStorage{fs: fs}
}

func (s *ObjectStorage) objectPath(h plumbing.Hash) string {
	hex := h.String()
	return s.fs.Join("objects", hex[:2], hex[2:])
}

func (s *ObjectStorage) NewEncodedObject() plumbing.EncodedObject {
	return &plumbing.MemoryObject{}
}

// SetEncodedObject writes o to disk as a loose object and returns its hash.
func (s *ObjectStorage) SetEncodedObject(o plumbing.EncodedObject) (plumbing.Hash, error) {
	if o.Type() == plumbing.OFSDeltaObject || o.Type() == plumbing.REFDeltaObject {
		return plumbing.ZeroHash, plumbing.ErrInvalidType
	}

	h := o.Hash()
	path := s.objectPath(h)
	if _, err := s.fs.Stat(path); err == nil {
		return h, nil
	}

	r, err := o.Reader()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	defer r.Close()

	content, err := io.ReadAll(r)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	fmt.Fprintf(zw, "%s %d\x00", o.Type(), len(content))
	if _, err := zw.Write(content); err != nil {
		return plumbing.ZeroHash, err
	}
	if err := zw.Close(); err != nil {
		return plumbing.ZeroHash, err
	}

	if err := s.fs.MkdirAll(s.fs.Join("objects", h.String()[:2]), 0o755); err != nil {
		return plumbing.ZeroHash, err
	}

	tmp, err := s.fs.TempFile(s.fs.Join("objects"), "tmp_obj_")
	if err != nil {
		return plumbing.ZeroHash, err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return plumbing.ZeroHash, err
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return plumbing.ZeroHash, err
	}

	if err := s.fs.Rename(tmpName, path); err != nil {
		return plumbing.ZeroHash, err
	}

	return h, nil
}

func (s *ObjectStorage) readLoose(h plumbing.Hash) (plumbing.ObjectType, []byte, error) {
	f, err := s.fs.Open(s.objectPath(h))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil, plumbing.ErrObjectNotFound
		}
		return 0, nil, err
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return 0, nil, err
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return 0, nil, err
	}

	nul := bytes.IndexByte(raw, 0)
	if nul < 0 {
		return 0, nil, fmt.Errorf("malformed loose object %s: missing header terminator", h)
	}

	header := raw[:nul]
	sp := bytes.IndexByte(header, ' ')
	if sp < 0 {
		return 0, nil, fmt.Errorf("malformed loose object %s: missing type/size separator", h)
	}

	t, err := plumbing.ParseObjectType(string(header[:sp]))
	if err != nil {
		return 0, nil, err
	}

	size, err := strconv.ParseInt(string(header[sp+1:]), 10, 64)
	if err != nil {
		return 0, nil, err
	}

	content := raw[nul+1:]
	if int64(len(content)) != size {
		return 0, nil, fmt.Errorf("malformed loose object %s: size mismatch", h)
	}

	return t, content, nil
}

// HasEncodedObject returns nil if the object exists.
func (s *ObjectStorage) HasEncodedObject(h plumbing.Hash) error {
	if _, err := s.fs.Stat(s.objectPath(h)); err != nil {
		if os.IsNotExist(err) {
			return plumbing.ErrObjectNotFound
		}
		return err
	}
	return nil
}

// EncodedObjectSize returns the plaintext size of the object.
func (s *ObjectStorage) EncodedObjectSize(h plumbing.Hash) (int64, error) {
	_, content, err := s.readLoose(h)
	if err != nil {
		return 0, err
	}
	return int64(len(content)), nil
}

// EncodedObject returns the object with the given hash.
func (s *ObjectStorage) EncodedObject(t plumbing.ObjectType, h plumbing.Hash) (plumbing.EncodedObject, error) {
	ot, content, err := s.readLoose(h)
	if err != nil {
		return nil, err
	}

	if t != plumbing.AnyObject && t != ot {
		return nil, plumbing.ErrObjectNotFound
	}

	obj := &plumbing.MemoryObject{}
	obj.SetType(ot)
	if _, err := obj.Write(content); err != nil {
		return nil, err
	}

	return obj, nil
}

// IterEncodedObjects returns an iterator over every loose object of the
// given type (or every object, for plumbing.AnyObject).
func (s *ObjectStorage) IterEncodedObjects(t plumbing.ObjectType) (storer.EncodedObjectIter, error) {
	hashes, err := s.hashes()
	if err != nil {
		return nil, err
	}

	var objs []plumbing.EncodedObject
	for _, h := range hashes {
		obj, err := s.EncodedObject(t, h)
		if err == plumbing.ErrObjectNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		objs = append(objs, obj)
	}

	return storer.NewEncodedObjectSliceIter(objs), nil
}

func (s *ObjectStorage) hashes() ([]plumbing.Hash, error) {
	top, err := s.fs.ReadDir("objects")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var hashes []plumbing.Hash
	for _, d := range top {
		if !d.IsDir() || len(d.Name()) != 2 {
			continue
		}

		entries, err := s.fs.ReadDir(s.fs.Join("objects", d.Name()))
		if err != nil {
			return nil, err
		}

		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			hashes = append(hashes, plumbing.NewHash(d.Name()+e.Name()))
		}
	}

	return hashes, nil
}
