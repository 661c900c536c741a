package object

import (
	"io"

	"github.com/vcslab/gitkit/plumbing"
)

// Blob is used to store arbitrary content in the repository, most commonly
// file contents.
type Blob struct {
	Hash plumbing.Hash
	Size int64

	obj plumbing.EncodedObject
}

// ID returns the object hash of the blob.
func (b *Blob) ID() plumbing.Hash {
	return b.Hash
}

// Type returns the type of object.
func (b *Blob) Type() plumbing.ObjectType {
	return plumbing.BlobObject
}

// Decode transforms a plumbing.EncodedObject into a Blob struct.
func (b *Blob) Decode(o plumbing.EncodedObject) error {
	if o.Type() != plumbing.BlobObject {
		return plumbing.ErrInvalidType
	}

	b.Hash = o.Hash()
	b.Size = o.Size()
	b.obj = o

	return nil
}

// Encode transforms a Blob into a plumbing.EncodedObject.
func (b *Blob) Encode(o plumbing.EncodedObject) error {
	o.SetType(plumbing.BlobObject)

	w, err := o.Writer()
	if err != nil {
		return err
	}
	defer w.Close()

	r, err := b.Reader()
	if err != nil {
		return err
	}
	defer r.Close()

	_, err = io.Copy(w, r)
	return err
}

// Reader returns a reader allowing the access to the content of the blob.
func (b *Blob) Reader() (io.ReadCloser, error) {
	return b.obj.Reader()
}

// WriteBlob reads content from r and stores it as a new blob object in s,
// returning the resulting hash.
func WriteBlob(s interface {
	NewEncodedObject() plumbing.EncodedObject
	SetEncodedObject(plumbing.EncodedObject) (plumbing.Hash, error)
}, size int64, r io.Reader) (plumbing.Hash, error) {
	o := s.NewEncodedObject()
	o.SetType(plumbing.BlobObject)
	o.SetSize(size)

	w, err := o.Writer()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return plumbing.ZeroHash, err
	}

	if err := w.Close(); err != nil {
		return plumbing.ZeroHash, err
	}

	return s.SetEncodedObject(o)
}
