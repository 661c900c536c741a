package storer

import (
	"errors"
	"io"

	"github.com/vcslab/gitkit/plumbing"
)

// ErrStop is used to stop a ForEach function in an Iter.
var ErrStop = errors.New("stop iter")

// EncodedObjectStorer generic storage of objects.
type EncodedObjectStorer interface {
	// NewEncodedObject returns a new EncodedObject, the real type of the
	// object can be a custom implementation or the default one,
	// plumbing.MemoryObject.
	NewEncodedObject() plumbing.EncodedObject
	// SetEncodedObject saves an object into the storage, the object should
	// be create with the NewEncodedObject, method, and file if the type is
	// not supported.
	SetEncodedObject(plumbing.EncodedObject) (plumbing.Hash, error)
	// EncodedObject gets an object by hash with the given
	// plumbing.ObjectType. Implementors should return
	// (nil, plumbing.ErrObjectNotFound) if an object cannot be found.
	EncodedObject(plumbing.ObjectType, plumbing.Hash) (plumbing.EncodedObject, error)
	// IterEncodedObjects returns an iterator for all the objects in the
	// storage with the given plumbing.ObjectType. The iterator returned
	// should be closed on completion.
	IterEncodedObjects(plumbing.ObjectType) (EncodedObjectIter, error)
	// HasEncodedObject returns plumbing.ErrObjectNotFound if the object doesn't
	// exist. If the object exists, it returns nil.
	HasEncodedObject(plumbing.Hash) error
	// EncodedObjectSize returns the plaintext size of the encoded object.
	EncodedObjectSize(plumbing.Hash) (int64, error)
}

// EncodedObjectIter is a generic closable interface for iterating over
// objects.
type EncodedObjectIter interface {
	Next() (plumbing.EncodedObject, error)
	ForEach(func(plumbing.EncodedObject) error) error
	Close()
}

// EncodedObjectLookupIter implements EncodedObjectIter. It iterates over a
// series of hashes and yields their associated objects by retrieving each
// one from a given EncodedObjectStorer.
type EncodedObjectLookupIter struct {
	storer EncodedObjectStorer
	t      plumbing.ObjectType
	series []plumbing.Hash
	pos    int
}

// NewEncodedObjectLookupIter returns an object iterator given an
// EncodedObjectStorer and a slice of object hashes.
func NewEncodedObjectLookupIter(
	storer EncodedObjectStorer, t plumbing.ObjectType, series []plumbing.Hash,
) *EncodedObjectLookupIter {
	return &EncodedObjectLookupIter{storer: storer, t: t, series: series}
}

// Next returns the next object from the iterator. If the iterator has
// reached the end it will return io.EOF as an error.
func (iter *EncodedObjectLookupIter) Next() (plumbing.EncodedObject, error) {
	if iter.pos >= len(iter.series) {
		return nil, io.EOF
	}

	obj, err := iter.storer.EncodedObject(iter.t, iter.series[iter.pos])
	if err != nil {
		return nil, err
	}

	iter.pos++
	return obj, nil
}

// ForEach call the cb function for each object contained in this iter until
// an error happens or the end of the iter is reached. If ErrStop is sent
// the iteration is stopped but no error is returned.
func (iter *EncodedObjectLookupIter) ForEach(cb func(plumbing.EncodedObject) error) error {
	return forEachObject(iter, cb)
}

// Close releases any resources used by the iterator.
func (iter *EncodedObjectLookupIter) Close() {
	iter.pos = len(iter.series)
}

// EncodedObjectSliceIter implements EncodedObjectIter over a slice of
// already-loaded objects.
type EncodedObjectSliceIter struct {
	series []plumbing.EncodedObject
}

// NewEncodedObjectSliceIter returns an object iterator for the given slice
// of objects.
func NewEncodedObjectSliceIter(series []plumbing.EncodedObject) *EncodedObjectSliceIter {
	return &EncodedObjectSliceIter{series: series}
}

func (iter *EncodedObjectSliceIter) Next() (plumbing.EncodedObject, error) {
	if len(iter.series) == 0 {
		return nil, io.EOF
	}

	obj := iter.series[0]
	iter.series = iter.series[1:]
	return obj, nil
}

func (iter *EncodedObjectSliceIter) ForEach(cb func(plumbing.EncodedObject) error) error {
	return forEachObject(iter, cb)
}

func (iter *EncodedObjectSliceIter) Close() {
	iter.series = nil
}

func forEachObject(iter EncodedObjectIter, cb func(plumbing.EncodedObject) error) error {
	for {
		obj, err := iter.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if err := cb(obj); err != nil {
			if err == ErrStop {
				return nil
			}
			return err
		}
	}
}
