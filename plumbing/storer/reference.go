package storer

import (
	"errors"
	"io"

	"github.com/vcslab/gitkit/plumbing"
)

// ReferenceStorer is a generic storage of references.
type ReferenceStorer interface {
	SetReference(*plumbing.Reference) error
	// CheckAndSetReference sets the reference `new`, only if the reference
	// `old` is pointing to the same object as the stored reference pointed
	// to when `old` was resolved. If `old` is nil the reference always
	// sets.
	CheckAndSetReference(new, old *plumbing.Reference) error
	Reference(plumbing.ReferenceName) (*plumbing.Reference, error)
	IterReferences() (ReferenceIter, error)
	RemoveReference(plumbing.ReferenceName) error
	CountLooseRefs() (int, error)
}

// ReferenceIter is a generic closable interface for iterating over
// references.
type ReferenceIter interface {
	Next() (*plumbing.Reference, error)
	ForEach(func(*plumbing.Reference) error) error
	Close()
}

// ReferenceSliceIter implements ReferenceIter for a slice of references.
type ReferenceSliceIter struct {
	series []*plumbing.Reference
	pos    int
}

// NewReferenceSliceIter returns a reference iterator for the given slice of
// objects.
func NewReferenceSliceIter(series []*plumbing.Reference) ReferenceIter {
	return &ReferenceSliceIter{series: series}
}

// Next returns the next reference from the iterator. If the iterator has
// reached the end it will return io.EOF as an error.
func (iter *ReferenceSliceIter) Next() (*plumbing.Reference, error) {
	if iter.pos >= len(iter.series) {
		return nil, io.EOF
	}

	obj := iter.series[iter.pos]
	iter.pos++
	return obj, nil
}

// ForEach call the cb function for each reference contained in this iter
// until an error happens or the end of the iter is reached. If ErrStop is
// sent the iteration is stopped but no error is returned.
func (iter *ReferenceSliceIter) ForEach(cb func(*plumbing.Reference) error) error {
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

// Close releases any resources used by the iterator.
func (iter *ReferenceSliceIter) Close() {
	iter.pos = len(iter.series)
}

// ReferenceFilteredIter filters the given ReferenceIter with the given
// filter function.
type ReferenceFilteredIter struct {
	ff   func(r *plumbing.Reference) bool
	iter ReferenceIter
}

// NewReferenceFilteredIter returns a reference iterator for the given
// reference iterator, filtered by the given filter function.
func NewReferenceFilteredIter(
	ff func(r *plumbing.Reference) bool, iter ReferenceIter) ReferenceIter {
	return &ReferenceFilteredIter{ff, iter}
}

func (iter *ReferenceFilteredIter) Next() (*plumbing.Reference, error) {
	for {
		r, err := iter.iter.Next()
		if err != nil {
			return nil, err
		}

		if iter.ff(r) {
			return r, nil
		}

		continue
	}
}

func (iter *ReferenceFilteredIter) ForEach(cb func(*plumbing.Reference) error) error {
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

func (iter *ReferenceFilteredIter) Close() {
	iter.iter.Close()
}

// maxResolveRecursion is the max number of recursive calls ResolveReference
// will make before giving up, guarding against reference cycles.
const maxResolveRecursion = 1024

// ErrMaxResolveRecursion is returned by ResolveReference when a symbolic
// reference chain is not resolved after maxResolveRecursion jumps,
// usually meaning there is a cycle.
var ErrMaxResolveRecursion = errors.New("max. recursion level reached")

// ResolveReference resolves a SymbolicReference to a HashReference,
// following as many symbolic jumps as needed.
func ResolveReference(s ReferenceStorer, n plumbing.ReferenceName) (*plumbing.Reference, error) {
	r, err := s.Reference(n)
	if err != nil || r == nil {
		return r, err
	}

	return resolveReference(s, r, 0)
}

func resolveReference(s ReferenceStorer, r *plumbing.Reference, recursion int) (*plumbing.Reference, error) {
	if r.Type() != plumbing.SymbolicReference {
		return r, nil
	}

	if recursion > maxResolveRecursion {
		return nil, ErrMaxResolveRecursion
	}

	t, err := s.Reference(r.Target())
	if err != nil {
		return nil, err
	}

	recursion++
	return resolveReference(s, t, recursion)
}
