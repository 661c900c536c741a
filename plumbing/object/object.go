// Package object implements the decoded form of the four git object types:
// blob, tree, commit and tag, plus the iterators and walkers used to
// traverse them.
package object

import (
	"errors"

	"github.com/vcslab/gitkit/plumbing"
	"github.com/vcslab/gitkit/plumbing/storer"
)

// ErrUnsupportedObject is returned when a decoded object has an object type
// this package does not know how to turn into a concrete Go type.
var ErrUnsupportedObject = errors.New("unsupported object type")

// Object is the common interface implemented by Commit, Tree, Blob and Tag.
type Object interface {
	ID() plumbing.Hash
	Type() plumbing.ObjectType
	Decode(plumbing.EncodedObject) error
	Encode(plumbing.EncodedObject) error
}

// GetObject gets an object from an object storer and decodes it.
func GetObject(s storer.EncodedObjectStorer, h plumbing.Hash) (Object, error) {
	o, err := s.EncodedObject(plumbing.AnyObject, h)
	if err != nil {
		return nil, err
	}

	return DecodeObject(s, o)
}

// DecodeObject decodes an encoded object into a Commit, Tree, Blob or Tag.
func DecodeObject(s storer.EncodedObjectStorer, o plumbing.EncodedObject) (Object, error) {
	switch o.Type() {
	case plumbing.CommitObject:
		c := &Commit{s: s}
		if err := c.Decode(o); err != nil {
			return nil, err
		}
		return c, nil
	case plumbing.TreeObject:
		t := &Tree{s: s}
		if err := t.Decode(o); err != nil {
			return nil, err
		}
		return t, nil
	case plumbing.BlobObject:
		b := &Blob{}
		if err := b.Decode(o); err != nil {
			return nil, err
		}
		return b, nil
	case plumbing.TagObject:
		t := &Tag{s: s}
		if err := t.Decode(o); err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, plumbing.ErrInvalidType
	}
}

// GetCommit gets and decodes a commit from an object storer.
func GetCommit(s storer.EncodedObjectStorer, h plumbing.Hash) (*Commit, error) {
	o, err := s.EncodedObject(plumbing.CommitObject, h)
	if err != nil {
		return nil, err
	}

	c := &Commit{s: s}
	return c, c.Decode(o)
}

// GetTree gets and decodes a tree from an object storer.
func GetTree(s storer.EncodedObjectStorer, h plumbing.Hash) (*Tree, error) {
	o, err := s.EncodedObject(plumbing.TreeObject, h)
	if err != nil {
		return nil, err
	}

	t := &Tree{s: s}
	return t, t.Decode(o)
}

// GetBlob gets and decodes a blob from an object storer.
func GetBlob(s storer.EncodedObjectStorer, h plumbing.Hash) (*Blob, error) {
	o, err := s.EncodedObject(plumbing.BlobObject, h)
	if err != nil {
		return nil, err
	}

	b := &Blob{}
	return b, b.Decode(o)
}

// GetTag gets and decodes a tag from an object storer.
func GetTag(s storer.EncodedObjectStorer, h plumbing.Hash) (*Tag, error) {
	o, err := s.EncodedObject(plumbing.TagObject, h)
	if err != nil {
		return nil, err
	}

	t := &Tag{s: s}
	return t, t.Decode(o)
}
