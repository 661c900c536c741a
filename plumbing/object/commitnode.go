package object

import (
	"errors"
	"io"
	"time"

	"github.com/vcslab/gitkit/plumbing"
	"github.com/vcslab/gitkit/plumbing/storer"
)

// ErrParentNotFound is returned when a requested parent index does not
// exist on a commit.
var ErrParentNotFound = errors.New("commit parent not found")

// CommitNode is a generic interface encapsulating a Commit object for
// history-walking purposes, independent of how the underlying commit was
// loaded.
type CommitNode interface {
	ID() plumbing.Hash
	Tree() (*Tree, error)
	CommitTime() time.Time
	NumParents() int
	ParentNodes() CommitNodeIter
	ParentNode(i int) (CommitNode, error)
	ParentHashes() []plumbing.Hash
}

// CommitNodeIndex loads CommitNode objects from the object store.
type CommitNodeIndex interface {
	// Get returns a commit node from a commit hash.
	Get(hash plumbing.Hash) (CommitNode, error)
	// Commit returns the full commit object from the node.
	Commit(node CommitNode) (*Commit, error)
}

// CommitNodeIter is a closable iterator over CommitNode objects.
type CommitNodeIter interface {
	Next() (CommitNode, error)
	ForEach(func(CommitNode) error) error
	Close()
}

// parentCommitNodeIter iterates a node's parents by index, using the node's
// own CommitNodeIndex to resolve each one.
type parentCommitNodeIter struct {
	node CommitNode
	i    int
}

func newParentCommitNodeIter(node CommitNode) CommitNodeIter {
	return &parentCommitNodeIter{node, 0}
}

// Next moves the iterator to the next commit and returns a pointer to it. If
// there are no more commits, it returns io.EOF.
func (iter *parentCommitNodeIter) Next() (CommitNode, error) {
	obj, err := iter.node.ParentNode(iter.i)
	if err == ErrParentNotFound {
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}

	iter.i++
	return obj, nil
}

func (iter *parentCommitNodeIter) ForEach(cb func(CommitNode) error) error {
	for {
		obj, err := iter.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if err := cb(obj); err != nil {
			if err == storer.ErrStop {
				return nil
			}
			return err
		}
	}
}

func (iter *parentCommitNodeIter) Close() {}
