// Package noder defines the minimal node interface that the gitignore
// matcher (and any future tree-diffing code) walks to compare two
// arbitrary hierarchies -- a filesystem, a git tree, the index -- without
// depending on any of them directly.
package noder

import "fmt"

// Noder is a node in a hierarchy, comparable to its siblings by Hash.
type Noder interface {
	// Hash returns the hash of the node: the blob or tree hash for git
	// trees, a content hash for filesystem nodes.
	Hash() []byte
	// Name returns the name of the node in its parent.
	Name() string
	// IsDir returns whether the node is a directory.
	IsDir() bool
	// Children returns the node's children, in any order.
	Children() ([]Noder, error)
	// NumChildren returns len(Children()) without necessarily computing
	// the children themselves.
	NumChildren() (int, error)
	// Skip returns whether this node (and its subtree) should be treated
	// as absent, e.g. a submodule boundary.
	Skip() bool

	fmt.Stringer
}
