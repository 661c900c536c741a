package git

import (
	"errors"
	"sort"
	"strings"

	"github.com/vcslab/gitkit/plumbing"
	"github.com/vcslab/gitkit/plumbing/filemode"
	"github.com/vcslab/gitkit/plumbing/format/index"
	"github.com/vcslab/gitkit/plumbing/object"
)

// ErrMissingAuthor is returned when a commit is attempted without an
// Author signature.
var ErrMissingAuthor = errors.New("author field is required")

// ErrEmptyCommit is returned when a commit would produce the same tree as
// its first parent and AllowEmptyCommits is false.
var ErrEmptyCommit = errors.New("cannot create empty commit: clean working tree")

// CommitOptions describes how a commit operation should be performed,
// mirroring spec.md §4.1's commit algorithm.
type CommitOptions struct {
	// Author is the author's signature of the commit.
	Author *object.Signature
	// Committer is the committer's signature of the commit, defaults to
	// Author when nil.
	Committer *object.Signature
	// All automatically stages every modified and deleted tracked file
	// before committing, the same as "git commit -a".
	All bool
	// Parents are the hashes of the commit's parents. Defaults to the
	// current HEAD, or an empty list for the first commit in the repo
	// (see spec.md §9: the empty-parent-list contract is intentional).
	Parents []plumbing.Hash
	// AllowEmptyCommits allows a commit whose tree is identical to its
	// first parent's.
	AllowEmptyCommits bool
}

// Validate validates the fields and sets the default values.
func (o *CommitOptions) Validate(r *Repository) error {
	if o.Author == nil {
		return ErrMissingAuthor
	}

	if o.Committer == nil {
		o.Committer = o.Author
	}

	if len(o.Parents) == 0 {
		head, err := r.Head()
		if err == nil {
			o.Parents = []plumbing.Hash{head.Hash()}
		} else if err != plumbing.ErrReferenceNotFound {
			return err
		}
	}

	return nil
}

// Commit stores the current contents of the index as a new commit object
// and moves HEAD to it. The index's tree is computed fresh from its
// entries (DirCache.writeTree in spec.md §4.1 terms); the parent list and
// committer default are resolved by CommitOptions.Validate.
func (w *Worktree) Commit(msg string, opts *CommitOptions) (plumbing.Hash, error) {
	if opts.All {
		if err := addModifiedAndDeleted(w); err != nil {
			return plumbing.ZeroHash, err
		}
	}

	if err := opts.Validate(w.r); err != nil {
		return plumbing.ZeroHash, err
	}

	idx, err := w.r.Storer.Index()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	treeHash, err := writeTreeFromIndex(w.r.Storer, idx)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	if !opts.AllowEmptyCommits && len(opts.Parents) > 0 {
		if parent, err := w.r.CommitObject(opts.Parents[0]); err == nil && parent.TreeHash == treeHash {
			return plumbing.ZeroHash, ErrEmptyCommit
		}
	}

	commit := &object.Commit{
		Author:       *opts.Author,
		Committer:    *opts.Committer,
		Message:      msg,
		TreeHash:     treeHash,
		ParentHashes: opts.Parents,
	}

	obj := w.r.Storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return plumbing.ZeroHash, err
	}

	h, err := w.r.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	return h, w.setHEADCommit(h)
}

// addModifiedAndDeleted stages every path the index and worktree disagree
// on, the "-a" behavior of git commit.
func addModifiedAndDeleted(w *Worktree) error {
	st, err := w.Status()
	if err != nil {
		return err
	}

	for name, fs := range st {
		if fs.Worktree == Unmodified {
			continue
		}

		if fs.Worktree == Deleted {
			if _, err := w.deleteFromIndex(name); err != nil && err != index.ErrEntryNotFound {
				return err
			}
			continue
		}

		if _, err := w.Add(name); err != nil {
			return err
		}
	}

	return nil
}

// writeTreeFromIndex builds and writes the tree objects for a flat index,
// returning the hash of the root tree. Intermediate directories that
// exist only implicitly in the index (there is no directory entry) are
// synthesized from the path components of their children.
func writeTreeFromIndex(s Storer, idx *index.Index) (plumbing.Hash, error) {
	type dirNode struct {
		files []object.TreeEntry
		dirs  map[string]*dirNode
	}

	root := &dirNode{dirs: map[string]*dirNode{}}

	for _, e := range idx.Entries {
		parts := strings.Split(e.Name, "/")
		n := root
		for _, p := range parts[:len(parts)-1] {
			child, ok := n.dirs[p]
			if !ok {
				child = &dirNode{dirs: map[string]*dirNode{}}
				n.dirs[p] = child
			}
			n = child
		}

		n.files = append(n.files, object.TreeEntry{
			Name: parts[len(parts)-1],
			Mode: e.Mode,
			Hash: e.Hash,
		})
	}

	var write func(n *dirNode) (plumbing.Hash, error)
	write = func(n *dirNode) (plumbing.Hash, error) {
		entries := make([]object.TreeEntry, 0, len(n.files)+len(n.dirs))
		entries = append(entries, n.files...)

		names := make([]string, 0, len(n.dirs))
		for name := range n.dirs {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			h, err := write(n.dirs[name])
			if err != nil {
				return plumbing.ZeroHash, err
			}

			entries = append(entries, object.TreeEntry{
				Name: name,
				Mode: filemode.Dir,
				Hash: h,
			})
		}

		t := &object.Tree{Entries: entries}

		obj := s.NewEncodedObject()
		if err := t.Encode(obj); err != nil {
			return plumbing.ZeroHash, err
		}

		return s.SetEncodedObject(obj)
	}

	return write(root)
}
