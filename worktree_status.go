package git

import (
	"errors"
	"io"
	"os"
	"sort"

	"github.com/vcslab/gitkit/ignore"
	"github.com/vcslab/gitkit/plumbing"
	"github.com/vcslab/gitkit/plumbing/filemode"
	"github.com/vcslab/gitkit/plumbing/format/index"
	"github.com/vcslab/gitkit/plumbing/object"
	"github.com/vcslab/gitkit/stage"
	"github.com/vcslab/gitkit/status"
)

// ErrDestinationExists in an Move operation means that the target exists on
// the worktree.
var ErrDestinationExists = errors.New("destination exists")

// changeAction mirrors spec.md §6.1's TreeWalk action outcomes for the
// two-way comparisons (tree-vs-index, index-vs-worktree) that drive
// Reset/Checkout; it replaces go-git's generic merkletrie diff engine,
// which this repository deliberately does not carry (see DESIGN.md).
type changeAction int

const (
	actionInsert changeAction = iota
	actionDelete
	actionModify
)

// change is a single path's outcome from a two-way comparison. from/to
// hold the path on whichever side is non-empty for inserts/deletes; both
// equal the path for a modify.
type change struct {
	action changeAction
	path   string
}

// pathMatcher lazily builds and caches the PathMatcher for a worktree.
func (w *Worktree) pathMatcher() (ignore.PathMatcher, error) {
	return ignore.Load(w.fs)
}

// Status returns the working tree status.
func (w *Worktree) Status() (Status, error) {
	ref, err := w.r.Head()
	if err == plumbing.ErrReferenceNotFound {
		return make(Status, 0), nil
	}
	if err != nil {
		return nil, err
	}

	return w.status(ref.Hash())
}

func (w *Worktree) status(commit plumbing.Hash) (Status, error) {
	idx, err := w.r.Storer.Index()
	if err != nil {
		return nil, err
	}

	var tree *object.Tree
	c, err := w.r.CommitObject(commit)
	if err != nil {
		return nil, err
	}
	tree, err = c.Tree()
	if err != nil {
		return nil, err
	}

	matcher, err := w.pathMatcher()
	if err != nil {
		return nil, err
	}

	entries, err := status.Reconcile(w.fs, idx, tree, matcher, true, false)
	if err != nil {
		return nil, err
	}

	s := make(Status, len(entries))
	for _, e := range entries {
		fs := s.File(e.Path)
		fs.Worktree = indexStatusCode(e.Index)
		fs.Staging = repoStatusCode(e.Repo)
	}

	return s, nil
}

func indexStatusCode(s status.IndexStatus) StatusCode {
	switch s {
	case status.IndexUntracked:
		return Untracked
	case status.IndexAdded:
		return Added
	case status.IndexModified:
		return Modified
	case status.IndexDeleted:
		return Deleted
	default:
		return Unmodified
	}
}

func repoStatusCode(s status.RepoStatus) StatusCode {
	switch s {
	case status.RepoUntracked:
		return Untracked
	case status.RepoAdded:
		return Added
	case status.RepoRemoved:
		return Deleted
	default:
		return Unmodified
	}
}

// Add adds the file contents of a file in the worktree to the index. if the
// file is already stagged in the index no error is returned.
func (w *Worktree) Add(path string) (plumbing.Hash, error) {
	matcher, err := w.pathMatcher()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	idx, err := w.r.Storer.Index()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	if _, err := stage.Add(w.fs, idx, (*blobWriter)(w.r), matcher, path, false); err != nil {
		return plumbing.ZeroHash, err
	}

	if err := w.r.Storer.SetIndex(idx); err != nil {
		return plumbing.ZeroHash, err
	}

	for _, e := range idx.Entries {
		if e.Name == path {
			return e.Hash, nil
		}
	}

	return plumbing.ZeroHash, nil
}

// blobWriter adapts a Repository to stage.BlobWriter.
type blobWriter Repository

func (r *blobWriter) WriteBlob(rd io.Reader, size int64) (plumbing.Hash, error) {
	obj := r.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(size)

	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	if _, err := io.Copy(w, rd); err != nil {
		w.Close()
		return plumbing.ZeroHash, err
	}
	if err := w.Close(); err != nil {
		return plumbing.ZeroHash, err
	}

	return r.Storer.SetEncodedObject(obj)
}

// Remove removes files from the working tree and from the index.
func (w *Worktree) Remove(path string) (plumbing.Hash, error) {
	hash, err := w.deleteFromIndex(path)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	return hash, w.deleteFromFilesystem(path)
}

func (w *Worktree) deleteFromIndex(path string) (plumbing.Hash, error) {
	idx, err := w.r.Storer.Index()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	e, err := idx.Remove(path)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	return e.Hash, w.r.Storer.SetIndex(idx)
}

func (w *Worktree) deleteFromFilesystem(path string) error {
	err := w.fs.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}

	return err
}

// Move moves or rename a file in the worktree and the index, directories are
// not supported.
func (w *Worktree) Move(from, to string) (plumbing.Hash, error) {
	if _, err := w.fs.Lstat(from); err != nil {
		return plumbing.ZeroHash, err
	}

	if _, err := w.fs.Lstat(to); err == nil {
		return plumbing.ZeroHash, ErrDestinationExists
	}

	hash, err := w.deleteFromIndex(from)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	if err := w.fs.Rename(from, to); err != nil {
		return hash, err
	}

	idx, err := w.r.Storer.Index()
	if err != nil {
		return hash, err
	}

	fi, err := w.fs.Lstat(to)
	if err != nil {
		return hash, err
	}
	mode, err := filemode.NewFromOSFileMode(fi.Mode())
	if err != nil {
		return hash, err
	}

	e := &index.Entry{Name: to, Hash: hash, Mode: mode, Size: uint32(fi.Size()), ModifiedAt: fi.ModTime()}
	idx.Entries = append(idx.Entries, e)

	return hash, w.r.Storer.SetIndex(idx)
}

// diffTreeIndex is a two-way merge-join between a committed tree and the
// staged index, in canonical path order, used by Reset to decide which
// files Checkout must (re)write or remove.
func diffTreeIndex(t *object.Tree, idx *index.Index) ([]change, error) {
	treePaths := map[string]plumbing.Hash{}
	iter := t.Files()
	defer iter.Close()
	if err := iter.ForEach(func(f *object.File) error {
		treePaths[f.Name] = f.Hash
		return nil
	}); err != nil {
		return nil, err
	}

	idxPaths := map[string]plumbing.Hash{}
	for _, e := range idx.Entries {
		idxPaths[e.Name] = e.Hash
	}

	all := map[string]struct{}{}
	for p := range treePaths {
		all[p] = struct{}{}
	}
	for p := range idxPaths {
		all[p] = struct{}{}
	}

	ordered := make([]string, 0, len(all))
	for p := range all {
		ordered = append(ordered, p)
	}
	sort.Strings(ordered)

	var out []change
	for _, p := range ordered {
		th, inTree := treePaths[p]
		ih, inIdx := idxPaths[p]

		switch {
		case inTree && !inIdx:
			out = append(out, change{actionInsert, p})
		case !inTree && inIdx:
			out = append(out, change{actionDelete, p})
		case inTree && inIdx && th != ih:
			out = append(out, change{actionModify, p})
		}
	}

	return out, nil
}
