// Package status implements the StatusReconciler component: a three-way
// walk over the working tree, the staged index, and the committed HEAD
// tree that classifies every path into an (IndexStatus, RepoStatus) pair.
package status

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/go-git/go-billy/v5"

	"github.com/vcslab/gitkit/ignore"
	"github.com/vcslab/gitkit/plumbing"
	"github.com/vcslab/gitkit/plumbing/filemode"
	"github.com/vcslab/gitkit/plumbing/format/index"
	"github.com/vcslab/gitkit/plumbing/object"
)

// IndexStatus is the working-tree-vs-staged-index half of a StatusEntry.
type IndexStatus int

const (
	IndexUnchanged IndexStatus = iota
	IndexUntracked
	IndexAdded
	IndexModified
	IndexDeleted
)

func (s IndexStatus) String() string {
	switch s {
	case IndexUntracked:
		return "untracked"
	case IndexAdded:
		return "added"
	case IndexModified:
		return "modified"
	case IndexDeleted:
		return "deleted"
	default:
		return "unchanged"
	}
}

// RepoStatus is the staged-index-vs-HEAD-tree half of a StatusEntry.
type RepoStatus int

const (
	RepoUnchanged RepoStatus = iota
	RepoUntracked
	RepoAdded
	RepoRemoved
)

func (s RepoStatus) String() string {
	switch s {
	case RepoUntracked:
		return "untracked"
	case RepoAdded:
		return "added"
	case RepoRemoved:
		return "removed"
	default:
		return "unchanged"
	}
}

// StatusEntry is the classification of a single path.
type StatusEntry struct {
	Path  string
	Index IndexStatus
	Repo  RepoStatus
}

// ErrUnexpectedStatusCase is returned (non-lenient mode) when a path's
// (inWD, inIdx, inRepo) triple falls outside the 13 handled rows of §4.2's
// classification table -- the one combination the table marks impossible,
// (false, false, false), never arises because paths are only considered
// when at least one of the three sources names them.
var ErrUnexpectedStatusCase = errors.New("status: unexpected (wd, index, repo) combination")

type wdEntry struct {
	mode filemode.FileMode
	size int64
	mod  int64 // unix millis
}

// Reconcile walks wd (the working tree filesystem), idx (the staged
// index) and tree (the HEAD commit's tree, nil if there is no HEAD yet)
// and returns the ordered StatusEntry list, sorted by canonical index
// order (byte-lexicographic path order). matcher may be nil, in which
// case no path is considered ignored.
func Reconcile(wd billy.Filesystem, idx *index.Index, tree *object.Tree, matcher ignore.PathMatcher, listUnchanged, lenient bool) ([]StatusEntry, error) {
	wdFiles, err := scanWorktree(wd, "")
	if err != nil {
		return nil, err
	}

	idxByPath := make(map[string]*index.Entry, len(idx.Entries))
	for _, e := range idx.Entries {
		idxByPath[e.Name] = e
	}

	repoByPath := make(map[string]plumbing.Hash)
	if tree != nil {
		iter := tree.Files()
		defer iter.Close()
		if err := iter.ForEach(func(f *object.File) error {
			repoByPath[f.Name] = f.Hash
			return nil
		}); err != nil {
			return nil, err
		}
	}

	paths := make(map[string]struct{}, len(wdFiles)+len(idxByPath)+len(repoByPath))
	for p := range wdFiles {
		paths[p] = struct{}{}
	}
	for p := range idxByPath {
		paths[p] = struct{}{}
	}
	for p := range repoByPath {
		paths[p] = struct{}{}
	}

	ordered := make([]string, 0, len(paths))
	for p := range paths {
		ordered = append(ordered, p)
	}
	sort.Strings(ordered)

	var out []StatusEntry
	for _, p := range ordered {
		if matcher != nil && matcher.Match(p, false) {
			continue
		}

		wdE, inWD := wdFiles[p]
		idxE, inIdx := idxByPath[p]
		repoHash, inRepo := repoByPath[p]

		var wdHash plumbing.Hash
		if inWD && inIdx {
			wdHash, err = hashWorktreeFile(wd, p)
			if err != nil {
				return nil, err
			}
		}

		entry, ok, err := classify(p, wdE, wdHash, inWD, idxE, inIdx, repoHash, inRepo, listUnchanged)
		if err != nil {
			if lenient {
				continue
			}
			return nil, err
		}
		if ok {
			out = append(out, entry)
		}
	}

	return out, nil
}

func classify(path string, wdE wdEntry, wdHash plumbing.Hash, inWD bool, idxE *index.Entry, inIdx bool, repoHash plumbing.Hash, inRepo bool, listUnchanged bool) (StatusEntry, bool, error) {
	switch {
	case inWD && !inIdx && !inRepo:
		return StatusEntry{path, IndexUntracked, RepoUntracked}, true, nil

	case inWD && inIdx && !inRepo:
		if idxE.Mode == filemode.Submodule {
			return StatusEntry{}, false, nil
		}
		if contentChanged(idxE, wdE) {
			if wdHash == idxE.Hash {
				return StatusEntry{path, IndexAdded, RepoUntracked}, true, nil
			}
			return StatusEntry{path, IndexModified, RepoUntracked}, true, nil
		}
		return StatusEntry{path, IndexAdded, RepoUntracked}, true, nil

	case !inWD && inIdx && inRepo:
		if idxE.Hash == repoHash {
			return StatusEntry{path, IndexDeleted, RepoUnchanged}, true, nil
		}
		return StatusEntry{path, IndexDeleted, RepoAdded}, true, nil

	case inWD && inIdx && inRepo:
		wdEqualsIdx := !contentChanged(idxE, wdE) || wdHash == idxE.Hash
		idxEqualsRepo := idxE.Hash == repoHash
		switch {
		case wdEqualsIdx && idxEqualsRepo:
			return StatusEntry{path, IndexUnchanged, RepoUnchanged}, listUnchanged, nil
		case wdEqualsIdx && !idxEqualsRepo:
			return StatusEntry{path, IndexAdded, RepoAdded}, true, nil
		case !wdEqualsIdx && idxEqualsRepo:
			return StatusEntry{path, IndexModified, RepoUnchanged}, true, nil
		default:
			return StatusEntry{path, IndexModified, RepoAdded}, true, nil
		}

	case !inWD && inIdx && !inRepo:
		return StatusEntry{path, IndexDeleted, RepoUntracked}, true, nil

	case !inWD && !inIdx && inRepo:
		return StatusEntry{path, IndexDeleted, RepoRemoved}, true, nil

	case inWD && !inIdx && inRepo:
		return StatusEntry{path, IndexUntracked, RepoRemoved}, true, nil

	default: // !inWD && !inIdx && !inRepo, impossible per spec.md §4.2 row 13
		return StatusEntry{}, false, fmt.Errorf("%w: %s", ErrUnexpectedStatusCase, path)
	}
}

// contentChanged is the size/mtime fast path: if it reports no change the
// caller need not fall back to a hash comparison; if it does, the hash
// comparison (already computed by Reconcile) is authoritative.
func contentChanged(idxE *index.Entry, wdE wdEntry) bool {
	if int64(idxE.Size) != wdE.size {
		return true
	}
	return !timestampMatches(idxE.ModifiedAt.UnixMilli(), wdE.mod)
}

// timestampMatches implements spec.md §4.2's coarse-resolution fallback:
// if either recorded millisecond value is a whole second, compare at
// second resolution instead of millisecond resolution.
func timestampMatches(a, b int64) bool {
	if a%1000 == 0 || b%1000 == 0 {
		return a/1000 == b/1000
	}
	return a == b
}

func scanWorktree(fsys billy.Filesystem, dir string) (map[string]wdEntry, error) {
	out := make(map[string]wdEntry)

	base := dir
	if base == "" {
		base = "."
	}

	fis, err := fsys.ReadDir(base)
	if err != nil {
		return out, nil
	}

	for _, fi := range fis {
		name := fi.Name()
		if dir == "" && name == ".git" {
			continue
		}

		p := name
		if dir != "" {
			p = dir + "/" + name
		}

		if fi.IsDir() {
			sub, err := scanWorktree(fsys, p)
			if err != nil {
				return nil, err
			}
			for k, v := range sub {
				out[k] = v
			}
			continue
		}

		mode, err := filemode.NewFromOSFileMode(fi.Mode())
		if err != nil {
			return nil, err
		}

		out[p] = wdEntry{
			mode: mode,
			size: fi.Size(),
			mod:  fi.ModTime().UnixMilli(),
		}
	}

	return out, nil
}

// hashWorktreeFile computes the content-addressed blob id of a working
// tree file the same way git does: a "blob <size>\0" header hashed
// together with the content (plumbing.NewHasher already folds the
// header in). Symlinks hash their link target text instead of following
// it, matching IndexStager's treatment of symlinks as leaf content.
func hashWorktreeFile(fsys billy.Filesystem, path string) (plumbing.Hash, error) {
	fi, err := fsys.Lstat(path)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	if fi.Mode()&os.ModeSymlink != 0 {
		target, err := fsys.Readlink(path)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		h := plumbing.NewHasher(plumbing.BlobObject, int64(len(target)))
		if _, err := h.Write([]byte(target)); err != nil {
			return plumbing.ZeroHash, err
		}
		return h.Sum(), nil
	}

	f, err := fsys.Open(path)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	defer f.Close()

	h := plumbing.NewHasher(plumbing.BlobObject, fi.Size())
	if _, err := io.Copy(h, f); err != nil {
		return plumbing.ZeroHash, err
	}

	return h.Sum(), nil
}
