// Package lsfiles implements the LsFilesMerge component: an ordered
// merge-join of the staged index and a working-tree scan into a unified
// file listing (spec.md §4.5).
package lsfiles

import (
	"sort"

	"github.com/go-git/go-billy/v5"

	"github.com/vcslab/gitkit/ignore"
	"github.com/vcslab/gitkit/plumbing"
	"github.com/vcslab/gitkit/plumbing/format/index"
)

// Status is the outcome of merging the index view with the working-tree
// scan for one path. Merge only produces Cached, Removed and Other.
// spec.md's LsFileEntry also allows UNMERGED, CHANGED and KILLED; Merge
// never returns those three variants, which are kept for API parity with
// the spec's LsFileEntry.status enumeration.
type Status int

const (
	Cached Status = iota
	Unmerged
	Removed
	Changed
	Killed
	Other
)

func (s Status) String() string {
	switch s {
	case Cached:
		return "cached"
	case Unmerged:
		return "unmerged"
	case Removed:
		return "removed"
	case Changed:
		return "changed"
	case Killed:
		return "killed"
	default:
		return "other"
	}
}

// Entry is one row of the merged listing.
type Entry struct {
	Path     string
	Status   Status
	ObjectID *plumbing.Hash
}

// Merge returns the PathString-ordered merge of idx and a recursive scan
// of fsys, honoring matcher for the working-tree-only paths (an ignored
// file that was never staged never appears; one that is staged always
// does, regardless of matcher, since the index is authoritative for
// tracked paths).
func Merge(fsys billy.Filesystem, idx *index.Index, matcher ignore.PathMatcher) ([]Entry, error) {
	idxByPath := make(map[string]*index.Entry, len(idx.Entries))
	for _, e := range idx.Entries {
		idxByPath[e.Name] = e
	}

	wdPaths, err := scan(fsys, "")
	if err != nil {
		return nil, err
	}
	inWD := make(map[string]bool, len(wdPaths))
	for _, p := range wdPaths {
		inWD[p] = true
	}

	paths := make(map[string]struct{}, len(idxByPath)+len(wdPaths))
	for p := range idxByPath {
		paths[p] = struct{}{}
	}
	for _, p := range wdPaths {
		if matcher != nil && matcher.Match(p, false) {
			continue
		}
		paths[p] = struct{}{}
	}

	ordered := make([]string, 0, len(paths))
	for p := range paths {
		ordered = append(ordered, p)
	}
	sort.Strings(ordered)

	out := make([]Entry, 0, len(ordered))
	for _, p := range ordered {
		idxE, trackedInIdx := idxByPath[p]

		switch {
		case trackedInIdx && inWD[p]:
			h := idxE.Hash
			out = append(out, Entry{Path: p, Status: Cached, ObjectID: &h})
		case trackedInIdx && !inWD[p]:
			out = append(out, Entry{Path: p, Status: Removed})
		default:
			out = append(out, Entry{Path: p, Status: Other})
		}
	}

	return out, nil
}

func scan(fsys billy.Filesystem, dir string) ([]string, error) {
	var out []string

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
			sub, err := scan(fsys, p)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
			continue
		}

		out = append(out, p)
	}

	return out, nil
}
