// Package stage implements the IndexStager component: rebuilding the
// staged index from a walk that composes the previous index, the working
// tree, and the ignore policy, while preserving content-addressed blob
// identity and timestamp-based staleness detection (spec.md §4.3).
package stage

import (
	"io"
	"path"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"

	"github.com/vcslab/gitkit/ignore"
	"github.com/vcslab/gitkit/plumbing"
	"github.com/vcslab/gitkit/plumbing/filemode"
	"github.com/vcslab/gitkit/plumbing/format/index"
)

// BlobWriter is the ObjectWriter collaborator (spec.md §6.1): it persists
// blob content to the object store and returns its content-addressed id.
type BlobWriter interface {
	WriteBlob(r io.Reader, size int64) (plumbing.Hash, error)
}

// Add rebuilds idx in place to reflect toAdd (a repository-relative file
// or directory path, "" meaning the whole working tree), staging new and
// modified files and, when alsoRemove is true, dropping index entries
// whose working-tree file is gone. Returns the paths whose staged content
// actually changed.
func Add(fsys billy.Filesystem, idx *index.Index, bw BlobWriter, matcher ignore.PathMatcher, toAdd string, alsoRemove bool) ([]string, error) {
	prev := make(map[string]*index.Entry, len(idx.Entries))
	for _, e := range idx.Entries {
		prev[e.Name] = e
	}

	wdPaths, err := walkWorktree(fsys, "")
	if err != nil {
		return nil, err
	}
	inWorktree := make(map[string]bool, len(wdPaths))
	for _, p := range wdPaths {
		inWorktree[p] = true
	}

	prefix := normalizePrefix(toAdd)

	touched := map[string]struct{}{}
	for p := range prev {
		if withinPrefix(p, prefix) {
			touched[p] = struct{}{}
		}
	}
	for p := range inWorktree {
		if withinPrefix(p, prefix) {
			touched[p] = struct{}{}
		}
	}

	var result []*index.Entry
	var changed []string

	for p := range touched {
		prior, inIdx := prev[p]

		if !inIdx && matcher != nil && matcher.Match(p, false) {
			continue
		}

		if !inWorktree[p] {
			// Case B: gone from the work tree.
			if !alsoRemove && inIdx {
				result = append(result, prior)
			} else if inIdx {
				changed = append(changed, p)
			}
			continue
		}

		if inIdx && prior.Mode == filemode.Symlink {
			// Case C: symlinks are never re-staged.
			result = append(result, prior)
			continue
		}

		fi, err := fsys.Lstat(p)
		if err != nil {
			return nil, err
		}
		mode, err := filemode.NewFromOSFileMode(fi.Mode())
		if err != nil {
			return nil, err
		}

		entry := &index.Entry{Name: p}
		if inIdx {
			cp := *prior
			entry = &cp
		}
		entry.Mode = mode

		switch {
		case mode == filemode.Symlink:
			target, err := fsys.Readlink(p)
			if err != nil {
				return nil, err
			}
			h := plumbing.NewHasher(plumbing.BlobObject, int64(len(target)))
			h.Write([]byte(target))
			entry.Hash = h.Sum()
			entry.Size = uint32(len(target))
			entry.ModifiedAt = fi.ModTime()
			changed = append(changed, p)

		case mode == filemode.Submodule:
			entry.Size = 0
			entry.ModifiedAt = time.Time{}

		case !inIdx || entry.Size != uint32(fi.Size()) || !timestampMatches(entry.ModifiedAt, fi.ModTime()):
			h, err := hashFile(fsys, p, fi.Size(), bw)
			if err != nil {
				return nil, err
			}
			entry.Hash = h
			entry.Size = uint32(fi.Size())
			entry.ModifiedAt = fi.ModTime()
			changed = append(changed, p)
		}

		result = append(result, entry)
	}

	// Carry over every untouched prior entry unchanged.
	for p, e := range prev {
		if _, ok := touched[p]; !ok {
			result = append(result, e)
		}
	}

	idx.Entries = result
	return changed, nil
}

func hashFile(fsys billy.Filesystem, p string, size int64, bw BlobWriter) (plumbing.Hash, error) {
	f, err := fsys.Open(p)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	defer f.Close()

	return bw.WriteBlob(f, size)
}

// timestampMatches implements spec.md §4.2's coarse-resolution fallback,
// reused here for the same staleness check IndexStager needs before
// re-hashing a file.
func timestampMatches(a, b time.Time) bool {
	am, bm := a.UnixMilli(), b.UnixMilli()
	if am%1000 == 0 || bm%1000 == 0 {
		return am/1000 == bm/1000
	}
	return am == bm
}

func normalizePrefix(toAdd string) string {
	return strings.Trim(path.Clean(strings.ReplaceAll(toAdd, "\\", "/")), "/")
}

func withinPrefix(p, prefix string) bool {
	if prefix == "" || prefix == "." {
		return true
	}
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

func walkWorktree(fsys billy.Filesystem, dir string) ([]string, error) {
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
			sub, err := walkWorktree(fsys, p)
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
