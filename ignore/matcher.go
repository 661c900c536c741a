// Package ignore implements the PathMatcher component: a per-path boolean
// decision against the layered pattern sources git recognizes --
// per-directory .gitignore files, $GIT_DIR/info/exclude, and the user's
// core.excludesfile -- in git's documented precedence order (most specific,
// or most recently declared, pattern wins).
package ignore

import (
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/vcslab/gitkit/plumbing/format/gitignore"
)

// PathMatcher answers whether a repository-relative path is ignored.
type PathMatcher interface {
	// Match reports whether path is ignored. isDir indicates whether the
	// path names a directory.
	Match(path string, isDir bool) bool
}

type pathMatcher struct {
	m gitignore.Matcher
}

// Load builds a PathMatcher for the working tree rooted at fs, collecting
// patterns in ascending precedence: system excludesfile, global
// (core.excludesfile) patterns, then the repository's own per-directory
// .gitignore tree and $GIT_DIR/info/exclude (gitignore.ReadPatterns already
// orders the latter two root-to-leaf).
func Load(fs billy.Filesystem) (PathMatcher, error) {
	var all []gitignore.Pattern

	sys, err := gitignore.LoadSystemPatterns(fs)
	if err != nil {
		return nil, err
	}
	all = append(all, sys...)

	global, err := gitignore.LoadGlobalPatterns(fs)
	if err != nil {
		return nil, err
	}
	all = append(all, global...)

	repo, err := gitignore.ReadPatterns(fs, nil)
	if err != nil {
		return nil, err
	}
	all = append(all, repo...)

	return &pathMatcher{m: gitignore.NewMatcher(all)}, nil
}

func (p *pathMatcher) Match(path string, isDir bool) bool {
	if path == "" {
		return false
	}

	return p.m.Match(strings.Split(path, "/"), isDir)
}
