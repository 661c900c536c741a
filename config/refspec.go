package config

import (
	"errors"
	"strings"

	"github.com/vcslab/gitkit/plumbing"
)

const (
	refSpecWildcard  = "*"
	refSpecForce     = "+"
	refSpecSeparator = ":"
)

// ErrRefSpecMalformedSeparator is returned by Validate when a refspec
// doesn't have exactly one non-trailing ":" separator.
var ErrRefSpecMalformedSeparator = errors.New("malformed refspec, separators are wrong")

// ErrRefSpecMalformedWildcard is returned by Validate when the number of
// wildcards on the source and destination side don't match.
var ErrRefSpecMalformedWildcard = errors.New("malformed refspec, mismatched number of wildcards")

// RefSpec is a mapping from local branches to remote references. The
// format of the refspec is an optional "+", followed by "<src>:<dst>",
// where <src> is the pattern for references on the remote side and <dst>
// is where those references will be written locally. The "+" tells Git
// to update the reference even if it isn't a fast-forward.
//
// eg.: "+refs/heads/*:refs/remotes/origin/*"
//
// https://git-scm.com/book/en/v2/Git-Internals-The-Refspec
type RefSpec string

// IsValid reports whether the RefSpec is well formed.
func (s RefSpec) IsValid() bool {
	return s.Validate() == nil
}

// Validate checks the RefSpec is well formed, returning
// ErrRefSpecMalformedSeparator or ErrRefSpecMalformedWildcard otherwise.
func (s RefSpec) Validate() error {
	spec := string(s)
	if strings.Count(spec, refSpecSeparator) != 1 {
		return ErrRefSpecMalformedSeparator
	}

	sep := strings.Index(spec, refSpecSeparator)
	if sep == len(spec)-1 {
		return ErrRefSpecMalformedSeparator
	}

	ws := strings.Count(s.src(), refSpecWildcard)
	wd := strings.Count(s.dst(), refSpecWildcard)
	if ws != wd || ws > 1 || wd > 1 {
		return ErrRefSpecMalformedWildcard
	}

	return nil
}

// IsForceUpdate returns true if update is allowed in non fast-forward
// merges.
func (s RefSpec) IsForceUpdate() bool {
	return strings.HasPrefix(string(s), refSpecForce)
}

// IsDelete returns true if the RefSpec deletes a reference, that is, its
// source side is empty.
func (s RefSpec) IsDelete() bool {
	return s.src() == ""
}

// IsWildcard returns true if the RefSpec contains a wildcard.
func (s RefSpec) IsWildcard() bool {
	return strings.Contains(string(s), refSpecWildcard)
}

// IsExactSHA1 returns true if the RefSpec's source side is a 40-character
// hex SHA1, rather than a reference name.
func (s RefSpec) IsExactSHA1() bool {
	src := s.src()
	if len(src) != 40 {
		return false
	}

	for _, r := range src {
		isHex := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
		if !isHex {
			return false
		}
	}

	return true
}

func (s RefSpec) stripped() string {
	spec := string(s)
	if strings.HasPrefix(spec, refSpecForce) {
		return spec[1:]
	}

	return spec
}

func (s RefSpec) src() string {
	spec := s.stripped()
	sep := strings.Index(spec, refSpecSeparator)
	if sep == -1 {
		return spec
	}

	return spec[:sep]
}

func (s RefSpec) dst() string {
	spec := s.stripped()
	sep := strings.Index(spec, refSpecSeparator)
	if sep == -1 {
		return ""
	}

	return spec[sep+1:]
}

// Src returns the source side of the RefSpec.
func (s RefSpec) Src() string {
	return s.src()
}

// Match matches the given plumbing.ReferenceName against the source side
// of the RefSpec.
func (s RefSpec) Match(n plumbing.ReferenceName) bool {
	if !s.IsWildcard() {
		return s.matchExact(n)
	}

	return s.matchGlob(n)
}

func (s RefSpec) matchExact(n plumbing.ReferenceName) bool {
	return s.src() == n.String()
}

func (s RefSpec) matchGlob(n plumbing.ReferenceName) bool {
	src := s.src()
	name := n.String()
	wildcard := strings.Index(src, refSpecWildcard)

	prefix := src[:wildcard]
	suffix := src[wildcard+1:]

	return len(name) >= len(prefix)+len(suffix) &&
		strings.HasPrefix(name, prefix) &&
		strings.HasSuffix(name, suffix)
}

// Dst returns the destination for the given remote reference.
func (s RefSpec) Dst(n plumbing.ReferenceName) plumbing.ReferenceName {
	dst := s.dst()
	if !s.IsWildcard() {
		return plumbing.ReferenceName(dst)
	}

	src := s.src()
	name := n.String()
	ws := strings.Index(src, refSpecWildcard)
	wd := strings.Index(dst, refSpecWildcard)
	match := name[ws : len(name)-(len(src)-(ws+1))]

	return plumbing.ReferenceName(dst[:wd] + match + dst[wd+1:])
}

// Reverse returns a new RefSpec with the source and destination sides
// swapped, preserving the force-update flag.
func (s RefSpec) Reverse() RefSpec {
	spec := string(s)

	var force string
	if s.IsForceUpdate() {
		force = refSpecForce
		spec = spec[1:]
	}

	sep := strings.Index(spec, refSpecSeparator)
	return RefSpec(force + spec[sep+1:] + refSpecSeparator + spec[:sep])
}

func (s RefSpec) String() string {
	return string(s)
}

// MatchAny returns true if any of the given RefSpecs matches n.
func MatchAny(l []RefSpec, n plumbing.ReferenceName) bool {
	for _, rs := range l {
		if rs.Match(n) {
			return true
		}
	}

	return false
}
