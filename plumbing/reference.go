package plumbing

import (
	"errors"
	"strings"
)

// ErrReferenceNotFound is returned when a reference is not found in a
// ReferenceStorer.
var ErrReferenceNotFound = errors.New("reference not found")

// RefRevParseRules are the rules used to resolve a partial revision to a
// full reference name, mirroring git-rev-parse's disambiguation order.
var RefRevParseRules = []string{
	"refs/%s",
	"refs/tags/%s",
	"refs/heads/%s",
	"refs/remotes/%s",
	"refs/remotes/%s/HEAD",
}

const (
	// HEAD is the name of the symbolic reference that points at the
	// currently checked-out branch or commit.
	HEAD ReferenceName = "HEAD"
	// Master is the default branch name used by Init.
	Master ReferenceName = "refs/heads/master"
)

// ReferenceType is the kind of a Reference: symbolic (points at another
// reference) or hash (points directly at an object).
type ReferenceType int8

const (
	InvalidReference  ReferenceType = 0
	HashReference     ReferenceType = 1
	SymbolicReference ReferenceType = 2
)

func (r ReferenceType) String() string {
	switch r {
	case HashReference:
		return "hash-reference"
	case SymbolicReference:
		return "symbolic-reference"
	default:
		return "invalid-reference"
	}
}

// ReferenceName is a reference's path, e.g. "refs/heads/master".
type ReferenceName string

// Short returns the last path segment group after the category prefix
// (refs/heads/, refs/tags/, refs/remotes/ or refs/notes/).
func (r ReferenceName) Short() string {
	s := string(r)
	res := s
	for _, prefix := range []string{
		"refs/heads/",
		"refs/tags/",
		"refs/remotes/",
		"refs/notes/",
	} {
		if strings.HasPrefix(s, prefix) {
			res = s[len(prefix):]
		}
	}

	return res
}

func (r ReferenceName) String() string {
	return string(r)
}

// IsBranch returns true if the reference is a branch.
func (r ReferenceName) IsBranch() bool {
	return strings.HasPrefix(string(r), refHeadPrefix)
}

// IsNote returns true if the reference is a note.
func (r ReferenceName) IsNote() bool {
	return strings.HasPrefix(string(r), refNotePrefix)
}

// IsRemote returns true if the reference is a remote-tracking branch.
func (r ReferenceName) IsRemote() bool {
	return strings.HasPrefix(string(r), refRemotePrefix)
}

// IsTag returns true if the reference is a tag.
func (r ReferenceName) IsTag() bool {
	return strings.HasPrefix(string(r), refTagPrefix)
}

const (
	refHeadPrefix   = "refs/heads/"
	refTagPrefix    = "refs/tags/"
	refRemotePrefix = "refs/remotes/"
	refNotePrefix   = "refs/notes/"
)

// NewBranchReferenceName returns a reference name for a local branch.
func NewBranchReferenceName(name string) ReferenceName {
	return ReferenceName(refHeadPrefix + name)
}

// NewNoteReferenceName returns a reference name for a note.
func NewNoteReferenceName(name string) ReferenceName {
	return ReferenceName(refNotePrefix + name)
}

// NewRemoteReferenceName returns a reference name for a remote-tracking
// branch of the given remote.
func NewRemoteReferenceName(remote, name string) ReferenceName {
	return ReferenceName(refRemotePrefix + remote + "/" + name)
}

// NewRemoteHEADReferenceName returns the reference name for a remote's HEAD.
func NewRemoteHEADReferenceName(remote string) ReferenceName {
	return ReferenceName(refRemotePrefix + remote + "/HEAD")
}

// NewTagReferenceName returns a reference name for a tag.
func NewTagReferenceName(name string) ReferenceName {
	return ReferenceName(refTagPrefix + name)
}

// Reference is a git reference: either a symbolic reference pointing at
// another ReferenceName, or a hash reference pointing directly at an
// object.
type Reference struct {
	t      ReferenceType
	n      ReferenceName
	h      Hash
	target ReferenceName
}

// NewReferenceFromStrings builds a Reference from its raw name and target
// strings, as read from a packed-refs file or a loose ref file: a target
// starting with "ref: " is symbolic, otherwise it is a hexadecimal hash.
func NewReferenceFromStrings(name, target string) *Reference {
	n := ReferenceName(name)

	if strings.HasPrefix(target, symrefPrefix) {
		target := ReferenceName(strings.TrimPrefix(target, symrefPrefix))
		return NewSymbolicReference(n, target)
	}

	return NewHashReference(n, NewHash(target))
}

const symrefPrefix = "ref: "

// NewSymbolicReference creates a new symbolic Reference, pointing at
// target.
func NewSymbolicReference(n, target ReferenceName) *Reference {
	return &Reference{
		t:      SymbolicReference,
		n:      n,
		target: target,
	}
}

// NewHashReference creates a new hash Reference, pointing at h.
func NewHashReference(n ReferenceName, h Hash) *Reference {
	return &Reference{
		t: HashReference,
		n: n,
		h: h,
	}
}

// Type returns the type of the reference.
func (r *Reference) Type() ReferenceType {
	return r.t
}

// Name returns the name of the reference.
func (r *Reference) Name() ReferenceName {
	return r.n
}

// Hash returns the hash of a hash reference; it is the zero hash for a
// symbolic reference.
func (r *Reference) Hash() Hash {
	return r.h
}

// Target returns the target of a symbolic reference; it is empty for a
// hash reference.
func (r *Reference) Target() ReferenceName {
	return r.target
}

// Strings dumps a reference as a pair of strings, in the same format
// accepted by NewReferenceFromStrings.
func (r *Reference) Strings() [2]string {
	var o [2]string
	o[0] = r.Name().String()

	switch r.Type() {
	case HashReference:
		o[1] = r.Hash().String()
	case SymbolicReference:
		o[1] = symrefPrefix + r.Target().String()
	}

	return o
}

func (r *Reference) String() string {
	if r == nil {
		return ""
	}

	s := r.Strings()
	return s[0] + " " + s[1]
}

// IsBranch returns true if the reference is a branch.
func (r *Reference) IsBranch() bool {
	return r.Name().IsBranch()
}

// IsNote returns true if the reference is a note.
func (r *Reference) IsNote() bool {
	return r.Name().IsNote()
}

// IsRemote returns true if the reference is a remote-tracking branch.
func (r *Reference) IsRemote() bool {
	return r.Name().IsRemote()
}

// IsTag returns true if the reference is a tag.
func (r *Reference) IsTag() bool {
	return r.Name().IsTag()
}
