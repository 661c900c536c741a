package config

import (
	"errors"

	"github.com/vcslab/gitkit/plumbing"
	format "github.com/vcslab/gitkit/plumbing/format/config"
)

var (
	// ErrBranchEmptyName is returned when a branch has an empty name.
	ErrBranchEmptyName = errors.New("branch config: empty name")
	// ErrBranchInvalidMerge is returned when a branch's merge value is not
	// a valid reference name.
	ErrBranchInvalidMerge = errors.New("branch config: invalid merge")
)

const (
	remoteKey = "remote"
)

// Branch describes the configuration for a local branch, as found under a
// [branch "<name>"] section.
type Branch struct {
	// Name of the branch.
	Name string
	// Remote name of the remote to fetch from and push to.
	Remote string
	// Merge is the remote ref to merge into this branch on pull.
	Merge plumbing.ReferenceName
	// Rebase instead of merge when pulling, one of "true", "false" or
	// "interactive".
	Rebase string

	raw *format.Subsection
}

// Validate validates the fields and returns an error if the branch
// configuration is invalid.
func (b *Branch) Validate() error {
	if b.Name == "" {
		return ErrBranchEmptyName
	}

	if b.Merge != "" && !b.Merge.IsBranch() {
		return ErrBranchInvalidMerge
	}

	return nil
}

func (b *Branch) unmarshal(s *format.Subsection) error {
	b.raw = s

	b.Name = b.raw.Name
	b.Remote = b.raw.Options.Get(remoteKey)
	b.Merge = plumbing.ReferenceName(b.raw.Options.Get(mergeKey))
	b.Rebase = b.raw.Options.Get(rebaseKey)

	return nil
}

func (b *Branch) marshal() *format.Subsection {
	if b.raw == nil {
		b.raw = &format.Subsection{}
	}

	b.raw.Name = b.Name

	if b.Remote == "" {
		b.raw.RemoveOption(remoteKey)
	} else {
		b.raw.SetOption(remoteKey, b.Remote)
	}

	if b.Merge == "" {
		b.raw.RemoveOption(mergeKey)
	} else {
		b.raw.SetOption(mergeKey, string(b.Merge))
	}

	if b.Rebase == "" {
		b.raw.RemoveOption(rebaseKey)
	} else {
		b.raw.SetOption(rebaseKey, b.Rebase)
	}

	return b.raw
}
