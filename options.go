package git

import (
	"errors"
	"fmt"
	"io"

	"github.com/vcslab/gitkit/config"
	"github.com/vcslab/gitkit/plumbing"
	"github.com/vcslab/gitkit/plumbing/transport"
)

// DefaultRemoteName is the name used for the default Remote, just like the
// git command.
const DefaultRemoteName = "origin"

var (
	ErrMissingURL       = errors.New("URL field is required")
	ErrInvalidRefSpec   = errors.New("invalid refspec")
	ErrInvalidReference = errors.New("invalid reference, should be a tag or a branch")
)

// CloneOptions describes how a clone operation should be performed.
type CloneOptions struct {
	// URL to clone from, a transport.Endpoint-parseable value (local
	// filesystem paths and file:// URLs only, see DESIGN.md).
	URL string
	// Auth credentials, if required, to use against the remote repository.
	Auth transport.AuthMethod
	// RemoteName is the name of the remote to be added, by default "origin".
	RemoteName string
	// ReferenceName is the remote branch to clone, by default the remote's
	// HEAD.
	ReferenceName plumbing.ReferenceName
	// SingleBranch limits fetching to ReferenceName if true.
	SingleBranch bool
	// Depth is kept for API compatibility; shallow fetches are a Non-goal
	// (see DESIGN.md), any value is ignored.
	Depth int
	// Progress is where human-readable progress lines are written to, nil
	// means no output.
	Progress io.Writer
}

// Validate validates the fields and sets the default values.
func (o *CloneOptions) Validate() error {
	if o.URL == "" {
		return ErrMissingURL
	}

	if o.RemoteName == "" {
		o.RemoteName = DefaultRemoteName
	}

	if o.ReferenceName == "" {
		o.ReferenceName = plumbing.HEAD
	}

	return nil
}

// TagMode defines the tag fetch strategy.
type TagMode int

const (
	TagFollowing TagMode = iota
	AllTags
	NoTags
)

// FetchOptions describes how a fetch operation should be performed.
type FetchOptions struct {
	// RemoteName is the name of the remote to fetch from.
	RemoteName string
	// RefSpecs contains the refspecs to fetch, defaulting to the remote's
	// configured fetch refspecs.
	RefSpecs []config.RefSpec
	// Depth is kept for API compatibility; see CloneOptions.Depth.
	Depth int
	// Auth credentials, if required, to use against the remote repository.
	Auth transport.AuthMethod
	// Force allows fetches that update non-fast-forward references.
	Force bool
	// Progress is where human-readable progress lines are written to.
	Progress io.Writer
	// Tags controls which tags get fetched, currently advisory only.
	Tags TagMode
}

// Validate validates the fields and sets the default values.
func (o *FetchOptions) Validate() error {
	if o.RemoteName == "" {
		o.RemoteName = DefaultRemoteName
	}

	for _, rs := range o.RefSpecs {
		if err := rs.Validate(); err != nil {
			return ErrInvalidRefSpec
		}
	}

	return nil
}

// PushOptions describes how a push operation should be performed.
type PushOptions struct {
	// RemoteName is the name of the remote to push to.
	RemoteName string
	// RefSpecs contains the refspecs to push, defaulting to the remote's
	// configured push (or fetch) refspecs.
	RefSpecs []config.RefSpec
	// Auth credentials, if required, to use against the remote repository.
	Auth transport.AuthMethod
	// Progress is where human-readable progress lines are written to.
	Progress io.Writer
	// Force allows updates that aren't fast-forwards.
	Force bool
	// RemoteURL overrides the remote's configured URL, mainly for testing.
	RemoteURL string
}

// Validate validates the fields and sets the default values.
func (o *PushOptions) Validate() error {
	if o.RemoteName == "" {
		o.RemoteName = DefaultRemoteName
	}

	for _, rs := range o.RefSpecs {
		if err := rs.Validate(); err != nil {
			return ErrInvalidRefSpec
		}
	}

	return nil
}

// PullOptions describes how a pull operation should be performed.
type PullOptions struct {
	// RemoteName is the name of the remote to pull from.
	RemoteName string
	// ReferenceName is the remote branch to pull, by default the remote's
	// HEAD.
	ReferenceName plumbing.ReferenceName
	// SingleBranch limits fetching to ReferenceName if true.
	SingleBranch bool
	// Depth is kept for API compatibility; see CloneOptions.Depth.
	Depth int
	// Auth credentials, if required, to use against the remote repository.
	Auth transport.AuthMethod
	// Force allows pulling into a non-fast-forward state.
	Force bool
	// Progress is where human-readable progress lines are written to.
	Progress io.Writer
}

// Validate validates the fields and sets the default values.
func (o *PullOptions) Validate() error {
	if o.RemoteName == "" {
		o.RemoteName = DefaultRemoteName
	}

	if o.ReferenceName == "" {
		o.ReferenceName = plumbing.HEAD
	}

	return nil
}

// ResetMode defines the mode of a reset operation.
type ResetMode int

const (
	// MixedReset resets the index but leaves the working tree untouched.
	MixedReset ResetMode = iota
	// SoftReset only moves HEAD, leaving both the index and the working
	// tree untouched.
	SoftReset
	// MergeReset refuses to reset if there are unstaged changes, otherwise
	// behaves like HardReset.
	MergeReset
	// HardReset resets the index and the working tree to match the given
	// commit.
	HardReset
)

// ResetOptions describes how a reset operation should be performed.
type ResetOptions struct {
	// Commit the repository gets reset to, defaults to the current HEAD.
	Commit plumbing.Hash
	// Mode of the reset operation, defaults to MixedReset.
	Mode ResetMode
}

// Validate validates the fields and sets the default values.
func (o *ResetOptions) Validate(r *Repository) error {
	if o.Commit == plumbing.ZeroHash {
		ref, err := r.Head()
		if err != nil {
			return err
		}

		o.Commit = ref.Hash()
	}

	return nil
}

// CheckoutOptions describes how a checkout operation should be performed.
type CheckoutOptions struct {
	// Hash is the commit to be checked out, has precedence over Branch.
	Hash plumbing.Hash
	// Branch to be checked out, if Branch and Hash are empty the
	// repository's HEAD is used.
	Branch plumbing.ReferenceName
	// Force ignores any unstaged changes in the worktree when true.
	Force bool
	// Create, if true, creates a new branch named Branch before checking
	// it out.
	Create bool
}

// Validate validates the fields and sets the default values.
func (o *CheckoutOptions) Validate() error {
	if !o.Hash.IsZero() && o.Branch != "" {
		return fmt.Errorf("Hash and Branch are mutually exclusive")
	}

	return nil
}

// ListOptions describes how a remote listing (ls-remote) should be
// performed.
type ListOptions struct {
	// Auth credentials, if required, to use against the remote repository.
	Auth transport.AuthMethod
}

// ForceWithLease augments PushOptions with a lease that only allows a
// push to succeed if the remote ref is still at the expected value, a
// refspec-scoped compare-and-swap.
type ForceWithLease struct {
	// RefName is the reference constrained by the lease, defaults to all
	// the refspecs being pushed.
	RefName plumbing.ReferenceName
	// Hash is the expected current value of RefName on the remote.
	Hash plumbing.Hash
}
