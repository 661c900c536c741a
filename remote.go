package git

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/vcslab/gitkit/config"
	"github.com/vcslab/gitkit/plumbing"
	"github.com/vcslab/gitkit/plumbing/object"
	"github.com/vcslab/gitkit/plumbing/storer"
	"github.com/vcslab/gitkit/plumbing/transport"
	"github.com/vcslab/gitkit/storage"
)

var (
	// NoErrAlreadyUpToDate is returned by fetch/pull operations that don't
	// change any reference.
	NoErrAlreadyUpToDate = errors.New("already up-to-date")
	// ErrEmptyUrls is returned by Remote operations when the remote has no
	// configured URL to operate against.
	ErrEmptyUrls = errors.New("URLs cannot be empty")
	// ErrNoRefSpecs is returned when neither the operation's options nor
	// the remote's config provide a refspec to work with.
	ErrNoRefSpecs = errors.New("no refspecs configured")
)

// NoMatchingRefSpecError is returned when a refspec's source side matches
// nothing in the remote.
type NoMatchingRefSpecError struct {
	refSpec config.RefSpec
}

func (e NoMatchingRefSpecError) Error() string {
	return fmt.Sprintf("couldn't find remote ref %q", e.refSpec.Src())
}

func (e NoMatchingRefSpecError) Is(target error) bool {
	_, ok := target.(NoMatchingRefSpecError)
	return ok
}

// Remote represents a connection to a remote repository. Transport is
// resolved through plumbing/transport, which only knows how to open
// local filesystem repositories (see DESIGN.md): fetch/push therefore
// degrade to a direct object/reference copy between the two Storers
// rather than a wire-protocol negotiation.
type Remote struct {
	c *config.RemoteConfig
	s storage.Storer
}

// NewRemote creates a new Remote. The intended purpose is to use the
// Remote for tasks such as listing remote references (like "git
// ls-remote"); otherwise Remotes should be created through a Repository.
func NewRemote(s storage.Storer, c *config.RemoteConfig) *Remote {
	return &Remote{s: s, c: c}
}

// Config returns the RemoteConfig object used to instantiate this Remote.
func (r *Remote) Config() *config.RemoteConfig {
	return r.c
}

func (r *Remote) String() string {
	var fetch, push string
	if len(r.c.URLs) > 0 {
		fetch = r.c.URLs[0]
		push = r.c.URLs[len(r.c.URLs)-1]
	}

	return fmt.Sprintf("%s\t%s (fetch)\n%[1]s\t%[3]s (push)", r.c.Name, fetch, push)
}

// open resolves the remote's URL (or the given override) to the
// storage.Storer backing it.
func (r *Remote) open(url string) (storage.Storer, error) {
	if url == "" {
		if len(r.c.URLs) == 0 {
			return nil, ErrEmptyUrls
		}

		url = r.c.URLs[0]
	}

	ep, err := transport.NewEndpoint(url)
	if err != nil {
		return nil, err
	}

	return transport.Open(ep)
}

// List returns the references advertised by the remote, analogous to
// "git ls-remote".
func (r *Remote) List(o *ListOptions) ([]*plumbing.Reference, error) {
	remote, err := r.open("")
	if err != nil {
		return nil, err
	}

	iter, err := remote.IterReferences()
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var refs []*plumbing.Reference
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		refs = append(refs, ref)
		return nil
	})

	return refs, err
}

// Fetch fetches changes from the remote. Returns NoErrAlreadyUpToDate if
// the remote was already up-to-date.
func (r *Remote) Fetch(o *FetchOptions) error {
	return r.FetchContext(context.Background(), o)
}

// FetchContext fetches changes from the remote. Returns
// NoErrAlreadyUpToDate if the remote was already up-to-date.
//
// The provided Context must be non-nil; git's pack negotiation has no
// local equivalent so the context is only honored between object copies.
func (r *Remote) FetchContext(ctx context.Context, o *FetchOptions) error {
	_, err := r.fetch(ctx, o)
	return err
}

// fetch copies objects and updates the matching local references from
// the remote, returning the remote's reference storer so callers
// (Repository.clone, Repository.Pull) can resolve a ref name (e.g. HEAD)
// against the remote's own view of it.
func (r *Remote) fetch(ctx context.Context, o *FetchOptions) (storer.ReferenceStorer, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	specs := o.RefSpecs
	if len(specs) == 0 {
		specs = r.c.Fetch
	}
	if len(specs) == 0 {
		return nil, ErrNoRefSpecs
	}

	remote, err := r.open("")
	if err != nil {
		return nil, err
	}

	if err := copyObjects(ctx, remote, r.s); err != nil {
		return nil, err
	}

	updated, err := updateReferences(remote, r.s, specs, o.Force)
	if err != nil {
		return nil, err
	}

	if !updated {
		return remote, NoErrAlreadyUpToDate
	}

	return remote, nil
}

// Push pushes changes to the remote.
func (r *Remote) Push(o *PushOptions) error {
	return r.PushContext(context.Background(), o)
}

// PushContext pushes changes to the remote.
func (r *Remote) PushContext(ctx context.Context, o *PushOptions) error {
	if err := o.Validate(); err != nil {
		return err
	}

	specs := o.RefSpecs
	if len(specs) == 0 {
		specs = r.c.Fetch
	}
	if len(specs) == 0 {
		return ErrNoRefSpecs
	}

	url := o.RemoteURL
	if url == "" && len(r.c.URLs) > 0 {
		url = r.c.URLs[len(r.c.URLs)-1]
	}

	ep, err := transport.NewEndpoint(url)
	if err != nil {
		return err
	}

	remote, err := transport.Open(ep)
	if err != nil {
		return err
	}

	if err := copyObjects(ctx, r.s, remote); err != nil {
		return err
	}

	reversed := make([]config.RefSpec, len(specs))
	for i, rs := range specs {
		reversed[i] = rs.Reverse()
	}

	updated, err := updateReferences(r.s, remote, reversed, o.Force)
	if err != nil {
		return err
	}

	if !updated {
		return NoErrAlreadyUpToDate
	}

	return nil
}

// copyObjects copies every object reachable from src that dst does not
// already have. There is no pack negotiation: the local transport has no
// concept of "remote doesn't have it yet" other than checking each hash,
// so a full walk of src's object store is the simplest correct strategy
// (see DESIGN.md).
func copyObjects(ctx context.Context, src, dst storage.Storer) error {
	iter, err := src.IterEncodedObjects(plumbing.AnyObject)
	if err != nil {
		return err
	}
	defer iter.Close()

	return iter.ForEach(func(obj plumbing.EncodedObject) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := dst.HasEncodedObject(obj.Hash()); err == nil {
			return nil
		}

		w := dst.NewEncodedObject()
		w.SetType(obj.Type())
		w.SetSize(obj.Size())

		r, err := obj.Reader()
		if err != nil {
			return err
		}
		defer r.Close()

		wr, err := w.Writer()
		if err != nil {
			return err
		}

		if _, err := io.Copy(wr, r); err != nil {
			wr.Close()
			return err
		}

		if err := wr.Close(); err != nil {
			return err
		}

		_, err = dst.SetEncodedObject(w)
		return err
	})
}

// updateReferences copies every reference from src matching any of specs
// into dst, reporting whether any reference was created or moved.
func updateReferences(src, dst storage.Storer, specs []config.RefSpec, force bool) (bool, error) {
	iter, err := src.IterReferences()
	if err != nil {
		return false, err
	}
	defer iter.Close()

	var updated bool
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}

		for _, rs := range specs {
			if !rs.Match(ref.Name()) {
				continue
			}

			dstName := rs.Dst(ref.Name())
			if dstName == "" {
				dstName = ref.Name()
			}

			newRef := plumbing.NewHashReference(dstName, ref.Hash())

			old, err := dst.Reference(dstName)
			if err != nil && err != plumbing.ErrReferenceNotFound {
				return err
			}

			if err == nil && old.Hash() == newRef.Hash() {
				continue
			}

			if err == nil && !force && !rs.IsForceUpdate() {
				if isAncestor, aerr := isAncestorOf(dst, old.Hash(), newRef.Hash()); aerr == nil && !isAncestor {
					return ErrForceNeeded
				}
			}

			if err := dst.SetReference(newRef); err != nil {
				return err
			}

			updated = true
		}

		return nil
	})

	return updated, err
}

// ErrForceNeeded is returned by fetch/push when a non-fast-forward update
// is attempted without Force or a "+" refspec.
var ErrForceNeeded = errors.New("non-fast-forward update rejected, use force")

// isAncestorOf reports whether old is an ancestor of new in the commit
// graph rooted at dst, i.e. whether updating old -> new is a
// fast-forward. Non-commit objects (e.g. tags) are always treated as
// fast-forwardable, since the façade does not model annotated-tag
// ff-ness.
func isAncestorOf(s storage.Storer, old, new plumbing.Hash) (bool, error) {
	if old == new {
		return true, nil
	}

	for _, h := range []plumbing.Hash{old, new} {
		o, err := s.EncodedObject(plumbing.AnyObject, h)
		if err == nil && o.Type() != plumbing.CommitObject {
			return true, nil
		}
	}

	queue := []plumbing.Hash{new}
	seen := map[plumbing.Hash]bool{}

	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]

		if h == old {
			return true, nil
		}

		if seen[h] {
			continue
		}
		seen[h] = true

		c, err := object.GetCommit(s, h)
		if err != nil {
			continue
		}

		queue = append(queue, c.ParentHashes...)
	}

	return false, nil
}
