package filesystem

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/vcslab/gitkit/plumbing"
	"github.com/vcslab/gitkit/plumbing/storer"
)

// ReferenceStorage stores references as loose refs (one file per ref under
// its name, "<hash>\n" or "ref: <target>\n") plus a read path through
// packed-refs for refs that have been packed.
type ReferenceStorage struct {
	fs billy.Filesystem
}

func newReferenceStorage(fs billy.Filesystem) ReferenceStorage {
	return ReferenceStorage{fs: fs}
}

func (r *ReferenceStorage) SetReference(ref *plumbing.Reference) error {
	return r.CheckAndSetReference(ref, nil)
}

func (r *ReferenceStorage) CheckAndSetReference(ref, old *plumbing.Reference) error {
	if ref == nil {
		return nil
	}

	if old != nil {
		current, err := r.Reference(ref.Name())
		if err != nil && err != plumbing.ErrReferenceNotFound {
			return err
		}
		if current != nil && current.Hash() != old.Hash() {
			return fmt.Errorf("reference has changed concurrently: %s", ref.Name())
		}
	}

	path := string(ref.Name())
	if err := r.fs.MkdirAll(r.dir(path), 0o755); err != nil {
		return err
	}

	f, err := r.fs.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintln(f, ref.Strings()[1])
	return err
}

func (r *ReferenceStorage) dir(path string) string {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "."
	}
	return path[:i]
}

// Reference returns the named reference, checking loose refs first and
// falling back to packed-refs.
func (r *ReferenceStorage) Reference(n plumbing.ReferenceName) (*plumbing.Reference, error) {
	ref, err := r.readLoose(string(n))
	if err == nil {
		return ref, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	packed, err := r.readPacked()
	if err != nil {
		return nil, err
	}

	if ref, ok := packed[n]; ok {
		return ref, nil
	}

	return nil, plumbing.ErrReferenceNotFound
}

func (r *ReferenceStorage) readLoose(path string) (*plumbing.Reference, error) {
	f, err := r.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return nil, err
	}

	return plumbing.NewReferenceFromStrings(path, strings.TrimSpace(line)), nil
}

func (r *ReferenceStorage) readPacked() (map[plumbing.ReferenceName]*plumbing.Reference, error) {
	result := make(map[plumbing.ReferenceName]*plumbing.Reference)

	f, err := r.fs.Open("packed-refs")
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "^") {
			continue
		}

		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			continue
		}

		ref := plumbing.NewReferenceFromStrings(parts[1], parts[0])
		result[ref.Name()] = ref
	}

	return result, scanner.Err()
}

// IterReferences returns an iterator for every reference (loose and packed).
func (r *ReferenceStorage) IterReferences() (storer.ReferenceIter, error) {
	seen := make(map[plumbing.ReferenceName]struct{})
	var refs []*plumbing.Reference

	if head, err := r.readLoose("HEAD"); err == nil {
		refs = append(refs, head)
		seen[head.Name()] = struct{}{}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	looseRefs, err := r.walkLoose("refs")
	if err != nil {
		return nil, err
	}
	for _, ref := range looseRefs {
		if _, ok := seen[ref.Name()]; ok {
			continue
		}
		refs = append(refs, ref)
		seen[ref.Name()] = struct{}{}
	}

	packed, err := r.readPacked()
	if err != nil {
		return nil, err
	}
	for name, ref := range packed {
		if _, ok := seen[name]; ok {
			continue
		}
		refs = append(refs, ref)
		seen[name] = struct{}{}
	}

	return storer.NewReferenceSliceIter(refs), nil
}

func (r *ReferenceStorage) walkLoose(dir string) ([]*plumbing.Reference, error) {
	entries, err := r.fs.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var refs []*plumbing.Reference
	for _, e := range entries {
		path := r.fs.Join(dir, e.Name())
		if e.IsDir() {
			sub, err := r.walkLoose(path)
			if err != nil {
				return nil, err
			}
			refs = append(refs, sub...)
			continue
		}

		ref, err := r.readLoose(path)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	return refs, nil
}

// CountLooseRefs returns the number of loose references under refs/.
func (r *ReferenceStorage) CountLooseRefs() (int, error) {
	refs, err := r.walkLoose("refs")
	if err != nil {
		return 0, err
	}
	return len(refs), nil
}

// RemoveReference deletes a loose reference. Packed refs are left as-is;
// a removal of a packed-only ref is a no-op, matching the absence of a
// loose file to delete.
func (r *ReferenceStorage) RemoveReference(n plumbing.ReferenceName) error {
	err := r.fs.Remove(string(n))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
