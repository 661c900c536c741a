package git_test

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	git "github.com/vcslab/gitkit"
	"github.com/vcslab/gitkit/config"
	"github.com/vcslab/gitkit/plumbing"
	"github.com/vcslab/gitkit/plumbing/object"
	"github.com/vcslab/gitkit/storage/memory"
)

// newFixtureRepo creates a non-bare repository on disk with a single commit
// adding a CHANGELOG file, and returns its path. It stands in for the
// network fixtures the upstream examples clone over https://, which this
// module doesn't support (see DESIGN.md: only local transports).
func newFixtureRepo() (string, error) {
	dir, err := os.MkdirTemp("", "fixture")
	if err != nil {
		return "", err
	}

	r, err := git.PlainInit(dir, false)
	if err != nil {
		return "", err
	}

	w, err := r.Worktree()
	if err != nil {
		return "", err
	}

	f, err := w.Filesystem().Create("CHANGELOG")
	if err != nil {
		return "", err
	}
	if _, err := f.Write([]byte("Initial changelog")); err != nil {
		return "", err
	}
	f.Close()

	if _, err := w.Add("CHANGELOG"); err != nil {
		return "", err
	}

	sig := &object.Signature{Name: "fixture", Email: "fixture@example.com"}
	if _, err := w.Commit("initial commit", &git.CommitOptions{Author: sig}); err != nil {
		return "", err
	}

	return dir, nil
}

func ExampleClone() {
	origin, err := newFixtureRepo()
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(origin)

	dir, err := os.MkdirTemp("", "clone-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	_, err = git.PlainClone(dir, false, &git.CloneOptions{URL: origin})
	if err != nil {
		log.Fatal(err)
	}

	changelog, err := os.Open(filepath.Join(dir, "CHANGELOG"))
	if err != nil {
		log.Fatal(err)
	}

	io.Copy(os.Stdout, changelog)
	// Output: Initial changelog
}

func ExampleRepository_References() {
	origin, err := newFixtureRepo()
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(origin)

	dir, err := os.MkdirTemp("", "references-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	r, err := git.PlainClone(dir, false, &git.CloneOptions{URL: origin})
	if err != nil {
		log.Fatal(err)
	}

	refs, _ := r.References()
	refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() == plumbing.HashReference && ref.Name().IsBranch() {
			fmt.Println(ref.Name())
		}

		return nil
	})

	// Output: refs/heads/master
}

func ExampleRepository_CreateRemote() {
	r, _ := git.Init(memory.NewStorage(), nil)

	_, err := r.CreateRemote(&config.RemoteConfig{
		Name: "example",
		URLs: []string{"/path/to/some/repo.git"},
	})
	if err != nil {
		log.Fatal(err)
	}

	list, err := r.Remotes()
	if err != nil {
		log.Fatal(err)
	}

	for _, r := range list {
		fmt.Println(r)
	}

	// Output:
	// example	/path/to/some/repo.git (fetch)
	// example	/path/to/some/repo.git (push)
}
