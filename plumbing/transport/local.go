package transport

import (
	"os"

	"github.com/go-git/go-billy/v5/osfs"

	"github.com/vcslab/gitkit/storage"
	"github.com/vcslab/gitkit/storage/filesystem"
)

// Open resolves an Endpoint to the storage.Storer backing the repository
// it points at, detecting bare vs. non-bare layout the same way
// PlainOpen does.
func Open(ep *Endpoint) (storage.Storer, error) {
	fs := osfs.New(ep.Path)

	dot := fs
	if _, err := fs.Stat(".git"); err == nil {
		dot = fs.Dir(".git")
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	return filesystem.NewStorage(dot), nil
}
