package filesystem

import (
	"github.com/go-git/go-billy/v5"

	"github.com/vcslab/gitkit/storage"
)

// ModuleStorage gives each submodule its own Storage rooted at
// modules/<name> inside the parent's .git directory.
type ModuleStorage struct {
	fs billy.Filesystem
}

func newModuleStorage(fs billy.Filesystem) ModuleStorage {
	return ModuleStorage{fs: fs}
}

func (s *ModuleStorage) Module(name string) (storage.Storer, error) {
	fs, err := s.fs.Chroot(s.fs.Join("modules", name))
	if err != nil {
		return nil, err
	}

	return NewStorage(fs), nil
}
