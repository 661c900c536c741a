// Package filesystem is a storage backend that persists repository state
// on disk using the standard Git directory layout (loose objects, loose
// and packed refs, config, index, shallow).
package filesystem

import (
	"github.com/go-git/go-billy/v5"
)

// Storage is a storage.Storer implementation rooted at a Git directory
// (typically ".git").
type Storage struct {
	fs billy.Filesystem

	ObjectStorage
	ReferenceStorage
	ConfigStorage
	IndexStorage
	ShallowStorage
	ModuleStorage
}

// NewStorage returns a new Storage backed by fs, which should be rooted at
// the Git directory itself (not the worktree).
func NewStorage(fs billy.Filesystem) *Storage {
	return &Storage{
		fs:               fs,
		ObjectStorage:    newObjectStorage(fs),
		ReferenceStorage: newReferenceStorage(fs),
		ConfigStorage:    newConfigStorage(fs),
		IndexStorage:     newIndexStorage(fs),
		ShallowStorage:   newShallowStorage(fs),
		ModuleStorage:    newModuleStorage(fs),
	}
}

// Filesystem returns the underlying Git directory filesystem.
func (s *Storage) Filesystem() billy.Filesystem {
	return s.fs
}

// Init lays out an empty Git directory: objects/, refs/heads, refs/tags,
// and a HEAD pointing at the default branch.
func (s *Storage) Init() error {
	for _, dir := range []string{"objects", "refs/heads", "refs/tags"} {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := s.fs.Create("HEAD")
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write([]byte("ref: refs/heads/master\n"))
	return err
}
