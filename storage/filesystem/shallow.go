package filesystem

import (
	"bufio"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/vcslab/gitkit/plumbing"
)

// ShallowStorage reads and writes the repository's "shallow" file: commits
// whose parents were not fetched because of a depth-limited fetch.
type ShallowStorage struct {
	fs billy.Filesystem
}

func newShallowStorage(fs billy.Filesystem) ShallowStorage {
	return ShallowStorage{fs: fs}
}

func (s *ShallowStorage) Shallow() ([]plumbing.Hash, error) {
	f, err := s.fs.Open("shallow")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var hashes []plumbing.Hash
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		hashes = append(hashes, plumbing.NewHash(line))
	}

	return hashes, scanner.Err()
}

func (s *ShallowStorage) SetShallow(commits []plumbing.Hash) error {
	if len(commits) == 0 {
		err := s.fs.Remove("shallow")
		if err != nil && os.IsNotExist(err) {
			return nil
		}
		return err
	}

	f, err := s.fs.Create("shallow")
	if err != nil {
		return err
	}
	defer f.Close()

	for _, h := range commits {
		if _, err := f.Write([]byte(h.String() + "\n")); err != nil {
			return err
		}
	}

	return nil
}
