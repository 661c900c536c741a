package filesystem

import (
	"os"

	"github.com/go-git/go-billy/v5"

	"github.com/vcslab/gitkit/plumbing/format/index"
)

// IndexStorage reads and writes the repository's staged index file.
type IndexStorage struct {
	fs billy.Filesystem
}

func newIndexStorage(fs billy.Filesystem) IndexStorage {
	return IndexStorage{fs: fs}
}

func (s *IndexStorage) Index() (*index.Index, error) {
	idx := &index.Index{Version: 2}

	f, err := s.fs.Open("index")
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, err
	}
	defer f.Close()

	if err := index.NewDecoder(f).Decode(idx); err != nil {
		return nil, err
	}

	return idx, nil
}

func (s *IndexStorage) SetIndex(idx *index.Index) error {
	tmp, err := s.fs.TempFile(".", "tmp_index_")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if err := index.NewEncoder(tmp).Encode(idx); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return err
	}

	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return err
	}

	return s.fs.Rename(tmpName, "index")
}
