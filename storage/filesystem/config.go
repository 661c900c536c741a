package filesystem

import (
	"io"
	"os"

	"github.com/go-git/go-billy/v5"

	"github.com/vcslab/gitkit/config"
)

// ConfigStorage reads and writes the repository's "config" file.
type ConfigStorage struct {
	fs billy.Filesystem
}

func newConfigStorage(fs billy.Filesystem) ConfigStorage {
	return ConfigStorage{fs: fs}
}

func (c *ConfigStorage) Config() (*config.Config, error) {
	f, err := c.fs.Open("config")
	if err != nil {
		if os.IsNotExist(err) {
			return config.NewConfig(), nil
		}
		return nil, err
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	cfg := config.NewConfig()
	if err := cfg.Unmarshal(b); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *ConfigStorage) SetConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	b, err := cfg.Marshal()
	if err != nil {
		return err
	}

	f, err := c.fs.Create("config")
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(b)
	return err
}
