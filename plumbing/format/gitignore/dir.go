package gitignore

import (
	"bytes"
	"io"
	"os"
	"os/user"
	"strings"

	"github.com/go-git/go-billy/v5"

	format "github.com/vcslab/gitkit/plumbing/format/config"
)

const (
	gitDir        = ".git"
	gitignoreFile = ".gitignore"
	gitconfigFile = ".gitconfig"
	systemFile    = "/etc/gitconfig"

	excludesOption = "excludesfile"
)

// ReadPatterns reads the .gitignore patterns from a repository, starting
// at path (nil for the root) and descending into every subdirectory that
// isn't itself already excluded by a pattern collected so far, mirroring
// git's refusal to look inside an ignored directory. The ".git" entry is
// always skipped, and ".git/info/exclude" is read once, from the root
// call only.
func ReadPatterns(fs billy.Filesystem, path []string) ([]Pattern, error) {
	ps, err := readIgnoreFile(fs, path, gitignoreFile)
	if err != nil {
		return nil, err
	}

	if len(path) == 0 {
		excludes, err := readPatternsFile(fs, []string{gitDir, "info", "exclude"}, nil)
		if err != nil {
			return nil, err
		}
		ps = append(ps, excludes...)
	}

	fis, err := fs.ReadDir(fs.Join(path...))
	if err != nil {
		return ps, nil
	}

	for _, fi := range fis {
		if !fi.IsDir() || fi.Name() == gitDir {
			continue
		}

		subPath := make([]string, len(path), len(path)+1)
		copy(subPath, path)
		subPath = append(subPath, fi.Name())

		if NewMatcher(ps).Match(subPath, true) {
			continue
		}

		subPs, err := ReadPatterns(fs, subPath)
		if err != nil {
			return nil, err
		}

		ps = append(ps, subPs...)
	}

	return ps, nil
}

func readIgnoreFile(fs billy.Filesystem, path []string, name string) ([]Pattern, error) {
	filePath := make([]string, len(path), len(path)+1)
	copy(filePath, path)
	filePath = append(filePath, name)

	return readPatternsFile(fs, filePath, path)
}

func readPatternsFile(fs billy.Filesystem, filePath, domain []string) ([]Pattern, error) {
	f, err := fs.Open(fs.Join(filePath...))
	if err != nil {
		return nil, nil
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return parsePatternLines(b, domain), nil
}

func parsePatternLines(b []byte, domain []string) []Pattern {
	var ps []Pattern

	for _, s := range strings.Split(string(b), "\n") {
		s = strings.TrimRight(s, "\r")
		if strings.TrimSpace(s) == "" || strings.HasPrefix(s, "#") {
			continue
		}

		ps = append(ps, ParsePattern(s, domain))
	}

	return ps
}

// LoadGlobalPatterns loads the patterns named by core.excludesfile in the
// current user's ~/.gitconfig, if both exist.
func LoadGlobalPatterns(fs billy.Filesystem) ([]Pattern, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, nil
	}

	f, err := fs.Open(fs.Join(home, gitconfigFile))
	if err != nil {
		return nil, nil
	}
	defer f.Close()

	excludesFile, err := readExcludesFileOption(f)
	if err != nil || excludesFile == "" {
		return nil, err
	}

	return loadPatternsFile(fs, resolveHomePath(fs, excludesFile, home))
}

// LoadSystemPatterns loads the patterns named by core.excludesfile in
// /etc/gitconfig, if both exist.
func LoadSystemPatterns(fs billy.Filesystem) ([]Pattern, error) {
	f, err := fs.Open(systemFile)
	if err != nil {
		return nil, nil
	}
	defer f.Close()

	excludesFile, err := readExcludesFileOption(f)
	if err != nil || excludesFile == "" {
		return nil, nil
	}

	return loadPatternsFile(fs, excludesFile)
}

func readExcludesFileOption(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	cfg := format.New()
	if err := format.NewDecoder(bytes.NewReader(b)).Decode(cfg); err != nil {
		return "", err
	}

	return cfg.Section("core").Option(excludesOption), nil
}

func loadPatternsFile(fs billy.Filesystem, path string) ([]Pattern, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, nil
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return parsePatternLines(b, nil), nil
}

// resolveHomePath expands a leading "~" or "~user" in p to the matching
// home directory. Unknown users fall back to home, matching the common
// case of a path that refers to the current user under a different name.
func resolveHomePath(fs billy.Filesystem, p, home string) string {
	if p == "~" {
		return home
	}

	if strings.HasPrefix(p, "~/") {
		return fs.Join(home, p[2:])
	}

	if !strings.HasPrefix(p, "~") {
		return p
	}

	rest := p[1:]
	username, tail := rest, ""
	if idx := strings.Index(rest, "/"); idx >= 0 {
		username, tail = rest[:idx], rest[idx+1:]
	}

	if u, err := user.Lookup(username); err == nil {
		return fs.Join(u.HomeDir, tail)
	}

	return fs.Join(home, tail)
}
