package config

import (
	"bytes"
	"errors"
	"strings"

	format "github.com/vcslab/gitkit/plumbing/format/config"
)

var (
	// ErrModuleEmptyURL is returned when a module has an empty URL.
	ErrModuleEmptyURL = errors.New("module config: empty URL")
	// ErrModuleEmptyPath is returned when a module has an empty path.
	ErrModuleEmptyPath = errors.New("module config: empty path")
	// ErrModuleBadPath is returned when a module's path contains a ".."
	// component or is absolute.
	ErrModuleBadPath = errors.New("module config: invalid path")
)

// DefaultModuleBranch is the branch assumed for a submodule when none is
// set.
const DefaultModuleBranch = "master"

const (
	pathKey   = "path"
	branchKey = "branch"
	ignoreKey = "ignore"
)

// Modules defines the modules' properties read from a .gitmodules file.
type Modules struct {
	// Submodules list of repository submodules, the key of the map is the
	// name of the submodule, should equal to Submodule.Name.
	Submodules map[string]*Submodule

	raw *format.Config
}

// NewModules creates a new empty Modules.
func NewModules() *Modules {
	return &Modules{
		Submodules: make(map[string]*Submodule),
		raw:        format.New(),
	}
}

// Submodule defines a submodule.
// https://www.kernel.org/pub/software/scm/git/docs/gitmodules.html
type Submodule struct {
	// Name defines the name of the submodule, should match the name of
	// the subsection it was read from.
	Name string
	// Path defines the path, relative to the top-level directory of the
	// Git working tree.
	Path string
	// URL defines a URL from which the submodule repository can be
	// cloned.
	URL string
	// Branch is a remote branch name for tracking updates in the
	// upstream submodule.
	Branch string
	// Ignore is carried through unmodified for round-tripping; gitkit
	// does not act on it (submodule content handling is out of scope).
	Ignore string

	raw *format.Subsection
}

// Validate validates the fields, checking the path neither escapes the
// worktree it is meant to live under nor is absolute.
func (m *Submodule) Validate() error {
	if m.Path == "" {
		return ErrModuleEmptyPath
	}

	if m.URL == "" {
		return ErrModuleEmptyURL
	}

	if isBadSubmodulePath(m.Path) {
		return ErrModuleBadPath
	}

	return nil
}

// isBadSubmodulePath rejects any path with a ".." component, wherever it
// falls, or an absolute path - matching git's own defense against a
// .gitmodules entry escaping the worktree.
func isBadSubmodulePath(path string) bool {
	if strings.HasPrefix(path, "/") {
		return true
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return true
		}
	}

	return false
}

func (m *Submodule) unmarshal(s *format.Subsection) {
	m.raw = s

	m.Name = s.Name
	m.Path = s.Options.Get(pathKey)
	m.URL = s.Options.Get(urlKey)
	m.Branch = s.Options.Get(branchKey)
	m.Ignore = s.Options.Get(ignoreKey)
}

func (m *Submodule) marshal() *format.Subsection {
	if m.raw == nil {
		m.raw = &format.Subsection{}
	}

	m.raw.Name = m.Name
	if m.raw.Name == "" {
		m.raw.Name = m.Path
	}

	m.raw.SetOption(pathKey, m.Path)
	m.raw.SetOption(urlKey, m.URL)

	if m.Branch == "" {
		m.raw.RemoveOption(branchKey)
	} else {
		m.raw.SetOption(branchKey, m.Branch)
	}

	if m.Ignore == "" {
		m.raw.RemoveOption(ignoreKey)
	} else {
		m.raw.SetOption(ignoreKey, m.Ignore)
	}

	return m.raw
}

// Unmarshal parses a .gitmodules file and stores it. Subsections whose
// path is invalid are silently skipped.
func (m *Modules) Unmarshal(b []byte) error {
	r := bytes.NewBuffer(b)
	d := format.NewDecoder(r)

	raw := format.New()
	if err := d.Decode(raw); err != nil {
		return err
	}

	m.raw = raw
	m.Submodules = make(map[string]*Submodule)

	s := raw.Section(submoduleSection)
	for _, sub := range s.Subsections {
		sm := &Submodule{}
		sm.unmarshal(sub)

		if sm.Validate() == ErrModuleBadPath {
			continue
		}

		m.Submodules[sm.Name] = sm
	}

	return nil
}

// Marshal returns the .gitmodules encoding of m.
func (m *Modules) Marshal() ([]byte, error) {
	if m.raw == nil {
		m.raw = format.New()
	}

	s := m.raw.Section(submoduleSection)
	s.Subsections = make(format.Subsections, 0, len(m.Submodules))
	for _, sm := range m.Submodules {
		s.Subsections = append(s.Subsections, sm.marshal())
	}

	buf := bytes.NewBuffer(nil)
	if err := format.NewEncoder(buf).Encode(m.raw); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
