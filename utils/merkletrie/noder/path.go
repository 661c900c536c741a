package noder

import "strings"

// Path is a sequence of nodes from some (implicit) ancestor to a
// descendant, innermost node last.
type Path []Noder

// String returns the slash-joined names of the elements in the path.
func (p Path) String() string {
	names := make([]string, len(p))
	for i, e := range p {
		names[i] = e.Name()
	}

	return strings.Join(names, "/")
}

// Name returns the name of the last element in the path, or "" if empty.
func (p Path) Name() string {
	if len(p) == 0 {
		return ""
	}

	return p[len(p)-1].Name()
}

// Hash returns the hash of the last element in the path.
func (p Path) Hash() []byte {
	if len(p) == 0 {
		return nil
	}

	return p[len(p)-1].Hash()
}

// IsDir returns whether the last element in the path is a directory.
func (p Path) IsDir() bool {
	if len(p) == 0 {
		return true
	}

	return p[len(p)-1].IsDir()
}
