package gitignore

// Matcher evaluates a path against an ordered set of Patterns, later
// patterns taking precedence over earlier ones.
type Matcher interface {
	// Match returns whether path (isDir indicating whether it names a
	// directory) is excluded by the pattern set.
	Match(path []string, isDir bool) bool
}

type matcher struct {
	patterns []Pattern
}

// NewMatcher returns a Matcher evaluating patterns in order, with later
// entries overriding earlier ones exactly like multiple stacked
// .gitignore files (most specific, or most recently declared, wins).
func NewMatcher(patterns []Pattern) Matcher {
	return &matcher{patterns}
}

func (m *matcher) Match(path []string, isDir bool) bool {
	for i := len(m.patterns) - 1; i >= 0; i-- {
		res := m.patterns[i].Match(path, isDir)
		if res != NoMatch {
			return res == Exclude
		}
	}

	return false
}
