package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountLines(t *testing.T) {
	for _, c := range []struct {
		input    string
		expected int
	}{
		{"", 0},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"a\nb\n", 2},
		{"a\n\n", 2},
	} {
		assert.Equal(t, c.expected, CountLines(c.input), "input=%q", c.input)
	}
}
