// Package diff does a line diff of two strings, using
// github.com/sergi/go-diff's Myers-diff implementation.
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

var dmp = diffmatchpatch.New()

// Do returns the line-level diff between src and dst.
func Do(src, dst string) []diffmatchpatch.Diff {
	srcRunes, dstRunes, lines := dmp.DiffLinesToRunes(src, dst)
	diffs := dmp.DiffMainRunes(srcRunes, dstRunes, false)
	return dmp.DiffCharsToLines(diffs, lines)
}

// Src reconstructs the source string from a diff produced by Do.
func Src(diffs []diffmatchpatch.Diff) string {
	return text(diffs, diffmatchpatch.DiffDelete)
}

// Dst reconstructs the destination string from a diff produced by Do.
func Dst(diffs []diffmatchpatch.Diff) string {
	return text(diffs, diffmatchpatch.DiffInsert)
}

func text(diffs []diffmatchpatch.Diff, skip diffmatchpatch.Operation) string {
	var sb strings.Builder
	for _, d := range diffs {
		if d.Type == skip {
			continue
		}
		sb.WriteString(d.Text)
	}
	return sb.String()
}
