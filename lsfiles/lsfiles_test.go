package lsfiles

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcslab/gitkit/plumbing"
	"github.com/vcslab/gitkit/plumbing/format/index"
)

func TestMerge_CachedRemovedOther(t *testing.T) {
	fs := memfs.New()

	f, err := fs.Create("tracked.txt")
	require.NoError(t, err)
	_, err = f.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f2, err := fs.Create("untracked.txt")
	require.NoError(t, err)
	require.NoError(t, f2.Close())

	idx := &index.Index{Entries: []*index.Entry{
		{Name: "tracked.txt", Hash: plumbing.NewHash("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")},
		{Name: "gone.txt", Hash: plumbing.NewHash("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")},
	}}

	entries, err := Merge(fs, idx, nil)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byPath := map[string]Entry{}
	for _, e := range entries {
		byPath[e.Path] = e
	}

	assert.Equal(t, Cached, byPath["tracked.txt"].Status)
	assert.Equal(t, Removed, byPath["gone.txt"].Status)
	assert.Equal(t, Other, byPath["untracked.txt"].Status)
}
