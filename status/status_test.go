package status

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcslab/gitkit/plumbing"
	"github.com/vcslab/gitkit/plumbing/filemode"
	"github.com/vcslab/gitkit/plumbing/format/index"
)

func TestReconcile_UntrackedFile(t *testing.T) {
	fs := memfs.New()
	f, err := fs.Create("new.txt")
	require.NoError(t, err)
	_, err = f.Write([]byte("hi"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	entries, err := Reconcile(fs, &index.Index{}, nil, nil, false, false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new.txt", entries[0].Path)
	assert.Equal(t, IndexUntracked, entries[0].Index)
	assert.Equal(t, RepoUntracked, entries[0].Repo)
}

func TestReconcile_StagedButUncommitted(t *testing.T) {
	fs := memfs.New()
	f, err := fs.Create("staged.txt")
	require.NoError(t, err)
	_, err = f.Write([]byte("content"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	fi, err := fs.Lstat("staged.txt")
	require.NoError(t, err)

	h := plumbing.NewHasher(plumbing.BlobObject, fi.Size())
	_, err = h.Write([]byte("content"))
	require.NoError(t, err)

	idx := &index.Index{Entries: []*index.Entry{{
		Name:       "staged.txt",
		Hash:       h.Sum(),
		Mode:       filemode.Regular,
		Size:       uint32(fi.Size()),
		ModifiedAt: fi.ModTime(),
	}}}

	entries, err := Reconcile(fs, idx, nil, nil, true, false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, IndexAdded, entries[0].Index)
	assert.Equal(t, RepoUntracked, entries[0].Repo)
}

func TestTimestampMatches_SecondResolutionFallback(t *testing.T) {
	whole := time.Unix(100, 0).UnixMilli()
	assert.True(t, timestampMatches(whole, whole+500))
	assert.False(t, timestampMatches(whole, whole+1500))
}
