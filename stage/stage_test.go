package stage

import (
	"io"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcslab/gitkit/plumbing"
	"github.com/vcslab/gitkit/plumbing/format/index"
)

type fakeWriter struct{ written map[string][]byte }

func (w *fakeWriter) WriteBlob(r io.Reader, size int64) (plumbing.Hash, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	h := plumbing.NewHasher(plumbing.BlobObject, size)
	h.Write(b)
	sum := h.Sum()
	if w.written == nil {
		w.written = map[string][]byte{}
	}
	w.written[sum.String()] = b
	return sum, nil
}

func TestAdd_NewFile(t *testing.T) {
	fs := memfs.New()
	f, err := fs.Create("a.txt")
	require.NoError(t, err)
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	idx := &index.Index{}
	bw := &fakeWriter{}

	changed, err := Add(fs, idx, bw, nil, "", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, changed)
	require.Len(t, idx.Entries, 1)
	assert.Equal(t, "a.txt", idx.Entries[0].Name)
	assert.Equal(t, uint32(5), idx.Entries[0].Size)
}

func TestAdd_IdempotentOnUnchangedFile(t *testing.T) {
	fs := memfs.New()
	f, err := fs.Create("a.txt")
	require.NoError(t, err)
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	idx := &index.Index{}
	bw := &fakeWriter{}

	_, err = Add(fs, idx, bw, nil, "", false)
	require.NoError(t, err)

	changed, err := Add(fs, idx, bw, nil, "", false)
	require.NoError(t, err)
	assert.Empty(t, changed)
	require.Len(t, idx.Entries, 1)
}

func TestAdd_RemovalWhenAlsoRemove(t *testing.T) {
	fs := memfs.New()
	f, err := fs.Create("a.txt")
	require.NoError(t, err)
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	idx := &index.Index{}
	bw := &fakeWriter{}
	_, err = Add(fs, idx, bw, nil, "", false)
	require.NoError(t, err)

	require.NoError(t, fs.Remove("a.txt"))

	_, err = Add(fs, idx, bw, nil, "", true)
	require.NoError(t, err)
	assert.Empty(t, idx.Entries)
}

func TestAdd_KeepsEntryWhenNotAlsoRemove(t *testing.T) {
	fs := memfs.New()
	f, err := fs.Create("a.txt")
	require.NoError(t, err)
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	idx := &index.Index{}
	bw := &fakeWriter{}
	_, err = Add(fs, idx, bw, nil, "", false)
	require.NoError(t, err)

	require.NoError(t, fs.Remove("a.txt"))

	_, err = Add(fs, idx, bw, nil, "", false)
	require.NoError(t, err)
	require.Len(t, idx.Entries, 1)
}
