package ignore

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RepositoryGitignore(t *testing.T) {
	fs := memfs.New()

	f, err := fs.Create(".gitignore")
	require.NoError(t, err)
	_, err = f.Write([]byte("*.log\n!keep.log\n"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	m, err := Load(fs)
	require.NoError(t, err)

	assert.True(t, m.Match("debug.log", false))
	assert.False(t, m.Match("keep.log", false))
	assert.False(t, m.Match("main.go", false))
}

func TestLoad_NestedDirectoryScoping(t *testing.T) {
	fs := memfs.New()

	require.NoError(t, fs.MkdirAll("vendor", 0o755))
	f, err := fs.Create("vendor/.gitignore")
	require.NoError(t, err)
	_, err = f.Write([]byte("*.a\n"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	m, err := Load(fs)
	require.NoError(t, err)

	assert.True(t, m.Match("vendor/lib.a", false))
	assert.False(t, m.Match("lib.a", false))
}
