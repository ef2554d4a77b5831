package fsys

import (
	"os"
	"path/filepath"
	"testing"

	"svc/internal/errors"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemReader(t *testing.T) {
	mem, r := NewMem()
	require.NoError(t, afero.WriteFile(mem, "dir/a.txt", []byte("A"), 0644))
	require.NoError(t, mem.MkdirAll("only-dir", 0755))

	assert.True(t, r.Exists("dir/a.txt"))
	assert.False(t, r.Exists("missing.txt"))
	assert.False(t, r.Exists("only-dir"))

	data, err := r.ReadFile("dir/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("A"), data)

	_, err = r.ReadFile("missing.txt")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = r.ReadFile("only-dir")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestOSReaderIsRootRelative(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("bee"), 0644))

	r := NewOS(root)
	assert.True(t, r.Exists("b.txt"))

	data, err := r.ReadFile("b.txt")
	require.NoError(t, err)
	assert.Equal(t, "bee", string(data))

	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0755))
	_, err = r.ReadFile("sub")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	require.NoError(t, os.Remove(filepath.Join(root, "b.txt")))
	assert.False(t, r.Exists("b.txt"))
	_, err = r.ReadFile("b.txt")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
