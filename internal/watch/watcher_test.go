package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestWatcherReportsTrackedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("A"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("B"), 0644))

	w, err := New(dir, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Track("a.txt"))
	assert.Empty(t, w.Touched())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("BB"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("AA"), 0644))

	require.Eventually(t, func() bool {
		return len(w.Touched()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"a.txt"}, w.Touched())

	w.Reset()
	assert.Empty(t, w.Touched())

	w.Untrack("a.txt")
	require.NoError(t, os.Remove(filepath.Join(dir, "a.txt")))
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, w.Touched())
}

func TestWatcherNestedDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0755))
	name := filepath.Join("src", "main.c")
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("int main;"), 0644))

	w, err := New(dir, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Track(name))
	require.NoError(t, os.Remove(filepath.Join(dir, name)))

	require.Eventually(t, func() bool {
		touched := w.Touched()
		return len(touched) == 1 && touched[0] == name
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTrackMissingDirectory(t *testing.T) {
	w, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	defer w.Close()

	assert.Error(t, w.Track(filepath.Join("nope", "x.txt")))
}

func TestShouldIgnore(t *testing.T) {
	assert.True(t, ShouldIgnore(""))
	assert.True(t, ShouldIgnore(filepath.Join(".git", "HEAD")))
	assert.True(t, ShouldIgnore(filepath.Join("web", "node_modules", "x.js")))
	assert.False(t, ShouldIgnore("a.txt"))
	assert.False(t, ShouldIgnore(filepath.Join("src", "main.go")))
}
