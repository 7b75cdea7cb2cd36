package tempfiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndRemove(t *testing.T) {
	s := New(nil, t.TempDir())

	f, err := s.Create(".xlsx")
	require.NoError(t, err)
	name := f.Name()
	require.NoError(t, f.Close())
	assert.Equal(t, 1, s.Len())

	s.Remove(name)
	assert.Equal(t, 0, s.Len())
	_, err = os.Stat(name)
	assert.True(t, os.IsNotExist(err))
}

func TestCleanupAll(t *testing.T) {
	s := New(nil, t.TempDir())
	for i := 0; i < 3; i++ {
		_, err := s.Path(".docx")
		require.NoError(t, err)
	}

	assert.Equal(t, 3, s.CleanupAll())
	assert.Equal(t, 0, s.Len())
}

func TestSweepRemovesOnlyPrefixedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultPrefix+"old.docx"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0o644))

	s := New(nil, dir)
	removed, err := s.Sweep(0)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(filepath.Join(dir, "keep.txt"))
	assert.NoError(t, err)
}

func TestSweepMissingDir(t *testing.T) {
	s := New(nil, filepath.Join(t.TempDir(), "absent"))
	removed, err := s.Sweep(0)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}
