package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cyclopcam/detprep/pkg/config"
	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/require"
)

type brokenReader struct{}

func (brokenReader) Read(p []byte) (int, error) {
	return 0, errors.New("broken")
}

func TestStorageFS(t *testing.T) {
	root := filepath.Join(t.TempDir(), "created", "on", "demand")
	s, err := Open(logs.NewTestingLog(t), config.StorageConfig{Filesystem: &config.StorageConfigFS{Root: root}})
	require.NoError(t, err)

	ok, err := s.Exists("reports/a.json")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, WriteFile(s, "reports/a.json", strings.NewReader(`{"a":1}`)))
	ok, err = s.Exists("reports/a.json")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, filepath.Join(root, "reports", "a.json"), s.Location("reports/a.json"))

	b, err := ReadFile(s, "reports/a.json")
	require.NoError(t, err)
	require.Equal(t, `{"a":1}`, string(b))

	// Directories are not files
	ok, err = s.Exists("reports")
	require.NoError(t, err)
	require.False(t, ok)

	// A failed write must not leave anything behind
	require.Error(t, WriteFile(s, "partial.json", brokenReader{}))
	ok, err = s.Exists("partial.json")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = s.WriteFile("../escape.json")
	require.Error(t, err)

	_, err = s.URL("reports/a.json")
	require.ErrorIs(t, err, ErrNoPublicUrl)
}

func TestOpenLocation(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenLocation(logs.NewTestingLog(t), dir)
	require.NoError(t, err)
	fs, ok := s.(*StorageFS)
	require.True(t, ok)
	require.Equal(t, dir, fs.Root)

	_, err = OpenLocation(logs.NewTestingLog(t), "")
	require.Error(t, err)
}

func TestReadLocation(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "instances.json")
	require.NoError(t, os.WriteFile(filename, []byte(`{"images":[]}`), 0644))

	b, err := ReadLocation(logs.NewTestingLog(t), filename)
	require.NoError(t, err)
	require.Equal(t, `{"images":[]}`, string(b))

	_, err = ReadLocation(logs.NewTestingLog(t), filepath.Join(dir, "missing.json"))
	require.ErrorContains(t, err, "missing.json")

	_, err = ReadLocation(logs.NewTestingLog(t), dir+string(filepath.Separator))
	require.Error(t, err)
}
