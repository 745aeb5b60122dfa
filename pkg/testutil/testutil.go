// Package testutil provides helpers for building run-directory trees in
// tests, with control over modification times.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/seqops/bamlink/pkg/filesystem"
	"github.com/seqops/bamlink/pkg/types"
)

// NewMemFS returns an in-memory types.FS for tests that do not depend
// on real symlink semantics, plus the underlying afero filesystem.
func NewMemFS() (types.FS, afero.Fs) {
	base := afero.NewMemMapFs()
	return filesystem.NewAferoFS(base), base
}

// MkDirs creates each directory (and parents) on the given filesystem.
func MkDirs(t *testing.T, fsys types.FS, paths ...string) {
	t.Helper()
	for _, path := range paths {
		require.NoError(t, fsys.MkdirAll(path, 0755))
	}
}

// WriteFiles creates each file with placeholder content, creating parent
// directories as needed.
func WriteFiles(t *testing.T, fsys types.FS, paths ...string) {
	t.Helper()
	for _, path := range paths {
		require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, fsys.WriteFile(path, []byte("x"), 0644))
	}
}

// SetMTime sets the modification time of a real filesystem path.
func SetMTime(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

// IsSymlinkTo asserts that path is a symlink pointing at target.
func IsSymlinkTo(t *testing.T, path, target string) {
	t.Helper()
	info, err := os.Lstat(path)
	require.NoError(t, err, "expected symlink at %s", path)
	require.NotZero(t, info.Mode()&os.ModeSymlink, "%s is not a symlink", path)
	dest, err := os.Readlink(path)
	require.NoError(t, err)
	require.Equal(t, target, dest)
}
