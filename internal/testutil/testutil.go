// Package testutil provides shared test helpers used across internal packages.
package testutil

import (
	"os"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// WithTempHome sets HOME to a temporary directory for the duration of the test.
func WithTempHome(t *testing.T) string {
	t.Helper()
	origHome := os.Getenv("HOME")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Cleanup(func() {
		_ = os.Setenv("HOME", origHome)
	})
	return tempHome
}

// WriteFile writes content to path on fsys, creating parent directories,
// and fails the test on error.
func WriteFile(t *testing.T, fsys billy.Filesystem, path, content string) {
	t.Helper()
	if err := util.WriteFile(fsys, path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// MkdirAll creates a directory tree on fsys and fails the test on error.
func MkdirAll(t *testing.T, fsys billy.Filesystem, path string) {
	t.Helper()
	if err := fsys.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}
