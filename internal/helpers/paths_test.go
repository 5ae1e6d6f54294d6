package helpers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "bare tilde", path: "~", want: home},
		{name: "tilde prefix", path: "~/Server/Pages", want: filepath.Join(home, "Server/Pages")},
		{name: "absolute untouched", path: "/var/pages", want: "/var/pages"},
		{name: "relative untouched", path: "pages/today", want: "pages/today"},
		{name: "interior tilde untouched", path: "/srv/~backup", want: "/srv/~backup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandHome(tt.path)
			if err != nil {
				t.Fatalf("ExpandHome(%q) error: %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("ExpandHome(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "pagetool.yaml")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if ok, err := FileExists(file); err != nil || !ok {
		t.Errorf("FileExists(%q) = %v, %v; want true", file, ok, err)
	}
	if ok, err := FileExists(dir); err != nil || ok {
		t.Errorf("FileExists(%q) = %v, %v; want false for a directory", dir, ok, err)
	}
	if ok, err := FileExists(filepath.Join(dir, "missing")); err != nil || ok {
		t.Errorf("FileExists(missing) = %v, %v; want false", ok, err)
	}
}

func TestValidatePath(t *testing.T) {
	if err := ValidatePath("incoming/pages"); err != nil {
		t.Errorf("ValidatePath rejected a clean path: %v", err)
	}
	if err := ValidatePath("bad\x00path"); err == nil {
		t.Error("ValidatePath accepted a NUL byte")
	}
	if err := ValidatePath("bad\npath"); err == nil {
		t.Error("ValidatePath accepted a newline")
	}
}
