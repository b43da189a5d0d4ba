package filesystem

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnsureDirectoryExists(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name     string
		filePath string
	}{
		{"single directory", filepath.Join(tempDir, "subdir", "test.json")},
		{"nested directories", filepath.Join(tempDir, "level1", "level2", "level3", "test.json")},
		{"path with spaces", filepath.Join(tempDir, "dir with spaces", "out.json")},
		{"extra slashes", tempDir + "//doubled///out.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := EnsureDirectoryExists(tt.filePath); err != nil {
				t.Fatalf("EnsureDirectoryExists(%q) error = %v", tt.filePath, err)
			}
			dir := filepath.Dir(tt.filePath)
			info, err := os.Stat(dir)
			if err != nil {
				t.Fatalf("Stat(%q) error = %v", dir, err)
			}
			if !info.IsDir() {
				t.Fatalf("%q is not a directory", dir)
			}
		})
	}
}

func TestEnsureDirectoryExistsCurrentDir(t *testing.T) {
	// A bare filename needs no directory setup
	if err := EnsureDirectoryExists("output.json"); err != nil {
		t.Fatalf("EnsureDirectoryExists() error = %v", err)
	}
	if _, err := os.Stat("output.json"); err == nil {
		t.Fatal("EnsureDirectoryExists() created the file itself")
	}
}

func TestEnsureDirectoryExistsAlreadyExists(t *testing.T) {
	tempDir := t.TempDir()
	if err := EnsureDirectoryExists(filepath.Join(tempDir, "out.json")); err != nil {
		t.Fatalf("EnsureDirectoryExists() error = %v", err)
	}
}

func TestEnsureDirectoryExistsPermissionDenied(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("Skipping permission test when running as root")
	}

	readOnly := filepath.Join(t.TempDir(), "readonly")
	if err := os.MkdirAll(readOnly, 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.Chmod(readOnly, 0o444); err != nil {
		t.Fatalf("Failed to chmod: %v", err)
	}
	defer os.Chmod(readOnly, 0o755)

	if err := EnsureDirectoryExists(filepath.Join(readOnly, "subdir", "out.json")); err == nil {
		t.Fatal("EnsureDirectoryExists() succeeded under a read-only parent")
	}
}

func TestGetDefaultPath(t *testing.T) {
	path, err := GetDefaultPath("config.yaml")
	if err != nil {
		t.Fatalf("GetDefaultPath() error = %v", err)
	}
	if !filepath.IsAbs(path) {
		t.Errorf("GetDefaultPath() = %q, want absolute path", path)
	}
	if !strings.HasSuffix(path, string(filepath.Separator)+"config.yaml") {
		t.Errorf("GetDefaultPath() = %q, want config.yaml in executable directory", path)
	}
}
