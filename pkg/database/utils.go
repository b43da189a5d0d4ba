package database

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDirectoryExists creates the directory for the database file if it doesn't exist
func EnsureDirectoryExists(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." {
		return nil // Current directory
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	return nil
}
