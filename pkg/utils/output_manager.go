package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputManager lays out per-request working directories, e.g. one per upload,
// under a single base directory
type OutputManager struct {
	BaseDir string
}

// NewOutputManager creates a new output manager
func NewOutputManager(baseDir string) *OutputManager {
	return &OutputManager{BaseDir: baseDir}
}

// EnsureBaseDir creates the base directory if needed
func (om *OutputManager) EnsureBaseDir() error {
	if err := os.MkdirAll(om.BaseDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", om.BaseDir, err)
	}
	return nil
}

// Dir creates and returns the directory owned by id
func (om *OutputManager) Dir(id string) (string, error) {
	if id == "" || filepath.Base(id) != id {
		return "", fmt.Errorf("invalid directory id %q", id)
	}
	dir := filepath.Join(om.BaseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return dir, nil
}

// FilePath returns where a client-supplied file name is stored for id.
// Directory components of name are dropped.
func (om *OutputManager) FilePath(id, name string) (string, error) {
	base := filepath.Base(name)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	dir, err := om.Dir(id)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, base), nil
}

// Remove deletes the directory owned by id and everything in it
func (om *OutputManager) Remove(id string) error {
	if id == "" || filepath.Base(id) != id {
		return fmt.Errorf("invalid directory id %q", id)
	}
	return os.RemoveAll(filepath.Join(om.BaseDir, id))
}

// FileType maps a file name to the table format it holds: "csv", "xlsx" or "unknown"
func FileType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return "csv"
	case ".xlsx":
		return "xlsx"
	}
	return "unknown"
}
