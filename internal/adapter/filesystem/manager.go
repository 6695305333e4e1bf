package filesystem

import (
	"fmt"
	"io"
	"os"

	"github.com/sohfix/prx/internal/port"
)

// tempSuffix marks an in-flight download; a file under its final name is
// always a completed transfer
const tempSuffix = ".part"

// Manager handles local filesystem operations for episode artifacts
type Manager struct{}

// Ensure Manager implements port.FileSystem
var _ port.FileSystem = (*Manager)(nil)

// NewManager creates a new filesystem manager
func NewManager() *Manager {
	return &Manager{}
}

// EnsureDir creates the directory (and parents) if it does not exist
func (m *Manager) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	return nil
}

// FileExists checks if a file exists at path
func (m *Manager) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// FileSize returns the observed byte size of the file at path
func (m *Manager) FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Remove deletes the file at path; missing files are not an error
func (m *Manager) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// CreateTemp creates (truncating) the temp file for finalPath
func (m *Manager) CreateTemp(finalPath string) (io.WriteCloser, string, error) {
	tempPath := finalPath + tempSuffix
	f, err := os.Create(tempPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create temp file: %w", err)
	}
	return f, tempPath, nil
}

// Promote renames a completed temp file onto its final path
func (m *Manager) Promote(tempPath, finalPath string) error {
	if err := os.Rename(tempPath, finalPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// RemoveTemp deletes a temporary download file
func (m *Manager) RemoveTemp(tempPath string) error {
	if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete temp file: %w", err)
	}
	return nil
}
