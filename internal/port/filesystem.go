package port

import "io"

// FileSystem defines the filesystem operations the sync engine needs.
// The filesystem is the source of truth for artifact state; sizes are
// re-read on every call and never cached.
type FileSystem interface {
	// EnsureDir creates the directory (and parents) if it does not exist
	EnsureDir(dir string) error

	// FileExists checks if a file exists at path
	FileExists(path string) bool

	// FileSize returns the observed byte size of the file at path
	FileSize(path string) (int64, error)

	// Remove deletes the file at path; missing files are not an error
	Remove(path string) error

	// CreateTemp creates (truncating) the temporary download file for
	// finalPath and returns a writer plus the temp path
	CreateTemp(finalPath string) (io.WriteCloser, string, error)

	// Promote renames a completed temp file onto its final path
	Promote(tempPath, finalPath string) error

	// RemoveTemp deletes a temporary download file
	RemoveTemp(tempPath string) error
}
