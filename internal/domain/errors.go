package domain

import "errors"

// Common domain errors
var (
	ErrFeedUnreachable = errors.New("feed unreachable")
	ErrNoEpisodes      = errors.New("feed has no usable episodes")
	ErrFilesystem      = errors.New("output directory not writable")
	ErrDirectoryLocked = errors.New("output directory locked by another session")
	ErrHTTPSRequired   = errors.New("plain http refused in https-only mode")
	ErrCancelled       = errors.New("sync cancelled")
)

// SourceError wraps an error with the source it belongs to. Fatal to that
// source's sync, non-fatal to a batch run over multiple sources.
type SourceError struct {
	Source string
	Err    error
}

// Error returns the error message
func (e *SourceError) Error() string {
	if e.Source != "" {
		return e.Source + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError creates a new source-scoped error
func NewSourceError(source string, err error) *SourceError {
	return &SourceError{Source: source, Err: err}
}

// IsSourceError reports whether err is scoped to a single source
func IsSourceError(err error) bool {
	var se *SourceError
	return errors.As(err, &se)
}

// TransferError is the terminal error of a transfer after all retries were
// exhausted. Recorded on the episode result; iteration continues.
type TransferError struct {
	URL      string
	Attempts int
	Err      error
}

// Error returns the error message
func (e *TransferError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *TransferError) Unwrap() error {
	return e.Err
}
