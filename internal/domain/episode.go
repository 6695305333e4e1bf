package domain

import "time"

// Episode represents one downloadable media item described by a feed entry.
// Episodes are immutable once parsed from a feed.
type Episode struct {
	Title        string
	MediaURL     string
	DeclaredSize int64      // byte length reported by the feed; 0 means unknown
	PublishedAt  *time.Time // nil when the feed carries no usable date
}

// HasDeclaredSize returns true if the feed reported a usable byte length
func (e *Episode) HasDeclaredSize() bool {
	return e.DeclaredSize > 0
}

// FileState is the classifier's verdict for one local artifact
type FileState int

const (
	// StateMissing means no file exists at the expected path
	StateMissing FileState = iota
	// StateComplete means the local file is present and not provably incomplete
	StateComplete
	// StateDamaged means the local file is sufficiently smaller than the
	// remote-reported size to be considered incomplete
	StateDamaged
)

// String returns the state name
func (s FileState) String() string {
	switch s {
	case StateMissing:
		return "missing"
	case StateComplete:
		return "complete"
	case StateDamaged:
		return "damaged"
	default:
		return "unknown"
	}
}
