package domain

// Filename format constants
const (
	FormatDefault = "default"
	FormatDaily   = "daily"
)

// PodcastSource identifies one configured feed. Created from persisted
// configuration; read-only to the engine.
type PodcastSource struct {
	Name           string
	FeedURL        string
	OutputDir      string
	FilenameFormat string // FormatDefault or FormatDaily
}

// Format returns the filename format, defaulting to FormatDefault
func (s *PodcastSource) Format() string {
	if s.FilenameFormat == "" {
		return FormatDefault
	}
	return s.FilenameFormat
}
