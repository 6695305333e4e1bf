package domain

import (
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode"
)

// dailyTitle matches titles ending in a six-digit date, e.g. "Morning Show 240115"
var dailyTitle = regexp.MustCompile(`^(.*)\s+(\d{6})$`)

// SanitizeTitle strips every character that is not a letter, digit, space,
// underscore or dash, and trims trailing whitespace. Letters and digits
// from any script survive, so non-English titles keep distinct filenames.
func SanitizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, c := range title {
		if unicode.IsLetter(c) || unicode.IsDigit(c) ||
			c == ' ' || c == '_' || c == '-' {
			b.WriteRune(c)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// EpisodeFilename builds the on-disk filename for an episode.
// FormatDaily moves a trailing six-digit date to the front so daily shows
// sort chronologically in a directory listing.
func EpisodeFilename(e *Episode, format string) string {
	base := SanitizeTitle(e.Title)
	if format == FormatDaily {
		if m := dailyTitle.FindStringSubmatch(e.Title); m != nil {
			base = strings.TrimSpace(m[2] + " " + SanitizeTitle(m[1]))
		}
	}
	if base == "" {
		base = "episode"
	}
	return base + mediaExtension(e.MediaURL)
}

// mediaExtension derives the file extension from the enclosure URL,
// ignoring any query string. Defaults to .mp3.
func mediaExtension(mediaURL string) string {
	u, err := url.Parse(mediaURL)
	if err != nil {
		return ".mp3"
	}
	ext := strings.ToLower(path.Ext(u.Path))
	switch ext {
	case ".mp3", ".m4a", ".aac", ".ogg", ".opus", ".wav", ".flac":
		return ext
	}
	return ".mp3"
}
