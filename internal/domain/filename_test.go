package domain

import "testing"

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain", "Episode One", "Episode One"},
		{"punctuation stripped", "What's New? (Part 2)", "Whats New Part 2"},
		{"keeps dash underscore", "a_b-c", "a_b-c"},
		{"trailing space trimmed", "Show! ", "Show"},
		{"accented letters kept", "Café Münch", "Café Münch"},
		{"cjk letters kept", "第一回: はじめに", "第一回 はじめに"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeTitle(tt.title); got != tt.want {
				t.Errorf("SanitizeTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestEpisodeFilename(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		url    string
		format string
		want   string
	}{
		{
			name:   "default format",
			title:  "The Daily Brief 240115",
			url:    "https://cdn.example.com/audio/ep.mp3?token=abc",
			format: FormatDefault,
			want:   "The Daily Brief 240115.mp3",
		},
		{
			name:   "daily format moves date to front",
			title:  "The Daily Brief 240115",
			url:    "https://cdn.example.com/audio/ep.mp3",
			format: FormatDaily,
			want:   "240115 The Daily Brief.mp3",
		},
		{
			name:   "daily format without date falls back",
			title:  "Interview Special",
			url:    "https://cdn.example.com/audio/ep.mp3",
			format: FormatDaily,
			want:   "Interview Special.mp3",
		},
		{
			name:   "m4a extension preserved",
			title:  "Ep 1",
			url:    "https://cdn.example.com/audio/ep.m4a",
			format: FormatDefault,
			want:   "Ep 1.m4a",
		},
		{
			name:   "unknown extension defaults to mp3",
			title:  "Ep 2",
			url:    "https://cdn.example.com/stream?id=9",
			format: FormatDefault,
			want:   "Ep 2.mp3",
		},
		{
			name:   "title of only punctuation",
			title:  "???",
			url:    "https://cdn.example.com/ep.mp3",
			format: FormatDefault,
			want:   "episode.mp3",
		},
		{
			name:   "non-ascii title keeps its own name",
			title:  "第一回",
			url:    "https://cdn.example.com/1.mp3",
			format: FormatDefault,
			want:   "第一回.mp3",
		},
		{
			name:   "second non-ascii title stays distinct",
			title:  "第二回",
			url:    "https://cdn.example.com/2.mp3",
			format: FormatDefault,
			want:   "第二回.mp3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Episode{Title: tt.title, MediaURL: tt.url}
			if got := EpisodeFilename(&e, tt.format); got != tt.want {
				t.Errorf("EpisodeFilename() = %q, want %q", got, tt.want)
			}
		})
	}
}
