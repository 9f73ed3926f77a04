package services

import (
	"strings"

	"github.com/desertthunder/playlift/internal/models"
)

// ParseVideoTitle reads "Artist - Title (Official Video)" style video titles. The text is split
// on the first " - "; the title half is cut at the first "(" and then the first "[".
// Titles without the delimiter, or with an empty half, are rejected.
func ParseVideoTitle(raw string) (models.Track, bool) {
	artist, title, ok := strings.Cut(raw, " - ")
	if !ok {
		return models.Track{}, false
	}

	if i := strings.Index(title, "("); i >= 0 {
		title = title[:i]
	}
	if i := strings.Index(title, "["); i >= 0 {
		title = title[:i]
	}

	artist, title = strings.TrimSpace(artist), strings.TrimSpace(title)
	if artist == "" || title == "" {
		return models.Track{}, false
	}
	return models.Track{Artist: artist, Title: title}, true
}
