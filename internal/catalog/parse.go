package catalog

import (
	"net/http"
	"regexp"
	"strconv"

	"github.com/jm2375/Kirk-Cataloger/internal/musicbrainz"
)

var (
	playlistIDRe = regexp.MustCompile(`list=([a-zA-Z0-9_-]+)`)
	yearRe       = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	albumRe      = regexp.MustCompile(`(?i)\b(?:Album|LP)\b`)
	epRe         = regexp.MustCompile(`(?i)\bEP\b`)
	singleRe     = regexp.MustCompile(`(?i)\bSingle\b`)
)

// ParsePlaylistID extracts the list= token from a playlist URL.
func ParsePlaylistID(rawURL string) (string, error) {
	m := playlistIDRe.FindStringSubmatch(rawURL)
	if m == nil {
		return "", &playlistError{status: http.StatusBadRequest, msg: "Invalid YouTube playlist URL"}
	}
	return m[1], nil
}

// titleYear guesses a release year from the video title. Years outside
// 1900-2024 are treated as noise (catalog numbers, resolutions).
func titleYear(title string) *int {
	m := yearRe.FindString(title)
	if m == "" {
		return nil
	}
	year, err := strconv.Atoi(m)
	if err != nil || year < 1900 || year > 2024 {
		return nil
	}
	return &year
}

// titleType guesses the release type from the video title.
func titleType(title string) string {
	switch {
	case albumRe.MatchString(title):
		return "Album"
	case epRe.MatchString(title):
		return "EP"
	case singleRe.MatchString(title):
		return "Single"
	default:
		return "Unknown"
	}
}

// releaseYear parses the year out of a MusicBrainz release date, which may be
// "2006", "2006-01" or "2006-01-02".
func releaseYear(date string) *int {
	if len(date) < 4 {
		return nil
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return nil
	}
	return &year
}

// formatArtists concatenates credited names with their join phrases in
// order, e.g. "Artist A feat. Artist B".
func formatArtists(credits []musicbrainz.ArtistCredit) string {
	out := ""
	for _, c := range credits {
		out += c.Name + c.JoinPhrase
	}
	return out
}
