package ytdlp

import (
	"strconv"
	"strings"

	"streambridge/config"
)

const (
	socketTimeoutSeconds = 60
	extractorRetries     = 5
)

// URL shapes that indicate a playlist page rather than a single item.
var playlistMarkers = []string{
	"list=", "/playlist/", "/album/", "/channel/",
	"/user/", "/c/", "/sets/", "/@",
}

// Invocation carries only values that have already passed validation. The
// scoring profile is deliberately absent: format selection happens on our
// side of the pipe, never in the extractor.
type Invocation struct {
	URL         string
	CookiesFile string
	ProxyURL    string
	UserAgent   string
	Settings    config.Settings
}

// BuildArgs assembles the fixed-shape argument vector. Arguments are always
// discrete argv elements handed to exec directly; nothing here ever goes
// through a shell.
func BuildArgs(inv *Invocation) []string {
	args := []string{
		"-J",
		"--no-warnings",
		"--socket-timeout", strconv.Itoa(socketTimeoutSeconds),
		"--extractor-retries", strconv.Itoa(extractorRetries),
		"--ignore-errors",
		"--no-exec",
		"--no-batch-file",
		"--no-download",
	}
	if IsPlaylistURL(inv.URL) || inv.Settings.IsPlaylistContext {
		args = append(args, "--yes-playlist", "--flat-playlist")
	} else {
		// flattening a single-video URL would discard its own format list
		args = append(args, "--no-playlist")
	}
	args = append(args, "--no-check-formats")
	if inv.CookiesFile != "" {
		args = append(args, "--cookies", inv.CookiesFile)
	}
	if inv.ProxyURL != "" {
		args = append(args, "--proxy", inv.ProxyURL)
	}
	if inv.UserAgent != "" {
		args = append(args, "--user-agent", inv.UserAgent)
	}
	return append(args, inv.URL)
}

func IsPlaylistURL(rawURL string) bool {
	lowered := strings.ToLower(rawURL)
	for _, marker := range playlistMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
