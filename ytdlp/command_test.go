package ytdlp

import (
	"slices"
	"testing"

	"streambridge/config"
)

func TestBuildArgsSingleVideoShape(t *testing.T) {
	inv := &Invocation{
		URL:      "https://www.youtube.com/watch?v=jNQXAC9IVRw",
		Settings: config.GetDefaultSettings(),
	}
	want := []string{
		"-J",
		"--no-warnings",
		"--socket-timeout", "60",
		"--extractor-retries", "5",
		"--ignore-errors",
		"--no-exec",
		"--no-batch-file",
		"--no-download",
		"--no-playlist",
		"--no-check-formats",
		"https://www.youtube.com/watch?v=jNQXAC9IVRw",
	}
	got := BuildArgs(inv)
	if !slices.Equal(got, want) {
		t.Fatalf("BuildArgs = %v, want %v", got, want)
	}
}

func TestBuildArgsPlaylistFlattening(t *testing.T) {
	inv := &Invocation{
		URL:      "https://www.youtube.com/playlist?list=PL0123456789",
		Settings: config.GetDefaultSettings(),
	}
	got := BuildArgs(inv)
	if !slices.Contains(got, "--yes-playlist") || !slices.Contains(got, "--flat-playlist") {
		t.Fatalf("playlist URL did not enable flattening: %v", got)
	}
	if slices.Contains(got, "--no-playlist") {
		t.Fatalf("playlist URL still forces single mode: %v", got)
	}
}

func TestBuildArgsPlaylistContextOverride(t *testing.T) {
	settings := config.GetDefaultSettings()
	settings.IsPlaylistContext = true
	inv := &Invocation{
		URL:      "https://media.example/watch/42",
		Settings: settings,
	}
	if got := BuildArgs(inv); !slices.Contains(got, "--flat-playlist") {
		t.Fatalf("playlist context ignored: %v", got)
	}
}

func TestBuildArgsOptionalFlags(t *testing.T) {
	inv := &Invocation{
		URL:         "https://media.example/watch/42",
		CookiesFile: "/tmp/cookies.txt",
		ProxyURL:    "socks5://proxy.example.net:1080",
		UserAgent:   "Mozilla/5.0 (X11; Linux x86_64)",
		Settings:    config.GetDefaultSettings(),
	}
	got := BuildArgs(inv)

	pairs := map[string]string{
		"--cookies":    "/tmp/cookies.txt",
		"--proxy":      "socks5://proxy.example.net:1080",
		"--user-agent": "Mozilla/5.0 (X11; Linux x86_64)",
	}
	for flag, value := range pairs {
		i := slices.Index(got, flag)
		if i < 0 || i+1 >= len(got) {
			t.Fatalf("flag %s missing from %v", flag, got)
		}
		// values stay discrete argv elements, never joined or quoted
		if got[i+1] != value {
			t.Fatalf("flag %s carries %q, want %q", flag, got[i+1], value)
		}
	}
	if got[len(got)-1] != inv.URL {
		t.Fatalf("URL is not the final argument: %v", got)
	}
}

func TestIsPlaylistURL(t *testing.T) {
	playlist := []string{
		"https://www.youtube.com/playlist?list=PLx",
		"https://music.example/album/123",
		"https://www.youtube.com/channel/UCx",
		"https://soundcloud.com/artist/sets/mix",
		"https://www.tiktok.com/@someone",
		"https://video.example/user/alice",
	}
	for _, raw := range playlist {
		if !IsPlaylistURL(raw) {
			t.Fatalf("IsPlaylistURL(%q) = false", raw)
		}
	}
	single := []string{
		"https://www.youtube.com/watch?v=jNQXAC9IVRw",
		"https://vimeo.com/76979871",
	}
	for _, raw := range single {
		if IsPlaylistURL(raw) {
			t.Fatalf("IsPlaylistURL(%q) = true", raw)
		}
	}
}
