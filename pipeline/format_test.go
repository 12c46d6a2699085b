package pipeline

import (
	"strings"
	"testing"

	"streambridge/config"
	"streambridge/enums"
	"streambridge/models"
)

func testOptions() BuildOptions {
	return BuildOptions{
		Settings: config.GetDefaultSettings(),
		Profile:  enums.ProfileBalanced,
	}
}

func TestClassifyProtocol(t *testing.T) {
	cases := []struct {
		format *models.RawFormat
		want   enums.Protocol
	}{
		{&models.RawFormat{Protocol: "m3u8"}, enums.ProtocolHLS},
		{&models.RawFormat{Protocol: "m3u8_native"}, enums.ProtocolHLS},
		{&models.RawFormat{Protocol: "http_dash_segments"}, enums.ProtocolDASH},
		{&models.RawFormat{Protocol: "https", Fragments: []models.RawFragment{{Path: "s1"}}}, enums.ProtocolDASH},
		{&models.RawFormat{Protocol: "http"}, enums.ProtocolHTTP},
		{&models.RawFormat{Protocol: "https"}, enums.ProtocolHTTPS},
		{&models.RawFormat{Protocol: "websocket"}, enums.ProtocolHTTPS},
		{&models.RawFormat{}, enums.ProtocolHTTPS},
	}
	for _, tc := range cases {
		if got := ClassifyProtocol(tc.format); got != tc.want {
			t.Fatalf("ClassifyProtocol(%+v) = %q, want %q", tc.format, got, tc.want)
		}
	}
}

func TestBuildFormatSkipsUnsafeURL(t *testing.T) {
	format := &models.RawFormat{URL: "javascript:alert(1)", VCodec: "avc1", ACodec: "mp4a"}
	built, reason := BuildFormat(format, EntryContext{}, 0, testOptions())
	if built != nil || reason != SkipUnsafeURL {
		t.Fatalf("BuildFormat = (%v, %q), want explicit skip", built, reason)
	}
}

func TestBuildFormatContainerInference(t *testing.T) {
	dash := &models.RawFormat{
		URL:      "https://cdn.example/v/init.mp4",
		Protocol: "http_dash_segments",
		Ext:      "m4a",
		ACodec:   "mp4a",
	}
	built, reason := BuildFormat(dash, EntryContext{}, 0, testOptions())
	if reason != SkipNone {
		t.Fatalf("unexpected skip: %q", reason)
	}
	if built.Container != "m4a_dash" {
		t.Fatalf("Container = %q, want m4a_dash", built.Container)
	}

	dash.Container = "webm_dash"
	built, _ = BuildFormat(dash, EntryContext{}, 0, testOptions())
	if built.Container != "webm_dash" {
		t.Fatalf("extractor-reported container not preferred: %q", built.Container)
	}

	direct := &models.RawFormat{URL: "https://cdn.example/a.mp4", Protocol: "https", VCodec: "avc1", Ext: "mp4"}
	built, _ = BuildFormat(direct, EntryContext{}, 0, testOptions())
	if built.Container != "" {
		t.Fatalf("non-DASH format has container %q", built.Container)
	}
}

func TestBuildFormatHLSManifestURL(t *testing.T) {
	hls := &models.RawFormat{
		URL:         "https://cdn.example/v/stream.m3u8",
		Protocol:    "m3u8_native",
		VCodec:      "avc1",
		ACodec:      "mp4a",
		ManifestURL: "https://cdn.example/v/master.m3u8",
	}
	built, _ := BuildFormat(hls, EntryContext{}, 0, testOptions())
	if built.ManifestURL != "https://cdn.example/v/master.m3u8" {
		t.Fatalf("ManifestURL = %q", built.ManifestURL)
	}

	hls.ManifestURL = ""
	built, _ = BuildFormat(hls, EntryContext{}, 0, testOptions())
	if built.ManifestURL != built.URL {
		t.Fatalf("ManifestURL fallback = %q, want the stream URL", built.ManifestURL)
	}
}

func TestBuildFormatHeaders(t *testing.T) {
	format := &models.RawFormat{
		URL:      "https://cdn.example/a.mp4",
		Protocol: "https",
		VCodec:   "avc1",
		ACodec:   "mp4a",
		HTTPHeaders: map[string]string{
			"X-Custom":   "value\x00with\x01controls",
			"\x00\x01":   "dropped entirely",
			"X-Playback": "ok",
		},
	}
	entry := EntryContext{
		WebpageURL: "https://media.example/watch/42",
		UserAgent:  "ExtractorReported/1.0",
	}

	built, _ := BuildFormat(format, entry, 0, testOptions())
	headers := built.HTTPHeaders
	if headers["User-Agent"] != "ExtractorReported/1.0" {
		t.Fatalf("User-Agent = %q", headers["User-Agent"])
	}
	if headers["Referer"] != "https://media.example/watch/42" {
		t.Fatalf("Referer = %q", headers["Referer"])
	}
	if headers["Accept"] == "" || headers["Accept-Language"] == "" {
		t.Fatal("default Accept headers missing")
	}
	if headers["X-Custom"] != "valuewithcontrols" {
		t.Fatalf("X-Custom = %q, want control characters stripped", headers["X-Custom"])
	}
	if headers["X-Playback"] != "ok" {
		t.Fatalf("X-Playback = %q", headers["X-Playback"])
	}
	for key := range headers {
		if strings.ContainsAny(key, "\x00\x01") {
			t.Fatalf("unsanitized header key %q survived", key)
		}
	}

	// caller override beats the extractor-reported agent
	opts := testOptions()
	opts.UserAgent = "Override/2.0"
	built, _ = BuildFormat(format, entry, 0, opts)
	if built.HTTPHeaders["User-Agent"] != "Override/2.0" {
		t.Fatalf("override User-Agent = %q", built.HTTPHeaders["User-Agent"])
	}
}

func TestBuildFormatLargeFileHint(t *testing.T) {
	format := &models.RawFormat{
		URL:      "https://cdn.example/big.mp4",
		Protocol: "https",
		VCodec:   "avc1",
		ACodec:   "mp4a",
		Filesize: 2 << 30, // 2 GiB
	}
	built, _ := BuildFormat(format, EntryContext{}, 0, testOptions())
	if built.FilesizeReadable == "" {
		t.Fatal("large format missing readable size")
	}
	if built.ChunkSize == nil || *built.ChunkSize != config.GetDefaultSettings().ChunkSize {
		t.Fatalf("ChunkSize hint = %v", built.ChunkSize)
	}
	if built.HTTPHeaders["Accept-Ranges"] != "bytes" {
		t.Fatal("Accept-Ranges hint missing")
	}

	small := &models.RawFormat{URL: "https://cdn.example/s.mp4", Protocol: "https", VCodec: "avc1", Filesize: 1000}
	built, _ = BuildFormat(small, EntryContext{}, 0, testOptions())
	if built.FilesizeReadable != "" || built.ChunkSize != nil {
		t.Fatal("small format carries large-file hints")
	}
}

func TestBuildFormatFragmentResolution(t *testing.T) {
	format := &models.RawFormat{
		URL:             "https://cdn.example/v/manifest.mpd",
		Protocol:        "http_dash_segments",
		VCodec:          "avc1",
		FragmentBaseURL: "https://cdn.example/v/",
		Fragments: []models.RawFragment{
			{URL: "https://cdn.example/v/seg-1.m4s"},
			{Path: "seg-2.m4s"},
			{Path: "../../../etc/passwd"},
			{URL: "https://other.example/seg-3.m4s"},
		},
	}
	built, _ := BuildFormat(format, EntryContext{}, 0, testOptions())

	if built.FragmentBaseURL != "https://cdn.example/v/" {
		t.Fatalf("FragmentBaseURL = %q", built.FragmentBaseURL)
	}
	// base-prefixed URL reduces to its relative path
	if built.Fragments[0].Path != "seg-1.m4s" {
		t.Fatalf("fragment[0] = %q", built.Fragments[0].Path)
	}
	if built.Fragments[1].Path != "seg-2.m4s" {
		t.Fatalf("fragment[1] = %q", built.Fragments[1].Path)
	}
	// off-base full URL survives as-is after URL validation
	if built.Fragments[2].Path != "https://other.example/seg-3.m4s" {
		t.Fatalf("fragment[2] = %q", built.Fragments[2].Path)
	}
	if built.FragmentCount != 3 {
		t.Fatalf("FragmentCount = %d, want 3", built.FragmentCount)
	}
	if built.SkippedFragments != 1 {
		t.Fatalf("SkippedFragments = %d, want 1 for the traversal path", built.SkippedFragments)
	}
	for _, fragment := range built.Fragments {
		if strings.Contains(fragment.Path, "..") {
			t.Fatalf("traversal fragment leaked: %q", fragment.Path)
		}
	}
	if built.IsMultiFragment {
		t.Fatal("four fragments flagged as multi-fragment")
	}
}

func TestBuildFormatFragmentCap(t *testing.T) {
	opts := testOptions()
	opts.Settings.MaxFragments = 100

	fragments := make([]models.RawFragment, 150)
	for i := range fragments {
		fragments[i] = models.RawFragment{Path: "seg.m4s"}
	}
	format := &models.RawFormat{
		URL:       "https://cdn.example/v/manifest.mpd",
		Protocol:  "http_dash_segments",
		VCodec:    "avc1",
		Fragments: fragments,
	}
	built, _ := BuildFormat(format, EntryContext{}, 0, opts)
	if built.FragmentCount != 100 {
		t.Fatalf("FragmentCount = %d, want the cap", built.FragmentCount)
	}
	if built.SkippedFragments != 50 {
		t.Fatalf("SkippedFragments = %d, want 50 beyond the cap", built.SkippedFragments)
	}
	if !built.IsMultiFragment {
		t.Fatal("150 fragments not flagged as multi-fragment")
	}
}

func TestBuildFormatOptionalFields(t *testing.T) {
	audio := &models.RawFormat{
		URL:      "https://cdn.example/a.m4a",
		Protocol: "https",
		VCodec:   "none",
		ACodec:   "mp4a.40.2",
		ABR:      128,
		Ext:      "m4a",
		Language: "en-GB",
	}
	opts := testOptions()
	opts.CookieString = "session=abc"

	built, _ := BuildFormat(audio, EntryContext{}, 2, opts)
	if built.AudioExt != "m4a" || built.VideoExt != "" {
		t.Fatalf("ext tags = video %q audio %q", built.VideoExt, built.AudioExt)
	}
	if built.Language != "en-GB" {
		t.Fatalf("Language = %q", built.Language)
	}
	if built.LanguagePreference == nil || *built.LanguagePreference != 95 {
		t.Fatalf("LanguagePreference = %v", built.LanguagePreference)
	}
	if built.Cookies != "session=abc" {
		t.Fatalf("Cookies = %q", built.Cookies)
	}
	if built.Quality != 128 {
		t.Fatalf("Quality = %v, want the abr fallback", built.Quality)
	}
	// no extractor preference: fall back to 100 - position
	if built.Preference != 98 {
		t.Fatalf("Preference = %d, want 98", built.Preference)
	}
	if built.Height != nil || built.Width != nil || built.FPS != nil {
		t.Fatal("absent dimensions materialized")
	}

	video := &models.RawFormat{
		URL:           "https://cdn.example/v.mp4",
		Protocol:      "https",
		VCodec:        "avc1",
		ACodec:        "mp4a",
		Ext:           "mp4",
		Height:        1080,
		Width:         1920,
		FPS:           60,
		TBR:           4500,
		Preference:    -1,
		HasPreference: true,
	}
	built, _ = BuildFormat(video, EntryContext{}, 0, testOptions())
	if built.VideoExt != "mp4" || built.AudioExt != "" {
		t.Fatalf("ext tags = video %q audio %q", built.VideoExt, built.AudioExt)
	}
	if built.Preference != -1 {
		t.Fatalf("extractor preference ignored: %d", built.Preference)
	}
	if built.Quality != 1080 {
		t.Fatalf("Quality = %v, want the height", built.Quality)
	}
}

func TestBuildFormatZeroPreferenceIsExplicit(t *testing.T) {
	// an extractor-reported preference of 0 is a real value, not absence,
	// and must not trigger the positional fallback
	format := &models.RawFormat{
		URL:           "https://cdn.example/v.mp4",
		Protocol:      "https",
		VCodec:        "avc1",
		ACodec:        "mp4a",
		Preference:    0,
		HasPreference: true,
	}
	built, _ := BuildFormat(format, EntryContext{}, 3, testOptions())
	if built.Preference != 0 {
		t.Fatalf("Preference = %d, want the explicit zero", built.Preference)
	}
}
