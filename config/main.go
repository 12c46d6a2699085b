package config

import (
	"time"

	"github.com/tidwall/gjson"
)

// Settings bounds one pipeline run. There is no other backpressure between
// the extractor subprocess and the manifest, so every limit here is a
// defense against pathological or adversarial extractor output.
type Settings struct {
	MaxOutputSize      int64
	ExtractionTimeout  time.Duration
	MaxFormats         int
	MaxFragments       int
	MaxPlaylistEntries int
	MaxThumbnails      int
	ChunkSize          int64
	IsPlaylistContext  bool
}

func GetDefaultSettings() Settings {
	return Settings{
		MaxOutputSize:      50 * 1024 * 1024,
		ExtractionTimeout:  300 * time.Second,
		MaxFormats:         50,
		MaxFragments:       10000,
		MaxPlaylistEntries: 500,
		MaxThumbnails:      20,
		ChunkSize:          10 * 1024 * 1024,
	}
}

// ParseOverrides merges a caller-supplied JSON object over the defaults.
// Unknown keys are ignored; malformed JSON and non-positive values fall
// back silently, matching the permissive contract of the IPC surface.
func ParseOverrides(raw string, base Settings) Settings {
	merged := base
	if raw == "" || !gjson.Valid(raw) {
		return merged
	}
	doc := gjson.Parse(raw)
	if !doc.IsObject() {
		return merged
	}
	if v := doc.Get("maxOutputSize"); v.Exists() && v.Int() > 0 {
		merged.MaxOutputSize = v.Int()
	}
	if v := doc.Get("extractionTimeout"); v.Exists() && v.Int() > 0 {
		merged.ExtractionTimeout = time.Duration(v.Int()) * time.Second
	}
	if v := doc.Get("maxFormats"); v.Exists() && v.Int() > 0 {
		merged.MaxFormats = int(v.Int())
	}
	if v := doc.Get("maxFragments"); v.Exists() && v.Int() > 0 {
		merged.MaxFragments = int(v.Int())
	}
	if v := doc.Get("maxPlaylistEntries"); v.Exists() && v.Int() > 0 {
		merged.MaxPlaylistEntries = int(v.Int())
	}
	if v := doc.Get("maxThumbnails"); v.Exists() && v.Int() > 0 {
		merged.MaxThumbnails = int(v.Int())
	}
	if v := doc.Get("chunkSize"); v.Exists() && v.Int() > 0 {
		merged.ChunkSize = v.Int()
	}
	if v := doc.Get("isPlaylistContext"); v.IsBool() {
		merged.IsPlaylistContext = v.Bool()
	}
	return merged
}
