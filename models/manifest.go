package models

import "streambridge/enums"

// NormalizedFormat is the bounded projection of one scored candidate.
// Every string in it has passed the sanitizer; absent values are omitted
// from the emitted JSON entirely, never serialized as null.
type NormalizedFormat struct {
	URL                string            `json:"url"`
	Protocol           enums.Protocol    `json:"protocol"`
	Ext                string            `json:"ext"`
	Quality            float64           `json:"quality"`
	TBR                *float64          `json:"tbr,omitempty"`
	Filesize           *int64            `json:"filesize,omitempty"`
	VCodec             string            `json:"vcodec"`
	ACodec             string            `json:"acodec"`
	FPS                *float64          `json:"fps,omitempty"`
	Height             *int64            `json:"height,omitempty"`
	Width              *int64            `json:"width,omitempty"`
	ABR                *float64          `json:"abr,omitempty"`
	HTTPHeaders        map[string]string `json:"httpHeaders"`
	Preference         int64             `json:"preference"`
	Language           string            `json:"language,omitempty"`
	LanguagePreference *int64            `json:"languagePreference,omitempty"`
	Cookies            string            `json:"cookies,omitempty"`
	VideoExt           string            `json:"video_ext,omitempty"`
	AudioExt           string            `json:"audio_ext,omitempty"`
	Container          string            `json:"container,omitempty"`
	ManifestURL        string            `json:"manifestUrl,omitempty"`
	FragmentBaseURL    string            `json:"fragment_base_url,omitempty"`
	Fragments          []Fragment        `json:"fragments,omitempty"`
	FragmentCount      int               `json:"fragment_count,omitempty"`
	SkippedFragments   int               `json:"skipped_fragments,omitempty"`
	IsMultiFragment    bool              `json:"is_multi_fragment,omitempty"`
	FilesizeReadable   string            `json:"filesize_readable,omitempty"`
	ChunkSize          *int64            `json:"chunkSize,omitempty"`
}

type Fragment struct {
	Path string `json:"path"`
}

type Subtitle struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Ext      string `json:"ext"`
	Protocol string `json:"protocol,omitempty"`
}

type Thumbnail struct {
	URL        string `json:"url"`
	Height     *int64 `json:"height,omitempty"`
	Width      *int64 `json:"width,omitempty"`
	Preference int    `json:"preference"`
}

// Entry is the manifest for one media item.
type Entry struct {
	ID         string                `json:"id,omitempty"`
	Title      string                `json:"title"`
	WebpageURL string                `json:"webpage_url,omitempty"`
	Duration   *float64              `json:"duration,omitempty"`
	UploadDate string                `json:"upload_date,omitempty"`
	Formats    []*NormalizedFormat   `json:"formats"`
	Subtitles  map[string][]Subtitle `json:"subtitles,omitempty"`
	Thumbnails []Thumbnail           `json:"thumbnails,omitempty"`
}

// PlaylistStub is a lightweight pointer to one playlist member. Formats are
// deliberately not resolved here; the caller follows up per item.
type PlaylistStub struct {
	Type     string   `json:"_type"`
	URL      string   `json:"url"`
	Title    string   `json:"title"`
	Duration *float64 `json:"duration,omitempty"`
	Filesize *int64   `json:"filesize_approx,omitempty"`
}

type PlaylistResult struct {
	Type          string         `json:"_type"`
	ID            string         `json:"id,omitempty"`
	Title         string         `json:"title"`
	WebpageURL    string         `json:"webpage_url,omitempty"`
	Entries       []PlaylistStub `json:"entries"`
	EntryCount    int            `json:"playlist_count"`
	IncludedCount int            `json:"included_count"`
	Thumbnails    []Thumbnail    `json:"thumbnails,omitempty"`
}
