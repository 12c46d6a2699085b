package models

import (
	"strings"

	"github.com/tidwall/gjson"
)

// RawFormat is one entry of the extractor's format list, lifted out of the
// loosely-typed JSON. It lives only for the duration of one run.
type RawFormat struct {
	URL             string
	Protocol        string
	Ext             string
	FormatNote      string
	Container       string
	ManifestURL     string
	VCodec          string
	ACodec          string
	TBR             float64
	ABR             float64
	FPS             float64
	Height          int64
	Width           int64
	Filesize        int64
	HasDRM          bool
	IsPremium       bool
	Language        string
	Preference      float64
	HasPreference   bool
	FragmentBaseURL string
	Fragments       []RawFragment
	HTTPHeaders     map[string]string

	// attached by one scoring pass; meaningless across passes
	Score float64
}

type RawFragment struct {
	URL      string
	Path     string
	Duration float64
}

func RawFormatFromJSON(doc gjson.Result) *RawFormat {
	format := &RawFormat{
		URL:             doc.Get("url").String(),
		Protocol:        doc.Get("protocol").String(),
		Ext:             doc.Get("ext").String(),
		FormatNote:      doc.Get("format_note").String(),
		Container:       doc.Get("container").String(),
		ManifestURL:     doc.Get("manifest_url").String(),
		VCodec:          doc.Get("vcodec").String(),
		ACodec:          doc.Get("acodec").String(),
		TBR:             doc.Get("tbr").Float(),
		ABR:             doc.Get("abr").Float(),
		FPS:             doc.Get("fps").Float(),
		Height:          doc.Get("height").Int(),
		Width:           doc.Get("width").Int(),
		HasDRM:          doc.Get("has_drm").Bool(),
		IsPremium:       doc.Get("is_premium").Bool(),
		Language:        doc.Get("language").String(),
		FragmentBaseURL: doc.Get("fragment_base_url").String(),
	}
	if size := doc.Get("filesize"); size.Exists() && size.Int() > 0 {
		format.Filesize = size.Int()
	} else if size := doc.Get("filesize_approx"); size.Exists() && size.Int() > 0 {
		format.Filesize = size.Int()
	}
	if pref := doc.Get("preference"); pref.Exists() && pref.Type == gjson.Number {
		format.Preference = pref.Float()
		format.HasPreference = true
	}
	if fragments := doc.Get("fragments"); fragments.IsArray() {
		for _, frag := range fragments.Array() {
			format.Fragments = append(format.Fragments, RawFragment{
				URL:      frag.Get("url").String(),
				Path:     frag.Get("path").String(),
				Duration: frag.Get("duration").Float(),
			})
		}
	}
	if headers := doc.Get("http_headers"); headers.IsObject() {
		format.HTTPHeaders = make(map[string]string)
		headers.ForEach(func(key, value gjson.Result) bool {
			if value.Type == gjson.String {
				format.HTTPHeaders[key.String()] = value.String()
			}
			return true
		})
	}
	return format
}

func (format *RawFormat) HasVideo() bool {
	return format.VCodec != "" && format.VCodec != "none"
}

func (format *RawFormat) HasAudio() bool {
	return format.ACodec != "" && format.ACodec != "none"
}

func (format *RawFormat) IsAudioOnly() bool {
	return format.HasAudio() && !format.HasVideo()
}

// IsSegmented reports delivery via many fragments (DASH or HLS) rather than
// one continuous file.
func (format *RawFormat) IsSegmented() bool {
	return format.IsDASH() || format.IsHLS()
}

func (format *RawFormat) IsDASH() bool {
	return strings.HasPrefix(format.Protocol, "http_dash") || len(format.Fragments) > 0
}

func (format *RawFormat) IsHLS() bool {
	return strings.HasPrefix(format.Protocol, "m3u8")
}
