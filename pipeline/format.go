package pipeline

import (
	"strings"

	"streambridge/config"
	"streambridge/enums"
	"streambridge/models"
	"streambridge/util"

	"github.com/dustin/go-humanize"
)

const (
	largeFileThreshold     = int64(1) << 30
	multiFragmentThreshold = 100

	maxHeaderKeyLength   = 128
	maxHeaderValueLength = 4096
	maxCodecLength       = 64
	maxExtLength         = 32
	maxLanguageLength    = 32

	defaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	defaultAcceptLanguage = "en-us,en;q=0.5"
)

// SkipReason explains why one candidate was left out of the manifest.
type SkipReason string

const (
	SkipNone      SkipReason = ""
	SkipUnsafeURL SkipReason = "unsafe url"
)

// EntryContext is the per-entry state shared by every format build.
type EntryContext struct {
	WebpageURL string
	UserAgent  string
}

// BuildOptions is the immutable per-run state threaded through the
// pipeline. No scoring or building function reads process globals.
type BuildOptions struct {
	Settings     config.Settings
	Profile      enums.Profile
	UserAgent    string
	CookieString string
}

func ClassifyProtocol(format *models.RawFormat) enums.Protocol {
	switch {
	case format.IsHLS():
		return enums.ProtocolHLS
	case format.IsDASH():
		return enums.ProtocolDASH
	case format.Protocol == "http":
		return enums.ProtocolHTTP
	default:
		return enums.ProtocolHTTPS
	}
}

// inferContainer applies only to segmented streams: the extractor-reported
// container wins, otherwise the extension derives a "<ext>_dash" name.
func inferContainer(format *models.RawFormat, protocol enums.Protocol, ext string) string {
	if protocol != enums.ProtocolDASH {
		return ""
	}
	if format.Container != "" {
		return util.SanitizeText(format.Container, maxExtLength)
	}
	return ext + "_dash"
}

// BuildFormat converts one scored candidate into the bounded output schema.
// The skip reason is explicit so a caller can never forward an unvalidated
// format by accident.
func BuildFormat(format *models.RawFormat, entry EntryContext, index int, opts BuildOptions) (*models.NormalizedFormat, SkipReason) {
	cleanURL := util.SanitizeURL(format.URL)
	if cleanURL == "" {
		return nil, SkipUnsafeURL
	}

	protocol := ClassifyProtocol(format)
	ext := util.SanitizeText(format.Ext, maxExtLength)
	if ext == "" {
		ext = "mp4"
	}
	vcodec := util.SanitizeText(format.VCodec, maxCodecLength)
	if vcodec == "" {
		vcodec = "none"
	}
	acodec := util.SanitizeText(format.ACodec, maxCodecLength)
	if acodec == "" {
		acodec = "none"
	}

	headers := buildHeaders(format, entry, opts)

	out := &models.NormalizedFormat{
		URL:         cleanURL,
		Protocol:    protocol,
		Ext:         ext,
		VCodec:      vcodec,
		ACodec:      acodec,
		HTTPHeaders: headers,
	}

	switch {
	case format.Height > 0:
		out.Quality = float64(format.Height)
	case format.ABR > 0:
		out.Quality = format.ABR
	}
	if format.TBR > 0 {
		tbr := format.TBR
		out.TBR = &tbr
	}
	if format.Filesize > 0 {
		size := format.Filesize
		out.Filesize = &size
	}
	if format.FPS > 0 {
		fps := format.FPS
		out.FPS = &fps
	}
	if format.Height > 0 {
		height := format.Height
		out.Height = &height
	}
	if format.Width > 0 {
		width := format.Width
		out.Width = &width
	}
	if format.ABR > 0 {
		abr := format.ABR
		out.ABR = &abr
	}
	if format.HasPreference {
		out.Preference = int64(format.Preference)
	} else {
		out.Preference = int64(100 - index)
	}

	if format.HasAudio() {
		if lang := util.SanitizeText(format.Language, maxLanguageLength); lang != "" {
			out.Language = lang
			pref := LanguagePreference(format.Language)
			out.LanguagePreference = &pref
		}
	}
	if opts.CookieString != "" {
		out.Cookies = opts.CookieString
	}
	if format.HasVideo() {
		out.VideoExt = ext
	}
	if format.IsAudioOnly() {
		out.AudioExt = ext
	}
	if container := inferContainer(format, protocol, ext); container != "" {
		out.Container = container
	}
	if protocol == enums.ProtocolHLS {
		manifestURL := util.SanitizeURL(format.ManifestURL)
		if manifestURL == "" {
			manifestURL = cleanURL
		}
		out.ManifestURL = manifestURL
	}
	if format.Filesize > largeFileThreshold {
		out.FilesizeReadable = humanize.Bytes(uint64(format.Filesize))
		chunk := opts.Settings.ChunkSize
		out.ChunkSize = &chunk
		headers["Accept-Ranges"] = "bytes"
	}
	attachFragments(out, format, opts.Settings)
	return out, SkipNone
}

// buildHeaders starts from the defaults, prefers the caller's validated
// user agent over the extractor-reported one, then overlays per-format
// headers with each key and value sanitized independently.
func buildHeaders(format *models.RawFormat, entry EntryContext, opts BuildOptions) map[string]string {
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = util.ValidateUserAgent(entry.UserAgent)
	}
	headers := map[string]string{
		"User-Agent":      userAgent,
		"Referer":         entry.WebpageURL,
		"Accept":          defaultAccept,
		"Accept-Language": defaultAcceptLanguage,
	}
	for key, value := range format.HTTPHeaders {
		cleanKey := util.SanitizeText(key, maxHeaderKeyLength)
		if cleanKey == "" {
			continue
		}
		headers[cleanKey] = util.SanitizeText(value, maxHeaderValueLength)
	}
	return headers
}

// attachFragments resolves every fragment to a relative path, re-validating
// each one. Invalid fragments are dropped and counted, never fatal.
func attachFragments(out *models.NormalizedFormat, format *models.RawFormat, settings config.Settings) {
	total := len(format.Fragments)
	if total == 0 {
		return
	}
	baseURL := util.SanitizeURL(format.FragmentBaseURL)

	skipped := 0
	limit := total
	if settings.MaxFragments > 0 && limit > settings.MaxFragments {
		skipped += limit - settings.MaxFragments
		limit = settings.MaxFragments
	}

	fragments := make([]models.Fragment, 0, limit)
	for _, fragment := range format.Fragments[:limit] {
		path := fragment.Path
		if fragment.URL != "" && baseURL != "" && strings.HasPrefix(fragment.URL, baseURL) {
			path = fragment.URL[len(baseURL):]
		} else if fragment.URL != "" && path == "" {
			path = fragment.URL
		}
		cleanPath, err := util.ValidateFragmentPath(path, baseURL)
		if err != nil {
			skipped++
			continue
		}
		fragments = append(fragments, models.Fragment{Path: cleanPath})
	}

	if baseURL != "" {
		out.FragmentBaseURL = baseURL
	}
	out.Fragments = fragments
	out.FragmentCount = len(fragments)
	out.SkippedFragments = skipped
	out.IsMultiFragment = total > multiFragmentThreshold
}
