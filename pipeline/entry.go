package pipeline

import (
	"sort"
	"strings"

	"streambridge/models"
	"streambridge/util"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	maxTitleLength        = 500
	maxIDLength           = 256
	maxUploadDateLength   = 16
	maxSubtitleNameLength = 128
	maxSubtitleExtLength  = 16
)

// BuildEntry runs the full scoring/build pipeline for one media item.
// Formats are ordered by descending score and deduplicated by URL.
func BuildEntry(doc gjson.Result, opts BuildOptions) *models.Entry {
	rawFormats := make([]*models.RawFormat, 0)
	for _, formatDoc := range doc.Get("formats").Array() {
		rawFormats = append(rawFormats, models.RawFormatFromJSON(formatDoc))
	}
	selected := SelectFormats(rawFormats, opts.Profile, opts.Settings)

	entryCtx := EntryContext{
		WebpageURL: util.SanitizeURL(doc.Get("webpage_url").String()),
		UserAgent:  doc.Get("http_headers.User-Agent").String(),
	}

	entry := &models.Entry{
		ID:         util.SanitizeText(doc.Get("id").String(), maxIDLength),
		Title:      titleOrDefault(doc.Get("title").String(), "Media"),
		WebpageURL: entryCtx.WebpageURL,
		UploadDate: util.SanitizeText(doc.Get("upload_date").String(), maxUploadDateLength),
		Formats:    make([]*models.NormalizedFormat, 0, len(selected)),
	}
	if duration := doc.Get("duration"); duration.Float() > 0 {
		value := duration.Float()
		entry.Duration = &value
	}

	seen := make(map[string]struct{}, len(selected))
	skipped := 0
	for _, format := range selected {
		built, reason := BuildFormat(format, entryCtx, len(entry.Formats), opts)
		if reason != SkipNone {
			skipped++
			continue
		}
		if _, dup := seen[built.URL]; dup {
			continue
		}
		seen[built.URL] = struct{}{}
		entry.Formats = append(entry.Formats, built)
	}
	if skipped > 0 {
		zap.S().Debugf("skipped %d formats during build", skipped)
	}

	entry.Subtitles = buildSubtitles(doc)
	entry.Thumbnails = BuildThumbnails(doc.Get("thumbnails"), opts.Settings.MaxThumbnails)
	return entry
}

// buildSubtitles keeps one descriptor per language, preferring uploaded
// subtitles over automatic captions and vtt over srt over anything else.
// Unparseable entries are skipped, never fatal.
func buildSubtitles(doc gjson.Result) map[string][]models.Subtitle {
	subs := doc.Get("subtitles")
	if !subs.IsObject() || len(subs.Map()) == 0 {
		subs = doc.Get("automatic_captions")
	}
	if !subs.IsObject() {
		return nil
	}

	result := make(map[string][]models.Subtitle)
	subs.ForEach(func(lang, candidates gjson.Result) bool {
		if !candidates.IsArray() {
			return true
		}
		key := util.SanitizeText(lang.String(), maxLanguageLength)
		if key == "" {
			return true
		}
		if subtitle := pickSubtitle(key, candidates.Array()); subtitle != nil {
			result[key] = []models.Subtitle{*subtitle}
		}
		return true
	})
	if len(result) == 0 {
		return nil
	}
	return result
}

func pickSubtitle(lang string, candidates []gjson.Result) *models.Subtitle {
	bestRank := -1
	var best gjson.Result
	for _, candidate := range candidates {
		rank := 0
		switch candidate.Get("ext").String() {
		case "vtt":
			rank = 2
		case "srt":
			rank = 1
		}
		if rank > bestRank {
			bestRank = rank
			best = candidate
		}
	}
	if bestRank < 0 {
		return nil
	}

	cleanURL := util.SanitizeURL(best.Get("url").String())
	if cleanURL == "" {
		return nil
	}
	name := util.SanitizeText(best.Get("name").String(), maxSubtitleNameLength)
	if name == "" {
		name = strings.ToUpper(lang)
	}
	ext := util.SanitizeText(best.Get("ext").String(), maxSubtitleExtLength)
	if ext == "" {
		ext = "vtt"
	}
	subtitle := &models.Subtitle{
		Name: name,
		URL:  cleanURL,
		Ext:  ext,
	}
	if strings.HasPrefix(best.Get("protocol").String(), "m3u8") {
		subtitle.Protocol = "m3u8_native"
	}
	return subtitle
}

// BuildThumbnails emits thumbnails ordered ascending by source resolution,
// each tagged with its position as the integer preference. When the cap
// cuts the list, the largest thumbnails are the ones kept.
func BuildThumbnails(list gjson.Result, limit int) []models.Thumbnail {
	if !list.IsArray() {
		return nil
	}
	type rawThumbnail struct {
		url           string
		height, width int64
	}
	thumbnails := make([]rawThumbnail, 0)
	for _, thumbDoc := range list.Array() {
		cleanURL := util.SanitizeURL(thumbDoc.Get("url").String())
		if cleanURL == "" {
			continue
		}
		thumbnails = append(thumbnails, rawThumbnail{
			url:    cleanURL,
			height: thumbDoc.Get("height").Int(),
			width:  thumbDoc.Get("width").Int(),
		})
	}
	sort.SliceStable(thumbnails, func(i, j int) bool {
		return thumbnails[i].height*thumbnails[i].width < thumbnails[j].height*thumbnails[j].width
	})
	if limit > 0 && len(thumbnails) > limit {
		thumbnails = thumbnails[len(thumbnails)-limit:]
	}

	result := make([]models.Thumbnail, 0, len(thumbnails))
	for i, thumbnail := range thumbnails {
		out := models.Thumbnail{URL: thumbnail.url, Preference: i}
		if thumbnail.height > 0 {
			height := thumbnail.height
			out.Height = &height
		}
		if thumbnail.width > 0 {
			width := thumbnail.width
			out.Width = &width
		}
		result = append(result, out)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func titleOrDefault(raw string, fallback string) string {
	title := util.SanitizeText(raw, maxTitleLength)
	if title == "" {
		return fallback
	}
	return title
}
