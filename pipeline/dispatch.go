package pipeline

import (
	"streambridge/models"
	"streambridge/util"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Dispatch branches once per invocation. Playlists become capped lightweight
// stubs; resolving formats for every member is deferred to per-item
// follow-up calls by the caller. Anything else runs the single-entry
// pipeline.
func Dispatch(doc gjson.Result, opts BuildOptions) any {
	if doc.Get("_type").String() == "playlist" {
		if entries := doc.Get("entries"); entries.IsArray() && len(entries.Array()) > 0 {
			return BuildPlaylist(doc, entries.Array(), opts)
		}
	}
	return BuildEntry(doc, opts)
}

func BuildPlaylist(doc gjson.Result, entries []gjson.Result, opts BuildOptions) *models.PlaylistResult {
	result := &models.PlaylistResult{
		Type:       "playlist",
		ID:         util.SanitizeText(doc.Get("id").String(), maxIDLength),
		Title:      titleOrDefault(doc.Get("title").String(), "Playlist"),
		WebpageURL: util.SanitizeURL(doc.Get("webpage_url").String()),
		Entries:    make([]models.PlaylistStub, 0, len(entries)),
	}

	total := 0
	for _, entry := range entries {
		if !entry.IsObject() {
			continue
		}
		stubURL := util.SanitizeURL(entry.Get("webpage_url").String())
		if stubURL == "" {
			stubURL = util.SanitizeURL(entry.Get("url").String())
		}
		if stubURL == "" {
			continue
		}
		total++
		if opts.Settings.MaxPlaylistEntries > 0 && len(result.Entries) >= opts.Settings.MaxPlaylistEntries {
			continue
		}
		stub := models.PlaylistStub{
			Type:  "url",
			URL:   stubURL,
			Title: titleOrDefault(entry.Get("title").String(), "Media"),
		}
		if duration := entry.Get("duration"); duration.Float() > 0 {
			value := duration.Float()
			stub.Duration = &value
		}
		if size := entry.Get("filesize_approx"); size.Int() > 0 {
			value := size.Int()
			stub.Filesize = &value
		}
		result.Entries = append(result.Entries, stub)
	}
	result.EntryCount = total
	result.IncludedCount = len(result.Entries)
	if total > result.IncludedCount {
		zap.S().Debugf("playlist capped: %d of %d entries included", result.IncludedCount, total)
	}
	result.Thumbnails = BuildThumbnails(doc.Get("thumbnails"), opts.Settings.MaxThumbnails)
	return result
}
