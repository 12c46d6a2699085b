package pipeline

import (
	"sort"
	"strings"

	"streambridge/config"
	"streambridge/enums"
	"streambridge/models"
	"streambridge/util"
)

const maxExtraAudioTracks = 5

// languagePreference ranks audio languages; unlisted tags score zero.
var languagePreference = map[string]int64{
	"en": 100, "en-US": 100, "en-GB": 95,
	"es": 80, "fr": 75, "de": 70, "it": 65,
	"pt": 60, "ru": 55, "ja": 50, "ko": 45, "zh": 40,
}

// LanguagePreference matches the exact tag first, then the primary subtag
// before the hyphen.
func LanguagePreference(lang string) int64 {
	if lang == "" {
		return 0
	}
	if score, ok := languagePreference[lang]; ok {
		return score
	}
	primary, _, _ := strings.Cut(lang, "-")
	return languagePreference[primary]
}

// CodecPreference ranks compatibility: H.264 > VP9 > AV1 for video,
// AAC > Opus > Vorbis for audio. The two contributions are cumulative.
func CodecPreference(format *models.RawFormat) float64 {
	vcodec := strings.ToLower(format.VCodec)
	acodec := strings.ToLower(format.ACodec)

	var score float64
	switch {
	case strings.Contains(vcodec, "avc"), strings.Contains(vcodec, "h264"):
		score += 50
	case strings.Contains(vcodec, "vp9"), strings.Contains(vcodec, "vp09"):
		score += 30
	case strings.Contains(vcodec, "av01"), strings.Contains(vcodec, "av1"):
		score += 10
	}
	switch {
	case strings.Contains(acodec, "mp4a"), strings.Contains(acodec, "aac"):
		score += 20
	case strings.Contains(acodec, "opus"):
		score += 15
	case strings.Contains(acodec, "vorbis"):
		score += 10
	}
	return score
}

// IsUsable excludes candidates that could never be downloaded: DRM or
// premium-gated streams, storyboard tracks with neither codec, and formats
// whose URL is missing or unsafe to emit.
func IsUsable(format *models.RawFormat) bool {
	if format.HasDRM {
		return false
	}
	if format.IsPremium || strings.Contains(strings.ToLower(format.FormatNote), "premium") {
		return false
	}
	if !format.HasVideo() && !format.HasAudio() {
		return false
	}
	if format.URL == "" {
		return false
	}
	return util.SanitizeURL(format.URL) != ""
}

// Score computes the desirability of one candidate under the profile.
// Higher is better; ties keep input order.
func Score(format *models.RawFormat, profile enums.Profile) float64 {
	codecPref := CodecPreference(format)
	langPref := float64(LanguagePreference(format.Language))
	hasBoth := format.HasVideo() && format.HasAudio()

	score := format.Preference * 10

	switch profile {
	case enums.ProfileFastest:
		if hasBoth {
			score += 1000
		}
		score += format.TBR * 2
		score += codecPref * 2
		score += langPref
		if format.Filesize > 0 {
			score -= float64(format.Filesize) / 1_000_000
		}
		if format.IsSegmented() {
			score -= 500
		}
		if format.Protocol == "http" || format.Protocol == "https" {
			score += 200
		}
	case enums.ProfileQuality:
		score += float64(format.Height) * 3
		score += format.TBR
		score += codecPref * 0.5
		score += langPref * 0.3
		if hasBoth {
			score += 200
		}
		if format.IsHLS() {
			score -= 100
		}
	default:
		if hasBoth {
			score += 500
		}
		score += format.TBR
		score += float64(format.Height) * 0.5
		score += codecPref
		score += langPref * 0.5
		if format.IsHLS() {
			score -= 300
		}
	}
	return score
}

// SelectFormats ranks all usable candidates, truncates to the configured
// maximum and appends up to five audio-only tracks not already selected, so
// multi-language audio survives a video-biased ranking.
func SelectFormats(formats []*models.RawFormat, profile enums.Profile, settings config.Settings) []*models.RawFormat {
	usable := make([]*models.RawFormat, 0, len(formats))
	for _, format := range formats {
		if IsUsable(format) {
			format.Score = Score(format, profile)
			usable = append(usable, format)
		}
	}
	sort.SliceStable(usable, func(i, j int) bool {
		return usable[i].Score > usable[j].Score
	})

	limit := len(usable)
	if settings.MaxFormats > 0 && limit > settings.MaxFormats {
		limit = settings.MaxFormats
	}
	selected := make([]*models.RawFormat, limit)
	copy(selected, usable[:limit])

	seen := make(map[string]struct{}, len(selected))
	for _, format := range selected {
		seen[format.URL] = struct{}{}
	}

	audioOnly := make([]*models.RawFormat, 0, len(usable))
	for _, format := range usable {
		if format.IsAudioOnly() {
			audioOnly = append(audioOnly, format)
		}
	}
	sort.SliceStable(audioOnly, func(i, j int) bool {
		return audioRank(audioOnly[i]) > audioRank(audioOnly[j])
	})
	added := 0
	for _, format := range audioOnly {
		if added >= maxExtraAudioTracks {
			break
		}
		if _, dup := seen[format.URL]; dup {
			continue
		}
		seen[format.URL] = struct{}{}
		selected = append(selected, format)
		added++
	}
	return selected
}

func audioRank(format *models.RawFormat) float64 {
	return format.ABR + CodecPreference(format) + float64(LanguagePreference(format.Language))
}
