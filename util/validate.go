package util

import (
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"streambridge/enums"
)

const (
	maxURLInputLength     = 4096
	maxUserAgentLength    = 512
	maxCookieStringLength = 8192
)

// Every check that decides whether an externally supplied value may reach
// the yt-dlp argv lives in this file. Rejected values are never logged.
var (
	shellMetaPattern   = regexp.MustCompile("[;&|`$]")
	controlCharPattern = regexp.MustCompile(`[\x00-\x1f\x7f]`)

	privateHostPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^localhost$`),
		regexp.MustCompile(`^127\.`),
		regexp.MustCompile(`^10\.`),
		regexp.MustCompile(`^192\.168\.`),
		regexp.MustCompile(`^172\.(1[6-9]|2\d|3[01])\.`),
		regexp.MustCompile(`^0\.0\.0\.0$`),
		regexp.MustCompile(`^::1$`),
	}
)

// ValidateURL returns the URL that may be passed to the extractor, or a
// typed error. Private and loopback hosts are reported as security errors
// so the caller can distinguish them from plain garbage.
func ValidateURL(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return "", ErrURLEmpty
	}
	if len(cleaned) > maxURLInputLength {
		return "", ErrURLTooLong
	}
	if shellMetaPattern.MatchString(cleaned) ||
		controlCharPattern.MatchString(cleaned) ||
		strings.Contains(cleaned, "$(") ||
		strings.Contains(cleaned, "..") {
		return "", ErrURLUnsafe
	}
	parsed, err := url.Parse(cleaned)
	if err != nil {
		return "", ErrURLInvalid
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", ErrURLScheme
	}
	host := strings.ToLower(parsed.Hostname())
	if len(host) < 3 {
		return "", ErrURLHostname
	}
	for _, pattern := range privateHostPatterns {
		if pattern.MatchString(host) {
			return "", ErrURLPrivateHost
		}
	}
	return cleaned, nil
}

// ValidateProfile maps anything outside the closed enumeration to BALANCED.
func ValidateProfile(raw string) enums.Profile {
	switch enums.Profile(strings.TrimSpace(raw)) {
	case enums.ProfileFastest:
		return enums.ProfileFastest
	case enums.ProfileQuality:
		return enums.ProfileQuality
	default:
		return enums.ProfileBalanced
	}
}

// ValidateFilePath canonicalizes a local file path. When mustExist is set
// and the file is missing, it returns an empty path with no error: a missing
// cookies file downgrades to "no cookies" instead of failing the pipeline.
func ValidateFilePath(raw string, mustExist bool) (string, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return "", nil
	}
	if strings.Contains(cleaned, "..") {
		return "", ErrPathTraversal
	}
	if shellMetaPattern.MatchString(cleaned) || controlCharPattern.MatchString(cleaned) {
		return "", ErrPathUnsafe
	}
	resolved, err := filepath.Abs(filepath.Clean(cleaned))
	if err != nil {
		return "", ErrPathUnsafe
	}
	if mustExist {
		info, err := os.Stat(resolved)
		if err != nil || info.IsDir() {
			return "", nil
		}
	}
	return resolved, nil
}

// ValidateFragmentPath checks one fragment path from the extractor output.
// A fragment that is itself a full URL goes through ValidateURL; otherwise,
// when a base URL is known, the joined absolute URL is validated instead of
// the bare relative path.
func ValidateFragmentPath(path string, baseURL string) (string, error) {
	cleaned := strings.TrimSpace(path)
	if cleaned == "" {
		return "", ErrFragmentEmpty
	}
	if strings.Contains(cleaned, "..") {
		return "", ErrPathTraversal
	}
	if shellMetaPattern.MatchString(cleaned) || controlCharPattern.MatchString(cleaned) {
		return "", ErrPathUnsafe
	}
	lower := strings.ToLower(cleaned)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return ValidateURL(cleaned)
	}
	if baseURL != "" {
		if _, err := ValidateURL(baseURL + cleaned); err != nil {
			return "", err
		}
	}
	return cleaned, nil
}

// ValidateProxy accepts http, https, socks4 and socks5 proxies. The socks
// schemes are rewritten to http before URL validation, so only the scheme
// check is relaxed; host checks (including the private-network rejection)
// still apply.
func ValidateProxy(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return "", nil
	}
	lower := strings.ToLower(cleaned)
	checkTarget := cleaned
	switch {
	case strings.HasPrefix(lower, "socks4://"):
		checkTarget = "http://" + cleaned[len("socks4://"):]
	case strings.HasPrefix(lower, "socks5://"):
		checkTarget = "http://" + cleaned[len("socks5://"):]
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
	default:
		return "", ErrProxyScheme
	}
	if _, err := ValidateURL(checkTarget); err != nil {
		return "", err
	}
	return cleaned, nil
}

// ValidateUserAgent returns a header-safe user agent, or empty when nothing
// usable remains. Newlines and tabs survive generic sanitization but have no
// place in a header value, so they collapse to spaces here.
func ValidateUserAgent(raw string) string {
	cleaned := SanitizeText(strings.TrimSpace(raw), maxUserAgentLength)
	cleaned = strings.ReplaceAll(cleaned, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\t", " ")
	return strings.TrimSpace(cleaned)
}

// ValidateCookieString bounds and cleans a raw Cookie header value.
func ValidateCookieString(raw string) string {
	return SanitizeText(strings.TrimSpace(raw), maxCookieStringLength)
}
