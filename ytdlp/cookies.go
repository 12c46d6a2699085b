package ytdlp

import (
	"os"
	"strings"

	"streambridge/util"

	"github.com/aki237/nscjar"
	"github.com/pkg/errors"
)

// CookieHeaderFromJar parses a Netscape cookie jar and flattens it into a
// Cookie header value for the per-format HTTP headers. Used when the caller
// supplied a cookies file but no cookie string.
func CookieHeaderFromJar(path string) (string, error) {
	cookieFile, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "failed to open cookie file")
	}
	defer cookieFile.Close()

	var parser nscjar.Parser
	cookies, err := parser.Unmarshal(cookieFile)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse cookie file")
	}

	pairs := make([]string, 0, len(cookies))
	for _, cookie := range cookies {
		if cookie.Name == "" {
			continue
		}
		pairs = append(pairs, cookie.Name+"="+cookie.Value)
	}
	return util.ValidateCookieString(strings.Join(pairs, "; ")), nil
}
