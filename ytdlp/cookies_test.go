package ytdlp

import (
	"path/filepath"
	"testing"
)

func TestCookieHeaderFromJarMissingFile(t *testing.T) {
	_, err := CookieHeaderFromJar(filepath.Join(t.TempDir(), "absent.txt"))
	if err == nil {
		t.Fatal("missing jar did not error")
	}
}
