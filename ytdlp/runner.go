package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"streambridge/config"
	"streambridge/util"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const maxStderrLength = 2000

// Run executes one extraction attempt with a hard wall-clock timeout and a
// post-execution output size ceiling. None of the failure modes here are
// retried; retry policy belongs to the caller.
func Run(ctx context.Context, bin string, args []string, settings config.Settings) ([]byte, error) {
	runCtx, cancel := context.WithTimeout(ctx, settings.ExtractionTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, bin, args...)
	cmd.Env = append(os.Environ(),
		"PYTHONIOENCODING=utf-8",
		"LC_ALL=C.UTF-8",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		seconds := int(settings.ExtractionTimeout.Seconds())
		return nil, util.NewInvocationError(
			fmt.Sprintf("Extraction timed out after %d seconds", seconds))
	}
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, util.ErrExtractorNotFound
		}
		detail := util.SanitizeText(stderr.String(), maxStderrLength)
		if detail == "" {
			detail = err.Error()
		}
		return nil, util.NewInvocationError("yt-dlp failed: " + detail)
	}
	if int64(stdout.Len()) > settings.MaxOutputSize {
		zap.S().Warnf("extractor output of %d bytes exceeds ceiling", stdout.Len())
		return nil, util.ErrOutputTooLarge
	}
	return stdout.Bytes(), nil
}

// Parse validates the captured stdout as JSON. A decode failure is reported
// distinctly from a process-level failure.
func Parse(output []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(output) {
		return gjson.Result{}, util.ErrOutputNotJSON
	}
	return gjson.ParseBytes(output), nil
}
