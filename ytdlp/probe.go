package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"streambridge/util"
)

const (
	versionCheckTimeout = 15 * time.Second
	pipCheckTimeout     = 10 * time.Second
	installTimeout      = 300 * time.Second

	// oldest yt-dlp release (YYYY.MM.DD) we consider reliable
	minRecommendedVersion = "2024.01.01"
)

type ProbeResult struct {
	Installed       bool    `json:"installed"`
	Version         *string `json:"version"`
	VersionAdequate bool    `json:"versionAdequate"`
	MinRecommended  string  `json:"minRecommended,omitempty"`
	Error           string  `json:"error,omitempty"`
}

type InstallResult struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Version *string `json:"version"`
	Error   string  `json:"error,omitempty"`
}

type PipStatus struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

type PythonStatus struct {
	Executable string `json:"executable"`
	Version    string `json:"version,omitempty"`
	Error      string `json:"error,omitempty"`
}

type StatusReport struct {
	Python PythonStatus `json:"python"`
	Pip    PipStatus    `json:"pip"`
	Ytdlp  *ProbeResult `json:"ytdlp"`
}

// Check probes the extractor binary for availability and version.
func Check(bin string) *ProbeResult {
	stdout, stderr, err := runQuiet(versionCheckTimeout, bin, "--version")
	if err != nil {
		result := &ProbeResult{}
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			result.Error = "Version check timed out"
		case errors.Is(err, exec.ErrNotFound):
			result.Error = util.ErrExtractorNotFound.Message
		default:
			result.Error = util.SanitizeText(strings.TrimSpace(stderr), 200)
			if result.Error == "" {
				result.Error = "Unknown error"
			}
		}
		return result
	}
	version := strings.TrimSpace(stdout)
	return &ProbeResult{
		Installed:       true,
		Version:         &version,
		VersionAdequate: versionAdequate(version),
		MinRecommended:  minRecommendedVersion,
	}
}

// Install runs a pip install of the extractor and re-probes it. The pip
// availability check comes first so the error message can say which of the
// two is actually missing.
func Install(python string, bin string, upgrade bool) *InstallResult {
	pip := CheckPip(python)
	if !pip.Available {
		return &InstallResult{
			Message: "pip is not available",
			Error:   pip.Error,
		}
	}

	args := []string{"-m", "pip", "install"}
	if upgrade {
		args = append(args, "--upgrade")
	}
	args = append(args, "yt-dlp")

	_, stderr, err := runQuiet(installTimeout, python, args...)
	if err != nil {
		result := &InstallResult{Message: "Installation failed"}
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			result.Message = "Installation timed out"
			result.Error = "The installation took longer than " +
				strconv.Itoa(int(installTimeout.Seconds())) + " seconds"
		default:
			result.Error = util.SanitizeText(strings.TrimSpace(stderr), 500)
			if result.Error == "" {
				result.Error = "Unknown error"
			}
		}
		return result
	}

	check := Check(bin)
	return &InstallResult{
		Success: true,
		Message: "yt-dlp installed successfully",
		Version: check.Version,
	}
}

func CheckPip(python string) *PipStatus {
	stdout, stderr, err := runQuiet(pipCheckTimeout, python, "-m", "pip", "--version")
	if err != nil {
		detail := util.SanitizeText(strings.TrimSpace(stderr), 100)
		if detail == "" {
			detail = "pip not available"
		}
		return &PipStatus{Error: detail}
	}
	return &PipStatus{
		Available: true,
		Version:   util.SanitizeText(strings.TrimSpace(stdout), 100),
	}
}

// Status reports the combined python/pip/yt-dlp state of the host.
func Status(python string, bin string) *StatusReport {
	report := &StatusReport{
		Python: PythonStatus{Executable: python},
		Ytdlp:  Check(bin),
	}
	stdout, stderr, err := runQuiet(pipCheckTimeout, python, "--version")
	if err != nil {
		report.Python.Error = util.SanitizeText(strings.TrimSpace(stderr), 100)
		if report.Python.Error == "" {
			report.Python.Error = "python not available"
		}
	} else {
		report.Python.Version = util.SanitizeText(strings.TrimSpace(stdout), 100)
	}
	report.Pip = *CheckPip(python)
	return report
}

func runQuiet(timeout time.Duration, bin string, args ...string) (string, string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	return stdout.String(), stderr.String(), err
}

// parseVersion reads a yt-dlp YYYY.MM.DD version into a comparable tuple.
func parseVersion(raw string) [3]int {
	var version [3]int
	parts := strings.Split(strings.TrimSpace(raw), ".")
	for i := 0; i < len(parts) && i < 3; i++ {
		value, err := strconv.Atoi(parts[i])
		if err != nil {
			return [3]int{}
		}
		version[i] = value
	}
	return version
}

func versionAdequate(raw string) bool {
	if raw == "" {
		return false
	}
	current := parseVersion(raw)
	minimum := parseVersion(minRecommendedVersion)
	for i := range current {
		if current[i] != minimum[i] {
			return current[i] > minimum[i]
		}
	}
	return true
}
