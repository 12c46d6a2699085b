package config

import (
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type EnvConfig struct {
	YtdlpPath  string
	PythonPath string
	LogLevel   string
}

var Env = GetDefaultEnv()

// Load reads an optional .env file and then environment overrides. Nothing
// here is required; every value has a working default.
func Load() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		zap.S().Debugf("no .env file loaded: %v", err)
	}
	if value := os.Getenv("YTDLP_PATH"); value != "" {
		Env.YtdlpPath = value
	}
	if value := os.Getenv("PYTHON_PATH"); value != "" {
		Env.PythonPath = value
	}
	if value := os.Getenv("LOG_LEVEL"); value != "" {
		Env.LogLevel = value
	}
}

func GetDefaultEnv() *EnvConfig {
	return &EnvConfig{
		YtdlpPath:  "yt-dlp",
		PythonPath: "python3",
		LogLevel:   "info",
	}
}
