package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"streambridge/config"
	"streambridge/logger"
	"streambridge/pipeline"
	"streambridge/util"
	"streambridge/ytdlp"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	config.Load()
	logger.Init(config.Env.LogLevel)
	defer logger.Sync()

	if len(args) == 0 {
		return emitError(util.ErrURLEmpty)
	}

	switch strings.ToLower(args[0]) {
	case "check":
		return runCheck()
	case "install":
		return runInstall(hasFlag(args[1:], "--upgrade"))
	case "status":
		return runStatus()
	}
	return runExtract(args)
}

// runExtract is the default mode: positional parameters in fixed order
// (URL, profile, cookies file, cookie string, proxy, user agent, config
// JSON), one JSON document on stdout, exit 0 on success and 1 otherwise.
func runExtract(args []string) int {
	log := zap.S().With("run", uuid.NewString())

	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}

	// every externally supplied value is validated before the subprocess
	// invocation is even assembled
	cleanURL, err := util.ValidateURL(arg(0))
	if err != nil {
		return emitError(err)
	}
	profile := util.ValidateProfile(arg(1))
	cookiesFile, err := util.ValidateFilePath(arg(2), true)
	if err != nil {
		return emitError(err)
	}
	cookieString := util.ValidateCookieString(arg(3))
	proxyURL, err := util.ValidateProxy(arg(4))
	if err != nil {
		return emitError(err)
	}
	userAgent := util.ValidateUserAgent(arg(5))
	settings := config.ParseOverrides(arg(6), config.GetDefaultSettings())

	if cookieString == "" && cookiesFile != "" {
		derived, err := ytdlp.CookieHeaderFromJar(cookiesFile)
		if err != nil {
			log.Warnf("cookie jar not usable: %v", err)
		} else {
			cookieString = derived
		}
	}

	inv := &ytdlp.Invocation{
		URL:         cleanURL,
		CookiesFile: cookiesFile,
		ProxyURL:    proxyURL,
		UserAgent:   userAgent,
		Settings:    settings,
	}
	log.Debugw("starting extraction", "profile", profile)

	output, err := ytdlp.Run(context.Background(), config.Env.YtdlpPath, ytdlp.BuildArgs(inv), settings)
	if err != nil {
		return emitError(err)
	}
	doc, err := ytdlp.Parse(output)
	if err != nil {
		return emitError(err)
	}

	result := pipeline.Dispatch(doc, pipeline.BuildOptions{
		Settings:     settings,
		Profile:      profile,
		UserAgent:    userAgent,
		CookieString: cookieString,
	})
	return emit(result)
}

func runCheck() int {
	result := ytdlp.Check(config.Env.YtdlpPath)
	if code := emit(result); code != 0 {
		return code
	}
	if !result.Installed {
		return 1
	}
	return 0
}

func runInstall(upgrade bool) int {
	result := ytdlp.Install(config.Env.PythonPath, config.Env.YtdlpPath, upgrade)
	if code := emit(result); code != 0 {
		return code
	}
	if !result.Success {
		return 1
	}
	return 0
}

func runStatus() int {
	return emit(ytdlp.Status(config.Env.PythonPath, config.Env.YtdlpPath))
}

func emit(payload any) int {
	data, err := sonic.Marshal(payload)
	if err != nil {
		return emitError(util.NewInvocationError("failed to encode result"))
	}
	fmt.Println(string(data))
	return 0
}

func emitError(err error) int {
	switch util.KindOf(err) {
	case util.ErrorKindSecurity, util.ErrorKindOutput:
		zap.S().Warnw("rejected possibly hostile input", "reason", err.Error())
	}
	data, encodeErr := sonic.Marshal(map[string]string{"error": err.Error()})
	if encodeErr != nil {
		fmt.Println(`{"error":"internal encoding failure"}`)
		return 1
	}
	fmt.Println(string(data))
	return 1
}

func hasFlag(args []string, flag string) bool {
	for _, arg := range args {
		if arg == flag {
			return true
		}
	}
	return false
}
