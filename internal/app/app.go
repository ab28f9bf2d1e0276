package app

import (
	"os"
	"runtime"
)

var Version = "0.4.0"

// ConfigPath is the config file in use, empty when none was found
var ConfigPath string

// Init loads .env, the config file and sets up the logger.
// Must be called before LoadConfig or GetLogger.
func Init(confPath string) {
	loadEnv()
	initConfig(confPath)
	initLogger()

	path, _ := os.Getwd()
	Logger.Info().Str("version", Version).Str("os", runtime.GOOS).Str("arch", runtime.GOARCH).
		Str("cwd", path).Str("config", ConfigPath).Msg("[app] start")
}
