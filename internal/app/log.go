package app

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var Logger zerolog.Logger

// modules log levels and output options
var modules = map[string]string{
	"format": "",
	"level":  "info",
	"output": "stdout",
	"time":   zerolog.TimeFormatUnixMs,
}

// GetLogger returns the logger for a module, honoring its level from the
// log section of the config
func GetLogger(module string) zerolog.Logger {
	if s, ok := modules[module]; ok {
		lvl, err := zerolog.ParseLevel(s)
		if err == nil {
			return Logger.Level(lvl)
		}
		Logger.Warn().Err(err).Str("module", module).Msg("[log]")
	}
	return Logger
}

// initLogger support:
// - output: stdout, stderr, none
// - format: empty (autodetect color), color, text, json
// - time:   empty (no timestamp), UNIXMS, UNIXMICRO, or a Go time layout
// - level:  disabled, trace, debug, info, warn, error...
func initLogger() {
	var cfg struct {
		Mod map[string]string `yaml:"log"`
	}
	cfg.Mod = modules // defaults
	LoadConfig(&cfg)

	var writer io.Writer
	switch modules["output"] {
	case "stderr":
		writer = os.Stderr
	case "none":
		writer = io.Discard
	default:
		writer = os.Stdout
	}

	timeFormat := modules["time"]

	if f, ok := writer.(*os.File); ok && modules["format"] != "json" {
		console := &zerolog.ConsoleWriter{Out: writer}
		switch modules["format"] {
		case "text":
			console.NoColor = true
		case "color":
			console.NoColor = false
		default:
			console.NoColor = !isatty.IsTerminal(f.Fd())
		}
		if timeFormat != "" {
			console.TimeFormat = "15:04:05.000"
		} else {
			console.PartsOrder = []string{
				zerolog.LevelFieldName,
				zerolog.MessageFieldName,
			}
		}
		writer = console
	}

	lvl, err := zerolog.ParseLevel(modules["level"])
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	Logger = zerolog.New(writer).Level(lvl)

	if timeFormat != "" {
		zerolog.TimeFieldFormat = timeFormat
		Logger = Logger.With().Timestamp().Logger()
	}
}
