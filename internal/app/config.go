package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var config []byte

// LoadConfig decodes the config file into v. Modules pass a struct holding
// only the sections they own.
func LoadConfig(v any) {
	if config == nil {
		return
	}
	if err := yaml.Unmarshal(config, v); err != nil {
		Logger.Warn().Err(err).Msg("[app] read config")
	}
}

// GetEnv returns the environment value of key or fallback
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func loadEnv() {
	// .env is optional, variables already set win
	_ = godotenv.Load()
}

func initConfig(confPath string) {
	config = nil
	ConfigPath = ""

	if confPath == "" {
		return
	}
	if confPath[0] == '{' {
		// inline YAML or JSON
		config = []byte(confPath)
		return
	}

	data, err := os.ReadFile(confPath)
	if err != nil {
		return
	}
	ConfigPath = confPath
	config = []byte(ReplaceEnvVars(string(data)))
}

// ReplaceEnvVars expands ${VAR} and ${VAR:default} in s
func ReplaceEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		key, def, hasDef := strings.Cut(key, ":")
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		if hasDef {
			return def
		}
		// keep unknown vars untouched
		return "${" + key + "}"
	})
}
