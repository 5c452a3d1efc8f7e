package config

import (
	"github.com/bdsul/grace"
)

// Error codes used by config:
const (
	// InvalidConfigError indicates settings failing validation or a malformed environment override.
	InvalidConfigError = grace.ConfigErrors + iota

	// ConfigReadError indicates unreadable or unparsable settings file.
	ConfigReadError
)

func MakeInvalidConfigError(msg string, params ...any) *grace.Error {
	return grace.FormatError(InvalidConfigError, "invalid config: "+msg, params...)
}

func MakeConfigReadError(path string, e error) *grace.Error {
	return grace.FormatError(ConfigReadError, "cannot read config %s: %s", path, e)
}
