package config

import "errors"

var (
	// ErrInvalidConfig reports a setting that Validate rejected.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig wraps failures reading the config file or the environment.
	ErrLoadConfig = errors.New("load config failed")
)
