package config

import "errors"

var (
	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidConfig indicates the configuration could not be parsed or failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConfigExists is returned by Init when the target file already exists.
	ErrConfigExists = errors.New("configuration file already exists")
)
