// Package config loads and validates the vmweaver configuration from YAML,
// applies defaults, and supports hot-reloading the log level when the
// config file changes on disk.
package config
