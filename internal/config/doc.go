// Package config loads, normalizes, and validates the TOML configuration
// that drives the clip pipeline, plus the YAML channel watchlist.
package config
