// Package config loads, normalizes, and validates the TOML configuration
// for aircheck. All path fields are expanded (including ~) and absolute by
// the time Load returns; downstream packages never re-interpret paths.
package config
