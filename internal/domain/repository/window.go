package repository

import "time"

// NormalizeWindow parses a raw window string (e.g. "15m") and clamps
// it to the configured maximum. Empty or invalid input falls back to
// the default.
func NormalizeWindow(s string, def, max time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	if max > 0 && d > max {
		return max
	}
	return d
}
