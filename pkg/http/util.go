package http

import (
	"time"

	xutil "asdts/pkg/util"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int { return xutil.ParseIntDefault(s, def) }

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) { return xutil.ParseTime(s) }

// ParseDurationDefault parses a duration string or returns default.
func ParseDurationDefault(s string, def time.Duration) time.Duration {
	return xutil.ParseDurationDefault(s, def)
}
