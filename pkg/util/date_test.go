package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2026-03-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2026, 3, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2026, 3, 10, 10, 10, 10, 0, time.UTC)
	got := ParseTimeDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestParseDurationDefault(t *testing.T) {
	if d := ParseDurationDefault("15m", time.Hour); d != 15*time.Minute {
		t.Fatalf("unexpected duration %v", d)
	}
	if d := ParseDurationDefault("junk", time.Hour); d != time.Hour {
		t.Fatalf("expected default, got %v", d)
	}
	if d := ParseDurationDefault("-5m", time.Hour); d != time.Hour {
		t.Fatalf("expected default for negative, got %v", d)
	}
}

func TestDayKey(t *testing.T) {
	at := time.Date(2026, 3, 10, 23, 59, 0, 0, time.FixedZone("plus2", 2*3600))
	if got := DayKey(at); got != "2026-03-10" {
		t.Fatalf("unexpected day key %s", got)
	}
}
