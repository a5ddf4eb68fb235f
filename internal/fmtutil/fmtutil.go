// Package fmtutil provides human-readable formatting for run summaries
// and parsing for size-valued flags.
package fmtutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidSize indicates an unparseable byte size string.
var ErrInvalidSize = errors.New("invalid size")

// FormatBytes formats bytes as a human-readable string.
func FormatBytes(b int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
		tb = gb * 1024
	)

	switch {
	case b >= tb:
		return fmt.Sprintf("%.2f TB", float64(b)/float64(tb))
	case b >= gb:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(mb))
	case b >= kb:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(kb))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// FormatDuration formats a duration as a human-readable string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

// ParseBytes parses a human-readable byte string (e.g., "256MB", "50 MB").
// A bare number is taken as bytes.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	upper := strings.ToUpper(s)

	var multiplier int64 = 1
	switch {
	case strings.HasSuffix(upper, "TB"):
		multiplier = 1 << 40
		s = s[:len(s)-2]
	case strings.HasSuffix(upper, "GB"):
		multiplier = 1 << 30
		s = s[:len(s)-2]
	case strings.HasSuffix(upper, "MB"):
		multiplier = 1 << 20
		s = s[:len(s)-2]
	case strings.HasSuffix(upper, "KB"):
		multiplier = 1 << 10
		s = s[:len(s)-2]
	case strings.HasSuffix(upper, "B"):
		s = s[:len(s)-1]
	}
	s = strings.TrimSpace(s)

	var value float64
	if _, err := fmt.Sscanf(s, "%f", &value); err != nil || value < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	return int64(value * float64(multiplier)), nil
}
