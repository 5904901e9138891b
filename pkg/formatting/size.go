// Package formatting converts byte sizes between configuration strings
// and counts.
package formatting

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var sizePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([a-z]*)$`)

// multipliers are base 1024; the IEC spellings are accepted as aliases.
var multipliers = map[string]int64{
	"":    1,
	"b":   1,
	"kb":  1 << 10,
	"kib": 1 << 10,
	"mb":  1 << 20,
	"mib": 1 << 20,
	"gb":  1 << 30,
	"gib": 1 << 30,
}

// ParseBytes parses sizes such as "512", "64KB", "1.5 MiB" or "2gb".
func ParseBytes(s string) (int64, error) {
	m := sizePattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	mult, ok := multipliers[m[2]]
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit: %q", m[2])
	}

	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}
	return int64(n * float64(mult)), nil
}

// FormatBytes renders n with the largest unit that keeps it at or above 1.
func FormatBytes(n int64) string {
	units := []struct {
		name string
		size int64
	}{
		{"GB", 1 << 30},
		{"MB", 1 << 20},
		{"KB", 1 << 10},
	}
	for _, u := range units {
		if n >= u.size {
			return strconv.FormatFloat(float64(n)/float64(u.size), 'f', -1, 64) + u.name
		}
	}
	return strconv.FormatInt(n, 10) + "B"
}
