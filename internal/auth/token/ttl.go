package token

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultTTL applies when no lifetime is configured.
const DefaultTTL = 15 * time.Minute

var ttlPattern = regexp.MustCompile(`^([0-9]+)([smhdSMHD])$`)

var ttlUnits = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
}

// ParseTTL accepts whole seconds ("900") or a number with a unit suffix
// ("15m", "12h", "7d"). An empty value yields DefaultTTL.
func ParseTTL(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultTTL, nil
	}

	if isDigits(raw) {
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("token ttl %q: %w", raw, err)
		}
		return checkTTL(raw, time.Duration(secs)*time.Second)
	}

	m := ttlPattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, fmt.Errorf("token ttl %q must be an integer (seconds) or <number>[s|m|h|d]", raw)
	}
	amount, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("token ttl %q: %w", raw, err)
	}
	return checkTTL(raw, time.Duration(amount)*ttlUnits[strings.ToLower(m[2])])
}

func checkTTL(raw string, d time.Duration) (time.Duration, error) {
	if d <= 0 {
		return 0, fmt.Errorf("token ttl %q must be positive", raw)
	}
	return d, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
