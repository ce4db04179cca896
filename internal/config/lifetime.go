package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Lifetime is a duration that also accepts a leading day count, as in "15d"
// or "1d12h".
type Lifetime time.Duration

func (l Lifetime) Duration() time.Duration { return time.Duration(l) }

func (l *Lifetime) UnmarshalText(text []byte) error {
	d, err := ParseLifetime(string(text))
	if err != nil {
		return err
	}
	*l = Lifetime(d)
	return nil
}

// ParseLifetime parses Go duration syntax with an optional "<n>d" prefix.
func ParseLifetime(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	var days time.Duration
	if i := strings.IndexByte(s, 'd'); i >= 0 {
		n, err := strconv.Atoi(s[:i])
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid day count in %q", s)
		}
		days = time.Duration(n) * 24 * time.Hour
		s = s[i+1:]
		if s == "" {
			return days, nil
		}
	}

	rest, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if rest < 0 && days > 0 {
		return 0, fmt.Errorf("mixed-sign duration")
	}
	return days + rest, nil
}
