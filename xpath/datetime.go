package xpath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var tzSuffix = regexp.MustCompile(`(Z|[+-]\d{2}:\d{2})$`)

var durationPattern = regexp.MustCompile(
	`^P(?:(\d+(?:\.\d+)?)D)?(?:T(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// ParseDateTime parses an xs:dateTime lexical form. The instant is
// normalized to UTC; the original zone offset is retained so callers can
// re-encode it separately. Forms without a zone are treated as UTC instants
// with HasTZ false.
func ParseDateTime(s string) (DateTime, error) {
	layout := "2006-01-02T15:04:05"
	hasTZ := tzSuffix.MatchString(s)
	if hasTZ {
		layout = "2006-01-02T15:04:05Z07:00"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return DateTime{}, fmt.Errorf("invalid xs:dateTime %q: %w", s, err)
	}
	_, offsetSec := t.Zone()
	return DateTime{
		Time:            t.UTC(),
		HasTZ:           hasTZ,
		TZOffsetMinutes: offsetSec / 60,
	}, nil
}

// ParseDayTimeDuration parses an xs:dayTimeDuration lexical form into signed
// microseconds. A leading minus negates the whole duration.
func ParseDayTimeDuration(s string) (int64, error) {
	text := s
	negative := false
	if strings.HasPrefix(text, "-") {
		negative = true
		text = text[1:]
	}
	m := durationPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, fmt.Errorf("invalid xs:dayTimeDuration %q", s)
	}
	if m[1] == "" && m[2] == "" && m[3] == "" && m[4] == "" {
		return 0, fmt.Errorf("invalid xs:dayTimeDuration %q: no components", s)
	}

	multipliers := []float64{
		86_400_000_000, // days
		3_600_000_000,  // hours
		60_000_000,     // minutes
		1_000_000,      // seconds
	}
	var total int64
	for i, field := range m[1:] {
		if field == "" {
			continue
		}
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid xs:dayTimeDuration %q: %w", s, err)
		}
		micros := f * multipliers[i]
		if micros > float64(1<<62) {
			return 0, fmt.Errorf("xs:dayTimeDuration %q overflows", s)
		}
		total += int64(micros)
	}
	if negative {
		total = -total
	}
	return total, nil
}
