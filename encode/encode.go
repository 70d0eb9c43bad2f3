// Package encode turns corpus literal text and evaluated values into the
// numeric forms the emitted assertions use: arbitrary-precision integers with
// an i64 range gate, IEEE 754 bit patterns, epoch microseconds, and signed
// duration microseconds.
package encode

import (
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/noir-xpath/testgen/xpath"
)

var (
	minInt64 = big.NewInt(math.MinInt64)
	maxInt64 = big.NewInt(math.MaxInt64)

	wrappedLiteral = regexp.MustCompile(`^xs:(?:integer|float|double|decimal|boolean)\(\s*(?:"([^"]*)"|'([^']*)'|([^'")]+))\s*\)$`)
)

// unwrap strips an xs:TYPE('...') constructor wrapper from expected-result
// text, returning the inner literal. Text without a wrapper passes through.
func unwrap(s string) string {
	s = strings.TrimSpace(s)
	if m := wrappedLiteral.FindStringSubmatch(s); m != nil {
		for _, group := range m[1:] {
			if group != "" {
				return strings.TrimSpace(group)
			}
		}
		return ""
	}
	return s
}

// ParseInteger parses expected-result text as an integer. Constructor
// wrappers like xs:integer("12") are unwrapped first. The result is exact;
// range checks are the caller's concern.
func ParseInteger(s string) (*big.Int, error) {
	text := unwrap(s)
	i, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, fmt.Errorf("not an integer literal: %q", s)
	}
	return i, nil
}

// ParseBoolean parses expected-result text as a boolean. It accepts the
// bare words, the fn:true()/fn:false() call forms, and constructor wrappers,
// all case-insensitively.
func ParseBoolean(s string) (bool, error) {
	text := strings.ToLower(unwrap(s))
	text = strings.TrimPrefix(text, "fn:")
	switch text {
	case "true", "true()", "1":
		return true, nil
	case "false", "false()", "0":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean literal: %q", s)
}

// ParseFloat parses expected-result text as a floating-point number,
// honoring the XPath spellings of the special values.
func ParseFloat(s string) (float64, error) {
	text := unwrap(s)
	switch strings.ToUpper(text) {
	case "NAN":
		return math.NaN(), nil
	case "INF", "+INF":
		return math.Inf(1), nil
	case "-INF":
		return math.Inf(-1), nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("not a float literal: %q", s)
	}
	return f, nil
}

// FloatBits returns the IEEE 754 single-precision bit pattern of f.
func FloatBits(f float64) uint32 {
	return math.Float32bits(float32(f))
}

// DoubleBits returns the IEEE 754 double-precision bit pattern of f.
func DoubleBits(f float64) uint64 {
	return math.Float64bits(f)
}

// Int64 narrows an arbitrary-precision integer to int64, failing when the
// value falls outside the representable range.
func Int64(i *big.Int) (int64, error) {
	if i.Cmp(minInt64) < 0 || i.Cmp(maxInt64) > 0 {
		return 0, fmt.Errorf("value %s outside i64 range", i)
	}
	return i.Int64(), nil
}

// Int8 narrows an arbitrary-precision integer to the i8 range used by the
// integer-to-float cast circuits.
func Int8(i *big.Int) (int64, error) {
	if !i.IsInt64() {
		return 0, fmt.Errorf("value %s outside i8 range", i)
	}
	v := i.Int64()
	if v < math.MinInt8 || v > math.MaxInt8 {
		return 0, fmt.Errorf("value %d outside i8 range", v)
	}
	return v, nil
}

// ParseDuration parses an xs:dayTimeDuration lexical form into signed
// microseconds.
func ParseDuration(s string) (int64, error) {
	return xpath.ParseDayTimeDuration(strings.TrimSpace(s))
}

// DatetimeEpoch encodes a parsed xs:dateTime as microseconds since the Unix
// epoch plus the zone offset in minutes. Instants before the epoch are not
// representable in the circuit encoding and are rejected.
func DatetimeEpoch(dt xpath.DateTime) (micros int64, tzMinutes int, err error) {
	sec := dt.Time.Unix()
	if sec < 0 || sec > math.MaxInt64/1_000_000-1 {
		return 0, 0, fmt.Errorf("datetime %s not encodable as epoch microseconds", dt.Time.Format("2006-01-02T15:04:05Z07:00"))
	}
	micros = sec*1_000_000 + int64(dt.Time.Nanosecond())/1_000
	return micros, dt.TZOffsetMinutes, nil
}
