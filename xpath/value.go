// Package xpath implements the literal-expression subset of XPath 2.0 that
// the qt3tests corpus exercises: a lexer, a Pratt parser producing a symbol
// token tree, and an evaluator over typed values. The token tree mirrors the
// shape the translator dispatches on: every node exposes its operator or
// function symbol and its ordered children, with namespace-qualified calls
// wrapped in a ":" node whose second child is the function itself.
package xpath

import (
	"fmt"
	"math/big"
	"time"
)

// Kind identifies the dynamic type of an evaluated value.
type Kind int

const (
	KindInteger Kind = iota
	KindDecimal
	KindFloat
	KindDouble
	KindBoolean
	KindString
	KindDateTime
	KindDuration
)

// String returns the XPath type name for the kind.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "xs:integer"
	case KindDecimal:
		return "xs:decimal"
	case KindFloat:
		return "xs:float"
	case KindDouble:
		return "xs:double"
	case KindBoolean:
		return "xs:boolean"
	case KindString:
		return "xs:string"
	case KindDateTime:
		return "xs:dateTime"
	case KindDuration:
		return "xs:dayTimeDuration"
	default:
		return "(unknown)"
	}
}

// Value is an evaluated XPath value. The concrete types are Integer,
// Decimal, Float, Double, Boolean, String, DateTime, and Duration.
type Value interface {
	Kind() Kind
}

// Integer is an xs:integer value. Corpus literals intentionally exceed the
// signed 64-bit range, so integers carry arbitrary precision; the range
// check happens when a value is re-encoded for the target.
type Integer struct {
	Val *big.Int
}

// NewInteger builds an Integer from an int64.
func NewInteger(v int64) Integer { return Integer{Val: big.NewInt(v)} }

// Kind implements Value.
func (Integer) Kind() Kind { return KindInteger }

// Decimal is an xs:decimal value.
type Decimal float64

// Kind implements Value.
func (Decimal) Kind() Kind { return KindDecimal }

// Float is an xs:float value. The parser stores the full-precision reading;
// 32-bit rounding is applied when the value is re-encoded to bits.
type Float float64

// Kind implements Value.
func (Float) Kind() Kind { return KindFloat }

// Double is an xs:double value.
type Double float64

// Kind implements Value.
func (Double) Kind() Kind { return KindDouble }

// Boolean is an xs:boolean value.
type Boolean bool

// Kind implements Value.
func (Boolean) Kind() Kind { return KindBoolean }

// String is an xs:string value.
type String string

// Kind implements Value.
func (String) Kind() Kind { return KindString }

// DateTime is an xs:dateTime value: a UTC instant plus the zone offset the
// literal carried, retained separately because the target representation
// keeps the offset alongside the epoch value.
type DateTime struct {
	Time            time.Time // UTC instant
	HasTZ           bool
	TZOffsetMinutes int
}

// Kind implements Value.
func (DateTime) Kind() Kind { return KindDateTime }

// Duration is an xs:dayTimeDuration value in signed microseconds.
type Duration struct {
	Micros int64
}

// Kind implements Value.
func (Duration) Kind() Kind { return KindDuration }

// IsNumeric reports whether the value is one of the numeric kinds.
func IsNumeric(v Value) bool {
	switch v.Kind() {
	case KindInteger, KindDecimal, KindFloat, KindDouble:
		return true
	}
	return false
}

// Float64Value converts a numeric value to float64. Returns false for
// non-numeric values.
func Float64Value(v Value) (float64, bool) {
	switch n := v.(type) {
	case Integer:
		f, _ := new(big.Float).SetInt(n.Val).Float64()
		return f, true
	case Decimal:
		return float64(n), true
	case Float:
		return float64(n), true
	case Double:
		return float64(n), true
	}
	return 0, false
}

// IntegerValue converts a numeric value to an arbitrary-precision integer,
// truncating floating values toward zero. Returns false for non-numeric
// values and for NaN or infinities, which have no integer reading.
func IntegerValue(v Value) (*big.Int, bool) {
	switch n := v.(type) {
	case Integer:
		return new(big.Int).Set(n.Val), true
	case Decimal:
		return truncToInt(float64(n))
	case Float:
		return truncToInt(float64(n))
	case Double:
		return truncToInt(float64(n))
	}
	return nil, false
}

func truncToInt(f float64) (*big.Int, bool) {
	if f != f { // NaN has no integer reading; big.NewFloat would panic on it
		return nil, false
	}
	bf := big.NewFloat(f)
	if bf.IsInf() {
		return nil, false
	}
	i, _ := bf.Int(nil)
	return i, true
}

// errValue reports a uniform evaluation type error.
func errValue(op string, v Value) error {
	return fmt.Errorf("cannot apply %s to %s", op, v.Kind())
}
