package xpath

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Evaluate reduces a token tree to a typed value. Only the literal-expression
// subset the corpus exercises is supported: literals, constructor functions,
// boolean functions, numeric arithmetic, and value comparisons. Everything
// else returns an error, which the translator treats as a rejection.
func Evaluate(t *Token) (Value, error) {
	switch t.Symbol {
	case SymInteger:
		i, ok := new(big.Int).SetString(t.Value, 10)
		if !ok {
			return nil, fmt.Errorf("malformed integer literal %q", t.Value)
		}
		return Integer{Val: i}, nil

	case SymDecimal:
		f, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed decimal literal %q", t.Value)
		}
		return Decimal(f), nil

	case SymDouble:
		f, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed double literal %q", t.Value)
		}
		return Double(f), nil

	case SymString:
		return String(t.Value), nil

	case ":":
		if len(t.Children) < 2 {
			return nil, fmt.Errorf("malformed qualified name")
		}
		return Evaluate(t.Children[1])

	case "+", "-":
		if len(t.Children) == 1 {
			return evalUnary(t.Symbol, t.Children[0])
		}
		fallthrough
	case "*", "div", "idiv", "mod":
		return evalArithmetic(t)

	case "=", "!=", "<", "<=", ">", ">=", "eq", "ne", "lt", "le", "gt", "ge":
		return evalComparison(t)

	case "and", "or":
		return evalLogical(t)

	case "cast":
		return evalCast(t)
	}

	return evalFunction(t)
}

func evalUnary(symbol string, operand *Token) (Value, error) {
	v, err := Evaluate(operand)
	if err != nil {
		return nil, err
	}
	if symbol == "+" {
		if !IsNumeric(v) {
			return nil, errValue("unary +", v)
		}
		return v, nil
	}
	switch n := v.(type) {
	case Integer:
		return Integer{Val: new(big.Int).Neg(n.Val)}, nil
	case Decimal:
		return -n, nil
	case Float:
		return -n, nil
	case Double:
		return -n, nil
	}
	return nil, errValue("unary -", v)
}

func evalArithmetic(t *Token) (Value, error) {
	if len(t.Children) != 2 {
		return nil, fmt.Errorf("operator %q wants two operands", t.Symbol)
	}
	a, err := Evaluate(t.Children[0])
	if err != nil {
		return nil, err
	}
	b, err := Evaluate(t.Children[1])
	if err != nil {
		return nil, err
	}
	if !IsNumeric(a) || !IsNumeric(b) {
		return nil, fmt.Errorf("operator %q wants numeric operands", t.Symbol)
	}

	// Integer-only lanes keep arbitrary precision so that out-of-range
	// operands surface at the encoding bound check, not here.
	if a.Kind() == KindInteger && b.Kind() == KindInteger {
		x := a.(Integer).Val
		y := b.(Integer).Val
		switch t.Symbol {
		case "+":
			return Integer{Val: new(big.Int).Add(x, y)}, nil
		case "-":
			return Integer{Val: new(big.Int).Sub(x, y)}, nil
		case "*":
			return Integer{Val: new(big.Int).Mul(x, y)}, nil
		case "idiv", "mod":
			if y.Sign() == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			q := new(big.Int)
			r := new(big.Int)
			q.QuoRem(x, y, r) // truncated division, sign of remainder follows the dividend
			if t.Symbol == "idiv" {
				return Integer{Val: q}, nil
			}
			return Integer{Val: r}, nil
		}
	}

	fa, _ := Float64Value(a)
	fb, _ := Float64Value(b)
	var out float64
	switch t.Symbol {
	case "+":
		out = fa + fb
	case "-":
		out = fa - fb
	case "*":
		out = fa * fb
	case "div":
		if fb == 0 && a.Kind() != KindFloat && a.Kind() != KindDouble && b.Kind() != KindFloat && b.Kind() != KindDouble {
			return nil, fmt.Errorf("division by zero")
		}
		out = fa / fb
	case "idiv":
		if fb == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		i, ok := truncToInt(fa / fb)
		if !ok {
			return nil, fmt.Errorf("idiv result is not finite")
		}
		return Integer{Val: i}, nil
	case "mod":
		out = math.Mod(fa, fb)
	}
	return promoteFloat(a, b, out), nil
}

// promoteFloat picks the widest floating kind of the two operands for a
// float-lane arithmetic result.
func promoteFloat(a, b Value, out float64) Value {
	if a.Kind() == KindDouble || b.Kind() == KindDouble {
		return Double(out)
	}
	if a.Kind() == KindFloat || b.Kind() == KindFloat {
		return Float(out)
	}
	return Decimal(out)
}

func evalComparison(t *Token) (Value, error) {
	if len(t.Children) != 2 {
		return nil, fmt.Errorf("comparison %q wants two operands", t.Symbol)
	}
	a, err := Evaluate(t.Children[0])
	if err != nil {
		return nil, err
	}
	b, err := Evaluate(t.Children[1])
	if err != nil {
		return nil, err
	}
	cmp, err := compareValues(a, b)
	if err != nil {
		return nil, err
	}
	switch t.Symbol {
	case "eq", "=":
		return Boolean(cmp == 0), nil
	case "ne", "!=":
		return Boolean(cmp != 0), nil
	case "lt", "<":
		return Boolean(cmp < 0), nil
	case "le", "<=":
		return Boolean(cmp <= 0), nil
	case "gt", ">":
		return Boolean(cmp > 0), nil
	case "ge", ">=":
		return Boolean(cmp >= 0), nil
	}
	return nil, fmt.Errorf("unknown comparison %q", t.Symbol)
}

// compareValues orders two values of compatible kinds, returning -1, 0, or 1.
func compareValues(a, b Value) (int, error) {
	if IsNumeric(a) && IsNumeric(b) {
		if a.Kind() == KindInteger && b.Kind() == KindInteger {
			return a.(Integer).Val.Cmp(b.(Integer).Val), nil
		}
		fa, _ := Float64Value(a)
		fb, _ := Float64Value(b)
		switch {
		case fa < fb:
			return -1, nil
		case fa > fb:
			return 1, nil
		case fa == fb:
			return 0, nil
		}
		return 0, fmt.Errorf("unordered comparison (NaN operand)")
	}

	switch x := a.(type) {
	case Boolean:
		y, ok := b.(Boolean)
		if !ok {
			break
		}
		return boolCmp(bool(x)) - boolCmp(bool(y)), nil
	case String:
		y, ok := b.(String)
		if !ok {
			break
		}
		return strings.Compare(string(x), string(y)), nil
	case DateTime:
		y, ok := b.(DateTime)
		if !ok {
			break
		}
		return x.Time.Compare(y.Time), nil
	case Duration:
		y, ok := b.(Duration)
		if !ok {
			break
		}
		switch {
		case x.Micros < y.Micros:
			return -1, nil
		case x.Micros > y.Micros:
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("cannot compare %s with %s", a.Kind(), b.Kind())
}

func boolCmp(b bool) int {
	if b {
		return 1
	}
	return 0
}

func evalLogical(t *Token) (Value, error) {
	if len(t.Children) != 2 {
		return nil, fmt.Errorf("operator %q wants two operands", t.Symbol)
	}
	a, err := Evaluate(t.Children[0])
	if err != nil {
		return nil, err
	}
	b, err := Evaluate(t.Children[1])
	if err != nil {
		return nil, err
	}
	ba, ok := a.(Boolean)
	if !ok {
		return nil, errValue(t.Symbol, a)
	}
	bb, ok := b.(Boolean)
	if !ok {
		return nil, errValue(t.Symbol, b)
	}
	if t.Symbol == "and" {
		return ba && bb, nil
	}
	return ba || bb, nil
}

// evalCast evaluates "expr cast as xs:type" by re-dispatching through the
// matching constructor.
func evalCast(t *Token) (Value, error) {
	if len(t.Children) != 2 {
		return nil, fmt.Errorf("malformed cast expression")
	}
	v, err := Evaluate(t.Children[0])
	if err != nil {
		return nil, err
	}
	return construct(FuncName(t.Children[1]), v)
}

// evalFunction handles constructor and boolean function calls.
func evalFunction(t *Token) (Value, error) {
	name := FuncName(t)
	args := FuncArgs(t)

	switch name {
	case "true":
		if len(args) == 0 {
			return Boolean(true), nil
		}
	case "false":
		if len(args) == 0 {
			return Boolean(false), nil
		}
	case "not":
		if len(args) == 1 {
			v, err := Evaluate(args[0])
			if err != nil {
				return nil, err
			}
			b, ok := v.(Boolean)
			if !ok {
				return nil, errValue("fn:not", v)
			}
			return !b, nil
		}
	case "integer", "decimal", "float", "double", "boolean", "string",
		"dateTime", "dayTimeDuration":
		if len(args) == 1 {
			v, err := Evaluate(args[0])
			if err != nil {
				return nil, err
			}
			return construct(name, v)
		}
	}
	return nil, fmt.Errorf("cannot evaluate %q", name)
}

// construct applies an xs: constructor to an already-evaluated value.
func construct(typeName string, v Value) (Value, error) {
	switch typeName {
	case "integer":
		if s, ok := v.(String); ok {
			i, ok := new(big.Int).SetString(strings.TrimSpace(string(s)), 10)
			if !ok {
				return nil, fmt.Errorf("cannot cast %q to xs:integer", s)
			}
			return Integer{Val: i}, nil
		}
		i, ok := IntegerValue(v)
		if !ok {
			return nil, errValue("xs:integer", v)
		}
		return Integer{Val: i}, nil

	case "decimal":
		f, err := numericText(v, false)
		if err != nil {
			return nil, err
		}
		return Decimal(f), nil

	case "float":
		f, err := numericText(v, true)
		if err != nil {
			return nil, err
		}
		return Float(f), nil

	case "double":
		f, err := numericText(v, true)
		if err != nil {
			return nil, err
		}
		return Double(f), nil

	case "boolean":
		switch x := v.(type) {
		case Boolean:
			return x, nil
		case String:
			switch strings.TrimSpace(string(x)) {
			case "true", "1":
				return Boolean(true), nil
			case "false", "0":
				return Boolean(false), nil
			}
			return nil, fmt.Errorf("cannot cast %q to xs:boolean", x)
		}
		if f, ok := Float64Value(v); ok {
			return Boolean(f != 0), nil
		}
		return nil, errValue("xs:boolean", v)

	case "string":
		if s, ok := v.(String); ok {
			return s, nil
		}
		return nil, errValue("xs:string", v)

	case "dateTime":
		s, ok := v.(String)
		if !ok {
			if dt, isDT := v.(DateTime); isDT {
				return dt, nil
			}
			return nil, errValue("xs:dateTime", v)
		}
		return ParseDateTime(strings.TrimSpace(string(s)))

	case "dayTimeDuration":
		s, ok := v.(String)
		if !ok {
			if d, isDur := v.(Duration); isDur {
				return d, nil
			}
			return nil, errValue("xs:dayTimeDuration", v)
		}
		micros, err := ParseDayTimeDuration(strings.TrimSpace(string(s)))
		if err != nil {
			return nil, err
		}
		return Duration{Micros: micros}, nil
	}
	return nil, fmt.Errorf("unknown constructor xs:%s", typeName)
}

// numericText converts a value to float64 for the decimal/float/double
// constructors. Strings go through ParseFloat with the XPath spellings of
// the special values when special is true.
func numericText(v Value, special bool) (float64, error) {
	if s, ok := v.(String); ok {
		text := strings.TrimSpace(string(s))
		if special {
			switch strings.ToUpper(text) {
			case "NAN":
				return math.NaN(), nil
			case "INF", "+INF":
				return math.Inf(1), nil
			case "-INF":
				return math.Inf(-1), nil
			}
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot cast %q to a number", text)
		}
		return f, nil
	}
	if f, ok := Float64Value(v); ok {
		return f, nil
	}
	return 0, errValue("numeric cast", v)
}
