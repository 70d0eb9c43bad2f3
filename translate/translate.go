// Package translate classifies XPath literal expressions and rewrites them as
// Noir primitive calls. Every rejection is a typed *types.Skip so callers can
// account for why a corpus case produced no test.
package translate

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/noir-xpath/testgen/catalog"
	"github.com/noir-xpath/testgen/encode"
	"github.com/noir-xpath/testgen/types"
	"github.com/noir-xpath/testgen/xpath"
)

// unsupportedDependencies are corpus feature flags no circuit can honor.
var unsupportedDependencies = []string{"schemaValidation", "schemaImport", "staticTyping"}

// CheckDependencies rejects test cases that declare a feature dependency the
// target library cannot satisfy.
func CheckDependencies(deps []types.Dependency) error {
	for _, dep := range deps {
		for _, unsupported := range unsupportedDependencies {
			if strings.Contains(dep.String(), unsupported) {
				return types.Skipf(types.SkipUnsupportedDependency, "%s", dep)
			}
		}
	}
	return nil
}

var (
	exponentLiteral = regexp.MustCompile(`\d+[eE][+-]?\d+`)
	decimalLiteral  = regexp.MustCompile(`\d+\.\d+`)
)

// detectOperandType infers the numeric representation an expression works in
// from its lexical content. Explicit constructor markers win over literal
// shape; the default is integer.
func detectOperandType(expr string) catalog.NumericType {
	if strings.Contains(expr, "xs:float") {
		return catalog.TypeFloat
	}
	if strings.Contains(expr, "xs:double") {
		return catalog.TypeDouble
	}
	if strings.Contains(expr, "xs:decimal") || strings.Contains(expr, "xs:int") ||
		strings.Contains(expr, "xs:long") {
		return catalog.TypeInt
	}
	if exponentLiteral.MatchString(expr) || decimalLiteral.MatchString(expr) {
		return catalog.TypeDouble
	}
	return catalog.TypeInt
}

// Translate rewrites one corpus expression as a call to op's Noir primitive.
// The error, when non-nil, is always a *types.Skip.
func Translate(expr string, op catalog.Operation) (*types.TranslationRecord, error) {
	spec, ok := catalog.Lookup(op)
	if !ok {
		return nil, types.Skipf(types.SkipUnknownOperation, "%s", op)
	}

	expr = strings.TrimSpace(expr)

	// Operand-variant gate. Casts carry their own source/target typing and
	// bypass it.
	if !spec.IsCast() {
		detected := detectOperandType(expr)
		switch spec.Variant {
		case catalog.VariantFloat:
			if detected != catalog.TypeFloat {
				return nil, types.Skipf(types.SkipVariantMismatch, "want float operands, expression looks %s", detected)
			}
		case catalog.VariantDouble:
			if detected != catalog.TypeDouble {
				return nil, types.Skipf(types.SkipVariantMismatch, "want double operands, expression looks %s", detected)
			}
		default:
			if detected == catalog.TypeFloat || detected == catalog.TypeDouble {
				return nil, types.Skipf(types.SkipVariantMismatch, "want integer operands, expression looks %s", detected)
			}
		}
	}

	root, err := xpath.Parse(expr)
	if err != nil {
		return nil, types.Skipf(types.SkipParseFailure, "%v", err)
	}

	t := &translator{spec: spec}
	return t.dispatch(root)
}

type translator struct {
	spec catalog.Spec
}

var datetimeComponents = map[string]string{
	"year-from-dateTime":     "year_from_datetime",
	"month-from-dateTime":    "month_from_datetime",
	"day-from-dateTime":      "day_from_datetime",
	"hours-from-dateTime":    "hours_from_datetime",
	"minutes-from-dateTime":  "minutes_from_datetime",
	"seconds-from-dateTime":  "seconds_from_datetime",
	"timezone-from-dateTime": "timezone_from_datetime",
}

var durationComponents = map[string]string{
	"days-from-duration":    "days_from_duration",
	"hours-from-duration":   "hours_from_duration",
	"minutes-from-duration": "minutes_from_duration",
	"seconds-from-duration": "seconds_from_duration",
}

func (t *translator) dispatch(root *xpath.Token) (*types.TranslationRecord, error) {
	if t.spec.IsCast() {
		return t.cast(root)
	}

	target := t.spec.NoirName
	switch {
	case isDatetimeComponent(target):
		return t.datetimeComponent(root)
	case isDurationComponent(target):
		return t.durationComponent(root)
	case strings.HasPrefix(target, "duration_") && isComparisonName(target):
		return t.durationComparison(root)
	case target == "duration_add" || target == "duration_subtract":
		return t.durationArithmetic(root)
	case target == "datetime_add_duration" || target == "datetime_subtract_duration" || target == "datetime_difference":
		return t.datetimeArithmetic(root)
	case strings.HasPrefix(target, "datetime_") && isComparisonName(target):
		return t.datetimeComparison(root)
	case target == "fn_not":
		return t.fnNot(root)
	case strings.HasPrefix(target, "boolean_"):
		return t.booleanComparison(root)
	case target == "numeric_mod_int":
		return t.intBinary(root, "mod")
	case target == "numeric_unary_plus_int":
		return t.intUnary(root, "+")
	case target == "numeric_unary_minus_int":
		return t.intUnary(root, "-")
	case strings.HasPrefix(target, "numeric_") && isComparisonName(target):
		if t.spec.Variant == catalog.VariantNone {
			return t.intComparison(root)
		}
		return t.floatComparison(root)
	case strings.HasPrefix(target, "numeric_"):
		if t.spec.Variant == catalog.VariantNone {
			return t.intArithmeticOp(root)
		}
		return t.floatArithmeticOp(root)
	case target == "abs_int" || target == "ceil_int" || target == "floor_int" || target == "round_int":
		return t.intRounding(root)
	case strings.HasSuffix(target, "_float") || strings.HasSuffix(target, "_double"):
		return t.floatRounding(root)
	}
	return nil, types.Skipf(types.SkipUnknownOperation, "no handler for %s", t.spec.Op)
}

func isDatetimeComponent(target string) bool {
	for _, v := range datetimeComponents {
		if v == target {
			return true
		}
	}
	return false
}

func isDurationComponent(target string) bool {
	for _, v := range durationComponents {
		if v == target {
			return true
		}
	}
	return false
}

func isComparisonName(target string) bool {
	return strings.HasSuffix(target, "_equal") || strings.Contains(target, "_less_than") ||
		strings.Contains(target, "_greater_than") ||
		strings.Contains(target, "_equal_") || // numeric_equal_int and friends
		strings.Contains(target, "_less_than_") ||
		strings.Contains(target, "_greater_than_")
}

// comparisonSymbols returns the source-language spellings a comparison target
// accepts.
func comparisonSymbols(target string) []string {
	switch {
	case strings.Contains(target, "equal"):
		return []string{"eq", "="}
	case strings.Contains(target, "less_than"):
		return []string{"lt", "<"}
	case strings.Contains(target, "greater_than"):
		return []string{"gt", ">"}
	}
	return nil
}

func symbolMatches(symbol string, accepted []string) bool {
	for _, s := range accepted {
		if s == symbol {
			return true
		}
	}
	return false
}

// datetimeSetup evaluates a token to a datetime and renders its constructor
// statement with the given variable name.
func (t *translator) datetimeSetup(tok *xpath.Token, varName string) (string, error) {
	v, err := xpath.Evaluate(tok)
	if err != nil {
		return "", types.Skipf(types.SkipParseFailure, "datetime operand: %v", err)
	}
	dt, ok := v.(xpath.DateTime)
	if !ok {
		return "", types.Skipf(types.SkipOperandKind, "want xs:dateTime, got %s", v.Kind())
	}
	micros, tz, err := encode.DatetimeEpoch(dt)
	if err != nil {
		return "", types.Skipf(types.SkipPreEpoch, "%v", err)
	}
	return fmt.Sprintf("let %s = datetime_from_epoch_microseconds_with_tz(%d, %d);", varName, micros, tz), nil
}

// durationMicros extracts the microsecond value of a dayTimeDuration
// constructor token. The constructor shape is required; arbitrary duration
// expressions are rejected.
func durationMicros(tok *xpath.Token) (int64, error) {
	if xpath.FuncName(tok) != "dayTimeDuration" {
		return 0, types.Skipf(types.SkipUnrecognizedShape, "want xs:dayTimeDuration constructor, got %s", xpath.FuncName(tok))
	}
	v, err := xpath.Evaluate(tok)
	if err != nil {
		return 0, types.Skipf(types.SkipParseFailure, "duration operand: %v", err)
	}
	d, ok := v.(xpath.Duration)
	if !ok {
		return 0, types.Skipf(types.SkipOperandKind, "want duration, got %s", v.Kind())
	}
	return d.Micros, nil
}

func durationSetup(tok *xpath.Token, varName string) (string, error) {
	micros, err := durationMicros(tok)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("let %s = duration_from_microseconds(%d);", varName, micros), nil
}

// intOperand evaluates a token and narrows it to i64, truncating fractional
// values toward zero.
func intOperand(tok *xpath.Token) (int64, error) {
	v, err := xpath.Evaluate(tok)
	if err != nil {
		return 0, types.Skipf(types.SkipParseFailure, "%v", err)
	}
	i, ok := xpath.IntegerValue(v)
	if !ok {
		return 0, types.Skipf(types.SkipOperandKind, "want numeric operand, got %s", v.Kind())
	}
	n, err := encode.Int64(i)
	if err != nil {
		return 0, types.Skipf(types.SkipOutOfRange, "%v", err)
	}
	return n, nil
}

func floatOperand(tok *xpath.Token) (float64, error) {
	v, err := xpath.Evaluate(tok)
	if err != nil {
		return 0, types.Skipf(types.SkipParseFailure, "%v", err)
	}
	f, ok := xpath.Float64Value(v)
	if !ok {
		return 0, types.Skipf(types.SkipOperandKind, "want numeric operand, got %s", v.Kind())
	}
	return f, nil
}

func boolOperand(tok *xpath.Token) (bool, error) {
	v, err := xpath.Evaluate(tok)
	if err != nil {
		return false, types.Skipf(types.SkipParseFailure, "%v", err)
	}
	b, ok := v.(xpath.Boolean)
	if !ok {
		return false, types.Skipf(types.SkipOperandKind, "want boolean operand, got %s", v.Kind())
	}
	return bool(b), nil
}

// floatLiteralSetup renders a bit-pattern constructor statement for one
// floating operand in the operation's width.
func (t *translator) floatLiteralSetup(varName string, f float64) string {
	if t.spec.Variant == catalog.VariantFloat || strings.HasSuffix(t.spec.NoirName, "_float") {
		return fmt.Sprintf("let %s = XsdFloat::from_bits(%d);", varName, encode.FloatBits(f))
	}
	return fmt.Sprintf("let %s = XsdDouble::from_bits(%d);", varName, encode.DoubleBits(f))
}

// datetimeComponent handles component extraction calls, including the
// comparison-wrapped form `fn:year-from-dateTime(...) eq 1999`, where the
// right-hand literal becomes the embedded expected value.
func (t *translator) datetimeComponent(root *xpath.Token) (*types.TranslationRecord, error) {
	embedded := ""
	call := root
	if symbolMatches(root.Symbol, []string{"eq", "="}) && len(root.Children) == 2 {
		n, err := intOperand(root.Children[1])
		if err != nil {
			return nil, err
		}
		embedded = fmt.Sprintf("%d", n)
		call = root.Children[0]
	}

	name := xpath.FuncName(call)
	target, ok := datetimeComponents[name]
	if !ok || target != t.spec.NoirName {
		return nil, types.Skipf(types.SkipUnrecognizedShape, "want %s call, got %s", t.spec.Op, name)
	}
	args := xpath.FuncArgs(call)
	if len(args) < 1 {
		return nil, types.Skipf(types.SkipUnrecognizedShape, "%s without argument", name)
	}

	setup, err := t.datetimeSetup(args[0], "dt")
	if err != nil {
		return nil, err
	}
	return &types.TranslationRecord{
		Setup:            []string{setup},
		Call:             fmt.Sprintf("%s(dt)", t.spec.NoirName),
		EmbeddedExpected: embedded,
	}, nil
}

func (t *translator) durationComponent(root *xpath.Token) (*types.TranslationRecord, error) {
	name := xpath.FuncName(root)
	target, ok := durationComponents[name]
	if !ok || target != t.spec.NoirName {
		return nil, types.Skipf(types.SkipUnrecognizedShape, "want %s call, got %s", t.spec.Op, name)
	}
	args := xpath.FuncArgs(root)
	if len(args) < 1 {
		return nil, types.Skipf(types.SkipUnrecognizedShape, "%s without argument", name)
	}
	setup, err := durationSetup(args[0], "dur")
	if err != nil {
		return nil, err
	}
	return &types.TranslationRecord{
		Setup: []string{setup},
		Call:  fmt.Sprintf("%s(dur)", t.spec.NoirName),
	}, nil
}

func (t *translator) durationComparison(root *xpath.Token) (*types.TranslationRecord, error) {
	if !symbolMatches(root.Symbol, comparisonSymbols(t.spec.NoirName)) || len(root.Children) != 2 {
		return nil, types.Skipf(types.SkipUnrecognizedShape, "want %s comparison, got %q", t.spec.Op, root.Symbol)
	}
	setup1, err := durationSetup(root.Children[0], "dur1")
	if err != nil {
		return nil, err
	}
	setup2, err := durationSetup(root.Children[1], "dur2")
	if err != nil {
		return nil, err
	}
	return &types.TranslationRecord{
		Setup: []string{setup1, setup2},
		Call:  fmt.Sprintf("%s(dur1, dur2)", t.spec.NoirName),
	}, nil
}

func (t *translator) durationArithmetic(root *xpath.Token) (*types.TranslationRecord, error) {
	want := "+"
	if t.spec.NoirName == "duration_subtract" {
		want = "-"
	}
	if root.Symbol != want || len(root.Children) != 2 {
		return nil, types.Skipf(types.SkipUnrecognizedShape, "want duration %s, got %q", want, root.Symbol)
	}
	setup1, err := durationSetup(root.Children[0], "dur1")
	if err != nil {
		return nil, err
	}
	setup2, err := durationSetup(root.Children[1], "dur2")
	if err != nil {
		return nil, err
	}
	return &types.TranslationRecord{
		Setup: []string{setup1, setup2},
		Call:  fmt.Sprintf("%s(dur1, dur2)", t.spec.NoirName),
	}, nil
}

func (t *translator) datetimeArithmetic(root *xpath.Token) (*types.TranslationRecord, error) {
	switch t.spec.NoirName {
	case "datetime_add_duration", "datetime_subtract_duration":
		want := "+"
		if t.spec.NoirName == "datetime_subtract_duration" {
			want = "-"
		}
		if root.Symbol != want || len(root.Children) != 2 {
			return nil, types.Skipf(types.SkipUnrecognizedShape, "want dateTime %s duration, got %q", want, root.Symbol)
		}
		dtSetup, err := t.datetimeSetup(root.Children[0], "dt")
		if err != nil {
			return nil, err
		}
		durSetup, err := durationSetup(root.Children[1], "dur")
		if err != nil {
			return nil, err
		}
		return &types.TranslationRecord{
			Setup: []string{dtSetup, durSetup},
			Call:  fmt.Sprintf("%s(dt, dur)", t.spec.NoirName),
		}, nil

	case "datetime_difference":
		if root.Symbol != "-" || len(root.Children) != 2 {
			return nil, types.Skipf(types.SkipUnrecognizedShape, "want dateTime - dateTime, got %q", root.Symbol)
		}
		setup1, err := t.datetimeSetup(root.Children[0], "dt1")
		if err != nil {
			return nil, err
		}
		setup2, err := t.datetimeSetup(root.Children[1], "dt2")
		if err != nil {
			return nil, err
		}
		return &types.TranslationRecord{
			Setup: []string{setup1, setup2},
			Call:  fmt.Sprintf("%s(dt1, dt2)", t.spec.NoirName),
		}, nil
	}
	return nil, types.Skipf(types.SkipUnknownOperation, "%s", t.spec.Op)
}

// datetimeComparison translates a datetime comparison, recording the
// comparison's own truth value as the embedded expected result.
func (t *translator) datetimeComparison(root *xpath.Token) (*types.TranslationRecord, error) {
	if !symbolMatches(root.Symbol, comparisonSymbols(t.spec.NoirName)) || len(root.Children) != 2 {
		return nil, types.Skipf(types.SkipUnrecognizedShape, "want %s comparison, got %q", t.spec.Op, root.Symbol)
	}
	setup1, err := t.datetimeSetup(root.Children[0], "dt1")
	if err != nil {
		return nil, err
	}
	setup2, err := t.datetimeSetup(root.Children[1], "dt2")
	if err != nil {
		return nil, err
	}

	embedded := ""
	if v, evalErr := xpath.Evaluate(root); evalErr == nil {
		if b, ok := v.(xpath.Boolean); ok {
			embedded = fmt.Sprintf("%t", bool(b))
		}
	}
	return &types.TranslationRecord{
		Setup:            []string{setup1, setup2},
		Call:             fmt.Sprintf("%s(dt1, dt2)", t.spec.NoirName),
		EmbeddedExpected: embedded,
	}, nil
}

func (t *translator) fnNot(root *xpath.Token) (*types.TranslationRecord, error) {
	if xpath.FuncName(root) != "not" {
		return nil, types.Skipf(types.SkipUnrecognizedShape, "want fn:not call, got %s", xpath.FuncName(root))
	}
	args := xpath.FuncArgs(root)
	if len(args) < 1 {
		return nil, types.Skipf(types.SkipUnrecognizedShape, "fn:not without argument")
	}
	b, err := boolOperand(args[0])
	if err != nil {
		return nil, err
	}
	return &types.TranslationRecord{Call: fmt.Sprintf("fn_not(%t)", b)}, nil
}

func (t *translator) booleanComparison(root *xpath.Token) (*types.TranslationRecord, error) {
	if !symbolMatches(root.Symbol, comparisonSymbols(t.spec.NoirName)) || len(root.Children) != 2 {
		return nil, types.Skipf(types.SkipUnrecognizedShape, "want %s comparison, got %q", t.spec.Op, root.Symbol)
	}
	a, err := boolOperand(root.Children[0])
	if err != nil {
		return nil, err
	}
	b, err := boolOperand(root.Children[1])
	if err != nil {
		return nil, err
	}
	return &types.TranslationRecord{Call: fmt.Sprintf("%s(%t, %t)", t.spec.NoirName, a, b)}, nil
}

var intArithmeticSymbols = map[catalog.Operation][]string{
	catalog.OpNumericAdd:        {"+"},
	catalog.OpNumericSubtract:   {"-"},
	catalog.OpNumericMultiply:   {"*"},
	catalog.OpNumericDivide:     {"div", "idiv"},
	catalog.OpNumericIntegerDiv: {"div", "idiv"},
	catalog.OpNumericMod:        {"mod"},
}

func (t *translator) intArithmeticOp(root *xpath.Token) (*types.TranslationRecord, error) {
	accepted, ok := intArithmeticSymbols[t.spec.Op]
	if !ok {
		return nil, types.Skipf(types.SkipUnknownOperation, "%s", t.spec.Op)
	}
	if !symbolMatches(root.Symbol, accepted) {
		return nil, types.Skipf(types.SkipUnrecognizedShape, "want %s, got %q", t.spec.Op, root.Symbol)
	}
	return t.intBinary(root, root.Symbol)
}

func (t *translator) intBinary(root *xpath.Token, symbol string) (*types.TranslationRecord, error) {
	if root.Symbol != symbol || len(root.Children) != 2 {
		return nil, types.Skipf(types.SkipUnrecognizedShape, "want binary %q, got %q", symbol, root.Symbol)
	}
	a, err := intOperand(root.Children[0])
	if err != nil {
		return nil, err
	}
	b, err := intOperand(root.Children[1])
	if err != nil {
		return nil, err
	}
	return &types.TranslationRecord{Call: fmt.Sprintf("%s(%d, %d)", t.spec.NoirName, a, b)}, nil
}

func (t *translator) intUnary(root *xpath.Token, symbol string) (*types.TranslationRecord, error) {
	if root.Symbol != symbol || len(root.Children) != 1 {
		return nil, types.Skipf(types.SkipUnrecognizedShape, "want unary %q, got %q with %d operands", symbol, root.Symbol, len(root.Children))
	}
	n, err := intOperand(root.Children[0])
	if err != nil {
		return nil, err
	}
	return &types.TranslationRecord{Call: fmt.Sprintf("%s(%d)", t.spec.NoirName, n)}, nil
}

func (t *translator) intComparison(root *xpath.Token) (*types.TranslationRecord, error) {
	if !symbolMatches(root.Symbol, comparisonSymbols(t.spec.NoirName)) || len(root.Children) != 2 {
		return nil, types.Skipf(types.SkipUnrecognizedShape, "want %s comparison, got %q", t.spec.Op, root.Symbol)
	}
	a, err := intOperand(root.Children[0])
	if err != nil {
		return nil, err
	}
	b, err := intOperand(root.Children[1])
	if err != nil {
		return nil, err
	}
	return &types.TranslationRecord{Call: fmt.Sprintf("%s(%d, %d)", t.spec.NoirName, a, b)}, nil
}

var floatArithmeticSymbols = map[string][]string{
	"add":      {"+"},
	"subtract": {"-"},
	"multiply": {"*"},
	"divide":   {"div"},
}

func (t *translator) floatArithmeticOp(root *xpath.Token) (*types.TranslationRecord, error) {
	var accepted []string
	for verb, symbols := range floatArithmeticSymbols {
		if strings.Contains(t.spec.NoirName, verb) {
			accepted = symbols
			break
		}
	}
	if !symbolMatches(root.Symbol, accepted) || len(root.Children) != 2 {
		return nil, types.Skipf(types.SkipUnrecognizedShape, "want %s, got %q", t.spec.Op, root.Symbol)
	}
	a, err := floatOperand(root.Children[0])
	if err != nil {
		return nil, err
	}
	b, err := floatOperand(root.Children[1])
	if err != nil {
		return nil, err
	}
	return &types.TranslationRecord{
		Setup: []string{t.floatLiteralSetup("a", a), t.floatLiteralSetup("b", b)},
		Call:  fmt.Sprintf("%s(a, b)", t.spec.NoirName),
	}, nil
}

func (t *translator) floatComparison(root *xpath.Token) (*types.TranslationRecord, error) {
	if !symbolMatches(root.Symbol, comparisonSymbols(t.spec.NoirName)) || len(root.Children) != 2 {
		return nil, types.Skipf(types.SkipUnrecognizedShape, "want %s comparison, got %q", t.spec.Op, root.Symbol)
	}
	a, err := floatOperand(root.Children[0])
	if err != nil {
		return nil, err
	}
	b, err := floatOperand(root.Children[1])
	if err != nil {
		return nil, err
	}
	return &types.TranslationRecord{
		Setup: []string{t.floatLiteralSetup("a", a), t.floatLiteralSetup("b", b)},
		Call:  fmt.Sprintf("%s(a, b)", t.spec.NoirName),
	}, nil
}

var roundingNames = map[string]string{
	"abs_int": "abs", "ceil_int": "ceiling", "floor_int": "floor", "round_int": "round",
	"ceil_float": "ceiling", "floor_float": "floor", "round_float": "round",
	"ceil_double": "ceiling", "floor_double": "floor", "round_double": "round",
}

func (t *translator) intRounding(root *xpath.Token) (*types.TranslationRecord, error) {
	want := roundingNames[t.spec.NoirName]
	if xpath.FuncName(root) != want {
		return nil, types.Skipf(types.SkipUnrecognizedShape, "want fn:%s call, got %s", want, xpath.FuncName(root))
	}
	args := xpath.FuncArgs(root)
	if len(args) < 1 {
		return nil, types.Skipf(types.SkipUnrecognizedShape, "fn:%s without argument", want)
	}
	n, err := intOperand(args[0])
	if err != nil {
		return nil, err
	}
	return &types.TranslationRecord{Call: fmt.Sprintf("%s(%d)", t.spec.NoirName, n)}, nil
}

func (t *translator) floatRounding(root *xpath.Token) (*types.TranslationRecord, error) {
	want := roundingNames[t.spec.NoirName]
	if want == "" || xpath.FuncName(root) != want {
		return nil, types.Skipf(types.SkipUnrecognizedShape, "want fn:%s call, got %s", want, xpath.FuncName(root))
	}
	args := xpath.FuncArgs(root)
	if len(args) < 1 {
		return nil, types.Skipf(types.SkipUnrecognizedShape, "fn:%s without argument", want)
	}
	f, err := floatOperand(args[0])
	if err != nil {
		return nil, err
	}
	return &types.TranslationRecord{
		Setup: []string{t.floatLiteralSetup("val", f)},
		Call:  fmt.Sprintf("%s(val)", t.spec.NoirName),
	}, nil
}

// castTargetNames maps cast-pattern type names to the xs: constructor names
// they appear as in source expressions.
var castTargetNames = map[catalog.NumericType]string{
	catalog.TypeInt:    "integer",
	catalog.TypeFloat:  "float",
	catalog.TypeDouble: "double",
}

// cast handles both the `expr cast as xs:type` syntax and the constructor
// syntax `xs:type(expr)`.
func (t *translator) cast(root *xpath.Token) (*types.TranslationRecord, error) {
	pattern := t.spec.Cast
	expectedTarget := castTargetNames[pattern.Target]

	if root.Symbol == "cast" && len(root.Children) == 2 {
		if xpath.FuncName(root.Children[1]) != expectedTarget {
			return nil, types.Skipf(types.SkipUnrecognizedShape, "cast target is xs:%s, want xs:%s", xpath.FuncName(root.Children[1]), expectedTarget)
		}
		return t.castSource(root.Children[0])
	}

	if xpath.FuncName(root) == expectedTarget {
		args := xpath.FuncArgs(root)
		if len(args) < 1 {
			return nil, types.Skipf(types.SkipUnrecognizedShape, "xs:%s without argument", expectedTarget)
		}
		return t.castSource(args[0])
	}

	return nil, types.Skipf(types.SkipUnrecognizedShape, "not a cast to xs:%s", expectedTarget)
}

// castSource validates the cast's source operand against the declared source
// type and renders the call.
func (t *translator) castSource(source *xpath.Token) (*types.TranslationRecord, error) {
	sourceSymbol := xpath.FuncName(source)

	switch t.spec.Cast.Source {
	case catalog.TypeInt:
		// Decimal-typed sources are not convertible yet.
		if sourceSymbol == "decimal" {
			return nil, types.Skipf(types.SkipOperandKind, "xs:decimal source not supported")
		}
		v, err := xpath.Evaluate(source)
		if err != nil {
			return nil, types.Skipf(types.SkipParseFailure, "cast source: %v", err)
		}
		var i *big.Int
		switch n := v.(type) {
		case xpath.Integer:
			i = n.Val
		case xpath.Decimal:
			var ok bool
			if i, ok = xpath.IntegerValue(n); !ok {
				return nil, types.Skipf(types.SkipOperandKind, "source %v not integral", n)
			}
		default:
			return nil, types.Skipf(types.SkipOperandKind, "want integer source, got %s", v.Kind())
		}
		n, err := encode.Int8(i)
		if err != nil {
			return nil, types.Skipf(types.SkipOutOfRange, "%v", err)
		}
		return &types.TranslationRecord{Call: fmt.Sprintf("%s(%d)", t.spec.NoirName, n)}, nil

	case catalog.TypeFloat:
		if sourceSymbol != "float" {
			return nil, types.Skipf(types.SkipOperandKind, "want xs:float source, got %s", sourceSymbol)
		}
		f, err := floatOperand(source)
		if err != nil {
			return nil, err
		}
		return &types.TranslationRecord{
			Setup: []string{fmt.Sprintf("let f = XsdFloat::from_bits(%d);", encode.FloatBits(f))},
			Call:  fmt.Sprintf("%s(f)", t.spec.NoirName),
		}, nil

	case catalog.TypeDouble:
		if sourceSymbol != "double" {
			return nil, types.Skipf(types.SkipOperandKind, "want xs:double source, got %s", sourceSymbol)
		}
		f, err := floatOperand(source)
		if err != nil {
			return nil, err
		}
		return &types.TranslationRecord{
			Setup: []string{fmt.Sprintf("let d = XsdDouble::from_bits(%d);", encode.DoubleBits(f))},
			Call:  fmt.Sprintf("%s(d)", t.spec.NoirName),
		}, nil
	}
	return nil, types.Skipf(types.SkipUnknownOperation, "%s", t.spec.Op)
}
