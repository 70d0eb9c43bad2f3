package translate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noir-xpath/testgen/catalog"
	"github.com/noir-xpath/testgen/types"
)

func requireSkip(t *testing.T, err error, reason types.SkipReason) {
	t.Helper()
	require.Error(t, err)
	var skip *types.Skip
	require.True(t, errors.As(err, &skip), "error %v is not a skip", err)
	assert.Equal(t, reason, skip.Reason)
}

func TestTranslateIntegerArithmetic(t *testing.T) {
	rec, err := Translate("5 + 3", catalog.OpNumericAdd)
	require.NoError(t, err)
	assert.Empty(t, rec.Setup)
	assert.Equal(t, "numeric_add_int(5, 3)", rec.Call)

	// The op: call form is not a translatable shape.
	_, err = Translate("op:numeric-add(5, 3)", catalog.OpNumericAdd)
	requireSkip(t, err, types.SkipUnrecognizedShape)

	rec, err = Translate("-7 idiv 2", catalog.OpNumericIntegerDiv)
	require.NoError(t, err)
	assert.Equal(t, "numeric_divide_int(-7, 2)", rec.Call)

	rec, err = Translate("10 mod 3", catalog.OpNumericMod)
	require.NoError(t, err)
	assert.Equal(t, "numeric_mod_int(10, 3)", rec.Call)
}

func TestTranslateFunctionCallOperands(t *testing.T) {
	// Operands given through keyword syntax evaluate before rendering.
	rec, err := Translate("xs:integer('7') + xs:integer('2')", catalog.OpNumericAdd)
	require.NoError(t, err)
	assert.Equal(t, "numeric_add_int(7, 2)", rec.Call)
}

func TestTranslateOutOfRangeOperand(t *testing.T) {
	_, err := Translate("9223372036854775808 + 1", catalog.OpNumericAdd)
	requireSkip(t, err, types.SkipOutOfRange)
}

func TestTranslateVariantGate(t *testing.T) {
	// Float-marked expression against the integer variant.
	_, err := Translate("xs:float(1.5) + xs:float(2.5)", catalog.OpNumericAdd)
	requireSkip(t, err, types.SkipVariantMismatch)

	// Integer expression against the float variant.
	_, err = Translate("5 + 3", catalog.OpNumericAddFloat)
	requireSkip(t, err, types.SkipVariantMismatch)

	// Bare decimal literals imply double, not float.
	_, err = Translate("1.5 + 2.5", catalog.OpNumericAddFloat)
	requireSkip(t, err, types.SkipVariantMismatch)
}

func TestTranslateFloatArithmetic(t *testing.T) {
	rec, err := Translate("xs:float(1.5) + xs:float(2.5)", catalog.OpNumericAddFloat)
	require.NoError(t, err)
	require.Len(t, rec.Setup, 2)
	// 1.5f32 = 0x3fc00000, 2.5f32 = 0x40200000
	assert.Equal(t, "let a = XsdFloat::from_bits(1069547520);", rec.Setup[0])
	assert.Equal(t, "let b = XsdFloat::from_bits(1075838976);", rec.Setup[1])
	assert.Equal(t, "numeric_add_float(a, b)", rec.Call)
}

func TestTranslateDoubleComparison(t *testing.T) {
	rec, err := Translate("1.5 lt 2.5", catalog.OpNumericLessThanDouble)
	require.NoError(t, err)
	require.Len(t, rec.Setup, 2)
	assert.Contains(t, rec.Setup[0], "XsdDouble::from_bits(")
	assert.Equal(t, "numeric_less_than_double(a, b)", rec.Call)
}

func TestTranslateFnNot(t *testing.T) {
	rec, err := Translate("fn:not(false())", catalog.FnNot)
	require.NoError(t, err)
	assert.Empty(t, rec.Setup)
	assert.Equal(t, "fn_not(false)", rec.Call)

	rec, err = Translate("fn:not(1 eq 2)", catalog.FnNot)
	require.NoError(t, err)
	assert.Equal(t, "fn_not(false)", rec.Call)

	_, err = Translate("fn:not(5)", catalog.FnNot)
	requireSkip(t, err, types.SkipOperandKind)
}

func TestTranslateBooleanComparison(t *testing.T) {
	rec, err := Translate("true() eq false()", catalog.OpBooleanEqual)
	require.NoError(t, err)
	assert.Equal(t, "boolean_equal(true, false)", rec.Call)

	rec, err = Translate("false() lt true()", catalog.OpBooleanLessThan)
	require.NoError(t, err)
	assert.Equal(t, "boolean_less_than(false, true)", rec.Call)
}

func TestTranslateDatetimeComponent(t *testing.T) {
	rec, err := Translate("fn:year-from-dateTime(xs:dateTime('1999-05-31T13:20:00-05:00'))", catalog.FnYearFromDateTime)
	require.NoError(t, err)
	require.Len(t, rec.Setup, 1)
	assert.Equal(t, "let dt = datetime_from_epoch_microseconds_with_tz(928174800000000, -300);", rec.Setup[0])
	assert.Equal(t, "year_from_datetime(dt)", rec.Call)
	assert.Empty(t, rec.EmbeddedExpected)
}

func TestTranslateDatetimeComponentEmbeddedComparison(t *testing.T) {
	rec, err := Translate("fn:year-from-dateTime(xs:dateTime('1999-05-31T13:20:00Z')) eq 1999", catalog.FnYearFromDateTime)
	require.NoError(t, err)
	assert.Equal(t, "year_from_datetime(dt)", rec.Call)
	assert.Equal(t, "1999", rec.EmbeddedExpected)
}

func TestTranslatePreEpochDatetime(t *testing.T) {
	_, err := Translate("fn:year-from-dateTime(xs:dateTime('1969-12-31T23:59:59Z'))", catalog.FnYearFromDateTime)
	requireSkip(t, err, types.SkipPreEpoch)
}

func TestTranslateDatetimeComparisonEmbedsTruth(t *testing.T) {
	rec, err := Translate(
		"xs:dateTime('2002-04-02T12:00:00-01:00') eq xs:dateTime('2002-04-02T17:00:00+04:00')",
		catalog.OpDateTimeEqual)
	require.NoError(t, err)
	require.Len(t, rec.Setup, 2)
	assert.Equal(t, "datetime_equal(dt1, dt2)", rec.Call)
	assert.Equal(t, "true", rec.EmbeddedExpected)

	rec, err = Translate(
		"xs:dateTime('2002-04-02T12:00:00Z') lt xs:dateTime('2002-04-02T13:00:00Z')",
		catalog.OpDateTimeLessThan)
	require.NoError(t, err)
	assert.Equal(t, "datetime_less_than(dt1, dt2)", rec.Call)
	assert.Equal(t, "true", rec.EmbeddedExpected)
}

func TestTranslateDurationComponent(t *testing.T) {
	rec, err := Translate("fn:days-from-duration(xs:dayTimeDuration('P3DT10H'))", catalog.FnDaysFromDuration)
	require.NoError(t, err)
	require.Len(t, rec.Setup, 1)
	assert.Equal(t, "let dur = duration_from_microseconds(295200000000);", rec.Setup[0])
	assert.Equal(t, "days_from_duration(dur)", rec.Call)
}

func TestTranslateDurationComparison(t *testing.T) {
	rec, err := Translate("xs:dayTimeDuration('PT2H') lt xs:dayTimeDuration('P1D')", catalog.OpDurationLessThan)
	require.NoError(t, err)
	require.Len(t, rec.Setup, 2)
	assert.Equal(t, "let dur1 = duration_from_microseconds(7200000000);", rec.Setup[0])
	assert.Equal(t, "let dur2 = duration_from_microseconds(86400000000);", rec.Setup[1])
	assert.Equal(t, "duration_less_than(dur1, dur2)", rec.Call)
}

func TestTranslateDurationArithmetic(t *testing.T) {
	rec, err := Translate("xs:dayTimeDuration('PT1H') + xs:dayTimeDuration('PT30M')", catalog.OpAddDurations)
	require.NoError(t, err)
	assert.Equal(t, "duration_add(dur1, dur2)", rec.Call)

	// The operand shape is required, not just the value type.
	_, err = Translate("xs:dayTimeDuration('PT1H') + 5", catalog.OpAddDurations)
	requireSkip(t, err, types.SkipUnrecognizedShape)
}

func TestTranslateDatetimeDurationArithmetic(t *testing.T) {
	rec, err := Translate(
		"xs:dateTime('2000-10-30T11:12:00Z') + xs:dayTimeDuration('P3DT1H15M')",
		catalog.OpAddDurationToDateTime)
	require.NoError(t, err)
	require.Len(t, rec.Setup, 2)
	assert.Contains(t, rec.Setup[0], "datetime_from_epoch_microseconds_with_tz(")
	assert.Contains(t, rec.Setup[1], "duration_from_microseconds(")
	assert.Equal(t, "datetime_add_duration(dt, dur)", rec.Call)

	rec, err = Translate(
		"xs:dateTime('2000-10-30T11:12:00Z') - xs:dateTime('2000-10-28T11:12:00Z')",
		catalog.OpSubtractDateTimes)
	require.NoError(t, err)
	assert.Equal(t, "datetime_difference(dt1, dt2)", rec.Call)
}

func TestTranslateCasts(t *testing.T) {
	rec, err := Translate("5 cast as xs:float", catalog.XsFloatFromInt)
	require.NoError(t, err)
	assert.Empty(t, rec.Setup)
	assert.Equal(t, "cast_integer_to_float(5)", rec.Call)

	rec, err = Translate("xs:double(7)", catalog.XsDoubleFromInt)
	require.NoError(t, err)
	assert.Equal(t, "cast_integer_to_double(7)", rec.Call)

	rec, err = Translate("xs:float('1.5') cast as xs:integer", catalog.XsIntegerFromFloat)
	require.NoError(t, err)
	require.Len(t, rec.Setup, 1)
	assert.Equal(t, "let f = XsdFloat::from_bits(1069547520);", rec.Setup[0])
	assert.Equal(t, "cast_float_to_integer(f)", rec.Call)

	rec, err = Translate("xs:double('2.5') cast as xs:float", catalog.XsFloatFromDouble)
	require.NoError(t, err)
	assert.Contains(t, rec.Setup[0], "XsdDouble::from_bits(")
	assert.Equal(t, "cast_double_to_float(d)", rec.Call)
}

func TestTranslateCastRejections(t *testing.T) {
	// Source beyond the i8 range of the integer-to-float circuit.
	_, err := Translate("200 cast as xs:float", catalog.XsFloatFromInt)
	requireSkip(t, err, types.SkipOutOfRange)

	_, err = Translate("xs:integer('-129') cast as xs:double", catalog.XsDoubleFromInt)
	requireSkip(t, err, types.SkipOutOfRange)

	// Decimal-typed sources have no circuit yet.
	_, err = Translate("xs:decimal('1.5') cast as xs:float", catalog.XsFloatFromInt)
	requireSkip(t, err, types.SkipOperandKind)

	// Cast to a different target than the operation's.
	_, err = Translate("5 cast as xs:double", catalog.XsFloatFromInt)
	requireSkip(t, err, types.SkipUnrecognizedShape)
}

func TestTranslateRounding(t *testing.T) {
	rec, err := Translate("fn:abs(-7)", catalog.FnAbs)
	require.NoError(t, err)
	assert.Equal(t, "abs_int(-7)", rec.Call)

	rec, err = Translate("fn:ceiling(5)", catalog.FnCeiling)
	require.NoError(t, err)
	assert.Equal(t, "ceil_int(5)", rec.Call)

	rec, err = Translate("fn:round(xs:float(2.5))", catalog.FnRoundFloat)
	require.NoError(t, err)
	require.Len(t, rec.Setup, 1)
	assert.Contains(t, rec.Setup[0], "XsdFloat::from_bits(")
	assert.Equal(t, "round_float(val)", rec.Call)
}

func TestTranslateUnary(t *testing.T) {
	rec, err := Translate("-(5)", catalog.OpNumericUnaryMinus)
	require.NoError(t, err)
	assert.Equal(t, "numeric_unary_minus_int(5)", rec.Call)

	rec, err = Translate("+(8)", catalog.OpNumericUnaryPlus)
	require.NoError(t, err)
	assert.Equal(t, "numeric_unary_plus_int(8)", rec.Call)
}

func TestTranslateParseFailure(t *testing.T) {
	_, err := Translate("1 + ", catalog.OpNumericAdd)
	requireSkip(t, err, types.SkipParseFailure)
}

func TestTranslateUnknownOperation(t *testing.T) {
	_, err := Translate("1 + 1", catalog.Operation("op:bogus"))
	requireSkip(t, err, types.SkipUnknownOperation)

	// String operations are cataloged but have no handler.
	_, err = Translate("fn:string-length('abc')", catalog.FnStringLength)
	requireSkip(t, err, types.SkipUnknownOperation)
}

func TestCheckDependencies(t *testing.T) {
	require.NoError(t, CheckDependencies([]types.Dependency{{Type: "spec", Value: "XP20+"}}))

	err := CheckDependencies([]types.Dependency{
		{Type: "spec", Value: "XP20+"},
		{Type: "feature", Value: "schemaValidation"},
	})
	requireSkip(t, err, types.SkipUnsupportedDependency)
}
