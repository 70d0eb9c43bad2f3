// Package catalog declares the static operation tables that drive test
// generation: which corpus file feeds each operation, which Noir primitive it
// targets, which operand-type variant it accepts, and what its target
// primitive returns. The tables are process-wide, read-only configuration
// initialized once; nothing mutates them at runtime.
package catalog

import "sort"

// Operation is a namespace-qualified source operation identifier, e.g.
// "op:numeric-add" or "fn:round-float". The -float/-double suffixed
// operations route the same corpus file to the 32-bit and 64-bit floating
// point Noir primitives.
type Operation string

// Variant is the operand-type variant an operation accepts.
type Variant int

const (
	VariantNone   Variant = iota // integer operands (the default)
	VariantFloat                 // 32-bit floating point operands
	VariantDouble                // 64-bit floating point operands
)

// ReturnCategory classifies what an operation's Noir primitive returns,
// which selects the equality form the assertion synthesizer uses.
type ReturnCategory int

const (
	ReturnsInt         ReturnCategory = iota // raw signed integer
	ReturnsBool                              // boolean
	ReturnsFloat                             // 32-bit float, compared by bit pattern
	ReturnsDouble                            // 64-bit float, compared by bit pattern
	ReturnsOptionInt                         // Option<i64> from fallible casts
	ReturnsUnsignedInt                       // unsigned integer; negative expectations are rejected
)

// NumericType names an operand representation in cast patterns.
type NumericType string

const (
	TypeInt    NumericType = "int"
	TypeFloat  NumericType = "float"
	TypeDouble NumericType = "double"
)

// CastPattern declares the (source, target) pair of a cast operation.
type CastPattern struct {
	Source NumericType
	Target NumericType
}

// Spec describes everything the generator needs to know about one operation.
type Spec struct {
	Op         Operation
	NoirName   string         // target primitive in the Noir xpath library
	CorpusFile string         // test file path relative to the qt3tests checkout
	Variant    Variant        // operand-type variant gate
	Returns    ReturnCategory // return category of the target primitive
	Cast       *CastPattern   // non-nil for cast operations
}

// IsCast reports whether the operation is a type cast.
func (s Spec) IsCast() bool { return s.Cast != nil }

// Integer numeric operations.
const (
	OpNumericAdd          Operation = "op:numeric-add"
	OpNumericSubtract     Operation = "op:numeric-subtract"
	OpNumericMultiply     Operation = "op:numeric-multiply"
	OpNumericDivide       Operation = "op:numeric-divide"
	OpNumericIntegerDiv   Operation = "op:numeric-integer-divide"
	OpNumericMod          Operation = "op:numeric-mod"
	OpNumericEqual        Operation = "op:numeric-equal"
	OpNumericLessThan     Operation = "op:numeric-less-than"
	OpNumericGreaterThan  Operation = "op:numeric-greater-than"
	OpNumericUnaryPlus    Operation = "op:numeric-unary-plus"
	OpNumericUnaryMinus   Operation = "op:numeric-unary-minus"
	FnAbs                 Operation = "fn:abs"
	FnCeiling             Operation = "fn:ceiling"
	FnFloor               Operation = "fn:floor"
	FnRound               Operation = "fn:round"
)

// Float (32-bit) numeric operations.
const (
	OpNumericAddFloat         Operation = "op:numeric-add-float"
	OpNumericSubtractFloat    Operation = "op:numeric-subtract-float"
	OpNumericMultiplyFloat    Operation = "op:numeric-multiply-float"
	OpNumericDivideFloat      Operation = "op:numeric-divide-float"
	OpNumericEqualFloat       Operation = "op:numeric-equal-float"
	OpNumericLessThanFloat    Operation = "op:numeric-less-than-float"
	OpNumericGreaterThanFloat Operation = "op:numeric-greater-than-float"
	FnRoundFloat              Operation = "fn:round-float"
	FnCeilingFloat            Operation = "fn:ceiling-float"
	FnFloorFloat              Operation = "fn:floor-float"
)

// Double (64-bit) numeric operations.
const (
	OpNumericAddDouble         Operation = "op:numeric-add-double"
	OpNumericSubtractDouble    Operation = "op:numeric-subtract-double"
	OpNumericMultiplyDouble    Operation = "op:numeric-multiply-double"
	OpNumericDivideDouble      Operation = "op:numeric-divide-double"
	OpNumericEqualDouble       Operation = "op:numeric-equal-double"
	OpNumericLessThanDouble    Operation = "op:numeric-less-than-double"
	OpNumericGreaterThanDouble Operation = "op:numeric-greater-than-double"
	FnRoundDouble              Operation = "fn:round-double"
	FnCeilingDouble            Operation = "fn:ceiling-double"
	FnFloorDouble              Operation = "fn:floor-double"
)

// Cast operations.
const (
	XsFloatFromInt      Operation = "xs:float-from-int"
	XsDoubleFromInt     Operation = "xs:double-from-int"
	XsIntegerFromFloat  Operation = "xs:integer-from-float"
	XsIntegerFromDouble Operation = "xs:integer-from-double"
	XsFloatFromDouble   Operation = "xs:float-from-double"
)

// DateTime operations.
const (
	FnYearFromDateTime     Operation = "fn:year-from-dateTime"
	FnMonthFromDateTime    Operation = "fn:month-from-dateTime"
	FnDayFromDateTime      Operation = "fn:day-from-dateTime"
	FnHoursFromDateTime    Operation = "fn:hours-from-dateTime"
	FnMinutesFromDateTime  Operation = "fn:minutes-from-dateTime"
	FnSecondsFromDateTime  Operation = "fn:seconds-from-dateTime"
	FnTimezoneFromDateTime Operation = "fn:timezone-from-dateTime"
	OpDateTimeEqual        Operation = "op:dateTime-equal"
	OpDateTimeLessThan     Operation = "op:dateTime-less-than"
	OpDateTimeGreaterThan  Operation = "op:dateTime-greater-than"
)

// Boolean operations.
const (
	FnNot                Operation = "fn:not"
	OpBooleanEqual       Operation = "op:boolean-equal"
	OpBooleanLessThan    Operation = "op:boolean-less-than"
	OpBooleanGreaterThan Operation = "op:boolean-greater-than"
)

// Duration operations.
const (
	FnDaysFromDuration    Operation = "fn:days-from-duration"
	FnHoursFromDuration   Operation = "fn:hours-from-duration"
	FnMinutesFromDuration Operation = "fn:minutes-from-duration"
	FnSecondsFromDuration Operation = "fn:seconds-from-duration"
	OpAddDurationToDateTime      Operation = "op:add-dayTimeDuration-to-dateTime"
	OpSubtractDurationFromDateTime Operation = "op:subtract-dayTimeDuration-from-dateTime"
	OpSubtractDateTimes          Operation = "op:subtract-dateTimes"
	OpAddDurations               Operation = "op:add-dayTimeDurations"
	OpSubtractDurations          Operation = "op:subtract-dayTimeDurations"
	OpDurationEqual              Operation = "op:dayTimeDuration-equal"
	OpDurationLessThan           Operation = "op:dayTimeDuration-less-than"
	OpDurationGreaterThan        Operation = "op:dayTimeDuration-greater-than"
)

// String operations. Carried in the tables for corpus accounting; the
// translator has no handlers for them yet.
const (
	FnStringLength Operation = "fn:string-length"
	FnStartsWith   Operation = "fn:starts-with"
	FnEndsWith     Operation = "fn:ends-with"
	FnContains     Operation = "fn:contains"
)

var specs = map[Operation]Spec{
	FnAbs:     {NoirName: "abs_int", CorpusFile: "fn/abs.xml"},
	FnCeiling: {NoirName: "ceil_int", CorpusFile: "fn/ceiling.xml"},
	FnFloor:   {NoirName: "floor_int", CorpusFile: "fn/floor.xml"},
	FnRound:   {NoirName: "round_int", CorpusFile: "fn/round.xml"},

	FnRoundFloat:    {NoirName: "round_float", CorpusFile: "fn/round.xml", Variant: VariantFloat, Returns: ReturnsFloat},
	FnCeilingFloat:  {NoirName: "ceil_float", CorpusFile: "fn/ceiling.xml", Variant: VariantFloat, Returns: ReturnsFloat},
	FnFloorFloat:    {NoirName: "floor_float", CorpusFile: "fn/floor.xml", Variant: VariantFloat, Returns: ReturnsFloat},
	FnRoundDouble:   {NoirName: "round_double", CorpusFile: "fn/round.xml", Variant: VariantDouble, Returns: ReturnsDouble},
	FnCeilingDouble: {NoirName: "ceil_double", CorpusFile: "fn/ceiling.xml", Variant: VariantDouble, Returns: ReturnsDouble},
	FnFloorDouble:   {NoirName: "floor_double", CorpusFile: "fn/floor.xml", Variant: VariantDouble, Returns: ReturnsDouble},

	OpNumericAdd:         {NoirName: "numeric_add_int", CorpusFile: "op/numeric-add.xml"},
	OpNumericSubtract:    {NoirName: "numeric_subtract_int", CorpusFile: "op/numeric-subtract.xml"},
	OpNumericMultiply:    {NoirName: "numeric_multiply_int", CorpusFile: "op/numeric-multiply.xml"},
	OpNumericDivide:      {NoirName: "numeric_divide_int", CorpusFile: "op/numeric-divide.xml"},
	OpNumericIntegerDiv:  {NoirName: "numeric_divide_int", CorpusFile: "op/numeric-integer-divide.xml"},
	OpNumericMod:         {NoirName: "numeric_mod_int", CorpusFile: "op/numeric-mod.xml"},
	OpNumericEqual:       {NoirName: "numeric_equal_int", CorpusFile: "op/numeric-equal.xml", Returns: ReturnsBool},
	OpNumericLessThan:    {NoirName: "numeric_less_than_int", CorpusFile: "op/numeric-less-than.xml", Returns: ReturnsBool},
	OpNumericGreaterThan: {NoirName: "numeric_greater_than_int", CorpusFile: "op/numeric-greater-than.xml", Returns: ReturnsBool},
	OpNumericUnaryPlus:   {NoirName: "numeric_unary_plus_int", CorpusFile: "op/numeric-unary-plus.xml"},
	OpNumericUnaryMinus:  {NoirName: "numeric_unary_minus_int", CorpusFile: "op/numeric-unary-minus.xml"},

	OpNumericAddFloat:         {NoirName: "numeric_add_float", CorpusFile: "op/numeric-add.xml", Variant: VariantFloat, Returns: ReturnsFloat},
	OpNumericSubtractFloat:    {NoirName: "numeric_subtract_float", CorpusFile: "op/numeric-subtract.xml", Variant: VariantFloat, Returns: ReturnsFloat},
	OpNumericMultiplyFloat:    {NoirName: "numeric_multiply_float", CorpusFile: "op/numeric-multiply.xml", Variant: VariantFloat, Returns: ReturnsFloat},
	OpNumericDivideFloat:      {NoirName: "numeric_divide_float", CorpusFile: "op/numeric-divide.xml", Variant: VariantFloat, Returns: ReturnsFloat},
	OpNumericEqualFloat:       {NoirName: "numeric_equal_float", CorpusFile: "op/numeric-equal.xml", Variant: VariantFloat, Returns: ReturnsBool},
	OpNumericLessThanFloat:    {NoirName: "numeric_less_than_float", CorpusFile: "op/numeric-less-than.xml", Variant: VariantFloat, Returns: ReturnsBool},
	OpNumericGreaterThanFloat: {NoirName: "numeric_greater_than_float", CorpusFile: "op/numeric-greater-than.xml", Variant: VariantFloat, Returns: ReturnsBool},

	OpNumericAddDouble:         {NoirName: "numeric_add_double", CorpusFile: "op/numeric-add.xml", Variant: VariantDouble, Returns: ReturnsDouble},
	OpNumericSubtractDouble:    {NoirName: "numeric_subtract_double", CorpusFile: "op/numeric-subtract.xml", Variant: VariantDouble, Returns: ReturnsDouble},
	OpNumericMultiplyDouble:    {NoirName: "numeric_multiply_double", CorpusFile: "op/numeric-multiply.xml", Variant: VariantDouble, Returns: ReturnsDouble},
	OpNumericDivideDouble:      {NoirName: "numeric_divide_double", CorpusFile: "op/numeric-divide.xml", Variant: VariantDouble, Returns: ReturnsDouble},
	OpNumericEqualDouble:       {NoirName: "numeric_equal_double", CorpusFile: "op/numeric-equal.xml", Variant: VariantDouble, Returns: ReturnsBool},
	OpNumericLessThanDouble:    {NoirName: "numeric_less_than_double", CorpusFile: "op/numeric-less-than.xml", Variant: VariantDouble, Returns: ReturnsBool},
	OpNumericGreaterThanDouble: {NoirName: "numeric_greater_than_double", CorpusFile: "op/numeric-greater-than.xml", Variant: VariantDouble, Returns: ReturnsBool},

	XsFloatFromInt:      {NoirName: "cast_integer_to_float", CorpusFile: "prod/CastExpr.xml", Returns: ReturnsFloat, Cast: &CastPattern{TypeInt, TypeFloat}},
	XsDoubleFromInt:     {NoirName: "cast_integer_to_double", CorpusFile: "prod/CastExpr.xml", Returns: ReturnsDouble, Cast: &CastPattern{TypeInt, TypeDouble}},
	XsIntegerFromFloat:  {NoirName: "cast_float_to_integer", CorpusFile: "prod/CastExpr.xml", Returns: ReturnsOptionInt, Cast: &CastPattern{TypeFloat, TypeInt}},
	XsIntegerFromDouble: {NoirName: "cast_double_to_integer", CorpusFile: "prod/CastExpr.xml", Returns: ReturnsOptionInt, Cast: &CastPattern{TypeDouble, TypeInt}},
	XsFloatFromDouble:   {NoirName: "cast_double_to_float", CorpusFile: "prod/CastExpr.xml", Returns: ReturnsFloat, Cast: &CastPattern{TypeDouble, TypeFloat}},

	FnYearFromDateTime:     {NoirName: "year_from_datetime", CorpusFile: "fn/year-from-dateTime.xml"},
	FnMonthFromDateTime:    {NoirName: "month_from_datetime", CorpusFile: "fn/month-from-dateTime.xml", Returns: ReturnsUnsignedInt},
	FnDayFromDateTime:      {NoirName: "day_from_datetime", CorpusFile: "fn/day-from-dateTime.xml", Returns: ReturnsUnsignedInt},
	FnHoursFromDateTime:    {NoirName: "hours_from_datetime", CorpusFile: "fn/hours-from-dateTime.xml", Returns: ReturnsUnsignedInt},
	FnMinutesFromDateTime:  {NoirName: "minutes_from_datetime", CorpusFile: "fn/minutes-from-dateTime.xml", Returns: ReturnsUnsignedInt},
	FnSecondsFromDateTime:  {NoirName: "seconds_from_datetime", CorpusFile: "fn/seconds-from-dateTime.xml", Returns: ReturnsUnsignedInt},
	FnTimezoneFromDateTime: {NoirName: "timezone_from_datetime", CorpusFile: "fn/timezone-from-dateTime.xml"},
	OpDateTimeEqual:        {NoirName: "datetime_equal", CorpusFile: "op/dateTime-equal.xml", Returns: ReturnsBool},
	OpDateTimeLessThan:     {NoirName: "datetime_less_than", CorpusFile: "op/dateTime-less-than.xml", Returns: ReturnsBool},
	OpDateTimeGreaterThan:  {NoirName: "datetime_greater_than", CorpusFile: "op/dateTime-greater-than.xml", Returns: ReturnsBool},

	FnNot:                {NoirName: "fn_not", CorpusFile: "fn/not.xml", Returns: ReturnsBool},
	OpBooleanEqual:       {NoirName: "boolean_equal", CorpusFile: "op/boolean-equal.xml", Returns: ReturnsBool},
	OpBooleanLessThan:    {NoirName: "boolean_less_than", CorpusFile: "op/boolean-less-than.xml", Returns: ReturnsBool},
	OpBooleanGreaterThan: {NoirName: "boolean_greater_than", CorpusFile: "op/boolean-greater-than.xml", Returns: ReturnsBool},

	FnDaysFromDuration:    {NoirName: "days_from_duration", CorpusFile: "fn/days-from-duration.xml", Returns: ReturnsUnsignedInt},
	FnHoursFromDuration:   {NoirName: "hours_from_duration", CorpusFile: "fn/hours-from-duration.xml", Returns: ReturnsUnsignedInt},
	FnMinutesFromDuration: {NoirName: "minutes_from_duration", CorpusFile: "fn/minutes-from-duration.xml", Returns: ReturnsUnsignedInt},
	FnSecondsFromDuration: {NoirName: "seconds_from_duration", CorpusFile: "fn/seconds-from-duration.xml", Returns: ReturnsUnsignedInt},

	OpAddDurationToDateTime:        {NoirName: "datetime_add_duration", CorpusFile: "op/add-dayTimeDuration-to-dateTime.xml"},
	OpSubtractDurationFromDateTime: {NoirName: "datetime_subtract_duration", CorpusFile: "op/subtract-dayTimeDuration-from-dateTime.xml"},
	OpSubtractDateTimes:            {NoirName: "datetime_difference", CorpusFile: "op/subtract-dateTimes.xml"},
	OpAddDurations:                 {NoirName: "duration_add", CorpusFile: "op/add-dayTimeDurations.xml"},
	OpSubtractDurations:            {NoirName: "duration_subtract", CorpusFile: "op/subtract-dayTimeDurations.xml"},
	OpDurationEqual:                {NoirName: "duration_equal", CorpusFile: "op/duration-equal.xml", Returns: ReturnsBool},
	OpDurationLessThan:             {NoirName: "duration_less_than", CorpusFile: "op/dayTimeDuration-less-than.xml", Returns: ReturnsBool},
	OpDurationGreaterThan:          {NoirName: "duration_greater_than", CorpusFile: "op/dayTimeDuration-greater-than.xml", Returns: ReturnsBool},

	FnStringLength: {NoirName: "string_length", CorpusFile: "fn/string-length.xml"},
	FnStartsWith:   {NoirName: "starts_with", CorpusFile: "fn/starts-with.xml", Returns: ReturnsBool},
	FnEndsWith:     {NoirName: "ends_with", CorpusFile: "fn/ends-with.xml", Returns: ReturnsBool},
	FnContains:     {NoirName: "contains", CorpusFile: "fn/contains.xml", Returns: ReturnsBool},
}

// Lookup resolves an operation identifier to its spec.
func Lookup(op Operation) (Spec, bool) {
	s, ok := specs[op]
	if !ok {
		return Spec{}, false
	}
	s.Op = op
	return s, true
}

// All returns every declared operation, sorted by identifier.
func All() []Operation {
	ops := make([]Operation, 0, len(specs))
	for op := range specs {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}
