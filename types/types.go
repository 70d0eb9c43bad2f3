// Package types defines the data structures shared by the corpus reader,
// expression translator, and test generator.
package types

import "fmt"

// ResultKind identifies the assertion variant a corpus test case declares.
type ResultKind string

const (
	ResultEquals      ResultKind = "assert-eq"
	ResultTrue        ResultKind = "assert-true"
	ResultFalse       ResultKind = "assert-false"
	ResultError       ResultKind = "error"
	ResultUnsupported ResultKind = "unsupported"
)

// Dependency is a declared feature dependency of a corpus test case.
type Dependency struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// String returns the dependency in the corpus's "type:value" form.
func (d Dependency) String() string {
	return d.Type + ":" + d.Value
}

// TestCase is a single test case extracted from the qt3tests corpus.
// It is immutable once parsed and discarded after translation.
type TestCase struct {
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Expression   string       `json:"expression"`
	Expected     string       `json:"expected"`
	Result       ResultKind   `json:"result"`
	Dependencies []Dependency `json:"dependencies,omitempty"`
}

// TranslationRecord is the output of a successful expression translation:
// auxiliary setup statements, the Noir call expression, and optionally an
// expected value extracted from a comparison embedded in the source
// expression itself. EmbeddedExpected, when non-empty, is authoritative over
// the test case's declared expected result.
type TranslationRecord struct {
	Setup            []string
	Call             string
	EmbeddedExpected string
}

// GeneratedTest is one fully synthesized Noir test function, the unit the
// package emitter consumes. A test is either fully translated or dropped
// with a recorded skip; Body is never partial.
type GeneratedTest struct {
	Name string
	Body string
}

// SkipReason categorizes why a test case could not be translated.
// Every skip path is tagged so corpus triage can tell unsupported input,
// out-of-range values, and category mismatches apart.
type SkipReason string

const (
	SkipUnsupportedDependency SkipReason = "unsupported-dependency"
	SkipUnknownOperation      SkipReason = "unknown-operation"
	SkipVariantMismatch       SkipReason = "operand-variant-mismatch"
	SkipParseFailure          SkipReason = "parse-failure"
	SkipUnrecognizedShape     SkipReason = "unrecognized-shape"
	SkipOperandKind           SkipReason = "operand-kind-mismatch"
	SkipOutOfRange            SkipReason = "out-of-range"
	SkipPreEpoch              SkipReason = "pre-epoch-datetime"
	SkipExpectedUnparsable    SkipReason = "expected-unparsable"
	SkipCategoryMismatch      SkipReason = "result-category-mismatch"
	SkipUnsignedNegative      SkipReason = "negative-expected-for-unsigned"
)

// Skip is the tagged rejection returned when a test case cannot be safely
// translated. It is an error so it can flow through the usual error plumbing
// and be recovered with errors.As.
type Skip struct {
	Reason SkipReason
	Detail string
}

// Error implements the error interface.
func (s *Skip) Error() string {
	if s.Detail == "" {
		return string(s.Reason)
	}
	return fmt.Sprintf("%s: %s", s.Reason, s.Detail)
}

// Skipf constructs a Skip with a formatted detail message.
func Skipf(reason SkipReason, format string, args ...interface{}) *Skip {
	return &Skip{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}
