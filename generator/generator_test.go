package generator

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/noir-xpath/testgen/catalog"
	"github.com/noir-xpath/testgen/types"
)

func lookup(t *testing.T, op catalog.Operation) catalog.Spec {
	t.Helper()
	spec, ok := catalog.Lookup(op)
	require.True(t, ok)
	return spec
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"op-numeric-add-1", "op_numeric_add_1"},
		{"fn-abs.1", "fn_abs_1"},
		{"K-NumericAdd-12", "k_numericadd_12"},
		{"1plus1", "test_1plus1"},
		{"weird name!", "weirdname"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, SanitizeName(tc.in), "input %q", tc.in)
	}
}

func TestSynthesizeIntegerEquality(t *testing.T) {
	tc := types.TestCase{
		Name:        "add1",
		Description: "Simple addition.",
		Expression:  "5 + 3",
		Expected:    "8",
		Result:      types.ResultEquals,
	}
	rec := &types.TranslationRecord{Call: "numeric_add_int(5, 3)"}

	got, err := Synthesize(tc, lookup(t, catalog.OpNumericAdd), rec)
	require.NoError(t, err)
	assert.Equal(t, "add1", got.Name)

	want := strings.Join([]string{
		"#[test]",
		"fn add1() {",
		"    // Simple addition.",
		"    assert(numeric_add_int(5, 3) == 8);",
		"}",
	}, "\n")
	if diff := cmp.Diff(want, got.Body); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestSynthesizeBooleanResult(t *testing.T) {
	tc := types.TestCase{Name: "not-1", Expression: "fn:not(true())", Result: types.ResultTrue}
	rec := &types.TranslationRecord{Call: "fn_not(true)"}

	got, err := Synthesize(tc, lookup(t, catalog.FnNot), rec)
	require.NoError(t, err)
	assert.Contains(t, got.Body, "assert(fn_not(true) == true);")

	tc.Result = types.ResultFalse
	got, err = Synthesize(tc, lookup(t, catalog.FnNot), rec)
	require.NoError(t, err)
	assert.Contains(t, got.Body, "assert(fn_not(true) == false);")
}

func TestSynthesizeBooleanCategoryMismatch(t *testing.T) {
	// assert-true declared against an integer-returning operation.
	tc := types.TestCase{Name: "add2", Expression: "5 + 3", Result: types.ResultTrue}
	rec := &types.TranslationRecord{Call: "numeric_add_int(5, 3)"}

	_, err := Synthesize(tc, lookup(t, catalog.OpNumericAdd), rec)
	var skip *types.Skip
	require.True(t, errors.As(err, &skip))
	assert.Equal(t, types.SkipCategoryMismatch, skip.Reason)
}

func TestSynthesizeEmbeddedExpected(t *testing.T) {
	tc := types.TestCase{Name: "year-1", Result: types.ResultTrue} // declared result is ignored
	rec := &types.TranslationRecord{
		Setup:            []string{"let dt = datetime_from_epoch_microseconds_with_tz(928174800000000, -300);"},
		Call:             "year_from_datetime(dt)",
		EmbeddedExpected: "1999",
	}

	got, err := Synthesize(tc, lookup(t, catalog.FnYearFromDateTime), rec)
	require.NoError(t, err)
	assert.Contains(t, got.Body, "let dt = datetime_from_epoch_microseconds_with_tz(928174800000000, -300);")
	assert.Contains(t, got.Body, "assert(year_from_datetime(dt) == 1999);")

	// Boolean truth embedded by datetime comparisons.
	rec = &types.TranslationRecord{
		Setup:            []string{"let dt1 = x;", "let dt2 = y;"},
		Call:             "datetime_equal(dt1, dt2)",
		EmbeddedExpected: "true",
	}
	got, err = Synthesize(types.TestCase{Name: "dt-eq-1", Result: types.ResultFalse},
		lookup(t, catalog.OpDateTimeEqual), rec)
	require.NoError(t, err)
	assert.Contains(t, got.Body, "assert(datetime_equal(dt1, dt2) == true);")
}

func TestSynthesizeFloatBits(t *testing.T) {
	tc := types.TestCase{Name: "f1", Expression: "x", Expected: "4.0", Result: types.ResultEquals}
	rec := &types.TranslationRecord{
		Setup: []string{"let a = XsdFloat::from_bits(1069547520);", "let b = XsdFloat::from_bits(1075838976);"},
		Call:  "numeric_add_float(a, b)",
	}

	got, err := Synthesize(tc, lookup(t, catalog.OpNumericAddFloat), rec)
	require.NoError(t, err)
	// 4.0f32 = 0x40800000 = 1082130432
	assert.Contains(t, got.Body, "assert(numeric_add_float(a, b).to_bits() == 1082130432);")
}

func TestSynthesizeFloatZeroCanonicalizes(t *testing.T) {
	spec := lookup(t, catalog.OpNumericAddFloat)
	rec := &types.TranslationRecord{Call: "numeric_add_float(a, b)"}

	for _, expected := range []string{"0", "0.0", "-0.0"} {
		tc := types.TestCase{Name: "z", Expected: expected, Result: types.ResultEquals}
		got, err := Synthesize(tc, spec, rec)
		require.NoError(t, err, "expected %q", expected)
		assert.Contains(t, got.Body, "assert(numeric_add_float(a, b) == XsdFloat::zero());")
	}

	spec = lookup(t, catalog.OpNumericAddDouble)
	rec = &types.TranslationRecord{Call: "numeric_add_double(a, b)"}
	got, err := Synthesize(types.TestCase{Name: "z", Expected: "-0.0", Result: types.ResultEquals}, spec, rec)
	require.NoError(t, err)
	assert.Contains(t, got.Body, "assert(numeric_add_double(a, b) == XsdDouble::zero());")
}

func TestSynthesizeOptionInt(t *testing.T) {
	tc := types.TestCase{Name: "cast1", Expected: "1", Result: types.ResultEquals}
	rec := &types.TranslationRecord{
		Setup: []string{"let f = XsdFloat::from_bits(1069547520);"},
		Call:  "cast_float_to_integer(f)",
	}

	got, err := Synthesize(tc, lookup(t, catalog.XsIntegerFromFloat), rec)
	require.NoError(t, err)
	assert.Contains(t, got.Body, "assert(cast_float_to_integer(f).is_some());")
	assert.Contains(t, got.Body, "assert(cast_float_to_integer(f).unwrap() == 1);")

	// Fractional expected truncates toward zero.
	tc.Expected = "1.9"
	got, err = Synthesize(tc, lookup(t, catalog.XsIntegerFromFloat), rec)
	require.NoError(t, err)
	assert.Contains(t, got.Body, ".unwrap() == 1);")
}

func TestSynthesizeUnsignedNegativeSkips(t *testing.T) {
	tc := types.TestCase{Name: "mfd", Expected: "-5", Result: types.ResultEquals}
	rec := &types.TranslationRecord{Setup: []string{"let dur = duration_from_microseconds(1);"}, Call: "days_from_duration(dur)"}

	_, err := Synthesize(tc, lookup(t, catalog.FnDaysFromDuration), rec)
	var skip *types.Skip
	require.True(t, errors.As(err, &skip))
	assert.Equal(t, types.SkipUnsignedNegative, skip.Reason)
}

func TestSynthesizeUnparsableExpected(t *testing.T) {
	tc := types.TestCase{Name: "bad", Expected: "banana", Result: types.ResultEquals}
	rec := &types.TranslationRecord{Call: "numeric_add_int(1, 2)"}

	_, err := Synthesize(tc, lookup(t, catalog.OpNumericAdd), rec)
	var skip *types.Skip
	require.True(t, errors.As(err, &skip))
	assert.Equal(t, types.SkipExpectedUnparsable, skip.Reason)
}

func TestSkipComment(t *testing.T) {
	tc := types.TestCase{Name: "hard-1", Expression: "count((1,2))", Expected: "2"}
	comment := SkipComment(tc, types.Skipf(types.SkipUnrecognizedShape, "sequence"))
	assert.Contains(t, comment, "// SKIP: hard_1")
	assert.Contains(t, comment, "// Cannot auto-convert: count((1,2))")
	assert.Contains(t, comment, "// Expected: 2")
}

func makeTests(n int) []types.GeneratedTest {
	tests := make([]types.GeneratedTest, n)
	for i := range tests {
		tests[i] = types.GeneratedTest{
			Name: "t" + string(rune('a'+i%26)),
			Body: "#[test]\nfn t" + string(rune('a'+i%26)) + "() {\n    assert(true);\n}",
		}
	}
	return tests
}

func TestWritePackageLayout(t *testing.T) {
	dir := t.TempDir()
	em := NewEmitter(Options{OutputDir: dir, ChunkSize: 2}, zaptest.NewLogger(t))

	spec := lookup(t, catalog.OpNumericAdd)
	n, err := em.WritePackage(spec, makeTests(5))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	pkgDir := filepath.Join(dir, "xpath_test_opnumeric_add")

	manifest, err := os.ReadFile(filepath.Join(pkgDir, "Nargo.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(manifest), `name = "xpath_test_opnumeric_add"`)
	assert.Contains(t, string(manifest), `type = "lib"`)
	assert.Contains(t, string(manifest), `xpath = { path = "../../xpath" }`)

	lib, err := os.ReadFile(filepath.Join(pkgDir, "src", "lib.nr"))
	require.NoError(t, err)
	for _, mod := range []string{"mod chunk_0;", "mod chunk_1;", "mod chunk_2;"} {
		assert.Contains(t, string(lib), mod)
	}
	assert.NotContains(t, string(lib), "mod chunk_3;")

	chunk0, err := os.ReadFile(filepath.Join(pkgDir, "src", "chunk_0.nr"))
	require.NoError(t, err)
	assert.Contains(t, string(chunk0), "use dep::xpath::{")
	assert.Contains(t, string(chunk0), "numeric_add_int,")
	assert.Contains(t, string(chunk0), "//! Contains 2 tests")

	// Last chunk holds the remainder.
	chunk2, err := os.ReadFile(filepath.Join(pkgDir, "src", "chunk_2.nr"))
	require.NoError(t, err)
	assert.Contains(t, string(chunk2), "//! Contains 1 tests")
}

func TestWritePackageImports(t *testing.T) {
	dir := t.TempDir()
	em := NewEmitter(Options{OutputDir: dir}, nil)

	spec := lookup(t, catalog.OpDateTimeEqual)
	_, err := em.WritePackage(spec, makeTests(1))
	require.NoError(t, err)
	chunk, err := os.ReadFile(filepath.Join(dir, PackageName(spec.Op), "src", "chunk_0.nr"))
	require.NoError(t, err)
	assert.Contains(t, string(chunk), "datetime_from_epoch_microseconds_with_tz,")

	spec = lookup(t, catalog.XsIntegerFromFloat)
	_, err = em.WritePackage(spec, makeTests(1))
	require.NoError(t, err)
	chunk, err = os.ReadFile(filepath.Join(dir, PackageName(spec.Op), "src", "chunk_0.nr"))
	require.NoError(t, err)
	assert.Contains(t, string(chunk), "XsdFloat,")

	spec = lookup(t, catalog.FnDaysFromDuration)
	_, err = em.WritePackage(spec, makeTests(1))
	require.NoError(t, err)
	chunk, err = os.ReadFile(filepath.Join(dir, PackageName(spec.Op), "src", "chunk_0.nr"))
	require.NoError(t, err)
	assert.Contains(t, string(chunk), "duration_from_microseconds,")
}

func TestWritePackageRemovesStaleDir(t *testing.T) {
	dir := t.TempDir()
	em := NewEmitter(Options{OutputDir: dir}, nil)
	spec := lookup(t, catalog.OpNumericAdd)

	_, err := em.WritePackage(spec, makeTests(1))
	require.NoError(t, err)
	pkgDir := filepath.Join(dir, PackageName(spec.Op))
	require.DirExists(t, pkgDir)

	n, err := em.WritePackage(spec, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoDirExists(t, pkgDir)
}

func TestReconcileWorkspace(t *testing.T) {
	workspace := t.TempDir()
	pkgs := filepath.Join(workspace, "test_packages")
	require.NoError(t, os.MkdirAll(filepath.Join(pkgs, "xpath_test_b"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pkgs, "xpath_test_b", "Nargo.toml"), []byte("[package]\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(pkgs, "xpath_test_a"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pkgs, "xpath_test_a", "Nargo.toml"), []byte("[package]\n"), 0o644))
	// Directory without a manifest is not a package.
	require.NoError(t, os.MkdirAll(filepath.Join(pkgs, "scratch"), 0o755))

	manifest := filepath.Join(workspace, "Nargo.toml")
	require.NoError(t, os.WriteFile(manifest, []byte(`[workspace]
members = [
    "xpath",
    "test_packages/xpath_test_gone",
]
`), 0o644))

	em := NewEmitter(Options{OutputDir: pkgs}, zaptest.NewLogger(t))
	require.NoError(t, em.ReconcileWorkspace(workspace))

	got, err := os.ReadFile(manifest)
	require.NoError(t, err)
	want := `[workspace]
members = [
    "xpath",
    "test_packages/xpath_test_a",
    "test_packages/xpath_test_b",
]
`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("manifest mismatch (-want +got):\n%s", diff)
	}

	// A second pass is a no-op: content is already canonical.
	info1, err := os.Stat(manifest)
	require.NoError(t, err)
	require.NoError(t, em.ReconcileWorkspace(workspace))
	info2, err := os.Stat(manifest)
	require.NoError(t, err)
	assert.Equal(t, info1.ModTime(), info2.ModTime())
}
