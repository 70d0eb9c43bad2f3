// Package generator synthesizes Noir test functions from translation records
// and lays them out as chunked Nargo packages inside a workspace.
package generator

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noir-xpath/testgen/catalog"
	"github.com/noir-xpath/testgen/encode"
	"github.com/noir-xpath/testgen/types"
)

var (
	identifierJunk  = regexp.MustCompile(`[^a-zA-Z0-9_]`)
	dashDot         = regexp.MustCompile(`[-.]`)
	membersListExpr = regexp.MustCompile(`(?s)members\s*=\s*\[(.*?)\]`)
	quotedExpr      = regexp.MustCompile(`"([^"]+)"`)
)

// SanitizeName converts a corpus test or operation name into a valid Noir
// identifier.
func SanitizeName(name string) string {
	name = dashDot.ReplaceAllString(name, "_")
	name = identifierJunk.ReplaceAllString(name, "")
	if name != "" && name[0] >= '0' && name[0] <= '9' {
		name = "test_" + name
	}
	return strings.ToLower(name)
}

// SkipComment renders the comment block that stands in for a test case that
// could not be converted, preserving the expression and expected text for
// corpus triage.
func SkipComment(tc types.TestCase, reason error) string {
	return fmt.Sprintf("// SKIP: %s\n// Reason: %v\n// Cannot auto-convert: %s\n// Expected: %s\n",
		SanitizeName(tc.Name), reason, tc.Expression, tc.Expected)
}

// Synthesize builds one complete Noir test function from a translation
// record and the test case's declared result. The returned error, when
// non-nil, is a *types.Skip.
func Synthesize(tc types.TestCase, spec catalog.Spec, rec *types.TranslationRecord) (types.GeneratedTest, error) {
	name := SanitizeName(tc.Name)

	assertion, err := synthesizeAssertion(tc, spec, rec)
	if err != nil {
		return types.GeneratedTest{}, err
	}

	var lines []string
	lines = append(lines, "#[test]", fmt.Sprintf("fn %s() {", name))
	if desc := formatDescription(tc.Description); desc != "" {
		lines = append(lines, "    // "+desc)
	}
	for _, setup := range rec.Setup {
		lines = append(lines, "    "+setup)
	}
	lines = append(lines, "    "+assertion, "}")

	return types.GeneratedTest{Name: name, Body: strings.Join(lines, "\n")}, nil
}

func synthesizeAssertion(tc types.TestCase, spec catalog.Spec, rec *types.TranslationRecord) (string, error) {
	call := rec.Call

	// An expected value extracted from the expression itself overrides the
	// corpus's declared result.
	if rec.EmbeddedExpected != "" {
		if i, err := encode.ParseInteger(rec.EmbeddedExpected); err == nil {
			return fmt.Sprintf("assert(%s == %s);", call, i), nil
		}
		if b, err := encode.ParseBoolean(rec.EmbeddedExpected); err == nil {
			return fmt.Sprintf("assert(%s == %t);", call, b), nil
		}
		if f, err := encode.ParseFloat(rec.EmbeddedExpected); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return fmt.Sprintf("assert(%s == %d);", call, int64(math.Trunc(f))), nil
		}
		return "", types.Skipf(types.SkipExpectedUnparsable, "embedded expected %q", rec.EmbeddedExpected)
	}

	switch tc.Result {
	case types.ResultTrue, types.ResultFalse:
		if spec.Returns != catalog.ReturnsBool {
			return "", types.Skipf(types.SkipCategoryMismatch, "%s declared for non-boolean %s", tc.Result, spec.NoirName)
		}
		return fmt.Sprintf("assert(%s == %t);", call, tc.Result == types.ResultTrue), nil

	case types.ResultEquals:
		return synthesizeEquality(tc.Expected, spec, call)
	}

	return "", types.Skipf(types.SkipCategoryMismatch, "result kind %s not synthesizable", tc.Result)
}

func synthesizeEquality(expected string, spec catalog.Spec, call string) (string, error) {
	intVal, intErr := encode.ParseInteger(expected)
	boolVal, boolErr := encode.ParseBoolean(expected)
	floatVal, floatErr := encode.ParseFloat(expected)

	switch spec.Returns {
	case catalog.ReturnsOptionInt:
		if intErr == nil {
			return fmt.Sprintf("assert(%s.is_some());\n    assert(%s.unwrap() == %s);", call, call, intVal), nil
		}
		if floatErr == nil && !math.IsNaN(floatVal) && !math.IsInf(floatVal, 0) {
			return fmt.Sprintf("assert(%s.is_some());\n    assert(%s.unwrap() == %d);", call, call, int64(math.Trunc(floatVal))), nil
		}
		return "", types.Skipf(types.SkipExpectedUnparsable, "expected %q for optional-integer result", expected)

	case catalog.ReturnsFloat, catalog.ReturnsDouble:
		var v float64
		switch {
		case floatErr == nil:
			v = floatVal
		case intErr == nil:
			f, err := strconv.ParseFloat(intVal.String(), 64)
			if err != nil {
				return "", types.Skipf(types.SkipExpectedUnparsable, "expected %q for floating result", expected)
			}
			v = f
		default:
			return "", types.Skipf(types.SkipExpectedUnparsable, "expected %q for floating result", expected)
		}
		// Zero compares by value so +0 and -0 collapse to one path.
		if spec.Returns == catalog.ReturnsFloat {
			if v == 0 {
				return fmt.Sprintf("assert(%s == XsdFloat::zero());", call), nil
			}
			return fmt.Sprintf("assert(%s.to_bits() == %d);", call, encode.FloatBits(v)), nil
		}
		if v == 0 {
			return fmt.Sprintf("assert(%s == XsdDouble::zero());", call), nil
		}
		return fmt.Sprintf("assert(%s.to_bits() == %d);", call, encode.DoubleBits(v)), nil
	}

	// Integer, unsigned-integer, and boolean results share one chain: the
	// expected text decides which comparison applies.
	if intErr == nil {
		if spec.Returns == catalog.ReturnsUnsignedInt && intVal.Sign() < 0 {
			return "", types.Skipf(types.SkipUnsignedNegative, "expected %s for unsigned %s", intVal, spec.NoirName)
		}
		return fmt.Sprintf("assert(%s == %s);", call, intVal), nil
	}
	if boolErr == nil {
		return fmt.Sprintf("assert(%s == %t);", call, boolVal), nil
	}
	if floatErr == nil {
		return "", types.Skipf(types.SkipCategoryMismatch, "floating expected %q for %s", expected, spec.NoirName)
	}
	return "", types.Skipf(types.SkipExpectedUnparsable, "expected %q", expected)
}

// formatDescription flattens a corpus description to one comment line,
// truncating near 80 characters at a word boundary.
func formatDescription(desc string) string {
	desc = strings.ReplaceAll(desc, "\n", " ")
	desc = strings.ReplaceAll(desc, `"`, "'")
	desc = strings.TrimSpace(desc)
	if len(desc) > 80 {
		desc = desc[:80]
		if cut := strings.LastIndex(desc, " "); cut > 60 {
			desc = desc[:cut]
		}
	}
	return desc
}

// Options configures an Emitter.
type Options struct {
	// OutputDir is the directory test packages are written under, normally
	// the workspace's test_packages directory.
	OutputDir string
	// ChunkSize caps the number of test functions per source file. Zero
	// means the default of 50.
	ChunkSize int
}

// Emitter writes generated tests out as chunked Nargo library packages and
// keeps the enclosing workspace manifest in sync.
type Emitter struct {
	opts   Options
	logger *zap.Logger
}

// NewEmitter returns an Emitter with defaults applied.
func NewEmitter(opts Options, logger *zap.Logger) *Emitter {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{opts: opts, logger: logger}
}

// PackageName returns the generated package name for an operation.
func PackageName(op catalog.Operation) string {
	return "xpath_test_" + SanitizeName(string(op))
}

// WritePackage lays out one operation's package: manifest, module root, and
// chunk files. With no tests to write it removes any stale package directory
// instead and reports zero.
func (e *Emitter) WritePackage(spec catalog.Spec, tests []types.GeneratedTest) (int, error) {
	pkgName := PackageName(spec.Op)
	pkgDir := filepath.Join(e.opts.OutputDir, pkgName)

	if len(tests) == 0 {
		if _, err := os.Stat(pkgDir); err == nil {
			e.logger.Info("removing stale test package", zap.String("package", pkgName))
			if err := os.RemoveAll(pkgDir); err != nil {
				return 0, fmt.Errorf("remove stale package %s: %w", pkgName, err)
			}
		}
		return 0, nil
	}

	srcDir := filepath.Join(pkgDir, "src")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		return 0, fmt.Errorf("create package dir: %w", err)
	}

	manifest := fmt.Sprintf(`[package]
name = %q
type = "lib"
authors = ["auto-generated"]

[dependencies]
xpath = { path = "../../xpath" }
`, pkgName)
	if err := os.WriteFile(filepath.Join(pkgDir, "Nargo.toml"), []byte(manifest), 0o644); err != nil {
		return 0, fmt.Errorf("write package manifest: %w", err)
	}

	var chunks [][]types.GeneratedTest
	for start := 0; start < len(tests); start += e.opts.ChunkSize {
		end := start + e.opts.ChunkSize
		if end > len(tests) {
			end = len(tests)
		}
		chunks = append(chunks, tests[start:end])
	}

	libLines := []string{
		fmt.Sprintf("//! Auto-generated tests for %s", spec.Op),
		"//! Source: https://github.com/w3c/qt3tests",
		"",
	}
	for i := range chunks {
		libLines = append(libLines, fmt.Sprintf("mod chunk_%d;", i))
	}
	if err := os.WriteFile(filepath.Join(srcDir, "lib.nr"), []byte(strings.Join(libLines, "\n")), 0o644); err != nil {
		return 0, fmt.Errorf("write lib.nr: %w", err)
	}

	imports := importBlock(spec)
	for i, chunk := range chunks {
		lines := []string{
			fmt.Sprintf("//! Test chunk %d for %s", i, spec.Op),
			fmt.Sprintf("//! Contains %d tests", len(chunk)),
			"",
		}
		lines = append(lines, imports...)
		lines = append(lines, "")
		for _, test := range chunk {
			lines = append(lines, test.Body, "")
		}
		path := filepath.Join(srcDir, fmt.Sprintf("chunk_%d.nr", i))
		if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
			return 0, fmt.Errorf("write chunk file: %w", err)
		}
	}

	e.logger.Info("generated test package",
		zap.String("package", pkgName),
		zap.Int("tests", len(tests)),
		zap.Int("chunks", len(chunks)))
	return len(tests), nil
}

// importBlock computes the use-declaration lines a chunk file needs, based on
// what the operation's calls and setup statements reference.
func importBlock(spec catalog.Spec) []string {
	lines := []string{"use dep::xpath::{"}
	lines = append(lines, fmt.Sprintf("    %s,", spec.NoirName))

	opLower := strings.ToLower(string(spec.Op))
	nameLower := strings.ToLower(spec.NoirName)
	if strings.Contains(opLower, "datetime") {
		lines = append(lines, "    datetime_from_epoch_microseconds_with_tz,")
	}
	if strings.Contains(opLower, "duration") {
		lines = append(lines, "    duration_from_microseconds,")
	}
	if strings.Contains(opLower, "float") || strings.Contains(nameLower, "float") {
		lines = append(lines, "    XsdFloat,")
	}
	if strings.Contains(opLower, "double") || strings.Contains(nameLower, "double") {
		lines = append(lines, "    XsdDouble,")
	}
	lines = append(lines, "};")
	return lines
}

// ReconcileWorkspace rewrites the workspace manifest's members list: entries
// outside test_packages/ survive in their original order, generated packages
// are listed after them sorted, and the file is only written when the result
// differs.
func (e *Emitter) ReconcileWorkspace(workspaceDir string) error {
	manifestPath := filepath.Join(workspaceDir, "Nargo.toml")
	existing, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read workspace manifest: %w", err)
	}

	pkgsDir := filepath.Join(workspaceDir, "test_packages")
	entries, err := os.ReadDir(pkgsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("list test packages: %w", err)
	}

	var generated []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(pkgsDir, entry.Name(), "Nargo.toml")); err == nil {
			generated = append(generated, "test_packages/"+entry.Name())
		}
	}
	sort.Strings(generated)

	var preserved []string
	if m := membersListExpr.FindSubmatch(existing); m != nil {
		for _, q := range quotedExpr.FindAllSubmatch(m[1], -1) {
			member := string(q[1])
			if !strings.HasPrefix(member, "test_packages/") {
				preserved = append(preserved, member)
			}
		}
	}

	all := append(preserved, generated...)
	quoted := make([]string, len(all))
	for i, m := range all {
		quoted[i] = fmt.Sprintf("%q", m)
	}
	content := fmt.Sprintf("[workspace]\nmembers = [\n    %s,\n]\n", strings.Join(quoted, ",\n    "))

	if content == string(existing) {
		e.logger.Debug("workspace manifest already up to date", zap.Int("packages", len(generated)))
		return nil
	}
	if err := os.WriteFile(manifestPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write workspace manifest: %w", err)
	}
	e.logger.Info("updated workspace manifest", zap.Int("packages", len(generated)))
	return nil
}
