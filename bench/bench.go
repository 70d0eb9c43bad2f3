// Package bench compiles one single-operation circuit per cataloged
// primitive, records nargo's opcode counts, and maintains an append-only
// JSON history of runs for before/after comparisons.
package bench

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"go.uber.org/zap"
)

// Circuit describes one benchmark program: a main function with public
// inputs whose body is a single primitive call.
type Circuit struct {
	Name       string
	Inputs     string
	Body       string
	ReturnType string
}

// Circuits returns the benchmark catalog in execution order.
func Circuits() []Circuit {
	intBinary := func(name string) Circuit {
		return Circuit{
			Name:       name,
			Inputs:     "a: pub i64, b: pub i64",
			Body:       fmt.Sprintf("\n    %s(a, b)\n", name),
			ReturnType: "pub i64",
		}
	}
	datetimeCmp := func(name string) Circuit {
		return Circuit{
			Name:   name,
			Inputs: "a_micros: pub Field, b_micros: pub Field",
			Body: fmt.Sprintf("\n    let a = datetime_from_epoch_microseconds(a_micros);\n"+
				"    let b = datetime_from_epoch_microseconds(b_micros);\n    %s(a, b)\n", name),
			ReturnType: "pub bool",
		}
	}
	datetimeComponent := func(name, returnType string) Circuit {
		return Circuit{
			Name:   name,
			Inputs: "micros: pub Field",
			Body: fmt.Sprintf("\n    let dt = datetime_from_epoch_microseconds(micros);\n"+
				"    %s(dt)\n", name),
			ReturnType: returnType,
		}
	}

	return []Circuit{
		intBinary("numeric_add_int"),
		intBinary("numeric_subtract_int"),
		intBinary("numeric_multiply_int"),
		intBinary("numeric_divide_int"),
		intBinary("numeric_mod_int"),
		{
			Name:       "abs_int",
			Inputs:     "a: pub i64",
			Body:       "\n    abs_int(a)\n",
			ReturnType: "pub i64",
		},
		datetimeCmp("datetime_equal"),
		datetimeCmp("datetime_less_than"),
		datetimeCmp("datetime_greater_than"),
		datetimeComponent("year_from_datetime", "pub i32"),
		datetimeComponent("month_from_datetime", "pub u8"),
		datetimeComponent("day_from_datetime", "pub u8"),
		datetimeComponent("hours_from_datetime", "pub u8"),
		datetimeComponent("minutes_from_datetime", "pub u8"),
		datetimeComponent("seconds_from_datetime", "pub u8"),
		{
			Name:       "fn_not",
			Inputs:     "a: pub bool",
			Body:       "\n    fn_not(a)\n",
			ReturnType: "pub bool",
		},
	}
}

// Measurement holds one circuit's opcode counts. A count that nargo reported
// as N/A, or that failed to parse, is absent rather than zero.
type Measurement struct {
	ACIROpcodes    *int   `json:"acir_opcodes,omitempty"`
	BrilligOpcodes *int   `json:"brillig_opcodes,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Record is one benchmark run across all circuits.
type Record struct {
	Timestamp  string                 `json:"timestamp"`
	GitCommit  string                 `json:"git_commit"`
	Benchmarks map[string]Measurement `json:"benchmarks"`
}

// Options configures a Runner.
type Options struct {
	// XpathDir is the absolute path of the Noir xpath library the
	// benchmark circuits depend on.
	XpathDir string
	// RepoDir is the checkout whose HEAD revision is stamped into records.
	RepoDir string
}

// Runner materializes and measures benchmark circuits.
type Runner struct {
	opts   Options
	logger *zap.Logger
}

func NewRunner(opts Options, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{opts: opts, logger: logger}
}

// Available reports whether the nargo compiler is on PATH.
func (r *Runner) Available() bool {
	_, err := exec.LookPath("nargo")
	return err == nil
}

// Run compiles and measures every cataloged circuit. Per-circuit failures
// are captured in the record, not returned.
func (r *Runner) Run(ctx context.Context) (Record, error) {
	record := Record{
		Timestamp:  time.Now().Format(time.RFC3339),
		GitCommit:  Revision(r.opts.RepoDir),
		Benchmarks: map[string]Measurement{},
	}

	tmp, err := os.MkdirTemp("", "gatebench-*")
	if err != nil {
		return Record{}, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	for _, circuit := range Circuits() {
		r.logger.Info("benchmarking", zap.String("circuit", circuit.Name))
		projectDir, err := r.materialize(tmp, circuit)
		if err != nil {
			record.Benchmarks[circuit.Name] = Measurement{Error: err.Error()}
			continue
		}
		record.Benchmarks[circuit.Name] = r.measure(ctx, projectDir)
	}
	return record, nil
}

func (r *Runner) materialize(tmp string, circuit Circuit) (string, error) {
	projectDir := filepath.Join(tmp, circuit.Name)
	srcDir := filepath.Join(projectDir, "src")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		return "", fmt.Errorf("create project dir: %w", err)
	}

	manifest := fmt.Sprintf(`[package]
name = %q
type = "bin"
authors = ["benchmark"]

[dependencies]
xpath = { path = %q }
`, circuit.Name, r.opts.XpathDir)
	if err := os.WriteFile(filepath.Join(projectDir, "Nargo.toml"), []byte(manifest), 0o644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}

	main := fmt.Sprintf(`use xpath::{
    numeric_add_int, numeric_subtract_int, numeric_multiply_int, numeric_divide_int,
    numeric_mod_int, abs_int,
    datetime_from_epoch_microseconds,
    datetime_equal, datetime_less_than, datetime_greater_than,
    year_from_datetime, month_from_datetime, day_from_datetime,
    hours_from_datetime, minutes_from_datetime, seconds_from_datetime,
    fn_not
};

fn main(%s) -> %s {%s}
`, circuit.Inputs, circuit.ReturnType, circuit.Body)
	if err := os.WriteFile(filepath.Join(srcDir, "main.nr"), []byte(main), 0o644); err != nil {
		return "", fmt.Errorf("write main.nr: %w", err)
	}
	return projectDir, nil
}

func (r *Runner) measure(ctx context.Context, projectDir string) Measurement {
	if out, err := runNargo(ctx, projectDir, "compile"); err != nil {
		return Measurement{Error: fmt.Sprintf("compile: %v: %s", err, out)}
	}
	out, err := runNargo(ctx, projectDir, "info")
	if err != nil {
		return Measurement{Error: fmt.Sprintf("info: %v: %s", err, out)}
	}
	return ParseInfo(out)
}

func runNargo(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "nargo", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// ParseInfo extracts the opcode counts for the main function from nargo
// info's pipe table:
//
//	| Package | Function | Expression Width | ACIR Opcodes | Brillig Opcodes |
func ParseInfo(output string) Measurement {
	var m Measurement
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "| main") && !strings.Contains(line, "|main") {
			continue
		}
		var parts []string
		for _, p := range strings.Split(line, "|") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) < 4 {
			continue
		}
		if parts[3] != "N/A" {
			if n, err := strconv.Atoi(parts[3]); err == nil {
				m.ACIROpcodes = &n
			}
		}
		if len(parts) > 4 && parts[4] != "N/A" {
			if n, err := strconv.Atoi(parts[4]); err == nil {
				m.BrilligOpcodes = &n
			}
		}
	}
	return m
}

// Revision returns the short hash of the checkout's HEAD, or "unknown" when
// the directory is not a repository.
func Revision(repoDir string) string {
	repo, err := git.PlainOpen(repoDir)
	if err != nil {
		return "unknown"
	}
	head, err := repo.Head()
	if err != nil {
		return "unknown"
	}
	return head.Hash().String()[:8]
}

// LoadHistory reads the run history. A missing or malformed file is an empty
// history, never an error: benchmark data is advisory.
func LoadHistory(path string) []Record {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var history []Record
	if err := json.Unmarshal(data, &history); err != nil {
		var single Record
		if json.Unmarshal(data, &single) == nil && single.Benchmarks != nil {
			return []Record{single}
		}
		return nil
	}
	return history
}

// AppendHistory adds a record to the history file and returns the full
// history including it.
func AppendHistory(path string, record Record) ([]Record, error) {
	history := append(LoadHistory(path), record)
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write history: %w", err)
	}
	return history, nil
}

func formatCount(n *int) string {
	if n == nil {
		return "N/A"
	}
	return strconv.Itoa(*n)
}

// PrintSummary writes the per-circuit table for one run.
func PrintSummary(w io.Writer, record Record) {
	rule := strings.Repeat("=", 80)
	thin := strings.Repeat("-", 80)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "XPath GATE COUNT SUMMARY")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Timestamp: %s\n", record.Timestamp)
	fmt.Fprintf(w, "Git commit: %s\n", record.GitCommit)
	fmt.Fprintln(w, thin)
	fmt.Fprintf(w, "%-30s %15s %18s\n", "Operation", "ACIR Opcodes", "Brillig Opcodes")
	fmt.Fprintln(w, thin)

	names := make([]string, 0, len(record.Benchmarks))
	for name := range record.Benchmarks {
		names = append(names, name)
	}
	sort.Strings(names)

	totalACIR, totalBrillig := 0, 0
	for _, name := range names {
		m := record.Benchmarks[name]
		if m.ACIROpcodes != nil {
			totalACIR += *m.ACIROpcodes
		}
		if m.BrilligOpcodes != nil {
			totalBrillig += *m.BrilligOpcodes
		}
		fmt.Fprintf(w, "%-30s %15s %18s\n", name, formatCount(m.ACIROpcodes), formatCount(m.BrilligOpcodes))
	}
	fmt.Fprintln(w, thin)
	fmt.Fprintf(w, "%-30s %15d %18d\n", "TOTAL", totalACIR, totalBrillig)
	fmt.Fprintln(w, rule)
}

// PrintComparison writes the old-vs-new delta table for two runs. Only
// circuits with integral counts in both runs contribute to the totals.
func PrintComparison(w io.Writer, oldRecord, newRecord Record) {
	rule := strings.Repeat("=", 60)
	thin := strings.Repeat("-", 60)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "COMPARISON WITH PREVIOUS RUN")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Old: %s (%s)\n", oldRecord.Timestamp, oldRecord.GitCommit)
	fmt.Fprintf(w, "New: %s (%s)\n", newRecord.Timestamp, newRecord.GitCommit)
	fmt.Fprintln(w, thin)
	fmt.Fprintf(w, "%-30s %12s %12s %12s\n", "Operation", "Old ACIR", "New ACIR", "Change")
	fmt.Fprintln(w, thin)

	nameSet := map[string]bool{}
	for name := range oldRecord.Benchmarks {
		nameSet[name] = true
	}
	for name := range newRecord.Benchmarks {
		nameSet[name] = true
	}
	names := make([]string, 0, len(nameSet))
	for name := range nameSet {
		names = append(names, name)
	}
	sort.Strings(names)

	totalOld, totalNew := 0, 0
	for _, name := range names {
		oldACIR := oldRecord.Benchmarks[name].ACIROpcodes
		newACIR := newRecord.Benchmarks[name].ACIROpcodes

		change := "N/A"
		if oldACIR != nil && newACIR != nil {
			diff := *newACIR - *oldACIR
			pct := 0.0
			if *oldACIR > 0 {
				pct = float64(diff) / float64(*oldACIR) * 100
			}
			change = fmt.Sprintf("%+d (%+.1f%%)", diff, pct)
			totalOld += *oldACIR
			totalNew += *newACIR
		}
		fmt.Fprintf(w, "%-30s %12s %12s %12s\n", name, formatCount(oldACIR), formatCount(newACIR), change)
	}
	fmt.Fprintln(w, thin)
	if totalOld > 0 && totalNew > 0 {
		diff := totalNew - totalOld
		pct := float64(diff) / float64(totalOld) * 100
		fmt.Fprintf(w, "%-30s %12d %12d %+d (%+.1f%%)\n", "TOTAL", totalOld, totalNew, diff, pct)
	}
	fmt.Fprintln(w, rule)
}
