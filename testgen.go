// Package testgen turns qt3tests XPath conformance cases into Noir test
// packages. It wires together the corpus reader, expression translator,
// assertion synthesizer, and package emitter into one batch pipeline.
package testgen

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/noir-xpath/testgen/catalog"
	"github.com/noir-xpath/testgen/corpus"
	"github.com/noir-xpath/testgen/generator"
	"github.com/noir-xpath/testgen/translate"
	"github.com/noir-xpath/testgen/types"
)

// Version of the testgen module.
const Version = "v0.1.0"

// Options configures a generation run.
type Options struct {
	// QT3Dir is the qt3tests checkout the corpus is read from.
	QT3Dir string
	// OutputDir is the Noir workspace directory; generated packages land
	// under its test_packages subdirectory.
	OutputDir string
	// Operations restricts the run to the named operations. Empty means
	// every cataloged operation.
	Operations []catalog.Operation
	// SkipRefresh leaves the qt3tests checkout as-is instead of cloning or
	// pulling it first.
	SkipRefresh bool
	// ChunkSize caps test functions per generated source file. Zero means
	// the emitter default.
	ChunkSize int
}

// OperationTotals counts the outcome of one operation's corpus file.
type OperationTotals struct {
	Operation catalog.Operation
	Converted int
	Skipped   int
}

// Totals aggregates a whole run.
type Totals struct {
	Operations []OperationTotals
	Converted  int
	Skipped    int
	ByReason   map[types.SkipReason]int
}

// Pipeline runs corpus-to-Noir test generation end to end.
type Pipeline struct {
	opts    Options
	logger  *zap.Logger
	emitter *generator.Emitter
}

// NewPipeline creates a pipeline. A nil logger disables logging.
func NewPipeline(opts Options, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		opts:   opts,
		logger: logger,
		emitter: generator.NewEmitter(generator.Options{
			OutputDir: filepath.Join(opts.OutputDir, "test_packages"),
			ChunkSize: opts.ChunkSize,
		}, logger),
	}
}

// Run refreshes the corpus, generates every selected operation's package,
// and reconciles the workspace manifest. Operations whose corpus file is
// missing are logged and skipped; only infrastructure failures abort a run.
func (p *Pipeline) Run() (Totals, error) {
	if !p.opts.SkipRefresh {
		if err := corpus.Refresh(p.opts.QT3Dir, p.logger); err != nil {
			return Totals{}, fmt.Errorf("refresh corpus: %w", err)
		}
	}

	ops := p.opts.Operations
	if len(ops) == 0 {
		ops = catalog.All()
	}

	totals := Totals{ByReason: map[types.SkipReason]int{}}
	for _, op := range ops {
		spec, ok := catalog.Lookup(op)
		if !ok {
			return Totals{}, fmt.Errorf("unknown operation %q", op)
		}

		opTotals, err := p.runOperation(spec, &totals)
		if err != nil {
			return Totals{}, err
		}
		totals.Operations = append(totals.Operations, opTotals)
		totals.Converted += opTotals.Converted
		totals.Skipped += opTotals.Skipped
	}

	if err := p.emitter.ReconcileWorkspace(p.opts.OutputDir); err != nil {
		return Totals{}, fmt.Errorf("reconcile workspace: %w", err)
	}
	return totals, nil
}

func (p *Pipeline) runOperation(spec catalog.Spec, totals *Totals) (OperationTotals, error) {
	opTotals := OperationTotals{Operation: spec.Op}

	path := filepath.Join(p.opts.QT3Dir, spec.CorpusFile)
	cases, err := corpus.ReadFile(path)
	if err != nil {
		// An unreadable corpus file yields no tests; the emitter still runs
		// so a previously generated package does not linger.
		p.logger.Warn("corpus file unreadable",
			zap.String("op", string(spec.Op)),
			zap.String("path", path),
			zap.Error(err))
		cases = nil
	}

	var tests []types.GeneratedTest
	for _, tc := range corpus.Convertible(cases) {
		test, err := p.convert(tc, spec)
		if err != nil {
			opTotals.Skipped++
			p.recordSkip(tc, err, totals)
			continue
		}
		tests = append(tests, test)
		opTotals.Converted++
	}

	written, err := p.emitter.WritePackage(spec, tests)
	if err != nil {
		return OperationTotals{}, fmt.Errorf("emit %s: %w", spec.Op, err)
	}
	p.logger.Info("operation generated",
		zap.String("op", string(spec.Op)),
		zap.Int("converted", written),
		zap.Int("skipped", opTotals.Skipped))
	return opTotals, nil
}

func (p *Pipeline) convert(tc types.TestCase, spec catalog.Spec) (types.GeneratedTest, error) {
	if err := translate.CheckDependencies(tc.Dependencies); err != nil {
		return types.GeneratedTest{}, err
	}
	rec, err := translate.Translate(tc.Expression, spec.Op)
	if err != nil {
		return types.GeneratedTest{}, err
	}
	return generator.Synthesize(tc, spec, rec)
}

func (p *Pipeline) recordSkip(tc types.TestCase, err error, totals *Totals) {
	var skip *types.Skip
	if errors.As(err, &skip) {
		totals.ByReason[skip.Reason]++
	}
	p.logger.Debug("test skipped",
		zap.String("test", tc.Name),
		zap.String("detail", generator.SkipComment(tc, err)))
}
