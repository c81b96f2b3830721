// Package compiler wires the pipeline together: parse, probe, optimize,
// pick an encoder by target family, write bytes. It mirrors the
// teacher's CompilerState/CompileOptions split (compiler_state.go) —
// a small options struct plus a state type that tracks the current
// phase — generalized from ELF/PE executable building to a flat
// instruction buffer with no linking step.
package compiler

import (
	"fmt"
	"io"
	"os"

	"github.com/zer0condition/pva-compiler/internal/encode"
	"github.com/zer0condition/pva-compiler/internal/encode/arm64"
	"github.com/zer0condition/pva-compiler/internal/encode/riscv"
	"github.com/zer0condition/pva-compiler/internal/encode/x86"
	"github.com/zer0condition/pva-compiler/internal/ir"
	"github.com/zer0condition/pva-compiler/internal/optimizer"
	"github.com/zer0condition/pva-compiler/internal/parser"
	"github.com/zer0condition/pva-compiler/internal/target"
)

// Phase identifies where in the pipeline a compile currently sits, the
// same role compiler_state.go's CompilationPhase plays for the
// ELF/PE builder.
type Phase int

const (
	PhaseInitial Phase = iota
	PhaseParsed
	PhaseProbed
	PhaseOptimized
	PhaseEncoded
)

func (p Phase) String() string {
	switch p {
	case PhaseInitial:
		return "initial"
	case PhaseParsed:
		return "parsed"
	case PhaseProbed:
		return "probed"
	case PhaseOptimized:
		return "optimized"
	case PhaseEncoded:
		return "encoded"
	default:
		return "unknown"
	}
}

// Options configures a single compile, the same shape as the teacher's
// CompileOptions but trimmed to this backend's actual knobs: no OS
// selection, no dynamic-linking choice, since there is no linker here.
type Options struct {
	SourcePath string
	OutputPath string
	Verbose    bool

	// TargetOverride, when non-empty, bypasses the host probe (§1.3):
	// one of the names internal/target.ParseTarget accepts.
	TargetOverride string

	// Progress receives one line per pipeline stage when Verbose is
	// set; Diagnostics receives parse-error summaries. Fatal failures
	// are returned from Run as errors. Threaded explicitly rather than read from a global
	// VerboseMode, unlike the teacher's own cli.go.
	Progress    io.Writer
	Diagnostics io.Writer
}

// Result reports what a successful compile produced, mirroring the
// encoder packages' own small structured Report values rather than a
// bare byte count.
type Result struct {
	BytesWritten    int
	SkippedOps      int
	ParseWarnings   int
	OptimizerResult optimizer.Result
}

// State tracks one compile's progress through the pipeline, the same
// role compiler_state.go's CompilerState plays for the ELF/PE path.
type State struct {
	opts  Options
	phase Phase
}

// New creates a compile State for the given options.
func New(opts Options) *State {
	if opts.Progress == nil {
		opts.Progress = io.Discard
	}
	if opts.Diagnostics == nil {
		opts.Diagnostics = io.Discard
	}
	return &State{opts: opts, phase: PhaseInitial}
}

// Phase returns the compile's current pipeline stage.
func (s *State) Phase() Phase { return s.phase }

func (s *State) transition(p Phase) {
	s.phase = p
	if s.opts.Verbose {
		fmt.Fprintf(s.opts.Progress, "=== %s ===\n", p)
	}
}

// Run executes parse -> probe -> optimize -> select encoder by target
// family -> write bytes, aborting before emission if the probe (or an
// override) resolves to an unknown target, per §4.5.
func (s *State) Run() (Result, error) {
	source, err := os.ReadFile(s.opts.SourcePath)
	if err != nil {
		return Result{}, fmt.Errorf("open source: %w", err)
	}

	s.transition(PhaseParsed)
	mod, errs := parser.Parse(string(source), s.opts.SourcePath)
	if errs.ErrorCount() > 0 {
		fmt.Fprint(s.opts.Diagnostics, errs.Summary())
		return Result{}, fmt.Errorf("parse failed: %d error(s)", errs.ErrorCount())
	}
	if s.opts.Verbose && errs.WarningCount() > 0 {
		fmt.Fprint(s.opts.Diagnostics, errs.Summary())
	}

	s.transition(PhaseProbed)
	t, width, err := resolveTarget(s.opts.TargetOverride)
	if err != nil {
		return Result{}, err
	}
	if t == ir.Unknown {
		return Result{}, fmt.Errorf("unsupported target: host probe returned UNKNOWN")
	}
	mod.Target = t
	mod.VectorWidthBytes = width
	if s.opts.Verbose {
		fmt.Fprintf(s.opts.Progress, "target: %s (width %d bytes)\n", t, width)
	}

	s.transition(PhaseOptimized)
	optResult := optimizer.Run(mod)
	if s.opts.Verbose {
		fmt.Fprintf(s.opts.Progress, "optimize: %d dead, %d CSE-folded, %d fusion site(s), %d strength-reduced\n",
			optResult.DeadCodeRemoved, optResult.CSEEliminated, len(optResult.FusionSites), optResult.StrengthReduced)
	}

	s.transition(PhaseEncoded)
	out, report, err := encodeForFamily(t, mod)
	if err != nil {
		return Result{}, fmt.Errorf("encode: %w", err)
	}

	if err := os.WriteFile(s.opts.OutputPath, out, 0o644); err != nil {
		return Result{}, fmt.Errorf("open destination: %w", err)
	}
	if s.opts.Verbose {
		fmt.Fprintf(s.opts.Progress, "wrote %d bytes to %s (%d ops skipped)\n",
			report.BytesWritten, s.opts.OutputPath, report.SkippedOps)
	}

	return Result{
		BytesWritten:    report.BytesWritten,
		SkippedOps:      report.SkippedOps,
		ParseWarnings:   errs.WarningCount(),
		OptimizerResult: optResult,
	}, nil
}

func resolveTarget(override string) (ir.Target, int, error) {
	if override != "" {
		return target.ParseTarget(override)
	}
	t, width := target.Probe()
	return t, width, nil
}

func encodeForFamily(t ir.Target, mod *ir.Module) ([]byte, encode.Report, error) {
	switch t.Family() {
	case ir.FamilyX86:
		return x86.Encode(mod)
	case ir.FamilyARM:
		return arm64.Encode(mod)
	case ir.FamilyRISCV:
		return riscv.Encode(mod)
	default:
		return nil, encode.Report{}, fmt.Errorf("no encoder for target family of %s", t)
	}
}
