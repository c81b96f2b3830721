// Package optimizer implements the six-pass pipeline that runs between
// parse and encode: NOP removal, dead-code elimination, fusion-pattern
// detection, commutative CSE, dependency-chain analysis, and strength
// reduction — in that fixed order, matched one-for-one against the
// optimizer pass ordering the teacher's optimizeProgram follows
// (optimizer.go): fold/strength-reduce, propagate, eliminate dead code,
// each pass a small, independently testable rewrite over the same
// sequence rather than one monolithic tree walk.
package optimizer

import "github.com/zer0condition/pva-compiler/internal/ir"

// Result reports what each pass did, for diagnostics and tests. Every
// count is a pass-local count, not a running total across Run calls.
type Result struct {
	NopsRemovedInitial int
	DeadCodeRemoved    int
	FusionSites        []FusionSite
	CSEEliminated      int
	Dependencies       DependencyChain
	StrengthReduced    int
	NopsRemovedFinal   int
}

// Run executes the six passes over m in place and returns their
// combined report. The module's logical instruction count shrinks as
// NOP removal and dead-code elimination drop instructions; the backing
// store never shrinks (see ir.Module).
//
// A final NOP compaction runs after strength reduction even though it
// is not one of the six named passes: pass 4 (CSE) leaves eliminated
// instructions behind as in-place NOPs rather than compacting them
// immediately, and the module is expected to come out of the pipeline
// NOP-free. Folding that compaction into pass 1's own routine here
// keeps the invariant without inventing a seventh pass.
func Run(m *ir.Module) Result {
	var res Result

	seq, nopsRemoved := removeNops(m.Instructions())
	res.NopsRemovedInitial = nopsRemoved

	seq, dead := deadCodeEliminate(seq)
	res.DeadCodeRemoved = dead

	res.FusionSites = detectFusion(seq)

	res.CSEEliminated = commutativeCSE(seq)

	res.Dependencies = analyzeDependencyChains(seq)

	res.StrengthReduced = strengthReduce(seq)

	seq, finalNops := removeNops(seq)
	res.NopsRemovedFinal = finalNops

	m.Replace(seq)
	return res
}
