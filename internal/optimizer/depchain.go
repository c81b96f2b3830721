package optimizer

import "github.com/zer0condition/pva-compiler/internal/ir"

// DependencyChain is the report-only output of pass 5: just the
// overall maximum chain length, matching the original's int-returning
// calculate_instruction_level_parallelism. Lengths is kept as a field
// for callers that want a slice rather than breaking the struct shape
// other passes already depend on; analyzeDependencyChains leaves it
// nil since the underlying algorithm never computes per-instruction
// lengths.
type DependencyChain struct {
	MaxLength int
	Lengths   []int
}

// analyzeDependencyChains mirrors calculate_instruction_level_parallelism
// from the original reference implementation literally: a single
// running `last_dst` scalar, not a per-register def-use graph. The
// original checks every instruction's raw dst/src1/src2 fields
// regardless of opcode (its struct always carries all three), so a
// STORE_F32's Dst field — which this IR treats as a read — still
// participates as "the last dst" exactly the way the original's naive
// single-scalar tracker does.
func analyzeDependencyChains(seq []ir.Instruction) DependencyChain {
	maxChain := 0
	currentChain := 1
	lastDst := int16(-1)

	for _, in := range seq {
		hasDependency := lastDst >= 0 &&
			(int16(in.Src1) == lastDst || int16(in.Src2) == lastDst)

		if hasDependency {
			currentChain++
		} else {
			if currentChain > maxChain {
				maxChain = currentChain
			}
			currentChain = 1
		}

		lastDst = int16(in.Dst)
	}
	if currentChain > maxChain {
		maxChain = currentChain
	}

	return DependencyChain{MaxLength: maxChain}
}
