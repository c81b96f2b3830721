package optimizer

import "github.com/zer0condition/pva-compiler/internal/ir"

// strengthReduce rewrites MUL_F32 dst, src1, src2 with Imm == 2 into
// ADD_F32 dst, src1, src1 with Imm reset to 0 — multiplying a lane by
// two is an add with itself, and the original src2 operand (which only
// ever encoded "the constant 2" for this candidate) is discarded along
// with the immediate. Returns the number of instructions rewritten.
func strengthReduce(seq []ir.Instruction) int {
	count := 0
	for i := range seq {
		in := &seq[i]
		if in.Op != ir.OpMulF32 || in.Imm != 2 {
			continue
		}
		in.Op = ir.OpAddF32
		in.Src2 = in.Src1
		in.Imm = 0
		count++
	}
	return count
}
