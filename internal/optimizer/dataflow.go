package optimizer

import "github.com/zer0condition/pva-compiler/internal/ir"

// defOf reports the register an instruction writes, if any. STORE_F32
// writes to memory, not a register, so it has no def.
func defOf(in ir.Instruction) (int8, bool) {
	switch in.Op {
	case ir.OpAddF32, ir.OpSubF32, ir.OpMulF32, ir.OpDivF32,
		ir.OpCmpLtF32, ir.OpCmpEqF32, ir.OpAndMask, ir.OpOrMask,
		ir.OpSetZero, ir.OpLoadF32:
		return in.Dst, true
	default:
		return 0, false
	}
}

// usesOf reports the registers an instruction reads. STORE_F32's Dst
// field names the register being written to memory, which is a read
// from the register file, not a write.
func usesOf(in ir.Instruction) []int8 {
	var regs []int8
	switch in.Op {
	case ir.OpAddF32, ir.OpSubF32, ir.OpMulF32, ir.OpDivF32,
		ir.OpCmpLtF32, ir.OpCmpEqF32, ir.OpAndMask, ir.OpOrMask:
		regs = append(regs, in.Src1, in.Src2)
	case ir.OpStoreF32:
		regs = append(regs, in.Dst)
	}
	if in.Masked() {
		regs = append(regs, in.MaskReg)
	}
	return regs
}

func isArithmeticCompute(op ir.Op) bool {
	switch op {
	case ir.OpAddF32, ir.OpSubF32, ir.OpMulF32, ir.OpDivF32:
		return true
	default:
		return false
	}
}
