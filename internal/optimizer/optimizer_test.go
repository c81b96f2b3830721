package optimizer

import (
	"testing"

	"github.com/zer0condition/pva-compiler/internal/ir"
)

func build(instrs ...ir.Instruction) *ir.Module {
	m := ir.NewModule("t.pva")
	for _, in := range instrs {
		if in.MaskReg == 0 {
			in.MaskReg = ir.NoMask
		}
		m.Append(in)
	}
	return m
}

func TestDeadCodeEliminationDropsUnusedResult(t *testing.T) {
	// r2 is computed but never loaded, stored, or read again: dead.
	m := build(
		ir.Instruction{Op: ir.OpAddF32, Dst: 0, Src1: 1, Src2: 1, MaskReg: ir.NoMask},
		ir.Instruction{Op: ir.OpMulF32, Dst: 2, Src1: 3, Src2: 4, MaskReg: ir.NoMask},
		ir.Instruction{Op: ir.OpStoreF32, Dst: 0, MaskReg: ir.NoMask},
	)
	res := Run(m)
	if res.DeadCodeRemoved != 1 {
		t.Fatalf("DeadCodeRemoved = %d, want 1", res.DeadCodeRemoved)
	}
	if got := m.Len(); got != 2 {
		t.Fatalf("Len() after DCE = %d, want 2", got)
	}
}

func TestLoadAndStoreNeverRemovedByDCE(t *testing.T) {
	m := build(
		ir.Instruction{Op: ir.OpLoadF32, Dst: 0, MaskReg: ir.NoMask},
		ir.Instruction{Op: ir.OpStoreF32, Dst: 0, MaskReg: ir.NoMask},
	)
	Run(m)
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (load/store must survive DCE)", m.Len())
	}
}

func TestPipelineLeavesNoResidualNops(t *testing.T) {
	m := build(
		ir.Instruction{Op: ir.OpNOP, MaskReg: ir.NoMask},
		ir.Instruction{Op: ir.OpAddF32, Dst: 0, Src1: 1, Src2: 2, MaskReg: ir.NoMask},
		ir.Instruction{Op: ir.OpAddF32, Dst: 3, Src1: 1, Src2: 2, MaskReg: ir.NoMask}, // dup of prior
		ir.Instruction{Op: ir.OpStoreF32, Dst: 3, MaskReg: ir.NoMask},
	)
	Run(m)
	for i := 0; i < m.Len(); i++ {
		if m.At(i).Op == ir.OpNOP {
			t.Fatalf("residual NOP at index %d after full pipeline", i)
		}
	}
}

func TestCommutativeCSEFoldsDuplicateAndRenamesUses(t *testing.T) {
	m := build(
		ir.Instruction{Op: ir.OpAddF32, Dst: 0, Src1: 1, Src2: 2, MaskReg: ir.NoMask},
		ir.Instruction{Op: ir.OpAddF32, Dst: 3, Src1: 2, Src2: 1, MaskReg: ir.NoMask}, // commuted duplicate
		ir.Instruction{Op: ir.OpStoreF32, Dst: 0, MaskReg: ir.NoMask},
		ir.Instruction{Op: ir.OpStoreF32, Dst: 3, MaskReg: ir.NoMask},
	)
	res := Run(m)
	if res.CSEEliminated != 1 {
		t.Fatalf("CSEEliminated = %d, want 1", res.CSEEliminated)
	}
	// after CSE + final NOP removal: one add survives, plus both stores,
	// the second now reading register 0 (the renamed original dst).
	if got := m.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
	secondStore := m.At(2)
	if secondStore.Op != ir.OpStoreF32 || secondStore.Dst != 0 {
		t.Fatalf("second store after CSE = %+v, want Dst=0", secondStore)
	}
}

func TestStrengthReductionMulByTwoBecomesAdd(t *testing.T) {
	m := build(
		ir.Instruction{Op: ir.OpMulF32, Dst: 0, Src1: 1, Src2: 1, Imm: 2, MaskReg: ir.NoMask},
		ir.Instruction{Op: ir.OpStoreF32, Dst: 0, MaskReg: ir.NoMask},
	)
	res := Run(m)
	if res.StrengthReduced != 1 {
		t.Fatalf("StrengthReduced = %d, want 1", res.StrengthReduced)
	}
	got := m.At(0)
	want := ir.Instruction{Op: ir.OpAddF32, Dst: 0, Src1: 1, Src2: 1, Imm: 0, MaskReg: ir.NoMask}
	if got != want {
		t.Fatalf("instruction after strength reduction = %+v, want %+v", got, want)
	}
}

func TestFusionSiteDetection(t *testing.T) {
	m := build(
		ir.Instruction{Op: ir.OpLoadF32, Dst: 0, MaskReg: ir.NoMask},
		ir.Instruction{Op: ir.OpAddF32, Dst: 1, Src1: 0, Src2: 2, MaskReg: ir.NoMask},
		ir.Instruction{Op: ir.OpStoreF32, Dst: 1, MaskReg: ir.NoMask},
	)
	res := Run(m)
	if len(res.FusionSites) != 1 {
		t.Fatalf("FusionSites = %v, want exactly one site", res.FusionSites)
	}
	if res.FusionSites[0].ComputeOp != ir.OpAddF32 {
		t.Fatalf("FusionSite.ComputeOp = %v, want ADD_F32", res.FusionSites[0].ComputeOp)
	}
}

func TestDependencyChainBoundedByModuleSize(t *testing.T) {
	m := build(
		ir.Instruction{Op: ir.OpAddF32, Dst: 0, Src1: 1, Src2: 1, MaskReg: ir.NoMask},
		ir.Instruction{Op: ir.OpAddF32, Dst: 0, Src1: 0, Src2: 2, MaskReg: ir.NoMask},
		ir.Instruction{Op: ir.OpStoreF32, Dst: 0, MaskReg: ir.NoMask},
	)
	res := Run(m)
	if res.Dependencies.MaxLength < 1 || res.Dependencies.MaxLength > 3 {
		t.Fatalf("MaxLength = %d, want within [1, 3]", res.Dependencies.MaxLength)
	}
	if res.Dependencies.MaxLength < 2 {
		t.Fatalf("MaxLength = %d, want >= 2 for a chained add->add->store", res.Dependencies.MaxLength)
	}
}

func TestOptimizeIsIdempotent(t *testing.T) {
	m := build(
		ir.Instruction{Op: ir.OpMulF32, Dst: 0, Src1: 1, Src2: 1, Imm: 2, MaskReg: ir.NoMask},
		ir.Instruction{Op: ir.OpAddF32, Dst: 2, Src1: 0, Src2: 0, MaskReg: ir.NoMask},
		ir.Instruction{Op: ir.OpStoreF32, Dst: 2, MaskReg: ir.NoMask},
	)
	Run(m)
	first := append([]ir.Instruction(nil), m.Instructions()...)
	Run(m)
	second := m.Instructions()
	if len(first) != len(second) {
		t.Fatalf("second Run() changed length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("second Run() changed instruction %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}
