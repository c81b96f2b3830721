// Package riscv encodes an optimized ir.Module to RISC-V machine code
// using the vector extension (RVV): a fixed 4-byte little-endian
// vsetvli setup word followed by one 4-byte vector instruction word per
// IR instruction, grounded on vaddpdRISCVVectorToVector in vaddpd.go's
// funct6/vm/vs2/vs1/funct3/vd/opcode field layout, generalized from one
// fixed op to the per-op base-opcode table below.
package riscv

import (
	"github.com/zer0condition/pva-compiler/internal/encode"
	"github.com/zer0condition/pva-compiler/internal/ir"
)

// vsetvliWord programs 32-bit elements at LMUL=1 (vsetvli t0, x0, e32,
// m1) before any vector instruction in the function body executes.
const vsetvliWord = 0xC0007257

// addressReg is the hardcoded base register LOAD_F32/STORE_F32 read
// from / write to (x1), carrying forward the same fixed-addressing
// simplification the x86 and AArch64 encoders use.
const addressReg = 1

var baseWord = map[ir.Op]uint32{
	ir.OpAddF32:   0x00001057, // vfadd.vv
	ir.OpSubF32:   0x08001057, // vfsub.vv
	ir.OpMulF32:   0x10001057, // vfmul.vv
	ir.OpDivF32:   0x18001057, // vfdiv.vv
	ir.OpCmpLtF32: 0x6E005057, // vmflt.vv
	ir.OpAndMask:  0x24001057, // vmand.mm-equivalent mask AND
	ir.OpOrMask:   0x28001057, // vmor.mm-equivalent mask OR
	ir.OpSetZero:  0x40005057, // vmv.v.x, source x0
	ir.OpLoadF32:  0x06000007, // vle32.v, rs1=1
	ir.OpStoreF32: 0x04000027, // vse32.v, rs1=1
}

func supported(op ir.Op) bool {
	_, ok := baseWord[op]
	return ok
}

// Encode translates m's instruction sequence into a fixed 8192-byte
// buffer: a RISC-V prologue, the vsetvli setup word, the translated
// body, an epilogue, and 0x00 padding out to the buffer's end.
func Encode(m *ir.Module) ([]byte, encode.Report, error) {
	w := encode.NewWriter(encode.BufferSize, 0x00)
	if err := emitPrologue(w); err != nil {
		return nil, encode.Report{}, err
	}
	if err := w.WriteWordLE(vsetvliWord); err != nil {
		return nil, encode.Report{}, err
	}

	report := encode.Report{}
	for _, in := range m.Instructions() {
		if in.Op == ir.OpNOP {
			continue
		}
		if !supported(in.Op) {
			report.SkippedOps++
			continue
		}
		if err := emitInstruction(w, in); err != nil {
			return nil, report, err
		}
	}

	if err := emitEpilogue(w); err != nil {
		return nil, report, err
	}
	report.BytesWritten = w.Pos()
	return w.Bytes(), report, nil
}

// emitPrologue writes addi sp, sp, -16; sd ra, 8(sp) (8 bytes).
func emitPrologue(w *encode.Writer) error {
	for _, word := range []uint32{0xFF010113, 0x00113423} {
		if err := w.WriteWordLE(word); err != nil {
			return err
		}
	}
	return nil
}

// emitEpilogue writes ld ra, 8(sp); addi sp, sp, 16; jalr x0, x1, 0
// (12 bytes).
func emitEpilogue(w *encode.Writer) error {
	for _, word := range []uint32{0x00813083, 0x01010113, 0x00008067} {
		if err := w.WriteWordLE(word); err != nil {
			return err
		}
	}
	return nil
}

func emitInstruction(w *encode.Writer, in ir.Instruction) error {
	base := baseWord[in.Op]
	vm := uint32(0)
	if in.Masked() {
		vm = 1
	}

	var word uint32
	switch in.Op {
	case ir.OpAddF32, ir.OpSubF32, ir.OpMulF32, ir.OpDivF32, ir.OpCmpLtF32,
		ir.OpAndMask, ir.OpOrMask:
		word = base | vd(in.Dst) | vs1(in.Src1) | vs2(in.Src2) | vm<<25
	case ir.OpSetZero:
		word = base | vd(in.Dst) | vm<<25
	case ir.OpLoadF32:
		word = base | vd(in.Dst) | vs1(addressReg) | vm<<25
	case ir.OpStoreF32:
		word = base | vd(in.Dst) | vs1(addressReg) | vm<<25
	}
	return w.WriteWordLE(word)
}

func vd(r int8) uint32  { return (uint32(r) & 0x1F) << 7 }
func vs1(r int8) uint32 { return (uint32(r) & 0x1F) << 15 }
func vs2(r int8) uint32 { return (uint32(r) & 0x1F) << 20 }
