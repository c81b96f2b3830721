// Package arm64 encodes an optimized ir.Module to AArch64 machine
// code: fixed 4-byte little-endian instruction words built from a
// per-op base opcode with the register fields folded in, the same
// style vaddpdARM64VectorToVector in vaddpd.go uses for its NEON
// fallback path (128-bit, Q=1 forms). Every supported op maps to a
// single NEON word regardless of whether the module's Target is
// ARM_NEON or ARM_SVE — the encoder does not speak SVE's predicated,
// scalable-width instruction forms.
package arm64

import (
	"github.com/zer0condition/pva-compiler/internal/encode"
	"github.com/zer0condition/pva-compiler/internal/ir"
)

// addressReg is the hardcoded base register LOAD_F32/STORE_F32
// addresses through (x1), mirroring the x86 encoder's fixed [rsi] and
// carrying forward the same Open Question #3 simplification: the IR
// has no address operand, so every access targets the same pointer.
const addressReg = 1

// baseWord holds the fixed bits of each op's NEON encoding, before the
// variable register fields are folded in.
var baseWord = map[ir.Op]uint32{
	ir.OpAddF32:   0x4E20D400, // FADD v.4s
	ir.OpSubF32:   0x4E20D400 ^ 0x40, // FSUB: ADD base XOR 0x40 (see DESIGN.md open question)
	ir.OpMulF32:   0x6E20DC00, // FMUL v.4s
	ir.OpDivF32:   0x6E20FC00, // FDIV v.4s
	ir.OpCmpLtF32: 0x4EA0E400, // FCMGT with operands swapped (a < b == b > a)
	ir.OpSetZero:  0x6E201C00, // EOR v.16b, self
	ir.OpLoadF32:  0x3DC00000, // LDR (no offset, [x1])
	ir.OpStoreF32: 0x3CC00000, // STR (no offset, [x1])
}

func supported(op ir.Op) bool {
	_, ok := baseWord[op]
	return ok
}

// Encode translates m's instruction sequence into a fixed 8192-byte
// buffer: an AArch64 prologue, the translated body, an epilogue, and
// 0x00 padding out to the buffer's end.
func Encode(m *ir.Module) ([]byte, encode.Report, error) {
	w := encode.NewWriter(encode.BufferSize, 0x00)
	if err := emitPrologue(w); err != nil {
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

// emitPrologue writes stp x29, x30, [sp, #-16]!; mov x29, sp;
// sub sp, sp, #0x100 — the standard AArch64 frame-pointer entry
// sequence (12 bytes).
func emitPrologue(w *encode.Writer) error {
	for _, word := range []uint32{0xA9BF7BFD, 0x910003FD, 0xD10403FF} {
		if err := w.WriteWordLE(word); err != nil {
			return err
		}
	}
	return nil
}

// emitEpilogue writes add sp, sp, #0x100; ldp x29, x30, [sp], #16;
// ret (12 bytes).
func emitEpilogue(w *encode.Writer) error {
	for _, word := range []uint32{0x910403FF, 0xA8C17BFD, 0xD65F03C0} {
		if err := w.WriteWordLE(word); err != nil {
			return err
		}
	}
	return nil
}

func emitInstruction(w *encode.Writer, in ir.Instruction) error {
	base := baseWord[in.Op]
	var word uint32

	switch in.Op {
	case ir.OpAddF32, ir.OpSubF32, ir.OpMulF32, ir.OpDivF32, ir.OpCmpLtF32:
		word = base | field(in.Dst) | field(in.Src1)<<5 | field(in.Src2)<<16
	case ir.OpSetZero:
		// dst replicated in all three register slots: EOR v.16b, vd, vd.
		word = base | field(in.Dst) | field(in.Dst)<<5 | field(in.Dst)<<16
	case ir.OpLoadF32, ir.OpStoreF32:
		word = base | field(in.Dst) | field(addressReg)<<5
	}
	return w.WriteWordLE(word)
}

func field(r int8) uint32 { return uint32(r) & 0x1F }
