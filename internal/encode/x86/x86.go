// Package x86 encodes an optimized ir.Module to x86-64 machine code,
// choosing among legacy SSE, two-byte VEX (AVX2), and EVEX (AVX-512)
// prefixes based on the module's Target. The EVEX/VEX prefix field
// layout (P0/P1/P2/P3 for EVEX; the single-byte field split for VEX2)
// is grounded directly on vaddpdX86VectorToVector in vaddpd.go, adapted
// from float64 _PD forms to the float32 _PS opcodes this IR's
// ADD/SUB/MUL/DIV_F32 map to, and generalized from one fixed opcode to
// the small per-op table below.
package x86

import (
	"github.com/zer0condition/pva-compiler/internal/encode"
	"github.com/zer0condition/pva-compiler/internal/ir"
)

// addressRegEncoding is the hardcoded base register every LOAD_F32/STORE_F32
// addresses through: rsi, ModRM.rm encoding 110. The IR carries no
// address operand (see spec.md Open Question #3), so every load reads
// from and every store writes to [rsi] regardless of source position;
// a real front end would need to keep rsi pointed at the right buffer
// between instructions.
const addressRegEncoding = 6 // rsi

var opcode = map[ir.Op]byte{
	ir.OpAddF32: 0x58, // ADDPS
	ir.OpSubF32: 0x5C, // SUBPS
	ir.OpMulF32: 0x59, // MULPS
	ir.OpDivF32: 0x5E, // DIVPS
	// LOAD_F32/STORE_F32/SETZERO have their own fixed opcodes below
	// (0x28/0x29/0x57) since they don't share the arithmetic table's
	// two-register-operand shape.
}

func supported(op ir.Op) bool {
	switch op {
	case ir.OpAddF32, ir.OpSubF32, ir.OpMulF32, ir.OpDivF32,
		ir.OpLoadF32, ir.OpStoreF32, ir.OpSetZero:
		return true
	default:
		return false
	}
}

// Encode translates m's instruction sequence into a fixed 8192-byte
// buffer: an x86-64 prologue, the translated body, an epilogue, and
// 0x90 (NOP) padding out to the buffer's end.
func Encode(m *ir.Module) ([]byte, encode.Report, error) {
	w := encode.NewWriter(encode.BufferSize, 0x90)
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
		if err := emitInstruction(w, m.Target, in); err != nil {
			return nil, report, err
		}
	}

	if err := emitEpilogue(w); err != nil {
		return nil, report, err
	}
	report.BytesWritten = w.Pos()
	return w.Bytes(), report, nil
}

// emitPrologue writes push rbp; mov rbp, rsp; sub rsp, 0x20 (8 bytes).
func emitPrologue(w *encode.Writer) error {
	return w.WriteBytes(
		0x55,                   // push rbp
		0x48, 0x89, 0xE5,       // mov rbp, rsp
		0x48, 0x83, 0xEC, 0x20, // sub rsp, 0x20
	)
}

// emitEpilogue writes mov rax, 0; mov rsp, rbp; pop rbp; ret (12 bytes).
func emitEpilogue(w *encode.Writer) error {
	return w.WriteBytes(
		0x48, 0xC7, 0xC0, 0x00, 0x00, 0x00, 0x00, // mov rax, 0
		0x48, 0x89, 0xEC, // mov rsp, rbp
		0x5D,             // pop rbp
		0xC3,             // ret
	)
}

func emitInstruction(w *encode.Writer, target ir.Target, in ir.Instruction) error {
	switch target {
	case ir.X86AVX512:
		return emitEVEX(w, in)
	case ir.X86AVX2:
		return emitVEX2(w, in)
	default: // ir.X86SSE and any other x86 variant fall back to legacy SSE
		return emitLegacy(w, in)
	}
}

// emitLegacy writes the 3-byte legacy-SSE encoding (0F, opcode, ModRM)
// every op occupies at width 16, per the fixed-width invariant: no REX
// prefix is ever emitted, so registers 8-15 alias onto 0-7 in ModRM
// (a limitation of this encoder's SSE path). This matches the
// real 2-operand SSE instruction shape, so src1 is assumed equal to
// dst for arithmetic ops (dst op= src2) rather than modeled explicitly.
func emitLegacy(w *encode.Writer, in ir.Instruction) error {
	switch in.Op {
	case ir.OpAddF32, ir.OpSubF32, ir.OpMulF32, ir.OpDivF32:
		modrm := 0xC0 | (reg3(in.Dst) << 3) | reg3(in.Src2)
		return w.WriteBytes(0x0F, opcode[in.Op], modrm)
	case ir.OpLoadF32:
		modrm := (reg3(in.Dst) << 3) | addressRegEncoding
		return w.WriteBytes(0x0F, 0x28, modrm)
	case ir.OpStoreF32:
		modrm := (reg3(in.Dst) << 3) | addressRegEncoding
		return w.WriteBytes(0x0F, 0x29, modrm)
	case ir.OpSetZero:
		modrm := 0xC0 | (reg3(in.Dst) << 3) | reg3(in.Dst)
		return w.WriteBytes(0x0F, 0x57, modrm)
	}
	return nil
}

// emitVEX2 writes the 4-byte two-byte-VEX encoding used for AVX2
// (width 32): VEX2 prefix, opcode, ModRM. L=1 selects 256-bit, pp=0
// since the _PS opcode map carries no mandatory legacy prefix.
func emitVEX2(w *encode.Writer, in ir.Instruction) error {
	switch in.Op {
	case ir.OpAddF32, ir.OpSubF32, ir.OpMulF32, ir.OpDivF32:
		b1 := vex2Byte(in.Dst, in.Src1, true)
		modrm := 0xC0 | (reg3(in.Dst) << 3) | reg3(in.Src2)
		return w.WriteBytes(0xC5, b1, opcode[in.Op], modrm)
	case ir.OpLoadF32:
		b1 := vex2Byte(in.Dst, 15, true) // vvvv unused
		modrm := (reg3(in.Dst) << 3) | addressRegEncoding
		return w.WriteBytes(0xC5, b1, 0x28, modrm)
	case ir.OpStoreF32:
		b1 := vex2Byte(in.Dst, 15, true)
		modrm := (reg3(in.Dst) << 3) | addressRegEncoding
		return w.WriteBytes(0xC5, b1, 0x29, modrm)
	case ir.OpSetZero:
		b1 := vex2Byte(in.Dst, in.Dst, true) // vvvv = dst (self-XOR, 3-operand form)
		modrm := 0xC0 | (reg3(in.Dst) << 3) | reg3(in.Dst)
		return w.WriteBytes(0xC5, b1, 0x57, modrm)
	}
	return nil
}

// vex2Byte builds the second VEX2 prefix byte: R~ (dst extension,
// inverted), ~vvvv (src1, inverted), L (vector length), pp (mandatory
// prefix selector). wide256 is always true here: every AVX2 op in this
// encoder operates at the 256-bit width.
func vex2Byte(dst, vvvv int8, wide256 bool) byte {
	rInv := byte((^(dst >> 3)) & 1)
	vvvvInv := byte((^vvvv) & 0x0F)
	l := byte(0)
	if wide256 {
		l = 1
	}
	const pp = 0 // no mandatory prefix for the _PS opcode map
	return (rInv << 7) | (vvvvInv << 3) | (l << 2) | pp
}

// emitEVEX writes the 6-byte AVX-512 encoding: 4-byte EVEX prefix,
// opcode, ModRM, for width 64. Field layout follows vaddpd.go's EVEX
// construction: P0 fixed 0x62; P1 carries the inverted R/X/B/R' high-
// register-extension bits and the 0F opcode-map selector; P2 carries W
// (0, float32 elements), the inverted vvvv source, the fixed EVEX
// marker bit, and pp; P3 carries z (0, merge-masking), L'L (10 for
// 512-bit), the broadcast bit (0), the inverted V' extension bit, and
// the three-bit opmask register field.
func emitEVEX(w *encode.Writer, in ir.Instruction) error {
	switch in.Op {
	case ir.OpAddF32, ir.OpSubF32, ir.OpMulF32, ir.OpDivF32:
		prefix := evexPrefix(in.Dst, in.Src1, in.Src2, maskField(in))
		modrm := 0xC0 | (reg3(in.Dst) << 3) | reg3(in.Src2)
		return w.WriteBytes(prefix[0], prefix[1], prefix[2], prefix[3], opcode[in.Op], modrm)
	case ir.OpLoadF32:
		prefix := evexPrefix(in.Dst, 15, addressRegEncoding, maskField(in))
		modrm := (reg3(in.Dst) << 3) | addressRegEncoding
		return w.WriteBytes(prefix[0], prefix[1], prefix[2], prefix[3], 0x28, modrm)
	case ir.OpStoreF32:
		prefix := evexPrefix(in.Dst, 15, addressRegEncoding, maskField(in))
		modrm := (reg3(in.Dst) << 3) | addressRegEncoding
		return w.WriteBytes(prefix[0], prefix[1], prefix[2], prefix[3], 0x29, modrm)
	case ir.OpSetZero:
		prefix := evexPrefix(in.Dst, in.Dst, in.Dst, maskField(in))
		modrm := 0xC0 | (reg3(in.Dst) << 3) | reg3(in.Dst)
		return w.WriteBytes(prefix[0], prefix[1], prefix[2], prefix[3], 0x57, modrm)
	}
	return nil
}

func maskField(in ir.Instruction) byte {
	if !in.Masked() {
		return 0
	}
	return byte(in.MaskReg) & 0x7
}

func evexPrefix(dst, vvvv, rm int8, aaa byte) [4]byte {
	rInv := byte((^(dst >> 3)) & 1)
	const xInv = 1 // no SIB index register used
	bInv := byte((^(rm >> 3)) & 1)
	const rPrimeInv = 1 // dst never exceeds register 15
	const mm = 0x01     // 0F opcode map

	p1 := (rInv << 7) | (xInv << 6) | (bInv << 5) | (rPrimeInv << 4) | mm

	const w64 = 0 // float32 elements
	vvvvInv := byte((^vvvv) & 0x0F)
	const fixedBit = 1 // EVEX.P2 bit 2 is always set
	const pp = 0        // no mandatory prefix for the _PS opcode map
	p2 := (w64 << 7) | (vvvvInv << 3) | (fixedBit << 2) | pp

	const z = 0     // merging, not zeroing
	const ll = 2    // 512-bit vector length
	const bcast = 0 // no broadcast
	const vPrimeInv = 1
	p3 := (z << 7) | (ll << 5) | (bcast << 4) | (vPrimeInv << 3) | aaa

	return [4]byte{0x62, p1, p2, p3}
}

func reg3(r int8) byte { return byte(r) & 0x7 }
