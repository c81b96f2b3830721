package target

import (
	"fmt"
	"strings"

	"github.com/zer0condition/pva-compiler/internal/ir"
)

// widths mirrors the per-target vector width table from Probe, reused
// when a target is named explicitly on the command line instead of
// detected from the host.
var widths = map[ir.Target]int{
	ir.X86SSE:    16,
	ir.X86AVX2:   32,
	ir.X86AVX512: 64,
	ir.ARMNEON:   16,
	ir.ARMSVE:    16,
	ir.RISCVRVV:  32,
}

// ParseTarget resolves a -target flag value (e.g. "x86-avx2") to an
// ir.Target and its vector width in bytes, mirroring the
// name-to-enum override pattern the teacher uses for -arch/-os flags.
func ParseTarget(name string) (ir.Target, int, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "x86-sse", "sse":
		return ir.X86SSE, widths[ir.X86SSE], nil
	case "x86-avx2", "avx2":
		return ir.X86AVX2, widths[ir.X86AVX2], nil
	case "x86-avx512", "avx512":
		return ir.X86AVX512, widths[ir.X86AVX512], nil
	case "arm-neon", "neon":
		return ir.ARMNEON, widths[ir.ARMNEON], nil
	case "arm-sve", "sve":
		return ir.ARMSVE, widths[ir.ARMSVE], nil
	case "riscv-rvv", "rvv":
		return ir.RISCVRVV, widths[ir.RISCVRVV], nil
	default:
		return ir.Unknown, 0, fmt.Errorf("target: unrecognized target %q", name)
	}
}
