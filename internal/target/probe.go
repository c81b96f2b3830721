// Package target selects the instruction-set variant a module compiles
// to: either the host's own capabilities (Probe) or an explicit
// override parsed from a flag (ParseTarget).
package target

import (
	"runtime"

	"golang.org/x/sys/cpu"

	"github.com/zer0condition/pva-compiler/internal/ir"
)

// Probe inspects the running host and returns the best ir.Target it
// supports along with the native vector width, in bytes, for that
// target. It never consults the environment or any configuration —
// only runtime.GOARCH and the CPU feature bits golang.org/x/sys/cpu
// already reads at package init.
//
// Degradation follows the architecture's own ladder: x86 falls from
// AVX-512F to AVX2 to SSE2 to Unknown; AArch64 falls from SVE to NEON
// (NEON is assumed present on every arm64 target Go supports, so
// AArch64 never probes to Unknown); RISC-V is reported as a fixed
// 32-byte RVV width, since there is no portable Go-side RVV feature
// query. Any other GOARCH probes to Unknown with a 4-byte (scalar)
// width.
func Probe() (ir.Target, int) {
	switch runtime.GOARCH {
	case "amd64", "386":
		return probeX86()
	case "arm64":
		return probeARM64()
	case "riscv64":
		return ir.RISCVRVV, 32
	default:
		return ir.Unknown, 4
	}
}

func probeX86() (ir.Target, int) {
	if !cpu.X86.HasSSE2 {
		return ir.Unknown, 4
	}
	if cpu.X86.HasAVX512F {
		return ir.X86AVX512, 64
	}
	if cpu.X86.HasAVX2 {
		return ir.X86AVX2, 32
	}
	return ir.X86SSE, 16
}

func probeARM64() (ir.Target, int) {
	if cpu.ARM64.HasSVE {
		return ir.ARMSVE, 16
	}
	return ir.ARMNEON, 16
}
