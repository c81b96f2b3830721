package ir

// Target is the chosen instruction-set variant a module will be encoded
// for. It doubles as the host probe's result and the compile driver's
// encoder-selection key.
type Target uint8

const (
	Unknown Target = iota
	X86SSE
	X86AVX2
	X86AVX512
	ARMNEON
	ARMSVE
	RISCVRVV
)

func (t Target) String() string {
	switch t {
	case X86SSE:
		return "x86-sse"
	case X86AVX2:
		return "x86-avx2"
	case X86AVX512:
		return "x86-avx512"
	case ARMNEON:
		return "arm-neon"
	case ARMSVE:
		return "arm-sve"
	case RISCVRVV:
		return "riscv-rvv"
	default:
		return "unknown"
	}
}

// Family groups a Target by the architecture whose encoder handles it.
type Family uint8

const (
	FamilyUnknown Family = iota
	FamilyX86
	FamilyARM
	FamilyRISCV
)

// Family reports which architecture family encodes this target.
func (t Target) Family() Family {
	switch t {
	case X86SSE, X86AVX2, X86AVX512:
		return FamilyX86
	case ARMNEON, ARMSVE:
		return FamilyARM
	case RISCVRVV:
		return FamilyRISCV
	default:
		return FamilyUnknown
	}
}
