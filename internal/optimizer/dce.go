package optimizer

import "github.com/zer0condition/pva-compiler/internal/ir"

// deadCodeEliminate runs a backward fixpoint from STORE_F32 (and,
// unconditionally, LOAD_F32 — neither is ever removed, per the module
// invariant that a load's memory side effect must always execute) and
// drops every instruction whose def is never read by a live
// instruction. LOOP_BEGIN/LOOP_END are seeded live unconditionally too:
// they carry no def/use of their own, so the fixpoint can never reach
// them from a STORE, and they must pass through untouched rather than
// be swept up as dead code. Returns the compacted sequence and the
// removed count.
func deadCodeEliminate(seq []ir.Instruction) ([]ir.Instruction, int) {
	live := make([]bool, len(seq))
	for i, in := range seq {
		if in.Op == ir.OpStoreF32 || in.Op == ir.OpLoadF32 ||
			in.Op == ir.OpLoopBegin || in.Op == ir.OpLoopEnd {
			live[i] = true
		}
	}

	for {
		used := make(map[int8]bool)
		for i, in := range seq {
			if live[i] {
				for _, r := range usesOf(in) {
					used[r] = true
				}
			}
		}
		changed := false
		for i, in := range seq {
			if live[i] {
				continue
			}
			if d, ok := defOf(in); ok && used[d] {
				live[i] = true
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	removed := 0
	w := 0
	for i, in := range seq {
		if !live[i] {
			removed++
			continue
		}
		seq[w] = in
		w++
	}
	return seq[:w], removed
}
