package optimizer

import "github.com/zer0condition/pva-compiler/internal/ir"

// removeNops compacts seq in place, dropping every OpNOP record, and
// returns the logical sub-slice plus the number dropped. Compaction is
// safe in place because the write cursor never runs ahead of the read
// cursor.
func removeNops(seq []ir.Instruction) ([]ir.Instruction, int) {
	removed := 0
	w := 0
	for r := 0; r < len(seq); r++ {
		if seq[r].Op == ir.OpNOP {
			removed++
			continue
		}
		seq[w] = seq[r]
		w++
	}
	return seq[:w], removed
}
