package optimizer

import "github.com/zer0condition/pva-compiler/internal/ir"

// maxFusionSites bounds how many fusion windows a single run records,
// matching the module-size-independent cap the rest of the pipeline
// holds itself to.
const maxFusionSites = 256

// FusionSite identifies a LOAD_F32 / compute / STORE_F32 window in which
// the load's destination is one of the compute's sources (the store's
// register is not compared) — a candidate for a fused load-op-store instruction on
// targets that support one. This pass never rewrites the sequence; it
// only reports candidates.
type FusionSite struct {
	Index     int
	ComputeOp ir.Op
}

func detectFusion(seq []ir.Instruction) []FusionSite {
	var sites []FusionSite
	for i := 0; i+2 < len(seq); i++ {
		if len(sites) >= maxFusionSites {
			break
		}
		load, compute, store := seq[i], seq[i+1], seq[i+2]
		if load.Op != ir.OpLoadF32 {
			continue
		}
		if !isArithmeticCompute(compute.Op) {
			continue
		}
		if store.Op != ir.OpStoreF32 {
			continue
		}
		if compute.Src1 != load.Dst && compute.Src2 != load.Dst {
			continue
		}
		sites = append(sites, FusionSite{Index: i, ComputeOp: compute.Op})
	}
	return sites
}
