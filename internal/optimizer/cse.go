package optimizer

import "github.com/zer0condition/pva-compiler/internal/ir"

// cseBucketCount is the fixed scratch-table size for the commutative
// CSE pass, mirroring the teacher's Vibe67HashMap's bucketed chaining
// design (hashmap.go) rather than a plain Go map — a fixed bucket
// count with explicit chaining, sized generously enough that real
// modules rarely see long chains.
const cseBucketCount = 1024

type cseKey struct {
	op   ir.Op
	a, b int8
}

type cseEntry struct {
	key  cseKey
	dst  int8
	next *cseEntry
}

type cseTable struct {
	buckets [cseBucketCount]*cseEntry
}

// hash mirrors hashmap.go's FNV-1a fold, applied to the three small
// integers that make up a key instead of a byte string.
func (k cseKey) hash() uint32 {
	h := uint32(2166136261)
	for _, b := range [3]byte{byte(k.op), byte(k.a), byte(k.b)} {
		h ^= uint32(b)
		h *= 16777619
	}
	return h % cseBucketCount
}

func (t *cseTable) lookup(key cseKey) (int8, bool) {
	for e := t.buckets[key.hash()]; e != nil; e = e.next {
		if e.key == key {
			return e.dst, true
		}
	}
	return 0, false
}

func (t *cseTable) insert(key cseKey, dst int8) {
	idx := key.hash()
	t.buckets[idx] = &cseEntry{key: key, dst: dst, next: t.buckets[idx]}
}

// cseEligible reports whether op participates in CSE at all: exactly
// ADD_F32 and MUL_F32, per §4.3 pass 4 — the same set Op.Commutative
// reports, which canonicalKey relies on below.
func cseEligible(op ir.Op) bool {
	return op == ir.OpAddF32 || op == ir.OpMulF32
}

func canonicalKey(in ir.Instruction) cseKey {
	a, b := in.Src1, in.Src2
	if in.Op.Commutative() && a > b {
		a, b = b, a
	}
	return cseKey{op: in.Op, a: a, b: b}
}

// commutativeCSE walks seq once, folding duplicate computations: when an
// unmasked ADD_F32/MUL_F32 has the same op and operand pair (in either
// order) as an earlier one, it is rewritten to NOP and every later read of its
// destination is redirected (renamed) to the earlier register, until
// that physical register is redefined. Renaming — rather than leaving
// later reads dangling on a NOP's now-meaningless destination — is the
// choice documented for the CSE open question: a dangling read would
// break the "optimizer passes preserve semantics" invariant outright.
// The first occurrence stays in the table for the rest of the walk: an
// entry is not invalidated when one of its source registers or its
// destination register is later redefined.
func commutativeCSE(seq []ir.Instruction) int {
	var table cseTable
	rename := make(map[int8]int8)
	eliminated := 0

	resolve := func(r int8) int8 {
		if canon, ok := rename[r]; ok {
			return canon
		}
		return r
	}

	for i := range seq {
		in := &seq[i]
		if in.Op == ir.OpNOP {
			continue
		}

		switch in.Op {
		case ir.OpAddF32, ir.OpSubF32, ir.OpMulF32, ir.OpDivF32,
			ir.OpCmpLtF32, ir.OpCmpEqF32, ir.OpAndMask, ir.OpOrMask:
			in.Src1 = resolve(in.Src1)
			in.Src2 = resolve(in.Src2)
		case ir.OpStoreF32:
			in.Dst = resolve(in.Dst)
		}

		if in.Masked() {
			in.MaskReg = resolve(in.MaskReg)
		}

		if !cseEligible(in.Op) || in.Masked() {
			if d, ok := defOf(*in); ok {
				delete(rename, d)
			}
			continue
		}

		key := canonicalKey(*in)
		if prevDst, found := table.lookup(key); found {
			rename[in.Dst] = prevDst
			eliminated++
			*in = ir.Instruction{Op: ir.OpNOP} // zeroed fields, per §4.3 pass 4
			continue
		}
		table.insert(key, in.Dst)
		delete(rename, in.Dst)
	}
	return eliminated
}
