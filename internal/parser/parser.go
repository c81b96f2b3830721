// Package parser implements the minimal PVA text front end described in
// §6: one instruction per line, '#' line comments, bracketed memory
// operands whose contents are never interpreted. It is a external
// collaborator to the core compiler in the sense the base spec uses
// that word — only the ir.Module it produces matters downstream — so
// its grammar is deliberately small: thirteen mnemonics, up to three
// register operands, an optional trailing immediate, an optional
// trailing mask operand.
//
// Grammar (informal):
//
//	line       := comment | instruction | ""
//	comment    := '#' anything
//	instruction:= mnemonic operand (',' operand)*
//	operand    := register | memory | immediate | mask
//	register   := 'r' digits            ; 0-15
//	memory     := '[' anything ']'      ; contents not parsed
//	immediate  := digits
//	mask       := 'mask:' register
//
// Grounded in the teacher's lexer.go token-scanning style (mnemonic
// table lookup, SourceLocation-tagged diagnostics) and emit.go's
// splitOperands bracket-depth comma splitter, condensed to this
// language's much smaller surface.
package parser

import (
	"strconv"
	"strings"

	"github.com/zer0condition/pva-compiler/internal/diag"
	"github.com/zer0condition/pva-compiler/internal/ir"
)

// Parse scans source line by line, appending a well-formed Instruction
// to the returned Module for each recognized line and recording a
// diagnostic (without aborting) for each malformed one, per §7's
// ParseError policy.
func Parse(source, sourceName string) (*ir.Module, *diag.Collector) {
	mod := ir.NewModule(sourceName)
	errs := diag.NewCollector(0)

	for lineNo, raw := range strings.Split(source, "\n") {
		line := stripComment(raw)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		loc := diag.Location{File: sourceName, Line: lineNo + 1}
		in, ok := parseLine(line, loc, errs)
		if !ok {
			continue
		}
		mod.Append(in)
	}
	return mod, errs
}

func stripComment(line string) string {
	depth := 0
	for i, r := range line {
		switch r {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case '#':
			if depth == 0 {
				return line[:i]
			}
		}
	}
	return line
}

func parseLine(line string, loc diag.Location, errs *diag.Collector) (ir.Instruction, bool) {
	head, rest := splitMnemonic(line)
	op, ok := ir.LookupMnemonic(head)
	if !ok {
		errs.AddError(loc, "unrecognized mnemonic %q", head)
		return ir.Instruction{}, false
	}

	operands := splitOperands(rest)
	in := ir.Instruction{Op: op, Dst: -1, Src1: -1, Src2: -1, MaskReg: ir.NoMask}

	switch op {
	case ir.OpLoopBegin, ir.OpLoopEnd:
		return in, true

	case ir.OpSetZero:
		if len(operands) < 1 {
			errs.AddError(loc, "%s requires a destination register", head)
			return ir.Instruction{}, false
		}
		reg, ok := parseRegister(operands[0], loc, errs)
		if !ok {
			return ir.Instruction{}, false
		}
		in.Dst = reg
		applyTrailing(&in, operands[1:], loc, errs)
		return in, true

	case ir.OpLoadF32, ir.OpStoreF32:
		if len(operands) < 2 {
			errs.AddError(loc, "%s requires a register and a memory operand", head)
			return ir.Instruction{}, false
		}
		reg, ok := parseRegister(operands[0], loc, errs)
		if !ok {
			return ir.Instruction{}, false
		}
		if !isMemoryOperand(operands[1]) {
			errs.AddError(loc, "%s second operand %q is not a bracketed memory operand", head, operands[1])
			return ir.Instruction{}, false
		}
		in.Dst = reg
		applyTrailing(&in, operands[2:], loc, errs)
		return in, true

	default: // ADD/SUB/MUL/DIV/CMP_LT/CMP_EQ/AND/OR: dst, src1, src2[, imm][, mask:rN]
		if len(operands) < 3 {
			errs.AddError(loc, "%s requires three register operands, got %d", head, len(operands))
			return ir.Instruction{}, false
		}
		dst, ok1 := parseRegister(operands[0], loc, errs)
		src1, ok2 := parseRegister(operands[1], loc, errs)
		src2, ok3 := parseRegister(operands[2], loc, errs)
		if !ok1 || !ok2 || !ok3 {
			return ir.Instruction{}, false
		}
		in.Dst, in.Src1, in.Src2 = dst, src1, src2
		applyTrailing(&in, operands[3:], loc, errs)
		return in, true
	}
}

// applyTrailing consumes the optional trailing immediate and/or
// mask:rN operand, in either order.
func applyTrailing(in *ir.Instruction, trailing []string, loc diag.Location, errs *diag.Collector) {
	for _, t := range trailing {
		if strings.HasPrefix(t, "mask:") {
			reg, ok := parseRegister(strings.TrimPrefix(t, "mask:"), loc, errs)
			if ok {
				in.MaskReg = reg
			}
			continue
		}
		if v, err := strconv.ParseUint(t, 10, 32); err == nil {
			in.Imm = uint32(v)
			continue
		}
		errs.AddWarning(loc, "ignoring unrecognized trailing operand %q", t)
	}
}

func parseRegister(tok string, loc diag.Location, errs *diag.Collector) (int8, bool) {
	tok = strings.TrimSpace(tok)
	if len(tok) < 2 || tok[0] != 'r' {
		errs.AddError(loc, "expected a register operand, got %q", tok)
		return 0, false
	}
	n, err := strconv.Atoi(tok[1:])
	if err != nil {
		errs.AddError(loc, "invalid register %q", tok)
		return 0, false
	}
	if n < 0 || n > 15 || !ir.ValidRegister(int8(n)) {
		errs.AddError(loc, "register %q out of range 0-15", tok)
		return 0, false
	}
	return int8(n), true
}

func splitMnemonic(line string) (head, rest string) {
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i+1:])
}

// splitOperands splits a comma-separated operand list, treating commas
// inside '[' ']' as part of the operand rather than a separator.
// Grounded directly on emit.go's splitOperands.
func splitOperands(operands string) []string {
	var result []string
	start := 0
	depth := 0
	for i, r := range operands {
		switch r {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				if part := strings.TrimSpace(operands[start:i]); part != "" {
					result = append(result, part)
				}
				start = i + 1
			}
		}
	}
	if start < len(operands) {
		if part := strings.TrimSpace(operands[start:]); part != "" {
			result = append(result, part)
		}
	}
	return result
}

func isMemoryOperand(op string) bool {
	op = strings.TrimSpace(op)
	return strings.HasPrefix(op, "[") && strings.HasSuffix(op, "]")
}
