package translate

import (
	"gvm/expr"
	"gvm/isa"

	"github.com/pkg/errors"
)

// handleExpression lowers a parsed expression onto the accumulator
// machine using a compile-time "virtual stack" of scratch cells starting
// at t.memPointer. It returns t.memPointer, the address where
// the caller will find the final value. The virtual stack is
// compile-time only and t.memPointer is not advanced, so nothing is
// reserved for it, not even the result cell: the next variable declared
// receives that same address.
//
// Grounded line-for-line in translator.py::_handle_expression, including
// its exact instruction counts and relative jump offsets for NOT/AND/OR
// and the comparison chains.
func (t *Translator) handleExpression(expression string) (int32, error) {
	nodes, err := expr.Parse(expression)
	if err != nil {
		return 0, errors.Wrapf(err, "in expression %q", expression)
	}

	sp := t.memPointer
	for _, node := range nodes {
		switch node.Kind {
		case expr.KindVarRef:
			v, err := t.lookupVariable(node.Name)
			if err != nil {
				return 0, err
			}
			t.emit(isa.Instruction{Op: isa.LD, Arg: v.Addr})
			t.emit(isa.Instruction{Op: isa.ST, Arg: sp})
			sp++
		case expr.KindIntConst:
			t.emit(isa.Instruction{Op: isa.LD, Arg: node.Int, Mode: isa.IMMEDIATE})
			t.emit(isa.Instruction{Op: isa.ST, Arg: sp})
			sp++
		case expr.KindStrLenConst:
			t.emit(isa.Instruction{Op: isa.LD, Arg: node.Len, Mode: isa.IMMEDIATE})
			t.emit(isa.Instruction{Op: isa.ST, Arg: sp})
			sp++
		case expr.KindUnaryPlus:
			// no-op: acc already holds the operand's value
		case expr.KindUnaryMinus:
			t.emit(isa.Instruction{Op: isa.MUL, Arg: -1, Mode: isa.IMMEDIATE})
			t.emit(isa.Instruction{Op: isa.ST, Arg: sp - 1})
		case expr.KindNot:
			t.lowerNot(sp)
		case expr.KindOr:
			t.lowerOr(sp)
			sp--
		case expr.KindAnd:
			t.lowerAnd(sp)
			sp--
		case expr.KindAdd:
			t.lowerArith(isa.ADD, sp)
			sp--
		case expr.KindSub:
			t.lowerArith(isa.SUB, sp)
			sp--
		case expr.KindMul:
			t.lowerArith(isa.MUL, sp)
			sp--
		case expr.KindDiv:
			t.lowerArith(isa.DIV, sp)
			sp--
		case expr.KindMod:
			t.lowerArith(isa.MOD, sp)
			sp--
		case expr.KindEq, expr.KindNotEq, expr.KindLt, expr.KindLtEq, expr.KindGt, expr.KindGtEq:
			t.lowerCompare(node.Kind, sp)
			sp--
		}
	}
	return t.memPointer, nil
}

// lowerNot materializes "not top-of-stack" into 0/1 using the negate-zero
// pattern: JE +3; LD #0; JMP +2; LD #1; ST sp-1. Offsets are relative to
// the instruction count at the moment each jump is emitted.
func (t *Translator) lowerNot(sp int32) {
	t.emit(isa.Instruction{Op: isa.JE, Arg: t.here() + 3})
	t.emit(isa.Instruction{Op: isa.LD, Arg: 0, Mode: isa.IMMEDIATE})
	t.emit(isa.Instruction{Op: isa.JMP, Arg: t.here() + 2})
	t.emit(isa.Instruction{Op: isa.LD, Arg: 1, Mode: isa.IMMEDIATE})
	t.emit(isa.Instruction{Op: isa.ST, Arg: sp - 1})
}

// lowerOr short-circuits on the already-pushed right operand (current
// acc): if it's nonzero the result is 1 without re-examining the left
// operand at sp-2; otherwise it falls through to check the left operand.
func (t *Translator) lowerOr(sp int32) {
	t.emit(isa.Instruction{Op: isa.JNE, Arg: t.here() + 5})
	t.emit(isa.Instruction{Op: isa.LD, Arg: sp - 2})
	t.emit(isa.Instruction{Op: isa.JNE, Arg: t.here() + 3})
	t.emit(isa.Instruction{Op: isa.LD, Arg: 0, Mode: isa.IMMEDIATE})
	t.emit(isa.Instruction{Op: isa.JMP, Arg: t.here() + 2})
	t.emit(isa.Instruction{Op: isa.LD, Arg: 1, Mode: isa.IMMEDIATE})
	t.emit(isa.Instruction{Op: isa.ST, Arg: sp - 2})
}

// lowerAnd is the symmetric short-circuit over zero instead of nonzero.
func (t *Translator) lowerAnd(sp int32) {
	t.emit(isa.Instruction{Op: isa.JE, Arg: t.here() + 5})
	t.emit(isa.Instruction{Op: isa.LD, Arg: sp - 2})
	t.emit(isa.Instruction{Op: isa.JE, Arg: t.here() + 3})
	t.emit(isa.Instruction{Op: isa.LD, Arg: 1, Mode: isa.IMMEDIATE})
	t.emit(isa.Instruction{Op: isa.JMP, Arg: t.here() + 2})
	t.emit(isa.Instruction{Op: isa.LD, Arg: 0, Mode: isa.IMMEDIATE})
	t.emit(isa.Instruction{Op: isa.ST, Arg: sp - 2})
}

// lowerArith emits the ALU opcode against the right operand held at sp-2
// (acc holds the left operand, per the parser's right-before-left push
// order) and writes the result back to sp-2.
func (t *Translator) lowerArith(op isa.Opcode, sp int32) {
	t.emit(isa.Instruction{Op: op, Arg: sp - 2})
	t.emit(isa.Instruction{Op: isa.ST, Arg: sp - 2})
}

// lowerCompare emits CMP sp-2 (acc - memory[sp-2], i.e. left - right),
// then a chain of conditional jumps that materializes the 0/1 boolean
// result, then stores it back to sp-2.
func (t *Translator) lowerCompare(kind expr.Kind, sp int32) {
	t.emit(isa.Instruction{Op: isa.CMP, Arg: sp - 2})

	switch kind {
	case expr.KindLt:
		t.emit(isa.Instruction{Op: isa.JL, Arg: t.here() + 3})
	case expr.KindLtEq:
		t.emit(isa.Instruction{Op: isa.JL, Arg: t.here() + 4})
	case expr.KindGt:
		t.emit(isa.Instruction{Op: isa.JG, Arg: t.here() + 3})
	case expr.KindGtEq:
		t.emit(isa.Instruction{Op: isa.JG, Arg: t.here() + 4})
	}

	switch kind {
	case expr.KindEq, expr.KindLtEq, expr.KindGtEq:
		t.emit(isa.Instruction{Op: isa.JE, Arg: t.here() + 3})
	case expr.KindNotEq:
		t.emit(isa.Instruction{Op: isa.JNE, Arg: t.here() + 3})
	}

	t.emit(isa.Instruction{Op: isa.LD, Arg: 0, Mode: isa.IMMEDIATE})
	t.emit(isa.Instruction{Op: isa.JMP, Arg: t.here() + 2})
	t.emit(isa.Instruction{Op: isa.LD, Arg: 1, Mode: isa.IMMEDIATE})
	t.emit(isa.Instruction{Op: isa.ST, Arg: sp - 2})
}

// copyString emits the inline string-copy subroutine: it walks the
// source slab one character at a time, writing into the destination slab,
// using two scratch cells at t.memPointer and t.memPointer+1 as
// pointer-holding temporaries. The loop terminates when the destination's
// running length equals the source length. This must only run once an
// expression (if any) has already been fully lowered, since it reuses
// the same scratch cells as the virtual stack.
func (t *Translator) copyString(srcAddr, destAddr int32) {
	t.emit(isa.Instruction{Op: isa.LD, Arg: 0, Mode: isa.IMMEDIATE}) // p = 0
	t.emit(isa.Instruction{Op: isa.ST, Arg: destAddr})               // dest_length = p

	loopStart := t.here()
	t.emit(isa.Instruction{Op: isa.CMP, Arg: srcAddr}) // while p != src_length:
	t.emit(isa.Instruction{Op: isa.JE, Arg: t.here() + 14})
	t.emit(isa.Instruction{Op: isa.ADD, Arg: 1, Mode: isa.IMMEDIATE}) // p += 1
	t.emit(isa.Instruction{Op: isa.ST, Arg: destAddr})
	t.emit(isa.Instruction{Op: isa.ADD, Arg: srcAddr, Mode: isa.IMMEDIATE}) // i = p + src_addr
	t.emit(isa.Instruction{Op: isa.ST, Arg: t.memPointer})
	t.emit(isa.Instruction{Op: isa.LD, Arg: t.memPointer, Mode: isa.INDIRECT}) // char = src[i]
	t.emit(isa.Instruction{Op: isa.ST, Arg: t.memPointer})
	t.emit(isa.Instruction{Op: isa.LD, Arg: destAddr, Mode: isa.IMMEDIATE}) // j = dest_addr
	t.emit(isa.Instruction{Op: isa.ADD, Arg: destAddr})                    // j += dest_length
	t.emit(isa.Instruction{Op: isa.ST, Arg: t.memPointer + 1})
	t.emit(isa.Instruction{Op: isa.LD, Arg: t.memPointer}) // dest[j] = char
	t.emit(isa.Instruction{Op: isa.ST, Arg: t.memPointer + 1, Mode: isa.INDIRECT})

	t.emit(isa.Instruction{Op: isa.LD, Arg: destAddr}) // p = dest_length
	t.emit(isa.Instruction{Op: isa.JMP, Arg: loopStart})
}
