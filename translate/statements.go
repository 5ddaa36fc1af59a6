package translate

import (
	"strings"

	"gvm/isa"

	"github.com/pkg/errors"
)

// processAssignment handles `name = expr`. A quoted-string rhs copies the
// literal's length+chars into the variable's slab; a lone-identifier rhs
// either loads-and-stores (int) or copies (str); anything else is lowered
// as an integer expression. The first assignment to a name allocates its
// slot; later assignments reuse it (translator.py::process_variable_assignment).
func (t *Translator) processAssignment(statement string) error {
	m := assignRe.FindStringSubmatch(statement)
	varName := m[1]
	rhs := strings.TrimSpace(m[2])

	switch {
	case stringRe.MatchString(rhs):
		literal := stringRe.FindStringSubmatch(rhs)[1]
		addr := t.stringLiteralPointers[literal]
		return t.saveVariable(varName, VarStr, addr)
	case identRe.MatchString(rhs):
		src, err := t.lookupVariable(rhs)
		if err != nil {
			return err
		}
		return t.saveVariable(varName, src.Type, src.Addr)
	default:
		resultAddr, err := t.handleExpression(rhs)
		if err != nil {
			return err
		}
		return t.saveVariable(varName, VarInt, resultAddr)
	}
}

// saveVariable allocates name on first use (recording it in the current
// block scope) or reuses its existing slot, then emits the int
// LD/ST pair or the string-copy subroutine depending on varType.
func (t *Translator) saveVariable(name string, varType VarType, valueAddr int32) error {
	v, err := t.declareOrReuse(name, varType)
	if err != nil {
		return err
	}
	if varType == VarInt {
		t.emit(isa.Instruction{Op: isa.LD, Arg: valueAddr})
		t.emit(isa.Instruction{Op: isa.ST, Arg: v.Addr})
	} else {
		t.copyString(valueAddr, v.Addr)
	}
	return nil
}

// processIf handles `if EXPR :`. The expression's final value is left in
// acc by handleExpression, so CMP #0 tests it directly without an extra
// load. The JE's argument is a placeholder, patched at the matching `;`.
func (t *Translator) processIf(statement string) error {
	m := ifRe.FindStringSubmatch(statement)
	if _, err := t.handleExpression(m[1]); err != nil {
		return err
	}
	t.emit(isa.Instruction{Op: isa.CMP, Arg: 0, Mode: isa.IMMEDIATE})
	patchAddr := t.emit(isa.Instruction{Op: isa.JE})
	t.blockStack = append(t.blockStack, Block{Kind: BlockIf, PatchAddr: patchAddr})
	t.blockVariables = append(t.blockVariables, nil)
	return nil
}

// processWhile handles `while EXPR :`, recording the loop's restart
// address before the expression is re-lowered on every iteration.
func (t *Translator) processWhile(statement string) error {
	m := whileRe.FindStringSubmatch(statement)
	startAddr := t.here()
	if _, err := t.handleExpression(m[1]); err != nil {
		return err
	}
	t.emit(isa.Instruction{Op: isa.CMP, Arg: 0, Mode: isa.IMMEDIATE})
	patchAddr := t.emit(isa.Instruction{Op: isa.JE})
	t.blockStack = append(t.blockStack, Block{Kind: BlockWhile, PatchAddr: patchAddr, StartAddr: int(startAddr)})
	t.blockVariables = append(t.blockVariables, nil)
	return nil
}

// processBlockClose handles a bare `;`: it closes the innermost pending
// block, emitting the loop-back JMP for a while, patching the header's
// placeholder JE to the current instruction count, and dropping the
// block's locally-declared variable names (their memory is not reclaimed).
func (t *Translator) processBlockClose() error {
	if len(t.blockStack) == 0 {
		return errors.Wrap(ErrSpuriousBlockEnd, "unexpected ;")
	}
	top := len(t.blockStack) - 1
	block := t.blockStack[top]
	t.blockStack = t.blockStack[:top]

	if block.Kind == BlockWhile {
		t.emit(isa.Instruction{Op: isa.JMP, Arg: int32(block.StartAddr)})
	}
	t.instructions[block.PatchAddr].Arg = t.here()

	scopeTop := len(t.blockVariables) - 1
	names := t.blockVariables[scopeTop]
	t.blockVariables = t.blockVariables[:scopeTop]
	for _, name := range names {
		delete(t.variables, name)
	}
	return nil
}

// processOutput handles `/out EXPR` and `> EXPR`. An integer operand
// loads and OUTNs its decimal form; a string operand/expression walks the
// slab emitting one OUT per character.
func (t *Translator) processOutput(statement string) error {
	m := outputRe.FindStringSubmatch(statement)
	expression := strings.TrimSpace(m[1])

	var dataAddr int32
	var dataType VarType
	switch {
	case stringRe.MatchString(expression):
		literal := stringRe.FindStringSubmatch(expression)[1]
		dataAddr = t.stringLiteralPointers[literal]
		dataType = VarStr
	case identRe.MatchString(expression):
		v, err := t.lookupVariable(expression)
		if err != nil {
			return err
		}
		dataAddr, dataType = v.Addr, v.Type
	default:
		addr, err := t.handleExpression(expression)
		if err != nil {
			return err
		}
		dataAddr, dataType = addr, VarInt
	}

	if dataType == VarInt {
		t.emit(isa.Instruction{Op: isa.LD, Arg: dataAddr})
		t.emit(isa.Instruction{Op: isa.OUTN})
	} else {
		t.emitStringOutputLoop(dataAddr)
	}
	return nil
}

// emitStringOutputLoop walks the slab at srcAddr one character at a time,
// OUTputting each, terminating when the running offset equals the slab's
// length prefix.
func (t *Translator) emitStringOutputLoop(srcAddr int32) {
	t.emit(isa.Instruction{Op: isa.LD, Arg: 0, Mode: isa.IMMEDIATE})
	t.emit(isa.Instruction{Op: isa.ST, Arg: t.memPointer})

	loopStart := t.here()
	t.emit(isa.Instruction{Op: isa.CMP, Arg: srcAddr})
	t.emit(isa.Instruction{Op: isa.JE, Arg: t.here() + 9})
	t.emit(isa.Instruction{Op: isa.ADD, Arg: 1, Mode: isa.IMMEDIATE})
	t.emit(isa.Instruction{Op: isa.ST, Arg: t.memPointer})
	t.emit(isa.Instruction{Op: isa.ADD, Arg: srcAddr, Mode: isa.IMMEDIATE})
	t.emit(isa.Instruction{Op: isa.ST, Arg: t.memPointer + 1})
	t.emit(isa.Instruction{Op: isa.LD, Arg: t.memPointer + 1, Mode: isa.INDIRECT})
	t.emit(isa.Instruction{Op: isa.OUT})
	t.emit(isa.Instruction{Op: isa.LD, Arg: t.memPointer})
	t.emit(isa.Instruction{Op: isa.JMP, Arg: loopStart})
}

// processInput handles `/in name`: name must already exist and be
// str-typed. It reads codepoints via IN, terminating the slab on
// codepoint 0 or once strMaxLength characters have been appended.
func (t *Translator) processInput(statement string) error {
	m := inputRe.FindStringSubmatch(statement)
	varName := m[1]
	v, err := t.lookupVariable(varName)
	if err != nil {
		return err
	}
	if v.Type != VarStr {
		return errors.Wrapf(ErrTypeMismatch, "cannot input into %q, must have str type", varName)
	}

	t.emit(isa.Instruction{Op: isa.LD, Arg: 0, Mode: isa.IMMEDIATE})
	t.emit(isa.Instruction{Op: isa.ST, Arg: v.Addr})

	loopStart := t.here()
	t.emit(isa.Instruction{Op: isa.IN})
	t.emit(isa.Instruction{Op: isa.CMP, Arg: 0, Mode: isa.IMMEDIATE})
	t.emit(isa.Instruction{Op: isa.JE, Arg: t.here() + 13})
	t.emit(isa.Instruction{Op: isa.ST, Arg: t.memPointer})
	t.emit(isa.Instruction{Op: isa.LD, Arg: v.Addr})
	t.emit(isa.Instruction{Op: isa.ADD, Arg: 1, Mode: isa.IMMEDIATE})
	t.emit(isa.Instruction{Op: isa.ST, Arg: v.Addr})
	t.emit(isa.Instruction{Op: isa.ADD, Arg: v.Addr, Mode: isa.IMMEDIATE})
	t.emit(isa.Instruction{Op: isa.ST, Arg: t.memPointer + 1})
	t.emit(isa.Instruction{Op: isa.LD, Arg: t.memPointer})
	t.emit(isa.Instruction{Op: isa.ST, Arg: t.memPointer + 1, Mode: isa.INDIRECT})
	t.emit(isa.Instruction{Op: isa.LD, Arg: v.Addr})
	t.emit(isa.Instruction{Op: isa.CMP, Arg: strMaxLength, Mode: isa.IMMEDIATE})
	t.emit(isa.Instruction{Op: isa.JE, Arg: t.here() + 2})
	t.emit(isa.Instruction{Op: isa.JMP, Arg: loopStart})
	return nil
}
