// Package translate turns the line-oriented source language into a flat
// instruction stream and an initial data-memory image. It is grounded in
// KTStephano-GVM/vm/compile.go's CompileSourceFromBuffer driver (label
// pre-pass, ordered statement dispatch, append-only instruction list) and
// in the original csa_lab3/translator/translator.py it was distilled from.
package translate

import (
	"regexp"
	"strings"

	"gvm/isa"

	"github.com/pkg/errors"
)

// VarType distinguishes the two declarable variable types.
type VarType int

const (
	VarInt VarType = iota
	VarStr
)

// strMaxLength is the maximum number of codepoints a string literal or
// string variable may hold; each str variable reserves strMaxLength+1
// words (length prefix + characters).
const strMaxLength = 63

// Variable records where a declared name lives and what it holds. Its
// address is fixed at first assignment; reassignment reuses the slot.
type Variable struct {
	Type VarType
	Addr int32
}

// BlockKind distinguishes the two control structures the translator
// tracks on blockStack.
type BlockKind int

const (
	BlockIf BlockKind = iota
	BlockWhile
)

// Block is a pending control structure awaiting its closing `;`.
type Block struct {
	Kind      BlockKind
	PatchAddr int // index into instructions of the placeholder JE to patch
	StartAddr int // while-loop restart address; unused for BlockIf
}

// keywords are reserved identifiers that may not be used as variable
// names. `var` is reserved for forward compatibility even though the
// grammar never uses it as a declaration keyword.
var keywords = map[string]bool{"var": true, "if": true, "while": true}

// Translator holds all compile-time state for one translation run. A
// Translator is used once: Translate builds one with New, runs it over the
// source and returns it, and the caller then reads Instructions/DataMemory.
type Translator struct {
	instructions []isa.Instruction

	stringLiteralMem      []int32
	stringLiteralPointers map[string]int32

	memPointer int32

	variables map[string]Variable

	blockStack     []Block
	blockVariables [][]string // parallel stack; index 0 is the unclosed top-level scope
}

// New returns a fresh Translator with empty state, as used by Translate.
func New() *Translator {
	return &Translator{
		variables:             make(map[string]Variable),
		stringLiteralPointers: make(map[string]int32),
		blockVariables:        [][]string{nil},
	}
}

// Instructions returns the emitted instruction stream (valid after
// Translate returns successfully).
func (t *Translator) Instructions() []isa.Instruction { return t.instructions }

// DataMemory returns the initial data-memory image built from string
// literals (valid after Translate returns successfully).
func (t *Translator) DataMemory() []int32 { return t.stringLiteralMem }

var (
	assignRe  = regexp.MustCompile(`^([_a-zA-Z]\w*) *= *(.+)$`)
	ifRe      = regexp.MustCompile(`^if +(.+?) *:$`)
	whileRe   = regexp.MustCompile(`^while +(.+?) *:$`)
	outputRe  = regexp.MustCompile(`^(?:/out |> ?)(.+)$`)
	inputRe   = regexp.MustCompile(`^/in +([_a-zA-Z]\w*)$`)
	stringRe  = regexp.MustCompile(`^'([^']*)'$`)
	identRe   = regexp.MustCompile(`^[_a-zA-Z]\w*$`)
	literalRe = regexp.MustCompile(`'([^'\n]*)'`)
)

// Translate compiles source into t.instructions/t.stringLiteralMem. The
// source is normalized the way translator.py does: tabs expand to 4
// spaces, consecutive blank lines collapse, and each line is trimmed
// before being matched, in fixed priority order, against: assignment, if,
// while, block close, output, input. An unmatched line is a fatal error;
// unclosed blocks at end of input are a fatal error; a trailing HLT is
// always appended.
func Translate(source string) (*Translator, error) {
	t := New()
	if err := t.translate(source); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Translator) translate(source string) error {
	source = strings.TrimSpace(source)
	source = strings.ReplaceAll(source, "\t", "    ")
	source = strings.ReplaceAll(source, "\n\n", "\n")

	if err := t.preallocateStringLiterals(source); err != nil {
		return err
	}

	for _, line := range strings.Split(source, "\n") {
		statement := strings.TrimSpace(line)
		if statement == "" {
			continue
		}
		if err := t.translateStatement(statement); err != nil {
			return errors.Wrapf(err, "in statement %q", statement)
		}
	}

	if len(t.blockStack) != 0 {
		return errors.Wrap(ErrUnclosedBlocks, "unclosed blocks")
	}
	t.emit(isa.Instruction{Op: isa.HLT})
	return nil
}

// preallocateStringLiterals extracts every distinct `'...'` literal in
// the source, appends each as (length, chars...) to the data image, and
// records its offset. mem_pointer then starts at the end of that zone;
// the scratch/variable region begins right after the literals.
func (t *Translator) preallocateStringLiterals(source string) error {
	for _, m := range literalRe.FindAllStringSubmatch(source, -1) {
		literal := m[1]
		if _, seen := t.stringLiteralPointers[literal]; seen {
			continue
		}
		runes := []rune(literal)
		if len(runes) > strMaxLength {
			return errors.Wrapf(ErrStringTooLong, "string literal %q exceeds %d characters", literal, strMaxLength)
		}
		t.stringLiteralPointers[literal] = int32(len(t.stringLiteralMem))
		t.stringLiteralMem = append(t.stringLiteralMem, int32(len(runes)))
		for _, r := range runes {
			t.stringLiteralMem = append(t.stringLiteralMem, int32(r))
		}
	}
	t.memPointer = int32(len(t.stringLiteralMem))
	return nil
}

func (t *Translator) translateStatement(statement string) error {
	switch {
	case assignRe.MatchString(statement):
		return t.processAssignment(statement)
	case ifRe.MatchString(statement):
		return t.processIf(statement)
	case whileRe.MatchString(statement):
		return t.processWhile(statement)
	case statement == ";":
		return t.processBlockClose()
	case outputRe.MatchString(statement):
		return t.processOutput(statement)
	case inputRe.MatchString(statement):
		return t.processInput(statement)
	default:
		return errors.Wrapf(ErrUnknownStatement, "unrecognized statement: %q", statement)
	}
}

func (t *Translator) emit(instr isa.Instruction) int {
	t.instructions = append(t.instructions, instr)
	return len(t.instructions) - 1
}

func (t *Translator) here() int32 { return int32(len(t.instructions)) }

// lookupVariable resolves name against the variable table, reporting
// ErrUnknownVariable when absent.
func (t *Translator) lookupVariable(name string) (Variable, error) {
	v, ok := t.variables[name]
	if !ok {
		return Variable{}, errors.Wrapf(ErrUnknownVariable, "unknown variable %q", name)
	}
	return v, nil
}

// declareOrReuse returns the address for name, allocating a new slot (and
// recording it in the current block scope) the first time it is assigned.
// A str slot reserves strMaxLength+1 words; an int slot reserves one.
func (t *Translator) declareOrReuse(name string, varType VarType) (Variable, error) {
	if keywords[name] {
		return Variable{}, errors.Wrapf(ErrReservedName, "%q cannot be used as a variable name", name)
	}
	if v, ok := t.variables[name]; ok {
		return v, nil
	}
	v := Variable{Type: varType, Addr: t.memPointer}
	t.memPointer++
	if varType == VarStr {
		t.memPointer += strMaxLength
	}
	t.variables[name] = v
	top := len(t.blockVariables) - 1
	t.blockVariables[top] = append(t.blockVariables[top], name)
	return v, nil
}
