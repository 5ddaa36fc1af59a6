// Package machine implements the cycle-accurate virtual machine: a
// DataPath holding the accumulator, address register, ALU output and
// memory, and a ControlUnit driving it instruction by instruction. It is
// grounded in csa_lab3/machine/machine.py's DataPath/ControlUnit split,
// adapted to KTStephano-GVM's register-file-and-pointer style
// (vm/vm.go's registers/sp/pc fields) and its closed switch-dispatch
// execution loop (vm/exec.go::execNextInstruction).
package machine

import (
	"strconv"
	"strings"

	"gvm/isa"

	"github.com/pkg/errors"
)

// Error sentinels for the VM-fault half of the error taxonomy.
var (
	ErrAddressOutOfRange = errors.New("address out of range")
	ErrIntegerOverflow   = errors.New("integer overflow")
	ErrInputExhausted    = errors.New("input exhausted")
	ErrInstructionLimit  = errors.New("instruction limit exceeded")
)

const (
	minInt32 = -(1 << 31)
	maxInt32 = 1<<31 - 1
)

// ALUMode selects which operand the ALU result starts from before
// op is folded in, mirroring machine.py's ALUMode enum.
type ALUMode int

const (
	UnaryLeft  ALUMode = iota // result passes Acc through unchanged
	UnaryRight                // result starts from the supplied right operand
	Binary                    // result starts from Acc, then op combines in right
)

// DataPath holds the machine's mutable register/memory state. Signal
// methods mirror machine.py::DataPath's signal_* methods one for one;
// where Python asserts a precondition, the Go method returns an error
// instead of panicking.
type DataPath struct {
	Memory       []int32
	MemoryOutput int32
	Acc          int32
	AddressReg   int32
	ALUOutput    int32

	Input  []rune
	Output strings.Builder
}

// NewDataPath builds a DataPath with memory of the given capacity,
// preloaded with the data image, and an input buffer where newlines
// become codepoint 0 and a trailing codepoint-0 sentinel is appended
// (csa_lab3/machine/machine.py::DataPath.__init__).
func NewDataPath(data []int32, capacity int, input string) (*DataPath, error) {
	if capacity <= 0 || len(data) >= capacity {
		return nil, errors.Wrapf(ErrAddressOutOfRange, "data image of %d words does not fit in %d-word memory", len(data), capacity)
	}
	mem := make([]int32, capacity)
	copy(mem, data)

	runes := make([]rune, 0, len(input)+1)
	for _, r := range input {
		if r == '\n' {
			r = 0
		}
		runes = append(runes, r)
	}
	runes = append(runes, 0)

	return &DataPath{Memory: mem, Input: runes}, nil
}

// FlagZero and FlagNegative are derived live from ALUOutput, exactly as
// machine.py's flag_zero/flag_negative read self.alu_output rather than a
// separately latched flag register.
func (d *DataPath) FlagZero() bool     { return d.ALUOutput == 0 }
func (d *DataPath) FlagNegative() bool { return d.ALUOutput < 0 }

// LatchAcc either pops the next input codepoint into Acc (selInput) or
// copies ALUOutput into Acc.
func (d *DataPath) LatchAcc(selInput bool) error {
	if selInput {
		if len(d.Input) == 0 {
			return errors.Wrap(ErrInputExhausted, "input buffer is empty")
		}
		d.Acc = int32(d.Input[0])
		d.Input = d.Input[1:]
		return nil
	}
	d.Acc = d.ALUOutput
	return nil
}

// LatchAddress sets AddressReg to value (selInstr, an immediate from the
// instruction) or to ALUOutput, then bounds-checks it.
func (d *DataPath) LatchAddress(selInstr bool, value int32) error {
	if selInstr {
		d.AddressReg = value
	} else {
		d.AddressReg = d.ALUOutput
	}
	if d.AddressReg < 0 || int(d.AddressReg) >= len(d.Memory) {
		return errors.Wrapf(ErrAddressOutOfRange, "address %d out of range [0, %d)", d.AddressReg, len(d.Memory))
	}
	return nil
}

// ALU folds right into the operand selected by mode via op, writing the
// result to ALUOutput. op.Valid()==false means pass-through: no operation
// is applied and the starting operand is the result as-is (used for ST's
// acc-to-memory pass and IN's flag-setting pass).
func (d *DataPath) ALU(selInstr bool, mode ALUMode, right int32, op isa.Opcode) error {
	if !selInstr {
		right = d.MemoryOutput
	}
	var result int64
	if mode == UnaryRight {
		result = int64(right)
	} else {
		result = int64(d.Acc)
	}
	switch op {
	case isa.ADD:
		result += int64(right)
	case isa.SUB, isa.CMP:
		result -= int64(right)
	case isa.MUL:
		result *= int64(right)
	case isa.DIV:
		result = floorDiv(result, int64(right))
	case isa.MOD:
		result = floorMod(result, int64(right))
	}
	if result < minInt32 || result > maxInt32 {
		return errors.Wrapf(ErrIntegerOverflow, "result %d overflows int32", result)
	}
	d.ALUOutput = int32(result)
	return nil
}

// floorDiv and floorMod implement Python's floor-toward-negative-infinity
// division and modulus (csa_lab3/machine/machine.py uses `//`/`%`
// directly), unlike Go's native truncating `/`/`%`.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}

// Read loads Memory[AddressReg] into MemoryOutput.
func (d *DataPath) Read() {
	d.MemoryOutput = d.Memory[d.AddressReg]
}

// Write stores ALUOutput into Memory[AddressReg].
func (d *DataPath) Write() {
	d.Memory[d.AddressReg] = d.ALUOutput
}

// EmitOutput appends Acc to Output, as a single codepoint (OUT) or as a
// decimal integer (OUTN, isNumber true).
func (d *DataPath) EmitOutput(isNumber bool) {
	if isNumber {
		d.Output.WriteString(strconv.FormatInt(int64(d.Acc), 10))
	} else {
		d.Output.WriteRune(rune(d.Acc))
	}
}
