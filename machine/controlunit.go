package machine

import (
	"gvm/isa"

	"github.com/pkg/errors"
)

// StepResult reports what happened on one ControlUnit.Step call.
type StepResult int

const (
	StepContinue StepResult = iota
	StepHalted
	StepInputExhausted
)

// ControlUnit fetches and executes one instruction at a time against a
// DataPath, counting ticks the way csa_lab3/machine/machine.py's
// ControlUnit does (one tick per memory access and one per instruction
// pointer latch, never one flat tick per instruction).
type ControlUnit struct {
	Instructions []isa.Instruction
	InstrPointer int
	DataPath     *DataPath
	Tick         int
}

// NewControlUnit returns a ControlUnit positioned at the first instruction.
func NewControlUnit(instrs []isa.Instruction, dp *DataPath) *ControlUnit {
	return &ControlUnit{Instructions: instrs, DataPath: dp}
}

func (cu *ControlUnit) tick() { cu.Tick++ }

func (cu *ControlUnit) latchInstrPointer(selNext bool, target int32) {
	if selNext {
		cu.InstrPointer++
	} else {
		cu.InstrPointer = int(target)
	}
}

// Step executes exactly one instruction. It returns StepHalted on HLT,
// StepInputExhausted when IN finds the input buffer empty (the program
// counter is left pointing at the IN instruction so a caller can inspect
// state, but is not expected to resume), and a non-nil error only for a
// genuine fault (out-of-range address or int32 overflow).
func (cu *ControlUnit) Step() (StepResult, error) {
	if cu.InstrPointer < 0 || cu.InstrPointer >= len(cu.Instructions) {
		return StepContinue, errors.Wrapf(ErrAddressOutOfRange, "instruction pointer %d out of range [0, %d)", cu.InstrPointer, len(cu.Instructions))
	}
	instr := cu.Instructions[cu.InstrPointer]

	if instr.Op == isa.HLT {
		return StepHalted, nil
	}

	if instr.Op.IsJump() {
		cu.execJump(instr)
		return StepContinue, nil
	}

	dp := cu.DataPath
	switch {
	case instr.Op.IsALU():
		if instr.Mode == isa.IMMEDIATE {
			if err := dp.ALU(true, Binary, instr.Arg, instr.Op); err != nil {
				return StepContinue, err
			}
		} else {
			if err := dp.LatchAddress(true, instr.Arg); err != nil {
				return StepContinue, err
			}
			dp.Read()
			cu.tick()
			if instr.Mode == isa.INDIRECT {
				if err := dp.ALU(false, UnaryRight, 0, 0); err != nil {
					return StepContinue, err
				}
				if err := dp.LatchAddress(false, 0); err != nil {
					return StepContinue, err
				}
				dp.Read()
				cu.tick()
			}
			if err := dp.ALU(false, Binary, 0, instr.Op); err != nil {
				return StepContinue, err
			}
		}
		if instr.Op != isa.CMP {
			dp.LatchAcc(false)
		}

	case instr.Op == isa.LD:
		if instr.Mode == isa.IMMEDIATE {
			if err := dp.ALU(true, UnaryRight, instr.Arg, 0); err != nil {
				return StepContinue, err
			}
		} else {
			if err := dp.LatchAddress(true, instr.Arg); err != nil {
				return StepContinue, err
			}
			dp.Read()
			cu.tick()
			if err := dp.ALU(false, UnaryRight, 0, 0); err != nil {
				return StepContinue, err
			}
			if instr.Mode == isa.INDIRECT {
				if err := dp.LatchAddress(false, 0); err != nil {
					return StepContinue, err
				}
				dp.Read()
				cu.tick()
				if err := dp.ALU(false, UnaryRight, 0, 0); err != nil {
					return StepContinue, err
				}
			}
		}
		dp.LatchAcc(false)

	case instr.Op == isa.ST:
		if err := dp.LatchAddress(true, instr.Arg); err != nil {
			return StepContinue, err
		}
		if instr.Mode == isa.INDIRECT {
			dp.Read()
			cu.tick()
			if err := dp.ALU(false, UnaryRight, 0, 0); err != nil {
				return StepContinue, err
			}
			if err := dp.LatchAddress(false, 0); err != nil {
				return StepContinue, err
			}
			cu.tick()
		}
		if err := dp.ALU(false, UnaryLeft, 0, 0); err != nil {
			return StepContinue, err
		}
		dp.Write()

	case instr.Op == isa.IN:
		if err := dp.LatchAcc(true); err != nil {
			if errors.Is(err, ErrInputExhausted) {
				return StepInputExhausted, nil
			}
			return StepContinue, err
		}
		dp.ALU(false, UnaryLeft, 0, 0) // set flags from acc, per machine.py

	case instr.Op == isa.OUT, instr.Op == isa.OUTN:
		dp.EmitOutput(instr.Op == isa.OUTN)
	}

	cu.tick()
	cu.latchInstrPointer(true, 0)
	return StepContinue, nil
}

// execJump implements the jump-taken table: JMP always, JE on zero, JNE on
// not-zero, JL on negative, JG on neither negative nor zero
// (csa_lab3/machine/machine.py::decode_and_execute_control_flow_instruction).
func (cu *ControlUnit) execJump(instr isa.Instruction) {
	dp := cu.DataPath
	selNext := true
	switch instr.Op {
	case isa.JMP:
		selNext = false
	case isa.JE:
		selNext = !dp.FlagZero()
	case isa.JNE:
		selNext = dp.FlagZero()
	case isa.JL:
		selNext = !dp.FlagNegative()
	case isa.JG:
		selNext = dp.FlagNegative() || dp.FlagZero()
	}
	cu.latchInstrPointer(selNext, instr.Arg)
	cu.tick()
}
