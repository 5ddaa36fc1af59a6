package machine

import (
	"fmt"
	"io"

	"gvm/isa"
)

const (
	// DefaultMemoryCapacity and DefaultInstructionLimit mirror
	// csa_lab3/machine/machine.py::simulation's defaults.
	DefaultMemoryCapacity   = 1000
	DefaultInstructionLimit = 60000
)

// Simulate runs instrs/data to completion (or to a fault, input
// exhaustion, or the instruction limit) against a fresh DataPath seeded
// with input, and returns the accumulated output, the number of
// instructions executed, and the tick count. Grounded in
// csa_lab3/machine/machine.py::simulation and in KTStephano-GVM's
// RunProgram (vm/run.go).
//
// A non-nil error is returned only for a genuine fault (out-of-range
// address, int32 overflow). A program that never halts within instrLimit
// is not such a fault; it is reported, with partial output, by the
// caller inspecting executed == instrLimit.
//
// executed counts only instructions that ran to normal completion,
// matching machine.py::simulation's instr_counter: the HLT that stops
// the run and the IN that finds the input buffer empty are never
// counted, since Python raises StopIteration/EOFError before
// instr_counter is incremented for them.
func Simulate(instrs []isa.Instruction, data []int32, input string, capacity, instrLimit int) (output string, executed, ticks int, err error) {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	if instrLimit <= 0 {
		instrLimit = DefaultInstructionLimit
	}

	dp, err := NewDataPath(data, capacity, input)
	if err != nil {
		return "", 0, 0, err
	}
	cu := NewControlUnit(instrs, dp)

	for executed < instrLimit {
		result, stepErr := cu.Step()
		if stepErr != nil {
			return dp.Output.String(), executed, cu.Tick, stepErr
		}
		if result != StepContinue {
			break
		}
		executed++
	}

	return dp.Output.String(), executed, cu.Tick, nil
}

// TraceFunc is called once per executed instruction by SimulateDebug,
// receiving the ControlUnit state before the step is taken. This is the
// Go analogue of KTStephano-GVM's printCurrentState (vm/vm.go).
type TraceFunc func(cu *ControlUnit)

// SimulateDebug runs the same loop as Simulate but calls trace before
// every step, for use by a --debug CLI flag or an interactive
// step/run/breakpoint driver in the style of
// KTStephano-GVM/vm/exec.go::ExecProgramDebugMode.
func SimulateDebug(instrs []isa.Instruction, data []int32, input string, capacity, instrLimit int, trace TraceFunc) (output string, executed, ticks int, err error) {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	if instrLimit <= 0 {
		instrLimit = DefaultInstructionLimit
	}

	dp, err := NewDataPath(data, capacity, input)
	if err != nil {
		return "", 0, 0, err
	}
	cu := NewControlUnit(instrs, dp)

	for executed < instrLimit {
		if trace != nil {
			trace(cu)
		}
		result, stepErr := cu.Step()
		if stepErr != nil {
			return dp.Output.String(), executed, cu.Tick, stepErr
		}
		if result != StepContinue {
			break
		}
		executed++
	}

	return dp.Output.String(), executed, cu.Tick, nil
}

// FprintState writes one line of ControlUnit/DataPath state in
// KTStephano-GVM's column style (vm/vm.go::printCurrentState), adapted to
// this machine's register set.
func FprintState(w io.Writer, cu *ControlUnit) {
	var instr isa.Instruction
	if cu.InstrPointer >= 0 && cu.InstrPointer < len(cu.Instructions) {
		instr = cu.Instructions[cu.InstrPointer]
	}
	fmt.Fprintf(w, "TICK: %5d IP: %5d ADDR: %5d MEM_OUT: %5d ALU_OUT: %5d ACC: %5d %s\n",
		cu.Tick, cu.InstrPointer, cu.DataPath.AddressReg, cu.DataPath.MemoryOutput, cu.DataPath.ALUOutput, cu.DataPath.Acc, instr)
}
