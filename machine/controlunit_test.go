package machine

import (
	"testing"

	"gvm/isa"

	"github.com/stretchr/testify/require"
)

func TestStepHaltStopsExecution(t *testing.T) {
	instrs := []isa.Instruction{{Op: isa.HLT}}
	output, executed, _, err := Simulate(instrs, nil, "", 10, 100)
	require.NoError(t, err)
	require.Equal(t, "", output)
	require.Equal(t, 0, executed)
}

func TestLoadImmediateAndOutputNumber(t *testing.T) {
	instrs := []isa.Instruction{
		{Op: isa.LD, Arg: 42, Mode: isa.IMMEDIATE},
		{Op: isa.OUTN},
		{Op: isa.HLT},
	}
	output, _, _, err := Simulate(instrs, nil, "", 10, 100)
	require.NoError(t, err)
	require.Equal(t, "42", output)
}

func TestStoreThenLoadDirect(t *testing.T) {
	instrs := []isa.Instruction{
		{Op: isa.LD, Arg: 7, Mode: isa.IMMEDIATE},
		{Op: isa.ST, Arg: 0},
		{Op: isa.LD, Arg: 0},
		{Op: isa.OUTN},
		{Op: isa.HLT},
	}
	output, _, _, err := Simulate(instrs, make([]int32, 1), "", 10, 100)
	require.NoError(t, err)
	require.Equal(t, "7", output)
}

func TestIndirectAddressing(t *testing.T) {
	// memory[0] = 2 (a pointer), memory[2] = 99; LD ~0 should load 99.
	data := []int32{2, 0, 99}
	instrs := []isa.Instruction{
		{Op: isa.LD, Arg: 0, Mode: isa.INDIRECT},
		{Op: isa.OUTN},
		{Op: isa.HLT},
	}
	output, _, _, err := Simulate(instrs, data, "", 10, 100)
	require.NoError(t, err)
	require.Equal(t, "99", output)
}

func TestFloorModulusOfNegative(t *testing.T) {
	instrs := []isa.Instruction{
		{Op: isa.LD, Arg: -7, Mode: isa.IMMEDIATE},
		{Op: isa.ST, Arg: 0},
		{Op: isa.LD, Arg: 0},
		{Op: isa.MOD, Arg: 3, Mode: isa.IMMEDIATE},
		{Op: isa.OUTN},
		{Op: isa.HLT},
	}
	output, _, _, err := Simulate(instrs, make([]int32, 1), "", 10, 100)
	require.NoError(t, err)
	require.Equal(t, "2", output) // -7 mod 3 floors to 2, not Go's -1
}

func TestJumpGreaterOnlyTakenWhenStrictlyGreater(t *testing.T) {
	// CMP leaves acc-right in alu_output; JG only jumps when that's >0.
	instrs := []isa.Instruction{
		{Op: isa.LD, Arg: 5, Mode: isa.IMMEDIATE},
		{Op: isa.CMP, Arg: 5, Mode: isa.IMMEDIATE}, // 5 - 5 == 0: not greater
		{Op: isa.JG, Arg: 5},
		{Op: isa.LD, Arg: 1, Mode: isa.IMMEDIATE},
		{Op: isa.JMP, Arg: 6},
		{Op: isa.LD, Arg: 0, Mode: isa.IMMEDIATE},
		{Op: isa.OUTN},
		{Op: isa.HLT},
	}
	output, _, _, err := Simulate(instrs, nil, "", 10, 100)
	require.NoError(t, err)
	require.Equal(t, "1", output)
}

func TestAddressOutOfRangeIsAFault(t *testing.T) {
	instrs := []isa.Instruction{
		{Op: isa.LD, Arg: 999},
		{Op: isa.HLT},
	}
	_, _, _, err := Simulate(instrs, make([]int32, 1), "", 4, 100)
	require.ErrorIs(t, err, ErrAddressOutOfRange)
}

func TestIntegerOverflowIsAFault(t *testing.T) {
	instrs := []isa.Instruction{
		{Op: isa.LD, Arg: 2000000000, Mode: isa.IMMEDIATE},
		{Op: isa.ADD, Arg: 2000000000, Mode: isa.IMMEDIATE},
		{Op: isa.HLT},
	}
	_, _, _, err := Simulate(instrs, nil, "", 10, 100)
	require.ErrorIs(t, err, ErrIntegerOverflow)
}

func TestInputExhaustedStopsWithoutError(t *testing.T) {
	instrs := []isa.Instruction{
		{Op: isa.IN},
		{Op: isa.IN},
		{Op: isa.IN},
		{Op: isa.HLT},
	}
	// "" yields a single codepoint-0 sentinel in the input buffer; the
	// second IN exhausts it and is not itself counted.
	_, executed, _, err := Simulate(instrs, nil, "", 10, 100)
	require.NoError(t, err)
	require.Equal(t, 1, executed)
}

func TestInstructionLimitExceededStopsWithoutError(t *testing.T) {
	instrs := []isa.Instruction{
		{Op: isa.JMP, Arg: 0},
	}
	_, executed, _, err := Simulate(instrs, nil, "", 10, 5)
	require.NoError(t, err)
	require.Equal(t, 5, executed)
}

func TestTickCountIsPositive(t *testing.T) {
	instrs := []isa.Instruction{
		{Op: isa.LD, Arg: 1, Mode: isa.IMMEDIATE},
		{Op: isa.ST, Arg: 0},
		{Op: isa.LD, Arg: 0},
		{Op: isa.HLT},
	}
	_, _, ticks, err := Simulate(instrs, make([]int32, 1), "", 10, 100)
	require.NoError(t, err)
	require.Greater(t, ticks, 0)
}
