// Command acrun loads a translated program and executes it, following
// csa_lab3/machine/machine.py::main's two-argument CLI shape and
// KTStephano-GVM's RunProgram/RunProgramDebugMode pair (vm/run.go).
package main

import (
	"fmt"
	"os"

	"gvm/isa"
	"gvm/machine"

	"github.com/spf13/cobra"
)

func main() {
	var debug bool
	var memCapacity int
	var instrLimit int

	rootCmd := &cobra.Command{
		Use:   "acrun <target.bin> <input.txt>",
		Short: "Run a translated accumulator-machine program",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMachine(args[0], args[1], debug, memCapacity, instrLimit)
		},
	}
	rootCmd.Flags().BoolVar(&debug, "debug", false, "trace every instruction to stderr")
	rootCmd.Flags().IntVar(&memCapacity, "mem-capacity", machine.DefaultMemoryCapacity, "data memory size in words")
	rootCmd.Flags().IntVar(&instrLimit, "instr-limit", machine.DefaultInstructionLimit, "maximum instructions to execute before giving up")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runMachine(binaryPath, inputPath string, debug bool, memCapacity, instrLimit int) error {
	binary, err := os.ReadFile(binaryPath)
	if err != nil {
		return err
	}
	instrs, data, err := isa.Decode(binary)
	if err != nil {
		return err
	}
	input, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}

	var output string
	var executed, ticks int
	if debug {
		output, executed, ticks, err = machine.SimulateDebug(instrs, data, string(input), memCapacity, instrLimit,
			func(cu *machine.ControlUnit) { machine.FprintState(os.Stderr, cu) })
	} else {
		output, executed, ticks, err = machine.Simulate(instrs, data, string(input), memCapacity, instrLimit)
	}
	if err != nil {
		return err
	}

	fmt.Printf("output: %q\n", output)
	fmt.Println("instr executed:", executed)
	fmt.Println("ticks:", ticks)
	if executed >= instrLimit {
		fmt.Fprintln(os.Stderr, "warning: instruction limit exceeded")
	}
	return nil
}
