// Command actrans compiles accumulator-machine source into the binary
// wire format consumed by acrun, following
// csa_lab3/translator/translator.py::main's three-argument CLI shape and
// oisee-z80-optimizer's flag-bound cobra command style
// (oisee-z80-optimizer/cmd/z80opt/main.go).
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gvm/isa"
	"gvm/machine"
	"gvm/translate"

	"github.com/spf13/cobra"
)

func main() {
	var debug bool
	var memCapacity int
	var instrLimit int

	rootCmd := &cobra.Command{
		Use:   "actrans <source> <target.bin> <target.debug>",
		Short: "Translate accumulator-machine source into bytecode",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(args[0], args[1], args[2], debug, memCapacity, instrLimit)
		},
	}
	rootCmd.Flags().BoolVar(&debug, "debug", false, "print the instruction/memory dump to stderr in addition to target.debug")
	rootCmd.Flags().IntVar(&memCapacity, "mem-capacity", machine.DefaultMemoryCapacity, "data memory size in words the resulting image must fit")
	rootCmd.Flags().IntVar(&instrLimit, "instr-limit", machine.DefaultInstructionLimit, "warn if the translated program exceeds this many instructions")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runTranslate(sourcePath, targetPath, debugPath string, debug bool, memCapacity, instrLimit int) error {
	source, err := os.ReadFile(sourcePath)
	if err != nil {
		return err
	}

	tr, err := translate.Translate(string(source))
	if err != nil {
		return err
	}
	instrs := tr.Instructions()
	data := tr.DataMemory()

	if memCapacity > 0 && len(data) >= memCapacity {
		return fmt.Errorf("data image of %d words does not fit in %d-word memory", len(data), memCapacity)
	}
	if instrLimit > 0 && len(instrs) > instrLimit {
		fmt.Fprintf(os.Stderr, "warning: translated program has %d instructions, exceeding --instr-limit %d\n", len(instrs), instrLimit)
	}

	binary := isa.Encode(instrs, data)
	if err := os.WriteFile(targetPath, binary, 0o644); err != nil {
		return err
	}

	debugFile, err := os.Create(debugPath)
	if err != nil {
		return err
	}
	defer debugFile.Close()
	writeDebugDump(debugFile, instrs, data, binary)
	if debug {
		writeDebugDump(os.Stderr, instrs, data, binary)
	}

	fmt.Println("source LoC:", strings.Count(string(source), "\n")+1)
	fmt.Println("code instr:", len(instrs))
	fmt.Println("code bytes:", len(instrs)*5)
	return nil
}

// writeDebugDump follows translator.py::main's debug-file layout: an
// INSTRUCTIONS table (address, hex-encoded frame, mnemonic) then a MEMORY
// table (address, value).
func writeDebugDump(w io.Writer, instrs []isa.Instruction, data []int32, binary []byte) {
	fmt.Fprint(w, "~~~~~ INSTRUCTIONS ~~~~~")
	fmt.Fprintf(w, "\n%-10s%-15smnemonic", "address", "hexcode")
	for i, instr := range instrs {
		frame := binary[i*5 : i*5+5]
		fmt.Fprintf(w, "\n%-10d%-15x%s", i, frame, instr)
	}
	fmt.Fprint(w, "\n~~~~~ MEMORY ~~~~~")
	fmt.Fprintf(w, "\n%-10sint", "address")
	for i, v := range data {
		fmt.Fprintf(w, "\n%-10d%d", i, v)
	}
	fmt.Fprintln(w)
}
