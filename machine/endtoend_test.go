package machine_test

import (
	"testing"

	"gvm/machine"
	"gvm/translate"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, source, input string) string {
	t.Helper()
	tr, err := translate.Translate(source)
	require.NoError(t, err)
	output, _, _, err := machine.Simulate(tr.Instructions(), tr.DataMemory(), input, 0, 0)
	require.NoError(t, err)
	return output
}

func TestEndToEndStringLiteralOutput(t *testing.T) {
	require.Equal(t, "hi", run(t, "> 'hi'", ""))
}

func TestEndToEndArithmeticPrecedence(t *testing.T) {
	require.Equal(t, "14", run(t, "x = 2 + 3 * 4\n> x", ""))
}

func TestEndToEndWhileLoopCountdown(t *testing.T) {
	source := "x = 10\nwhile x > 0 :\n> x\nx = x - 1\n;"
	require.Equal(t, "10987654321", run(t, source, ""))
}

func TestEndToEndIfTrueBranch(t *testing.T) {
	require.Equal(t, "yes", run(t, "if 1 == 1 :\n> 'yes'\n;", ""))
}

func TestEndToEndIfFalseBranchProducesNoOutput(t *testing.T) {
	require.Equal(t, "", run(t, "if 0 == 1 :\n> 'yes'\n;", ""))
}

func TestEndToEndStringInputEchoesUntilNewlineTerminator(t *testing.T) {
	source := "s = 'abc'\n/in s\n> s"
	require.Equal(t, "XY", run(t, source, "XY\n"))
}

func TestEndToEndFlooredModulusOfNegative(t *testing.T) {
	require.Equal(t, "2", run(t, "> -7 % 3", ""))
}

func TestEndToEndDeterministicAcrossRuns(t *testing.T) {
	source := "x = 10\nwhile x > 0 :\n> x\nx = x - 1\n;"
	first := run(t, source, "")
	second := run(t, source, "")
	require.Equal(t, first, second)
}
