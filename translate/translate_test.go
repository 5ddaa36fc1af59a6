package translate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTranslateAppendsTrailingHalt(t *testing.T) {
	tr, err := Translate("x = 1")
	require.NoError(t, err)
	instrs := tr.Instructions()
	require.NotEmpty(t, instrs)
	require.Equal(t, instrs[len(instrs)-1].Op.String(), "HLT")
}

func TestTranslateRejectsUnclosedBlock(t *testing.T) {
	_, err := Translate("if 1 == 1 :\nx = 1")
	require.ErrorIs(t, err, ErrUnclosedBlocks)
}

func TestTranslateRejectsSpuriousBlockEnd(t *testing.T) {
	_, err := Translate(";")
	require.ErrorIs(t, err, ErrSpuriousBlockEnd)
}

func TestTranslateRejectsUnknownStatement(t *testing.T) {
	_, err := Translate("@@@ not a statement")
	require.ErrorIs(t, err, ErrUnknownStatement)
}

func TestTranslateRejectsReservedNameAsVariable(t *testing.T) {
	_, err := Translate("if = 1")
	require.ErrorIs(t, err, ErrReservedName)
}

func TestTranslateRejectsUnknownVariable(t *testing.T) {
	_, err := Translate("> y")
	require.ErrorIs(t, err, ErrUnknownVariable)
}

func TestTranslateRejectsOversizeStringLiteral(t *testing.T) {
	long := "'" + string(make([]byte, 64)) + "'"
	_, err := Translate("x = " + long)
	require.ErrorIs(t, err, ErrStringTooLong)
}

func TestStringVariableReservesSixtyFourWords(t *testing.T) {
	tr, err := Translate("s = 'abc'\nt = 'de'")
	require.NoError(t, err)
	s, err := tr.lookupVariable("s")
	require.NoError(t, err)
	tt, err := tr.lookupVariable("t")
	require.NoError(t, err)
	require.Equal(t, s.Addr+64, tt.Addr)
}

func TestBlockScopedVariableIsDroppedAfterClose(t *testing.T) {
	tr, err := Translate("if 1 == 1 :\ny = 2\n;")
	require.NoError(t, err)
	_, err = tr.lookupVariable("y")
	require.ErrorIs(t, err, ErrUnknownVariable)
}

func TestInputRequiresStringTypedVariable(t *testing.T) {
	_, err := Translate("x = 1\n/in x")
	require.ErrorIs(t, err, ErrTypeMismatch)
}
