package expr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseArithmeticPushesRightBeforeLeft(t *testing.T) {
	nodes, err := Parse("2 + 3")
	require.NoError(t, err)
	require.Equal(t, []Node{
		{Kind: KindIntConst, Int: 3},
		{Kind: KindIntConst, Int: 2},
		{Kind: KindAdd},
	}, nodes)
}

func TestParsePrecedence(t *testing.T) {
	nodes, err := Parse("2 + 3 * 4")
	require.NoError(t, err)
	require.Equal(t, []Node{
		{Kind: KindIntConst, Int: 4},
		{Kind: KindIntConst, Int: 3},
		{Kind: KindMul},
		{Kind: KindIntConst, Int: 2},
		{Kind: KindAdd},
	}, nodes)
}

func TestParseVarRef(t *testing.T) {
	nodes, err := Parse("x")
	require.NoError(t, err)
	require.Equal(t, []Node{{Kind: KindVarRef, Name: "x"}}, nodes)
}

func TestParseStringLiteralYieldsLength(t *testing.T) {
	nodes, err := Parse("'hi'")
	require.NoError(t, err)
	require.Equal(t, []Node{{Kind: KindStrLenConst, Len: 2}}, nodes)
}

func TestParseUnaryMinus(t *testing.T) {
	nodes, err := Parse("-x")
	require.NoError(t, err)
	require.Equal(t, []Node{{Kind: KindVarRef, Name: "x"}, {Kind: KindUnaryMinus}}, nodes)
}

func TestParseNotIdentifier(t *testing.T) {
	nodes, err := Parse("!x")
	require.NoError(t, err)
	require.Equal(t, []Node{{Kind: KindVarRef, Name: "x"}, {Kind: KindNot}}, nodes)
}

func TestParseNotParenthesized(t *testing.T) {
	nodes, err := Parse("!(x == 1)")
	require.NoError(t, err)
	require.Equal(t, []Node{
		{Kind: KindIntConst, Int: 1},
		{Kind: KindVarRef, Name: "x"},
		{Kind: KindEq},
		{Kind: KindNot},
	}, nodes)
}

func TestParseComparison(t *testing.T) {
	nodes, err := Parse("x >= 1")
	require.NoError(t, err)
	require.Equal(t, []Node{
		{Kind: KindIntConst, Int: 1},
		{Kind: KindVarRef, Name: "x"},
		{Kind: KindGtEq},
	}, nodes)
}

func TestParseLogicalAndOr(t *testing.T) {
	nodes, err := Parse("a && b || c")
	require.NoError(t, err)
	require.Equal(t, []Node{
		{Kind: KindVarRef, Name: "a"},
		{Kind: KindVarRef, Name: "b"},
		{Kind: KindAnd},
		{Kind: KindVarRef, Name: "c"},
		{Kind: KindOr},
	}, nodes)
}

func TestParseParenthesesOverridePrecedence(t *testing.T) {
	nodes, err := Parse("(2 + 3) * 4")
	require.NoError(t, err)
	require.Equal(t, []Node{
		{Kind: KindIntConst, Int: 4},
		{Kind: KindIntConst, Int: 3},
		{Kind: KindIntConst, Int: 2},
		{Kind: KindAdd},
		{Kind: KindMul},
	}, nodes)
}

func TestParseRejectsChainedComparisons(t *testing.T) {
	_, err := Parse("1 < x < 2")
	require.ErrorIs(t, err, ErrParse)
}

func TestParseRejectsChainedComparisonsAcrossDifferentOps(t *testing.T) {
	_, err := Parse("x == 1 == y")
	require.ErrorIs(t, err, ErrParse)
}

func TestParseAllowsParenthesizedComparisonAsOperand(t *testing.T) {
	_, err := Parse("(x < 1) == y")
	require.NoError(t, err)
}

func TestParseUnterminatedString(t *testing.T) {
	_, err := Parse("'abc")
	require.ErrorIs(t, err, ErrParse)
}

func TestParseUnexpectedCharacter(t *testing.T) {
	_, err := Parse("x @ 1")
	require.ErrorIs(t, err, ErrParse)
}

func TestParseMissingClosingParen(t *testing.T) {
	_, err := Parse("(1 + 2")
	require.ErrorIs(t, err, ErrParse)
}
