package ast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/jasm/internal/jasm"
)

func tok(kind jasm.TokenKind, content string, line int, col int) *jasm.Token {
	return &jasm.Token{
		Kind:     kind,
		Content:  content,
		Location: jasm.Location{URI: "t.jasm", Line: line, Column: col, Length: len(content)},
	}
}

func TestParseNumber(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected NumberValue
		err      bool
	}{
		{input: "0", expected: NumberValue{Kind: NumberInt, Int: 0}},
		{input: "-12", expected: NumberValue{Kind: NumberInt, Int: -12}},
		{input: "2147483647", expected: NumberValue{Kind: NumberInt, Int: math.MaxInt32}},
		{input: "2147483648", err: true},
		{input: "0x10", expected: NumberValue{Kind: NumberInt, Int: 16}},
		{input: "0xFFFFFFFF", expected: NumberValue{Kind: NumberInt, Int: -1}},
		{input: "0xFFL", expected: NumberValue{Kind: NumberLong, Int: 255}},
		{input: "9223372036854775807L", expected: NumberValue{Kind: NumberLong, Int: math.MaxInt64}},
		{input: "5l", expected: NumberValue{Kind: NumberLong, Int: 5}},
		{input: "1.5", expected: NumberValue{Kind: NumberDouble, Float: 1.5}},
		{input: "1.5f", expected: NumberValue{Kind: NumberFloat, Float: 1.5}},
		{input: "2F", expected: NumberValue{Kind: NumberFloat, Float: 2}},
		{input: "3d", expected: NumberValue{Kind: NumberDouble, Float: 3}},
		{input: "1e3", expected: NumberValue{Kind: NumberDouble, Float: 1000}},
		{input: "-Infinity", expected: NumberValue{Kind: NumberDouble, Float: math.Inf(-1)}},
		{input: "Infinityf", expected: NumberValue{Kind: NumberFloat, Float: math.Inf(1)}},
		{input: "12x", err: true},
		{input: "0xZZ", err: true},
		{input: "-", err: true},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.input, func(t *testing.T) {
			t.Parallel()
			v, err := ParseNumber(testCase.input)
			if testCase.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, testCase.expected, v)
		})
	}

	nan, err := ParseNumber("NaN")
	require.NoError(t, err)
	require.True(t, math.IsNaN(nan.Float))
	require.False(t, nan.IsIntegral())
}

func TestLiterals(t *testing.T) {
	t.Parallel()

	s := &String{Token: tok(jasm.TokenKindString, `a\tb`, 1, 1)}
	v, err := s.Value()
	require.NoError(t, err)
	require.Equal(t, "a\tb", v)

	c := &Character{Token: tok(jasm.TokenKindCharacter, `\n`, 1, 1)}
	r, err := c.Value()
	require.NoError(t, err)
	require.Equal(t, '\n', r)

	c = &Character{Token: tok(jasm.TokenKindCharacter, `ab`, 1, 1)}
	_, err = c.Value()
	require.Error(t, err)

	require.True(t, (&Bool{Token: tok(jasm.TokenKindIdentifier, "true", 1, 1)}).Value())
}

func TestLocationFallback(t *testing.T) {
	t.Parallel()

	inner := &Identifier{Token: tok(jasm.TokenKindIdentifier, "x", 3, 7)}
	arr := &Array{Values: []Node{&Empty{}, inner}}
	require.Equal(t, 3, arr.Location().Line)
	require.Equal(t, 7, arr.Location().Column)

	obj := &Object{Entries: []*Entry{{Key: inner, Value: &Empty{}}}}
	require.Equal(t, inner.Location(), obj.Location())
	got, ok := obj.Get("x")
	require.True(t, ok)
	require.Equal(t, KindEmpty, got.Kind())
	_, ok = obj.Get("y")
	require.False(t, ok)

	insn := &Instruction{Mnemonic: &Identifier{Token: tok(jasm.TokenKindIdentifier, "return", 2, 3)}}
	require.Equal(t, 2, insn.Location().Line)
	require.False(t, (&Declaration{}).Location().IsValid())

	l := &Label{Name: &Identifier{Token: tok(jasm.TokenKindIdentifier, "A", 4, 1)}}
	require.Equal(t, "A:", l.String())
}

func TestWalk(t *testing.T) {
	t.Parallel()

	code := &Code{Elements: []Node{
		&Label{Name: &Identifier{Token: tok(jasm.TokenKindIdentifier, "A", 1, 1)}},
		&Instruction{
			Mnemonic: &Identifier{Token: tok(jasm.TokenKindIdentifier, "goto", 2, 1)},
			Args:     []Node{&Identifier{Token: tok(jasm.TokenKindIdentifier, "A", 2, 6)}},
		},
	}}
	var kinds []Kind
	Walk(code, func(n Node) bool {
		kinds = append(kinds, n.Kind())
		return true
	})
	require.Equal(t, []Kind{KindCode, KindLabel, KindIdentifier, KindInstruction, KindIdentifier, KindIdentifier}, kinds)

	kinds = nil
	Walk(code, func(n Node) bool {
		kinds = append(kinds, n.Kind())
		return n.Kind() == KindCode
	})
	require.Equal(t, []Kind{KindCode, KindLabel, KindInstruction}, kinds)
}
