package result

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/jasm/internal/exc"
	"gopkg.microglot.org/jasm/internal/optional"
)

func errAt(code string) exc.Exception {
	return exc.New(exc.Location{}, code, code)
}

func TestOk(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		result   Result[int]
		expected bool
	}{
		{name: "ok", result: Ok(1), expected: true},
		{name: "ok with warning", result: Ok(1, errAt(exc.CodeUnusedLabel)), expected: true},
		{name: "err", result: Err[int](errAt(exc.CodeOperandCount)), expected: false},
		{name: "value with errors", result: New(optional.Some(1), []exc.Exception{errAt(exc.CodeOperandKind)}, nil), expected: false},
		{name: "no value no errors", result: New(optional.None[int](), nil, nil), expected: false},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.expected, testCase.result.IsOk())
			require.Equal(t, testCase.expected, testCase.result.Err() == nil && testCase.result.Value().IsPresent())
		})
	}
}

func TestFlatMap(t *testing.T) {
	t.Parallel()

	called := false
	r := FlatMap(Err[int](errAt(exc.CodeOperandCount)), func(v int) Result[string] {
		called = true
		return Ok("x")
	})
	require.False(t, called)
	require.False(t, r.IsOk())
	require.Len(t, r.Errors(), 1)

	r = FlatMap(Ok(2, errAt(exc.CodeUnusedLabel)), func(v int) Result[string] {
		return Ok("two", errAt(exc.CodeReplacedMember))
	})
	require.True(t, r.IsOk())
	require.Equal(t, "two", r.Get())
	require.Len(t, r.Warnings(), 2)
}

func TestChain(t *testing.T) {
	t.Parallel()

	first := New(optional.Some(1), []exc.Exception{errAt(exc.CodeUnexpectedCharacter)}, nil)
	r := Chain(first, func(v int) Result[int] {
		return New(optional.Some(v+1), []exc.Exception{errAt(exc.CodeUnknownInstruction)}, nil)
	})
	require.False(t, r.IsOk())
	require.Equal(t, 2, r.Get())
	require.Len(t, r.Errors(), 2)
	require.Equal(t, exc.CodeUnexpectedCharacter, r.Errors()[0].Code())

	called := false
	_ = Chain(Err[int](errAt(exc.CodeUnexpectedToken)), func(v int) Result[int] {
		called = true
		return Ok(v)
	})
	require.False(t, called)
}

func TestIfOkIfErr(t *testing.T) {
	t.Parallel()

	var got int
	var errs []exc.Exception
	Ok(3).IfOk(func(v int) { got = v }).IfErr(func(e []exc.Exception) { errs = e })
	require.Equal(t, 3, got)
	require.Nil(t, errs)

	Err[int](errAt(exc.CodeOperandKind)).IfOk(func(v int) { got = 0 }).IfErr(func(e []exc.Exception) { errs = e })
	require.Equal(t, 3, got)
	require.Len(t, errs, 1)
}
