package exc

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExceptionError(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		err      Exception
		expected string
	}{
		{
			name:     "located",
			err:      New(Location{URI: "a.jasm", Line: 2, Column: 5, Length: 3}, CodeUnknownInstruction, "unknown instruction bogusop"),
			expected: "a.jasm:2:5 -- J0030: unknown instruction bogusop",
		},
		{
			name:     "global",
			err:      New(Location{}, CodeDeclarationCount, "expected exactly one declaration"),
			expected: "J0043: expected exactly one declaration",
		},
		{
			name:     "file only",
			err:      New(Location{URI: "a.jasm"}, CodeOverlayRequired, "overlay required for non-type declaration"),
			expected: "a.jasm -- J0050: overlay required for non-type declaration",
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.expected, testCase.err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	t.Parallel()

	require.Nil(t, Wrap(Location{}, CodeReadFailure, nil))
	w := Wrap(Location{URI: "x"}, CodeReadFailure, io.ErrUnexpectedEOF)
	require.True(t, errors.Is(w, io.ErrUnexpectedEOF))
	require.Equal(t, CodeReadFailure, w.Code())
	require.True(t, IsFatal(w))
}

func TestIsFatal(t *testing.T) {
	t.Parallel()

	require.False(t, IsFatal(nil))
	require.True(t, IsFatal(io.EOF))
	require.True(t, IsFatal(New(Location{}, CodeUnknownFatal, "boom")))
	require.False(t, IsFatal(New(Location{}, CodeOperandCount, "count")))
	require.False(t, IsFatal(New(Location{}, CodeOverlayRequired, "overlay")))
}

func TestReporter(t *testing.T) {
	t.Parallel()

	r := NewReporter(nil)
	require.Nil(t, r.Report(New(Location{}, CodeUnknownInstruction, "a")))
	require.NotNil(t, r.Report(New(Location{}, CodeUnexpectedToken, "b")))
	r.Warn(New(Location{}, CodeUnusedLabel, "c"))
	require.Len(t, r.Reported(), 2)
	require.Len(t, r.Warnings(), 1)

	r = NewReporter([]string{CodeUnexpectedToken})
	require.Nil(t, r.Report(New(Location{}, CodeUnexpectedToken, "b")))
}

func TestMulti(t *testing.T) {
	t.Parallel()

	m := Multi{
		New(Location{}, CodeOperandCount, "one"),
		New(Location{}, CodeOperandKind, "two"),
	}
	require.Equal(t, "J0031: one\nJ0032: two", m.Error())
}
