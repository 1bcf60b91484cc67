package target

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/jasm/internal/jasm"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in  string
		out string
	}{
		{in: "a/B.jasm", out: "/a/B.jasm"},
		{in: "/abs/B.jasm", out: "/abs/B.jasm"},
		{in: "file:///x/y.class", out: "/x/y.class"},
		{in: "https://example.com/A.jasm", out: "https://example.com/A.jasm"},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.in, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.out, Normalize(testCase.in))
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	v, err := Parse("")
	require.NoError(t, err)
	require.Equal(t, jasm.TargetJVM, v)
	v, err = Parse("Dalvik")
	require.NoError(t, err)
	require.Equal(t, jasm.TargetDalvik, v)
	_, err = Parse("wasm")
	require.Error(t, err)
}
