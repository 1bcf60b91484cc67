package escape

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnescape(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected string
		err      bool
	}{
		{name: "plain", input: "hello", expected: "hello"},
		{name: "controls", input: `a\nb\rc\td\be\ff`, expected: "a\nb\rc\td\be\ff"},
		{name: "quotes", input: `\"\'\\`, expected: `"'\`},
		{name: "unicode", input: `\u0041\u00e9`, expected: "Aé"},
		{name: "surrogate pair", input: `\ud83d\ude00`, expected: "😀"},
		{name: "bad escape", input: `\q`, err: true},
		{name: "short unicode", input: `\u12`, err: true},
		{name: "trailing backslash", input: `abc\`, err: true},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			out, err := Unescape(testCase.input)
			if testCase.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, testCase.expected, out)
		})
	}
}

func TestEscape(t *testing.T) {
	t.Parallel()

	require.Equal(t, `say \"hi\"\n`, Escape("say \"hi\"\n"))
	require.Equal(t, `it's`, Escape("it's"))
	require.Equal(t, `\'`, EscapeChar('\''))
	require.Equal(t, `\u0000`, Escape("\x00"))
	for _, s := range []string{"tab\there", "\\path\\", "é€", "\x01\x7f"} {
		out, err := Unescape(Escape(s))
		require.NoError(t, err)
		require.Equal(t, s, out)
	}
}
