package descriptor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var validMethods = []string{
	"()V",
	"(I)V",
	"([Ljava/lang/String;)V",
	"(IJDFZBCS)Ljava/lang/Object;",
	"([[I[Ljava/util/List;)[[Ljava/lang/String;",
	"(Ljava/lang/invoke/MethodHandles$Lookup;Ljava/lang/String;Ljava/lang/invoke/MethodType;)Ljava/lang/invoke/CallSite;",
}

func TestMethodDescriptor(t *testing.T) {
	t.Parallel()

	for _, d := range validMethods {
		d := d
		t.Run(d, func(t *testing.T) {
			t.Parallel()
			require.True(t, IsValidMethodDescriptor(d))
			require.True(t, IsValidDescriptor(d))
			unbalanced := []string{
				strings.Replace(d, ")", "", 1),
				strings.Replace(d, "(", "", 1),
				"(" + d,
			}
			for _, u := range unbalanced {
				require.False(t, IsValidMethodDescriptor(u), u)
			}
		})
	}
}

func TestInvalidDescriptors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "void field", input: "V"},
		{name: "unterminated object", input: "Ljava/lang/String"},
		{name: "dotted object", input: "Ljava.lang.String;"},
		{name: "empty object", input: "L;"},
		{name: "trailing", input: "II"},
		{name: "bare array", input: "[["},
		{name: "unknown code", input: "Q"},
		{name: "void param", input: "(V)V"},
		{name: "missing return", input: "(I)"},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			require.False(t, IsValidDescriptor(testCase.input))
		})
	}
}

func TestFieldDescriptor(t *testing.T) {
	t.Parallel()

	for _, d := range []string{"I", "J", "[I", "Ljava/lang/String;", "[[Ljava/lang/Object;"} {
		require.True(t, IsValidFieldDescriptor(d), d)
	}
}

func TestSlots(t *testing.T) {
	t.Parallel()

	require.Equal(t, 6, ArgumentSlots("(IJLjava/lang/String;D)V", false))
	require.Equal(t, 1, ArgumentSlots("()V", true))
	require.Equal(t, []int{1, 2, 4}, ParameterSlots("(IJLjava/lang/String;)V", true))
	require.Equal(t, 2, Size("D"))
	require.Equal(t, 0, Size("V"))
}

func TestNames(t *testing.T) {
	t.Parallel()

	require.True(t, IsValidInternalName("java/lang/Object"))
	require.True(t, IsValidInternalName("[I"))
	require.False(t, IsValidInternalName("java.lang.Object"))
	require.False(t, IsValidInternalName("java//Object"))
	require.Equal(t, "java/lang/String", InternalName("Ljava/lang/String;"))
	require.Equal(t, "Ljava/lang/String;", FromInternalName("java/lang/String"))
	owner, name, ok := SplitRef("java/io/PrintStream.println")
	require.True(t, ok)
	require.Equal(t, "java/io/PrintStream", owner)
	require.Equal(t, "println", name)
	_, _, ok = SplitRef("println")
	require.False(t, ok)
	p, ok := PrimitiveCode("boolean")
	require.True(t, ok)
	require.Equal(t, "Z", p)
}
