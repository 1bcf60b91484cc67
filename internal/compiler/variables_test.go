package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/jasm/internal/bytecode"
	"gopkg.microglot.org/jasm/internal/instructions"
)

func TestVariablesResolve(t *testing.T) {
	t.Parallel()

	method := &bytecode.MethodModel{Name: "m", Descriptor: "(JI)V"}
	testCases := []struct {
		name string
		uses []instructions.Var
		ops  []bytecode.Opcode
		want []uint16
	}{
		{
			name: "receiver and parameters",
			uses: []instructions.Var{{Name: "this"}, {Name: "n"}, {Name: "i"}},
			ops:  []bytecode.Opcode{bytecode.OpAload, bytecode.OpLload, bytecode.OpIload},
			want: []uint16{0, 1, 3},
		},
		{
			name: "fresh names follow the declared locals",
			uses: []instructions.Var{{Name: "x"}, {Name: "y"}},
			ops:  []bytecode.Opcode{bytecode.OpDstore, bytecode.OpIstore},
			want: []uint16{6, 8},
		},
		{
			name: "slots and synthesized names",
			uses: []instructions.Var{{IsSlot: true, Slot: 9}, {Name: "v7"}, {Name: "fresh"}},
			ops:  []bytecode.Opcode{bytecode.OpIstore, bytecode.OpIload, bytecode.OpAstore},
			want: []uint16{9, 7, 10},
		},
		{
			name: "declared local",
			uses: []instructions.Var{{Name: "tmp"}},
			ops:  []bytecode.Opcode{bytecode.OpIinc},
			want: []uint16{5},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			vars := newVariables("p/A", method, []string{"n", "i"}, []local{{name: "tmp", slot: 5}})
			for x, v := range testCase.uses {
				slot, err := vars.resolve(v, testCase.ops[x])
				require.NoError(t, err)
				require.Equal(t, testCase.want[x], slot, v.Name)
			}
		})
	}
}

func TestVariablesEntries(t *testing.T) {
	t.Parallel()

	method := &bytecode.MethodModel{Access: bytecode.AccStatic, Name: "m", Descriptor: "(I)V"}
	vars := newVariables("p/A", method, []string{"count"}, []local{{name: "unused", slot: 4}})
	_, err := vars.resolve(instructions.Var{Name: "s"}, bytecode.OpAstore)
	require.NoError(t, err)

	entries := vars.entries()
	require.Len(t, entries, 2)
	require.Equal(t, "count", entries[0].name)
	require.Equal(t, "I", entries[0].descriptor)
	require.Equal(t, "s", entries[1].name)
	require.Equal(t, uint16(5), entries[1].slot)
	require.Equal(t, "Ljava/lang/Object;", entries[1].descriptor)
}

func TestParseAnnotationTarget(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		path string
		want annotationTarget
		ok   bool
	}{
		{path: "class", want: annotationTarget{kind: annotateClass}, ok: true},
		{path: "field:count:I", want: annotationTarget{kind: annotateField, name: "count", descriptor: "I"}, ok: true},
		{path: "method:run:()V", want: annotationTarget{kind: annotateMethod, name: "run", descriptor: "()V"}, ok: true},
		{path: "field:count:()V"},
		{path: "method:run:I"},
		{path: "field::I"},
		{path: "type:p/A:x"},
		{path: ""},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.path, func(t *testing.T) {
			t.Parallel()

			got, ok := parseAnnotationTarget(testCase.path)
			require.Equal(t, testCase.ok, ok)
			require.Equal(t, testCase.want, got)
		})
	}
}
