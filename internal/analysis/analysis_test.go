package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/jasm/internal/bytecode"
)

func simple(op bytecode.Opcode) *bytecode.SimpleInsn {
	return &bytecode.SimpleInsn{Op: op}
}

func method(access bytecode.Access, name string, desc string, elements ...bytecode.Element) *bytecode.MethodModel {
	return &bytecode.MethodModel{
		Access:     access,
		Name:       name,
		Descriptor: desc,
		Code:       &bytecode.Code{Elements: elements},
	}
}

type fixedChecker struct {
	common string
	calls  int
}

func (self *fixedChecker) IsSubclassOf(context.Context, string, string) (bool, error) {
	return false, nil
}

func (self *fixedChecker) CommonSuperclass(context.Context, string, string) (string, error) {
	self.calls = self.calls + 1
	return self.common, nil
}

func TestAnalyzeMaxs(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		method *bytecode.MethodModel
		stack  uint16
		locals uint16
	}{
		{
			name:   "return",
			method: method(bytecode.AccStatic, "m", "()V", simple(bytecode.OpReturn)),
		},
		{
			name: "long arithmetic",
			method: method(bytecode.AccStatic, "m", "(JJ)J",
				&bytecode.VarInsn{Op: bytecode.OpLload, Var: 0},
				&bytecode.VarInsn{Op: bytecode.OpLload, Var: 2},
				simple(bytecode.OpLadd),
				simple(bytecode.OpLreturn),
			),
			stack:  4,
			locals: 4,
		},
		{
			name: "dup2 of a long",
			method: method(0, "m", "()V",
				simple(bytecode.OpLconst1),
				simple(bytecode.OpDup2),
				simple(bytecode.OpPop2),
				simple(bytecode.OpPop2),
				simple(bytecode.OpReturn),
			),
			stack:  4,
			locals: 1,
		},
		{
			name: "store beyond parameters",
			method: method(bytecode.AccStatic, "m", "()V",
				simple(bytecode.OpIconst0),
				&bytecode.VarInsn{Op: bytecode.OpIstore, Var: 5},
				simple(bytecode.OpReturn),
			),
			stack:  1,
			locals: 6,
		},
		{
			name: "short forms",
			method: method(bytecode.AccStatic, "m", "()V",
				simple(bytecode.OpDconst1),
				simple(bytecode.OpDstore2),
				simple(bytecode.OpDload2),
				simple(bytecode.OpPop2),
				simple(bytecode.OpReturn),
			),
			stack:  2,
			locals: 4,
		},
		{
			name: "constructor call",
			method: method(0, "m", "()V",
				&bytecode.TypeInsn{Op: bytecode.OpNew, Type: "p/B"},
				simple(bytecode.OpDup),
				&bytecode.MethodInsn{Op: bytecode.OpInvokespecial, Owner: "p/B", Name: "<init>", Descriptor: "()V"},
				simple(bytecode.OpPop),
				simple(bytecode.OpReturn),
			),
			stack:  2,
			locals: 1,
		},
		{
			name: "invocation arguments",
			method: method(bytecode.AccStatic, "m", "(Ljava/lang/String;D)I",
				simple(bytecode.OpAload0),
				&bytecode.VarInsn{Op: bytecode.OpDload, Var: 1},
				&bytecode.MethodInsn{Op: bytecode.OpInvokestatic, Owner: "p/C", Name: "f", Descriptor: "(Ljava/lang/String;D)I"},
				simple(bytecode.OpIreturn),
			),
			stack:  3,
			locals: 3,
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			err := New(nil, false).Analyze(context.Background(), "p/A", testCase.method)
			require.NoError(t, err)
			require.Equal(t, testCase.stack, testCase.method.Code.MaxStack)
			require.Equal(t, testCase.locals, testCase.method.Code.MaxLocals)
			require.Nil(t, testCase.method.Code.Frames)
		})
	}
}

func TestAnalyzeFrames(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	integer := bytecode.VerificationType{Kind: bytecode.VerifyInteger}

	t.Run("branches", func(t *testing.T) {
		t.Parallel()

		otherwise := bytecode.NewLabel("A")
		end := bytecode.NewLabel("B")
		m := method(bytecode.AccStatic, "m", "(I)I",
			simple(bytecode.OpIload0),
			&bytecode.JumpInsn{Op: bytecode.OpIfeq, Target: otherwise},
			simple(bytecode.OpIconst1),
			&bytecode.JumpInsn{Op: bytecode.OpGoto, Target: end},
			otherwise,
			simple(bytecode.OpIconst0),
			end,
			simple(bytecode.OpIreturn),
		)
		require.NoError(t, New(nil, true).Analyze(ctx, "p/A", m))
		require.Equal(t, []bytecode.Frame{
			{Label: otherwise, Locals: []bytecode.VerificationType{integer}, Stack: []bytecode.VerificationType{}},
			{Label: end, Locals: []bytecode.VerificationType{integer}, Stack: []bytecode.VerificationType{integer}},
		}, m.Code.Frames)
		require.Equal(t, uint16(1), m.Code.MaxStack)
		require.Equal(t, uint16(1), m.Code.MaxLocals)
	})

	t.Run("references join through the checker", func(t *testing.T) {
		t.Parallel()

		other := bytecode.NewLabel("A")
		end := bytecode.NewLabel("B")
		m := method(bytecode.AccStatic, "m", "(Z)Ljava/lang/Object;",
			simple(bytecode.OpIload0),
			&bytecode.JumpInsn{Op: bytecode.OpIfeq, Target: other},
			&bytecode.FieldInsn{Op: bytecode.OpGetstatic, Owner: "p/X", Name: "f", Descriptor: "Lp/Left;"},
			&bytecode.JumpInsn{Op: bytecode.OpGoto, Target: end},
			other,
			&bytecode.FieldInsn{Op: bytecode.OpGetstatic, Owner: "p/X", Name: "g", Descriptor: "Lp/Right;"},
			end,
			simple(bytecode.OpAreturn),
		)
		checker := &fixedChecker{common: "p/Base"}
		require.NoError(t, New(checker, true).Analyze(ctx, "p/A", m))
		require.Equal(t, 1, checker.calls)
		require.Len(t, m.Code.Frames, 2)
		require.Equal(t, []bytecode.VerificationType{{Kind: bytecode.VerifyObject, Name: "p/Base"}}, m.Code.Frames[1].Stack)
	})

	t.Run("null joins to the other reference", func(t *testing.T) {
		t.Parallel()

		other := bytecode.NewLabel("A")
		end := bytecode.NewLabel("B")
		m := method(bytecode.AccStatic, "m", "(Z)Ljava/lang/Object;",
			simple(bytecode.OpIload0),
			&bytecode.JumpInsn{Op: bytecode.OpIfeq, Target: other},
			&bytecode.LdcInsn{Constant: bytecode.String("s")},
			&bytecode.JumpInsn{Op: bytecode.OpGoto, Target: end},
			other,
			simple(bytecode.OpAconstNull),
			end,
			simple(bytecode.OpAreturn),
		)
		require.NoError(t, New(nil, true).Analyze(ctx, "p/A", m))
		require.Equal(t, []bytecode.VerificationType{{Kind: bytecode.VerifyObject, Name: "java/lang/String"}}, m.Code.Frames[1].Stack)
	})

	t.Run("handler", func(t *testing.T) {
		t.Parallel()

		start := bytecode.NewLabel("A")
		stop := bytecode.NewLabel("B")
		handler := bytecode.NewLabel("C")
		m := method(0, "m", "()V",
			start,
			simple(bytecode.OpNop),
			stop,
			simple(bytecode.OpReturn),
			handler,
			simple(bytecode.OpPop),
			simple(bytecode.OpReturn),
		)
		m.Code.Handlers = []bytecode.Handler{{Start: start, End: stop, Handler: handler, Type: "java/lang/Exception"}}
		require.NoError(t, New(nil, true).Analyze(ctx, "p/A", m))
		require.Equal(t, []bytecode.Frame{
			{
				Label:  handler,
				Locals: []bytecode.VerificationType{{Kind: bytecode.VerifyObject, Name: "p/A"}},
				Stack:  []bytecode.VerificationType{{Kind: bytecode.VerifyObject, Name: "java/lang/Exception"}},
			},
		}, m.Code.Frames)
	})

	t.Run("uninitialized values", func(t *testing.T) {
		t.Parallel()

		join := bytecode.NewLabel("A")
		m := method(bytecode.AccStatic, "m", "(I)Ljava/lang/Object;",
			&bytecode.TypeInsn{Op: bytecode.OpNew, Type: "p/B"},
			simple(bytecode.OpDup),
			simple(bytecode.OpIload0),
			&bytecode.JumpInsn{Op: bytecode.OpIfeq, Target: join},
			join,
			&bytecode.MethodInsn{Op: bytecode.OpInvokespecial, Owner: "p/B", Name: "<init>", Descriptor: "()V"},
			simple(bytecode.OpAreturn),
		)
		require.NoError(t, New(nil, true).Analyze(ctx, "p/A", m))
		allocation, ok := m.Code.Elements[0].(*bytecode.Label)
		require.True(t, ok)
		uninitialized := bytecode.VerificationType{Kind: bytecode.VerifyUninitialized, Name: "p/B", New: allocation}
		require.Equal(t, []bytecode.Frame{
			{Label: join, Locals: []bytecode.VerificationType{integer}, Stack: []bytecode.VerificationType{uninitialized, uninitialized}},
		}, m.Code.Frames)
	})

	t.Run("constructor receiver", func(t *testing.T) {
		t.Parallel()

		m := method(0, "<init>", "()V",
			simple(bytecode.OpAload0),
			&bytecode.MethodInsn{Op: bytecode.OpInvokespecial, Owner: "java/lang/Object", Name: "<init>", Descriptor: "()V"},
			simple(bytecode.OpReturn),
		)
		require.NoError(t, New(nil, true).Analyze(ctx, "p/A", m))
		require.Empty(t, m.Code.Frames)
		require.Equal(t, uint16(1), m.Code.MaxStack)
	})
}

func TestAnalyzeErrors(t *testing.T) {
	t.Parallel()

	target := bytecode.NewLabel("A")
	testCases := []struct {
		name    string
		method  *bytecode.MethodModel
		message string
	}{
		{
			name:    "underflow",
			method:  method(bytecode.AccStatic, "m", "()V", simple(bytecode.OpPop), simple(bytecode.OpReturn)),
			message: "operand stack underflow",
		},
		{
			name:    "falls off the end",
			method:  method(bytecode.AccStatic, "m", "()V", simple(bytecode.OpNop)),
			message: "falls off the end",
		},
		{
			name: "stack heights",
			method: method(bytecode.AccStatic, "m", "(I)V",
				simple(bytecode.OpIload0),
				simple(bytecode.OpIload0),
				&bytecode.JumpInsn{Op: bytecode.OpIfeq, Target: target},
				simple(bytecode.OpPop),
				target,
				simple(bytecode.OpReturn),
			),
			message: "stack heights differ",
		},
		{
			name:    "subroutine",
			method:  method(bytecode.AccStatic, "m", "()V", &bytecode.JumpInsn{Op: bytecode.OpJsr, Target: target}, target, simple(bytecode.OpReturn)),
			message: "subroutines are not supported",
		},
		{
			name:    "split long",
			method:  method(bytecode.AccStatic, "m", "()V", simple(bytecode.OpLconst0), simple(bytecode.OpPop), simple(bytecode.OpReturn)),
			message: "splits a long or double",
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			err := New(nil, false).Analyze(context.Background(), "p/A", testCase.method)
			require.Error(t, err)
			require.Contains(t, err.Error(), testCase.message)
		})
	}
}

func TestAnalyzeWithoutCode(t *testing.T) {
	t.Parallel()

	m := &bytecode.MethodModel{Access: bytecode.AccAbstract, Name: "m", Descriptor: "()V"}
	require.NoError(t, New(nil, true).Analyze(context.Background(), "p/A", m))
	require.Nil(t, m.Code)
}
