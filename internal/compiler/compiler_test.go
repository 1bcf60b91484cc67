package compiler

import (
	"context"
	"io"
	iofs "io/fs"
	"testing"
	"testing/fstest"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/jasm/internal/bytecode"
	"gopkg.microglot.org/jasm/internal/exc"
	"gopkg.microglot.org/jasm/internal/fs"
	"gopkg.microglot.org/jasm/internal/inheritance"
	"gopkg.microglot.org/jasm/internal/jasm"
)

func newCompiler(t *testing.T, opts ...Option) *Compiler {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	c, err := New(append([]Option{OptionWithLogger(logger), OptionWithDumpWriter(io.Discard)}, opts...)...)
	require.NoError(t, err)
	return c
}

func codes(es []exc.Exception) []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Code())
	}
	return out
}

func instructionsOf(code *bytecode.Code) []bytecode.Instruction {
	var out []bytecode.Instruction
	for _, e := range code.Elements {
		if insn, ok := e.(bytecode.Instruction); ok {
			out = append(out, insn)
		}
	}
	return out
}

func overlay() *bytecode.ClassModel {
	return &bytecode.ClassModel{
		Version: 52,
		Name:    "p/O",
		Super:   inheritance.Object,
		Fields:  []*bytecode.FieldModel{{Access: bytecode.AccPrivate, Name: "F", Descriptor: "I"}},
		Methods: []*bytecode.MethodModel{{Access: bytecode.AccPublic | bytecode.AccAbstract, Name: "m", Descriptor: "()V"}},
	}
}

func TestAssembleMain(t *testing.T) {
	t.Parallel()

	r := newCompiler(t).Assemble(context.Background(), "t.jasm", ".method public static main ([Ljava/lang/String;)V { code: { return } }")
	require.True(t, r.IsOk(), "%v", r.Errors())
	require.Empty(t, r.Errors())
	model := r.Get()
	require.Len(t, model.Methods, 1)
	m := model.Methods[0]
	require.Equal(t, "main", m.Name)
	require.Equal(t, bytecode.AccPublic|bytecode.AccStatic, m.Access)
	require.Equal(t, []bytecode.Element{&bytecode.SimpleInsn{Op: bytecode.OpReturn}}, m.Code.Elements)
	require.Equal(t, uint16(0), m.Code.MaxStack)
	require.Equal(t, uint16(1), m.Code.MaxLocals)
	require.Equal(t, bytecode.DefaultVersion, model.Version)
}

func TestAssembleUnknownInstruction(t *testing.T) {
	t.Parallel()

	r := newCompiler(t).Assemble(context.Background(), "t.jasm", ".method public static main (I)V { code: { bogusop } }")
	require.False(t, r.IsOk())
	require.Len(t, r.Errors(), 1)
	e := r.Errors()[0]
	require.Equal(t, exc.CodeUnknownInstruction, e.Code())
	require.Equal(t, 1, e.Location().Line)
	require.Equal(t, 43, e.Location().Column)
}

func TestAssembleClass(t *testing.T) {
	t.Parallel()

	source := `
.class public p/A {
	.method public <init> ()V {
		code: {
			aload this
			invokespecial java/lang/Object.<init> ()V
			return
		}
	}
	.method public static add (II)I {
		parameters: { a, b },
		code: {
			iload a
			iload b
			iadd
			istore sum
			iload sum
			ireturn
		}
	}
}`
	r := newCompiler(t).Assemble(context.Background(), "t.jasm", source)
	require.True(t, r.IsOk(), "%v", r.Errors())
	model := r.Get()
	require.Equal(t, "p/A", model.Name)
	require.Equal(t, inheritance.Object, model.Super)
	require.Len(t, model.Methods, 2)

	init := model.Methods[0]
	require.Equal(t, []bytecode.Instruction{
		&bytecode.VarInsn{Op: bytecode.OpAload, Var: 0},
		&bytecode.MethodInsn{Op: bytecode.OpInvokespecial, Owner: inheritance.Object, Name: "<init>", Descriptor: "()V"},
		&bytecode.SimpleInsn{Op: bytecode.OpReturn},
	}, instructionsOf(init.Code))
	require.Len(t, init.Code.Locals, 1)
	require.Equal(t, "this", init.Code.Locals[0].Name)
	require.Equal(t, "Lp/A;", init.Code.Locals[0].Descriptor)
	require.Equal(t, uint16(1), init.Code.MaxStack)
	require.Equal(t, uint16(1), init.Code.MaxLocals)

	add := model.Methods[1]
	require.Equal(t, []string{"a", "b"}, add.ParameterNames)
	require.Equal(t, []bytecode.Instruction{
		&bytecode.VarInsn{Op: bytecode.OpIload, Var: 0},
		&bytecode.VarInsn{Op: bytecode.OpIload, Var: 1},
		&bytecode.SimpleInsn{Op: bytecode.OpIadd},
		&bytecode.VarInsn{Op: bytecode.OpIstore, Var: 2},
		&bytecode.VarInsn{Op: bytecode.OpIload, Var: 2},
		&bytecode.SimpleInsn{Op: bytecode.OpIreturn},
	}, instructionsOf(add.Code))
	names := make([]string, 0, len(add.Code.Locals))
	for _, l := range add.Code.Locals {
		require.Equal(t, "I", l.Descriptor)
		names = append(names, l.Name)
	}
	require.Equal(t, []string{"a", "b", "sum"}, names)
	require.Equal(t, uint16(2), add.Code.MaxStack)
	require.Equal(t, uint16(3), add.Code.MaxLocals)
}

func TestAssembleConfiguration(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		source string
		opts   []Option
		codes  []string
	}{
		{
			name:   "field without overlay",
			source: ".field public static X I",
			codes:  []string{exc.CodeOverlayRequired},
		},
		{
			name:   "annotation without target",
			source: ".annotation Lp/Marker; {}",
			opts:   []Option{OptionWithOverlay(overlay())},
			codes:  []string{exc.CodeAnnotationTargetRequired},
		},
		{
			name:   "annotation without overlay or target",
			source: ".annotation Lp/Marker; {}",
			codes:  []string{exc.CodeOverlayRequired, exc.CodeAnnotationTargetRequired},
		},
		{
			name:   "malformed annotation target",
			source: ".annotation Lp/Marker; {}",
			opts:   []Option{OptionWithOverlay(overlay()), OptionWithAnnotationTarget("field:F")},
			codes:  []string{exc.CodeInvalidAnnotationTarget},
		},
		{
			name:   "missing annotation target member",
			source: ".annotation Lp/Marker; {}",
			opts:   []Option{OptionWithOverlay(overlay()), OptionWithAnnotationTarget("method:x:()V")},
			codes:  []string{exc.CodeInvalidAnnotationTarget},
		},
		{
			name:   "frames without checker",
			source: ".method static m ()V { code: { return } }",
			opts:   []Option{OptionWithFrames(true)},
			codes:  []string{exc.CodeCheckerRequired},
		},
		{
			name:   "code falls off the end",
			source: ".method static m ()V { code: { nop } }",
			codes:  []string{exc.CodeInvalidFlow},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			r := newCompiler(t, testCase.opts...).Assemble(context.Background(), "t.jasm", testCase.source)
			require.False(t, r.IsOk())
			require.Equal(t, testCase.codes, codes(r.Errors()))
		})
	}
}

func TestAssembleOverlay(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := overlay()

	t.Run("method replaces the overlay's method", func(t *testing.T) {
		t.Parallel()

		c := newCompiler(t, OptionWithOverlay(base))
		r := c.Assemble(ctx, "t.jasm", ".method public m ()V { code: { return } }")
		require.True(t, r.IsOk(), "%v", r.Errors())
		require.Equal(t, []string{exc.CodeReplacedMember}, codes(r.Warnings()))
		model := r.Get()
		require.Equal(t, "p/O", model.Name)
		require.Equal(t, uint16(52), model.Version)
		require.Len(t, model.Methods, 1)
		require.NotNil(t, model.Methods[0].Code)
		require.Nil(t, base.Methods[0].Code)
	})

	t.Run("field is added", func(t *testing.T) {
		t.Parallel()

		c := newCompiler(t, OptionWithOverlay(base), OptionWithVersion(61))
		r := c.Assemble(ctx, "t.jasm", ".field public static final G J { value: 7 }")
		require.True(t, r.IsOk(), "%v", r.Errors())
		require.Empty(t, r.Warnings())
		model := r.Get()
		require.Equal(t, uint16(61), model.Version)
		require.Len(t, model.Fields, 2)
		require.Equal(t, bytecode.Long(7), model.Fields[1].Value)
		require.Len(t, base.Fields, 1)
	})

	t.Run("annotation on a field", func(t *testing.T) {
		t.Parallel()

		c := newCompiler(t, OptionWithOverlay(base), OptionWithAnnotationTarget("field:F:I"))
		r := c.Assemble(ctx, "t.jasm", ".annotation Lp/Marker; {}")
		require.True(t, r.IsOk(), "%v", r.Errors())
		f, _ := r.Get().Field("F", "I")
		require.Len(t, f.Annotations, 1)
		require.Equal(t, "Lp/Marker;", f.Annotations[0].Type)
		require.Empty(t, base.Fields[0].Annotations)
	})

	t.Run("annotation on the class", func(t *testing.T) {
		t.Parallel()

		c := newCompiler(t, OptionWithOverlay(base), OptionWithAnnotationTarget("class"))
		r := c.Assemble(ctx, "t.jasm", ".invisible-annotation Lp/Marker; {}")
		require.True(t, r.IsOk(), "%v", r.Errors())
		require.Len(t, r.Get().Annotations, 1)
		require.False(t, r.Get().Annotations[0].Visible)
	})
}

func TestAssembleFrames(t *testing.T) {
	t.Parallel()

	source := `.method static m (I)I {
	code: {
		iload 0
		ifeq Zero
		iconst_1
		ireturn
		Zero:
		iconst_0
		ireturn
	}
}`
	c := newCompiler(t, OptionWithFrames(true), OptionWithInheritanceChecker(inheritance.Noop{}))
	r := c.Assemble(context.Background(), "t.jasm", source)
	require.True(t, r.IsOk(), "%v", r.Errors())
	code := r.Get().Methods[0].Code
	require.Len(t, code.Frames, 1)
	require.Equal(t, "Zero", code.Frames[0].Label.Name)
	require.Equal(t, []bytecode.VerificationType{{Kind: bytecode.VerifyInteger}}, code.Frames[0].Locals)
}

func TestCompile(t *testing.T) {
	t.Parallel()

	mem := fstest.MapFS{
		"src/A.jasm":  &fstest.MapFile{Data: []byte(".method public static main ([Ljava/lang/String;)V { code: { return } }")},
		"src/B.class": &fstest.MapFile{Data: []byte{0xCA, 0xFE, 0xBA, 0xBE}},
	}
	local, err := fs.NewFileSystemLocal("/", fs.WithOptionFSFactory(func(string) iofs.FS { return mem }))
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("sources and files", func(t *testing.T) {
		t.Parallel()

		reporter := exc.NewReporter(nil)
		c := newCompiler(t, OptionWithFS(local), OptionWithExcReporter(reporter), OptionWithMaxConcurrency(2))
		resp, err := c.Compile(ctx, &jasm.CompileRequest{
			Files: []string{"/src/A.jasm"},
			Sources: []jasm.Source{
				{Name: "bad.jasm", Text: ".method static m ()V { code: { bogusop } }"},
			},
		})
		require.Error(t, err)
		require.Len(t, err.(exc.Multi), 1)
		require.Equal(t, []string{exc.CodeUnknownInstruction}, codes(reporter.Reported()))
		require.Len(t, resp.Units, 2)
		require.Equal(t, "bad.jasm", resp.Units[0].Name)
		require.Nil(t, resp.Units[0].Output)
		require.Equal(t, "/src/A.jasm", resp.Units[1].Name)
		model, err := bytecode.UnmarshalImage(resp.Units[1].Output)
		require.NoError(t, err)
		require.Len(t, model.Methods, 1)
		require.Equal(t, "main", model.Methods[0].Name)
	})

	t.Run("class files cannot be assembled", func(t *testing.T) {
		t.Parallel()

		c := newCompiler(t, OptionWithFS(local))
		resp, err := c.Compile(ctx, &jasm.CompileRequest{Files: []string{"/src/B.class"}})
		require.Nil(t, resp)
		require.Error(t, err)
		require.Equal(t, exc.CodeUnsupportedFileFormat, err.(exc.Exception).Code())
	})

	t.Run("dalvik is not supported", func(t *testing.T) {
		t.Parallel()

		reporter := exc.NewReporter(nil)
		c := newCompiler(t, OptionWithFS(local), OptionWithExcReporter(reporter), OptionWithTarget(jasm.TargetDalvik))
		resp, err := c.Compile(ctx, &jasm.CompileRequest{Files: []string{"/src/A.jasm"}})
		require.Error(t, err)
		require.Contains(t, err.Error(), "unsupported target dalvik")
		require.Len(t, resp.Units, 1)
		require.Nil(t, resp.Units[0].Output)
	})
}

func TestNewRejectsOptions(t *testing.T) {
	t.Parallel()

	_, err := New(OptionWithMaxConcurrency(-1))
	require.Error(t, err)
	_, err = New(OptionWithVersion(12))
	require.Error(t, err)
}
