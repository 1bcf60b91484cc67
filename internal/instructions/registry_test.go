package instructions

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/jasm/internal/ast"
	"gopkg.microglot.org/jasm/internal/bytecode"
	"gopkg.microglot.org/jasm/internal/exc"
	"gopkg.microglot.org/jasm/internal/jasm"
	"gopkg.microglot.org/jasm/internal/lexer"
	"gopkg.microglot.org/jasm/internal/parser"
)

type recorder struct {
	calls []string
}

func (r *recorder) add(format string, args ...interface{}) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) VisitInsn(op bytecode.Opcode)                   { r.add("%s", op) }
func (r *recorder) VisitIntInsn(op bytecode.Opcode, operand int32) { r.add("%s %d", op, operand) }
func (r *recorder) VisitVarInsn(op bytecode.Opcode, v Var)         { r.add("%s %s", op, v) }
func (r *recorder) VisitIincInsn(v Var, increment int16)           { r.add("iinc %s %d", v, increment) }
func (r *recorder) VisitTypeInsn(op bytecode.Opcode, typ string)   { r.add("%s %s", op, typ) }
func (r *recorder) VisitFieldInsn(op bytecode.Opcode, owner string, name string, desc string) {
	r.add("%s %s.%s %s", op, owner, name, desc)
}
func (r *recorder) VisitMethodInsn(op bytecode.Opcode, owner string, name string, desc string, itf bool) {
	r.add("%s %s.%s %s %t", op, owner, name, desc, itf)
}
func (r *recorder) VisitInvokeDynamicInsn(name string, desc string, bootstrap bytecode.Handle, args []bytecode.Constant) {
	r.add("invokedynamic %s %s %s %s.%s %d", name, desc, bootstrap.KindName(), bootstrap.Owner, bootstrap.Name, len(args))
}
func (r *recorder) VisitJumpInsn(op bytecode.Opcode, label string) { r.add("%s %s", op, label) }
func (r *recorder) VisitLdcInsn(c bytecode.Constant)               { r.add("ldc %T %v", c, c) }
func (r *recorder) VisitTableSwitchInsn(min int32, max int32, dflt string, labels []string) {
	r.add("tableswitch %d %d %s %s", min, max, dflt, strings.Join(labels, ","))
}
func (r *recorder) VisitLookupSwitchInsn(dflt string, keys []int32, labels []string) {
	r.add("lookupswitch %s %v %s", dflt, keys, strings.Join(labels, ","))
}
func (r *recorder) VisitMultiANewArrayInsn(desc string, dimensions uint8) {
	r.add("multianewarray %s %d", desc, dimensions)
}
func (r *recorder) VisitLabel(name string) { r.add("%s:", name) }

func instructions(t *testing.T, code string) []*ast.Instruction {
	t.Helper()
	ctx := context.Background()
	tokens := lexer.Tokenize(ctx, "t.jasm", ".method m ()V { code: {\n"+code+"\n} }")
	require.True(t, tokens.IsOk(), "%v", tokens.Errors())
	nodes := parser.Parse(ctx, "t.jasm", tokens.Get())
	require.True(t, nodes.IsOk(), "%v", nodes.Errors())
	obj := nodes.Get()[0].(*ast.Declaration).Elements[2].(*ast.Object)
	body, _ := obj.Get("code")
	var out []*ast.Instruction
	for _, e := range body.(*ast.Code).Elements {
		if insn, ok := e.(*ast.Instruction); ok {
			out = append(out, insn)
		}
	}
	return out
}

func TestFor(t *testing.T) {
	t.Parallel()

	r, err := For(jasm.TargetJVM)
	require.Nil(t, err)
	require.Equal(t, jasm.TargetJVM, r.Target())
	_, ok := r.Lookup("wide")
	require.False(t, ok)
	_, ok = r.Lookup("invokespecialinterface")
	require.True(t, ok)

	_, err = For(jasm.TargetDalvik)
	require.NotNil(t, err)
	require.Equal(t, exc.CodeUnsupportedTarget, err.Code())
	require.Contains(t, err.Error(), "unsupported target dalvik")
}

func TestOperandCountMismatch(t *testing.T) {
	t.Parallel()

	r, _ := For(jasm.TargetJVM)
	for _, mnemonic := range r.Mnemonics() {
		entry, _ := r.Lookup(mnemonic)
		n := len(entry.Operands)
		counts := []int{n + 1}
		if n > 0 {
			counts = append(counts, n-1)
		}
		for _, count := range counts {
			insn := &ast.Instruction{Mnemonic: &ast.Identifier{Token: &jasm.Token{
				Kind:     jasm.TokenKindIdentifier,
				Content:  mnemonic,
				Location: jasm.Location{URI: "t.jasm", Line: 1, Column: 1, Length: len(mnemonic)},
			}}}
			for x := 0; x < count; x = x + 1 {
				insn.Args = append(insn.Args, &ast.Identifier{Token: &jasm.Token{Kind: jasm.TokenKindIdentifier, Content: "x"}})
			}
			ops, errs := entry.Verify(insn)
			require.Nil(t, ops, mnemonic)
			require.Len(t, errs, 1, mnemonic)
			require.Equal(t, exc.CodeOperandCount, errs[0].Code(), mnemonic)
			require.Equal(t, 1, errs[0].Location().Line)
		}
	}
}

func TestLowering(t *testing.T) {
	t.Parallel()

	source := strings.Join([]string{
		"aload_0",
		"iload n",
		"lstore 4",
		"iinc 1 -3",
		"bipush -128",
		"sipush 1000",
		"newarray int",
		"ldc \"hi\\n\"",
		"ldc2_w 10L",
		"ldc java/lang/String",
		"ldc (I)V",
		"getstatic java/lang/System.out Ljava/io/PrintStream;",
		"invokevirtual java/io/PrintStream.println (Ljava/lang/String;)V",
		"invokeinterface java/util/List.size ()I",
		"invokestaticinterface java/util/List.of ()Ljava/util/List;",
		"anewarray [I",
		"multianewarray [[I 2",
		"goto A",
		"tableswitch { min: 0, max: 1, cases: { A, B }, default: C }",
		"lookupswitch { 5: A, -1: B, default: C }",
		"invokedynamic run ()Ljava/lang/Runnable; { invokestatic, java/lang/invoke/LambdaMetafactory.metafactory, (Ljava/lang/invoke/MethodHandles$Lookup;Ljava/lang/String;Ljava/lang/invoke/MethodType;Ljava/lang/invoke/MethodType;Ljava/lang/invoke/MethodHandle;Ljava/lang/invoke/MethodType;)Ljava/lang/invoke/CallSite; } { ()V, { invokestatic, p/A.lambda, ()V } }",
	}, "\n")
	expected := []string{
		"aload 0",
		"iload n",
		"lstore 4",
		"iinc 1 -3",
		"bipush -128",
		"sipush 1000",
		"newarray 10",
		"ldc bytecode.String hi\n",
		"ldc bytecode.Long 10",
		"ldc bytecode.Type java/lang/String",
		"ldc bytecode.MethodType (I)V",
		"getstatic java/lang/System.out Ljava/io/PrintStream;",
		"invokevirtual java/io/PrintStream.println (Ljava/lang/String;)V false",
		"invokeinterface java/util/List.size ()I true",
		"invokestatic java/util/List.of ()Ljava/util/List; true",
		"anewarray [I",
		"multianewarray [[I 2",
		"goto A",
		"tableswitch 0 1 C A,B",
		"lookupswitch C [5 -1] A,B",
		"invokedynamic run ()Ljava/lang/Runnable; invokestatic java/lang/invoke/LambdaMetafactory.metafactory 2",
	}

	r, _ := For(jasm.TargetJVM)
	rec := &recorder{}
	for _, insn := range instructions(t, source) {
		entry, ok := r.Lookup(insn.Mnemonic.Content())
		require.True(t, ok, insn.Mnemonic.Content())
		ops, errs := entry.Verify(insn)
		require.Empty(t, errs, insn.Mnemonic.Content())
		entry.Lower(ops, rec)
	}
	require.Equal(t, expected, rec.calls)
}

func TestVerifyErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		source string
		codes  []string
	}{
		{name: "float where int expected", source: "bipush 1.5", codes: []string{exc.CodeOperandKind}},
		{name: "byte out of range", source: "bipush 200", codes: []string{exc.CodeInvalidNumber}},
		{name: "bad method descriptor", source: "invokestatic a/B.c (I", codes: []string{exc.CodeInvalidDescriptor}},
		{name: "both operands bad", source: "getfield nodot Q", codes: []string{exc.CodeInvalidValue, exc.CodeInvalidDescriptor}},
		{name: "ldc of long", source: "ldc 1L", codes: []string{exc.CodeOperandKind}},
		{name: "ldc2_w of int", source: "ldc2_w 1", codes: []string{exc.CodeOperandKind}},
		{name: "table size", source: "tableswitch { min: 0, max: 2, cases: { A }, default: A }", codes: []string{exc.CodeInvalidValue}},
		{name: "lookup without default", source: "lookupswitch { 1: A }", codes: []string{exc.CodeMissingOperand}},
		{name: "unknown primitive", source: "newarray string", codes: []string{exc.CodeInvalidValue}},
		{name: "too many dimensions", source: "multianewarray [I 2", codes: []string{exc.CodeInvalidValue}},
		{name: "label must be a name", source: "goto 5", codes: []string{exc.CodeOperandKind}},
	}
	r, _ := For(jasm.TargetJVM)
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			insns := instructions(t, testCase.source)
			require.Len(t, insns, 1)
			entry, ok := r.Lookup(insns[0].Mnemonic.Content())
			require.True(t, ok)
			ops, errs := entry.Verify(insns[0])
			require.Nil(t, ops)
			codes := make([]string, 0, len(errs))
			for _, e := range errs {
				codes = append(codes, e.Code())
				require.True(t, e.Location().IsValid())
			}
			require.Equal(t, testCase.codes, codes)
		})
	}
}

func TestOperandRefs(t *testing.T) {
	t.Parallel()

	insns := instructions(t, "lookupswitch { 1: A, default: B }")
	r, _ := For(jasm.TargetJVM)
	entry, _ := r.Lookup("lookupswitch")
	ops, errs := entry.Verify(insns[0])
	require.Empty(t, errs)
	var names []string
	for _, ref := range ops[0].Refs {
		names = append(names, ref.Content())
	}
	require.Equal(t, []string{"B", "A"}, names)
}
