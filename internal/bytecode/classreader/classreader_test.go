package classreader

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/jasm/internal/bytecode"
	"gopkg.microglot.org/jasm/internal/exc"
)

type classWriter struct {
	bytes.Buffer
}

func (w *classWriter) u1(v int) { _ = w.WriteByte(byte(v)) }
func (w *classWriter) u2(v int) { _ = binary.Write(w, binary.BigEndian, uint16(v)) }
func (w *classWriter) u4(v int) { _ = binary.Write(w, binary.BigEndian, uint32(v)) }
func (w *classWriter) utf8(s string) {
	w.u1(1)
	w.u2(len(s))
	_, _ = w.WriteString(s)
}

// minimalClass is public class p/A with one static method m()V whose body
// is the given code.
func minimalClass(code []byte) []byte {
	w := &classWriter{}
	w.u4(0xCAFEBABE)
	w.u2(0)
	w.u2(52)
	w.u2(8)
	w.utf8("p/A")
	w.u1(7)
	w.u2(1)
	w.utf8("java/lang/Object")
	w.u1(7)
	w.u2(3)
	w.utf8("m")
	w.utf8("()V")
	w.utf8("Code")
	w.u2(0x0021)
	w.u2(2)
	w.u2(4)
	w.u2(0)
	w.u2(0)
	w.u2(1)
	w.u2(0x0009)
	w.u2(5)
	w.u2(6)
	w.u2(1)
	w.u2(7)
	w.u4(12 + len(code))
	w.u2(1)
	w.u2(0)
	w.u4(len(code))
	_, _ = w.Write(code)
	w.u2(0)
	w.u2(0)
	w.u2(0)
	return w.Bytes()
}

func TestRead(t *testing.T) {
	t.Parallel()

	// iconst_0; ifeq +4; nop; return
	r := Read("/p/A.class", minimalClass([]byte{0x03, 0x99, 0x00, 0x04, 0x00, 0xB1}))
	require.True(t, r.IsOk(), "%v", r.Errors())
	model := r.Get()
	require.Equal(t, "p/A", model.Name)
	require.Equal(t, "java/lang/Object", model.Super)
	require.Equal(t, uint16(52), model.Version)
	require.Equal(t, bytecode.AccPublic|bytecode.AccSuper, model.Access)
	require.Len(t, model.Methods, 1)

	m := model.Methods[0]
	require.Equal(t, "m", m.Name)
	require.Equal(t, "()V", m.Descriptor)
	require.Equal(t, bytecode.AccPublic|bytecode.AccStatic, m.Access)
	require.NotNil(t, m.Code)
	require.Equal(t, uint16(1), m.Code.MaxStack)
	require.Len(t, m.Code.Elements, 5)
	jump, ok := m.Code.Elements[1].(*bytecode.JumpInsn)
	require.True(t, ok)
	require.Equal(t, bytecode.OpIfeq, jump.Op)
	require.Same(t, jump.Target, m.Code.Elements[3])
	require.Equal(t, &bytecode.SimpleInsn{Op: bytecode.OpReturn}, m.Code.Elements[4])
}

// attributedClass is p/A with an inner class, a nest host, an annotation,
// a double constant field and a method with a handler, a local variable
// and a named parameter.
func attributedClass() []byte {
	w := &classWriter{}
	w.u4(0xCAFEBABE)
	w.u2(0)
	w.u2(61)
	w.u2(28)
	w.utf8("p/A")
	w.u1(7)
	w.u2(1)
	w.utf8("java/lang/Object")
	w.u1(7)
	w.u2(3)
	w.utf8("p/A$In")
	w.u1(7)
	w.u2(5)
	w.utf8("In")
	w.utf8("p/H")
	w.u1(7)
	w.u2(8)
	w.utf8("InnerClasses")
	w.utf8("NestHost")
	w.utf8("RuntimeVisibleAnnotations")
	w.utf8("d")
	w.utf8("D")
	w.utf8("ConstantValue")
	bits := math.Float64bits(1.5)
	w.u1(6)
	w.u4(int(bits >> 32))
	w.u4(int(bits & 0xFFFFFFFF))
	w.utf8("m")
	w.utf8("(I)V")
	w.utf8("Code")
	w.utf8("MethodParameters")
	w.utf8("LocalVariableTable")
	w.utf8("x")
	w.utf8("I")
	w.utf8("java/lang/Exception")
	w.u1(7)
	w.u2(25)
	w.utf8("Lp/M;")

	w.u2(0x0021)
	w.u2(2)
	w.u2(4)
	w.u2(0)

	w.u2(1)
	w.u2(0x0018)
	w.u2(13)
	w.u2(14)
	w.u2(1)
	w.u2(15)
	w.u4(2)
	w.u2(16)

	w.u2(1)
	w.u2(0x0009)
	w.u2(18)
	w.u2(19)
	w.u2(2)
	// nop; return, with a handler over the nop and x live throughout
	w.u2(20)
	w.u4(40)
	w.u2(1)
	w.u2(2)
	w.u4(2)
	w.u1(0x00)
	w.u1(0xB1)
	w.u2(1)
	w.u2(0)
	w.u2(1)
	w.u2(1)
	w.u2(26)
	w.u2(1)
	w.u2(22)
	w.u4(12)
	w.u2(1)
	w.u2(0)
	w.u2(2)
	w.u2(23)
	w.u2(24)
	w.u2(1)
	w.u2(21)
	w.u4(5)
	w.u1(1)
	w.u2(23)
	w.u2(0)

	w.u2(3)
	w.u2(10)
	w.u4(10)
	w.u2(1)
	w.u2(6)
	w.u2(2)
	w.u2(7)
	w.u2(0x0009)
	w.u2(11)
	w.u4(2)
	w.u2(9)
	w.u2(12)
	w.u4(6)
	w.u2(1)
	w.u2(27)
	w.u2(0)
	return w.Bytes()
}

func TestReadAttributes(t *testing.T) {
	t.Parallel()

	r := Read("/p/A.class", attributedClass())
	require.True(t, r.IsOk(), "%v", r.Errors())
	model := r.Get()
	require.Equal(t, []bytecode.InnerClass{{Name: "p/A$In", Outer: "p/A", InnerName: "In", Access: bytecode.AccPublic | bytecode.AccStatic}}, model.InnerClasses)
	require.Equal(t, "p/H", model.NestHost)

	require.Len(t, r.Warnings(), 1)
	require.Equal(t, exc.CodeSkippedAttribute, r.Warnings()[0].Code())
	require.Contains(t, r.Warnings()[0].Error(), "RuntimeVisibleAnnotations")

	require.Len(t, model.Fields, 1)
	require.Equal(t, bytecode.AccStatic|bytecode.AccFinal, model.Fields[0].Access)
	require.Equal(t, bytecode.Double(1.5), model.Fields[0].Value)

	require.Len(t, model.Methods, 1)
	m := model.Methods[0]
	require.Equal(t, []string{"x"}, m.ParameterNames)
	require.NotNil(t, m.Code)
	require.Equal(t, uint16(2), m.Code.MaxLocals)
	require.Len(t, m.Code.Elements, 5)
	start, ok := m.Code.Elements[0].(*bytecode.Label)
	require.True(t, ok)
	handler, ok := m.Code.Elements[2].(*bytecode.Label)
	require.True(t, ok)
	end, ok := m.Code.Elements[4].(*bytecode.Label)
	require.True(t, ok)

	require.Equal(t, []bytecode.Handler{{Start: start, End: handler, Handler: handler, Type: "java/lang/Exception"}}, m.Code.Handlers)
	require.Equal(t, []bytecode.LocalVariable{{Name: "x", Descriptor: "I", Start: start, End: end, Index: 1}}, m.Code.Locals)
}

func TestReadTruncatedAttribute(t *testing.T) {
	t.Parallel()

	data := attributedClass()
	// The NestHost attribute claims a body longer than the file.
	at := bytes.Index(data, []byte{0x00, 0x0B, 0x00, 0x00, 0x00, 0x02, 0x00, 0x09})
	require.Greater(t, at, 0)
	_, err := scan(append(append([]byte{}, data[:at+5]...), 0xFF))
	require.Error(t, err)
}

func TestReadRejects(t *testing.T) {
	t.Parallel()

	r := Read("/x.class", []byte("JIMG"))
	require.False(t, r.IsOk())
	require.Equal(t, exc.CodeUnsupportedFileFormat, r.Errors()[0].Code())
	require.False(t, IsClass(nil))
	require.True(t, IsClass(Magic))
}

func TestLoad(t *testing.T) {
	t.Parallel()

	image, err := bytecode.MarshalImage(&bytecode.ClassModel{Version: 61, Name: "p/B", Super: "java/lang/Object"})
	require.NoError(t, err)

	testCases := []struct {
		name string
		data []byte
		want string
		code string
	}{
		{name: "class file", data: minimalClass([]byte{0xB1}), want: "p/A"},
		{name: "member image", data: image, want: "p/B"},
		{name: "unknown format", data: []byte("plain text"), code: exc.CodeUnsupportedFileFormat},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			r := Load("/in", testCase.data)
			if testCase.code != "" {
				require.False(t, r.IsOk())
				require.Equal(t, testCase.code, r.Errors()[0].Code())
				return
			}
			require.True(t, r.IsOk(), "%v", r.Errors())
			require.Equal(t, testCase.want, r.Get().Name)
		})
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		code     []byte
		elements func(labels []*bytecode.Label) []bytecode.Element
		labels   int
	}{
		{
			name: "short var forms expand",
			code: []byte{0x1B, 0x4D, 0xB1},
			elements: func([]*bytecode.Label) []bytecode.Element {
				return []bytecode.Element{
					&bytecode.VarInsn{Op: bytecode.OpIload, Var: 1},
					&bytecode.VarInsn{Op: bytecode.OpAstore, Var: 2},
					&bytecode.SimpleInsn{Op: bytecode.OpReturn},
				}
			},
		},
		{
			name: "wide",
			code: []byte{0xC4, 0x84, 0x01, 0x00, 0xFF, 0xFE, 0xC4, 0x15, 0x01, 0x00, 0xB1},
			elements: func([]*bytecode.Label) []bytecode.Element {
				return []bytecode.Element{
					&bytecode.IincInsn{Var: 256, Increment: -2},
					&bytecode.VarInsn{Op: bytecode.OpIload, Var: 256},
					&bytecode.SimpleInsn{Op: bytecode.OpReturn},
				}
			},
		},
		{
			name: "push",
			code: []byte{0x10, 0xFF, 0x11, 0x80, 0x00, 0xBC, 0x0A, 0xB1},
			elements: func([]*bytecode.Label) []bytecode.Element {
				return []bytecode.Element{
					&bytecode.IntInsn{Op: bytecode.OpBipush, Operand: -1},
					&bytecode.IntInsn{Op: bytecode.OpSipush, Operand: -32768},
					&bytecode.IntInsn{Op: bytecode.OpNewarray, Operand: 10},
					&bytecode.SimpleInsn{Op: bytecode.OpReturn},
				}
			},
		},
		{
			// iconst_0 at 0, tableswitch at 1 padded to 4, two cases
			name: "tableswitch",
			code: []byte{
				0x03, 0xAA, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x17,
				0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x01,
				0x00, 0x00, 0x00, 0x17,
				0x00, 0x00, 0x00, 0x18,
				0xB1, 0xB1,
			},
			labels: 2,
			elements: func(l []*bytecode.Label) []bytecode.Element {
				return []bytecode.Element{
					&bytecode.SimpleInsn{Op: bytecode.OpIconst0},
					&bytecode.TableSwitchInsn{Min: 0, Max: 1, Default: l[0], Targets: []*bytecode.Label{l[0], l[1]}},
					l[0],
					&bytecode.SimpleInsn{Op: bytecode.OpReturn},
					l[1],
					&bytecode.SimpleInsn{Op: bytecode.OpReturn},
				}
			},
		},
		{
			name:   "goto_w backwards",
			code:   []byte{0x00, 0xC8, 0xFF, 0xFF, 0xFF, 0xFF},
			labels: 1,
			elements: func(l []*bytecode.Label) []bytecode.Element {
				return []bytecode.Element{
					l[0],
					&bytecode.SimpleInsn{Op: bytecode.OpNop},
					&bytecode.JumpInsn{Op: bytecode.OpGotoW, Target: l[0]},
				}
			},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			code, err := (&reader{}).code(testCase.code, nil)
			require.NoError(t, err)
			var labels []*bytecode.Label
			for _, e := range code.Elements {
				if l, ok := e.(*bytecode.Label); ok {
					labels = append(labels, l)
				}
			}
			require.Len(t, labels, testCase.labels)
			require.Equal(t, testCase.elements(labels), code.Elements)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		code []byte
	}{
		{name: "truncated", code: []byte{0x11, 0x00}},
		{name: "target inside an instruction", code: []byte{0xA7, 0x00, 0x01}},
		{name: "invalid opcode", code: []byte{0xFE}},
		{name: "wide on a non variable instruction", code: []byte{0xC4, 0x00, 0x00, 0x00}},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			_, err := (&reader{}).code(testCase.code, nil)
			require.Error(t, err)
		})
	}
}
