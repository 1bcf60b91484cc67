package bytecode

import (
	"fmt"
)

// Constant is a loadable constant pool value.
type Constant interface {
	constant()
}

// AnnotationValue is an annotation element value.
type AnnotationValue interface {
	annotationValue()
}

type Int int32
type Long int64
type Float float32
type Double float64
type String string

// Type is a class literal named by internal name or array descriptor.
type Type string

// MethodType is a method descriptor constant.
type MethodType string

func (Int) constant()        {}
func (Long) constant()       {}
func (Float) constant()      {}
func (Double) constant()     {}
func (String) constant()     {}
func (Type) constant()       {}
func (MethodType) constant() {}
func (Handle) constant()     {}

func (Int) annotationValue()    {}
func (Long) annotationValue()   {}
func (Float) annotationValue()  {}
func (Double) annotationValue() {}
func (String) annotationValue() {}

type Bool bool
type Char uint16

// ClassValue is a class literal element value held as a descriptor.
type ClassValue string

type EnumValue struct {
	Type string
	Name string
}

type ArrayValue []AnnotationValue

func (Bool) annotationValue()        {}
func (Char) annotationValue()        {}
func (ClassValue) annotationValue()  {}
func (EnumValue) annotationValue()   {}
func (ArrayValue) annotationValue()  {}
func (*Annotation) annotationValue() {}

type HandleKind uint8

const (
	HandleGetField HandleKind = iota + 1
	HandleGetStatic
	HandlePutField
	HandlePutStatic
	HandleInvokeVirtual
	HandleInvokeStatic
	HandleInvokeSpecial
	HandleNewInvokeSpecial
	HandleInvokeInterface
)

var handleKindNames = map[HandleKind]string{
	HandleGetField:         "getfield",
	HandleGetStatic:        "getstatic",
	HandlePutField:         "putfield",
	HandlePutStatic:        "putstatic",
	HandleInvokeVirtual:    "invokevirtual",
	HandleInvokeStatic:     "invokestatic",
	HandleInvokeSpecial:    "invokespecial",
	HandleNewInvokeSpecial: "newinvokespecial",
	HandleInvokeInterface:  "invokeinterface",
}

func (k HandleKind) String() string {
	if n, ok := handleKindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("handle-%d", k)
}

// HandleKindByName accepts the kind names plus invokestaticinterface and
// invokespecialinterface, which set the interface bit.
func HandleKindByName(name string) (HandleKind, bool, bool) {
	switch name {
	case "invokestaticinterface":
		return HandleInvokeStatic, true, true
	case "invokespecialinterface":
		return HandleInvokeSpecial, true, true
	case "invokeinterface":
		return HandleInvokeInterface, true, true
	}
	for k, n := range handleKindNames {
		if n == name {
			return k, false, true
		}
	}
	return 0, false, false
}

// IsField reports whether the handle refers to a field.
func (k HandleKind) IsField() bool {
	return k >= HandleGetField && k <= HandlePutStatic
}

type Handle struct {
	Kind       HandleKind
	Owner      string
	Name       string
	Descriptor string
	Interface  bool
}

// KindName is the source name of the handle kind, including the interface
// variants of invokestatic and invokespecial.
func (h Handle) KindName() string {
	if h.Interface {
		switch h.Kind {
		case HandleInvokeStatic:
			return "invokestaticinterface"
		case HandleInvokeSpecial:
			return "invokespecialinterface"
		}
	}
	return h.Kind.String()
}

// IsWide reports whether a constant takes two stack words.
func IsWide(c Constant) bool {
	switch c.(type) {
	case Long, Double:
		return true
	}
	return false
}

// ConstantDescriptor is the descriptor of the value pushed by ldc.
func ConstantDescriptor(c Constant) string {
	switch c.(type) {
	case Int:
		return "I"
	case Long:
		return "J"
	case Float:
		return "F"
	case Double:
		return "D"
	case String:
		return "Ljava/lang/String;"
	case Type:
		return "Ljava/lang/Class;"
	case MethodType:
		return "Ljava/lang/invoke/MethodType;"
	case Handle:
		return "Ljava/lang/invoke/MethodHandle;"
	}
	return "Ljava/lang/Object;"
}
