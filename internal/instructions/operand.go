package instructions

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.microglot.org/jasm/internal/ast"
	"gopkg.microglot.org/jasm/internal/bytecode"
	"gopkg.microglot.org/jasm/internal/descriptor"
	"gopkg.microglot.org/jasm/internal/exc"
)

// OperandKind is the shape one operand must have.
type OperandKind uint8

const (
	KindByte OperandKind = iota
	KindShort
	KindIncrement
	KindDimensions
	KindVar
	KindLabel
	KindType
	KindArrayType
	KindPrimitive
	KindFieldRef
	KindMethodRef
	KindFieldDescriptor
	KindMethodDescriptor
	KindConstant
	KindName
	KindHandle
	KindArguments
	KindTableSwitch
	KindLookupSwitch
)

var operandKindNames = map[OperandKind]string{
	KindByte:             "byte",
	KindShort:            "short",
	KindIncrement:        "increment",
	KindDimensions:       "dimensions",
	KindVar:              "variable",
	KindLabel:            "label",
	KindType:             "type",
	KindArrayType:        "array type",
	KindPrimitive:        "primitive type",
	KindFieldRef:         "field reference",
	KindMethodRef:        "method reference",
	KindFieldDescriptor:  "field descriptor",
	KindMethodDescriptor: "method descriptor",
	KindConstant:         "constant",
	KindName:             "name",
	KindHandle:           "method handle",
	KindArguments:        "bootstrap arguments",
	KindTableSwitch:      "tableswitch table",
	KindLookupSwitch:     "lookupswitch table",
}

func (k OperandKind) String() string {
	if n, ok := operandKindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("operand-%d", k)
}

// Var is a variable operand as written. Slot is meaningful when IsSlot is
// set, which happens for numeric literals. Names, including the v<slot>
// form, are resolved by the consumer.
type Var struct {
	Name   string
	Slot   uint16
	IsSlot bool
}

func (v Var) String() string {
	if v.IsSlot {
		return strconv.Itoa(int(v.Slot))
	}
	return v.Name
}

// Switch is a verified tableswitch or lookupswitch table. Keys is only set
// for lookupswitch.
type Switch struct {
	Min     int32
	Max     int32
	Default string
	Keys    []int32
	Labels  []string
}

// Operand is one verified argument converted to the value the lowering
// needs. Only the fields matching the kind are set.
type Operand struct {
	Kind      OperandKind
	Node      ast.Node
	Int       int32
	Var       Var
	Text      string
	Owner     string
	Name      string
	Constant  bytecode.Constant
	Handle    bytecode.Handle
	Arguments []bytecode.Constant
	Switch    Switch
	// Refs holds every label reference inside the operand.
	Refs []*ast.Identifier
}

func invalid(n ast.Node, code string, format string, args ...interface{}) exc.Exception {
	return exc.Newf(n.Location(), code, format, args...)
}

func integral(n ast.Node, min int64, max int64, what string) (int64, exc.Exception) {
	switch v := n.(type) {
	case *ast.Number:
		value, err := v.Value()
		if err != nil {
			return 0, invalid(n, exc.CodeInvalidNumber, "%s", err.Error())
		}
		if !value.IsIntegral() {
			return 0, invalid(n, exc.CodeOperandKind, "expected an integer %s but found %s literal %s", what, value.Kind, v.Token.Content)
		}
		if value.Int < min || value.Int > max {
			return 0, invalid(n, exc.CodeInvalidNumber, "%s %d is out of range [%d, %d]", what, value.Int, min, max)
		}
		return value.Int, nil
	case *ast.Character:
		r, err := v.Value()
		if err != nil {
			return 0, invalid(n, exc.CodeInvalidValue, "%s", err.Error())
		}
		if int64(r) > max {
			return 0, invalid(n, exc.CodeInvalidNumber, "%s %d is out of range [%d, %d]", what, r, min, max)
		}
		return int64(r), nil
	}
	return 0, kindMismatch(n, what)
}

func kindMismatch(n ast.Node, want string) exc.Exception {
	return invalid(n, exc.CodeOperandKind, "expected %s but found %s", want, n.Kind())
}

func identifier(n ast.Node, want string) (*ast.Identifier, exc.Exception) {
	id, ok := n.(*ast.Identifier)
	if !ok {
		return nil, kindMismatch(n, want)
	}
	return id, nil
}

// verifyOperand checks one argument against its kind.
func verifyOperand(kind OperandKind, n ast.Node) (Operand, exc.Exception) {
	op := Operand{Kind: kind, Node: n}
	switch kind {
	case KindByte, KindShort, KindIncrement, KindDimensions:
		bounds := map[OperandKind][2]int64{
			KindByte:       {math.MinInt8, math.MaxInt8},
			KindShort:      {math.MinInt16, math.MaxInt16},
			KindIncrement:  {math.MinInt16, math.MaxInt16},
			KindDimensions: {1, math.MaxUint8},
		}[kind]
		v, err := integral(n, bounds[0], bounds[1], kind.String())
		if err != nil {
			return op, err
		}
		op.Int = int32(v)
	case KindVar:
		if _, ok := n.(*ast.Number); ok {
			v, err := integral(n, 0, math.MaxUint16, "variable slot")
			if err != nil {
				return op, err
			}
			op.Var = Var{Slot: uint16(v), IsSlot: true}
			return op, nil
		}
		id, err := identifier(n, "a variable name or slot")
		if err != nil {
			return op, err
		}
		op.Var = Var{Name: id.Content()}
	case KindLabel, KindName:
		id, err := identifier(n, "a "+kind.String())
		if err != nil {
			return op, err
		}
		op.Text = id.Content()
		if kind == KindLabel {
			op.Refs = []*ast.Identifier{id}
		}
	case KindType, KindArrayType:
		id, err := identifier(n, "a "+kind.String())
		if err != nil {
			return op, err
		}
		op.Text = id.Content()
		if !descriptor.IsValidInternalName(op.Text) {
			return op, invalid(n, exc.CodeInvalidDescriptor, "%q is not a valid type name", op.Text)
		}
		if kind == KindArrayType && !strings.HasPrefix(op.Text, "[") {
			return op, invalid(n, exc.CodeInvalidDescriptor, "%q is not an array descriptor", op.Text)
		}
	case KindPrimitive:
		id, err := identifier(n, "a primitive type")
		if err != nil {
			return op, err
		}
		code, ok := descriptor.PrimitiveCode(id.Content())
		if !ok {
			return op, invalid(n, exc.CodeInvalidValue, "%q is not a primitive type", id.Content())
		}
		arrayCode, _ := bytecode.NewArrayCode(code)
		op.Int = arrayCode
		op.Text = code
	case KindFieldRef, KindMethodRef:
		id, err := identifier(n, "a "+kind.String())
		if err != nil {
			return op, err
		}
		owner, name, ok := descriptor.SplitRef(id.Content())
		if !ok || !descriptor.IsValidInternalName(owner) {
			return op, invalid(n, exc.CodeInvalidValue, "%q is not a valid %s, expected owner.name", id.Content(), kind)
		}
		op.Owner = owner
		op.Name = name
	case KindFieldDescriptor, KindMethodDescriptor:
		id, err := identifier(n, "a "+kind.String())
		if err != nil {
			return op, err
		}
		op.Text = id.Content()
		valid := descriptor.IsValidFieldDescriptor(op.Text)
		if kind == KindMethodDescriptor {
			valid = descriptor.IsValidMethodDescriptor(op.Text)
		}
		if !valid {
			return op, invalid(n, exc.CodeInvalidDescriptor, "%q is not a valid descriptor", op.Text)
		}
	case KindConstant:
		c, err := ConstantOf(n)
		if err != nil {
			return op, err
		}
		op.Constant = c
	case KindHandle:
		h, err := HandleOf(n)
		if err != nil {
			return op, err
		}
		op.Handle = h
	case KindArguments:
		switch v := n.(type) {
		case *ast.Empty:
		case *ast.Array:
			for _, value := range v.Values {
				c, err := ConstantOf(value)
				if err != nil {
					return op, err
				}
				op.Arguments = append(op.Arguments, c)
			}
		default:
			return op, kindMismatch(n, "an array of bootstrap arguments")
		}
	case KindTableSwitch:
		return verifyTableSwitch(op)
	case KindLookupSwitch:
		return verifyLookupSwitch(op)
	}
	return op, nil
}

func verifyTableSwitch(op Operand) (Operand, exc.Exception) {
	obj, ok := op.Node.(*ast.Object)
	if !ok {
		return op, kindMismatch(op.Node, "{ min: n, max: n, cases: { labels }, default: label }")
	}
	for _, e := range obj.Entries {
		switch e.KeyContent() {
		case "min", "max", "cases", "default":
		default:
			return op, invalid(e.Key, exc.CodeUnknownKey, "unknown tableswitch key %q", e.KeyContent())
		}
	}
	bound := func(key string) (int32, exc.Exception) {
		n, ok := obj.Get(key)
		if !ok {
			return 0, invalid(obj, exc.CodeMissingOperand, "tableswitch is missing %q", key)
		}
		v, err := integral(n, math.MinInt32, math.MaxInt32, key)
		return int32(v), err
	}
	var err exc.Exception
	if op.Switch.Min, err = bound("min"); err != nil {
		return op, err
	}
	if op.Switch.Max, err = bound("max"); err != nil {
		return op, err
	}
	if op.Switch.Max < op.Switch.Min {
		return op, invalid(obj, exc.CodeInvalidValue, "tableswitch max %d is less than min %d", op.Switch.Max, op.Switch.Min)
	}
	dflt, err := switchDefault(obj, "tableswitch")
	if err != nil {
		return op, err
	}
	op.Switch.Default = dflt.Content()
	op.Refs = append(op.Refs, dflt)
	cases, ok := obj.Get("cases")
	if !ok {
		return op, invalid(obj, exc.CodeMissingOperand, "tableswitch is missing \"cases\"")
	}
	var values []ast.Node
	switch v := cases.(type) {
	case *ast.Array:
		values = v.Values
	case *ast.Empty:
	default:
		return op, kindMismatch(cases, "an array of labels")
	}
	if want := int64(op.Switch.Max) - int64(op.Switch.Min) + 1; int64(len(values)) != want {
		return op, invalid(cases, exc.CodeInvalidValue, "tableswitch from %d to %d needs %d labels but has %d", op.Switch.Min, op.Switch.Max, want, len(values))
	}
	for _, value := range values {
		id, err := identifier(value, "a label")
		if err != nil {
			return op, err
		}
		op.Switch.Labels = append(op.Switch.Labels, id.Content())
		op.Refs = append(op.Refs, id)
	}
	return op, nil
}

func verifyLookupSwitch(op Operand) (Operand, exc.Exception) {
	obj, ok := op.Node.(*ast.Object)
	if !ok {
		return op, kindMismatch(op.Node, "{ key: label, ..., default: label }")
	}
	dflt, err := switchDefault(obj, "lookupswitch")
	if err != nil {
		return op, err
	}
	op.Switch.Default = dflt.Content()
	op.Refs = append(op.Refs, dflt)
	seen := make(map[int32]bool)
	for _, e := range obj.Entries {
		if e.KeyContent() == "default" {
			continue
		}
		k, err := integral(e.Key, math.MinInt32, math.MaxInt32, "lookupswitch key")
		if err != nil {
			return op, err
		}
		if seen[int32(k)] {
			return op, invalid(e.Key, exc.CodeInvalidValue, "duplicate lookupswitch key %d", k)
		}
		seen[int32(k)] = true
		id, err := identifier(e.Value, "a label")
		if err != nil {
			return op, err
		}
		op.Switch.Keys = append(op.Switch.Keys, int32(k))
		op.Switch.Labels = append(op.Switch.Labels, id.Content())
		op.Refs = append(op.Refs, id)
	}
	return op, nil
}

func switchDefault(obj *ast.Object, what string) (*ast.Identifier, exc.Exception) {
	n, ok := obj.Get("default")
	if !ok {
		return nil, invalid(obj, exc.CodeMissingOperand, "%s is missing \"default\"", what)
	}
	return identifier(n, "a label")
}

// ConstantOf converts a literal node into a loadable constant: numbers,
// strings, characters (as int), class names or array descriptors, method
// descriptors (as method types) and handles.
func ConstantOf(n ast.Node) (bytecode.Constant, exc.Exception) {
	switch v := n.(type) {
	case *ast.Number:
		value, err := v.Value()
		if err != nil {
			return nil, invalid(n, exc.CodeInvalidNumber, "%s", err.Error())
		}
		switch value.Kind {
		case ast.NumberInt:
			return bytecode.Int(int32(value.Int)), nil
		case ast.NumberLong:
			return bytecode.Long(value.Int), nil
		case ast.NumberFloat:
			return bytecode.Float(float32(value.Float)), nil
		default:
			return bytecode.Double(value.Float), nil
		}
	case *ast.String:
		s, err := v.Value()
		if err != nil {
			return nil, invalid(n, exc.CodeInvalidEscape, "%s", err.Error())
		}
		return bytecode.String(s), nil
	case *ast.Character:
		r, err := v.Value()
		if err != nil {
			return nil, invalid(n, exc.CodeInvalidValue, "%s", err.Error())
		}
		return bytecode.Int(r), nil
	case *ast.Identifier:
		text := v.Content()
		if strings.HasPrefix(text, "(") {
			if !descriptor.IsValidMethodDescriptor(text) {
				return nil, invalid(n, exc.CodeInvalidDescriptor, "%q is not a valid descriptor", text)
			}
			return bytecode.MethodType(text), nil
		}
		if !descriptor.IsValidInternalName(text) {
			return nil, invalid(n, exc.CodeInvalidDescriptor, "%q is not a valid type name", text)
		}
		return bytecode.Type(text), nil
	case *ast.Array:
		h, err := HandleOf(n)
		if err != nil {
			return nil, err
		}
		return h, nil
	}
	return nil, invalid(n, exc.CodeUnsupportedConstant, "%s is not a loadable constant", n.Kind())
}

// HandleOf reads { kind, owner.name, descriptor }.
func HandleOf(n ast.Node) (bytecode.Handle, exc.Exception) {
	arr, ok := n.(*ast.Array)
	if !ok || len(arr.Values) != 3 {
		return bytecode.Handle{}, kindMismatch(n, "a handle { kind, owner.name, descriptor }")
	}
	var parts [3]string
	for x, value := range arr.Values {
		id, err := identifier(value, "a handle part")
		if err != nil {
			return bytecode.Handle{}, err
		}
		parts[x] = id.Content()
	}
	kind, itf, ok := bytecode.HandleKindByName(parts[0])
	if !ok {
		return bytecode.Handle{}, invalid(arr.Values[0], exc.CodeInvalidValue, "%q is not a handle kind", parts[0])
	}
	owner, name, ok := descriptor.SplitRef(parts[1])
	if !ok || !descriptor.IsValidInternalName(owner) {
		return bytecode.Handle{}, invalid(arr.Values[1], exc.CodeInvalidValue, "%q is not a valid reference, expected owner.name", parts[1])
	}
	valid := descriptor.IsValidMethodDescriptor(parts[2])
	if kind.IsField() {
		valid = descriptor.IsValidFieldDescriptor(parts[2])
	}
	if !valid {
		return bytecode.Handle{}, invalid(arr.Values[2], exc.CodeInvalidDescriptor, "%q is not a valid descriptor", parts[2])
	}
	return bytecode.Handle{Kind: kind, Owner: owner, Name: name, Descriptor: parts[2], Interface: itf}, nil
}
