package instructions

import (
	"gopkg.microglot.org/jasm/internal/ast"
	"gopkg.microglot.org/jasm/internal/bytecode"
	"gopkg.microglot.org/jasm/internal/exc"
)

// FieldConstant converts a field initializer to the constant type its
// descriptor requires. Integral literals widen to long, float and double.
// Boolean fields also accept true and false.
func FieldConstant(desc string, n ast.Node) (bytecode.Constant, exc.Exception) {
	if id, ok := n.(*ast.Identifier); ok && desc == "Z" {
		switch id.Content() {
		case "true":
			return bytecode.Int(1), nil
		case "false":
			return bytecode.Int(0), nil
		}
	}
	if b, ok := n.(*ast.Bool); ok && desc == "Z" {
		if b.Value() {
			return bytecode.Int(1), nil
		}
		return bytecode.Int(0), nil
	}
	if _, ok := n.(*ast.Identifier); ok {
		return nil, invalid(n, exc.CodeInvalidValue, "a field of type %s cannot be initialized with %s", desc, n.(*ast.Identifier).Content())
	}
	c, err := ConstantOf(n)
	if err != nil {
		return nil, err
	}
	mismatch := func() (bytecode.Constant, exc.Exception) {
		return nil, invalid(n, exc.CodeInvalidValue, "a field of type %s cannot be initialized with a %s", desc, bytecode.ConstantDescriptor(c))
	}
	switch desc {
	case "I", "S", "B", "C", "Z":
		if v, ok := c.(bytecode.Int); ok {
			return v, nil
		}
	case "J":
		switch v := c.(type) {
		case bytecode.Int:
			return bytecode.Long(v), nil
		case bytecode.Long:
			return v, nil
		}
	case "F":
		switch v := c.(type) {
		case bytecode.Int:
			return bytecode.Float(v), nil
		case bytecode.Long:
			return bytecode.Float(v), nil
		case bytecode.Float:
			return v, nil
		case bytecode.Double:
			return bytecode.Float(v), nil
		}
	case "D":
		switch v := c.(type) {
		case bytecode.Int:
			return bytecode.Double(v), nil
		case bytecode.Long:
			return bytecode.Double(v), nil
		case bytecode.Float:
			return bytecode.Double(v), nil
		case bytecode.Double:
			return v, nil
		}
	case "Ljava/lang/String;":
		if v, ok := c.(bytecode.String); ok {
			return v, nil
		}
	default:
		return nil, invalid(n, exc.CodeInvalidValue, "a field of type %s cannot have a constant value", desc)
	}
	return mismatch()
}
