// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package transformer

import (
	"gopkg.microglot.org/jasm/internal/ast"
	"gopkg.microglot.org/jasm/internal/bytecode"
	"gopkg.microglot.org/jasm/internal/exc"
	"gopkg.microglot.org/jasm/internal/instructions"
)

func (self *Transformer) annotation(a *ast.Annotation) *bytecode.Annotation {
	out, err := AnnotationOf(a)
	if err != nil {
		_ = self.reporter.Report(err)
		return nil
	}
	return out
}

// AnnotationOf converts a processed annotation. Numbers keep the kind of
// their literal since element types are not known here.
func AnnotationOf(a *ast.Annotation) (*bytecode.Annotation, exc.Exception) {
	out := &bytecode.Annotation{Type: a.Type.Content(), Visible: a.Visible}
	if a.Values == nil {
		return out, nil
	}
	for _, e := range a.Values.Entries {
		v, err := annotationValue(e.Value)
		if err != nil {
			return nil, err
		}
		out.Elements = append(out.Elements, bytecode.AnnotationElement{Name: e.KeyContent(), Value: v})
	}
	return out, nil
}

func annotationValue(n ast.Node) (bytecode.AnnotationValue, exc.Exception) {
	switch v := n.(type) {
	case *ast.Bool:
		return bytecode.Bool(v.Value()), nil
	case *ast.Character:
		r, err := v.Value()
		if err != nil {
			return nil, exc.Wrap(v.Location(), exc.CodeInvalidValue, err)
		}
		return bytecode.Char(r), nil
	case *ast.Number, *ast.String:
		c, err := instructions.ConstantOf(n)
		if err != nil {
			return nil, err
		}
		if value, ok := c.(bytecode.AnnotationValue); ok {
			return value, nil
		}
	case *ast.TypeReference:
		return bytecode.ClassValue(v.Content()), nil
	case *ast.EnumConstant:
		return bytecode.EnumValue{Type: v.Type.Content(), Name: v.Name.Content()}, nil
	case *ast.Annotation:
		nested, err := AnnotationOf(v)
		if err != nil {
			return nil, err
		}
		return nested, nil
	case *ast.Empty:
		return bytecode.ArrayValue{}, nil
	case *ast.Array:
		values := bytecode.ArrayValue{}
		for _, value := range v.Values {
			converted, err := annotationValue(value)
			if err != nil {
				return nil, err
			}
			values = append(values, converted)
		}
		return values, nil
	}
	return nil, exc.Newf(n.Location(), exc.CodeInvalidValue, "%s is not an annotation value", n.Kind())
}
