// Package transformer drives processed declarations through a visitor
// chain.
package transformer

import (
	"context"

	"gopkg.microglot.org/jasm/internal/ast"
	"gopkg.microglot.org/jasm/internal/bytecode"
	"gopkg.microglot.org/jasm/internal/exc"
	"gopkg.microglot.org/jasm/internal/instructions"
	"gopkg.microglot.org/jasm/internal/result"
)

type Transformer struct {
	reporter exc.Reporter
	registry *instructions.Registry
}

func NewTransformer(reporter exc.Reporter, registry *instructions.Registry) *Transformer {
	return &Transformer{reporter: reporter, registry: registry}
}

// Transform dispatches each declaration depth first in source order.
func Transform(ctx context.Context, nodes []ast.Node, registry *instructions.Registry, root RootVisitor) result.Result[struct{}] {
	reporter := exc.NewReporter(nil)
	NewTransformer(reporter, registry).Transform(ctx, nodes, root)
	return result.FromReporter(struct{}{}, reporter)
}

func (self *Transformer) Transform(ctx context.Context, nodes []ast.Node, root RootVisitor) {
	for _, n := range nodes {
		switch d := n.(type) {
		case *ast.Type:
			self.typeDeclaration(d, root)
		case *ast.Field:
			self.field(d, root.VisitField(Access(d.Modifiers, bytecode.ContextField), d.Name.Content(), d.Descriptor.Content()))
		case *ast.Method:
			self.method(d, root.VisitMethod(Access(d.Modifiers, bytecode.ContextMethod), d.Name.Content(), d.Descriptor.Content()))
		case *ast.Annotation:
			if a := self.annotation(d); a != nil {
				root.VisitAnnotation(a)
			}
		}
	}
}

// Access combines modifier keywords. Unknown keywords were reported by the
// processor and are ignored here.
func Access(mods []*ast.Identifier, context bytecode.AccessContext) bytecode.Access {
	var access bytecode.Access
	for _, m := range mods {
		flag, _ := bytecode.ParseModifier(m.Content(), context)
		access = access | flag
	}
	return access
}

func (self *Transformer) typeDeclaration(d *ast.Type, root RootVisitor) {
	var super string
	if d.Super != nil {
		super = d.Super.Content()
	}
	interfaces := make([]string, 0, len(d.Interfaces))
	for _, i := range d.Interfaces {
		interfaces = append(interfaces, i.Content())
	}
	v := root.VisitType(Access(d.Modifiers, bytecode.ContextClass), d.Name.Content(), super, interfaces)
	if v == nil {
		return
	}
	if d.Signature != nil {
		v.VisitSignature(self.str(d.Signature.Value))
	}
	for _, a := range d.Attributes {
		switch a.Name() {
		case ".sourcefile":
			v.VisitSource(self.str(a.Values[0].(*ast.String)))
		case ".nesthost":
			v.VisitNestHost(content(a.Values[0]))
		case ".nestmember":
			v.VisitNestMember(content(a.Values[0]))
		case ".permittedsubclass":
			v.VisitPermittedSubclass(content(a.Values[0]))
		case ".record-component":
			v.VisitRecordComponent(bytecode.RecordComponent{Name: content(a.Values[0]), Descriptor: content(a.Values[1])})
		}
	}
	for _, inner := range d.Inner {
		v.VisitInnerClass(bytecode.InnerClass{
			Name:      inner.Name.Content(),
			Outer:     inner.Outer.Content(),
			InnerName: inner.InnerName.Content(),
			Access:    Access(inner.Modifiers, bytecode.ContextInner),
		})
	}
	for _, a := range d.Annotations {
		if ann := self.annotation(a); ann != nil {
			v.VisitAnnotation(ann)
		}
	}
	for _, m := range d.Members {
		switch member := m.(type) {
		case *ast.Field:
			self.field(member, v.VisitField(Access(member.Modifiers, bytecode.ContextField), member.Name.Content(), member.Descriptor.Content()))
		case *ast.Method:
			self.method(member, v.VisitMethod(Access(member.Modifiers, bytecode.ContextMethod), member.Name.Content(), member.Descriptor.Content()))
		}
	}
	v.VisitEnd()
}

func content(n ast.Node) string {
	if id, ok := n.(*ast.Identifier); ok {
		return id.Content()
	}
	return ""
}

func (self *Transformer) str(s *ast.String) string {
	v, err := s.Value()
	if err != nil {
		_ = self.reporter.Report(exc.Wrap(s.Location(), exc.CodeInvalidEscape, err))
	}
	return v
}

func (self *Transformer) field(d *ast.Field, v FieldVisitor) {
	if v == nil {
		return
	}
	if d.Signature != nil {
		v.VisitSignature(self.str(d.Signature.Value))
	}
	for _, a := range d.Annotations {
		if ann := self.annotation(a); ann != nil {
			v.VisitAnnotation(ann)
		}
	}
	if d.Value != nil {
		c, err := instructions.FieldConstant(d.Descriptor.Content(), d.Value)
		if err != nil {
			_ = self.reporter.Report(err)
		} else {
			v.VisitValue(c)
		}
	}
	v.VisitEnd()
}

func (self *Transformer) method(d *ast.Method, v MethodVisitor) {
	if v == nil {
		return
	}
	if d.Signature != nil {
		v.VisitSignature(self.str(d.Signature.Value))
	}
	for _, a := range d.Annotations {
		if ann := self.annotation(a); ann != nil {
			v.VisitAnnotation(ann)
		}
	}
	for _, t := range d.Throws {
		v.VisitException(t.Content())
	}
	for _, p := range d.Parameters {
		v.VisitParameter(p.Content())
	}
	for _, l := range d.Locals {
		slot, _ := l.Value.(*ast.Number).Value()
		v.VisitLocal(l.KeyContent(), uint16(slot.Int))
	}
	if d.Code != nil {
		if code := v.VisitCode(); code != nil {
			self.code(d, code)
		}
	}
	v.VisitEnd()
}

func (self *Transformer) code(d *ast.Method, v CodeVisitor) {
	for _, h := range d.Exceptions {
		typ := ""
		if h.Type != nil {
			typ = h.Type.Content()
		}
		v.VisitTryCatch(h.Start.Content(), h.End.Content(), h.Handler.Content(), typ)
	}
	for _, e := range d.Code.Elements {
		switch n := e.(type) {
		case *ast.Label:
			v.VisitLabel(n.Name.Content())
		case *ast.Instruction:
			entry, ok := self.registry.Lookup(n.Mnemonic.Content())
			if !ok {
				_ = self.reporter.Report(exc.Newf(n.Location(), exc.CodeUnknownInstruction, "unknown instruction %s", n.Mnemonic.Content()))
				continue
			}
			ops, errs := entry.Verify(n)
			if len(errs) > 0 {
				for _, err := range errs {
					_ = self.reporter.Report(err)
				}
				continue
			}
			entry.Lower(ops, v)
		}
	}
	v.VisitEnd()
}
