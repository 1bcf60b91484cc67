// Package processor turns the generic syntax tree into typed declarations
// and verifies every instruction against the registry.
package processor

import (
	"context"
	"fmt"
	"strings"

	"gopkg.microglot.org/jasm/internal/ast"
	"gopkg.microglot.org/jasm/internal/bytecode"
	"gopkg.microglot.org/jasm/internal/descriptor"
	"gopkg.microglot.org/jasm/internal/exc"
	"gopkg.microglot.org/jasm/internal/instructions"
	"gopkg.microglot.org/jasm/internal/jasm"
	"gopkg.microglot.org/jasm/internal/result"
)

const (
	keywordClass           = "class"
	keywordDotClass        = ".class"
	keywordField           = ".field"
	keywordMethod          = ".method"
	keywordSignature       = ".signature"
	keywordAnnotation      = ".annotation"
	keywordInvisible       = ".invisible-annotation"
	keywordThrows          = ".throws"
	keywordEnum            = ".enum"
	keywordInner           = ".inner"
	keywordNestHost        = ".nesthost"
	keywordNestMember      = ".nestmember"
	keywordPermitted       = ".permittedsubclass"
	keywordRecordComponent = ".record-component"
	keywordSourceFile      = ".sourcefile"
	keywordExtends         = "extends"
	keywordImplements      = "implements"
	catchAll               = "*"
	keyValue               = "value"
	keyParameters          = "parameters"
	keyLocals              = "locals"
	keyExceptions          = "exceptions"
	keyCode                = "code"
)

// Processor assigns specific node kinds to declarations. Problems are
// reported and processing continues with the next element.
type Processor struct {
	reporter exc.Reporter
	registry *instructions.Registry
}

func NewProcessor(reporter exc.Reporter, registry *instructions.Registry) *Processor {
	return &Processor{reporter: reporter, registry: registry}
}

// Process returns the typed top-level declarations: *ast.Type, *ast.Field,
// *ast.Method and, for a trailing annotation with nothing to attach to,
// *ast.Annotation.
func (self *Processor) Process(ctx context.Context, nodes []ast.Node) []ast.Node {
	return self.sequence(nodes, nil)
}

// Process is a convenience wrapper that looks up the registry for target.
func Process(ctx context.Context, nodes []ast.Node, target jasm.Target) result.Result[[]ast.Node] {
	registry, err := instructions.For(target)
	if err != nil {
		return result.Err[[]ast.Node](err)
	}
	reporter := exc.NewReporter(nil)
	out := NewProcessor(reporter, registry).Process(ctx, nodes)
	return result.FromReporter(out, reporter)
}

// Main returns the single declaration of a unit.
func Main(uri string, nodes []ast.Node) result.Result[ast.Node] {
	if len(nodes) != 1 {
		return result.Err[ast.Node](exc.Newf(
			jasm.Location{URI: uri},
			exc.CodeDeclarationCount,
			"expected exactly one declaration but found %d", len(nodes),
		))
	}
	return result.Ok(nodes[0])
}

func (self *Processor) report(n ast.Node, code string, format string, args ...interface{}) {
	_ = self.reporter.Report(exc.Newf(n.Location(), code, format, args...))
}

func (self *Processor) warn(n ast.Node, code string, format string, args ...interface{}) {
	self.reporter.Warn(exc.Newf(n.Location(), code, format, args...))
}

// prefixes collects the elements that attach to the next declaration.
type prefixes struct {
	signature   *ast.Signature
	annotations []*ast.Annotation
	throws      []*ast.TypeReference
}

// sequence processes a top-level unit when owner is nil and a type body
// otherwise.
func (self *Processor) sequence(nodes []ast.Node, owner *ast.Type) []ast.Node {
	out := []ast.Node{}
	pending := &prefixes{}
	members := make(map[string]bool)
	for _, n := range nodes {
		d, ok := n.(*ast.Declaration)
		if !ok {
			if n.Kind() != ast.KindComment {
				self.report(n, exc.CodeUnexpectedElement, "unexpected %s, expected a declaration", n.Kind())
			}
			continue
		}
		switch d.Name() {
		case keywordSignature:
			s := self.signature(d)
			if s == nil {
				continue
			}
			if pending.signature != nil {
				self.report(d, exc.CodeUnexpectedElement, "a declaration takes at most one signature")
				continue
			}
			pending.signature = s
		case keywordAnnotation, keywordInvisible:
			if a := self.annotation(d); a != nil {
				pending.annotations = append(pending.annotations, a)
			}
		case keywordThrows:
			if t := self.typeReference(d); t != nil {
				pending.throws = append(pending.throws, t)
			}
		case keywordClass, keywordDotClass:
			if owner != nil {
				self.report(d, exc.CodeUnexpectedElement, "types cannot be nested, use .inner")
				pending = &prefixes{}
				continue
			}
			if t := self.typeDeclaration(d, pending); t != nil {
				out = append(out, t)
			}
			pending = &prefixes{}
		case keywordField:
			if f := self.field(d, pending); f != nil {
				self.member(f, "field", f.Name.Content()+" "+f.Descriptor.Content(), members)
				out = append(out, f)
			}
			pending = &prefixes{}
		case keywordMethod:
			if m := self.method(d, pending); m != nil {
				self.member(m, "method", m.Name.Content()+m.Descriptor.Content(), members)
				out = append(out, m)
			}
			pending = &prefixes{}
		case keywordInner, keywordNestHost, keywordNestMember, keywordPermitted, keywordRecordComponent, keywordSourceFile:
			if owner == nil {
				self.report(d, exc.CodeUnexpectedElement, "%s is only allowed inside a type", d.Name())
				continue
			}
			self.dangling(pending)
			pending = &prefixes{}
			self.typeAttribute(d, owner)
		default:
			self.report(d, exc.CodeUnexpectedElement, "unexpected declaration %s", d.Name())
		}
	}
	if owner == nil && pending.signature == nil && len(pending.throws) == 0 {
		for _, a := range pending.annotations {
			out = append(out, a)
		}
		return out
	}
	self.dangling(pending)
	return out
}

func (self *Processor) member(n ast.Node, what string, key string, seen map[string]bool) {
	if seen[key] {
		self.report(n, exc.CodeDuplicateMember, "duplicate %s %s", what, key)
	}
	seen[key] = true
}

func (self *Processor) dangling(p *prefixes) {
	if p.signature != nil {
		self.report(p.signature, exc.CodeDanglingPrefix, "signature is not followed by a declaration")
	}
	for _, a := range p.annotations {
		self.report(a, exc.CodeDanglingPrefix, "annotation is not followed by a declaration")
	}
	for _, t := range p.throws {
		self.report(t, exc.CodeDanglingPrefix, "throws is not followed by a method")
	}
}

func (self *Processor) signature(d *ast.Declaration) *ast.Signature {
	if len(d.Elements) != 1 {
		self.report(d, exc.CodeOperandCount, ".signature takes one string")
		return nil
	}
	s, ok := d.Elements[0].(*ast.String)
	if !ok {
		self.report(d.Elements[0], exc.CodeOperandKind, "expected a signature string but found %s", d.Elements[0].Kind())
		return nil
	}
	if _, err := s.Value(); err != nil {
		self.report(s, exc.CodeInvalidEscape, "%s", err.Error())
		return nil
	}
	return &ast.Signature{Keyword: d.Keyword, Value: s}
}

// typeReference reads a declaration holding exactly one internal name.
func (self *Processor) typeReference(d *ast.Declaration) *ast.TypeReference {
	if len(d.Elements) != 1 {
		self.report(d, exc.CodeOperandCount, "%s takes one type name", d.Name())
		return nil
	}
	return self.internalName(d.Elements[0])
}

func (self *Processor) internalName(n ast.Node) *ast.TypeReference {
	id, ok := n.(*ast.Identifier)
	if !ok {
		self.report(n, exc.CodeOperandKind, "expected a type name but found %s", n.Kind())
		return nil
	}
	if !descriptor.IsValidInternalName(id.Content()) {
		self.report(n, exc.CodeInvalidDescriptor, "%q is not a valid type name", id.Content())
		return nil
	}
	return &ast.TypeReference{Name: id}
}

func (self *Processor) modifiers(ids []*ast.Identifier, context bytecode.AccessContext) []*ast.Identifier {
	for _, id := range ids {
		if _, ok := bytecode.ParseModifier(id.Content(), context); !ok {
			self.report(id, exc.CodeUnknownModifier, "%q is not a %s modifier", id.Content(), context)
		}
	}
	return ids
}

// leadingIdentifiers splits the identifiers at the start of a declaration
// from whatever follows them.
func leadingIdentifiers(elements []ast.Node) ([]*ast.Identifier, []ast.Node) {
	var ids []*ast.Identifier
	for x, e := range elements {
		id, ok := e.(*ast.Identifier)
		if !ok {
			return ids, elements[x:]
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (self *Processor) typeDeclaration(d *ast.Declaration, pending *prefixes) *ast.Type {
	ids, rest := leadingIdentifiers(d.Elements)
	if len(ids) == 0 {
		self.report(d, exc.CodeMissingOperand, "type declaration is missing a name")
		return nil
	}
	t := &ast.Type{
		Keyword:     d.Keyword,
		Modifiers:   self.modifiers(ids[:len(ids)-1], bytecode.ContextClass),
		Name:        ids[len(ids)-1],
		Signature:   pending.signature,
		Annotations: pending.annotations,
		Members:     []ast.Node{},
	}
	for _, th := range pending.throws {
		self.report(th, exc.CodeUnexpectedElement, "types cannot declare thrown exceptions")
	}
	if !descriptor.IsValidInternalName(t.Name.Content()) {
		self.report(t.Name, exc.CodeInvalidDescriptor, "%q is not a valid type name", t.Name.Content())
	}
	for x := 0; x < len(rest); x = x + 1 {
		switch e := rest[x].(type) {
		case *ast.Keyword:
			names, more := leadingIdentifiers(rest[x+1:])
			if len(names) == 0 {
				self.report(e, exc.CodeMissingOperand, "%s needs a type name", e.Token.Content)
			}
			switch e.Token.Content {
			case keywordExtends:
				if t.Super != nil || len(names) > 1 {
					self.report(e, exc.CodeUnexpectedElement, "a type extends exactly one type")
				}
				if len(names) > 0 {
					t.Super = self.internalName(names[0])
				}
			case keywordImplements:
				for _, n := range names {
					if ref := self.internalName(n); ref != nil {
						t.Interfaces = append(t.Interfaces, ref)
					}
				}
			default:
				self.report(e, exc.CodeUnexpectedElement, "unexpected keyword %s", e.Token.Content)
			}
			x = len(rest) - len(more) - 1
		case *ast.Array:
			if x != len(rest)-1 {
				self.report(rest[x+1], exc.CodeUnexpectedElement, "unexpected %s after the type body", rest[x+1].Kind())
			}
			t.Members = self.sequence(e.Values, t)
		case *ast.Empty:
		default:
			self.report(e, exc.CodeUnexpectedElement, "unexpected %s in type declaration", e.Kind())
		}
	}
	return t
}

func (self *Processor) typeAttribute(d *ast.Declaration, owner *ast.Type) {
	if d.Name() == keywordInner {
		self.inner(d, owner)
		return
	}
	want := 1
	if d.Name() == keywordRecordComponent {
		want = 2
	}
	if len(d.Elements) != want {
		self.report(d, exc.CodeOperandCount, "%s takes %d operands but %d were given", d.Name(), want, len(d.Elements))
		return
	}
	switch d.Name() {
	case keywordSourceFile:
		s, ok := d.Elements[0].(*ast.String)
		if !ok {
			self.report(d.Elements[0], exc.CodeOperandKind, "expected a file name string but found %s", d.Elements[0].Kind())
			return
		}
		if _, err := s.Value(); err != nil {
			self.report(s, exc.CodeInvalidEscape, "%s", err.Error())
			return
		}
	case keywordRecordComponent:
		if _, ok := d.Elements[0].(*ast.Identifier); !ok {
			self.report(d.Elements[0], exc.CodeOperandKind, "expected a component name but found %s", d.Elements[0].Kind())
			return
		}
		desc, ok := d.Elements[1].(*ast.Identifier)
		if !ok || !descriptor.IsValidFieldDescriptor(desc.Content()) {
			self.report(d.Elements[1], exc.CodeInvalidDescriptor, "expected a field descriptor")
			return
		}
	default:
		if self.internalName(d.Elements[0]) == nil {
			return
		}
	}
	owner.Attributes = append(owner.Attributes, &ast.TypeAttribute{Keyword: d.Keyword, Values: d.Elements})
}

// inner reads .inner modifiers name [outer|* [innername|*]].
func (self *Processor) inner(d *ast.Declaration, owner *ast.Type) {
	ids, rest := leadingIdentifiers(d.Elements)
	if len(rest) > 0 {
		self.report(rest[0], exc.CodeUnexpectedElement, "unexpected %s in .inner", rest[0].Kind())
		return
	}
	x := 0
	for x < len(ids) {
		if _, ok := bytecode.ParseModifier(ids[x].Content(), bytecode.ContextInner); !ok {
			break
		}
		x = x + 1
	}
	names := ids[x:]
	if len(names) == 0 || len(names) > 3 {
		self.report(d, exc.CodeOperandCount, ".inner takes a name, an optional outer name and an optional simple name")
		return
	}
	inner := &ast.InnerType{Keyword: d.Keyword, Modifiers: ids[:x], Name: names[0]}
	if self.internalName(names[0]) == nil {
		return
	}
	if len(names) > 1 && names[1].Content() != catchAll {
		if self.internalName(names[1]) == nil {
			return
		}
		inner.Outer = names[1]
	}
	if len(names) > 2 && names[2].Content() != catchAll {
		inner.InnerName = names[2]
	}
	owner.Inner = append(owner.Inner, inner)
}

// memberHead reads modifiers, a name and a descriptor followed by an
// optional block.
func (self *Processor) memberHead(d *ast.Declaration, context bytecode.AccessContext) ([]*ast.Identifier, *ast.Identifier, *ast.Identifier, *ast.Object, bool) {
	ids, rest := leadingIdentifiers(d.Elements)
	if len(ids) < 2 {
		self.report(d, exc.CodeMissingOperand, "%s needs a name and a descriptor", d.Name())
		return nil, nil, nil, nil, false
	}
	var block *ast.Object
	for x, e := range rest {
		switch b := e.(type) {
		case *ast.Object:
			if x == len(rest)-1 {
				block = b
				continue
			}
		case *ast.Empty:
			if x == len(rest)-1 {
				continue
			}
		}
		self.report(e, exc.CodeUnexpectedElement, "unexpected %s in %s", e.Kind(), d.Name())
		return nil, nil, nil, nil, false
	}
	mods := self.modifiers(ids[:len(ids)-2], context)
	return mods, ids[len(ids)-2], ids[len(ids)-1], block, true
}

func (self *Processor) keys(obj *ast.Object, allowed ...string) {
	if obj == nil {
		return
	}
	seen := make(map[string]bool)
	for _, e := range obj.Entries {
		k := e.KeyContent()
		ok := false
		for _, a := range allowed {
			ok = ok || a == k
		}
		if !ok {
			self.report(e.Key, exc.CodeUnknownKey, "unknown key %q, expected one of %s", k, strings.Join(allowed, ", "))
		}
		if seen[k] {
			self.report(e.Key, exc.CodeUnknownKey, "duplicate key %q", k)
		}
		seen[k] = true
	}
}

func (self *Processor) field(d *ast.Declaration, pending *prefixes) *ast.Field {
	mods, name, desc, block, ok := self.memberHead(d, bytecode.ContextField)
	if !ok {
		return nil
	}
	f := &ast.Field{
		Keyword:     d.Keyword,
		Modifiers:   mods,
		Name:        name,
		Descriptor:  desc,
		Signature:   pending.signature,
		Annotations: pending.annotations,
	}
	for _, th := range pending.throws {
		self.report(th, exc.CodeUnexpectedElement, "fields cannot declare thrown exceptions")
	}
	if !descriptor.IsValidFieldDescriptor(desc.Content()) {
		self.report(desc, exc.CodeInvalidDescriptor, "%q is not a valid descriptor", desc.Content())
		return f
	}
	self.keys(block, keyValue)
	if v, ok := block.Get(keyValue); ok {
		if _, err := instructions.FieldConstant(desc.Content(), v); err != nil {
			_ = self.reporter.Report(err)
		} else {
			f.Value = v
		}
	}
	return f
}

func (self *Processor) method(d *ast.Declaration, pending *prefixes) *ast.Method {
	mods, name, desc, block, ok := self.memberHead(d, bytecode.ContextMethod)
	if !ok {
		return nil
	}
	m := &ast.Method{
		Keyword:     d.Keyword,
		Modifiers:   mods,
		Name:        name,
		Descriptor:  desc,
		Signature:   pending.signature,
		Annotations: pending.annotations,
		Throws:      pending.throws,
	}
	params, _, err := descriptor.ParseMethod(desc.Content())
	if err != nil {
		self.report(desc, exc.CodeInvalidDescriptor, "%q is not a valid descriptor", desc.Content())
		return m
	}
	self.keys(block, keyParameters, keyLocals, keyExceptions, keyCode)
	names := make(map[string]bool)
	if v, ok := block.Get(keyParameters); ok {
		m.Parameters = self.parameters(v, len(params), names)
	}
	if v, ok := block.Get(keyLocals); ok {
		m.Locals = self.locals(v, names)
	}
	if v, ok := block.Get(keyExceptions); ok {
		m.Exceptions = self.exceptions(v)
	}
	if v, ok := block.Get(keyCode); ok {
		switch c := v.(type) {
		case *ast.Code:
			m.Code = c
		case *ast.Empty:
			m.Code = &ast.Code{Open: c.Open}
		default:
			self.report(v, exc.CodeOperandKind, "expected a code block but found %s", v.Kind())
		}
	}
	if m.Code != nil {
		self.code(m)
	} else if len(m.Exceptions) > 0 {
		self.report(m.Exceptions[0], exc.CodeUnexpectedElement, "exception handlers need a code block")
	}
	return m
}

func (self *Processor) parameters(n ast.Node, count int, names map[string]bool) []*ast.Identifier {
	var values []ast.Node
	switch v := n.(type) {
	case *ast.Array:
		values = v.Values
	case *ast.Empty:
	default:
		self.report(n, exc.CodeOperandKind, "expected an array of parameter names but found %s", n.Kind())
		return nil
	}
	if len(values) != count {
		self.report(n, exc.CodeInvalidValue, "the descriptor declares %d parameters but %d names were given", count, len(values))
	}
	var out []*ast.Identifier
	for _, value := range values {
		id, ok := value.(*ast.Identifier)
		if !ok {
			self.report(value, exc.CodeOperandKind, "expected a parameter name but found %s", value.Kind())
			continue
		}
		if names[id.Content()] || id.Content() == "this" {
			self.report(id, exc.CodeInvalidVariable, "parameter name %q is already used", id.Content())
		}
		names[id.Content()] = true
		out = append(out, id)
	}
	return out
}

func (self *Processor) locals(n ast.Node, names map[string]bool) []*ast.Entry {
	if _, ok := n.(*ast.Empty); ok {
		return nil
	}
	obj, ok := n.(*ast.Object)
	if !ok {
		self.report(n, exc.CodeOperandKind, "expected { name: slot } but found %s", n.Kind())
		return nil
	}
	var out []*ast.Entry
	for _, e := range obj.Entries {
		if _, ok := e.Key.(*ast.Identifier); !ok {
			self.report(e.Key, exc.CodeInvalidVariable, "a local name must be an identifier")
			continue
		}
		num, ok := e.Value.(*ast.Number)
		if !ok {
			self.report(e.Value, exc.CodeOperandKind, "expected a slot number but found %s", e.Value.Kind())
			continue
		}
		v, err := num.Value()
		if err != nil || !v.IsIntegral() || v.Int < 0 || v.Int > 0xFFFF {
			self.report(num, exc.CodeInvalidVariable, "%s is not a valid slot", num.Token.Content)
			continue
		}
		if names[e.KeyContent()] {
			self.report(e.Key, exc.CodeInvalidVariable, "variable name %q is already used", e.KeyContent())
			continue
		}
		names[e.KeyContent()] = true
		out = append(out, e)
	}
	return out
}

func (self *Processor) exceptions(n ast.Node) []*ast.Exception {
	var values []ast.Node
	switch v := n.(type) {
	case *ast.Array:
		values = v.Values
	case *ast.Empty:
	default:
		self.report(n, exc.CodeOperandKind, "expected an array of handlers but found %s", n.Kind())
		return nil
	}
	var out []*ast.Exception
	for _, value := range values {
		row, ok := value.(*ast.Array)
		if !ok || len(row.Values) != 4 {
			self.report(value, exc.CodeOperandKind, "expected { start, end, handler, type } for an exception handler")
			continue
		}
		var ids [4]*ast.Identifier
		valid := true
		for x, part := range row.Values {
			id, ok := part.(*ast.Identifier)
			if !ok {
				self.report(part, exc.CodeOperandKind, "expected a name but found %s", part.Kind())
				valid = false
				continue
			}
			ids[x] = id
		}
		if !valid {
			continue
		}
		e := &ast.Exception{Open: row.Open, Start: ids[0], End: ids[1], Handler: ids[2]}
		if ids[3].Content() != catchAll {
			if e.Type = self.internalName(ids[3]); e.Type == nil {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

// code verifies every instruction and the label references of a method.
func (self *Processor) code(m *ast.Method) {
	labels := make(map[string]*ast.Identifier)
	used := make(map[string]bool)
	var refs []*ast.Identifier
	for _, e := range m.Code.Elements {
		switch v := e.(type) {
		case *ast.Label:
			if _, ok := labels[v.Name.Content()]; ok {
				self.report(v, exc.CodeDuplicateLabel, "label %s is already defined", v.Name.Content())
				continue
			}
			labels[v.Name.Content()] = v.Name
		case *ast.Instruction:
			entry, ok := self.registry.Lookup(v.Mnemonic.Content())
			if !ok {
				self.report(v, exc.CodeUnknownInstruction, "unknown instruction %s", v.Mnemonic.Content())
				continue
			}
			ops, errs := entry.Verify(v)
			for _, err := range errs {
				_ = self.reporter.Report(err)
			}
			for _, op := range ops {
				refs = append(refs, op.Refs...)
			}
		}
	}
	for _, h := range m.Exceptions {
		refs = append(refs, h.Start, h.End, h.Handler)
	}
	for _, ref := range refs {
		used[ref.Content()] = true
		if _, ok := labels[ref.Content()]; !ok {
			self.report(ref, exc.CodeUndefinedLabel, "label %s is not defined", ref.Content())
		}
	}
	for name, id := range labels {
		if !used[name] {
			self.warn(id, exc.CodeUnusedLabel, "label %s is never used", name)
		}
	}
}

// annotation reads .annotation descriptor [values].
func (self *Processor) annotation(d *ast.Declaration) *ast.Annotation {
	if len(d.Elements) == 0 || len(d.Elements) > 2 {
		self.report(d, exc.CodeOperandCount, "%s takes a type descriptor and optional values", d.Name())
		return nil
	}
	id, ok := d.Elements[0].(*ast.Identifier)
	if !ok || !descriptor.IsValidFieldDescriptor(id.Content()) || !strings.HasPrefix(id.Content(), "L") {
		self.report(d.Elements[0], exc.CodeInvalidDescriptor, "expected an annotation type descriptor")
		return nil
	}
	a := &ast.Annotation{Keyword: d.Keyword, Visible: d.Name() == keywordAnnotation, Type: &ast.TypeReference{Name: id}}
	if len(d.Elements) == 2 {
		switch v := d.Elements[1].(type) {
		case *ast.Empty:
		case *ast.Object:
			values := &ast.Object{Open: v.Open}
			for _, e := range v.Entries {
				if _, ok := e.Key.(*ast.Identifier); !ok {
					self.report(e.Key, exc.CodeInvalidValue, "annotation element names must be identifiers")
					continue
				}
				if value := self.annotationValue(e.Value); value != nil {
					values.Entries = append(values.Entries, &ast.Entry{Key: e.Key, Value: value})
				}
			}
			a.Values = values
		default:
			self.report(v, exc.CodeOperandKind, "expected annotation values but found %s", v.Kind())
			return nil
		}
	}
	return a
}

func (self *Processor) annotationValue(n ast.Node) ast.Node {
	switch v := n.(type) {
	case *ast.Number:
		if _, err := v.Value(); err != nil {
			self.report(v, exc.CodeInvalidNumber, "%s", err.Error())
			return nil
		}
		return v
	case *ast.String:
		if _, err := v.Value(); err != nil {
			self.report(v, exc.CodeInvalidEscape, "%s", err.Error())
			return nil
		}
		return v
	case *ast.Character:
		if _, err := v.Value(); err != nil {
			self.report(v, exc.CodeInvalidValue, "%s", err.Error())
			return nil
		}
		return v
	case *ast.Identifier:
		switch v.Content() {
		case "true", "false":
			return &ast.Bool{Token: v.Token}
		}
		if !descriptor.IsValidFieldDescriptor(v.Content()) && v.Content() != "V" {
			self.report(v, exc.CodeInvalidDescriptor, "%q is not a valid class value descriptor", v.Content())
			return nil
		}
		return &ast.TypeReference{Name: v}
	case *ast.Empty:
		return v
	case *ast.Array:
		out := &ast.Array{Open: v.Open}
		for _, value := range v.Values {
			if converted := self.annotationValue(value); converted != nil {
				out.Values = append(out.Values, converted)
			}
		}
		return out
	case *ast.Declaration:
		switch v.Name() {
		case keywordEnum:
			if len(v.Elements) != 2 {
				self.report(v, exc.CodeOperandCount, ".enum takes a type descriptor and a constant name")
				return nil
			}
			typ, ok := v.Elements[0].(*ast.Identifier)
			if !ok || !descriptor.IsValidFieldDescriptor(typ.Content()) {
				self.report(v.Elements[0], exc.CodeInvalidDescriptor, "expected an enum type descriptor")
				return nil
			}
			name, ok := v.Elements[1].(*ast.Identifier)
			if !ok {
				self.report(v.Elements[1], exc.CodeOperandKind, "expected an enum constant name")
				return nil
			}
			return &ast.EnumConstant{Keyword: v.Keyword, Type: &ast.TypeReference{Name: typ}, Name: name}
		case keywordAnnotation, keywordInvisible:
			if a := self.annotation(v); a != nil {
				return a
			}
			return nil
		}
	}
	self.report(n, exc.CodeInvalidValue, "%s is not an annotation value", describe(n))
	return nil
}

func describe(n ast.Node) string {
	if d, ok := n.(*ast.Declaration); ok {
		return fmt.Sprintf("declaration %s", d.Name())
	}
	return n.Kind().String()
}
