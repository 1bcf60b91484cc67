// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"gopkg.microglot.org/jasm/internal/bytecode"
	"gopkg.microglot.org/jasm/internal/descriptor"
	"gopkg.microglot.org/jasm/internal/exc"
	"gopkg.microglot.org/jasm/internal/instructions"
	"gopkg.microglot.org/jasm/internal/transformer"
)

// unitBuilder holds what every visitor of one unit writes into.
type unitBuilder struct {
	uri       string
	model     *bytecode.ClassModel
	overlay   bool
	target    annotationTarget
	locations map[string]exc.Location
	reporter  exc.Reporter
	// compiled lists the methods built from source, in visit order.
	compiled []*bytecode.MethodModel
}

func (self *unitBuilder) location(kind string, name string, desc string) exc.Location {
	if loc, ok := self.locations[memberKey(kind, name, desc)]; ok {
		return loc
	}
	return exc.Location{URI: self.uri}
}

func (self *unitBuilder) report(loc exc.Location, code string, format string, args ...interface{}) {
	_ = self.reporter.Report(exc.Newf(loc, code, format, args...))
}

func (self *unitBuilder) VisitField(access bytecode.Access, name string, desc string) transformer.FieldVisitor {
	return &fieldBuilder{unit: self, field: &bytecode.FieldModel{Access: access, Name: name, Descriptor: desc}}
}

func (self *unitBuilder) VisitMethod(access bytecode.Access, name string, desc string) transformer.MethodVisitor {
	return &methodBuilder{unit: self, method: &bytecode.MethodModel{Access: access, Name: name, Descriptor: desc}}
}

func (self *unitBuilder) putField(f *bytecode.FieldModel) {
	if self.model.PutField(f) && self.overlay {
		self.reporter.Warn(exc.Newf(self.location("field", f.Name, f.Descriptor), exc.CodeReplacedMember, "field %s %s replaces the overlay's field", f.Name, f.Descriptor))
	}
}

func (self *unitBuilder) putMethod(m *bytecode.MethodModel) {
	if self.model.PutMethod(m) && self.overlay {
		self.reporter.Warn(exc.Newf(self.location("method", m.Name, m.Descriptor), exc.CodeReplacedMember, "method %s%s replaces the overlay's method", m.Name, m.Descriptor))
	}
	self.compiled = append(self.compiled, m)
}

type rootBuilder struct {
	*unitBuilder
}

func (self rootBuilder) VisitType(access bytecode.Access, name string, super string, interfaces []string) transformer.TypeVisitor {
	if super == "" && name != "java/lang/Object" {
		super = "java/lang/Object"
	}
	self.model.Access = access
	self.model.Name = name
	self.model.Super = super
	self.model.Interfaces = interfaces
	return typeBuilder{self.unitBuilder}
}

// VisitAnnotation attaches a standalone annotation to the configured
// annotation target of the overlay.
func (self rootBuilder) VisitAnnotation(a *bytecode.Annotation) {
	loc := exc.Location{URI: self.uri}
	switch self.target.kind {
	case annotateClass:
		self.model.Annotations = append(self.model.Annotations, a)
	case annotateField:
		f, _ := self.model.Field(self.target.name, self.target.descriptor)
		if f == nil {
			self.report(loc, exc.CodeInvalidAnnotationTarget, "the overlay has no field %s %s", self.target.name, self.target.descriptor)
			return
		}
		f.Annotations = append(f.Annotations, a)
	case annotateMethod:
		m, _ := self.model.Method(self.target.name, self.target.descriptor)
		if m == nil {
			self.report(loc, exc.CodeInvalidAnnotationTarget, "the overlay has no method %s%s", self.target.name, self.target.descriptor)
			return
		}
		m.Annotations = append(m.Annotations, a)
	}
}

type typeBuilder struct {
	*unitBuilder
}

func (self typeBuilder) VisitSignature(signature string) {
	self.model.Signature = signature
}

func (self typeBuilder) VisitSource(file string) {
	self.model.SourceFile = file
}

func (self typeBuilder) VisitInnerClass(inner bytecode.InnerClass) {
	self.model.InnerClasses = append(self.model.InnerClasses, inner)
}

func (self typeBuilder) VisitNestHost(host string) {
	self.model.NestHost = host
}

func (self typeBuilder) VisitNestMember(member string) {
	self.model.NestMembers = append(self.model.NestMembers, member)
}

func (self typeBuilder) VisitPermittedSubclass(subclass string) {
	self.model.PermittedSubclasses = append(self.model.PermittedSubclasses, subclass)
}

func (self typeBuilder) VisitRecordComponent(component bytecode.RecordComponent) {
	self.model.RecordComponents = append(self.model.RecordComponents, component)
}

func (self typeBuilder) VisitAnnotation(a *bytecode.Annotation) {
	self.model.Annotations = append(self.model.Annotations, a)
}

func (self typeBuilder) VisitEnd() {}

type fieldBuilder struct {
	unit  *unitBuilder
	field *bytecode.FieldModel
}

func (self *fieldBuilder) VisitSignature(signature string) {
	self.field.Signature = signature
}

func (self *fieldBuilder) VisitAnnotation(a *bytecode.Annotation) {
	self.field.Annotations = append(self.field.Annotations, a)
}

func (self *fieldBuilder) VisitValue(c bytecode.Constant) {
	self.field.Value = c
}

func (self *fieldBuilder) VisitEnd() {
	self.unit.putField(self.field)
}

type methodBuilder struct {
	unit   *unitBuilder
	method *bytecode.MethodModel
	params []string
	locals []local
}

func (self *methodBuilder) VisitSignature(signature string) {
	self.method.Signature = signature
}

func (self *methodBuilder) VisitAnnotation(a *bytecode.Annotation) {
	self.method.Annotations = append(self.method.Annotations, a)
}

func (self *methodBuilder) VisitException(typ string) {
	self.method.Exceptions = append(self.method.Exceptions, typ)
}

func (self *methodBuilder) VisitParameter(name string) {
	self.params = append(self.params, name)
}

func (self *methodBuilder) VisitLocal(name string, slot uint16) {
	self.locals = append(self.locals, local{name: name, slot: slot})
}

func (self *methodBuilder) VisitCode() transformer.CodeVisitor {
	return &codeBuilder{
		method:  self,
		builder: bytecode.NewCodeBuilder(),
		vars:    newVariables(self.unit.model.Name, self.method, self.params, self.locals),
	}
}

func (self *methodBuilder) VisitEnd() {
	if len(self.params) > 0 {
		self.method.ParameterNames = self.params
	}
	self.unit.putMethod(self.method)
}

func (self *methodBuilder) location() exc.Location {
	return self.unit.location("method", self.method.Name, self.method.Descriptor)
}

// codeBuilder lowers instructions into a code body, resolving variable
// names to slots as they are used.
type codeBuilder struct {
	method  *methodBuilder
	builder *bytecode.CodeBuilder
	vars    *variables
}

var _ instructions.InstructionVisitor = (*codeBuilder)(nil)

func (self *codeBuilder) slot(v instructions.Var, op bytecode.Opcode) uint16 {
	slot, err := self.vars.resolve(v, op)
	if err != nil {
		self.method.unit.report(self.method.location(), exc.CodeInvalidVariable, "%s", err.Error())
	}
	return slot
}

func (self *codeBuilder) labels(names []string) []*bytecode.Label {
	out := make([]*bytecode.Label, 0, len(names))
	for _, name := range names {
		out = append(out, self.builder.Label(name))
	}
	return out
}

func (self *codeBuilder) VisitInsn(op bytecode.Opcode) {
	self.builder.Add(&bytecode.SimpleInsn{Op: op})
}

func (self *codeBuilder) VisitIntInsn(op bytecode.Opcode, operand int32) {
	self.builder.Add(&bytecode.IntInsn{Op: op, Operand: operand})
}

func (self *codeBuilder) VisitVarInsn(op bytecode.Opcode, v instructions.Var) {
	self.builder.Add(&bytecode.VarInsn{Op: op, Var: self.slot(v, op)})
}

func (self *codeBuilder) VisitIincInsn(v instructions.Var, increment int16) {
	self.builder.Add(&bytecode.IincInsn{Var: self.slot(v, bytecode.OpIinc), Increment: increment})
}

func (self *codeBuilder) VisitTypeInsn(op bytecode.Opcode, typ string) {
	self.builder.Add(&bytecode.TypeInsn{Op: op, Type: typ})
}

func (self *codeBuilder) VisitFieldInsn(op bytecode.Opcode, owner string, name string, desc string) {
	self.builder.Add(&bytecode.FieldInsn{Op: op, Owner: owner, Name: name, Descriptor: desc})
}

func (self *codeBuilder) VisitMethodInsn(op bytecode.Opcode, owner string, name string, desc string, itf bool) {
	self.builder.Add(&bytecode.MethodInsn{Op: op, Owner: owner, Name: name, Descriptor: desc, Interface: itf})
}

func (self *codeBuilder) VisitInvokeDynamicInsn(name string, desc string, bootstrap bytecode.Handle, args []bytecode.Constant) {
	self.builder.Add(&bytecode.InvokeDynamicInsn{Name: name, Descriptor: desc, Bootstrap: bootstrap, Arguments: args})
}

func (self *codeBuilder) VisitJumpInsn(op bytecode.Opcode, label string) {
	self.builder.Add(&bytecode.JumpInsn{Op: op, Target: self.builder.Label(label)})
}

func (self *codeBuilder) VisitLdcInsn(c bytecode.Constant) {
	self.builder.Add(&bytecode.LdcInsn{Constant: c})
}

func (self *codeBuilder) VisitTableSwitchInsn(min int32, max int32, dflt string, labels []string) {
	self.builder.Add(&bytecode.TableSwitchInsn{Min: min, Max: max, Default: self.builder.Label(dflt), Targets: self.labels(labels)})
}

func (self *codeBuilder) VisitLookupSwitchInsn(dflt string, keys []int32, labels []string) {
	self.builder.Add(&bytecode.LookupSwitchInsn{Default: self.builder.Label(dflt), Keys: keys, Targets: self.labels(labels)})
}

func (self *codeBuilder) VisitMultiANewArrayInsn(desc string, dimensions uint8) {
	self.builder.Add(&bytecode.MultiANewArrayInsn{Descriptor: desc, Dimensions: dimensions})
}

func (self *codeBuilder) VisitLabel(name string) {
	if err := self.builder.Mark(name); err != nil {
		self.method.unit.report(self.method.location(), exc.CodeDuplicateLabel, "%s", err.Error())
	}
}

func (self *codeBuilder) VisitTryCatch(start string, end string, handler string, typ string) {
	self.builder.Handler(start, end, handler, typ)
}

// VisitEnd finishes the body and records a local variable table entry for
// every variable whose type is known.
func (self *codeBuilder) VisitEnd() {
	entries := self.vars.entries()
	if len(entries) > 0 {
		start := self.builder.Start()
		end := self.builder.End()
		for _, v := range entries {
			self.builder.Local(bytecode.LocalVariable{
				Name:       v.name,
				Descriptor: v.descriptor,
				Start:      start,
				End:        end,
				Index:      v.slot,
			})
		}
	}
	code, err := self.builder.Build()
	if err != nil {
		self.method.unit.report(self.method.location(), exc.CodeUndefinedLabel, "%s", err.Error())
		return
	}
	self.method.method.Code = code
}

// thisDescriptor is the receiver type of instance methods in owner.
func thisDescriptor(owner string) string {
	if owner == "" {
		return ""
	}
	return descriptor.FromInternalName(owner)
}
