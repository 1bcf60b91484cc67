package bytecode

import (
	"fmt"
)

// ClassView is a read-only introspection surface over a class. Slices
// returned by a view are copies.
type ClassView interface {
	Version() uint16
	Access() Access
	Name() string
	Super() string
	Interfaces() []string
	Signature() string
	SourceFile() string
	Annotations() []*Annotation
	InnerClasses() []InnerClass
	NestHost() string
	NestMembers() []string
	PermittedSubclasses() []string
	RecordComponents() []RecordComponent
	Fields() []FieldView
	Methods() []MethodView
}

type FieldView interface {
	Access() Access
	Name() string
	Descriptor() string
	Signature() string
	Value() Constant
	Annotations() []*Annotation
}

type MethodView interface {
	Access() Access
	Name() string
	Descriptor() string
	Signature() string
	Exceptions() []string
	Annotations() []*Annotation
	ParameterNames() []string
	// Code is nil for abstract and native methods.
	Code() CodeView
}

// Located is an instruction with its byte offset.
type Located struct {
	Offset int
	Insn   Instruction
}

type CodeView interface {
	Instructions() []Located
	LabelOffset(l *Label) (int, bool)
	Length() int
	Handlers() []Handler
	Locals() []LocalVariable
	MaxStack() int
	MaxLocals() int
	Frames() []Frame
}

// View lays out every method body and returns a view over the model.
func View(model *ClassModel) (ClassView, error) {
	v := &classView{model: model}
	for _, m := range model.Methods {
		mv := &methodView{model: m}
		if m.Code != nil {
			layout, err := NewLayout(m.Code)
			if err != nil {
				return nil, fmt.Errorf("%s%s: %w", m.Name, m.Descriptor, err)
			}
			mv.code = newCodeView(m.Code, layout)
		}
		v.methods = append(v.methods, mv)
	}
	return v, nil
}

type classView struct {
	model   *ClassModel
	methods []MethodView
}

func (self *classView) Version() uint16 {
	if self.model.Version == 0 {
		return DefaultVersion
	}
	return self.model.Version
}

func (self *classView) Access() Access             { return self.model.Access }
func (self *classView) Name() string               { return self.model.Name }
func (self *classView) Super() string              { return self.model.Super }
func (self *classView) Interfaces() []string       { return append([]string(nil), self.model.Interfaces...) }
func (self *classView) Signature() string          { return self.model.Signature }
func (self *classView) SourceFile() string         { return self.model.SourceFile }
func (self *classView) Annotations() []*Annotation { return append([]*Annotation(nil), self.model.Annotations...) }
func (self *classView) InnerClasses() []InnerClass { return append([]InnerClass(nil), self.model.InnerClasses...) }
func (self *classView) NestHost() string           { return self.model.NestHost }
func (self *classView) NestMembers() []string      { return append([]string(nil), self.model.NestMembers...) }
func (self *classView) PermittedSubclasses() []string {
	return append([]string(nil), self.model.PermittedSubclasses...)
}
func (self *classView) RecordComponents() []RecordComponent {
	return append([]RecordComponent(nil), self.model.RecordComponents...)
}
func (self *classView) Methods() []MethodView { return append([]MethodView(nil), self.methods...) }

func (self *classView) Fields() []FieldView {
	out := make([]FieldView, 0, len(self.model.Fields))
	for _, f := range self.model.Fields {
		out = append(out, &fieldView{model: f})
	}
	return out
}

type fieldView struct {
	model *FieldModel
}

func (self *fieldView) Access() Access             { return self.model.Access }
func (self *fieldView) Name() string               { return self.model.Name }
func (self *fieldView) Descriptor() string         { return self.model.Descriptor }
func (self *fieldView) Signature() string          { return self.model.Signature }
func (self *fieldView) Value() Constant            { return self.model.Value }
func (self *fieldView) Annotations() []*Annotation { return append([]*Annotation(nil), self.model.Annotations...) }

type methodView struct {
	model *MethodModel
	code  CodeView
}

func (self *methodView) Access() Access             { return self.model.Access }
func (self *methodView) Name() string               { return self.model.Name }
func (self *methodView) Descriptor() string         { return self.model.Descriptor }
func (self *methodView) Signature() string          { return self.model.Signature }
func (self *methodView) Exceptions() []string       { return append([]string(nil), self.model.Exceptions...) }
func (self *methodView) Annotations() []*Annotation { return append([]*Annotation(nil), self.model.Annotations...) }
func (self *methodView) ParameterNames() []string   { return append([]string(nil), self.model.ParameterNames...) }
func (self *methodView) Code() CodeView             { return self.code }

type codeView struct {
	code         *Code
	instructions []Located
	labels       map[*Label]int
	length       int
}

func newCodeView(code *Code, layout *Layout) *codeView {
	v := &codeView{
		code:   code,
		labels: layout.Labels,
		length: layout.Size,
	}
	for x, e := range code.Elements {
		if insn, ok := e.(Instruction); ok {
			v.instructions = append(v.instructions, Located{Offset: layout.Offsets[x], Insn: insn})
		}
	}
	return v
}

func (self *codeView) Instructions() []Located {
	return append([]Located(nil), self.instructions...)
}

func (self *codeView) LabelOffset(l *Label) (int, bool) {
	o, ok := self.labels[l]
	return o, ok
}

func (self *codeView) Length() int             { return self.length }
func (self *codeView) Handlers() []Handler     { return append([]Handler(nil), self.code.Handlers...) }
func (self *codeView) Locals() []LocalVariable { return append([]LocalVariable(nil), self.code.Locals...) }
func (self *codeView) MaxStack() int           { return int(self.code.MaxStack) }
func (self *codeView) MaxLocals() int          { return int(self.code.MaxLocals) }
func (self *codeView) Frames() []Frame         { return append([]Frame(nil), self.code.Frames...) }
