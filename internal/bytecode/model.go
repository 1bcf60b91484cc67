// Package bytecode is an in-memory class model with a code builder, an
// offset layout, read-only views and a binary image codec.
package bytecode

// DefaultVersion is the class file major version used when none is set.
const DefaultVersion uint16 = 61

type ClassModel struct {
	Version             uint16
	Access              Access
	Name                string
	Super               string
	Interfaces          []string
	Signature           string
	SourceFile          string
	Annotations         []*Annotation
	InnerClasses        []InnerClass
	NestHost            string
	NestMembers         []string
	PermittedSubclasses []string
	RecordComponents    []RecordComponent
	Fields              []*FieldModel
	Methods             []*MethodModel
}

type FieldModel struct {
	Access      Access
	Name        string
	Descriptor  string
	Signature   string
	Value       Constant
	Annotations []*Annotation
}

type MethodModel struct {
	Access         Access
	Name           string
	Descriptor     string
	Signature      string
	Exceptions     []string
	Annotations    []*Annotation
	ParameterNames []string
	Code           *Code
}

type Annotation struct {
	// Type is the annotation's field descriptor.
	Type     string
	Visible  bool
	Elements []AnnotationElement
}

type AnnotationElement struct {
	Name  string
	Value AnnotationValue
}

type InnerClass struct {
	Name      string
	Outer     string
	InnerName string
	Access    Access
}

type RecordComponent struct {
	Name       string
	Descriptor string
	Signature  string
}

// Field finds a field by name and descriptor.
func (self *ClassModel) Field(name string, descriptor string) (*FieldModel, int) {
	for x, f := range self.Fields {
		if f.Name == name && f.Descriptor == descriptor {
			return f, x
		}
	}
	return nil, -1
}

// Method finds a method by name and descriptor.
func (self *ClassModel) Method(name string, descriptor string) (*MethodModel, int) {
	for x, m := range self.Methods {
		if m.Name == name && m.Descriptor == descriptor {
			return m, x
		}
	}
	return nil, -1
}

// PutField adds f or replaces the field with the same name and descriptor.
// It reports whether a field was replaced.
func (self *ClassModel) PutField(f *FieldModel) bool {
	if _, x := self.Field(f.Name, f.Descriptor); x >= 0 {
		self.Fields[x] = f
		return true
	}
	self.Fields = append(self.Fields, f)
	return false
}

// PutMethod adds m or replaces the method with the same name and descriptor.
func (self *ClassModel) PutMethod(m *MethodModel) bool {
	if _, x := self.Method(m.Name, m.Descriptor); x >= 0 {
		self.Methods[x] = m
		return true
	}
	self.Methods = append(self.Methods, m)
	return false
}

// Clone copies the class and its member lists so that members can be added
// or replaced without touching the original. Code bodies are shared.
func (self *ClassModel) Clone() *ClassModel {
	out := *self
	out.Interfaces = append([]string(nil), self.Interfaces...)
	out.Annotations = append([]*Annotation(nil), self.Annotations...)
	out.InnerClasses = append([]InnerClass(nil), self.InnerClasses...)
	out.NestMembers = append([]string(nil), self.NestMembers...)
	out.PermittedSubclasses = append([]string(nil), self.PermittedSubclasses...)
	out.RecordComponents = append([]RecordComponent(nil), self.RecordComponents...)
	out.Fields = make([]*FieldModel, 0, len(self.Fields))
	for _, f := range self.Fields {
		c := *f
		c.Annotations = append([]*Annotation(nil), f.Annotations...)
		out.Fields = append(out.Fields, &c)
	}
	out.Methods = make([]*MethodModel, 0, len(self.Methods))
	for _, m := range self.Methods {
		c := *m
		c.Annotations = append([]*Annotation(nil), m.Annotations...)
		c.Exceptions = append([]string(nil), m.Exceptions...)
		c.ParameterNames = append([]string(nil), m.ParameterNames...)
		out.Methods = append(out.Methods, &c)
	}
	return &out
}
