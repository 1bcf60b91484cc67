package ast

import (
	"gopkg.microglot.org/jasm/internal/jasm"
)

// TypeReference names a class by internal name, or an annotation or class
// value by descriptor.
type TypeReference struct {
	Name *Identifier
}

func (*TypeReference) Kind() Kind                   { return KindTypeReference }
func (*TypeReference) node()                        {}
func (self *TypeReference) Location() jasm.Location { return self.Name.Location() }
func (self *TypeReference) Content() string         { return self.Name.Content() }

// MethodTypeReference is a method descriptor used as a value.
type MethodTypeReference struct {
	Descriptor *Identifier
}

func (*MethodTypeReference) Kind() Kind { return KindMethodTypeReference }
func (*MethodTypeReference) node()      {}
func (self *MethodTypeReference) Location() jasm.Location {
	return self.Descriptor.Location()
}

type Signature struct {
	Keyword *jasm.Token
	Value   *String
}

func (*Signature) Kind() Kind                   { return KindSignature }
func (*Signature) node()                        {}
func (self *Signature) Location() jasm.Location { return tokenLocation(self.Keyword) }

// Annotation is both a prefix on a declaration and, at the top level, a
// declaration of its own. Values holds element values keyed by name.
type Annotation struct {
	Keyword *jasm.Token
	Visible bool
	Type    *TypeReference
	Values  *Object
}

func (*Annotation) Kind() Kind                   { return KindAnnotation }
func (*Annotation) node()                        {}
func (self *Annotation) Location() jasm.Location { return tokenLocation(self.Keyword) }

type EnumConstant struct {
	Keyword *jasm.Token
	Type    *TypeReference
	Name    *Identifier
}

func (*EnumConstant) Kind() Kind                   { return KindEnumConstant }
func (*EnumConstant) node()                        {}
func (self *EnumConstant) Location() jasm.Location { return tokenLocation(self.Keyword) }

type InnerType struct {
	Keyword   *jasm.Token
	Modifiers []*Identifier
	Name      *Identifier
	Outer     *Identifier
	InnerName *Identifier
}

func (*InnerType) Kind() Kind                   { return KindInnerType }
func (*InnerType) node()                        {}
func (self *InnerType) Location() jasm.Location { return tokenLocation(self.Keyword) }

// TypeAttribute covers the single-valued type attributes: .nesthost,
// .nestmember, .permittedsubclass, .record-component and .sourcefile.
type TypeAttribute struct {
	Keyword *jasm.Token
	Values  []Node
}

func (*TypeAttribute) Kind() Kind                   { return KindTypeAttribute }
func (*TypeAttribute) node()                        {}
func (self *TypeAttribute) Location() jasm.Location { return tokenLocation(self.Keyword) }
func (self *TypeAttribute) Name() string            { return self.Keyword.Content }

type Type struct {
	Keyword     *jasm.Token
	Modifiers   []*Identifier
	Name        *Identifier
	Super       *TypeReference
	Interfaces  []*TypeReference
	Signature   *Signature
	Annotations []*Annotation
	Inner       []*InnerType
	Attributes  []*TypeAttribute
	// Members holds *Field and *Method in declaration order.
	Members []Node
}

func (*Type) Kind() Kind                   { return KindType }
func (*Type) node()                        {}
func (self *Type) Location() jasm.Location { return tokenLocation(self.Keyword) }

type Field struct {
	Keyword     *jasm.Token
	Modifiers   []*Identifier
	Name        *Identifier
	Descriptor  *Identifier
	Signature   *Signature
	Annotations []*Annotation
	Value       Node
}

func (*Field) Kind() Kind                   { return KindField }
func (*Field) node()                        {}
func (self *Field) Location() jasm.Location { return tokenLocation(self.Keyword) }

type Method struct {
	Keyword     *jasm.Token
	Modifiers   []*Identifier
	Name        *Identifier
	Descriptor  *Identifier
	Signature   *Signature
	Annotations []*Annotation
	Throws      []*TypeReference
	Parameters  []*Identifier
	// Locals binds variable names to slots.
	Locals     []*Entry
	Exceptions []*Exception
	Code       *Code
}

func (*Method) Kind() Kind                   { return KindMethod }
func (*Method) node()                        {}
func (self *Method) Location() jasm.Location { return tokenLocation(self.Keyword) }

// Exception is one exception table row. A nil Type catches everything.
type Exception struct {
	Open    *jasm.Token
	Start   *Identifier
	End     *Identifier
	Handler *Identifier
	Type    *TypeReference
}

func (*Exception) Kind() Kind { return KindException }
func (*Exception) node()      {}
func (self *Exception) Location() jasm.Location {
	if self.Open != nil {
		return self.Open.Location
	}
	return self.Start.Location()
}
