package transformer

import (
	"gopkg.microglot.org/jasm/internal/bytecode"
	"gopkg.microglot.org/jasm/internal/instructions"
)

// RootVisitor receives the top-level declaration of a unit. A nil
// sub-visitor skips the declaration's children.
type RootVisitor interface {
	VisitType(access bytecode.Access, name string, super string, interfaces []string) TypeVisitor
	VisitField(access bytecode.Access, name string, desc string) FieldVisitor
	VisitMethod(access bytecode.Access, name string, desc string) MethodVisitor
	VisitAnnotation(a *bytecode.Annotation)
}

type TypeVisitor interface {
	VisitSignature(signature string)
	VisitSource(file string)
	VisitInnerClass(inner bytecode.InnerClass)
	VisitNestHost(host string)
	VisitNestMember(member string)
	VisitPermittedSubclass(subclass string)
	VisitRecordComponent(component bytecode.RecordComponent)
	VisitAnnotation(a *bytecode.Annotation)
	VisitField(access bytecode.Access, name string, desc string) FieldVisitor
	VisitMethod(access bytecode.Access, name string, desc string) MethodVisitor
	VisitEnd()
}

type FieldVisitor interface {
	VisitSignature(signature string)
	VisitAnnotation(a *bytecode.Annotation)
	VisitValue(c bytecode.Constant)
	VisitEnd()
}

type MethodVisitor interface {
	VisitSignature(signature string)
	VisitAnnotation(a *bytecode.Annotation)
	// VisitException declares a thrown exception type.
	VisitException(typ string)
	VisitParameter(name string)
	VisitLocal(name string, slot uint16)
	// VisitCode returns nil to skip the body.
	VisitCode() CodeVisitor
	VisitEnd()
}

// CodeVisitor receives handlers before any instruction. An empty handler
// type catches everything.
type CodeVisitor interface {
	instructions.InstructionVisitor
	VisitTryCatch(start string, end string, handler string, typ string)
	VisitEnd()
}
