// Package instructions maps every mnemonic to its operand signature and to
// the typed visitor call it lowers to.
package instructions

import (
	"fmt"
	"sort"

	"gopkg.microglot.org/jasm/internal/ast"
	"gopkg.microglot.org/jasm/internal/bytecode"
	"gopkg.microglot.org/jasm/internal/exc"
	"gopkg.microglot.org/jasm/internal/jasm"
)

// InstructionVisitor receives lowered instructions with typed operands.
// Labels are passed by name.
type InstructionVisitor interface {
	VisitInsn(op bytecode.Opcode)
	VisitIntInsn(op bytecode.Opcode, operand int32)
	VisitVarInsn(op bytecode.Opcode, v Var)
	VisitIincInsn(v Var, increment int16)
	VisitTypeInsn(op bytecode.Opcode, typ string)
	VisitFieldInsn(op bytecode.Opcode, owner string, name string, desc string)
	VisitMethodInsn(op bytecode.Opcode, owner string, name string, desc string, itf bool)
	VisitInvokeDynamicInsn(name string, desc string, bootstrap bytecode.Handle, args []bytecode.Constant)
	VisitJumpInsn(op bytecode.Opcode, label string)
	VisitLdcInsn(c bytecode.Constant)
	VisitTableSwitchInsn(min int32, max int32, dflt string, labels []string)
	VisitLookupSwitchInsn(dflt string, keys []int32, labels []string)
	VisitMultiANewArrayInsn(desc string, dimensions uint8)
	VisitLabel(name string)
}

// Entry is the registry record for one mnemonic.
type Entry struct {
	Mnemonic string
	Opcode   bytecode.Opcode
	Operands []OperandKind
	check    func(ops []Operand) exc.Exception
	lower    func(ops []Operand, v InstructionVisitor)
}

// Verify checks the arguments of insn against the signature. A count
// mismatch is reported alone; otherwise every failing operand is reported.
// The operands are only usable when no errors were returned.
func (self *Entry) Verify(insn *ast.Instruction) ([]Operand, []exc.Exception) {
	if len(insn.Args) != len(self.Operands) {
		return nil, []exc.Exception{exc.Newf(
			insn.Location(),
			exc.CodeOperandCount,
			"%s takes %d operands but %d were given",
			self.Mnemonic, len(self.Operands), len(insn.Args),
		)}
	}
	var errs []exc.Exception
	ops := make([]Operand, len(self.Operands))
	for x, kind := range self.Operands {
		if insn.Args[x] == nil {
			return nil, []exc.Exception{exc.Newf(insn.Location(), exc.CodeMissingOperand, "%s is missing operand %d", self.Mnemonic, x+1)}
		}
		op, err := verifyOperand(kind, insn.Args[x])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ops[x] = op
	}
	if len(errs) == 0 && self.check != nil {
		if err := self.check(ops); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return ops, nil
}

// Lower calls the visitor method for verified operands.
func (self *Entry) Lower(ops []Operand, v InstructionVisitor) {
	self.lower(ops, v)
}

// Registry is built once per target and only read afterwards, so a single
// value is shared by concurrent compilations.
type Registry struct {
	target  jasm.Target
	entries map[string]*Entry
}

func (self *Registry) Target() jasm.Target {
	return self.target
}

func (self *Registry) Lookup(mnemonic string) (*Entry, bool) {
	e, ok := self.entries[mnemonic]
	return e, ok
}

// Mnemonics lists every known mnemonic, sorted.
func (self *Registry) Mnemonics() []string {
	out := make([]string, 0, len(self.entries))
	for m := range self.entries {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

var jvm = buildJVM()

// For returns the registry of a target. Only the JVM is implemented.
func For(target jasm.Target) (*Registry, exc.Exception) {
	if target == jasm.TargetJVM {
		return jvm, nil
	}
	return nil, exc.Newf(jasm.Location{}, exc.CodeUnsupportedTarget, "unsupported target %s", target)
}

func buildJVM() *Registry {
	r := &Registry{target: jasm.TargetJVM, entries: make(map[string]*Entry)}
	for op := bytecode.Opcode(0); op <= bytecode.MaxOpcode; op = op + 1 {
		if e := entryFor(op); e != nil {
			r.entries[e.Mnemonic] = e
		}
	}
	for _, pseudo := range []struct {
		name string
		op   bytecode.Opcode
	}{
		{"invokestaticinterface", bytecode.OpInvokestatic},
		{"invokespecialinterface", bytecode.OpInvokespecial},
	} {
		op := pseudo.op
		r.entries[pseudo.name] = &Entry{
			Mnemonic: pseudo.name,
			Opcode:   op,
			Operands: []OperandKind{KindMethodRef, KindMethodDescriptor},
			lower: func(ops []Operand, v InstructionVisitor) {
				v.VisitMethodInsn(op, ops[0].Owner, ops[0].Name, ops[1].Text, true)
			},
		}
	}
	return r
}

func entryFor(op bytecode.Opcode) *Entry {
	e := &Entry{Mnemonic: op.String(), Opcode: op}
	switch op.Format() {
	case bytecode.FormatNone:
		e.lower = func(ops []Operand, v InstructionVisitor) { v.VisitInsn(op) }
	case bytecode.FormatByte:
		e.Operands = []OperandKind{KindByte}
		e.lower = func(ops []Operand, v InstructionVisitor) { v.VisitIntInsn(op, ops[0].Int) }
	case bytecode.FormatShort:
		e.Operands = []OperandKind{KindShort}
		e.lower = func(ops []Operand, v InstructionVisitor) { v.VisitIntInsn(op, ops[0].Int) }
	case bytecode.FormatNewArray:
		e.Operands = []OperandKind{KindPrimitive}
		e.lower = func(ops []Operand, v InstructionVisitor) { v.VisitIntInsn(op, ops[0].Int) }
	case bytecode.FormatLdc, bytecode.FormatLdcWide:
		wide := op.Format() == bytecode.FormatLdcWide
		e.Operands = []OperandKind{KindConstant}
		e.check = func(ops []Operand) exc.Exception {
			if bytecode.IsWide(ops[0].Constant) != wide {
				want := "a single word constant"
				if wide {
					want = "a long or double constant"
				}
				return exc.Newf(ops[0].Node.Location(), exc.CodeOperandKind, "%s expects %s", op, want)
			}
			return nil
		}
		e.lower = func(ops []Operand, v InstructionVisitor) { v.VisitLdcInsn(ops[0].Constant) }
	case bytecode.FormatVar:
		e.Operands = []OperandKind{KindVar}
		e.lower = func(ops []Operand, v InstructionVisitor) { v.VisitVarInsn(op, ops[0].Var) }
	case bytecode.FormatVarImplicit:
		general, slot, _ := bytecode.ImplicitVar(op)
		e.lower = func(ops []Operand, v InstructionVisitor) {
			v.VisitVarInsn(general, Var{Slot: slot, IsSlot: true})
		}
	case bytecode.FormatIinc:
		e.Operands = []OperandKind{KindVar, KindIncrement}
		e.lower = func(ops []Operand, v InstructionVisitor) { v.VisitIincInsn(ops[0].Var, int16(ops[1].Int)) }
	case bytecode.FormatJump, bytecode.FormatJumpWide:
		e.Operands = []OperandKind{KindLabel}
		e.lower = func(ops []Operand, v InstructionVisitor) { v.VisitJumpInsn(op, ops[0].Text) }
	case bytecode.FormatTableSwitch:
		e.Operands = []OperandKind{KindTableSwitch}
		e.lower = func(ops []Operand, v InstructionVisitor) {
			s := ops[0].Switch
			v.VisitTableSwitchInsn(s.Min, s.Max, s.Default, s.Labels)
		}
	case bytecode.FormatLookupSwitch:
		e.Operands = []OperandKind{KindLookupSwitch}
		e.lower = func(ops []Operand, v InstructionVisitor) {
			s := ops[0].Switch
			v.VisitLookupSwitchInsn(s.Default, s.Keys, s.Labels)
		}
	case bytecode.FormatField:
		e.Operands = []OperandKind{KindFieldRef, KindFieldDescriptor}
		e.lower = func(ops []Operand, v InstructionVisitor) {
			v.VisitFieldInsn(op, ops[0].Owner, ops[0].Name, ops[1].Text)
		}
	case bytecode.FormatMethod, bytecode.FormatInterfaceMethod:
		itf := op.Format() == bytecode.FormatInterfaceMethod
		e.Operands = []OperandKind{KindMethodRef, KindMethodDescriptor}
		e.lower = func(ops []Operand, v InstructionVisitor) {
			v.VisitMethodInsn(op, ops[0].Owner, ops[0].Name, ops[1].Text, itf)
		}
	case bytecode.FormatDynamic:
		e.Operands = []OperandKind{KindName, KindMethodDescriptor, KindHandle, KindArguments}
		e.lower = func(ops []Operand, v InstructionVisitor) {
			v.VisitInvokeDynamicInsn(ops[0].Text, ops[1].Text, ops[2].Handle, ops[3].Arguments)
		}
	case bytecode.FormatType:
		e.Operands = []OperandKind{KindType}
		e.lower = func(ops []Operand, v InstructionVisitor) { v.VisitTypeInsn(op, ops[0].Text) }
	case bytecode.FormatMultiANewArray:
		e.Operands = []OperandKind{KindArrayType, KindDimensions}
		e.check = func(ops []Operand) exc.Exception {
			depth := 0
			for depth < len(ops[0].Text) && ops[0].Text[depth] == '[' {
				depth = depth + 1
			}
			if int(ops[1].Int) > depth {
				return exc.Newf(ops[1].Node.Location(), exc.CodeInvalidValue, "%d dimensions exceed the %d of %s", ops[1].Int, depth, ops[0].Text)
			}
			return nil
		}
		e.lower = func(ops []Operand, v InstructionVisitor) {
			v.VisitMultiANewArrayInsn(ops[0].Text, uint8(ops[1].Int))
		}
	default:
		// wide is an encoding detail with no source form.
		return nil
	}
	return e
}

// String renders a signature for diagnostics and the REPL.
func (self *Entry) String() string {
	s := self.Mnemonic
	for _, k := range self.Operands {
		s = s + fmt.Sprintf(" <%s>", k)
	}
	return s
}
