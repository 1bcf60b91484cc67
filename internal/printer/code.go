package printer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.microglot.org/jasm/internal/bytecode"
	"gopkg.microglot.org/jasm/internal/descriptor"
	"gopkg.microglot.org/jasm/internal/lexer"
)

// labelName is the n-th name of the sequence A, B, ... Z, AA, AB, ...
func labelName(n int) string {
	var b []byte
	for n >= 0 {
		b = append([]byte{byte('A' + n%26)}, b...)
		n = n/26 - 1
	}
	return string(b)
}

// nameLabels names the offsets in ascending order. Names found in taken
// are skipped.
func nameLabels(offsets []int, taken map[string]bool) map[int]string {
	sort.Ints(offsets)
	out := make(map[int]string, len(offsets))
	n := 0
	for _, o := range offsets {
		name := labelName(n)
		for taken[name] {
			n = n + 1
			name = labelName(n)
		}
		out[o] = name
		n = n + 1
	}
	return out
}

// targetOffsets lists every offset that a branch, a switch or an exception
// table row refers to.
func targetOffsets(code bytecode.CodeView, insns []bytecode.Located) []int {
	seen := make(map[int]bool)
	add := func(l *bytecode.Label) {
		if o, ok := code.LabelOffset(l); ok {
			seen[o] = true
		}
	}
	for _, li := range insns {
		for _, l := range bytecode.Targets(li.Insn) {
			add(l)
		}
	}
	for _, h := range code.Handlers() {
		add(h.Start)
		add(h.End)
		add(h.Handler)
	}
	out := make([]int, 0, len(seen))
	for o := range seen {
		out = append(out, o)
	}
	return out
}

// operandWords lists the bare words an instruction prints besides its
// mnemonic and variables.
func operandWords(insn bytecode.Instruction) []string {
	switch v := insn.(type) {
	case *bytecode.TypeInsn:
		return []string{v.Type}
	case *bytecode.FieldInsn:
		return []string{v.Owner, v.Name}
	case *bytecode.MethodInsn:
		return []string{v.Owner, v.Name}
	case *bytecode.InvokeDynamicInsn:
		return []string{v.Name, v.Bootstrap.Owner, v.Bootstrap.Name}
	case *bytecode.MultiANewArrayInsn:
		return []string{v.Descriptor}
	case *bytecode.LdcInsn:
		switch c := v.Constant.(type) {
		case bytecode.Type:
			return []string{string(c)}
		case bytecode.String:
			return []string{string(c)}
		}
	}
	return nil
}

func isSynthesized(name string) bool {
	if len(name) < 2 || name[0] != 'v' {
		return false
	}
	_, err := strconv.ParseUint(name[1:], 10, 16)
	return err == nil
}

// usableName reports whether a recorded name can be printed as a variable
// operand and read back as the same variable.
func usableName(name string) bool {
	return lexer.IsIdentifier(name) && name != "*" && !isSynthesized(name)
}

// parameterNames returns the recorded parameter names when all of them can
// be printed.
func parameterNames(m bytecode.MethodView) []string {
	names := m.ParameterNames()
	if len(names) == 0 {
		return nil
	}
	types, _, err := descriptor.ParseMethod(m.Descriptor())
	if err != nil || len(names) > len(types) {
		return nil
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if !usableName(n) || n == "this" || seen[n] {
			return nil
		}
		seen[n] = true
	}
	return names
}

type variableRange struct {
	slot  uint16
	start int
	end   int
	name  string
}

type binding struct {
	name string
	slot uint16
}

// variableNames resolves the display name of a slot at an offset. The
// receiver and named parameters hold their slot for the whole body; local
// variable table names apply within their range.
type variableNames struct {
	fixed  map[uint16]string
	ranges []variableRange
	used   map[string]uint16
}

func newVariableNames(m bytecode.MethodView, code bytecode.CodeView, params []string) *variableNames {
	self := &variableNames{fixed: make(map[uint16]string), used: make(map[string]uint16)}
	instance := !m.Access().Has(bytecode.AccStatic)
	if instance {
		self.fixed[0] = "this"
	}
	slots := descriptor.ParameterSlots(m.Descriptor(), instance)
	reserved := map[string]bool{"this": true}
	for x, name := range params {
		if x < len(slots) {
			self.fixed[uint16(slots[x])] = name
			reserved[name] = true
		}
	}

	locals := code.Locals()
	bySlot := make(map[string]map[uint16]bool)
	for _, l := range locals {
		if bySlot[l.Name] == nil {
			bySlot[l.Name] = make(map[uint16]bool)
		}
		bySlot[l.Name][l.Index] = true
	}
	for _, l := range locals {
		// A name bound to several slots cannot be declared once.
		if !usableName(l.Name) || reserved[l.Name] || len(bySlot[l.Name]) != 1 {
			continue
		}
		start, ok := code.LabelOffset(l.Start)
		if !ok {
			continue
		}
		end, ok := code.LabelOffset(l.End)
		if !ok {
			continue
		}
		self.ranges = append(self.ranges, variableRange{slot: l.Index, start: start, end: end, name: l.Name})
	}
	return self
}

func (self *variableNames) at(slot uint16, offset int) string {
	if name, ok := self.fixed[slot]; ok {
		return name
	}
	for _, r := range self.ranges {
		if r.slot == slot && offset >= r.start && offset < r.end {
			self.used[r.name] = slot
			return r.name
		}
	}
	return "v" + strconv.Itoa(int(slot))
}

// words lists every name a variable may be printed as.
func (self *variableNames) words() map[string]bool {
	out := make(map[string]bool)
	for _, name := range self.fixed {
		out[name] = true
	}
	for _, r := range self.ranges {
		out[r.name] = true
	}
	return out
}

// declared lists the table names that were printed, ordered by slot.
func (self *variableNames) declared() []binding {
	out := make([]binding, 0, len(self.used))
	for name, slot := range self.used {
		out = append(out, binding{name: name, slot: slot})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].slot != out[j].slot {
			return out[i].slot < out[j].slot
		}
		return out[i].name < out[j].name
	})
	return out
}

// codePrinter holds the state of printing one code body.
type codePrinter struct {
	code   bytecode.CodeView
	insns  []bytecode.Located
	names  *variableNames
	labels map[int]string
	frames bool
}

func newCodePrinter(m bytecode.MethodView, code bytecode.CodeView, params []string, frames bool) *codePrinter {
	self := &codePrinter{
		code:   code,
		insns:  code.Instructions(),
		names:  newVariableNames(m, code, params),
		frames: frames,
	}
	taken := self.names.words()
	for _, li := range self.insns {
		for _, w := range operandWords(li.Insn) {
			taken[w] = true
		}
	}
	self.labels = nameLabels(targetOffsets(code, self.insns), taken)
	return self
}

func (self *codePrinter) label(l *bytecode.Label) string {
	o, ok := self.code.LabelOffset(l)
	if !ok {
		return "?"
	}
	return self.labels[o]
}

// lines prints the body. Labels and frame comments come before the
// instruction at their offset.
func (self *codePrinter) lines() []string {
	frames := make(map[int]bytecode.Frame)
	if self.frames {
		for _, f := range self.code.Frames() {
			if o, ok := self.code.LabelOffset(f.Label); ok {
				frames[o] = f
			}
		}
	}
	var out []string
	mark := func(offset int) {
		if f, ok := frames[offset]; ok {
			out = append(out, self.frame(f))
		}
		if name, ok := self.labels[offset]; ok {
			out = append(out, name+":")
		}
	}
	for x, li := range self.insns {
		mark(li.Offset)
		out = append(out, self.instruction(x, li))
	}
	mark(self.code.Length())
	return out
}

// handlers prints the exception table or returns an empty string.
func (self *codePrinter) handlers() string {
	handlers := self.code.Handlers()
	if len(handlers) == 0 {
		return ""
	}
	rows := make([]string, 0, len(handlers))
	for _, h := range handlers {
		typ := h.Type
		if typ == "" {
			typ = "*"
		}
		rows = append(rows, fmt.Sprintf("{ %s, %s, %s, %s }", self.label(h.Start), self.label(h.End), self.label(h.Handler), typ))
	}
	return "{ " + strings.Join(rows, ", ") + " }"
}

// variable names slot for the instruction at index x. A store names the
// variable it starts, which becomes live after the instruction.
func (self *codePrinter) variable(x int, op bytecode.Opcode, slot uint16) string {
	offset := self.insns[x].Offset
	if bytecode.IsStore(op) && op != bytecode.OpIinc {
		offset = self.code.Length()
		if x+1 < len(self.insns) {
			offset = self.insns[x+1].Offset
		}
	}
	return self.names.at(slot, offset)
}

func (self *codePrinter) instruction(x int, li bytecode.Located) string {
	switch insn := li.Insn.(type) {
	case *bytecode.SimpleInsn:
		if general, slot, ok := bytecode.ImplicitVar(insn.Op); ok {
			return general.String() + " " + self.variable(x, general, slot)
		}
		return insn.Op.String()
	case *bytecode.IntInsn:
		if insn.Op == bytecode.OpNewarray {
			if d, ok := bytecode.NewArrayTypes[insn.Operand]; ok {
				if name, ok := descriptor.PrimitiveName(d); ok {
					return insn.Op.String() + " " + name
				}
			}
		}
		return fmt.Sprintf("%s %d", insn.Op, insn.Operand)
	case *bytecode.VarInsn:
		return insn.Op.String() + " " + self.variable(x, insn.Op, insn.Var)
	case *bytecode.IincInsn:
		return fmt.Sprintf("iinc %s %d", self.variable(x, bytecode.OpIinc, insn.Var), insn.Increment)
	case *bytecode.TypeInsn:
		return insn.Op.String() + " " + insn.Type
	case *bytecode.FieldInsn:
		return fmt.Sprintf("%s %s.%s %s", insn.Op, insn.Owner, insn.Name, insn.Descriptor)
	case *bytecode.MethodInsn:
		mnemonic := insn.Op.String()
		if insn.Interface {
			switch insn.Op {
			case bytecode.OpInvokestatic:
				mnemonic = "invokestaticinterface"
			case bytecode.OpInvokespecial:
				mnemonic = "invokespecialinterface"
			}
		}
		return fmt.Sprintf("%s %s.%s %s", mnemonic, insn.Owner, insn.Name, insn.Descriptor)
	case *bytecode.InvokeDynamicInsn:
		args := "{}"
		if len(insn.Arguments) > 0 {
			values := make([]string, 0, len(insn.Arguments))
			for _, a := range insn.Arguments {
				values = append(values, constant(a))
			}
			args = "{ " + strings.Join(values, ", ") + " }"
		}
		return fmt.Sprintf("invokedynamic %s %s %s %s", insn.Name, insn.Descriptor, handle(insn.Bootstrap), args)
	case *bytecode.JumpInsn:
		return insn.Op.String() + " " + self.label(insn.Target)
	case *bytecode.LdcInsn:
		return insn.Opcode().String() + " " + constant(insn.Constant)
	case *bytecode.TableSwitchInsn:
		cases := make([]string, 0, len(insn.Targets))
		for _, l := range insn.Targets {
			cases = append(cases, self.label(l))
		}
		return fmt.Sprintf("tableswitch { min: %d, max: %d, cases: { %s }, default: %s }", insn.Min, insn.Max, strings.Join(cases, ", "), self.label(insn.Default))
	case *bytecode.LookupSwitchInsn:
		entries := make([]string, 0, len(insn.Keys)+1)
		for x, k := range insn.Keys {
			entries = append(entries, fmt.Sprintf("%d: %s", k, self.label(insn.Targets[x])))
		}
		entries = append(entries, "default: "+self.label(insn.Default))
		return "lookupswitch { " + strings.Join(entries, ", ") + " }"
	case *bytecode.MultiANewArrayInsn:
		return fmt.Sprintf("multianewarray %s %d", insn.Descriptor, insn.Dimensions)
	}
	return li.Insn.Opcode().String()
}

func (self *codePrinter) frame(f bytecode.Frame) string {
	types := func(values []bytecode.VerificationType) string {
		out := make([]string, 0, len(values))
		for _, v := range values {
			out = append(out, self.verification(v))
		}
		return "[" + strings.Join(out, ", ") + "]"
	}
	return fmt.Sprintf("// frame locals %s stack %s", types(f.Locals), types(f.Stack))
}

func (self *codePrinter) verification(v bytecode.VerificationType) string {
	switch v.Kind {
	case bytecode.VerifyTop:
		return "top"
	case bytecode.VerifyInteger:
		return "int"
	case bytecode.VerifyFloat:
		return "float"
	case bytecode.VerifyDouble:
		return "double"
	case bytecode.VerifyLong:
		return "long"
	case bytecode.VerifyNull:
		return "null"
	case bytecode.VerifyUninitializedThis:
		return "uninitializedThis"
	case bytecode.VerifyUninitialized:
		if o, ok := self.code.LabelOffset(v.New); ok {
			return fmt.Sprintf("uninitialized@%d", o)
		}
		return "uninitialized"
	}
	return v.Name
}
