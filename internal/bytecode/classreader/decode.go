package classreader

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"gopkg.microglot.org/jasm/internal/bytecode"
)

// decoder turns a code array into model elements. Labels are created for
// every offset that something refers to and placed before the instruction
// at that offset.
type decoder struct {
	r      *reader
	b      []byte
	labels map[int]*bytecode.Label
}

func (self *decoder) label(offset int) *bytecode.Label {
	if l, ok := self.labels[offset]; ok {
		return l
	}
	l := bytecode.NewLabel(fmt.Sprintf("L%d", offset))
	self.labels[offset] = l
	return l
}

func (self *decoder) need(pc int, n int) error {
	if pc+n > len(self.b) {
		return errors.Errorf("instruction at %d runs past the end of the code", pc)
	}
	return nil
}

func (self *decoder) u1(pc int) int { return int(self.b[pc]) }
func (self *decoder) u2(pc int) uint16 {
	return binary.BigEndian.Uint16(self.b[pc:])
}
func (self *decoder) s2(pc int) int16 { return int16(self.u2(pc)) }
func (self *decoder) s4(pc int) int32 {
	return int32(binary.BigEndian.Uint32(self.b[pc:]))
}

// code decodes a code array. tail, when present, carries the exception
// table and the local variable table.
func (self *reader) code(b []byte, tail *codeAttribute) (*bytecode.Code, error) {
	d := &decoder{r: self, b: b, labels: make(map[int]*bytecode.Label)}
	type located struct {
		offset int
		insn   bytecode.Instruction
	}
	var insns []located
	for pc := 0; pc < len(b); {
		insn, size, err := d.instruction(pc)
		if err != nil {
			return nil, err
		}
		insns = append(insns, located{offset: pc, insn: insn})
		pc = pc + size
	}

	code := &bytecode.Code{}
	if tail != nil {
		if err := self.tail(d, code, tail); err != nil {
			return nil, err
		}
	}

	placed := make(map[int]bool)
	for _, l := range insns {
		if label, ok := d.labels[l.offset]; ok {
			code.Elements = append(code.Elements, label)
			placed[l.offset] = true
		}
		code.Elements = append(code.Elements, l.insn)
	}
	if label, ok := d.labels[len(b)]; ok {
		code.Elements = append(code.Elements, label)
		placed[len(b)] = true
	}
	var stray []int
	for offset := range d.labels {
		if !placed[offset] {
			stray = append(stray, offset)
		}
	}
	if len(stray) > 0 {
		sort.Ints(stray)
		return nil, errors.Errorf("offsets %v are not instruction boundaries", stray)
	}
	return code, nil
}

func (self *reader) tail(d *decoder, code *bytecode.Code, tail *codeAttribute) error {
	for _, e := range tail.handlers {
		h := bytecode.Handler{
			Start:   d.label(int(e.start)),
			End:     d.label(int(e.end)),
			Handler: d.label(int(e.handler)),
		}
		if e.catchType != 0 {
			name, err := self.className(e.catchType)
			if err != nil {
				return err
			}
			h.Type = name
		}
		code.Handlers = append(code.Handlers, h)
	}
	a, ok := find(tail.attributes, "LocalVariableTable")
	if !ok {
		return nil
	}
	c := &cursor{b: a.info}
	for n := int(c.u2()); n > 0 && c.err == nil; n = n - 1 {
		start, length := int(c.u2()), int(c.u2())
		nameIndex, descIndex, slot := c.u2(), c.u2(), c.u2()
		if c.err != nil {
			break
		}
		name, err := self.utf8(nameIndex)
		if err != nil {
			return err
		}
		desc, err := self.utf8(descIndex)
		if err != nil {
			return err
		}
		code.Locals = append(code.Locals, bytecode.LocalVariable{
			Name:       name,
			Descriptor: desc,
			Start:      d.label(start),
			End:        d.label(start + length),
			Index:      slot,
		})
	}
	return errors.Wrap(c.err, "reading LocalVariableTable")
}

// instruction decodes the instruction at pc and returns its size.
func (self *decoder) instruction(pc int) (bytecode.Instruction, int, error) {
	op := bytecode.Opcode(self.b[pc])
	if !op.IsValid() {
		return nil, 0, errors.Errorf("invalid opcode %d at %d", self.b[pc], pc)
	}
	size := map[bytecode.Format]int{
		bytecode.FormatNone:            1,
		bytecode.FormatVarImplicit:     1,
		bytecode.FormatByte:            2,
		bytecode.FormatNewArray:        2,
		bytecode.FormatLdc:             2,
		bytecode.FormatVar:             2,
		bytecode.FormatShort:           3,
		bytecode.FormatLdcWide:         3,
		bytecode.FormatIinc:            3,
		bytecode.FormatJump:            3,
		bytecode.FormatField:           3,
		bytecode.FormatMethod:          3,
		bytecode.FormatType:            3,
		bytecode.FormatMultiANewArray:  4,
		bytecode.FormatJumpWide:        5,
		bytecode.FormatInterfaceMethod: 5,
		bytecode.FormatDynamic:         5,
	}[op.Format()]
	if size > 0 {
		if err := self.need(pc, size); err != nil {
			return nil, 0, err
		}
	}
	switch op.Format() {
	case bytecode.FormatNone:
		return &bytecode.SimpleInsn{Op: op}, 1, nil
	case bytecode.FormatVarImplicit:
		general, slot, _ := bytecode.ImplicitVar(op)
		return &bytecode.VarInsn{Op: general, Var: slot}, 1, nil
	case bytecode.FormatByte:
		return &bytecode.IntInsn{Op: op, Operand: int32(int8(self.b[pc+1]))}, 2, nil
	case bytecode.FormatNewArray:
		return &bytecode.IntInsn{Op: op, Operand: int32(self.b[pc+1])}, 2, nil
	case bytecode.FormatShort:
		return &bytecode.IntInsn{Op: op, Operand: int32(self.s2(pc + 1))}, 3, nil
	case bytecode.FormatLdc, bytecode.FormatLdcWide:
		idx := uint16(self.u1(pc + 1))
		if size == 3 {
			idx = self.u2(pc + 1)
		}
		c, err := self.r.loadable(idx)
		if err != nil {
			return nil, 0, err
		}
		return &bytecode.LdcInsn{Constant: c}, size, nil
	case bytecode.FormatVar:
		return &bytecode.VarInsn{Op: op, Var: uint16(self.u1(pc + 1))}, 2, nil
	case bytecode.FormatIinc:
		return &bytecode.IincInsn{Var: uint16(self.u1(pc + 1)), Increment: int16(int8(self.b[pc+2]))}, 3, nil
	case bytecode.FormatJump:
		return &bytecode.JumpInsn{Op: op, Target: self.label(pc + int(self.s2(pc+1)))}, 3, nil
	case bytecode.FormatJumpWide:
		return &bytecode.JumpInsn{Op: op, Target: self.label(pc + int(self.s4(pc+1)))}, 5, nil
	case bytecode.FormatField:
		owner, name, desc, _, err := self.r.ref(self.u2(pc + 1))
		if err != nil {
			return nil, 0, err
		}
		return &bytecode.FieldInsn{Op: op, Owner: owner, Name: name, Descriptor: desc}, 3, nil
	case bytecode.FormatMethod, bytecode.FormatInterfaceMethod:
		owner, name, desc, itf, err := self.r.ref(self.u2(pc + 1))
		if err != nil {
			return nil, 0, err
		}
		return &bytecode.MethodInsn{Op: op, Owner: owner, Name: name, Descriptor: desc, Interface: itf}, size, nil
	case bytecode.FormatDynamic:
		insn, err := self.r.invokeDynamic(self.u2(pc + 1))
		if err != nil {
			return nil, 0, err
		}
		return insn, 5, nil
	case bytecode.FormatType:
		name, err := self.r.className(self.u2(pc + 1))
		if err != nil {
			return nil, 0, err
		}
		return &bytecode.TypeInsn{Op: op, Type: name}, 3, nil
	case bytecode.FormatMultiANewArray:
		name, err := self.r.className(self.u2(pc + 1))
		if err != nil {
			return nil, 0, err
		}
		return &bytecode.MultiANewArrayInsn{Descriptor: name, Dimensions: uint8(self.b[pc+3])}, 4, nil
	case bytecode.FormatTableSwitch:
		return self.tableSwitch(pc)
	case bytecode.FormatLookupSwitch:
		return self.lookupSwitch(pc)
	case bytecode.FormatWide:
		return self.wide(pc)
	}
	return nil, 0, errors.Errorf("opcode %s at %d cannot be decoded", op, pc)
}

func (self *decoder) tableSwitch(pc int) (bytecode.Instruction, int, error) {
	at := pc + 1 + (4-(pc+1)%4)%4
	if err := self.need(at, 12); err != nil {
		return nil, 0, err
	}
	dflt, low, high := self.s4(at), self.s4(at+4), self.s4(at+8)
	if high < low {
		return nil, 0, errors.Errorf("tableswitch at %d has high %d below low %d", pc, high, low)
	}
	count := int(int64(high) - int64(low) + 1)
	if err := self.need(at+12, 4*count); err != nil {
		return nil, 0, err
	}
	insn := &bytecode.TableSwitchInsn{Min: low, Max: high, Default: self.label(pc + int(dflt))}
	for x := 0; x < count; x = x + 1 {
		insn.Targets = append(insn.Targets, self.label(pc+int(self.s4(at+12+4*x))))
	}
	return insn, at + 12 + 4*count - pc, nil
}

func (self *decoder) lookupSwitch(pc int) (bytecode.Instruction, int, error) {
	at := pc + 1 + (4-(pc+1)%4)%4
	if err := self.need(at, 8); err != nil {
		return nil, 0, err
	}
	dflt, pairs := self.s4(at), self.s4(at+4)
	if pairs < 0 {
		return nil, 0, errors.Errorf("lookupswitch at %d has %d pairs", pc, pairs)
	}
	if err := self.need(at+8, 8*int(pairs)); err != nil {
		return nil, 0, err
	}
	insn := &bytecode.LookupSwitchInsn{Default: self.label(pc + int(dflt))}
	for x := 0; x < int(pairs); x = x + 1 {
		insn.Keys = append(insn.Keys, self.s4(at+8+8*x))
		insn.Targets = append(insn.Targets, self.label(pc+int(self.s4(at+12+8*x))))
	}
	return insn, at + 8 + 8*int(pairs) - pc, nil
}

func (self *decoder) wide(pc int) (bytecode.Instruction, int, error) {
	if err := self.need(pc, 4); err != nil {
		return nil, 0, err
	}
	op := bytecode.Opcode(self.b[pc+1])
	if op == bytecode.OpIinc {
		if err := self.need(pc, 6); err != nil {
			return nil, 0, err
		}
		return &bytecode.IincInsn{Var: self.u2(pc + 2), Increment: self.s2(pc + 4)}, 6, nil
	}
	if op.Format() != bytecode.FormatVar {
		return nil, 0, errors.Errorf("wide at %d modifies %s", pc, op)
	}
	return &bytecode.VarInsn{Op: op, Var: self.u2(pc + 2)}, 4, nil
}
