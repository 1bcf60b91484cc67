package compiler

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"gopkg.microglot.org/jasm/internal/bytecode"
	"gopkg.microglot.org/jasm/internal/descriptor"
	"gopkg.microglot.org/jasm/internal/instructions"
)

type local struct {
	name string
	slot uint16
}

type variable struct {
	name string
	slot uint16
	// descriptor is known for the receiver and parameters and is inferred
	// from the first access for everything else.
	descriptor string
}

// variables maps the names used by one method body onto local slots.
type variables struct {
	byName map[string]*variable
	order  []*variable
	next   int
}

func newVariables(owner string, method *bytecode.MethodModel, params []string, locals []local) *variables {
	self := &variables{byName: make(map[string]*variable)}
	instance := !method.Access.Has(bytecode.AccStatic)
	if instance {
		self.bind(&variable{name: "this", slot: 0, descriptor: thisDescriptor(owner)})
	}
	types, _, _ := descriptor.ParseMethod(method.Descriptor)
	slots := descriptor.ParameterSlots(method.Descriptor, instance)
	for x, name := range params {
		if x >= len(types) {
			break
		}
		self.bind(&variable{name: name, slot: uint16(slots[x]), descriptor: types[x]})
	}
	self.next = descriptor.ArgumentSlots(method.Descriptor, instance)
	for _, l := range locals {
		self.bind(&variable{name: l.name, slot: l.slot})
		if int(l.slot)+1 > self.next {
			self.next = int(l.slot) + 1
		}
	}
	return self
}

func (self *variables) bind(v *variable) {
	self.byName[v.name] = v
	self.order = append(self.order, v)
}

// synthesized parses the v<slot> names the printer makes up for slots
// without metadata.
func synthesized(name string) (uint16, bool) {
	if !strings.HasPrefix(name, "v") || len(name) < 2 {
		return 0, false
	}
	n, err := strconv.ParseUint(name[1:], 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(n), true
}

func inferred(op bytecode.Opcode) string {
	switch op {
	case bytecode.OpIload, bytecode.OpIstore, bytecode.OpIinc:
		return "I"
	case bytecode.OpLload, bytecode.OpLstore:
		return "J"
	case bytecode.OpFload, bytecode.OpFstore:
		return "F"
	case bytecode.OpDload, bytecode.OpDstore:
		return "D"
	case bytecode.OpAload, bytecode.OpAstore:
		return "Ljava/lang/Object;"
	}
	return ""
}

// resolve returns the slot for a variable operand of op. A name that is
// neither declared nor synthesized is bound to the next free slot.
func (self *variables) resolve(v instructions.Var, op bytecode.Opcode) (uint16, error) {
	width := 1
	if bytecode.IsWideVar(op) {
		width = 2
	}
	var slot int
	if v.IsSlot {
		slot = int(v.Slot)
	} else if bound, ok := self.byName[v.Name]; ok {
		slot = int(bound.slot)
		if bound.descriptor == "" {
			bound.descriptor = inferred(op)
		}
	} else if n, ok := synthesized(v.Name); ok {
		slot = int(n)
	} else {
		slot = self.next
		if slot+width > 0xFFFF {
			return 0, errors.Errorf("no slot is left for variable %s", v.Name)
		}
		self.bind(&variable{name: v.Name, slot: uint16(slot), descriptor: inferred(op)})
	}
	if slot+width > 0xFFFF {
		return 0, errors.Errorf("variable %s does not fit in the local slots", v)
	}
	if slot+width > self.next {
		self.next = slot + width
	}
	return uint16(slot), nil
}

// entries lists the variables to record in the local variable table.
func (self *variables) entries() []*variable {
	out := make([]*variable, 0, len(self.order))
	for _, v := range self.order {
		if v.descriptor != "" {
			out = append(out, v)
		}
	}
	return out
}
