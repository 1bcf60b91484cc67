package analysis

import (
	"github.com/pkg/errors"

	"gopkg.microglot.org/jasm/internal/bytecode"
	"gopkg.microglot.org/jasm/internal/descriptor"
)

func (self *simulation) push(s *state, values ...value) {
	s.stack = append(s.stack, values...)
	depth := 0
	for _, v := range s.stack {
		depth = depth + width(v)
	}
	if depth > self.maxStack {
		self.maxStack = depth
	}
}

func pop(s *state) (value, error) {
	if len(s.stack) == 0 {
		return top, errors.New("operand stack underflow")
	}
	v := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return v, nil
}

func popN(s *state, n int) error {
	for ; n > 0; n = n - 1 {
		if _, err := pop(s); err != nil {
			return err
		}
	}
	return nil
}

// popWords removes values totalling the given number of stack words and
// returns them bottom first.
func popWords(s *state, words int) ([]value, error) {
	var out []value
	for words > 0 {
		v, err := pop(s)
		if err != nil {
			return nil, err
		}
		words = words - width(v)
		out = append([]value{v}, out...)
	}
	if words < 0 {
		return nil, errors.New("operation splits a long or double value")
	}
	return out, nil
}

func (self *simulation) load(s *state, slot int, wide bool) value {
	n := 1
	if wide {
		n = 2
	}
	if slot+n > self.maxLocals {
		self.maxLocals = slot + n
	}
	if slot >= len(s.locals) {
		return top
	}
	return s.locals[slot]
}

func (self *simulation) store(s *state, slot int, v value) {
	end := slot + width(v)
	for len(s.locals) < end {
		s.locals = append(s.locals, top)
	}
	if end > self.maxLocals {
		self.maxLocals = end
	}
	if slot > 0 && width(s.locals[slot-1]) == 2 {
		s.locals[slot-1] = top
	}
	s.locals[slot] = v
	if width(v) == 2 {
		s.locals[slot+1] = top
	}
}

// arithmetic maps the typed opcode families onto their operand type.
func arithmetic(op bytecode.Opcode) value {
	switch (op - bytecode.OpIadd) % 4 {
	case 0:
		return integer
	case 1:
		return long
	case 2:
		return float
	}
	return double
}

func constantValue(c bytecode.Constant) value {
	switch c.(type) {
	case bytecode.Int:
		return integer
	case bytecode.Float:
		return float
	case bytecode.Long:
		return long
	case bytecode.Double:
		return double
	case bytecode.String:
		return object("java/lang/String")
	case bytecode.Type:
		return object("java/lang/Class")
	case bytecode.MethodType:
		return object("java/lang/invoke/MethodType")
	}
	return object("java/lang/invoke/MethodHandle")
}

func (self *simulation) allocation(x int) *bytecode.Label {
	if x == 0 {
		return nil
	}
	label, _ := self.elements[x-1].(*bytecode.Label)
	return label
}

// initialize replaces every copy of an uninitialized value with the
// constructed type once its constructor has been invoked.
func (self *simulation) initialize(s *state, receiver value) {
	done := object(self.owner)
	if receiver.Kind == bytecode.VerifyUninitialized {
		done = object(receiver.Name)
	}
	for x, v := range s.locals {
		if v == receiver {
			s.locals[x] = done
		}
	}
	for x, v := range s.stack {
		if v == receiver {
			s.stack[x] = done
		}
	}
}

func (self *simulation) invoke(s *state, desc string, receiver bool, constructor bool) error {
	params, ret, err := descriptor.ParseMethod(desc)
	if err != nil {
		return err
	}
	if err := popN(s, len(params)); err != nil {
		return err
	}
	if receiver {
		r, err := pop(s)
		if err != nil {
			return err
		}
		if constructor && (r.Kind == bytecode.VerifyUninitialized || r.Kind == bytecode.VerifyUninitializedThis) {
			self.initialize(s, r)
		}
	}
	if ret != "V" {
		self.push(s, valueOf(ret))
	}
	return nil
}

// execute applies one instruction to s and returns its branch targets.
func (self *simulation) execute(x int, insn bytecode.Instruction, s *state) ([]*bytecode.Label, error) {
	op := insn.Opcode()
	switch insn := insn.(type) {
	case *bytecode.IntInsn:
		if op == bytecode.OpNewarray {
			if _, err := pop(s); err != nil {
				return nil, err
			}
			self.push(s, object("["+bytecode.NewArrayTypes[insn.Operand]))
			return nil, nil
		}
		self.push(s, integer)
		return nil, nil
	case *bytecode.VarInsn:
		slot := int(insn.Var)
		switch op {
		case bytecode.OpIload:
			self.push(s, integer)
			self.load(s, slot, false)
		case bytecode.OpFload:
			self.push(s, float)
			self.load(s, slot, false)
		case bytecode.OpLload:
			self.push(s, long)
			self.load(s, slot, true)
		case bytecode.OpDload:
			self.push(s, double)
			self.load(s, slot, true)
		case bytecode.OpAload:
			self.push(s, self.load(s, slot, false))
		case bytecode.OpRet:
			return nil, errors.New("subroutines are not supported")
		default:
			v, err := pop(s)
			if err != nil {
				return nil, err
			}
			self.store(s, slot, v)
		}
		return nil, nil
	case *bytecode.IincInsn:
		self.load(s, int(insn.Var), false)
		return nil, nil
	case *bytecode.LdcInsn:
		self.push(s, constantValue(insn.Constant))
		return nil, nil
	case *bytecode.TypeInsn:
		switch op {
		case bytecode.OpNew:
			self.push(s, value{Kind: bytecode.VerifyUninitialized, Name: insn.Type, New: self.allocation(x)})
			return nil, nil
		case bytecode.OpAnewarray:
			if _, err := pop(s); err != nil {
				return nil, err
			}
			self.push(s, object("["+descriptor.FromInternalName(insn.Type)))
			return nil, nil
		case bytecode.OpCheckcast:
			if _, err := pop(s); err != nil {
				return nil, err
			}
			self.push(s, object(insn.Type))
			return nil, nil
		}
		if _, err := pop(s); err != nil {
			return nil, err
		}
		self.push(s, integer)
		return nil, nil
	case *bytecode.FieldInsn:
		switch op {
		case bytecode.OpGetstatic:
			self.push(s, valueOf(insn.Descriptor))
		case bytecode.OpPutstatic:
			_, err := pop(s)
			return nil, err
		case bytecode.OpGetfield:
			if _, err := pop(s); err != nil {
				return nil, err
			}
			self.push(s, valueOf(insn.Descriptor))
		case bytecode.OpPutfield:
			return nil, popN(s, 2)
		}
		return nil, nil
	case *bytecode.MethodInsn:
		constructor := op == bytecode.OpInvokespecial && insn.Name == "<init>"
		return nil, self.invoke(s, insn.Descriptor, op != bytecode.OpInvokestatic, constructor)
	case *bytecode.InvokeDynamicInsn:
		return nil, self.invoke(s, insn.Descriptor, false, false)
	case *bytecode.MultiANewArrayInsn:
		if err := popN(s, int(insn.Dimensions)); err != nil {
			return nil, err
		}
		self.push(s, object(insn.Descriptor))
		return nil, nil
	case *bytecode.JumpInsn:
		switch {
		case op >= bytecode.OpIfIcmpeq && op <= bytecode.OpIfAcmpne:
			if err := popN(s, 2); err != nil {
				return nil, err
			}
		case bytecode.IsConditionalJump(op):
			if _, err := pop(s); err != nil {
				return nil, err
			}
		case op == bytecode.OpJsr || op == bytecode.OpJsrW:
			return nil, errors.New("subroutines are not supported")
		}
		return []*bytecode.Label{insn.Target}, nil
	case *bytecode.TableSwitchInsn, *bytecode.LookupSwitchInsn:
		if _, err := pop(s); err != nil {
			return nil, err
		}
		return bytecode.Targets(insn), nil
	case *bytecode.SimpleInsn:
		return nil, self.simple(op, s)
	}
	return nil, errors.Errorf("unsupported instruction %T", insn)
}

func (self *simulation) simple(op bytecode.Opcode, s *state) error {
	switch {
	case op == bytecode.OpNop:
	case op == bytecode.OpAconstNull:
		self.push(s, null)
	case op >= bytecode.OpIconstM1 && op <= bytecode.OpIconst5:
		self.push(s, integer)
	case op == bytecode.OpLconst0 || op == bytecode.OpLconst1:
		self.push(s, long)
	case op >= bytecode.OpFconst0 && op <= bytecode.OpFconst2:
		self.push(s, float)
	case op == bytecode.OpDconst0 || op == bytecode.OpDconst1:
		self.push(s, double)
	case (op >= bytecode.OpIload0 && op <= bytecode.OpAload3) || (op >= bytecode.OpIstore0 && op <= bytecode.OpAstore3):
		general, slot, _ := bytecode.ImplicitVar(op)
		_, err := self.execute(0, &bytecode.VarInsn{Op: general, Var: slot}, s)
		return err
	case op == bytecode.OpAaload:
		if err := popN(s, 1); err != nil {
			return err
		}
		array, err := pop(s)
		if err != nil {
			return err
		}
		if array.Kind == bytecode.VerifyObject && len(array.Name) > 1 && array.Name[0] == '[' {
			self.push(s, valueOf(descriptor.ElementType(array.Name)))
		} else {
			self.push(s, null)
		}
	case op >= bytecode.OpIaload && op <= bytecode.OpSaload:
		if err := popN(s, 2); err != nil {
			return err
		}
		switch op {
		case bytecode.OpLaload:
			self.push(s, long)
		case bytecode.OpFaload:
			self.push(s, float)
		case bytecode.OpDaload:
			self.push(s, double)
		default:
			self.push(s, integer)
		}
	case op >= bytecode.OpIastore && op <= bytecode.OpSastore:
		return popN(s, 3)
	case op == bytecode.OpPop:
		_, err := popWords(s, 1)
		return err
	case op == bytecode.OpPop2:
		_, err := popWords(s, 2)
		return err
	case op >= bytecode.OpDup && op <= bytecode.OpSwap:
		return self.shuffle(op, s)
	case op >= bytecode.OpIadd && op <= bytecode.OpDrem:
		if err := popN(s, 2); err != nil {
			return err
		}
		self.push(s, arithmetic(op))
	case op >= bytecode.OpIneg && op <= bytecode.OpDneg:
		if err := popN(s, 1); err != nil {
			return err
		}
		self.push(s, arithmetic(op))
	case op >= bytecode.OpIshl && op <= bytecode.OpLxor:
		if err := popN(s, 2); err != nil {
			return err
		}
		if (op-bytecode.OpIshl)%2 == 0 {
			self.push(s, integer)
		} else {
			self.push(s, long)
		}
	case op >= bytecode.OpI2l && op <= bytecode.OpI2s:
		if err := popN(s, 1); err != nil {
			return err
		}
		self.push(s, conversions[op])
	case op >= bytecode.OpLcmp && op <= bytecode.OpDcmpg:
		if err := popN(s, 2); err != nil {
			return err
		}
		self.push(s, integer)
	case op >= bytecode.OpIreturn && op <= bytecode.OpAreturn:
		return popN(s, 1)
	case op == bytecode.OpReturn:
	case op == bytecode.OpArraylength:
		if err := popN(s, 1); err != nil {
			return err
		}
		self.push(s, integer)
	case op == bytecode.OpAthrow, op == bytecode.OpMonitorenter, op == bytecode.OpMonitorexit:
		return popN(s, 1)
	default:
		return errors.Errorf("unsupported instruction %s", op)
	}
	return nil
}

var conversions = map[bytecode.Opcode]value{
	bytecode.OpI2l: long,
	bytecode.OpI2f: float,
	bytecode.OpI2d: double,
	bytecode.OpL2i: integer,
	bytecode.OpL2f: float,
	bytecode.OpL2d: double,
	bytecode.OpF2i: integer,
	bytecode.OpF2l: long,
	bytecode.OpF2d: double,
	bytecode.OpD2i: integer,
	bytecode.OpD2l: long,
	bytecode.OpD2f: float,
	bytecode.OpI2b: integer,
	bytecode.OpI2c: integer,
	bytecode.OpI2s: integer,
}

// shuffle implements the dup and swap family by stack words so long and
// double values move as a unit.
func (self *simulation) shuffle(op bytecode.Opcode, s *state) error {
	var moved, under int
	switch op {
	case bytecode.OpDup:
		moved = 1
	case bytecode.OpDupX1:
		moved, under = 1, 1
	case bytecode.OpDupX2:
		moved, under = 1, 2
	case bytecode.OpDup2:
		moved = 2
	case bytecode.OpDup2X1:
		moved, under = 2, 1
	case bytecode.OpDup2X2:
		moved, under = 2, 2
	case bytecode.OpSwap:
		a, err := popWords(s, 1)
		if err != nil {
			return err
		}
		b, err := popWords(s, 1)
		if err != nil {
			return err
		}
		self.push(s, a...)
		self.push(s, b...)
		return nil
	}
	upper, err := popWords(s, moved)
	if err != nil {
		return err
	}
	lower, err := popWords(s, under)
	if err != nil {
		return err
	}
	self.push(s, upper...)
	self.push(s, lower...)
	self.push(s, upper...)
	return nil
}
