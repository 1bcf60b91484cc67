package bytecode

import (
	"fmt"
)

// Opcode is a JVM instruction opcode. Short variable forms (iload_0 and
// friends) and wide are encodings chosen by Layout; code models always use
// the general form.
type Opcode uint8

// Format describes the operand encoding that follows an opcode.
type Format uint8

const (
	FormatNone Format = iota
	FormatByte
	FormatShort
	FormatLdc
	FormatLdcWide
	FormatVar
	FormatVarImplicit
	FormatIinc
	FormatJump
	FormatJumpWide
	FormatTableSwitch
	FormatLookupSwitch
	FormatField
	FormatMethod
	FormatInterfaceMethod
	FormatDynamic
	FormatType
	FormatNewArray
	FormatMultiANewArray
	FormatWide
)

// MaxOpcode is the highest defined opcode.
const MaxOpcode = OpJsrW

var opcodesByName = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeNames))
	for op, name := range opcodeNames {
		m[name] = Opcode(op)
	}
	return m
}()

func (op Opcode) String() string {
	if op.IsValid() {
		return opcodeNames[op]
	}
	return fmt.Sprintf("opcode-%d", uint8(op))
}

func (op Opcode) IsValid() bool {
	return op <= MaxOpcode
}

func (op Opcode) Format() Format {
	if !op.IsValid() {
		return FormatNone
	}
	return opcodeFormats[op]
}

// OpcodeByName looks up a mnemonic.
func OpcodeByName(name string) (Opcode, bool) {
	op, ok := opcodesByName[name]
	return op, ok
}

// ImplicitVar expands a short variable form into its general opcode and
// slot, for example aload_2 into aload and 2.
func ImplicitVar(op Opcode) (Opcode, uint16, bool) {
	switch {
	case op >= OpIload0 && op <= OpAload3:
		n := op - OpIload0
		return OpIload + n/4, uint16(n % 4), true
	case op >= OpIstore0 && op <= OpAstore3:
		n := op - OpIstore0
		return OpIstore + n/4, uint16(n % 4), true
	}
	return op, 0, false
}

// ShortVar returns the short form for a load or store of slots 0 to 3.
func ShortVar(op Opcode, slot uint16) (Opcode, bool) {
	if slot > 3 {
		return op, false
	}
	switch {
	case op >= OpIload && op <= OpAload:
		return OpIload0 + (op-OpIload)*4 + Opcode(slot), true
	case op >= OpIstore && op <= OpAstore:
		return OpIstore0 + (op-OpIstore)*4 + Opcode(slot), true
	}
	return op, false
}

// IsWideVar reports whether a load or store uses two slots.
func IsWideVar(op Opcode) bool {
	switch op {
	case OpLload, OpDload, OpLstore, OpDstore:
		return true
	}
	return false
}

// IsStore reports whether op writes a local variable.
func IsStore(op Opcode) bool {
	return (op >= OpIstore && op <= OpAstore) || op == OpIinc
}

// IsConditionalJump reports whether a jump may fall through.
func IsConditionalJump(op Opcode) bool {
	return (op >= OpIfeq && op <= OpIfAcmpne) || op == OpIfnull || op == OpIfnonnull
}

// IsTerminal reports whether control never falls through to the next
// instruction.
func IsTerminal(op Opcode) bool {
	switch op {
	case OpIreturn, OpLreturn, OpFreturn, OpDreturn, OpAreturn, OpReturn, OpAthrow,
		OpGoto, OpGotoW, OpRet, OpTableswitch, OpLookupswitch:
		return true
	}
	return false
}

// NewArrayTypes maps the newarray operand to its element descriptor.
var NewArrayTypes = map[int32]string{
	4:  "Z",
	5:  "C",
	6:  "F",
	7:  "D",
	8:  "B",
	9:  "S",
	10: "I",
	11: "J",
}

// NewArrayCode is the inverse of NewArrayTypes.
func NewArrayCode(descriptor string) (int32, bool) {
	for k, v := range NewArrayTypes {
		if v == descriptor {
			return k, true
		}
	}
	return 0, false
}
