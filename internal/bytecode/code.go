package bytecode

// Element is one entry of a code body: a *Label marking a position or an
// Instruction.
type Element interface {
	element()
}

type Instruction interface {
	Element
	Opcode() Opcode
}

// Label marks a position in a code body. Identity is the pointer; Name only
// helps debugging.
type Label struct {
	Name string
}

func NewLabel(name string) *Label {
	return &Label{Name: name}
}

func (*Label) element() {}

// SimpleInsn has no operands.
type SimpleInsn struct {
	Op Opcode
}

// IntInsn is bipush, sipush or newarray.
type IntInsn struct {
	Op      Opcode
	Operand int32
}

// VarInsn is a load, store or ret in the general form.
type VarInsn struct {
	Op  Opcode
	Var uint16
}

type IincInsn struct {
	Var       uint16
	Increment int16
}

// TypeInsn is new, anewarray, checkcast or instanceof.
type TypeInsn struct {
	Op   Opcode
	Type string
}

type FieldInsn struct {
	Op         Opcode
	Owner      string
	Name       string
	Descriptor string
}

type MethodInsn struct {
	Op         Opcode
	Owner      string
	Name       string
	Descriptor string
	Interface  bool
}

type InvokeDynamicInsn struct {
	Name       string
	Descriptor string
	Bootstrap  Handle
	Arguments  []Constant
}

type JumpInsn struct {
	Op     Opcode
	Target *Label
}

// LdcInsn loads a constant. The encoding (ldc, ldc_w or ldc2_w) is chosen
// by Layout.
type LdcInsn struct {
	Constant Constant
}

type TableSwitchInsn struct {
	Min     int32
	Max     int32
	Default *Label
	Targets []*Label
}

type LookupSwitchInsn struct {
	Default *Label
	Keys    []int32
	Targets []*Label
}

type MultiANewArrayInsn struct {
	Descriptor string
	Dimensions uint8
}

func (*SimpleInsn) element()         {}
func (*IntInsn) element()            {}
func (*VarInsn) element()            {}
func (*IincInsn) element()           {}
func (*TypeInsn) element()           {}
func (*FieldInsn) element()          {}
func (*MethodInsn) element()         {}
func (*InvokeDynamicInsn) element()  {}
func (*JumpInsn) element()           {}
func (*LdcInsn) element()            {}
func (*TableSwitchInsn) element()    {}
func (*LookupSwitchInsn) element()   {}
func (*MultiANewArrayInsn) element() {}

func (self *SimpleInsn) Opcode() Opcode    { return self.Op }
func (self *IntInsn) Opcode() Opcode       { return self.Op }
func (self *VarInsn) Opcode() Opcode       { return self.Op }
func (*IincInsn) Opcode() Opcode           { return OpIinc }
func (self *TypeInsn) Opcode() Opcode      { return self.Op }
func (self *FieldInsn) Opcode() Opcode     { return self.Op }
func (self *MethodInsn) Opcode() Opcode    { return self.Op }
func (*InvokeDynamicInsn) Opcode() Opcode  { return OpInvokedynamic }
func (self *JumpInsn) Opcode() Opcode      { return self.Op }
func (*TableSwitchInsn) Opcode() Opcode    { return OpTableswitch }
func (*LookupSwitchInsn) Opcode() Opcode   { return OpLookupswitch }
func (*MultiANewArrayInsn) Opcode() Opcode { return OpMultianewarray }
func (self *LdcInsn) Opcode() Opcode {
	if IsWide(self.Constant) {
		return OpLdc2W
	}
	return OpLdc
}

// Handler is one exception table row. An empty Type catches everything.
type Handler struct {
	Start   *Label
	End     *Label
	Handler *Label
	Type    string
}

type LocalVariable struct {
	Name       string
	Descriptor string
	Signature  string
	Start      *Label
	End        *Label
	Index      uint16
}

type VerificationKind uint8

const (
	VerifyTop VerificationKind = iota
	VerifyInteger
	VerifyFloat
	VerifyDouble
	VerifyLong
	VerifyNull
	VerifyUninitializedThis
	VerifyObject
	VerifyUninitialized
)

// VerificationType is a stack map entry. Name is set for objects; New is the
// label of the allocating instruction for uninitialized values.
type VerificationType struct {
	Kind VerificationKind
	Name string
	New  *Label
}

// Frame is the stack map state at a label.
type Frame struct {
	Label  *Label
	Locals []VerificationType
	Stack  []VerificationType
}

type Code struct {
	Elements  []Element
	Handlers  []Handler
	Locals    []LocalVariable
	MaxStack  uint16
	MaxLocals uint16
	Frames    []Frame
}

// Targets returns the labels an instruction may transfer control to.
func Targets(insn Instruction) []*Label {
	switch v := insn.(type) {
	case *JumpInsn:
		return []*Label{v.Target}
	case *TableSwitchInsn:
		return append([]*Label{v.Default}, v.Targets...)
	case *LookupSwitchInsn:
		return append([]*Label{v.Default}, v.Targets...)
	}
	return nil
}
