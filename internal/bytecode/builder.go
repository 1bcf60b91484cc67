package bytecode

import (
	"fmt"
	"sort"
)

// CodeBuilder assembles a code body from named labels and instructions.
type CodeBuilder struct {
	code   *Code
	labels map[string]*Label
	marked map[*Label]bool
}

func NewCodeBuilder() *CodeBuilder {
	return &CodeBuilder{
		code:   &Code{},
		labels: make(map[string]*Label),
		marked: make(map[*Label]bool),
	}
}

// Label returns the label with the given name, creating it on first use.
func (self *CodeBuilder) Label(name string) *Label {
	if l, ok := self.labels[name]; ok {
		return l
	}
	l := NewLabel(name)
	self.labels[name] = l
	return l
}

// Mark places the named label at the current position.
func (self *CodeBuilder) Mark(name string) error {
	l := self.Label(name)
	if self.marked[l] {
		return fmt.Errorf("label %s is already defined", name)
	}
	self.marked[l] = true
	self.code.Elements = append(self.code.Elements, l)
	return nil
}

// IsMarked reports whether the named label has been placed.
func (self *CodeBuilder) IsMarked(name string) bool {
	l, ok := self.labels[name]
	return ok && self.marked[l]
}

func (self *CodeBuilder) Add(insn Instruction) {
	self.code.Elements = append(self.code.Elements, insn)
}

func (self *CodeBuilder) Handler(start string, end string, handler string, typ string) {
	self.code.Handlers = append(self.code.Handlers, Handler{
		Start:   self.Label(start),
		End:     self.Label(end),
		Handler: self.Label(handler),
		Type:    typ,
	})
}

func (self *CodeBuilder) Local(v LocalVariable) {
	self.code.Locals = append(self.code.Locals, v)
}

// Start returns a label marking the start of the code, adding it when the
// body is still empty or does not begin with a label.
func (self *CodeBuilder) Start() *Label {
	if len(self.code.Elements) > 0 {
		if l, ok := self.code.Elements[0].(*Label); ok {
			return l
		}
	}
	l := NewLabel("start")
	self.marked[l] = true
	self.code.Elements = append([]Element{l}, self.code.Elements...)
	return l
}

// End marks and returns a label at the current end of the code.
func (self *CodeBuilder) End() *Label {
	if n := len(self.code.Elements); n > 0 {
		if l, ok := self.code.Elements[n-1].(*Label); ok {
			return l
		}
	}
	l := NewLabel("end")
	self.marked[l] = true
	self.code.Elements = append(self.code.Elements, l)
	return l
}

// Undefined lists the names of labels that were referenced but never
// marked, sorted.
func (self *CodeBuilder) Undefined() []string {
	var out []string
	for name, l := range self.labels {
		if !self.marked[l] {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Build returns the code body. It fails when a referenced label was never
// marked.
func (self *CodeBuilder) Build() (*Code, error) {
	if undefined := self.Undefined(); len(undefined) > 0 {
		return nil, fmt.Errorf("undefined labels: %v", undefined)
	}
	return self.code, nil
}
