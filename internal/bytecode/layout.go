// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package bytecode

import (
	"fmt"
	"math"
)

// MaxCodeLength is the largest code attribute the class format allows.
const MaxCodeLength = 65535

// Layout assigns a byte offset to every element of a code body. Short
// variable forms and ldc are used where they fit, and goto or jsr are
// widened when a target is out of 16 bit range.
type Layout struct {
	// Offsets holds the starting offset of each element by index.
	Offsets []int
	Labels  map[*Label]int
	Size    int
	wide    map[*JumpInsn]bool
	ldc     map[Constant]int
}

// IsWideJump reports whether the jump is encoded as goto_w or jsr_w.
func (self *Layout) IsWideJump(j *JumpInsn) bool {
	return j.Op == OpGotoW || j.Op == OpJsrW || self.wide[j]
}

// NewLayout computes offsets for code. It fails when a referenced label is
// missing from the body, when a conditional branch cannot reach its
// target, or when the body is too large.
func NewLayout(code *Code) (*Layout, error) {
	self := &Layout{
		Offsets: make([]int, len(code.Elements)),
		Labels:  make(map[*Label]int),
		wide:    make(map[*JumpInsn]bool),
		ldc:     make(map[Constant]int),
	}
	next := 1
	for _, e := range code.Elements {
		if insn, ok := e.(*LdcInsn); ok && !IsWide(insn.Constant) {
			if _, seen := self.ldc[insn.Constant]; !seen {
				self.ldc[insn.Constant] = next
				next = next + 1
			}
		}
	}
	for {
		self.place(code)
		if err := self.checkLabels(code); err != nil {
			return nil, err
		}
		changed := false
		for x, e := range code.Elements {
			j, ok := e.(*JumpInsn)
			if !ok || self.IsWideJump(j) {
				continue
			}
			delta := self.Labels[j.Target] - self.Offsets[x]
			if delta >= math.MinInt16 && delta <= math.MaxInt16 {
				continue
			}
			if j.Op != OpGoto && j.Op != OpJsr {
				return nil, fmt.Errorf("%s at offset %d cannot reach its target %d bytes away", j.Op, self.Offsets[x], delta)
			}
			self.wide[j] = true
			changed = true
		}
		if !changed {
			break
		}
	}
	if self.Size > MaxCodeLength {
		return nil, fmt.Errorf("code is %d bytes long, more than the %d allowed", self.Size, MaxCodeLength)
	}
	return self, nil
}

func (self *Layout) place(code *Code) {
	offset := 0
	for x, e := range code.Elements {
		self.Offsets[x] = offset
		if l, ok := e.(*Label); ok {
			self.Labels[l] = offset
			continue
		}
		offset = offset + self.size(e, offset)
	}
	self.Size = offset
}

func (self *Layout) checkLabels(code *Code) error {
	check := func(l *Label, what string) error {
		if _, ok := self.Labels[l]; !ok {
			name := "<nil>"
			if l != nil {
				name = l.Name
			}
			return fmt.Errorf("%s label %s is not placed in the code", what, name)
		}
		return nil
	}
	for _, e := range code.Elements {
		insn, ok := e.(Instruction)
		if !ok {
			continue
		}
		for _, l := range Targets(insn) {
			if err := check(l, insn.Opcode().String()); err != nil {
				return err
			}
		}
	}
	for _, h := range code.Handlers {
		for _, l := range []*Label{h.Start, h.End, h.Handler} {
			if err := check(l, "exception handler"); err != nil {
				return err
			}
		}
	}
	for _, v := range code.Locals {
		for _, l := range []*Label{v.Start, v.End} {
			if err := check(l, "local variable"); err != nil {
				return err
			}
		}
	}
	return nil
}

func (self *Layout) size(e Element, offset int) int {
	switch v := e.(type) {
	case *SimpleInsn:
		return 1
	case *IntInsn:
		if v.Op == OpSipush {
			return 3
		}
		return 2
	case *VarInsn:
		if _, ok := ShortVar(v.Op, v.Var); ok {
			return 1
		}
		if v.Var <= math.MaxUint8 {
			return 2
		}
		return 4
	case *IincInsn:
		if v.Var <= math.MaxUint8 && v.Increment >= math.MinInt8 && v.Increment <= math.MaxInt8 {
			return 3
		}
		return 6
	case *TypeInsn, *FieldInsn:
		return 3
	case *MethodInsn:
		if v.Op == OpInvokeinterface {
			return 5
		}
		return 3
	case *InvokeDynamicInsn:
		return 5
	case *JumpInsn:
		if self.IsWideJump(v) {
			return 5
		}
		return 3
	case *LdcInsn:
		if IsWide(v.Constant) || self.ldc[v.Constant] > math.MaxUint8 {
			return 3
		}
		return 2
	case *TableSwitchInsn:
		return 1 + switchPadding(offset) + 12 + 4*len(v.Targets)
	case *LookupSwitchInsn:
		return 1 + switchPadding(offset) + 8 + 8*len(v.Keys)
	case *MultiANewArrayInsn:
		return 4
	}
	return 0
}

// switchPadding is the number of bytes after a switch opcode at offset that
// align its operands to four bytes.
func switchPadding(offset int) int {
	return (4 - (offset+1)%4) % 4
}
