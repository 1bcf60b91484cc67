// Package analysis simulates method bodies to compute operand stack depth,
// local slot usage and the stack map frames a verifier expects at branch
// targets.
package analysis

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"gopkg.microglot.org/jasm/internal/bytecode"
	"gopkg.microglot.org/jasm/internal/descriptor"
	"gopkg.microglot.org/jasm/internal/inheritance"
)

const maxSlots = 0xFFFF

type Analyzer struct {
	checker inheritance.Checker
	frames  bool
}

// New returns an Analyzer. Reference types meeting at a merge point are
// joined through checker, or inheritance.Noop when checker is nil.
func New(checker inheritance.Checker, frames bool) *Analyzer {
	if checker == nil {
		checker = inheritance.Noop{}
	}
	return &Analyzer{checker: checker, frames: frames}
}

// Analyze fills in MaxStack and MaxLocals of the method's code and, when
// frames were requested, its Frames. Computing frames inserts a label in
// front of every new instruction that lacks one. Methods without code are
// left untouched.
func (self *Analyzer) Analyze(ctx context.Context, owner string, method *bytecode.MethodModel) error {
	if method.Code == nil {
		return nil
	}
	if self.frames {
		labelAllocations(method.Code)
	}
	sim, err := newSimulation(ctx, self, owner, method)
	if err != nil {
		return err
	}
	if err := sim.run(); err != nil {
		return errors.Wrapf(err, "method %s%s", method.Name, method.Descriptor)
	}
	if sim.maxStack > maxSlots || sim.maxLocals > maxSlots {
		return errors.Errorf("method %s%s exceeds %d stack or local slots", method.Name, method.Descriptor, maxSlots)
	}
	method.Code.MaxStack = uint16(sim.maxStack)
	method.Code.MaxLocals = uint16(sim.maxLocals)
	if self.frames {
		method.Code.Frames = sim.frames()
	}
	return nil
}

// labelAllocations makes sure every new instruction is directly preceded by
// a label so uninitialized values can name their allocation site.
func labelAllocations(code *bytecode.Code) {
	out := make([]bytecode.Element, 0, len(code.Elements))
	for x, e := range code.Elements {
		if insn, ok := e.(*bytecode.TypeInsn); ok && insn.Op == bytecode.OpNew {
			if x == 0 {
				out = append(out, bytecode.NewLabel("new"))
			} else if _, ok := code.Elements[x-1].(*bytecode.Label); !ok {
				out = append(out, bytecode.NewLabel("new"))
			}
		}
		out = append(out, e)
	}
	code.Elements = out
}

type value = bytecode.VerificationType

var (
	top     = value{Kind: bytecode.VerifyTop}
	integer = value{Kind: bytecode.VerifyInteger}
	float   = value{Kind: bytecode.VerifyFloat}
	long    = value{Kind: bytecode.VerifyLong}
	double  = value{Kind: bytecode.VerifyDouble}
	null    = value{Kind: bytecode.VerifyNull}
)

func object(name string) value {
	return value{Kind: bytecode.VerifyObject, Name: name}
}

// valueOf maps a field descriptor onto the type a verifier tracks for it.
func valueOf(d string) value {
	switch d {
	case "Z", "B", "C", "S", "I":
		return integer
	case "F":
		return float
	case "J":
		return long
	case "D":
		return double
	}
	return object(descriptor.InternalName(d))
}

func width(v value) int {
	if v.Kind == bytecode.VerifyLong || v.Kind == bytecode.VerifyDouble {
		return 2
	}
	return 1
}

func isReference(v value) bool {
	return v.Kind == bytecode.VerifyObject || v.Kind == bytecode.VerifyNull
}

type state struct {
	locals []value
	stack  []value
}

func (self *state) clone() *state {
	return &state{
		locals: append([]value(nil), self.locals...),
		stack:  append([]value(nil), self.stack...),
	}
}

type handlerRange struct {
	start   int
	end     int
	handler int
	catch   value
}

type simulation struct {
	ctx       context.Context
	analyzer  *Analyzer
	owner     string
	method    *bytecode.MethodModel
	elements  []bytecode.Element
	positions map[*bytecode.Label]int
	// blocks maps every element to the first element of its run of labels.
	blocks    []int
	handlers  []handlerRange
	entries   map[int]*state
	work      []int
	queued    map[int]bool
	maxStack  int
	maxLocals int
}

func newSimulation(ctx context.Context, analyzer *Analyzer, owner string, method *bytecode.MethodModel) (*simulation, error) {
	code := method.Code
	sim := &simulation{
		ctx:       ctx,
		analyzer:  analyzer,
		owner:     owner,
		method:    method,
		elements:  code.Elements,
		positions: make(map[*bytecode.Label]int, len(code.Elements)),
		blocks:    make([]int, len(code.Elements)),
		entries:   make(map[int]*state),
		queued:    make(map[int]bool),
	}
	for x, e := range sim.elements {
		sim.blocks[x] = x
		label, ok := e.(*bytecode.Label)
		if !ok {
			continue
		}
		sim.positions[label] = x
		if x > 0 {
			if _, prev := sim.elements[x-1].(*bytecode.Label); prev {
				sim.blocks[x] = sim.blocks[x-1]
			}
		}
	}
	for _, h := range code.Handlers {
		start, okStart := sim.positions[h.Start]
		end, okEnd := sim.positions[h.End]
		handler, okHandler := sim.positions[h.Handler]
		if !okStart || !okEnd || !okHandler {
			return nil, errors.Errorf("method %s%s has an exception handler with an unplaced label", method.Name, method.Descriptor)
		}
		catch := object("java/lang/Throwable")
		if h.Type != "" {
			catch = object(h.Type)
		}
		sim.handlers = append(sim.handlers, handlerRange{start: start, end: end, handler: handler, catch: catch})
	}
	return sim, nil
}

func (self *simulation) initial() (*state, error) {
	params, _, err := descriptor.ParseMethod(self.method.Descriptor)
	if err != nil {
		return nil, errors.Wrapf(err, "method %s", self.method.Name)
	}
	s := &state{}
	if !self.method.Access.Has(bytecode.AccStatic) {
		if self.method.Name == "<init>" && self.owner != inheritance.Object {
			s.locals = append(s.locals, value{Kind: bytecode.VerifyUninitializedThis})
		} else {
			s.locals = append(s.locals, object(self.owner))
		}
	}
	for _, p := range params {
		v := valueOf(p)
		s.locals = append(s.locals, v)
		if width(v) == 2 {
			s.locals = append(s.locals, top)
		}
	}
	self.maxLocals = len(s.locals)
	return s, nil
}

func (self *simulation) run() error {
	entry, err := self.initial()
	if err != nil {
		return err
	}
	if len(self.elements) == 0 {
		return nil
	}
	if err := self.flow(0, entry); err != nil {
		return err
	}
	for len(self.work) > 0 {
		if err := self.ctx.Err(); err != nil {
			return err
		}
		key := self.work[0]
		self.work = self.work[1:]
		self.queued[key] = false
		if err := self.block(key); err != nil {
			return err
		}
	}
	return nil
}

// flow merges s into the entry state of the block containing element x and
// schedules the block when its entry state changed.
func (self *simulation) flow(x int, s *state) error {
	key := self.blocks[x]
	old, ok := self.entries[key]
	if !ok {
		self.entries[key] = s.clone()
		self.schedule(key)
		return nil
	}
	merged, changed, err := self.merge(old, s)
	if err != nil {
		return errors.Wrapf(err, "at %s", self.describe(key))
	}
	if changed {
		self.entries[key] = merged
		self.schedule(key)
	}
	return nil
}

func (self *simulation) schedule(key int) {
	if self.queued[key] {
		return
	}
	self.queued[key] = true
	self.work = append(self.work, key)
}

func (self *simulation) describe(x int) string {
	if label, ok := self.elements[x].(*bytecode.Label); ok {
		return "label " + label.Name
	}
	return "method entry"
}

func (self *simulation) block(key int) error {
	s := self.entries[key].clone()
	for x := key; x < len(self.elements); x = x + 1 {
		insn, ok := self.elements[x].(bytecode.Instruction)
		if !ok {
			if self.blocks[x] != key {
				return self.flow(x, s)
			}
			continue
		}
		if err := self.protect(x, s); err != nil {
			return err
		}
		targets, err := self.execute(x, insn, s)
		if err != nil {
			return errors.Wrapf(err, "%s", insn.Opcode())
		}
		if bytecode.IsStore(insn.Opcode()) {
			if err := self.protect(x, s); err != nil {
				return err
			}
		}
		for _, target := range targets {
			at, ok := self.positions[target]
			if !ok {
				return errors.Errorf("%s jumps to unplaced label %s", insn.Opcode(), target.Name)
			}
			if err := self.flow(at, s); err != nil {
				return err
			}
		}
		if bytecode.IsTerminal(insn.Opcode()) {
			return nil
		}
	}
	return errors.New("execution falls off the end of the code")
}

// protect feeds the current locals into every handler covering element x.
func (self *simulation) protect(x int, s *state) error {
	for _, h := range self.handlers {
		if x < h.start || x >= h.end {
			continue
		}
		if self.maxStack < 1 {
			self.maxStack = 1
		}
		if err := self.flow(h.handler, &state{locals: s.locals, stack: []value{h.catch}}); err != nil {
			return err
		}
	}
	return nil
}

func (self *simulation) merge(old *state, in *state) (*state, bool, error) {
	if len(old.stack) != len(in.stack) {
		return nil, false, errors.Errorf("stack heights differ (%d and %d)", len(old.stack), len(in.stack))
	}
	out := &state{
		locals: make([]value, len(old.locals)),
		stack:  make([]value, len(old.stack)),
	}
	changed := false
	for x := range old.locals {
		v := top
		if x < len(in.locals) {
			joined, err := self.join(old.locals[x], in.locals[x])
			if err != nil {
				return nil, false, err
			}
			v = joined
		}
		out.locals[x] = v
		changed = changed || v != old.locals[x]
	}
	for x := range old.stack {
		v, err := self.join(old.stack[x], in.stack[x])
		if err != nil {
			return nil, false, err
		}
		if v.Kind == bytecode.VerifyTop && old.stack[x].Kind != bytecode.VerifyTop {
			return nil, false, errors.Errorf("incompatible stack values at depth %d", x)
		}
		out.stack[x] = v
		changed = changed || v != old.stack[x]
	}
	return out, changed, nil
}

func (self *simulation) join(a value, b value) (value, error) {
	if a == b {
		return a, nil
	}
	if !isReference(a) || !isReference(b) {
		return top, nil
	}
	if a.Kind == bytecode.VerifyNull {
		return b, nil
	}
	if b.Kind == bytecode.VerifyNull {
		return a, nil
	}
	if strings.HasPrefix(a.Name, "[") || strings.HasPrefix(b.Name, "[") {
		return object(inheritance.Object), nil
	}
	common, err := self.analyzer.checker.CommonSuperclass(self.ctx, a.Name, b.Name)
	if err != nil {
		return top, err
	}
	return object(common), nil
}

// frames lists the entry state of every reachable branch target and handler
// in code order. Locals hold one entry per slot with trailing tops removed.
func (self *simulation) frames() []bytecode.Frame {
	targets := make(map[int]bool)
	for _, e := range self.elements {
		insn, ok := e.(bytecode.Instruction)
		if !ok {
			continue
		}
		for _, target := range bytecode.Targets(insn) {
			if at, ok := self.positions[target]; ok {
				targets[self.blocks[at]] = true
			}
		}
	}
	for _, h := range self.handlers {
		targets[self.blocks[h.handler]] = true
	}
	keys := make([]int, 0, len(targets))
	for key := range targets {
		if _, ok := self.entries[key]; ok {
			keys = append(keys, key)
		}
	}
	sort.Ints(keys)
	out := make([]bytecode.Frame, 0, len(keys))
	for _, key := range keys {
		s := self.entries[key]
		locals := s.locals
		for len(locals) > 0 && locals[len(locals)-1].Kind == bytecode.VerifyTop {
			locals = locals[:len(locals)-1]
		}
		out = append(out, bytecode.Frame{
			Label:  self.elements[key].(*bytecode.Label),
			Locals: append([]value{}, locals...),
			Stack:  append([]value{}, s.stack...),
		})
	}
	return out
}
