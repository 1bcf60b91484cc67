// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package bytecode

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ImageMagic starts every encoded class image.
var ImageMagic = []byte("JIMG")

const imageVersion = 1

// IsImage reports whether b starts with the image header.
func IsImage(b []byte) bool {
	return bytes.HasPrefix(b, ImageMagic)
}

// MarshalImage encodes a class model as the image header followed by a
// protobuf Struct. Labels are written as per-method identifiers and 64 bit
// integers as decimal strings so that no precision is lost.
func MarshalImage(model *ClassModel) ([]byte, error) {
	s, err := structpb.NewStruct(encodeClass(model))
	if err != nil {
		return nil, err
	}
	body, err := proto.MarshalOptions{Deterministic: true}.Marshal(s)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(body)+len(ImageMagic)+1)
	out = append(out, ImageMagic...)
	out = append(out, imageVersion)
	return append(out, body...), nil
}

// UnmarshalImage decodes MarshalImage output.
func UnmarshalImage(b []byte) (*ClassModel, error) {
	if !IsImage(b) || len(b) < len(ImageMagic)+1 {
		return nil, fmt.Errorf("not a class image")
	}
	if v := b[len(ImageMagic)]; v != imageVersion {
		return nil, fmt.Errorf("unsupported class image version %d", v)
	}
	s := &structpb.Struct{}
	if err := proto.Unmarshal(b[len(ImageMagic)+1:], s); err != nil {
		return nil, err
	}
	d := &decoder{}
	model := d.class(s.AsMap())
	if d.err != nil {
		return nil, d.err
	}
	return model, nil
}

type object = map[string]interface{}
type list = []interface{}

func stringList(vs []string) list {
	out := make(list, 0, len(vs))
	for _, v := range vs {
		out = append(out, v)
	}
	return out
}

func encodeClass(m *ClassModel) object {
	o := object{
		"version":             float64(m.Version),
		"access":              float64(m.Access),
		"name":                m.Name,
		"super":               m.Super,
		"interfaces":          stringList(m.Interfaces),
		"signature":           m.Signature,
		"sourcefile":          m.SourceFile,
		"annotations":         encodeAnnotations(m.Annotations),
		"nesthost":            m.NestHost,
		"nestmembers":         stringList(m.NestMembers),
		"permittedsubclasses": stringList(m.PermittedSubclasses),
	}
	inner := list{}
	for _, c := range m.InnerClasses {
		inner = append(inner, object{"name": c.Name, "outer": c.Outer, "innername": c.InnerName, "access": float64(c.Access)})
	}
	o["inner"] = inner
	records := list{}
	for _, r := range m.RecordComponents {
		records = append(records, object{"name": r.Name, "descriptor": r.Descriptor, "signature": r.Signature})
	}
	o["records"] = records
	fields := list{}
	for _, f := range m.Fields {
		fo := object{
			"access":      float64(f.Access),
			"name":        f.Name,
			"descriptor":  f.Descriptor,
			"signature":   f.Signature,
			"annotations": encodeAnnotations(f.Annotations),
		}
		if f.Value != nil {
			fo["value"] = encodeConstant(f.Value)
		}
		fields = append(fields, fo)
	}
	o["fields"] = fields
	methods := list{}
	for _, mm := range m.Methods {
		mo := object{
			"access":      float64(mm.Access),
			"name":        mm.Name,
			"descriptor":  mm.Descriptor,
			"signature":   mm.Signature,
			"exceptions":  stringList(mm.Exceptions),
			"annotations": encodeAnnotations(mm.Annotations),
			"parameters":  stringList(mm.ParameterNames),
		}
		if mm.Code != nil {
			mo["code"] = encodeCode(mm.Code)
		}
		methods = append(methods, mo)
	}
	o["methods"] = methods
	return o
}

type labelIDs map[*Label]string

func (ids labelIDs) id(l *Label) string {
	if id, ok := ids[l]; ok {
		return id
	}
	id := "L" + strconv.Itoa(len(ids))
	ids[l] = id
	return id
}

func (ids labelIDs) ids(ls []*Label) list {
	out := make(list, 0, len(ls))
	for _, l := range ls {
		out = append(out, ids.id(l))
	}
	return out
}

func encodeCode(c *Code) object {
	ids := labelIDs{}
	elements := list{}
	for _, e := range c.Elements {
		elements = append(elements, encodeElement(e, ids))
	}
	handlers := list{}
	for _, h := range c.Handlers {
		handlers = append(handlers, object{"start": ids.id(h.Start), "end": ids.id(h.End), "handler": ids.id(h.Handler), "type": h.Type})
	}
	locals := list{}
	for _, v := range c.Locals {
		locals = append(locals, object{
			"name":       v.Name,
			"descriptor": v.Descriptor,
			"signature":  v.Signature,
			"start":      ids.id(v.Start),
			"end":        ids.id(v.End),
			"index":      float64(v.Index),
		})
	}
	frames := list{}
	for _, f := range c.Frames {
		frames = append(frames, object{
			"label":  ids.id(f.Label),
			"locals": encodeVerification(f.Locals, ids),
			"stack":  encodeVerification(f.Stack, ids),
		})
	}
	return object{
		"elements":  elements,
		"handlers":  handlers,
		"locals":    locals,
		"frames":    frames,
		"maxstack":  float64(c.MaxStack),
		"maxlocals": float64(c.MaxLocals),
	}
}

func encodeVerification(ts []VerificationType, ids labelIDs) list {
	out := make(list, 0, len(ts))
	for _, t := range ts {
		o := object{"kind": float64(t.Kind), "name": t.Name}
		if t.New != nil {
			o["new"] = ids.id(t.New)
		}
		out = append(out, o)
	}
	return out
}

func encodeElement(e Element, ids labelIDs) object {
	switch v := e.(type) {
	case *Label:
		return object{"type": "label", "label": ids.id(v)}
	case *SimpleInsn:
		return object{"type": "insn", "op": float64(v.Op)}
	case *IntInsn:
		return object{"type": "int", "op": float64(v.Op), "operand": float64(v.Operand)}
	case *VarInsn:
		return object{"type": "var", "op": float64(v.Op), "var": float64(v.Var)}
	case *IincInsn:
		return object{"type": "iinc", "var": float64(v.Var), "increment": float64(v.Increment)}
	case *TypeInsn:
		return object{"type": "type", "op": float64(v.Op), "operand": v.Type}
	case *FieldInsn:
		return object{"type": "field", "op": float64(v.Op), "owner": v.Owner, "name": v.Name, "descriptor": v.Descriptor}
	case *MethodInsn:
		return object{"type": "method", "op": float64(v.Op), "owner": v.Owner, "name": v.Name, "descriptor": v.Descriptor, "interface": v.Interface}
	case *InvokeDynamicInsn:
		args := list{}
		for _, a := range v.Arguments {
			args = append(args, encodeConstant(a))
		}
		return object{"type": "indy", "name": v.Name, "descriptor": v.Descriptor, "bootstrap": encodeConstant(v.Bootstrap), "arguments": args}
	case *JumpInsn:
		return object{"type": "jump", "op": float64(v.Op), "target": ids.id(v.Target)}
	case *LdcInsn:
		return object{"type": "ldc", "constant": encodeConstant(v.Constant)}
	case *TableSwitchInsn:
		return object{"type": "tableswitch", "min": float64(v.Min), "max": float64(v.Max), "default": ids.id(v.Default), "targets": ids.ids(v.Targets)}
	case *LookupSwitchInsn:
		keys := list{}
		for _, k := range v.Keys {
			keys = append(keys, float64(k))
		}
		return object{"type": "lookupswitch", "default": ids.id(v.Default), "keys": keys, "targets": ids.ids(v.Targets)}
	case *MultiANewArrayInsn:
		return object{"type": "multianewarray", "descriptor": v.Descriptor, "dimensions": float64(v.Dimensions)}
	}
	return object{"type": "unknown"}
}

func encodeConstant(c interface{}) object {
	switch v := c.(type) {
	case Int:
		return object{"type": "int", "value": float64(v)}
	case Long:
		return object{"type": "long", "value": strconv.FormatInt(int64(v), 10)}
	case Float:
		return object{"type": "float", "value": strconv.FormatUint(uint64(math.Float32bits(float32(v))), 10)}
	case Double:
		return object{"type": "double", "value": strconv.FormatUint(math.Float64bits(float64(v)), 10)}
	case String:
		return object{"type": "string", "value": string(v)}
	case Type:
		return object{"type": "class", "value": string(v)}
	case MethodType:
		return object{"type": "methodtype", "value": string(v)}
	case Handle:
		return object{"type": "handle", "kind": float64(v.Kind), "owner": v.Owner, "name": v.Name, "descriptor": v.Descriptor, "interface": v.Interface}
	case Bool:
		return object{"type": "bool", "value": bool(v)}
	case Char:
		return object{"type": "char", "value": float64(v)}
	case ClassValue:
		return object{"type": "classvalue", "value": string(v)}
	case EnumValue:
		return object{"type": "enum", "owner": v.Type, "name": v.Name}
	case ArrayValue:
		values := list{}
		for _, e := range v {
			values = append(values, encodeConstant(e))
		}
		return object{"type": "array", "values": values}
	case *Annotation:
		return object{"type": "annotation", "annotation": encodeAnnotation(v)}
	}
	return object{"type": "unknown"}
}

func encodeAnnotations(as []*Annotation) list {
	out := make(list, 0, len(as))
	for _, a := range as {
		out = append(out, encodeAnnotation(a))
	}
	return out
}

func encodeAnnotation(a *Annotation) object {
	elements := list{}
	for _, e := range a.Elements {
		elements = append(elements, object{"name": e.Name, "value": encodeConstant(e.Value)})
	}
	return object{"type": a.Type, "visible": a.Visible, "elements": elements}
}

// decoder reads the generic map form. The first problem found is kept in
// err; later reads return zero values.
type decoder struct {
	err    error
	labels map[string]*Label
}

func (d *decoder) fail(format string, args ...interface{}) {
	if d.err == nil {
		d.err = fmt.Errorf("class image: "+format, args...)
	}
}

func (d *decoder) str(o object, key string) string {
	v, ok := o[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		d.fail("%s is not a string", key)
	}
	return s
}

func (d *decoder) num(o object, key string) float64 {
	v, ok := o[key]
	if !ok || v == nil {
		return 0
	}
	n, ok := v.(float64)
	if !ok {
		d.fail("%s is not a number", key)
	}
	return n
}

func (d *decoder) boolean(o object, key string) bool {
	b, _ := o[key].(bool)
	return b
}

func (d *decoder) list(o object, key string) list {
	v, ok := o[key]
	if !ok || v == nil {
		return nil
	}
	l, ok := v.(list)
	if !ok {
		d.fail("%s is not a list", key)
	}
	return l
}

func (d *decoder) objects(o object, key string) []object {
	var out []object
	for _, v := range d.list(o, key) {
		m, ok := v.(object)
		if !ok {
			d.fail("%s holds a non-object", key)
			return nil
		}
		out = append(out, m)
	}
	return out
}

func (d *decoder) object(o object, key string) object {
	m, _ := o[key].(object)
	return m
}

func (d *decoder) strings(o object, key string) []string {
	var out []string
	for _, v := range d.list(o, key) {
		s, ok := v.(string)
		if !ok {
			d.fail("%s holds a non-string", key)
			return nil
		}
		out = append(out, s)
	}
	return out
}

func (d *decoder) label(id string) *Label {
	if l, ok := d.labels[id]; ok {
		return l
	}
	l := NewLabel(id)
	d.labels[id] = l
	return l
}

func (d *decoder) class(o object) *ClassModel {
	m := &ClassModel{
		Version:             uint16(d.num(o, "version")),
		Access:              Access(d.num(o, "access")),
		Name:                d.str(o, "name"),
		Super:               d.str(o, "super"),
		Interfaces:          d.strings(o, "interfaces"),
		Signature:           d.str(o, "signature"),
		SourceFile:          d.str(o, "sourcefile"),
		Annotations:         d.annotations(o, "annotations"),
		NestHost:            d.str(o, "nesthost"),
		NestMembers:         d.strings(o, "nestmembers"),
		PermittedSubclasses: d.strings(o, "permittedsubclasses"),
	}
	for _, c := range d.objects(o, "inner") {
		m.InnerClasses = append(m.InnerClasses, InnerClass{
			Name:      d.str(c, "name"),
			Outer:     d.str(c, "outer"),
			InnerName: d.str(c, "innername"),
			Access:    Access(d.num(c, "access")),
		})
	}
	for _, r := range d.objects(o, "records") {
		m.RecordComponents = append(m.RecordComponents, RecordComponent{
			Name:       d.str(r, "name"),
			Descriptor: d.str(r, "descriptor"),
			Signature:  d.str(r, "signature"),
		})
	}
	for _, f := range d.objects(o, "fields") {
		fm := &FieldModel{
			Access:      Access(d.num(f, "access")),
			Name:        d.str(f, "name"),
			Descriptor:  d.str(f, "descriptor"),
			Signature:   d.str(f, "signature"),
			Annotations: d.annotations(f, "annotations"),
		}
		if v := d.object(f, "value"); v != nil {
			if c, ok := d.constant(v).(Constant); ok {
				fm.Value = c
			} else {
				d.fail("field value is not a constant")
			}
		}
		m.Fields = append(m.Fields, fm)
	}
	for _, mo := range d.objects(o, "methods") {
		mm := &MethodModel{
			Access:         Access(d.num(mo, "access")),
			Name:           d.str(mo, "name"),
			Descriptor:     d.str(mo, "descriptor"),
			Signature:      d.str(mo, "signature"),
			Exceptions:     d.strings(mo, "exceptions"),
			Annotations:    d.annotations(mo, "annotations"),
			ParameterNames: d.strings(mo, "parameters"),
		}
		if c := d.object(mo, "code"); c != nil {
			mm.Code = d.code(c)
		}
		m.Methods = append(m.Methods, mm)
	}
	return m
}

func (d *decoder) code(o object) *Code {
	d.labels = make(map[string]*Label)
	c := &Code{
		MaxStack:  uint16(d.num(o, "maxstack")),
		MaxLocals: uint16(d.num(o, "maxlocals")),
	}
	for _, e := range d.objects(o, "elements") {
		if el := d.element(e); el != nil {
			c.Elements = append(c.Elements, el)
		}
	}
	for _, h := range d.objects(o, "handlers") {
		c.Handlers = append(c.Handlers, Handler{
			Start:   d.label(d.str(h, "start")),
			End:     d.label(d.str(h, "end")),
			Handler: d.label(d.str(h, "handler")),
			Type:    d.str(h, "type"),
		})
	}
	for _, v := range d.objects(o, "locals") {
		c.Locals = append(c.Locals, LocalVariable{
			Name:       d.str(v, "name"),
			Descriptor: d.str(v, "descriptor"),
			Signature:  d.str(v, "signature"),
			Start:      d.label(d.str(v, "start")),
			End:        d.label(d.str(v, "end")),
			Index:      uint16(d.num(v, "index")),
		})
	}
	for _, f := range d.objects(o, "frames") {
		c.Frames = append(c.Frames, Frame{
			Label:  d.label(d.str(f, "label")),
			Locals: d.verification(f, "locals"),
			Stack:  d.verification(f, "stack"),
		})
	}
	return c
}

func (d *decoder) verification(o object, key string) []VerificationType {
	var out []VerificationType
	for _, v := range d.objects(o, key) {
		t := VerificationType{Kind: VerificationKind(d.num(v, "kind")), Name: d.str(v, "name")}
		if id := d.str(v, "new"); id != "" {
			t.New = d.label(id)
		}
		out = append(out, t)
	}
	return out
}

func (d *decoder) labelList(o object, key string) []*Label {
	var out []*Label
	for _, id := range d.strings(o, key) {
		out = append(out, d.label(id))
	}
	return out
}

func (d *decoder) element(o object) Element {
	op := Opcode(d.num(o, "op"))
	switch d.str(o, "type") {
	case "label":
		return d.label(d.str(o, "label"))
	case "insn":
		return &SimpleInsn{Op: op}
	case "int":
		return &IntInsn{Op: op, Operand: int32(d.num(o, "operand"))}
	case "var":
		return &VarInsn{Op: op, Var: uint16(d.num(o, "var"))}
	case "iinc":
		return &IincInsn{Var: uint16(d.num(o, "var")), Increment: int16(d.num(o, "increment"))}
	case "type":
		return &TypeInsn{Op: op, Type: d.str(o, "operand")}
	case "field":
		return &FieldInsn{Op: op, Owner: d.str(o, "owner"), Name: d.str(o, "name"), Descriptor: d.str(o, "descriptor")}
	case "method":
		return &MethodInsn{Op: op, Owner: d.str(o, "owner"), Name: d.str(o, "name"), Descriptor: d.str(o, "descriptor"), Interface: d.boolean(o, "interface")}
	case "indy":
		insn := &InvokeDynamicInsn{Name: d.str(o, "name"), Descriptor: d.str(o, "descriptor")}
		if h, ok := d.constant(d.object(o, "bootstrap")).(Handle); ok {
			insn.Bootstrap = h
		} else {
			d.fail("invokedynamic bootstrap is not a handle")
		}
		for _, a := range d.objects(o, "arguments") {
			if c, ok := d.constant(a).(Constant); ok {
				insn.Arguments = append(insn.Arguments, c)
			}
		}
		return insn
	case "jump":
		return &JumpInsn{Op: op, Target: d.label(d.str(o, "target"))}
	case "ldc":
		c, ok := d.constant(d.object(o, "constant")).(Constant)
		if !ok {
			d.fail("ldc operand is not loadable")
			return nil
		}
		return &LdcInsn{Constant: c}
	case "tableswitch":
		return &TableSwitchInsn{
			Min:     int32(d.num(o, "min")),
			Max:     int32(d.num(o, "max")),
			Default: d.label(d.str(o, "default")),
			Targets: d.labelList(o, "targets"),
		}
	case "lookupswitch":
		insn := &LookupSwitchInsn{Default: d.label(d.str(o, "default")), Targets: d.labelList(o, "targets")}
		for _, k := range d.list(o, "keys") {
			n, _ := k.(float64)
			insn.Keys = append(insn.Keys, int32(n))
		}
		return insn
	case "multianewarray":
		return &MultiANewArrayInsn{Descriptor: d.str(o, "descriptor"), Dimensions: uint8(d.num(o, "dimensions"))}
	}
	d.fail("unknown element type %q", d.str(o, "type"))
	return nil
}

func (d *decoder) parseUint(o object, bits int) uint64 {
	u, err := strconv.ParseUint(d.str(o, "value"), 10, bits)
	if err != nil {
		d.fail("bad %s constant", d.str(o, "type"))
	}
	return u
}

// constant returns a Constant, an AnnotationValue, or both.
func (d *decoder) constant(o object) interface{} {
	if o == nil {
		d.fail("missing constant")
		return nil
	}
	switch d.str(o, "type") {
	case "int":
		return Int(int32(d.num(o, "value")))
	case "long":
		v, err := strconv.ParseInt(d.str(o, "value"), 10, 64)
		if err != nil {
			d.fail("bad long constant")
		}
		return Long(v)
	case "float":
		return Float(math.Float32frombits(uint32(d.parseUint(o, 32))))
	case "double":
		return Double(math.Float64frombits(d.parseUint(o, 64)))
	case "string":
		return String(d.str(o, "value"))
	case "class":
		return Type(d.str(o, "value"))
	case "methodtype":
		return MethodType(d.str(o, "value"))
	case "handle":
		return Handle{
			Kind:       HandleKind(d.num(o, "kind")),
			Owner:      d.str(o, "owner"),
			Name:       d.str(o, "name"),
			Descriptor: d.str(o, "descriptor"),
			Interface:  d.boolean(o, "interface"),
		}
	case "bool":
		return Bool(d.boolean(o, "value"))
	case "char":
		return Char(uint16(d.num(o, "value")))
	case "classvalue":
		return ClassValue(d.str(o, "value"))
	case "enum":
		return EnumValue{Type: d.str(o, "owner"), Name: d.str(o, "name")}
	case "array":
		values := ArrayValue{}
		for _, e := range d.objects(o, "values") {
			if v, ok := d.constant(e).(AnnotationValue); ok {
				values = append(values, v)
			}
		}
		return values
	case "annotation":
		return d.annotation(d.object(o, "annotation"))
	}
	d.fail("unknown constant type %q", d.str(o, "type"))
	return nil
}

func (d *decoder) annotations(o object, key string) []*Annotation {
	var out []*Annotation
	for _, a := range d.objects(o, key) {
		out = append(out, d.annotation(a))
	}
	return out
}

func (d *decoder) annotation(o object) *Annotation {
	a := &Annotation{Type: d.str(o, "type"), Visible: d.boolean(o, "visible")}
	for _, e := range d.objects(o, "elements") {
		v, ok := d.constant(d.object(e, "value")).(AnnotationValue)
		if !ok {
			d.fail("annotation element %q has no value", d.str(e, "name"))
			continue
		}
		a.Elements = append(a.Elements, AnnotationElement{Name: d.str(e, "name"), Value: v})
	}
	return a
}
