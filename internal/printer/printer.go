// Package printer renders class views as assembly text that assembles back
// to an equivalent class.
package printer

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"gopkg.microglot.org/jasm/internal/bytecode"
	"gopkg.microglot.org/jasm/internal/escape"
)

const DefaultIndent = "  "

type Option func(p *Printer)

func OptionWithIndent(indent string) Option {
	return func(p *Printer) {
		p.Indent = indent
	}
}

// OptionWithFrames prints the stack map frames of each code body as
// comments.
func OptionWithFrames(frames bool) Option {
	return func(p *Printer) {
		p.Frames = frames
	}
}

// Printer holds options only. Every call builds its own state, so one
// Printer may be used concurrently.
type Printer struct {
	Indent string
	Frames bool
}

func New(opts ...Option) *Printer {
	p := &Printer{Indent: DefaultIndent}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Print writes class to w. A class without a name holds loose members,
// which are printed as top-level declarations.
func (self *Printer) Print(w io.Writer, class bytecode.ClassView) error {
	out := &writer{indent: self.Indent}
	self.class(out, class)
	_, err := io.WriteString(w, out.String())
	return errors.Wrap(err, "writing assembly")
}

func (self *Printer) Sprint(class bytecode.ClassView) string {
	out := &writer{indent: self.Indent}
	self.class(out, class)
	return out.String()
}

type writer struct {
	strings.Builder
	indent string
	depth  int
}

func (self *writer) line(format string, args ...interface{}) {
	for x := 0; x < self.depth; x = x + 1 {
		_, _ = self.WriteString(self.indent)
	}
	_, _ = fmt.Fprintf(&self.Builder, format, args...)
	_ = self.WriteByte('\n')
}

func (self *writer) blank() {
	_ = self.WriteByte('\n')
}

func (self *Printer) class(out *writer, class bytecode.ClassView) {
	if class.Name() == "" {
		self.members(out, class)
		return
	}
	out.line("// version %d", class.Version())
	if s := class.Signature(); s != "" {
		out.line(".signature %s", quote(s))
	}
	for _, a := range class.Annotations() {
		out.line("%s", annotation(a))
	}
	parts := append([]string{".class"}, class.Access().Names(bytecode.ContextClass)...)
	parts = append(parts, class.Name())
	if s := class.Super(); s != "" {
		parts = append(parts, "extends", s)
	}
	if interfaces := class.Interfaces(); len(interfaces) > 0 {
		parts = append(parts, "implements")
		parts = append(parts, interfaces...)
	}
	out.line("%s {", strings.Join(parts, " "))
	out.depth = out.depth + 1
	attributes := self.attributes(out, class)
	if attributes && len(class.Fields())+len(class.Methods()) > 0 {
		out.blank()
	}
	self.members(out, class)
	out.depth = out.depth - 1
	out.line("}")
}

func (self *Printer) attributes(out *writer, class bytecode.ClassView) bool {
	printed := false
	emit := func(format string, args ...interface{}) {
		out.line(format, args...)
		printed = true
	}
	if s := class.SourceFile(); s != "" {
		emit(".sourcefile %s", quote(s))
	}
	if h := class.NestHost(); h != "" {
		emit(".nesthost %s", h)
	}
	for _, m := range class.NestMembers() {
		emit(".nestmember %s", m)
	}
	for _, s := range class.PermittedSubclasses() {
		emit(".permittedsubclass %s", s)
	}
	for _, c := range class.RecordComponents() {
		emit(".record-component %s %s", c.Name, c.Descriptor)
	}
	for _, inner := range class.InnerClasses() {
		parts := append([]string{".inner"}, inner.Access.Names(bytecode.ContextInner)...)
		parts = append(parts, inner.Name)
		if inner.Outer != "" || inner.InnerName != "" {
			outer := inner.Outer
			if outer == "" {
				outer = "*"
			}
			parts = append(parts, outer)
			if inner.InnerName != "" {
				parts = append(parts, inner.InnerName)
			}
		}
		emit("%s", strings.Join(parts, " "))
	}
	return printed
}

// members prints fields then methods in declaration order with a blank
// line between members.
func (self *Printer) members(out *writer, class bytecode.ClassView) {
	first := true
	separate := func() {
		if !first {
			out.blank()
		}
		first = false
	}
	for _, f := range class.Fields() {
		separate()
		self.field(out, f)
	}
	for _, m := range class.Methods() {
		separate()
		self.method(out, m)
	}
}

func (self *Printer) field(out *writer, f bytecode.FieldView) {
	if s := f.Signature(); s != "" {
		out.line(".signature %s", quote(s))
	}
	for _, a := range f.Annotations() {
		out.line("%s", annotation(a))
	}
	parts := append([]string{".field"}, f.Access().Names(bytecode.ContextField)...)
	parts = append(parts, f.Name(), f.Descriptor())
	head := strings.Join(parts, " ")
	if v := f.Value(); v != nil {
		out.line("%s { value: %s }", head, fieldValue(f.Descriptor(), v))
		return
	}
	out.line("%s", head)
}

func (self *Printer) method(out *writer, m bytecode.MethodView) {
	if s := m.Signature(); s != "" {
		out.line(".signature %s", quote(s))
	}
	for _, a := range m.Annotations() {
		out.line("%s", annotation(a))
	}
	for _, t := range m.Exceptions() {
		out.line(".throws %s", t)
	}
	parts := append([]string{".method"}, m.Access().Names(bytecode.ContextMethod)...)
	parts = append(parts, m.Name(), m.Descriptor())
	head := strings.Join(parts, " ")

	params := parameterNames(m)
	var entries []string
	if len(params) > 0 {
		entries = append(entries, fmt.Sprintf("parameters: { %s }", strings.Join(params, ", ")))
	}
	var lines []string
	if code := m.Code(); code != nil {
		body := newCodePrinter(m, code, params, self.Frames)
		lines = body.lines()
		if locals := body.names.declared(); len(locals) > 0 {
			bindings := make([]string, 0, len(locals))
			for _, l := range locals {
				bindings = append(bindings, fmt.Sprintf("%s: %d", l.name, l.slot))
			}
			entries = append(entries, fmt.Sprintf("locals: { %s }", strings.Join(bindings, ", ")))
		}
		if handlers := body.handlers(); handlers != "" {
			entries = append(entries, "exceptions: "+handlers)
		}
	}
	if len(entries) == 0 && m.Code() == nil {
		out.line("%s", head)
		return
	}
	out.line("%s {", head)
	out.depth = out.depth + 1
	for x, e := range entries {
		if x < len(entries)-1 || m.Code() != nil {
			e = e + ","
		}
		out.line("%s", e)
	}
	if m.Code() != nil {
		out.line("code: {")
		out.depth = out.depth + 1
		for _, l := range lines {
			out.line("%s", l)
		}
		out.depth = out.depth - 1
		out.line("}")
	}
	out.depth = out.depth - 1
	out.line("}")
}

func quote(s string) string {
	return `"` + escape.Escape(s) + `"`
}

func annotation(a *bytecode.Annotation) string {
	keyword := ".annotation"
	if !a.Visible {
		keyword = ".invisible-annotation"
	}
	head := keyword + " " + a.Type
	if len(a.Elements) == 0 {
		return head
	}
	values := make([]string, 0, len(a.Elements))
	for _, e := range a.Elements {
		values = append(values, e.Name+": "+annotationValue(e.Value))
	}
	return head + " { " + strings.Join(values, ", ") + " }"
}

func annotationValue(v bytecode.AnnotationValue) string {
	switch value := v.(type) {
	case bytecode.Bool:
		return strconv.FormatBool(bool(value))
	case bytecode.Char:
		return "'" + escape.EscapeChar(rune(value)) + "'"
	case bytecode.ClassValue:
		return string(value)
	case bytecode.EnumValue:
		return ".enum " + value.Type + " " + value.Name
	case *bytecode.Annotation:
		return annotation(value)
	case bytecode.ArrayValue:
		if len(value) == 0 {
			return "{}"
		}
		values := make([]string, 0, len(value))
		for _, e := range value {
			values = append(values, annotationValue(e))
		}
		return "{ " + strings.Join(values, ", ") + " }"
	case bytecode.Constant:
		return constant(value)
	}
	return fmt.Sprintf("%v", v)
}

// fieldValue prints booleans as true and false. Everything else is the
// literal of the constant.
func fieldValue(desc string, c bytecode.Constant) string {
	if v, ok := c.(bytecode.Int); ok && desc == "Z" && (v == 0 || v == 1) {
		return strconv.FormatBool(v == 1)
	}
	return constant(c)
}

func constant(c bytecode.Constant) string {
	switch v := c.(type) {
	case bytecode.Int:
		return strconv.FormatInt(int64(v), 10)
	case bytecode.Long:
		return strconv.FormatInt(int64(v), 10) + "L"
	case bytecode.Float:
		return floatLiteral(float64(v), 32)
	case bytecode.Double:
		return floatLiteral(float64(v), 64)
	case bytecode.String:
		return quote(string(v))
	case bytecode.Type:
		return string(v)
	case bytecode.MethodType:
		return string(v)
	case bytecode.Handle:
		return handle(v)
	}
	return fmt.Sprintf("%v", c)
}

func handle(h bytecode.Handle) string {
	return fmt.Sprintf("{ %s, %s.%s, %s }", h.KindName(), h.Owner, h.Name, h.Descriptor)
}

// floatLiteral prints the shortest literal that reads back as the same
// value. Floats carry an f suffix; doubles always contain a dot or an
// exponent.
func floatLiteral(v float64, bits int) string {
	suffix := ""
	if bits == 32 {
		suffix = "f"
	}
	switch {
	case math.IsNaN(v):
		return "NaN" + suffix
	case math.IsInf(v, 1):
		return "Infinity" + suffix
	case math.IsInf(v, -1):
		return "-Infinity" + suffix
	}
	s := strconv.FormatFloat(v, 'g', -1, bits)
	if bits == 64 && !strings.ContainsAny(s, ".e") {
		s = s + ".0"
	}
	return s + suffix
}
