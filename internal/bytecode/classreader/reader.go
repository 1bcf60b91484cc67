// Package classreader builds a class model from class file bytes.
package classreader

import (
	"bytes"
	"math"
	"strings"

	"github.com/pkg/errors"
	parser "github.com/wreulicke/classfile-parser"

	"gopkg.microglot.org/jasm/internal/bytecode"
	"gopkg.microglot.org/jasm/internal/exc"
	"gopkg.microglot.org/jasm/internal/result"
)

// Magic starts every class file.
var Magic = []byte{0xCA, 0xFE, 0xBA, 0xBE}

func IsClass(data []byte) bool {
	return bytes.HasPrefix(data, Magic)
}

// Load decodes data as a class file or, failing the magic check, as a
// member image.
func Load(uri string, data []byte) result.Result[*bytecode.ClassModel] {
	if IsClass(data) {
		return Read(uri, data)
	}
	loc := exc.Location{URI: uri}
	if !bytecode.IsImage(data) {
		return result.Err[*bytecode.ClassModel](exc.New(loc, exc.CodeUnsupportedFileFormat, "neither a class file nor a member image"))
	}
	model, err := bytecode.UnmarshalImage(data)
	if err != nil {
		return result.Err[*bytecode.ClassModel](exc.Wrap(loc, exc.CodeReadFailure, err))
	}
	return result.Ok(model)
}

type bootstrapMethod struct {
	handle    uint16
	arguments []uint16
}

type reader struct {
	uri       string
	cp        *parser.ConstantPool
	raw       *layout
	bootstrap []bootstrapMethod
	warnings  []exc.Exception
}

// Read decodes a class file. Attributes with no place in the model are
// skipped; skipped annotations are reported as warnings.
func Read(uri string, data []byte) result.Result[*bytecode.ClassModel] {
	loc := exc.Location{URI: uri}
	if !IsClass(data) {
		return result.Err[*bytecode.ClassModel](exc.New(loc, exc.CodeUnsupportedFileFormat, "not a class file"))
	}
	cf, err := parser.New(bytes.NewReader(data)).Parse()
	if err != nil {
		return result.Err[*bytecode.ClassModel](exc.Wrap(loc, exc.CodeReadFailure, errors.Wrap(err, "parsing class file")))
	}
	fail := func(err error) result.Result[*bytecode.ClassModel] {
		return result.Err[*bytecode.ClassModel](exc.Wrap(loc, exc.CodeReadFailure, err))
	}
	raw, err := scan(data)
	if err != nil {
		return fail(err)
	}
	if len(raw.fields) != len(cf.Fields) || len(raw.methods) != len(cf.Methods) {
		return fail(errors.New("member counts disagree with the class file"))
	}
	r := &reader{uri: uri, cp: cf.ConstantPool, raw: raw}

	name, err := cf.ThisClassName()
	if err != nil {
		return fail(errors.Wrap(err, "reading class name"))
	}
	m := &bytecode.ClassModel{
		Version: uint16(cf.MajorVersion),
		Access:  bytecode.Access(raw.access),
		Name:    name,
	}
	if cf.SuperClass != 0 {
		if m.Super, err = cf.SuperClassName(); err != nil {
			return fail(errors.Wrap(err, "reading super class"))
		}
	}
	for _, idx := range cf.Interfaces {
		i, err := r.className(idx)
		if err != nil {
			return fail(err)
		}
		m.Interfaces = append(m.Interfaces, i)
	}
	if sf := cf.SourceFile(); sf != nil {
		if m.SourceFile, err = r.utf8(sf.SourcefileIndex); err != nil {
			return fail(err)
		}
	}
	if sig := cf.Signature(); sig != nil {
		if m.Signature, err = r.utf8(sig.Signature); err != nil {
			return fail(err)
		}
	}
	for _, a := range raw.attributes {
		if err := r.classAttribute(m, a); err != nil {
			return fail(errors.Wrapf(err, "reading %s attribute", a.name))
		}
	}
	for x, f := range cf.Fields {
		fname, err := f.Name(r.cp)
		if err != nil {
			return fail(errors.Wrap(err, "reading field name"))
		}
		desc, err := f.Descriptor(r.cp)
		if err != nil {
			return fail(errors.Wrapf(err, "reading descriptor of field %s", fname))
		}
		field := &bytecode.FieldModel{Access: bytecode.Access(raw.fields[x].access), Name: fname, Descriptor: desc}
		if sig := f.Signature(); sig != nil {
			if field.Signature, err = r.utf8(sig.Signature); err != nil {
				return fail(err)
			}
		}
		if err := r.fieldAttributes(field, raw.fields[x].attributes); err != nil {
			return fail(err)
		}
		m.Fields = append(m.Fields, field)
	}
	for x, method := range cf.Methods {
		mname, err := method.Name(r.cp)
		if err != nil {
			return fail(errors.Wrap(err, "reading method name"))
		}
		desc, err := method.Descriptor(r.cp)
		if err != nil {
			return fail(errors.Wrapf(err, "reading descriptor of method %s", mname))
		}
		attributes := raw.methods[x].attributes
		mm := &bytecode.MethodModel{Access: bytecode.Access(raw.methods[x].access), Name: mname, Descriptor: desc}
		if e := method.Exceptions(); e != nil {
			for _, idx := range e.ExceptionIndexes {
				t, err := r.className(idx)
				if err != nil {
					return fail(err)
				}
				mm.Exceptions = append(mm.Exceptions, t)
			}
		}
		if sig := method.Signature(); sig != nil {
			if mm.Signature, err = r.utf8(sig.Signature); err != nil {
				return fail(err)
			}
		}
		if err := r.methodAttributes(mm, attributes); err != nil {
			return fail(err)
		}
		if code := method.Code(); code != nil {
			var tail *codeAttribute
			if a, ok := find(attributes, "Code"); ok {
				if tail, err = raw.code(a); err != nil {
					return fail(errors.Wrapf(err, "reading %s%s", mname, desc))
				}
			}
			body, err := r.code(code.Codes, tail)
			if err != nil {
				return fail(errors.Wrapf(err, "decoding %s%s", mname, desc))
			}
			body.MaxStack = uint16(code.MaxStack)
			body.MaxLocals = uint16(code.MaxLocals)
			mm.Code = body
		}
		m.Methods = append(m.Methods, mm)
	}
	return result.Ok(m, r.warnings...)
}

func (self *reader) skipped(owner string, kind string) {
	self.warnings = append(self.warnings, exc.Newf(exc.Location{URI: self.uri}, exc.CodeSkippedAttribute, "%s: %s attribute is not decoded", owner, kind))
}

func isAnnotation(name string) bool {
	return strings.Contains(name, "Annotation")
}

func (self *reader) classAttribute(m *bytecode.ClassModel, a attribute) error {
	c := &cursor{b: a.info}
	var err error
	switch {
	case a.name == "InnerClasses":
		for n := int(c.u2()); n > 0 && c.err == nil && err == nil; n = n - 1 {
			name, outer, innerName := c.u2(), c.u2(), c.u2()
			inner := bytecode.InnerClass{Access: bytecode.Access(c.u2())}
			if c.err != nil {
				break
			}
			if inner.Name, err = self.className(name); err != nil {
				break
			}
			if outer != 0 {
				if inner.Outer, err = self.className(outer); err != nil {
					break
				}
			}
			if innerName != 0 {
				if inner.InnerName, err = self.utf8(innerName); err != nil {
					break
				}
			}
			m.InnerClasses = append(m.InnerClasses, inner)
		}
	case a.name == "NestHost":
		if host := c.u2(); c.err == nil {
			m.NestHost, err = self.className(host)
		}
	case a.name == "NestMembers":
		m.NestMembers, err = self.classNames(indexes(c))
	case a.name == "PermittedSubclasses":
		m.PermittedSubclasses, err = self.classNames(indexes(c))
	case a.name == "Record":
		for n := int(c.u2()); n > 0 && c.err == nil && err == nil; n = n - 1 {
			nameIndex, descIndex := c.u2(), c.u2()
			self.raw.read(c)
			if c.err != nil {
				break
			}
			var rc bytecode.RecordComponent
			if rc.Name, err = self.utf8(nameIndex); err != nil {
				break
			}
			if rc.Descriptor, err = self.utf8(descIndex); err != nil {
				break
			}
			m.RecordComponents = append(m.RecordComponents, rc)
		}
	case a.name == "BootstrapMethods":
		for n := int(c.u2()); n > 0 && c.err == nil; n = n - 1 {
			handle := c.u2()
			self.bootstrap = append(self.bootstrap, bootstrapMethod{handle: handle, arguments: indexes(c)})
		}
	case isAnnotation(a.name):
		self.skipped(m.Name, a.name)
	}
	if c.err != nil {
		return c.err
	}
	return err
}

// indexes reads a count followed by that many constant pool indexes.
func indexes(c *cursor) []uint16 {
	n := int(c.u2())
	out := make([]uint16, 0, n)
	for x := 0; x < n && c.err == nil; x = x + 1 {
		out = append(out, c.u2())
	}
	return out
}

func (self *reader) fieldAttributes(out *bytecode.FieldModel, attributes []attribute) error {
	for _, a := range attributes {
		switch {
		case a.name == "ConstantValue":
			c := &cursor{b: a.info}
			idx := c.u2()
			if c.err != nil {
				return errors.Wrapf(c.err, "reading value of field %s", out.Name)
			}
			v, err := self.loadable(idx)
			if err != nil {
				return errors.Wrapf(err, "reading value of field %s", out.Name)
			}
			out.Value = v
		case isAnnotation(a.name):
			self.skipped(out.Name, a.name)
		}
	}
	return nil
}

func (self *reader) methodAttributes(out *bytecode.MethodModel, attributes []attribute) error {
	for _, a := range attributes {
		switch {
		case a.name == "MethodParameters":
			names, err := self.parameterNames(a)
			if err != nil {
				return errors.Wrapf(err, "reading parameters of %s%s", out.Name, out.Descriptor)
			}
			out.ParameterNames = names
		case isAnnotation(a.name):
			self.skipped(out.Name+out.Descriptor, a.name)
		}
	}
	return nil
}

// parameterNames returns nil when any parameter is unnamed.
func (self *reader) parameterNames(a attribute) ([]string, error) {
	c := &cursor{b: a.info}
	var names []string
	unnamed := false
	for n := int(c.u1()); n > 0 && c.err == nil; n = n - 1 {
		idx := c.u2()
		c.u2()
		if idx == 0 || unnamed {
			unnamed = true
			continue
		}
		name, err := self.utf8(idx)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if c.err != nil {
		return nil, c.err
	}
	if unnamed {
		return nil, nil
	}
	return names, nil
}

func (self *reader) utf8(idx uint16) (string, error) {
	u := self.cp.LookupUtf8(idx)
	if u == nil {
		return "", errors.Errorf("constant %d is not a utf8 entry", idx)
	}
	return u.String(), nil
}

func (self *reader) className(idx uint16) (string, error) {
	name, err := self.cp.GetClassName(idx)
	if err != nil {
		return "", errors.Wrapf(err, "reading class constant %d", idx)
	}
	return name, nil
}

func (self *reader) classNames(idxs []uint16) ([]string, error) {
	out := make([]string, 0, len(idxs))
	for _, idx := range idxs {
		name, err := self.className(idx)
		if err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, nil
}

func (self *reader) constant(idx uint16) (interface{}, error) {
	if idx < 1 || int(idx) > len(self.cp.Constants) || self.cp.Constants[idx-1] == nil {
		return nil, errors.Errorf("constant %d is out of range", idx)
	}
	return self.cp.Constants[idx-1], nil
}

func (self *reader) nameAndType(idx uint16) (string, string, error) {
	c, err := self.constant(idx)
	if err != nil {
		return "", "", err
	}
	nat, ok := c.(*parser.ConstantNameAndType)
	if !ok {
		return "", "", errors.Errorf("constant %d is not a name and type", idx)
	}
	name, err := self.utf8(nat.NameIndex)
	if err != nil {
		return "", "", err
	}
	desc, err := self.utf8(nat.DescriptorIndex)
	return name, desc, err
}

// ref resolves a field, method or interface method reference.
func (self *reader) ref(idx uint16) (string, string, string, bool, error) {
	c, err := self.constant(idx)
	if err != nil {
		return "", "", "", false, err
	}
	var class, nat uint16
	itf := false
	switch v := c.(type) {
	case *parser.ConstantFieldref:
		class, nat = v.ClassIndex, v.NameAndTypeIndex
	case *parser.ConstantMethodref:
		class, nat = v.ClassIndex, v.NameAndTypeIndex
	case *parser.ConstantInterfaceMethodref:
		class, nat = v.ClassIndex, v.NameAndTypeIndex
		itf = true
	default:
		return "", "", "", false, errors.Errorf("constant %d is not a member reference", idx)
	}
	owner, err := self.className(class)
	if err != nil {
		return "", "", "", false, err
	}
	name, desc, err := self.nameAndType(nat)
	return owner, name, desc, itf, err
}

func (self *reader) handle(idx uint16) (bytecode.Handle, error) {
	e := self.raw.entry(idx)
	if e.tag != tagMethodHandle {
		return bytecode.Handle{}, errors.Errorf("constant %d is not a method handle", idx)
	}
	c := &cursor{b: e.info}
	kind, ref := c.u1(), c.u2()
	owner, name, desc, itf, err := self.ref(ref)
	if err != nil {
		return bytecode.Handle{}, err
	}
	return bytecode.Handle{Kind: bytecode.HandleKind(kind), Owner: owner, Name: name, Descriptor: desc, Interface: itf}, nil
}

// loadable resolves a constant that ldc, ConstantValue or a bootstrap
// argument may name.
func (self *reader) loadable(idx uint16) (bytecode.Constant, error) {
	switch e := self.raw.entry(idx); e.tag {
	case tagDouble:
		c := &cursor{b: e.info}
		high, low := uint64(c.u4()), uint64(c.u4())
		return bytecode.Double(math.Float64frombits(high<<32 | low)), nil
	case tagMethodType:
		c := &cursor{b: e.info}
		desc, err := self.utf8(c.u2())
		return bytecode.MethodType(desc), err
	case tagMethodHandle:
		return self.handle(idx)
	}
	c, err := self.constant(idx)
	if err != nil {
		return nil, err
	}
	switch v := c.(type) {
	case *parser.ConstantInteger:
		return bytecode.Int(int32(v.Bytes)), nil
	case *parser.ConstantFloat:
		return bytecode.Float(math.Float32frombits(uint32(v.Bytes))), nil
	case *parser.ConstantLong:
		return bytecode.Long(int64(v.HighBytes)<<32 | int64(uint32(v.LowBytes))), nil
	case *parser.ConstantString:
		s, err := self.utf8(v.StringIndex)
		return bytecode.String(s), err
	case *parser.ConstantClass:
		name, err := self.utf8(v.NameIndex)
		return bytecode.Type(name), err
	}
	return nil, errors.Errorf("constant %d is not loadable", idx)
}

func (self *reader) invokeDynamic(idx uint16) (*bytecode.InvokeDynamicInsn, error) {
	c, err := self.constant(idx)
	if err != nil {
		return nil, err
	}
	indy, ok := c.(*parser.ConstantInvokeDynamic)
	if !ok {
		return nil, errors.Errorf("constant %d is not an invokedynamic entry", idx)
	}
	name, desc, err := self.nameAndType(indy.NameAndTypeIndex)
	if err != nil {
		return nil, err
	}
	if int(indy.BootstrapMethodAttrIndex) >= len(self.bootstrap) {
		return nil, errors.Errorf("bootstrap method %d is missing", indy.BootstrapMethodAttrIndex)
	}
	bsm := self.bootstrap[indy.BootstrapMethodAttrIndex]
	h, err := self.handle(bsm.handle)
	if err != nil {
		return nil, err
	}
	out := &bytecode.InvokeDynamicInsn{Name: name, Descriptor: desc, Bootstrap: h}
	for _, a := range bsm.arguments {
		arg, err := self.loadable(a)
		if err != nil {
			return nil, err
		}
		out.Arguments = append(out.Arguments, arg)
	}
	return out, nil
}
