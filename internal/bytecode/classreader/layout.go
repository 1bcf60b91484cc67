package classreader

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Constant pool tags.
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

var entrySize = map[uint8]int{
	tagInteger:            4,
	tagFloat:              4,
	tagLong:               8,
	tagDouble:             8,
	tagClass:              2,
	tagString:             2,
	tagFieldref:           4,
	tagMethodref:          4,
	tagInterfaceMethodref: 4,
	tagNameAndType:        4,
	tagMethodHandle:       3,
	tagMethodType:         2,
	tagDynamic:            4,
	tagInvokeDynamic:      4,
	tagModule:             2,
	tagPackage:            2,
}

type cursor struct {
	b   []byte
	at  int
	err error
}

func (self *cursor) take(n int) []byte {
	if self.err != nil {
		return nil
	}
	if n < 0 || self.at+n > len(self.b) {
		self.err = errors.Errorf("data ends at %d, %d bytes short", len(self.b), self.at+n-len(self.b))
		return nil
	}
	out := self.b[self.at : self.at+n]
	self.at = self.at + n
	return out
}

func (self *cursor) u1() uint8 {
	if b := self.take(1); len(b) == 1 {
		return b[0]
	}
	return 0
}

func (self *cursor) u2() uint16 {
	if b := self.take(2); len(b) == 2 {
		return binary.BigEndian.Uint16(b)
	}
	return 0
}

func (self *cursor) u4() uint32 {
	if b := self.take(4); len(b) == 4 {
		return binary.BigEndian.Uint32(b)
	}
	return 0
}

type entry struct {
	tag  uint8
	info []byte
}

// attribute is a named, undecoded attribute body.
type attribute struct {
	name string
	info []byte
}

type member struct {
	access     uint16
	attributes []attribute
}

// layout is a class file split down to attribute bodies. The parser
// resolves names, descriptors and the common constants; attribute bodies
// and the remaining constant kinds are decoded from here.
type layout struct {
	pool       []entry
	access     uint16
	fields     []member
	methods    []member
	attributes []attribute
}

func scan(data []byte) (*layout, error) {
	c := &cursor{b: data}
	c.take(8)
	l := &layout{pool: make([]entry, c.u2())}
	for idx := 1; idx < len(l.pool) && c.err == nil; idx = idx + 1 {
		tag := c.u1()
		if tag == tagUtf8 {
			l.pool[idx] = entry{tag: tag, info: c.take(int(c.u2()))}
			continue
		}
		size, ok := entrySize[tag]
		if !ok {
			return nil, errors.Errorf("constant %d has unknown tag %d", idx, tag)
		}
		l.pool[idx] = entry{tag: tag, info: c.take(size)}
		if tag == tagLong || tag == tagDouble {
			idx = idx + 1
		}
	}
	l.access = c.u2()
	c.take(4)
	c.take(2 * int(c.u2()))
	l.fields = l.members(c)
	l.methods = l.members(c)
	l.attributes = l.read(c)
	if c.err != nil {
		return nil, errors.Wrap(c.err, "scanning class file")
	}
	return l, nil
}

func (self *layout) members(c *cursor) []member {
	var out []member
	for n := int(c.u2()); n > 0 && c.err == nil; n = n - 1 {
		access := c.u2()
		c.take(4)
		out = append(out, member{access: access, attributes: self.read(c)})
	}
	return out
}

// read reads an attribute count followed by that many attributes.
func (self *layout) read(c *cursor) []attribute {
	var out []attribute
	for n := int(c.u2()); n > 0 && c.err == nil; n = n - 1 {
		name := self.utf8(c.u2())
		out = append(out, attribute{name: name, info: c.take(int(c.u4()))})
	}
	return out
}

func (self *layout) utf8(idx uint16) string {
	if e := self.entry(idx); e.tag == tagUtf8 {
		return string(e.info)
	}
	return ""
}

func (self *layout) entry(idx uint16) entry {
	if self == nil || int(idx) >= len(self.pool) {
		return entry{}
	}
	return self.pool[idx]
}

func find(attributes []attribute, name string) (attribute, bool) {
	for _, a := range attributes {
		if a.name == name {
			return a, true
		}
	}
	return attribute{}, false
}

type exceptionEntry struct {
	start     uint16
	end       uint16
	handler   uint16
	catchType uint16
}

// codeAttribute holds the parts of a Code attribute that follow the code
// array.
type codeAttribute struct {
	handlers   []exceptionEntry
	attributes []attribute
}

func (self *layout) code(a attribute) (*codeAttribute, error) {
	c := &cursor{b: a.info}
	c.take(4)
	c.take(int(c.u4()))
	out := &codeAttribute{}
	for n := int(c.u2()); n > 0 && c.err == nil; n = n - 1 {
		e := exceptionEntry{}
		e.start = c.u2()
		e.end = c.u2()
		e.handler = c.u2()
		e.catchType = c.u2()
		out.handlers = append(out.handlers, e)
	}
	out.attributes = self.read(c)
	if c.err != nil {
		return nil, errors.Wrap(c.err, "reading Code attribute")
	}
	return out, nil
}
