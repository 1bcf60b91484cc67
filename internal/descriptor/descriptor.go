// Package descriptor validates and decomposes field and method descriptors
// and internal type names.
package descriptor

import (
	"fmt"
	"strings"
)

// primitives maps each primitive descriptor code to its keyword.
var primitives = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
}

// IsValidFieldDescriptor reports whether d is exactly one field type.
func IsValidFieldDescriptor(d string) bool {
	n, ok := scanField(d, 0)
	return ok && n == len(d)
}

// IsValidMethodDescriptor reports whether d is "(" params ")" return where
// return may also be V.
func IsValidMethodDescriptor(d string) bool {
	_, _, err := ParseMethod(d)
	return err == nil
}

// IsValidDescriptor accepts either form.
func IsValidDescriptor(d string) bool {
	if strings.HasPrefix(d, "(") {
		return IsValidMethodDescriptor(d)
	}
	return IsValidFieldDescriptor(d)
}

// IsValidInternalName accepts names like java/lang/Object. Array
// descriptors are accepted too since they name array classes.
func IsValidInternalName(name string) bool {
	if name == "" {
		return false
	}
	if name[0] == '[' {
		return IsValidFieldDescriptor(name)
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || strings.ContainsAny(part, ".;[") {
			return false
		}
	}
	return true
}

// scanField consumes one field type starting at offset and returns the offset
// just past it.
func scanField(d string, offset int) (int, bool) {
	x := offset
	for x < len(d) && d[x] == '[' {
		x = x + 1
	}
	if x >= len(d) {
		return x, false
	}
	if x-offset > 255 {
		return x, false
	}
	if _, ok := primitives[d[x]]; ok {
		return x + 1, true
	}
	if d[x] != 'L' {
		return x, false
	}
	end := strings.IndexByte(d[x:], ';')
	if end < 0 {
		return x, false
	}
	name := d[x+1 : x+end]
	if name == "" || strings.ContainsAny(name, ".[()") {
		return x, false
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" {
			return x, false
		}
	}
	return x + end + 1, true
}

// ParseMethod splits a method descriptor into its parameter and return types.
func ParseMethod(d string) ([]string, string, error) {
	if !strings.HasPrefix(d, "(") {
		return nil, "", fmt.Errorf("%q is not a valid descriptor: missing (", d)
	}
	var params []string
	x := 1
	for x < len(d) && d[x] != ')' {
		next, ok := scanField(d, x)
		if !ok {
			return nil, "", fmt.Errorf("%q is not a valid descriptor", d)
		}
		params = append(params, d[x:next])
		x = next
	}
	if x >= len(d) {
		return nil, "", fmt.Errorf("%q is not a valid descriptor: unbalanced parentheses", d)
	}
	ret := d[x+1:]
	if ret == "V" {
		return params, ret, nil
	}
	if !IsValidFieldDescriptor(ret) {
		return nil, "", fmt.Errorf("%q is not a valid descriptor: bad return type", d)
	}
	return params, ret, nil
}

// Size is the number of local slots or stack words a value of type d takes.
func Size(d string) int {
	switch d {
	case "J", "D":
		return 2
	case "V", "":
		return 0
	default:
		return 1
	}
}

// ArgumentSlots returns the slot count of the method's parameters, adding
// one for the receiver when instance is true.
func ArgumentSlots(d string, instance bool) int {
	params, _, err := ParseMethod(d)
	if err != nil {
		return 0
	}
	n := 0
	if instance {
		n = 1
	}
	for _, p := range params {
		n = n + Size(p)
	}
	return n
}

// ParameterSlots maps each parameter index to its first local slot.
func ParameterSlots(d string, instance bool) []int {
	params, _, err := ParseMethod(d)
	if err != nil {
		return nil
	}
	slot := 0
	if instance {
		slot = 1
	}
	out := make([]int, 0, len(params))
	for _, p := range params {
		out = append(out, slot)
		slot = slot + Size(p)
	}
	return out
}

// PrimitiveName returns the keyword for a primitive descriptor code.
func PrimitiveName(d string) (string, bool) {
	if len(d) != 1 {
		return "", false
	}
	n, ok := primitives[d[0]]
	return n, ok
}

// PrimitiveCode is the inverse of PrimitiveName.
func PrimitiveCode(name string) (string, bool) {
	for k, v := range primitives {
		if v == name {
			return string(k), true
		}
	}
	return "", false
}

// IsReference reports whether d names an object or array type.
func IsReference(d string) bool {
	return strings.HasPrefix(d, "L") || strings.HasPrefix(d, "[")
}

// InternalName converts an object descriptor into an internal name. Array
// descriptors are returned unchanged.
func InternalName(d string) string {
	if strings.HasPrefix(d, "L") && strings.HasSuffix(d, ";") {
		return d[1 : len(d)-1]
	}
	return d
}

// FromInternalName converts an internal name into a field descriptor.
func FromInternalName(name string) string {
	if strings.HasPrefix(name, "[") {
		return name
	}
	return "L" + name + ";"
}

// ElementType strips one array dimension.
func ElementType(d string) string {
	return strings.TrimPrefix(d, "[")
}

// SplitRef splits owner.name at the last dot.
func SplitRef(ref string) (string, string, bool) {
	x := strings.LastIndexByte(ref, '.')
	if x <= 0 || x == len(ref)-1 {
		return "", "", false
	}
	return ref[:x], ref[x+1:], true
}
