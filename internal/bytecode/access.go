package bytecode

import "strings"

// Access holds access and property flags. Several bits mean different things
// depending on where they appear, so names are always looked up through an
// AccessContext.
type Access uint16

const (
	AccPublic       Access = 0x0001
	AccPrivate      Access = 0x0002
	AccProtected    Access = 0x0004
	AccStatic       Access = 0x0008
	AccFinal        Access = 0x0010
	AccSuper        Access = 0x0020
	AccSynchronized Access = 0x0020
	AccVolatile     Access = 0x0040
	AccBridge       Access = 0x0040
	AccTransient    Access = 0x0080
	AccVarargs      Access = 0x0080
	AccNative       Access = 0x0100
	AccInterface    Access = 0x0200
	AccAbstract     Access = 0x0400
	AccStrict       Access = 0x0800
	AccSynthetic    Access = 0x1000
	AccAnnotation   Access = 0x2000
	AccEnum         Access = 0x4000
	AccModule       Access = 0x8000
)

type AccessContext uint8

const (
	ContextClass AccessContext = iota
	ContextField
	ContextMethod
	ContextInner
)

func (c AccessContext) String() string {
	switch c {
	case ContextClass:
		return "class"
	case ContextField:
		return "field"
	case ContextMethod:
		return "method"
	default:
		return "inner class"
	}
}

type modifier struct {
	name string
	flag Access
}

var modifiers = map[AccessContext][]modifier{
	ContextClass: {
		{"public", AccPublic},
		{"final", AccFinal},
		{"super", AccSuper},
		{"interface", AccInterface},
		{"abstract", AccAbstract},
		{"synthetic", AccSynthetic},
		{"annotation", AccAnnotation},
		{"enum", AccEnum},
		{"module", AccModule},
	},
	ContextField: {
		{"public", AccPublic},
		{"private", AccPrivate},
		{"protected", AccProtected},
		{"static", AccStatic},
		{"final", AccFinal},
		{"volatile", AccVolatile},
		{"transient", AccTransient},
		{"synthetic", AccSynthetic},
		{"enum", AccEnum},
	},
	ContextMethod: {
		{"public", AccPublic},
		{"private", AccPrivate},
		{"protected", AccProtected},
		{"static", AccStatic},
		{"final", AccFinal},
		{"synchronized", AccSynchronized},
		{"bridge", AccBridge},
		{"varargs", AccVarargs},
		{"native", AccNative},
		{"abstract", AccAbstract},
		{"strict", AccStrict},
		{"synthetic", AccSynthetic},
	},
	ContextInner: {
		{"public", AccPublic},
		{"private", AccPrivate},
		{"protected", AccProtected},
		{"static", AccStatic},
		{"final", AccFinal},
		{"interface", AccInterface},
		{"abstract", AccAbstract},
		{"synthetic", AccSynthetic},
		{"annotation", AccAnnotation},
		{"enum", AccEnum},
	},
}

// ParseModifier returns the flag for a modifier keyword in the context.
func ParseModifier(name string, context AccessContext) (Access, bool) {
	for _, m := range modifiers[context] {
		if m.name == name {
			return m.flag, true
		}
	}
	return 0, false
}

// Names lists the modifier keywords set in a, in canonical order. Bits that
// have no name in the context are dropped.
func (a Access) Names(context AccessContext) []string {
	var out []string
	for _, m := range modifiers[context] {
		if a&m.flag != 0 {
			out = append(out, m.name)
		}
	}
	return out
}

func (a Access) Format(context AccessContext) string {
	return strings.Join(a.Names(context), " ")
}

func (a Access) Has(flag Access) bool {
	return a&flag == flag
}
