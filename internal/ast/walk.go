package ast

// Walk visits n and then its children depth first. Returning false from f
// skips the children of that node.
func Walk(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	switch v := n.(type) {
	case *Array:
		walkAll(v.Values, f)
	case *Object:
		for _, e := range v.Entries {
			Walk(e.Key, f)
			Walk(e.Value, f)
		}
	case *Declaration:
		walkAll(v.Elements, f)
	case *Code:
		walkAll(v.Elements, f)
	case *Instruction:
		Walk(v.Mnemonic, f)
		walkAll(v.Args, f)
	case *Label:
		Walk(v.Name, f)
	case *Type:
		for _, a := range v.Annotations {
			Walk(a, f)
		}
		walkAll(v.Members, f)
	case *Field:
		for _, a := range v.Annotations {
			Walk(a, f)
		}
		Walk(v.Value, f)
	case *Method:
		for _, a := range v.Annotations {
			Walk(a, f)
		}
		for _, e := range v.Exceptions {
			Walk(e, f)
		}
		if v.Code != nil {
			Walk(v.Code, f)
		}
	case *Annotation:
		if v.Values != nil {
			Walk(v.Values, f)
		}
	}
}

func walkAll(nodes []Node, f func(Node) bool) {
	for _, n := range nodes {
		Walk(n, f)
	}
}
