package glbuild

import "strconv"

// ChainKind defines how the functions attached to a hook are invoked by the hook's wrapper.
type ChainKind uint8

const (
	// ChainVoid wrappers call every member in registration order. Members
	// are void functions with no parameters used for their side effects.
	ChainVoid ChainKind = iota
	// ChainValue wrappers thread a single value of the hook's type through the members.
	// Members with no parameters are sources which produce the value; members
	// with one parameter of the hook type are transforms which modify it.
	ChainValue
)

// Hook is a named insertion point of a shader stage where components contribute functions.
type Hook struct {
	Name  string
	Stage Stage
	Kind  ChainKind
	// Type is the value type threaded through a ChainValue hook.
	Type GLType
	// Required hooks must be able to produce a value. Composition fails otherwise.
	Required bool
	// Default is a GLSL expression that seeds a ChainValue hook with no source members.
	Default string
	// Entry hooks are invoked by the stage's main function. A ChainValue entry hook's result is
	// written to gl_Position in the vertex stage and to the color output in the fragment stage.
	Entry bool
}

// FunctionChain is the ordered sequence of functions attached to one hook during a
// composition pass. It is rendered as a single wrapper function named after the hook.
type FunctionChain struct {
	hook    *Hook
	members []*ShaderFunction
}

// Hook returns the chain's hook definition.
func (c *FunctionChain) Hook() Hook { return *c.hook }

// Members returns the functions of the chain in registration order.
func (c *FunctionChain) Members() []*ShaderFunction { return c.members }

// Name returns the wrapper function's name.
func (c *FunctionChain) Name() string { return c.hook.Name }

// emitted reports whether the wrapper is generated.
func (c *FunctionChain) emitted() bool {
	if len(c.members) > 0 {
		return true
	}
	return c.hook.Kind == ChainValue && c.hook.Entry && c.hook.Default != ""
}

func isSource(fn *ShaderFunction) bool { return len(fn.tmpl.params) == 0 }

func (c *FunctionChain) validate() error {
	h := c.hook
	sources := 0
	for _, m := range c.members {
		t := m.tmpl
		switch h.Kind {
		case ChainVoid:
			if t.ret != Void || len(t.params) != 0 {
				return &InvalidSymbolTypeError{Function: t.name, Reason: "hook " + h.Name + " requires a void function without parameters"}
			}
		case ChainValue:
			if t.ret != h.Type {
				return &InvalidSymbolTypeError{Function: t.name, Reason: "hook " + h.Name + " requires functions returning " + h.Type.String() + ", got " + t.ret.String()}
			}
			switch {
			case len(t.params) == 0:
				sources++
			case len(t.params) == 1 && t.params[0] == h.Type:
			default:
				return &InvalidSymbolTypeError{Function: t.name, Reason: "hook " + h.Name + " functions take no parameters or a single " + h.Type.String()}
			}
		}
	}
	if h.Required && len(c.members) == 0 && (h.Kind == ChainVoid || h.Default == "") {
		return &MissingRequiredHookError{Hook: h.Name}
	}
	if h.Kind == ChainValue && sources == 0 && h.Default == "" && (h.Required || len(c.members) > 0) {
		// Transforms with nothing to transform.
		return &MissingRequiredHookError{Hook: h.Name}
	}
	return nil
}

// appendWrapper appends the GLSL code of the chain's wrapper function.
func (c *FunctionChain) appendWrapper(dst []byte) []byte {
	h := c.hook
	if h.Kind == ChainVoid {
		dst = append(dst, "void "...)
		dst = append(dst, h.Name...)
		dst = append(dst, "() {\n"...)
		for _, m := range c.members {
			dst = append(dst, '\t')
			dst = append(dst, m.name...)
			dst = append(dst, "();\n"...)
		}
		dst = append(dst, "}\n"...)
		return dst
	}
	typename := h.Type.String()
	dst = append(dst, typename...)
	dst = append(dst, ' ')
	dst = append(dst, h.Name...)
	dst = append(dst, "() {\n\t"...)
	dst = append(dst, typename...)
	dst = append(dst, " v"...)
	seeded := false
	for _, m := range c.members {
		if !isSource(m) {
			continue
		}
		if seeded {
			dst = append(dst, "\tv"...)
		}
		dst = append(dst, " = "...)
		dst = append(dst, m.name...)
		dst = append(dst, "();\n"...)
		seeded = true
	}
	if !seeded {
		dst = append(dst, " = "...)
		dst = append(dst, h.Default...)
		dst = append(dst, ";\n"...)
	}
	for _, m := range c.members {
		if isSource(m) {
			continue
		}
		dst = append(dst, "\tv = "...)
		dst = append(dst, m.name...)
		dst = append(dst, "(v);\n"...)
	}
	dst = append(dst, "\treturn v;\n}\n"...)
	return dst
}

func (c *FunctionChain) String() string {
	return c.hook.Name + "[" + strconv.Itoa(len(c.members)) + "]"
}
