package glbuild

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// Template is the immutable, parsed text of a shader function. Templates are GLSL
// function definitions where the function name and every external input are written
// as $placeholders:
//
//	vec4 $colorInput() {
//		return $rgba;
//	}
//
// The placeholder in the function name position is the self-reference and is replaced by
// the function's unique render-name. All other placeholders are replaced with the name or
// literal of the [Symbol] assigned to them during activation.
type Template struct {
	src          []byte
	name         string
	ret          GLType
	params       []GLType
	placeholders []string
}

// ParseTemplate parses a shader function template.
func ParseTemplate(src string) (*Template, error) {
	s := bytes.TrimSpace([]byte(src))
	brace := bytes.IndexByte(s, '{')
	if brace < 0 {
		return nil, errors.New("template missing function body")
	}
	sig := s[:brace]
	open := bytes.IndexByte(sig, '(')
	closing := bytes.LastIndexByte(sig, ')')
	if open < 0 || closing < open {
		return nil, errors.New("unable to parse template function signature")
	}
	head := bytes.TrimSpace(sig[:open])
	dollar := bytes.LastIndexByte(head, '$')
	if dollar < 0 {
		return nil, fmt.Errorf("template function %q must name itself with a $placeholder", head)
	}
	name := string(head[dollar+1:])
	if !isIdentifier(name) {
		return nil, fmt.Errorf("invalid template function name %q", name)
	}
	ret, err := ParseGLType(string(bytes.TrimSpace(head[:dollar])))
	if err != nil {
		return nil, fmt.Errorf("template %s return type: %w", name, err)
	}
	t := &Template{
		src:  s,
		name: name,
		ret:  ret,
	}
	params := strings.TrimSpace(string(sig[open+1 : closing]))
	if params != "" && params != "void" {
		for _, param := range strings.Split(params, ",") {
			fields := strings.Fields(param)
			if len(fields) < 2 {
				return nil, fmt.Errorf("template %s: malformed parameter %q", name, param)
			}
			pt, err := ParseGLType(fields[len(fields)-2])
			if err != nil {
				return nil, fmt.Errorf("template %s parameter: %w", name, err)
			}
			t.params = append(t.params, pt)
		}
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '$' {
			continue
		}
		ident := readIdentifier(s[i+1:])
		if len(ident) == 0 {
			return nil, fmt.Errorf("template %s: stray $ at offset %d", name, i)
		}
		i += len(ident)
		if string(ident) == name || t.hasPlaceholder(string(ident)) {
			continue
		}
		t.placeholders = append(t.placeholders, string(ident))
	}
	return t, nil
}

// MustParseTemplate is like [ParseTemplate] but panics on error. Use it for package-level templates.
func MustParseTemplate(src string) *Template {
	t, err := ParseTemplate(src)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the declared (logical) function name, i.e. "colorInput" for "$colorInput".
func (t *Template) Name() string { return t.name }

// ReturnType returns the function's declared GLSL return type.
func (t *Template) ReturnType() GLType { return t.ret }

// Params returns the types of the function's parameters.
func (t *Template) Params() []GLType { return t.params }

// Placeholders returns the external placeholder names in order of first appearance.
func (t *Template) Placeholders() []string { return t.placeholders }

// String returns the unrendered template text.
func (t *Template) String() string { return string(t.src) }

func (t *Template) hasPlaceholder(name string) bool {
	for _, ph := range t.placeholders {
		if ph == name {
			return true
		}
	}
	return false
}

// ShaderFunction is a [Template] instantiated for one component during one composition
// pass. It is created by the [Composer] which assigns its render-name before components
// are activated, so a component may reference any other component's function.
type ShaderFunction struct {
	tmpl      *Template
	hook      *Hook
	component string
	name      string
	args      map[string]*Symbol
	unknown   []string
}

// Template returns the function's template.
func (fn *ShaderFunction) Template() *Template { return fn.tmpl }

// Name returns the unique render-name assigned for the current pass.
func (fn *ShaderFunction) Name() string { return fn.name }

// Hook returns the name of the hook the function is attached to.
func (fn *ShaderFunction) Hook() string { return fn.hook.Name }

// Component returns the name of the component that supplied the function.
func (fn *ShaderFunction) Component() string { return fn.component }

// Set assigns sym to placeholder. Setting an undeclared placeholder is reported by the Composer.
func (fn *ShaderFunction) Set(placeholder string, sym *Symbol) {
	if !fn.tmpl.hasPlaceholder(placeholder) {
		fn.unknown = append(fn.unknown, placeholder)
		return
	}
	fn.args[placeholder] = sym
}

// Get returns the symbol assigned to placeholder or nil.
func (fn *ShaderFunction) Get(placeholder string) *Symbol {
	return fn.args[placeholder]
}

func (fn *ShaderFunction) stage() Stage { return fn.hook.Stage }

// appendRendered appends the function's GLSL code with all placeholders substituted.
// expr appends the expression that replaces a bound symbol.
func (fn *ShaderFunction) appendRendered(dst []byte, expr func(dst []byte, sym *Symbol) []byte) ([]byte, error) {
	src := fn.tmpl.src
	for len(src) > 0 {
		idx := bytes.IndexByte(src, '$')
		if idx < 0 {
			dst = append(dst, src...)
			break
		}
		dst = append(dst, src[:idx]...)
		ident := readIdentifier(src[idx+1:])
		src = src[idx+1+len(ident):]
		if string(ident) == fn.tmpl.name {
			dst = append(dst, fn.name...)
			continue
		}
		sym := fn.args[string(ident)]
		if sym == nil {
			return dst, &UnboundPlaceholderError{Function: fn.tmpl.name, Placeholder: string(ident)}
		}
		dst = expr(dst, sym)
	}
	dst = append(dst, '\n')
	return dst, nil
}

func readIdentifier(b []byte) []byte {
	n := 0
	for n < len(b) && isIdentByte(b[n], n == 0) {
		n++
	}
	return b[:n]
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentByte(s[i], i == 0) {
			return false
		}
	}
	return true
}

func isIdentByte(c byte, first bool) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (!first && c >= '0' && c <= '9')
}
