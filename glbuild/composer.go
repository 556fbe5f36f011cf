package glbuild

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
)

// Component supplies shader functions for one or more hooks and binds their
// placeholders to symbols every composition pass.
type Component interface {
	// ComponentName identifies the component when other components declare a [Dependency] on it.
	ComponentName() string
	// Hooks lists the hooks the component contributes functions to.
	Hooks() []string
	// Templates returns the component's function templates for hook.
	Templates(hook string) []*Template
	// Dependencies lists the functions of other components this component references.
	Dependencies() []Dependency
	// Activate binds the placeholders of the component's functions. It is called
	// exactly once per composition pass after all render-names have been assigned.
	Activate(ctx *Context) error
}

// Dependency declares that a component references the function another component
// contributes to a hook.
type Dependency struct {
	Component string
	Hook      string
}

// Binding is a named entry of the composed program's binding table.
type Binding struct {
	Name string
	*Symbol
}

// Program is the result of a composition pass.
type Program struct {
	Vertex   string
	Fragment string
	// Bindings lists the uniform, attribute and varying symbols of the program
	// under their final names in declaration order.
	Bindings []Binding
}

// Lookup returns the binding with the given final name.
func (p Program) Lookup(name string) (Binding, bool) {
	for _, b := range p.Bindings {
		if b.Name == name {
			return b, true
		}
	}
	return Binding{}, false
}

// Hash returns a hash of the program's source code. Programs with equal hashes
// need not be recompiled.
func (p Program) Hash() uint64 {
	h := hash([]byte(p.Vertex), 0)
	return hash([]byte(p.Fragment), h)
}

// ComposerConfig configures a [Composer].
type ComposerConfig struct {
	Dialect Dialect
	// Hooks lists the hooks known to the composer in the order their wrappers are emitted.
	Hooks []Hook
	// VertexPrelude and FragmentPrelude are GLSL code inserted after declarations and before
	// component functions, i.e. helper functions referenced by templates or hook defaults.
	VertexPrelude   []byte
	FragmentPrelude []byte
	// Inputs are pinned symbols declared by the composer for use by the preludes.
	// They are bound by the caller and are not listed in [Program.Bindings].
	Inputs []*Symbol
	// Buffers allocates per-vertex buffers for components. Defaults to [HostAllocator].
	Buffers BufferAllocator
	// Logger receives debug information on composition passes. May be nil.
	Logger *slog.Logger
}

// Composer generates vertex and fragment shader source code from a list of components.
// A Composer reuses internal buffers and is not safe for concurrent use.
type Composer struct {
	cfg     ComposerConfig
	scratch []byte
}

// NewComposer validates cfg and returns a ready to use Composer.
func NewComposer(cfg ComposerConfig) (*Composer, error) {
	seen := make(map[string]bool)
	var valueEntry [2]string
	for i := range cfg.Hooks {
		h := &cfg.Hooks[i]
		if !isIdentifier(h.Name) {
			return nil, fmt.Errorf("invalid hook name %q", h.Name)
		} else if seen[h.Name] {
			return nil, fmt.Errorf("duplicate hook %q", h.Name)
		} else if h.Stage > StageFragment {
			return nil, fmt.Errorf("hook %s: invalid stage %s", h.Name, h.Stage)
		}
		seen[h.Name] = true
		switch h.Kind {
		case ChainVoid:
			if h.Default != "" {
				return nil, fmt.Errorf("void hook %s cannot have a default", h.Name)
			}
		case ChainValue:
			if h.Type == Void || h.Type.Components() == 0 {
				return nil, fmt.Errorf("value hook %s requires a value type", h.Name)
			}
			if h.Entry {
				if valueEntry[h.Stage] != "" {
					return nil, fmt.Errorf("hooks %s and %s both write %s stage output", valueEntry[h.Stage], h.Name, h.Stage)
				}
				valueEntry[h.Stage] = h.Name
			}
		default:
			return nil, fmt.Errorf("hook %s: invalid chain kind %d", h.Name, h.Kind)
		}
	}
	for _, in := range cfg.Inputs {
		if in == nil || in.Name == "" {
			return nil, errors.New("composer inputs must have pinned names")
		} else if in.Class != Uniform && in.Class != Attribute {
			return nil, fmt.Errorf("composer input %s must be uniform or attribute", in.Name)
		}
	}
	if cfg.Buffers == nil {
		cfg.Buffers = HostAllocator{}
	}
	cfg.Hooks = append([]Hook(nil), cfg.Hooks...)
	return &Composer{cfg: cfg, scratch: make([]byte, 0, 4096)}, nil
}

// Dialect returns the GLSL dialect generated.
func (c *Composer) Dialect() Dialect { return c.cfg.Dialect }

// Hooks returns the composer's hooks in emission order.
func (c *Composer) Hooks() []Hook { return append([]Hook(nil), c.cfg.Hooks...) }

// SetBufferAllocator sets the allocator components use through [Context.NewBuffer].
func (c *Composer) SetBufferAllocator(a BufferAllocator) {
	if a == nil {
		a = HostAllocator{}
	}
	c.cfg.Buffers = a
}

// Compose activates components in order and generates the program's source code and binding table.
// On error the returned Program is the zero value; composition has no partial results.
func (c *Composer) Compose(components ...Component) (Program, error) {
	p := c.newPass(components)
	prog, err := p.compose()
	if err != nil {
		if c.cfg.Logger != nil {
			c.cfg.Logger.Debug("composition failed", slog.Int("components", len(components)), slog.String("err", err.Error()))
		}
		return Program{}, err
	}
	if c.cfg.Logger != nil {
		c.cfg.Logger.Debug("composed program",
			slog.Int("components", len(components)),
			slog.Int("bindings", len(prog.Bindings)),
			slog.Int("vertexLen", len(prog.Vertex)),
			slog.Int("fragmentLen", len(prog.Fragment)),
		)
	}
	return prog, nil
}

// Context is the binding context handed to [Component.Activate]. It is scoped to
// one component during one composition pass and must not be retained.
type Context struct {
	p    *pass
	comp int
}

// ComponentName returns the name of the component being activated.
func (ctx *Context) ComponentName() string { return ctx.p.compNames[ctx.comp] }

// Dialect returns the GLSL dialect being generated.
func (ctx *Context) Dialect() Dialect { return ctx.p.c.cfg.Dialect }

// Function returns the component's function instantiated from t or nil if the
// component did not expose t through [Component.Templates].
func (ctx *Context) Function(t *Template) *ShaderFunction {
	return ctx.p.byTmpl[ctx.comp][t]
}

// Functions returns the component's functions attached to hook in registration order.
func (ctx *Context) Functions(hook string) []*ShaderFunction {
	var fns []*ShaderFunction
	for _, fn := range ctx.p.fns[ctx.comp] {
		if fn.hook.Name == hook {
			fns = append(fns, fn)
		}
	}
	return fns
}

// Dependency returns a chained reference to the first function the named
// component contributes to hook. The dependency must have been declared
// by the activated component's [Component.Dependencies].
func (ctx *Context) Dependency(component, hook string) (*Symbol, error) {
	declared := false
	for _, d := range ctx.p.deps[ctx.comp] {
		if d.Component == component && d.Hook == hook {
			declared = true
			break
		}
	}
	if !declared {
		return nil, fmt.Errorf("component %s did not declare dependency on %s hook %s", ctx.ComponentName(), component, hook)
	}
	target := ctx.p.depTarget[ctx.comp][Dependency{Component: component, Hook: hook}]
	return FunctionRef(target), nil
}

// HookRef returns a chained reference to hook's wrapper function.
func (ctx *Context) HookRef(hook string) (*Symbol, error) {
	chain := ctx.p.chainByName[hook]
	if chain == nil {
		return nil, fmt.Errorf("unknown hook %q", hook)
	}
	return &Symbol{Class: Function, Type: chain.hook.Type, hook: hook}, nil
}

// NewBuffer allocates a per-vertex buffer using the composer's [BufferAllocator].
func (ctx *Context) NewBuffer(data any) (Buffer, error) {
	return ctx.p.c.cfg.Buffers.NewBuffer(data)
}

// Allocator returns the composer's [BufferAllocator]. Components caching buffers across
// passes use it to detect an allocator change. Allocators must be comparable.
func (ctx *Context) Allocator() BufferAllocator { return ctx.p.c.cfg.Buffers }

type symbolUse struct {
	fn          *ShaderFunction
	placeholder string
}

type pass struct {
	c           *Composer
	comps       []Component
	compNames   []string
	chains      []*FunctionChain
	chainByName map[string]*FunctionChain
	fns         [][]*ShaderFunction
	byTmpl      []map[*Template]*ShaderFunction
	deps        [][]Dependency
	depTarget   []map[Dependency]*ShaderFunction
	// names maps every claimed global name to a description of its owner.
	names    map[string]string
	symNames map[*Symbol]string
	canon    map[string]*Symbol
	order    []*Symbol
	inputs   map[*Symbol]bool
	literals map[*Symbol][]byte
	// usage maps canonical symbols to the first use in each stage.
	usage   map[*Symbol]*[2]symbolUse
	counter int
}

func (c *Composer) newPass(components []Component) *pass {
	p := &pass{
		c:           c,
		comps:       components,
		compNames:   make([]string, len(components)),
		chainByName: make(map[string]*FunctionChain, len(c.cfg.Hooks)),
		fns:         make([][]*ShaderFunction, len(components)),
		byTmpl:      make([]map[*Template]*ShaderFunction, len(components)),
		deps:        make([][]Dependency, len(components)),
		depTarget:   make([]map[Dependency]*ShaderFunction, len(components)),
		names:       make(map[string]string),
		symNames:    make(map[*Symbol]string),
		canon:       make(map[string]*Symbol),
		inputs:      make(map[*Symbol]bool),
		literals:    make(map[*Symbol][]byte),
		usage:       make(map[*Symbol]*[2]symbolUse),
	}
	for i := range c.cfg.Hooks {
		chain := &FunctionChain{hook: &c.cfg.Hooks[i]}
		p.chains = append(p.chains, chain)
		p.chainByName[chain.hook.Name] = chain
	}
	return p
}

func (p *pass) claim(name, owner string) error {
	if prev, ok := p.names[name]; ok {
		return &NameCollisionError{Name: name, First: prev, Second: owner}
	}
	p.names[name] = owner
	return nil
}

func (p *pass) compose() (Program, error) {
	cfg := &p.c.cfg
	// Reserve names not available to components.
	p.names["main"] = "entry point"
	if cfg.Dialect == DialectCore {
		p.names[fragOutCore] = "fragment output"
	}
	for _, chain := range p.chains {
		if err := p.claim(chain.hook.Name, "hook "+chain.hook.Name); err != nil {
			return Program{}, err
		}
	}
	for _, in := range cfg.Inputs {
		if err := p.claim(in.Name, "input "+in.Name); err != nil {
			return Program{}, err
		}
		p.canon[in.Name] = in
		p.symNames[in] = in.Name
		p.inputs[in] = true
		p.usage[in] = new([2]symbolUse)
	}

	if err := p.collect(); err != nil {
		return Program{}, err
	}
	// Render-names are assigned before activation so components may reference each other.
	for _, chain := range p.chains {
		for _, fn := range chain.members {
			fn.name = fn.tmpl.name + "_" + strconv.Itoa(p.counter)
			p.counter++
			if err := p.claim(fn.name, "function "+fn.tmpl.name+" of "+fn.component); err != nil {
				return Program{}, err
			}
		}
		if err := chain.validate(); err != nil {
			return Program{}, err
		}
	}
	if err := p.resolveDependencies(); err != nil {
		return Program{}, err
	}
	for i, comp := range p.comps {
		ctx := &Context{p: p, comp: i}
		if err := comp.Activate(ctx); err != nil {
			return Program{}, fmt.Errorf("activating %s: %w", p.compNames[i], err)
		}
		for _, fn := range p.fns[i] {
			if len(fn.unknown) > 0 {
				return Program{}, fmt.Errorf("component %s function %s: %w $%s", p.compNames[i], fn.tmpl.name, ErrUnknownPlaceholder, fn.unknown[0])
			}
		}
	}
	if err := p.resolveSymbols(); err != nil {
		return Program{}, err
	}
	vertex, err := p.appendStage(p.c.scratch[:0], StageVertex)
	if err != nil {
		return Program{}, err
	}
	prog := Program{Vertex: string(vertex)}
	fragment, err := p.appendStage(vertex[:0], StageFragment)
	p.c.scratch = fragment[:0]
	if err != nil {
		return Program{}, err
	}
	prog.Fragment = string(fragment)
	for _, sym := range p.order {
		if p.inputs[sym] {
			continue
		}
		prog.Bindings = append(prog.Bindings, Binding{Name: p.symNames[sym], Symbol: sym})
	}
	return prog, nil
}

// collect instantiates the components' templates and attaches them to the hooks' chains in component order.
func (p *pass) collect() error {
	for i, comp := range p.comps {
		if comp == nil {
			return fmt.Errorf("nil component at index %d", i)
		}
		name := comp.ComponentName()
		p.compNames[i] = name
		p.byTmpl[i] = make(map[*Template]*ShaderFunction)
		for _, hook := range comp.Hooks() {
			chain := p.chainByName[hook]
			if chain == nil {
				return fmt.Errorf("component %s: unknown hook %q", name, hook)
			}
			for _, t := range comp.Templates(hook) {
				if t == nil {
					return fmt.Errorf("component %s: nil template for hook %s", name, hook)
				} else if p.byTmpl[i][t] != nil {
					return fmt.Errorf("component %s: template %s used more than once", name, t.name)
				}
				fn := &ShaderFunction{
					tmpl:      t,
					hook:      chain.hook,
					component: name,
					args:      make(map[string]*Symbol, len(t.placeholders)),
				}
				p.byTmpl[i][t] = fn
				p.fns[i] = append(p.fns[i], fn)
				chain.members = append(chain.members, fn)
			}
		}
	}
	return nil
}

// resolveDependencies looks up declared dependencies by component name and checks for cycles.
func (p *pass) resolveDependencies() error {
	edges := make([][]int, len(p.comps))
	for i, comp := range p.comps {
		p.deps[i] = comp.Dependencies()
		p.depTarget[i] = make(map[Dependency]*ShaderFunction, len(p.deps[i]))
		for _, dep := range p.deps[i] {
			missing := &MissingRequiredHookError{Hook: dep.Hook, Component: dep.Component, RequiredBy: p.compNames[i]}
			target := -1
			for j, name := range p.compNames {
				if name != dep.Component {
					continue
				} else if target >= 0 {
					return fmt.Errorf("component %s: ambiguous dependency, more than one component named %s", p.compNames[i], dep.Component)
				}
				target = j
			}
			if target < 0 {
				return missing
			}
			var fn *ShaderFunction
			for _, candidate := range p.fns[target] {
				if candidate.hook.Name == dep.Hook {
					fn = candidate
					break
				}
			}
			if fn == nil {
				return missing
			}
			p.depTarget[i][dep] = fn
			edges[i] = append(edges[i], target)
		}
	}
	state := make([]uint8, len(p.comps))
	var stack []int
	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case 1:
			return &DependencyCycleError{Cycle: p.componentCycle(stack, i)}
		case 2:
			return nil
		}
		state[i] = 1
		stack = append(stack, i)
		for _, j := range edges[i] {
			if err := visit(j); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[i] = 2
		return nil
	}
	for i := range p.comps {
		if err := visit(i); err != nil {
			return err
		}
	}
	return nil
}

func (p *pass) componentCycle(stack []int, start int) []string {
	var cycle []string
	for k := len(stack) - 1; k >= 0; k-- {
		if stack[k] == start {
			for _, idx := range stack[k:] {
				cycle = append(cycle, p.compNames[idx])
			}
			break
		}
	}
	return append(cycle, p.compNames[start])
}

// resolveSymbols names every symbol bound in the pass and validates its use.
func (p *pass) resolveSymbols() error {
	for _, chain := range p.chains {
		for _, fn := range chain.members {
			for _, ph := range fn.tmpl.placeholders {
				sym := fn.args[ph]
				if sym == nil {
					return &UnboundPlaceholderError{Function: fn.tmpl.name, Placeholder: ph}
				}
				if err := p.resolve(fn, ph, sym); err != nil {
					return err
				}
			}
		}
	}
	for _, sym := range p.order {
		use := p.usage[sym]
		if sym.Class == Varying && use[StageFragment].fn != nil && use[StageVertex].fn == nil {
			return &InvalidSymbolTypeError{
				Function:    use[StageFragment].fn.tmpl.name,
				Placeholder: use[StageFragment].placeholder,
				Reason:      "varying " + p.symNames[sym] + " is read in the fragment stage but no vertex stage function writes it",
			}
		}
	}
	return nil
}

func (p *pass) resolve(fn *ShaderFunction, ph string, sym *Symbol) error {
	invalid := func(reason string) error {
		return &InvalidSymbolTypeError{Function: fn.tmpl.name, Placeholder: ph, Reason: reason}
	}
	stage := fn.stage()
	switch sym.Class {
	case Function:
		return p.resolveRef(fn, ph, sym)
	case Constant:
		if _, ok := p.literals[sym]; ok {
			return nil
		}
		if err := checkValueType(sym); err != nil {
			return invalid(err.Error())
		}
		lit, err := AppendLiteral(nil, sym.Value)
		if err != nil {
			return invalid(err.Error())
		}
		p.literals[sym] = lit
		return nil
	case Uniform, Attribute, Varying:
	default:
		return invalid("invalid storage class " + sym.Class.String())
	}

	name, err := p.nameSymbol(sym, ph)
	if err != nil {
		return err
	}
	canon := p.canon[name]
	if !p.inputs[canon] {
		switch sym.Class {
		case Uniform:
			if err := checkValueType(sym); err != nil {
				return invalid(err.Error())
			}
		case Attribute:
			buf, ok := sym.Value.(Buffer)
			if !ok || buf == nil {
				return invalid("attribute requires a Buffer value")
			} else if buf.Type() != sym.Type {
				return invalid("attribute declared " + sym.Type.String() + " but buffer rows are " + buf.Type().String())
			}
		}
	}
	switch {
	case sym.Class == Attribute && stage != StageVertex:
		return invalid("attribute used in " + stage.String() + " stage")
	case sym.Class != Uniform && !sym.Type.interpolable():
		return invalid(sym.Class.String() + " cannot have type " + sym.Type.String())
	}
	use := p.usage[canon]
	if use[stage].fn == nil {
		use[stage] = symbolUse{fn: fn, placeholder: ph}
	}
	return nil
}

func checkValueType(sym *Symbol) error {
	got, err := TypeOf(sym.Value)
	if err != nil {
		return err
	} else if got != sym.Type {
		return errors.New("declared " + sym.Type.String() + " but value is " + got.String())
	}
	return nil
}

func (p *pass) resolveRef(fn *ShaderFunction, ph string, sym *Symbol) error {
	invalid := func(reason string) error {
		return &InvalidSymbolTypeError{Function: fn.tmpl.name, Placeholder: ph, Reason: reason}
	}
	switch {
	case sym.fn != nil:
		target := sym.fn
		if target.name == "" || p.names[target.name] == "" || p.chainByName[target.hook.Name] == nil || !p.owns(target) {
			return invalid("referenced function " + target.tmpl.name + " is not part of this composition")
		} else if target.stage() != fn.stage() {
			return invalid("referenced function " + target.name + " belongs to the " + target.stage().String() + " stage")
		}
	case sym.hook != "":
		chain := p.chainByName[sym.hook]
		if chain == nil {
			return invalid("unknown hook " + sym.hook)
		} else if chain.hook.Stage != fn.stage() {
			return invalid("referenced hook " + sym.hook + " belongs to the " + chain.hook.Stage.String() + " stage")
		} else if !chain.emitted() {
			return &MissingRequiredHookError{Hook: sym.hook, RequiredBy: fn.component}
		}
	default:
		return invalid("function symbol references nothing")
	}
	return nil
}

func (p *pass) owns(fn *ShaderFunction) bool {
	for _, m := range p.chainByName[fn.hook.Name].members {
		if m == fn {
			return true
		}
	}
	return false
}

// nameSymbol returns the final name of sym, assigning one if sym is seen for the first time.
func (p *pass) nameSymbol(sym *Symbol, placeholder string) (string, error) {
	if name, ok := p.symNames[sym]; ok {
		return name, nil
	}
	name := sym.Name
	if name != "" {
		if existing := p.canon[name]; existing != nil {
			if existing.Class != sym.Class || existing.Type != sym.Type {
				return "", &NameCollisionError{Name: name, First: existing.String(), Second: sym.String()}
			} else if sym.Class == Uniform && !sameValue(existing.Value, sym.Value) {
				// Only one of the values could be bound.
				return "", &NameCollisionError{Name: name, First: existing.String(), Second: sym.String() + " with a different value"}
			}
			p.symNames[sym] = name // Identical pinned declaration, share it.
			return name, nil
		} else if !isIdentifier(name) {
			return "", &InvalidSymbolTypeError{Function: "", Placeholder: placeholder, Reason: "invalid pinned name " + strconv.Quote(name)}
		}
	} else {
		name = sym.Class.namePrefix() + placeholder + "_" + strconv.Itoa(p.counter)
		p.counter++
	}
	if err := p.claim(name, sym.String()); err != nil {
		return "", err
	}
	p.symNames[sym] = name
	p.canon[name] = sym
	p.usage[sym] = new([2]symbolUse)
	p.order = append(p.order, sym)
	return name, nil
}

// sameValue reports whether a and b are equal uniform values. All types accepted by [TypeOf] are comparable.
func sameValue(a, b any) bool {
	if _, err := TypeOf(a); err != nil {
		return false
	} else if _, err := TypeOf(b); err != nil {
		return false
	}
	return a == b
}

func (p *pass) appendExpr(dst []byte, sym *Symbol) []byte {
	switch sym.Class {
	case Function:
		if sym.fn != nil {
			return append(dst, sym.fn.name...)
		}
		return append(dst, sym.hook...)
	case Constant:
		return append(dst, p.literals[sym]...)
	}
	return append(dst, p.symNames[sym]...)
}

// appendStage appends the full source code of a stage to dst.
func (p *pass) appendStage(dst []byte, stage Stage) ([]byte, error) {
	cfg := &p.c.cfg
	dst = append(dst, cfg.Dialect.VersionStr()...)
	if stage == StageFragment && cfg.Dialect == DialectCore {
		dst = AppendDecl(dst, "out", Vec4, fragOutCore)
	}
	for _, in := range cfg.Inputs {
		if in.Class == Attribute && stage != StageVertex {
			continue
		}
		dst = AppendDecl(dst, p.qualifier(in.Class, stage), in.Type, in.Name)
	}
	for _, sym := range p.order {
		if p.inputs[sym] || p.usage[sym][stage].fn == nil {
			continue
		}
		dst = AppendDecl(dst, p.qualifier(sym.Class, stage), sym.Type, p.symNames[sym])
	}
	prelude := cfg.VertexPrelude
	if stage == StageFragment {
		prelude = cfg.FragmentPrelude
	}
	if len(prelude) > 0 {
		dst = append(dst, '\n')
		dst = append(dst, prelude...)
		if prelude[len(prelude)-1] != '\n' {
			dst = append(dst, '\n')
		}
	}
	nodes, err := p.orderStage(stage)
	if err != nil {
		return dst, err
	}
	for _, node := range nodes {
		dst = append(dst, '\n')
		switch n := node.(type) {
		case *ShaderFunction:
			dst, err = n.appendRendered(dst, p.appendExpr)
			if err != nil {
				return dst, err
			}
		case *FunctionChain:
			dst = n.appendWrapper(dst)
		}
	}
	dst = append(dst, "\nvoid main() {\n"...)
	for _, chain := range p.chains {
		h := chain.hook
		if h.Stage != stage || !h.Entry || !chain.emitted() {
			continue
		}
		dst = append(dst, '\t')
		if h.Kind == ChainValue {
			if stage == StageVertex {
				dst = append(dst, "gl_Position"...)
			} else {
				dst = append(dst, cfg.Dialect.fragOutput()...)
			}
			dst = append(dst, " = "...)
		}
		dst = append(dst, h.Name...)
		dst = append(dst, "();\n"...)
	}
	dst = append(dst, "}\n"...)
	return dst, nil
}

func (p *pass) qualifier(class StorageClass, stage Stage) string {
	legacy := p.c.cfg.Dialect == DialectLegacy
	switch class {
	case Uniform:
		return "uniform"
	case Attribute:
		if legacy {
			return "attribute"
		}
		return "in"
	case Varying:
		if legacy {
			return "varying"
		} else if stage == StageVertex {
			return "out"
		}
		return "in"
	}
	return ""
}

// orderStage returns the stage's functions and hook wrappers ordered so that every
// function is emitted after the functions it references.
func (p *pass) orderStage(stage Stage) ([]any, error) {
	var ordered []any
	state := make(map[any]uint8)
	var stack []string
	var visit func(node any, name string) error
	visit = func(node any, name string) error {
		switch state[node] {
		case 1:
			cycle := []string{name}
			for k := len(stack) - 1; k >= 0; k-- {
				cycle = append(cycle, stack[k])
				if stack[k] == name {
					break
				}
			}
			for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
				cycle[i], cycle[j] = cycle[j], cycle[i]
			}
			return &DependencyCycleError{Cycle: cycle}
		case 2:
			return nil
		}
		state[node] = 1
		stack = append(stack, name)
		var err error
		switch n := node.(type) {
		case *FunctionChain:
			for _, m := range n.members {
				if err = visit(m, m.name); err != nil {
					return err
				}
			}
		case *ShaderFunction:
			for _, ph := range n.tmpl.placeholders {
				sym := n.args[ph]
				if sym.Class != Function {
					continue
				}
				if sym.fn != nil {
					err = visit(sym.fn, sym.fn.name)
				} else {
					err = visit(p.chainByName[sym.hook], sym.hook)
				}
				if err != nil {
					return err
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[node] = 2
		ordered = append(ordered, node)
		return nil
	}
	for _, chain := range p.chains {
		if chain.hook.Stage != stage || !chain.emitted() {
			continue
		}
		if err := visit(chain, chain.hook.Name); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}
