package glbuild_test

import (
	"errors"
	"strings"
	"testing"
	"unsafe"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glvis/glbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testHooks = []glbuild.Hook{
	{Name: "vert_position", Stage: glbuild.StageVertex, Kind: glbuild.ChainValue, Type: glbuild.Vec4, Default: "local_position()", Entry: true},
	{Name: "vert_post_hook", Stage: glbuild.StageVertex, Kind: glbuild.ChainVoid, Entry: true},
	{Name: "frag_normal", Stage: glbuild.StageFragment, Kind: glbuild.ChainValue, Type: glbuild.Vec4},
	{Name: "frag_color", Stage: glbuild.StageFragment, Kind: glbuild.ChainValue, Type: glbuild.Vec4, Required: true, Entry: true},
}

// fakeComponent is a hand-built component for exercising the composer.
type fakeComponent struct {
	name      string
	templates map[string][]*glbuild.Template
	hooks     []string
	deps      []glbuild.Dependency
	activate  func(ctx *glbuild.Context) error
}

func (c *fakeComponent) ComponentName() string                     { return c.name }
func (c *fakeComponent) Hooks() []string                           { return c.hooks }
func (c *fakeComponent) Templates(hook string) []*glbuild.Template { return c.templates[hook] }
func (c *fakeComponent) Dependencies() []glbuild.Dependency        { return c.deps }
func (c *fakeComponent) Activate(ctx *glbuild.Context) error {
	if c.activate == nil {
		return nil
	}
	return c.activate(ctx)
}

func (c *fakeComponent) add(hook string, t *glbuild.Template) *fakeComponent {
	if c.templates == nil {
		c.templates = make(map[string][]*glbuild.Template)
	}
	if len(c.templates[hook]) == 0 {
		c.hooks = append(c.hooks, hook)
	}
	c.templates[hook] = append(c.templates[hook], t)
	return c
}

var (
	tmplColorInput = glbuild.MustParseTemplate(`vec4 $colorInput() {
	return $rgba;
}`)
	tmplBrighten = glbuild.MustParseTemplate(`vec4 $brighten(vec4 color) {
	return color * $factor;
}`)
	tmplDarken = glbuild.MustParseTemplate(`vec4 $darken(vec4 color) {
	return color * (1.0 - $amount);
}`)
	tmplCopy = glbuild.MustParseTemplate(`void $copyColor() {
	$output = $input;
}`)
)

func newComposer(t *testing.T, dialect glbuild.Dialect) *glbuild.Composer {
	t.Helper()
	c, err := glbuild.NewComposer(glbuild.ComposerConfig{Dialect: dialect, Hooks: testHooks})
	require.NoError(t, err)
	return c
}

func uniformColor(name string, rgba [4]float32) *fakeComponent {
	sym := glbuild.NewUniform(glbuild.Vec4, rgba)
	c := &fakeComponent{name: name}
	c.add("frag_color", tmplColorInput)
	c.activate = func(ctx *glbuild.Context) error {
		ctx.Function(tmplColorInput).Set("rgba", sym)
		return nil
	}
	return c
}

func scaler(name string, tmpl *glbuild.Template, placeholder string, v float32) *fakeComponent {
	c := &fakeComponent{name: name}
	c.add("frag_color", tmpl)
	c.activate = func(ctx *glbuild.Context) error {
		ctx.Function(tmpl).Set(placeholder, glbuild.NewConstant(glbuild.Float, v))
		return nil
	}
	return c
}

func TestParseTemplate(t *testing.T) {
	tmpl, err := glbuild.ParseTemplate(`vec4 $shade(vec4 color) {
	vec3 n = $normal().xyz;
	return color * max(dot(n, $light), 0.0) * $light.x;
}`)
	require.NoError(t, err)
	assert.Equal(t, "shade", tmpl.Name())
	assert.Equal(t, glbuild.Vec4, tmpl.ReturnType())
	assert.Equal(t, []glbuild.GLType{glbuild.Vec4}, tmpl.Params())
	assert.Equal(t, []string{"normal", "light"}, tmpl.Placeholders())

	for _, bad := range []string{
		"vec4 colorInput() { return vec4(1.); }",    // No self-reference.
		"vec4 $colorInput()",                        // No body.
		"vec5 $colorInput() { return vec4(1.); }",   // Bad type.
		"vec4 $colorInput() { return $ + 1.; }",     // Stray $.
		"vec4 $colorInput(color) { return color; }", // Malformed parameter.
	} {
		_, err := glbuild.ParseTemplate(bad)
		assert.Error(t, err, bad)
	}
}

func TestComposeUniformColor(t *testing.T) {
	composer := newComposer(t, glbuild.DialectCore)
	red := [4]float32{1, 0, 0, 1}
	prog, err := composer.Compose(uniformColor("color", red))
	require.NoError(t, err)

	const wantFrag = `#version 330 core
out vec4 fragColor;
uniform vec4 u_rgba_1;

vec4 colorInput_0() {
	return u_rgba_1;
}

vec4 frag_color() {
	vec4 v = colorInput_0();
	return v;
}

void main() {
	fragColor = frag_color();
}
`
	assert.Equal(t, wantFrag, prog.Fragment)
	assert.Contains(t, prog.Vertex, "vec4 v = local_position();")
	assert.Contains(t, prog.Vertex, "gl_Position = vert_position();")
	assert.NotContains(t, prog.Vertex, "vert_post_hook", "empty void hook must be omitted")
	assert.NotContains(t, prog.Fragment+prog.Vertex, "$")

	require.Len(t, prog.Bindings, 1)
	b := prog.Bindings[0]
	assert.Equal(t, "u_rgba_1", b.Name)
	assert.Equal(t, glbuild.Uniform, b.Class)
	assert.Equal(t, glbuild.Vec4, b.Type)
	assert.Equal(t, red, b.Value)
	_, ok := prog.Lookup("u_rgba_1")
	assert.True(t, ok)
}

func TestComposeLegacyDialect(t *testing.T) {
	composer := newComposer(t, glbuild.DialectLegacy)
	prog, err := composer.Compose(uniformColor("color", [4]float32{0, 1, 0, 1}))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(prog.Fragment, "#version 120\n"))
	assert.Contains(t, prog.Fragment, "gl_FragColor = frag_color();")
	assert.NotContains(t, prog.Fragment, "out vec4 fragColor;")
}

func TestChainRegistrationOrder(t *testing.T) {
	composer := newComposer(t, glbuild.DialectCore)
	color := uniformColor("color", [4]float32{1, 1, 1, 1})
	brighten := scaler("brighten", tmplBrighten, "factor", 2)
	darken := scaler("darken", tmplDarken, "amount", 0.5)

	prog, err := composer.Compose(color, brighten, darken)
	require.NoError(t, err)
	assert.Contains(t, prog.Fragment, "\tvec4 v = colorInput_0();\n\tv = brighten_1(v);\n\tv = darken_2(v);\n")
	assert.Contains(t, prog.Fragment, "return color * 2.;")
	assert.Contains(t, prog.Fragment, "return color * (1.0 - 0.5);")

	prog, err = composer.Compose(color, darken, brighten)
	require.NoError(t, err)
	assert.Contains(t, prog.Fragment, "\tvec4 v = colorInput_0();\n\tv = darken_1(v);\n\tv = brighten_2(v);\n")

	// Sources are called before transforms regardless of list position.
	prog, err = composer.Compose(darken, color)
	require.NoError(t, err)
	assert.Contains(t, prog.Fragment, "\tvec4 v = colorInput_1();\n\tv = darken_0(v);\n")
}

func TestRenderNamesUnique(t *testing.T) {
	composer := newComposer(t, glbuild.DialectCore)
	c1 := uniformColor("color1", [4]float32{1, 0, 0, 1})
	c2 := uniformColor("color2", [4]float32{0, 0, 1, 1})
	prog, err := composer.Compose(c1, c2)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(prog.Fragment, "vec4 colorInput_0()"))
	assert.Equal(t, 1, strings.Count(prog.Fragment, "vec4 colorInput_1()"))
	// Last source wins.
	assert.Contains(t, prog.Fragment, "\tvec4 v = colorInput_0();\n\tv = colorInput_1();\n\treturn v;")
	require.Len(t, prog.Bindings, 2)
	assert.NotEqual(t, prog.Bindings[0].Name, prog.Bindings[1].Name)
}

func TestComposeIdempotent(t *testing.T) {
	composer := newComposer(t, glbuild.DialectCore)
	comps := []glbuild.Component{
		uniformColor("color", [4]float32{1, 0, 0, 1}),
		scaler("brighten", tmplBrighten, "factor", 2),
	}
	first, err := composer.Compose(comps...)
	require.NoError(t, err)
	second, err := composer.Compose(comps...)
	require.NoError(t, err)
	assert.Equal(t, first.Vertex, second.Vertex)
	assert.Equal(t, first.Fragment, second.Fragment)
	assert.Equal(t, first.Hash(), second.Hash())
	require.Equal(t, len(first.Bindings), len(second.Bindings))
	for i := range first.Bindings {
		b1, b2 := first.Bindings[i], second.Bindings[i]
		assert.Equal(t, b1.Class, b2.Class)
		assert.Equal(t, b1.Type, b2.Type)
		assert.Equal(t, b1.Value, b2.Value)
	}
}

func TestMissingRequiredHook(t *testing.T) {
	composer := newComposer(t, glbuild.DialectCore)
	_, err := composer.Compose()
	var missing *glbuild.MissingRequiredHookError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "frag_color", missing.Hook)

	// Transforms alone cannot produce a color.
	_, err = composer.Compose(scaler("brighten", tmplBrighten, "factor", 2))
	require.ErrorAs(t, err, &missing)
}

func TestUnboundPlaceholder(t *testing.T) {
	composer := newComposer(t, glbuild.DialectCore)
	lazy := &fakeComponent{name: "lazy"}
	lazy.add("frag_color", tmplColorInput)
	prog, err := composer.Compose(lazy)
	var unbound *glbuild.UnboundPlaceholderError
	require.ErrorAs(t, err, &unbound)
	assert.Equal(t, "rgba", unbound.Placeholder)
	assert.Equal(t, "colorInput", unbound.Function)
	assert.Zero(t, prog)
}

func TestUnknownPlaceholder(t *testing.T) {
	composer := newComposer(t, glbuild.DialectCore)
	c := uniformColor("color", [4]float32{1, 0, 0, 1})
	activate := c.activate
	c.activate = func(ctx *glbuild.Context) error {
		ctx.Function(tmplColorInput).Set("rgb", glbuild.NewUniform(glbuild.Vec3, ms3.Vec{}))
		return activate(ctx)
	}
	_, err := composer.Compose(c)
	require.ErrorIs(t, err, glbuild.ErrUnknownPlaceholder)
}

func TestInvalidSymbolType(t *testing.T) {
	composer := newComposer(t, glbuild.DialectCore)
	var invalid *glbuild.InvalidSymbolTypeError

	mismatch := uniformColor("color", [4]float32{})
	mismatch.activate = func(ctx *glbuild.Context) error {
		ctx.Function(tmplColorInput).Set("rgba", glbuild.NewUniform(glbuild.Vec4, ms3.Vec{X: 1}))
		return nil
	}
	_, err := composer.Compose(mismatch)
	require.ErrorAs(t, err, &invalid)

	buf, err := glbuild.NewHostBuffer([][4]float32{{1, 0, 0, 1}, {0, 1, 0, 1}})
	require.NoError(t, err)
	attrInFrag := uniformColor("color", [4]float32{})
	attrInFrag.activate = func(ctx *glbuild.Context) error {
		ctx.Function(tmplColorInput).Set("rgba", glbuild.NewAttribute(glbuild.Vec4, buf))
		return nil
	}
	_, err = composer.Compose(attrInFrag)
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "rgba", invalid.Placeholder)

	orphanVarying := uniformColor("color", [4]float32{})
	orphanVarying.activate = func(ctx *glbuild.Context) error {
		ctx.Function(tmplColorInput).Set("rgba", glbuild.NewVarying(glbuild.Vec4))
		return nil
	}
	_, err = composer.Compose(orphanVarying)
	require.ErrorAs(t, err, &invalid)

	badSignature := &fakeComponent{name: "bad"}
	badSignature.add("vert_post_hook", tmplColorInput)
	_, err = composer.Compose(uniformColor("color", [4]float32{}), badSignature)
	require.ErrorAs(t, err, &invalid)
}

func TestVaryingAcrossStages(t *testing.T) {
	composer := newComposer(t, glbuild.DialectCore)
	buf, err := glbuild.NewHostBuffer([][4]float32{{1, 0, 0, 1}, {0, 1, 0, 1}, {0, 0, 1, 1}, {1, 1, 1, 1}})
	require.NoError(t, err)
	varying := glbuild.NewVarying(glbuild.Vec4)
	attr := glbuild.NewAttribute(glbuild.Vec4, buf)
	vc := &fakeComponent{name: "vertexColor"}
	vc.add("frag_color", tmplColorInput).add("vert_post_hook", tmplCopy)
	vc.activate = func(ctx *glbuild.Context) error {
		ctx.Function(tmplColorInput).Set("rgba", varying)
		cp := ctx.Function(tmplCopy)
		cp.Set("output", varying)
		cp.Set("input", attr)
		return nil
	}
	prog, err := composer.Compose(vc)
	require.NoError(t, err)
	assert.Contains(t, prog.Vertex, "out vec4 v_output_2;\n")
	assert.Contains(t, prog.Vertex, "in vec4 a_input_3;\n")
	assert.Contains(t, prog.Vertex, "\tv_output_2 = a_input_3;\n")
	assert.Contains(t, prog.Vertex, "\tvert_post_hook();\n")
	assert.Contains(t, prog.Fragment, "in vec4 v_output_2;\n")
	assert.Contains(t, prog.Fragment, "\treturn v_output_2;\n")
	assert.NotContains(t, prog.Fragment, "a_input_3")

	require.Len(t, prog.Bindings, 2)
	a, ok := prog.Lookup("a_input_3")
	require.True(t, ok)
	assert.Equal(t, glbuild.Attribute, a.Class)
	assert.Equal(t, 4, a.Value.(glbuild.Buffer).Rows())

	legacy := newComposer(t, glbuild.DialectLegacy)
	prog, err = legacy.Compose(vc)
	require.NoError(t, err)
	assert.Contains(t, prog.Vertex, "varying vec4 v_output_2;\n")
	assert.Contains(t, prog.Vertex, "attribute vec4 a_input_3;\n")
	assert.Contains(t, prog.Fragment, "varying vec4 v_output_2;\n")
}

func TestPinnedNames(t *testing.T) {
	composer := newComposer(t, glbuild.DialectCore)
	pinned := func(name string, v any) *fakeComponent {
		c := uniformColor(name, [4]float32{})
		c.activate = func(ctx *glbuild.Context) error {
			ctx.Function(tmplColorInput).Set("rgba", &glbuild.Symbol{Class: glbuild.Uniform, Type: glbuild.Vec4, Value: v, Name: "u_tint"})
			return nil
		}
		return c
	}
	prog, err := composer.Compose(pinned("a", [4]float32{1, 0, 0, 1}), pinned("b", [4]float32{1, 0, 0, 1}))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(prog.Fragment, "uniform vec4 u_tint;"))
	assert.Len(t, prog.Bindings, 1)

	// Merging would drop one of the values.
	var collision *glbuild.NameCollisionError
	_, err = composer.Compose(pinned("a", [4]float32{1, 0, 0, 1}), pinned("b", [4]float32{0, 0, 1, 1}))
	require.ErrorAs(t, err, &collision)
	assert.Equal(t, "u_tint", collision.Name)

	other := &fakeComponent{name: "other"}
	other.add("frag_color", tmplBrighten)
	other.activate = func(ctx *glbuild.Context) error {
		ctx.Function(tmplBrighten).Set("factor", &glbuild.Symbol{Class: glbuild.Uniform, Type: glbuild.Float, Value: float32(1), Name: "u_tint"})
		return nil
	}
	_, err = composer.Compose(pinned("a", [4]float32{1, 0, 0, 1}), other)
	require.ErrorAs(t, err, &collision)
	assert.Equal(t, "u_tint", collision.Name)

	hookName := &fakeComponent{name: "hookName"}
	hookName.add("frag_color", tmplColorInput)
	hookName.activate = func(ctx *glbuild.Context) error {
		ctx.Function(tmplColorInput).Set("rgba", &glbuild.Symbol{Class: glbuild.Uniform, Type: glbuild.Vec4, Value: [4]float32{}, Name: "frag_color"})
		return nil
	}
	_, err = composer.Compose(hookName)
	require.ErrorAs(t, err, &collision)
}

var tmplNormal = glbuild.MustParseTemplate(`vec4 $normal() {
	return $n;
}`)

var tmplShade = glbuild.MustParseTemplate(`vec4 $shade(vec4 color) {
	return color * max($normal().z, 0.0);
}`)

func TestDependencies(t *testing.T) {
	composer := newComposer(t, glbuild.DialectCore)
	normals := &fakeComponent{name: "normals"}
	normals.add("frag_normal", tmplNormal)
	normals.activate = func(ctx *glbuild.Context) error {
		ctx.Function(tmplNormal).Set("n", glbuild.NewConstant(glbuild.Vec4, [4]float32{0, 0, 1, 0}))
		return nil
	}
	shading := &fakeComponent{
		name: "shading",
		deps: []glbuild.Dependency{{Component: "normals", Hook: "frag_normal"}},
	}
	shading.add("frag_color", tmplShade)
	shading.activate = func(ctx *glbuild.Context) error {
		ref, err := ctx.Dependency("normals", "frag_normal")
		if err != nil {
			return err
		}
		ctx.Function(tmplShade).Set("normal", ref)
		return nil
	}
	color := uniformColor("color", [4]float32{1, 1, 1, 1})

	// Shading listed before its dependency still composes since render-names are assigned first.
	prog, err := composer.Compose(shading, color, normals)
	require.NoError(t, err)
	assert.Contains(t, prog.Fragment, "return vec4(0.,0.,1.,0.);")
	normalDecl := strings.Index(prog.Fragment, "vec4 normal_")
	shadeDecl := strings.Index(prog.Fragment, "vec4 shade_")
	require.True(t, normalDecl >= 0 && shadeDecl >= 0)
	assert.Less(t, normalDecl, shadeDecl, "referenced function must be declared first")

	_, err = composer.Compose(color, shading)
	var missing *glbuild.MissingRequiredHookError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "shading", missing.RequiredBy)
	assert.Equal(t, "normals", missing.Component)

	undeclared := &fakeComponent{name: "undeclared"}
	undeclared.add("frag_color", tmplShade)
	undeclared.activate = func(ctx *glbuild.Context) error {
		_, err := ctx.Dependency("normals", "frag_normal")
		return err
	}
	_, err = composer.Compose(color, normals, undeclared)
	require.Error(t, err)
}

func TestDependencyCycle(t *testing.T) {
	composer := newComposer(t, glbuild.DialectCore)
	a := scaler("a", tmplBrighten, "factor", 2)
	a.deps = []glbuild.Dependency{{Component: "b", Hook: "frag_color"}}
	b := scaler("b", tmplDarken, "amount", 0.5)
	b.deps = []glbuild.Dependency{{Component: "a", Hook: "frag_color"}}
	_, err := composer.Compose(uniformColor("color", [4]float32{1, 1, 1, 1}), a, b)
	var cycle *glbuild.DependencyCycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"a", "b", "a"}, cycle.Cycle)
}

func TestHookRef(t *testing.T) {
	composer := newComposer(t, glbuild.DialectCore)
	normals := &fakeComponent{name: "normals"}
	normals.add("frag_normal", tmplNormal)
	normals.activate = func(ctx *glbuild.Context) error {
		ctx.Function(tmplNormal).Set("n", glbuild.NewConstant(glbuild.Vec4, [4]float32{0, 1, 0, 0}))
		return nil
	}
	shading := &fakeComponent{name: "shading"}
	shading.add("frag_color", tmplShade)
	shading.activate = func(ctx *glbuild.Context) error {
		ref, err := ctx.HookRef("frag_normal")
		if err != nil {
			return err
		}
		ctx.Function(tmplShade).Set("normal", ref)
		return nil
	}
	color := uniformColor("color", [4]float32{1, 1, 1, 1})
	prog, err := composer.Compose(color, normals, shading)
	require.NoError(t, err)
	assert.Contains(t, prog.Fragment, "max(frag_normal().z, 0.0)")
	assert.Less(t, strings.Index(prog.Fragment, "vec4 frag_normal()"), strings.Index(prog.Fragment, "vec4 shade_"))

	_, err = composer.Compose(color, shading)
	var missing *glbuild.MissingRequiredHookError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "frag_normal", missing.Hook)

	crossStage := &fakeComponent{name: "cross"}
	crossStage.add("frag_color", tmplShade)
	crossStage.activate = func(ctx *glbuild.Context) error {
		ref, err := ctx.HookRef("vert_position")
		ctx.Function(tmplShade).Set("normal", ref)
		return err
	}
	_, err = composer.Compose(color, crossStage)
	var invalid *glbuild.InvalidSymbolTypeError
	require.ErrorAs(t, err, &invalid)
}

func TestStaleFunctionRef(t *testing.T) {
	composer := newComposer(t, glbuild.DialectCore)
	var stale *glbuild.ShaderFunction
	color := uniformColor("color", [4]float32{1, 1, 1, 1})
	activate := color.activate
	color.activate = func(ctx *glbuild.Context) error {
		stale = ctx.Function(tmplColorInput)
		return activate(ctx)
	}
	_, err := composer.Compose(color)
	require.NoError(t, err)

	reuser := &fakeComponent{name: "reuser"}
	reuser.add("frag_color", tmplShade)
	reuser.activate = func(ctx *glbuild.Context) error {
		ctx.Function(tmplShade).Set("normal", glbuild.FunctionRef(stale))
		return nil
	}
	_, err = composer.Compose(uniformColor("other", [4]float32{}), reuser)
	var invalid *glbuild.InvalidSymbolTypeError
	require.ErrorAs(t, err, &invalid)
}

type errComponent struct{ fakeComponent }

func (c *errComponent) Activate(*glbuild.Context) error { return errors.New("out of buffers") }

func TestActivateError(t *testing.T) {
	composer := newComposer(t, glbuild.DialectCore)
	c := &errComponent{fakeComponent: *uniformColor("broken", [4]float32{})}
	_, err := composer.Compose(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "activating broken")
}

func TestComposerInputs(t *testing.T) {
	position := &glbuild.Symbol{Class: glbuild.Attribute, Type: glbuild.Vec3, Name: "a_position"}
	composer, err := glbuild.NewComposer(glbuild.ComposerConfig{
		Hooks:         testHooks,
		Inputs:        []*glbuild.Symbol{position},
		VertexPrelude: []byte("vec4 local_position() {\n\treturn vec4(a_position, 1.0);\n}"),
	})
	require.NoError(t, err)
	prog, err := composer.Compose(uniformColor("color", [4]float32{1, 0, 0, 1}))
	require.NoError(t, err)
	assert.Contains(t, prog.Vertex, "#version 330 core\nin vec3 a_position;\n\nvec4 local_position() {")
	assert.NotContains(t, prog.Fragment, "a_position")
	_, ok := prog.Lookup("a_position")
	assert.False(t, ok, "inputs are bound by the caller")
}

func TestNewComposerValidation(t *testing.T) {
	for _, hooks := range [][]glbuild.Hook{
		{{Name: "frag_color", Kind: glbuild.ChainValue}},
		{{Name: "bad name", Kind: glbuild.ChainVoid}},
		{{Name: "a", Kind: glbuild.ChainVoid}, {Name: "a", Kind: glbuild.ChainVoid}},
		{
			{Name: "a", Kind: glbuild.ChainValue, Type: glbuild.Vec4, Entry: true},
			{Name: "b", Kind: glbuild.ChainValue, Type: glbuild.Vec4, Entry: true},
		},
	} {
		_, err := glbuild.NewComposer(glbuild.ComposerConfig{Hooks: hooks})
		assert.Error(t, err)
	}
}

func TestAppendLiteral(t *testing.T) {
	for _, test := range []struct {
		v    any
		want string
	}{
		{float32(1.5), "1.5"},
		{float32(-2), "-2."},
		{int32(3), "3"},
		{[4]float32{1, 0, 0, 1}, "vec4(1.,0.,0.,1.)"},
		{ms3.Vec{X: 1, Y: 2, Z: 3}, "vec3(1.,2.,3.)"},
	} {
		got, err := glbuild.AppendLiteral(nil, test.v)
		require.NoError(t, err)
		assert.Equal(t, test.want, string(got))
	}
	_, err := glbuild.AppendLiteral(nil, "red")
	assert.Error(t, err)
}

func TestHostBufferStride(t *testing.T) {
	// Padded element types are read with a stride larger than the row's components.
	normals := []ms3.Vec{{Z: 1}, {X: 1}, {Y: 1}}
	buf, err := glbuild.NewHostBuffer(normals)
	require.NoError(t, err)
	stride := int(unsafe.Sizeof(ms3.Vec{}))
	assert.Equal(t, glbuild.Vec3, buf.Type())
	assert.Equal(t, 3, buf.Rows())
	assert.Equal(t, stride, buf.Stride)
	assert.Equal(t, 3*stride, buf.Size)
	assert.GreaterOrEqual(t, buf.Stride, 12)

	packed, err := glbuild.NewHostBuffer([][3]float32{{0, 0, 1}, {1, 0, 0}})
	require.NoError(t, err)
	assert.Equal(t, 12, packed.Stride)
	assert.Len(t, packed.Bytes(), 24)

	_, err = glbuild.NewHostBuffer([]ms3.Vec{})
	assert.Error(t, err)
	_, err = glbuild.NewHostBuffer([]int8{1})
	assert.Error(t, err)

	glbuild.DeleteBuffer(packed)
	assert.Nil(t, packed.Data)
	assert.Empty(t, packed.Bytes())
}
