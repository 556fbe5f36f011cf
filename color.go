package glvis

import (
	"github.com/soypat/glvis/glbuild"
)

var (
	tmplColorInput = glbuild.MustParseTemplate(`vec4 $colorInput() {
	return $rgba;
}`)
	tmplColorInputSupport = glbuild.MustParseTemplate(`void $colorInputSupport() {
	$output_color = $input_color;
}`)
)

// UniformColor generates a single color for all fragments.
type UniformColor struct {
	rgba *glbuild.Symbol
}

var _ glbuild.Component = (*UniformColor)(nil) // Interface implementation compile-time check.

// NewUniformColor returns a component coloring every fragment with rgba.
// Components must be in range [0, 1].
func (bld *Builder) NewUniformColor(rgba [4]float32) *UniformColor {
	bld.checkColor("UniformColor", rgba)
	return &UniformColor{rgba: glbuild.NewUniform(glbuild.Vec4, rgba)}
}

// Color returns the current color.
func (uc *UniformColor) Color() [4]float32 { return uc.rgba.Value.([4]float32) }

// SetColor changes the color. The generated source is unaffected, only the uniform's value changes.
func (uc *UniformColor) SetColor(rgba [4]float32) { uc.rgba.Value = rgba }

func (uc *UniformColor) ComponentName() string { return "UniformColor" }

func (uc *UniformColor) Hooks() []string { return []string{HookFragColor} }

func (uc *UniformColor) Templates(hook string) []*glbuild.Template {
	if hook == HookFragColor {
		return []*glbuild.Template{tmplColorInput}
	}
	return nil
}

func (uc *UniformColor) Dependencies() []glbuild.Dependency { return nil }

func (uc *UniformColor) Activate(ctx *glbuild.Context) error {
	ctx.Function(tmplColorInput).Set("rgba", uc.rgba)
	return nil
}

// VertexColor reads a color per vertex from a buffer and interpolates it across fragments.
type VertexColor struct {
	colors [][4]float32
	cache  bufferCache[[4]float32]
	// rgba is written in the vertex stage and read in the fragment stage.
	rgba  *glbuild.Symbol
	input *glbuild.Symbol
}

var _ glbuild.Component = (*VertexColor)(nil) // Interface implementation compile-time check.

// NewVertexColor returns a component reading per-vertex colors. The buffer is created
// on first activation and reused until [VertexColor.SetColors] is called with different data.
func (bld *Builder) NewVertexColor(colors [][4]float32) *VertexColor {
	if len(colors) == 0 {
		bld.paramErrorf("VertexColor requires at least one color")
	}
	for _, c := range colors {
		bld.checkColor("VertexColor", c)
	}
	return &VertexColor{
		colors: colors,
		rgba:   glbuild.NewVarying(glbuild.Vec4),
		input:  &glbuild.Symbol{Class: glbuild.Attribute, Type: glbuild.Vec4},
	}
}

// Colors returns the per-vertex colors.
func (vc *VertexColor) Colors() [][4]float32 { return vc.colors }

// SetColors replaces the per-vertex colors. Modifying the contents of the slice
// previously passed without calling SetColors with a new slice is not detected.
func (vc *VertexColor) SetColors(colors [][4]float32) {
	vc.colors = colors
}

// Invalidate releases the buffer and forces it to be recreated on the next activation.
func (vc *VertexColor) Invalidate() { vc.cache.invalidate() }

func (vc *VertexColor) ComponentName() string { return "VertexColor" }

func (vc *VertexColor) Hooks() []string { return []string{HookFragColor, HookVertPost} }

func (vc *VertexColor) Templates(hook string) []*glbuild.Template {
	switch hook {
	case HookFragColor:
		return []*glbuild.Template{tmplColorInput}
	case HookVertPost:
		return []*glbuild.Template{tmplColorInputSupport}
	}
	return nil
}

func (vc *VertexColor) Dependencies() []glbuild.Dependency { return nil }

func (vc *VertexColor) Activate(ctx *glbuild.Context) error {
	buf, err := vc.cache.get(ctx.Allocator(), vc.colors)
	if err != nil {
		return err
	}
	vc.input.Value = buf
	ctx.Function(tmplColorInput).Set("rgba", vc.rgba)
	support := ctx.Function(tmplColorInputSupport)
	support.Set("output_color", vc.rgba)
	support.Set("input_color", vc.input)
	return nil
}
