package glvis

import (
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glvis/glbuild"
)

// Materials transform the fragment color produced by color components.

var (
	tmplGridContour = glbuild.MustParseTemplate(`vec4 $grid_contour(vec4 color) {
	if (mod($pos.x, $spacing.x) < 0.005 ||
		mod($pos.y, $spacing.y) < 0.005 ||
		mod($pos.z, $spacing.z) < 0.005) {
		return color + 0.7 * (vec4(1,1,1,1) - color);
	}
	return color;
}`)
	tmplGridContourSupport = glbuild.MustParseTemplate(`void $grid_contour_support() {
	$output_pos = local_position();
}`)
	tmplShading = glbuild.MustParseTemplate(`vec4 $shading(vec4 color) {
	vec3 norm = normalize_or_zero($normal().xyz);
	vec3 light = normalize_or_zero($light_direction.xyz);
	float p = max(dot(light, norm), 0.0);
	vec4 diffuse = $light_color * p;
	diffuse.a = 1.0;
	p = max(dot(reflect(light, norm), vec3(0,0,1)), 0.0);
	vec4 specular = $light_color * 5.0 * pow(p, 100.0);
	return color * ($ambient + diffuse) + specular;
}`)
)

// GridContour draws grid lines across a surface at regular model-space intervals.
type GridContour struct {
	spacing *glbuild.Symbol
	pos     *glbuild.Symbol
}

var _ glbuild.Component = (*GridContour)(nil) // Interface implementation compile-time check.

// NewGridContour returns a material brightening fragments close to multiples of spacing along each axis.
func (bld *Builder) NewGridContour(spacing ms3.Vec) *GridContour {
	bld.checkVec("GridContour spacing", spacing)
	if spacing.X <= 0 || spacing.Y <= 0 || spacing.Z <= 0 {
		bld.paramErrorf("GridContour spacing must be positive: %v", spacing)
	}
	return &GridContour{
		spacing: glbuild.NewUniform(glbuild.Vec3, spacing),
		pos:     glbuild.NewVarying(glbuild.Vec4),
	}
}

// Spacing returns the grid spacing.
func (gc *GridContour) Spacing() ms3.Vec { return gc.spacing.Value.(ms3.Vec) }

// SetSpacing changes the grid spacing.
func (gc *GridContour) SetSpacing(spacing ms3.Vec) { gc.spacing.Value = spacing }

func (gc *GridContour) ComponentName() string { return "GridContour" }

func (gc *GridContour) Hooks() []string { return []string{HookFragColor, HookVertPost} }

func (gc *GridContour) Templates(hook string) []*glbuild.Template {
	switch hook {
	case HookFragColor:
		return []*glbuild.Template{tmplGridContour}
	case HookVertPost:
		return []*glbuild.Template{tmplGridContourSupport}
	}
	return nil
}

func (gc *GridContour) Dependencies() []glbuild.Dependency { return nil }

func (gc *GridContour) Activate(ctx *glbuild.Context) error {
	contour := ctx.Function(tmplGridContour)
	contour.Set("pos", gc.pos)
	contour.Set("spacing", gc.spacing)
	ctx.Function(tmplGridContourSupport).Set("output_pos", gc.pos)
	return nil
}

// ShadingConfig holds the parameters of a [Shading] material.
type ShadingConfig struct {
	// Normals is the name of the component providing the surface normals on the frag_normal hook.
	Normals string
	// LightDir is the direction of the single directional light.
	LightDir ms3.Vec
	// LightColor is the light's color. Alpha is ignored and taken as 1.
	LightColor [4]float32
	// Ambient is the ambient light intensity.
	Ambient float32
}

// NewDefaultShadingConfig returns a white light shining from the viewer with 0.2 ambient intensity.
func NewDefaultShadingConfig(normals string) ShadingConfig {
	return ShadingConfig{
		Normals:    normals,
		LightDir:   ms3.Vec{X: 0, Y: 0, Z: 1},
		LightColor: [4]float32{1, 1, 1, 1},
		Ambient:    0.2,
	}
}

// Shading is a Phong reflection material lighting the fragment color with
// diffuse, specular and ambient terms.
type Shading struct {
	normals    string
	lightDir   *glbuild.Symbol
	lightColor *glbuild.Symbol
	ambient    *glbuild.Symbol
}

var _ glbuild.Component = (*Shading)(nil) // Interface implementation compile-time check.

// NewShading returns a Phong shading material reading normals from the component named cfg.Normals.
func (bld *Builder) NewShading(cfg ShadingConfig) *Shading {
	if cfg.Normals == "" {
		bld.paramErrorf("Shading requires a normal provider name")
	}
	bld.checkVec("Shading light direction", cfg.LightDir)
	if ms3.Norm(cfg.LightDir) == 0 {
		bld.paramErrorf("Shading light direction must be non-zero")
	}
	cfg.LightColor[3] = 1
	bld.checkColor("Shading light", cfg.LightColor)
	if cfg.Ambient < 0 {
		bld.paramErrorf("Shading ambient must be non-negative: %v", cfg.Ambient)
	}
	sh := &Shading{
		normals:    cfg.Normals,
		lightDir:   glbuild.NewUniform(glbuild.Vec4, [4]float32{}),
		lightColor: glbuild.NewUniform(glbuild.Vec4, cfg.LightColor),
		ambient:    glbuild.NewUniform(glbuild.Float, cfg.Ambient),
	}
	sh.SetLightDir(cfg.LightDir)
	return sh
}

// SetLightDir changes the light direction.
func (sh *Shading) SetLightDir(dir ms3.Vec) {
	sh.lightDir.Value = [4]float32{dir.X, dir.Y, dir.Z, 1}
}

// SetLightColor changes the light color. Alpha is ignored.
func (sh *Shading) SetLightColor(rgba [4]float32) {
	rgba[3] = 1
	sh.lightColor.Value = rgba
}

// SetAmbient changes the ambient light intensity.
func (sh *Shading) SetAmbient(ambient float32) { sh.ambient.Value = ambient }

func (sh *Shading) ComponentName() string { return "Shading" }

func (sh *Shading) Hooks() []string { return []string{HookFragColor} }

func (sh *Shading) Templates(hook string) []*glbuild.Template {
	if hook == HookFragColor {
		return []*glbuild.Template{tmplShading}
	}
	return nil
}

func (sh *Shading) Dependencies() []glbuild.Dependency {
	return []glbuild.Dependency{{Component: sh.normals, Hook: HookFragNormal}}
}

func (sh *Shading) Activate(ctx *glbuild.Context) error {
	normal, err := ctx.Dependency(sh.normals, HookFragNormal)
	if err != nil {
		return err
	}
	fn := ctx.Function(tmplShading)
	fn.Set("normal", normal)
	fn.Set("light_direction", sh.lightDir)
	fn.Set("light_color", sh.lightColor)
	fn.Set("ambient", sh.ambient)
	return nil
}
