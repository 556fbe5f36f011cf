package glvis

import (
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glvis/glbuild"
)

var (
	tmplVertexNormal = glbuild.MustParseTemplate(`vec4 $vertexNormal() {
	return $normal;
}`)
	tmplVertexNormalSupport = glbuild.MustParseTemplate(`void $vertexNormalSupport() {
	$output_normal = vec4($input_normal, 0.0);
}`)
)

// VertexNormal provides per-vertex surface normals on the frag_normal hook.
// Materials such as [Shading] reference it by name.
type VertexNormal struct {
	name    string
	normals []ms3.Vec
	cache   bufferCache[ms3.Vec]
	normal  *glbuild.Symbol
	input   *glbuild.Symbol
}

var _ glbuild.Component = (*VertexNormal)(nil) // Interface implementation compile-time check.

// NewVertexNormal returns a normal provider named name reading one normal per vertex.
func (bld *Builder) NewVertexNormal(name string, normals []ms3.Vec) *VertexNormal {
	if name == "" {
		bld.paramErrorf("VertexNormal requires a name")
	}
	if len(normals) == 0 {
		bld.paramErrorf("VertexNormal requires at least one normal")
	}
	return &VertexNormal{
		name:    name,
		normals: normals,
		normal:  glbuild.NewVarying(glbuild.Vec4),
		input:   &glbuild.Symbol{Class: glbuild.Attribute, Type: glbuild.Vec3},
	}
}

// SetNormals replaces the per-vertex normals.
func (vn *VertexNormal) SetNormals(normals []ms3.Vec) { vn.normals = normals }

func (vn *VertexNormal) ComponentName() string { return vn.name }

func (vn *VertexNormal) Hooks() []string { return []string{HookFragNormal, HookVertPost} }

func (vn *VertexNormal) Templates(hook string) []*glbuild.Template {
	switch hook {
	case HookFragNormal:
		return []*glbuild.Template{tmplVertexNormal}
	case HookVertPost:
		return []*glbuild.Template{tmplVertexNormalSupport}
	}
	return nil
}

func (vn *VertexNormal) Dependencies() []glbuild.Dependency { return nil }

func (vn *VertexNormal) Activate(ctx *glbuild.Context) error {
	buf, err := vn.cache.get(ctx.Allocator(), vn.normals)
	if err != nil {
		return err
	}
	vn.input.Value = buf
	ctx.Function(tmplVertexNormal).Set("normal", vn.normal)
	support := ctx.Function(tmplVertexNormalSupport)
	support.Set("output_normal", vn.normal)
	support.Set("input_normal", vn.input)
	return nil
}
