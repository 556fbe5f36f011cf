package glvis

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glvis/glbuild"
)

var tmplTransform = glbuild.MustParseTemplate(`vec4 $transform(vec4 pos) {
	return $matrix * pos;
}`)

// Transform multiplies the vertex position by a 4x4 matrix, typically a model-view-projection.
type Transform struct {
	matrix *glbuild.Symbol
}

var _ glbuild.Component = (*Transform)(nil) // Interface implementation compile-time check.

// NewTransform returns a position transform. m is in column-major order as used by OpenGL.
func (bld *Builder) NewTransform(m [16]float32) *Transform {
	for i, v := range m {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			bld.paramErrorf("Transform matrix element %d not finite: %v", i, v)
			break
		}
	}
	return &Transform{matrix: glbuild.NewUniform(glbuild.Mat4, m)}
}

// SetMatrix sets the column-major transformation matrix.
func (tr *Transform) SetMatrix(m [16]float32) { tr.matrix.Value = m }

// SetMat4 sets the transformation matrix from a row-major [ms3.Mat4].
func (tr *Transform) SetMat4(m ms3.Mat4) { tr.matrix.Value = m }

// Matrix returns the transformation matrix in column-major order.
func (tr *Transform) Matrix() [16]float32 {
	var m [16]float32
	switch v := tr.matrix.Value.(type) {
	case [16]float32:
		m = v
	case ms3.Mat4:
		rowMajor := v.Array()
		for row := 0; row < 4; row++ {
			for col := 0; col < 4; col++ {
				m[col*4+row] = rowMajor[row*4+col]
			}
		}
	}
	return m
}

func (tr *Transform) ComponentName() string { return "Transform" }

func (tr *Transform) Hooks() []string { return []string{HookVertPosition} }

func (tr *Transform) Templates(hook string) []*glbuild.Template {
	if hook == HookVertPosition {
		return []*glbuild.Template{tmplTransform}
	}
	return nil
}

func (tr *Transform) Dependencies() []glbuild.Dependency { return nil }

func (tr *Transform) Activate(ctx *glbuild.Context) error {
	ctx.Function(tmplTransform).Set("matrix", tr.matrix)
	return nil
}
