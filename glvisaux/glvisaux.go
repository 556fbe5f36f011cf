// Package glvisaux provides auxiliary functions to get started with glvis quickly:
// meshes, per-vertex color generation, program inspection and an interactive window.
package glvisaux

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glvis"
	"github.com/soypat/glvis/glbuild"
	"golang.org/x/image/colornames"
)

// UIConfig configures the interactive window started by [UI].
type UIConfig struct {
	Width, Height int
	Title         string
	// Mesh is the shape drawn. Defaults to [Cube].
	Mesh Mesh
	// DegreesPerFrame is the rotation speed of the mesh.
	DegreesPerFrame float32
	// GridSpacing enables grid contours when non-zero.
	GridSpacing ms3.Vec
	// Silent suppresses progress logging through the standard logger.
	Silent bool
	// Context cancels the render loop when done. May be nil.
	Context context.Context
}

func (cfg UIConfig) logf(format string, args ...any) {
	if !cfg.Silent {
		log.Printf(format, args...)
	}
}

// NewDefaultUIConfig returns a configuration for a 800x800 window showing a spinning cube.
func NewDefaultUIConfig() UIConfig {
	return UIConfig{
		Width:           800,
		Height:          800,
		Title:           "glvis",
		Mesh:            Cube(),
		DegreesPerFrame: 0.5,
		GridSpacing:     ms3.Vec{X: 0.5, Y: 0.5, Z: 0.5},
	}
}

// UI opens a window and draws the mesh with vertex colors, normals, shading and
// optional grid contours. It blocks until the window is closed. Requires CGo.
func UI(cfg UIConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return errors.New("invalid window dimensions")
	} else if len(cfg.Mesh.Positions) == 0 {
		cfg.Mesh = Cube()
	}
	return ui(cfg)
}

// MeshVisual builds a visual drawing mesh with per-vertex colors lit by a single light.
// The returned transform positions the mesh in clip space.
func MeshVisual(bld *glvis.Builder, mesh Mesh, gridSpacing ms3.Vec) (*glvis.Visual, *glvis.Transform) {
	const normalsName = "meshNormals"
	colors := mesh.Colors
	if len(colors) == 0 {
		colors = GradientColors(mesh.Positions, ms3.Vec{Y: 1}, colornames.Steelblue, colornames.Coral)
	}
	shading := glvis.NewDefaultShadingConfig(normalsName)
	shading.LightDir = ms3.Vec{X: 1, Y: 1, Z: 1}
	tr := bld.NewTransform([16]float32{0: 1, 5: 1, 10: 1, 15: 1})
	vis := glvis.NewVisual(glvis.VisualConfig{})
	vis.SetPositions(mesh.Positions)
	vis.Add(
		tr,
		bld.NewVertexColor(colors),
		bld.NewVertexNormal(normalsName, mesh.Normals),
	)
	if gridSpacing != (ms3.Vec{}) {
		vis.Add(bld.NewGridContour(gridSpacing))
	}
	vis.Add(bld.NewShading(shading))
	return vis, tr
}

// WriteProgram writes the vertex and fragment source of prog followed by its binding table.
func WriteProgram(w io.Writer, prog glbuild.Program) (int, error) {
	var b []byte
	b = append(b, "// Vertex shader\n"...)
	b = append(b, prog.Vertex...)
	b = append(b, "\n// Fragment shader\n"...)
	b = append(b, prog.Fragment...)
	b = append(b, "\n// Bindings\n"...)
	for _, binding := range prog.Bindings {
		b = fmt.Appendf(b, "// %-9s %-5s %s", binding.Class, binding.Type, binding.Name)
		switch binding.Class {
		case glbuild.Uniform:
			b = append(b, " = "...)
			lit, err := glbuild.AppendLiteral(nil, binding.Value)
			if err != nil {
				return 0, err
			}
			b = append(b, lit...)
		case glbuild.Attribute:
			if buf, ok := binding.Value.(glbuild.Buffer); ok && buf != nil {
				b = fmt.Appendf(b, " [%d rows]", buf.Rows())
			}
		}
		b = append(b, '\n')
	}
	return w.Write(b)
}
