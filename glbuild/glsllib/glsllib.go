// Package glsllib holds GLSL helper functions referenced by component templates
// and hook defaults. The helpers are inserted into stage preludes by the composer.
package glsllib

import (
	_ "embed"

	"github.com/soypat/glvis/glbuild"
)

// PositionName is the name of the per-vertex position attribute read by [LocalPosition].
const PositionName = "a_position"

//go:embed local_position.glsl
var localPositionSrc []byte

// LocalPosition returns the vertex stage helper that reads the model-space vertex position:
//
//	vec4 local_position()
//
// It reads the attribute declared by [PositionInput].
func LocalPosition() []byte { return localPositionSrc }

//go:embed normalize_or_zero.glsl
var normalizeOrZeroSrc []byte

// NormalizeOrZero returns a helper which normalizes a vector, returning the zero vector
// for degenerate input instead of NaNs:
//
//	vec3 normalize_or_zero(vec3 v)
func NormalizeOrZero() []byte { return normalizeOrZeroSrc }

// PositionInput returns the pinned vec3 attribute symbol read by [LocalPosition].
// Its buffer is bound by the rendering entity, not by components.
func PositionInput() *glbuild.Symbol {
	return &glbuild.Symbol{Class: glbuild.Attribute, Type: glbuild.Vec3, Name: PositionName}
}

// VertexPrelude returns the helper functions available to vertex stage templates.
func VertexPrelude() []byte { return LocalPosition() }

// FragmentPrelude returns the helper functions available to fragment stage templates.
func FragmentPrelude() []byte { return NormalizeOrZero() }
