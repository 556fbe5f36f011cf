// Package glvis implements visual components which compose into complete
// vertex and fragment shader programs through [glbuild.Composer].
package glvis

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glvis/glbuild"
	"github.com/soypat/glvis/glbuild/glsllib"
)

// Hooks provided by the default composer configuration.
const (
	// HookVertPosition is the vertex stage value hook whose result is written to gl_Position.
	HookVertPosition = "vert_position"
	// HookVertPost is the vertex stage void hook run after the position is computed,
	// used by components to write their varyings.
	HookVertPost = "vert_post_hook"
	// HookFragNormal is the fragment stage value hook providing surface normals. It is not
	// called by main, materials reference it.
	HookFragNormal = "frag_normal"
	// HookFragColor is the fragment stage value hook whose result is the fragment color.
	HookFragColor = "frag_color"
)

// DefaultHooks returns the hooks of the default composer configuration in emission order.
func DefaultHooks() []glbuild.Hook {
	return []glbuild.Hook{
		{Name: HookVertPosition, Stage: glbuild.StageVertex, Kind: glbuild.ChainValue, Type: glbuild.Vec4, Default: "local_position()", Entry: true},
		{Name: HookVertPost, Stage: glbuild.StageVertex, Kind: glbuild.ChainVoid, Entry: true},
		{Name: HookFragNormal, Stage: glbuild.StageFragment, Kind: glbuild.ChainValue, Type: glbuild.Vec4},
		{Name: HookFragColor, Stage: glbuild.StageFragment, Kind: glbuild.ChainValue, Type: glbuild.Vec4, Required: true, Entry: true},
	}
}

// DefaultComposerConfig returns the composer configuration used by [Visual]: the
// [DefaultHooks], the glsllib helper preludes and the a_position vertex input.
func DefaultComposerConfig() glbuild.ComposerConfig {
	return glbuild.ComposerConfig{
		Dialect:         glbuild.DialectCore,
		Hooks:           DefaultHooks(),
		VertexPrelude:   glsllib.VertexPrelude(),
		FragmentPrelude: glsllib.FragmentPrelude(),
		Inputs:          []*glbuild.Symbol{glsllib.PositionInput()},
	}
}

// NewComposer returns a composer with the default configuration.
func NewComposer() *glbuild.Composer {
	c, err := glbuild.NewComposer(DefaultComposerConfig())
	if err != nil {
		panic(err) // Default configuration is always valid.
	}
	return c
}

// Builder wraps component construction and parameter validation.
// Provides error handling strategies with panics or error accumulation during construction.
type Builder struct {
	NoParamPanic bool
	accumErrs    []error
}

func (bld *Builder) Err() error {
	if len(bld.accumErrs) == 0 {
		return nil
	}
	return errors.Join(bld.accumErrs...)
}

func (bld *Builder) paramErrorf(msg string, args ...any) {
	if !bld.NoParamPanic {
		panic(fmt.Sprintf(msg, args...))
	}
	bld.accumErrs = append(bld.accumErrs, fmt.Errorf(msg, args...))
}

func (bld *Builder) checkColor(who string, c [4]float32) {
	for i, v := range c {
		if math32.IsNaN(v) || v < 0 || v > 1 {
			bld.paramErrorf("%s color component %d out of range [0,1]: %v", who, i, v)
			return
		}
	}
}

func (bld *Builder) checkVec(who string, v ms3.Vec) {
	if math32.IsNaN(v.X) || math32.IsNaN(v.Y) || math32.IsNaN(v.Z) ||
		math32.IsInf(v.X, 0) || math32.IsInf(v.Y, 0) || math32.IsInf(v.Z, 0) {
		bld.paramErrorf("%s has non-finite component: %v", who, v)
	}
}

// ColorOf converts c to normalized RGBA components as used by color uniforms.
func ColorOf(c color.Color) [4]float32 {
	r, g, b, a := c.RGBA()
	const max = 0xffff
	return [4]float32{float32(r) / max, float32(g) / max, float32(b) / max, float32(a) / max}
}

// bufferCache keeps the buffer created for a per-vertex data slice and reuses it
// until the slice's backing array or length changes, or a different allocator is used.
// Contents are not diffed. A replaced buffer is released with [glbuild.DeleteBuffer].
type bufferCache[T any] struct {
	alloc glbuild.BufferAllocator
	ptr   *T
	n     int
	buf   glbuild.Buffer
}

func (bc *bufferCache[T]) get(alloc glbuild.BufferAllocator, data []T) (glbuild.Buffer, error) {
	if len(data) == 0 {
		return nil, errors.New("no vertex data")
	}
	ptr := &data[0]
	if bc.buf != nil && bc.ptr == ptr && bc.n == len(data) && bc.alloc == alloc {
		return bc.buf, nil
	}
	buf, err := alloc.NewBuffer(data)
	if err != nil {
		return nil, err
	}
	if bc.buf != nil {
		glbuild.DeleteBuffer(bc.buf)
	}
	bc.alloc, bc.ptr, bc.n, bc.buf = alloc, ptr, len(data), buf
	return buf, nil
}

func (bc *bufferCache[T]) invalidate() {
	if bc.buf != nil {
		glbuild.DeleteBuffer(bc.buf)
	}
	*bc = bufferCache[T]{}
}
