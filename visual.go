package glvis

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glvis/glbuild"
	"github.com/soypat/glvis/glbuild/glsllib"
	"github.com/soypat/glvis/gldraw"
)

// VisualConfig configures a [Visual].
type VisualConfig struct {
	// Composer generates the visual's program. Defaults to [NewComposer].
	Composer *glbuild.Composer
	// Logger receives debug information on recompilation. May be nil.
	Logger *slog.Logger
}

// Visual is a renderable entity made up of an ordered component list and vertex positions.
// It recomposes its program every [Visual.Prepare] and recompiles only when the
// generated source changes.
type Visual struct {
	composer  *glbuild.Composer
	log       *slog.Logger
	comps     []glbuild.Component
	positions []ms3.Vec
	posCache  bufferCache[ms3.Vec]

	backend gldraw.Backend
	prog    gldraw.Program
	hash    uint64
	source  glbuild.Program
}

// NewVisual returns a Visual with no components.
func NewVisual(cfg VisualConfig) *Visual {
	if cfg.Composer == nil {
		cfg.Composer = NewComposer()
	}
	return &Visual{composer: cfg.Composer, log: cfg.Logger}
}

// Add appends components to the visual. Order determines the order of function calls within each hook.
func (v *Visual) Add(components ...glbuild.Component) {
	v.comps = append(v.comps, components...)
}

// Remove removes the first occurrence of c and reports whether it was found.
func (v *Visual) Remove(c glbuild.Component) bool {
	for i, comp := range v.comps {
		if comp == c {
			v.comps = append(v.comps[:i], v.comps[i+1:]...)
			return true
		}
	}
	return false
}

// Components returns the visual's components in order.
func (v *Visual) Components() []glbuild.Component {
	return append([]glbuild.Component(nil), v.comps...)
}

// SetPositions sets the model-space vertex positions read by local_position().
func (v *Visual) SetPositions(positions []ms3.Vec) {
	v.positions = positions
}

// VertexCount returns the number of vertices of the visual.
func (v *Visual) VertexCount() int { return len(v.positions) }

// Source returns the program generated by the last successful [Visual.Prepare].
func (v *Visual) Source() glbuild.Program { return v.source }

// Prepare composes the components, compiles the program if its source or the backend
// changed and binds all uniforms and attributes. The returned program is ready for drawing.
// Every attribute buffer must hold one row per vertex position.
// On error the previously prepared program is kept.
func (v *Visual) Prepare(backend gldraw.Backend) (gldraw.Program, error) {
	if backend == nil {
		return nil, errors.New("nil backend")
	} else if len(v.positions) == 0 {
		return nil, errors.New("visual has no vertex positions")
	}
	v.composer.SetBufferAllocator(backend)
	src, err := v.composer.Compose(v.comps...)
	if err != nil {
		return nil, err
	}
	for _, b := range src.Bindings {
		if b.Class != glbuild.Attribute {
			continue
		}
		buf, ok := b.Value.(glbuild.Buffer)
		if ok && buf != nil && buf.Rows() != len(v.positions) {
			return nil, fmt.Errorf("attribute %s has %d rows, visual has %d vertices", b.Name, buf.Rows(), len(v.positions))
		}
	}
	posBuf, err := v.posCache.get(backend, v.positions)
	if err != nil {
		return nil, err
	}
	hash := src.Hash()
	prog := v.prog
	if prog == nil || v.backend != backend || hash != v.hash {
		prog, err = backend.Compile(src.Vertex, src.Fragment)
		if err != nil {
			return nil, err
		}
		if v.log != nil {
			v.log.Debug("compiled visual program", slog.Int("components", len(v.comps)), slog.Uint64("hash", hash))
		}
		if v.prog != nil {
			v.prog.Delete()
		}
		v.prog, v.backend, v.hash = prog, backend, hash
	}
	v.source = src
	err = prog.BindAttribute(glsllib.PositionName, posBuf)
	if err != nil {
		return nil, err
	}
	err = gldraw.Apply(prog, src)
	if err != nil {
		return nil, err
	}
	return prog, nil
}

// Delete releases the compiled program.
func (v *Visual) Delete() {
	if v.prog != nil {
		v.prog.Delete()
	}
	v.prog, v.backend, v.hash = nil, nil, 0
	v.posCache.invalidate()
}
