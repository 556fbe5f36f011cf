package gldraw

import (
	"errors"
	"fmt"
	"strings"

	"github.com/soypat/glvis/glbuild"
)

// Recorder is a headless [Backend] which records compiled sources, allocated buffers
// and binding calls. It is useful for inspecting composed programs without a GPU.
type Recorder struct {
	// Compiles records the source code of every compilation in order.
	Compiles []Compilation
	// Buffers records every buffer allocated.
	Buffers []*glbuild.HostBuffer
	// Programs records every program returned by Compile.
	Programs []*RecordedProgram
	// CompileErr, if set, is returned by Compile.
	CompileErr error
}

var _ Backend = (*Recorder)(nil) // Interface implementation compile-time check.

// Compilation is the source code passed to [Recorder.Compile].
type Compilation struct {
	Vertex   string
	Fragment string
}

// Compile records the source code and returns a new [RecordedProgram]. The source must
// contain a main function in both stages.
func (r *Recorder) Compile(vertex, fragment string) (Program, error) {
	if r.CompileErr != nil {
		return nil, r.CompileErr
	}
	if !strings.Contains(vertex, "void main()") || !strings.Contains(fragment, "void main()") {
		return nil, errors.New("missing main function")
	}
	r.Compiles = append(r.Compiles, Compilation{Vertex: vertex, Fragment: fragment})
	p := &RecordedProgram{
		Uniforms:   make(map[string]any),
		Attributes: make(map[string]glbuild.Buffer),
	}
	r.Programs = append(r.Programs, p)
	return p, nil
}

// NewBuffer implements [glbuild.BufferAllocator].
func (r *Recorder) NewBuffer(data any) (glbuild.Buffer, error) {
	hb, err := glbuild.NewHostBuffer(data)
	if err != nil {
		return nil, err
	}
	r.Buffers = append(r.Buffers, hb)
	return hb, nil
}

// RecordedProgram is the [Program] returned by [Recorder].
type RecordedProgram struct {
	Uniforms   map[string]any
	Attributes map[string]glbuild.Buffer
	// Calls lists every binding call in order, i.e: "uniform vec4 u_rgba_1" or "attribute a_position".
	Calls   []string
	Deleted bool
}

func (p *RecordedProgram) SetUniform(name string, t glbuild.GLType, v any) error {
	if p.Deleted {
		return errDeleted
	} else if err := checkUniform(t, v); err != nil {
		return err
	}
	p.Uniforms[name] = v
	p.Calls = append(p.Calls, "uniform "+t.String()+" "+name)
	return nil
}

func (p *RecordedProgram) BindAttribute(name string, b glbuild.Buffer) error {
	if p.Deleted {
		return errDeleted
	} else if b == nil {
		return errNilBuffer
	} else if hb, ok := b.(*glbuild.HostBuffer); ok && hb.Data == nil {
		return errors.New("use of deleted buffer")
	}
	p.Attributes[name] = b
	p.Calls = append(p.Calls, fmt.Sprintf("attribute %s %s[%d]", b.Type(), name, b.Rows()))
	return nil
}

func (p *RecordedProgram) Delete() { p.Deleted = true }

// Reset clears recorded calls keeping the bound values.
func (p *RecordedProgram) Reset() { p.Calls = p.Calls[:0] }

var errDeleted = errors.New("use of deleted program")
