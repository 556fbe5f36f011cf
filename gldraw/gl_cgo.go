//go:build !tinygo && cgo

package gldraw

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/soypat/glgl/v4.6-core/glgl"
	"github.com/soypat/glvis/glbuild"
)

// GL is an OpenGL [Backend]. An OpenGL context must be current on the calling
// goroutine for all of its methods, see [glgl.InitWithCurrentWindow33].
type GL struct {
	vao     uint32
	buffers []uint32
	scratch []float32
}

var _ Backend = (*GL)(nil) // Interface implementation compile-time check.

// NewGL returns an OpenGL backend for the current context.
func NewGL() *GL {
	return &GL{}
}

// Compile compiles and links the program. The returned error contains the source on failure.
func (g *GL) Compile(vertex, fragment string) (Program, error) {
	prog, err := glgl.CompileProgram(glgl.ShaderSource{
		Vertex:   vertex + "\x00",
		Fragment: fragment + "\x00",
	})
	if err != nil {
		return nil, fmt.Errorf("%s\n\n%s\n\n%w", vertex, fragment, err)
	}
	if g.vao == 0 {
		gl.GenVertexArrays(1, &g.vao)
	}
	return &glProgram{g: g, prog: prog, locs: make(map[string]int32)}, nil
}

// NewBuffer uploads data to a new vertex buffer object.
func (g *GL) NewBuffer(data any) (glbuild.Buffer, error) {
	hb, err := glbuild.NewHostBuffer(data)
	if err != nil {
		return nil, err
	}
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, hb.Size, hb.Data, gl.STATIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	if err = glgl.Err(); err != nil {
		gl.DeleteBuffers(1, &vbo)
		return nil, err
	}
	g.buffers = append(g.buffers, vbo)
	return &glBuffer{g: g, vbo: vbo, rows: hb.Rows(), stride: hb.Stride, typ: hb.Type()}, nil
}

// BindVertexArray binds the vertex array object attributes are recorded to. Call before drawing.
func (g *GL) BindVertexArray() {
	gl.BindVertexArray(g.vao)
}

// Delete releases all buffers and the vertex array allocated by g.
func (g *GL) Delete() {
	if len(g.buffers) > 0 {
		gl.DeleteBuffers(int32(len(g.buffers)), &g.buffers[0])
		g.buffers = g.buffers[:0]
	}
	if g.vao != 0 {
		gl.DeleteVertexArrays(1, &g.vao)
		g.vao = 0
	}
}

type glBuffer struct {
	g      *GL
	vbo    uint32
	rows   int
	stride int
	typ    glbuild.GLType
}

func (b *glBuffer) Rows() int            { return b.rows }
func (b *glBuffer) Type() glbuild.GLType { return b.typ }

// Delete releases the vertex buffer object. It is a no-op after the first call.
func (b *glBuffer) Delete() {
	if b.vbo == 0 {
		return
	}
	for i, vbo := range b.g.buffers {
		if vbo == b.vbo {
			b.g.buffers = append(b.g.buffers[:i], b.g.buffers[i+1:]...)
			break
		}
	}
	gl.DeleteBuffers(1, &b.vbo)
	b.vbo = 0
}

type glProgram struct {
	g    *GL
	prog glgl.Program
	// locs caches uniform and attribute locations. -1 is kept for names
	// optimized out by the GLSL compiler.
	locs map[string]int32
}

func (p *glProgram) location(name string, attrib bool) int32 {
	key := name
	if attrib {
		key = "@" + name
	}
	loc, ok := p.locs[key]
	if ok {
		return loc
	}
	if attrib {
		loc = gl.GetAttribLocation(p.prog.ID(), gl.Str(name+"\x00"))
	} else {
		loc = gl.GetUniformLocation(p.prog.ID(), gl.Str(name+"\x00"))
	}
	p.locs[key] = loc
	return loc
}

func (p *glProgram) SetUniform(name string, t glbuild.GLType, v any) error {
	if err := checkUniform(t, v); err != nil {
		return err
	}
	loc := p.location(name, false)
	if loc < 0 {
		return nil // Unused by program.
	}
	p.prog.Bind()
	f, err := glbuild.Float32s(p.g.scratch[:0], v)
	if err != nil {
		return err
	}
	p.g.scratch = f
	switch t {
	case glbuild.Int:
		gl.Uniform1i(loc, int32(f[0]))
	case glbuild.Float:
		gl.Uniform1f(loc, f[0])
	case glbuild.Vec2:
		gl.Uniform2fv(loc, 1, &f[0])
	case glbuild.Vec3:
		gl.Uniform3fv(loc, 1, &f[0])
	case glbuild.Vec4:
		gl.Uniform4fv(loc, 1, &f[0])
	case glbuild.Mat2:
		gl.UniformMatrix2fv(loc, 1, false, &f[0])
	case glbuild.Mat3:
		gl.UniformMatrix3fv(loc, 1, false, &f[0])
	case glbuild.Mat4:
		gl.UniformMatrix4fv(loc, 1, false, &f[0])
	default:
		return fmt.Errorf("unsupported uniform type %s", t)
	}
	return glgl.Err()
}

func (p *glProgram) BindAttribute(name string, b glbuild.Buffer) error {
	buf, ok := b.(*glBuffer)
	if !ok {
		return errors.New("buffer not allocated by GL backend")
	}
	loc := p.location(name, true)
	if loc < 0 {
		return nil
	}
	comps := buf.typ.Components()
	if buf.vbo == 0 {
		return errors.New("use of deleted buffer")
	} else if comps > 4 {
		return fmt.Errorf("unsupported attribute type %s", buf.typ)
	}
	gl.BindVertexArray(p.g.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, buf.vbo)
	gl.EnableVertexAttribArray(uint32(loc))
	gl.VertexAttribPointer(uint32(loc), int32(comps), gl.FLOAT, false, int32(buf.stride), gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return glgl.Err()
}

// Bind makes the program current for drawing.
func (p *glProgram) Bind() { p.prog.Bind() }

func (p *glProgram) Delete() {
	p.prog.Delete()
}
