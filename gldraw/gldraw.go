// Package gldraw defines the graphics collaborator consumed by composed programs: compiling
// shader source, allocating per-vertex buffers and binding uniform and attribute values.
package gldraw

import (
	"errors"
	"fmt"

	"github.com/soypat/glvis/glbuild"
)

// Backend compiles programs and allocates per-vertex buffers for a graphics API.
type Backend interface {
	glbuild.BufferAllocator
	// Compile compiles and links vertex and fragment shader source code into a program.
	Compile(vertex, fragment string) (Program, error)
}

// Program is a compiled and linked shader program.
type Program interface {
	// SetUniform sets the value of the uniform declared with name and type t.
	SetUniform(name string, t glbuild.GLType, v any) error
	// BindAttribute binds the per-vertex buffer to the attribute declared with name.
	BindAttribute(name string, b glbuild.Buffer) error
	// Delete releases the program's resources.
	Delete()
}

var errNilBuffer = errors.New("nil buffer")

// Apply dispatches the binding table of src to p: uniform values are set and attribute
// buffers are bound. Varyings have no host side value and are skipped.
func Apply(p Program, src glbuild.Program) error {
	for _, b := range src.Bindings {
		var err error
		switch b.Class {
		case glbuild.Uniform:
			err = p.SetUniform(b.Name, b.Type, b.Value)
		case glbuild.Attribute:
			buf, ok := b.Value.(glbuild.Buffer)
			if !ok || buf == nil {
				err = errNilBuffer
				break
			}
			err = p.BindAttribute(b.Name, buf)
		case glbuild.Varying:
			continue
		default:
			err = fmt.Errorf("unexpected binding class %s", b.Class)
		}
		if err != nil {
			return fmt.Errorf("binding %s %s: %w", b.Class, b.Name, err)
		}
	}
	return nil
}

func checkUniform(t glbuild.GLType, v any) error {
	got, err := glbuild.TypeOf(v)
	if err != nil {
		return err
	} else if got != t {
		return fmt.Errorf("uniform declared %s but value is %s", t, got)
	}
	return nil
}
