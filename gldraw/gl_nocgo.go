//go:build tinygo || !cgo

package gldraw

import (
	"errors"

	"github.com/soypat/glvis/glbuild"
)

var errNoCGO = errors.New("OpenGL backend requires CGo and is not supported on TinyGo")

// GL is an OpenGL [Backend]. It is unavailable without CGo.
type GL struct{}

var _ Backend = (*GL)(nil) // Interface implementation compile-time check.

func NewGL() *GL { return &GL{} }

func (g *GL) Compile(vertex, fragment string) (Program, error) { return nil, errNoCGO }

func (g *GL) NewBuffer(data any) (glbuild.Buffer, error) { return nil, errNoCGO }

func (g *GL) BindVertexArray() {}

func (g *GL) Delete() {}
