//go:build !tinygo && cgo

package glvisaux

import (
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/soypat/glvis"
	"github.com/soypat/glvis/gldraw"
)

func ui(cfg UIConfig) error {
	window, term, err := startGLFW(cfg.Width, cfg.Height, cfg.Title)
	if err != nil {
		return err
	}
	defer term()

	bld := glvis.Builder{NoParamPanic: true}
	vis, transform := MeshVisual(&bld, cfg.Mesh, cfg.GridSpacing)
	if err = bld.Err(); err != nil {
		return err
	}
	backend := gldraw.NewGL()
	defer backend.Delete()
	defer vis.Delete()

	// First prepare compiles the program and creates the vertex array.
	prog, err := vis.Prepare(backend)
	if err != nil {
		return err
	}
	cfg.logf("compiled program with %d bindings", len(vis.Source().Bindings))
	backend.BindVertexArray()
	var ebo uint32
	gl.GenBuffers(1, &ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, 4*len(cfg.Mesh.Filled), gl.Ptr(cfg.Mesh.Filled), gl.STATIC_DRAW)
	defer gl.DeleteBuffers(1, &ebo)

	gl.Enable(gl.DEPTH_TEST)
	view := mgl32.Translate3D(0, 0, -5)
	var theta, phi float32
	ctx := cfg.Context
	frames := 0
	start := time.Now()
	for !window.ShouldClose() {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		width, height := window.GetFramebufferSize()
		gl.Viewport(0, 0, int32(width), int32(height))
		theta += cfg.DegreesPerFrame
		phi += cfg.DegreesPerFrame
		model := mgl32.HomogRotate3D(mgl32.DegToRad(theta), mgl32.Vec3{0, 0, 1}).
			Mul4(mgl32.HomogRotate3D(mgl32.DegToRad(phi), mgl32.Vec3{0, 1, 0}))
		projection := mgl32.Perspective(mgl32.DegToRad(45), float32(width)/float32(height), 2, 10)
		transform.SetMatrix(projection.Mul4(view).Mul4(model))

		prog, err = vis.Prepare(backend)
		if err != nil {
			return fmt.Errorf("frame %d: %w", frames, err)
		}
		gl.ClearColor(1, 1, 1, 1)
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
		if binder, ok := prog.(interface{ Bind() }); ok {
			binder.Bind()
		}
		backend.BindVertexArray()
		gl.DrawElements(gl.TRIANGLES, int32(len(cfg.Mesh.Filled)), gl.UNSIGNED_INT, gl.PtrOffset(0))
		window.SwapBuffers()
		glfw.PollEvents()
		frames++
		time.Sleep(time.Second / 60)
	}
	cfg.logf("window closed after %d frames in %s", frames, time.Since(start))
	return nil
}

func startGLFW(width, height int, title string) (window *glfw.Window, term func(), err error) {
	if err := glfw.Init(); err != nil {
		return nil, nil, fmt.Errorf("initializing GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 6)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	window, err = glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("creating GLFW window: %w", err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("initializing OpenGL: %w", err)
	}
	return window, glfw.Terminate, nil
}
