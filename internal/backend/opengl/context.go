// Package opengl implements backend.Backend on GLFW and the OpenGL driver.
package opengl

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"glslcheck/internal/backend"
)

func init() {
	// Контекст GL привязан к потоку ОС
	runtime.LockOSThread()
}

// Backend drives a real GL context. Create one with New, call Bootstrap
// before anything else, and Teardown when done. Not safe for concurrent
// use; the context is current on the locked OS thread only.
type Backend struct {
	window      *glfw.Window
	initialized bool
}

// New returns an unbootstrapped live backend.
func New() *Backend {
	return &Backend{}
}

// Bootstrap initializes GLFW, creates the (hidden by default) window, makes
// its context current, and loads the GL function pointers.
func (b *Backend) Bootstrap(cfg backend.Config) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("%w: %v", backend.ErrInit, err)
	}
	b.initialized = true

	if !cfg.Visible {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		b.initialized = false
		return fmt.Errorf("%w: %v", backend.ErrWindow, err)
	}
	b.window = window
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		return fmt.Errorf("%w: %v", backend.ErrExtensions, err)
	}
	return nil
}

// Limits queries the context properties reported by the info command.
func (b *Backend) Limits() (backend.Limits, error) {
	var limits backend.Limits
	gl.GetIntegerv(gl.MAX_VERTEX_UNIFORM_VECTORS, &limits.MaxVertexUniformVectors)
	if fault := checkFlag("glGetIntegerv(MAX_VERTEX_UNIFORM_VECTORS)"); fault != nil {
		return limits, fault
	}
	gl.GetIntegerv(gl.MAX_FRAGMENT_UNIFORM_VECTORS, &limits.MaxFragmentUniformVectors)
	if fault := checkFlag("glGetIntegerv(MAX_FRAGMENT_UNIFORM_VECTORS)"); fault != nil {
		return limits, fault
	}
	limits.Renderer = gl.GoStr(gl.GetString(gl.RENDERER))
	limits.Version = gl.GoStr(gl.GetString(gl.VERSION))
	return limits, nil
}

// Teardown releases the window and the GLFW state. Safe to call on a
// partially bootstrapped backend; each resource is released once.
func (b *Backend) Teardown() {
	if b.window != nil {
		glfw.DetachCurrentContext()
		b.window.Destroy()
		b.window = nil
	}
	if b.initialized {
		glfw.Terminate()
		b.initialized = false
	}
}
