package opengl

import (
	"github.com/go-gl/gl/v3.3-core/gl"

	"glslcheck/internal/backend"
)

// faultKind maps a raw glGetError value onto the backend taxonomy.
func faultKind(code uint32) backend.FaultKind {
	switch code {
	case gl.INVALID_ENUM:
		return backend.FaultInvalidEnum
	case gl.INVALID_VALUE:
		return backend.FaultInvalidValue
	case gl.INVALID_OPERATION:
		return backend.FaultInvalidOperation
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return backend.FaultInvalidFramebufferOperation
	case gl.OUT_OF_MEMORY:
		return backend.FaultOutOfMemory
	case gl.STACK_UNDERFLOW:
		return backend.FaultStackUnderflow
	case gl.STACK_OVERFLOW:
		return backend.FaultStackOverflow
	}
	return backend.FaultUnknown
}

// checkFlag polls the driver error flag after op. It returns nil when no
// error has been recorded, otherwise a *backend.Fault describing the flag.
func checkFlag(op string) error {
	code := gl.GetError()
	if code == gl.NO_ERROR {
		return nil
	}
	return &backend.Fault{Op: op, Code: code, Kind: faultKind(code)}
}
