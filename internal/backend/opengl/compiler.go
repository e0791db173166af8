package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"

	"glslcheck/internal/backend"
)

// CreateUnit creates an empty shader object for the given stage.
func (b *Backend) CreateUnit(kind backend.UnitKind) (backend.Unit, error) {
	var glKind uint32
	switch kind {
	case backend.UnitVertex:
		glKind = gl.VERTEX_SHADER
	case backend.UnitFragment:
		glKind = gl.FRAGMENT_SHADER
	default:
		return 0, fmt.Errorf("unsupported unit kind %d", kind)
	}
	handle := gl.CreateShader(glKind)
	if handle == 0 {
		return 0, fmt.Errorf("failed to create %s shader object", kind)
	}
	if fault := checkFlag("glCreateShader"); fault != nil {
		return 0, fault
	}
	return backend.Unit(handle), nil
}

// Compile submits the lines as the unit's full source, compiles, and
// collects the info log and the compile-status flag.
func (b *Backend) Compile(unit backend.Unit, lines []string) (backend.Report, error) {
	var report backend.Report

	// gl.Strs требует \x00 в конце каждой строки
	terminated := make([]string, len(lines))
	for i, line := range lines {
		terminated[i] = line + "\x00"
	}
	csources, free := gl.Strs(terminated...)
	gl.ShaderSource(uint32(unit), int32(len(terminated)), csources, nil)
	free()
	if fault := checkFlag("glShaderSource"); fault != nil {
		return report, fault
	}

	gl.CompileShader(uint32(unit))
	if fault := checkFlag("glCompileShader"); fault != nil {
		return report, fault
	}

	report.Log = shaderInfoLog(uint32(unit))

	var status int32
	gl.GetShaderiv(uint32(unit), gl.COMPILE_STATUS, &status)
	report.OK = status == gl.TRUE
	return report, nil
}

// CreateProgram creates an empty program object.
func (b *Backend) CreateProgram() (backend.Program, error) {
	handle := gl.CreateProgram()
	if handle == 0 {
		return 0, fmt.Errorf("failed to create program object")
	}
	if fault := checkFlag("glCreateProgram"); fault != nil {
		return 0, fault
	}
	return backend.Program(handle), nil
}

// Link attaches the units in order, links the program, and collects the
// program-level info log and the link-status flag.
func (b *Backend) Link(program backend.Program, units ...backend.Unit) (backend.Report, error) {
	var report backend.Report

	for _, unit := range units {
		gl.AttachShader(uint32(program), uint32(unit))
		if fault := checkFlag("glAttachShader"); fault != nil {
			return report, fault
		}
	}

	gl.LinkProgram(uint32(program))
	if fault := checkFlag("glLinkProgram"); fault != nil {
		return report, fault
	}

	report.Log = programInfoLog(uint32(program))

	var status int32
	gl.GetProgramiv(uint32(program), gl.LINK_STATUS, &status)
	report.OK = status == gl.TRUE
	return report, nil
}

// ReleaseUnit deletes the shader object.
func (b *Backend) ReleaseUnit(unit backend.Unit) {
	gl.DeleteShader(uint32(unit))
}

// ReleaseProgram deletes the program object.
func (b *Backend) ReleaseProgram(program backend.Program) {
	gl.DeleteProgram(uint32(program))
}

func shaderInfoLog(handle uint32) string {
	var logLength int32
	gl.GetShaderiv(handle, gl.INFO_LOG_LENGTH, &logLength)
	if logLength <= 0 {
		return ""
	}
	buf := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(handle, logLength, nil, gl.Str(buf))
	return trimLog(buf)
}

func programInfoLog(handle uint32) string {
	var logLength int32
	gl.GetProgramiv(handle, gl.INFO_LOG_LENGTH, &logLength)
	if logLength <= 0 {
		return ""
	}
	buf := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(handle, logLength, nil, gl.Str(buf))
	return trimLog(buf)
}

func trimLog(buf string) string {
	return strings.TrimRight(buf, "\x00")
}
