package checkpipeline

// FailureKind names the first failure a check run hit. The zero value means
// the run succeeded.
type FailureKind uint8

const (
	// FailNone indicates a fully successful run.
	FailNone FailureKind = iota
	// FailContextInit indicates the display/windowing system failed to init.
	FailContextInit
	// FailWindow indicates window creation failed.
	FailWindow
	// FailExtensions indicates the extension loader failed.
	FailExtensions
	// FailVertexSource indicates the vertex source was missing or unreadable.
	FailVertexSource
	// FailFragmentSource indicates the fragment source was missing or unreadable.
	FailFragmentSource
	// FailObjectCreate indicates a shader or program object came back null.
	FailObjectCreate
	// FailCompile indicates either stage failed to compile.
	FailCompile
	// FailLink indicates the program failed to link.
	FailLink
	// FailDriverFault indicates an unexpected driver error flag after a call
	// expected to succeed.
	FailDriverFault
)

func (k FailureKind) String() string {
	switch k {
	case FailNone:
		return "none"
	case FailContextInit:
		return "context-init"
	case FailWindow:
		return "window"
	case FailExtensions:
		return "extensions"
	case FailVertexSource:
		return "vertex-source"
	case FailFragmentSource:
		return "fragment-source"
	case FailObjectCreate:
		return "object-create"
	case FailCompile:
		return "compile"
	case FailLink:
		return "link"
	case FailDriverFault:
		return "driver-fault"
	}
	return "unknown"
}

// ExitCode maps the failure kind onto the documented process exit codes:
//
//	0  success
//	1  window creation failed
//	2  extension loader / object creation / link failed
//	3  display system init failed
//	4  vertex source missing or unreadable
//	5  fragment source missing or unreadable, or compile of either stage failed
//
// Driver faults share code 2 with the other resource-level failures: the
// run died on the graphics stack, not on the shader under test.
func (k FailureKind) ExitCode() int {
	switch k {
	case FailNone:
		return 0
	case FailWindow:
		return 1
	case FailExtensions:
		return 2
	case FailObjectCreate:
		return 2
	case FailLink:
		return 2
	case FailDriverFault:
		return 2
	case FailContextInit:
		return 3
	case FailVertexSource:
		return 4
	case FailFragmentSource:
		return 5
	case FailCompile:
		return 5
	}
	return 2
}
