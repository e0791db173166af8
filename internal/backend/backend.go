// Package backend abstracts the graphics stack behind the check pipeline:
// context bootstrap, shader unit compilation, and program linking.
//
// The live implementation (backend/opengl) talks to GLFW and the GL driver;
// backend/replay substitutes a recorded session so the pipeline can run and
// be tested without a GPU. All calls are synchronous and block until the
// driver finishes; there is no cancellation and no timeout.
package backend

// UnitKind identifies the shader stage a unit belongs to.
type UnitKind uint8

const (
	// UnitVertex is the vertex stage.
	UnitVertex UnitKind = iota
	// UnitFragment is the fragment stage.
	UnitFragment
)

func (k UnitKind) String() string {
	switch k {
	case UnitVertex:
		return "vertex"
	case UnitFragment:
		return "fragment"
	}
	return "unknown"
}

// Unit is an opaque handle to a single shader stage's source and compiled
// form. Zero is never a valid handle.
type Unit uint32

// Program is an opaque handle to the linked combination of compiled units.
// Zero is never a valid handle.
type Program uint32

// Report carries the outcome of one compile or link call: the status flag
// and the full driver diagnostic log (possibly empty). The log is meaningful
// on success too - drivers emit warnings for runs that pass.
type Report struct {
	OK  bool
	Log string
}

// Limits describes the context properties the tool reports.
type Limits struct {
	MaxVertexUniformVectors   int32
	MaxFragmentUniformVectors int32
	Renderer                  string
	Version                   string
}

// Config configures context bootstrap. The window stays hidden unless
// Visible is set; it exists only to obtain a current context.
type Config struct {
	Width   int
	Height  int
	Title   string
	Visible bool
}

// DefaultConfig mirrors the fixed window parameters of the one-shot check.
func DefaultConfig() Config {
	return Config{Width: 300, Height: 200, Title: "Shader test"}
}

// Backend is the compiler/linker contract the check pipeline drives.
//
// Bootstrap must be called first; its error classifies the failure via
// errors.Is against ErrInit, ErrWindow, and ErrExtensions. Compile and Link
// return a *Fault error when the driver reports an unexpected error flag
// after a call expected to succeed; the status flag in Report is the only
// signal for ordinary compile/link failures.
type Backend interface {
	Bootstrap(cfg Config) error
	Limits() (Limits, error)

	CreateUnit(kind UnitKind) (Unit, error)
	// Compile supplies lines to the unit as its full source (concatenation
	// order = argument order), compiles, and collects log and status.
	Compile(unit Unit, lines []string) (Report, error)

	CreateProgram() (Program, error)
	// Link attaches the units to the program in order, links, and collects
	// the program-level log and status.
	Link(program Program, units ...Unit) (Report, error)

	ReleaseUnit(unit Unit)
	ReleaseProgram(program Program)
	Teardown()
}
