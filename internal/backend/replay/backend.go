package replay

import (
	"fmt"

	"glslcheck/internal/backend"
)

// Backend replays a Session. Every call is appended to Calls so tests can
// assert ordering (the record half of record-and-replay lives in record.go).
type Backend struct {
	session *Session
	Calls   []string

	bootstrapped bool
	nextUnit     int
	nextCompile  int
	nextLink     int
	unitSeq      uint32
}

// New returns a Backend that replays the given session.
func New(session *Session) *Backend {
	return &Backend{session: session}
}

func (b *Backend) record(call string) {
	b.Calls = append(b.Calls, call)
}

// Bootstrap replays the scripted bootstrap outcome.
func (b *Backend) Bootstrap(cfg backend.Config) error {
	b.record("bootstrap")
	switch b.session.Bootstrap {
	case BootstrapInitFailed:
		return fmt.Errorf("%w: scripted", backend.ErrInit)
	case BootstrapWindowFailed:
		return fmt.Errorf("%w: scripted", backend.ErrWindow)
	case BootstrapExtensionsFailed:
		return fmt.Errorf("%w: scripted", backend.ErrExtensions)
	}
	b.bootstrapped = true
	return nil
}

// Limits returns the scripted context limits.
func (b *Backend) Limits() (backend.Limits, error) {
	b.record("limits")
	return b.session.Limits, nil
}

// CreateUnit consumes the next unit script.
func (b *Backend) CreateUnit(kind backend.UnitKind) (backend.Unit, error) {
	b.record("create-unit " + kind.String())
	if b.nextUnit >= len(b.session.Units) {
		return 0, fmt.Errorf("replay: no scripted outcome for CreateUnit(%s)", kind)
	}
	script := b.session.Units[b.nextUnit]
	b.nextUnit++
	if backend.UnitKind(script.Kind) != kind {
		return 0, fmt.Errorf("replay: scripted %s unit, pipeline asked for %s",
			backend.UnitKind(script.Kind), kind)
	}
	if script.Fail {
		return 0, fmt.Errorf("failed to create %s shader object", kind)
	}
	b.unitSeq++
	return backend.Unit(b.unitSeq), nil
}

// Compile consumes the next compile script. The submitted lines only affect
// recording, matching a driver that ignores source it cannot parse.
func (b *Backend) Compile(unit backend.Unit, lines []string) (backend.Report, error) {
	b.record(fmt.Sprintf("compile unit=%d lines=%d", unit, len(lines)))
	if b.nextCompile >= len(b.session.Compiles) {
		return backend.Report{}, fmt.Errorf("replay: no scripted outcome for Compile")
	}
	script := b.session.Compiles[b.nextCompile]
	b.nextCompile++
	if err := script.fault(); err != nil {
		return backend.Report{}, err
	}
	return backend.Report{OK: script.OK, Log: script.Log}, nil
}

// CreateProgram replays the scripted program-creation outcome.
func (b *Backend) CreateProgram() (backend.Program, error) {
	b.record("create-program")
	if b.session.ProgramFail {
		return 0, fmt.Errorf("failed to create program object")
	}
	return backend.Program(1), nil
}

// Link consumes the next link script.
func (b *Backend) Link(program backend.Program, units ...backend.Unit) (backend.Report, error) {
	b.record(fmt.Sprintf("link program=%d units=%d", program, len(units)))
	if b.nextLink >= len(b.session.Links) {
		return backend.Report{}, fmt.Errorf("replay: no scripted outcome for Link")
	}
	script := b.session.Links[b.nextLink]
	b.nextLink++
	if err := script.fault(); err != nil {
		return backend.Report{}, err
	}
	return backend.Report{OK: script.OK, Log: script.Log}, nil
}

// ReleaseUnit records the release.
func (b *Backend) ReleaseUnit(unit backend.Unit) {
	b.record(fmt.Sprintf("release-unit %d", unit))
}

// ReleaseProgram records the release.
func (b *Backend) ReleaseProgram(program backend.Program) {
	b.record(fmt.Sprintf("release-program %d", program))
}

// Teardown records the teardown.
func (b *Backend) Teardown() {
	b.record("teardown")
	b.bootstrapped = false
}
