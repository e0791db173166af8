package replay

import (
	"errors"

	"glslcheck/internal/backend"
)

// Recorder wraps a live backend and captures a Session while passing every
// call through unchanged.
type Recorder struct {
	inner   backend.Backend
	session *Session
}

// NewRecorder wraps inner and starts an empty session.
func NewRecorder(inner backend.Backend) *Recorder {
	return &Recorder{inner: inner, session: NewSession()}
}

// Session returns the captured session.
func (r *Recorder) Session() *Session {
	return r.session
}

// Bootstrap passes through and captures the classified outcome.
func (r *Recorder) Bootstrap(cfg backend.Config) error {
	err := r.inner.Bootstrap(cfg)
	switch {
	case err == nil:
		r.session.Bootstrap = BootstrapOK
	case errors.Is(err, backend.ErrWindow):
		r.session.Bootstrap = BootstrapWindowFailed
	case errors.Is(err, backend.ErrExtensions):
		r.session.Bootstrap = BootstrapExtensionsFailed
	default:
		r.session.Bootstrap = BootstrapInitFailed
	}
	return err
}

// Limits passes through and captures the values.
func (r *Recorder) Limits() (backend.Limits, error) {
	limits, err := r.inner.Limits()
	if err == nil {
		r.session.Limits = limits
	}
	return limits, err
}

// CreateUnit passes through and captures the outcome.
func (r *Recorder) CreateUnit(kind backend.UnitKind) (backend.Unit, error) {
	unit, err := r.inner.CreateUnit(kind)
	r.session.Units = append(r.session.Units, UnitScript{
		Kind: uint8(kind),
		Fail: err != nil,
	})
	return unit, err
}

// Compile passes through and captures the report or fault.
func (r *Recorder) Compile(unit backend.Unit, lines []string) (backend.Report, error) {
	report, err := r.inner.Compile(unit, lines)
	r.session.Compiles = append(r.session.Compiles, reportScript(report, err))
	return report, err
}

// CreateProgram passes through and captures the outcome.
func (r *Recorder) CreateProgram() (backend.Program, error) {
	program, err := r.inner.CreateProgram()
	if err != nil {
		r.session.ProgramFail = true
	}
	return program, err
}

// Link passes through and captures the report or fault.
func (r *Recorder) Link(program backend.Program, units ...backend.Unit) (backend.Report, error) {
	report, err := r.inner.Link(program, units...)
	r.session.Links = append(r.session.Links, reportScript(report, err))
	return report, err
}

// ReleaseUnit passes through.
func (r *Recorder) ReleaseUnit(unit backend.Unit) {
	r.inner.ReleaseUnit(unit)
}

// ReleaseProgram passes through.
func (r *Recorder) ReleaseProgram(program backend.Program) {
	r.inner.ReleaseProgram(program)
}

// Teardown passes through.
func (r *Recorder) Teardown() {
	r.inner.Teardown()
}

func reportScript(report backend.Report, err error) ReportScript {
	script := ReportScript{OK: report.OK, Log: report.Log}
	if fault, ok := backend.AsFault(err); ok {
		script.FaultOp = fault.Op
		script.FaultCode = fault.Code
		script.FaultKind = uint8(fault.Kind)
	} else if err != nil {
		// Неклассифицированная ошибка бэкенда воспроизводится как fault
		script.FaultOp = "backend"
		script.FaultKind = uint8(backend.FaultUnknown)
	}
	return script
}
