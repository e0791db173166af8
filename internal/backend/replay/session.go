// Package replay provides a record-and-replay double for backend.Backend.
//
// A Session is a script of backend interactions. The Recorder fills one
// while passing calls through to a live backend; the replay Backend consumes
// one deterministically, so pipeline runs and tests work without a GPU.
package replay

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"glslcheck/internal/backend"
)

// Current schema version - increment when the Session format changes.
const sessionSchemaVersion uint16 = 1

// BootstrapOutcome scripts the result of the bootstrap stage.
type BootstrapOutcome uint8

const (
	// BootstrapOK scripts a successful bootstrap.
	BootstrapOK BootstrapOutcome = iota
	// BootstrapInitFailed scripts a display-system init failure.
	BootstrapInitFailed
	// BootstrapWindowFailed scripts a window creation failure.
	BootstrapWindowFailed
	// BootstrapExtensionsFailed scripts an extension loader failure.
	BootstrapExtensionsFailed
)

// UnitScript scripts one CreateUnit call, in call order.
type UnitScript struct {
	Kind uint8
	Fail bool
}

// ReportScript scripts one Compile or Link call, in call order. A non-empty
// FaultOp turns the call into a driver fault instead of a report.
type ReportScript struct {
	OK        bool
	Log       string
	FaultOp   string
	FaultCode uint32
	FaultKind uint8
}

func (r ReportScript) fault() error {
	if r.FaultOp == "" {
		return nil
	}
	return &backend.Fault{
		Op:   r.FaultOp,
		Code: r.FaultCode,
		Kind: backend.FaultKind(r.FaultKind),
	}
}

// Session is a complete scripted run of the check pipeline's backend calls.
type Session struct {
	Schema    uint16
	Bootstrap BootstrapOutcome
	Limits    backend.Limits

	Units       []UnitScript
	Compiles    []ReportScript
	ProgramFail bool
	Links       []ReportScript
}

// NewSession returns an empty session at the current schema version.
func NewSession() *Session {
	return &Session{Schema: sessionSchemaVersion}
}

// SaveSession serializes the session with msgpack and writes it atomically
// (temp file + rename in the target directory).
func SaveSession(path string, s *Session) error {
	if s == nil {
		return fmt.Errorf("nil session")
	}
	s.Schema = sessionSchemaVersion

	data, err := msgpack.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-session-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// LoadSession reads and decodes a session, refusing schema mismatches.
func LoadSession(path string) (*Session, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Session
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if s.Schema != sessionSchemaVersion {
		return nil, fmt.Errorf("session schema %d does not match current %d", s.Schema, sessionSchemaVersion)
	}
	return &s, nil
}
