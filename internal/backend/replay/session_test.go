package replay

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"glslcheck/internal/backend"
)

// saveRaw пишет сессию как есть, без нормализации схемы
func saveRaw(path string, s *Session) error {
	data, err := msgpack.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func passingSession() *Session {
	s := NewSession()
	s.Limits = backend.Limits{
		MaxVertexUniformVectors:   256,
		MaxFragmentUniformVectors: 224,
		Renderer:                  "replay",
		Version:                   "3.3",
	}
	s.Units = []UnitScript{
		{Kind: uint8(backend.UnitVertex)},
		{Kind: uint8(backend.UnitFragment)},
	}
	s.Compiles = []ReportScript{{OK: true}, {OK: true}}
	s.Links = []ReportScript{{OK: true}}
	return s
}

func TestSessionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.session")

	s := passingSession()
	s.Compiles[1] = ReportScript{OK: false, Log: "0:3(5): error: syntax error"}
	if err := SaveSession(path, s); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	loaded, err := LoadSession(path)
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if loaded.Schema != sessionSchemaVersion {
		t.Errorf("Schema = %d", loaded.Schema)
	}
	if len(loaded.Units) != 2 || len(loaded.Compiles) != 2 || len(loaded.Links) != 1 {
		t.Fatalf("scripts lost in round trip: %+v", loaded)
	}
	if loaded.Compiles[1].Log != "0:3(5): error: syntax error" {
		t.Errorf("compile log lost: %q", loaded.Compiles[1].Log)
	}
	if loaded.Limits.MaxVertexUniformVectors != 256 {
		t.Errorf("limits lost: %+v", loaded.Limits)
	}
}

func TestLoadSessionSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.session")
	s := passingSession()
	if err := SaveSession(path, s); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	// Перезаписываем с другой схемой напрямую через msgpack
	s.Schema = sessionSchemaVersion + 1
	raw := *s
	if err := saveRaw(path, &raw); err != nil {
		t.Fatalf("saveRaw: %v", err)
	}
	if _, err := LoadSession(path); err == nil {
		t.Fatal("expected schema mismatch error")
	} else if !strings.Contains(err.Error(), "schema") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadSessionMissingFile(t *testing.T) {
	if _, err := LoadSession(filepath.Join(t.TempDir(), "missing.session")); err == nil {
		t.Fatal("expected error for missing session file")
	}
}
