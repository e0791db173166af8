package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"glslcheck/internal/diag"
	"glslcheck/internal/source"
)

func TestJSONOutput(t *testing.T) {
	bag, fs, _ := shaderBag(t)

	var buf bytes.Buffer
	err := JSON(&buf, bag, fs, JSONOpts{
		IncludePositions: true,
		PathMode:         PathModeBasename,
	})
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("count = %d, diagnostics = %d", out.Count, len(out.Diagnostics))
	}
	d := out.Diagnostics[0]
	if d.Severity != "ERROR" {
		t.Errorf("Severity = %q", d.Severity)
	}
	if d.Code != "CMP3001" {
		t.Errorf("Code = %q", d.Code)
	}
	if d.Location.File != "basic.frag" {
		t.Errorf("File = %q", d.Location.File)
	}
	if d.Location.StartLine != 2 || d.Location.StartCol != 5 {
		t.Errorf("position = %d:%d, want 2:5", d.Location.StartLine, d.Location.StartCol)
	}
	if d.Location.StartByte != 22 || d.Location.EndByte != 26 {
		t.Errorf("bytes = %d..%d, want 22..26", d.Location.StartByte, d.Location.EndByte)
	}
}

func TestJSONMaxTruncates(t *testing.T) {
	fs := source.NewFileSet()
	bag := diag.NewBag(10)
	for range 5 {
		bag.Add(diag.NewInfo(diag.CompileLogLine, source.Span{}, "log line"))
	}

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 2})
	if out.Count != 2 || len(out.Diagnostics) != 2 {
		t.Fatalf("count = %d, want 2", out.Count)
	}
}

func TestJSONNotes(t *testing.T) {
	fs := source.NewFileSet()
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.LinkFailed, source.Span{}, "link failed").
		WithNote(source.Span{}, "vertex output unread"))

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{IncludeNotes: true})
	if len(out.Diagnostics[0].Notes) != 1 {
		t.Fatalf("notes = %d, want 1", len(out.Diagnostics[0].Notes))
	}
	if out.Diagnostics[0].Notes[0].Message != "vertex output unread" {
		t.Errorf("note = %q", out.Diagnostics[0].Notes[0].Message)
	}

	out = BuildDiagnosticsOutput(bag, fs, JSONOpts{IncludeNotes: false})
	if len(out.Diagnostics[0].Notes) != 0 {
		t.Errorf("notes rendered with IncludeNotes=false")
	}
}
