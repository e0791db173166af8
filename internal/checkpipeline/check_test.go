package checkpipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"glslcheck/internal/backend"
	"glslcheck/internal/backend/replay"
	"glslcheck/internal/diag"
)

const (
	testVertexSrc   = "#version 330 core\nlayout (location = 0) in vec3 pos;\nvoid main() { gl_Position = vec4(pos, 1.0); }\n"
	testFragmentSrc = "#version 330 core\nout vec4 color;\nvoid main() { color = vec4(1.0); }\n"
)

func writeShader(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", name, err)
	}
	return path
}

func passingSession() *replay.Session {
	s := replay.NewSession()
	s.Limits = backend.Limits{
		MaxVertexUniformVectors:   256,
		MaxFragmentUniformVectors: 256,
		Renderer:                  "replay",
		Version:                   "3.3",
	}
	s.Units = []replay.UnitScript{
		{Kind: uint8(backend.UnitVertex)},
		{Kind: uint8(backend.UnitFragment)},
	}
	s.Compiles = []replay.ReportScript{{OK: true}, {OK: true}}
	s.Links = []replay.ReportScript{{OK: true}}
	return s
}

func runPair(t *testing.T, session *replay.Session, vertexSrc, fragmentSrc string) (*replay.Backend, Result, error) {
	t.Helper()
	dir := t.TempDir()
	req := &Request{
		Backend:       replay.New(session),
		EnableTimings: true,
	}
	if vertexSrc != "" {
		req.VertexPath = writeShader(t, dir, "Shader.vert", vertexSrc)
	} else {
		req.VertexPath = filepath.Join(dir, "Shader.vert")
	}
	if fragmentSrc != "" {
		req.FragmentPath = writeShader(t, dir, "Shader.frag", fragmentSrc)
	} else {
		req.FragmentPath = filepath.Join(dir, "Shader.frag")
	}
	be := req.Backend.(*replay.Backend)
	res, err := Run(context.Background(), req)
	return be, res, err
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestRunSuccess(t *testing.T) {
	be, res, err := runPair(t, passingSession(), testVertexSrc, testFragmentSrc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Failure != FailNone {
		t.Fatalf("Failure = %v, want none", res.Failure)
	}
	if code := res.Failure.ExitCode(); code != 0 {
		t.Fatalf("ExitCode = %d, want 0", code)
	}
	if res.Bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", res.Bag.Items())
	}
	if !res.HasLimits || res.Limits.Renderer != "replay" {
		t.Fatalf("limits not captured: %+v", res.Limits)
	}

	// Порядок вызовов фиксирован: каждая стадия ровно один раз.
	want := []string{
		"bootstrap",
		"limits",
		"create-unit vertex",
		"compile unit=1 lines=3",
		"create-unit fragment",
		"compile unit=2 lines=3",
		"create-program",
		"link program=1 units=2",
		"release-unit 1",
		"release-unit 2",
		"release-program 1",
		"teardown",
	}
	if len(be.Calls) != len(want) {
		t.Fatalf("calls = %v, want %v", be.Calls, want)
	}
	for i, call := range want {
		if be.Calls[i] != call {
			t.Errorf("call[%d] = %q, want %q", i, be.Calls[i], call)
		}
	}
}

func TestRunBootstrapFailures(t *testing.T) {
	tests := []struct {
		name     string
		outcome  replay.BootstrapOutcome
		failure  FailureKind
		exitCode int
		code     diag.Code
	}{
		{"init", replay.BootstrapInitFailed, FailContextInit, 3, diag.EnvInitFailed},
		{"window", replay.BootstrapWindowFailed, FailWindow, 1, diag.EnvWindow},
		{"extensions", replay.BootstrapExtensionsFailed, FailExtensions, 2, diag.EnvExtensions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := passingSession()
			session.Bootstrap = tt.outcome
			be, res, err := runPair(t, session, testVertexSrc, testFragmentSrc)
			if err == nil {
				t.Fatal("expected error")
			}
			if res.Failure != tt.failure {
				t.Errorf("Failure = %v, want %v", res.Failure, tt.failure)
			}
			if code := res.Failure.ExitCode(); code != tt.exitCode {
				t.Errorf("ExitCode = %d, want %d", code, tt.exitCode)
			}
			if !hasCode(res.Bag, tt.code) {
				t.Errorf("bag lacks %v: %v", tt.code, res.Bag.Items())
			}
			// Провал на bootstrap — бэкенд больше не трогаем.
			if len(be.Calls) != 1 {
				t.Errorf("calls = %v, want bootstrap only", be.Calls)
			}
		})
	}
}

func TestRunMissingSources(t *testing.T) {
	t.Run("vertex", func(t *testing.T) {
		_, res, err := runPair(t, passingSession(), "", testFragmentSrc)
		if err == nil {
			t.Fatal("expected error")
		}
		if res.Failure != FailVertexSource {
			t.Errorf("Failure = %v, want vertex-source", res.Failure)
		}
		if code := res.Failure.ExitCode(); code != 4 {
			t.Errorf("ExitCode = %d, want 4", code)
		}
		if !hasCode(res.Bag, diag.IOVertexMissing) {
			t.Errorf("bag lacks IOVertexMissing: %v", res.Bag.Items())
		}
	})
	t.Run("fragment", func(t *testing.T) {
		_, res, err := runPair(t, passingSession(), testVertexSrc, "")
		if err == nil {
			t.Fatal("expected error")
		}
		if res.Failure != FailFragmentSource {
			t.Errorf("Failure = %v, want fragment-source", res.Failure)
		}
		if code := res.Failure.ExitCode(); code != 5 {
			t.Errorf("ExitCode = %d, want 5", code)
		}
		if !hasCode(res.Bag, diag.IOFragmentMissing) {
			t.Errorf("bag lacks IOFragmentMissing: %v", res.Bag.Items())
		}
	})
}

func TestRunCompileFailure(t *testing.T) {
	session := passingSession()
	session.Compiles[0] = replay.ReportScript{
		OK:  false,
		Log: "0:2(12): error: 'vec5' is not a type\n",
	}
	be, res, err := runPair(t, session, testVertexSrc, testFragmentSrc)
	if err == nil {
		t.Fatal("expected error")
	}
	if res.Failure != FailCompile {
		t.Fatalf("Failure = %v, want compile", res.Failure)
	}
	if code := res.Failure.ExitCode(); code != 5 {
		t.Fatalf("ExitCode = %d, want 5", code)
	}
	if !hasCode(res.Bag, diag.CompileFailed) {
		t.Fatalf("bag lacks CompileFailed: %v", res.Bag.Items())
	}
	if got := res.Logs[StageCompileVertex]; !strings.Contains(got, "'vec5' is not a type") {
		t.Fatalf("vertex log = %q", got)
	}
	// Лог с валидной строкой даёт диагностику с позицией во 2-й строке.
	located := false
	for _, d := range res.Bag.Items() {
		if d.Code != diag.CompileFailed || d.Primary.Empty() {
			continue
		}
		start, _ := res.FileSet.Resolve(d.Primary)
		if start.Line == 2 {
			located = true
		}
	}
	if !located {
		t.Fatalf("no located diagnostic for line 2: %v", res.Bag.Items())
	}
	// Второй шейдер не компилируем после провала первого.
	for _, call := range be.Calls {
		if call == "create-unit fragment" {
			t.Fatalf("fragment unit created after vertex failure: %v", be.Calls)
		}
	}
}

func TestRunCompileLogOnSuccess(t *testing.T) {
	session := passingSession()
	session.Compiles[1] = replay.ReportScript{
		OK:  true,
		Log: "0:1(10): warning: extension shading_language_420pack in use\n",
	}
	_, res, err := runPair(t, session, testVertexSrc, testFragmentSrc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Failure != FailNone {
		t.Fatalf("Failure = %v, want none", res.Failure)
	}
	if !res.Bag.HasWarnings() {
		t.Fatalf("expected warning from successful compile log: %v", res.Bag.Items())
	}
	if got := res.Logs[StageCompileFragment]; got == "" {
		t.Fatal("successful compile log dropped")
	}
}

func TestRunUnitCreateFailure(t *testing.T) {
	session := passingSession()
	session.Units[0].Fail = true
	_, res, err := runPair(t, session, testVertexSrc, testFragmentSrc)
	if err == nil {
		t.Fatal("expected error")
	}
	if res.Failure != FailObjectCreate {
		t.Fatalf("Failure = %v, want object-create", res.Failure)
	}
	if code := res.Failure.ExitCode(); code != 2 {
		t.Fatalf("ExitCode = %d, want 2", code)
	}
	if !hasCode(res.Bag, diag.CompileUnitCreate) {
		t.Fatalf("bag lacks CompileUnitCreate: %v", res.Bag.Items())
	}
}

func TestRunProgramCreateFailure(t *testing.T) {
	session := passingSession()
	session.ProgramFail = true
	_, res, err := runPair(t, session, testVertexSrc, testFragmentSrc)
	if err == nil {
		t.Fatal("expected error")
	}
	if res.Failure != FailObjectCreate {
		t.Fatalf("Failure = %v, want object-create", res.Failure)
	}
	if !hasCode(res.Bag, diag.LinkProgramCreate) {
		t.Fatalf("bag lacks LinkProgramCreate: %v", res.Bag.Items())
	}
}

func TestRunLinkFailure(t *testing.T) {
	session := passingSession()
	session.Links[0] = replay.ReportScript{
		OK:  false,
		Log: "error: vertex shader output not read by fragment shader\n",
	}
	_, res, err := runPair(t, session, testVertexSrc, testFragmentSrc)
	if err == nil {
		t.Fatal("expected error")
	}
	if res.Failure != FailLink {
		t.Fatalf("Failure = %v, want link", res.Failure)
	}
	if code := res.Failure.ExitCode(); code != 2 {
		t.Fatalf("ExitCode = %d, want 2", code)
	}
	if !hasCode(res.Bag, diag.LinkFailed) {
		t.Fatalf("bag lacks LinkFailed: %v", res.Bag.Items())
	}
	if got := res.Logs[StageLink]; !strings.Contains(got, "not read by fragment shader") {
		t.Fatalf("link log = %q", got)
	}
}

func TestRunDriverFault(t *testing.T) {
	session := passingSession()
	session.Compiles[0] = replay.ReportScript{
		FaultOp:   "glCompileShader",
		FaultCode: 1282,
		FaultKind: uint8(backend.FaultInvalidOperation),
	}
	_, res, err := runPair(t, session, testVertexSrc, testFragmentSrc)
	if err == nil {
		t.Fatal("expected error")
	}
	if res.Failure != FailDriverFault {
		t.Fatalf("Failure = %v, want driver-fault", res.Failure)
	}
	if code := res.Failure.ExitCode(); code != 2 {
		t.Fatalf("ExitCode = %d, want 2", code)
	}
	if res.Fault == nil || res.Fault.Op != "glCompileShader" {
		t.Fatalf("Fault = %+v", res.Fault)
	}
	if !hasCode(res.Bag, diag.DriverFault) {
		t.Fatalf("bag lacks DriverFault: %v", res.Bag.Items())
	}
}

func TestRunEmptySourceWarning(t *testing.T) {
	// пустой файл — это не отсутствующий файл
	dir := t.TempDir()
	vert := writeShader(t, dir, "Shader.vert", testVertexSrc)
	frag := writeShader(t, dir, "Shader.frag", "")
	res, err := Run(context.Background(), &Request{
		VertexPath:   vert,
		FragmentPath: frag,
		Backend:      replay.New(passingSession()),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Failure != FailNone {
		t.Fatalf("Failure = %v, want none", res.Failure)
	}
	if !hasCode(res.Bag, diag.IOEmptySource) {
		t.Fatalf("bag lacks IOEmptySource: %v", res.Bag.Items())
	}
}

func TestRunTimings(t *testing.T) {
	_, res, err := runPair(t, passingSession(), testVertexSrc, testFragmentSrc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, stage := range []Stage{StageBootstrap, StageLoad, StageCompileVertex, StageCompileFragment, StageLink, StageTeardown} {
		if !res.Timings.Has(stage) {
			t.Errorf("no timing recorded for %s", stage)
		}
	}
	if len(res.Report.Phases) != 6 {
		t.Errorf("report phases = %d, want 6", len(res.Report.Phases))
	}
}

type sliceSink struct {
	events []Event
}

func (s *sliceSink) OnEvent(evt Event) { s.events = append(s.events, evt) }

func TestRunProgressEvents(t *testing.T) {
	dir := t.TempDir()
	vert := writeShader(t, dir, "Shader.vert", testVertexSrc)
	frag := writeShader(t, dir, "Shader.frag", testFragmentSrc)
	sink := &sliceSink{}
	_, err := Run(context.Background(), &Request{
		VertexPath:   vert,
		FragmentPath: frag,
		Backend:      replay.New(passingSession()),
		Progress:     sink,
		Files:        []string{vert, frag},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	queued := 0
	for _, evt := range sink.events {
		if evt.Status == StatusQueued {
			queued++
		}
	}
	if queued != 2 {
		t.Errorf("queued events = %d, want 2", queued)
	}

	// Сводные события (без файла) идут в порядке стадий.
	var stages []Stage
	for _, evt := range sink.events {
		if evt.File == "" && evt.Status == StatusDone {
			stages = append(stages, evt.Stage)
		}
	}
	want := []Stage{StageBootstrap, StageLoad, StageCompileVertex, StageCompileFragment, StageLink, StageTeardown}
	if len(stages) != len(want) {
		t.Fatalf("done stages = %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("stage[%d] = %s, want %s", i, stages[i], want[i])
		}
	}
}

func TestRunSuite(t *testing.T) {
	dir := t.TempDir()
	vert := writeShader(t, dir, "a.vert", testVertexSrc)
	frag := writeShader(t, dir, "a.frag", testFragmentSrc)

	broken := passingSession()
	broken.Compiles[1] = replay.ReportScript{OK: false, Log: "ERROR: 0:2: 'color' : undeclared\n"}
	sessions := map[string]*replay.Session{
		"ok":     passingSession(),
		"broken": broken,
	}

	results, err := RunSuite(context.Background(), &SuiteRequest{
		Pairs: []Pair{
			{Name: "ok", Vertex: vert, Fragment: frag},
			{Name: "broken", Vertex: vert, Fragment: frag},
		},
		NewBackend: func(pair Pair) (backend.Backend, error) {
			return replay.New(sessions[pair.Name]), nil
		},
		Jobs: 2,
	})
	if err != nil {
		t.Fatalf("RunSuite: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Err != nil {
		t.Errorf("pair ok failed: %v", results[0].Err)
	}
	if results[1].Err == nil {
		t.Error("pair broken passed unexpectedly")
	}
	if results[1].Result.Failure != FailCompile {
		t.Errorf("broken failure = %v, want compile", results[1].Result.Failure)
	}
	if code := AggregateExitCode(results); code != 5 {
		t.Errorf("aggregate exit code = %d, want 5", code)
	}
}

func TestMergeSuiteDiagnostics(t *testing.T) {
	dir := t.TempDir()
	vert := writeShader(t, dir, "a.vert", testVertexSrc)
	frag := writeShader(t, dir, "a.frag", testFragmentSrc)

	// Обе пары используют один сломанный фрагментный шейдер -
	// сводный Bag должен схлопнуть одинаковые диагностики.
	newBroken := func() *replay.Session {
		s := passingSession()
		s.Compiles[1] = replay.ReportScript{OK: false, Log: "ERROR: 0:2: 'color' : undeclared\n"}
		return s
	}

	results, err := RunSuite(context.Background(), &SuiteRequest{
		Pairs: []Pair{
			{Name: "left", Vertex: vert, Fragment: frag},
			{Name: "right", Vertex: vert, Fragment: frag},
		},
		NewBackend: func(Pair) (backend.Backend, error) {
			return replay.New(newBroken()), nil
		},
		Jobs: 2,
	})
	if err != nil {
		t.Fatalf("RunSuite: %v", err)
	}

	perPair := results[0].Result.Bag.Len()
	if perPair == 0 {
		t.Fatal("expected diagnostics from the broken fragment")
	}
	if got := results[1].Result.Bag.Len(); got != perPair {
		t.Fatalf("pair bags differ: %d vs %d", perPair, got)
	}

	merged := MergeDiagnostics(results)
	if !merged.HasErrors() {
		t.Error("merged bag lost the compile error")
	}
	if merged.Len() != perPair {
		t.Errorf("merged = %d diagnostics, want %d (duplicates collapsed)", merged.Len(), perPair)
	}
}
