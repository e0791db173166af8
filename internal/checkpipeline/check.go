package checkpipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"glslcheck/internal/backend"
	"glslcheck/internal/diag"
	"glslcheck/internal/infolog"
	"glslcheck/internal/observ"
	"glslcheck/internal/source"
)

// Default shader paths for a bare `check` invocation.
const (
	DefaultVertexPath   = "Shader.vert"
	DefaultFragmentPath = "Shader.frag"
)

// Request configures a single shader pair check.
type Request struct {
	VertexPath   string
	FragmentPath string
	Backend      backend.Backend
	// Config overrides the context parameters; the zero value means
	// backend.DefaultConfig().
	Config         backend.Config
	MaxDiagnostics int
	Progress       ProgressSink
	Files          []string
	EnableTimings  bool
}

// Result captures everything a run produced, including on failure paths:
// the diagnostics bag, the loaded sources, context limits (when queried),
// the raw driver logs per stage, and the first failure.
type Result struct {
	Bag     *diag.Bag
	FileSet *source.FileSet

	Limits    backend.Limits
	HasLimits bool

	// Logs keeps the verbatim driver log per compile/link stage. Present
	// even for stages that passed: drivers warn on successful compiles too.
	Logs map[Stage]string

	Failure FailureKind
	Fault   *backend.Fault
	Timings Timings
	// Report is the per-phase timing breakdown, populated when
	// Request.EnableTimings is set.
	Report observ.Report
}

// Run drives the ordered stages bootstrap → load → compile-vertex →
// compile-fragment → link → teardown against req.Backend. The first failure
// halts the pipeline; teardown runs only on paths that reach it — a
// single-shot process reclaims leaked handles on exit.
func Run(ctx context.Context, req *Request) (Result, error) {
	var result Result
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing check request")
	}
	if req.Backend == nil {
		return result, fmt.Errorf("missing backend")
	}
	vertexPath := req.VertexPath
	if vertexPath == "" {
		vertexPath = DefaultVertexPath
	}
	fragmentPath := req.FragmentPath
	if fragmentPath == "" {
		fragmentPath = DefaultFragmentPath
	}

	maxDiagnostics := req.MaxDiagnostics
	if maxDiagnostics <= 0 {
		maxDiagnostics = 100
	}

	fs := source.NewFileSet()
	bag := diag.NewBag(maxDiagnostics)
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	result.Bag = bag
	result.FileSet = fs
	result.Logs = make(map[Stage]string, 3)

	if req.Progress != nil && len(req.Files) > 0 {
		emitQueued(req.Progress, req.Files)
	}

	var timer *observ.Timer
	if req.EnableTimings {
		timer = observ.NewTimer()
	}
	begin := func(stage Stage) int {
		if timer == nil {
			return -1
		}
		return timer.Begin(string(stage))
	}
	end := func(idx int, note string) {
		if timer != nil {
			timer.End(idx, note)
		}
	}
	record := func(stage Stage, start time.Time) time.Duration {
		elapsed := time.Since(start)
		if req.EnableTimings {
			result.Timings.Set(stage, elapsed)
		}
		return elapsed
	}
	finishReport := func() {
		if timer != nil {
			result.Report = timer.Report()
		}
	}
	fail := func(stage Stage, kind FailureKind, err error) (Result, error) {
		result.Failure = kind
		finishReport()
		emitStage(req.Progress, req.Files, stage, StatusError, err, 0)
		return result, err
	}
	reportFault := func(err error) {
		f, _ := backend.AsFault(err)
		result.Fault = f
		reporter.Report(diag.DriverFault, diag.SevError, source.Span{}, err.Error(), nil)
	}

	if err := ctx.Err(); err != nil {
		return fail(StageBootstrap, FailContextInit, err)
	}

	// bootstrap
	emitStage(req.Progress, req.Files, StageBootstrap, StatusWorking, nil, 0)
	start := time.Now()
	phase := begin(StageBootstrap)
	cfg := req.Config
	if cfg == (backend.Config{}) {
		cfg = backend.DefaultConfig()
	}
	if err := req.Backend.Bootstrap(cfg); err != nil {
		kind, code := FailContextInit, diag.EnvInitFailed
		switch {
		case errors.Is(err, backend.ErrWindow):
			kind, code = FailWindow, diag.EnvWindow
		case errors.Is(err, backend.ErrExtensions):
			kind, code = FailExtensions, diag.EnvExtensions
		}
		reporter.Report(code, diag.SevError, source.Span{}, err.Error(), nil)
		end(phase, "failed")
		return fail(StageBootstrap, kind, err)
	}
	limits, err := req.Backend.Limits()
	if err != nil {
		if _, ok := backend.AsFault(err); ok {
			reportFault(err)
			end(phase, "failed")
			return fail(StageBootstrap, FailDriverFault, err)
		}
		// Limits are reported, not required; degrade to a warning.
		reporter.Report(diag.EnvLimitsQuery, diag.SevWarning, source.Span{}, err.Error(), nil)
	} else {
		result.Limits = limits
		result.HasLimits = true
	}
	end(phase, limits.Renderer)
	emitStage(req.Progress, req.Files, StageBootstrap, StatusDone, nil, record(StageBootstrap, start))

	// load
	emitStage(req.Progress, req.Files, StageLoad, StatusWorking, nil, 0)
	start = time.Now()
	phase = begin(StageLoad)
	vertexID, err := fs.Load(vertexPath)
	if err != nil {
		reporter.Report(diag.IOVertexMissing, diag.SevError, source.Span{},
			fmt.Sprintf("cannot read vertex shader %q: %v", vertexPath, err), nil)
		end(phase, "failed")
		return fail(StageLoad, FailVertexSource, err)
	}
	fragmentID, err := fs.Load(fragmentPath)
	if err != nil {
		reporter.Report(diag.IOFragmentMissing, diag.SevError, source.Span{},
			fmt.Sprintf("cannot read fragment shader %q: %v", fragmentPath, err), nil)
		end(phase, "failed")
		return fail(StageLoad, FailFragmentSource, err)
	}
	end(phase, fmt.Sprintf("%d files", fs.Len()))
	emitStage(req.Progress, req.Files, StageLoad, StatusDone, nil, record(StageLoad, start))

	compile := func(stage Stage, kind backend.UnitKind, fileID source.FileID) (backend.Unit, error) {
		emitStage(req.Progress, req.Files, stage, StatusWorking, nil, 0)
		stageStart := time.Now()
		stagePhase := begin(stage)
		unit, err := req.Backend.CreateUnit(kind)
		if err != nil {
			if _, ok := backend.AsFault(err); ok {
				reportFault(err)
				result.Failure = FailDriverFault
			} else {
				reporter.Report(diag.CompileUnitCreate, diag.SevError, source.Span{},
					fmt.Sprintf("cannot create %s shader object: %v", kind, err), nil)
				result.Failure = FailObjectCreate
			}
			end(stagePhase, "failed")
			emitStage(req.Progress, req.Files, stage, StatusError, err, 0)
			return 0, err
		}
		file := fs.Get(fileID)
		if file.NumLines() == 0 {
			reporter.Report(diag.IOEmptySource, diag.SevWarning, source.Span{},
				fmt.Sprintf("%s has no source lines", file.Path), nil)
		}
		report, err := req.Backend.Compile(unit, file.Lines())
		result.Logs[stage] = report.Log
		if err != nil {
			reportFault(err)
			result.Failure = FailDriverFault
			end(stagePhase, "failed")
			emitStage(req.Progress, req.Files, stage, StatusError, err, 0)
			return unit, err
		}
		infolog.Parse(fs, report.Log, infolog.Options{
			Target:  infolog.TargetCompile,
			File:    fileID,
			HasFile: true,
		}, reporter)
		if !report.OK {
			err := fmt.Errorf("%s shader failed to compile", kind)
			reporter.Report(diag.CompileFailed, diag.SevError, source.Span{}, err.Error(), nil)
			result.Failure = FailCompile
			end(stagePhase, "failed")
			emitStage(req.Progress, req.Files, stage, StatusError, err, 0)
			return unit, err
		}
		end(stagePhase, fmt.Sprintf("%d log bytes", len(report.Log)))
		emitStage(req.Progress, req.Files, stage, StatusDone, nil, record(stage, stageStart))
		return unit, nil
	}

	vertexUnit, err := compile(StageCompileVertex, backend.UnitVertex, vertexID)
	if err != nil {
		finishReport()
		return result, err
	}
	fragmentUnit, err := compile(StageCompileFragment, backend.UnitFragment, fragmentID)
	if err != nil {
		finishReport()
		return result, err
	}

	// link
	emitStage(req.Progress, req.Files, StageLink, StatusWorking, nil, 0)
	start = time.Now()
	phase = begin(StageLink)
	program, err := req.Backend.CreateProgram()
	if err != nil {
		end(phase, "failed")
		if _, ok := backend.AsFault(err); ok {
			reportFault(err)
			return fail(StageLink, FailDriverFault, err)
		}
		reporter.Report(diag.LinkProgramCreate, diag.SevError, source.Span{},
			fmt.Sprintf("cannot create shader program: %v", err), nil)
		return fail(StageLink, FailObjectCreate, err)
	}
	report, err := req.Backend.Link(program, vertexUnit, fragmentUnit)
	result.Logs[StageLink] = report.Log
	if err != nil {
		reportFault(err)
		end(phase, "failed")
		return fail(StageLink, FailDriverFault, err)
	}
	infolog.Parse(fs, report.Log, infolog.Options{Target: infolog.TargetLink}, reporter)
	if !report.OK {
		err := fmt.Errorf("shader program failed to link")
		reporter.Report(diag.LinkFailed, diag.SevError, source.Span{}, err.Error(), nil)
		end(phase, "failed")
		return fail(StageLink, FailLink, err)
	}
	end(phase, fmt.Sprintf("%d log bytes", len(report.Log)))
	emitStage(req.Progress, req.Files, StageLink, StatusDone, nil, record(StageLink, start))

	// teardown: every acquired handle, exactly once
	emitStage(req.Progress, req.Files, StageTeardown, StatusWorking, nil, 0)
	start = time.Now()
	phase = begin(StageTeardown)
	req.Backend.ReleaseUnit(vertexUnit)
	req.Backend.ReleaseUnit(fragmentUnit)
	req.Backend.ReleaseProgram(program)
	req.Backend.Teardown()
	end(phase, "")
	emitStage(req.Progress, req.Files, StageTeardown, StatusDone, nil, record(StageTeardown, start))

	finishReport()
	return result, nil
}

func emitQueued(sink ProgressSink, files []string) {
	if sink == nil {
		return
	}
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: StageBootstrap, Status: StatusQueued})
	}
}

func emitStage(sink ProgressSink, files []string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	}
}
