package checkpipeline

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"glslcheck/internal/backend"
	"glslcheck/internal/diag"
)

// Pair names one vertex/fragment shader combination in a suite.
type Pair struct {
	Name     string
	Vertex   string
	Fragment string
}

// SuiteRequest configures a multi-pair run.
type SuiteRequest struct {
	Pairs []Pair
	// NewBackend produces a fresh backend per pair. Replay backends are
	// independent and can run in parallel; a live context is bound to one
	// OS thread, so callers must set Jobs to 1 for it.
	NewBackend     func(pair Pair) (backend.Backend, error)
	Jobs           int
	MaxDiagnostics int
	Progress       ProgressSink
	EnableTimings  bool
}

// PairResult is the outcome of one pair within a suite.
type PairResult struct {
	Pair   Pair
	Result Result
	Err    error
}

// RunSuite checks every pair, at most Jobs at a time. Pair failures do not
// stop the rest of the suite; only context cancellation and backend
// construction errors abort early. Results are indexed like Pairs.
func RunSuite(ctx context.Context, req *SuiteRequest) ([]PairResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return nil, fmt.Errorf("missing suite request")
	}
	if req.NewBackend == nil {
		return nil, fmt.Errorf("missing backend factory")
	}
	if len(req.Pairs) == 0 {
		return nil, nil
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]PairResult, len(req.Pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(req.Pairs)))

	for i, pair := range req.Pairs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			be, err := req.NewBackend(pair)
			if err != nil {
				return fmt.Errorf("pair %q: %w", pair.Name, err)
			}
			res, runErr := Run(gctx, &Request{
				VertexPath:     pair.Vertex,
				FragmentPath:   pair.Fragment,
				Backend:        be,
				MaxDiagnostics: req.MaxDiagnostics,
				Progress:       req.Progress,
				Files:          []string{pair.Vertex, pair.Fragment},
				EnableTimings:  req.EnableTimings,
			})
			results[i] = PairResult{Pair: pair, Result: res, Err: runErr}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// MergeDiagnostics собирает диагностики всех пар в один Bag для итоговой
// сводки. Пары с общим шейдером дают одинаковые диагностики - дубликаты
// схлопываются.
func MergeDiagnostics(results []PairResult) *diag.Bag {
	merged := diag.NewBag(0)
	for i := range results {
		if results[i].Result.Bag != nil {
			merged.Merge(results[i].Result.Bag)
		}
	}
	merged.Dedup()
	merged.Sort()
	return merged
}

// AggregateExitCode folds per-pair outcomes into one process exit code: the
// highest per-pair code, so a suite run keeps the single-check contract.
func AggregateExitCode(results []PairResult) int {
	code := 0
	for _, r := range results {
		if c := r.Result.Failure.ExitCode(); c > code {
			code = c
		}
	}
	return code
}
