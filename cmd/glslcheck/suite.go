package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"glslcheck/internal/backend"
	"glslcheck/internal/backend/opengl"
	"glslcheck/internal/backend/replay"
	"glslcheck/internal/checkpipeline"
	"glslcheck/internal/diag"
	"glslcheck/internal/project"
)

var suiteCmd = &cobra.Command{
	Use:   "suite [dir]",
	Short: "Check every shader pair declared in glslcheck.toml",
	Long: `Discover glslcheck.toml by walking up from the given directory (default
current directory) and run the check pipeline for every [[pair]] entry. The
exit code is the highest per-pair exit code.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSuite,
}

func init() {
	suiteCmd.Flags().Int("jobs", 0, "max parallel checks (0 = manifest value or auto)")
	suiteCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	suiteCmd.Flags().String("replay-dir", "", "directory with recorded sessions named <pair>.session")
	suiteCmd.Flags().String("format", "short", "per-pair diagnostics format (pretty|json|short)")
	suiteCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
}

func runSuite(cmd *cobra.Command, args []string) error {
	startDir := "."
	if len(args) > 0 {
		startDir = args[0]
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	replayDir, err := cmd.Flags().GetString("replay-dir")
	if err != nil {
		return fmt.Errorf("failed to get replay-dir flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	opts, err := readRootOptions(cmd)
	if err != nil {
		return err
	}

	manifestPath, ok, err := project.FindManifest(startDir)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no %s found from %q upwards", project.ManifestName, startDir)
	}
	manifest, err := project.LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	if jobs <= 0 {
		jobs = manifest.Suite.Jobs
	}
	if replayDir == "" {
		// Живой GL-контекст привязан к одному потоку ОС.
		jobs = 1
	}

	pairs := make([]checkpipeline.Pair, len(manifest.Pairs))
	files := make([]string, 0, len(manifest.Pairs)*2)
	for i, spec := range manifest.Pairs {
		pairs[i] = checkpipeline.Pair{Name: spec.Name, Vertex: spec.Vertex, Fragment: spec.Fragment}
		files = append(files, spec.Vertex, spec.Fragment)
	}

	req := &checkpipeline.SuiteRequest{
		Pairs:          pairs,
		NewBackend:     suiteBackendFactory(replayDir),
		Jobs:           jobs,
		MaxDiagnostics: opts.maxDiagnostics,
		EnableTimings:  opts.timings,
	}

	var results []checkpipeline.PairResult
	var runErr error
	if shouldUseTUI(mode) {
		results, runErr = runSuiteWithUI(cmd.Context(), fmt.Sprintf("checking %d shader pairs", len(pairs)), files, req)
	} else {
		results, runErr = checkpipeline.RunSuite(cmd.Context(), req)
	}
	if runErr != nil {
		return runErr
	}

	for i := range results {
		r := &results[i]
		code := r.Result.Failure.ExitCode()
		if code == 0 {
			if !opts.quiet {
				fmt.Fprintf(os.Stdout, "pair %s: ok\n", r.Pair.Name)
			}
			continue
		}
		fmt.Fprintf(os.Stdout, "pair %s: %s (exit %d)\n", r.Pair.Name, r.Result.Failure, code)
		if r.Result.Bag != nil {
			if err := renderDiagnostics(os.Stdout, r.Result.Bag, r.Result.FileSet, format, opts, withNotes, false); err != nil {
				return err
			}
		}
	}
	if !opts.quiet {
		merged := checkpipeline.MergeDiagnostics(results)
		errs, warns := 0, 0
		for _, d := range merged.Items() {
			switch {
			case d.Severity >= diag.SevError:
				errs++
			case d.Severity >= diag.SevWarning:
				warns++
			}
		}
		fmt.Fprintf(os.Stdout, "suite: %d pairs, %d errors, %d warnings\n", len(results), errs, warns)
	}
	if opts.timings {
		for i := range results {
			fmt.Fprintf(os.Stderr, "pair %s:\n", results[i].Pair.Name)
			printStageTimings(os.Stderr, results[i].Result.Timings)
		}
	}

	return exitWithCode(cmd, checkpipeline.AggregateExitCode(results))
}

// suiteBackendFactory picks replay sessions when a directory is given and
// the live driver otherwise.
func suiteBackendFactory(replayDir string) func(pair checkpipeline.Pair) (backend.Backend, error) {
	return func(pair checkpipeline.Pair) (backend.Backend, error) {
		if replayDir == "" {
			return opengl.New(), nil
		}
		session, err := replay.LoadSession(filepath.Join(replayDir, pair.Name+".session"))
		if err != nil {
			return nil, fmt.Errorf("failed to load session for pair %q: %w", pair.Name, err)
		}
		return replay.New(session), nil
	}
}
