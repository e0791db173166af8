package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"glslcheck/internal/checkpipeline"
	"glslcheck/internal/diag"
	"glslcheck/internal/diagfmt"
	"glslcheck/internal/source"
)

type rootOptions struct {
	useColor       bool
	quiet          bool
	timings        bool
	maxDiagnostics int
}

func readRootOptions(cmd *cobra.Command) (rootOptions, error) {
	flags := cmd.Root().PersistentFlags()

	colorFlag, err := flags.GetString("color")
	if err != nil {
		return rootOptions{}, fmt.Errorf("failed to get color flag: %w", err)
	}
	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return rootOptions{}, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	timings, err := flags.GetBool("timings")
	if err != nil {
		return rootOptions{}, fmt.Errorf("failed to get timings flag: %w", err)
	}
	maxDiagnostics, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return rootOptions{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	return rootOptions{
		useColor:       colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout)),
		quiet:          quiet,
		timings:        timings,
		maxDiagnostics: maxDiagnostics,
	}, nil
}

// capNotice warns when the bag hit its limit and later diagnostics were
// dropped.
func capNotice(bag *diag.Bag) string {
	if bag == nil || bag.Len() == 0 || bag.Len() < int(bag.Cap()) {
		return ""
	}
	return fmt.Sprintf("diagnostic limit reached (%d); further diagnostics suppressed", bag.Cap())
}

// printDriverLogs dumps the verbatim driver logs in stage order. The logs go
// out even on success - drivers warn on passing compiles.
func printDriverLogs(out io.Writer, res *checkpipeline.Result) {
	stages := []checkpipeline.Stage{
		checkpipeline.StageCompileVertex,
		checkpipeline.StageCompileFragment,
		checkpipeline.StageLink,
	}
	for _, stage := range stages {
		log := res.Logs[stage]
		if strings.TrimSpace(log) == "" {
			continue
		}
		fmt.Fprintf(out, "--- %s log ---\n", stage)
		fmt.Fprint(out, log)
		if !strings.HasSuffix(log, "\n") {
			fmt.Fprintln(out)
		}
	}
}

func printLimits(out io.Writer, res *checkpipeline.Result) {
	if !res.HasLimits {
		return
	}
	if res.Limits.Renderer != "" {
		fmt.Fprintf(out, "renderer: %s (%s)\n", res.Limits.Renderer, res.Limits.Version)
	}
	fmt.Fprintf(out, "max vertex uniform vectors: %d\n", res.Limits.MaxVertexUniformVectors)
}

func renderDiagnostics(out io.Writer, bag *diag.Bag, fs *source.FileSet, format string, opts rootOptions, withNotes, fullPath bool) error {
	bag.Sort()

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}

	switch format {
	case "pretty":
		diagfmt.Pretty(out, bag, fs, diagfmt.PrettyOpts{
			Color:     opts.useColor,
			Context:   2,
			PathMode:  pathMode,
			ShowNotes: withNotes,
		})
	case "short":
		output := diag.FormatShortDiagnostics(bag.Items(), fs, withNotes)
		if output != "" {
			fmt.Fprintln(out, output)
		}
	case "json":
		err := diagfmt.JSON(out, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
		})
		if err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}
