package main

import (
	"fmt"
	"io"
	"time"

	"glslcheck/internal/checkpipeline"
)

func printStageTimings(out io.Writer, timings checkpipeline.Timings) {
	if out == nil {
		return
	}
	if timings.Has(checkpipeline.StageBootstrap) {
		fmt.Fprintf(out, "bootstrapped %.1f ms\n", toMillis(timings.Duration(checkpipeline.StageBootstrap)))
	}
	if timings.Has(checkpipeline.StageLoad) {
		fmt.Fprintf(out, "loaded %.1f ms\n", toMillis(timings.Duration(checkpipeline.StageLoad)))
	}
	if timings.Has(checkpipeline.StageCompileVertex) || timings.Has(checkpipeline.StageCompileFragment) {
		compiled := timings.Sum(checkpipeline.StageCompileVertex, checkpipeline.StageCompileFragment)
		fmt.Fprintf(out, "compiled %.1f ms\n", toMillis(compiled))
	}
	if timings.Has(checkpipeline.StageLink) {
		fmt.Fprintf(out, "linked %.1f ms\n", toMillis(timings.Duration(checkpipeline.StageLink)))
	}
	if timings.Has(checkpipeline.StageTeardown) {
		fmt.Fprintf(out, "released %.1f ms\n", toMillis(timings.Duration(checkpipeline.StageTeardown)))
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
