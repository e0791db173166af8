package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"glslcheck/internal/checkpipeline"
	"glslcheck/internal/ui"
)

type suiteOutcome struct {
	results []checkpipeline.PairResult
	err     error
}

func runSuiteWithUI(ctx context.Context, title string, files []string, req *checkpipeline.SuiteRequest) ([]checkpipeline.PairResult, error) {
	if req == nil {
		return nil, fmt.Errorf("missing suite request")
	}
	events := make(chan checkpipeline.Event, 256)
	outcomeCh := make(chan suiteOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = checkpipeline.ChannelSink{Ch: events}
		results, err := checkpipeline.RunSuite(ctx, &reqCopy)
		outcomeCh <- suiteOutcome{results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
