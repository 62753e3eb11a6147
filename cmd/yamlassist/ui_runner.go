package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"yamlassist/internal/batch"
	"yamlassist/internal/ui"
)

type batchOutcome struct {
	results []batch.FileResult
	err     error
}

// runBatchWithUI runs the batch while a progress view renders on stderr, so
// stdout only carries the results.
func runBatchWithUI(ctx context.Context, title string, req batch.Request) ([]batch.FileResult, error) {
	events := make(chan batch.Event, 256)
	outcomeCh := make(chan batchOutcome, 1)

	go func() {
		results, err := batch.Run(ctx, req, batch.ChannelSink{Ch: events})
		outcomeCh <- batchOutcome{results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, req.Files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep draining so the batch goroutine never blocks on a full channel
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
