package ui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"polship/internal/model"
	"polship/internal/poller"
)

// Run launches the TUI and follows the run to a terminal outcome. The
// returned PollResult carries the same information the plain-text path
// produces; the TUI is display only.
func Run(ctx context.Context, fetcher poller.LogFetcher, opts model.Options, runID string) (model.PollResult, error) {
	m := NewModel(ctx, fetcher, opts, runID)
	prog := tea.NewProgram(m, tea.WithContext(ctx))
	final, err := prog.Run()
	if err != nil {
		return model.PollResult{}, err
	}
	fm, ok := final.(Model)
	if !ok {
		return model.PollResult{}, errors.New("unexpected final model")
	}
	if fm.pollErr != nil {
		return model.PollResult{}, fm.pollErr
	}
	if fm.outcome == nil {
		return model.PollResult{}, context.Canceled
	}
	return fm.outcome.Result, nil
}
