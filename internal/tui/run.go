package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the history browser and blocks until the user quits or ctx
// is canceled.
func Run(ctx context.Context, store HistoryStore) error {
	if store == nil {
		return fmt.Errorf("history store is required")
	}

	p := tea.NewProgram(newModel(ctx, store), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run history browser: %w", err)
	}
	return nil
}
