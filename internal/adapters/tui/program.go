package tui

import (
	"context"
	"errors"

	"github.com/bnema/pot-cli/internal/app"
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts a at location and blocks until the user quits or ctx is canceled.
func Run(ctx context.Context, a *app.App, location string, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	options := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(ctx, a), options...)

	// Listeners fire on scheduler and request goroutines as well as inside Update, so
	// Send must never block the caller.
	a.OnChange(func() { go p.Send(changedMsg{}) })

	a.Start(ctx, location)
	defer a.Close()

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
