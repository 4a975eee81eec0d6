package app

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/bnema/pot-cli/internal/domain"
)

// Concierge is the assistant widget available on every route. It keeps the
// conversation so follow-up questions carry context.
type Concierge struct {
	app *App

	mu      sync.Mutex
	history []domain.ConciergeTurn
	pending bool
}

// Ask sends message with the history so far. Without a session nothing is recorded or
// sent. Once sent, the user turn is kept even when the request fails.
func (c *Concierge) Ask(ctx context.Context, message string, profile domain.ProfileID) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", nil
	}
	if !c.app.Session.Current().Authenticated() {
		c.app.Notify.Show("Sign in to ask the concierge.", true)
		return "", domain.ErrUnauthenticated
	}

	c.mu.Lock()
	history := slices.Clone(c.history)
	c.history = append(c.history, domain.ConciergeTurn{Role: domain.ConciergeUser, Content: message})
	c.pending = true
	c.mu.Unlock()
	c.app.changed()

	reply, err := c.app.API.Concierge(ctx, message, profile, history)

	c.mu.Lock()
	c.pending = false
	if err == nil {
		c.history = append(c.history, domain.ConciergeTurn{Role: domain.ConciergeAssistant, Content: reply})
	}
	c.mu.Unlock()
	c.app.changed()

	if err != nil {
		c.app.Notify.Show(failureMessage(err, "Concierge is unavailable"), true)
		return "", err
	}
	return reply, nil
}

func (c *Concierge) History() []domain.ConciergeTurn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.history)
}

func (c *Concierge) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

func (c *Concierge) Reset() {
	c.mu.Lock()
	c.history = nil
	c.mu.Unlock()
}
