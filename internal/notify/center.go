// Package notify shows one transient message at a time.
package notify

import (
	"sync"
	"time"

	"github.com/bnema/pot-cli/internal/ports"
	"github.com/oklog/ulid/v2"
)

const DefaultDuration = 1850 * time.Millisecond

type Toast struct {
	ID      string
	Message string
	IsError bool
	Shown   time.Time
}

// AfterFunc schedules fn; it matches time.AfterFunc so tests can drive expiry by hand.
type AfterFunc func(d time.Duration, fn func()) Stopper

type Stopper interface {
	Stop() bool
}

type Option func(*Center)

func WithDuration(d time.Duration) Option {
	return func(c *Center) {
		if d > 0 {
			c.duration = d
		}
	}
}

func WithAfterFunc(after AfterFunc) Option {
	return func(c *Center) { c.after = after }
}

func WithClock(clock ports.Clock) Option {
	return func(c *Center) { c.clock = clock }
}

type Center struct {
	duration time.Duration
	after    AfterFunc
	clock    ports.Clock

	mu        sync.Mutex
	current   *Toast
	timer     Stopper
	listeners []func(*Toast)
}

var _ ports.Notifier = (*Center)(nil)

func New(opts ...Option) *Center {
	c := &Center{
		duration: DefaultDuration,
		after: func(d time.Duration, fn func()) Stopper {
			return time.AfterFunc(d, fn)
		},
		clock: ports.SystemClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Show replaces the visible toast and restarts the dismiss timer, so bursts of messages
// leave only the last one on screen for a full duration.
func (c *Center) Show(message string, isError bool) {
	c.Push(message, isError)
}

// Push is Show returning the toast that was displayed.
func (c *Center) Push(message string, isError bool) Toast {
	toast := Toast{
		ID:      ulid.Make().String(),
		Message: message,
		IsError: isError,
		Shown:   c.clock.Now(),
	}

	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.current = &toast
	id := toast.ID
	c.timer = c.after(c.duration, func() { c.Dismiss(id) })
	c.mu.Unlock()

	c.notify(&toast)
	return toast
}

// Current returns the visible toast, if any.
func (c *Center) Current() (Toast, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Toast{}, false
	}
	return *c.current, true
}

// Dismiss hides the toast with id. Stale ids from replaced toasts are ignored.
func (c *Center) Dismiss(id string) {
	c.mu.Lock()
	if c.current == nil || c.current.ID != id {
		c.mu.Unlock()
		return
	}
	c.current = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	c.notify(nil)
}

// Subscribe registers fn to observe every change; nil means no toast is visible.
func (c *Center) Subscribe(fn func(*Toast)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Center) notify(toast *Toast) {
	c.mu.Lock()
	listeners := append([]func(*Toast){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(toast)
	}
}
