// Package router owns the active route and its lifecycle.
package router

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// View is the controller behind a route. Enter must return promptly; the work it
// returns runs through the Runner with the route scope, which is canceled on exit.
// Enter and Exit must not call back into the Router.
type View interface {
	Enter(scope context.Context) (hydrate func(context.Context))
	Exit()
}

// Runner executes hydration work off the caller's goroutine.
type Runner interface {
	Go(fn func())
}

// GoRunner runs each job on a new goroutine.
type GoRunner struct{}

func (GoRunner) Go(fn func()) { go fn() }

// SyncRunner runs jobs inline.
type SyncRunner struct{}

func (SyncRunner) Go(fn func()) { fn() }

// Stopper is the polling scheduler seen from the router.
type Stopper interface {
	Stop()
}

type Listener func(Route)

type Option func(*Router)

func WithRunner(runner Runner) Option {
	return func(r *Router) { r.runner = runner }
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(r *Router) { r.logger = logger }
}

type Router struct {
	views     map[Route]View
	scheduler Stopper
	runner    Runner
	logger    logrus.FieldLogger

	// transition serializes whole transitions; views must not navigate from Enter/Exit.
	transition sync.Mutex

	mu        sync.RWMutex
	started   bool
	current   Route
	cancel    context.CancelFunc
	back      []Route
	forward   []Route
	listeners []Listener
}

func New(views map[Route]View, scheduler Stopper, opts ...Option) *Router {
	r := &Router{
		views:     views,
		scheduler: scheduler,
		runner:    GoRunner{},
		current:   Home,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		r.logger = discard
	}
	r.logger = r.logger.WithField("component", "router")
	return r
}

func (r *Router) Current() Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

func (r *Router) CanGoBack() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.back) > 0
}

func (r *Router) CanGoForward() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.forward) > 0
}

// Subscribe registers fn to run synchronously after each route switch, before the new
// view hydrates.
func (r *Router) Subscribe(fn Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Start enters the route for location without recording history.
func (r *Router) Start(ctx context.Context, location string) Route {
	route := Parse(location)
	r.transition.Lock()
	job := r.switchTo(ctx, route)
	r.transition.Unlock()
	r.run(job)
	return route
}

// Navigate moves to route and records the previous one for Back. Navigating to the
// current route re-enters it.
func (r *Router) Navigate(ctx context.Context, route Route) {
	r.transition.Lock()
	r.mu.Lock()
	if r.started && r.current != route {
		r.back = append(r.back, r.current)
		r.forward = nil
	}
	r.mu.Unlock()
	job := r.switchTo(ctx, route)
	r.transition.Unlock()

	r.run(job)
}

func (r *Router) NavigateTo(ctx context.Context, location string) Route {
	route := Parse(location)
	r.Navigate(ctx, route)
	return route
}

func (r *Router) Back(ctx context.Context) bool {
	r.transition.Lock()
	r.mu.Lock()
	if len(r.back) == 0 {
		r.mu.Unlock()
		r.transition.Unlock()
		return false
	}
	target := r.back[len(r.back)-1]
	r.back = r.back[:len(r.back)-1]
	r.forward = append(r.forward, r.current)
	r.mu.Unlock()
	job := r.switchTo(ctx, target)
	r.transition.Unlock()

	r.run(job)
	return true
}

func (r *Router) Forward(ctx context.Context) bool {
	r.transition.Lock()
	r.mu.Lock()
	if len(r.forward) == 0 {
		r.mu.Unlock()
		r.transition.Unlock()
		return false
	}
	target := r.forward[len(r.forward)-1]
	r.forward = r.forward[:len(r.forward)-1]
	r.back = append(r.back, r.current)
	r.mu.Unlock()
	job := r.switchTo(ctx, target)
	r.transition.Unlock()

	r.run(job)
	return true
}

// Reload exits and re-enters the current route, e.g. after the session changed.
func (r *Router) Reload(ctx context.Context) {
	r.transition.Lock()
	if !r.isStarted() {
		r.transition.Unlock()
		return
	}
	job := r.switchTo(ctx, r.Current())
	r.transition.Unlock()

	r.run(job)
}

// Shutdown leaves the current route without entering another.
func (r *Router) Shutdown() {
	r.transition.Lock()
	defer r.transition.Unlock()

	if !r.isStarted() {
		return
	}
	r.leave()
	r.mu.Lock()
	r.started = false
	r.mu.Unlock()
}

func (r *Router) isStarted() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.started
}

// run executes hydration outside the transition lock so that work which changes the
// session, and therefore reloads the route, cannot deadlock.
func (r *Router) run(job func()) {
	if job != nil {
		r.runner.Go(job)
	}
}

// switchTo is called with r.transition held and returns the hydration job of the new
// view, if any.
func (r *Router) switchTo(ctx context.Context, route Route) func() {
	if r.isStarted() {
		r.leave()
	}

	scope, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.started = true
	r.current = route
	r.cancel = cancel
	listeners := append([]Listener{}, r.listeners...)
	r.mu.Unlock()

	r.logger.WithField("route", route.String()).Debug("entering route")
	for _, fn := range listeners {
		fn(route)
	}

	view, ok := r.views[route]
	if !ok {
		return nil
	}
	hydrate := view.Enter(scope)
	if hydrate == nil {
		return nil
	}
	return func() { hydrate(scope) }
}

func (r *Router) leave() {
	r.mu.Lock()
	previous := r.current
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
	if view, ok := r.views[previous]; ok {
		view.Exit()
	}
}
