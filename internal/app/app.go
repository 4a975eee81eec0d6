// Package app builds the application store: every component and view controller,
// constructed once and shared by the terminal UI and the CLI commands.
package app

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/bnema/pot-cli/internal/adapters/httpapi"
	"github.com/bnema/pot-cli/internal/cache"
	"github.com/bnema/pot-cli/internal/domain"
	"github.com/bnema/pot-cli/internal/notify"
	"github.com/bnema/pot-cli/internal/poll"
	"github.com/bnema/pot-cli/internal/ports"
	"github.com/bnema/pot-cli/internal/reconciler"
	"github.com/bnema/pot-cli/internal/router"
	"github.com/bnema/pot-cli/internal/session"
	"github.com/sirupsen/logrus"
)

const (
	DefaultChatPollInterval = 4 * time.Second
	DefaultPeerPollInterval = 7 * time.Second
)

// API is everything the client needs from the remote service.
type API interface {
	ports.AuthAPI
	ports.DashboardAPI
	ports.ActionAPI
	ports.DirectoryAPI
	ports.ChatAPI
	ports.ConciergeAPI
}

// sessionBinder is implemented by transports that attach the session token themselves.
type sessionBinder interface {
	SetTokenSource(httpapi.TokenSource)
	SetUnauthorizedHandler(func())
}

type Options struct {
	ChatPollInterval     time.Duration
	PeerPollInterval     time.Duration
	PreserveUnsavedEdits bool
	NotifyDuration       time.Duration
	Runner               router.Runner
	Logger               logrus.FieldLogger
	Clock                ports.Clock
	NotifyOptions        []notify.Option
}

type App struct {
	API        API
	Session    *session.Store
	Cache      *cache.Cache
	Reconciler *reconciler.Reconciler
	Scheduler  *poll.Scheduler
	Notify     *notify.Center
	Router     *router.Router

	Home      *HomeView
	Auth      *AuthView
	Attendees *AttendeesView
	Dashboard *DashboardView
	Chat      *ChatView
	NotFound  *NotFoundView
	Concierge *Concierge

	logger logrus.FieldLogger

	mu        sync.Mutex
	root      context.Context
	listeners []func()
}

func New(api API, secrets ports.SecretStore, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	if opts.ChatPollInterval <= 0 {
		opts.ChatPollInterval = DefaultChatPollInterval
	}
	if opts.PeerPollInterval <= 0 {
		opts.PeerPollInterval = DefaultPeerPollInterval
	}
	if opts.Runner == nil {
		opts.Runner = router.GoRunner{}
	}
	if opts.Clock == nil {
		opts.Clock = ports.SystemClock{}
	}

	a := &App{API: api, logger: logger, root: context.Background()}

	notifyOpts := append([]notify.Option{notify.WithDuration(opts.NotifyDuration), notify.WithClock(opts.Clock)}, opts.NotifyOptions...)
	a.Notify = notify.New(notifyOpts...)
	a.Session = session.New(api, secrets, logger)
	a.Cache = cache.New(api, opts.Clock, logger)
	a.Scheduler = poll.New(logger)
	a.Reconciler = reconciler.New(api, a.Cache, a.Notify,
		reconciler.WithPreserveUnsavedEdits(opts.PreserveUnsavedEdits),
		reconciler.WithLogger(logger),
	)

	a.Home = &HomeView{}
	a.NotFound = &NotFoundView{}
	a.Auth = &AuthView{app: a}
	a.Attendees = newAttendeesView(a)
	a.Dashboard = &DashboardView{app: a}
	a.Chat = &ChatView{app: a, interval: opts.ChatPollInterval, peerInterval: opts.PeerPollInterval, clock: opts.Clock}
	a.Concierge = &Concierge{app: a}

	a.Router = router.New(map[router.Route]router.View{
		router.Home:      a.Home,
		router.Auth:      a.Auth,
		router.Attendees: a.Attendees,
		router.Dashboard: a.Dashboard,
		router.Chat:      a.Chat,
		router.NotFound:  a.NotFound,
	}, a.Scheduler, router.WithRunner(opts.Runner), router.WithLogger(logger))

	if binder, ok := api.(sessionBinder); ok {
		binder.SetTokenSource(a.Session)
		binder.SetUnauthorizedHandler(func() { a.Session.Invalidate(a.rootContext()) })
	}

	a.Session.Subscribe(a.onSessionChange)
	a.Session.Subscribe(func(domain.Session) { a.changed() })
	a.Cache.Subscribe(a.Reconciler.Rebase)
	a.Cache.Subscribe(a.changed)
	a.Notify.Subscribe(func(*notify.Toast) { a.changed() })
	a.Router.Subscribe(func(router.Route) { a.changed() })

	return a
}

// Start restores the persisted session and enters the route for location.
func (a *App) Start(ctx context.Context, location string) router.Route {
	a.mu.Lock()
	a.root = ctx
	a.mu.Unlock()

	a.Session.Restore(ctx)
	return a.Router.Start(ctx, location)
}

// Close leaves the active route, stopping any polling.
func (a *App) Close() {
	a.Router.Shutdown()
	a.Scheduler.Stop()
}

// OnChange registers fn to run after any state a view renders has changed. It may be
// called from any goroutine and must not block.
func (a *App) OnChange(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

func (a *App) changed() {
	a.mu.Lock()
	listeners := append([]func(){}, a.listeners...)
	a.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

func (a *App) rootContext() context.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.root
}

// onSessionChange drops privileged state on sign-out and re-enters the current route so
// gated views re-evaluate.
func (a *App) onSessionChange(s domain.Session) {
	if !s.Authenticated() {
		a.Cache.ClearPrivileged()
		a.Chat.reset()
		a.Concierge.Reset()
	}
	a.Router.Reload(a.rootContext())
}
