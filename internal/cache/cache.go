// Package cache keeps the last server-confirmed snapshot for every view.
package cache

import (
	"context"
	"io"
	"sync"

	"github.com/bnema/pot-cli/internal/domain"
	"github.com/bnema/pot-cli/internal/ports"
	"github.com/sirupsen/logrus"
)

type API interface {
	ports.DashboardAPI
	ports.DirectoryAPI
	ports.ChatAPI
}

type Cache struct {
	api    API
	clock  ports.Clock
	logger logrus.FieldLogger

	mu sync.RWMutex
	// generation is bumped by ClearPrivileged so responses issued under a previous
	// session are dropped.
	generation int

	attendeeFilter domain.AttendeeFilter
	attendees      Result[domain.AttendeeDirectory]
	dashboard      Result[domain.DashboardSnapshot]
	segments       Result[domain.Segments]
	profiles       Result[[]domain.ProfileSummary]
	enrichment     Result[[]domain.EnrichmentRecord]
	drilldownKey   domain.PairKey
	drilldown      Result[domain.Drilldown]
	peers          Result[[]domain.Peer]
	messages       map[domain.UserID]*Result[[]domain.ChatMessage]

	listenersMu sync.Mutex
	listeners   []func()
}

func New(api API, clock ports.Clock, logger logrus.FieldLogger) *Cache {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &Cache{
		api:      api,
		clock:    clock,
		logger:   logger.WithField("component", "cache"),
		messages: map[domain.UserID]*Result[[]domain.ChatMessage]{},
	}
}

// Subscribe registers fn to run after every change. fn must not block.
func (c *Cache) Subscribe(fn func()) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Cache) changed() {
	c.listenersMu.Lock()
	listeners := append([]func(){}, c.listeners...)
	c.listenersMu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// load runs fetch and applies its outcome to the slot selected by pick. Results that
// arrive after ctx was canceled, or after the generation changed, are dropped and the
// slot stops reporting Loading once no other load for it is outstanding.
func load[T any](ctx context.Context, c *Cache, name string, pick func(*Cache) *Result[T], fetch func(context.Context) (T, error), onError func(prev Result[T]) T) (T, error) {
	c.mu.Lock()
	pick(c).begin()
	generation := c.generation
	c.mu.Unlock()
	c.changed()

	data, err := fetch(ctx)

	c.mu.Lock()
	if ctx.Err() != nil || generation != c.generation {
		// ClearPrivileged already settled every slot of an older generation.
		if generation == c.generation {
			pick(c).abandon()
		}
		c.mu.Unlock()
		c.changed()
		c.logger.WithField("slot", name).Debug("dropping stale response")
		if err == nil {
			err = context.Cause(ctx)
			if err == nil {
				err = context.Canceled
			}
		}
		var zero T
		return zero, err
	}

	slot := pick(c)
	if err != nil {
		c.logger.WithError(err).WithField("slot", name).Debug("load failed")
	}
	slot.apply(data, err, onError, c.clock.Now())
	out := slot.Data
	c.mu.Unlock()
	c.changed()

	return out, err
}

func (c *Cache) LoadAttendees(ctx context.Context, filter domain.AttendeeFilter) (domain.AttendeeDirectory, error) {
	filter = filter.Normalize()
	c.mu.Lock()
	c.attendeeFilter = filter
	c.mu.Unlock()

	return load(ctx, c, "attendees",
		func(c *Cache) *Result[domain.AttendeeDirectory] { return &c.attendees },
		func(ctx context.Context) (domain.AttendeeDirectory, error) { return c.api.Attendees(ctx, filter) },
		func(Result[domain.AttendeeDirectory]) domain.AttendeeDirectory { return demoAttendees() },
	)
}

// LoadDashboard falls back to the offline placeholder only when nothing was ever
// loaded; otherwise the last snapshot stays visible.
func (c *Cache) LoadDashboard(ctx context.Context) (domain.DashboardSnapshot, error) {
	return load(ctx, c, "dashboard",
		func(c *Cache) *Result[domain.DashboardSnapshot] { return &c.dashboard },
		c.api.Dashboard,
		func(prev Result[domain.DashboardSnapshot]) domain.DashboardSnapshot {
			if prev.UpdatedAt.IsZero() && prev.Data.Empty() {
				return demoDashboard()
			}
			return prev.Data
		},
	)
}

func (c *Cache) LoadSegments(ctx context.Context) (domain.Segments, error) {
	return load(ctx, c, "segments",
		func(c *Cache) *Result[domain.Segments] { return &c.segments },
		c.api.Segments,
		func(Result[domain.Segments]) domain.Segments { return emptySegments() },
	)
}

func (c *Cache) LoadProfiles(ctx context.Context) ([]domain.ProfileSummary, error) {
	return load(ctx, c, "profiles",
		func(c *Cache) *Result[[]domain.ProfileSummary] { return &c.profiles },
		c.api.Profiles,
		keepPrevious[[]domain.ProfileSummary],
	)
}

func (c *Cache) LoadEnrichment(ctx context.Context) ([]domain.EnrichmentRecord, error) {
	return load(ctx, c, "enrichment",
		func(c *Cache) *Result[[]domain.EnrichmentRecord] { return &c.enrichment },
		c.api.Enrichment,
		keepPrevious[[]domain.EnrichmentRecord],
	)
}

func (c *Cache) LoadDrilldown(ctx context.Context, key domain.PairKey) (domain.Drilldown, error) {
	c.mu.Lock()
	if c.drilldownKey != key {
		c.drilldown = Result[domain.Drilldown]{}
		c.drilldownKey = key
	}
	c.mu.Unlock()

	return load(ctx, c, "drilldown",
		func(c *Cache) *Result[domain.Drilldown] { return &c.drilldown },
		func(ctx context.Context) (domain.Drilldown, error) { return c.api.Drilldown(ctx, key) },
		keepPrevious[domain.Drilldown],
	)
}

func (c *Cache) LoadPeers(ctx context.Context) ([]domain.Peer, error) {
	return load(ctx, c, "peers",
		func(c *Cache) *Result[[]domain.Peer] { return &c.peers },
		c.api.Peers,
		keepPrevious[[]domain.Peer],
	)
}

func (c *Cache) LoadMessages(ctx context.Context, peer domain.UserID) ([]domain.ChatMessage, error) {
	return load(ctx, c, "messages",
		func(c *Cache) *Result[[]domain.ChatMessage] { return messageSlot(c, peer) },
		func(ctx context.Context) ([]domain.ChatMessage, error) { return c.api.Messages(ctx, peer) },
		keepPrevious[[]domain.ChatMessage],
	)
}

// messageSlot is called with c.mu held.
func messageSlot(c *Cache, peer domain.UserID) *Result[[]domain.ChatMessage] {
	slot, ok := c.messages[peer]
	if !ok {
		slot = &Result[[]domain.ChatMessage]{}
		c.messages[peer] = slot
	}
	return slot
}

func keepPrevious[T any](prev Result[T]) T {
	return prev.Data
}

func (c *Cache) Attendees() (Result[domain.AttendeeDirectory], domain.AttendeeFilter) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.attendees, c.attendeeFilter
}

func (c *Cache) Dashboard() Result[domain.DashboardSnapshot] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dashboard
}

func (c *Cache) Segments() Result[domain.Segments] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.segments
}

func (c *Cache) Profiles() Result[[]domain.ProfileSummary] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profiles
}

func (c *Cache) Enrichment() Result[[]domain.EnrichmentRecord] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enrichment
}

func (c *Cache) Drilldown() (Result[domain.Drilldown], domain.PairKey) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.drilldown, c.drilldownKey
}

func (c *Cache) Peers() Result[[]domain.Peer] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.peers
}

func (c *Cache) Messages(peer domain.UserID) Result[[]domain.ChatMessage] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if slot, ok := c.messages[peer]; ok {
		return *slot
	}
	return Result[[]domain.ChatMessage]{}
}

// ClearPrivileged forgets everything fetched with the session token. Responses to
// requests issued before the call are ignored.
func (c *Cache) ClearPrivileged() {
	c.mu.Lock()
	c.generation++
	c.peers = Result[[]domain.Peer]{}
	c.messages = map[domain.UserID]*Result[[]domain.ChatMessage]{}
	c.attendees.settle()
	c.dashboard.settle()
	c.segments.settle()
	c.profiles.settle()
	c.enrichment.settle()
	c.drilldown.settle()
	c.mu.Unlock()
	c.changed()
}
