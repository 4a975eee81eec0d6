package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bnema/pot-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOffline = errors.New("offline")

type fakeAPI struct {
	mu          sync.Mutex
	dashboard   domain.DashboardSnapshot
	dashErr     error
	attendees   domain.AttendeeDirectory
	attendErr   error
	segmentsErr error
	peers       []domain.Peer
	messages    map[domain.UserID][]domain.ChatMessage
	filters     []domain.AttendeeFilter
	block       chan struct{}
}

func (f *fakeAPI) Profiles(context.Context) ([]domain.ProfileSummary, error) {
	return []domain.ProfileSummary{{ID: "p1", Name: "Amara Okafor"}}, nil
}

func (f *fakeAPI) Dashboard(context.Context) (domain.DashboardSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dashboard, f.dashErr
}

func (f *fakeAPI) Segments(context.Context) (domain.Segments, error) {
	if f.segmentsErr != nil {
		return domain.Segments{}, f.segmentsErr
	}
	return domain.Segments{Roles: map[string]int{"vip": 2}}, nil
}

func (f *fakeAPI) Drilldown(_ context.Context, key domain.PairKey) (domain.Drilldown, error) {
	return domain.Drilldown{FromProfile: domain.ProfileDetail{ID: key.From}, ToProfile: domain.ProfileDetail{ID: key.To}}, nil
}

func (f *fakeAPI) Attendees(_ context.Context, filter domain.AttendeeFilter) (domain.AttendeeDirectory, error) {
	f.filters = append(f.filters, filter)
	return f.attendees, f.attendErr
}

func (f *fakeAPI) Enrichment(context.Context) ([]domain.EnrichmentRecord, error) {
	return nil, errOffline
}

func (f *fakeAPI) RefreshEnrichment(context.Context, domain.EnrichmentRefresh) error {
	return nil
}

func (f *fakeAPI) Peers(ctx context.Context) ([]domain.Peer, error) {
	if f.block != nil {
		<-f.block
	}
	return f.peers, nil
}

func (f *fakeAPI) Messages(_ context.Context, peer domain.UserID) ([]domain.ChatMessage, error) {
	return f.messages[peer], nil
}

func (f *fakeAPI) SendMessage(context.Context, domain.UserID, string) error {
	return nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newTestCache(api *fakeAPI) *Cache {
	return New(api, fixedClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}, nil)
}

func TestLoadDashboardReplacesSnapshotWholesale(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{dashboard: domain.DashboardSnapshot{TopIntroPairs: []domain.Pair{{FromID: "a", ToID: "b"}}}}
	c := newTestCache(api)

	_, err := c.LoadDashboard(context.Background())
	require.NoError(t, err)

	api.dashboard = domain.DashboardSnapshot{TopIntroPairs: []domain.Pair{{FromID: "c", ToID: "d"}}}
	_, err = c.LoadDashboard(context.Background())
	require.NoError(t, err)

	got := c.Dashboard()
	assert.Equal(t, StateLoaded, got.State)
	require.Len(t, got.Data.TopIntroPairs, 1)
	assert.Equal(t, domain.ProfileID("c"), got.Data.TopIntroPairs[0].FromID)
}

func TestLoadDashboardFallsBackToDemoWhenNothingCached(t *testing.T) {
	t.Parallel()

	c := newTestCache(&fakeAPI{dashErr: errOffline})

	data, err := c.LoadDashboard(context.Background())
	require.ErrorIs(t, err, errOffline)
	assert.Equal(t, "Marcus Chen", data.TopIntroPairs[0].FromName)
	assert.Equal(t, StateFailed, c.Dashboard().State)
}

func TestLoadDashboardFailureKeepsLastSnapshot(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{dashboard: domain.DashboardSnapshot{Overview: domain.Overview{AttendeeCount: 42}}}
	c := newTestCache(api)
	_, err := c.LoadDashboard(context.Background())
	require.NoError(t, err)

	api.dashErr = errOffline
	_, err = c.LoadDashboard(context.Background())
	require.Error(t, err)

	got := c.Dashboard()
	assert.Equal(t, StateFailed, got.State)
	assert.Equal(t, 42, got.Data.Overview.AttendeeCount)
}

func TestLoadAttendeesNormalizesFilterAndFallsBack(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{attendErr: errOffline}
	c := newTestCache(api)

	data, err := c.LoadAttendees(context.Background(), domain.AttendeeFilter{Search: " fund ", Roles: []domain.Role{"vip", "vip"}})
	require.Error(t, err)
	assert.Equal(t, "Amara Okafor", data.Attendees[0].Name)
	require.Len(t, api.filters, 1)
	assert.Equal(t, domain.AttendeeFilter{Search: "fund", Roles: []domain.Role{"vip"}}, api.filters[0])

	_, filter := c.Attendees()
	assert.Equal(t, "fund", filter.Search)
}

func TestLoadSegmentsFallsBackToEmpty(t *testing.T) {
	t.Parallel()

	c := newTestCache(&fakeAPI{segmentsErr: errOffline})
	data, err := c.LoadSegments(context.Background())
	require.Error(t, err)
	assert.Empty(t, data.Roles)
	assert.NotNil(t, data.Roles)
}

func TestCanceledLoadDoesNotApply(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{peers: []domain.Peer{{UserID: "u2"}}}
	c := newTestCache(api)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.LoadPeers(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, c.Peers().Data)
}

func TestCanceledLoadRestoresPreviousState(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{dashboard: domain.DashboardSnapshot{TopIntroPairs: []domain.Pair{{FromID: "p2", ToID: "p3"}}}}
	c := newTestCache(api)

	_, err := c.LoadPeers(canceledContext())
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateIdle, c.Peers().State)

	_, err = c.LoadDashboard(context.Background())
	require.NoError(t, err)

	_, err = c.LoadDashboard(canceledContext())
	require.ErrorIs(t, err, context.Canceled)

	result := c.Dashboard()
	assert.Equal(t, StateLoaded, result.State)
	assert.NoError(t, result.Err)
	assert.Len(t, result.Data.TopIntroPairs, 1)
}

func TestCanceledLoadKeepsLoadingWhileAnotherIsOutstanding(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{peers: []domain.Peer{{UserID: "u2"}}, block: make(chan struct{})}
	c := newTestCache(api)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := c.LoadPeers(ctx)
		first <- err
	}()
	second := make(chan error, 1)
	go func() {
		_, err := c.LoadPeers(context.Background())
		second <- err
	}()
	require.Eventually(t, func() bool {
		c.mu.RLock()
		defer c.mu.RUnlock()
		return c.peers.inflight == 2
	}, time.Second, time.Millisecond)

	cancel()
	close(api.block)
	require.NoError(t, <-second)
	require.Error(t, <-first)

	result := c.Peers()
	assert.Equal(t, StateLoaded, result.State)
	assert.Len(t, result.Data, 1)
}

func canceledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

func TestClearPrivilegedDropsInFlightResponses(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{peers: []domain.Peer{{UserID: "u2"}}, block: make(chan struct{})}
	c := newTestCache(api)

	done := make(chan error, 1)
	go func() {
		_, err := c.LoadPeers(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool { return c.Peers().Loading() }, time.Second, time.Millisecond)
	c.ClearPrivileged()
	close(api.block)

	require.Error(t, <-done)
	assert.Equal(t, StateIdle, c.Peers().State)
	assert.Empty(t, c.Peers().Data)
}

func TestMessagesAreCachedPerPeer(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{messages: map[domain.UserID][]domain.ChatMessage{
		"u2": {{ID: "1", Body: "hi"}},
		"u3": {{ID: "2", Body: "hello"}, {ID: "3", Body: "again"}},
	}}
	c := newTestCache(api)

	_, err := c.LoadMessages(context.Background(), "u2")
	require.NoError(t, err)
	_, err = c.LoadMessages(context.Background(), "u3")
	require.NoError(t, err)

	assert.Len(t, c.Messages("u2").Data, 1)
	assert.Len(t, c.Messages("u3").Data, 2)
	assert.Equal(t, StateIdle, c.Messages("u4").State)
}

func TestSubscribersSeeLoadingThenLoaded(t *testing.T) {
	t.Parallel()

	c := newTestCache(&fakeAPI{})
	var states []State
	c.Subscribe(func() { states = append(states, c.Profiles().State) })

	_, err := c.LoadProfiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []State{StateLoading, StateLoaded}, states)
}

func TestDrilldownResetsOnKeyChange(t *testing.T) {
	t.Parallel()

	c := newTestCache(&fakeAPI{})
	key := domain.PairKey{From: "p2", To: "p3"}

	got, err := c.LoadDrilldown(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, domain.ProfileID("p3"), got.ToProfile.ID)

	result, current := c.Drilldown()
	assert.Equal(t, key, current)
	assert.Equal(t, StateLoaded, result.State)
}
