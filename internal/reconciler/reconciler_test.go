package reconciler

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/pot-cli/internal/adapters/httpapi"
	"github.com/bnema/pot-cli/internal/cache"
	"github.com/bnema/pot-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pairAB = domain.PairKey{From: "p2", To: "p3"}
	pairCD = domain.PairKey{From: "p4", To: "p5"}
)

type toast struct {
	message string
	isError bool
}

type recordingNotifier struct {
	toasts []toast
}

func (n *recordingNotifier) Show(message string, isError bool) {
	n.toasts = append(n.toasts, toast{message: message, isError: isError})
}

func (n *recordingNotifier) last() toast {
	if len(n.toasts) == 0 {
		return toast{}
	}
	return n.toasts[len(n.toasts)-1]
}

// fakeServer holds the authoritative actions and answers both the save and the
// dashboard reload.
type fakeServer struct {
	actions   map[domain.PairKey]domain.Action
	saveErr   error
	saves     []domain.Action
	snapshot  cache.Result[domain.DashboardSnapshot]
	loadCalls int
	// duringSave runs after the server accepted an action, before the save returns.
	duringSave func()
}

func newFakeServer() *fakeServer {
	s := &fakeServer{actions: map[domain.PairKey]domain.Action{}}
	s.publish()
	return s
}

func (s *fakeServer) SaveAction(_ context.Context, action domain.Action) error {
	s.saves = append(s.saves, action)
	if s.saveErr != nil {
		return s.saveErr
	}
	s.actions[action.Key()] = action
	if s.duringSave != nil {
		s.duringSave()
	}
	return nil
}

func (s *fakeServer) publish() {
	matches := map[domain.ProfileID][]domain.Match{}
	for _, key := range []domain.PairKey{pairAB, pairCD} {
		action := s.actions[key]
		matches[key.From] = append(matches[key.From], domain.Match{TargetID: key.To, Action: action})
	}
	s.snapshot = cache.Result[domain.DashboardSnapshot]{
		State: cache.StateLoaded,
		Data:  domain.DashboardSnapshot{PerProfile: matches},
	}
}

func (s *fakeServer) Dashboard() cache.Result[domain.DashboardSnapshot] {
	return s.snapshot
}

func (s *fakeServer) LoadDashboard(context.Context) (domain.DashboardSnapshot, error) {
	s.loadCalls++
	s.publish()
	return s.snapshot.Data, nil
}

func TestEditTracksDirtyAgainstConfirmedValues(t *testing.T) {
	t.Parallel()

	server := newFakeServer()
	r := New(server, server, &recordingNotifier{})

	edit, err := r.Edit(pairAB, domain.ActionApproved, "")
	require.NoError(t, err)
	assert.True(t, edit.Dirty)
	assert.Equal(t, domain.ActionPending, edit.OriginalStatus)

	edit, err = r.Edit(pairAB, domain.ActionPending, "")
	require.NoError(t, err)
	assert.False(t, edit.Dirty, "returning to the confirmed values clears dirty")

	edit, err = r.Edit(pairAB, domain.ActionPending, "call them")
	require.NoError(t, err)
	assert.True(t, edit.Dirty)
}

func TestEditRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	server := newFakeServer()
	r := New(server, server, &recordingNotifier{})

	_, err := r.Edit(domain.PairKey{From: "p2"}, domain.ActionApproved, "")
	assert.Error(t, err)
	_, err = r.Edit(pairAB, "maybe", "")
	assert.Error(t, err)
}

func TestSaveSuccessConfirmsEditAndRefreshes(t *testing.T) {
	t.Parallel()

	server := newFakeServer()
	notifier := &recordingNotifier{}
	r := New(server, server, notifier)

	_, err := r.Edit(pairAB, domain.ActionApproved, "intro at lunch")
	require.NoError(t, err)
	require.NoError(t, r.Save(context.Background(), pairAB))

	edit := r.Get(pairAB)
	assert.False(t, edit.Dirty)
	assert.Equal(t, domain.ActionApproved, edit.OriginalStatus)
	assert.Equal(t, "intro at lunch", edit.OriginalNotes)
	assert.Equal(t, 1, server.loadCalls)
	assert.Equal(t, toast{message: "Action saved"}, notifier.last())
}

func TestSaveFailureKeepsEditDirty(t *testing.T) {
	t.Parallel()

	server := newFakeServer()
	server.saveErr = &httpapi.Error{Kind: httpapi.KindServer, StatusCode: 400, Detail: "Unknown profile"}
	notifier := &recordingNotifier{}
	r := New(server, server, notifier)

	_, err := r.Edit(pairAB, domain.ActionRejected, "no")
	require.NoError(t, err)

	err = r.Save(context.Background(), pairAB)
	require.Error(t, err)
	assert.True(t, r.Dirty(pairAB))
	assert.Equal(t, domain.ActionRejected, r.Get(pairAB).Status)
	assert.Equal(t, toast{message: "Unknown profile", isError: true}, notifier.last())
	assert.Zero(t, server.loadCalls)
}

func TestSaveFailureWithoutDetailUsesGenericMessage(t *testing.T) {
	t.Parallel()

	server := newFakeServer()
	server.saveErr = errors.New("dial tcp: refused")
	notifier := &recordingNotifier{}
	r := New(server, server, notifier)

	_, err := r.Edit(pairAB, domain.ActionRejected, "")
	require.NoError(t, err)
	require.Error(t, r.Save(context.Background(), pairAB))
	assert.Equal(t, toast{message: "Failed to save action", isError: true}, notifier.last())
}

func TestSaveWithoutEditFails(t *testing.T) {
	t.Parallel()

	server := newFakeServer()
	r := New(server, server, &recordingNotifier{})

	err := r.Save(context.Background(), pairAB)
	assert.ErrorIs(t, err, domain.ErrNoEdit)
	assert.Empty(t, server.saves)
}

func TestSaveDropsOtherUnsavedEditsAfterRefresh(t *testing.T) {
	t.Parallel()

	server := newFakeServer()
	r := New(server, server, &recordingNotifier{})

	_, err := r.Edit(pairAB, domain.ActionApproved, "")
	require.NoError(t, err)
	_, err = r.Edit(pairCD, domain.ActionRejected, "not a fit")
	require.NoError(t, err)

	require.NoError(t, r.Save(context.Background(), pairAB))

	assert.False(t, r.Dirty(pairCD))
	assert.Equal(t, domain.ActionPending, r.Get(pairCD).Status)
	assert.Empty(t, r.DirtyKeys())
}

func TestSaveKeepsOtherEditsWhenServerAlreadyReflectsThem(t *testing.T) {
	t.Parallel()

	server := newFakeServer()
	r := New(server, server, &recordingNotifier{})

	_, err := r.Edit(pairCD, domain.ActionRejected, "not a fit")
	require.NoError(t, err)
	server.actions[pairCD] = domain.Action{FromID: "p4", ToID: "p5", Status: domain.ActionRejected, Notes: "not a fit"}

	_, err = r.Edit(pairAB, domain.ActionApproved, "")
	require.NoError(t, err)
	require.NoError(t, r.Save(context.Background(), pairAB))

	edit := r.Get(pairCD)
	assert.Equal(t, domain.ActionRejected, edit.Status)
	assert.False(t, edit.Dirty)
}

func TestPreserveUnsavedEditsOption(t *testing.T) {
	t.Parallel()

	server := newFakeServer()
	r := New(server, server, &recordingNotifier{}, WithPreserveUnsavedEdits(true))

	_, err := r.Edit(pairAB, domain.ActionApproved, "")
	require.NoError(t, err)
	_, err = r.Edit(pairCD, domain.ActionRejected, "not a fit")
	require.NoError(t, err)

	require.NoError(t, r.Save(context.Background(), pairAB))

	assert.Equal(t, []domain.PairKey{pairCD}, r.DirtyKeys())
	assert.Equal(t, "not a fit", r.Get(pairCD).Notes)
}

func TestSaveKeepsNewerEditMadeWhileSaving(t *testing.T) {
	t.Parallel()

	server := newFakeServer()
	r := New(server, server, &recordingNotifier{})

	_, err := r.Edit(pairAB, domain.ActionApproved, "first")
	require.NoError(t, err)
	server.duringSave = func() {
		_, err := r.Edit(pairAB, domain.ActionRejected, "changed my mind")
		require.NoError(t, err)
	}

	require.NoError(t, r.Save(context.Background(), pairAB))

	edit := r.Get(pairAB)
	assert.Equal(t, domain.ActionRejected, edit.Status)
	assert.Equal(t, "changed my mind", edit.Notes)
	assert.Equal(t, domain.ActionApproved, edit.OriginalStatus)
	assert.Equal(t, "first", edit.OriginalNotes)
	assert.True(t, edit.Dirty)
	assert.Equal(t, []domain.PairKey{pairAB}, r.DirtyKeys())
}

func TestRebaseFollowsDashboardSnapshot(t *testing.T) {
	t.Parallel()

	server := newFakeServer()
	r := New(server, server, &recordingNotifier{})

	_, err := r.Edit(pairAB, domain.ActionApproved, "")
	require.NoError(t, err)
	_, err = r.Edit(pairCD, domain.ActionRejected, "not a fit")
	require.NoError(t, err)
	require.Len(t, r.DirtyKeys(), 2)

	// Another organizer approves pairAB.
	server.actions[pairAB] = domain.Action{FromID: pairAB.From, ToID: pairAB.To, Status: domain.ActionApproved}
	server.publish()
	r.Rebase()

	ab := r.Get(pairAB)
	assert.False(t, ab.Dirty)
	assert.Equal(t, domain.ActionApproved, ab.OriginalStatus)
	assert.Equal(t, []domain.PairKey{pairCD}, r.DirtyKeys())
	assert.Equal(t, "not a fit", r.Get(pairCD).Notes)
}

func TestRebaseIgnoresUnloadedDashboard(t *testing.T) {
	t.Parallel()

	server := newFakeServer()
	r := New(server, server, &recordingNotifier{})

	_, err := r.Edit(pairAB, domain.ActionApproved, "")
	require.NoError(t, err)

	server.snapshot = cache.Result[domain.DashboardSnapshot]{State: cache.StateLoading}
	r.Rebase()

	edit := r.Get(pairAB)
	assert.True(t, edit.Dirty)
	assert.Equal(t, domain.ActionPending, edit.OriginalStatus)
}

func TestQuickActionSavesWithGeneratedNotes(t *testing.T) {
	t.Parallel()

	server := newFakeServer()
	r := New(server, server, &recordingNotifier{})

	require.NoError(t, r.QuickAction(context.Background(), pairAB, domain.ActionApproved))
	require.Len(t, server.saves, 1)
	assert.Equal(t, "Set via dashboard quick action to approved", server.saves[0].Notes)
	assert.Equal(t, domain.ActionApproved, server.saves[0].Status)
	assert.False(t, r.Dirty(pairAB))
}

func TestGetMirrorsSnapshotWithoutEdit(t *testing.T) {
	t.Parallel()

	server := newFakeServer()
	server.actions[pairAB] = domain.Action{Status: domain.ActionApproved, Notes: "done"}
	server.publish()
	r := New(server, server, &recordingNotifier{})

	edit := r.Get(pairAB)
	assert.Equal(t, domain.ActionApproved, edit.Status)
	assert.Equal(t, "done", edit.Notes)
	assert.False(t, edit.Dirty)

	r.Discard(pairAB)
	assert.False(t, r.Dirty(pairAB))
}
