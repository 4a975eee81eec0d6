package app

import (
	"context"
	"sort"
	"sync"

	"github.com/bnema/pot-cli/internal/domain"
	"github.com/bnema/pot-cli/internal/reconciler"
)

// DashboardView is the organizer dashboard: ranked pairs, segments, per-profile matches
// and a drilldown of the selected pair.
type DashboardView struct {
	app *App

	mu              sync.Mutex
	selectedProfile domain.ProfileID
	selectedPair    domain.PairKey
}

func (v *DashboardView) Enter(context.Context) func(context.Context) {
	return func(ctx context.Context) {
		_, _ = v.app.Cache.LoadDashboard(ctx)
		_, _ = v.app.Cache.LoadSegments(ctx)
		_, _ = v.app.Cache.LoadProfiles(ctx)
	}
}

func (*DashboardView) Exit() {}

func (v *DashboardView) SelectProfile(id domain.ProfileID) {
	v.mu.Lock()
	v.selectedProfile = id
	v.mu.Unlock()
	v.app.changed()
}

// SelectedProfile defaults to the first profile with matches.
func (v *DashboardView) SelectedProfile() domain.ProfileID {
	v.mu.Lock()
	selected := v.selectedProfile
	v.mu.Unlock()

	if selected == "" {
		if ids := v.ProfileIDs(); len(ids) > 0 {
			return ids[0]
		}
	}
	return selected
}

// ProfileIDs lists the profiles that have ranked matches, in stable order.
func (v *DashboardView) ProfileIDs() []domain.ProfileID {
	perProfile := v.app.Cache.Dashboard().Data.PerProfile
	ids := make([]domain.ProfileID, 0, len(perProfile))
	for id := range perProfile {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Matches returns the selected profile's matches, each paired with its current edit.
func (v *DashboardView) Matches() []MatchRow {
	source := v.SelectedProfile()
	matches := v.app.Cache.Dashboard().Data.PerProfile[source]

	rows := make([]MatchRow, 0, len(matches))
	for _, match := range matches {
		key := domain.PairKey{From: source, To: match.TargetID}
		rows = append(rows, MatchRow{Key: key, Match: match, Edit: v.app.Reconciler.Get(key)})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Match.PriorityRank < rows[j].Match.PriorityRank })
	return rows
}

type MatchRow struct {
	Key   domain.PairKey
	Match domain.Match
	Edit  reconciler.ActionEdit
}

// SelectPair loads the drilldown for key.
func (v *DashboardView) SelectPair(ctx context.Context, key domain.PairKey) (domain.Drilldown, error) {
	v.mu.Lock()
	v.selectedPair = key
	v.mu.Unlock()
	return v.app.Cache.LoadDrilldown(ctx, key)
}

func (v *DashboardView) SelectedPair() domain.PairKey {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selectedPair
}

func (v *DashboardView) Edit(key domain.PairKey, status domain.ActionStatus, notes string) (reconciler.ActionEdit, error) {
	edit, err := v.app.Reconciler.Edit(key, status, notes)
	if err == nil {
		v.app.changed()
	}
	return edit, err
}

// CycleStatus moves key to the next status in pending, approved, rejected order,
// keeping its notes.
func (v *DashboardView) CycleStatus(key domain.PairKey) (reconciler.ActionEdit, error) {
	edit := v.app.Reconciler.Get(key)
	statuses := domain.ActionStatuses()
	next := statuses[0]
	for i, status := range statuses {
		if status == edit.Status {
			next = statuses[(i+1)%len(statuses)]
			break
		}
	}
	return v.Edit(key, next, edit.Notes)
}

func (v *DashboardView) Save(ctx context.Context, key domain.PairKey) error {
	return v.app.Reconciler.Save(ctx, key)
}

func (v *DashboardView) QuickAction(ctx context.Context, key domain.PairKey, status domain.ActionStatus) error {
	return v.app.Reconciler.QuickAction(ctx, key, status)
}
