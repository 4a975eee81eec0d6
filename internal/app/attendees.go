package app

import (
	"context"
	"slices"
	"sync"

	"github.com/bnema/pot-cli/internal/domain"
)

// Connectors lists the enrichment sources an organizer can toggle.
func Connectors() []string {
	return []string{"social_profiles", "structured_funding", "website", "openalex"}
}

// AttendeesView is the searchable directory with enrichment controls.
type AttendeesView struct {
	app *App

	mu         sync.Mutex
	filter     domain.AttendeeFilter
	connectors []string
}

func newAttendeesView(a *App) *AttendeesView {
	return &AttendeesView{app: a, connectors: []string{"social_profiles", "structured_funding"}}
}

func (v *AttendeesView) Enter(context.Context) func(context.Context) {
	filter := v.Filter()
	return func(ctx context.Context) {
		_, _ = v.app.Cache.LoadAttendees(ctx, filter)
		_, _ = v.app.Cache.LoadEnrichment(ctx)
	}
}

func (*AttendeesView) Exit() {}

func (v *AttendeesView) Filter() domain.AttendeeFilter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return domain.AttendeeFilter{Search: v.filter.Search, Roles: slices.Clone(v.filter.Roles)}
}

// SetFilter replaces the filter and reloads the directory.
func (v *AttendeesView) SetFilter(ctx context.Context, filter domain.AttendeeFilter) (domain.AttendeeDirectory, error) {
	filter = filter.Normalize()
	v.mu.Lock()
	v.filter = filter
	v.mu.Unlock()
	return v.app.Cache.LoadAttendees(ctx, filter)
}

// ToggleRole adds or removes role from the filter and returns the new filter. The caller
// reloads with SetFilter.
func (v *AttendeesView) ToggleRole(role domain.Role) domain.AttendeeFilter {
	v.mu.Lock()
	defer v.mu.Unlock()

	if i := slices.Index(v.filter.Roles, role); i >= 0 {
		v.filter.Roles = slices.Delete(slices.Clone(v.filter.Roles), i, i+1)
	} else {
		v.filter.Roles = append(slices.Clone(v.filter.Roles), role)
	}
	return domain.AttendeeFilter{Search: v.filter.Search, Roles: slices.Clone(v.filter.Roles)}
}

func (v *AttendeesView) ActiveConnectors() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.connectors)
}

func (v *AttendeesView) ToggleConnector(name string) []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	if i := slices.Index(v.connectors, name); i >= 0 {
		v.connectors = slices.Delete(slices.Clone(v.connectors), i, i+1)
	} else {
		v.connectors = append(slices.Clone(v.connectors), name)
	}
	return slices.Clone(v.connectors)
}

// RefreshEnrichment asks the service to re-run enrichment for profile, or for everyone
// when profile is empty, then reloads every view that shows enrichment.
func (v *AttendeesView) RefreshEnrichment(ctx context.Context, profile domain.ProfileID) error {
	refresh := domain.EnrichmentRefresh{ProfileID: profile, LiveEnabled: true, Connectors: v.ActiveConnectors()}
	if err := v.app.API.RefreshEnrichment(ctx, refresh); err != nil {
		v.app.Notify.Show(failureMessage(err, "Enrichment refresh failed"), true)
		return err
	}

	_, _ = v.app.Cache.LoadAttendees(ctx, v.Filter())
	_, _ = v.app.Cache.LoadEnrichment(ctx)
	_, _ = v.app.Cache.LoadDashboard(ctx)
	v.app.Notify.Show("Enrichment refreshed.", false)
	return nil
}

// Confidence prefers the enrichment listing over the value embedded in the directory.
func (v *AttendeesView) Confidence(attendee domain.Attendee) float64 {
	for _, record := range v.app.Cache.Enrichment().Data {
		if record.ProfileID == attendee.ProfileID {
			return record.SourceConfidence
		}
	}
	return attendee.Enrichment.SourceConfidence
}
