package ports

import (
	"context"

	"github.com/bnema/pot-cli/internal/domain"
)

type AuthAPI interface {
	Register(ctx context.Context, reg domain.Registration) (string, domain.User, error)
	Login(ctx context.Context, email, password string) (string, domain.User, error)
	Me(ctx context.Context, token string) (domain.User, error)
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.User, error)
}

type DashboardAPI interface {
	Profiles(ctx context.Context) ([]domain.ProfileSummary, error)
	Dashboard(ctx context.Context) (domain.DashboardSnapshot, error)
	Segments(ctx context.Context) (domain.Segments, error)
	Drilldown(ctx context.Context, key domain.PairKey) (domain.Drilldown, error)
}

type ActionAPI interface {
	SaveAction(ctx context.Context, action domain.Action) error
}

type DirectoryAPI interface {
	Attendees(ctx context.Context, filter domain.AttendeeFilter) (domain.AttendeeDirectory, error)
	Enrichment(ctx context.Context) ([]domain.EnrichmentRecord, error)
	RefreshEnrichment(ctx context.Context, req domain.EnrichmentRefresh) error
}

type ChatAPI interface {
	Peers(ctx context.Context) ([]domain.Peer, error)
	Messages(ctx context.Context, peer domain.UserID) ([]domain.ChatMessage, error)
	SendMessage(ctx context.Context, to domain.UserID, body string) error
}

type ConciergeAPI interface {
	Concierge(ctx context.Context, message string, profile domain.ProfileID, history []domain.ConciergeTurn) (string, error)
}

// Notifier surfaces a transient message to the user.
type Notifier interface {
	Show(message string, isError bool)
}
