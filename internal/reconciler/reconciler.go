// Package reconciler tracks organizer decisions edited locally but not yet confirmed by
// the server.
package reconciler

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/bnema/pot-cli/internal/adapters/httpapi"
	"github.com/bnema/pot-cli/internal/cache"
	"github.com/bnema/pot-cli/internal/domain"
	"github.com/bnema/pot-cli/internal/ports"
	"github.com/sirupsen/logrus"
)

const (
	savedMessage      = "Action saved"
	saveFailedMessage = "Failed to save action"
)

// ActionEdit is the local state for one pair. Dirty reports whether Status or Notes
// differ from the last server-confirmed values.
type ActionEdit struct {
	Key            domain.PairKey
	Status         domain.ActionStatus
	Notes          string
	OriginalStatus domain.ActionStatus
	OriginalNotes  string
	Dirty          bool
}

func (e ActionEdit) action() domain.Action {
	return domain.Action{FromID: e.Key.From, ToID: e.Key.To, Status: e.Status, Notes: e.Notes}
}

func (e *ActionEdit) rebase(status domain.ActionStatus, notes string) {
	e.OriginalStatus = status
	e.OriginalNotes = notes
	e.Dirty = e.Status != status || e.Notes != notes
}

// Dashboard is the snapshot source edits are compared against.
type Dashboard interface {
	Dashboard() cache.Result[domain.DashboardSnapshot]
	LoadDashboard(ctx context.Context) (domain.DashboardSnapshot, error)
}

type Option func(*Reconciler)

// WithPreserveUnsavedEdits keeps other pairs' unsaved edits across the refresh that
// follows a save. By default they are dropped unless the server already reflects them.
func WithPreserveUnsavedEdits(preserve bool) Option {
	return func(r *Reconciler) { r.preserveUnsaved = preserve }
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(r *Reconciler) { r.logger = logger }
}

type Reconciler struct {
	api             ports.ActionAPI
	dashboard       Dashboard
	notifier        ports.Notifier
	logger          logrus.FieldLogger
	preserveUnsaved bool

	mu    sync.Mutex
	edits map[domain.PairKey]ActionEdit
}

func New(api ports.ActionAPI, dashboard Dashboard, notifier ports.Notifier, opts ...Option) *Reconciler {
	r := &Reconciler{
		api:       api,
		dashboard: dashboard,
		notifier:  notifier,
		edits:     map[domain.PairKey]ActionEdit{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		r.logger = discard
	}
	r.logger = r.logger.WithField("component", "reconciler")
	return r
}

// Edit records the latest local choice for key. Repeated edits overwrite each other and
// keep the original server values captured by the first one.
func (r *Reconciler) Edit(key domain.PairKey, status domain.ActionStatus, notes string) (ActionEdit, error) {
	if !key.Valid() {
		return ActionEdit{}, fmt.Errorf("edit action: invalid pair %q", key)
	}
	status, err := domain.ParseActionStatus(string(status))
	if err != nil {
		return ActionEdit{}, fmt.Errorf("edit action: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	edit, ok := r.edits[key]
	if !ok {
		confirmed := r.confirmed(key)
		edit = ActionEdit{Key: key, OriginalStatus: confirmed.Status, OriginalNotes: confirmed.Notes}
	}
	edit.Status = status
	edit.Notes = notes
	edit.rebase(edit.OriginalStatus, edit.OriginalNotes)
	r.edits[key] = edit

	return edit, nil
}

// Get returns the edit for key, or one mirroring the server snapshot when none exists.
func (r *Reconciler) Get(key domain.PairKey) ActionEdit {
	r.mu.Lock()
	defer r.mu.Unlock()

	if edit, ok := r.edits[key]; ok {
		return edit
	}
	confirmed := r.confirmed(key)
	return ActionEdit{
		Key:            key,
		Status:         confirmed.Status,
		Notes:          confirmed.Notes,
		OriginalStatus: confirmed.Status,
		OriginalNotes:  confirmed.Notes,
	}
}

func (r *Reconciler) Dirty(key domain.PairKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.edits[key].Dirty
}

func (r *Reconciler) DirtyKeys() []domain.PairKey {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]domain.PairKey, 0, len(r.edits))
	for key, edit := range r.edits {
		if edit.Dirty {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].From == keys[j].From {
			return keys[i].To < keys[j].To
		}
		return keys[i].From < keys[j].From
	})
	return keys
}

func (r *Reconciler) Discard(key domain.PairKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.edits, key)
}

// Save submits the edit for key. On failure the edit stays dirty. On success the saved
// values become the confirmed ones and the dashboard is reloaded wholesale.
func (r *Reconciler) Save(ctx context.Context, key domain.PairKey) error {
	r.mu.Lock()
	edit, ok := r.edits[key]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("save action %s: %w", key, domain.ErrNoEdit)
	}

	submitted := edit.action()
	if err := r.api.SaveAction(ctx, submitted); err != nil {
		r.logger.WithError(err).WithField("pair", key.String()).Warn("save action failed")
		r.notifier.Show(httpapi.Message(err, saveFailedMessage), true)
		return fmt.Errorf("save action %s: %w", key, err)
	}

	r.mu.Lock()
	if current, ok := r.edits[key]; ok {
		current.rebase(submitted.Status, submitted.Notes)
		r.edits[key] = current
	}
	r.mu.Unlock()

	if _, err := r.dashboard.LoadDashboard(ctx); err != nil {
		r.logger.WithError(err).Debug("refresh dashboard after save")
	} else {
		r.reconcile(submitted)
	}

	r.notifier.Show(savedMessage, false)
	return nil
}

// QuickAction sets status with a generated note and saves immediately.
func (r *Reconciler) QuickAction(ctx context.Context, key domain.PairKey, status domain.ActionStatus) error {
	notes := "Set via dashboard quick action to " + strings.TrimSpace(string(status))
	if _, err := r.Edit(key, status, notes); err != nil {
		return err
	}
	return r.Save(ctx, key)
}

// Rebase compares every edit against the current dashboard snapshot and keeps the
// dirty ones. It is a no-op until the dashboard has loaded.
func (r *Reconciler) Rebase() {
	if r.dashboard.Dashboard().State != cache.StateLoaded {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for key, edit := range r.edits {
		confirmed := r.confirmed(key)
		edit.rebase(confirmed.Status, confirmed.Notes)
		r.edits[key] = edit
	}
}

// reconcile rebases every edit on the freshly loaded snapshot. The saved pair is kept,
// including a newer edit made while the save was in flight. Other pairs' unsaved edits
// are dropped unless preserveUnsaved is set.
func (r *Reconciler) reconcile(saved domain.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, edit := range r.edits {
		if key == saved.Key() && edit.Status == saved.Status && edit.Notes == saved.Notes {
			continue
		}

		confirmed := r.confirmed(key)
		edit.rebase(confirmed.Status, confirmed.Notes)
		if edit.Dirty && key != saved.Key() && !r.preserveUnsaved {
			r.logger.WithField("pair", key.String()).Debug("unsaved edit replaced by refreshed dashboard")
			delete(r.edits, key)
			continue
		}
		r.edits[key] = edit
	}
}

// confirmed is called with r.mu held.
func (r *Reconciler) confirmed(key domain.PairKey) domain.Action {
	action, ok := r.dashboard.Dashboard().Data.ActionFor(key)
	if !ok {
		return domain.Action{FromID: key.From, ToID: key.To, Status: domain.ActionPending}
	}
	return action
}
