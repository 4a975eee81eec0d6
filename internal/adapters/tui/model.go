// Package tui renders the application store as a bubbletea program.
package tui

import (
	"context"

	"github.com/bnema/pot-cli/internal/app"
	"github.com/bnema/pot-cli/internal/domain"
	"github.com/bnema/pot-cli/internal/router"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// changedMsg is sent whenever application state changed outside the Update loop.
type changedMsg struct{}

// doneMsg closes an asynchronous command. Failures were already surfaced as toasts.
type doneMsg struct {
	err error
}

type Model struct {
	app     *app.App
	ctx     context.Context
	styles  styles
	keys    keyMap
	help    help.Model
	spinner spinner.Model

	width    int
	height   int
	showHelp bool

	form      *form
	concierge bool

	attendeeCursor int
	filterOpen     bool
	filterCursor   int
	matchCursor    int
	peerCursor     int
}

func New(ctx context.Context, a *app.App) Model {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return Model{
		app:     a,
		ctx:     ctx,
		styles:  newStyles(),
		keys:    newKeyMap(),
		help:    help.New(),
		spinner: s,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case changedMsg, doneMsg:
		m.clampCursors()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.form != nil {
		return m, m.form.update(msg)
	}
	return m, nil
}

// run executes fn off the Update loop.
func (m Model) run(fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return doneMsg{err: fn(ctx)}
	}
}

func (m *Model) navigate(route router.Route) {
	m.filterOpen = false
	m.app.Router.Navigate(m.ctx, route)
}

// handleKey is the single input dispatcher. An open form captures every key, then
// global bindings apply, then the active route's bindings.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.form != nil {
		return m.handleFormKey(msg)
	}
	if m.filterOpen && m.app.Router.Current() == router.Attendees {
		return m.handleFilterKey(msg)
	}

	current := m.app.Router.Current()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		m.navigate(stepRoute(current, 1))
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.navigate(stepRoute(current, -1))
		return m, nil
	case key.Matches(msg, m.keys.Back):
		m.app.Router.Back(m.ctx)
		return m, nil
	case key.Matches(msg, m.keys.Forward):
		m.app.Router.Forward(m.ctx)
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		m.app.Router.Reload(m.ctx)
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Concierge):
		m.concierge = true
		m.form = conciergeForm()
		return m, nil
	}

	if route, ok := routeForDigit(msg.String()); ok {
		m.navigate(route)
		return m, nil
	}

	switch current {
	case router.Auth:
		return m.handleAuthKey(msg)
	case router.Attendees:
		return m.handleAttendeesKey(msg)
	case router.Dashboard:
		return m.handleDashboardKey(msg)
	case router.Chat:
		return m.handleChatKey(msg)
	case router.NotFound:
		if key.Matches(msg, m.keys.Select) {
			m.navigate(router.Home)
		}
	}
	return m, nil
}

func stepRoute(current router.Route, step int) router.Route {
	routes := router.Routes()
	for i, route := range routes {
		if route == current {
			return routes[(i+step+len(routes))%len(routes)]
		}
	}
	return router.Home
}

func routeForDigit(s string) (router.Route, bool) {
	routes := router.Routes()
	if len(s) != 1 || s[0] < '1' || int(s[0]-'1') >= len(routes) {
		return 0, false
	}
	return routes[s[0]-'1'], true
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	switch msg.Type {
	case tea.KeyEsc:
		if f.kind == formConcierge {
			m.concierge = false
		}
		m.form = nil
		return m, nil
	case tea.KeyEnter:
		if !f.last() {
			return m, f.focusField(f.focus + 1)
		}
		return m.submit(f)
	case tea.KeyTab, tea.KeyDown:
		return m, f.focusField(f.focus + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, f.focusField(f.focus - 1)
	}
	return m, f.update(msg)
}

func (m Model) submit(f *form) (tea.Model, tea.Cmd) {
	m.form = nil
	a := m.app

	switch f.kind {
	case formLogin:
		email, password := f.value("Email"), f.raw("Password")
		return m, m.run(func(ctx context.Context) error { return a.Auth.Login(ctx, email, password) })
	case formRegister:
		reg := f.registration()
		return m, m.run(func(ctx context.Context) error { return a.Auth.Register(ctx, reg) })
	case formProfile:
		update := f.profileUpdate()
		return m, m.run(func(ctx context.Context) error { return a.Auth.UpdateProfile(ctx, update) })
	case formSearch:
		filter := a.Attendees.Filter()
		filter.Search = f.value("Search")
		m.attendeeCursor = 0
		return m, m.run(func(ctx context.Context) error {
			_, err := a.Attendees.SetFilter(ctx, filter)
			return err
		})
	case formNotes:
		edit := a.Reconciler.Get(f.target)
		if _, err := a.Dashboard.Edit(f.target, edit.Status, f.value("Notes")); err != nil {
			a.Notify.Show(err.Error(), true)
		}
		return m, nil
	case formCompose:
		body := f.raw("Message")
		return m, m.run(func(ctx context.Context) error { return a.Chat.Send(ctx, body) })
	case formConcierge:
		question := f.value("Ask")
		profile := a.Dashboard.SelectedProfile()
		m.form = conciergeForm()
		return m, m.run(func(ctx context.Context) error {
			_, err := a.Concierge.Ask(ctx, question, profile)
			return err
		})
	}
	return m, nil
}

func (m Model) handleAuthKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := m.app
	signedIn := a.Session.Current().Authenticated()

	switch {
	case key.Matches(msg, m.keys.Login) && !signedIn:
		m.form = loginForm()
	case key.Matches(msg, m.keys.Register) && !signedIn:
		m.form = registerForm()
	case key.Matches(msg, m.keys.Profile) && signedIn:
		m.form = profileForm(a.Auth.ProfileDraft())
	case key.Matches(msg, m.keys.Logout) && signedIn:
		return m, m.run(func(ctx context.Context) error {
			a.Auth.Logout(ctx)
			return nil
		})
	}
	return m, nil
}

type filterOption struct {
	role      domain.Role
	connector string
}

func filterOptions() []filterOption {
	options := make([]filterOption, 0, len(domain.Roles())+len(app.Connectors()))
	for _, role := range domain.Roles() {
		options = append(options, filterOption{role: role})
	}
	for _, connector := range app.Connectors() {
		options = append(options, filterOption{connector: connector})
	}
	return options
}

func (m Model) handleAttendeesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := m.app
	directory, _ := a.Cache.Attendees()
	attendees := directory.Data.Attendees

	switch {
	case key.Matches(msg, m.keys.Up):
		m.attendeeCursor = max(0, m.attendeeCursor-1)
	case key.Matches(msg, m.keys.Down):
		m.attendeeCursor = min(max(0, len(attendees)-1), m.attendeeCursor+1)
	case key.Matches(msg, m.keys.Search):
		m.form = searchForm(a.Attendees.Filter().Search)
	case key.Matches(msg, m.keys.Filter):
		m.filterOpen = true
	case key.Matches(msg, m.keys.Refresh):
		if m.attendeeCursor < len(attendees) {
			profile := attendees[m.attendeeCursor].ProfileID
			return m, m.run(func(ctx context.Context) error { return a.Attendees.RefreshEnrichment(ctx, profile) })
		}
	case key.Matches(msg, m.keys.RefreshAll):
		return m, m.run(func(ctx context.Context) error { return a.Attendees.RefreshEnrichment(ctx, "") })
	}
	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := m.app
	options := filterOptions()

	switch {
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Filter), key.Matches(msg, m.keys.Select):
		m.filterOpen = false
	case key.Matches(msg, m.keys.Up):
		m.filterCursor = max(0, m.filterCursor-1)
	case key.Matches(msg, m.keys.Down):
		m.filterCursor = min(len(options)-1, m.filterCursor+1)
	case key.Matches(msg, m.keys.Toggle):
		option := options[m.filterCursor]
		if option.connector != "" {
			a.Attendees.ToggleConnector(option.connector)
			return m, nil
		}
		filter := a.Attendees.ToggleRole(option.role)
		m.attendeeCursor = 0
		return m, m.run(func(ctx context.Context) error {
			_, err := a.Attendees.SetFilter(ctx, filter)
			return err
		})
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

// selectedMatch resolves the cursor to the pair it points at.
func (m Model) selectedMatch() (app.MatchRow, bool) {
	rows := m.app.Dashboard.Matches()
	if m.matchCursor < 0 || m.matchCursor >= len(rows) {
		return app.MatchRow{}, false
	}
	return rows[m.matchCursor], true
}

func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := m.app

	switch {
	case key.Matches(msg, m.keys.Up):
		m.matchCursor = max(0, m.matchCursor-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.matchCursor = min(max(0, len(a.Dashboard.Matches())-1), m.matchCursor+1)
		return m, nil
	case key.Matches(msg, m.keys.NextProfile):
		m.stepProfile(1)
		return m, nil
	case key.Matches(msg, m.keys.PrevProfile):
		m.stepProfile(-1)
		return m, nil
	}

	row, ok := m.selectedMatch()
	if !ok {
		return m, nil
	}
	pair := row.Key

	switch {
	case key.Matches(msg, m.keys.Select):
		return m, m.run(func(ctx context.Context) error {
			_, err := a.Dashboard.SelectPair(ctx, pair)
			return err
		})
	case key.Matches(msg, m.keys.Cycle):
		if _, err := a.Dashboard.CycleStatus(pair); err != nil {
			a.Notify.Show(err.Error(), true)
		}
	case key.Matches(msg, m.keys.Notes):
		m.form = notesForm(pair, row.Edit.Notes)
	case key.Matches(msg, m.keys.Save):
		return m, m.run(func(ctx context.Context) error { return a.Dashboard.Save(ctx, pair) })
	case key.Matches(msg, m.keys.Approve):
		return m, m.run(func(ctx context.Context) error { return a.Dashboard.QuickAction(ctx, pair, domain.ActionApproved) })
	case key.Matches(msg, m.keys.Reject):
		return m, m.run(func(ctx context.Context) error { return a.Dashboard.QuickAction(ctx, pair, domain.ActionRejected) })
	case key.Matches(msg, m.keys.Discard):
		a.Reconciler.Discard(pair)
	}
	return m, nil
}

func (m *Model) stepProfile(step int) {
	ids := m.app.Dashboard.ProfileIDs()
	if len(ids) == 0 {
		return
	}
	current := m.app.Dashboard.SelectedProfile()
	next := 0
	for i, id := range ids {
		if id == current {
			next = (i + step + len(ids)) % len(ids)
			break
		}
	}
	m.app.Dashboard.SelectProfile(ids[next])
	m.matchCursor = 0
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := m.app
	if a.Chat.RequiresAuth() {
		if key.Matches(msg, m.keys.Select) {
			m.navigate(router.Auth)
			m.form = loginForm()
		}
		return m, nil
	}

	peers := a.Cache.Peers().Data
	switch {
	case key.Matches(msg, m.keys.Up):
		m.peerCursor = max(0, m.peerCursor-1)
	case key.Matches(msg, m.keys.Down):
		m.peerCursor = min(max(0, len(peers)-1), m.peerCursor+1)
	case key.Matches(msg, m.keys.Select):
		if m.peerCursor < len(peers) {
			peer := peers[m.peerCursor].UserID
			return m, m.run(func(ctx context.Context) error { return a.Chat.SelectPeer(ctx, peer) })
		}
	case key.Matches(msg, m.keys.Compose):
		m.form = composeForm(sanitize(m.activePeerName()))
	}
	return m, nil
}

func (m Model) activePeerName() string {
	active := m.app.Chat.ActivePeer()
	for _, peer := range m.app.Cache.Peers().Data {
		if peer.UserID == active {
			return peer.FullName
		}
	}
	return string(active)
}

// clampCursors keeps list cursors inside lists that shrank after a refresh.
func (m *Model) clampCursors() {
	directory, _ := m.app.Cache.Attendees()
	m.attendeeCursor = clampIndex(m.attendeeCursor, len(directory.Data.Attendees))
	m.matchCursor = clampIndex(m.matchCursor, len(m.app.Dashboard.Matches()))
	m.peerCursor = clampIndex(m.peerCursor, len(m.app.Cache.Peers().Data))
}

func clampIndex(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
