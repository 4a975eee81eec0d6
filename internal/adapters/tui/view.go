package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bnema/pot-cli/internal/cache"
	"github.com/bnema/pot-cli/internal/domain"
	"github.com/bnema/pot-cli/internal/router"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

const (
	barWidth    = 12
	nameWidth   = 24
	bodyWidth   = 72
	peerWidth   = 28
	maxPairs    = 5
	maxTurns    = 6
	maxMessages = 14
)

func (m Model) View() string {
	s := m.styles
	current := m.app.Router.Current()

	sections := []string{m.renderNav(current), m.renderBody(current)}
	if m.concierge {
		sections = append(sections, s.section.Render(m.renderConcierge()))
	}
	if m.form != nil {
		sections = append(sections, s.section.Render(m.renderForm(m.form)))
	}
	if toast, ok := m.app.Notify.Current(); ok {
		style := s.toast
		if toast.IsError {
			style = s.toastError
		}
		sections = append(sections, s.section.Render(style.Render(sanitize(toast.Message))))
	}
	sections = append(sections, s.section.Render(m.renderHelp(current)))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderNav(current router.Route) string {
	s := m.styles
	tabs := make([]string, 0, len(router.Routes()))
	for i, route := range router.Routes() {
		label := fmt.Sprintf("%d %s", i+1, route.Title())
		if route == current {
			tabs = append(tabs, s.navActive.Render(label))
		} else {
			tabs = append(tabs, s.nav.Render(label))
		}
	}

	who := s.empty.Render("guest")
	if session := m.app.Session.Current(); session.Authenticated() {
		who = s.detail.Render("signed in as " + sanitize(session.User.FullName))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		s.title.Render("Proof of Talk"),
		lipgloss.JoinHorizontal(lipgloss.Top, append(tabs, "  ", who)...),
	)
}

func (m Model) renderBody(current router.Route) string {
	switch current {
	case router.Home:
		return m.renderHome()
	case router.Auth:
		return m.renderAuth()
	case router.Attendees:
		return m.renderAttendees()
	case router.Dashboard:
		return m.renderDashboard()
	case router.Chat:
		return m.renderChat()
	default:
		return m.styles.section.Render(lipgloss.JoinVertical(lipgloss.Left,
			m.styles.warning.Render("Page not found"),
			m.styles.empty.Render("Press enter to go home."),
		))
	}
}

// stateLine describes a result that is not simply loaded.
func stateLine[T any](m Model, result cache.Result[T], what string) string {
	switch result.State {
	case cache.StateIdle:
		return m.styles.empty.Render("Nothing loaded yet.")
	case cache.StateLoading:
		return m.spinner.View() + " " + m.styles.header.Render("Loading "+what+"...")
	case cache.StateFailed:
		return m.styles.warning.Render("Could not load " + what + "; showing the last known data.")
	default:
		return ""
	}
}

func (m Model) renderHome() string {
	s := m.styles
	home := m.app.Home
	return s.section.Render(lipgloss.JoinVertical(lipgloss.Left,
		s.name.Render(home.Headline()),
		s.detail.Render(home.Lead()),
		s.section.Render(s.empty.Render("Browse attendees (3), review intros (4) or message your matches (5).")),
	))
}

func (m Model) renderAuth() string {
	s := m.styles
	current := m.app.Session.Current()
	if !current.Authenticated() {
		return s.section.Render(lipgloss.JoinVertical(lipgloss.Left,
			s.detail.Render("You are not signed in."),
			s.empty.Render("Press l to sign in or g to create an account."),
		))
	}

	user := current.User
	lines := []string{
		s.name.Render(sanitize(user.FullName)),
		s.detail.Render(sanitize(joinNonEmpty(" @ ", user.Title, user.Organization))),
		s.meta.Render(sanitize(joinNonEmpty(" · ", user.Email, string(user.Role)))),
	}
	if user.Bio != "" {
		lines = append(lines, s.detail.Render(clip(user.Bio, bodyWidth)))
	}
	if len(user.Focus) > 0 {
		lines = append(lines, s.label.Render("focus: ")+s.detail.Render(sanitize(strings.Join(user.Focus, ", "))))
	}
	if len(user.LookingFor) > 0 {
		lines = append(lines, s.label.Render("looking for: ")+s.detail.Render(sanitize(strings.Join(user.LookingFor, ", "))))
	}
	lines = append(lines, s.section.Render(s.empty.Render("Press p to edit your profile or o to sign out.")))
	return s.section.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) renderAttendees() string {
	s := m.styles
	result, filter := m.app.Cache.Attendees()
	directory := result.Data

	summary := fmt.Sprintf("%d attendees", directory.Count)
	if filter.Search != "" {
		summary += fmt.Sprintf(" matching %q", sanitize(filter.Search))
	}
	if len(filter.Roles) > 0 {
		summary += " · roles: " + sanitize(filter.RolesCSV())
	}
	lines := []string{s.header.Render(summary)}
	if line := stateLine(m, result, "attendees"); line != "" && result.State != cache.StateLoaded {
		lines = append(lines, line)
	}

	if len(directory.Attendees) == 0 && result.State == cache.StateLoaded {
		lines = append(lines, s.empty.Render("No attendees match the current filters."))
	}
	for i, attendee := range directory.Attendees {
		confidence := m.app.Attendees.Confidence(attendee)
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			m.cursorMark(i == m.attendeeCursor),
			s.name.Width(nameWidth).Render(clip(attendee.Name, nameWidth-1)),
			s.meta.Width(10).Render(sanitize(string(attendee.Role))),
			renderBar(confidence, barWidth, s),
			" ",
			lipgloss.NewStyle().Foreground(scoreColor(confidence)).Render(fmt.Sprintf("%.2f", confidence)),
		)
		lines = append(lines, row)
		if i == m.attendeeCursor {
			lines = append(lines, m.renderAttendeeDetail(attendee))
		}
	}

	if m.filterOpen {
		lines = append(lines, s.section.Render(m.renderFilterPanel(filter)))
	}
	return s.section.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) renderAttendeeDetail(attendee domain.Attendee) string {
	s := m.styles
	lines := []string{s.detail.Render("    " + clip(joinNonEmpty(" @ ", attendee.Title, attendee.Organization), bodyWidth))}
	if attendee.Bio != "" {
		lines = append(lines, s.meta.Render("    "+clip(attendee.Bio, bodyWidth)))
	}
	if tags := attendee.Enrichment.InferredTags; len(tags) > 0 {
		lines = append(lines, s.label.Render("    tags: ")+s.meta.Render(clip(strings.Join(tags, ", "), bodyWidth)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderFilterPanel(filter domain.AttendeeFilter) string {
	s := m.styles
	active := m.app.Attendees.ActiveConnectors()
	lines := []string{s.title.Render("Filters")}
	for i, option := range filterOptions() {
		var checked bool
		var label string
		if option.connector != "" {
			checked = slices.Contains(active, option.connector)
			label = "connector " + option.connector
		} else {
			checked = slices.Contains(filter.Roles, option.role)
			label = "role " + string(option.role)
		}
		box := "[ ]"
		if checked {
			box = "[x]"
		}
		lines = append(lines, m.cursorMark(i == m.filterCursor)+s.detail.Render(box+" "+label))
	}
	return s.panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) renderDashboard() string {
	s := m.styles
	result := m.app.Cache.Dashboard()
	snapshot := result.Data
	overview := snapshot.Overview

	lines := []string{s.header.Render(fmt.Sprintf(
		"attendees: %d · recommended intros: %d · actioned: %d · risk low/medium/high: %d/%d/%d",
		overview.AttendeeCount, overview.RecommendedIntroCount, overview.ActionedIntroCount,
		overview.RiskDistribution.Low, overview.RiskDistribution.Medium, overview.RiskDistribution.High,
	))}
	if result.State != cache.StateLoaded {
		lines = append(lines, stateLine(m, result, "dashboard"))
	}

	lines = append(lines, s.section.Render(m.renderPairs("Top intros", snapshot.TopIntroPairs)))
	lines = append(lines, s.section.Render(m.renderPairs("Non-obvious intros", snapshot.NonObviousPairs)))
	lines = append(lines, s.section.Render(m.renderSegments()))
	lines = append(lines, s.section.Render(m.renderMatches()))
	if drill := m.renderDrilldown(); drill != "" {
		lines = append(lines, s.section.Render(drill))
	}
	return s.section.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) renderPairs(title string, pairs []domain.Pair) string {
	s := m.styles
	lines := []string{s.title.Render(title)}
	if len(pairs) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(lines, s.empty.Render("None yet."))...)
	}
	for _, pair := range pairs[:min(len(pairs), maxPairs)] {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			s.detail.Width(2*nameWidth+3).Render(clip(pair.FromName, nameWidth)+" → "+clip(pair.ToName, nameWidth)),
			renderBar(pair.Score, barWidth, s),
			s.meta.Render(fmt.Sprintf(" %.2f conf %.2f ", pair.Score, pair.Confidence)),
			riskStyle(string(pair.RiskLevel), s).Render(string(pair.RiskLevel)),
			s.meta.Render(" "+string(actionStatus(pair.Action))),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderSegments() string {
	s := m.styles
	segments := m.app.Cache.Segments().Data

	roles := make([]string, 0, len(segments.Roles))
	for role := range segments.Roles {
		roles = append(roles, role)
	}
	slices.Sort(roles)
	parts := make([]string, 0, len(roles))
	for _, role := range roles {
		parts = append(parts, fmt.Sprintf("%s %d", sanitize(role), segments.Roles[role]))
	}
	tags := make([]string, 0, len(segments.TopInterestTags))
	for _, tag := range segments.TopInterestTags {
		tags = append(tags, fmt.Sprintf("%s (%d)", sanitize(tag.Tag), tag.Count))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		s.title.Render("Segments"),
		s.label.Render("roles: ")+s.detail.Render(orNone(strings.Join(parts, " · "))),
		s.label.Render("interests: ")+s.detail.Render(orNone(strings.Join(tags, ", "))),
	)
}

func (m Model) profileName(id domain.ProfileID) string {
	for _, profile := range m.app.Cache.Profiles().Data {
		if profile.ID == id {
			return profile.Name
		}
	}
	return string(id)
}

func (m Model) renderMatches() string {
	s := m.styles
	selected := m.app.Dashboard.SelectedProfile()
	lines := []string{s.title.Render("Matches for " + clip(m.profileName(selected), nameWidth))}

	rows := m.app.Dashboard.Matches()
	if len(rows) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(lines, s.empty.Render("No ranked matches."))...)
	}
	for i, row := range rows {
		status := string(row.Edit.Status)
		statusStyle := s.meta
		if row.Edit.Dirty {
			status += "*"
			statusStyle = s.dirty
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			m.cursorMark(i == m.matchCursor),
			s.meta.Render(fmt.Sprintf("#%d ", row.Match.PriorityRank)),
			s.name.Width(nameWidth).Render(clip(row.Match.TargetName, nameWidth-1)),
			renderBar(row.Match.Score, barWidth, s),
			s.meta.Render(fmt.Sprintf(" %.2f ", row.Match.Score)),
			riskStyle(string(row.Match.RiskLevel), s).Render(fmt.Sprintf("%-7s", row.Match.RiskLevel)),
			statusStyle.Render(status),
		))
		if i == m.matchCursor {
			if row.Edit.Notes != "" {
				lines = append(lines, s.label.Render("    notes: ")+s.detail.Render(clip(row.Edit.Notes, bodyWidth)))
			}
			if row.Match.Rationale != "" {
				lines = append(lines, s.meta.Render("    "+clip(row.Match.Rationale, bodyWidth)))
			}
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderDrilldown() string {
	s := m.styles
	result, key := m.app.Cache.Drilldown()
	if !key.Valid() || result.State == cache.StateIdle {
		return ""
	}
	if result.State != cache.StateLoaded {
		return stateLine(m, result, "drilldown")
	}

	drill := result.Data
	profile := func(p domain.ProfileDetail) string {
		return lipgloss.JoinVertical(lipgloss.Left,
			s.name.Render(clip(p.Name, nameWidth)),
			s.detail.Render(clip(joinNonEmpty(" @ ", p.Title, p.Organization), peerWidth*2)),
			s.meta.Render(clip(strings.Join(p.InferredTags, ", "), peerWidth*2)),
		)
	}
	scores := fmt.Sprintf("fit %.2f · complementarity %.2f · readiness %.2f · confidence %.2f",
		drill.Match.FitScore, drill.Match.ComplementarityScore, drill.Match.ReadinessScore, drill.Match.Confidence)

	lines := []string{
		s.title.Render("Drilldown " + sanitize(key.String())),
		lipgloss.JoinHorizontal(lipgloss.Top, profile(drill.FromProfile), "   ", profile(drill.ToProfile)),
		s.detail.Render(scores),
	}
	if drill.Match.Rationale != "" {
		lines = append(lines, s.detail.Render(clip(drill.Match.Rationale, bodyWidth)))
	}
	for _, reason := range drill.Match.RiskReasons {
		lines = append(lines, s.warning.Render("! "+clip(reason, bodyWidth)))
	}
	return s.panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) renderChat() string {
	s := m.styles
	if m.app.Chat.RequiresAuth() {
		return s.section.Render(lipgloss.JoinVertical(lipgloss.Left,
			s.warning.Render("Sign in to message your matches."),
			s.empty.Render("Press enter to open the sign-in form."),
		))
	}

	peers := m.app.Cache.Peers()
	active := m.app.Chat.ActivePeer()
	peerLines := []string{s.title.Render("Peers")}
	if peers.State != cache.StateLoaded {
		peerLines = append(peerLines, stateLine(m, peers, "peers"))
	}
	for i, peer := range peers.Data {
		name := clip(peer.FullName, peerWidth-4)
		if peer.UserID == active {
			name = s.name.Render(name)
		} else {
			name = s.detail.Render(name)
		}
		peerLines = append(peerLines, m.cursorMark(i == m.peerCursor)+name)
		if peer.LatestMessage != "" {
			peerLines = append(peerLines, s.meta.Render("  "+clip(peer.LatestMessage, peerWidth-4)))
		}
	}

	conversation := []string{s.title.Render("Conversation")}
	if active == "" {
		conversation = append(conversation, s.empty.Render("Select a peer with enter."))
	} else {
		messages := m.app.Cache.Messages(active)
		if messages.State != cache.StateLoaded {
			conversation = append(conversation, stateLine(m, messages, "messages"))
		}
		data := messages.Data
		if len(data) > maxMessages {
			data = data[len(data)-maxMessages:]
		}
		for _, message := range data {
			if m.app.Chat.Mine(message) {
				conversation = append(conversation, s.mine.Render("you: "+clip(message.Body, bodyWidth-6)))
			} else {
				conversation = append(conversation, s.theirs.Render("them: "+clip(message.Body, bodyWidth-6)))
			}
		}
		if len(data) == 0 && messages.State == cache.StateLoaded {
			conversation = append(conversation, s.empty.Render("No messages yet. Press m to write one."))
		}
	}

	return s.section.Render(lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(peerWidth).Render(lipgloss.JoinVertical(lipgloss.Left, peerLines...)),
		" ",
		lipgloss.JoinVertical(lipgloss.Left, conversation...),
	))
}

func (m Model) renderConcierge() string {
	s := m.styles
	lines := []string{s.title.Render("Concierge")}
	history := m.app.Concierge.History()
	if len(history) > maxTurns {
		history = history[len(history)-maxTurns:]
	}
	for _, turn := range history {
		if turn.Role == domain.ConciergeUser {
			lines = append(lines, s.mine.Render("you: "+clip(turn.Content, bodyWidth)))
		} else {
			lines = append(lines, s.theirs.Render("concierge: "+clip(turn.Content, bodyWidth)))
		}
	}
	if m.app.Concierge.Pending() {
		lines = append(lines, m.spinner.View()+" "+s.header.Render("Thinking..."))
	}
	if len(history) == 0 && !m.app.Concierge.Pending() {
		lines = append(lines, s.empty.Render("Ask for intro suggestions, e.g. 'top 3 intros for custody'."))
	}
	return s.panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) renderForm(f *form) string {
	s := m.styles
	lines := []string{s.title.Render(sanitize(f.title))}
	for i, fld := range f.fields {
		lines = append(lines, m.cursorMark(i == f.focus)+s.label.Width(14).Render(fld.label)+fld.input.View())
	}
	lines = append(lines, s.empty.Render("enter next/submit · tab switch field · esc cancel"))
	return s.panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) renderHelp(current router.Route) string {
	bindings := []key.Binding{m.keys.Next, m.keys.Back, m.keys.Forward, m.keys.Reload, m.keys.Concierge, m.keys.Help, m.keys.Quit}
	if m.showHelp {
		bindings = append(m.routeBindings(current), bindings...)
	}
	return m.help.ShortHelpView(bindings)
}

func (m Model) routeBindings(current router.Route) []key.Binding {
	k := m.keys
	switch current {
	case router.Auth:
		if m.app.Session.Current().Authenticated() {
			return []key.Binding{k.Profile, k.Logout}
		}
		return []key.Binding{k.Login, k.Register}
	case router.Attendees:
		return []key.Binding{k.Up, k.Down, k.Search, k.Filter, k.Toggle, k.Refresh, k.RefreshAll}
	case router.Dashboard:
		return []key.Binding{k.Up, k.Down, k.NextProfile, k.PrevProfile, k.Select, k.Cycle, k.Notes, k.Save, k.Approve, k.Reject, k.Discard}
	case router.Chat:
		return []key.Binding{k.Up, k.Down, k.Select, k.Compose}
	default:
		return nil
	}
}

func (m Model) cursorMark(selected bool) string {
	if selected {
		return m.styles.cursor.Render("> ")
	}
	return "  "
}

func actionStatus(action domain.Action) domain.ActionStatus {
	if action.Status == "" {
		return domain.ActionPending
	}
	return action.Status
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, sep)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
