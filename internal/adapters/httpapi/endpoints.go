package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/bnema/pot-cli/internal/domain"
	"github.com/bnema/pot-cli/internal/ports"
)

var (
	_ ports.AuthAPI      = (*Client)(nil)
	_ ports.DashboardAPI = (*Client)(nil)
	_ ports.ActionAPI    = (*Client)(nil)
	_ ports.DirectoryAPI = (*Client)(nil)
	_ ports.ChatAPI      = (*Client)(nil)
	_ ports.ConciergeAPI = (*Client)(nil)
)

func (c *Client) Register(ctx context.Context, reg domain.Registration) (string, domain.User, error) {
	body := registerRequest{
		profilePayload: toProfilePayload(reg.Profile),
		Email:          strings.TrimSpace(reg.Email),
		Password:       reg.Password,
	}
	return c.authenticate(ctx, "/api/auth/register", body)
}

func (c *Client) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	body := loginRequest{Email: strings.TrimSpace(email), Password: password}
	return c.authenticate(ctx, "/api/auth/login", body)
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (string, domain.User, error) {
	req := request{method: http.MethodPost, path: path, body: body}
	var resp authResponse
	if err := c.do(ctx, req, &resp); err != nil {
		return "", domain.User{}, err
	}
	if strings.TrimSpace(resp.Token) == "" || resp.User == nil || resp.User.ID == "" {
		return "", domain.User{}, &Error{Kind: KindMalformed, Op: req.op(), Detail: "token or user missing"}
	}

	return resp.Token, fromUserWire(*resp.User), nil
}

// Me validates token against the server without touching the session.
func (c *Client) Me(ctx context.Context, token string) (domain.User, error) {
	if token == "" {
		return domain.User{}, &Error{Kind: KindUnauthenticated, Op: "GET /api/auth/me", Detail: "sign in required"}
	}
	req := request{method: http.MethodGet, path: "/api/auth/me", privileged: true, token: token}
	return c.userRequest(ctx, req)
}

func (c *Client) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.User, error) {
	req := request{
		method:     http.MethodPut,
		path:       "/api/profile/me",
		body:       toProfilePayload(update.Profile),
		privileged: true,
	}
	return c.userRequest(ctx, req)
}

func (c *Client) userRequest(ctx context.Context, req request) (domain.User, error) {
	var resp userResponse
	if err := c.do(ctx, req, &resp); err != nil {
		return domain.User{}, err
	}
	if resp.User == nil || resp.User.ID == "" {
		return domain.User{}, &Error{Kind: KindMalformed, Op: req.op(), Detail: "user missing"}
	}
	return fromUserWire(*resp.User), nil
}

func (c *Client) Profiles(ctx context.Context) ([]domain.ProfileSummary, error) {
	var resp profilesWire
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/profiles"}, &resp); err != nil {
		return nil, err
	}

	out := make([]domain.ProfileSummary, 0, len(resp.Profiles))
	for _, profile := range resp.Profiles {
		out = append(out, domain.ProfileSummary{ID: domain.ProfileID(profile.ID), Name: profile.Name})
	}
	return out, nil
}

func (c *Client) Dashboard(ctx context.Context) (domain.DashboardSnapshot, error) {
	var resp dashboardWire
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/dashboard"}, &resp); err != nil {
		return domain.DashboardSnapshot{}, err
	}
	return fromDashboardWire(resp), nil
}

func (c *Client) Segments(ctx context.Context) (domain.Segments, error) {
	var resp segmentsWire
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/dashboard/segments"}, &resp); err != nil {
		return domain.Segments{}, err
	}

	segments := domain.Segments{Roles: resp.Roles}
	if segments.Roles == nil {
		segments.Roles = map[string]int{}
	}
	for _, tag := range resp.TopInterestTags {
		segments.TopInterestTags = append(segments.TopInterestTags, domain.TagCount{Tag: tag.Tag, Count: tag.Count})
	}
	return segments, nil
}

func (c *Client) Drilldown(ctx context.Context, key domain.PairKey) (domain.Drilldown, error) {
	query := url.Values{}
	query.Set("from_id", string(key.From))
	query.Set("to_id", string(key.To))

	req := request{method: http.MethodGet, path: "/api/dashboard/drilldown", query: query}
	var resp drilldownWire
	if err := c.do(ctx, req, &resp); err != nil {
		return domain.Drilldown{}, err
	}
	if resp.Match == nil {
		return domain.Drilldown{}, &Error{Kind: KindMalformed, Op: req.op(), Detail: "match missing"}
	}

	return domain.Drilldown{
		Match:       fromMatchWire(string(key.From), *resp.Match),
		FromProfile: fromProfileDetailWire(resp.FromProfile),
		ToProfile:   fromProfileDetailWire(resp.ToProfile),
	}, nil
}

// SaveAction records an organizer decision. Signed-in callers go through the admin
// endpoint first; any failure there falls back to the public endpoint.
func (c *Client) SaveAction(ctx context.Context, action domain.Action) error {
	status := action.Status
	if status == "" {
		status = domain.ActionPending
	}
	body := actionWire{
		FromID: string(action.FromID),
		ToID:   string(action.ToID),
		Status: string(status),
		Notes:  action.Notes,
	}

	if c.tokens != nil && c.tokens.Token() != "" {
		adminErr := c.do(ctx, request{method: http.MethodPost, path: "/api/admin/actions", body: body, privileged: true}, nil)
		if adminErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return adminErr
		}
		c.logger.WithError(adminErr).Debug("admin action failed, falling back to public endpoint")
	}

	return c.do(ctx, request{method: http.MethodPost, path: "/api/actions", body: body}, nil)
}

func (c *Client) Attendees(ctx context.Context, filter domain.AttendeeFilter) (domain.AttendeeDirectory, error) {
	filter = filter.Normalize()
	query := url.Values{}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if len(filter.Roles) > 0 {
		query.Set("roles", filter.RolesCSV())
	}

	var resp attendeesWire
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/attendees", query: query}, &resp); err != nil {
		return domain.AttendeeDirectory{}, err
	}

	directory := domain.AttendeeDirectory{
		Attendees: make([]domain.Attendee, 0, len(resp.Attendees)),
		Count:     resp.Count,
	}
	for _, attendee := range resp.Attendees {
		directory.Attendees = append(directory.Attendees, fromAttendeeWire(attendee))
	}
	if directory.Count == 0 {
		directory.Count = len(directory.Attendees)
	}
	return directory, nil
}

func (c *Client) Enrichment(ctx context.Context) ([]domain.EnrichmentRecord, error) {
	var resp enrichmentWire
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/enrichment"}, &resp); err != nil {
		return nil, err
	}

	records := make([]domain.EnrichmentRecord, 0, len(resp.Enrichment))
	for _, record := range resp.Enrichment {
		records = append(records, domain.EnrichmentRecord{
			ProfileID:        domain.ProfileID(record.ProfileID),
			SourceConfidence: record.SourceConfidence,
		})
	}
	domain.SortEnrichment(records)
	return records, nil
}

func (c *Client) RefreshEnrichment(ctx context.Context, refresh domain.EnrichmentRefresh) error {
	connectors := refresh.Connectors
	if connectors == nil {
		connectors = []string{}
	}
	body := enrichmentRefreshWire{
		ProfileID:   string(refresh.ProfileID),
		LiveEnabled: refresh.LiveEnabled,
		Connectors:  connectors,
	}
	return c.do(ctx, request{method: http.MethodPost, path: "/api/enrichment/refresh", body: body}, nil)
}

func (c *Client) Peers(ctx context.Context) ([]domain.Peer, error) {
	var resp peersWire
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/chat/peers", privileged: true}, &resp); err != nil {
		return nil, err
	}

	peers := make([]domain.Peer, 0, len(resp.Peers))
	for _, peer := range resp.Peers {
		peers = append(peers, fromPeerWire(peer))
	}
	return peers, nil
}

func (c *Client) Messages(ctx context.Context, peer domain.UserID) ([]domain.ChatMessage, error) {
	if peer == "" {
		return nil, errors.New("peer id is required")
	}

	req := request{
		method:     http.MethodGet,
		path:       "/api/chat/messages/" + url.PathEscape(string(peer)),
		privileged: true,
	}
	var resp messagesWire
	if err := c.do(ctx, req, &resp); err != nil {
		return nil, err
	}

	messages := make([]domain.ChatMessage, 0, len(resp.Messages))
	for _, message := range resp.Messages {
		messages = append(messages, fromMessageWire(message))
	}
	domain.SortMessages(messages)
	return messages, nil
}

func (c *Client) SendMessage(ctx context.Context, to domain.UserID, body string) error {
	body = strings.TrimSpace(body)
	if to == "" || body == "" {
		return errors.New("recipient and message body are required")
	}

	req := request{
		method:     http.MethodPost,
		path:       "/api/chat/messages",
		body:       sendMessageWire{ToUserID: string(to), Body: body},
		privileged: true,
	}
	return c.do(ctx, req, nil)
}

func (c *Client) Concierge(ctx context.Context, message string, profile domain.ProfileID, history []domain.ConciergeTurn) (string, error) {
	turns := make([]conciergeTurnWire, 0, len(history))
	for _, turn := range history {
		turns = append(turns, conciergeTurnWire{Role: string(turn.Role), Content: turn.Content})
	}

	req := request{
		method:     http.MethodPost,
		path:       "/api/concierge/chat",
		body:       conciergeRequest{Message: message, ProfileID: string(profile), History: turns},
		privileged: true,
	}
	var resp conciergeResponse
	if err := c.do(ctx, req, &resp); err != nil {
		return "", err
	}
	return resp.Assistant, nil
}
