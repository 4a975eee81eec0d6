package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bnema/pot-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithHTTPClient(server.Client())}, opts...)
	client, err := New(server.URL+"/", opts...)
	require.NoError(t, err)
	return client
}

func TestNewRejectsInvalidBaseURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "   ", "ftp://example.com", "http://"} {
		_, err := New(raw)
		assert.Error(t, err, raw)
	}
}

func TestPrivilegedCallWithoutTokenSendsNothing(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}), WithTokenSource(staticToken("")))

	_, err := client.Peers(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = client.Messages(context.Background(), "u2")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	assert.ErrorIs(t, client.SendMessage(context.Background(), "u2", "hi"), domain.ErrUnauthenticated)
	assert.Equal(t, int32(0), hits.Load())
}

func TestPrivilegedCallAttachesBearerAndRequestHeaders(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat/peers", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		_, _ = w.Write([]byte(`{"peers":[{"user_id":"u2","full_name":"Marcus Chen","latest_message":"hello"}]}`))
	}), WithTokenSource(staticToken("tok-1")))

	peers, err := client.Peers(context.Background())
	require.NoError(t, err)
	require.Len(t, peers, 1)
	assert.Equal(t, domain.UserID("u2"), peers[0].UserID)
	assert.Equal(t, "hello", peers[0].LatestMessage)
}

func TestPublicCallOmitsAuthorization(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"profiles":[{"id":"p1","name":"Amara Okafor"}]}`))
	}), WithTokenSource(staticToken("tok-1")))

	profiles, err := client.Profiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.ProfileSummary{{ID: "p1", Name: "Amara Okafor"}}, profiles)
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		sentinel   error
		wantDetail string
	}{
		{name: "server detail string", status: http.StatusBadRequest, body: `{"detail":"Email already registered"}`, sentinel: domain.ErrServer, wantDetail: "Email already registered"},
		{name: "validation list", status: http.StatusUnprocessableEntity, body: `{"detail":[{"msg":"field required"}]}`, sentinel: domain.ErrServer, wantDetail: "field required"},
		{name: "error key", status: http.StatusInternalServerError, body: `{"error":"boom"}`, sentinel: domain.ErrServer, wantDetail: "boom"},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"detail":"Invalid credentials"}`, sentinel: domain.ErrUnauthenticated, wantDetail: "Invalid credentials"},
		{name: "forbidden", status: http.StatusForbidden, body: ``, sentinel: domain.ErrUnauthenticated},
		{name: "malformed body", status: http.StatusOK, body: `{"token":`, sentinel: domain.ErrMalformedResponse},
		{name: "missing token", status: http.StatusOK, body: `{"user":{"id":"u1"}}`, sentinel: domain.ErrMalformedResponse, wantDetail: "token or user missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))

			_, _, err := client.Login(context.Background(), "a@x.com", "pw")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.wantDetail, Message(err, ""))
		})
	}
}

func TestNetworkFailureIsClassified(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client, err := New(baseURL)
	require.NoError(t, err)

	_, err = client.Dashboard(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetworkFailure)
	assert.Equal(t, "fallback", Message(err, "fallback"))
}

func TestRequestTimeoutAppliesWithoutCallerDeadline(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}), WithRequestTimeout(20*time.Millisecond))

	_, err := client.Segments(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetworkFailure)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestUnauthorizedHookFiresOnlyForSessionToken(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	var fired atomic.Int32
	client := newTestClient(t, handler, WithTokenSource(staticToken("stale")), WithUnauthorizedHandler(func() {
		fired.Add(1)
	}))

	_, err := client.Peers(context.Background())
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Equal(t, int32(1), fired.Load())

	_, err = client.Me(context.Background(), "explicit")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Equal(t, int32(1), fired.Load(), "validating an explicit token must not invalidate the session")

	_, _, err = client.Login(context.Background(), "a@x.com", "wrong")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Equal(t, int32(1), fired.Load())
}

func TestSaveActionPrefersAdminEndpointWithToken(t *testing.T) {
	t.Parallel()

	var paths []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"from_id": "p2", "to_id": "p3", "status": "approved", "notes": "intro at lunch"}, body)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}), WithTokenSource(staticToken("tok")))

	err := client.SaveAction(context.Background(), domain.Action{FromID: "p2", ToID: "p3", Status: domain.ActionApproved, Notes: "intro at lunch"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/api/admin/actions"}, paths)
}

func TestSaveActionFallsBackToPublicEndpoint(t *testing.T) {
	t.Parallel()

	var paths []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/api/admin/actions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}), WithTokenSource(staticToken("tok")))

	err := client.SaveAction(context.Background(), domain.Action{FromID: "p2", ToID: "p3", Status: domain.ActionRejected})
	require.NoError(t, err)
	assert.Equal(t, []string{"/api/admin/actions", "/api/actions"}, paths)
}

func TestSaveActionWithoutTokenUsesPublicEndpointOnly(t *testing.T) {
	t.Parallel()

	var paths []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Unknown profile"}`))
	}))

	err := client.SaveAction(context.Background(), domain.Action{FromID: "p2", ToID: "zz"})
	require.Error(t, err)
	assert.Equal(t, "Unknown profile", Message(err, ""))
	assert.Equal(t, []string{"/api/actions"}, paths)
}

func TestDashboardDecodesSnapshot(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"overview": {"attendee_count": 3, "recommended_intro_count": 2, "actioned_intro_count": 1,
				"risk_distribution": {"low": 1, "medium": 1, "high": 0}},
			"top_intro_pairs": [{"from_id": "p2", "from_name": "Marcus Chen", "to_id": "p3", "to_name": "Dr. Elena Vasquez",
				"score": 0.91, "risk_level": "low", "action": {"status": "approved", "notes": "done"}}],
			"top_non_obvious_pairs": [],
			"per_profile": {"p2": [{"target_id": "p3", "target_name": "Dr. Elena Vasquez", "priority_rank": 1, "fit_score": 0.8}]}
		}`))
	}))

	snapshot, err := client.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, snapshot.Overview.AttendeeCount)
	assert.Equal(t, 1, snapshot.Overview.RiskDistribution.Medium)
	require.Len(t, snapshot.TopIntroPairs, 1)
	assert.Equal(t, domain.ActionApproved, snapshot.TopIntroPairs[0].Action.Status)

	key := domain.PairKey{From: "p2", To: "p3"}
	match, ok := snapshot.MatchFor(key)
	require.True(t, ok)
	assert.Equal(t, domain.ActionPending, match.Action.Status)
	assert.Equal(t, key, match.Action.Key())
}

func TestAttendeesEncodesFilter(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "climate", r.URL.Query().Get("search"))
		assert.Equal(t, "speaker,vip", r.URL.Query().Get("roles"))
		_, _ = w.Write([]byte(`{"attendees":[{"profile_id":"p1","name":"Amara Okafor","role":"speaker"}]}`))
	}))

	directory, err := client.Attendees(context.Background(), domain.AttendeeFilter{
		Search: "  climate ",
		Roles:  []domain.Role{domain.RoleSpeaker, "", domain.RoleVIP, domain.RoleSpeaker},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, directory.Count)
	assert.Equal(t, domain.RoleSpeaker, directory.Attendees[0].Role)
}

func TestMessagesEscapesPeerAndSortsAscending(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat/messages/a%2Fb", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"messages":[
			{"id":"2","from_user_id":"a/b","to_user_id":"me","body":"second","created_at":"2026-03-01T10:00:05Z"},
			{"id":"1","from_user_id":"me","to_user_id":"a/b","body":"first","created_at":"2026-03-01 10:00:01"}
		]}`))
	}), WithTokenSource(staticToken("tok")))

	messages, err := client.Messages(context.Background(), "a/b")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Body)
	assert.Equal(t, "second", messages[1].Body)
}

func TestMeRejectsEmptyUser(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user":null}`))
	}))

	_, err := client.Me(context.Background(), "tok")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedResponse))
}
