// Package fakeapi is an in-memory implementation of the matchmaking service HTTP API.
// It backs the package tests and the dev-server command.
package fakeapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const defaultTokenTTL = 12 * time.Hour

type account struct {
	User         userJSON
	PasswordHash []byte
}

type actionJSON struct {
	FromID    string `json:"from_id"`
	ToID      string `json:"to_id"`
	Status    string `json:"status"`
	Notes     string `json:"notes"`
	UpdatedAt string `json:"updated_at"`
}

type messageJSON struct {
	ID         string `json:"id"`
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	Body       string `json:"body"`
	CreatedAt  string `json:"created_at"`
}

type Option func(*Server)

func WithSecret(secret string) Option {
	return func(s *Server) { s.secret = []byte(secret) }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) { s.tokenTTL = ttl }
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Server) { s.logger = logger }
}

type Server struct {
	secret   []byte
	now      func() time.Time
	tokenTTL time.Duration
	logger   logrus.FieldLogger

	mu              sync.Mutex
	profiles        []profile
	recommendations []recommendation
	accounts        map[string]*account
	emails          map[string]string
	actions         map[string]actionJSON
	messages        []messageJSON
	refreshes       int
	requests        map[string]int
}

func New(opts ...Option) *Server {
	s := &Server{
		secret:          []byte("dev-only-change-me"),
		now:             time.Now,
		tokenTTL:        defaultTokenTTL,
		profiles:        seedProfiles(),
		recommendations: seedRecommendations(),
		accounts:        map[string]*account{},
		emails:          map[string]string{},
		actions:         map[string]actionJSON{},
		requests:        map[string]int{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		s.logger = discard
	}
	return s
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.countRequests)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/profiles", s.handleProfiles).Methods(http.MethodGet)
	api.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/segments", s.handleSegments).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/drilldown", s.handleDrilldown).Methods(http.MethodGet)
	api.HandleFunc("/actions", s.handleSaveAction).Methods(http.MethodPost)
	api.HandleFunc("/admin/actions", s.requireAuth(s.handleAdminAction)).Methods(http.MethodPost)
	api.HandleFunc("/attendees", s.handleAttendees).Methods(http.MethodGet)
	api.HandleFunc("/enrichment", s.handleEnrichment).Methods(http.MethodGet)
	api.HandleFunc("/enrichment/refresh", s.handleEnrichmentRefresh).Methods(http.MethodPost)

	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", s.requireAuth(s.handleMe)).Methods(http.MethodGet)
	api.HandleFunc("/profile/me", s.requireAuth(s.handleUpdateProfile)).Methods(http.MethodPut)

	api.HandleFunc("/chat/peers", s.requireAuth(s.handlePeers)).Methods(http.MethodGet)
	api.HandleFunc("/chat/messages/{peerID}", s.requireAuth(s.handleMessages)).Methods(http.MethodGet)
	api.HandleFunc("/chat/messages", s.requireAuth(s.handleSendMessage)).Methods(http.MethodPost)
	api.HandleFunc("/concierge/chat", s.requireAuth(s.handleConcierge)).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	return r
}

// Requests reports how many requests hit path, e.g. "GET /api/chat/peers".
func (s *Server) Requests(methodAndPath string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[methodAndPath]
}

// TotalRequests counts every request under /api.
func (s *Server) TotalRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for key, count := range s.requests {
		if strings.Contains(key, " /api/") {
			total += count
		}
	}
	return total
}

// SetAction seeds the authoritative decision for a pair.
func (s *Server) SetAction(fromID, toID, status, notes string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions[actionKey(fromID, toID)] = actionJSON{
		FromID:    fromID,
		ToID:      toID,
		Status:    status,
		Notes:     notes,
		UpdatedAt: s.now().UTC().Format(time.RFC3339Nano),
	}
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()

		s.logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": r.Header.Get("X-Request-Id"),
		}).Debug("request")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(out); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return false
	}
	return true
}

func actionKey(fromID, toID string) string {
	return fromID + "::" + toID
}
