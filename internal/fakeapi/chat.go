package fakeapi

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// handlePeers lists every other registered user with the latest message exchanged.
func (s *Server) handlePeers(w http.ResponseWriter, r *http.Request) {
	me := currentUserID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	type peerJSON struct {
		UserID        string `json:"user_id"`
		FullName      string `json:"full_name"`
		Title         string `json:"title"`
		Organization  string `json:"organization"`
		LatestMessage string `json:"latest_message"`
	}
	peers := []peerJSON{}
	for id, acct := range s.accounts {
		if id == me {
			continue
		}
		peer := peerJSON{
			UserID:       id,
			FullName:     acct.User.FullName,
			Title:        acct.User.Title,
			Organization: acct.User.Organization,
		}
		for _, message := range s.conversation(me, id) {
			peer.LatestMessage = message.Body
		}
		peers = append(peers, peer)
	}
	sort.Slice(peers, func(i, j int) bool { return peers[i].FullName < peers[j].FullName })

	writeJSON(w, http.StatusOK, map[string]any{"peers": peers})
}

// conversation is called with s.mu held.
func (s *Server) conversation(a, b string) []messageJSON {
	out := []messageJSON{}
	for _, message := range s.messages {
		if (message.FromUserID == a && message.ToUserID == b) || (message.FromUserID == b && message.ToUserID == a) {
			out = append(out, message)
		}
	}
	return out
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	me := currentUserID(r)
	peer := mux.Vars(r)["peerID"]

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[peer]; !ok {
		writeDetail(w, http.StatusNotFound, "peer not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": s.conversation(me, peer)})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ToUserID string `json:"to_user_id"`
		Body     string `json:"body"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	body.Body = strings.TrimSpace(body.Body)
	if body.Body == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "body is required")
		return
	}

	me := currentUserID(r)
	s.mu.Lock()
	if _, ok := s.accounts[body.ToUserID]; !ok || body.ToUserID == me {
		s.mu.Unlock()
		writeDetail(w, http.StatusBadRequest, "Recipient is not a matched peer")
		return
	}
	message := messageJSON{
		ID:         uuid.NewString(),
		FromUserID: me,
		ToUserID:   body.ToUserID,
		Body:       body.Body,
		CreatedAt:  s.now().UTC().Format(time.RFC3339Nano),
	}
	s.messages = append(s.messages, message)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"status": "ok", "message": message})
}

func (s *Server) handleConcierge(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message   string `json:"message"`
		ProfileID string `json:"profile_id"`
		History   []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"history"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	message := strings.TrimSpace(body.Message)
	if message == "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"assistant": "Please share a specific ask (e.g., 'suggest 3 intros for Amara').",
			"mode":      "fallback",
		})
		return
	}

	s.mu.Lock()
	var hints []string
	if p, ok := s.profileByID(body.ProfileID); ok {
		hints = append(hints, fmt.Sprintf("For %s, prioritize meetings aligned with their strategic priorities.", p.Name))
	}
	if len(s.recommendations) > 0 {
		top := s.pair(s.recommendations[0])
		hints = append(hints, fmt.Sprintf("Current top intro candidate is %s ↔ %s.", top.FromName, top.ToName))
	}
	s.mu.Unlock()

	reply := "Concierge recommendation: start with high-confidence, low-risk intros first, then add one non-obvious pair."
	if len(hints) > 0 {
		reply += " " + strings.Join(hints, " ")
	}
	reply += fmt.Sprintf(" Next step based on your request '%s': shortlist 3 intros and send tailored context notes.", message)

	writeJSON(w, http.StatusOK, map[string]any{
		"assistant":    reply,
		"mode":         "fallback",
		"history_used": len(body.History),
	})
}
