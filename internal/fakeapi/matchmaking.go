package fakeapi

import (
	"net/http"
	"sort"
	"strings"
	"time"
)

type riskDistribution struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

type pairJSON struct {
	FromID       string     `json:"from_id"`
	FromName     string     `json:"from_name"`
	ToID         string     `json:"to_id"`
	ToName       string     `json:"to_name"`
	Score        float64    `json:"score"`
	Confidence   float64    `json:"confidence"`
	NoveltyScore float64    `json:"novelty_score"`
	RiskLevel    string     `json:"risk_level"`
	RiskReasons  []string   `json:"risk_reasons"`
	Rationale    string     `json:"rationale"`
	Action       actionJSON `json:"action"`
}

type matchJSON struct {
	TargetID             string     `json:"target_id"`
	TargetName           string     `json:"target_name"`
	PriorityRank         int        `json:"priority_rank"`
	Score                float64    `json:"score"`
	FitScore             float64    `json:"fit_score"`
	ComplementarityScore float64    `json:"complementarity_score"`
	ReadinessScore       float64    `json:"readiness_score"`
	Confidence           float64    `json:"confidence"`
	RiskLevel            string     `json:"risk_level"`
	RiskReasons          []string   `json:"risk_reasons"`
	Rationale            string     `json:"rationale"`
	Action               actionJSON `json:"action"`
}

var actionStatuses = map[string]bool{"pending": true, "approved": true, "rejected": true}

// The caller holds s.mu for every helper below that reads server state.

func (s *Server) profileByID(id string) (profile, bool) {
	for _, p := range s.profiles {
		if p.ID == id {
			return p, true
		}
	}
	return profile{}, false
}

func (s *Server) actionFor(fromID, toID string) actionJSON {
	if action, ok := s.actions[actionKey(fromID, toID)]; ok {
		return action
	}
	return actionJSON{FromID: fromID, ToID: toID, Status: "pending"}
}

func (s *Server) pair(rec recommendation) pairJSON {
	from, _ := s.profileByID(rec.FromID)
	to, _ := s.profileByID(rec.ToID)
	return pairJSON{
		FromID:       rec.FromID,
		FromName:     from.Name,
		ToID:         rec.ToID,
		ToName:       to.Name,
		Score:        rec.Score,
		Confidence:   rec.Confidence,
		NoveltyScore: rec.Novelty,
		RiskLevel:    rec.Risk,
		RiskReasons:  nonNil(rec.RiskReasons),
		Rationale:    rec.Rationale,
		Action:       s.actionFor(rec.FromID, rec.ToID),
	}
}

func (s *Server) match(rec recommendation) matchJSON {
	to, _ := s.profileByID(rec.ToID)
	return matchJSON{
		TargetID:             rec.ToID,
		TargetName:           to.Name,
		PriorityRank:         rec.Rank,
		Score:                rec.Score,
		FitScore:             rec.Fit,
		ComplementarityScore: rec.Complementarity,
		ReadinessScore:       rec.Readiness,
		Confidence:           rec.Confidence,
		RiskLevel:            rec.Risk,
		RiskReasons:          nonNil(rec.RiskReasons),
		Rationale:            rec.Rationale,
		Action:               s.actionFor(rec.FromID, rec.ToID),
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type summary struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	out := make([]summary, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, summary{ID: p.ID, Name: p.Name})
	}
	writeJSON(w, http.StatusOK, map[string]any{"profiles": out})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	top := []pairJSON{}
	nonObvious := []pairJSON{}
	perProfile := map[string][]matchJSON{}
	risks := riskDistribution{}

	recs := append([]recommendation(nil), s.recommendations...)
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	for _, rec := range recs {
		if rec.NonObvious {
			nonObvious = append(nonObvious, s.pair(rec))
		} else {
			top = append(top, s.pair(rec))
		}
		perProfile[rec.FromID] = append(perProfile[rec.FromID], s.match(rec))
		switch rec.Risk {
		case "low":
			risks.Low++
		case "medium":
			risks.Medium++
		case "high":
			risks.High++
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"overview": map[string]any{
			"attendee_count":          len(s.profiles),
			"recommended_intro_count": len(top),
			"actioned_intro_count":    len(s.actions),
			"risk_distribution":       risks,
		},
		"top_intro_pairs":       top,
		"top_non_obvious_pairs": nonObvious,
		"per_profile":           perProfile,
	})
}

func (s *Server) handleSegments(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roles := map[string]int{}
	tags := map[string]int{}
	for _, p := range s.profiles {
		roles[p.Role]++
		for _, tag := range p.Tags {
			tags[tag]++
		}
	}

	type tagCount struct {
		Tag   string `json:"tag"`
		Count int    `json:"count"`
	}
	top := make([]tagCount, 0, len(tags))
	for tag, count := range tags {
		top = append(top, tagCount{Tag: tag, Count: count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count == top[j].Count {
			return top[i].Tag < top[j].Tag
		}
		return top[i].Count > top[j].Count
	})

	writeJSON(w, http.StatusOK, map[string]any{"roles": roles, "top_interest_tags": top})
}

func (s *Server) profileDetail(p profile) map[string]any {
	return map[string]any{
		"id":           p.ID,
		"name":         p.Name,
		"title":        p.Title,
		"organization": p.Organization,
		"enrichment":   map[string]any{"inferred_tags": nonNil(p.Tags)},
	}
}

func (s *Server) handleDrilldown(w http.ResponseWriter, r *http.Request) {
	fromID := r.URL.Query().Get("from_id")
	toID := r.URL.Query().Get("to_id")

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.recommendations {
		if rec.FromID != fromID || rec.ToID != toID {
			continue
		}
		from, _ := s.profileByID(fromID)
		to, _ := s.profileByID(toID)
		writeJSON(w, http.StatusOK, map[string]any{
			"match":        s.match(rec),
			"from_profile": s.profileDetail(from),
			"to_profile":   s.profileDetail(to),
		})
		return
	}
	writeDetail(w, http.StatusNotFound, "match not found")
}

func (s *Server) handleSaveAction(w http.ResponseWriter, r *http.Request) {
	var body actionJSON
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Status == "" {
		body.Status = "pending"
	}
	if !actionStatuses[body.Status] {
		writeDetail(w, http.StatusUnprocessableEntity, "status must be pending, approved or rejected")
		return
	}

	s.mu.Lock()
	_, fromOK := s.profileByID(body.FromID)
	_, toOK := s.profileByID(body.ToID)
	if !fromOK || !toOK {
		s.mu.Unlock()
		writeDetail(w, http.StatusBadRequest, "Unknown profile")
		return
	}
	body.UpdatedAt = s.now().UTC().Format(time.RFC3339Nano)
	s.actions[actionKey(body.FromID, body.ToID)] = body
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "updated_at": body.UpdatedAt})
}

func (s *Server) handleAdminAction(w http.ResponseWriter, r *http.Request) {
	s.handleSaveAction(w, r)
}

func (s *Server) handleAttendees(w http.ResponseWriter, r *http.Request) {
	search := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("search")))
	roles := map[string]bool{}
	for _, raw := range []string{r.URL.Query().Get("roles"), r.URL.Query().Get("role")} {
		for _, role := range strings.Split(raw, ",") {
			if role = strings.TrimSpace(role); role != "" {
				roles[role] = true
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []map[string]any{}
	for _, p := range s.profiles {
		if len(roles) > 0 && !roles[p.Role] {
			continue
		}
		haystack := strings.ToLower(p.Name + " " + p.Organization + " " + p.Title)
		if search != "" && !strings.Contains(haystack, search) {
			continue
		}
		out = append(out, map[string]any{
			"profile_id":   p.ID,
			"name":         p.Name,
			"title":        p.Title,
			"organization": p.Organization,
			"role":         p.Role,
			"bio":          p.Bio,
			"enrichment": map[string]any{
				"inferred_tags":     nonNil(p.Tags),
				"source_confidence": p.SourceConfidence,
			},
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"attendees": out, "count": len(out)})
}

func (s *Server) handleEnrichment(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]map[string]any, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, map[string]any{"profile_id": p.ID, "source_confidence": p.SourceConfidence})
	}
	writeJSON(w, http.StatusOK, map[string]any{"enrichment": out})
}

func (s *Server) handleEnrichmentRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProfileID   string   `json:"profile_id"`
		LiveEnabled bool     `json:"live_enabled"`
		Connectors  []string `json:"connectors"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	refreshed := 0
	for i := range s.profiles {
		if body.ProfileID != "" && s.profiles[i].ID != body.ProfileID {
			continue
		}
		bump := 0.01 * float64(len(body.Connectors))
		s.profiles[i].SourceConfidence = min(0.99, s.profiles[i].SourceConfidence+bump)
		refreshed++
	}
	if body.ProfileID != "" && refreshed == 0 {
		writeDetail(w, http.StatusNotFound, "profile not found")
		return
	}
	s.refreshes++
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "refreshed": refreshed})
}
