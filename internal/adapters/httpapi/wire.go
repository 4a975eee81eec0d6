package httpapi

import (
	"strings"
	"time"

	"github.com/bnema/pot-cli/internal/domain"
)

type userWire struct {
	ID           string            `json:"id"`
	FullName     string            `json:"full_name"`
	Email        string            `json:"email"`
	Title        string            `json:"title"`
	Organization string            `json:"organization"`
	Role         string            `json:"role"`
	Website      string            `json:"website"`
	Bio          string            `json:"bio"`
	SocialLinks  map[string]string `json:"social_links"`
	Focus        []string          `json:"focus"`
	LookingFor   []string          `json:"looking_for"`
}

type authResponse struct {
	Token string    `json:"token"`
	User  *userWire `json:"user"`
}

type userResponse struct {
	User *userWire `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profilePayload struct {
	FullName     string            `json:"full_name"`
	Title        string            `json:"title"`
	Organization string            `json:"organization"`
	Role         string            `json:"role"`
	Website      string            `json:"website"`
	Bio          string            `json:"bio"`
	SocialLinks  map[string]string `json:"social_links"`
	Focus        []string          `json:"focus"`
	LookingFor   []string          `json:"looking_for"`
}

type registerRequest struct {
	profilePayload
	Email    string `json:"email"`
	Password string `json:"password"`
}

type actionWire struct {
	FromID    string `json:"from_id"`
	ToID      string `json:"to_id"`
	Status    string `json:"status"`
	Notes     string `json:"notes"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type pairWire struct {
	FromID       string      `json:"from_id"`
	FromName     string      `json:"from_name"`
	ToID         string      `json:"to_id"`
	ToName       string      `json:"to_name"`
	Score        float64     `json:"score"`
	Confidence   float64     `json:"confidence"`
	NoveltyScore float64     `json:"novelty_score"`
	RiskLevel    string      `json:"risk_level"`
	RiskReasons  []string    `json:"risk_reasons"`
	Rationale    string      `json:"rationale"`
	Action       *actionWire `json:"action"`
}

type matchWire struct {
	TargetID             string      `json:"target_id"`
	TargetName           string      `json:"target_name"`
	PriorityRank         int         `json:"priority_rank"`
	Score                float64     `json:"score"`
	FitScore             float64     `json:"fit_score"`
	ComplementarityScore float64     `json:"complementarity_score"`
	ReadinessScore       float64     `json:"readiness_score"`
	Confidence           float64     `json:"confidence"`
	RiskLevel            string      `json:"risk_level"`
	RiskReasons          []string    `json:"risk_reasons"`
	Rationale            string      `json:"rationale"`
	Action               *actionWire `json:"action"`
}

type overviewWire struct {
	AttendeeCount         int `json:"attendee_count"`
	RecommendedIntroCount int `json:"recommended_intro_count"`
	ActionedIntroCount    int `json:"actioned_intro_count"`
	RiskDistribution      struct {
		Low    int `json:"low"`
		Medium int `json:"medium"`
		High   int `json:"high"`
	} `json:"risk_distribution"`
}

type dashboardWire struct {
	Overview        *overviewWire          `json:"overview"`
	TopIntroPairs   []pairWire             `json:"top_intro_pairs"`
	NonObviousPairs []pairWire             `json:"top_non_obvious_pairs"`
	PerProfile      map[string][]matchWire `json:"per_profile"`
}

type segmentsWire struct {
	Roles           map[string]int `json:"roles"`
	TopInterestTags []struct {
		Tag   string `json:"tag"`
		Count int    `json:"count"`
	} `json:"top_interest_tags"`
}

type profileDetailWire struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Title        string `json:"title"`
	Organization string `json:"organization"`
	Enrichment   struct {
		InferredTags []string `json:"inferred_tags"`
	} `json:"enrichment"`
}

type drilldownWire struct {
	Match       *matchWire        `json:"match"`
	FromProfile profileDetailWire `json:"from_profile"`
	ToProfile   profileDetailWire `json:"to_profile"`
}

type profilesWire struct {
	Profiles []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"profiles"`
}

type attendeeWire struct {
	ProfileID    string `json:"profile_id"`
	Name         string `json:"name"`
	Title        string `json:"title"`
	Organization string `json:"organization"`
	Role         string `json:"role"`
	Bio          string `json:"bio"`
	Enrichment   struct {
		InferredTags     []string `json:"inferred_tags"`
		SourceConfidence float64  `json:"source_confidence"`
	} `json:"enrichment"`
}

type attendeesWire struct {
	Attendees []attendeeWire `json:"attendees"`
	Count     int            `json:"count"`
}

type enrichmentWire struct {
	Enrichment []struct {
		ProfileID        string  `json:"profile_id"`
		SourceConfidence float64 `json:"source_confidence"`
	} `json:"enrichment"`
}

type enrichmentRefreshWire struct {
	ProfileID   string   `json:"profile_id,omitempty"`
	LiveEnabled bool     `json:"live_enabled"`
	Connectors  []string `json:"connectors"`
}

type peerWire struct {
	UserID        string `json:"user_id"`
	FullName      string `json:"full_name"`
	Title         string `json:"title"`
	Organization  string `json:"organization"`
	LatestMessage string `json:"latest_message"`
}

type peersWire struct {
	Peers []peerWire `json:"peers"`
}

type messageWire struct {
	ID         string `json:"id"`
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	Body       string `json:"body"`
	CreatedAt  string `json:"created_at"`
}

type messagesWire struct {
	Messages []messageWire `json:"messages"`
}

type sendMessageWire struct {
	ToUserID string `json:"to_user_id"`
	Body     string `json:"body"`
}

type conciergeTurnWire struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type conciergeRequest struct {
	Message   string              `json:"message"`
	ProfileID string              `json:"profile_id,omitempty"`
	History   []conciergeTurnWire `json:"history"`
}

type conciergeResponse struct {
	Assistant string `json:"assistant"`
}

func fromUserWire(w userWire) domain.User {
	return domain.User{
		ID:           domain.UserID(w.ID),
		FullName:     w.FullName,
		Email:        w.Email,
		Title:        w.Title,
		Organization: w.Organization,
		Role:         domain.Role(w.Role),
		Website:      w.Website,
		Bio:          w.Bio,
		SocialLinks:  w.SocialLinks,
		Focus:        w.Focus,
		LookingFor:   w.LookingFor,
	}
}

func toProfilePayload(p domain.ProfileFields) profilePayload {
	role := p.Role
	if role == "" {
		role = domain.RoleAttendee
	}
	focus := p.Focus
	if focus == nil {
		focus = []string{}
	}
	lookingFor := p.LookingFor
	if lookingFor == nil {
		lookingFor = []string{}
	}

	return profilePayload{
		FullName:     strings.TrimSpace(p.FullName),
		Title:        p.Title,
		Organization: p.Organization,
		Role:         string(role),
		Website:      p.Website,
		Bio:          p.Bio,
		SocialLinks:  map[string]string{"linkedin": p.LinkedIn},
		Focus:        focus,
		LookingFor:   lookingFor,
	}
}

func fromActionWire(w *actionWire, fallbackFrom, fallbackTo string) domain.Action {
	action := domain.Action{
		FromID: domain.ProfileID(fallbackFrom),
		ToID:   domain.ProfileID(fallbackTo),
		Status: domain.ActionPending,
	}
	if w == nil {
		return action
	}
	if w.FromID != "" {
		action.FromID = domain.ProfileID(w.FromID)
	}
	if w.ToID != "" {
		action.ToID = domain.ProfileID(w.ToID)
	}
	if w.Status != "" {
		action.Status = domain.ActionStatus(w.Status)
	}
	action.Notes = w.Notes
	action.UpdatedAt = parseTime(w.UpdatedAt)
	return action
}

func fromPairWire(w pairWire) domain.Pair {
	return domain.Pair{
		FromID:       domain.ProfileID(w.FromID),
		FromName:     w.FromName,
		ToID:         domain.ProfileID(w.ToID),
		ToName:       w.ToName,
		Score:        w.Score,
		Confidence:   w.Confidence,
		NoveltyScore: w.NoveltyScore,
		RiskLevel:    domain.RiskLevel(w.RiskLevel),
		RiskReasons:  w.RiskReasons,
		Rationale:    w.Rationale,
		Action:       fromActionWire(w.Action, w.FromID, w.ToID),
	}
}

func fromMatchWire(sourceID string, w matchWire) domain.Match {
	return domain.Match{
		TargetID:             domain.ProfileID(w.TargetID),
		TargetName:           w.TargetName,
		PriorityRank:         w.PriorityRank,
		Score:                w.Score,
		FitScore:             w.FitScore,
		ComplementarityScore: w.ComplementarityScore,
		ReadinessScore:       w.ReadinessScore,
		Confidence:           w.Confidence,
		RiskLevel:            domain.RiskLevel(w.RiskLevel),
		RiskReasons:          w.RiskReasons,
		Rationale:            w.Rationale,
		Action:               fromActionWire(w.Action, sourceID, w.TargetID),
	}
}

func fromDashboardWire(w dashboardWire) domain.DashboardSnapshot {
	snapshot := domain.DashboardSnapshot{
		TopIntroPairs:   make([]domain.Pair, 0, len(w.TopIntroPairs)),
		NonObviousPairs: make([]domain.Pair, 0, len(w.NonObviousPairs)),
		PerProfile:      make(map[domain.ProfileID][]domain.Match, len(w.PerProfile)),
	}
	if w.Overview != nil {
		snapshot.Overview = domain.Overview{
			AttendeeCount:         w.Overview.AttendeeCount,
			RecommendedIntroCount: w.Overview.RecommendedIntroCount,
			ActionedIntroCount:    w.Overview.ActionedIntroCount,
			RiskDistribution: domain.RiskDistribution{
				Low:    w.Overview.RiskDistribution.Low,
				Medium: w.Overview.RiskDistribution.Medium,
				High:   w.Overview.RiskDistribution.High,
			},
		}
	}
	for _, pair := range w.TopIntroPairs {
		snapshot.TopIntroPairs = append(snapshot.TopIntroPairs, fromPairWire(pair))
	}
	for _, pair := range w.NonObviousPairs {
		snapshot.NonObviousPairs = append(snapshot.NonObviousPairs, fromPairWire(pair))
	}
	for sourceID, matches := range w.PerProfile {
		converted := make([]domain.Match, 0, len(matches))
		for _, match := range matches {
			converted = append(converted, fromMatchWire(sourceID, match))
		}
		snapshot.PerProfile[domain.ProfileID(sourceID)] = converted
	}
	return snapshot
}

func fromProfileDetailWire(w profileDetailWire) domain.ProfileDetail {
	return domain.ProfileDetail{
		ID:           domain.ProfileID(w.ID),
		Name:         w.Name,
		Title:        w.Title,
		Organization: w.Organization,
		InferredTags: w.Enrichment.InferredTags,
	}
}

func fromAttendeeWire(w attendeeWire) domain.Attendee {
	return domain.Attendee{
		ProfileID:    domain.ProfileID(w.ProfileID),
		Name:         w.Name,
		Title:        w.Title,
		Organization: w.Organization,
		Role:         domain.Role(w.Role),
		Bio:          w.Bio,
		Enrichment: domain.Enrichment{
			InferredTags:     w.Enrichment.InferredTags,
			SourceConfidence: w.Enrichment.SourceConfidence,
		},
	}
}

func fromPeerWire(w peerWire) domain.Peer {
	return domain.Peer{
		UserID:        domain.UserID(w.UserID),
		FullName:      w.FullName,
		Title:         w.Title,
		Organization:  w.Organization,
		LatestMessage: w.LatestMessage,
	}
}

func fromMessageWire(w messageWire) domain.ChatMessage {
	return domain.ChatMessage{
		ID:         w.ID,
		FromUserID: domain.UserID(w.FromUserID),
		ToUserID:   domain.UserID(w.ToUserID),
		Body:       w.Body,
		CreatedAt:  parseTime(w.CreatedAt),
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

func parseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC()
		}
	}

	return time.Time{}
}
