package domain

import (
	"fmt"
	"time"
)

type ProfileID string

type ActionStatus string

const (
	ActionPending  ActionStatus = "pending"
	ActionApproved ActionStatus = "approved"
	ActionRejected ActionStatus = "rejected"
)

func ActionStatuses() []ActionStatus {
	return []ActionStatus{ActionPending, ActionApproved, ActionRejected}
}

func ParseActionStatus(raw string) (ActionStatus, error) {
	status := ActionStatus(raw)
	switch status {
	case ActionPending, ActionApproved, ActionRejected:
		return status, nil
	case "":
		return ActionPending, nil
	default:
		return "", fmt.Errorf("unsupported action status %q", raw)
	}
}

// PairKey identifies a directed recommendation between two profiles.
type PairKey struct {
	From ProfileID
	To   ProfileID
}

func (k PairKey) String() string {
	return string(k.From) + " -> " + string(k.To)
}

func (k PairKey) Valid() bool {
	return k.From != "" && k.To != ""
}

// Action is the organizer decision recorded for a pair.
type Action struct {
	FromID    ProfileID
	ToID      ProfileID
	Status    ActionStatus
	Notes     string
	UpdatedAt time.Time
}

func (a Action) Key() PairKey {
	return PairKey{From: a.FromID, To: a.ToID}
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

type Pair struct {
	FromID       ProfileID
	FromName     string
	ToID         ProfileID
	ToName       string
	Score        float64
	Confidence   float64
	NoveltyScore float64
	RiskLevel    RiskLevel
	RiskReasons  []string
	Rationale    string
	Action       Action
}

func (p Pair) Key() PairKey {
	return PairKey{From: p.FromID, To: p.ToID}
}

type Match struct {
	TargetID             ProfileID
	TargetName           string
	PriorityRank         int
	Score                float64
	FitScore             float64
	ComplementarityScore float64
	ReadinessScore       float64
	Confidence           float64
	RiskLevel            RiskLevel
	RiskReasons          []string
	Rationale            string
	Action               Action
}

type RiskDistribution struct {
	Low    int
	Medium int
	High   int
}

type Overview struct {
	AttendeeCount         int
	RecommendedIntroCount int
	ActionedIntroCount    int
	RiskDistribution      RiskDistribution
}

// DashboardSnapshot is the ranked-match view as last confirmed by the server.
type DashboardSnapshot struct {
	Overview        Overview
	TopIntroPairs   []Pair
	NonObviousPairs []Pair
	PerProfile      map[ProfileID][]Match
}

// ActionFor looks up the server-confirmed action for key, preferring the per-profile
// listing over the top pairs.
func (s DashboardSnapshot) ActionFor(key PairKey) (Action, bool) {
	if match, ok := s.MatchFor(key); ok {
		return normalizeAction(key, match.Action), true
	}
	for _, pairs := range [][]Pair{s.TopIntroPairs, s.NonObviousPairs} {
		for _, pair := range pairs {
			if pair.Key() == key {
				return normalizeAction(key, pair.Action), true
			}
		}
	}
	return Action{}, false
}

func (s DashboardSnapshot) MatchFor(key PairKey) (Match, bool) {
	for _, match := range s.PerProfile[key.From] {
		if match.TargetID == key.To {
			return match, true
		}
	}
	return Match{}, false
}

func (s DashboardSnapshot) Empty() bool {
	return len(s.TopIntroPairs) == 0 && len(s.NonObviousPairs) == 0 && len(s.PerProfile) == 0
}

func normalizeAction(key PairKey, action Action) Action {
	action.FromID = key.From
	action.ToID = key.To
	if action.Status == "" {
		action.Status = ActionPending
	}
	return action
}

type TagCount struct {
	Tag   string
	Count int
}

type Segments struct {
	Roles           map[string]int
	TopInterestTags []TagCount
}

type ProfileDetail struct {
	ID           ProfileID
	Name         string
	Title        string
	Organization string
	InferredTags []string
}

type Drilldown struct {
	Match       Match
	FromProfile ProfileDetail
	ToProfile   ProfileDetail
}

type ProfileSummary struct {
	ID   ProfileID
	Name string
}
