package cache

import "github.com/bnema/pot-cli/internal/domain"

// Offline placeholders shown when the service cannot be reached.

func demoDashboard() domain.DashboardSnapshot {
	return domain.DashboardSnapshot{
		Overview: domain.Overview{
			AttendeeCount:         5,
			RecommendedIntroCount: 10,
			ActionedIntroCount:    2,
			RiskDistribution:      domain.RiskDistribution{Low: 12, Medium: 6, High: 2},
		},
		TopIntroPairs: []domain.Pair{{
			FromID:     "p2",
			FromName:   "Marcus Chen",
			ToID:       "p3",
			ToName:     "Dr. Elena Vasquez",
			Score:      0.65,
			Confidence: 0.69,
			RiskLevel:  domain.RiskLow,
			Rationale:  "High complementarity and near-term readiness.",
			Action:     domain.Action{FromID: "p2", ToID: "p3", Status: domain.ActionPending},
		}},
		NonObviousPairs: []domain.Pair{},
		PerProfile:      map[domain.ProfileID][]domain.Match{},
	}
}

func demoAttendees() domain.AttendeeDirectory {
	attendees := []domain.Attendee{{
		ProfileID:    "p1",
		Name:         "Amara Okafor",
		Title:        "Director of Digital Assets",
		Organization: "Abu Dhabi Sovereign Wealth Fund",
		Role:         domain.RoleVIP,
		Bio:          "Leads tokenized RWA investment strategy.",
		Enrichment: domain.Enrichment{
			InferredTags:     []string{"tokenized securities", "institutional custody"},
			SourceConfidence: 0.72,
		},
	}}
	return domain.AttendeeDirectory{Attendees: attendees, Count: len(attendees)}
}

func emptySegments() domain.Segments {
	return domain.Segments{Roles: map[string]int{}, TopInterestTags: []domain.TagCount{}}
}
