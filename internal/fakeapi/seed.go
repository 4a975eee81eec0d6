package fakeapi

type profile struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Title            string   `json:"title"`
	Organization     string   `json:"organization"`
	Role             string   `json:"role"`
	Bio              string   `json:"bio"`
	Tags             []string `json:"-"`
	SourceConfidence float64  `json:"-"`
}

type recommendation struct {
	FromID          string
	ToID            string
	Rank            int
	Score           float64
	Fit             float64
	Complementarity float64
	Readiness       float64
	Confidence      float64
	Novelty         float64
	Risk            string
	RiskReasons     []string
	Rationale       string
	NonObvious      bool
}

func seedProfiles() []profile {
	return []profile{
		{
			ID: "p1", Name: "Amara Okafor", Title: "Director of Digital Assets",
			Organization: "Abu Dhabi Sovereign Wealth Fund", Role: "vip",
			Bio:              "Leads tokenized RWA investment strategy.",
			Tags:             []string{"tokenized securities", "institutional custody"},
			SourceConfidence: 0.72,
		},
		{
			ID: "p2", Name: "Marcus Chen", Title: "Founder & CEO", Organization: "VaultBridge",
			Role: "speaker", Bio: "Builds institutional custody rails for tokenized assets.",
			Tags:             []string{"institutional custody", "compliance"},
			SourceConfidence: 0.81,
		},
		{
			ID: "p3", Name: "Dr. Elena Vasquez", Title: "Partner", Organization: "Meridian Ventures",
			Role: "sponsor", Bio: "Invests in infrastructure for digital asset markets.",
			Tags:             []string{"venture capital", "tokenized securities"},
			SourceConfidence: 0.66,
		},
		{
			ID: "p4", Name: "James Whitfield", Title: "Head of Regulatory Affairs", Organization: "Global Markets Authority",
			Role: "delegate", Bio: "Shapes policy for digital securities.",
			Tags:             []string{"regulation", "compliance"},
			SourceConfidence: 0.58,
		},
		{
			ID: "p5", Name: "Sofia Lindqvist", Title: "CTO", Organization: "Nordic Ledger Labs",
			Role: "attendee", Bio: "Runs a settlement network for tokenized bonds.",
			Tags:             []string{"settlement", "tokenized securities"},
			SourceConfidence: 0.7,
		},
	}
}

func seedRecommendations() []recommendation {
	return []recommendation{
		{FromID: "p2", ToID: "p3", Rank: 1, Score: 0.65, Fit: 0.71, Complementarity: 0.8, Readiness: 0.62, Confidence: 0.69, Novelty: 0.2, Risk: "low", Rationale: "High complementarity and near-term readiness."},
		{FromID: "p1", ToID: "p2", Rank: 1, Score: 0.61, Fit: 0.66, Complementarity: 0.7, Readiness: 0.58, Confidence: 0.64, Novelty: 0.3, Risk: "low", Rationale: "Custody provider matches allocator mandate."},
		{FromID: "p1", ToID: "p5", Rank: 2, Score: 0.52, Fit: 0.5, Complementarity: 0.6, Readiness: 0.44, Confidence: 0.55, Novelty: 0.6, Risk: "medium", RiskReasons: []string{"early-stage counterparty"}, Rationale: "Settlement rails for tokenized bond allocations.", NonObvious: true},
		{FromID: "p4", ToID: "p2", Rank: 1, Score: 0.48, Fit: 0.45, Complementarity: 0.52, Readiness: 0.4, Confidence: 0.5, Novelty: 0.7, Risk: "medium", RiskReasons: []string{"regulatory sensitivity"}, Rationale: "Policy input on custody standards.", NonObvious: true},
		{FromID: "p5", ToID: "p3", Rank: 1, Score: 0.44, Fit: 0.42, Complementarity: 0.5, Readiness: 0.35, Confidence: 0.47, Novelty: 0.4, Risk: "high", RiskReasons: []string{"funding stage mismatch"}, Rationale: "Possible seed extension conversation."},
	}
}
