package domain

import (
	"sort"
	"strings"
)

type Enrichment struct {
	InferredTags     []string
	SourceConfidence float64
}

type Attendee struct {
	ProfileID    ProfileID
	Name         string
	Title        string
	Organization string
	Role         Role
	Bio          string
	Enrichment   Enrichment
}

type AttendeeFilter struct {
	Search string
	Roles  []Role
}

// Normalize trims the search term and removes empty or duplicate roles, keeping order.
func (f AttendeeFilter) Normalize() AttendeeFilter {
	out := AttendeeFilter{Search: strings.TrimSpace(f.Search)}
	seen := make(map[Role]struct{}, len(f.Roles))
	for _, role := range f.Roles {
		trimmed := Role(strings.TrimSpace(string(role)))
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out.Roles = append(out.Roles, trimmed)
	}
	return out
}

func (f AttendeeFilter) RolesCSV() string {
	parts := make([]string, 0, len(f.Roles))
	for _, role := range f.Roles {
		parts = append(parts, string(role))
	}
	return strings.Join(parts, ",")
}

type AttendeeDirectory struct {
	Attendees []Attendee
	Count     int
}

type EnrichmentRecord struct {
	ProfileID        ProfileID
	SourceConfidence float64
}

type EnrichmentRefresh struct {
	ProfileID   ProfileID
	LiveEnabled bool
	Connectors  []string
}

// SortEnrichment orders records by descending confidence, then profile id.
func SortEnrichment(records []EnrichmentRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].SourceConfidence == records[j].SourceConfidence {
			return records[i].ProfileID < records[j].ProfileID
		}
		return records[i].SourceConfidence > records[j].SourceConfidence
	})
}
