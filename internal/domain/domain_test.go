package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionStatus(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    ActionStatus
		wantErr bool
	}{
		{name: "pending", raw: "pending", want: ActionPending},
		{name: "approved", raw: "approved", want: ActionApproved},
		{name: "rejected", raw: "rejected", want: ActionRejected},
		{name: "empty defaults to pending", raw: "", want: ActionPending},
		{name: "unknown value", raw: "maybe", wantErr: true},
		{name: "case sensitive", raw: "Approved", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseActionStatus(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPairKey(t *testing.T) {
	key := PairKey{From: "p1", To: "p2"}

	assert.Equal(t, "p1 -> p2", key.String())
	assert.True(t, key.Valid())
	assert.False(t, PairKey{From: "p1"}.Valid())
	assert.Equal(t, key, Action{FromID: "p1", ToID: "p2"}.Key())
	assert.Equal(t, key, Pair{FromID: "p1", ToID: "p2"}.Key())
}

func TestDashboardSnapshotActionForPrefersPerProfile(t *testing.T) {
	snapshot := DashboardSnapshot{
		TopIntroPairs: []Pair{
			{FromID: "p1", ToID: "p2", Action: Action{Status: ActionRejected, Notes: "stale"}},
			{FromID: "p4", ToID: "p2"},
		},
		PerProfile: map[ProfileID][]Match{
			"p1": {{TargetID: "p2", Action: Action{Status: ActionApproved, Notes: "fresh"}}},
		},
	}

	action, ok := snapshot.ActionFor(PairKey{From: "p1", To: "p2"})
	require.True(t, ok)
	assert.Equal(t, Action{FromID: "p1", ToID: "p2", Status: ActionApproved, Notes: "fresh"}, action)

	action, ok = snapshot.ActionFor(PairKey{From: "p4", To: "p2"})
	require.True(t, ok)
	assert.Equal(t, ActionPending, action.Status)
	assert.Equal(t, ProfileID("p4"), action.FromID)

	_, ok = snapshot.ActionFor(PairKey{From: "p9", To: "p1"})
	assert.False(t, ok)
}

func TestDashboardSnapshotMatchForAndEmpty(t *testing.T) {
	assert.True(t, DashboardSnapshot{}.Empty())

	snapshot := DashboardSnapshot{PerProfile: map[ProfileID][]Match{
		"p1": {{TargetID: "p2", PriorityRank: 1}, {TargetID: "p5", PriorityRank: 2}},
	}}
	assert.False(t, snapshot.Empty())

	match, ok := snapshot.MatchFor(PairKey{From: "p1", To: "p5"})
	require.True(t, ok)
	assert.Equal(t, 2, match.PriorityRank)

	_, ok = snapshot.MatchFor(PairKey{From: "p2", To: "p1"})
	assert.False(t, ok)
}

func TestAttendeeFilterNormalize(t *testing.T) {
	filter := AttendeeFilter{
		Search: "  custody ",
		Roles:  []Role{"vip", " ", "speaker", "vip", " sponsor "},
	}

	got := filter.Normalize()

	assert.Equal(t, "custody", got.Search)
	assert.Equal(t, []Role{RoleVIP, RoleSpeaker, RoleSponsor}, got.Roles)
	assert.Equal(t, "vip,speaker,sponsor", got.RolesCSV())
	assert.Empty(t, AttendeeFilter{}.Normalize().RolesCSV())
}

func TestSortMessagesKeepsServerOrderForTies(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	messages := []ChatMessage{
		{ID: "c", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "a", CreatedAt: base},
		{ID: "b2", CreatedAt: base.Add(time.Minute)},
		{ID: "b1", CreatedAt: base.Add(time.Minute)},
	}

	SortMessages(messages)

	ids := make([]string, 0, len(messages))
	for _, message := range messages {
		ids = append(ids, message.ID)
	}
	assert.Equal(t, []string{"a", "b2", "b1", "c"}, ids)
}

func TestSortEnrichment(t *testing.T) {
	records := []EnrichmentRecord{
		{ProfileID: "p3", SourceConfidence: 0.4},
		{ProfileID: "p2", SourceConfidence: 0.9},
		{ProfileID: "p1", SourceConfidence: 0.4},
	}

	SortEnrichment(records)

	assert.Equal(t, []EnrichmentRecord{
		{ProfileID: "p2", SourceConfidence: 0.9},
		{ProfileID: "p1", SourceConfidence: 0.4},
		{ProfileID: "p3", SourceConfidence: 0.4},
	}, records)
}

func TestRegistrationValidate(t *testing.T) {
	valid := Registration{
		Email:    "a@x.com",
		Password: "pw123456",
		Profile:  ProfileFields{FullName: "Amara Okafor", Role: RoleVIP},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Registration)
		want   string
	}{
		{name: "missing name", mutate: func(r *Registration) { r.Profile.FullName = "  " }, want: "full name is required"},
		{name: "missing email", mutate: func(r *Registration) { r.Email = "" }, want: "email is required"},
		{name: "missing password", mutate: func(r *Registration) { r.Password = "" }, want: "password is required"},
		{name: "unknown role", mutate: func(r *Registration) { r.Profile.Role = "keynote" }, want: "unsupported role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := valid
			tt.mutate(&reg)

			err := reg.Validate()
			require.Error(t, err)

			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Contains(t, validation.Error(), tt.want)
		})
	}
}

func TestRoleValid(t *testing.T) {
	for _, role := range Roles() {
		assert.True(t, role.Valid(), role)
	}
	assert.False(t, Role("organizer").Valid())
	assert.False(t, Role("").Valid())
}

func TestSessionConsistency(t *testing.T) {
	empty := NewSession("", User{ID: "u1"})
	assert.False(t, empty.Authenticated())
	assert.True(t, empty.Consistent())
	assert.Empty(t, empty.UserID())

	session := NewSession("tok", User{ID: "u1", FullName: "Amara Okafor"})
	assert.True(t, session.Authenticated())
	assert.True(t, session.Consistent())
	assert.Equal(t, UserID("u1"), session.UserID())

	assert.False(t, Session{Token: "tok"}.Consistent())
	assert.False(t, Session{User: &User{ID: "u1"}}.Consistent())
}
