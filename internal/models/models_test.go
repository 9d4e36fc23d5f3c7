package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitProfile(t *testing.T) {
	tests := []struct {
		name        string
		flat        map[string]interface{}
		wantBase    []string
		wantRole    []string
		wantUnknown []string
		wantTable   string
	}{
		{
			name: "candidate routes skills to role table",
			flat: map[string]interface{}{
				"id": "p-1", "email": "a@b.io", "role": "candidate",
				"headline": "Go dev", "skills": []interface{}{"go"}, "favouriteColour": "red",
			},
			wantBase:    []string{"email", "id", "role"},
			wantRole:    []string{"headline", "skills"},
			wantUnknown: []string{"favouriteColour"},
			wantTable:   "candidate_profiles",
		},
		{
			name:        "admin has no role table",
			flat:        map[string]interface{}{"id": "p-2", "role": "super_admin", "department": "CS"},
			wantBase:    []string{"id", "role"},
			wantUnknown: []string{"department"},
		},
		{
			name:      "faculty shares department column name with student",
			flat:      map[string]interface{}{"id": "p-3", "role": "Faculty", "department": "EE", "employeeId": "E7"},
			wantBase:  []string{"id", "role"},
			wantRole:  []string{"department", "employeeId"},
			wantTable: "faculty_profiles",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts, err := SplitProfile(tt.flat)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.wantBase, keys(parts.Base))
			assert.ElementsMatch(t, tt.wantRole, keys(parts.RoleRow))
			assert.Equal(t, tt.wantUnknown, parts.Unknown)
			if tt.wantTable == "" {
				assert.Nil(t, parts.Table)
			} else {
				require.NotNil(t, parts.Table)
				assert.Equal(t, tt.wantTable, parts.Table.Table)
			}
		})
	}
}

func TestSplitProfile_UnknownRole(t *testing.T) {
	_, err := SplitProfile(map[string]interface{}{"id": "p-1", "role": "recruiter"})
	assert.True(t, errors.Is(err, ErrUnknownRole))

	_, err = SplitProfile(map[string]interface{}{"id": "p-1"})
	assert.True(t, errors.Is(err, ErrUnknownRole))
}

func TestMergeProfile_BaseWins(t *testing.T) {
	merged := MergeProfile(
		map[string]interface{}{"id": "p-1", "designation": "base"},
		map[string]interface{}{"designation": "role", "industry": "fintech"},
	)
	assert.Equal(t, "base", merged["designation"])
	assert.Equal(t, "fintech", merged["industry"])
	assert.Len(t, merged, 3)
}

func TestApplicationTransitions(t *testing.T) {
	tests := []struct {
		from, to ApplicationStatus
		want     bool
	}{
		{ApplicationApplied, ApplicationShortlisted, true},
		{ApplicationApplied, ApplicationInterview, false},
		{ApplicationInterview, ApplicationOffered, true},
		{ApplicationOffered, ApplicationHired, true},
		{ApplicationOffered, ApplicationWithdrawn, true},
		{ApplicationHired, ApplicationRejected, false},
		{ApplicationRejected, ApplicationApplied, false},
		{"unknown", ApplicationApplied, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
	assert.True(t, ApplicationWithdrawn.IsTerminal())
	assert.False(t, ApplicationApplied.IsTerminal())
}

func TestOverallBGVStatus(t *testing.T) {
	all := map[string]string{"id_proof": "verified", "address_proof": "verified", "education": "verified", "employment": "verified"}
	assert.Equal(t, BGVVerified, OverallBGVStatus(all))

	all["education"] = "pending"
	assert.Equal(t, BGVInProgress, OverallBGVStatus(all))

	all["employment"] = "rejected"
	assert.Equal(t, BGVRejected, OverallBGVStatus(all))

	assert.Equal(t, BGVInProgress, OverallBGVStatus(nil))
}

func TestRenderPlaceholders(t *testing.T) {
	out := RenderPlaceholders("Hi {{name}}, {{ job.title }} pays {{salary}}{{missing}}.", map[string]interface{}{
		"name":   "Ana",
		"job":    map[string]interface{}{"title": "SRE"},
		"salary": float64(1200000),
	})
	assert.Equal(t, "Hi Ana, SRE pays 1200000.", out)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "session:u1:s1", SessionKey("u1", "s1"))
	assert.Equal(t, "session:u1:*", SessionPattern("u1"))
	assert.Len(t, RevokedTokenKey("tok"), len("revoked:")+64)
	a, b := OrderedPair("zed", "amy")
	assert.Equal(t, []string{"amy", "zed"}, []string{a, b})
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
