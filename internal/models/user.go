// internal/models/user.go
package models

import "strings"

type Role string

const (
	RoleCandidate  Role = "candidate"
	RoleEmployer   Role = "employer"
	RoleStudent    Role = "student"
	RoleFaculty    Role = "faculty"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super-admin"
)

var allRoles = []Role{RoleCandidate, RoleEmployer, RoleStudent, RoleFaculty, RoleAdmin, RoleSuperAdmin}

// ParseRole accepts the role names case-insensitively, including "super_admin".
func ParseRole(s string) (Role, bool) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for _, r := range allRoles {
		if string(r) == normalized {
			return r, true
		}
	}
	return "", false
}

// IsStaff reports whether the role may review BGV documents and moderate content.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Plan is an employer subscription tier.
type Plan struct {
	Name string `json:"name"`
	// ActiveJobLimit is the number of concurrently active postings; -1 means unlimited.
	ActiveJobLimit int `json:"activeJobLimit"`
}

var Plans = map[string]Plan{
	"free":       {Name: "free", ActiveJobLimit: 1},
	"basic":      {Name: "basic", ActiveJobLimit: 5},
	"premium":    {Name: "premium", ActiveJobLimit: 25},
	"enterprise": {Name: "enterprise", ActiveJobLimit: -1},
}

func (p Plan) Unlimited() bool {
	return p.ActiveJobLimit < 0
}

type EmployerSubscription struct {
	EmployerID string `json:"employerId"`
	Plan       string `json:"plan"`
	Status     string `json:"status"`
	ExpiresAt  string `json:"expiresAt,omitempty"`
}
