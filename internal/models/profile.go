// internal/models/profile.go
package models

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownRole = errors.New("UNKNOWN_ROLE")

type FieldKind int

const (
	FieldText FieldKind = iota
	FieldTextArray
	FieldInt
	FieldFloat
)

// ProfileField maps a flat JSON key to a table column.
type ProfileField struct {
	Key    string
	Column string
	Kind   FieldKind
}

// RoleTable is the role-specific half of a profile, keyed by profile_id.
type RoleTable struct {
	Table  string
	Fields []ProfileField
}

const ProfilesTable = "profiles"

var BaseProfileFields = []ProfileField{
	{Key: "id", Column: "id"},
	{Key: "email", Column: "email"},
	{Key: "fullName", Column: "full_name"},
	{Key: "role", Column: "role"},
	{Key: "phone", Column: "phone"},
	{Key: "avatarUrl", Column: "avatar_url"},
	{Key: "location", Column: "location"},
	{Key: "bio", Column: "bio"},
}

// RoleTables routes each role to its table. Admin roles keep everything in profiles.
var RoleTables = map[Role]*RoleTable{
	RoleCandidate: {
		Table: "candidate_profiles",
		Fields: []ProfileField{
			{Key: "headline", Column: "headline"},
			{Key: "skills", Column: "skills", Kind: FieldTextArray},
			{Key: "experienceYears", Column: "experience_years", Kind: FieldInt},
			{Key: "resumeUrl", Column: "resume_url"},
			{Key: "education", Column: "education"},
			{Key: "expectedSalary", Column: "expected_salary", Kind: FieldInt},
		},
	},
	RoleEmployer: {
		Table: "employer_profiles",
		Fields: []ProfileField{
			{Key: "companyName", Column: "company_name"},
			{Key: "companyWebsite", Column: "company_website"},
			{Key: "industry", Column: "industry"},
			{Key: "companySize", Column: "company_size"},
			{Key: "designation", Column: "designation"},
		},
	},
	RoleStudent: {
		Table: "student_profiles",
		Fields: []ProfileField{
			{Key: "enrollmentNumber", Column: "enrollment_number"},
			{Key: "department", Column: "department"},
			{Key: "yearOfStudy", Column: "year_of_study", Kind: FieldInt},
			{Key: "cgpa", Column: "cgpa", Kind: FieldFloat},
			{Key: "facultyAdvisorId", Column: "faculty_advisor_id"},
		},
	},
	RoleFaculty: {
		Table: "faculty_profiles",
		Fields: []ProfileField{
			{Key: "employeeId", Column: "employee_id"},
			{Key: "department", Column: "department"},
			{Key: "designation", Column: "designation"},
			{Key: "specialization", Column: "specialization"},
		},
	},
	RoleAdmin:      nil,
	RoleSuperAdmin: nil,
}

// RoleTableFor returns the role table, nil for base-only roles.
func RoleTableFor(role Role) (*RoleTable, error) {
	table, ok := RoleTables[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return table, nil
}

// ProfileParts is a flat profile routed to its tables.
type ProfileParts struct {
	Role    Role
	Base    map[string]interface{}
	RoleRow map[string]interface{}
	Table   *RoleTable
	// Unknown lists keys that belong to neither table, sorted.
	Unknown []string
}

// SplitProfile routes each key of flat to the base or role table. The role is read
// from flat["role"]; values stay keyed by their JSON names.
func SplitProfile(flat map[string]interface{}) (*ProfileParts, error) {
	rawRole, _ := flat["role"].(string)
	role, ok := ParseRole(rawRole)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, rawRole)
	}
	table, err := RoleTableFor(role)
	if err != nil {
		return nil, err
	}

	parts := &ProfileParts{
		Role:    role,
		Base:    make(map[string]interface{}),
		RoleRow: make(map[string]interface{}),
		Table:   table,
	}

	for key, value := range flat {
		if hasField(BaseProfileFields, key) {
			parts.Base[key] = value
			continue
		}
		if table != nil && hasField(table.Fields, key) {
			parts.RoleRow[key] = value
			continue
		}
		parts.Unknown = append(parts.Unknown, key)
	}
	parts.Base["role"] = string(role)
	sort.Strings(parts.Unknown)
	return parts, nil
}

// MergeProfile flattens a base row and a role row. Base values win on a clash.
func MergeProfile(base, role map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(role))
	for k, v := range role {
		merged[k] = v
	}
	for k, v := range base {
		merged[k] = v
	}
	return merged
}

func hasField(fields []ProfileField, key string) bool {
	for _, f := range fields {
		if f.Key == key {
			return true
		}
	}
	return false
}

// Columns returns the column names in declaration order.
func Columns(fields []ProfileField) []string {
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Column
	}
	return cols
}
