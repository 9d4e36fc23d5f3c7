// internal/workers/profile/load-profile/models.go
package loadprofile

type Input struct {
	ProfileID string `json:"profileId"`
}

type Output struct {
	Profile             map[string]interface{} `json:"profile"`
	Role                string                 `json:"role"`
	RoleProfileComplete bool                   `json:"roleProfileComplete"`
}
