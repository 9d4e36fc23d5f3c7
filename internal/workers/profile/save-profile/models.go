// internal/workers/profile/save-profile/models.go
package saveprofile

type Input struct {
	// Profile is the flat profile as the portal forms submit it; role is required.
	Profile map[string]interface{} `json:"profile"`
}

type Output struct {
	ProfileID     string   `json:"profileId"`
	Role          string   `json:"role"`
	SavedFields   []string `json:"savedFields"`
	IgnoredFields []string `json:"ignoredFields"`
	UpdatedAt     string   `json:"updatedAt"`
}
