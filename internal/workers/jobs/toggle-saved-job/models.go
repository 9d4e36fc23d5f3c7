// internal/workers/jobs/toggle-saved-job/models.go
package togglesavedjob

const (
	ActionSave   = "save"
	ActionUnsave = "unsave"
	// ActionToggle flips the current state. It is used when action is empty.
	ActionToggle = "toggle"
)

type Input struct {
	CandidateID string `json:"candidateId"`
	JobID       string `json:"jobId"`
	Action      string `json:"action,omitempty"`
}

type Output struct {
	CandidateID string `json:"candidateId"`
	JobID       string `json:"jobId"`
	Saved       bool   `json:"saved"`
}
