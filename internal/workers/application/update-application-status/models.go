// internal/workers/application/update-application-status/models.go
package updateapplicationstatus

type Input struct {
	ApplicationID string `json:"applicationId"`
	// ActorID is the employer for every move except withdrawn, which only the candidate may make.
	ActorID  string `json:"actorId"`
	ToStatus string `json:"toStatus"`
	Note     string `json:"note,omitempty"`
}

type Output struct {
	ApplicationID  string   `json:"applicationId"`
	CandidateID    string   `json:"candidateId"`
	PreviousStatus string   `json:"previousStatus"`
	Status         string   `json:"status"`
	IsTerminal     bool     `json:"isTerminal"`
	NextStatuses   []string `json:"nextStatuses"`
	UpdatedAt      string   `json:"updatedAt"`
}
