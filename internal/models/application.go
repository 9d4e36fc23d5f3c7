// internal/models/application.go
package models

type ApplicationStatus string

const (
	ApplicationApplied     ApplicationStatus = "applied"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationInterview   ApplicationStatus = "interview"
	ApplicationOffered     ApplicationStatus = "offered"
	ApplicationHired       ApplicationStatus = "hired"
	ApplicationRejected    ApplicationStatus = "rejected"
	ApplicationWithdrawn   ApplicationStatus = "withdrawn"
)

var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationApplied:     {ApplicationShortlisted, ApplicationRejected, ApplicationWithdrawn},
	ApplicationShortlisted: {ApplicationInterview, ApplicationRejected, ApplicationWithdrawn},
	ApplicationInterview:   {ApplicationOffered, ApplicationRejected, ApplicationWithdrawn},
	ApplicationOffered:     {ApplicationHired, ApplicationRejected, ApplicationWithdrawn},
	ApplicationHired:       nil,
	ApplicationRejected:    nil,
	ApplicationWithdrawn:   nil,
}

func (s ApplicationStatus) Valid() bool {
	_, ok := applicationTransitions[s]
	return ok
}

func (s ApplicationStatus) IsTerminal() bool {
	next, ok := applicationTransitions[s]
	return ok && len(next) == 0
}

// AllowedTransitions lists the statuses reachable from s in one step.
func AllowedTransitions(s ApplicationStatus) []ApplicationStatus {
	return applicationTransitions[s]
}

func CanTransition(from, to ApplicationStatus) bool {
	for _, next := range applicationTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Application struct {
	ID          string                 `json:"id"`
	CandidateID string                 `json:"candidateId"`
	JobID       string                 `json:"jobId"`
	CoverLetter string                 `json:"coverLetter,omitempty"`
	Resume      *FileRef               `json:"resume,omitempty"`
	Answers     map[string]interface{} `json:"answers,omitempty"`
	FitScore    int                    `json:"fitScore"`
	Status      ApplicationStatus      `json:"status"`
	CreatedAt   string                 `json:"createdAt"`
	UpdatedAt   string                 `json:"updatedAt"`
}

// Storage buckets.
const (
	BucketResumes = "resumes"
	BucketAvatars = "avatars"
)

// FileRef points at an object in a storage bucket.
type FileRef struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"`
}
