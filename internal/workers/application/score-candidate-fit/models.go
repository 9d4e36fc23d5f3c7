// internal/workers/application/score-candidate-fit/models.go
package scorecandidatefit

type Input struct {
	ApplicationID string           `json:"applicationId,omitempty"`
	Candidate     CandidateProfile `json:"candidate"`
	Job           JobRequirements  `json:"job"`
}

type CandidateProfile struct {
	ID              string   `json:"id"`
	Skills          []string `json:"skills"`
	ExperienceYears float64  `json:"experienceYears"`
	Education       string   `json:"education"`
	ResumeURL       string   `json:"resumeUrl"`
	Headline        string   `json:"headline"`
	Phone           string   `json:"phone"`
	Location        string   `json:"location"`
}

type JobRequirements struct {
	ID             string   `json:"id"`
	RequiredSkills []string `json:"requiredSkills"`
	MinExperience  float64  `json:"minExperience"`
	EducationLevel string   `json:"educationLevel"`
}

type Output struct {
	FitScore       int            `json:"fitScore"`
	FitLevel       string         `json:"fitLevel"`
	ScoreBreakdown ScoreBreakdown `json:"scoreBreakdown"`
	MissingSkills  []string       `json:"missingSkills"`
}

type ScoreBreakdown struct {
	Skills       int `json:"skills"`
	Experience   int `json:"experience"`
	Education    int `json:"education"`
	Completeness int `json:"completeness"`
}
