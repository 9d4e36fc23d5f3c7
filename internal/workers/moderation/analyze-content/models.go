// internal/workers/moderation/analyze-content/models.go
package analyzecontent

type Input struct {
	ContentID     string `json:"contentId,omitempty"`
	ContentType   string `json:"contentType,omitempty"` // "job_description", "message", "announcement"
	Text          string `json:"text"`
	RejectIfToxic bool   `json:"rejectIfToxic,omitempty"`
}

type Output struct {
	ToxicityScore int      `json:"toxicityScore"`
	IsAppropriate bool     `json:"isAppropriate"`
	FlaggedTerms  []string `json:"flaggedTerms"`
	Suggestions   []string `json:"suggestions"`
	ImprovedText  string   `json:"improvedText"`
	WordCount     int      `json:"wordCount"`
}
