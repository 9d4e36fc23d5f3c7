// internal/workers/bgv/review-bgv-document/models.go
package reviewbgvdocument

type Input struct {
	DocumentID string `json:"documentId"`
	ReviewerID string `json:"reviewerId"`
	Decision   string `json:"decision"`
	Remarks    string `json:"remarks,omitempty"`
}

type Output struct {
	DocumentID    string            `json:"documentId"`
	CandidateID   string            `json:"candidateId"`
	DocType       string            `json:"docType"`
	Status        string            `json:"status"`
	OverallStatus string            `json:"overallStatus"`
	LatestByType  map[string]string `json:"latestByType"`
	ReviewedAt    string            `json:"reviewedAt"`
}
