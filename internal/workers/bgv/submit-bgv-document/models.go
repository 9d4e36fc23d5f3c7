// internal/workers/bgv/submit-bgv-document/models.go
package submitbgvdocument

import "job-portal-workers/internal/models"

type Input struct {
	CandidateID string         `json:"candidateId"`
	DocType     string         `json:"docType"`
	File        models.FileRef `json:"file"`
}

type Output struct {
	DocumentID      string `json:"documentId"`
	Status          string `json:"status"`
	SupersededCount int64  `json:"supersededCount"`
	SubmittedAt     string `json:"submittedAt"`
}
