// internal/workers/data-access/query-postgresql/models.go
package querypostgresql

import "job-portal-workers/internal/models"

type Input struct {
	QueryType         string `json:"queryType"`
	JobID             string `json:"jobId,omitempty"`
	EmployerID        string `json:"employerId,omitempty"`
	CandidateID       string `json:"candidateId,omitempty"`
	ConversationID    string `json:"conversationId,omitempty"`
	GroupID           string `json:"groupId,omitempty"`
	StudentID         string `json:"studentId,omitempty"`
	ApproverID        string `json:"approverId,omitempty"`
	Status            string `json:"status,omitempty"`
	IncludeSuperseded bool   `json:"includeSuperseded,omitempty"`
	Limit             int    `json:"limit,omitempty"`
	Offset            int    `json:"offset,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}

type QueryType = models.QueryType
