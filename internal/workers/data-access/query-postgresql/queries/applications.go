// internal/workers/data-access/query-postgresql/queries/applications.go
package queries

import (
	"context"
	"database/sql"
)

func CandidateApplications(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	candidateID, err := requireString(params, "candidateId")
	if err != nil {
		return nil, 0, 0, err
	}
	limit, offset := page(params)

	rows, execTime, err := list(ctx, db, `
		SELECT a.id, a.job_id, j.title, a.status, a.fit_score, a.created_at, a.updated_at
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		WHERE a.candidate_id = $1
		ORDER BY a.created_at DESC
		LIMIT $2 OFFSET $3`, candidateID, limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	return rows, len(rows), execTime, nil
}

func JobApplications(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	jobID, err := requireString(params, "jobId")
	if err != nil {
		return nil, 0, 0, err
	}
	limit, offset := page(params)

	rows, execTime, err := list(ctx, db, `
		SELECT a.id, a.candidate_id, p.full_name, a.status, a.fit_score, a.created_at
		FROM applications a
		JOIN profiles p ON p.id = a.candidate_id
		WHERE a.job_id = $1 AND ($2 = '' OR a.status = $2)
		ORDER BY a.fit_score DESC NULLS LAST, a.created_at
		LIMIT $3 OFFSET $4`, jobID, optionalString(params, "status"), limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	return rows, len(rows), execTime, nil
}

func BGVDocuments(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	candidateID, err := requireString(params, "candidateId")
	if err != nil {
		return nil, 0, 0, err
	}
	includeSuperseded, _ := params["includeSuperseded"].(bool)

	rows, execTime, err := list(ctx, db, `
		SELECT id, doc_type, file_bucket, file_path, status, remarks, reviewed_by, created_at
		FROM bgv_documents
		WHERE candidate_id = $1 AND ($2 OR status <> 'superseded')
		ORDER BY doc_type, created_at DESC`, candidateID, includeSuperseded)
	if err != nil {
		return nil, 0, 0, err
	}
	return rows, len(rows), execTime, nil
}
