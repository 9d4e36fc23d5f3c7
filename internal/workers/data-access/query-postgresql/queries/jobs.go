// internal/workers/data-access/query-postgresql/queries/jobs.go
package queries

import (
	"context"
	"database/sql"
)

func JobDetails(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	jobID, err := requireString(params, "jobId")
	if err != nil {
		return nil, 0, 0, err
	}

	row, execTime, err := one(ctx, db, `
		SELECT j.id, j.employer_id, j.title, j.description, j.location, j.job_type, j.remote,
		       j.salary_min, j.salary_max, j.skills, j.experience_min, j.status, j.applicant_count,
		       j.created_at, e.company_name
		FROM jobs j
		LEFT JOIN employer_profiles e ON e.profile_id = j.employer_id
		WHERE j.id = $1`, jobID)
	if err != nil {
		return nil, 0, 0, err
	}
	return row, 1, execTime, nil
}

func EmployerJobs(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	employerID, err := requireString(params, "employerId")
	if err != nil {
		return nil, 0, 0, err
	}
	limit, offset := page(params)

	rows, execTime, err := list(ctx, db, `
		SELECT id, title, location, job_type, status, applicant_count, created_at
		FROM jobs
		WHERE employer_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`, employerID, optionalString(params, "status"), limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	return rows, len(rows), execTime, nil
}

func SavedJobs(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	candidateID, err := requireString(params, "candidateId")
	if err != nil {
		return nil, 0, 0, err
	}
	limit, offset := page(params)

	rows, execTime, err := list(ctx, db, `
		SELECT j.id, j.title, j.location, j.job_type, j.status, s.saved_at
		FROM saved_jobs s
		JOIN jobs j ON j.id = s.job_id
		WHERE s.candidate_id = $1
		ORDER BY s.saved_at DESC
		LIMIT $2 OFFSET $3`, candidateID, limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	return rows, len(rows), execTime, nil
}
