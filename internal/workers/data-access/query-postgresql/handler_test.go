// internal/workers/data-access/query-postgresql/handler_test.go
package querypostgresql

import (
	"context"
	"errors"
	"testing"
	"time"

	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/models"
	"job-portal-workers/internal/workers/data-access/query-postgresql/queries"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

var createdAt = time.Date(2026, 2, 20, 9, 30, 0, 0, time.UTC)

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		input          *Input
		mockQuery      func(mock sqlmock.Sqlmock)
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name:  "job details",
			input: &Input{QueryType: "job_details", JobID: "job-1"},
			mockQuery: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{
					"id", "employer_id", "title", "description", "location", "job_type", "remote",
					"salary_min", "salary_max", "skills", "experience_min", "status", "applicant_count",
					"created_at", "company_name",
				}).AddRow(
					"job-1", "emp-1", "Go Engineer", "Build workers", "Pune", "full_time", false,
					1200000, 2400000, "{go,postgres}", 2, "active", 7, createdAt, "Acme",
				)
				mock.ExpectQuery(`FROM jobs j LEFT JOIN employer_profiles e ON e.profile_id = j.employer_id WHERE j.id = \$1`).
					WithArgs("job-1").
					WillReturnRows(rows)
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 1, output.RowCount)
				data := output.Data.(map[string]interface{})
				assert.Equal(t, "job-1", data["id"])
				assert.Equal(t, "emp-1", data["employerId"])
				assert.Equal(t, []string{"go", "postgres"}, data["skills"])
				assert.Equal(t, "2026-02-20T09:30:00Z", data["createdAt"])
				assert.Equal(t, "Acme", data["companyName"])
			},
		},
		{
			name:  "employer jobs filtered by status",
			input: &Input{QueryType: "employer_jobs", EmployerID: "emp-1", Status: "active", Limit: 500},
			mockQuery: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "title", "location", "job_type", "status", "applicant_count", "created_at"}).
					AddRow("job-1", "Go Engineer", "Pune", "full_time", "active", 7, createdAt).
					AddRow("job-2", "SRE", "Remote", "contract", "active", 0, createdAt)
				mock.ExpectQuery(`FROM jobs WHERE employer_id = \$1`).
					WithArgs("emp-1", "active", queries.MaxLimit, 0).
					WillReturnRows(rows)
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 2, output.RowCount)
				data := output.Data.([]map[string]interface{})
				assert.Equal(t, "SRE", data[1]["title"])
				assert.Equal(t, 0, data[1]["applicantCount"])
			},
		},
		{
			name:  "candidate applications",
			input: &Input{QueryType: "candidate_applications", CandidateID: "cand-1"},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM applications a JOIN jobs j ON j.id = a.job_id WHERE a.candidate_id = \$1`).
					WithArgs("cand-1", queries.DefaultLimit, 0).
					WillReturnRows(sqlmock.NewRows([]string{"id", "job_id", "title", "status", "fit_score", "created_at", "updated_at"}).
						AddRow("app-1", "job-1", "Go Engineer", "shortlisted", 82, createdAt, createdAt))
			},
			validateOutput: func(t *testing.T, output *Output) {
				data := output.Data.([]map[string]interface{})
				assert.Equal(t, "shortlisted", data[0]["status"])
				assert.Equal(t, 82, data[0]["fitScore"])
			},
		},
		{
			name:  "job applications",
			input: &Input{QueryType: "job_applications", JobID: "job-1"},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM applications a JOIN profiles p ON p.id = a.candidate_id WHERE a.job_id = \$1`).
					WithArgs("job-1", "", queries.DefaultLimit, 0).
					WillReturnRows(sqlmock.NewRows([]string{"id", "candidate_id", "full_name", "status", "fit_score", "created_at"}).
						AddRow("app-1", "cand-1", "Ana Lima", "submitted", nil, createdAt))
			},
			validateOutput: func(t *testing.T, output *Output) {
				data := output.Data.([]map[string]interface{})
				assert.Equal(t, "Ana Lima", data[0]["fullName"])
				assert.Nil(t, data[0]["fitScore"])
			},
		},
		{
			name:  "saved jobs",
			input: &Input{QueryType: "saved_jobs", CandidateID: "cand-1", Offset: 10},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM saved_jobs s JOIN jobs j ON j.id = s.job_id`).
					WithArgs("cand-1", queries.DefaultLimit, 10).
					WillReturnRows(sqlmock.NewRows([]string{"id", "title", "location", "job_type", "status", "saved_at"}))
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 0, output.RowCount)
				assert.Empty(t, output.Data)
			},
		},
		{
			name:  "conversation messages",
			input: &Input{QueryType: "conversation_messages", ConversationID: "conv-1", Limit: 20},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM messages WHERE conversation_id = \$1 ORDER BY created_at`).
					WithArgs("conv-1", 20, 0).
					WillReturnRows(sqlmock.NewRows([]string{"id", "sender_id", "body", "flagged", "created_at"}).
						AddRow("m-1", "amy", []byte("hello"), false, createdAt))
			},
			validateOutput: func(t *testing.T, output *Output) {
				data := output.Data.([]map[string]interface{})
				assert.Equal(t, "hello", data[0]["body"])
				assert.Equal(t, "amy", data[0]["senderId"])
			},
		},
		{
			name:  "group announcements",
			input: &Input{QueryType: "group_announcements", GroupID: "cse"},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM announcements WHERE \$1 = ANY\(group_ids\)`).
					WithArgs("cse", queries.DefaultLimit, 0).
					WillReturnRows(sqlmock.NewRows([]string{"id", "author_id", "title", "body", "group_ids", "created_at"}).
						AddRow("ann-1", "fac-1", "Drive", "Friday", []byte("{cse,ece}"), createdAt))
			},
			validateOutput: func(t *testing.T, output *Output) {
				data := output.Data.([]map[string]interface{})
				assert.Equal(t, []string{"cse", "ece"}, data[0]["groupIds"])
			},
		},
		{
			name:  "leave applications by approver",
			input: &Input{QueryType: "leave_applications", ApproverID: "fac-1", Status: "pending"},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM leave_applications WHERE approver_id = \$1`).
					WithArgs("fac-1", "pending", queries.DefaultLimit, 0).
					WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "approver_id", "from_date", "to_date", "reason", "status", "remarks", "created_at"}).
						AddRow("lv-1", "stu-1", "fac-1", "2026-03-02", "2026-03-04", "fest", "pending", nil, createdAt))
			},
			validateOutput: func(t *testing.T, output *Output) {
				data := output.Data.([]map[string]interface{})
				assert.Equal(t, "stu-1", data[0]["studentId"])
			},
		},
		{
			name:  "bgv documents",
			input: &Input{QueryType: "bgv_documents", CandidateID: "cand-1"},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM bgv_documents WHERE candidate_id = \$1`).
					WithArgs("cand-1", false).
					WillReturnRows(sqlmock.NewRows([]string{"id", "doc_type", "file_bucket", "file_path", "status", "remarks", "reviewed_by", "created_at"}).
						AddRow("doc-1", "id_proof", "resumes", "cand-1/id.pdf", "verified", nil, "admin-1", createdAt))
			},
			validateOutput: func(t *testing.T, output *Output) {
				data := output.Data.([]map[string]interface{})
				assert.Equal(t, "id_proof", data[0]["docType"])
				assert.Equal(t, "admin-1", data[0]["reviewedBy"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mockQuery(mock)

			handler := NewHandler(createTestConfig(), db, createTestLogger(t))
			output, err := handler.Execute(context.Background(), tt.input)

			require.NoError(t, err)
			require.NotNil(t, output)
			assert.GreaterOrEqual(t, output.QueryExecutionTime, int64(0))
			tt.validateOutput(t, output)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     *Input
		mockQuery func(mock sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name:    "unknown query type",
			input:   &Input{QueryType: "recruiter_notes"},
			wantErr: ErrInvalidQueryType,
		},
		{
			name:    "missing parameter",
			input:   &Input{QueryType: "saved_jobs"},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "leave needs student or approver",
			input:   &Input{QueryType: "leave_applications"},
			wantErr: ErrValidationFailed,
		},
		{
			name:  "job not found",
			input: &Input{QueryType: "job_details", JobID: "job-x"},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM jobs j`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
			wantErr: ErrResourceNotFound,
		},
		{
			name:  "driver failure",
			input: &Input{QueryType: "employer_jobs", EmployerID: "emp-1"},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM jobs`).WillReturnError(errors.New("connection reset"))
			},
			wantErr: ErrQueryExecutionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			if tt.mockQuery != nil {
				tt.mockQuery(mock)
			}

			_, err = NewHandler(createTestConfig(), db, createTestLogger(t)).Execute(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_Timeout(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM messages`).
		WillDelayFor(200 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = NewHandler(createTestConfig(), db, createTestLogger(t)).Execute(ctx, &Input{
		QueryType: string(models.QueryTypeConversationMessages), ConversationID: "conv-1",
	})
	assert.ErrorIs(t, err, ErrQueryTimeout)
}

func TestHandler_Execute_PageSize(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM applications a JOIN jobs j ON j.id = a.job_id WHERE a.candidate_id = \$1`).
		WithArgs("cand-1", 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "job_id", "title", "status", "fit_score", "created_at", "updated_at"}))

	output, err := NewHandler(LoadConfig(), db, createTestLogger(t)).Execute(context.Background(), &Input{
		QueryType: "candidate_applications", CandidateID: "cand-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, output.RowCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistry_CoversEveryQueryType(t *testing.T) {
	for _, qt := range []models.QueryType{
		models.QueryTypeJobDetails, models.QueryTypeEmployerJobs, models.QueryTypeCandidateApplications,
		models.QueryTypeJobApplications, models.QueryTypeSavedJobs, models.QueryTypeConversationMessages,
		models.QueryTypeGroupAnnouncements, models.QueryTypeLeaveApplications, models.QueryTypeBGVDocuments,
	} {
		assert.Contains(t, queries.Registry, qt)
	}
	assert.Len(t, queries.Registry, 9)
}
