// internal/workers/application/create-application-record/handler_test.go
package createapplicationrecord

import (
	"context"
	"errors"
	"testing"

	"job-portal-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestInput() *Input {
	return &Input{
		CandidateID: "cand-001",
		JobID:       "job-001",
		ValidatedData: map[string]interface{}{
			"coverLetter": "Keen to join.",
			"resume":      map[string]interface{}{"bucket": "resumes", "path": "cand-001/cv.pdf"},
			"answers":     map[string]interface{}{"noticePeriod": "30 days"},
		},
		FitScore: 82,
	}
}

func expectOpenJob(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT status, employer_id FROM jobs WHERE id = \$1`).
		WithArgs("job-001").
		WillReturnRows(sqlmock.NewRows([]string{"status", "employer_id"}).AddRow("active", "emp-9"))
}

func expectNoDuplicate(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("cand-001", "job-001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
}

func TestHandler_Execute_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectOpenJob(mock)
	expectNoDuplicate(mock)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO applications`).
		WithArgs(
			sqlmock.AnyArg(),
			"cand-001",
			"job-001",
			"Keen to join.",
			"resumes",
			"cand-001/cv.pdf",
			[]byte(`{"noticePeriod":"30 days"}`),
			82,
			"applied",
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE jobs SET applicant_count = applicant_count \+ 1`).
		WithArgs("job-001").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs("application_created", "application", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	handler := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)

	assert.NotEmpty(t, output.ApplicationID)
	assert.Equal(t, "applied", output.ApplicationStatus)
	assert.Equal(t, "emp-9", output.EmployerID)
	assert.NotEmpty(t, output.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_AuditFailureIsIgnored(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectOpenJob(mock)
	expectNoDuplicate(mock)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO applications`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE jobs`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec(`INSERT INTO audit_log`).WillReturnError(errors.New("audit table missing"))

	handler := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))
	_, err = handler.Execute(context.Background(), createTestInput())
	assert.NoError(t, err)
}

func TestHandler_Execute_Failures(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name: "job closed",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(`FROM jobs`).
					WillReturnRows(sqlmock.NewRows([]string{"status", "employer_id"}).AddRow("closed", "emp-9"))
			},
			wantErr: ErrJobNotOpen,
		},
		{
			name: "job pending review",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(`FROM jobs`).
					WillReturnRows(sqlmock.NewRows([]string{"status", "employer_id"}).AddRow("pending_review", "emp-9"))
			},
			wantErr: ErrJobNotOpen,
		},
		{
			name: "job missing",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(`FROM jobs`).WillReturnRows(sqlmock.NewRows([]string{"status", "employer_id"}))
			},
			wantErr: ErrJobNotOpen,
		},
		{
			name: "already applied",
			setupMock: func(m sqlmock.Sqlmock) {
				expectOpenJob(m)
				m.ExpectQuery(`SELECT EXISTS`).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			wantErr: ErrDuplicateApplication,
		},
		{
			name: "unique violation from concurrent insert",
			setupMock: func(m sqlmock.Sqlmock) {
				expectOpenJob(m)
				expectNoDuplicate(m)
				m.ExpectBegin()
				m.ExpectExec(`INSERT INTO applications`).WillReturnError(&pq.Error{Code: "23505"})
				m.ExpectRollback()
			},
			wantErr: ErrDuplicateApplication,
		},
		{
			name: "insert fails",
			setupMock: func(m sqlmock.Sqlmock) {
				expectOpenJob(m)
				expectNoDuplicate(m)
				m.ExpectBegin()
				m.ExpectExec(`INSERT INTO applications`).WillReturnError(errors.New("connection reset"))
				m.ExpectRollback()
			},
			wantErr: ErrDatabaseInsertFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.setupMock(mock)

			handler := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))
			_, err = handler.Execute(context.Background(), createTestInput())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_Validation(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	handler := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))
	_, err = handler.Execute(context.Background(), &Input{CandidateID: "cand-001"})
	assert.ErrorIs(t, err, ErrValidationFailed)
}
