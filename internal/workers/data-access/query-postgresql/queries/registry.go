// internal/workers/data-access/query-postgresql/queries/registry.go
package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"job-portal-workers/internal/models"
)

var (
	ErrMissingParam     = errors.New("missing required parameter")
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrNotFound         = errors.New("record not found")
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// QueryFunc returns: data, rowCount, executionTime (ms), error
type QueryFunc func(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error)

var Registry = map[models.QueryType]QueryFunc{
	models.QueryTypeJobDetails:            JobDetails,
	models.QueryTypeEmployerJobs:          EmployerJobs,
	models.QueryTypeCandidateApplications: CandidateApplications,
	models.QueryTypeJobApplications:       JobApplications,
	models.QueryTypeSavedJobs:             SavedJobs,
	models.QueryTypeConversationMessages:  ConversationMessages,
	models.QueryTypeGroupAnnouncements:    GroupAnnouncements,
	models.QueryTypeLeaveApplications:     LeaveApplications,
	models.QueryTypeBGVDocuments:          BGVDocuments,
}

func Execute(ctx context.Context, db *sql.DB, queryType models.QueryType, params map[string]interface{}) (interface{}, int, int64, error) {
	fn, exists := Registry[queryType]
	if !exists {
		return nil, 0, 0, fmt.Errorf("%w: %s", ErrUnknownQueryType, queryType)
	}
	return fn(ctx, db, params)
}

func requireString(params map[string]interface{}, key string) (string, error) {
	v, ok := params[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingParam, key)
	}
	return v, nil
}

func optionalString(params map[string]interface{}, key string) string {
	v, _ := params[key].(string)
	return v
}

// page reads limit/offset, clamping the limit to MaxLimit.
func page(params map[string]interface{}) (int, int) {
	limit, _ := params["limit"].(int)
	offset, _ := params["offset"].(int)
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
