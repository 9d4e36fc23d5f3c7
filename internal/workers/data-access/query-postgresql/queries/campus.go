// internal/workers/data-access/query-postgresql/queries/campus.go
package queries

import (
	"context"
	"database/sql"
	"fmt"
)

func ConversationMessages(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	conversationID, err := requireString(params, "conversationId")
	if err != nil {
		return nil, 0, 0, err
	}
	limit, offset := page(params)

	rows, execTime, err := list(ctx, db, `
		SELECT id, sender_id, body, flagged, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3`, conversationID, limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	return rows, len(rows), execTime, nil
}

func GroupAnnouncements(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	groupID, err := requireString(params, "groupId")
	if err != nil {
		return nil, 0, 0, err
	}
	limit, offset := page(params)

	rows, execTime, err := list(ctx, db, `
		SELECT id, author_id, title, body, group_ids, created_at
		FROM announcements
		WHERE $1 = ANY(group_ids)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, groupID, limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	return rows, len(rows), execTime, nil
}

// LeaveApplications lists a student's leave or an approver's queue.
func LeaveApplications(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	column, value := "student_id", optionalString(params, "studentId")
	if value == "" {
		column, value = "approver_id", optionalString(params, "approverId")
	}
	if value == "" {
		return nil, 0, 0, fmt.Errorf("%w: studentId or approverId", ErrMissingParam)
	}
	limit, offset := page(params)

	query := fmt.Sprintf(`
		SELECT id, student_id, approver_id, from_date, to_date, reason, status, remarks, created_at
		FROM leave_applications
		WHERE %s = $1 AND ($2 = '' OR status = $2)
		ORDER BY from_date DESC
		LIMIT $3 OFFSET $4`, column)

	rows, execTime, err := list(ctx, db, query, value, optionalString(params, "status"), limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	return rows, len(rows), execTime, nil
}
