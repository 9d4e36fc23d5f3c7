// internal/workers/messaging/send-message/handler.go
package sendmessage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"job-portal-workers/internal/common/camunda"
	"job-portal-workers/internal/common/database"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/common/metrics"
	"job-portal-workers/internal/models"
	"job-portal-workers/pkg/mockai"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "send-message"

var (
	ErrValidationFailed     = errors.New("VALIDATION_FAILED")
	ErrConversationNotFound = errors.New("CONVERSATION_NOT_FOUND")
	ErrDatabase             = errors.New("DATABASE_CONNECTION_FAILED")
)

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	timer := metrics.StartJob(TaskType)
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		timer.Failed("PARSE_ERROR")
		camunda.FailJob(ctx, client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0, h.logger)
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		var errorCode string
		var retries int32
		switch {
		case errors.Is(err, ErrConversationNotFound):
			errorCode = "CONVERSATION_NOT_FOUND"
		case errors.Is(err, ErrValidationFailed):
			errorCode = "VALIDATION_FAILED"
		default:
			errorCode = "DATABASE_CONNECTION_FAILED"
			retries = 3
		}
		timer.Failed(errorCode)
		camunda.FailJob(ctx, client, job, errorCode, err.Error(), retries, h.logger)
		return
	}

	timer.Completed()
	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	body := strings.TrimSpace(input.Body)
	switch {
	case input.SenderID == "" || input.RecipientID == "":
		return nil, fmt.Errorf("%w: senderId and recipientId are required", ErrValidationFailed)
	case input.SenderID == input.RecipientID:
		return nil, fmt.Errorf("%w: cannot message yourself", ErrValidationFailed)
	case body == "":
		return nil, fmt.Errorf("%w: body is required", ErrValidationFailed)
	case utf8.RuneCountInString(body) > h.config.MaxBodyLength:
		return nil, fmt.Errorf("%w: body exceeds %d characters", ErrValidationFailed, h.config.MaxBodyLength)
	}

	score := mockai.CalculateToxicityScore(body)
	flagged := score >= h.config.FlagThreshold
	a, b := models.OrderedPair(input.SenderID, input.RecipientID)
	now := time.Now().UTC()

	msg := models.Message{
		ID:       uuid.New().String(),
		SenderID: input.SenderID,
		Body:     body,
		Flagged:  flagged,
	}
	var created bool

	err := database.WithTx(ctx, h.db, func(tx *sql.Tx) error {
		var err error
		msg.ConversationID, created, err = h.resolveConversation(ctx, tx, input.ConversationID, a, b, now)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO messages (id, conversation_id, sender_id, body, flagged, toxicity_score, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			msg.ID, msg.ConversationID, msg.SenderID, msg.Body, msg.Flagged, score, now); err != nil {
			return fmt.Errorf("%w: insert message: %v", ErrDatabase, err)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE conversations SET last_message_at = $1 WHERE id = $2`,
			now, msg.ConversationID); err != nil {
			return fmt.Errorf("%w: touch conversation: %v", ErrDatabase, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"messageId":      msg.ID,
		"conversationId": msg.ConversationID,
		"created":        created,
	}
	if flagged {
		fields["toxicityScore"] = score
		h.logger.Warn("message flagged for review", fields)
	} else {
		h.logger.Info("message sent", fields)
	}

	return &Output{
		MessageID:           msg.ID,
		ConversationID:      msg.ConversationID,
		ConversationCreated: created,
		Flagged:             flagged,
		ToxicityScore:       score,
		SentAt:              now.Format(time.RFC3339),
	}, nil
}

// resolveConversation returns the conversation for the ordered pair, creating it when absent.
func (h *Handler) resolveConversation(ctx context.Context, tx *sql.Tx, requested, a, b string, now time.Time) (string, bool, error) {
	if requested != "" {
		var pa, pb string
		err := tx.QueryRowContext(ctx, `SELECT participant_a, participant_b FROM conversations WHERE id = $1`, requested).Scan(&pa, &pb)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && (pa != a || pb != b)) {
			return "", false, fmt.Errorf("%w: %s", ErrConversationNotFound, requested)
		}
		if err != nil {
			return "", false, fmt.Errorf("%w: %v", ErrDatabase, err)
		}
		return requested, false, nil
	}

	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM conversations WHERE participant_a = $1 AND participant_b = $2`, a, b).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", false, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	// a concurrent sender may create the same pair, so return whichever row won.
	// xmax is zero only for a freshly inserted tuple.
	var created bool
	id = uuid.New().String()
	err = tx.QueryRowContext(ctx, `
		INSERT INTO conversations (id, participant_a, participant_b, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (participant_a, participant_b) DO UPDATE SET participant_a = EXCLUDED.participant_a
		RETURNING id, (xmax = 0) AS created`, id, a, b, now).Scan(&id, &created)
	if err != nil {
		return "", false, fmt.Errorf("%w: create conversation: %v", ErrDatabase, err)
	}
	return id, created, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
