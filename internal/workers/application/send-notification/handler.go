// internal/workers/application/send-notification/handler.go
package sendnotification

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"job-portal-workers/internal/common/camunda"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/common/metrics"
	"job-portal-workers/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	TaskType = "send-notification"
)

var (
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
	ErrUnknownEventType       = errors.New("UNKNOWN_EVENT_TYPE")
	ErrDatabase               = errors.New("DATABASE_CONNECTION_FAILED")
)

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config    *Config
	db        *sql.DB
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
	limiter   *rate.Limiter
	templates map[string]models.NotificationTemplate
}

func NewHandler(config *Config, db *sql.DB, sesClient SESService, snsClient SNSService, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		db:        db,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
		sesClient: sesClient,
		snsClient: snsClient,
		limiter:   rate.NewLimiter(rate.Limit(config.RatePerSecond), config.Burst),
		templates: defaultTemplates,
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
		errorCode := "NOTIFICATION_SEND_FAILED"
		retries := int32(0)
		switch {
		case errors.Is(err, ErrNotificationSendFailed):
			retries = 3
		case errors.Is(err, ErrDatabase):
			errorCode, retries = "DATABASE_CONNECTION_FAILED", 3
		case errors.Is(err, ErrUnknownEventType):
			errorCode = "UNKNOWN_EVENT_TYPE"
		}
		timer.Failed(errorCode)
		camunda.FailJob(ctx, client, job, errorCode, err.Error(), retries, h.logger)
		return
	}

	timer.Completed()
	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	template, exists := h.templates[input.EventType]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, input.EventType)
	}

	notificationID := uuid.New().String()
	sentAt := time.Now().UTC().Format(time.RFC3339)

	recipient, err := h.getRecipient(ctx, input.RecipientID)
	if errors.Is(err, sql.ErrNoRows) {
		h.logger.Warn("recipient not found", map[string]interface{}{
			"recipientId": input.RecipientID,
		})
		return &Output{NotificationID: notificationID, Status: StatusDisabled, Channels: []string{}, SentAt: sentAt}, nil
	}
	if err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"recipientId": input.RecipientID,
		"fullName":    recipient.fullName,
		"eventType":   input.EventType,
		"priority":    input.Priority,
	}
	for k, v := range input.Metadata {
		data[k] = v
	}

	subject := models.RenderPlaceholders(template.Subject, data)
	body := models.RenderPlaceholders(template.Body, data)

	channels := []string{}

	if h.config.EmailEnabled && recipient.email != "" {
		if err := h.sendEmail(ctx, recipient.email, subject, body); err != nil {
			return nil, fmt.Errorf("%w: email to %s: %v", ErrNotificationSendFailed, input.RecipientID, err)
		}
		channels = append(channels, ChannelEmail)
	}

	// SMS only for high priority. An SMS failure after a delivered email is logged, not retried,
	// so the recipient does not get the email twice.
	if h.config.SMSEnabled && recipient.phone != "" && input.Priority == PriorityHigh {
		if err := h.sendSMS(ctx, recipient.phone, body); err != nil {
			if len(channels) == 0 {
				return nil, fmt.Errorf("%w: sms to %s: %v", ErrNotificationSendFailed, input.RecipientID, err)
			}
			h.logger.Error("SMS send failed", map[string]interface{}{
				"error":       err,
				"recipientId": input.RecipientID,
			})
		} else {
			channels = append(channels, ChannelSMS)
		}
	}

	status := StatusDisabled
	if len(channels) > 0 {
		status = StatusSent
	}

	h.recordNotification(ctx, notificationID, input, status, channels, data)

	h.logger.Info("notification processed", map[string]interface{}{
		"notificationId": notificationID,
		"recipientId":    input.RecipientID,
		"eventType":      input.EventType,
		"channels":       channels,
	})

	return &Output{
		NotificationID: notificationID,
		Status:         status,
		Channels:       channels,
		SentAt:         sentAt,
	}, nil
}

type recipient struct {
	email    string
	phone    string
	fullName string
}

func (h *Handler) getRecipient(ctx context.Context, recipientID string) (*recipient, error) {
	var r recipient
	var phone, fullName sql.NullString
	err := h.db.QueryRowContext(ctx,
		`SELECT email, phone, full_name FROM profiles WHERE id = $1`, recipientID).Scan(&r.email, &phone, &fullName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: recipient lookup: %v", ErrDatabase, err)
	}
	r.phone = phone.String
	r.fullName = fullName.String
	return &r, nil
}

// recordNotification keeps an in-app copy. Failures are logged only.
func (h *Handler) recordNotification(ctx context.Context, id string, input *Input, status string, channels []string, payload map[string]interface{}) {
	payloadJSON, _ := json.Marshal(payload)
	channelsJSON, _ := json.Marshal(channels)
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO notifications (id, recipient_id, event_type, status, channels, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
		id, input.RecipientID, input.EventType, status, channelsJSON, payloadJSON)
	if err != nil {
		h.logger.Warn("failed to record notification", map[string]interface{}{
			"notificationId": id,
			"error":          err,
		})
	}
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) error {
	if err := h.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, to, message string) error {
	if err := h.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
