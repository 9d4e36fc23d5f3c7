// internal/workers/communication/email-send/models.go
package emailsend

import (
	"context"
	"time"

	"job-portal-workers/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/service/ses"
)

type Input struct {
	From        string                 `json:"from"`
	To          []string               `json:"to"`
	CC          []string               `json:"cc,omitempty"`
	BCC         []string               `json:"bcc,omitempty"`
	ReplyTo     string                 `json:"replyTo,omitempty"`
	Subject     string                 `json:"subject"`
	Body        string                 `json:"body"`
	IsHTML      bool                   `json:"isHtml"`
	Priority    string                 `json:"priority,omitempty"`
	Attachments []Attachment           `json:"attachments,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     string `json:"content"` // base64
}

type Output struct {
	Success    bool      `json:"success"`
	Message    string    `json:"message"`
	MessageID  string    `json:"messageId,omitempty"`
	Provider   string    `json:"provider,omitempty"`
	Recipients int       `json:"recipients"`
	SentAt     time.Time `json:"sentAt,omitempty"`
}

// SESService is the part of the SES client the worker calls.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

type ServiceDependencies struct {
	SES    SESService
	Logger logger.Logger
}
