package emailsend

import (
	"bytes"
	"context"
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"job-portal-workers/internal/common/errors"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/common/validation"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/emersion/go-message/mail"
)

const provider = "SES"

type Service struct {
	config *Config
	ses    SESService
	logger logger.Logger
	now    func() time.Time
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config: config,
		ses:    deps.SES,
		logger: deps.Logger,
		now:    time.Now,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.From == "" {
		input.From = s.config.DefaultFrom
	}

	s.logger.Info("sending email", map[string]interface{}{
		"to":          input.To,
		"subject":     input.Subject,
		"isHtml":      input.IsHTML,
		"attachments": len(input.Attachments),
	})

	if err := s.validateAddresses(input); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	var (
		messageID string
		err       error
	)
	if len(input.Attachments) > 0 {
		messageID, err = s.sendRaw(ctx, input)
	} else {
		messageID, err = s.sendSimple(ctx, input)
	}
	if err != nil {
		return nil, mapSESError(err)
	}

	s.logger.Info("email sent", map[string]interface{}{
		"messageId": messageID,
		"to":        input.To,
	})

	return &Output{
		Success:    true,
		Message:    "Email sent successfully",
		MessageID:  messageID,
		Provider:   provider,
		Recipients: len(input.To) + len(input.CC) + len(input.BCC),
		SentAt:     s.now().UTC(),
	}, nil
}

func (s *Service) validateAddresses(input *Input) error {
	if len(input.To) == 0 {
		return fmt.Errorf("at least one 'to' address is required")
	}
	total := len(input.To) + len(input.CC) + len(input.BCC)
	if total > s.config.MaxRecipients {
		return fmt.Errorf("%d recipients exceeds the limit of %d", total, s.config.MaxRecipients)
	}

	if err := checkAddress("from", input.From); err != nil {
		return err
	}
	for field, list := range map[string][]string{"to": input.To, "cc": input.CC, "bcc": input.BCC} {
		for _, addr := range list {
			if err := checkAddress(field, addr); err != nil {
				return err
			}
		}
	}
	if input.ReplyTo != "" {
		if err := checkAddress("replyTo", input.ReplyTo); err != nil {
			return err
		}
	}
	return nil
}

// checkAddress accepts "Name <user@host>" as well as bare addresses.
func checkAddress(field, raw string) error {
	parsed, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil || !validation.ValidateEmail(parsed.Address) {
		return fmt.Errorf("invalid '%s' email address: %s", field, raw)
	}
	return nil
}

func (s *Service) sendSimple(ctx context.Context, input *Input) (string, error) {
	body := &types.Body{}
	content := &types.Content{Data: aws.String(input.Body), Charset: aws.String("UTF-8")}
	if input.IsHTML {
		body.Html = content
	} else {
		body.Text = content
	}

	req := &ses.SendEmailInput{
		Source: aws.String(input.From),
		Destination: &types.Destination{
			ToAddresses:  input.To,
			CcAddresses:  input.CC,
			BccAddresses: input.BCC,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(input.Subject), Charset: aws.String("UTF-8")},
			Body:    body,
		},
		Tags: messageTags(input),
	}
	if input.ReplyTo != "" {
		req.ReplyToAddresses = []string{input.ReplyTo}
	}
	if s.config.ConfigurationSet != "" {
		req.ConfigurationSetName = aws.String(s.config.ConfigurationSet)
	}

	out, err := s.ses.SendEmail(ctx, req)
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}

func (s *Service) sendRaw(ctx context.Context, input *Input) (string, error) {
	raw, err := buildRawMessage(input, s.now())
	if err != nil {
		return "", errors.NewValidationError(err.Error())
	}

	destinations := make([]string, 0, len(input.To)+len(input.CC)+len(input.BCC))
	destinations = append(destinations, input.To...)
	destinations = append(destinations, input.CC...)
	destinations = append(destinations, input.BCC...)

	req := &ses.SendRawEmailInput{
		Source:       aws.String(input.From),
		Destinations: destinations,
		RawMessage:   &types.RawMessage{Data: raw},
		Tags:         messageTags(input),
	}
	if s.config.ConfigurationSet != "" {
		req.ConfigurationSetName = aws.String(s.config.ConfigurationSet)
	}

	out, err := s.ses.SendRawEmail(ctx, req)
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}

// buildRawMessage renders a multipart/mixed message. BCC is left out of the headers.
func buildRawMessage(input *Input, date time.Time) ([]byte, error) {
	var h mail.Header
	h.SetDate(date)
	h.SetSubject(input.Subject)
	for _, field := range []struct {
		key   string
		addrs []string
	}{
		{"From", []string{input.From}},
		{"To", input.To},
		{"Cc", input.CC},
		{"Reply-To", []string{input.ReplyTo}},
	} {
		list, err := addressList(field.addrs)
		if err != nil {
			return nil, err
		}
		if len(list) > 0 {
			h.SetAddressList(field.key, list)
		}
	}
	for key, value := range priorityHeaders(input.Priority) {
		h.Set(key, value)
	}
	if err := h.GenerateMessageID(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, err
	}

	var bodyHeader mail.InlineHeader
	contentType := "text/plain"
	if input.IsHTML {
		contentType = "text/html"
	}
	bodyHeader.SetContentType(contentType, map[string]string{"charset": "UTF-8"})
	body, err := mw.CreateSingleInline(bodyHeader)
	if err != nil {
		return nil, err
	}
	if _, err := body.Write([]byte(input.Body)); err != nil {
		return nil, err
	}
	if err := body.Close(); err != nil {
		return nil, err
	}

	for _, a := range input.Attachments {
		data, err := base64.StdEncoding.DecodeString(a.Content)
		if err != nil {
			return nil, fmt.Errorf("attachment %s is not valid base64", a.Filename)
		}
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		var ah mail.AttachmentHeader
		ah.SetContentType(ct, nil)
		ah.SetFilename(a.Filename)
		w, err := mw.CreateAttachment(ah)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addressList(raw []string) ([]*mail.Address, error) {
	var list []*mail.Address
	for _, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}
		addr, err := mail.ParseAddress(strings.TrimSpace(r))
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", r, err)
		}
		list = append(list, addr)
	}
	return list, nil
}

func priorityHeaders(priority string) map[string]string {
	switch strings.ToLower(priority) {
	case "high":
		return map[string]string{"X-Priority": "1", "Importance": "high"}
	case "low":
		return map[string]string{"X-Priority": "5", "Importance": "low"}
	case "normal":
		return map[string]string{"X-Priority": "3"}
	}
	return nil
}

// messageTags forwards string metadata as SES message tags.
func messageTags(input *Input) []types.MessageTag {
	var tags []types.MessageTag
	for k, v := range input.Metadata {
		str, ok := v.(string)
		if !ok || str == "" {
			continue
		}
		tags = append(tags, types.MessageTag{Name: aws.String(k), Value: aws.String(str)})
	}
	return tags
}

// mapSESError makes rejected messages permanent and everything else retryable.
func mapSESError(err error) *errors.StandardError {
	var stdErr *errors.StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	var rejected *types.MessageRejected
	if stderrors.As(err, &rejected) {
		return errors.New(errors.ErrCodeNotificationSendFailed, "Email rejected by SES", rejected.ErrorMessage(), false)
	}
	var unverified *types.MailFromDomainNotVerifiedException
	if stderrors.As(err, &unverified) {
		return errors.New(errors.ErrCodeNotificationSendFailed, "Sender domain not verified", unverified.ErrorMessage(), false)
	}
	return errors.NewNotificationSendFailedError("email", err)
}
