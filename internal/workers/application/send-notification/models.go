// internal/workers/application/send-notification/models.go
package sendnotification

import "job-portal-workers/internal/models"

type Input struct {
	RecipientID string                 `json:"recipientId"`
	EventType   string                 `json:"eventType"`
	Priority    string                 `json:"priority,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	Status         string   `json:"status"` // "sent", "disabled"
	Channels       []string `json:"channels"`
	SentAt         string   `json:"sentAt"` // ISO 8601
}

const (
	StatusSent     = "sent"
	StatusDisabled = "disabled"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

const PriorityHigh = "high"

var defaultTemplates = map[string]models.NotificationTemplate{
	models.EventApplicationSubmitted: {
		Subject: "Application submitted: {{jobTitle}}",
		Body:    "Hi {{fullName}}, your application {{applicationId}} for {{jobTitle}} has been submitted.",
	},
	models.EventNewApplication: {
		Subject: "New applicant for {{jobTitle}}",
		Body:    "Hi {{fullName}}, {{candidateName}} applied to {{jobTitle}}. Fit score: {{fitScore}}.",
	},
	models.EventStatusChanged: {
		Subject: "Your application is now {{status}}",
		Body:    "Hi {{fullName}}, your application for {{jobTitle}} moved from {{previousStatus}} to {{status}}.",
	},
	models.EventBGVReviewed: {
		Subject: "Background verification update",
		Body:    "Hi {{fullName}}, your {{docType}} document was {{status}}. {{remarks}}",
	},
	models.EventLeaveReviewed: {
		Subject: "Leave application {{status}}",
		Body:    "Hi {{fullName}}, your leave from {{fromDate}} to {{toDate}} was {{status}}.",
	},
	models.EventAnnouncement: {
		Subject: "{{title}}",
		Body:    "{{body}}",
	},
}
