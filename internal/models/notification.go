// internal/models/notification.go
package models

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	EventApplicationSubmitted = "application_submitted"
	EventNewApplication       = "new_application"
	EventStatusChanged        = "status_changed"
	EventBGVReviewed          = "bgv_reviewed"
	EventLeaveReviewed        = "leave_reviewed"
	EventAnnouncement         = "announcement"
)

type Notification struct {
	ID          string                 `json:"id"`
	RecipientID string                 `json:"recipientId"`
	Type        string                 `json:"type"`
	Channel     string                 `json:"channel"` // "email", "sms"
	Status      string                 `json:"status"`  // "sent", "failed", "disabled"
	Payload     map[string]interface{} `json:"payload"`
	SentAt      string                 `json:"sentAt"`
}

type NotificationTemplate struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

var placeholder = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.]+)\s*\}\}`)

// RenderPlaceholders replaces {{key}} with data[key]. Dotted keys walk nested maps.
// Unknown keys render as an empty string.
func RenderPlaceholders(tpl string, data map[string]interface{}) string {
	return placeholder.ReplaceAllStringFunc(tpl, func(m string) string {
		key := placeholder.FindStringSubmatch(m)[1]
		if v, ok := Lookup(data, key); ok && v != nil {
			return formatValue(v)
		}
		return ""
	})
}

// Lookup resolves a dotted path in nested maps.
func Lookup(data map[string]interface{}, path string) (interface{}, bool) {
	var current interface{} = data
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func formatValue(v interface{}) string {
	if f, ok := v.(float64); ok && f == math.Trunc(f) {
		return strconv.FormatInt(int64(f), 10)
	}
	return fmt.Sprint(v)
}
