// internal/workers/infrastructure/select-template/config.go
package selecttemplate

import (
	"fmt"
	"strings"
	"time"

	"job-portal-workers/internal/models"
)

type Config struct {
	// Rules maps "<eventType>.<role>.<channel>", "<eventType>.<channel>" or "<eventType>" to a template id.
	Rules   map[string]string
	Default string
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Rules: map[string]string{
			models.EventApplicationSubmitted + ".candidate.email": "application-received-candidate",
			models.EventNewApplication + ".employer.email":        "new-application-employer",
			models.EventNewApplication + ".sms":                   "new-application-sms",
			models.EventStatusChanged + ".email":                  "application-status-email",
			models.EventStatusChanged + ".sms":                    "application-status-sms",
			models.EventBGVReviewed:                               "bgv-reviewed",
			models.EventLeaveReviewed + ".student.email":          "leave-reviewed-student",
			models.EventAnnouncement:                              "campus-announcement",
		},
		Default: "generic-notification",
		Timeout: 5 * time.Second,
	}
}

// FlattenRules turns nested config maps into dotted keys. Leaves must be strings.
func FlattenRules(nested map[string]interface{}) (map[string]string, error) {
	out := make(map[string]string)
	if err := flatten("", nested, out); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(prefix string, node map[string]interface{}, out map[string]string) error {
	for k, v := range node {
		key := strings.ToLower(k)
		if prefix != "" {
			key = prefix + "." + key
		}
		switch val := v.(type) {
		case string:
			out[key] = val
		case map[string]interface{}:
			if err := flatten(key, val, out); err != nil {
				return err
			}
		case map[interface{}]interface{}:
			converted := make(map[string]interface{}, len(val))
			for ik, iv := range val {
				converted[fmt.Sprint(ik)] = iv
			}
			if err := flatten(key, converted, out); err != nil {
				return err
			}
		default:
			return fmt.Errorf("template rule %s: expected string or map, got %T", key, v)
		}
	}
	return nil
}
