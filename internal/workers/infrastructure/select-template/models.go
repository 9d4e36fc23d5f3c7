// internal/workers/infrastructure/select-template/models.go
package selecttemplate

type Input struct {
	EventType string `json:"eventType"`
	Role      string `json:"role,omitempty"`
	Channel   string `json:"channel,omitempty"`
}

type Output struct {
	TemplateID string `json:"templateId"`
	// MatchedRule is empty when the default was used.
	MatchedRule string `json:"matchedRule,omitempty"`
	IsDefault   bool   `json:"isDefault"`
}
