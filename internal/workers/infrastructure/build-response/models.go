// internal/workers/infrastructure/build-response/models.go
package buildresponse

type Input struct {
	TemplateID string                 `json:"templateId"`
	RequestID  string                 `json:"requestId"`
	Data       map[string]interface{} `json:"data"`
}

type Output struct {
	Response ResponsePayload `json:"response"`
}

type ResponsePayload struct {
	RequestID string                 `json:"requestId"`
	Status    string                 `json:"status"`
	Data      map[string]interface{} `json:"data"`
	Metadata  ResponseMetadata       `json:"metadata"`
}

type ResponseMetadata struct {
	TemplateID      string `json:"templateId"`
	TemplateVersion string `json:"templateVersion,omitempty"`
	Timestamp       string `json:"timestamp"`
	Version         string `json:"version"`
}

// TemplateDefinition is one entry of the JSON template registry.
type TemplateDefinition struct {
	ID       string                 `json:"id"`
	Type     string                 `json:"type"`
	Schema   map[string]interface{} `json:"schema"`
	Template map[string]interface{} `json:"template"`
	Version  string                 `json:"version"`
}

type templateRegistry struct {
	Templates []TemplateDefinition `json:"templates"`
}
