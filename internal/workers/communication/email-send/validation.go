// internal/workers/communication/email-send/validation.go
package emailsend

import "job-portal-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"to", "subject", "body"},
		Properties: map[string]validation.Property{
			"from": {
				Type:        "string",
				Description: "Sender address, defaults to the configured sender",
				MaxLength:   validation.IntPtr(255),
			},
			"to": {
				Type:        "array",
				Description: "Recipient addresses",
				Items:       &validation.Property{Type: "string", MaxLength: validation.IntPtr(320)},
			},
			"cc": {
				Type:        "array",
				Description: "CC recipients",
				Items:       &validation.Property{Type: "string", MaxLength: validation.IntPtr(320)},
			},
			"bcc": {
				Type:        "array",
				Description: "BCC recipients",
				Items:       &validation.Property{Type: "string", MaxLength: validation.IntPtr(320)},
			},
			"replyTo": {
				Type:      "string",
				MaxLength: validation.IntPtr(255),
			},
			"subject": {
				Type:      "string",
				MinLength: validation.IntPtr(1),
				MaxLength: validation.IntPtr(500),
			},
			"body": {
				Type:      "string",
				MinLength: validation.IntPtr(1),
				MaxLength: validation.IntPtr(100000),
			},
			"isHtml": {
				Type: "boolean",
			},
			"priority": {
				Type: "string",
				Enum: []string{"high", "normal", "low"},
			},
			"attachments": {
				Type: "array",
				Items: &validation.Property{
					Type:     "object",
					Required: []string{"filename", "content"},
					Properties: map[string]validation.Property{
						"filename":    {Type: "string", MinLength: validation.IntPtr(1)},
						"contentType": {Type: "string"},
						"content":     {Type: "string", MinLength: validation.IntPtr(1)},
					},
				},
			},
			"metadata": {
				Type: "object",
			},
		},
		AdditionalProperties: false,
	}
}
