package authsigninlinkedin

import "job-portal-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"authCode"},
		Properties: map[string]validation.Property{
			"authCode": {
				Type:        "string",
				Description: "Authorization code returned to the LinkedIn redirect URI",
				MinLength:   validation.IntPtr(10),
				MaxLength:   validation.IntPtr(1000),
			},
			"redirectUri": {
				Type:      "string",
				Format:    "uri",
				MaxLength: validation.IntPtr(500),
			},
			"state": {
				Type:      "string",
				MaxLength: validation.IntPtr(500),
			},
			"role": {
				Type: "string",
			},
		},
		AdditionalProperties: true,
	}
}
