package registeruser

import "job-portal-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"email", "password", "fullName", "role"},
		Properties: map[string]validation.Property{
			"email": {
				Type:      "string",
				Format:    "email",
				MaxLength: validation.IntPtr(254),
			},
			"password": {
				Type:      "string",
				MinLength: validation.IntPtr(8),
				MaxLength: validation.IntPtr(128),
			},
			"fullName": {
				Type:      "string",
				MinLength: validation.IntPtr(1),
				MaxLength: validation.IntPtr(200),
			},
			"role": {
				Type: "string",
			},
			"phone": {
				Type:   "string",
				Format: "phone",
			},
			"captchaId": {
				Type:      "string",
				MaxLength: validation.IntPtr(100),
			},
			"captchaValue": {
				Type:      "string",
				MaxLength: validation.IntPtr(8),
			},
			"clientIp": {
				Type:      "string",
				MaxLength: validation.IntPtr(45),
			},
		},
		AdditionalProperties: true,
	}
}
