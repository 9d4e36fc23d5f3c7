package authlogout

import "job-portal-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"userId"},
		Properties: map[string]validation.Property{
			"userId": {
				Type:        "string",
				Description: "Portal profile id",
				MinLength:   validation.IntPtr(3),
				MaxLength:   validation.IntPtr(255),
			},
			"token": {
				Type:        "string",
				Description: "Access token to denylist",
				MinLength:   validation.IntPtr(10),
				MaxLength:   validation.IntPtr(4096),
			},
			"sessionId": {
				Type:        "string",
				Description: "Session to invalidate",
				MaxLength:   validation.IntPtr(255),
			},
			"logoutAll": {
				Type:        "boolean",
				Description: "Invalidate every session of the user",
			},
			"reason": {
				Type:      "string",
				MaxLength: validation.IntPtr(500),
			},
		},
		AdditionalProperties: true,
	}
}
