package captchaverify

import "job-portal-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"captchaId", "captchaValue"},
		Properties: map[string]validation.Property{
			"captchaId": {
				Type:        "string",
				Description: "Issued challenge id",
				MinLength:   validation.IntPtr(5),
				MaxLength:   validation.IntPtr(100),
			},
			"captchaValue": {
				Type:        "string",
				Description: "User-entered captcha value",
				MinLength:   validation.IntPtr(4),
				MaxLength:   validation.IntPtr(8),
			},
			"clientIp": {
				Type:      "string",
				MinLength: validation.IntPtr(2),
				MaxLength: validation.IntPtr(45),
			},
			"userAgent": {
				Type:      "string",
				MaxLength: validation.IntPtr(500),
			},
			"sessionId": {
				Type:      "string",
				MaxLength: validation.IntPtr(100),
			},
		},
		AdditionalProperties: true,
	}
}
