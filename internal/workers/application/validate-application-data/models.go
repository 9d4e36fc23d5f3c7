// internal/workers/application/validate-application-data/models.go
package validateapplicationdata

import "job-portal-workers/internal/common/validation"

type Input struct {
	ApplicationData map[string]interface{} `json:"applicationData"`
}

type Output struct {
	IsValid          bool                         `json:"isValid"`
	ValidatedData    map[string]interface{}       `json:"validatedData"`
	ValidationErrors []validation.ValidationError `json:"validationErrors"`
}
