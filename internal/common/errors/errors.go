// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Technical errors. Retried by the engine.
const (
	ErrCodeDatabaseConnectionFailed      ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed          ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout                  ErrorCode = "QUERY_TIMEOUT"
	ErrCodeDatabaseInsertFailed          ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout                 ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeNotificationSendFailed        ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeSubscriptionCheckFailed       ErrorCode = "SUBSCRIPTION_CHECK_FAILED"
	ErrCodeProfileSaveFailed             ErrorCode = "PROFILE_SAVE_FAILED"
	ErrCodeIdentityProviderError         ErrorCode = "IDENTITY_PROVIDER_ERROR"
	ErrCodeAnnouncementPublishFailed     ErrorCode = "ANNOUNCEMENT_PUBLISH_FAILED"
	ErrCodeCacheError                    ErrorCode = "CACHE_ERROR"
	ErrCodeStoreError                    ErrorCode = "STORE_ERROR"
	ErrCodeExternalService               ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeLinkedInAPI                   ErrorCode = "LINKEDIN_API_ERROR"
	ErrCodeTimeout                       ErrorCode = "TIMEOUT_ERROR"
)

// Business errors. Thrown as BPMN errors without retry.
const (
	ErrCodeValidationFailed            ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidQueryType            ErrorCode = "INVALID_QUERY_TYPE"
	ErrCodeIndexNotFound               ErrorCode = "INDEX_NOT_FOUND"
	ErrCodeInvalidFilterFormat         ErrorCode = "INVALID_FILTER_FORMAT"
	ErrCodeApplicationValidationFailed ErrorCode = "APPLICATION_VALIDATION_FAILED"
	ErrCodeDuplicateApplication        ErrorCode = "DUPLICATE_APPLICATION"
	ErrCodeApplicationNotFound         ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeJobNotFound                 ErrorCode = "JOB_NOT_FOUND"
	ErrCodeJobNotOpen                  ErrorCode = "JOB_NOT_OPEN"
	ErrCodeInvalidStatusTransition     ErrorCode = "INVALID_STATUS_TRANSITION"
	ErrCodeProfileNotFound             ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodeUnknownRole                 ErrorCode = "UNKNOWN_ROLE"
	ErrCodeRoleChangeNotAllowed        ErrorCode = "ROLE_CHANGE_NOT_ALLOWED"
	ErrCodeBGVDocumentNotFound         ErrorCode = "BGV_DOCUMENT_NOT_FOUND"
	ErrCodeBGVAlreadyReviewed          ErrorCode = "BGV_ALREADY_REVIEWED"
	ErrCodeLeaveNotFound               ErrorCode = "LEAVE_NOT_FOUND"
	ErrCodeLeaveOverlap                ErrorCode = "LEAVE_OVERLAP"
	ErrCodeLeaveAlreadyReviewed        ErrorCode = "LEAVE_ALREADY_REVIEWED"
	ErrCodeNotAuthorized               ErrorCode = "NOT_AUTHORIZED"
	ErrCodeGroupNotFound               ErrorCode = "GROUP_NOT_FOUND"
	ErrCodeConversationNotFound        ErrorCode = "CONVERSATION_NOT_FOUND"
	ErrCodeContentRejected             ErrorCode = "CONTENT_REJECTED"
	ErrCodePlanLimitReached            ErrorCode = "PLAN_LIMIT_REACHED"
	ErrCodeSubscriptionInvalid         ErrorCode = "SUBSCRIPTION_INVALID"
	ErrCodeSubscriptionExpired         ErrorCode = "SUBSCRIPTION_EXPIRED"
	ErrCodeTemplateNotFound            ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeTemplateValidationFailed    ErrorCode = "TEMPLATE_VALIDATION_FAILED"
	ErrCodeUserAlreadyExists           ErrorCode = "USER_ALREADY_EXISTS"
	ErrCodeCaptchaInvalid              ErrorCode = "CAPTCHA_INVALID"
	ErrCodeLinkedInOAuth               ErrorCode = "LINKEDIN_OAUTH_ERROR"
	ErrCodeAuthentication              ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeResourceNotFound            ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeBusinessRule                ErrorCode = "BUSINESS_RULE_VIOLATION"
	ErrCodeInternal                    ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key to the error and returns it for chaining.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns the variables set on the job when it fails.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// New builds a StandardError stamped with the current UTC time.
func New(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewValidationError(details string) *StandardError {
	return New(ErrCodeValidationFailed, "Input validation failed", details, false)
}

func NewUnknownRoleError(role string) *StandardError {
	return New(ErrCodeUnknownRole, "Unknown portal role", fmt.Sprintf("role: %s", role), false)
}

func NewProfileSaveFailedError(err error) *StandardError {
	return New(ErrCodeProfileSaveFailed, "Profile could not be saved", err.Error(), true)
}

func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return New(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()), true)
}

func NewIdentityProviderError(err error) *StandardError {
	return New(ErrCodeIdentityProviderError, "Identity provider request failed", err.Error(), true)
}

func NewUserAlreadyExistsError(email string) *StandardError {
	return New(ErrCodeUserAlreadyExists, "A user with this email already exists", fmt.Sprintf("email: %s", email), false)
}

func NewCacheError(err error) *StandardError {
	return New(ErrCodeCacheError, "Cache operation failed", err.Error(), true)
}

func NewBusinessRuleError(message, details string) *StandardError {
	return New(ErrCodeBusinessRule, message, details, false)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return New(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err.Error(), true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return New(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return New(ErrCodeResourceNotFound, fmt.Sprintf("Resource not found in %s", service), details, false)
}

func NewAuthenticationError(details string) *StandardError {
	return New(ErrCodeAuthentication, "Authentication failed", details, false)
}

func NewNotAuthorizedError(details string) *StandardError {
	return New(ErrCodeNotAuthorized, "Caller is not allowed to perform this action", details, false)
}

// BPMNErrorMapping holds the codes whose BPMN error name differs from the internal code.
// Codes not listed are thrown unchanged.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeApplicationValidationFailed: "VALIDATION_FAILED",
	ErrCodeCacheError:                  "EXTERNAL_SERVICE_ERROR",
	ErrCodeStoreError:                  "DATABASE_CONNECTION_FAILED",
}

// GetRetryCount returns the retry budget for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeSubscriptionCheckFailed,
		ErrCodeProfileSaveFailed,
		ErrCodeIdentityProviderError,
		ErrCodeAnnouncementPublishFailed,
		ErrCodeCacheError,
		ErrCodeStoreError,
		ErrCodeExternalService,
		ErrCodeLinkedInAPI:
		return 3

	case ErrCodeQueryTimeout,
		ErrCodeSearchTimeout,
		ErrCodeTimeout:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError into the shape thrown to Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// GetErrorCategory groups codes for logging and dashboards.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SUBSCRIPTION") || strings.Contains(codeStr, "PLAN"):
		return "SUBSCRIPTION"
	case strings.Contains(codeStr, "TEMPLATE"):
		return "TEMPLATE"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "STORE"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION") || strings.Contains(codeStr, "ANNOUNCEMENT"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "IDENTITY") || strings.Contains(codeStr, "AUTH") || strings.Contains(codeStr, "USER") || strings.Contains(codeStr, "CAPTCHA") || strings.Contains(codeStr, "LINKEDIN"):
		return "IDENTITY"
	case strings.Contains(codeStr, "APPLICATION") || strings.Contains(codeStr, "JOB") || strings.Contains(codeStr, "STATUS"):
		return "APPLICATION"
	case strings.Contains(codeStr, "PROFILE") || strings.Contains(codeStr, "ROLE"):
		return "PROFILE"
	case strings.Contains(codeStr, "BGV"):
		return "BGV"
	case strings.Contains(codeStr, "LEAVE") || strings.Contains(codeStr, "GROUP"):
		return "CAMPUS"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "CONTENT"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
