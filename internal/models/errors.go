package models

// APIError represents a standardized error response format for the API.
// @Description APIError represents a standardized error response format, including an application-specific error code, a human-readable message, and optional details.
type APIError struct {
	Code    string      `json:"code"`              // Application-specific error code (e.g., "NOT_FOUND", "VALIDATION_ERROR")
	Message string      `json:"message"`           // Human-readable message describing the error
	Details interface{} `json:"details,omitempty"` // Optional field for additional error details
}

// Predefined application-specific error codes
const (
	// Generic Errors
	ErrorCodeInternalServerError = "INTERNAL_SERVER_ERROR"
	ErrorCodeServiceUnavailable  = "SERVICE_UNAVAILABLE"

	// Input Validation & Data Errors
	ErrorCodeValidation           = "VALIDATION_ERROR"
	ErrorCodeInvalidJSON          = "INVALID_JSON"
	ErrorCodeInvalidIDFormat      = "INVALID_ID_FORMAT"
	ErrorCodeMissingRequiredField = "MISSING_REQUIRED_FIELD"

	// Resource Specific Errors
	ErrorCodeNotFound        = "NOT_FOUND"
	ErrorCodeDatasetNotFound = "DATASET_NOT_FOUND"

	// Auth Errors
	ErrorCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrorCodeDuplicateEmail     = "DUPLICATE_EMAIL"

	// Archive Errors
	ErrorCodeArchiveFailed = "ARCHIVE_FAILED"
)
