package errors

import "net/http"

// AppError is a custom error type that includes an HTTP status code
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// NewAppError creates a new AppError
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Common errors
var (
	ErrInvalidRequest = NewAppError(http.StatusBadRequest, "Invalid request parameters")
	ErrUnauthorized   = NewAppError(http.StatusUnauthorized, "Unauthorized access")
	ErrForbidden      = NewAppError(http.StatusForbidden, "Access denied")
	ErrNotFound       = NewAppError(http.StatusNotFound, "Resource not found")
	ErrInternalServer = NewAppError(http.StatusInternalServerError, "Internal server error")
	ErrRateLimit      = NewAppError(http.StatusTooManyRequests, "Rate limit exceeded")
)

// Avatar / upload pipeline errors. Handlers compare against these with
// errors.Is, so services must return them verbatim or wrapped with %w.
var (
	ErrUnauthenticated = NewAppError(http.StatusUnauthorized, "User authentication required")
	ErrMissingFile     = NewAppError(http.StatusBadRequest, "No file uploaded")
	ErrFileTooLarge    = NewAppError(http.StatusBadRequest, "File too large. Maximum size is 5MB.")
	ErrUnsupportedType = NewAppError(http.StatusBadRequest, "Invalid file type. Only JPEG, PNG, and WebP images are allowed.")
	ErrImageProcessing = NewAppError(http.StatusInternalServerError, "Failed to process uploaded image")
	ErrUploadFailed    = NewAppError(http.StatusInternalServerError, "Failed to store uploaded image")
	ErrNoAvatar        = NewAppError(http.StatusNotFound, "No avatar found to delete")
)

// Helper functions to create specific errors
func BadRequest(msg string) *AppError {
	return NewAppError(http.StatusBadRequest, msg)
}

func NotFound(msg string) *AppError {
	return NewAppError(http.StatusNotFound, msg)
}

func Unauthorized(msg string) *AppError {
	return NewAppError(http.StatusUnauthorized, msg)
}

func Forbidden(msg string) *AppError {
	return NewAppError(http.StatusForbidden, msg)
}

func Internal(msg string) *AppError {
	return NewAppError(http.StatusInternalServerError, msg)
}
