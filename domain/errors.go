package domain

import (
	"errors"
	"time"
)

// Stable machine-readable error codes. Callers branch on these and on the
// structured details, never on the message text.
const (
	CodeAudioFormat   = "AUDIO_FORMAT_ERROR"
	CodeModelLoad     = "MODEL_LOAD_ERROR"
	CodeTranscription = "TRANSCRIPTION_ERROR"
	CodeValidation    = "VALIDATION_ERROR"
	CodeConfiguration = "CONFIGURATION_ERROR"
	CodeFileNotFound  = "FILE_NOT_FOUND"
)

// Error is the structured error used across the speech-to-text services.
// It carries a stable code and a free-form details map for machine
// diagnosis, and serializes to {message, error_code, details, timestamp}.
type Error struct {
	Message   string         `json:"message"`
	Code      string         `json:"error_code"`
	Details   map[string]any `json:"details"`
	Timestamp time.Time      `json:"timestamp"`
}

func (e *Error) Error() string {
	return e.Message
}

// ToMap converts the error to its serialized form, with the timestamp as an
// ISO-8601 string.
func (e *Error) ToMap() map[string]any {
	return map[string]any{
		"message":    e.Message,
		"error_code": e.Code,
		"details":    e.Details,
		"timestamp":  e.Timestamp.Format(time.RFC3339),
	}
}

func newError(code, message string, details map[string]any) *Error {
	if details == nil {
		details = map[string]any{}
	}
	return &Error{
		Message:   message,
		Code:      code,
		Details:   details,
		Timestamp: time.Now(),
	}
}

// NewAudioFormatError reports an undetectable, unsupported, or unconvertible
// audio format.
func NewAudioFormatError(message string, details map[string]any) *Error {
	return newError(CodeAudioFormat, message, details)
}

// NewModelLoadError reports a model load failure or an operation that
// requires a loaded model.
func NewModelLoadError(message string, details map[string]any) *Error {
	return newError(CodeModelLoad, message, details)
}

// NewTranscriptionError reports a transcription processing failure.
func NewTranscriptionError(message string, details map[string]any) *Error {
	return newError(CodeTranscription, message, details)
}

// NewValidationError reports a request that fails cross-field or existence
// validation.
func NewValidationError(message string, details map[string]any) *Error {
	return newError(CodeValidation, message, details)
}

// NewConfigurationError reports invalid configuration.
func NewConfigurationError(message string, details map[string]any) *Error {
	return newError(CodeConfiguration, message, details)
}

// NewFileNotFoundError reports a missing audio file. File absence is its own
// error kind, distinct from validation failures.
func NewFileNotFoundError(message string, details map[string]any) *Error {
	return newError(CodeFileNotFound, message, details)
}

// ErrorCode returns the stable code carried by err, or an empty string when
// err is not a system error.
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err is a system error carrying the given code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}
