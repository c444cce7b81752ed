package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ServiceVersion is reported by the health endpoints.
const ServiceVersion = "1.0.0"

// FormatValidationResponse is the payload for POST /validate.
type FormatValidationResponse struct {
	Valid   bool   `json:"valid"`
	Format  string `json:"format,omitempty"`
	Message string `json:"message,omitempty"`
}

// FormatDetectionResponse is the payload for POST /detect.
type FormatDetectionResponse struct {
	Format     string  `json:"format"`
	Confidence float64 `json:"confidence"`
}

// ConversionResponse is the payload for POST /convert.
type ConversionResponse struct {
	Success        bool   `json:"success"`
	OriginalFormat string `json:"original_format,omitempty"`
	TargetFormat   string `json:"target_format"`
	FilePath       string `json:"file_path,omitempty"`
	Message        string `json:"message,omitempty"`
}

// HealthResponse is the payload for GET /health on the format service.
type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies"`
}

// ErrorResponse is the generic error payload for non-domain failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ConvertRequest binds the form fields of POST /convert.
type ConvertRequest struct {
	TargetFormat string `form:"target_format" validate:"required"`
}

// TranscribeRequest binds the optional form fields of POST /transcribe.
type TranscribeRequest struct {
	AudioFormat  string `form:"audio_format"`
	OutputFormat string `form:"output_format" validate:"omitempty,oneof=text json"`
}

// Validator adapts go-playground/validator to echo's Validator interface.
// Failed struct validation surfaces as a 422 before any handler logic runs.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates the request validator wired into echo in main.
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate implements echo.Validator.
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
