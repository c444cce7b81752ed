package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sttstack/sttstack/domain"
)

// SpeechToTextModel abstracts a loadable transcription engine. A model
// starts unloaded; Transcribe requires a successful LoadModel first.
type SpeechToTextModel interface {
	// LoadModel loads the model into memory. The model stays unloaded when
	// loading fails.
	LoadModel(ctx context.Context) error

	// UnloadModel releases the model. Unloading an already unloaded model is
	// a no-op and never fails.
	UnloadModel(ctx context.Context) error

	// IsLoaded reports the current load state.
	IsLoaded() bool

	// Transcribe converts the audio described by req to text. It fails with
	// a model load error when the model is unloaded, checked before any
	// other validation.
	Transcribe(ctx context.Context, req *domain.AudioRequest) (*domain.TranscriptionResult, error)

	// GetSupportedFormats returns a fresh copy of the formats this model
	// instance accepts, which may be a subset of the system-wide set.
	GetSupportedFormats() []string

	// GetModelInfo returns static self-descriptive metadata, available
	// regardless of load state.
	GetModelInfo() ModelInfo

	// HealthCheck reports whether the model is ready for processing.
	HealthCheck(ctx context.Context) HealthStatus
}

// ModelInfo is the self-descriptive metadata of a model instance.
type ModelInfo struct {
	Name             string         `json:"name"`
	Version          string         `json:"version"`
	Type             string         `json:"type"`
	Parameters       map[string]any `json:"parameters"`
	Loaded           bool           `json:"loaded"`
	SupportedFormats []string       `json:"supported_formats"`
	Extra            map[string]any `json:"extra,omitempty"`
}

// Health status values reported by HealthCheck.
const (
	HealthStatusHealthy   = "healthy"
	HealthStatusDegraded  = "degraded"
	HealthStatusUnhealthy = "unhealthy"
)

// HealthStatus is the result of a model health check.
type HealthStatus struct {
	Status    string         `json:"status"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details"`
	Timestamp time.Time      `json:"timestamp"`
}

// ValidateRequest checks that the model can serve the request: the model
// must be loaded and the request format must be in this instance's supported
// list.
func ValidateRequest(m SpeechToTextModel, req *domain.AudioRequest) error {
	if !m.IsLoaded() {
		return domain.NewModelLoadError(
			"model is not loaded",
			map[string]any{"file_path": req.FilePath},
		)
	}

	for _, format := range m.GetSupportedFormats() {
		if strings.EqualFold(format, req.AudioFormat) {
			return nil
		}
	}

	return domain.NewAudioFormatError(
		fmt.Sprintf("audio format '%s' not supported by this model", req.AudioFormat),
		map[string]any{
			"audio_format":      req.AudioFormat,
			"supported_formats": m.GetSupportedFormats(),
		},
	)
}
