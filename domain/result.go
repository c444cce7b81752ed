package domain

import (
	"fmt"
	"time"
)

// TranscriptionResult is the outcome of a transcription job.
type TranscriptionResult struct {
	Text           string         `json:"text"`
	Confidence     float64        `json:"confidence"`
	ProcessingTime float64        `json:"processing_time"`
	ModelUsed      string         `json:"model_used"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}

// NewTranscriptionResult builds a validated result stamped with the current
// time. Confidence must be within [0.0, 1.0] and processingTime must not be
// negative.
func NewTranscriptionResult(
	text string,
	confidence float64,
	processingTime float64,
	modelUsed string,
	metadata map[string]any,
) (*TranscriptionResult, error) {
	if confidence < 0.0 || confidence > 1.0 {
		return nil, NewValidationError(
			fmt.Sprintf("confidence must be between 0.0 and 1.0, got %v", confidence),
			map[string]any{"confidence": confidence},
		)
	}

	if processingTime < 0 {
		return nil, NewValidationError(
			fmt.Sprintf("processing_time must be non-negative, got %v", processingTime),
			map[string]any{"processing_time": processingTime},
		)
	}

	if modelUsed == "" {
		return nil, NewValidationError("model_used cannot be empty", nil)
	}

	if metadata == nil {
		metadata = map[string]any{}
	}

	return &TranscriptionResult{
		Text:           text,
		Confidence:     confidence,
		ProcessingTime: processingTime,
		ModelUsed:      modelUsed,
		Metadata:       metadata,
		Timestamp:      time.Now(),
	}, nil
}
