package domain

import (
	"fmt"
	"strings"
)

// AudioRequest describes one transcription job. Instances built through the
// constructors are always valid; treat fields as read-only after
// construction.
type AudioRequest struct {
	FilePath     string         `json:"file_path"`
	AudioFormat  string         `json:"audio_format"`
	OutputFormat string         `json:"output_format"`
	ModelOptions map[string]any `json:"model_config,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// NewAudioRequest builds a validated request with the default "text" output
// format and empty option maps.
func NewAudioRequest(filePath, audioFormat string) (*AudioRequest, error) {
	return NewAudioRequestWithOptions(filePath, audioFormat, "", nil, nil)
}

// NewAudioRequestWithOptions builds a validated request. An empty
// outputFormat defaults to "text".
func NewAudioRequestWithOptions(
	filePath string,
	audioFormat string,
	outputFormat string,
	modelOptions map[string]any,
	metadata map[string]any,
) (*AudioRequest, error) {
	if filePath == "" {
		return nil, NewValidationError("file_path cannot be empty", nil)
	}

	if !IsAudioFormatSupported(audioFormat) {
		return nil, NewValidationError(
			fmt.Sprintf("unsupported audio format: %s", audioFormat),
			map[string]any{"audio_format": audioFormat},
		)
	}

	if outputFormat == "" {
		outputFormat = "text"
	}
	if !contains(supportedOutputFormats, outputFormat) {
		return nil, NewValidationError(
			fmt.Sprintf("unsupported output format: %s", outputFormat),
			map[string]any{"output_format": outputFormat},
		)
	}

	if modelOptions == nil {
		modelOptions = map[string]any{}
	}
	if metadata == nil {
		metadata = map[string]any{}
	}

	return &AudioRequest{
		FilePath:     filePath,
		AudioFormat:  strings.ToLower(audioFormat),
		OutputFormat: strings.ToLower(outputFormat),
		ModelOptions: modelOptions,
		Metadata:     metadata,
	}, nil
}
