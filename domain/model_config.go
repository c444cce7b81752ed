package domain

import (
	"fmt"
	"strings"
)

// ModelConfig is the static configuration for a model instance. The
// Parameters map carries model-specific knobs; each implementation parses
// and validates the keys it recognizes.
type ModelConfig struct {
	ModelType       string         `json:"model_type"`
	ModelPath       string         `json:"model_path"`
	Parameters      map[string]any `json:"parameters,omitempty"`
	FallbackEnabled bool           `json:"fallback_enabled"`
}

// NewModelConfig builds a validated configuration with fallback enabled.
func NewModelConfig(modelType, modelPath string, parameters map[string]any) (*ModelConfig, error) {
	return NewModelConfigWithFallback(modelType, modelPath, parameters, true)
}

// NewModelConfigWithFallback builds a validated configuration with an
// explicit fallback setting.
func NewModelConfigWithFallback(
	modelType string,
	modelPath string,
	parameters map[string]any,
	fallbackEnabled bool,
) (*ModelConfig, error) {
	if !contains(supportedModelTypes, modelType) {
		return nil, NewConfigurationError(
			fmt.Sprintf("unsupported model type: %s", modelType),
			map[string]any{"model_type": modelType},
		)
	}

	if modelPath == "" {
		return nil, NewConfigurationError("model_path cannot be empty", nil)
	}

	if parameters == nil {
		parameters = map[string]any{}
	}

	return &ModelConfig{
		ModelType:       strings.ToLower(modelType),
		ModelPath:       modelPath,
		Parameters:      parameters,
		FallbackEnabled: fallbackEnabled,
	}, nil
}
