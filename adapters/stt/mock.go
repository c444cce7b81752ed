package stt

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sttstack/sttstack/domain"
	"github.com/sttstack/sttstack/domain/repositories"
)

const (
	modelName    = "MockSpeechToTextModel"
	modelVersion = "1.0.0"

	defaultResponse = "This is a mock transcription result."
	longResponse    = "This is a very long mock transcription result that simulates " +
		"processing of lengthy audio files with multiple sentences and " +
		"complex content to test system behavior with larger outputs."

	defaultProcessingDelay = 100 * time.Millisecond
	defaultConfidenceMin   = 0.85
	defaultConfidenceMax   = 0.95
)

// Parameter keys recognized in ModelConfig.Parameters. Unknown keys are
// rejected at construction.
const (
	ParamProcessingDelayMS    = "processing_delay_ms"
	ParamErrorRate            = "error_rate"
	ParamConfidenceMin        = "confidence_min"
	ParamConfidenceMax        = "confidence_max"
	ParamCustomResponses      = "custom_responses"
	ParamSimulateLoadFailure  = "simulate_load_failure"
	ParamSimulateHealthIssues = "simulate_health_issues"
	ParamRandomSeed           = "random_seed"
	ParamSupportedFormats     = "supported_formats"
)

// BehaviorUpdate is a partial update applied by Configure. Nil fields leave
// the current setting unchanged; CustomResponses are merged, not replaced.
type BehaviorUpdate struct {
	ProcessingDelay      *time.Duration
	ErrorRate            *float64
	ConfidenceMin        *float64
	ConfidenceMax        *float64
	CustomResponses      map[string]string
	SimulateLoadFailure  *bool
	SimulateHealthIssues *bool
}

// MockSpeechToTextModel is a SpeechToTextModel test double with configurable
// latency, error rate, and pattern-based canned responses. Behavior knobs
// come from ModelConfig.Parameters and can be adjusted at runtime through
// Configure.
type MockSpeechToTextModel struct {
	config *domain.ModelConfig
	logger *zap.Logger

	mu     sync.RWMutex
	loaded bool
	rng    *rand.Rand

	processingDelay      time.Duration
	errorRate            float64
	confidenceMin        float64
	confidenceMax        float64
	customResponses      map[string]string
	simulateLoadFailure  bool
	simulateHealthIssues bool
	supportedFormats     []string
}

// NewMockSpeechToTextModel builds a mock model from config. Construction
// fails with a configuration error when Parameters carries an unknown key or
// an out-of-range value.
func NewMockSpeechToTextModel(config *domain.ModelConfig, logger *zap.Logger) (*MockSpeechToTextModel, error) {
	m := &MockSpeechToTextModel{
		config: config,
		logger: logger,
	}
	m.applyDefaults()

	if err := m.applyParameters(config.Parameters); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadModel implements repositories.SpeechToTextModel.
func (m *MockSpeechToTextModel) LoadModel(ctx context.Context) error {
	if m.simulateLoadFailure {
		return domain.NewModelLoadError(
			"simulated model load failure",
			map[string]any{"simulated": true, "model_path": m.config.ModelPath},
		)
	}

	if err := m.sleep(ctx, m.processingDelay/2); err != nil {
		return err
	}

	m.mu.Lock()
	m.loaded = true
	m.mu.Unlock()

	m.logger.Info("Mock model loaded", zap.String("modelPath", m.config.ModelPath))
	return nil
}

// UnloadModel implements repositories.SpeechToTextModel. Idempotent.
func (m *MockSpeechToTextModel) UnloadModel(ctx context.Context) error {
	if err := m.sleep(ctx, m.processingDelay/5); err != nil {
		return err
	}

	m.mu.Lock()
	m.loaded = false
	m.mu.Unlock()

	m.logger.Info("Mock model unloaded")
	return nil
}

// IsLoaded implements repositories.SpeechToTextModel.
func (m *MockSpeechToTextModel) IsLoaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}

// Transcribe implements repositories.SpeechToTextModel.
func (m *MockSpeechToTextModel) Transcribe(ctx context.Context, req *domain.AudioRequest) (*domain.TranscriptionResult, error) {
	if err := repositories.ValidateRequest(m, req); err != nil {
		return nil, err
	}

	if err := m.sleep(ctx, m.processingDelay); err != nil {
		return nil, err
	}

	if m.roll() < m.errorRate {
		return nil, domain.NewTranscriptionError(
			"simulated transcription failure",
			map[string]any{"file_path": req.FilePath, "simulated": true},
		)
	}

	key, text := m.responseFor(req.FilePath)
	confidence := m.confidenceMin + m.roll()*(m.confidenceMax-m.confidenceMin)
	processingTime := m.processingDelay.Seconds() + 0.01 + m.roll()*0.04

	m.logger.Debug("Mock transcription completed",
		zap.String("filePath", req.FilePath),
		zap.String("responseKey", key),
		zap.Float64("confidence", confidence))

	return domain.NewTranscriptionResult(
		text,
		confidence,
		processingTime,
		"mock-"+m.config.ModelType,
		map[string]any{
			"mock_model":      true,
			"response_key":    key,
			"file_path":       req.FilePath,
			"simulated_delay": m.processingDelay.Seconds(),
		},
	)
}

// GetSupportedFormats implements repositories.SpeechToTextModel.
func (m *MockSpeechToTextModel) GetSupportedFormats() []string {
	out := make([]string, len(m.supportedFormats))
	copy(out, m.supportedFormats)
	return out
}

// GetModelInfo implements repositories.SpeechToTextModel.
func (m *MockSpeechToTextModel) GetModelInfo() repositories.ModelInfo {
	return repositories.ModelInfo{
		Name:             modelName,
		Version:          modelVersion,
		Type:             m.config.ModelType,
		Parameters:       m.config.Parameters,
		Loaded:           m.IsLoaded(),
		SupportedFormats: m.GetSupportedFormats(),
		Extra: map[string]any{
			"mock_responses":   m.responseKeys(),
			"processing_delay": m.processingDelay.Seconds(),
			"error_rate":       m.errorRate,
		},
	}
}

// HealthCheck implements repositories.SpeechToTextModel. The simulated
// health issue reports degraded regardless of load state.
func (m *MockSpeechToTextModel) HealthCheck(ctx context.Context) repositories.HealthStatus {
	loaded := m.IsLoaded()

	if m.simulateHealthIssues {
		return repositories.HealthStatus{
			Status:  repositories.HealthStatusDegraded,
			Message: "simulated health issue",
			Details: map[string]any{
				"simulated": true,
				"loaded":    loaded,
			},
			Timestamp: time.Now(),
		}
	}

	status := repositories.HealthStatusHealthy
	message := "mock model is ready"
	if !loaded {
		status = repositories.HealthStatusUnhealthy
		message = "mock model not loaded"
	}

	return repositories.HealthStatus{
		Status:  status,
		Message: message,
		Details: map[string]any{
			"mock_model":       true,
			"loaded":           loaded,
			"error_rate":       m.errorRate,
			"processing_delay": m.processingDelay.Seconds(),
		},
		Timestamp: time.Now(),
	}
}

// Configure applies a partial behavior update. Error rates are clamped to
// [0, 1]; an inverted confidence range is rejected.
func (m *MockSpeechToTextModel) Configure(update BehaviorUpdate) error {
	if update.ProcessingDelay != nil {
		m.processingDelay = *update.ProcessingDelay
	}
	if update.ErrorRate != nil {
		m.errorRate = min(1.0, max(0.0, *update.ErrorRate))
	}
	if update.ConfidenceMin != nil {
		m.confidenceMin = *update.ConfidenceMin
	}
	if update.ConfidenceMax != nil {
		m.confidenceMax = *update.ConfidenceMax
	}
	if err := validateConfidenceRange(m.confidenceMin, m.confidenceMax); err != nil {
		return err
	}
	for key, response := range update.CustomResponses {
		m.customResponses[strings.ToLower(key)] = response
	}
	if update.SimulateLoadFailure != nil {
		m.simulateLoadFailure = *update.SimulateLoadFailure
	}
	if update.SimulateHealthIssues != nil {
		m.simulateHealthIssues = *update.SimulateHealthIssues
	}
	return nil
}

// AddResponse registers a canned response selected when key appears as a
// substring of the audio file name.
func (m *MockSpeechToTextModel) AddResponse(key, response string) {
	m.customResponses[strings.ToLower(key)] = response
}

// ResetToDefaults restores the behavior parsed from the original config.
func (m *MockSpeechToTextModel) ResetToDefaults() {
	m.applyDefaults()
	// Parameters were validated at construction, so reapplying cannot fail.
	_ = m.applyParameters(m.config.Parameters)
}

func (m *MockSpeechToTextModel) applyDefaults() {
	m.processingDelay = defaultProcessingDelay
	m.errorRate = 0
	m.confidenceMin = defaultConfidenceMin
	m.confidenceMax = defaultConfidenceMax
	m.customResponses = map[string]string{}
	m.simulateLoadFailure = false
	m.simulateHealthIssues = false
	m.supportedFormats = domain.SupportedAudioFormats()
	m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
}

func (m *MockSpeechToTextModel) applyParameters(params map[string]any) error {
	for key, value := range params {
		switch key {
		case ParamProcessingDelayMS:
			ms, ok := toFloat(value)
			if !ok || ms < 0 {
				return badParam(key, value)
			}
			m.processingDelay = time.Duration(ms * float64(time.Millisecond))

		case ParamErrorRate:
			rate, ok := toFloat(value)
			if !ok || rate < 0 || rate > 1 {
				return badParam(key, value)
			}
			m.errorRate = rate

		case ParamConfidenceMin:
			v, ok := toFloat(value)
			if !ok {
				return badParam(key, value)
			}
			m.confidenceMin = v

		case ParamConfidenceMax:
			v, ok := toFloat(value)
			if !ok {
				return badParam(key, value)
			}
			m.confidenceMax = v

		case ParamCustomResponses:
			responses, ok := toStringMap(value)
			if !ok {
				return badParam(key, value)
			}
			for k, v := range responses {
				m.customResponses[strings.ToLower(k)] = v
			}

		case ParamSimulateLoadFailure:
			b, ok := value.(bool)
			if !ok {
				return badParam(key, value)
			}
			m.simulateLoadFailure = b

		case ParamSimulateHealthIssues:
			b, ok := value.(bool)
			if !ok {
				return badParam(key, value)
			}
			m.simulateHealthIssues = b

		case ParamRandomSeed:
			seed, ok := toFloat(value)
			if !ok {
				return badParam(key, value)
			}
			m.rng = rand.New(rand.NewSource(int64(seed)))

		case ParamSupportedFormats:
			formats, ok := toStringSlice(value)
			if !ok || len(formats) == 0 {
				return badParam(key, value)
			}
			m.supportedFormats = formats

		default:
			return domain.NewConfigurationError(
				fmt.Sprintf("unknown mock model parameter: %s", key),
				map[string]any{"parameter": key},
			)
		}
	}

	return validateConfidenceRange(m.confidenceMin, m.confidenceMax)
}

// responseFor selects the canned text for a file. Matching runs on the
// lowercased base name: empty/silent first, then long/extended, then custom
// keys in sorted order, then the default sentence.
func (m *MockSpeechToTextModel) responseFor(filePath string) (string, string) {
	filename := strings.ToLower(filepath.Base(filePath))

	responses := map[string]string{
		"default": defaultResponse,
		"empty":   "",
		"long":    longResponse,
	}
	for key, response := range m.customResponses {
		responses[key] = response
	}

	switch {
	case strings.Contains(filename, "empty"), strings.Contains(filename, "silent"):
		return "empty", responses["empty"]
	case strings.Contains(filename, "long"), strings.Contains(filename, "extended"):
		return "long", responses["long"]
	}

	keys := make([]string, 0, len(m.customResponses))
	for key := range m.customResponses {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if strings.Contains(filename, key) {
			return key, responses[key]
		}
	}

	return "default", responses["default"]
}

func (m *MockSpeechToTextModel) responseKeys() []string {
	keys := []string{"default", "empty", "long"}
	for key := range m.customResponses {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (m *MockSpeechToTextModel) roll() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng.Float64()
}

func (m *MockSpeechToTextModel) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func validateConfidenceRange(lo, hi float64) error {
	if lo < 0 || hi > 1 || lo > hi {
		return domain.NewConfigurationError(
			fmt.Sprintf("invalid confidence range [%v, %v]", lo, hi),
			map[string]any{"confidence_min": lo, "confidence_max": hi},
		)
	}
	return nil
}

func badParam(key string, value any) error {
	return domain.NewConfigurationError(
		fmt.Sprintf("invalid value for mock model parameter %s: %v", key, value),
		map[string]any{"parameter": key, "value": fmt.Sprintf("%v", value)},
	)
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func toStringMap(value any) (map[string]string, bool) {
	switch v := value.(type) {
	case map[string]string:
		return v, true
	case map[string]any:
		out := make(map[string]string, len(v))
		for key, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out[key] = s
		}
		return out, true
	default:
		return nil, false
	}
}

func toStringSlice(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
