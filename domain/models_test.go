package domain

import (
	"testing"
)

func TestNewAudioRequestDefaults(t *testing.T) {
	req, err := NewAudioRequest("/test/audio.wav", "wav")
	if err != nil {
		t.Fatalf("Expected valid request, got error: %v", err)
	}

	if req.OutputFormat != "text" {
		t.Errorf("Expected default output format 'text', got %s", req.OutputFormat)
	}
	if req.ModelOptions == nil || req.Metadata == nil {
		t.Error("Expected option maps to default to empty, not nil")
	}
}

func TestNewAudioRequestNormalizesCase(t *testing.T) {
	req, err := NewAudioRequest("/test/audio.FLAC", "FLAC")
	if err != nil {
		t.Fatalf("Expected valid request, got error: %v", err)
	}
	if req.AudioFormat != "flac" {
		t.Errorf("Expected normalized format 'flac', got %s", req.AudioFormat)
	}
}

func TestNewAudioRequestValidation(t *testing.T) {
	cases := []struct {
		name         string
		filePath     string
		audioFormat  string
		outputFormat string
	}{
		{"empty file path", "", "wav", "text"},
		{"unknown audio format", "x", "xyz", "text"},
		{"unknown output format", "/test/audio.wav", "wav", "xml"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewAudioRequestWithOptions(c.filePath, c.audioFormat, c.outputFormat, nil, nil)
			if err == nil {
				t.Fatal("Expected construction to fail")
			}
			if !IsCode(err, CodeValidation) {
				t.Errorf("Expected %s, got %s", CodeValidation, ErrorCode(err))
			}
		})
	}
}

func TestNewTranscriptionResult(t *testing.T) {
	result, err := NewTranscriptionResult("hello", 0.9, 1.2, "mock-whisper", nil)
	if err != nil {
		t.Fatalf("Expected valid result, got error: %v", err)
	}

	if result.Text != "hello" {
		t.Errorf("Expected text 'hello', got %s", result.Text)
	}
	if result.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}
	if result.Metadata == nil {
		t.Error("Expected metadata to default to empty map")
	}
}

func TestNewTranscriptionResultAllowsEmptyText(t *testing.T) {
	if _, err := NewTranscriptionResult("", 0.5, 0, "mock", nil); err != nil {
		t.Errorf("Expected empty text to be valid, got error: %v", err)
	}
}

func TestNewTranscriptionResultValidation(t *testing.T) {
	cases := []struct {
		name           string
		confidence     float64
		processingTime float64
		modelUsed      string
	}{
		{"confidence above range", 1.5, 1.0, "mock"},
		{"confidence below range", -0.1, 1.0, "mock"},
		{"negative processing time", 0.9, -1, "mock"},
		{"empty model name", 0.9, 1.0, ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewTranscriptionResult("text", c.confidence, c.processingTime, c.modelUsed, nil)
			if err == nil {
				t.Fatal("Expected construction to fail")
			}
			if !IsCode(err, CodeValidation) {
				t.Errorf("Expected %s, got %s", CodeValidation, ErrorCode(err))
			}
		})
	}
}

func TestNewModelConfig(t *testing.T) {
	config, err := NewModelConfig("Mock", "/models/mock", nil)
	if err != nil {
		t.Fatalf("Expected valid config, got error: %v", err)
	}

	if config.ModelType != "mock" {
		t.Errorf("Expected normalized model type 'mock', got %s", config.ModelType)
	}
	if !config.FallbackEnabled {
		t.Error("Expected fallback to default to enabled")
	}
	if config.Parameters == nil {
		t.Error("Expected parameters to default to empty map")
	}
}

func TestNewModelConfigValidation(t *testing.T) {
	if _, err := NewModelConfig("bert", "/models/bert", nil); !IsCode(err, CodeConfiguration) {
		t.Errorf("Expected %s for unknown model type, got %v", CodeConfiguration, err)
	}
	if _, err := NewModelConfig("whisper", "", nil); !IsCode(err, CodeConfiguration) {
		t.Errorf("Expected %s for empty model path, got %v", CodeConfiguration, err)
	}
}

func TestSupportedSetsReturnCopies(t *testing.T) {
	formats := SupportedAudioFormats()
	formats[0] = "mutated"

	fresh := SupportedAudioFormats()
	if fresh[0] != "wav" {
		t.Errorf("Expected mutation not to leak into later calls, got %s", fresh[0])
	}

	outputs := SupportedOutputFormats()
	outputs[0] = "mutated"
	if SupportedOutputFormats()[0] != "text" {
		t.Error("Expected output format set to be copied per call")
	}

	types := SupportedModelTypes()
	types[0] = "mutated"
	if SupportedModelTypes()[0] != "whisper" {
		t.Error("Expected model type set to be copied per call")
	}
}

func TestIsAudioFormatSupported(t *testing.T) {
	for _, format := range []string{"wav", "WAV", "Flac", "mp3", "MP4", "m4a", "ogg"} {
		if !IsAudioFormatSupported(format) {
			t.Errorf("Expected %s to be supported", format)
		}
	}
	for _, format := range []string{"xyz", "", "aac", "wma"} {
		if IsAudioFormatSupported(format) {
			t.Errorf("Expected %s to be unsupported", format)
		}
	}
}
