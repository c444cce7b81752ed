package audioformat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sttstack/sttstack/domain"
	"github.com/sttstack/sttstack/domain/repositories"
)

// ExistenceChecker reports whether a path should be treated as an existing
// audio file.
type ExistenceChecker func(path string) bool

const defaultConversionDelay = 100 * time.Millisecond

// Options configures a MockAudioFormatHandler at construction time.
type Options struct {
	// Failure simulation toggles.
	SimulateFileNotFound    bool
	SimulateDetectionError  bool
	SimulateConversionError bool
	SimulateMetadataError   bool

	// ConversionDelay is the simulated conversion latency. Nil selects the
	// 100ms default; point at zero to disable the delay.
	ConversionDelay *time.Duration

	// FileFormats maps paths to detected formats, taking precedence over
	// extension inference.
	FileFormats map[string]string

	// Metadata maps paths to canned metadata, taking precedence over the
	// pattern-derived values.
	Metadata map[string]*repositories.AudioMetadata

	// Conversions maps "<source>-><target>" keys to converted paths, taking
	// precedence over the derived output path.
	Conversions map[string]string

	// ExistingFiles are paths treated as existing without touching the
	// filesystem.
	ExistingFiles []string

	// Exists replaces the default existence strategy entirely.
	Exists ExistenceChecker
}

// BehaviorUpdate is a partial update applied by Configure. Nil fields leave
// the current setting unchanged.
type BehaviorUpdate struct {
	SimulateFileNotFound    *bool
	SimulateDetectionError  *bool
	SimulateConversionError *bool
	SimulateMetadataError   *bool
	ConversionDelay         *time.Duration
}

// MockAudioFormatHandler is a deterministic AudioFormatHandler used to
// exercise the contract without a real codec. Detection, conversion, and
// metadata are driven by explicit registrations first and filename patterns
// second, so fixtures reproduce exactly across runs.
//
// A path "exists" when it was registered via AddFile or Options, or when it
// exists on the real filesystem. There is no other heuristic; tests register
// their synthetic fixtures explicitly.
type MockAudioFormatHandler struct {
	logger *zap.Logger

	simulateFileNotFound    bool
	simulateDetectionError  bool
	simulateConversionError bool
	simulateMetadataError   bool
	conversionDelay         time.Duration

	fileFormats map[string]string
	metadata    map[string]*repositories.AudioMetadata
	conversions map[string]string
	existing    map[string]bool
	exists      ExistenceChecker
}

// NewMockAudioFormatHandler creates a mock handler with the given options.
func NewMockAudioFormatHandler(logger *zap.Logger, opts Options) *MockAudioFormatHandler {
	h := &MockAudioFormatHandler{
		logger:                  logger,
		simulateFileNotFound:    opts.SimulateFileNotFound,
		simulateDetectionError:  opts.SimulateDetectionError,
		simulateConversionError: opts.SimulateConversionError,
		simulateMetadataError:   opts.SimulateMetadataError,
		conversionDelay:         defaultConversionDelay,
		fileFormats:             map[string]string{},
		metadata:                map[string]*repositories.AudioMetadata{},
		conversions:             map[string]string{},
		existing:                map[string]bool{},
		exists:                  opts.Exists,
	}

	if opts.ConversionDelay != nil {
		h.conversionDelay = *opts.ConversionDelay
	}
	for path, format := range opts.FileFormats {
		h.fileFormats[path] = strings.ToLower(format)
	}
	for path, md := range opts.Metadata {
		clone := *md
		h.metadata[path] = &clone
	}
	for key, converted := range opts.Conversions {
		h.conversions[key] = converted
	}
	for _, path := range opts.ExistingFiles {
		h.existing[path] = true
	}

	return h
}

// ValidateFormat implements repositories.AudioFormatHandler.
func (h *MockAudioFormatHandler) ValidateFormat(path string, expectedFormat string) (bool, error) {
	if !h.fileExists(path) {
		return false, notFound(path)
	}

	detected, err := h.DetectFormat(path)
	if err != nil {
		if domain.IsCode(err, domain.CodeAudioFormat) {
			// Undetectable format is a negative validation, not a failure.
			return false, nil
		}
		return false, err
	}

	if expectedFormat == "" {
		return h.IsFormatSupported(detected), nil
	}
	return strings.EqualFold(detected, expectedFormat), nil
}

// DetectFormat implements repositories.AudioFormatHandler. Precedence:
// registered override, then extension inference, then the "wav" fallback.
func (h *MockAudioFormatHandler) DetectFormat(path string) (string, error) {
	if !h.fileExists(path) {
		return "", notFound(path)
	}

	if h.simulateDetectionError {
		return "", domain.NewAudioFormatError(
			fmt.Sprintf("format detection failed for file: %s", path),
			map[string]any{"simulated": true, "file_path": path},
		)
	}

	if format, ok := h.fileFormats[path]; ok {
		return format, nil
	}

	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		format := strings.ToLower(ext)
		if h.IsFormatSupported(format) {
			return format, nil
		}
	}

	return "wav", nil
}

// ConvertIfNeeded implements repositories.AudioFormatHandler. Converting to
// the detected format is a no-op returning the original path with no delay.
func (h *MockAudioFormatHandler) ConvertIfNeeded(ctx context.Context, path string, targetFormat string) (string, error) {
	if !h.fileExists(path) {
		return "", notFound(path)
	}

	if h.simulateConversionError {
		return "", domain.NewAudioFormatError(
			fmt.Sprintf("conversion failed for file: %s", path),
			map[string]any{
				"simulated":     true,
				"source_file":   path,
				"target_format": targetFormat,
			},
		)
	}

	if !h.IsFormatSupported(targetFormat) {
		return "", domain.NewAudioFormatError(
			fmt.Sprintf("target format '%s' not supported, supported formats: %v",
				targetFormat, h.GetSupportedFormats()),
			map[string]any{"target_format": targetFormat},
		)
	}

	current, err := h.DetectFormat(path)
	if err != nil {
		return "", err
	}
	if strings.EqualFold(current, targetFormat) {
		return path, nil
	}

	if h.conversionDelay > 0 {
		select {
		case <-time.After(h.conversionDelay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if converted, ok := h.conversions[conversionKey(path, targetFormat)]; ok {
		return converted, nil
	}

	base := strings.TrimSuffix(path, filepath.Ext(path))
	converted := fmt.Sprintf("%s_converted.%s", base, strings.ToLower(targetFormat))

	h.logger.Debug("Simulated audio conversion",
		zap.String("source", path),
		zap.String("sourceFormat", current),
		zap.String("converted", converted))

	return converted, nil
}

// GetAudioMetadata implements repositories.AudioFormatHandler. Registered
// metadata wins; otherwise values derive deterministically from filename
// patterns and the detected format.
func (h *MockAudioFormatHandler) GetAudioMetadata(path string) (*repositories.AudioMetadata, error) {
	if !h.fileExists(path) {
		return nil, notFound(path)
	}

	if h.simulateMetadataError {
		return nil, domain.NewAudioFormatError(
			fmt.Sprintf("metadata extraction failed for file: %s", path),
			map[string]any{"simulated": true, "file_path": path},
		)
	}

	if md, ok := h.metadata[path]; ok {
		clone := *md
		return &clone, nil
	}

	format, err := h.DetectFormat(path)
	if err != nil {
		return nil, err
	}

	duration := mockDuration(path)
	bitrate := mockBitrate(format)

	return &repositories.AudioMetadata{
		Duration:   duration,
		SampleRate: mockSampleRate(format),
		Channels:   mockChannels(path),
		Bitrate:    bitrate,
		Format:     format,
		Size:       mockFileSize(duration, bitrate),
	}, nil
}

// IsFormatSupported implements repositories.AudioFormatHandler.
func (h *MockAudioFormatHandler) IsFormatSupported(format string) bool {
	return domain.IsAudioFormatSupported(format)
}

// GetSupportedFormats implements repositories.AudioFormatHandler.
func (h *MockAudioFormatHandler) GetSupportedFormats() []string {
	return domain.SupportedAudioFormats()
}

// Configure applies a partial behavior update.
func (h *MockAudioFormatHandler) Configure(update BehaviorUpdate) {
	if update.SimulateFileNotFound != nil {
		h.simulateFileNotFound = *update.SimulateFileNotFound
	}
	if update.SimulateDetectionError != nil {
		h.simulateDetectionError = *update.SimulateDetectionError
	}
	if update.SimulateConversionError != nil {
		h.simulateConversionError = *update.SimulateConversionError
	}
	if update.SimulateMetadataError != nil {
		h.simulateMetadataError = *update.SimulateMetadataError
	}
	if update.ConversionDelay != nil {
		h.conversionDelay = *update.ConversionDelay
	}
}

// AddFile registers a synthetic file with its format and optional metadata.
func (h *MockAudioFormatHandler) AddFile(path, format string, md *repositories.AudioMetadata) {
	h.existing[path] = true
	h.fileFormats[path] = strings.ToLower(format)
	if md != nil {
		clone := *md
		h.metadata[path] = &clone
	}
}

// AddConversion registers an explicit conversion output path.
func (h *MockAudioFormatHandler) AddConversion(sourcePath, targetFormat, convertedPath string) {
	h.conversions[conversionKey(sourcePath, targetFormat)] = convertedPath
}

// Reset restores default behavior and clears all registrations.
func (h *MockAudioFormatHandler) Reset() {
	h.simulateFileNotFound = false
	h.simulateDetectionError = false
	h.simulateConversionError = false
	h.simulateMetadataError = false
	h.conversionDelay = defaultConversionDelay
	h.fileFormats = map[string]string{}
	h.metadata = map[string]*repositories.AudioMetadata{}
	h.conversions = map[string]string{}
	h.existing = map[string]bool{}
}

func (h *MockAudioFormatHandler) fileExists(path string) bool {
	if h.simulateFileNotFound {
		return false
	}
	if h.exists != nil {
		return h.exists(path)
	}
	if h.existing[path] {
		return true
	}
	_, err := os.Stat(path)
	return err == nil
}

func notFound(path string) *domain.Error {
	return domain.NewFileNotFoundError(
		fmt.Sprintf("audio file not found: %s", path),
		map[string]any{"file_path": path},
	)
}

func conversionKey(path, targetFormat string) string {
	return fmt.Sprintf("%s->%s", path, strings.ToLower(targetFormat))
}

func mockDuration(path string) float64 {
	filename := strings.ToLower(filepath.Base(path))
	switch {
	case strings.Contains(filename, "short"):
		return 5.2
	case strings.Contains(filename, "long"), strings.Contains(filename, "extended"):
		return 180.7
	case strings.Contains(filename, "empty"), strings.Contains(filename, "silent"):
		return 0.0
	default:
		return 30.5
	}
}

func mockSampleRate(format string) int {
	if strings.ToLower(format) == "flac" {
		return 48000
	}
	return 44100
}

func mockChannels(path string) int {
	filename := strings.ToLower(filepath.Base(path))
	switch {
	case strings.Contains(filename, "mono"):
		return 1
	case strings.Contains(filename, "stereo"), strings.Contains(filename, "2ch"):
		return 2
	case strings.Contains(filename, "surround"), strings.Contains(filename, "5.1"):
		return 6
	default:
		return 2
	}
}

func mockBitrate(format string) *int {
	var kbps int
	switch strings.ToLower(format) {
	case "mp3", "ogg":
		kbps = 320
	case "m4a", "mp4":
		kbps = 256
	default:
		// Lossless and uncompressed formats carry no bitrate.
		return nil
	}
	return &kbps
}

func mockFileSize(duration float64, bitrate *int) int64 {
	if bitrate == nil {
		// Roughly 1.4 MiB per minute of uncompressed stereo audio.
		return int64(duration * 1.4 * 1024 * 1024 / 60)
	}
	return int64(duration * float64(*bitrate) * 1024 / 8)
}
