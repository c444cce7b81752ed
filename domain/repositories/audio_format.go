package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/sttstack/sttstack/domain"
)

// AudioFormatHandler abstracts audio format detection, validation, and
// conversion. A production variant wraps a real codec probe; the mock
// variant simulates one deterministically.
type AudioFormatHandler interface {
	// ValidateFormat reports whether the file at path matches expectedFormat,
	// ignoring case. An empty expectedFormat validates the detected format
	// against the supported set instead.
	ValidateFormat(path string, expectedFormat string) (bool, error)

	// DetectFormat returns the audio format of the file at path.
	DetectFormat(path string) (string, error)

	// ConvertIfNeeded converts the file to targetFormat when its detected
	// format differs, returning the path of the converted file. The original
	// path is returned unchanged when no conversion is needed.
	ConvertIfNeeded(ctx context.Context, path string, targetFormat string) (string, error)

	// GetAudioMetadata extracts technical metadata from the file at path.
	GetAudioMetadata(path string) (*AudioMetadata, error)

	// IsFormatSupported reports whether format is supported, ignoring case.
	IsFormatSupported(format string) bool

	// GetSupportedFormats returns a fresh copy of the supported format set.
	GetSupportedFormats() []string
}

// AudioMetadata describes the technical properties of an audio file.
// Bitrate is nil for lossless and uncompressed formats.
type AudioMetadata struct {
	Duration   float64 `json:"duration"`
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	Bitrate    *int    `json:"bitrate"`
	Format     string  `json:"format"`
	Size       int64   `json:"size"`
}

// ConversionInfo summarizes what converting between two formats involves.
type ConversionInfo struct {
	Needed        bool    `json:"needed"`
	Supported     bool    `json:"supported"`
	QualityLoss   bool    `json:"quality_loss"`
	EstimatedTime float64 `json:"estimated_time"`
}

var (
	losslessFormats = map[string]bool{"wav": true, "flac": true}
	lossyFormats    = map[string]bool{"mp3": true, "m4a": true, "ogg": true}
)

const (
	conversionTimeMultiplier = 1.5
	noConversionTime         = 0.1
)

// GetConversionInfo describes the conversion from source to target. Quality
// loss registers only when a conversion is actually needed and either goes
// from a lossless format to a lossy one, or between two distinct lossy
// formats. Lossy to lossless never adds loss.
func GetConversionInfo(source, target string) ConversionInfo {
	src := strings.ToLower(source)
	dst := strings.ToLower(target)

	info := ConversionInfo{
		Needed:        src != dst,
		Supported:     domain.IsAudioFormatSupported(src) && domain.IsAudioFormatSupported(dst),
		EstimatedTime: noConversionTime,
	}

	if !info.Needed {
		return info
	}

	info.EstimatedTime = conversionTimeMultiplier
	if losslessFormats[src] && lossyFormats[dst] {
		info.QualityLoss = true
	}
	if lossyFormats[src] && lossyFormats[dst] {
		info.QualityLoss = true
	}
	return info
}

// ValidateAudioRequest checks a request against the handler's view of the
// file: the file must exist, the declared format must be supported, and the
// detected format must match the declaration. Detection failures other than
// file absence are wrapped as validation errors.
func ValidateAudioRequest(h AudioFormatHandler, req *domain.AudioRequest) error {
	detected, detectErr := h.DetectFormat(req.FilePath)
	if detectErr != nil && domain.IsCode(detectErr, domain.CodeFileNotFound) {
		return domain.NewValidationError(
			fmt.Sprintf("audio file not found: %s", req.FilePath),
			map[string]any{"file_path": req.FilePath},
		)
	}

	if !h.IsFormatSupported(req.AudioFormat) {
		return domain.NewAudioFormatError(
			fmt.Sprintf("audio format '%s' not supported, supported formats: %v",
				req.AudioFormat, h.GetSupportedFormats()),
			map[string]any{"audio_format": req.AudioFormat},
		)
	}

	if detectErr != nil {
		return domain.NewValidationError(
			fmt.Sprintf("failed to validate audio file: %v", detectErr),
			map[string]any{"file_path": req.FilePath},
		)
	}

	if !strings.EqualFold(detected, req.AudioFormat) {
		return domain.NewAudioFormatError(
			fmt.Sprintf("file format mismatch, declared '%s' but detected '%s'",
				req.AudioFormat, detected),
			map[string]any{"declared": req.AudioFormat, "detected": detected},
		)
	}

	return nil
}
