package domain

import "strings"

var (
	supportedAudioFormats  = []string{"wav", "mp3", "mp4", "m4a", "flac", "ogg"}
	supportedOutputFormats = []string{"text", "json"}
	supportedModelTypes    = []string{"whisper", "mock"}
)

// SupportedAudioFormats returns a fresh copy of the audio formats accepted
// across the system. Mutating the returned slice does not affect later calls.
func SupportedAudioFormats() []string {
	out := make([]string, len(supportedAudioFormats))
	copy(out, supportedAudioFormats)
	return out
}

// SupportedOutputFormats returns a fresh copy of the accepted output formats.
func SupportedOutputFormats() []string {
	out := make([]string, len(supportedOutputFormats))
	copy(out, supportedOutputFormats)
	return out
}

// SupportedModelTypes returns a fresh copy of the accepted model types.
func SupportedModelTypes() []string {
	out := make([]string, len(supportedModelTypes))
	copy(out, supportedModelTypes)
	return out
}

// IsAudioFormatSupported reports whether format is in the supported set,
// ignoring case.
func IsAudioFormatSupported(format string) bool {
	return contains(supportedAudioFormats, format)
}

func contains(set []string, value string) bool {
	value = strings.ToLower(value)
	for _, item := range set {
		if item == value {
			return true
		}
	}
	return false
}
