package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sttstack/sttstack/domain"
)

// MessageType defines the type of a streaming transcription message.
type MessageType string

// Supported message types.
const (
	MessageTypeAudioChunk          MessageType = "audio_chunk"
	MessageTypeTranscriptionResult MessageType = "transcription_result"
	MessageTypePing                MessageType = "ping"
	MessageTypePong                MessageType = "pong"
	MessageTypeError               MessageType = "error"
)

// BaseMessage is the common structure for all streaming messages.
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp,omitempty"`
	MessageID string      `json:"message_id,omitempty"`
}

// AudioChunkMessage carries one base64-encoded audio chunk from the client.
// The final chunk of a session triggers transcription of everything
// accumulated so far.
type AudioChunkMessage struct {
	BaseMessage
	SessionID string `json:"session_id"`
	AudioData string `json:"audio_data"`
	ChunkSeq  int    `json:"chunk_sequence"`
	IsFinal   bool   `json:"is_final"`
}

// TranscriptionResultMessage carries the transcription back to the client.
type TranscriptionResultMessage struct {
	BaseMessage
	SessionID      string  `json:"session_id"`
	Text           string  `json:"text"`
	Confidence     float64 `json:"confidence"`
	ProcessingTime float64 `json:"processing_time"`
	ModelUsed      string  `json:"model_used"`
}

// ErrorMessage reports a failure to the client without closing the
// connection.
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

// PingMessage is a connection health probe; the hub answers with a pong.
type PingMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// PongMessage answers a ping.
type PongMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// ParseMessage decodes an incoming frame into its concrete message type.
func ParseMessage(data []byte) (interface{}, error) {
	var base BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("invalid message frame: %w", err)
	}

	switch base.Type {
	case MessageTypeAudioChunk:
		var msg AudioChunkMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("invalid audio chunk message: %w", err)
		}
		if msg.SessionID == "" {
			return nil, fmt.Errorf("audio chunk message requires session_id")
		}
		return &msg, nil

	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("invalid ping message: %w", err)
		}
		return &msg, nil

	default:
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}
}

// NewTranscriptionResultMessage builds the result frame for a session.
func NewTranscriptionResultMessage(sessionID string, result *domain.TranscriptionResult) *TranscriptionResultMessage {
	return &TranscriptionResultMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeTranscriptionResult,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		SessionID:      sessionID,
		Text:           result.Text,
		Confidence:     result.Confidence,
		ProcessingTime: result.ProcessingTime,
		ModelUsed:      result.ModelUsed,
	}
}

// NewErrorMessage builds an error frame with a stable code.
func NewErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeError,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Code:    code,
		Message: message,
	}
}

// NewPongMessage answers a ping, echoing its data.
func NewPongMessage(data string) *PongMessage {
	return &PongMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypePong,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Data: data,
	}
}
