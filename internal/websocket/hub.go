package websocket

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sttstack/sttstack/domain"
	"github.com/sttstack/sttstack/domain/repositories"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer, sized for audio chunks.
	maxMessageSize = 512 * 1024
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub tracks connected streaming clients and runs their audio through the
// injected model. Each connection accumulates chunks per session and
// transcribes on the final one.
type Hub struct {
	clients map[string]*Client
	mu      sync.RWMutex

	model  repositories.SpeechToTextModel
	logger *zap.Logger
}

// NewHub creates a streaming transcription hub backed by model.
func NewHub(model repositories.SpeechToTextModel, logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		model:   model,
		logger:  logger,
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	id    string
	audio bytes.Buffer
}

// Serve upgrades the HTTP request and runs the connection until the client
// disconnects.
func Serve(hub *Hub, c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		hub.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	client := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 16),
		id:   uuid.NewString(),
	}
	hub.register(client)

	go client.writePump()
	client.readPump()
	return nil
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client.id] = client
	h.mu.Unlock()
	h.logger.Info("Streaming client connected", zap.String("clientID", client.id))
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.id]; ok {
		delete(h.clients, client.id)
		close(client.send)
	}
	h.mu.Unlock()
	h.logger.Info("Streaming client disconnected", zap.String("clientID", client.id))
}

// processAudio writes the accumulated audio to a temp file, transcribes it,
// and builds the response frame. Domain errors become error frames carrying
// their stable code.
func (h *Hub) processAudio(ctx context.Context, sessionID string, audio []byte) interface{} {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("stream_%s.wav", uuid.NewString()))
	if err := os.WriteFile(path, audio, 0o600); err != nil {
		h.logger.Error("Failed to store streamed audio", zap.Error(err))
		return NewErrorMessage("INTERNAL_ERROR", "failed to store streamed audio")
	}
	defer os.Remove(path)

	req, err := domain.NewAudioRequest(path, "wav")
	if err != nil {
		return errorFrame(err)
	}

	result, err := h.model.Transcribe(ctx, req)
	if err != nil {
		h.logger.Warn("Streaming transcription failed",
			zap.String("sessionID", sessionID),
			zap.Error(err))
		return errorFrame(err)
	}

	h.logger.Info("Streaming transcription completed",
		zap.String("sessionID", sessionID),
		zap.Int("audioBytes", len(audio)),
		zap.Float64("confidence", result.Confidence))

	return NewTranscriptionResultMessage(sessionID, result)
}

func errorFrame(err error) *ErrorMessage {
	if code := domain.ErrorCode(err); code != "" {
		return NewErrorMessage(code, err.Error())
	}
	return NewErrorMessage("INTERNAL_ERROR", "transcription failed")
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("Unexpected close", zap.String("clientID", c.id), zap.Error(err))
			}
			return
		}

		msg, err := ParseMessage(data)
		if err != nil {
			c.enqueue(NewErrorMessage("INVALID_MESSAGE", err.Error()))
			continue
		}

		switch m := msg.(type) {
		case *PingMessage:
			c.enqueue(NewPongMessage(m.Data))

		case *AudioChunkMessage:
			c.handleAudioChunk(m)
		}
	}
}

func (c *Client) handleAudioChunk(msg *AudioChunkMessage) {
	chunk, err := base64.StdEncoding.DecodeString(msg.AudioData)
	if err != nil {
		c.enqueue(NewErrorMessage("INVALID_MESSAGE", "audio_data must be base64 encoded"))
		return
	}
	c.audio.Write(chunk)

	if !msg.IsFinal {
		return
	}

	audio := make([]byte, c.audio.Len())
	copy(audio, c.audio.Bytes())
	c.audio.Reset()

	c.enqueue(c.hub.processAudio(context.Background(), msg.SessionID, audio))
}

func (c *Client) enqueue(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.hub.logger.Error("Failed to marshal outgoing message", zap.Error(err))
		return
	}
	select {
	case c.send <- data:
	default:
		c.hub.logger.Warn("Dropping message for slow client", zap.String("clientID", c.id))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
