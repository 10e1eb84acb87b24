// Package protocol defines the JSON message types carried over the
// persistent websocket channel between the client and the tutor backend.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of websocket message
type MessageType string

const (
	// Client → Server messages
	TypeChat     MessageType = "chat"      // Chat request (user text)
	TypeGetStats MessageType = "get_stats" // Request current server stats

	// Server → Client messages
	TypeConnected     MessageType = "connected"      // Sent once after connect
	TypeModelSwitched MessageType = "model_switched" // Active model changed
	TypeChatReply     MessageType = "chat_reply"     // Reply to a chat request
	TypeStats         MessageType = "stats"          // Server stats snapshot

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all websocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Client → Server Message Types
// =============================================================================

// ChatRequest carries one user utterance for the tutor to answer.
type ChatRequest struct {
	// RequestID correlates the eventual ChatReply with this request.
	RequestID string `json:"request_id"`

	// Text is the user's message.
	Text string `json:"text"`

	// Model is the requested model id, empty for automatic selection.
	Model string `json:"model,omitempty"`
}

// =============================================================================
// Server → Client Message Types
// =============================================================================

// ConnectedData is sent once when the websocket session is established.
type ConnectedData struct {
	CurrentModel    string   `json:"current_model"`
	Mode            string   `json:"mode"`
	AvailableModels []string `json:"available_models"`
}

// ModelSwitchedData announces that the active model changed.
type ModelSwitchedData struct {
	Model string `json:"model"`
}

// ChatReply carries the tutor's answer to a ChatRequest.
type ChatReply struct {
	// RequestID echoes the originating request's id.
	RequestID string `json:"request_id"`

	// Text is the assistant's reply.
	Text string `json:"text"`

	// Model is the model that produced the reply.
	Model string `json:"model"`

	// LatencySeconds is the server-side generation time.
	LatencySeconds float64 `json:"latency_seconds"`

	// TokensPerSecond is the observed generation throughput, if known.
	TokensPerSecond float64 `json:"tokens_per_second,omitempty"`

	// Error is set when the request failed; Text is empty in that case.
	Error string `json:"error,omitempty"`
}

// StatsData is a snapshot of the server's conversation stats.
type StatsData struct {
	ConversationLength int    `json:"conversation_length"`
	CurrentModel       string `json:"current_model"`
	Mode               string `json:"mode"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
