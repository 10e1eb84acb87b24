package protocol

import (
	"testing"
)

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		msgType MessageType
		data    interface{}
		wantErr bool
	}{
		{
			name:    "chat message",
			msgType: TypeChat,
			data:    ChatRequest{RequestID: "req-1", Text: "Hello!"},
			wantErr: false,
		},
		{
			name:    "chat reply",
			msgType: TypeChatReply,
			data:    ChatReply{RequestID: "req-1", Text: "Hi there!", Model: "gemma2:2b", LatencySeconds: 0.4},
			wantErr: false,
		},
		{
			name:    "nil data",
			msgType: TypePing,
			data:    nil,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(tt.msgType, tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewMessage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if msg == nil && !tt.wantErr {
				t.Error("NewMessage() returned nil message")
				return
			}
			if msg.Type != tt.msgType {
				t.Errorf("NewMessage() type = %v, want %v", msg.Type, tt.msgType)
			}
			if msg.Timestamp == 0 {
				t.Error("NewMessage() timestamp should be set")
			}
		})
	}
}

func TestChatRoundTrip(t *testing.T) {
	msg, err := NewChatMessage("req-42", "How do you say house in English?", "")
	if err != nil {
		t.Fatalf("NewChatMessage() error = %v", err)
	}

	raw, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	parsed, err := ParseMessage(raw)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}

	if parsed.Type != TypeChat {
		t.Errorf("type = %v, want %v", parsed.Type, TypeChat)
	}

	req, err := parsed.GetChatRequest()
	if err != nil {
		t.Fatalf("GetChatRequest() error = %v", err)
	}

	if req.RequestID != "req-42" {
		t.Errorf("request id = %q, want %q", req.RequestID, "req-42")
	}
	if req.Text != "How do you say house in English?" {
		t.Errorf("text mismatch: %q", req.Text)
	}
	if req.Model != "" {
		t.Errorf("model should be empty for automatic selection, got %q", req.Model)
	}
}

func TestChatReplyWithError(t *testing.T) {
	reply := ChatReply{
		RequestID: "req-7",
		Error:     "model backend unavailable",
	}

	msg, err := NewChatReplyMessage(reply)
	if err != nil {
		t.Fatalf("NewChatReplyMessage() error = %v", err)
	}

	raw, _ := msg.Bytes()
	parsed, err := ParseMessage(raw)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}

	got, err := parsed.GetChatReply()
	if err != nil {
		t.Fatalf("GetChatReply() error = %v", err)
	}

	if got.Error != "model backend unavailable" {
		t.Errorf("error field = %q", got.Error)
	}
	if got.Text != "" {
		t.Errorf("text should be empty on error, got %q", got.Text)
	}
}

func TestConnectedMessage(t *testing.T) {
	msg, err := NewConnectedMessage("llama3.2:3b", "balanced", []string{"gemma2:2b", "llama3.2:3b"})
	if err != nil {
		t.Fatalf("NewConnectedMessage() error = %v", err)
	}

	data, err := msg.GetConnectedData()
	if err != nil {
		t.Fatalf("GetConnectedData() error = %v", err)
	}

	if data.CurrentModel != "llama3.2:3b" {
		t.Errorf("current model = %q", data.CurrentModel)
	}
	if data.Mode != "balanced" {
		t.Errorf("mode = %q", data.Mode)
	}
	if len(data.AvailableModels) != 2 {
		t.Errorf("expected 2 available models, got %d", len(data.AvailableModels))
	}
}

func TestPingPong(t *testing.T) {
	ping, err := NewPingMessage("ping-1")
	if err != nil {
		t.Fatalf("NewPingMessage() error = %v", err)
	}

	pd, err := ping.GetPingData()
	if err != nil {
		t.Fatalf("GetPingData() error = %v", err)
	}
	if pd.ID != "ping-1" {
		t.Errorf("ping id = %q", pd.ID)
	}

	pong, err := NewPongMessage("ping-1", 1000, 1025)
	if err != nil {
		t.Fatalf("NewPongMessage() error = %v", err)
	}

	pgd, err := pong.GetPongData()
	if err != nil {
		t.Fatalf("GetPongData() error = %v", err)
	}
	if pgd.LatencyMs != 25 {
		t.Errorf("latency = %d, want 25", pgd.LatencyMs)
	}
}

func TestParseMessageInvalid(t *testing.T) {
	if _, err := ParseMessage([]byte("{not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
