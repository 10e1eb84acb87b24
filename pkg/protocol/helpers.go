package protocol

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewChatMessage creates a chat request message
func NewChatMessage(requestID, text, model string) (*Message, error) {
	return NewMessage(TypeChat, ChatRequest{
		RequestID: requestID,
		Text:      text,
		Model:     model,
	})
}

// NewChatReplyMessage creates a chat reply message
func NewChatReplyMessage(reply ChatReply) (*Message, error) {
	return NewMessage(TypeChatReply, reply)
}

// NewConnectedMessage creates the session-established message
func NewConnectedMessage(currentModel, mode string, available []string) (*Message, error) {
	return NewMessage(TypeConnected, ConnectedData{
		CurrentModel:    currentModel,
		Mode:            mode,
		AvailableModels: available,
	})
}

// NewModelSwitchedMessage creates a model switch notification
func NewModelSwitchedMessage(model string) (*Message, error) {
	return NewMessage(TypeModelSwitched, ModelSwitchedData{
		Model: model,
	})
}

// NewStatsMessage creates a stats snapshot message
func NewStatsMessage(data StatsData) (*Message, error) {
	return NewMessage(TypeStats, data)
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        id,
		Timestamp: 0, // Will be set by NewMessage
	})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetChatRequest extracts a chat request from a message
func (m *Message) GetChatRequest() (*ChatRequest, error) {
	var data ChatRequest
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetChatReply extracts a chat reply from a message
func (m *Message) GetChatReply() (*ChatReply, error) {
	var data ChatReply
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetConnectedData extracts session-established data from a message
func (m *Message) GetConnectedData() (*ConnectedData, error) {
	var data ConnectedData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetModelSwitchedData extracts a model switch notification from a message
func (m *Message) GetModelSwitchedData() (*ModelSwitchedData, error) {
	var data ModelSwitchedData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetStatsData extracts a stats snapshot from a message
func (m *Message) GetStatsData() (*StatsData, error) {
	var data StatsData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
