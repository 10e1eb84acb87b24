package web

import (
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/falalabs/go-fala/pkg/hub"
	"github.com/falalabs/go-fala/pkg/protocol"
)

// handleWS serves one websocket session: a connected event on arrival,
// then chat / get_stats / ping handling until the peer goes away.
// Broadcast events (model_switched) reach the session through the hub.
func (s *Server) handleWS(conn *websocket.Conn) {
	client := hub.NewClient(s.hub, conn, s.handleInbound)

	if data, err := s.connectedEvent(); err == nil {
		client.Send(data)
	}

	client.Run()
}

// connectedEvent builds the session-established message.
func (s *Server) connectedEvent() ([]byte, error) {
	s.mu.Lock()
	current := s.currentModel
	mode := s.mode
	available := make([]string, 0, len(s.catalog))
	for _, m := range s.catalog {
		if m.Available {
			available = append(available, m.ID)
		}
	}
	s.mu.Unlock()

	msg, err := protocol.NewConnectedMessage(current, mode.String(), available)
	if err != nil {
		return nil, err
	}
	return msg.Bytes()
}

// handleInbound processes one frame from a client.
func (s *Server) handleInbound(client *hub.Client, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		s.logger.Warn("dropping unparseable frame", "error", err)
		return
	}

	switch msg.Type {
	case protocol.TypeChat:
		req, err := msg.GetChatRequest()
		if err != nil {
			return
		}
		s.answerChat(client, req)

	case protocol.TypeGetStats:
		s.sendStats(client)

	case protocol.TypePing:
		if ping, err := msg.GetPingData(); err == nil {
			if pong, err := protocol.NewPongMessage(ping.ID, ping.Timestamp, time.Now().UnixMilli()); err == nil {
				if data, err := pong.Bytes(); err == nil {
					client.Send(data)
				}
			}
		}
	}
}

// answerChat generates a reply and sends it back on the same session,
// echoing the request id so the client can correlate.
func (s *Server) answerChat(client *hub.Client, req *protocol.ChatRequest) {
	resp := s.generate(req.Text, req.Model)

	s.mu.Lock()
	s.turnsServed++
	s.mu.Unlock()

	reply := protocol.ChatReply{
		RequestID:       req.RequestID,
		Text:            resp.Text,
		Model:           resp.Model,
		LatencySeconds:  resp.LatencySeconds,
		TokensPerSecond: resp.TokensPerSecond,
	}
	if msg, err := protocol.NewChatReplyMessage(reply); err == nil {
		if data, err := msg.Bytes(); err == nil {
			client.Send(data)
		}
	}
}

// sendStats sends a stats snapshot to one client.
func (s *Server) sendStats(client *hub.Client) {
	s.mu.Lock()
	data := protocol.StatsData{
		ConversationLength: s.turnsServed,
		CurrentModel:       s.currentModel,
		Mode:               s.mode.String(),
	}
	s.mu.Unlock()

	if msg, err := protocol.NewStatsMessage(data); err == nil {
		if b, err := msg.Bytes(); err == nil {
			client.Send(b)
		}
	}
}
