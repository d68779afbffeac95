package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/product-advisor/internal/advisor"
	"github.com/ziadkadry99/product-advisor/internal/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatRequest is the incoming WebSocket message format.
type chatRequest struct {
	Type    string `json:"type"` // "message" or "routine"
	Content string `json:"content"`
}

// chatResponse is the outgoing WebSocket message format.
type chatResponse struct {
	Type    string `json:"type"` // "thinking", "message", "done" or "error"
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
	HTML    string `json:"html,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id, isNew := resolveSession(r)
	header := http.Header{}
	if isNew {
		issueSession(header, id)
	}

	conn, err := upgrader.Upgrade(w, r, header)
	if err != nil {
		logger.Warn("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	a := s.sessions.Get(r.Context(), id)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read", "error", err)
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendError(conn, "invalid message format")
			continue
		}

		switch req.Type {
		case "message":
			if strings.TrimSpace(req.Content) == "" {
				s.sendError(conn, "content is required")
				continue
			}
			s.send(conn, chatResponse{Type: "thinking"})
			s.sendMessages(conn, a.SendChat(r.Context(), req.Content))
		case "routine":
			s.send(conn, chatResponse{Type: "thinking"})
			s.sendMessages(conn, a.GenerateRoutine(r.Context()))
		default:
			s.sendError(conn, "unknown message type: "+req.Type)
		}
	}
}

func (s *Server) sendMessages(conn *websocket.Conn, msgs []advisor.ChatMessage) {
	for _, m := range msgs {
		s.send(conn, chatResponse{Type: "message", Role: string(m.Role), Content: m.Text, HTML: m.HTML})
	}
	s.send(conn, chatResponse{Type: "done"})
}

func (s *Server) send(conn *websocket.Conn, resp chatResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		logger.Warn("websocket write", "error", err)
	}
}

func (s *Server) sendError(conn *websocket.Conn, message string) {
	s.send(conn, chatResponse{Type: "error", Content: message})
}
