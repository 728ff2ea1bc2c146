package webchat

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/novagadgets/novadesk/internal/observability"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameBytes  = maxChatBodyBytes
	sessionChannel = "websocket"
)

var upgrader = websocket.Upgrader{
	// The chat page is served from the same origin; gorilla rejects cross-origin
	// upgrades when CheckOrigin is nil.
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// ChatSession is one browser WebSocket connection. It remembers the conversation
// so clients may omit history after the first frame.
type ChatSession struct {
	conn    *websocket.Conn
	handler *Handler

	history []ChatMessage

	writeMu sync.Mutex
	logger  zerolog.Logger
	done    chan struct{}
}

// Stream handles GET /ws/chat
func (h *Handler) Stream() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error
			h.logger.Warn().Err(err).Msg("Failed to upgrade connection to WebSocket")
			return
		}
		defer conn.Close()

		session := &ChatSession{
			conn:    conn,
			handler: h,
			logger:  observability.WithCorrelationID(observability.NewCorrelationID()).With().Str("component", "webchat").Logger(),
			done:    make(chan struct{}),
		}
		session.logger.Info().Str("remote_addr", r.RemoteAddr).Msg("Chat session opened")

		go session.keepAlive()
		session.processIncomingMessages(r.Context())

		session.logger.Info().Int("turns", len(session.history)).Msg("Chat session closed")
	}
}

func (s *ChatSession) processIncomingMessages(ctx context.Context) {
	defer close(s.done)

	s.conn.SetReadLimit(maxFrameBytes)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	ctx = s.logger.WithContext(ctx)
	for {
		msgType, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn().Err(err).Msg("WebSocket read error")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var req ChatRequest
		if err := json.Unmarshal(message, &req); err != nil {
			s.logger.Error().Err(err).Msg("Failed to parse chat frame")
			if err := s.writeJSON(ChatResponse{Error: "Solicitud inválida"}); err != nil {
				return
			}
			continue
		}
		if req.History == nil {
			req.History = s.history
		}

		resp, ok := s.handler.answer(ctx, sessionChannel, req)
		if ok {
			s.history = resp.History
		}
		if err := s.writeJSON(resp); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to write chat reply")
			return
		}
	}
}

func (s *ChatSession) keepAlive() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			s.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (s *ChatSession) writeJSON(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(v)
}
