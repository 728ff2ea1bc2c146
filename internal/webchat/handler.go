package webchat

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/novagadgets/novadesk/internal/assistant"
	"github.com/novagadgets/novadesk/internal/observability"
)

const maxChatBodyBytes = 256 << 10

// Responder produces the reply for a chat message
type Responder interface {
	Respond(ctx context.Context, req assistant.Request) assistant.Result
}

// Handler serves the browser chat over HTTP and WebSocket
type Handler struct {
	responder Responder
	logger    zerolog.Logger
}

// NewHandler creates a web chat handler
func NewHandler(responder Responder, logger zerolog.Logger) *Handler {
	return &Handler{
		responder: responder,
		logger:    logger.With().Str("component", "webchat").Logger(),
	}
}

// Chat handles POST /api/chat
func (h *Handler) Chat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBodyBytes)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ChatResponse{Error: "Solicitud inválida"})
			return
		}

		resp, ok := h.answer(r.Context(), "web", req)
		if !ok {
			writeJSON(w, http.StatusBadRequest, resp)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// answer runs one chat exchange. It reports false for an invalid request.
func (h *Handler) answer(ctx context.Context, channel string, req ChatRequest) (ChatResponse, bool) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return ChatResponse{Error: "El mensaje no puede estar vacío"}, false
	}

	observability.RecordMessageReceived(channel)
	res := h.responder.Respond(ctx, assistant.Request{
		Message: message,
		History: toTurns(req.History),
		APIKey:  req.APIKey,
		Model:   req.Model,
	})
	observability.LoggerFromContext(ctx).Debug().
		Str("channel", channel).
		Str("path", string(res.Path)).
		Msg("Chat reply generated")

	history := make([]ChatMessage, 0, len(req.History)+2)
	history = append(history, req.History...)
	history = append(history,
		ChatMessage{Sender: SenderUser, Text: message},
		ChatMessage{Sender: SenderAssistant, Text: res.Reply},
	)

	return ChatResponse{Success: true, Response: res.Reply, History: history}, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
