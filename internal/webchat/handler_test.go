package webchat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novagadgets/novadesk/internal/assistant"
)

// recordingResponder echoes the message and keeps the last request
type recordingResponder struct {
	last assistant.Request
}

func (r *recordingResponder) Respond(ctx context.Context, req assistant.Request) assistant.Result {
	r.last = req
	return assistant.Result{Reply: "re: " + req.Message, Path: assistant.PathRemote}
}

func TestChat(t *testing.T) {
	responder := &recordingResponder{}
	h := NewHandler(responder, zerolog.Nop())

	body := `{"message":" precio ","history":[{"sender":"Asistente","text":"Hola"},{"sender":"Usuario","text":"hola"}],"api_key":"k","model":"m"}`
	rec := httptest.NewRecorder()
	h.Chat()(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ChatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.True(t, resp.Success)
	assert.Equal(t, "re: precio", resp.Response)
	assert.Equal(t, []ChatMessage{
		{Sender: SenderAssistant, Text: "Hola"},
		{Sender: SenderUser, Text: "hola"},
		{Sender: SenderUser, Text: "precio"},
		{Sender: SenderAssistant, Text: "re: precio"},
	}, resp.History)

	assert.Equal(t, "precio", responder.last.Message)
	assert.Equal(t, "k", responder.last.APIKey)
	assert.Equal(t, "m", responder.last.Model)
	assert.Equal(t, []assistant.ConversationTurn{
		{Role: assistant.RoleAssistant, Text: "Hola"},
		{Role: assistant.RoleUser, Text: "hola"},
	}, responder.last.History)
}

func TestChat_EmptyMessage(t *testing.T) {
	h := NewHandler(&recordingResponder{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Chat()(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"  "}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ChatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestChat_InvalidJSON(t *testing.T) {
	h := NewHandler(&recordingResponder{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Chat()(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChat_DemoModeEndToEnd(t *testing.T) {
	o := assistant.NewOrchestrator(assistant.Options{Logger: zerolog.Nop()})
	h := NewHandler(o, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Chat()(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"como puedo pagar"}`)))

	var resp ChatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.Response, "Formas de pago")
}

func TestStream_KeepsSessionHistory(t *testing.T) {
	responder := &recordingResponder{}
	h := NewHandler(responder, zerolog.Nop())
	srv := httptest.NewServer(h.Stream())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(ChatRequest{Message: "hola"}))
	var first ChatResponse
	require.NoError(t, conn.ReadJSON(&first))
	assert.True(t, first.Success)
	assert.Len(t, first.History, 2)

	require.NoError(t, conn.WriteJSON(ChatRequest{Message: "precio"}))
	var second ChatResponse
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, "re: precio", second.Response)
	assert.Len(t, second.History, 4)
}

func TestStream_InvalidFrame(t *testing.T) {
	h := NewHandler(&recordingResponder{}, zerolog.Nop())
	srv := httptest.NewServer(h.Stream())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	var resp ChatResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.False(t, resp.Success)
}
