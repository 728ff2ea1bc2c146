package webchat

import "github.com/novagadgets/novadesk/internal/assistant"

// Sender labels used by the browser chat
const (
	SenderUser      = "Usuario"
	SenderAssistant = "Asistente"
)

// ChatMessage is one history entry as the browser stores it
type ChatMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// ChatRequest is the body of POST /api/chat and of each WebSocket frame
type ChatRequest struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history"`
	APIKey  string        `json:"api_key,omitempty"`
	Model   string        `json:"model,omitempty"`
}

// ChatResponse is returned for every chat request
type ChatResponse struct {
	Success  bool          `json:"success"`
	Response string        `json:"response,omitempty"`
	History  []ChatMessage `json:"history,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// toTurns maps browser history to conversation turns. Only "Usuario" is a user turn.
func toTurns(history []ChatMessage) []assistant.ConversationTurn {
	turns := make([]assistant.ConversationTurn, 0, len(history))
	for _, m := range history {
		role := assistant.RoleAssistant
		if m.Sender == SenderUser {
			role = assistant.RoleUser
		}
		turns = append(turns, assistant.ConversationTurn{Role: role, Text: m.Text})
	}
	return turns
}
