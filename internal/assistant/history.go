package assistant

import "github.com/novagadgets/novadesk/internal/llm"

// Role identifies who spoke a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one locally stored message of a conversation
type ConversationTurn struct {
	Role Role
	Text string
}

// BuildContents converts history plus the current message into provider turns.
// The message is appended as a final user turn unless the last history entry is
// already a user turn with exactly the same text. Only the last entry is checked.
func BuildContents(message string, history []ConversationTurn) []llm.Turn {
	turns := make([]llm.Turn, 0, len(history)+1)
	for _, h := range history {
		role := llm.RoleModel
		if h.Role == RoleUser {
			role = llm.RoleUser
		}
		turns = append(turns, llm.Turn{Role: role, Parts: []string{h.Text}})
	}

	if n := len(history); n > 0 && history[n-1].Role == RoleUser && history[n-1].Text == message {
		return turns
	}
	return append(turns, llm.Turn{Role: llm.RoleUser, Parts: []string{message}})
}
