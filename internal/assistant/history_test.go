package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/novagadgets/novadesk/internal/llm"
)

func TestBuildContents_Empty(t *testing.T) {
	got := BuildContents("hola", nil)

	assert.Equal(t, []llm.Turn{{Role: llm.RoleUser, Parts: []string{"hola"}}}, got)
}

func TestBuildContents_MapsRoles(t *testing.T) {
	history := []ConversationTurn{
		{Role: RoleUser, Text: "hola"},
		{Role: RoleAssistant, Text: "Hola!"},
		{Role: Role("system"), Text: "otro"},
	}

	got := BuildContents("precio", history)

	want := []llm.Turn{
		{Role: llm.RoleUser, Parts: []string{"hola"}},
		{Role: llm.RoleModel, Parts: []string{"Hola!"}},
		{Role: llm.RoleModel, Parts: []string{"otro"}},
		{Role: llm.RoleUser, Parts: []string{"precio"}},
	}
	assert.Equal(t, want, got)
}

func TestBuildContents_TailDuplicateNotAppended(t *testing.T) {
	history := []ConversationTurn{
		{Role: RoleUser, Text: "hola"},
		{Role: RoleAssistant, Text: "Hola!"},
		{Role: RoleUser, Text: "precio"},
	}

	got := BuildContents("precio", history)

	assert.Len(t, got, len(history))
	assert.Equal(t, llm.Turn{Role: llm.RoleUser, Parts: []string{"precio"}}, got[len(got)-1])
}

func TestBuildContents_OnlyLastEntryIsCompared(t *testing.T) {
	history := []ConversationTurn{
		{Role: RoleUser, Text: "precio"},
		{Role: RoleAssistant, Text: "Nuestros precios..."},
	}

	got := BuildContents("precio", history)

	assert.Len(t, got, len(history)+1)
}

func TestBuildContents_AssistantTailWithSameTextIsAppended(t *testing.T) {
	history := []ConversationTurn{{Role: RoleAssistant, Text: "precio"}}

	got := BuildContents("precio", history)

	assert.Len(t, got, 2)
}

func TestBuildContents_ComparisonIsLiteral(t *testing.T) {
	history := []ConversationTurn{{Role: RoleUser, Text: "Precio "}}

	got := BuildContents("precio", history)

	assert.Len(t, got, 2)
}
