package llm

import (
	"context"
	"errors"
)

// Turn roles understood by the provider
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ErrEmptyResponse is returned when the provider answers without any text
var ErrEmptyResponse = errors.New("provider returned no text")

// Turn is one entry of the conversation sent to the provider
type Turn struct {
	Role  string   // "user" or "model"
	Parts []string // Text parts, one per history entry
}

// HarmCategory names a provider safety category
type HarmCategory string

const (
	HarmDangerousContent HarmCategory = "HARM_CATEGORY_DANGEROUS_CONTENT"
	HarmHarassment       HarmCategory = "HARM_CATEGORY_HARASSMENT"
)

// GenerationParams are the sampling parameters of a single call
type GenerationParams struct {
	MaxOutputTokens int32
	Temperature     float32
	TopP            float32
	CandidateCount  int32
	// Categories whose blocking threshold is relaxed to "block none"
	UnblockedCategories []HarmCategory
}

// GenerateRequest is one generation call
type GenerateRequest struct {
	Model             string // Empty selects the client's default model
	SystemInstruction string
	Contents          []Turn
	Params            GenerationParams
}

// TextProvider defines the interface for a generative text provider
type TextProvider interface {
	// Generate returns the text of the first candidate
	Generate(ctx context.Context, req *GenerateRequest) (string, error)

	// Close releases the client
	Close() error
}

// ProviderFactory builds a provider bound to an API key
type ProviderFactory func(ctx context.Context, apiKey string) (TextProvider, error)
