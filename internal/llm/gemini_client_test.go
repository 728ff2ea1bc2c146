package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/novagadgets/novadesk/internal/config"
	"github.com/novagadgets/novadesk/internal/resilience"
)

func TestBuildGenerateConfig(t *testing.T) {
	req := &GenerateRequest{
		SystemInstruction: "Eres NovaDesk",
		Params: GenerationParams{
			MaxOutputTokens:     256,
			Temperature:         0.6,
			TopP:                0.9,
			CandidateCount:      1,
			UnblockedCategories: []HarmCategory{HarmDangerousContent, HarmHarassment},
		},
	}

	cfg := buildGenerateConfig(req)

	require.NotNil(t, cfg.Temperature)
	require.NotNil(t, cfg.TopP)
	assert.InDelta(t, 0.6, *cfg.Temperature, 1e-6)
	assert.InDelta(t, 0.9, *cfg.TopP, 1e-6)
	assert.Equal(t, int32(256), cfg.MaxOutputTokens)
	assert.Equal(t, int32(1), cfg.CandidateCount)

	require.NotNil(t, cfg.SystemInstruction)
	require.Len(t, cfg.SystemInstruction.Parts, 1)
	assert.Equal(t, "Eres NovaDesk", cfg.SystemInstruction.Parts[0].Text)

	require.Len(t, cfg.SafetySettings, 2)
	assert.Equal(t, genai.HarmCategoryDangerousContent, cfg.SafetySettings[0].Category)
	assert.Equal(t, genai.HarmCategoryHarassment, cfg.SafetySettings[1].Category)
	for _, s := range cfg.SafetySettings {
		assert.Equal(t, genai.HarmBlockThresholdBlockNone, s.Threshold)
	}
}

func TestBuildGenerateConfig_NoSystemInstruction(t *testing.T) {
	cfg := buildGenerateConfig(&GenerateRequest{})

	assert.Nil(t, cfg.SystemInstruction)
	assert.Empty(t, cfg.SafetySettings)
}

func TestToGenaiContents(t *testing.T) {
	turns := []Turn{
		{Role: RoleUser, Parts: []string{"hola"}},
		{Role: RoleModel, Parts: []string{"Hola!"}},
		{Role: RoleUser, Parts: nil},
	}

	contents := toGenaiContents(turns)

	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "hola", contents[0].Parts[0].Text)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, "Hola!", contents[1].Parts[0].Text)
}

func TestExtractText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "pensando...", Thought: true},
				{Text: "Hola, "},
				{Text: "soy NovaDesk."},
			}},
		}},
	}

	assert.Equal(t, "Hola, soy NovaDesk.", extractText(resp))
}

func TestExtractText_NoCandidates(t *testing.T) {
	assert.Empty(t, extractText(nil))
	assert.Empty(t, extractText(&genai.GenerateContentResponse{}))
	assert.Empty(t, extractText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}))
}

func TestGeminiClient_OpenCircuitFailsFast(t *testing.T) {
	cb := resilience.NewCircuitBreaker("gemini", 1, time.Minute)
	cb.RecordResult(false)

	// The genai client is never reached while the circuit is open
	g := &GeminiClient{model: "gemini-2.0-flash", timeout: time.Second, circuitBreaker: cb}

	_, err := g.Generate(context.Background(), &GenerateRequest{Contents: []Turn{{Role: RoleUser, Parts: []string{"hola"}}}})

	assert.True(t, errors.Is(err, resilience.ErrCircuitOpen))
}

// newFakeGemini serves generateContent, accepting only the given key
func newFakeGemini(t *testing.T, validKey string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		key := r.Header.Get("x-goog-api-key")
		if key == "" {
			key = r.URL.Query().Get("key")
		}
		w.Header().Set("Content-Type", "application/json")
		if key != validKey {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
			return
		}
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"hola"}]}}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGeminiFactory_OverrideKeyFailuresLeaveConfiguredBreakerClosed(t *testing.T) {
	var calls atomic.Int32
	srv := newFakeGemini(t, "good", &calls)
	cfg := &config.Config{
		GeminiAPIKey:  "good",
		GeminiModel:   "gemini-2.0-flash",
		GeminiTimeout: 5,
		GeminiBaseURL: srv.URL,
	}
	cb := resilience.NewCircuitBreaker("gemini", 5, time.Minute)
	factory := NewGeminiFactory(cfg, cb)
	ctx := context.Background()
	req := &GenerateRequest{Contents: []Turn{{Role: RoleUser, Parts: []string{"hola"}}}}

	configured, err := factory(ctx, "good")
	require.NoError(t, err)
	override, err := factory(ctx, "bogus")
	require.NoError(t, err)

	text, err := configured.Generate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "hola", text)

	for i := 0; i < 10; i++ {
		_, err := override.Generate(ctx, req)
		require.Error(t, err)
		assert.False(t, errors.Is(err, resilience.ErrCircuitOpen))
	}
	assert.Equal(t, resilience.StateClosed, cb.GetState())

	text, err = configured.Generate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "hola", text)
	assert.GreaterOrEqual(t, calls.Load(), int32(12))
}

func TestGeminiFactory_ConfiguredKeyIsGuarded(t *testing.T) {
	cfg := &config.Config{GeminiAPIKey: "good", GeminiModel: "gemini-2.0-flash", GeminiTimeout: 5}
	cb := resilience.NewCircuitBreaker("gemini", 5, time.Minute)
	factory := NewGeminiFactory(cfg, cb)

	configured, err := factory(context.Background(), "good")
	require.NoError(t, err)
	override, err := factory(context.Background(), "other")
	require.NoError(t, err)

	assert.Same(t, cb, configured.(*GeminiClient).circuitBreaker)
	assert.Nil(t, override.(*GeminiClient).circuitBreaker)
}
