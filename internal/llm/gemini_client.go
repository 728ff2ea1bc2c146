package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/novagadgets/novadesk/internal/config"
	"github.com/novagadgets/novadesk/internal/observability"
	"github.com/novagadgets/novadesk/internal/resilience"
)

// GeminiClient implements TextProvider using the Gemini API
type GeminiClient struct {
	client         *genai.Client
	model          string
	timeout        time.Duration
	circuitBreaker *resilience.CircuitBreaker
}

// NewGeminiClient creates a Gemini client bound to apiKey. The circuit breaker is
// optional.
func NewGeminiClient(ctx context.Context, cfg *config.Config, apiKey string, cb *resilience.CircuitBreaker) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.GeminiBaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client:         client,
		model:          cfg.GeminiModel,
		timeout:        time.Duration(cfg.GeminiTimeout) * time.Second,
		circuitBreaker: cb,
	}, nil
}

// NewGeminiFactory returns a ProviderFactory for cfg. Only the client bound to the
// configured key is guarded by cb, so failures on caller-supplied keys never open it.
func NewGeminiFactory(cfg *config.Config, cb *resilience.CircuitBreaker) ProviderFactory {
	return func(ctx context.Context, apiKey string) (TextProvider, error) {
		var breaker *resilience.CircuitBreaker
		if apiKey == cfg.GeminiAPIKey {
			breaker = cb
		}
		client, err := NewGeminiClient(ctx, cfg, apiKey, breaker)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// Generate sends one GenerateContent call and returns the candidate text
func (g *GeminiClient) Generate(ctx context.Context, req *GenerateRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = g.model
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var text string
	call := func() error {
		resp, err := g.client.Models.GenerateContent(ctx, model, toGenaiContents(req.Contents), buildGenerateConfig(req))
		if err != nil {
			return fmt.Errorf("generateContent: %w", err)
		}
		text = extractText(resp)
		return nil
	}

	var err error
	if g.circuitBreaker != nil {
		err = g.circuitBreaker.Call(call)
		observability.UpdateCircuitBreakerState("gemini", int(g.circuitBreaker.GetState()))
		if err != nil {
			observability.IncrementCircuitBreakerFailures("gemini")
		}
	} else {
		err = call()
	}
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Close releases the client. The genai client holds no connection of its own.
func (g *GeminiClient) Close() error {
	return nil
}

func buildGenerateConfig(req *GenerateRequest) *genai.GenerateContentConfig {
	p := req.Params
	cfg := &genai.GenerateContentConfig{
		Temperature:     ptrFloat(p.Temperature),
		TopP:            ptrFloat(p.TopP),
		CandidateCount:  p.CandidateCount,
		MaxOutputTokens: p.MaxOutputTokens,
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	for _, category := range p.UnblockedCategories {
		cfg.SafetySettings = append(cfg.SafetySettings, &genai.SafetySetting{
			Category:  genai.HarmCategory(category),
			Threshold: genai.HarmBlockThresholdBlockNone,
		})
	}
	return cfg
}

func toGenaiContents(turns []Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		c := &genai.Content{Role: t.Role}
		for _, text := range t.Parts {
			c.Parts = append(c.Parts, genai.NewPartFromText(text))
		}
		if len(c.Parts) > 0 {
			contents = append(contents, c)
		}
	}
	return contents
}

// extractText joins the text parts of the first candidate
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil && p.Text != "" && !p.Thought {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

func ptrFloat(f float32) *float32 { return &f }
