package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/novagadgets/novadesk/internal/config"
	"github.com/novagadgets/novadesk/internal/llm"
	"github.com/novagadgets/novadesk/internal/observability"
)

// Path records which responder produced a reply
type Path string

const (
	PathDemo     Path = "demo"
	PathRemote   Path = "remote"
	PathFallback Path = "fallback"
)

// Request is one message to answer
type Request struct {
	Message string
	History []ConversationTurn
	APIKey  string // Overrides the configured key when not blank
	Model   string // Overrides the configured model when set
}

// Result is the reply for a Request. Reply is never empty.
type Result struct {
	Reply string
	Path  Path
}

// Options configures an Orchestrator
type Options struct {
	APIKey   string           // Configured provider key
	Model    string           // Configured model
	Provider llm.TextProvider // Client bound to APIKey; built through Factory when nil
	Factory  llm.ProviderFactory
	Rand     RandSource
	Logger   zerolog.Logger
}

// Orchestrator picks between the remote provider and the local responders
type Orchestrator struct {
	apiKey   string
	model    string
	provider llm.TextProvider
	factory  llm.ProviderFactory
	demo     *DemoResponder
	fallback *FallbackResponder
	logger   zerolog.Logger

	mu sync.Mutex // Guards provider
}

// NewOrchestrator creates an Orchestrator
func NewOrchestrator(opts Options) *Orchestrator {
	return &Orchestrator{
		apiKey:   opts.APIKey,
		model:    opts.Model,
		provider: opts.Provider,
		factory:  opts.Factory,
		demo:     NewDemoResponder(opts.Rand),
		fallback: NewFallbackResponder(),
		logger:   opts.Logger.With().Str("component", "orchestrator").Logger(),
	}
}

// Respond answers req with exactly one provider attempt at most
func (o *Orchestrator) Respond(ctx context.Context, req Request) Result {
	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		key = o.apiKey
	}

	if !config.UsableAPIKey(key) {
		o.logger.Debug().Msg("Provider key not configured, using demo mode")
		return o.finish(Result{Reply: o.demo.Respond(req.Message), Path: PathDemo})
	}

	text, err := o.generate(ctx, key, req)
	cleaned := strings.TrimSpace(text)
	if err == nil && cleaned != "" {
		return o.finish(Result{Reply: cleaned, Path: PathRemote})
	}

	if err == nil {
		err = llm.ErrEmptyResponse
	}
	o.logger.Error().Err(err).Msg("Error generating response with remote provider")
	return o.finish(Result{Reply: o.fallback.Respond(req.Message), Path: PathFallback})
}

func (o *Orchestrator) generate(ctx context.Context, key string, req Request) (string, error) {
	provider, release, err := o.providerFor(ctx, key)
	if err != nil {
		return "", err
	}
	defer release()

	model := req.Model
	if model == "" {
		model = o.model
	}

	start := time.Now()
	text, err := provider.Generate(ctx, &llm.GenerateRequest{
		Model:             model,
		SystemInstruction: SystemPrompt,
		Contents:          BuildContents(req.Message, req.History),
		Params:            GenerationParams,
	})
	observability.ObserveProviderCall(time.Since(start), err == nil)
	return text, err
}

// providerFor returns the client for key. The configured key's client is kept for
// the life of the Orchestrator; clients for override keys live for one request.
func (o *Orchestrator) providerFor(ctx context.Context, key string) (llm.TextProvider, func(), error) {
	if key == o.apiKey {
		p, err := o.configuredProvider(ctx)
		return p, func() {}, err
	}

	if o.factory == nil {
		return nil, nil, errors.New("no provider factory configured")
	}
	p, err := o.factory(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if err := p.Close(); err != nil {
			o.logger.Warn().Err(err).Msg("Error closing provider client")
		}
	}
	return p, release, nil
}

func (o *Orchestrator) configuredProvider(ctx context.Context) (llm.TextProvider, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.provider != nil {
		return o.provider, nil
	}
	if o.factory == nil {
		return nil, errors.New("no provider factory configured")
	}
	p, err := o.factory(ctx, o.apiKey)
	if err != nil {
		return nil, err
	}
	o.provider = p
	return p, nil
}

func (o *Orchestrator) finish(res Result) Result {
	observability.RecordReply(string(res.Path))
	return res
}

// Close releases the configured provider client
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.provider == nil {
		return nil
	}
	err := o.provider.Close()
	o.provider = nil
	return err
}
