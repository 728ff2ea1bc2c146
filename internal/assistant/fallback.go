package assistant

// FallbackResponder is the deterministic responder used when the provider fails
type FallbackResponder struct {
	rules    RuleTable
	catchAll string
}

// NewFallbackResponder creates a fallback responder over FallbackRules
func NewFallbackResponder() *FallbackResponder {
	return &FallbackResponder{
		rules:    FallbackRules,
		catchAll: FallbackDefault,
	}
}

// Respond returns the first matching fallback reply or the catch-all
func (f *FallbackResponder) Respond(message string) string {
	if reply, ok := f.rules.Match(message); ok {
		return reply
	}
	return f.catchAll
}
