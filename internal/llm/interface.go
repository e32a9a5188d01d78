package llm

import "context"

// Request carries one generation request. Prompt validation is the
// caller's job; temperature and token budget pass through to the
// backend verbatim.
type Request struct {
	Prompt            string
	SystemInstruction string
	Temperature       float64
	MaxTokens         int
}

// Provider is the text-generation capability. One logical Generate call
// may issue several network attempts under the retry policy.
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
	ModelName() string
	Close() error
}
