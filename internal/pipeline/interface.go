package pipeline

import "context"

// Pipeline converts transcript files into structured JSON via an LLM
// provider. providerName may be empty to use the registry default.
type Pipeline interface {
	// Run processes every eligible file in the input directory that has
	// no output yet, then shuts down the provider registry.
	Run(ctx context.Context, providerName string) (*Summary, error)

	// ProcessFile handles a single transcript. Used by watch mode.
	ProcessFile(ctx context.Context, inputPath, providerName string) Result
}
