package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// geminiBackend talks to the Gemini API through the official SDK.
// Gemini has no separate system role in this flow: the system
// instruction is concatenated with the prompt into one text block.
type geminiBackend struct {
	modelName string
}

func (b *geminiBackend) name() string  { return "gemini" }
func (b *geminiBackend) model() string { return b.modelName }

func (b *geminiBackend) call(ctx context.Context, req Request, apiKey string) (*callResult, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens:  int32(req.MaxTokens),
		ResponseMIMEType: "application/json",
	}

	fullPrompt := req.Prompt
	if req.SystemInstruction != "" {
		fullPrompt = req.SystemInstruction + "\n\n" + req.Prompt
	}

	result, err := client.Models.GenerateContent(ctx, b.modelName, genai.Text(fullPrompt), cfg)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from Gemini (possibly safety-blocked)")
	}

	var text string
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	if text == "" {
		return nil, fmt.Errorf("empty response from Gemini (possibly safety-blocked)")
	}

	res := &callResult{text: text}
	if usage := result.UsageMetadata; usage != nil {
		res.inputTokens = int(usage.PromptTokenCount)
		res.outputTokens = int(usage.CandidatesTokenCount)
		res.totalTokens = int(usage.TotalTokenCount)
	}

	return res, nil
}

func (b *geminiBackend) close() error { return nil }
