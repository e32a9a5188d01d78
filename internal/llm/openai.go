package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lgdlong/ttt/internal/logger"
)

// openaiBackend talks to the OpenAI chat completions API (or any
// compatible third-party endpoint via baseURL). Unlike Gemini, the
// system instruction goes into its own message role.
type openaiBackend struct {
	modelName string
	baseURL   string
	logger    logger.Logger
}

func (b *openaiBackend) name() string  { return "openai" }
func (b *openaiBackend) model() string { return b.modelName }

func (b *openaiBackend) call(ctx context.Context, req Request, apiKey string) (*callResult, error) {
	cfg := openai.DefaultConfig(apiKey)
	if b.baseURL != "" {
		cfg.BaseURL = b.baseURL
	}
	client := openai.NewClientWithConfig(cfg)

	var messages []openai.ChatCompletionMessage
	if req.SystemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemInstruction,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       b.modelName,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonLength {
		b.logger.Warn(ctx, "openai: response truncated at %d tokens (max_tokens=%d)",
			resp.Usage.CompletionTokens, req.MaxTokens)
	}

	return &callResult{
		text:         choice.Message.Content,
		inputTokens:  resp.Usage.PromptTokens,
		outputTokens: resp.Usage.CompletionTokens,
		totalTokens:  resp.Usage.TotalTokens,
	}, nil
}

func (b *openaiBackend) close() error { return nil }
