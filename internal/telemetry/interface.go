package telemetry

import (
	"context"
	"time"
)

// Status classifies the outcome of one backend attempt.
type Status string

const (
	StatusSuccess            Status = "success"
	StatusRateLimited        Status = "rate_limited"
	StatusError              Status = "error"
	StatusFailedAfterRetries Status = "failed_after_retries"
)

// Call is one generation attempt record. Append-only; the pipeline
// never reads these back, only the stats command does.
type Call struct {
	Timestamp       time.Time `json:"timestamp"`
	RunID           string    `json:"run_id,omitempty"`
	Provider        string    `json:"provider"`
	Model           string    `json:"model"`
	Status          Status    `json:"status"`
	InputTokens     int       `json:"input_tokens,omitempty"`
	OutputTokens    int       `json:"output_tokens,omitempty"`
	TotalTokens     int       `json:"total_tokens,omitempty"`
	DurationMS      float64   `json:"duration_ms"`
	KeyIndex        int       `json:"key_index"`
	PromptLength    int       `json:"prompt_length,omitempty"`
	ResponsePreview string    `json:"response_preview,omitempty"`
	Error           string    `json:"error,omitempty"`
}

// UsageSummary aggregates recorded calls for one provider.
type UsageSummary struct {
	Provider          string
	TotalCalls        int
	SuccessCount      int
	ErrorCount        int
	RateLimitedCount  int
	TotalInputTokens  int
	TotalOutputTokens int
	TotalDurationMS   float64
}

// Sink receives generation attempt records. Record must never fail the
// caller: implementations swallow their own write errors and log them.
type Sink interface {
	Record(ctx context.Context, call Call)
	Summary(ctx context.Context, provider string) (*UsageSummary, error)
	Close() error
}
