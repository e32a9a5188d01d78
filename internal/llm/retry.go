package llm

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/lgdlong/ttt/internal/logger"
	"github.com/lgdlong/ttt/internal/telemetry"
)

// RetryPolicy bounds the attempts of one logical Generate call.
// Backoff grows geometrically with base 2 from BaseDelay; jitter is
// additive and uniform in [0, JitterMax).
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	JitterMax  time.Duration
}

// callResult is what a backend returns on a successful attempt.
type callResult struct {
	text         string
	inputTokens  int
	outputTokens int
	totalTokens  int
}

// backend is one wire-protocol variant: it translates a Request into a
// single network attempt with the given key. Retry, rotation, and
// telemetry live in implProvider, shared by every variant.
type backend interface {
	name() string
	model() string
	call(ctx context.Context, req Request, apiKey string) (*callResult, error)
	close() error
}

type implProvider struct {
	backend   backend
	keys      *keyRing
	retry     RetryPolicy
	sink      telemetry.Sink
	logger    logger.Logger
	closeOnce sync.Once
}

func newProvider(b backend, keys []string, retry RetryPolicy, sink telemetry.Sink, log logger.Logger) (Provider, error) {
	ring, err := newKeyRing(keys)
	if err != nil {
		return nil, fmt.Errorf("%s provider: %w", b.name(), err)
	}
	if retry.MaxRetries < 1 {
		retry.MaxRetries = 1
	}
	return &implProvider{
		backend: b,
		keys:    ring,
		retry:   retry,
		sink:    sink,
		logger:  log,
	}, nil
}

func (p *implProvider) Name() string      { return p.backend.name() }
func (p *implProvider) ModelName() string { return p.backend.model() }

func (p *implProvider) Close() error {
	var err error
	p.closeOnce.Do(func() { err = p.backend.close() })
	return err
}

// Generate runs the attempt loop: take the next key, call the backend,
// and on a transient failure back off and try again with a fresh key.
// Terminal failures surface immediately; exhaustion returns
// ErrRetriesExhausted. Every attempt emits one telemetry record.
func (p *implProvider) Generate(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	promptLen := len(req.Prompt)
	if req.SystemInstruction != "" {
		promptLen += len(req.SystemInstruction) + 2
	}

	var lastErr error
	lastKeyIdx := -1
	for attempt := 1; attempt <= p.retry.MaxRetries; attempt++ {
		key, keyIdx := p.keys.take()
		lastKeyIdx = keyIdx

		res, err := p.backend.call(ctx, req, key)
		if err == nil {
			p.record(ctx, telemetry.StatusSuccess, res, keyIdx, start, promptLen, nil)
			return res.text, nil
		}

		if !IsRetryable(err) {
			p.record(ctx, telemetry.StatusError, nil, keyIdx, start, promptLen, err)
			return "", fmt.Errorf("%s: %w", p.backend.name(), err)
		}

		lastErr = err
		p.logger.Warn(ctx, "%s: attempt %d/%d failed (key %d), rotating: %v",
			p.backend.name(), attempt, p.retry.MaxRetries, keyIdx, err)
		p.record(ctx, telemetry.StatusRateLimited, nil, keyIdx, start, promptLen, err)

		if attempt < p.retry.MaxRetries {
			if err := p.backoff(ctx, attempt); err != nil {
				return "", err
			}
		}
	}

	exhausted := fmt.Errorf("%s: %w after %d attempts: %v",
		p.backend.name(), ErrRetriesExhausted, p.retry.MaxRetries, lastErr)
	p.record(ctx, telemetry.StatusFailedAfterRetries, nil, lastKeyIdx, start, promptLen, exhausted)
	return "", exhausted
}

// backoff sleeps base*2^(attempt-1) plus uniform jitter, or returns
// early if the context is cancelled.
func (p *implProvider) backoff(ctx context.Context, attempt int) error {
	delay := p.retry.BaseDelay * (1 << (attempt - 1))
	if p.retry.JitterMax > 0 {
		delay += time.Duration(rand.Int63n(int64(p.retry.JitterMax)))
	}

	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *implProvider) record(ctx context.Context, status telemetry.Status, res *callResult, keyIdx int, start time.Time, promptLen int, callErr error) {
	call := telemetry.Call{
		Timestamp:    time.Now(),
		RunID:        telemetry.RunIDFrom(ctx),
		Provider:     p.backend.name(),
		Model:        p.backend.model(),
		Status:       status,
		DurationMS:   float64(time.Since(start).Microseconds()) / 1000,
		KeyIndex:     keyIdx,
		PromptLength: promptLen,
	}
	if res != nil {
		call.InputTokens = res.inputTokens
		call.OutputTokens = res.outputTokens
		call.TotalTokens = res.totalTokens
		call.ResponsePreview = preview(res.text, 100)
	}
	if callErr != nil {
		call.Error = callErr.Error()
	}
	p.sink.Record(ctx, call)
}

// preview truncates text for the telemetry record, backing off to a
// rune boundary so the cut never produces invalid UTF-8.
func preview(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
