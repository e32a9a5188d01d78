package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/lgdlong/ttt/internal/logger"
	"github.com/lgdlong/ttt/internal/telemetry"
)

// memorySink collects records for assertions.
type memorySink struct {
	mu    sync.Mutex
	calls []telemetry.Call
}

func (s *memorySink) Record(ctx context.Context, call telemetry.Call) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *memorySink) Summary(ctx context.Context, provider string) (*telemetry.UsageSummary, error) {
	return &telemetry.UsageSummary{Provider: provider}, nil
}

func (s *memorySink) Close() error { return nil }

func (s *memorySink) statuses() []telemetry.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]telemetry.Status, len(s.calls))
	for i, c := range s.calls {
		out[i] = c.Status
	}
	return out
}

// fakeBackend scripts one response per attempt.
type fakeBackend struct {
	mu        sync.Mutex
	responses []func() (*callResult, error)
	attempts  int
	keysSeen  []string
}

func (b *fakeBackend) name() string  { return "fake" }
func (b *fakeBackend) model() string { return "fake-model" }
func (b *fakeBackend) close() error  { return nil }

func (b *fakeBackend) call(ctx context.Context, req Request, apiKey string) (*callResult, error) {
	b.mu.Lock()
	i := b.attempts
	b.attempts++
	b.keysSeen = append(b.keysSeen, apiKey)
	b.mu.Unlock()

	if i >= len(b.responses) {
		return nil, fmt.Errorf("unexpected attempt %d", i+1)
	}
	return b.responses[i]()
}

func succeed(text string) func() (*callResult, error) {
	return func() (*callResult, error) {
		return &callResult{text: text, inputTokens: 10, outputTokens: 20, totalTokens: 30}, nil
	}
}

func failWith(msg string) func() (*callResult, error) {
	return func() (*callResult, error) { return nil, errors.New(msg) }
}

func testProvider(t *testing.T, b backend, keys []string, sink telemetry.Sink) Provider {
	t.Helper()
	p, err := newProvider(b, keys, RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		JitterMax:  time.Millisecond,
	}, sink, logger.NewWithWriter(io.Discard, "error"))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestGenerateSuccessFirstAttempt(t *testing.T) {
	sink := &memorySink{}
	b := &fakeBackend{responses: []func() (*callResult, error){succeed(`{"ok": true}`)}}
	p := testProvider(t, b, []string{"k1", "k2"}, sink)

	text, err := p.Generate(context.Background(), Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != `{"ok": true}` {
		t.Errorf("text = %q", text)
	}
	if b.attempts != 1 {
		t.Errorf("attempts = %d, want 1", b.attempts)
	}

	statuses := sink.statuses()
	if len(statuses) != 1 || statuses[0] != telemetry.StatusSuccess {
		t.Errorf("statuses = %v, want [success]", statuses)
	}
	if sink.calls[0].TotalTokens != 30 {
		t.Errorf("TotalTokens = %d, want 30", sink.calls[0].TotalTokens)
	}
	if sink.calls[0].ResponsePreview != `{"ok": true}` {
		t.Errorf("ResponsePreview = %q", sink.calls[0].ResponsePreview)
	}
}

func TestGenerateRateLimitedThenSuccess(t *testing.T) {
	sink := &memorySink{}
	b := &fakeBackend{responses: []func() (*callResult, error){
		failWith("429 resource exhausted"),
		succeed(`{"ok": true}`),
	}}
	p := testProvider(t, b, []string{"k1", "k2", "k3"}, sink)

	if _, err := p.Generate(context.Background(), Request{Prompt: "hi"}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if b.attempts != 2 {
		t.Errorf("attempts = %d, want 2", b.attempts)
	}
	// The retry must have rotated to the next key.
	if b.keysSeen[0] != "k1" || b.keysSeen[1] != "k2" {
		t.Errorf("keysSeen = %v, want [k1 k2]", b.keysSeen)
	}

	want := []telemetry.Status{telemetry.StatusRateLimited, telemetry.StatusSuccess}
	got := sink.statuses()
	if len(got) != len(want) {
		t.Fatalf("statuses = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("status[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestGenerateTerminalErrorNoRetry(t *testing.T) {
	sink := &memorySink{}
	b := &fakeBackend{responses: []func() (*callResult, error){failWith("invalid request: bad prompt")}}
	p := testProvider(t, b, []string{"k1"}, sink)

	_, err := p.Generate(context.Background(), Request{Prompt: "hi"})
	if err == nil {
		t.Fatal("Generate() should fail")
	}
	if b.attempts != 1 {
		t.Errorf("attempts = %d, want 1 (terminal errors never retry)", b.attempts)
	}

	statuses := sink.statuses()
	if len(statuses) != 1 || statuses[0] != telemetry.StatusError {
		t.Errorf("statuses = %v, want [error]", statuses)
	}
}

func TestGenerateRetriesExhausted(t *testing.T) {
	sink := &memorySink{}
	b := &fakeBackend{responses: []func() (*callResult, error){
		failWith("quota exceeded"),
		failWith("500 internal server error"),
		failWith("rate limit hit"),
	}}
	p := testProvider(t, b, []string{"a", "b"}, sink)

	_, err := p.Generate(context.Background(), Request{Prompt: "hi"})
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("Generate() error = %v, want ErrRetriesExhausted", err)
	}
	if b.attempts != 3 {
		t.Errorf("attempts = %d, want max_retries (3)", b.attempts)
	}
	// Two keys, three attempts: the ring wraps around.
	wantKeys := []string{"a", "b", "a"}
	for i, k := range wantKeys {
		if b.keysSeen[i] != k {
			t.Errorf("keysSeen[%d] = %q, want %q", i, b.keysSeen[i], k)
		}
	}

	statuses := sink.statuses()
	want := []telemetry.Status{
		telemetry.StatusRateLimited,
		telemetry.StatusRateLimited,
		telemetry.StatusRateLimited,
		telemetry.StatusFailedAfterRetries,
	}
	if len(statuses) != len(want) {
		t.Fatalf("statuses = %v, want %v", statuses, want)
	}
	for i := range want {
		if statuses[i] != want[i] {
			t.Errorf("status[%d] = %v, want %v", i, statuses[i], want[i])
		}
	}
}

func TestGenerateBackoffTiming(t *testing.T) {
	sink := &memorySink{}
	b := &fakeBackend{responses: []func() (*callResult, error){
		failWith("429"),
		failWith("429"),
		succeed("{}"),
	}}

	base := 20 * time.Millisecond
	jitter := 10 * time.Millisecond
	p, err := newProvider(b, []string{"k"}, RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  base,
		JitterMax:  jitter,
	}, sink, logger.NewWithWriter(io.Discard, "error"))
	if err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	if _, err := p.Generate(context.Background(), Request{Prompt: "hi"}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	elapsed := time.Since(start)

	// Two backoffs: base*1 and base*2, each plus jitter in [0, jitter).
	min := 3 * base
	max := 3*base + 2*jitter + 200*time.Millisecond // slack for slow CI
	if elapsed < min {
		t.Errorf("elapsed = %v, want >= %v", elapsed, min)
	}
	if elapsed > max {
		t.Errorf("elapsed = %v, want <= %v", elapsed, max)
	}
}

func TestGenerateBackoffCancellation(t *testing.T) {
	sink := &memorySink{}
	b := &fakeBackend{responses: []func() (*callResult, error){
		failWith("429"),
		succeed("{}"),
	}}
	p, err := newProvider(b, []string{"k"}, RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  10 * time.Second,
	}, sink, logger.NewWithWriter(io.Discard, "error"))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, genErr := p.Generate(ctx, Request{Prompt: "hi"})
	if !errors.Is(genErr, context.Canceled) {
		t.Errorf("Generate() error = %v, want context.Canceled", genErr)
	}
	if time.Since(start) > time.Second {
		t.Error("cancellation did not interrupt the backoff sleep")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit", errors.New("Rate limit exceeded"), true},
		{"quota", errors.New("QUOTA exhausted for project"), true},
		{"http 429", errors.New("googleapi: Error 429"), true},
		{"http 500", errors.New("500 internal error"), true},
		{"http 503", errors.New("503 service unavailable"), true},
		{"resource exhausted", errors.New("code RESOURCE_EXHAUSTED"), true},
		{"auth failure", errors.New("401 unauthorized"), false},
		{"bad request", errors.New("invalid argument"), false},
		{"empty response", errors.New("empty response from Gemini"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestProviderCloseIdempotent(t *testing.T) {
	sink := &memorySink{}
	b := &fakeBackend{}
	p := testProvider(t, b, []string{"k"}, sink)

	if err := p.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestPreviewRuneBoundary(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"short text unchanged", "hello", 10, "hello"},
		{"ascii cut", "hello world", 5, "hello"},
		{"multi-byte rune backs off", "héllo", 2, "h"},
		{"cut lands on rune start", "héllo", 3, "hé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preview(tt.text, tt.max)
			if got != tt.want {
				t.Errorf("preview(%q, %d) = %q, want %q", tt.text, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("preview(%q, %d) produced invalid UTF-8", tt.text, tt.max)
			}
		})
	}
}
