package telemetry

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lgdlong/ttt/internal/logger"
)

func testLog() logger.Logger { return logger.NewWithWriter(io.Discard, "error") }

func sampleCall(provider string, status Status) Call {
	return Call{
		Timestamp:    time.Now(),
		Provider:     provider,
		Model:        provider + "-model",
		Status:       status,
		InputTokens:  100,
		OutputTokens: 50,
		TotalTokens:  150,
		DurationMS:   12.5,
		KeyIndex:     0,
	}
}

func TestFileSinkRecordAndSummary(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "logs", "calls.jsonl")
	sink := NewFileSink(path, testLog())

	sink.Record(ctx, sampleCall("gemini", StatusSuccess))
	sink.Record(ctx, sampleCall("gemini", StatusRateLimited))
	sink.Record(ctx, sampleCall("gemini", StatusFailedAfterRetries))
	sink.Record(ctx, sampleCall("openai", StatusSuccess))

	sum, err := sink.Summary(ctx, "gemini")
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	if sum.TotalCalls != 3 {
		t.Errorf("TotalCalls = %d, want 3", sum.TotalCalls)
	}
	if sum.SuccessCount != 1 || sum.RateLimitedCount != 1 || sum.ErrorCount != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/1/1",
			sum.SuccessCount, sum.RateLimitedCount, sum.ErrorCount)
	}
	if sum.TotalInputTokens != 300 {
		t.Errorf("TotalInputTokens = %d, want 300", sum.TotalInputTokens)
	}
}

func TestFileSinkLinesAreValidJSON(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "calls.jsonl")
	sink := NewFileSink(path, testLog())

	sink.Record(ctx, sampleCall("gemini", StatusSuccess))
	sink.Record(ctx, sampleCall("gemini", StatusError))

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var call Call
		if err := json.Unmarshal(scanner.Bytes(), &call); err != nil {
			t.Errorf("line %d is not valid JSON: %v", lines+1, err)
		}
		lines++
	}
	if lines != 2 {
		t.Errorf("lines = %d, want 2", lines)
	}
}

func TestFileSinkSwallowsWriteFailure(t *testing.T) {
	ctx := context.Background()
	// Parent "directory" is a regular file, so every write fails.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	sink := NewFileSink(filepath.Join(blocker, "calls.jsonl"), testLog())

	// Must not panic or error out; failures only surface in the log.
	sink.Record(ctx, sampleCall("gemini", StatusSuccess))
}
