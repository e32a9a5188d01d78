package telemetry

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/lgdlong/ttt/internal/logger"
)

type fileSink struct {
	path   string
	logger logger.Logger
	mu     sync.Mutex
}

// NewFileSink creates a sink that appends one JSON line per call to
// path. The file and its parent directory are created on first write.
func NewFileSink(path string, log logger.Logger) Sink {
	return &fileSink{path: path, logger: log}
}

// Record appends the call as a JSON line. Write failures are logged and
// swallowed so a broken log destination never fails a generation call.
func (s *fileSink) Record(ctx context.Context, call Call) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		s.logger.Warn(ctx, "telemetry: create log dir: %v", err)
		return
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		s.logger.Warn(ctx, "telemetry: open log file: %v", err)
		return
	}
	defer f.Close()

	line, err := json.Marshal(call)
	if err != nil {
		s.logger.Warn(ctx, "telemetry: marshal record: %v", err)
		return
	}

	if _, err := f.Write(append(line, '\n')); err != nil {
		s.logger.Warn(ctx, "telemetry: write record: %v", err)
	}
}

// Summary scans the log file and aggregates calls for one provider.
func (s *fileSink) Summary(ctx context.Context, provider string) (*UsageSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sum := &UsageSummary{Provider: provider}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var call Call
		if err := json.Unmarshal(scanner.Bytes(), &call); err != nil {
			continue
		}
		if call.Provider != provider {
			continue
		}
		accumulate(sum, call)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return sum, nil
}

func (s *fileSink) Close() error { return nil }

func accumulate(sum *UsageSummary, call Call) {
	sum.TotalCalls++
	switch call.Status {
	case StatusSuccess:
		sum.SuccessCount++
	case StatusRateLimited:
		sum.RateLimitedCount++
	case StatusError, StatusFailedAfterRetries:
		sum.ErrorCount++
	}
	sum.TotalInputTokens += call.InputTokens
	sum.TotalOutputTokens += call.OutputTokens
	sum.TotalDurationMS += call.DurationMS
}
