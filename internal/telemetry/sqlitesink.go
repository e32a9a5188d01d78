package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lgdlong/ttt/internal/logger"

	// Registers the pure-Go sqlite driver under the name "sqlite".
	_ "modernc.org/sqlite"
)

const createCallsTable = `
CREATE TABLE IF NOT EXISTS api_calls (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	ts               TEXT NOT NULL,
	run_id           TEXT,
	provider         TEXT NOT NULL,
	model            TEXT NOT NULL,
	status           TEXT NOT NULL,
	input_tokens     INTEGER,
	output_tokens    INTEGER,
	total_tokens     INTEGER,
	duration_ms      REAL,
	key_index        INTEGER,
	prompt_length    INTEGER,
	response_preview TEXT,
	error            TEXT
);
CREATE INDEX IF NOT EXISTS idx_api_calls_provider ON api_calls(provider);
`

type sqliteSink struct {
	db     *sql.DB
	logger logger.Logger
}

// NewSQLiteSink opens (or creates) a SQLite telemetry database at path.
// WAL mode keeps concurrent worker writes from tripping over reads.
// Use ":memory:" in tests.
func NewSQLiteSink(path string, log logger.Logger) (Sink, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create telemetry dir: %w", err)
		}
	}

	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open telemetry db: %w", err)
	}

	// One writer connection; SQLite serializes writes anyway and a
	// single connection keeps :memory: databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createCallsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create telemetry schema: %w", err)
	}

	return &sqliteSink{db: db, logger: log}, nil
}

// Record inserts one call row. Insert failures are logged and swallowed.
func (s *sqliteSink) Record(ctx context.Context, call Call) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO api_calls
			(ts, run_id, provider, model, status, input_tokens, output_tokens,
			 total_tokens, duration_ms, key_index, prompt_length, response_preview, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		call.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
		call.RunID, call.Provider, call.Model, string(call.Status),
		call.InputTokens, call.OutputTokens, call.TotalTokens,
		call.DurationMS, call.KeyIndex, call.PromptLength,
		call.ResponsePreview, call.Error,
	)
	if err != nil {
		s.logger.Warn(ctx, "telemetry: insert record: %v", err)
	}
}

// Summary aggregates recorded calls for one provider.
func (s *sqliteSink) Summary(ctx context.Context, provider string) (*UsageSummary, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status IN ('error', 'failed_after_retries') THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'rate_limited' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(input_tokens), 0),
			COALESCE(SUM(output_tokens), 0),
			COALESCE(SUM(duration_ms), 0)
		FROM api_calls WHERE provider = ?`, provider)

	sum := &UsageSummary{Provider: provider}
	if err := row.Scan(
		&sum.TotalCalls, &sum.SuccessCount, &sum.ErrorCount, &sum.RateLimitedCount,
		&sum.TotalInputTokens, &sum.TotalOutputTokens, &sum.TotalDurationMS,
	); err != nil {
		return nil, fmt.Errorf("query telemetry summary: %w", err)
	}

	return sum, nil
}

func (s *sqliteSink) Close() error { return s.db.Close() }
