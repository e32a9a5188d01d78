package pipeline

import (
	"context"
	"os"

	"github.com/lgdlong/ttt/internal/logger"
)

// defaultSystemPrompt is used when no prompt file is configured or the
// configured file cannot be read.
const defaultSystemPrompt = `You are a Transcript Analysis Expert.
Task: Convert transcript content into structured JSON.
Mandatory requirements:
1. Keep the 'content' section verbatim (100% exact from input).
2. Segment content logically (5-15 sentences per segment).
3. Provide concise titles for each segment.
4. Create a detailed summary (300+ words).
Output: Valid JSON object only.`

func loadSystemPrompt(ctx context.Context, path string, log logger.Logger) string {
	if path == "" {
		return defaultSystemPrompt
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn(ctx, "Failed to read prompt file %s, using fallback: %v", path, err)
		return defaultSystemPrompt
	}

	return string(data)
}
