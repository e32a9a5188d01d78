// ttt turns a directory of raw transcript files into structured JSON
// by delegating each file to an LLM provider.
//
// Usage:
//
//	ttt run                 # process all pending transcripts once
//	ttt run -p openai       # force a specific provider
//	ttt watch               # process new transcripts as they appear
//	ttt providers           # list configured providers
//	ttt stats               # aggregate recorded API usage
//	ttt fix-times           # renumber start_time in output JSON files
//
// Configuration lives in config.yaml; API keys come from the
// environment (GEMINI_API_KEYS, OPENAI_API_KEYS) or a .env file.
package main

import (
	"os"

	"github.com/lgdlong/ttt/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
