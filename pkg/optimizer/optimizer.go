package optimizer

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxChars is the character budget applied to transcript content
// before it is sent to a model.
const DefaultMaxChars = 100000

// TruncationMarker replaces the tail of content that exceeds the budget.
const TruncationMarker = "\n...[TRUNCATED]..."

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// EstimateTokens gives a rough token count for mixed-language text.
// Rule of thumb: 1 token ~= 4 English chars, 2-3 Vietnamese chars.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(text) / 3
}

// Compact truncates content to maxChars, appending a marker so the model
// knows the transcript was cut. maxChars <= 0 uses DefaultMaxChars.
func Compact(content string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if len(content) <= maxChars {
		return content
	}

	// Back off to a rune boundary so the cut never splits a UTF-8 sequence.
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + TruncationMarker
}

// ParseJSON recovers a JSON object from model output that may be wrapped
// in markdown or surrounded by extra prose. Fallback order matters:
// direct parse, then with code fences stripped, then the first
// brace-delimited object. Returns nil if nothing parses.
func ParseJSON(text string) map[string]interface{} {
	var data map[string]interface{}

	if err := json.Unmarshal([]byte(text), &data); err == nil {
		return data
	}

	cleaned := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(text, "```json", ""), "```", ""))
	if err := json.Unmarshal([]byte(cleaned), &data); err == nil {
		return data
	}

	if match := jsonObjectPattern.FindString(text); match != "" {
		if err := json.Unmarshal([]byte(match), &data); err == nil {
			return data
		}
	}

	return nil
}
