package config

import (
	"fmt"
	"os"
	"strings"
)

type Config struct {
	Paths       PathsConfig       `yaml:"paths"`
	LLM         LLMConfig         `yaml:"llm"`
	Providers   ProvidersConfig   `yaml:"providers"`
	Retry       RetryConfig       `yaml:"retry"`
	Performance PerformanceConfig `yaml:"performance"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type PathsConfig struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
	Prompt string `yaml:"prompt"`
}

type LLMConfig struct {
	DefaultProvider string `yaml:"default_provider"`
	// Temperature is a pointer so an explicit 0 in the file is
	// distinguishable from the field being absent.
	Temperature        *float64 `yaml:"temperature"`
	MaxOutputTokens    int      `yaml:"max_output_tokens"`
	MaxInputChars      int      `yaml:"max_input_chars"`
	CallTimeoutSeconds int      `yaml:"call_timeout_seconds"`
}

type ProvidersConfig struct {
	Gemini GeminiConfig `yaml:"gemini"`
	OpenAI OpenAIConfig `yaml:"openai"`
}

type GeminiConfig struct {
	Model string `yaml:"model"`
	// APIKeys is populated from the GEMINI_API_KEYS environment
	// variable, never from the config file.
	APIKeys []string `yaml:"-"`
}

type OpenAIConfig struct {
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	// APIKeys is populated from the OPENAI_API_KEYS environment variable.
	APIKeys []string `yaml:"-"`
}

type RetryConfig struct {
	MaxRetries  int `yaml:"max_retries"`
	BaseDelayMS int `yaml:"base_delay_ms"`
	JitterMaxMS int `yaml:"jitter_max_ms"`
}

type PerformanceConfig struct {
	MaxWorkers int `yaml:"max_workers"`
}

type TelemetryConfig struct {
	Store string `yaml:"store"`
	Path  string `yaml:"path"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ApplyEnv pulls secrets and environment overrides into the config.
// API keys never live in the YAML file.
func (c *Config) ApplyEnv() {
	c.Providers.Gemini.APIKeys = splitKeys(os.Getenv("GEMINI_API_KEYS"))
	c.Providers.OpenAI.APIKeys = splitKeys(os.Getenv("OPENAI_API_KEYS"))

	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.Providers.OpenAI.BaseURL = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		c.Providers.Gemini.Model = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.Providers.OpenAI.Model = v
	}
	if v := os.Getenv("DEFAULT_AI_PROVIDER"); v != "" {
		c.LLM.DefaultProvider = strings.ToLower(v)
	}
}

func splitKeys(raw string) []string {
	if raw == "" {
		return nil
	}
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func (c *Config) Validate() error {
	if c.Paths.Input == "" {
		return fmt.Errorf("paths.input is required")
	}
	if c.Paths.Output == "" {
		return fmt.Errorf("paths.output is required")
	}
	if t := c.LLM.Temperature; t != nil && (*t < 0 || *t > 1) {
		return fmt.Errorf("llm.temperature must be in [0,1], got %v", *t)
	}

	if c.LLM.DefaultProvider == "" {
		c.LLM.DefaultProvider = "gemini"
	}
	if c.LLM.Temperature == nil {
		t := 0.2
		c.LLM.Temperature = &t
	}
	if c.LLM.MaxOutputTokens == 0 {
		c.LLM.MaxOutputTokens = 16384
	}
	if c.LLM.MaxInputChars == 0 {
		c.LLM.MaxInputChars = 100000
	}
	if c.Providers.Gemini.Model == "" {
		c.Providers.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Providers.OpenAI.Model == "" {
		c.Providers.OpenAI.Model = "gpt-4o-mini"
	}
	if c.Retry.MaxRetries == 0 {
		c.Retry.MaxRetries = 5
	}
	if c.Retry.BaseDelayMS == 0 {
		c.Retry.BaseDelayMS = 1000
	}
	if c.Retry.JitterMaxMS == 0 {
		c.Retry.JitterMaxMS = 500
	}
	if c.Performance.MaxWorkers == 0 {
		c.Performance.MaxWorkers = 3
	}
	if c.Telemetry.Store == "" {
		c.Telemetry.Store = "file"
	}
	if c.Telemetry.Store != "file" && c.Telemetry.Store != "sqlite" {
		return fmt.Errorf("telemetry.store must be \"file\" or \"sqlite\", got %q", c.Telemetry.Store)
	}
	if c.Telemetry.Path == "" {
		if c.Telemetry.Store == "sqlite" {
			c.Telemetry.Path = "logs/telemetry.db"
		} else {
			c.Telemetry.Path = "logs/api_calls.jsonl"
		}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}
