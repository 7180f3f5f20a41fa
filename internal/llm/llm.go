// Package llm provides the optional text-generation capability for natural
// language to SQL conversion. Providers return SQL text plus an explanation,
// or fail; the caller decides what to do about failure.
package llm

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Provider defines the interface for LLM integrations.
type Provider interface {
	// GenerateSQL converts a natural language question to SQL using the given
	// schema context.
	GenerateSQL(ctx context.Context, req GenerateRequest) (GenerateResponse, error)

	// Name returns the provider name for logging/debugging.
	Name() string
}

// GenerateRequest contains the input for SQL generation.
type GenerateRequest struct {
	Question  string // Natural language question from the user
	Schema    string // Serialized sales schema description
	MaxTokens int    // Max tokens for response (0 = provider default)
}

// GenerateResponse contains the result of SQL generation.
type GenerateResponse struct {
	SQL         string // Generated SQL query
	Explanation string // Provider's explanation of the query (may be empty)
	Error       string // Error message if generation failed
	Tokens      int    // Tokens used (for cost tracking)
}

// IsError returns true if the response contains an error.
func (r GenerateResponse) IsError() bool {
	return r.Error != ""
}

// Config holds LLM provider configuration.
type Config struct {
	Provider string // "openai" or "anthropic"
	APIKey   string // API key for the provider
	Model    string // Model name (e.g., "gpt-4o", "claude-sonnet-4-20250514")
	BaseURL  string // Base URL (for OpenRouter, proxies, etc.)
}

// ConfigFromEnv reads LLM configuration from environment variables.
func ConfigFromEnv() Config {
	return Config{
		Provider: strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER"))),
		APIKey:   os.Getenv("LLM_API_KEY"),
		Model:    os.Getenv("LLM_MODEL"),
		BaseURL:  os.Getenv("LLM_BASE_URL"),
	}
}

// NewProvider creates an LLM provider based on configuration.
func NewProvider(cfg Config) (Provider, error) {
	if cfg.Provider == "" {
		cfg.Provider = "openai"
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY is required")
	}

	switch cfg.Provider {
	case "openai":
		if cfg.Model == "" {
			cfg.Model = "gpt-4o"
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = "https://api.openai.com/v1"
		}
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "anthropic":
		if cfg.Model == "" {
			cfg.Model = "claude-sonnet-4-20250514"
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = "https://api.anthropic.com/v1"
		}
		return NewAnthropicProvider(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %q (supported: openai, anthropic)", cfg.Provider)
	}
}

// NewProviderFromEnv creates an LLM provider from environment variables.
func NewProviderFromEnv() (Provider, error) {
	return NewProvider(ConfigFromEnv())
}

var (
	sqlSectionRe         = regexp.MustCompile(`(?is)SQL:\s*(.*?)\s*(?:Explanation:|$)`)
	explanationSectionRe = regexp.MustCompile(`(?is)Explanation:\s*(.*)$`)
)

// ParseResponse extracts the SQL and explanation sections from raw LLM
// output. Models are asked to reply in "SQL: ... Explanation: ..." form but
// sometimes return bare SQL, optionally fenced.
func ParseResponse(raw string) GenerateResponse {
	trimmed := strings.TrimSpace(raw)

	var resp GenerateResponse
	if m := sqlSectionRe.FindStringSubmatch(trimmed); m != nil {
		resp.SQL = stripFences(m[1])
	}
	if m := explanationSectionRe.FindStringSubmatch(trimmed); m != nil {
		resp.Explanation = strings.TrimSpace(m[1])
	}

	if resp.SQL == "" && resp.Explanation == "" {
		resp.SQL = stripFences(trimmed)
	}
	return resp
}

// stripFences cleans up common LLM formatting quirks.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```sql")
	s = strings.TrimPrefix(s, "```SQL")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
