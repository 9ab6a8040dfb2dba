package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates all service configuration.
type Config struct {
	Server     ServerConfig
	Completion CompletionConfig
	Speech     SpeechConfig
	Data       DataConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	completion, err := loadCompletionConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:     server,
		Completion: completion,
		Speech:     speech,
		Data:       loadDataConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "5000"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":5000" or "127.0.0.1:5000" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// CompletionConfig describes the OpenAI-compatible completion endpoint used
// as the last resolution fallback. Sampling parameters are fixed per
// deployment, not per request.
type CompletionConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Enabled reports whether the completion backend is configured.
func (c CompletionConfig) Enabled() bool {
	return c.Model != "" && c.BaseURL != ""
}

// NewChatModel creates a chat model speaking the OpenAI chat-completions
// protocol against the configured base URL.
func (c CompletionConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("completion backend not configured: COMPLETION_BASE_URL and COMPLETION_MODEL are required")
	}

	maxTokens := c.MaxTokens
	temperature := float32(c.Temperature)

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		APIKey:      c.APIKey,
		Model:       c.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadCompletionConfig() (CompletionConfig, error) {
	maxTokens := 150
	if override, err := parseOptionalIntEnv("COMPLETION_MAX_TOKENS"); err != nil {
		return CompletionConfig{}, err
	} else if override != nil {
		maxTokens = *override
	}

	temperature := 0.7
	if override, err := parseOptionalFloatEnv("COMPLETION_TEMPERATURE"); err != nil {
		return CompletionConfig{}, err
	} else if override != nil {
		temperature = *override
	}

	return CompletionConfig{
		BaseURL:     getEnvOrDefault("COMPLETION_BASE_URL", "http://localhost:1234/v1"),
		APIKey:      getEnvOrDefault("COMPLETION_API_KEY", "lm-studio"),
		Model:       getEnvOrDefault("COMPLETION_MODEL", "local-model"),
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}, nil
}

// SpeechConfig describes the synthesis backends.
type SpeechConfig struct {
	CloudBaseURL  string
	LocalCommand  string
	DefaultEngine string
	Timeout       int
}

func loadSpeechConfig() (SpeechConfig, error) {
	timeoutSeconds := 30
	if override, err := parseOptionalIntEnv("TTS_TIMEOUT"); err != nil {
		return SpeechConfig{}, err
	} else if override != nil {
		timeoutSeconds = *override
	}

	return SpeechConfig{
		CloudBaseURL:  strings.TrimSpace(os.Getenv("TTS_BASE_URL")),
		LocalCommand:  getEnvOrDefault("TTS_LOCAL_COMMAND", "espeak-ng"),
		DefaultEngine: getEnvOrDefault("TTS_DEFAULT_ENGINE", "gtts_uk"),
		Timeout:       timeoutSeconds,
	}, nil
}

// DataConfig points at the dialog table files consumed once at startup.
type DataConfig struct {
	RulesPath     string
	KnowledgePath string
}

func loadDataConfig() DataConfig {
	return DataConfig{
		RulesPath:     getEnvOrDefault("RULES_PATH", "data/rules.json"),
		KnowledgePath: getEnvOrDefault("KNOWLEDGE_PATH", "data/knowledge.json"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
