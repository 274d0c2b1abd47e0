// Package models builds chat models from provider configuration.
package models

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	einoclaude "github.com/cloudwego/eino-ext/components/model/claude"
	einoollama "github.com/cloudwego/eino-ext/components/model/ollama"
	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/dohr-michael/nag/internal/config"
)

const (
	defaultAnthropicModel = "claude-sonnet-4-5"
	defaultOllamaBaseURL  = "http://localhost:11434"
	defaultMaxTokens      = 4096
)

// Create builds a model.ToolCallingChatModel from a provider config.
func Create(ctx context.Context, cfg config.ProviderConfig) (model.ToolCallingChatModel, error) {
	switch strings.ToLower(cfg.Driver) {
	case "anthropic":
		return newAnthropic(ctx, cfg)
	case "openai":
		return newOpenAI(ctx, cfg)
	case "ollama":
		return newOllama(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown driver: %s", cfg.Driver)
	}
}

func newAnthropic(ctx context.Context, cfg config.ProviderConfig) (model.ToolCallingChatModel, error) {
	apiKey, err := resolveAPIKey(cfg, "ANTHROPIC_API_KEY")
	if err != nil {
		return nil, err
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultAnthropicModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	modelConfig := &einoclaude.Config{
		APIKey:    apiKey,
		Model:     modelName,
		MaxTokens: maxTokens,
	}
	if cfg.BaseURL != "" {
		baseURL := cfg.BaseURL
		modelConfig.BaseURL = &baseURL
	}

	return einoclaude.NewChatModel(ctx, modelConfig)
}

func newOpenAI(ctx context.Context, cfg config.ProviderConfig) (model.ToolCallingChatModel, error) {
	apiKey, err := resolveAPIKey(cfg, "OPENAI_API_KEY")
	if err != nil {
		return nil, err
	}

	modelConfig := &einoopenai.ChatModelConfig{
		APIKey: apiKey,
		Model:  cfg.Model,
	}
	if cfg.BaseURL != "" {
		modelConfig.BaseURL = cfg.BaseURL
	}
	if cfg.MaxTokens > 0 {
		maxTokens := cfg.MaxTokens
		modelConfig.MaxCompletionTokens = &maxTokens
	}
	if cfg.Timeout.Duration() > 0 {
		modelConfig.Timeout = cfg.Timeout.Duration()
	} else {
		modelConfig.Timeout = 60 * time.Second
	}

	return einoopenai.NewChatModel(ctx, modelConfig)
}

func newOllama(ctx context.Context, cfg config.ProviderConfig) (model.ToolCallingChatModel, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}

	modelConfig := &einoollama.ChatModelConfig{
		BaseURL: baseURL,
		Model:   cfg.Model,
	}
	if cfg.Timeout.Duration() > 0 {
		modelConfig.Timeout = cfg.Timeout.Duration()
	} else {
		modelConfig.Timeout = 300 * time.Second
	}
	if cfg.MaxTokens > 0 {
		modelConfig.Options = &einoollama.Options{NumPredict: cfg.MaxTokens}
	}

	return einoollama.NewChatModel(ctx, modelConfig)
}

// resolveAPIKey returns the configured key (already env-expanded by the
// config loader) or falls back to the driver's conventional env var.
func resolveAPIKey(cfg config.ProviderConfig, envVar string) (string, error) {
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		return key, nil
	}
	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%s not set", envVar)
}

// FromConfig resolves the default provider from the models section.
func FromConfig(ctx context.Context, cfg config.ModelsConfig) (model.ToolCallingChatModel, error) {
	if len(cfg.Providers) == 0 {
		return nil, fmt.Errorf("no model providers configured")
	}

	name := cfg.Default
	if name == "" {
		for n := range cfg.Providers {
			name = n
			break
		}
	}

	provider, ok := cfg.Providers[name]
	if !ok {
		return nil, fmt.Errorf("default provider %q not configured", name)
	}
	return Create(ctx, provider)
}
