// Package config loads nag's JSONC configuration.
package config

import "time"

// Config is the root configuration for nag.
type Config struct {
	Tasks    TasksConfig    `json:"tasks"`
	Schedule ScheduleConfig `json:"schedule"`
	Models   ModelsConfig   `json:"models"`
	Agent    AgentConfig    `json:"agent"`
}

// TasksConfig locates the task document.
type TasksConfig struct {
	Path string `json:"path"`
}

// ScheduleConfig controls when the agent sends reminders.
type ScheduleConfig struct {
	Cron string `json:"cron"` // 5-field cron expression
}

// ModelsConfig holds model provider configuration.
type ModelsConfig struct {
	Default   string                    `json:"default"`
	Providers map[string]ProviderConfig `json:"providers"`
}

// ProviderConfig configures a single LLM provider.
type ProviderConfig struct {
	Driver    string   `json:"driver"` // "anthropic", "openai", "ollama"
	Model     string   `json:"model"`
	APIKey    string   `json:"api_key,omitempty"` // direct key or ${{ .Env.VAR }} template
	BaseURL   string   `json:"base_url,omitempty"`
	MaxTokens int      `json:"max_tokens,omitempty"`
	Timeout   Duration `json:"timeout,omitempty"`
}

// AgentConfig holds agent loop settings.
type AgentConfig struct {
	SystemPrompt  string `json:"system_prompt,omitempty"`
	MaxIterations int    `json:"max_iterations,omitempty"`
}

// Duration wraps time.Duration for JSON unmarshaling.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}
