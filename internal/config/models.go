package config

import "time"

// Settings holds the full merged configuration for one invocation. It is
// loaded once and never mutated afterwards.
type Settings struct {
	Name            string          `mapstructure:"name"`
	LLMInstructions string          `mapstructure:"llm_instructions"`
	Provider        string          `mapstructure:"provider"`
	Ollama          OllamaSettings  `mapstructure:"ollama"`
	OpenAI          OpenAISettings  `mapstructure:"openai"`
	Bedrock         BedrockSettings `mapstructure:"bedrock"`
	Gemini          GeminiSettings  `mapstructure:"gemini"`
	Scoring         ScoringSettings `mapstructure:"scoring"`
	MaxBytes        int             `mapstructure:"max_bytes"`
	Logging         LoggingSettings `mapstructure:"logging"`
}

// OllamaSettings configures the default local inference endpoint.
type OllamaSettings struct {
	Model       string         `mapstructure:"model"`
	Endpoint    string         `mapstructure:"endpoint"`
	Timeout     int            `mapstructure:"timeout"`
	Temperature *float64       `mapstructure:"temperature"`
	Options     map[string]any `mapstructure:"options"`
}

// RequestTimeout returns the configured timeout as a duration.
func (o OllamaSettings) RequestTimeout() time.Duration {
	if o.Timeout <= 0 {
		return 60 * time.Second
	}
	return time.Duration(o.Timeout) * time.Second
}

// OpenAISettings configures the OpenAI scorer.
type OpenAISettings struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// BedrockSettings configures the Amazon Bedrock scorer.
type BedrockSettings struct {
	Region      string  `mapstructure:"region"`
	ModelID     string  `mapstructure:"model_id"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
}

// GeminiSettings configures the Google Gemini scorer.
type GeminiSettings struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// ScoringSettings holds the two classification thresholds. RedMin is assumed
// to be at least BlueMin; the loader does not enforce this.
type ScoringSettings struct {
	RedMin  float64 `mapstructure:"red_min"`
	BlueMin float64 `mapstructure:"blue_min"`
}

// LoggingSettings controls the console logger.
type LoggingSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
