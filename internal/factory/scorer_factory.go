package factory

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/email-flagger/internal/adapters/bedrock"
	"github.com/mikey/email-flagger/internal/adapters/gemini"
	"github.com/mikey/email-flagger/internal/adapters/ollama"
	"github.com/mikey/email-flagger/internal/adapters/openai"
	"github.com/mikey/email-flagger/internal/config"
	"github.com/mikey/email-flagger/internal/core"
	"go.uber.org/zap"
)

// ScorerFactory creates care scorers based on configuration.
type ScorerFactory struct {
	settings *config.Settings
	logger   *zap.Logger
}

// NewScorerFactory creates a new scorer factory.
func NewScorerFactory(settings *config.Settings, logger *zap.Logger) *ScorerFactory {
	return &ScorerFactory{
		settings: settings,
		logger:   logger,
	}
}

// CreateScorer creates a scorer for the configured provider, defaulting to
// the local Ollama endpoint.
func (f *ScorerFactory) CreateScorer() (core.Scorer, error) {
	switch f.settings.Provider {
	case "", "ollama":
		return ollama.NewClient(
			f.settings.Ollama.Endpoint,
			f.settings.Ollama.Model,
			f.settings.Ollama.RequestTimeout(),
			f.settings.Ollama.Options,
			f.logger,
		), nil
	case "openai":
		return openai.NewClient(
			f.settings.OpenAI.APIKey,
			f.settings.OpenAI.Model,
			f.logger,
		), nil
	case "bedrock":
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(f.settings.Bedrock.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
		}
		return bedrock.NewClient(
			bedrockruntime.NewFromConfig(awsCfg),
			f.settings.Bedrock.ModelID,
			f.settings.Bedrock.MaxTokens,
			f.settings.Bedrock.Temperature,
			f.settings.Bedrock.TopP,
			f.logger,
		), nil
	case "gemini":
		return gemini.NewClient(
			context.Background(),
			f.settings.Gemini.APIKey,
			f.settings.Gemini.Model,
			f.logger,
		)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", f.settings.Provider)
	}
}
