package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-flagger/internal/adapters/extract"
	"github.com/mikey/email-flagger/internal/adapters/logsink"
	"github.com/mikey/email-flagger/internal/config"
	"github.com/mikey/email-flagger/internal/core"
	"github.com/mikey/email-flagger/internal/factory"
	"github.com/mikey/email-flagger/internal/logging"
)

// BuildContainer creates and configures a dependency injection container for
// the per-message hook binary.
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register logger. The hook always logs to stderr in JSON so stdout
	// stays reserved for the classification result.
	if err := container.Provide(func() (*zap.Logger, error) {
		return logging.InitConsoleLogger(false, true)
	}); err != nil {
		return nil, err
	}

	// Register settings
	if err := container.Provide(config.Load); err != nil {
		return nil, err
	}

	// Register scorer factory
	if err := container.Provide(factory.NewScorerFactory); err != nil {
		return nil, err
	}

	// Register scorer
	if err := container.Provide(func(f *factory.ScorerFactory) (core.Scorer, error) {
		return f.CreateScorer()
	}); err != nil {
		return nil, err
	}

	// Register extractor
	if err := container.Provide(func(settings *config.Settings, logger *zap.Logger) core.Extractor {
		return extract.New(settings.MaxBytes, logger)
	}); err != nil {
		return nil, err
	}

	// Register log sink
	if err := container.Provide(func(logger *zap.Logger) core.EntrySink {
		return logsink.NewFileSink(config.LogFile(), logger)
	}); err != nil {
		return nil, err
	}

	// Register service options
	if err := container.Provide(func(settings *config.Settings) core.Options {
		return core.Options{
			Name:         settings.Name,
			Instructions: settings.LLMInstructions,
			RedMin:       settings.Scoring.RedMin,
			BlueMin:      settings.Scoring.BlueMin,
		}
	}); err != nil {
		return nil, err
	}

	// Register flagger service
	if err := container.Provide(core.NewFlaggerService); err != nil {
		return nil, err
	}

	return container, nil
}
