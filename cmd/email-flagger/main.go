// email-flagger is the human-facing CLI around the classification pipeline:
// configuration setup, one-off classification, a self-test, log tailing,
// environment checks and the Apple Mail hook installer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/email-flagger/internal/adapters/extract"
	"github.com/mikey/email-flagger/internal/adapters/ingest"
	"github.com/mikey/email-flagger/internal/adapters/logsink"
	"github.com/mikey/email-flagger/internal/config"
	"github.com/mikey/email-flagger/internal/core"
	"github.com/mikey/email-flagger/internal/factory"
	"github.com/mikey/email-flagger/internal/install"
	"github.com/mikey/email-flagger/internal/logging"
	"go.uber.org/zap"
)

var (
	setup         = flag.Bool("setup", false, "Create the config directory and starter config file")
	classifyFile  = flag.String("classify", "", "Classify a single email file")
	testRun       = flag.Bool("test", false, "Classify a built-in sample email")
	recentCount   = flag.Int("recent", 0, "Show the last N classification entries from the log")
	check         = flag.Bool("check", false, "Check the local model runtime")
	installScript = flag.Bool("install-script", false, "Install the Apple Mail hook script")
	serveAddr     = flag.String("serve", "", "Run a local SMTP ingest sink on the given address")

	verbose = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog = flag.Bool("json-log", false, "Output logs in JSON format")
)

// sampleEmail is a message that should land in the highest tier under the
// default thresholds.
const sampleEmail = `From: boss@company.com
To: user@company.com
Subject: URGENT: Board Meeting Tomorrow - Your Presentation Required

Hi,

The board meeting has been moved to tomorrow at 9 AM. We need your quarterly
presentation ready by 8 AM sharp. This is critical for our Q4 numbers and the
CEO will be attending.

Please confirm you can deliver this ASAP.

Thanks,
Sarah (your manager)
`

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	settings := config.Load(logger)

	switch {
	case *setup:
		runSetup()
	case *classifyFile != "":
		runClassify(settings, logger, *classifyFile)
	case *testRun:
		runTest(settings, logger)
	case *recentCount > 0:
		runRecent(logger, *recentCount)
	case *check:
		runCheck(settings)
	case *installScript:
		runInstallScript()
	case *serveAddr != "":
		runServe(settings, logger, *serveAddr)
	default:
		flag.Usage()
	}
}

// buildService wires the pipeline the same way the hook binary does, minus
// the container.
func buildService(settings *config.Settings, logger *zap.Logger) (*core.FlaggerService, core.Scorer, error) {
	scorer, err := factory.NewScorerFactory(settings, logger).CreateScorer()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create scorer: %w", err)
	}

	service := core.NewFlaggerService(
		extract.New(settings.MaxBytes, logger),
		scorer,
		logsink.NewFileSink(config.LogFile(), logger),
		logger,
		core.Options{
			Name:         settings.Name,
			Instructions: settings.LLMInstructions,
			RedMin:       settings.Scoring.RedMin,
			BlueMin:      settings.Scoring.BlueMin,
		},
	)
	return service, scorer, nil
}

func closeScorer(scorer core.Scorer, logger *zap.Logger) {
	if closer, ok := scorer.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close scorer", zap.Error(err))
		}
	}
}

func runSetup() {
	if err := config.EnsureDir(); err != nil {
		fmt.Printf("Failed to create config directory: %v\n", err)
		os.Exit(1)
	}
	if err := config.WriteTemplate(config.File()); err != nil {
		fmt.Printf("Failed to write config template: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Config file ready at %s\n", config.File())
	fmt.Println()
	fmt.Println("Final step - create an Apple Mail rule:")
	fmt.Println("  1. Mail > Settings > Rules > Add Rule")
	fmt.Println("  2. Description: Email Flagger")
	fmt.Println("  3. If: Every Message")
	fmt.Println("  4. Then: Run AppleScript > classifier_hook.applescript")
	fmt.Println()
	fmt.Println("Install the script with: email-flagger -install-script")
}

func runClassify(settings *config.Settings, logger *zap.Logger, path string) {
	service, scorer, err := buildService(settings, logger)
	if err != nil {
		fmt.Printf("Failed to build pipeline: %v\n", err)
		os.Exit(1)
	}
	defer closeScorer(scorer, logger)

	result := service.ClassifyFile(context.Background(), path)
	fmt.Printf("%s -> %s (score %.2f)\n", path, result.Tier, result.Score)
}

func runTest(settings *config.Settings, logger *zap.Logger) {
	tmp, err := os.CreateTemp("", "email-flagger-test-*.eml")
	if err != nil {
		fmt.Printf("Failed to create test message: %v\n", err)
		os.Exit(1)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(sampleEmail); err != nil {
		tmp.Close()
		fmt.Printf("Failed to write test message: %v\n", err)
		os.Exit(1)
	}
	tmp.Close()

	service, scorer, err := buildService(settings, logger)
	if err != nil {
		fmt.Printf("Failed to build pipeline: %v\n", err)
		os.Exit(1)
	}
	defer closeScorer(scorer, logger)

	result := service.ClassifyFile(context.Background(), tmp.Name())
	fmt.Printf("Test email classification: %s (score %.2f)\n", result.Tier, result.Score)
	if result.Score < 0 {
		fmt.Println("Score could not be obtained - check the model runtime with: email-flagger -check")
	}
}

func runRecent(logger *zap.Logger, n int) {
	sink := logsink.NewFileSink(config.LogFile(), logger)
	entries, err := sink.Recent(n)
	if err != nil {
		fmt.Println("No log file found yet.")
		return
	}
	if len(entries) == 0 {
		fmt.Println("No structured entries found in log.")
		return
	}
	for _, entry := range entries {
		fmt.Printf("%6.2f | %s\n", entry.Score, entry.Subject)
	}
}

func runCheck(settings *config.Settings) {
	ok := true
	for _, check := range install.CheckRuntime(settings.Ollama.Endpoint, settings.Ollama.Model) {
		if check.OK {
			fmt.Printf("ok   %s\n", check.Name)
		} else {
			ok = false
			fmt.Printf("FAIL %s (%s)\n", check.Name, check.Hint)
		}
	}
	if !ok {
		os.Exit(1)
	}
}

func runInstallScript() {
	path, err := install.InstallMailScript()
	if err != nil {
		fmt.Printf("Failed to install hook script: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Hook script installed at %s\n", path)
}

func runServe(settings *config.Settings, logger *zap.Logger, addr string) {
	// The sink is long-running; honour the configured log level and format
	// instead of the console defaults.
	if configured, err := logging.InitLogger(settings); err == nil {
		logger = configured
		defer logger.Sync()
	}

	service, scorer, err := buildService(settings, logger)
	if err != nil {
		fmt.Printf("Failed to build pipeline: %v\n", err)
		os.Exit(1)
	}
	defer closeScorer(scorer, logger)

	server := ingest.NewServer(service, logger, addr)
	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start ingest sink", zap.Error(err))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Shutting down...")
	if err := server.Stop(); err != nil {
		logger.Error("Failed to stop ingest sink", zap.Error(err))
	}
}
