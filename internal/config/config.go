package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// dirName is the per-user directory holding the config file, the classifier
// log and anything else the tool writes.
const dirName = ".email-flagger"

// Dir returns the per-user configuration directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return dirName
	}
	return filepath.Join(home, dirName)
}

// File returns the path of the user config file.
func File() string {
	return filepath.Join(Dir(), "config.json")
}

// LogFile returns the path of the append-only classifier log.
func LogFile() string {
	return filepath.Join(Dir(), "classifier.log")
}

// Load reads the user config file and merges it over the built-in defaults.
// It never fails: a missing, unreadable or malformed file degrades to the
// defaults with a diagnostic.
func Load(logger *zap.Logger) *Settings {
	return LoadFrom(File(), logger)
}

// LoadFrom is Load with an explicit config file path.
func LoadFrom(path string, logger *zap.Logger) *Settings {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			logger.Info("Config file not found, using defaults", zap.String("file", path))
		} else {
			logger.Warn("Failed to read config file, using defaults",
				zap.String("file", path),
				zap.Error(err))
		}
	}

	return settingsFromViper(v, logger)
}

// newViper creates a Viper instance with all defaults set.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("EMAIL_FLAGGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return v
}

// setDefaults sets the default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("name", "User")
	v.SetDefault("llm_instructions", "Prioritize work and family emails, deprioritize newsletters and promotions.")
	v.SetDefault("provider", "ollama")

	// Ollama defaults
	v.SetDefault("ollama.model", "llama3")
	v.SetDefault("ollama.endpoint", "http://localhost:11434")
	v.SetDefault("ollama.timeout", 60)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "gpt-4o-mini")

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 200)
	v.SetDefault("bedrock.temperature", 0.1)
	v.SetDefault("bedrock.top_p", 0.9)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-pro")

	// Scoring defaults
	v.SetDefault("scoring.red_min", 80)
	v.SetDefault("scoring.blue_min", 60)

	v.SetDefault("max_bytes", 2048)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// settingsFromViper unmarshals the merged configuration into the typed
// Settings value. Override values of the wrong shape are dropped in favour
// of the defaults rather than failing the load.
func settingsFromViper(v *viper.Viper, logger *zap.Logger) *Settings {
	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		logger.Warn("Config file has unexpected shape, using defaults", zap.Error(err))
		fallback := viper.New()
		setDefaults(fallback)
		settings = &Settings{}
		if err := fallback.Unmarshal(settings); err != nil {
			// Defaults always unmarshal; this is unreachable short of a
			// programming error in setDefaults.
			logger.Error("Failed to unmarshal default settings", zap.Error(err))
		}
	}

	promoteTemperature(settings)
	return settings
}

// promoteTemperature folds a top-level ollama.temperature into the open
// inference-options map, overriding any nested value of the same name.
func promoteTemperature(settings *Settings) {
	if settings.Ollama.Temperature == nil {
		return
	}
	if settings.Ollama.Options == nil {
		settings.Ollama.Options = make(map[string]any)
	}
	settings.Ollama.Options["temperature"] = *settings.Ollama.Temperature
}

// EnsureDir creates the per-user configuration directory if needed.
func EnsureDir() error {
	return os.MkdirAll(Dir(), 0o755)
}

// templateSettings is the starter config written by setup. It mirrors the
// defaults but spells every field out so users have something to edit.
func templateSettings() map[string]any {
	return map[string]any{
		"name": "Your Name",
		"llm_instructions": "Prioritize emails from my family (especially my mom, Susan) and anything related to " +
			"the 'Project X' deadline. Deprioritize social media notifications and promotional content. " +
			"If an email is from my boss, Mark, it's always high priority, unless it's a weekly digest.",
		"ollama": map[string]any{
			"model":    "llama3",
			"endpoint": "http://localhost:11434",
			"timeout":  60,
		},
		"scoring": map[string]any{
			"red_min":  80,
			"blue_min": 60,
		},
		"max_bytes": 2048,
	}
}

// WriteTemplate writes the starter config file to path. Existing files are
// left untouched.
func WriteTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(templateSettings(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(payload, '\n'), 0o644)
}
