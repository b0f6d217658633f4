// Package install holds the peripheral setup helpers: placing the mail rule
// hook script and probing the local model runtime. Nothing here affects the
// classification contract.
package install

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed templates/classifier_hook.applescript
var hookScript string

// scriptName is the file name Apple Mail rules refer to.
const scriptName = "classifier_hook.applescript"

// MailScriptsDir returns the Apple Mail rule-script directory for the
// current user.
func MailScriptsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Library", "Application Scripts", "com.apple.mail")
}

// InstallMailScript writes the embedded hook script into the Mail scripting
// directory and returns the installed path.
func InstallMailScript() (string, error) {
	dir := MailScriptsDir()
	if dir == "" {
		return "", fmt.Errorf("could not determine home directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create Mail scripts directory: %w", err)
	}

	path := filepath.Join(dir, scriptName)
	if err := os.WriteFile(path, []byte(hookScript), 0o644); err != nil {
		return "", fmt.Errorf("failed to write hook script: %w", err)
	}
	return path, nil
}
