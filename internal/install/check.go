package install

import (
	"fmt"
	"net/http"
	"os/exec"
	"strings"
	"time"
)

// Check is the outcome of a single environment probe.
type Check struct {
	Name string
	OK   bool
	Hint string
}

// CheckRuntime probes the local Ollama runtime: the binary on PATH, the HTTP
// endpoint, and the configured model.
func CheckRuntime(endpoint, model string) []Check {
	checks := []Check{checkBinary(), checkEndpoint(endpoint), checkModel(model)}
	return checks
}

func checkBinary() Check {
	if _, err := exec.LookPath("ollama"); err != nil {
		return Check{Name: "ollama binary", Hint: "install with: brew install ollama"}
	}
	return Check{Name: "ollama binary", OK: true}
}

func checkEndpoint(endpoint string) Check {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(strings.TrimRight(endpoint, "/") + "/api/tags")
	if err != nil {
		return Check{Name: "ollama endpoint", Hint: "start with: ollama serve"}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Check{Name: "ollama endpoint", Hint: fmt.Sprintf("endpoint returned %s", resp.Status)}
	}
	return Check{Name: "ollama endpoint", OK: true}
}

func checkModel(model string) Check {
	out, err := exec.Command("ollama", "list").Output()
	if err != nil {
		return Check{Name: "ollama model", Hint: "could not list models"}
	}
	if !strings.Contains(string(out), model) {
		return Check{Name: "ollama model", Hint: fmt.Sprintf("install with: ollama pull %s", model)}
	}
	return Check{Name: "ollama model", OK: true}
}
