// email-flagger-classify is the per-message hook invoked by a mail rule.
// It prints exactly one of "red", "blue" or "none" on stdout and always
// exits 0: a classification tool running inside a mail rule must never block
// mail delivery.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mikey/email-flagger/internal/core"
	"github.com/mikey/email-flagger/internal/di"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: email-flagger-classify <message-file>")
		fmt.Println(core.TierNone)
		return
	}

	container, err := di.BuildContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		fmt.Println(core.TierNone)
		return
	}

	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		fmt.Println(core.TierNone)
	}
}

// run is the main application function that gets all dependencies injected.
func run(logger *zap.Logger, service *core.FlaggerService) error {
	defer logger.Sync()

	result := service.ClassifyFile(context.Background(), os.Args[1])
	fmt.Println(result.Tier)
	return nil
}
