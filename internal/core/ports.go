package core

import (
	"context"
)

// Scorer defines the interface for obtaining a care score from a model.
type Scorer interface {
	// Score sends one prompt and returns the parsed 0-100 care score.
	Score(ctx context.Context, prompt string) (float64, error)
}

// Extractor defines the interface for pulling a snippet out of a message file.
type Extractor interface {
	// Extract reads and parses the file at path.
	Extract(path string) (*ExtractedMessage, error)
}

// EntrySink defines the interface for the append-only classifier log.
// Writes are best-effort; callers must not let a sink failure change the
// classification outcome.
type EntrySink interface {
	// Append writes one structured entry line.
	Append(entry Entry) error

	// Diag writes one free-form diagnostic line.
	Diag(msg string) error
}
