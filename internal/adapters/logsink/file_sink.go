// Package logsink implements the append-only classifier log file.
package logsink

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mikey/email-flagger/internal/core"
	"go.uber.org/zap"
)

// entryPrefix marks structured lines so they can be told apart from
// free-form diagnostics when tailing.
const entryPrefix = "ENTRY "

// FileSink appends classifier log lines to a single file. The file is opened
// in append mode per write with no locking: concurrent invocations may
// interleave lines, but each line is one write so no line is ever corrupted.
type FileSink struct {
	path   string
	logger *zap.Logger
}

// NewFileSink creates a sink writing to path.
func NewFileSink(path string, logger *zap.Logger) *FileSink {
	return &FileSink{
		path:   path,
		logger: logger,
	}
}

// Append writes one structured entry line.
func (s *FileSink) Append(entry core.Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}
	return s.writeLine(entryPrefix + string(payload))
}

// Diag writes one free-form diagnostic line tagged with the writing process.
func (s *FileSink) Diag(msg string) error {
	return s.writeLine(fmt.Sprintf("[%d] %s", os.Getpid(), msg))
}

func (s *FileSink) writeLine(line string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("failed to append log line: %w", err)
	}
	return nil
}

// Recent returns up to n structured entries from the end of the log, newest
// first. Unparseable or free-form lines are skipped.
func (s *FileSink) Recent(n int) ([]core.Entry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	var entries []core.Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, entryPrefix) {
			continue
		}
		var entry core.Entry
		if err := json.Unmarshal([]byte(line[len(entryPrefix):]), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan log file: %w", err)
	}

	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}
