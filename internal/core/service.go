package core

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// subjectPreviewLimit bounds the subject carried in log entries.
const subjectPreviewLimit = 80

// Options carries the recipient profile and thresholds for the flagger
// service.
type Options struct {
	Name         string
	Instructions string
	RedMin       float64
	BlueMin      float64
}

// FlaggerService sequences extraction, prompting, scoring and classification
// for single message files.
type FlaggerService struct {
	extractor Extractor
	scorer    Scorer
	sink      EntrySink
	logger    *zap.Logger
	opts      Options
}

// NewFlaggerService creates a new flagger service.
func NewFlaggerService(
	extractor Extractor,
	scorer Scorer,
	sink EntrySink,
	logger *zap.Logger,
	opts Options,
) *FlaggerService {
	return &FlaggerService{
		extractor: extractor,
		scorer:    scorer,
		sink:      sink,
		logger:    logger,
		opts:      opts,
	}
}

// ClassifyFile runs the full pipeline for one message file. It never fails:
// a missing file, an unparseable message or an unreachable model all degrade
// to TierNone, so a mail-rule hook can always act on the result.
func (s *FlaggerService) ClassifyFile(ctx context.Context, path string) Result {
	path = strings.TrimSpace(path)
	s.diag(fmt.Sprintf("Processing file: %s", path))

	if _, err := os.Stat(path); err != nil {
		s.logger.Warn("Message file is not readable", zap.String("path", path), zap.Error(err))
		s.diag("Error: file does not exist")
		return Result{Tier: TierNone, Score: SentinelScore}
	}

	msg, err := s.extractor.Extract(path)
	if err != nil {
		s.logger.Warn("Failed to extract message", zap.String("path", path), zap.Error(err))
		s.diag("Error: could not extract snippet")
		return Result{Tier: TierNone, Score: SentinelScore}
	}
	if strings.TrimSpace(msg.Text) == "" {
		s.logger.Warn("Message contains no usable content", zap.String("path", path))
		s.diag("Error: could not extract snippet")
		return Result{Tier: TierNone, Score: SentinelScore}
	}

	prompt := BuildPrompt(s.opts.Name, s.opts.Instructions, msg.Sender, msg.Text)

	score, err := s.scorer.Score(ctx, prompt)
	if err != nil {
		s.logger.Error("Failed to obtain care score", zap.Error(err))
		score = SentinelScore
	}

	tier := Classify(score, s.opts.RedMin, s.opts.BlueMin)

	s.logger.Info("Classified message",
		zap.String("sender", msg.Sender),
		zap.Float64("score", score),
		zap.String("tier", string(tier)))
	s.appendEntry(msg, score, tier)

	return Result{Tier: tier, Score: score}
}

// appendEntry writes the structured log record for one classification
// attempt. Sink failures are swallowed.
func (s *FlaggerService) appendEntry(msg *ExtractedMessage, score float64, tier Tier) {
	if s.sink == nil {
		return
	}
	entry := Entry{
		TS:             time.Now().Format(time.RFC3339),
		Score:          score,
		Classification: string(tier),
		Subject:        previewSubject(msg.Subject),
		Sender:         msg.Sender,
	}
	if err := s.sink.Append(entry); err != nil {
		s.logger.Debug("Failed to append log entry", zap.Error(err))
	}
}

// diag writes a free-form line to the classifier log, best-effort.
func (s *FlaggerService) diag(msg string) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Diag(msg); err != nil {
		s.logger.Debug("Failed to write log diagnostic", zap.Error(err))
	}
}

// previewSubject bounds the subject for log entries.
func previewSubject(subject string) string {
	runes := []rune(subject)
	if len(runes) <= subjectPreviewLimit {
		return subject
	}
	return string(runes[:subjectPreviewLimit])
}
