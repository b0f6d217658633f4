package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeExtractor struct {
	msg *ExtractedMessage
	err error
}

func (f *fakeExtractor) Extract(string) (*ExtractedMessage, error) {
	return f.msg, f.err
}

type fakeScorer struct {
	score float64
	err   error
	calls int
}

func (f *fakeScorer) Score(context.Context, string) (float64, error) {
	f.calls++
	return f.score, f.err
}

type memorySink struct {
	entries   []Entry
	diags     []string
	appendErr error
}

func (m *memorySink) Append(entry Entry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memorySink) Diag(msg string) error {
	m.diags = append(m.diags, msg)
	return nil
}

func defaultOpts() Options {
	return Options{
		Name:         "User",
		Instructions: "Prioritize work and family emails.",
		RedMin:       80,
		BlueMin:      60,
	}
}

func messageFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "message.eml")
	require.NoError(t, os.WriteFile(path, []byte("From: a@b.c\r\n\r\nbody\r\n"), 0o644))
	return path
}

func urgentMessage() *ExtractedMessage {
	return &ExtractedMessage{
		Sender:  "boss@company.com",
		Subject: "URGENT: Board Meeting Tomorrow",
		Text:    "URGENT: Board Meeting Tomorrow\nYour presentation is required at 9 AM.",
	}
}

func TestClassifyFileHighTier(t *testing.T) {
	scorer := &fakeScorer{score: 92.0}
	sink := &memorySink{}
	svc := NewFlaggerService(&fakeExtractor{msg: urgentMessage()}, scorer, sink, zap.NewNop(), defaultOpts())

	result := svc.ClassifyFile(context.Background(), messageFile(t))

	assert.Equal(t, TierRed, result.Tier)
	assert.Equal(t, 92.0, result.Score)
	require.Len(t, sink.entries, 1)
	assert.Equal(t, "red", sink.entries[0].Classification)
	assert.Equal(t, 92.0, sink.entries[0].Score)
	assert.Equal(t, "URGENT: Board Meeting Tomorrow", sink.entries[0].Subject)
	assert.Equal(t, "boss@company.com", sink.entries[0].Sender)
	assert.NotEmpty(t, sink.entries[0].TS)
}

func TestClassifyFilePromotionalMessage(t *testing.T) {
	scorer := &fakeScorer{score: 15.0}
	svc := NewFlaggerService(&fakeExtractor{msg: &ExtractedMessage{
		Sender:  "deals@shoes.example",
		Subject: "50% Off Shoes This Weekend",
		Text:    "50% Off Shoes This Weekend\nDon't miss out!",
	}}, scorer, &memorySink{}, zap.NewNop(), defaultOpts())

	result := svc.ClassifyFile(context.Background(), messageFile(t))

	assert.Equal(t, TierNone, result.Tier)
	assert.Equal(t, 15.0, result.Score)
}

func TestClassifyFileMissingPathSkipsScorer(t *testing.T) {
	scorer := &fakeScorer{score: 92.0}
	svc := NewFlaggerService(&fakeExtractor{msg: urgentMessage()}, scorer, &memorySink{}, zap.NewNop(), defaultOpts())

	result := svc.ClassifyFile(context.Background(), "/does/not/exist.eml")

	assert.Equal(t, TierNone, result.Tier)
	assert.Equal(t, SentinelScore, result.Score)
	assert.Zero(t, scorer.calls)
}

func TestClassifyFileExtractionFailureSkipsScorer(t *testing.T) {
	scorer := &fakeScorer{score: 92.0}
	svc := NewFlaggerService(&fakeExtractor{err: errors.New("parse failure")}, scorer, &memorySink{}, zap.NewNop(), defaultOpts())

	result := svc.ClassifyFile(context.Background(), messageFile(t))

	assert.Equal(t, TierNone, result.Tier)
	assert.Zero(t, scorer.calls)
}

func TestClassifyFileEmptyExtractSkipsScorer(t *testing.T) {
	scorer := &fakeScorer{score: 92.0}
	svc := NewFlaggerService(&fakeExtractor{msg: &ExtractedMessage{Sender: "a@b.c", Text: "   \n "}}, scorer, &memorySink{}, zap.NewNop(), defaultOpts())

	result := svc.ClassifyFile(context.Background(), messageFile(t))

	assert.Equal(t, TierNone, result.Tier)
	assert.Zero(t, scorer.calls)
}

func TestClassifyFileScorerFailureDegradesToNone(t *testing.T) {
	scorer := &fakeScorer{score: SentinelScore, err: errors.New("endpoint unreachable")}
	sink := &memorySink{}
	svc := NewFlaggerService(&fakeExtractor{msg: urgentMessage()}, scorer, sink, zap.NewNop(), defaultOpts())

	result := svc.ClassifyFile(context.Background(), messageFile(t))

	assert.Equal(t, TierNone, result.Tier)
	assert.Equal(t, SentinelScore, result.Score)
	// The attempt is still recorded.
	require.Len(t, sink.entries, 1)
	assert.Equal(t, "none", sink.entries[0].Classification)
}

func TestClassifyFileSinkFailureDoesNotChangeOutcome(t *testing.T) {
	scorer := &fakeScorer{score: 92.0}
	sink := &memorySink{appendErr: errors.New("disk full")}
	svc := NewFlaggerService(&fakeExtractor{msg: urgentMessage()}, scorer, sink, zap.NewNop(), defaultOpts())

	result := svc.ClassifyFile(context.Background(), messageFile(t))

	assert.Equal(t, TierRed, result.Tier)
}

func TestClassifyFileTrimsPath(t *testing.T) {
	scorer := &fakeScorer{score: 65.0}
	svc := NewFlaggerService(&fakeExtractor{msg: urgentMessage()}, scorer, &memorySink{}, zap.NewNop(), defaultOpts())

	result := svc.ClassifyFile(context.Background(), " "+messageFile(t)+"\n")

	assert.Equal(t, TierBlue, result.Tier)
}

func TestPreviewSubjectBounds(t *testing.T) {
	long := ""
	for range [20]int{} {
		long += "subject padding "
	}
	preview := previewSubject(long)
	assert.Len(t, []rune(preview), subjectPreviewLimit)
	assert.Equal(t, "short", previewSubject("short"))
}
