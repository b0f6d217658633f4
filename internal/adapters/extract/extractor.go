// Package extract pulls a bounded (sender, text) snippet out of a MIME
// message file for scoring.
package extract

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"os"
	"regexp"
	"strings"

	"github.com/mikey/email-flagger/internal/core"
	"go.uber.org/zap"
)

const (
	unknownSender = "(unknown sender)"
	noSubject     = "(no subject)"

	// maxPartDepth caps nested multipart recursion.
	maxPartDepth = 10
)

// tagPattern removes HTML tags in a single non-recursive pass. It is lossy
// and does not cope with malformed markup; that limitation is accepted, the
// HTML body is only a fallback when no plain-text part exists.
var tagPattern = regexp.MustCompile(`<[^<>]+>`)

// Extractor reads message files and produces bounded snippets.
type Extractor struct {
	maxChars int
	logger   *zap.Logger
	decoder  *mime.WordDecoder
}

// New creates a new extractor. maxChars bounds the extracted text by
// character count of the decoded string.
func New(maxChars int, logger *zap.Logger) *Extractor {
	return &Extractor{
		maxChars: maxChars,
		logger:   logger,
		decoder:  &mime.WordDecoder{CharsetReader: charsetReader},
	}
}

// bodyPart is one leaf of the MIME tree with its payload already decoded to
// text.
type bodyPart struct {
	mediaType string
	content   string
}

// Extract reads and parses the message file at path. The returned text is
// the decoded subject plus the best-effort plain-text body, trimmed and
// truncated. Extracting the same file twice yields identical results.
func (e *Extractor) Extract(path string) (*core.ExtractedMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open message file: %w", err)
	}
	defer f.Close()

	msg, err := mail.ReadMessage(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	sender := e.decodeHeader(msg.Header.Get("From"), unknownSender)
	subject := e.decodeHeader(msg.Header.Get("Subject"), noSubject)

	raw, err := io.ReadAll(msg.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read message body: %w", err)
	}

	parts := collectParts(
		msg.Header.Get("Content-Type"),
		msg.Header.Get("Content-Transfer-Encoding"),
		raw,
		0,
	)
	body := selectBody(parts)

	text := strings.TrimSpace(subject + "\n" + body)
	text = truncateRunes(text, e.maxChars)

	e.logger.Debug("Extracted message",
		zap.String("sender", sender),
		zap.Int("parts", len(parts)),
		zap.Int("text_len", len(text)))

	return &core.ExtractedMessage{
		Sender:  sender,
		Subject: subject,
		Text:    text,
	}, nil
}

// decodeHeader decodes an encoded-word header value into plain text.
func (e *Extractor) decodeHeader(raw, fallback string) string {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}
	decoded, err := e.decoder.DecodeHeader(raw)
	if err != nil {
		// Keep the raw value rather than dropping the header.
		return raw
	}
	return decoded
}

// selectBody picks a body representation from the flattened parts: the first
// text/plain part, falling back to the first text/html part with tags
// stripped, falling back to empty.
func selectBody(parts []bodyPart) string {
	for _, p := range parts {
		if p.mediaType == "text/plain" && strings.TrimSpace(p.content) != "" {
			return p.content
		}
	}
	for _, p := range parts {
		if p.mediaType == "text/html" {
			return tagPattern.ReplaceAllString(p.content, "")
		}
	}
	return ""
}

// collectParts flattens the MIME tree depth-first. A non-multipart input is
// itself a single leaf. Anything that fails to parse along the way is kept
// as an undecoded leaf rather than dropped.
func collectParts(contentType, transferEncoding string, payload []byte, depth int) []bodyPart {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Unlabelled content is treated as plain text, matching the MIME
		// default.
		mediaType = "text/plain"
	}
	mediaType = strings.ToLower(mediaType)

	if strings.HasPrefix(mediaType, "multipart/") && depth < maxPartDepth {
		boundary := params["boundary"]
		if boundary == "" {
			return nil
		}
		var parts []bodyPart
		mr := multipart.NewReader(bytes.NewReader(payload), boundary)
		for {
			part, err := mr.NextPart()
			if err != nil {
				// io.EOF ends the walk; any other error ends it with
				// whatever was collected so far.
				return parts
			}
			partPayload, err := io.ReadAll(part)
			if err != nil {
				continue
			}
			parts = append(parts, collectParts(
				part.Header.Get("Content-Type"),
				part.Header.Get("Content-Transfer-Encoding"),
				partPayload,
				depth+1,
			)...)
		}
	}

	charset := params["charset"]
	decoded := decodeCharset(charset, decodeTransfer(transferEncoding, payload))
	return []bodyPart{{mediaType: mediaType, content: decoded}}
}

// decodeTransfer reverses the content transfer encoding. Decode errors keep
// whatever prefix was decodable; this path never fails.
func decodeTransfer(encoding string, payload []byte) []byte {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		decoded, _ := io.ReadAll(base64.NewDecoder(base64.StdEncoding, bytes.NewReader(payload)))
		return decoded
	case "quoted-printable":
		decoded, _ := io.ReadAll(quotedprintable.NewReader(bytes.NewReader(payload)))
		return decoded
	default:
		return payload
	}
}

// truncateRunes bounds s by character count of the decoded string, not by
// bytes.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
