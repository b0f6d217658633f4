package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeMessage(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "message.eml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newExtractor() *Extractor {
	return New(2048, zap.NewNop())
}

func TestExtractPlainMessage(t *testing.T) {
	path := writeMessage(t, strings.Join([]string{
		"From: boss@company.com",
		"Subject: URGENT: Board Meeting Tomorrow",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"Your presentation is required at 9 AM.",
		"",
	}, "\r\n"))

	msg, err := newExtractor().Extract(path)
	require.NoError(t, err)

	assert.Equal(t, "boss@company.com", msg.Sender)
	assert.Equal(t, "URGENT: Board Meeting Tomorrow", msg.Subject)
	assert.Equal(t, "URGENT: Board Meeting Tomorrow\nYour presentation is required at 9 AM.", msg.Text)
}

func TestExtractHTMLOnlyMultipart(t *testing.T) {
	path := writeMessage(t, strings.Join([]string{
		"From: deals@shoes.example",
		"Subject: 50% Off Shoes This Weekend",
		`Content-Type: multipart/alternative; boundary="frontier"`,
		"",
		"--frontier",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<b>Hi</b> there",
		"--frontier--",
		"",
	}, "\r\n"))

	msg, err := newExtractor().Extract(path)
	require.NoError(t, err)

	assert.Equal(t, "50% Off Shoes This Weekend\nHi there", msg.Text)
}

func TestExtractPrefersPlainOverHTML(t *testing.T) {
	path := writeMessage(t, strings.Join([]string{
		"From: a@b.c",
		"Subject: Hello",
		`Content-Type: multipart/alternative; boundary="frontier"`,
		"",
		"--frontier",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<p>html body</p>",
		"--frontier",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"plain body",
		"--frontier--",
		"",
	}, "\r\n"))

	msg, err := newExtractor().Extract(path)
	require.NoError(t, err)

	assert.Contains(t, msg.Text, "plain body")
	assert.NotContains(t, msg.Text, "html body")
}

func TestExtractBlankPlainFallsBackToHTML(t *testing.T) {
	path := writeMessage(t, strings.Join([]string{
		"From: a@b.c",
		"Subject: Hello",
		`Content-Type: multipart/alternative; boundary="frontier"`,
		"",
		"--frontier",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"   ",
		"--frontier",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<p>html body</p>",
		"--frontier--",
		"",
	}, "\r\n"))

	msg, err := newExtractor().Extract(path)
	require.NoError(t, err)

	assert.Contains(t, msg.Text, "html body")
}

func TestExtractNestedMultipart(t *testing.T) {
	path := writeMessage(t, strings.Join([]string{
		"From: a@b.c",
		"Subject: Nested",
		`Content-Type: multipart/mixed; boundary="outer"`,
		"",
		"--outer",
		`Content-Type: multipart/alternative; boundary="inner"`,
		"",
		"--inner",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"nested plain body",
		"--inner--",
		"--outer--",
		"",
	}, "\r\n"))

	msg, err := newExtractor().Extract(path)
	require.NoError(t, err)

	assert.Contains(t, msg.Text, "nested plain body")
}

func TestExtractEncodedWordHeaders(t *testing.T) {
	path := writeMessage(t, strings.Join([]string{
		"From: =?utf-8?q?Ren=C3=A9?= <rene@example.com>",
		"Subject: =?utf-8?q?Caf=C3=A9_opening?=",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"See you there.",
		"",
	}, "\r\n"))

	msg, err := newExtractor().Extract(path)
	require.NoError(t, err)

	assert.Equal(t, "René <rene@example.com>", msg.Sender)
	assert.Equal(t, "Café opening", msg.Subject)
}

func TestExtractQuotedPrintableBody(t *testing.T) {
	path := writeMessage(t, strings.Join([]string{
		"From: a@b.c",
		"Subject: Gruss",
		"Content-Type: text/plain; charset=utf-8",
		"Content-Transfer-Encoding: quoted-printable",
		"",
		"Viele Gr=C3=BC=C3=9Fe",
		"",
	}, "\r\n"))

	msg, err := newExtractor().Extract(path)
	require.NoError(t, err)

	assert.Contains(t, msg.Text, "Viele Grüße")
}

func TestExtractLatin1Charset(t *testing.T) {
	header := strings.Join([]string{
		"From: a@b.c",
		"Subject: Accent",
		"Content-Type: text/plain; charset=iso-8859-1",
		"",
		"",
	}, "\r\n")
	body := append([]byte("caf"), 0xE9) // "café" in latin-1

	path := filepath.Join(t.TempDir(), "message.eml")
	require.NoError(t, os.WriteFile(path, append([]byte(header), body...), 0o644))

	msg, err := newExtractor().Extract(path)
	require.NoError(t, err)

	assert.Contains(t, msg.Text, "café")
}

func TestExtractMissingHeadersUsePlaceholders(t *testing.T) {
	path := writeMessage(t, strings.Join([]string{
		"Content-Type: text/plain; charset=utf-8",
		"",
		"body only",
		"",
	}, "\r\n"))

	msg, err := newExtractor().Extract(path)
	require.NoError(t, err)

	assert.Equal(t, "(unknown sender)", msg.Sender)
	assert.Equal(t, "(no subject)", msg.Subject)
	assert.Equal(t, "(no subject)\nbody only", msg.Text)
}

func TestExtractTruncatesByRunes(t *testing.T) {
	body := strings.Repeat("ü", 100)
	path := writeMessage(t, strings.Join([]string{
		"From: a@b.c",
		"Subject: Long",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
		"",
	}, "\r\n"))

	e := New(20, zap.NewNop())
	msg, err := e.Extract(path)
	require.NoError(t, err)

	// Truncation counts characters of the decoded string, not bytes.
	assert.Len(t, []rune(msg.Text), 20)
}

func TestExtractIsIdempotent(t *testing.T) {
	path := writeMessage(t, strings.Join([]string{
		"From: a@b.c",
		"Subject: Same",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"same body",
		"",
	}, "\r\n"))

	e := newExtractor()
	first, err := e.Extract(path)
	require.NoError(t, err)
	second, err := e.Extract(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExtractMissingFile(t *testing.T) {
	_, err := newExtractor().Extract(filepath.Join(t.TempDir(), "nope.eml"))
	assert.Error(t, err)
}

func TestSelectBodyEmptyWhenNoTextParts(t *testing.T) {
	assert.Equal(t, "", selectBody([]bodyPart{{mediaType: "image/png", content: "binary"}}))
	assert.Equal(t, "", selectBody(nil))
}

func TestTruncateRunesNoLimit(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 0))
	assert.Equal(t, "abc", truncateRunes("abc", 10))
	assert.Equal(t, "ab", truncateRunes("abc", 2))
}
