package extract

import (
	"io"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// decodeCharset decodes payload using the declared character set, defaulting
// to UTF-8. Undecodable bytes are replaced; this path never fails.
func decodeCharset(charset string, payload []byte) string {
	charset = strings.TrimSpace(strings.ToLower(charset))
	if charset == "" || charset == "utf-8" || charset == "us-ascii" {
		return strings.ToValidUTF8(string(payload), "�")
	}

	enc, err := ianaindex.MIME.Encoding(charset)
	if err != nil || enc == nil {
		return strings.ToValidUTF8(string(payload), "�")
	}

	decoded, _, err := transform.Bytes(enc.NewDecoder(), payload)
	if err != nil {
		return strings.ToValidUTF8(string(payload), "�")
	}
	return strings.ToValidUTF8(string(decoded), "�")
}

// charsetReader lets mime.WordDecoder handle encoded-word header values in
// charsets beyond UTF-8. Unknown charsets pass through undecoded instead of
// failing the header.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.MIME.Encoding(charset)
	if err != nil || enc == nil {
		return input, nil
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}
