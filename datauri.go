package mediagen

import (
	"encoding/base64"
	"errors"
	"regexp"
)

// DefaultImageMIMEType is used when inline data arrives without a mime type.
const DefaultImageMIMEType = "image/png"

var dataURIPattern = regexp.MustCompile(`^data:([A-Za-z0-9.+-]+/[A-Za-z0-9.+-]+);base64,(.+)$`)

// errMalformedDataURI is returned by ParseDataURI for strings that do not
// match data:<mime>;base64,<payload>.
var errMalformedDataURI = errors.New("malformed data URI")

// DataURI is an inline encoded asset.
type DataURI struct {
	MIMEType string
	// Data is the base64 payload, exactly as carried in the URI.
	Data string
}

// String renders the URI as data:<mime>;base64,<payload>.
// An empty MIMEType renders as DefaultImageMIMEType.
func (d DataURI) String() string {
	mime := d.MIMEType
	if mime == "" {
		mime = DefaultImageMIMEType
	}
	return "data:" + mime + ";base64," + d.Data
}

// payloadEncodings are tried in order when decoding a payload. Providers
// are not consistent about padding or the URL-safe alphabet.
var payloadEncodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// Bytes decodes the payload. Standard, unpadded and URL-safe base64 are
// accepted.
func (d DataURI) Bytes() ([]byte, error) {
	var firstErr error
	for _, enc := range payloadEncodings {
		data, err := enc.DecodeString(d.Data)
		if err == nil {
			return data, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

// ParseDataURI splits a data:<mime>;base64,<payload> string.
func ParseDataURI(s string) (DataURI, error) {
	m := dataURIPattern.FindStringSubmatch(s)
	if m == nil {
		return DataURI{}, errMalformedDataURI
	}
	return DataURI{MIMEType: m[1], Data: m[2]}, nil
}

// EncodeDataURI base64-encodes data into a data URI.
func EncodeDataURI(mimeType string, data []byte) string {
	return DataURI{MIMEType: mimeType, Data: base64.StdEncoding.EncodeToString(data)}.String()
}

var markdownImagePattern = regexp.MustCompile(`!\[[^\]]*\]\((https?://[^\s)]+)\)`)

// MarkdownImageURL returns the first http(s) URL referenced by a Markdown
// image (![alt](url)) in text.
func MarkdownImageURL(text string) (string, bool) {
	m := markdownImagePattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}
