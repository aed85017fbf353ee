// Package fetch resolves remote image URLs into embeddable data URIs.
//
// A Fetcher first retrieves the URL directly. When it knows the local origin
// it serves from, a failed direct retrieval is repeated through that origin's
// /image-proxy endpoint; if the proxy fails too, the direct error is reported.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/spetersoncode/mediagen"
)

const (
	// DefaultMaxBodySize is the default limit for one download (20 MiB).
	DefaultMaxBodySize = 20 << 20

	// ProxyPath is the same-origin path of the fallback transport.
	ProxyPath = "/image-proxy"
)

var errEmptyBody = errors.New("empty response body")

// Fetcher downloads images and encodes them as data URIs.
type Fetcher struct {
	client   *http.Client
	origin   string
	maxBytes int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the HTTP client used for downloads.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Fetcher) {
		f.client = hc
	}
}

// WithOrigin sets the local origin (scheme://host[:port]) serving ProxyPath.
// Without an origin there is no fallback transport.
func WithOrigin(origin string) Option {
	return func(f *Fetcher) {
		f.origin = strings.TrimRight(origin, "/")
	}
}

// WithMaxBytes limits the size of a downloaded image.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBytes = n
	}
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:   http.DefaultClient,
		maxBytes: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads rawURL and returns it as a data URI.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	resp, err := f.retrieve(ctx, rawURL)
	if err != nil {
		if f.origin == "" {
			return "", &mediagen.ImageError{Op: "fetch", URL: rawURL, Err: err}
		}
		var proxyErr error
		resp, proxyErr = f.retrieve(ctx, f.proxyURL(rawURL))
		if proxyErr != nil {
			// The direct failure is the root cause
			return "", &mediagen.ImageError{Op: "fetch", URL: rawURL, Err: err}
		}
	}
	defer resp.Body.Close()

	uri, err := f.convert(resp)
	if err != nil {
		return "", &mediagen.ImageError{Op: "convert", URL: rawURL, Err: fmt.Errorf("%w: %v", mediagen.ErrConversion, err)}
	}
	return uri, nil
}

// proxyURL returns the fallback address for rawURL.
func (f *Fetcher) proxyURL(rawURL string) string {
	return f.origin + ProxyPath + "?url=" + url.QueryEscape(rawURL)
}

// retrieve issues a GET and fails on transport errors and non-2xx statuses.
func (f *Fetcher) retrieve(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "mediagen/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		resp.Body.Close()
		return nil, fmt.Errorf("image download failed: HTTP %d", resp.StatusCode)
	}
	return resp, nil
}

// convert reads the body and encodes it with its content type.
func (f *Fetcher) convert(resp *http.Response) (string, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > f.maxBytes {
		return "", fmt.Errorf("body exceeds %d bytes", f.maxBytes)
	}
	if len(data) == 0 {
		return "", errEmptyBody
	}
	return mediagen.EncodeDataURI(contentType(resp.Header.Get("Content-Type"), data), data), nil
}

// contentType returns the declared media type, sniffing when it is absent
// or generic.
func contentType(header string, data []byte) string {
	if idx := strings.Index(header, ";"); idx >= 0 {
		header = header[:idx]
	}
	header = strings.TrimSpace(header)
	if header == "" || header == "application/octet-stream" {
		sniffed := http.DetectContentType(data)
		if idx := strings.Index(sniffed, ";"); idx >= 0 {
			sniffed = sniffed[:idx]
		}
		return sniffed
	}
	return header
}
