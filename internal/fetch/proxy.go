package fetch

import (
	"errors"
	"io"
	"net/http"
	"net/url"
)

// ProxyHandler serves ProxyPath: it retrieves the URL given in the "url"
// query parameter and relays the body. It never falls back to itself.
//
// Targets naming localhost or a non-public IP are refused. Host names that
// resolve to such addresses are only refused when the fetcher's client is
// PublicHTTPClient.
type ProxyHandler struct {
	fetcher      *Fetcher
	allowPrivate bool
}

// ProxyOption configures a ProxyHandler.
type ProxyOption func(*ProxyHandler)

// WithPrivateTargets lets the proxy relay loopback and private-network
// URLs, e.g. for a local development image server.
func WithPrivateTargets() ProxyOption {
	return func(h *ProxyHandler) {
		h.allowPrivate = true
	}
}

// NewProxyHandler creates a proxy handler downloading with f's client and
// size limit.
func NewProxyHandler(f *Fetcher, opts ...ProxyOption) *ProxyHandler {
	h := &ProxyHandler{fetcher: f}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP relays the target image.
func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	target := r.URL.Query().Get("url")
	u, err := url.Parse(target)
	if target == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		http.Error(w, "url must be an absolute http(s) URL", http.StatusBadRequest)
		return
	}

	if !h.allowPrivate {
		if err := checkPublicHost(u); err != nil {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
	}

	resp, err := h.fetcher.retrieve(r.Context(), u.String())
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, ErrPrivateAddress) {
			status = http.StatusForbidden
		}
		http.Error(w, err.Error(), status)
		return
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, io.LimitReader(resp.Body, h.fetcher.maxBytes))
}
