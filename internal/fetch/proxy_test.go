package fetch

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxyHandler(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/gif")
		_, _ = w.Write([]byte("GIF89a"))
	}))
	defer upstream.Close()

	proxy := httptest.NewServer(NewProxyHandler(New(), WithPrivateTargets()))
	defer proxy.Close()

	get := func(t *testing.T, target string) *http.Response {
		t.Helper()
		resp, err := http.Get(proxy.URL + ProxyPath + "?url=" + url.QueryEscape(target))
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	t.Run("relays image", func(t *testing.T) {
		resp := get(t, upstream.URL+"/cat.gif")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/gif", resp.Header.Get("Content-Type"))
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "GIF89a", string(body))
	})

	t.Run("upstream failure", func(t *testing.T) {
		resp := get(t, upstream.URL+"/missing")
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})

	t.Run("rejects non-http scheme", func(t *testing.T) {
		resp := get(t, "file:///etc/passwd")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejects missing url", func(t *testing.T) {
		resp := get(t, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejects non-GET", func(t *testing.T) {
		resp, err := http.Post(proxy.URL+ProxyPath, "text/plain", nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestProxyHandlerRefusesPrivateTargets(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("upstream reached: %s", r.URL)
	}))
	defer upstream.Close()

	tests := []struct {
		name    string
		handler *ProxyHandler
		target  string
	}{
		{name: "loopback literal", handler: NewProxyHandler(New()), target: upstream.URL + "/cat.gif"},
		{name: "localhost", handler: NewProxyHandler(New()), target: "http://localhost:9/cat.gif"},
		{name: "link-local metadata", handler: NewProxyHandler(New()), target: "http://169.254.169.254/latest/meta-data/"},
		{name: "private network", handler: NewProxyHandler(New()), target: "http://10.0.0.7/cat.gif"},
		{name: "resolved at dial time", handler: NewProxyHandler(New(WithHTTPClient(PublicHTTPClient())), WithPrivateTargets()), target: upstream.URL + "/cat.gif"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, ProxyPath+"?url="+url.QueryEscape(tt.target), nil)
			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Contains(t, rec.Body.String(), "not public")
		})
	}
}
