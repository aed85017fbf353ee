package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/spetersoncode/mediagen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func TestFetchDirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("foo"))
	}))
	defer srv.Close()

	uri, err := New().Fetch(context.Background(), srv.URL+"/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "data:image/jpeg;base64,Zm9v", uri)
}

func TestFetchSniffsMissingContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(pngHeader)
	}))
	defer srv.Close()

	uri, err := New().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	parsed, err := mediagen.ParseDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", parsed.MIMEType)
}

func TestFetchFallsBackToProxy(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	target := dead.URL + "/x.png?size=big"
	dead.Close()

	var proxied atomic.Int32
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != ProxyPath {
			http.NotFound(w, r)
			return
		}
		proxied.Add(1)
		assert.Equal(t, target, r.URL.Query().Get("url"))
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("foo"))
	}))
	defer origin.Close()

	f := New(WithOrigin(origin.URL + "/"))
	assert.Equal(t, origin.URL+"/image-proxy?url=https%3A%2F%2Fcdn.example%2Fx.png%3Fsize%3Dbig",
		f.proxyURL("https://cdn.example/x.png?size=big"))

	uri, err := f.Fetch(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,Zm9v", uri)
	assert.Equal(t, int32(1), proxied.Load())
}

func TestFetchNoOriginNoFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New().Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var imgErr *mediagen.ImageError
	require.True(t, errors.As(err, &imgErr))
	assert.Equal(t, "fetch", imgErr.Op)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestFetchReportsPrimaryErrorWhenProxyFails(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer origin.Close()

	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer primary.Close()

	_, err := New(WithOrigin(origin.URL)).Fetch(context.Background(), primary.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 418")
	assert.NotContains(t, err.Error(), "HTTP 502")
}

func TestFetchConversionFailure(t *testing.T) {
	tests := []struct {
		name string
		body []byte
		max  int64
	}{
		{name: "empty body", body: nil, max: DefaultMaxBodySize},
		{name: "too large", body: []byte("0123456789"), max: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "image/png")
				_, _ = w.Write(tt.body)
			}))
			defer srv.Close()

			_, err := New(WithMaxBytes(tt.max)).Fetch(context.Background(), srv.URL)
			require.Error(t, err)
			assert.True(t, errors.Is(err, mediagen.ErrConversion))

			var imgErr *mediagen.ImageError
			require.True(t, errors.As(err, &imgErr))
			assert.Equal(t, "convert", imgErr.Op)
		})
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/webp", contentType("image/webp; charset=binary", nil))
	assert.Equal(t, "image/png", contentType("", pngHeader))
}
