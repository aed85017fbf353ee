package fetch

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPublicIP(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"8.8.8.8", true},
		{"2606:4700:4700::1111", true},
		{"127.0.0.1", false},
		{"::1", false},
		{"10.1.2.3", false},
		{"172.16.0.1", false},
		{"192.168.1.10", false},
		{"169.254.169.254", false},
		{"fe80::1", false},
		{"fd00::1", false},
		{"0.0.0.0", false},
		{"224.0.0.1", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.want, isPublicIP(net.ParseIP(tt.ip)))
		})
	}
}

func TestCheckPublicDial(t *testing.T) {
	assert.NoError(t, checkPublicDial("tcp", "93.184.216.34:443", nil))
	assert.ErrorIs(t, checkPublicDial("tcp", "127.0.0.1:8080", nil), ErrPrivateAddress)
	assert.ErrorIs(t, checkPublicDial("tcp6", "[::1]:80", nil), ErrPrivateAddress)
	assert.Error(t, checkPublicDial("tcp", "no-port", nil))
}

func TestCheckPublicHost(t *testing.T) {
	parse := func(s string) *url.URL {
		u, err := url.Parse(s)
		require.NoError(t, err)
		return u
	}

	assert.NoError(t, checkPublicHost(parse("https://cdn.example/a.png")))
	assert.NoError(t, checkPublicHost(parse("https://93.184.216.34/a.png")))
	assert.ErrorIs(t, checkPublicHost(parse("http://LOCALHOST./a.png")), ErrPrivateAddress)
	assert.ErrorIs(t, checkPublicHost(parse("http://app.localhost/a.png")), ErrPrivateAddress)
	assert.ErrorIs(t, checkPublicHost(parse("http://[::1]:8080/a.png")), ErrPrivateAddress)
}

func TestPublicHTTPClientRefusesLoopback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("server reached: %s", r.URL)
	}))
	defer srv.Close()

	// A host name, so only the dial-time check can catch it
	target := strings.Replace(srv.URL, "127.0.0.1", "localhost", 1)

	f := New(WithHTTPClient(PublicHTTPClient()))
	_, err := f.Fetch(context.Background(), target+"/a.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPrivateAddress)
}
