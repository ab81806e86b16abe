package adapters

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func requestWithOrigin(origin string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/ws", nil)
	if origin != "" {
		r.Header.Set("Origin", origin)
	}
	return r
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed string
		origin  string
		want    bool
	}{
		{"exact match", "http://localhost:3000", "http://localhost:3000", true},
		{"case insensitive", "http://localhost:3000", "HTTP://LOCALHOST:3000", true},
		{"other host rejected", "http://localhost:3000", "http://evil.example", false},
		{"other port rejected", "http://localhost:3000", "http://localhost:3001", false},
		{"wildcard allows anything", "*", "http://anywhere.example", true},
		{"no header passes", "http://localhost:3000", "", true},
		{"garbage header rejected", "http://localhost:3000", "not a url", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := checkOrigin(tt.allowed)
			require.Equal(t, tt.want, check(requestWithOrigin(tt.origin)))
		})
	}
}

func TestNormalizeOrigin(t *testing.T) {
	req := require.New(t)

	got, ok := normalizeOrigin(" HTTPS://Example.COM:8443 ")
	req.True(ok)
	req.Equal("https://example.com:8443", got)

	_, ok = normalizeOrigin("example.com")
	req.False(ok, "scheme is required")
}
