package adapters

import (
	"net/http"
	"net/url"
	"strings"
)

// normalizeOrigin reduces an origin to lowercase scheme://host form.
func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(origin))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}

// checkOrigin builds the upgrader's origin test from the configured allowed
// origin. Requests without an Origin header pass, they come from non-browser
// clients; "*" allows everything.
func checkOrigin(allowed string) func(r *http.Request) bool {
	if allowed == "*" {
		return func(*http.Request) bool { return true }
	}
	want, wantOK := normalizeOrigin(allowed)
	return func(r *http.Request) bool {
		header := r.Header.Get("Origin")
		if header == "" {
			return true
		}
		got, ok := normalizeOrigin(header)
		return ok && wantOK && got == want
	}
}
