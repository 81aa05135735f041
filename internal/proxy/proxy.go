// Package proxy turns operator-supplied proxy strings into an outbound proxy
// configuration for the prober.
//
// Proxy strings are usually pasted from a provider dashboard in the form
// user:password@host:port, where the password may contain characters that
// break URL parsing. [Format] repairs those strings and never fails: input it
// cannot make sense of is passed through unchanged so that the problem shows
// up later as a per-request proxy error instead of blocking a cycle.
package proxy

import (
	"net/http"
	"net/url"
	"strings"
)

const defaultScheme = "http://"

// Config is a resolved outbound proxy. A nil *Config means direct connection.
//
// HTTP and HTTPS always hold the same URL string; both traffic classes go
// through one proxy.
type Config struct {
	HTTP  string
	HTTPS string
}

// Format resolves raw into a [Config].
//
// Empty input yields nil. Input without a scheme gets http:// prepended.
// When credentials are present the password is taken literally and
// percent-encoded, '%' included, while the username is kept as given. If
// the result still does not parse as a URL, raw is used verbatim.
func Format(raw string) *Config {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	resolved, ok := normalize(s)
	if !ok {
		resolved = raw
	}
	return &Config{HTTP: resolved, HTTPS: resolved}
}

func normalize(s string) (string, bool) {
	if !hasScheme(s) {
		s = defaultScheme + s
	}

	scheme, rest, _ := strings.Cut(s, "://")

	// passwords may contain '@', the host never does
	at := strings.LastIndex(rest, "@")
	if at >= 0 {
		userinfo, host := rest[:at], rest[at+1:]
		user, password, hasPassword := strings.Cut(userinfo, ":")
		if hasPassword {
			userinfo = user + ":" + escapePassword(password)
		}
		rest = userinfo + "@" + host
	}

	out := scheme + "://" + rest
	u, err := url.Parse(out)
	if err != nil || u.Host == "" {
		return "", false
	}
	return out, true
}

// hasScheme reports whether s starts with "scheme://". A "://" further in,
// for example inside a password, does not count.
func hasScheme(s string) bool {
	i := strings.Index(s, "://")
	if i <= 0 {
		return false
	}
	for j, c := range s[:i] {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case j > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

// escapePassword percent-encodes every reserved character, spaces as %20.
func escapePassword(password string) string {
	return strings.ReplaceAll(url.QueryEscape(password), "+", "%20")
}

// URL returns the proxy URL for the given request scheme.
func (c *Config) URL(scheme string) string {
	if c == nil {
		return ""
	}
	if scheme == "https" {
		return c.HTTPS
	}
	return c.HTTP
}

// ProxyFunc returns a function suitable for [http.Transport.Proxy].
//
// A nil Config returns nil (direct connection). A proxy string that does
// not parse makes every request fail with the parse error, which the
// prober reports as a proxy failure.
func (c *Config) ProxyFunc() func(*http.Request) (*url.URL, error) {
	if c == nil {
		return nil
	}
	return func(req *http.Request) (*url.URL, error) {
		return url.Parse(c.URL(req.URL.Scheme))
	}
}

// Redacted returns the proxy URL with the password masked, for logging.
func (c *Config) Redacted() string {
	if c == nil {
		return ""
	}
	u, err := url.Parse(c.HTTP)
	if err != nil {
		return "<unparseable proxy>"
	}
	return u.Redacted()
}
