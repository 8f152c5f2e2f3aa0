package llm

import (
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Config is what every provider adapter needs to reach its API.
type Config struct {
	BaseURL string
	Model   string
	APIKey  string

	// Timeout bounds each HTTP attempt.
	Timeout time.Duration

	// RequestsPerSecond throttles calls. Zero disables throttling.
	RequestsPerSecond float64

	// ClientOptions tune retries and backoff.
	ClientOptions []Option
}

// WithDefaults returns c with its empty BaseURL, Model and Timeout taken
// from d.
func (c Config) WithDefaults(d Config) Config {
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return c
}

// URL joins the base URL and path.
func (c Config) URL(path string) string {
	return c.BaseURL + path
}

// NewClient builds a throttled client for provider.
func (c Config) NewClient(provider string) *Client {
	opts := append([]Option{WithRateLimit(c.RequestsPerSecond)}, c.ClientOptions...)
	return NewClient(provider, c.Timeout, opts...)
}

// Turn is the role/content pair every provider accepts.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Turns converts messages to wire turns, dropping those for which keep
// returns false. A nil keep keeps everything.
func Turns(messages []driven.ChatMessage, keep func(driven.ChatMessage) bool) []Turn {
	out := make([]Turn, 0, len(messages))
	for _, m := range messages {
		if keep != nil && !keep(m) {
			continue
		}
		out = append(out, Turn{Role: m.Role, Content: m.Content})
	}
	return out
}

// Header builds request headers from alternating key, value pairs.
func Header(kv ...string) http.Header {
	h := make(http.Header, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}
