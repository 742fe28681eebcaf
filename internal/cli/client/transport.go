package client

import (
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// authTransport decorates every outbound request with the client's current
// Authorization slot, a request id and the User-Agent.
type authTransport struct {
	next   http.RoundTripper
	client *Client
	logger zerolog.Logger
}

func (c *Client) wrap(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &authTransport{next: next, client: c, logger: c.logger}
}

// RoundTrip implements http.RoundTripper
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request
	r := req.Clone(req.Context())

	requestID := ulid.Make().String()
	r.Header.Set("X-Request-ID", requestID)
	if ua := t.client.userAgent; ua != "" {
		r.Header.Set("User-Agent", ua)
	}
	if authz := t.client.Authorization(); authz != "" {
		r.Header.Set("Authorization", authz)
	} else {
		r.Header.Del("Authorization")
	}

	start := time.Now()
	resp, err := t.next.RoundTrip(r)

	event := t.logger.Debug().
		Str("request_id", requestID).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Dur("duration", time.Since(start))
	if err != nil {
		event.Err(err).Msg("HTTP request failed")
		return nil, err
	}
	event.Int("status", resp.StatusCode).Msg("HTTP request")

	return resp, nil
}
