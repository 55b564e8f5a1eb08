// Package relay forwards chat-completion request bodies to the model
// provider verbatim, attaching the server-held credential and attribution
// headers. No request shaping, no retries; one outbound call per inbound
// request.
package relay

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrUpstreamTimeout signals that the provider did not answer within the
// configured deadline.
var ErrUpstreamTimeout = errors.New("upstream request timed out")

// Config holds the relay's provider settings.
type Config struct {
	BaseURL string
	APIKey  string
	Referer string
	Title   string
	Timeout time.Duration
}

// Result is the upstream response passed through to the caller.
type Result struct {
	Status      int
	ContentType string
	Body        []byte
}

// Forwarder relays request bodies to the provider's chat-completion
// endpoint.
type Forwarder struct {
	client   *resty.Client
	endpoint string
}

// New creates a forwarder. A zero timeout means wait indefinitely.
func New(cfg *Config) *Forwarder {
	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	if cfg.Referer != "" {
		client.SetHeader("HTTP-Referer", cfg.Referer)
	}
	if cfg.Title != "" {
		client.SetHeader("X-Title", cfg.Title)
	}
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}

	return &Forwarder{
		client:   client,
		endpoint: strings.TrimSuffix(baseURL, "/") + "/chat/completions",
	}
}

// Forward sends the body unchanged and returns whatever the provider
// answered, including non-2xx statuses. Transport failures come back as
// errors, with ErrUpstreamTimeout distinguishing the deadline case.
func (f *Forwarder) Forward(ctx context.Context, body []byte) (*Result, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(f.endpoint)
	if err != nil {
		if isTimeout(err) {
			return nil, ErrUpstreamTimeout
		}
		return nil, fmt.Errorf("forward to provider: %w", err)
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}

	return &Result{
		Status:      resp.StatusCode(),
		ContentType: contentType,
		Body:        resp.Body(),
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ue *url.Error
	return errors.As(err, &ue) && ue.Timeout()
}
