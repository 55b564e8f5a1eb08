package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/calen/phototagger/internal/domain"
	"github.com/calen/phototagger/internal/imaging"
	"github.com/calen/phototagger/internal/prompts"
)

// PlaceholderCaption is used when the model reply does not match the
// expected CAPTION/KEYWORDS format. This is silent degradation, not an
// error: the user edits from the placeholder.
const PlaceholderCaption = "No caption generated"

// Credential errors surfaced to the handlers per the error taxonomy.
var (
	ErrMissingCredential   = errors.New("no provider API key configured")
	ErrInvalidCredential   = errors.New("provider rejected the API key")
	ErrUpstreamTimeout     = errors.New("provider request timed out")
	ErrUnreachableUpstream = errors.New("failed to reach the model provider")
)

// UpstreamError carries a non-2xx provider status through to the handler.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: status %d", e.Status)
}

// CaptionService generates captions and keywords for images through an
// OpenAI-compatible chat-completion API.
type CaptionService struct {
	client      *resty.Client
	model       string
	apiKey      string
	endpoint    string
	maxKeywords int
}

// CaptionConfig holds configuration for the caption service.
type CaptionConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Referer     string
	Title       string
	Timeout     time.Duration
	MaxKeywords int
}

// NewCaptionService creates a caption service. The Referer and X-Title
// headers are the provider's attribution convention and are optional.
func NewCaptionService(cfg *CaptionConfig) *CaptionService {
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

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client.SetTimeout(timeout)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}

	maxKeywords := cfg.MaxKeywords
	if maxKeywords <= 0 {
		maxKeywords = domain.DefaultMaxKeywords
	}

	return &CaptionService{
		client:      client,
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		endpoint:    strings.TrimSuffix(baseURL, "/") + "/chat/completions",
		maxKeywords: maxKeywords,
	}
}

// Model returns the model identifier being used.
func (s *CaptionService) Model() string {
	return s.model
}

// OpenAI-compatible chat-completion request/response structures.
type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"` // string for system, []interface{} for user with images
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type imageContent struct {
	Type     string       `json:"type"`
	ImageURL imagePayload `json:"image_url"`
}

type imagePayload struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate produces caption metadata for an image. The existing caption, if
// any, is embedded in the prompt for context. A malformed reply degrades to
// the placeholder caption and an empty keyword list rather than an error.
func (s *CaptionService) Generate(ctx context.Context, imageData []byte, format, existingCaption string) (domain.Metadata, error) {
	if s.apiKey == "" {
		return domain.Metadata{}, ErrMissingCredential
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s",
		imaging.MIMEType(format), base64.StdEncoding.EncodeToString(imageData))

	req := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: prompts.CaptionSystemPrompt,
			},
			{
				Role: "user",
				Content: []interface{}{
					textContent{
						Type: "text",
						Text: prompts.CaptionUserPrompt(existingCaption),
					},
					imageContent{
						Type:     "image_url",
						ImageURL: imagePayload{URL: dataURL},
					},
				},
			},
		},
		MaxTokens: 500,
	}

	var resp chatResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(s.endpoint)

	if err != nil {
		if isTimeout(err) {
			return domain.Metadata{}, ErrUpstreamTimeout
		}
		return domain.Metadata{}, fmt.Errorf("%w: %v", ErrUnreachableUpstream, err)
	}

	switch {
	case httpResp.StatusCode() == 401:
		return domain.Metadata{}, ErrInvalidCredential
	case httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300:
		return domain.Metadata{}, &UpstreamError{Status: httpResp.StatusCode()}
	}

	if resp.Error != nil {
		return domain.Metadata{}, fmt.Errorf("provider error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return domain.Metadata{}, fmt.Errorf("no choices in provider response (status %d)", httpResp.StatusCode())
	}

	md := ParseReply(resp.Choices[0].Message.Content)
	md.Keywords = domain.MergeKeywords(md.Keywords, nil, s.maxKeywords)
	return md, nil
}

// The reply contract: "CAPTION: <text> | KEYWORDS: <a>, <b>, <c>". The
// caption runs to the pipe delimiter or end of string; keywords are split on
// commas and trimmed.
var (
	captionRe  = regexp.MustCompile(`(?is)CAPTION:\s*(.+?)\s*(?:\||$)`)
	keywordsRe = regexp.MustCompile(`(?is)KEYWORDS:\s*(.+)$`)
)

// ParseReply extracts caption and keywords from the model's free-text reply.
// A missing CAPTION marker yields the placeholder; a missing KEYWORDS marker
// yields an empty list. Neither case is an error.
func ParseReply(content string) domain.Metadata {
	md := domain.Metadata{Caption: PlaceholderCaption, Keywords: []string{}}

	if m := captionRe.FindStringSubmatch(content); m != nil && strings.TrimSpace(m[1]) != "" {
		md.Caption = strings.TrimSpace(m[1])
	}

	if m := keywordsRe.FindStringSubmatch(content); m != nil {
		for _, kw := range strings.Split(m[1], ",") {
			kw = strings.TrimSpace(kw)
			if kw != "" {
				md.Keywords = append(md.Keywords, kw)
			}
		}
	}

	return md
}

// isTimeout reports whether a transport error was caused by the client-side
// deadline rather than a connection failure.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ue *url.Error
	return errors.As(err, &ue) && ue.Timeout()
}
