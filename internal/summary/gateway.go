// Package summary requests a plain-language summary of a document image from an
// external generative model.
package summary

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"healthdash/internal/config"
	"healthdash/internal/model"
)

// Prompt is the fixed instruction sent with every document.
const Prompt = "You are a medical assistant specialized in analyzing documents. Analyze the image of this " +
	"medical document and provide a concise summary. Extract the key data, diagnoses and any recommended " +
	"actions. Format the summary clearly using markdown (use '##' headers, '-' lists and '**' bold). If the " +
	"image does not look like a medical document or is illegible, politely state that the content could " +
	"not be analyzed."

var (
	// ErrUnsupportedType is returned for payloads that are not images. No request is made.
	ErrUnsupportedType = errors.New("only image documents can be summarized")
	// ErrRequestFailed wraps every failure of the external call.
	ErrRequestFailed = errors.New("summary request failed")

	errRateLimited = errors.New("rate limit exceeded")
)

const maxErrorBody = 4 << 10

// Request is a document to summarize.
type Request struct {
	ContentType string
	Payload     []byte
}

// Summarizer produces a summary text for a document.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (string, error)
}

// Gateway calls the generateContent endpoint of the configured model.
type Gateway struct {
	client  *http.Client
	baseURL string
	model   string
	apiKey  string
	limiter *rate.Limiter
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithHTTPClient replaces the traced default client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.client = c }
}

// NewGateway builds a gateway from configuration.
func NewGateway(cfg config.SummaryConfig, opts ...Option) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	g := &Gateway{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
	}
	if cfg.RequestsPerMinute > 0 {
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), cfg.RequestsPerMinute)
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var _ Summarizer = (*Gateway)(nil)

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	InlineData *inlineData `json:"inline_data,omitempty"`
	Text       string      `json:"text,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Summarize sends one request per call. It never retries.
func (g *Gateway) Summarize(ctx context.Context, req Request) (string, error) {
	if !model.IsImageType(req.ContentType) {
		return "", ErrUnsupportedType
	}
	if g.limiter != nil && !g.limiter.Allow() {
		return "", fmt.Errorf("%w: %w", ErrRequestFailed, errRateLimited)
	}

	body, err := json.Marshal(generateRequest{Contents: []content{{Parts: []part{
		{InlineData: &inlineData{MimeType: req.ContentType, Data: base64.StdEncoding.EncodeToString(req.Payload)}},
		{Text: Prompt},
	}}}})
	if err != nil {
		return "", fmt.Errorf("%w: encode: %w", ErrRequestFailed, err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode: %w", ErrRequestFailed, err)
	}

	var sb strings.Builder
	for _, c := range out.Candidates {
		for _, p := range c.Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrRequestFailed)
	}
	return text, nil
}
