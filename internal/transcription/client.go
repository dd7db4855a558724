package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"auto-transcriber-go/internal/config"
	"auto-transcriber-go/internal/logger"
)

// ErrTranscription matches every failure reported by a Client.
var ErrTranscription = errors.New("transcription failed")

// Client turns one audio chunk into text.
type Client interface {
	Transcribe(ctx context.Context, chunkPath string) (string, error)
}

// APIError is a non-2xx answer from the speech-to-text API.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api http %d: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *APIError) Is(target error) bool { return target == ErrTranscription }

type transcriptionResponse struct {
	Text string `json:"text"`
}

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 4 << 10

type Option func(*HTTPClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

func WithLogger(log *logger.Logger) Option {
	return func(c *HTTPClient) { c.log = log.Component("transcription") }
}

// HTTPClient posts chunks to an OpenAI compatible transcription endpoint.
// The openai and azure providers differ only in URL and credential header.
type HTTPClient struct {
	provider   string
	model      string
	url        string
	authHeader string
	authValue  string
	http       *http.Client
	log        *logger.Logger
}

// New builds the client for the configured provider.
func New(s config.Resolved, opts ...Option) (*HTTPClient, error) {
	c := &HTTPClient{
		provider: s.Provider,
		model:    s.Model,
		http:     &http.Client{Timeout: s.RequestTimeout},
		log:      logger.Discard(),
	}
	switch s.Provider {
	case config.ProviderOpenAI:
		base := strings.TrimRight(s.BaseURL, "/")
		if base == "" {
			base = config.DefaultOpenAIBaseURL
		}
		c.url = base + "/audio/transcriptions"
		c.authHeader = "Authorization"
		c.authValue = "Bearer " + s.APIKey
	case config.ProviderAzure:
		if s.Endpoint == "" {
			return nil, errors.New("azure endpoint is required")
		}
		c.url = fmt.Sprintf("%s/openai/deployments/%s/audio/transcriptions?api-version=%s",
			strings.TrimRight(s.Endpoint, "/"), url.PathEscape(s.Model), url.QueryEscape(s.APIVersion))
		c.authHeader = "api-key"
		c.authValue = s.APIKey
	default:
		return nil, fmt.Errorf("unsupported provider %q", s.Provider)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Provider returns the provider name the client was built for.
func (c *HTTPClient) Provider() string { return c.provider }

// Transcribe uploads chunkPath in a single request and returns the recognized
// text. Errors are not retried.
func (c *HTTPClient) Transcribe(ctx context.Context, chunkPath string) (string, error) {
	body, contentType, err := c.buildBody(chunkPath)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(c.authHeader, c.authValue)

	log := c.log.WithField("chunk", filepath.Base(chunkPath)).WithField("provider", c.provider)
	log.WithField("bytes", body.Len()).Debug("posting chunk")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &APIError{Provider: c.provider, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	var out transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrTranscription, err)
	}
	log.WithField("chars", len(out.Text)).Debug("chunk transcribed")
	return out.Text, nil
}

func (c *HTTPClient) buildBody(chunkPath string) (*bytes.Buffer, string, error) {
	f, err := os.Open(chunkPath)
	if err != nil {
		return nil, "", fmt.Errorf("open chunk: %w", err)
	}
	defer f.Close()

	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	if err := w.WriteField("model", c.model); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("response_format", "json"); err != nil {
		return nil, "", err
	}
	fw, err := w.CreateFormFile("file", filepath.Base(chunkPath))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, "", fmt.Errorf("read chunk: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &b, w.FormDataContentType(), nil
}
