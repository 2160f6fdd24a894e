// Package hmrc is the HTTP layer over the authority's Making Tax Digital APIs. It attaches
// credentials, versioned Accept headers and fraud prevention headers, and turns error
// responses into classified errors.
package hmrc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mtd/internal/fraud"
)

// Environment selects sandbox-only behavior.
type Environment string

const (
	Sandbox    Environment = "sandbox"
	Production Environment = "production"
)

const (
	SandboxBaseURL    = "https://test-api.service.hmrc.gov.uk"
	ProductionBaseURL = "https://api.service.hmrc.gov.uk"

	headerTestScenario  = "Gov-Test-Scenario"
	headerCorrelationID = "X-CorrelationId"
)

// ErrNoToken is returned when no bearer token is available for the call.
var ErrNoToken = errors.New("hmrc: no bearer token available")

// TokenProvider supplies a valid bearer token. Refresh and expiry are its concern.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken always returns the same token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	if t == "" {
		return "", ErrNoToken
	}
	return string(t), nil
}

type tokenKey struct{}

// WithToken returns a context carrying a per-request bearer token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// ContextTokenProvider reads the token placed by WithToken.
type ContextTokenProvider struct{}

func (ContextTokenProvider) Token(ctx context.Context) (string, error) {
	if tok, ok := ctx.Value(tokenKey{}).(string); ok && tok != "" {
		return tok, nil
	}
	return "", ErrNoToken
}

// Config holds the connection settings.
type Config struct {
	BaseURL      string
	Environment  Environment
	TestScenario string
	Timeout      time.Duration
}

// Client is safe for concurrent use.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	tokens       TokenProvider
	env          Environment
	testScenario string
	translator   *Translator
}

// NewClient creates a client. A nil translator uses DefaultTable.
func NewClient(cfg Config, tokens TokenProvider, translator *Translator) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = SandboxBaseURL
		if cfg.Environment == Production {
			cfg.BaseURL = ProductionBaseURL
		}
	}
	if translator == nil {
		translator = NewTranslator(DefaultTable())
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		tokens:       tokens,
		env:          cfg.Environment,
		testScenario: cfg.TestScenario,
		translator:   translator,
	}
}

// Translator returns the translator used to classify errors.
func (c *Client) Translator() *Translator { return c.translator }

// Request describes one call. Body is JSON-encoded when non-nil.
type Request struct {
	Method     string
	Path       string
	Query      url.Values
	APIVersion string
	Body       any
	Headers    fraud.HeaderSet
}

// Response is a successful reply.
type Response struct {
	StatusCode    int
	CorrelationID string
	Header        http.Header
}

// Do sends req and decodes a 2xx JSON body into out when out is non-nil.
// Incomplete fraud headers fail with *HeaderValidationError before anything is sent.
// A non-2xx reply is an *APIError; no reply at all is a *TransportError.
func (c *Client) Do(ctx context.Context, req Request, out any) (*Response, error) {
	if missing := fraud.Validate(req.Headers); len(missing) > 0 {
		return nil, &HeaderValidationError{Missing: missing}
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get bearer token: %w", err)
	}

	var body io.Reader
	if req.Body != nil {
		buf, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", AcceptHeader(req.APIVersion))
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.env == Sandbox && c.testScenario != "" {
		httpReq.Header.Set(headerTestScenario, c.testScenario)
	}
	for name, value := range req.Headers {
		httpReq.Header.Set(name, value)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Method: req.Method, Path: req.Path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: req.Method, Path: req.Path, Err: fmt.Errorf("read body: %w", err)}
	}

	correlationID := resp.Header.Get(headerCorrelationID)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.apiError(resp, raw, correlationID)
	}

	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return &Response{StatusCode: resp.StatusCode, CorrelationID: correlationID, Header: resp.Header}, nil
}

// apiError decodes the error payload when the reply is JSON, and maps the status otherwise.
func (c *Client) apiError(resp *http.Response, raw []byte, correlationID string) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, CorrelationID: correlationID}

	var eb errorBody
	if isJSON(resp.Header.Get("Content-Type")) && json.Unmarshal(raw, &eb) == nil && eb.Code != "" {
		apiErr.Code = eb.Code
		apiErr.Message = eb.Message
		apiErr.Errors = eb.Errors
	} else {
		apiErr.Code = codeForStatus(resp.StatusCode)
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	c.translator.Apply(apiErr)
	return apiErr
}

// AcceptHeader renders the versioned media type.
func AcceptHeader(version string) string {
	return "application/vnd.hmrc." + version + "+json"
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
