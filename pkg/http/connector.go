package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// maxResponseBytes bounds how much of a response body is buffered. TTS clips are the largest payloads.
const maxResponseBytes = 32 << 20

// Connector performs HTTP calls against a single backend and retries transport failures.
type Connector struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	retry      RetryPolicy
	observer   AttemptObserver
}

type ConnectorConfig struct {
	BaseURL string
	Logger  *zap.Logger
	// Retry is the retry budget; the zero value falls back to DefaultRetryPolicy.
	Retry RetryPolicy
	// Observer is notified about every finished attempt. Optional.
	Observer AttemptObserver
}

// AttemptObserver receives the endpoint, the 1-based attempt number and the attempt error (nil on success).
type AttemptObserver func(endpoint string, attempt uint, err error)

func NewConnector(config *ConnectorConfig, options ...HttpOpts) *Connector {
	policy := config.Retry
	if policy.Attempts == 0 && policy.Delay == 0 {
		policy = DefaultRetryPolicy()
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Connector{
		baseURL:    config.BaseURL,
		httpClient: newClient(options...),
		logger:     logger,
		retry:      policy,
		observer:   config.Observer,
	}
}

type RequestOpt func(*requestConfig)

type requestConfig struct {
	headers     map[string]string
	overrideURL string
	accept      string
}

func WithHeader(key, value string) RequestOpt {
	return func(c *requestConfig) {
		if c.headers == nil {
			c.headers = make(map[string]string)
		}
		c.headers[key] = value
	}
}

func WithURL(url string) RequestOpt {
	return func(c *requestConfig) {
		c.overrideURL = url
	}
}

// WithAccept overrides the default "application/json" Accept header.
func WithAccept(accept string) RequestOpt {
	return func(c *requestConfig) {
		c.accept = accept
	}
}

// Response is a fully buffered 2xx response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ContentType returns the response Content-Type header.
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// Fetch sends the request, retrying network-level failures with exponential backoff.
// Non-2xx responses fail immediately with *HTTPError; exhausted retries fail with *NetworkError.
func (c *Connector) Fetch(ctx context.Context, method, endpoint string, body Body, opts ...RequestOpt) (*Response, error) {
	cfg := &requestConfig{accept: "application/json"}
	for _, opt := range opts {
		opt(cfg)
	}

	url := c.baseURL + endpoint
	if cfg.overrideURL != "" {
		url = cfg.overrideURL
	}

	var (
		contentType string
		payload     []byte
	)
	if body != nil {
		var err error
		contentType, payload, err = body.Encode()
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		ctx = context.WithValue(ctx, payloadContextKey{}, payload)
	}

	var attempt uint
	send := func() (*Response, error) {
		attempt++
		resp, err := c.send(context.WithValue(ctx, attemptContextKey{}, attempt), method, url, contentType, payload, cfg)
		var netErr *NetworkError
		if errors.As(err, &netErr) {
			netErr.Attempts = attempt
		}
		if c.observer != nil {
			c.observer(endpoint, attempt, err)
		}
		return resp, err
	}

	resp, err := retry.DoWithData[*Response](send, c.retry.options(ctx, func(n uint, err error) {
		ctxzap.Warn(ctx, "network error on outbound request",
			zap.String("url", url),
			zap.Uint("attempt", n+1),
			zap.Duration("backoff", c.retry.Backoff(n)),
			zap.Error(err),
		)
	})...)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Connector) send(ctx context.Context, method, url, contentType string, payload []byte, cfg *requestConfig) (*Response, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", cfg.accept)
	for key, value := range cfg.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The caller gave up; retrying a cancelled context would be pointless.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("request aborted: %w", ctxErr)
		}
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    string(bodyBytes),
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       bodyBytes,
	}, nil
}

// DoRequest sends a JSON body and decodes a JSON response into respBody.
func (c *Connector) DoRequest(ctx context.Context, method, endpoint string, reqBody, respBody any, opts ...RequestOpt) error {
	var body Body
	if reqBody != nil {
		body = JSONBody{Value: reqBody}
	}

	resp, err := c.Fetch(ctx, method, endpoint, body, opts...)
	if err != nil {
		return err
	}

	return decodeJSON(resp, respBody)
}

// DoMultipartRequest sends a multipart/form-data body and decodes a JSON response into respBody.
func (c *Connector) DoMultipartRequest(ctx context.Context, method, endpoint string, prepareBody PrepareMultipart, respBody any, opts ...RequestOpt) error {
	resp, err := c.Fetch(ctx, method, endpoint, MultipartBody{Prepare: prepareBody}, opts...)
	if err != nil {
		return err
	}

	return decodeJSON(resp, respBody)
}

// DoFormRequest sends an application/x-www-form-urlencoded POST and decodes a JSON response into respBody.
func (c *Connector) DoFormRequest(ctx context.Context, endpoint string, form FormBody, respBody any, opts ...RequestOpt) error {
	resp, err := c.Fetch(ctx, http.MethodPost, endpoint, form, opts...)
	if err != nil {
		return err
	}

	return decodeJSON(resp, respBody)
}

func decodeJSON(resp *Response, respBody any) error {
	if respBody == nil || len(resp.Body) == 0 {
		return nil
	}

	if err := json.Unmarshal(resp.Body, respBody); err != nil {
		return &DecodeError{Err: err}
	}

	return nil
}
