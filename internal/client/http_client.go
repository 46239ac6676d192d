package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"parts-catalog/internal/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

var HttpClientTracer = otel.Tracer("HttpClient")

// HTTPClient is a JSON client that propagates the trace of the calling context.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	headers map[string]string
}

type RequestOptions struct {
	Method      string
	Path        string
	QueryParams map[string]string
	Headers     map[string]string
	Body        any
}

// APIError is returned for non-2xx responses; Message comes from the JSON error body when present.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("http %d: %s: %s", e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: make(map[string]string),
	}
}

func (c *HTTPClient) SetDefaultHeader(key, value string) {
	c.headers[key] = value
}

// Do sends the request and decodes a 2xx JSON body into result when result is not nil.
func (c *HTTPClient) Do(ctx context.Context, opts RequestOptions, result any) error {
	fullURL, err := c.buildURL(opts.Path, opts.QueryParams)
	if err != nil {
		return fmt.Errorf("build url: %w", err)
	}

	var bodyReader io.Reader
	if opts.Body != nil {
		bodyBytes, err := json.Marshal(opts.Body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	ctx, span := HttpClientTracer.Start(ctx, "HttpClient "+opts.Method+" "+opts.Path)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, opts.Method, fullURL, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req, opts.Headers)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	req.Header.Set("X-Trace-ID", span.SpanContext().TraceID().String())

	logger.Info(ctx, "HttpClient request",
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
	)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	logger.Info(ctx, "HttpClient response",
		slog.Int("status", resp.StatusCode),
		slog.String("request_id", resp.Header.Get("X-Request-ID")),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var body struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(rawBody, &body) == nil && body.Message != "" {
			apiErr.Message = body.Message
			apiErr.Detail = body.Error
		}
		span.SetStatus(codes.Error, apiErr.Message)
		return apiErr
	}

	if result != nil && len(rawBody) > 0 {
		if err := json.Unmarshal(rawBody, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *HTTPClient) Get(ctx context.Context, path string, query map[string]string, result any) error {
	return c.Do(ctx, RequestOptions{Method: http.MethodGet, Path: path, QueryParams: query}, result)
}

func (c *HTTPClient) Post(ctx context.Context, path string, body, result any) error {
	return c.Do(ctx, RequestOptions{Method: http.MethodPost, Path: path, Body: body}, result)
}

func (c *HTTPClient) Patch(ctx context.Context, path string, body, result any) error {
	return c.Do(ctx, RequestOptions{Method: http.MethodPatch, Path: path, Body: body}, result)
}

func (c *HTTPClient) buildURL(endpoint string, queryParams map[string]string) (string, error) {
	fullURL := endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		fullURL = c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	}

	if len(queryParams) > 0 {
		u, err := url.Parse(fullURL)
		if err != nil {
			return "", err
		}
		q := u.Query()
		for k, v := range queryParams {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
		fullURL = u.String()
	}

	return fullURL, nil
}

func (c *HTTPClient) setHeaders(req *http.Request, headers map[string]string) {
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if req.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
}
