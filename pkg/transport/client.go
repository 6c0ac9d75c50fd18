// Package transport speaks the processor API's wire protocol: a
// multipart build request carrying the JSON instruction document plus
// materialized assets, and a JSON-only analyze request. Non-2xx
// statuses are classified into the error taxonomy before they reach the
// workflow engine, so the core only ever sees success payloads or
// already-classified errors.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/nutrient-dws/client-go/pkg/apierror"
	"github.com/nutrient-dws/client-go/pkg/build"
	"github.com/nutrient-dws/client-go/pkg/inputs"
)

const (
	buildEndpoint   = "/build"
	analyzeEndpoint = "/analyze_build"
)

// BuildRequest is one fully-assembled build submission.
type BuildRequest struct {
	Instructions *build.Instructions
	Files        map[string]inputs.NormalizedFile
	Kind         ResponseKind
}

// Client is the HTTP transport for the processor API.
type Client struct {
	cfg    Config
	http   *http.Client
	logger hclog.Logger
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithLogger attaches a logger; transport logs at debug level only.
func WithLogger(logger hclog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger.Named("transport")
		}
	}
}

// NewClient creates a transport client. Unset config fields are filled
// with defaults; APIKey is required.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid transport config: %w", err)
	}
	c := &Client{
		cfg:    cfg,
		http:   cfg.newHTTPClient(),
		logger: hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Build submits the instruction document and its materialized assets to
// the build endpoint as multipart/form-data: one "instructions" field
// plus one file part per asset, keyed by asset key.
func (c *Client) Build(ctx context.Context, req *BuildRequest) (*Response, error) {
	payload, contentType, err := encodeMultipart(req)
	if err != nil {
		return nil, err
	}
	return c.post(ctx, buildEndpoint, contentType, payload, req.Kind)
}

// Analyze submits only the JSON instruction document to the analyze
// endpoint. No file bytes are uploaded.
func (c *Client) Analyze(ctx context.Context, instructions *build.Instructions) (*Response, error) {
	payload, err := json.Marshal(instructions)
	if err != nil {
		return nil, fmt.Errorf("marshal instructions: %w", err)
	}
	return c.post(ctx, analyzeEndpoint, "application/json", payload, KindJSON)
}

// post sends one POST, retrying connection failures and retryable
// statuses (429/502/503/504) with exponential backoff. The returned
// error is always a classified member of the error taxonomy.
func (c *Client) post(ctx context.Context, path, contentType string, payload []byte, kind ResponseKind) (*Response, error) {
	url := c.cfg.BaseURL + path

	var resp *Response
	operation := func() error {
		requestID := uuid.NewString()

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(&apierror.NetworkError{Message: "create request", Err: err})
		}
		httpReq.Header.Set("Content-Type", contentType)
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
		httpReq.Header.Set("X-Request-Id", requestID)

		c.logger.Debug("sending request",
			"path", path,
			"request_id", requestID,
			"kind", kind.String(),
			"bytes", len(payload),
		)

		httpResp, err := c.http.Do(httpReq)
		if err != nil {
			return &apierror.NetworkError{Message: "request failed", Err: err}
		}
		defer httpResp.Body.Close()

		respBody, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return &apierror.NetworkError{Message: "read response body", Err: err}
		}

		c.logger.Debug("received response",
			"request_id", requestID,
			"status", httpResp.StatusCode,
			"bytes", len(respBody),
		)

		if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
			classified := classifyStatus(httpResp.StatusCode, respBody)
			if retryableStatus(httpResp.StatusCode) {
				return classified
			}
			return backoff.Permanent(classified)
		}

		decoded, err := decodeBody(kind, httpResp, respBody)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp = decoded
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.RetryDelay
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.cfg.MaxRetries)), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return resp, nil
}

func retryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// classifyStatus maps a non-2xx status to the error taxonomy.
func classifyStatus(status int, body []byte) error {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return &apierror.AuthenticationError{
			Message:    "authentication failed",
			StatusCode: status,
		}
	}
	return &apierror.APIError{
		Message:      apiErrorMessage(status, body),
		StatusCode:   status,
		ResponseBody: body,
	}
}

// apiErrorMessage extracts a human-readable message from an API error
// body when one is present.
func apiErrorMessage(status int, body []byte) string {
	var payload struct {
		Details string `json:"details"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Details != "" {
			return payload.Details
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return fmt.Sprintf("API request failed with status %d", status)
}

func decodeBody(kind ResponseKind, httpResp *http.Response, body []byte) (*Response, error) {
	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
	}
	switch kind {
	case KindText:
		resp.Text = string(body)
	case KindJSON:
		if len(body) > 0 {
			var decoded any
			if err := json.Unmarshal(body, &decoded); err != nil {
				return nil, &apierror.APIError{
					Message:      "API returned malformed JSON",
					StatusCode:   httpResp.StatusCode,
					ResponseBody: body,
				}
			}
			resp.JSON = decoded
		}
	default:
		resp.Body = body
	}
	return resp, nil
}

// encodeMultipart assembles the build payload. Assets are written in
// key order so request bodies are deterministic.
func encodeMultipart(req *BuildRequest) (payload []byte, contentType string, err error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	instructions, err := json.Marshal(req.Instructions)
	if err != nil {
		return nil, "", fmt.Errorf("marshal instructions: %w", err)
	}
	if err := w.WriteField("instructions", string(instructions)); err != nil {
		return nil, "", fmt.Errorf("write instructions field: %w", err)
	}

	keys := make([]string, 0, len(req.Files))
	for key := range req.Files {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		file := req.Files[key]
		fw, err := w.CreateFormFile(key, file.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("create form file %s: %w", key, err)
		}
		if _, err := fw.Write(file.Data); err != nil {
			return nil, "", fmt.Errorf("write form file %s: %w", key, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
