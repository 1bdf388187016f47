package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/optcg-tools/deckchat-go/internal/sse"
)

// JSONRequestConfig holds configuration for JSON requests
type JSONRequestConfig struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    any
}

// SSERequestConfig holds configuration for SSE requests
type SSERequestConfig struct {
	URL     string
	Headers map[string]string
	Body    any
}

// StatusError reports a non-2xx response with its body. Callers classify it
// with errors.As.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Code, e.Body)
}

// DoJSON performs a JSON request and unmarshals the response.
// A nil Body sends no payload; a 204 response yields the zero value.
func DoJSON[T any](ctx context.Context, client *http.Client, config JSONRequestConfig) (*T, error) {
	method := config.Method
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	if config.Body != nil {
		reqBody, err := json.Marshal(config.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, config.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range config.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	var result T
	if resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return &result, nil
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}

// SSEStream represents a server-sent event stream. Response is exposed so
// callers can inspect headers delivered before the stream body.
type SSEStream struct {
	Response *http.Response
	Decoder  *sse.Decoder
}

// Close closes the SSE stream
func (s *SSEStream) Close() error {
	return s.Response.Body.Close()
}

// DoSSE performs a streaming SSE POST request and returns a stream
func DoSSE(ctx context.Context, client *http.Client, config SSERequestConfig) (*SSEStream, error) {
	reqBody, err := json.Marshal(config.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, config.URL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	for key, value := range config.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	if resp.Body == nil {
		return nil, fmt.Errorf("missing response body")
	}

	return &SSEStream{
		Response: resp,
		Decoder:  sse.NewDecoder(resp.Body),
	}, nil
}
