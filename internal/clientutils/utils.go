// Package clientutils holds shared HTTP request helpers for model providers.
package clientutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	triptych "github.com/triptychhq/triptych"
	"github.com/triptychhq/triptych/internal/sse"
)

// JSONRequestConfig holds configuration for JSON requests.
type JSONRequestConfig struct {
	URL     string
	Headers map[string]string
	Body    any
}

// SSERequestConfig holds configuration for SSE requests.
type SSERequestConfig struct {
	URL     string
	Headers map[string]string
	Body    any
}

// DoJSON performs a JSON POST request and unmarshals the response.
func DoJSON[T any](ctx context.Context, client *http.Client, config JSONRequestConfig) (*T, error) {
	resp, err := post(ctx, client, config.URL, config.Headers, config.Body, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, triptych.NewTransportError(fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode >= 400 {
		return nil, triptych.NewStatusCodeError(resp.StatusCode, string(respBody))
	}

	var result T
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, triptych.NewTransportError(fmt.Errorf("failed to unmarshal response: %w", err))
	}

	return &result, nil
}

// SSEStream decodes a server-sent event stream into values of T.
type SSEStream[T any] struct {
	response *http.Response
	scanner  *sse.Scanner

	curr *T
	err  error
}

// Next advances to the next data event, skipping blank and non-data lines.
func (s *SSEStream[T]) Next() bool {
	for s.scanner.Scan() {
		data, ok := sse.DataLine(s.scanner.Text())
		if !ok || data == "" || data == "[DONE]" {
			continue
		}
		var event T
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			s.err = triptych.NewTransportError(fmt.Errorf("failed to decode sse event: %w", err))
			return false
		}
		s.curr = &event
		return true
	}
	if err := s.scanner.Err(); err != nil {
		s.err = triptych.NewTransportError(fmt.Errorf("scanner error: %w", err))
	}
	return false
}

// Current returns the most recently decoded event.
func (s *SSEStream[T]) Current() *T {
	return s.curr
}

// Err returns the terminal error, if any.
func (s *SSEStream[T]) Err() error {
	return s.err
}

// Close closes the underlying response body.
func (s *SSEStream[T]) Close() error {
	return s.response.Body.Close()
}

// DoSSE performs a streaming SSE POST request and returns a decoding stream.
func DoSSE[T any](ctx context.Context, client *http.Client, config SSERequestConfig) (*SSEStream[T], error) {
	resp, err := post(ctx, client, config.URL, config.Headers, config.Body, "text/event-stream")
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, triptych.NewStatusCodeError(resp.StatusCode, string(respBody))
	}

	return &SSEStream[T]{
		response: resp,
		scanner:  sse.NewScanner(resp.Body),
	}, nil
}

func post(ctx context.Context, client *http.Client, url string, headers map[string]string, body any, accept string) (*http.Response, error) {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, triptych.NewTransportError(fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, triptych.NewTransportError(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, triptych.NewTransportError(err)
	}
	return resp, nil
}
