package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rickgao/vio-data/internal/version"
)

// ErrTransport marks network failures and non-success HTTP statuses.
var ErrTransport = errors.New("transport error")

// APIError represents a non-success response from the Vio API.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vio api error %d: %s", e.StatusCode, e.Message)
}

// Is makes errors.Is(err, ErrTransport) true for API errors.
func (e *APIError) Is(target error) bool {
	return target == ErrTransport
}

// IsAuth returns true if the key was rejected.
func (e *APIError) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// doRequest performs an HTTP request. A non-nil payload is sent as JSON.
func (c *Client) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.creds.Apply(req.Header)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: do request: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrTransport, err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Debug("vio api error",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
		)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	return body, nil
}

// get performs a GET request and decodes the JSON response into result.
func (c *Client) get(ctx context.Context, path string, result any) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decodeBody(body, result)
}

// post performs a POST request with a JSON payload and decodes the response.
func (c *Client) post(ctx context.Context, path string, payload, result any) error {
	body, err := c.doRequest(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}
	return decodeBody(body, result)
}

func decodeBody(body []byte, result any) error {
	if err := json.Unmarshal(body, result); err != nil {
		return &MalformedError{Field: "body", Reason: "invalid JSON", Err: err}
	}
	return nil
}
