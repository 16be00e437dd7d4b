// Package auth provides Vio API key credentials.
//
// Every REST request and the WebSocket handshake carry the same header:
//
//	X-API-KEY: <key>
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// HeaderAPIKey is the header that carries the API key.
const HeaderAPIKey = "X-API-KEY"

// ErrMissingKey is returned when neither a key nor a key file is given.
var ErrMissingKey = errors.New("API key is required")

// Credentials holds the API key used to authenticate requests.
type Credentials struct {
	APIKey string
}

// LoadCredentials returns credentials from a literal key, or from keyPath
// when apiKey is empty. Surrounding whitespace in the file is ignored.
func LoadCredentials(apiKey, keyPath string) (*Credentials, error) {
	if apiKey != "" {
		return &Credentials{APIKey: apiKey}, nil
	}
	if keyPath == "" {
		return nil, ErrMissingKey
	}

	key, err := LoadKeyFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("load key file: %w", err)
	}

	return &Credentials{APIKey: key}, nil
}

// LoadKeyFile reads an API key from a file.
func LoadKeyFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read key file: %w", err)
	}

	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("key file %s is empty", path)
	}

	return key, nil
}

// Apply sets the API key header on h. A nil or empty credential is a no-op.
func (c *Credentials) Apply(h http.Header) {
	if c == nil || c.APIKey == "" {
		return
	}
	h.Set(HeaderAPIKey, c.APIKey)
}

// Header returns a fresh header set carrying the API key, for WebSocket dials.
func (c *Credentials) Header() http.Header {
	h := http.Header{}
	c.Apply(h)
	return h
}
