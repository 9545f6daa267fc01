// Package functions invokes the hosted serverless functions (payment
// session creation, order confirmation email) over HTTPS.
package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no FUNCTIONS_URL is set.
var ErrNotConfigured = errors.New("functions: base URL not configured")

// RemoteError is a failure reported by the function itself.
type RemoteError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Code    string `json:"code,omitempty"`
	Type    string `json:"type,omitempty"`
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL, apiKey string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
		logger:  logger,
	}
}

// Invoke POSTs in as JSON to the named function and decodes a successful
// response into out. Error payloads ({"success":false,"error":...}) come back
// as *RemoteError.
func (c *Client) Invoke(ctx context.Context, name string, in, out interface{}) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("functions: encode %s: %w", name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+name, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("apikey", c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("functions: %s: %w", name, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("functions: read %s: %w", name, err)
	}
	c.logger.Debug("function invoked",
		zap.String("function", name),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	var envelope struct {
		Success *bool  `json:"success"`
		Error   string `json:"error"`
		Code    string `json:"code"`
		Type    string `json:"type"`
	}
	_ = json.Unmarshal(raw, &envelope)
	failed := resp.StatusCode >= 300 || (envelope.Success != nil && !*envelope.Success) || envelope.Error != ""
	if failed {
		msg := envelope.Error
		if msg == "" {
			msg = fmt.Sprintf("%s returned %s", name, resp.Status)
		}
		return &RemoteError{Status: resp.StatusCode, Message: msg, Code: envelope.Code, Type: envelope.Type}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("functions: decode %s: %w", name, err)
	}
	return nil
}
