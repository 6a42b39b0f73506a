package annotate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reminders/internal/service"
)

const maxErrorBody = 512

// Client calls an HTTP annotation endpoint. It posts the request as JSON and
// expects an AnnotationResult back.
type Client struct {
	endpoint string
	apiKey   string
	model    string
	http     *http.Client
}

// NewClient builds a Client. A zero timeout means no client-side limit.
func NewClient(endpoint, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		http:     &http.Client{Timeout: timeout},
	}
}

type request struct {
	Model string `json:"model,omitempty"`
	service.AnnotationRequest
}

func (c *Client) Annotate(ctx context.Context, req service.AnnotationRequest) (service.AnnotationResult, error) {
	var result service.AnnotationResult

	body, err := json.Marshal(request{Model: c.model, AnnotationRequest: req})
	if err != nil {
		return result, fmt.Errorf("encode annotation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return result, fmt.Errorf("build annotation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return result, fmt.Errorf("call annotation endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return result, fmt.Errorf("annotation endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return result, fmt.Errorf("decode annotation response: %w", err)
	}
	return result, nil
}
