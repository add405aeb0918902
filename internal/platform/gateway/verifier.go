package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// KeyVerifier decides whether a plaintext API key is acceptable. Any returned
// error means the key is rejected.
type KeyVerifier interface {
	Verify(ctx context.Context, apiKey string) error
}

// HTTPVerifier calls the secrets service's verification endpoint. Transport
// errors, timeouts, and non-2xx responses all count as rejection.
type HTTPVerifier struct {
	URL    string
	Client *http.Client
}

func NewHTTPVerifier(baseURL string, timeout time.Duration) HTTPVerifier {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return HTTPVerifier{
		URL:    baseURL + "/internal/verify",
		Client: &http.Client{Timeout: timeout},
	}
}

func (v HTTPVerifier) Verify(ctx context.Context, apiKey string) error {
	body, err := json.Marshal(map[string]string{"apiKey": apiKey})
	if err != nil {
		return fmt.Errorf("encode verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.Client.Do(req)
	if err != nil {
		return fmt.Errorf("verify call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("verifier rejected key: status %d", resp.StatusCode)
	}
	return nil
}
