// Package translate wraps the machine translation service used by the admin
// bilingual forms. Translation is a convenience action; callers surface
// failures to the user and leave the stored field untouched.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nordvare/nordvare/internal/i18n"
)

// Client wraps interactions with the translation API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type translateRequest struct {
	Text string `json:"text"`
	From string `json:"from"`
	To   string `json:"to"`
}

type translateResponse struct {
	Translated string `json:"translated"`
}

// Translate sends text to the translation service and returns the result.
func (c *Client) Translate(ctx context.Context, text string, from, to i18n.Lang) (string, error) {
	payload, err := json.Marshal(translateRequest{Text: text, From: string(from), To: string(to)})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("translate: service returned status %d", resp.StatusCode)
	}

	var result translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("translate: decode response: %w", err)
	}
	return result.Translated, nil
}
