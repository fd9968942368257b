// Package imagehost implements the external image hosting client. Uploads
// are forwarded as-is; the host's CDN URL is the only thing persisted.
package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

func NewClient(httpClient *http.Client, endpoint, apiKey string) *Client {
	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		apiKey:     apiKey,
	}
}

// uploadResponse is the subset of the host's response we consume.
type uploadResponse struct {
	Data struct {
		URL string `json:"url"`
	} `json:"data"`
	Success bool `json:"success"`
}

// Upload posts the payload as multipart form data and returns the durable
// URL assigned by the host.
func (c *Client) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if c.apiKey != "" {
		if err := writer.WriteField("key", c.apiKey); err != nil {
			return "", fmt.Errorf("writing api key field: %w", err)
		}
	}

	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("writing image payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("closing multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading upload response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image host returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed uploadResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("parsing upload response: %w", err)
	}
	if parsed.Data.URL == "" {
		return "", fmt.Errorf("image host response missing url")
	}

	return parsed.Data.URL, nil
}
