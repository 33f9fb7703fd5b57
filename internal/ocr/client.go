// Package ocr is a client for an external image-to-text service. The service
// is best-effort enrichment: callers must treat any failure as "no OCR text",
// never as a pipeline error.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client communicates with the OCR HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type recognizeRequest struct {
	Path  string `json:"path"`
	Pages []int  `json:"pages"`
}

type recognizeResponse struct {
	Pages []struct {
		Page int    `json:"page"`
		Text string `json:"text"`
	} `json:"pages"`
}

// Recognize asks the service to OCR the given 1-based pages of a document and
// returns the recognized text keyed by page number. Pages the service could
// not read are simply absent from the result.
func (c *Client) Recognize(ctx context.Context, path string, pages []int) (map[int]string, error) {
	body, err := json.Marshal(recognizeRequest{Path: path, Pages: pages})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recognize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ocr request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("ocr status %d: %s", resp.StatusCode, string(respBody))
	}

	var result recognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode ocr response: %w", err)
	}
	out := make(map[int]string, len(result.Pages))
	for _, p := range result.Pages {
		out[p.Page] = p.Text
	}
	return out, nil
}

// Close releases any resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
