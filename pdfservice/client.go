// Package pdfservice talks to the external HTML-to-PDF render function.
// The caller's only obligation is to pass a validated configuration and
// interpret the boolean result; failures come back as {success:false,error}
// and never crash the caller.
package pdfservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/invoiceflow_backend/models"
)

type Client struct {
	baseURL string
	http    *http.Client
}

// Result mirrors the render function's response body.
type Result struct {
	Success     bool   `json:"success"`
	InvoiceID   string `json:"invoiceId,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	PreviewURL  string `json:"previewUrl,omitempty"`
	FilePath    string `json:"filePath,omitempty"`
	Error       string `json:"error,omitempty"`
}

func NewClient() (*Client, error) {
	baseURL := strings.TrimSpace(os.Getenv("PDF_SERVICE_URL"))
	if baseURL == "" {
		return nil, errors.New("PDF_SERVICE_URL is required")
	}
	timeout := 60 * time.Second
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// Render posts the configuration to the render function. Transport and
// remote errors are folded into {Success:false, Error}.
func (c *Client) Render(ctx context.Context, config *models.Configuration) Result {
	payload, err := json.Marshal(config)
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(payload))
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{
			Success: false,
			Error:   fmt.Sprintf("pdf service error %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return Result{Success: false, Error: err.Error()}
	}
	if !result.Success && result.Error == "" {
		result.Error = "pdf service reported failure"
	}
	return result
}

// FetchBytes downloads the rendered document, e.g. to mirror it to GCS.
func (c *Client) FetchBytes(ctx context.Context, downloadURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("pdf download error %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
