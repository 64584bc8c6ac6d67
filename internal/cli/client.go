package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// FileInfo mirrors the server's file record JSON.
type FileInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SizeBytes int64     `json:"size_bytes"`
	FolderID  *string   `json:"folder_id"`
	IsTrashed bool      `json:"is_trashed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Usage mirrors the server's usage report JSON.
type Usage struct {
	UsedBytes      int64   `json:"used_bytes"`
	CeilingBytes   int64   `json:"ceiling_bytes"`
	AvailableBytes int64   `json:"available_bytes"`
	UsedPercent    float64 `json:"used_percent"`
	UsedHuman      string  `json:"used_human"`
	CeilingHuman   string  `json:"ceiling_human"`
}

// Client talks to a ZenVault server.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient creates a client for the given server and bearer token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL:    baseURL,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// Upload sends a local file and returns the created record.
func (c *Client) Upload(ctx context.Context, path, folderID string) (*FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if folderID != "" {
		if err := w.WriteField("folder_id", folderID); err != nil {
			return nil, fmt.Errorf("failed to build form: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/files", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	info := &FileInfo{}
	if err := c.do(req, info); err != nil {
		return nil, err
	}
	return info, nil
}

// List returns the caller's files (active, or trashed with trashed=true).
func (c *Client) List(ctx context.Context, trashed bool) ([]FileInfo, error) {
	url := c.BaseURL + "/api/files"
	if trashed {
		url += "?trashed=true"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Files []FileInfo `json:"files"`
	}
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return result.Files, nil
}

// GetUsage returns the caller's quota consumption.
func (c *Client) GetUsage(ctx context.Context) (*Usage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/usage", nil)
	if err != nil {
		return nil, err
	}

	usage := &Usage{}
	if err := c.do(req, usage); err != nil {
		return nil, err
	}
	return usage, nil
}

// Trash soft-deletes a file.
func (c *Client) Trash(ctx context.Context, id string) (*FileInfo, error) {
	return c.lifecycle(ctx, id, "trash")
}

// Restore brings a file back out of the trash.
func (c *Client) Restore(ctx context.Context, id string) (*FileInfo, error) {
	return c.lifecycle(ctx, id, "restore")
}

func (c *Client) lifecycle(ctx context.Context, id, action string) (*FileInfo, error) {
	url := fmt.Sprintf("%s/api/files/%s/%s", c.BaseURL, id, action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, nil)
	if err != nil {
		return nil, err
	}

	info := &FileInfo{}
	if err := c.do(req, info); err != nil {
		return nil, err
	}
	return info, nil
}

// Purge permanently deletes a trashed file.
func (c *Client) Purge(ctx context.Context, id string) error {
	url := fmt.Sprintf("%s/api/files/%s", c.BaseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// Download fetches a file's bytes into dest.
func (c *Client) Download(ctx context.Context, id, dest string) error {
	url := fmt.Sprintf("%s/api/files/%s/download", c.BaseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(dest)
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return nil
}

// do executes a request with auth and decodes the JSON response into
// out when out is non-nil.
func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func apiError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("server: %s (HTTP %d)", body.Error, resp.StatusCode)
	}
	return fmt.Errorf("server returned HTTP %d", resp.StatusCode)
}
