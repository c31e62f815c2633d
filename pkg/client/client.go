// Package client talks to the tagexplorer HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tagexplorer/backend/pkg/common"
	"github.com/tagexplorer/backend/pkg/export"
)

const (
	DefaultBaseURL = "http://localhost:8080"
	defaultTimeout = 2 * time.Minute
)

// APIError is a non-2xx answer of the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

type Options struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	// RetryDelay is the first backoff delay of the upload pipeline.
	RetryDelay time.Duration
}

type Client struct {
	baseURL    string
	token      string
	http       *http.Client
	retryDelay time.Duration
}

func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = InitialRetryDelay
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		http:       opts.HTTPClient,
		retryDelay: opts.RetryDelay,
	}
}

// UploadTarget is a presigned PUT URL together with the key it writes.
type UploadTarget struct {
	UploadURL  string `json:"upload_url"`
	StorageKey string `json:"storage_key"`
}

type AnalyzeRequest struct {
	StorageKey string `json:"storage_key"`
	FileType   string `json:"file_type"`
	FileName   string `json:"file_name"`
}

// Analysis is the AI suggestion for one file. Fallback is set when the
// server could not reach the model.
type Analysis struct {
	ExistingTags  []string `json:"existingTags"`
	NewTags       []string `json:"newTags"`
	SuggestedName *string  `json:"suggestedName"`
	Fallback      bool     `json:"fallback"`
}

// Tags returns the suggested existing tags followed by the new ones.
func (a Analysis) Tags() []string {
	out := make([]string, 0, len(a.ExistingTags)+len(a.NewTags))
	out = append(out, a.ExistingTags...)
	return append(out, a.NewTags...)
}

type SaveFileRequest struct {
	StorageKey string   `json:"storage_key"`
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Size       *int64   `json:"size,omitempty"`
	Tags       []string `json:"tags"`
}

func (c *Client) UploadURL(ctx context.Context, fileName, contentType string) (UploadTarget, error) {
	var out UploadTarget
	err := c.doJSON(ctx, http.MethodPost, "/api/files/upload-url", map[string]string{
		"file_name":    fileName,
		"content_type": contentType,
	}, &out)
	return out, err
}

// PutObject writes data to a presigned URL.
func (c *Client) PutObject(ctx context.Context, uploadURL, contentType string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode}
	}
	return nil
}

func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (Analysis, error) {
	var out Analysis
	err := c.doJSON(ctx, http.MethodPost, "/api/files/analyze", req, &out)
	return out, err
}

func (c *Client) SaveFile(ctx context.Context, req SaveFileRequest) (common.FileWithTags, error) {
	var out common.FileWithTags
	err := c.doJSON(ctx, http.MethodPost, "/api/files", req, &out)
	return out, err
}

func (c *Client) ListTags(ctx context.Context) ([]common.Tag, error) {
	var out []common.Tag
	err := c.doJSON(ctx, http.MethodGet, "/api/tags", nil, &out)
	return out, err
}

// Export downloads the library in format f into w and returns the file
// name suggested by the server.
func (c *Client) Export(ctx context.Context, f export.Format, w io.Writer) (string, error) {
	q := url.Values{"format": {string(f)}}
	resp, err := c.do(ctx, http.MethodGet, "/api/export?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", err
	}

	name := export.FileName(f, time.Now())
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}
	return name, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// do sends the request and turns non-2xx answers into *APIError. The caller
// closes the body of a successful response.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := &APIError{Status: resp.StatusCode}
	var msg struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&msg) == nil {
		apiErr.Message = msg.Message
		if apiErr.Message == "" {
			apiErr.Message = msg.Error
		}
	}
	return nil, apiErr
}
