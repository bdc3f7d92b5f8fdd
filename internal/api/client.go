package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// Client talks to the review-tracking service. It performs the two network
// operations the orchestration core depends on: the paginated read and the
// multipart upload/re-query. Cancellation travels through the request
// context; a cancelled call surfaces as context.Canceled, never as a
// generic network error.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *log.Logger
}

// NewClient creates a client for the given base URL and bearer token.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// SetLogger sets the logger for debug output
func (c *Client) SetLogger(logger *log.Logger) {
	c.logger = logger
}

// FetchPage retrieves one page of records. An empty query browses the full
// dataset; a non-empty query searches by title or conference name.
func (c *Client) FetchPage(ctx context.Context, query string, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	u := fmt.Sprintf("%s/api/v1/file/file-get?q=%s&page=%d", c.baseURL, url.QueryEscape(query), page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	var wire fileGetWire
	if err := c.doJSON(req, &wire); err != nil {
		return nil, err
	}
	return toPage(wire.Data, wire.TotalPage), nil
}

// Upload sends the spreadsheet and returns the first page of the view the
// server derives from it.
func (c *Client) Upload(ctx context.Context, payload *UploadPayload) (*Page, error) {
	return c.postUpload(ctx, payload, 1)
}

// RequeryUpload replays a previous upload with a different page parameter.
// The server recomputes the paginated view from the same file bytes.
func (c *Client) RequeryUpload(ctx context.Context, payload *UploadPayload, page int) (*Page, error) {
	return c.postUpload(ctx, payload, page)
}

func (c *Client) postUpload(ctx context.Context, payload *UploadPayload, page int) (*Page, error) {
	if payload == nil {
		return nil, fmt.Errorf("upload payload cannot be nil")
	}
	if page < 1 {
		page = 1
	}
	u := fmt.Sprintf("%s/api/v1/file/file-upload?page=%d", c.baseURL, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload.Body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", payload.ContentType)

	var wire fileUploadWire
	if err := c.doJSON(req, &wire); err != nil {
		return nil, err
	}
	return toPage(wire.Response, wire.TotalPage), nil
}

// doJSON executes the request with auth headers and decodes the response.
func (c *Client) doJSON(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Unwrap so callers can distinguish a cancelled round trip from a
		// genuine transport failure with errors.Is.
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("request %s: %w", req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		if c.logger != nil {
			c.logger.Printf("api: %s %s -> %v", req.Method, req.URL.Path, err)
		}
		return err
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// checkStatus returns a typed error for non-2xx responses.
func checkStatus(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("server error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
}

// UploadPayload is the exact multipart body of an upload, retained so the
// same bytes can be replayed with a different page parameter.
type UploadPayload struct {
	Body        []byte
	ContentType string
	FileName    string
}

// NewUploadPayload builds the multipart form the file-upload endpoint
// expects, with the spreadsheet under the "file" field.
func NewUploadPayload(fileName string, content []byte) (*UploadPayload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(fileName))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}
	return &UploadPayload{
		Body:        buf.Bytes(),
		ContentType: w.FormDataContentType(),
		FileName:    filepath.Base(fileName),
	}, nil
}
