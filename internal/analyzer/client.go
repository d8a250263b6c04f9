// Package analyzer talks to the remote food analysis service.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/Veraticus/platewise/internal/model"
)

// DefaultHealthTimeout bounds the health probe independently of the
// analysis timeout.
const DefaultHealthTimeout = 5 * time.Second

var (
	// ErrServiceUnavailable indicates the analysis service could not be reached
	// or reported itself unhealthy.
	ErrServiceUnavailable = errors.New("analysis service unavailable")
	// ErrInvalidResponse indicates a 2xx response that could not be decoded.
	ErrInvalidResponse = errors.New("invalid analysis response")
)

// StatusError is returned for non-2xx analysis responses.
type StatusError struct {
	Status     string
	Body       string
	StatusCode int
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("analysis request failed (status %d %s)", e.StatusCode, e.Status)
	}
	return fmt.Sprintf("analysis request failed (status %d %s): %s", e.StatusCode, e.Status, body)
}

// Client is an HTTP client for the analysis service.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	healthTimeout time.Duration
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       strings.TrimRight(baseURL, "/"),
		healthTimeout: DefaultHealthTimeout,
	}
}

// BaseURL returns the service location.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Analyze uploads one image and returns the decoded response.
func (c *Client) Analyze(ctx context.Context, img model.ImageFile) (*Response, error) {
	body, contentType, err := multipartBody(img)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: failed to send request: %w", ErrServiceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	slog.Debug("Analysis response received",
		"image", img.Name,
		"status", resp.StatusCode,
		"bytes", len(respBody),
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Body:       string(respBody),
		}
	}

	var decoded Response
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return &decoded, nil
}

// HealthStatus is the body of the service health endpoint.
type HealthStatus struct {
	Services map[string]string `json:"services,omitempty"`
	Status   string            `json:"status"`
}

// Health probes the service. Any non-200 answer is ErrServiceUnavailable.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrServiceUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: health check returned status %d", ErrServiceUnavailable, resp.StatusCode)
	}

	status := &HealthStatus{}
	if err := json.Unmarshal(body, status); err != nil {
		// A 200 without a JSON body still counts as healthy.
		status.Status = "ok"
	}
	return status, nil
}

func multipartBody(img model.ImageFile) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, img.Name))
	contentType := img.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
