package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/bilanz/internal/domain/model"
	"github.com/okian/bilanz/internal/domain/validation"
)

const (
	defaultTimeout   = 30 * time.Second
	maxResponseBytes = 32 << 20
)

// Backend runs the analysis pipeline, either in process or remotely.
type Backend interface {
	Analyze(ctx context.Context, raw []validation.RawPeriod) (model.ComparisonSet, error)
	ExportCSV(ctx context.Context, raw []validation.RawPeriod) ([]byte, error)
	ExportPDF(ctx context.Context, raw []validation.RawPeriod) ([]byte, error)
}

// Client is a Backend that calls a running bilanz HTTP API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type periodsRequest struct {
	Periods []validation.RawPeriod `json:"periods"`
}

type ratiosResponse struct {
	Periods []model.DerivedPeriod `json:"periods"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Analyze posts the periods to /api/v1/ratios.
func (c *Client) Analyze(ctx context.Context, raw []validation.RawPeriod) (model.ComparisonSet, error) {
	var set model.ComparisonSet
	body, err := c.post(ctx, "/api/v1/ratios", raw)
	if err != nil {
		return set, err
	}
	var resp ratiosResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return set, fmt.Errorf("%w: decode ratios: %v", ErrRemote, err)
	}
	set, err = model.NewComparisonSet(resp.Periods)
	if err != nil {
		return set, fmt.Errorf("%w: %v", ErrRemote, err)
	}
	return set, nil
}

// ExportCSV posts the periods to /api/v1/export/csv.
func (c *Client) ExportCSV(ctx context.Context, raw []validation.RawPeriod) ([]byte, error) {
	return c.post(ctx, "/api/v1/export/csv", raw)
}

// ExportPDF posts the periods to /api/v1/export/pdf.
func (c *Client) ExportPDF(ctx context.Context, raw []validation.RawPeriod) ([]byte, error) {
	return c.post(ctx, "/api/v1/export/pdf", raw)
}

// post sends raw as JSON and returns the body of a 200 response.
func (c *Client) post(ctx context.Context, path string, raw []validation.RawPeriod) ([]byte, error) {
	payload, err := json.Marshal(periodsRequest{Periods: raw})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrRemote, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemote, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemote, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrRemote, err)
	}
	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if json.Unmarshal(body, &e) == nil && e.Code != "" {
			return nil, fmt.Errorf("%w: %s (%d): %s", ErrRemote, e.Code, resp.StatusCode, e.Message)
		}
		return nil, fmt.Errorf("%w: status %d", ErrRemote, resp.StatusCode)
	}
	return body, nil
}
