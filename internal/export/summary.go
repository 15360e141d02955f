package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charlesng35/resourcedesk/internal/models"
	apperrors "github.com/charlesng35/resourcedesk/pkg/errors"
)

// SummaryClient obtains a short text summary of a request from an external
// service.
type SummaryClient interface {
	Summarize(ctx context.Context, req models.ResourceRequest) (string, error)
}

const (
	defaultSummaryTimeout = 15 * time.Second
	maxSummaryBytes       = 64 << 10
)

// HTTPSummaryClient posts the request as JSON to a configured endpoint and
// expects {"summary": "..."} back.
type HTTPSummaryClient struct {
	url    string
	client *http.Client
}

// NewHTTPSummaryClient builds a summary client. An empty url yields a client
// whose every call fails with EXPORT_FAILED.
func NewHTTPSummaryClient(url string, timeout time.Duration) *HTTPSummaryClient {
	if timeout <= 0 {
		timeout = defaultSummaryTimeout
	}
	return &HTTPSummaryClient{
		url:    strings.TrimSpace(url),
		client: &http.Client{Timeout: timeout},
	}
}

type summaryRequest struct {
	Request models.ResourceRequest `json:"request"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

// Summarize implements SummaryClient. Every failure is reported as
// EXPORT_FAILED so callers can offer a retry.
func (c *HTTPSummaryClient) Summarize(ctx context.Context, req models.ResourceRequest) (string, error) {
	summary, err := c.summarize(ctx, req)
	if err != nil {
		return "", apperrors.ErrExportFailed.WithInternal(err)
	}
	return summary, nil
}

func (c *HTTPSummaryClient) summarize(ctx context.Context, req models.ResourceRequest) (string, error) {
	if c.url == "" {
		return "", errors.New("summary service is not configured")
	}

	payload, err := json.Marshal(summaryRequest{Request: req})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call summary service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSummaryBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("summary service returned %d", resp.StatusCode)
	}

	var out summaryResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	summary := strings.TrimSpace(out.Summary)
	if summary == "" {
		return "", errors.New("summary service returned an empty summary")
	}
	return summary, nil
}
