package httpsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/saviobatista/ballometer-tracker/internal/parser"
	"github.com/saviobatista/ballometer-tracker/internal/types"
)

const (
	pathBefore = "/store/before"
	pathNow    = "/store/now"

	// maxBody caps a response body; a full-day trace at 1 Hz is well under it
	maxBody = 64 << 20
)

// Client fetches the cold-load history and live samples from the data backend
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the backend at baseURL
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchBefore requests the recorded trace
func (c *Client) FetchBefore(ctx context.Context) (*types.ColdPayload, error) {
	body, err := c.get(ctx, pathBefore)
	if err != nil {
		return nil, err
	}
	return parser.ParseColdPayload(body)
}

// FetchNow requests the latest sample
func (c *Client) FetchNow(ctx context.Context) (*types.LiveSample, error) {
	body, err := c.get(ctx, pathNow)
	if err != nil {
		return nil, err
	}
	return parser.ParseLiveSample(body)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %s", path, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return body, nil
}
