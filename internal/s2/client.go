// Package s2 resolves paper metadata from the Semantic Scholar API.
package s2

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/file-citas/zotgraph/internal/metrics"
	"github.com/file-citas/zotgraph/internal/paper"
)

const (
	// BaseURL is the Semantic Scholar API root.
	BaseURL = "https://api.semanticscholar.org"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// SearchLimit is the number of candidates requested from title search.
	SearchLimit = 10
)

// Client is a rate-limited Semantic Scholar client.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	policy     RetryPolicy
	apiKey     string
	baseURL    string
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key for authenticated requests.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithLimiter replaces the process-wide limiter. A nil limiter keeps the
// shared one.
func WithLimiter(l *rate.Limiter) ClientOption {
	return func(c *Client) {
		if l == nil {
			l = sharedLimiter
		}
		c.limiter = l
	}
}

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(c *Client) {
		c.policy = p
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a client that shares the process-wide limiter.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    sharedLimiter,
		policy:     DefaultRetryPolicy(),
		baseURL:    BaseURL,
		logger:     slog.Default(),
	}

	if key := os.Getenv("S2_API_KEY"); key != "" {
		c.apiKey = key
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Paper resolves id to a full metadata record. Free-text ids are searched
// by title and the top hit is re-resolved by its id.
func (c *Client) Paper(ctx context.Context, id string) (*paper.Metadata, error) {
	pid := ParsePaperID(id)
	if pid.Value == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	if pid.IsTitle() {
		return c.SearchTitle(ctx, pid.Value)
	}

	md, err := c.paperByID(ctx, pid)
	c.observe(err)
	return md, err
}

// SearchTitle returns the full record of the best search hit for title.
func (c *Client) SearchTitle(ctx context.Context, title string) (*paper.Metadata, error) {
	q := url.Values{}
	q.Set("query", title)
	q.Set("limit", fmt.Sprint(SearchLimit))
	q.Set("fields", "title")

	var resp searchResponse
	err := c.do(ctx, c.baseURL+"/graph/v1/paper/search?"+q.Encode(), "", func(body []byte) error {
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		return nil
	})
	if err != nil {
		c.observe(err)
		return nil, err
	}
	if len(resp.Data) == 0 || resp.Data[0].PaperID == "" {
		c.observe(ErrNotFound)
		return nil, fmt.Errorf("%w: title %q", ErrNotFound, title)
	}

	c.logger.Debug("title search hit", "query", title, "paperId", resp.Data[0].PaperID, "title", resp.Data[0].Title)
	md, err := c.paperByID(ctx, PaperIdentifier{Type: "S2", Value: resp.Data[0].PaperID})
	c.observe(err)
	return md, err
}

func (c *Client) paperByID(ctx context.Context, pid PaperIdentifier) (*paper.Metadata, error) {
	var md *paper.Metadata
	err := c.do(ctx, c.baseURL+"/v1/paper/"+pathID(pid), pid.Value, func(body []byte) error {
		var err error
		md, err = decodePaper(body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return md, nil
}

// pathID renders pid for the v1 paper path. Bare DOIs are accepted as is.
func pathID(pid PaperIdentifier) string {
	v := pid.String()
	if pid.Type == "DOI" {
		v = pid.Value
	}
	return strings.ReplaceAll(url.PathEscape(v), "%2F", "/")
}

// do performs a GET under the retry policy, waiting on the limiter before
// every attempt, and hands a successful body to decode.
func (c *Client) do(ctx context.Context, u, paperID string, decode func([]byte) error) error {
	return c.policy.Do(ctx, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("x-api-key", c.apiKey)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		metrics.ResolverLatency.Observe(time.Since(start).Seconds())
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return fmt.Errorf("%w: %v", ErrTimeout, err)
			}
			return fmt.Errorf("%w: %v", ErrNetworkError, err)
		}
		defer resp.Body.Close()

		if err := checkHTTPErrors(resp, paperID); err != nil {
			return err
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
		return decode(body)
	}, func(attempt int, err error) {
		metrics.ResolverRetries.Inc()
		c.logger.Warn("retrying metadata request", "url", u, "attempt", attempt, "error", err)
	})
}

// checkHTTPErrors maps the response status onto the error taxonomy.
func checkHTTPErrors(resp *http.Response, paperID string) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, paperID)
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrForbidden, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode == http.StatusGatewayTimeout || resp.StatusCode == http.StatusRequestTimeout:
		return fmt.Errorf("%w: status %d", ErrTimeout, resp.StatusCode)
	case resp.StatusCode >= 400:
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			PaperID:    paperID,
		}
	}
	return nil
}

func (c *Client) observe(err error) {
	switch {
	case err == nil:
		metrics.ResolverRequests.WithLabelValues("ok").Inc()
	case IsNotFound(err):
		metrics.ResolverRequests.WithLabelValues("not_found").Inc()
	default:
		metrics.ResolverRequests.WithLabelValues("error").Inc()
	}
}
