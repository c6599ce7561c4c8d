package zotero

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the Zotero Web API root.
	BaseURL = "https://api.zotero.org"

	// APIVersion is sent with every request.
	APIVersion = "3"

	// pageSize is the maximum page size the API accepts.
	pageSize = 100
)

// Item is the subset of a Zotero item the bridge uses.
type Item struct {
	Key  string `json:"key"`
	Data struct {
		Key         string   `json:"key"`
		Title       string   `json:"title"`
		DOI         string   `json:"DOI"`
		Collections []string `json:"collections"`
	} `json:"data"`
}

// Collection is a Zotero collection.
type Collection struct {
	Key  string `json:"key"`
	Data struct {
		Key              string    `json:"key"`
		Name             string    `json:"name"`
		ParentCollection parentKey `json:"parentCollection"`
	} `json:"data"`
}

// Parent returns the parent collection key, or "" for a top-level collection.
func (c Collection) Parent() string {
	return string(c.Data.ParentCollection)
}

// parentKey decodes parentCollection, which the API sends as either a
// collection key or false.
type parentKey string

func (p *parentKey) UnmarshalJSON(data []byte) error {
	if string(data) == "null" || string(data) == "false" {
		*p = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("cannot unmarshal %s into parent collection key", string(data))
	}
	*p = parentKey(s)
	return nil
}

// Client is a minimal Zotero Web API client.
type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	baseURL     string
	libraryPath string // users/<id> or groups/<id>
	apiKey      string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

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

// NewClient creates a client for the library of the given type ("user" or
// "group") and id.
func NewClient(libraryID, libraryType, apiKey string, opts ...ClientOption) *Client {
	kind := "users"
	if strings.HasPrefix(strings.ToLower(libraryType), "group") {
		kind = "groups"
	}
	c := &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		limiter:     rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
		baseURL:     BaseURL,
		libraryPath: kind + "/" + url.PathEscape(libraryID),
		apiKey:      apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Item fetches a single item by key.
func (c *Client) Item(ctx context.Context, key string) (*Item, error) {
	var it Item
	if err := c.get(ctx, "/items/"+url.PathEscape(key), nil, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// Collection fetches a single collection by key.
func (c *Client) Collection(ctx context.Context, key string) (*Collection, error) {
	var col Collection
	if err := c.get(ctx, "/collections/"+url.PathEscape(key), nil, &col); err != nil {
		return nil, err
	}
	return &col, nil
}

// Collections lists every collection in the library.
func (c *Client) Collections(ctx context.Context) ([]Collection, error) {
	var all []Collection
	for start := 0; ; start += pageSize {
		var page []Collection
		if err := c.get(ctx, "/collections", pageQuery(start), &page); err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}

// CollectionItems lists the top-level items of a collection.
func (c *Client) CollectionItems(ctx context.Context, key string) ([]Item, error) {
	var all []Item
	for start := 0; ; start += pageSize {
		var page []Item
		if err := c.get(ctx, "/collections/"+url.PathEscape(key)+"/items/top", pageQuery(start), &page); err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}

func pageQuery(start int) url.Values {
	q := url.Values{}
	q.Set("limit", fmt.Sprint(pageSize))
	q.Set("start", fmt.Sprint(start))
	return q
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	u := c.baseURL + "/" + c.libraryPath + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Zotero-API-Version", APIVersion)
	if c.apiKey != "" {
		req.Header.Set("Zotero-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("zotero request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("zotero API error (status %d) for %s", resp.StatusCode, path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
