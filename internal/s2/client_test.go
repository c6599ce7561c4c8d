package s2

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"golang.org/x/time/rate"
)

const p1 = "0123456789abcdef0123456789abcdef01234567"

func newTestClient(t *testing.T, h http.Handler, opts ...ClientOption) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	base := []ClientOption{
		WithBaseURL(srv.URL),
		WithLimiter(rate.NewLimiter(rate.Inf, 1)),
		WithRetryPolicy(RetryPolicy{MaxAttempts: 3}),
	}
	return NewClient(append(base, opts...)...)
}

func TestNewClient_SharesLimiter(t *testing.T) {
	a, b := NewClient(), NewClient(WithAPIKey("k"))
	if a.limiter != SharedLimiter() || b.limiter != SharedLimiter() {
		t.Fatal("clients built without WithLimiter do not share the process limiter")
	}
	if c := NewClient(WithLimiter(nil)); c.limiter != SharedLimiter() {
		t.Error("WithLimiter(nil) dropped the process limiter")
	}

	own := rate.NewLimiter(rate.Inf, 1)
	if c := NewClient(WithLimiter(own)); c.limiter != own {
		t.Error("WithLimiter() ignored")
	}
	if SharedLimiter().Limit() != rate.Every(DefaultInterval) {
		t.Errorf("SharedLimiter().Limit() = %v", SharedLimiter().Limit())
	}
}

func TestClient_Paper(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/paper/"+p1 {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{
			"paperId": "`+p1+`",
			"title": "Graph Things",
			"year": 2010,
			"abstract": null,
			"authors": [{"authorId": "1", "name": "Ada"}, {"name": ""}],
			"citations": [{"paperId": "c1", "title": "Later", "year": 2020, "isInfluential": true}],
			"references": [{"paperId": null, "title": "Unknown"}, {"paperId": "r1", "title": "Earlier", "year": "bad"}, {"paperId": "r2", "title": "Also earlier"}]
		}`)
	}))

	md, err := c.Paper(context.Background(), p1)
	if err != nil {
		t.Fatalf("Paper() error = %v", err)
	}
	if md.Title != "Graph Things" || md.Year == nil || *md.Year != 2010 {
		t.Errorf("Paper() = %+v", md)
	}
	if md.Abstract != nil {
		t.Errorf("Abstract = %v, want nil", *md.Abstract)
	}
	if len(md.Authors) != 1 || md.Authors[0].Name != "Ada" {
		t.Errorf("Authors = %+v", md.Authors)
	}
	if len(md.Citations) != 1 || !md.Citations[0].IsInfluential {
		t.Errorf("Citations = %+v", md.Citations)
	}
	// The entry without an id and the entry with a malformed year are dropped.
	if len(md.References) != 1 || md.References[0].PaperID != "r2" {
		t.Errorf("References = %+v", md.References)
	}
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"not found", http.StatusNotFound, "", IsNotFound},
		{"error body", http.StatusOK, `{"error": "Paper not found"}`, IsNotFound},
		{"server error", http.StatusInternalServerError, "", func(err error) bool {
			var apiErr *APIError
			return errors.As(err, &apiErr) && apiErr.StatusCode == 500
		}},
		{"garbage", http.StatusOK, `not json`, func(err error) bool { return errors.Is(err, ErrInvalidResponse) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			_, err := c.Paper(context.Background(), p1)
			if err == nil || !tt.check(err) {
				t.Fatalf("Paper() error = %v", err)
			}
			if calls.Load() != 1 {
				t.Errorf("non-retryable error made %d calls, want 1", calls.Load())
			}
		})
	}
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusGatewayTimeout)
		default:
			fmt.Fprint(w, `{"paperId": "`+p1+`", "title": "ok"}`)
		}
	}))

	md, err := c.Paper(context.Background(), p1)
	if err != nil {
		t.Fatalf("Paper() error = %v", err)
	}
	if md.Title != "ok" || calls.Load() != 3 {
		t.Errorf("title=%q calls=%d", md.Title, calls.Load())
	}
}

func TestClient_RetryBudgetExhausted(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := c.Paper(context.Background(), p1)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("Paper() error = %v, want ErrForbidden", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestClient_SearchTitle(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/graph/v1/paper/search":
			if got := r.URL.Query().Get("query"); got != "graph things" {
				t.Errorf("query = %q", got)
			}
			fmt.Fprint(w, `{"total": 2, "data": [{"paperId": "`+p1+`", "title": "Graph Things"}, {"paperId": "x", "title": "Other"}]}`)
		case r.URL.Path == "/v1/paper/"+p1:
			fmt.Fprint(w, `{"paperId": "`+p1+`", "title": "Graph Things", "references": []}`)
		default:
			http.NotFound(w, r)
		}
	}))

	md, err := c.Paper(context.Background(), "graph things")
	if err != nil {
		t.Fatalf("Paper() error = %v", err)
	}
	if md.PaperID != p1 {
		t.Errorf("PaperID = %q, want %q", md.PaperID, p1)
	}
}

func TestClient_SearchNoHits(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total": 0, "data": []}`)
	}))
	if _, err := c.SearchTitle(context.Background(), "nothing"); !IsNotFound(err) {
		t.Errorf("SearchTitle() error = %v, want not found", err)
	}
}

func TestClient_DOIPath(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v1/paper/10.1145/") {
			t.Errorf("path = %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"paperId": "`+p1+`", "title": "By DOI"}`)
	}))
	if _, err := c.Paper(context.Background(), "https://doi.org/10.1145/3133956"); err != nil {
		t.Fatalf("Paper() error = %v", err)
	}
}
