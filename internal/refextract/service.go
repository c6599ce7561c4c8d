package refextract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"
)

const (
	// ServiceURL is the default reference-extraction endpoint.
	ServiceURL = "https://ref.scholarcy.com/api/references/extract"

	// ServiceInterval is the minimum spacing between extraction requests.
	ServiceInterval = 10 * time.Second
)

// ErrNoPDF indicates the paper has no PDF to extract from.
var ErrNoPDF = errors.New("no PDF attachment")

// Extractor produces the raw reference list of a PDF.
type Extractor interface {
	Extract(ctx context.Context, pdfPath string) (*Result, error)
}

// Service is a client for the remote extraction service.
type Service struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	url        string
	apiKey     string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceURL sets a custom endpoint (for testing).
func WithServiceURL(u string) ServiceOption {
	return func(s *Service) {
		s.url = u
	}
}

// WithServiceLimiter replaces the request limiter.
func WithServiceLimiter(l *rate.Limiter) ServiceOption {
	return func(s *Service) {
		s.limiter = l
	}
}

// NewService creates an extraction service client.
func NewService(apiKey string, opts ...ServiceOption) *Service {
	s := &Service{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		limiter:    rate.NewLimiter(rate.Every(ServiceInterval), 1),
		url:        ServiceURL,
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract uploads the PDF and decodes the returned reference list.
func (s *Service) Extract(ctx context.Context, pdfPath string) (*Result, error) {
	body, contentType, err := multipartBody(pdfPath)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("extraction service error (status %d)", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decoding extraction result: %w", err)
	}
	return &res, nil
}

func multipartBody(pdfPath string) (*bytes.Buffer, string, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(pdfPath)))
	h.Set("Content-Type", "application/pdf")
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("reading PDF: %w", err)
	}

	fields := [][2]string{
		{"document_type", "full_paper"},
		{"resolve_references", "true"},
		{"reference_style", "ensemble"},
		{"engine", "v1"},
	}
	for _, kv := range fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
