package product

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultTimeout = 8 * time.Second
	maxBodyBytes   = 4 << 20

	// MessageNotFound is shown when the API has no record for the identifier.
	MessageNotFound = "Product not found."
	// MessageFetchFailed is shown for transport, status and decoding failures.
	MessageFetchFailed = "Failed to load product. Please try again later."
)

var (
	// ErrMissingBaseURL is returned by NewClient when no API base URL is configured.
	ErrMissingBaseURL = errors.New("product: missing api base url")
	// ErrNotFound is returned when the API answers 404 or with an empty body.
	ErrNotFound = errors.New("product: not found")
	// ErrFetchFailed marks every other fetch failure.
	ErrFetchFailed = errors.New("product: fetch failed")
)

// FetchError describes a failed product read.
type FetchError struct {
	ID         string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("product: fetch %q: status %d: %v", e.ID, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("product: fetch %q: %v", e.ID, e.Err)
}

// Unwrap exposes both ErrFetchFailed and the underlying cause.
func (e *FetchError) Unwrap() []error {
	return []error{ErrFetchFailed, e.Err}
}

// UserMessage maps any fetch error to the text shown to visitors.
func UserMessage(err error) string {
	if errors.Is(err, ErrNotFound) {
		return MessageNotFound
	}
	return MessageFetchFailed
}

// Client reads product records from the product API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger attaches a logger for fetch failures.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs an API client. The base URL is required.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API base used for requests and image URLs.
func (c *Client) BaseURL() string { return c.baseURL }

// Fetch performs a single GET {base}/api/product/{id}. There are no retries.
func (c *Client) Fetch(ctx context.Context, id string) (Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Product{}, ErrNotFound
	}

	endpoint := c.baseURL + "/api/product/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Product{}, c.fail(id, 0, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Product{}, c.fail(id, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.logger.Info("product not found", zap.String("product_id", id), zap.Int("status", resp.StatusCode))
		return Product{}, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Product{}, c.fail(id, resp.StatusCode, errors.New(drainError(resp.Body)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Product{}, c.fail(id, resp.StatusCode, err)
	}
	raw, err := decodeRecord(body)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.logger.Info("product empty response", zap.String("product_id", id))
			return Product{}, err
		}
		return Product{}, c.fail(id, resp.StatusCode, err)
	}
	return Sanitize(raw, id, c.baseURL), nil
}

func (c *Client) fail(id string, status int, err error) error {
	c.logger.Warn("product fetch failed",
		zap.String("product_id", id),
		zap.Int("status", status),
		zap.Error(err),
	)
	return &FetchError{ID: id, StatusCode: status, Err: err}
}

// decodeRecord parses a response body. Empty bodies and falsy JSON values mean
// "no record"; any other non-object is a decoding failure.
func decodeRecord(body []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrNotFound
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	switch val := v.(type) {
	case map[string]any:
		return val, nil
	case nil:
		return nil, ErrNotFound
	case bool:
		if !val {
			return nil, ErrNotFound
		}
	case string:
		if val == "" {
			return nil, ErrNotFound
		}
	case json.Number:
		if f, err := val.Float64(); err == nil && f == 0 {
			return nil, ErrNotFound
		}
	}
	return nil, fmt.Errorf("decode product: unexpected %T payload", v)
}

func drainError(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	msg := strings.TrimSpace(string(b))
	if msg == "" {
		return "unexpected status"
	}
	return msg
}
