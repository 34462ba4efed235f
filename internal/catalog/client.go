package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/hjiang13/bibtexmate/internal/doi"
	"github.com/hjiang13/bibtexmate/internal/reference"
)

const (
	// BaseURL is the Crossref REST API base URL.
	BaseURL = "https://api.crossref.org"

	// ResolverURL is the DOI resolver used for content negotiation.
	ResolverURL = "https://doi.org"

	// DefaultTimeout bounds every single catalog request.
	DefaultTimeout = 10 * time.Second

	// RateLimit is the default requests per second across all callers of a Client.
	RateLimit = 10.0

	// Version is reported in the User-Agent.
	Version = "0.3.0"

	maxBodyBytes = 8 << 20
)

// Client is a rate-limited HTTP client for the catalog and DOI resolver.
// It is safe for concurrent use; a single attempt is made per request.
type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	baseURL     string
	resolverURL string
	mailto      string
	timeout     time.Duration
	logger      zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom catalog base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithResolverURL sets a custom DOI resolver URL (for testing).
func WithResolverURL(u string) ClientOption {
	return func(c *Client) {
		c.resolverURL = strings.TrimRight(u, "/")
	}
}

// WithMailto sets the contact address sent to the catalog's polite pool.
func WithMailto(addr string) ClientOption {
	return func(c *Client) {
		c.mailto = addr
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit sets the shared request rate in requests per second.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a new catalog client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:  &http.Client{},
		limiter:     rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:     BaseURL,
		resolverURL: ResolverURL,
		timeout:     DefaultTimeout,
		logger:      zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) userAgent() string {
	if c.mailto != "" {
		return fmt.Sprintf("bibmate/%s (mailto:%s)", Version, c.mailto)
	}
	return "bibmate/" + Version
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response, id string) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &APIError{StatusCode: resp.StatusCode, Code: "not_found", Message: "HTTP 404", DOI: id}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &APIError{StatusCode: resp.StatusCode, Code: "rate_limited", Message: "HTTP 429", DOI: id}
	case resp.StatusCode >= 400:
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       "api_error",
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
			DOI:        id,
		}
	}
	return nil
}

// get performs one rate-limited, time-bounded GET and returns the body.
func (c *Client) get(ctx context.Context, endpoint, accept, id string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: request timed out after %s", ErrNetworkError, c.timeout)
		}
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("url", endpoint).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("catalog request")

	if err := checkHTTPErrors(resp, id); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrNetworkError, err)
	}
	return body, nil
}

// escapeDOI escapes each path segment of a DOI, keeping its slashes.
func escapeDOI(id string) string {
	parts := strings.Split(id, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// Search queries the catalog for works matching a free-text title and
// returns up to rows candidates in catalog order. Items without a DOI or
// title are skipped.
func (c *Client) Search(ctx context.Context, title string, rows int) ([]Candidate, error) {
	if rows <= 0 {
		rows = 1
	}
	params := url.Values{}
	params.Set("query.bibliographic", title)
	params.Set("rows", strconv.Itoa(rows))
	params.Set("select", "DOI,title")
	if c.mailto != "" {
		params.Set("mailto", c.mailto)
	}

	body, err := c.get(ctx, c.baseURL+"/works?"+params.Encode(), "application/json", "")
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding search results: %v", ErrInvalidResponse, err)
	}

	candidates := make([]Candidate, 0, len(resp.Message.Items))
	for _, item := range resp.Message.Items {
		if item.DOI == "" || len(item.Title) == 0 || strings.TrimSpace(item.Title[0]) == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			DOI:   doi.Normalize(item.DOI),
			Title: strings.TrimSpace(item.Title[0]),
		})
	}
	return candidates, nil
}

// Render fetches the citation text of a DOI in the given format via
// content negotiation against the resolver.
func (c *Client) Render(ctx context.Context, id string, format Format) (string, error) {
	if !format.Valid() {
		return "", fmt.Errorf("%w: %d", ErrUnsupportedFormat, int(format))
	}
	id = doi.Normalize(id)
	if id == "" {
		return "", fmt.Errorf("%w: empty DOI", ErrNotFound)
	}

	body, err := c.get(ctx, c.resolverURL+"/"+escapeDOI(id), format.Accept(), id)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return "", fmt.Errorf("%w: empty %s rendering for %s", ErrInvalidResponse, format, id)
	}
	return text, nil
}

// References returns the reference list the catalog holds for a work.
func (c *Client) References(ctx context.Context, id string) ([]WorkReference, error) {
	id = doi.Normalize(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty DOI", ErrNotFound)
	}

	endpoint := c.baseURL + "/works/" + escapeDOI(id)
	if c.mailto != "" {
		endpoint += "?" + url.Values{"mailto": {c.mailto}}.Encode()
	}

	body, err := c.get(ctx, endpoint, "application/json", id)
	if err != nil {
		return nil, err
	}

	var resp workResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding work: %v", ErrInvalidResponse, err)
	}

	refs := make([]WorkReference, 0, len(resp.Message.Reference))
	for _, r := range resp.Message.Reference {
		ref := WorkReference{
			Key:          r.Key,
			DOI:          doi.Normalize(r.DOI),
			ArticleTitle: r.ArticleTitle,
			VolumeTitle:  r.VolumeTitle,
			JournalTitle: r.JournalTitle,
			Year:         r.Year,
			Unstructured: r.Unstructured,
		}
		if r.Author != "" {
			ref.Authors = []reference.Author{{Last: r.Author}}
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
