// Package webreg implements the registry contract by scraping the
// federation's HTML interface. The site has no public API: access is a
// form login with a CSRF token, then server-rendered search, roster, and
// member detail pages.
//
// Read methods are stateless apart from the login session: input becomes a
// request, the response document becomes output structs. Each method
// validates the response shape before extracting from it.
package webreg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"meikan/internal/logging"
	"meikan/internal/registry"
)

// Client scrapes the federation registry site.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

var _ registry.Client = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client. The replacement must
// carry a cookie jar or the login session will be lost.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a registry scraping client.
func New(baseURL, username, password string, timeout time.Duration, requestsPerMinute int, logger *slog.Logger, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("registry base url required")
	}
	if strings.TrimSpace(username) == "" {
		return nil, errors.New("registry username required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	client := &Client{
		baseURL:  baseURL,
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1),
		logger:  logging.NewComponentLogger(logger, "webreg"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// get performs a rate-limited GET and parses the response body.
func (c *Client) get(ctx context.Context, rawURL string) (*goquery.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, registry.Wrap(registry.ErrNetwork, "rate limit", "", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, registry.Wrap(registry.ErrNetwork, "create request", rawURL, err)
	}
	return c.do(req)
}

// postForm performs a rate-limited form POST and parses the response body.
func (c *Client) postForm(ctx context.Context, rawURL string, form url.Values) (*goquery.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, registry.Wrap(registry.ErrNetwork, "rate limit", "", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, registry.Wrap(registry.ErrNetwork, "create request", rawURL, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*goquery.Document, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, registry.Wrap(registry.ErrNetwork, "http request", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, registry.Wrap(registry.ErrAuth, "http request", fmt.Sprintf("%s returned %d", req.URL.Path, resp.StatusCode), nil)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, registry.Wrap(registry.ErrNetwork, "http request",
			fmt.Sprintf("%s returned %d: %s", req.URL.Path, resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, registry.Wrap(registry.ErrParse, "parse html", req.URL.Path, err)
	}
	return doc, nil
}

// resolveURL turns a scraped (possibly relative) href into an absolute URL.
func (c *Client) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
