package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Fetcher retrieves and parses a single page.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*Page, error)
}

// Page is a fetched and parsed listing page.
type Page struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Document is the parsed HTML tree.
	Document *goquery.Document
}

// Client fetches pages over HTTP.
type Client struct {
	http        *resty.Client
	userAgent   string
	headers     map[string]string
	maxBodySize int64
	timeout     time.Duration
	logger      *slog.Logger
	base        *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout bounds every request, including reading the body.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHeaders adds extra request headers.
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithMaxBodySize limits how many body bytes are parsed.
func WithMaxBodySize(size int64) ClientOption {
	return func(c *Client) {
		c.maxBodySize = size
	}
}

// WithHTTPClient sets the underlying http.Client, e.g. an httptest server client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.base = hc
	}
}

// WithClientLogger routes resty's own diagnostics to logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client. Without options it uses a 10 second timeout,
// a browser User-Agent and a 5MB body limit.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		userAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		headers:     make(map[string]string),
		maxBodySize: 5 * 1024 * 1024, // 5MB
		timeout:     10 * time.Second,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.base != nil {
		// resty mutates the client it wraps; keep the caller's untouched.
		hc := *c.base
		c.http = resty.NewWithClient(&hc)
	} else {
		c.http = resty.New()
	}
	c.http.SetTimeout(c.timeout)
	c.http.SetLogger(restyLogger{logger: c.logger})
	c.http.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	c.http.SetHeader("Accept-Language", "en-US,en;q=0.5")
	c.http.SetHeaders(c.headers)
	c.http.SetHeader("User-Agent", c.userAgent)

	return c
}

// Fetch performs a GET request and parses the body as HTML.
// Any status other than 200 is returned as a *StatusError without parsing.
// The body is decoded to UTF-8 using the Content-Type charset, a <meta>
// charset declaration or content sniffing, in that order.
func (c *Client) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return nil, &StatusError{URL: pageURL, Code: resp.StatusCode()}
	}

	decoded, err := charset.NewReader(io.LimitReader(body, c.maxBodySize), resp.Header().Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", pageURL, err)
	}

	root, err := html.Parse(decoded)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	return &Page{
		URL:        pageURL,
		StatusCode: resp.StatusCode(),
		Document:   goquery.NewDocumentFromNode(root),
	}, nil
}

// restyLogger adapts slog to resty.Logger.
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn(fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}
