// Package portal is a client for the agency's observation data portal.
// It drives the portal's HTML pages and form endpoints: station and
// element discovery, session acquisition, the rendered daily table,
// and the CSV download workflow.
package portal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Endpoints are the portal URLs. They are injected at construction so
// tests and mirrors can substitute a local server.
type Endpoints struct {
	// TableView renders the daily observation table for a station.
	TableView string
	// Station is the station/prefecture selection page.
	Station string
	// Element is the aggregation-period/element selection page.
	Element string
	// CSVTable serves the observation CSV download.
	CSVTable string
	// DownloadIndex is the download top page carrying the session id.
	DownloadIndex string
}

// DefaultEndpoints returns the live portal URLs.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		TableView:     "https://www.data.jma.go.jp/obd/stats/etrn/view/daily_s1.php",
		Station:       "https://www.data.jma.go.jp/gmd/risk/obsdl/top/station",
		Element:       "https://www.data.jma.go.jp/gmd/risk/obsdl/top/element",
		CSVTable:      "https://www.data.jma.go.jp/gmd/risk/obsdl/show/table",
		DownloadIndex: "https://www.data.jma.go.jp/gmd/risk/obsdl/index.php",
	}
}

// DefaultUserAgent is the user agent string used for portal requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// ErrMissingElement is returned when an expected element or table is
// absent from the portal markup: either the markup changed or the
// requested data does not exist.
var ErrMissingElement = errors.New("expected element not found in portal markup")

// ErrHTTP wraps a non-2xx portal response.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// Client fetches and parses portal pages. Calls are synchronous and
// independent; the only cross-call state is the cookie jar and the
// request-scoped session id the caller threads through DownloadCSV.
type Client struct {
	endpoints Endpoints
	http      *http.Client
}

// New creates a client for the given endpoints with a default HTTP
// client (cookie jar, 30s timeout).
func New(ep Endpoints) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		endpoints: ep,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}
}

// NewWithHTTPClient creates a client with a caller-supplied HTTP
// client, for custom timeouts or transports.
func NewWithHTTPClient(ep Endpoints, hc *http.Client) *Client {
	return &Client{endpoints: ep, http: hc}
}

// doGet issues a GET and returns the response body. The caller closes
// the body.
func (c *Client) doGet(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "text/html, */*")
	return c.do(req)
}

// doPostForm issues a form-encoded POST and returns the response body.
// The caller closes the body.
func (c *Client) doPostForm(ctx context.Context, rawURL string, form url.Values) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html, text/csv, */*")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (io.ReadCloser, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}
	return resp.Body, nil
}

// getDocument GETs a UTF-8 HTML page and parses it.
func (c *Client) getDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	body, err := c.doGet(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}
	return doc, nil
}

// postDocument POSTs a form to a UTF-8 HTML page and parses the result.
func (c *Client) postDocument(ctx context.Context, rawURL string, form url.Values) (*goquery.Document, error) {
	body, err := c.doPostForm(ctx, rawURL, form)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}
	return doc, nil
}
