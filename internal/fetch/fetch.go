package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"

	"github.com/hyperifyio/pagescrape/internal/cache"
)

// Chooser picks a user agent for each request.
type Chooser interface {
	Pick() string
}

// Page is a fetched HTML document with its body decoded to UTF-8.
type Page struct {
	URL         string
	ContentType string
	Body        []byte
	// FromCache is set when the server answered 304 and the body came from disk.
	FromCache bool
}

// Client issues GET requests with an optional timeout, bounded retry on
// transient errors and an optional on-disk cache.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// Agents, when set, overrides UserAgent per request.
	Agents Chooser
	// MaxAttempts includes the initial attempt. Values below 1 mean 1.
	MaxAttempts int
	// PerRequestTimeout bounds each attempt. Zero disables it.
	PerRequestTimeout time.Duration
	Cache             *cache.HTTPCache
	// RedirectMaxHops caps redirect following. Zero means 5.
	RedirectMaxHops int
}

// ErrUnsupportedContentType is returned for responses that are not HTML.
var ErrUnsupportedContentType = errors.New("unsupported content type")

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	if e.Code >= 500 {
		return fmt.Sprintf("server error: %d", e.Code)
	}
	return fmt.Sprintf("unexpected status: %d", e.Code)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirect
		return &base
	}
	return &http.Client{CheckRedirect: c.checkRedirect}
}

// PickUserAgent returns the agent the next request would send: a choice from
// Agents when set, otherwise UserAgent.
func (c *Client) PickUserAgent() string {
	if c.Agents != nil {
		if ua := c.Agents.Pick(); ua != "" {
			return ua
		}
	}
	return c.UserAgent
}

// Get fetches rawURL and returns the page decoded to UTF-8. The charset comes
// from the Content-Type header, a BOM or a <meta> declaration.
func (c *Client) Get(ctx context.Context, rawURL string) (Page, error) {
	var etag, lastMod string
	if c.Cache != nil {
		if e, err := c.Cache.Lookup(rawURL); err == nil {
			etag, lastMod = e.ETag, e.LastModified
		}
	}
	attempts := c.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return Page{}, ctx.Err()
			case <-time.After(time.Duration(i) * 200 * time.Millisecond):
			}
		}
		res, err := c.tryOnce(ctx, rawURL, etag, lastMod)
		if err != nil {
			lastErr = err
			if !isTransient(err) {
				break
			}
			continue
		}
		return c.finish(rawURL, res)
	}
	return Page{}, lastErr
}

type response struct {
	status       int
	contentType  string
	etag         string
	lastModified string
	body         []byte
}

func (c *Client) finish(rawURL string, res response) (Page, error) {
	page := Page{URL: rawURL, ContentType: res.contentType, Body: res.body}
	if res.status == http.StatusNotModified {
		if c.Cache == nil {
			return Page{}, &StatusError{Code: res.status}
		}
		e, err := c.Cache.Lookup(rawURL)
		if err != nil {
			return Page{}, fmt.Errorf("load cached meta: %w", err)
		}
		body, err := c.Cache.Body(rawURL)
		if err != nil {
			return Page{}, fmt.Errorf("load cached body: %w", err)
		}
		page.ContentType, page.Body, page.FromCache = e.ContentType, body, true
	} else if c.Cache != nil {
		// The page is still usable without a cache entry.
		if err := c.Cache.Save(cache.Entry{
			URL:          rawURL,
			ContentType:  res.contentType,
			ETag:         res.etag,
			LastModified: res.lastModified,
		}, res.body); err != nil {
			log.Debug().Err(err).Str("url", rawURL).Msg("cache save failed")
		}
	}
	decoded, err := decode(page.Body, page.ContentType)
	if err != nil {
		return Page{}, err
	}
	page.Body = decoded
	return page, nil
}

func (c *Client) tryOnce(ctx context.Context, rawURL, etag, lastMod string) (response, error) {
	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PerRequestTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return response{}, fmt.Errorf("new request: %w", err)
	}
	if !isHTTPScheme(req.URL) {
		return response{}, fmt.Errorf("unsupported URL scheme: %q", req.URL.String())
	}
	if ua := c.PickUserAgent(); ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	res := response{
		status:       resp.StatusCode,
		contentType:  resp.Header.Get("Content-Type"),
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
	}
	if resp.StatusCode == http.StatusNotModified {
		return res, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return response{}, &StatusError{Code: resp.StatusCode}
	}
	if !isAllowedHTMLContentType(res.contentType) {
		return response{}, fmt.Errorf("%w: %s", ErrUnsupportedContentType, res.contentType)
	}
	res.body, err = io.ReadAll(resp.Body)
	if err != nil {
		return response{}, fmt.Errorf("read body: %w", err)
	}
	return res, nil
}

// decode converts body to UTF-8. A charset from the header or a BOM always
// wins. Otherwise a body that is valid UTF-8 throughout is kept as is, and only
// then does a <meta> declaration or the windows-1252 fallback apply.
func decode(body []byte, contentType string) ([]byte, error) {
	if _, _, certain := charset.DetermineEncoding(body, contentType); !certain && utf8.Valid(body) {
		return body, nil
	}
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	return out, nil
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.Code >= 500
}

func (c *Client) checkRedirect(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	if len(via) >= max {
		return errors.New("too many redirects")
	}
	if !isHTTPScheme(req.URL) {
		return errors.New("redirect to unsupported scheme")
	}
	return nil
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func isAllowedHTMLContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	// Servers that omit the header are given the benefit of the doubt.
	if ct == "" {
		return true
	}
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}
