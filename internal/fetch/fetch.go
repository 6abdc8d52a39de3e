// Package fetch retrieves raw document bytes for a URL as text. It is
// the only I/O-bound component in the engine (spec.md 5); everything
// downstream of it is pure computation.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html/charset"

	"gophersearch/internal/urlnorm"
)

// DefaultMaxBodySize bounds how much of a response body is read,
// mirroring cametumbling-web-crawler's httpclient.DefaultMaxBodySize.
const DefaultMaxBodySize = 8 * 1024 * 1024

// DefaultUserAgent is sent on every request.
const DefaultUserAgent = "GopherSearchBot/1.0"

// HTTPError reports a non-2xx response or a transport failure, wrapping
// the status code when one is available. It is the FetchIOError kind
// spec.md 7 names.
type HTTPError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// Fetcher retrieves the full response body for a URL as UTF-8 text.
type Fetcher struct {
	Client      *http.Client
	UserAgent   string
	MaxBodySize int64
}

// New returns a Fetcher with the engine's default HTTP client
// configuration.
func New() *Fetcher {
	return &Fetcher{
		Client:      http.DefaultClient,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
	}
}

// Fetch retrieves u's response body, decodes it to UTF-8 using the
// response's declared or sniffed charset, and normalises line endings to
// "\n". spec.md 4.B imposes no timeout at this layer; pass a ctx with a
// deadline to bound the call.
func (f *Fetcher) Fetch(ctx context.Context, u urlnorm.NormalURL) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", &HTTPError{URL: u.String(), Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent())

	resp, err := f.client().Do(req)
	if err != nil {
		return "", &HTTPError{URL: u.String(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &HTTPError{URL: u.String(), StatusCode: resp.StatusCode}
	}

	limited := io.LimitReader(resp.Body, f.maxBodySize())
	utf8Reader, err := charset.NewReader(limited, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", &HTTPError{URL: u.String(), Err: fmt.Errorf("decode charset: %w", err)}
	}

	body, err := io.ReadAll(utf8Reader)
	if err != nil {
		return "", &HTTPError{URL: u.String(), Err: fmt.Errorf("read body: %w", err)}
	}

	text := strings.ReplaceAll(string(body), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return text, nil
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

func (f *Fetcher) userAgent() string {
	if f.UserAgent != "" {
		return f.UserAgent
	}
	return DefaultUserAgent
}

func (f *Fetcher) maxBodySize() int64 {
	if f.MaxBodySize > 0 {
		return f.MaxBodySize
	}
	return DefaultMaxBodySize
}
