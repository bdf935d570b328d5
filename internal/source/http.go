package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a whole HTTP exchange, body included.
const DefaultTimeout = 30 * time.Second

// ErrNotURL is returned for names that are not http or https URLs.
var ErrNotURL = errors.New("source: not an http(s) URL")

// HTTP fetches sources over HTTP(S).
type HTTP struct {
	Client  *http.Client  // nil uses a client with Timeout
	Timeout time.Duration // 0 uses DefaultTimeout
}

func (h HTTP) client(ctx context.Context) *http.Client {
	if h.Client != nil {
		return h.Client
	}
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d < timeout && d > 0 {
			timeout = d
		}
	}
	return &http.Client{Timeout: timeout}
}

func (h HTTP) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	if !IsURL(rawURL) {
		return nil, ErrNotURL
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.client(ctx).Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%s %s: server returned %d", method, rawURL, resp.StatusCode)
	}
	return resp, nil
}

// Open issues a GET request and returns the response body.
func (h HTTP) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	resp, err := h.do(ctx, http.MethodGet, rawURL)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Stat issues a HEAD request. Size is the Content-Length, -1 when the
// server does not send one.
func (h HTTP) Stat(ctx context.Context, rawURL string) (Info, error) {
	resp, err := h.do(ctx, http.MethodHead, rawURL)
	if err != nil {
		return Info{}, err
	}
	resp.Body.Close()
	return Info{Size: resp.ContentLength}, nil
}

// Mux sends URLs to Remote and everything else to Local.
type Mux struct {
	Local  Source
	Remote Source
}

// Default returns a Mux over the local file system and HTTP with the given
// timeout.
func Default(timeout time.Duration) Mux {
	return Mux{Local: OS{}, Remote: HTTP{Timeout: timeout}}
}

func (m Mux) pick(name string) Source {
	if IsURL(name) {
		return m.Remote
	}
	return m.Local
}

// Open opens name with the source that handles it.
func (m Mux) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return m.pick(name).Open(ctx, name)
}

// Stat describes name using the source that handles it.
func (m Mux) Stat(ctx context.Context, name string) (Info, error) {
	return m.pick(name).Stat(ctx, name)
}

// ListFiles lists local directories; URLs cannot be listed.
func (m Mux) ListFiles(ctx context.Context, dir string) ([]string, error) {
	if IsURL(dir) {
		return nil, fmt.Errorf("list %s: %w", dir, errors.ErrUnsupported)
	}
	l, ok := m.Local.(Lister)
	if !ok {
		return nil, fmt.Errorf("list %s: %w", dir, errors.ErrUnsupported)
	}
	return l.ListFiles(ctx, dir)
}

// Abs resolves local names; URLs are returned unchanged.
func (m Mux) Abs(name string) (string, error) {
	if IsURL(name) {
		return name, nil
	}
	if r, ok := m.Local.(Resolver); ok {
		return r.Abs(name)
	}
	return name, nil
}
