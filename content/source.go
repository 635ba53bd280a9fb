package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxBodySize caps a single fetched resource.
const maxBodySize = 8 << 20

// ErrTooLarge is returned when a resource exceeds the size cap.
var ErrTooLarge = errors.New("content: resource too large")

// Source fetches a site-absolute path such as "/blog/posts.json".
type Source interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// StatusError reports a non-2xx answer from an HTTP origin.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("content: %s returned status %d", e.URL, e.Code)
}

// HTTPSource fetches from a remote origin.
type HTTPSource struct {
	base    *url.URL
	http    *http.Client
	maxBody int64
}

// NewHTTPSource builds a source for baseURL. A zero timeout defaults to 10s.
func NewHTTPSource(baseURL string, timeout time.Duration) (*HTTPSource, error) {
	baseURL = strings.TrimSpace(baseURL)
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("content: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("content: base url %q must be http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		base:    u,
		http:    &http.Client{Timeout: timeout},
		maxBody: maxBodySize,
	}, nil
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context, p string) ([]byte, error) {
	endpoint := s.base.JoinPath(p).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: endpoint, Code: resp.StatusCode}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBody+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.maxBody {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, endpoint, s.maxBody)
	}
	return data, nil
}

// FSSource reads from a file tree laid out like the published site.
type FSSource struct {
	fsys fs.FS
}

// NewFSSource wraps fsys, typically os.DirFS(contentDir).
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

// Fetch implements Source.
func (s *FSSource) Fetch(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := strings.TrimPrefix(p, "/")
	if !fs.ValidPath(name) {
		return nil, ErrNotFound
	}
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}
