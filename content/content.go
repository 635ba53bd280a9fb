// Package content retrieves the post index and post bodies from wherever
// the static site publishes them: a remote origin over HTTP or a local tree.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// IndexPath is the location of the shared post index.
const IndexPath = "/blog/posts.json"

// MarkdownFile is the body resource, resolved relative to a post page.
const MarkdownFile = "./markdown.md"

// ErrNotFound is returned when a resource does not exist at the source.
var ErrNotFound = errors.New("content: not found")

// Post is a record of the post index.
type Post struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Author      string   `json:"author"`
	ReadingTime int      `json:"readingTime"`
	Excerpt     string   `json:"excerpt"`
	CoverImage  string   `json:"coverImage,omitempty"`
	Tags        []string `json:"tags"`
}

// Link returns the canonical page path of the post.
func (p Post) Link() string {
	return "/blog/posts/" + url.PathEscape(p.Slug) + "/"
}

// Client reads the index and post bodies from a Source.
type Client struct {
	src Source
}

// NewClient wraps src.
func NewClient(src Source) *Client {
	return &Client{src: src}
}

// FetchIndex downloads and decodes the post index. Records keep index order.
func (c *Client) FetchIndex(ctx context.Context) ([]Post, error) {
	data, err := c.src.Fetch(ctx, IndexPath)
	if err != nil {
		return nil, fmt.Errorf("fetch index: %w", err)
	}
	var posts []Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return posts, nil
}

// FetchMarkdown downloads the markdown body that sits next to pagePath.
func (c *Client) FetchMarkdown(ctx context.Context, pagePath string) (string, error) {
	p, err := ResolveRelative(pagePath, MarkdownFile)
	if err != nil {
		return "", err
	}
	data, err := c.src.Fetch(ctx, p)
	if err != nil {
		return "", fmt.Errorf("fetch markdown: %w", err)
	}
	return string(data), nil
}

// ResolveRelative resolves ref against pagePath the way a browser resolves a
// relative URL against the current document.
func ResolveRelative(pagePath, ref string) (string, error) {
	base, err := url.Parse(pagePath)
	if err != nil {
		return "", fmt.Errorf("content: bad page path %q: %w", pagePath, err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("content: bad reference %q: %w", ref, err)
	}
	resolved := base.ResolveReference(r).Path
	if !strings.HasPrefix(resolved, "/") {
		resolved = "/" + resolved
	}
	return path.Clean(resolved), nil
}

// ResolveSlug returns the last non-empty segment of a page path, ignoring
// trailing slashes. It returns "" when there is none.
func ResolveSlug(pagePath string) string {
	trimmed := strings.TrimRight(pagePath, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if s, err := url.PathUnescape(trimmed); err == nil {
		return s
	}
	return trimmed
}

// Lookup scans posts for slug.
func Lookup(posts []Post, slug string) (Post, bool) {
	for _, p := range posts {
		if p.Slug == slug {
			return p, true
		}
	}
	return Post{}, false
}
