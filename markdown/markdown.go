// Package markdown turns a post's markdown body into sanitized HTML.
package markdown

import (
	"bytes"
	"html"
	"log/slog"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/frontmatter"
)

// Renderer converts markdown source to raw HTML.
type Renderer interface {
	Render(src []byte) (string, error)
}

// Sanitizer strips unsafe markup from HTML. *bluemonday.Policy satisfies it.
type Sanitizer interface {
	Sanitize(s string) string
}

// Goldmark is the default Renderer.
type Goldmark struct {
	md goldmark.Markdown
}

// NewRenderer configures goldmark with GitHub flavored extensions, automatic
// heading ids and front matter stripping. Raw HTML in the body is passed
// through; the Sanitizer decides what survives.
func NewRenderer() *Goldmark {
	return &Goldmark{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				&frontmatter.Extender{},
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				goldmarkhtml.WithUnsafe(),
			),
		),
	}
}

// Render implements Renderer.
func (g *Goldmark) Render(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := g.md.Convert(src, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// NewSanitizer returns the user-generated-content policy used for posts.
// Heading ids survive so table of contents anchors keep working.
func NewSanitizer() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("id").Matching(bluemonday.SpaceSeparatedTokens).OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code")
	policy.AllowAttrs("loading").OnElements("img")
	policy.AllowElements("details", "summary", "mark")
	// Post bodies link to the site's own pages.
	policy.RequireNoFollowOnLinks(false)
	return policy
}

// Pipeline chains a Renderer and a Sanitizer. Either may be nil: without a
// renderer the body is shown preformatted, without a sanitizer the renderer
// output is used as is.
type Pipeline struct {
	Renderer  Renderer
	Sanitizer Sanitizer
}

// NewPipeline returns the goldmark + bluemonday pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{
		Renderer:  NewRenderer(),
		Sanitizer: NewSanitizer(),
	}
}

// HTML renders body. It never fails; every problem degrades the output.
func (p *Pipeline) HTML(body string) string {
	var out string
	if p == nil || p.Renderer == nil {
		out = Preformatted(body)
	} else {
		rendered, err := p.Renderer.Render([]byte(body))
		if err != nil {
			slog.Warn("markdown render failed, showing plain text", "error", err)
			rendered = Preformatted(body)
		}
		out = rendered
	}
	if p == nil || p.Sanitizer == nil {
		slog.Warn("markdown sanitizer not configured, serving unsanitized html")
		return out
	}
	return p.Sanitizer.Sanitize(out)
}

// Preformatted wraps escaped text in a <pre> block.
func Preformatted(body string) string {
	return "<pre>" + html.EscapeString(body) + "</pre>"
}

// SafeURL validates and sanitizes a URL for use in HTML attributes.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
