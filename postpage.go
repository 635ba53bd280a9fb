package jwwblog

import (
	"context"
	"fmt"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"

	"github.com/joywithwealth/jwwblog/content"
	"github.com/joywithwealth/jwwblog/dom"
	"github.com/joywithwealth/jwwblog/markdown"
	"github.com/joywithwealth/jwwblog/prose"
	"github.com/joywithwealth/jwwblog/views"
)

// MarkdownFetcher loads the markdown body that belongs to a post page.
type MarkdownFetcher interface {
	FetchMarkdown(ctx context.Context, pagePath string) (string, error)
}

// PostPage fills a single post page.
type PostPage struct {
	Index    IndexFetcher
	Bodies   MarkdownFetcher
	Pipeline *markdown.Pipeline
	Site     views.SiteConfig
}

// Render resolves the slug from pagePath, loads the index and the body
// concurrently and populates doc. Any load or lookup failure replaces the
// loading indicator with the not-found view and leaves header and content
// hidden. ErrNoSlug is returned without touching doc.
func (p *PostPage) Render(ctx context.Context, doc *dom.Document, pagePath string) (content.Post, error) {
	slug := content.ResolveSlug(pagePath)
	if slug == "" {
		return content.Post{}, ErrNoSlug
	}

	var (
		posts []content.Post
		body  string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		posts, err = p.Index.FetchIndex(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		body, err = p.Bodies.FetchMarkdown(gctx, pagePath)
		return err
	})
	if err := g.Wait(); err != nil {
		p.showError(ctx, doc)
		return content.Post{}, fmt.Errorf("%w: %q: %w", ErrPostUnavailable, slug, err)
	}

	post, ok := content.Lookup(posts, slug)
	if !ok {
		p.showError(ctx, doc)
		return content.Post{}, fmt.Errorf("%w: %q", ErrPostNotFound, slug)
	}

	if err := p.populateHeader(ctx, doc, post); err != nil {
		return post, err
	}

	if el := doc.ByID(IDPostContent); el != nil {
		if err := dom.SetInnerHTML(el, p.Pipeline.HTML(body)); err != nil {
			return post, err
		}
		dom.Show(el)
		prose.Style(el)
		if err := p.writeTOC(ctx, doc, prose.BuildTOC(el)); err != nil {
			return post, err
		}
	}

	dom.Hide(doc.ByID(IDPostLoading))
	return post, nil
}

func (p *PostPage) populateHeader(ctx context.Context, doc *dom.Document, post content.Post) error {
	doc.SetTitle(post.Title + " - " + p.Site.Name)
	dom.SetText(doc.ByID(IDPostTitle), post.Title)

	if err := setComponent(ctx, doc.ByID(IDPostMeta), views.PostMeta(post, p.Site.Author)); err != nil {
		return err
	}
	if len(post.Tags) > 0 {
		if err := setComponent(ctx, doc.ByID(IDPostTags), views.TagPills(post.Tags)); err != nil {
			return err
		}
	}
	if post.CoverImage != "" {
		if err := setComponent(ctx, doc.ByID(IDPostCover), views.Cover(post)); err != nil {
			return err
		}
	}
	dom.Show(doc.ByID(IDPostHeader))

	appendJSONLD(doc, views.BlogPostingJsonLD(p.Site, post))
	return nil
}

// appendJSONLD adds a structured data script to the document head.
func appendJSONLD(doc *dom.Document, data string) {
	head := doc.Head()
	if head == nil {
		return
	}
	ld := dom.NewElement(atom.Script, html.Attribute{Key: "type", Val: "application/ld+json"})
	ld.AppendChild(&html.Node{Type: html.TextNode, Data: data})
	head.AppendChild(ld)
}

func (p *PostPage) writeTOC(ctx context.Context, doc *dom.Document, entries []prose.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	nav, list := doc.ByID(IDTableOfContents), doc.ByID(IDTOCList)
	if nav == nil || list == nil {
		return nil
	}
	markup, err := views.String(ctx, views.TOCItems(entries))
	if err != nil {
		return err
	}
	if err := dom.AppendHTML(list, markup); err != nil {
		return err
	}
	dom.Show(nav)
	return nil
}

func (p *PostPage) showError(ctx context.Context, doc *dom.Document) {
	_ = setComponent(ctx, doc.ByID(IDPostLoading), views.NotFound())
}

func setComponent(ctx context.Context, n *html.Node, cmp templ.Component) error {
	if n == nil {
		return nil
	}
	markup, err := views.String(ctx, cmp)
	if err != nil {
		return err
	}
	return dom.SetInnerHTML(n, markup)
}
