package jwwblog

import (
	"context"
	"log/slog"

	"github.com/joywithwealth/jwwblog/content"
	"github.com/joywithwealth/jwwblog/dom"
	"github.com/joywithwealth/jwwblog/views"
)

// PostLister returns the post index, optionally filtered by tag.
type PostLister interface {
	ListPosts(ctx context.Context, tag string) ([]content.Post, error)
}

// ListPage fills the blog list page.
type ListPage struct {
	Posts PostLister
}

// Render fetches the index and writes the cards into #blog-posts. A failed
// fetch is shown as an empty list. It returns the number of cards written.
func (l *ListPage) Render(ctx context.Context, doc *dom.Document, tag string) (int, error) {
	posts, err := l.Posts.ListPosts(ctx, tag)
	if err != nil {
		slog.Warn("post index unavailable, showing empty list", "error", err)
		posts = nil
	}

	container := doc.ByID(IDBlogPosts)
	if container == nil {
		return 0, nil
	}
	dom.Hide(doc.ByID(IDBlogLoading))
	dom.Show(container)

	cmp := views.EmptyList()
	if len(posts) > 0 {
		cmp = views.PostCards(posts)
	}
	markup, err := views.String(ctx, cmp)
	if err != nil {
		return 0, err
	}
	if err := dom.SetInnerHTML(container, markup); err != nil {
		return 0, err
	}
	return len(posts), nil
}
