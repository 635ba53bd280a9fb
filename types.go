package jwwblog

import "errors"

var (
	// ErrNoSlug means the page path carries no slug; the post page does nothing.
	ErrNoSlug = errors.New("jwwblog: no slug in page path")
	// ErrPostNotFound means the index has no record for the slug.
	ErrPostNotFound = errors.New("jwwblog: post not found")
	// ErrPostUnavailable means the index or the body could not be loaded.
	ErrPostUnavailable = errors.New("jwwblog: post unavailable")
)

// PageKind names one of the page templates.
type PageKind string

const (
	PageList  PageKind = "list"
	PagePost  PageKind = "post"
	PageError PageKind = "error"
)

// Contracted element ids the page templates must provide.
const (
	IDBlogLoading     = "blog-loading"
	IDBlogPosts       = "blog-posts"
	IDPostLoading     = "post-loading"
	IDPostContent     = "post-content"
	IDPostHeader      = "post-header"
	IDPostTitle       = "post-title"
	IDPostMeta        = "post-meta"
	IDPostTags        = "post-tags"
	IDPostCover       = "post-cover"
	IDTableOfContents = "table-of-contents"
	IDTOCList         = "toc-list"
	IDMobileMenuBtn   = "mobile-menu-btn"
	IDMobileMenu      = "mobile-menu"
	IDErrorMessage    = "error-message"
)

// requiredIDs lists, per page, the ids a template is rejected without.
var requiredIDs = map[PageKind][]string{
	PageList: {IDBlogLoading, IDBlogPosts, IDMobileMenuBtn, IDMobileMenu},
	PagePost: {
		IDPostLoading, IDPostContent, IDPostHeader, IDPostTitle, IDPostMeta,
		IDPostTags, IDPostCover, IDTableOfContents, IDTOCList,
		IDMobileMenuBtn, IDMobileMenu,
	},
	PageError: {IDErrorMessage, IDMobileMenuBtn, IDMobileMenu},
}
