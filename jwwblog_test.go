package jwwblog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joywithwealth/jwwblog/consent"
	"github.com/joywithwealth/jwwblog/content"
	"github.com/joywithwealth/jwwblog/dom"
)

const testIndex = `[
  {"slug":"welcome","title":"Welcome","date":"2024-01-15","author":"","readingTime":4,
   "excerpt":"First steps with money.","tags":["Basics","Saving"]},
  {"slug":"budgeting","title":"Budgeting 101","date":"2023-12-01","author":"Ana",
   "readingTime":6,"excerpt":"Where it all goes.","tags":["Basics"]}
]`

const testMarkdown = `---
title: Welcome
---

Intro paragraph.

## Why Save

Because.

### Emergency Fund

Three months.

## Next Steps

Start today.
`

func testContent() fstest.MapFS {
	return fstest.MapFS{
		"blog/posts.json":                  {Data: []byte(testIndex)},
		"blog/posts/welcome/markdown.md":   {Data: []byte(testMarkdown)},
		"blog/posts/orphan/markdown.md":    {Data: []byte("# Orphan")},
		"blog/posts/budgeting/markdown.md": {Data: []byte("Plain body.")},
	}
}

func newTestApp(t *testing.T, fsys fstest.MapFS) *App {
	t.Helper()
	a := New(SiteConfig{
		SessionSecret: "test-secret-test-secret-test-secret",
		AnalyticsID:   "G-TEST12345",
		PixelID:       consent.PlaceholderPixelID,
	}, WithContentSource(content.NewFSSource(fsys)))
	require.NoError(t, a.Setup())
	t.Cleanup(func() { a.Close() })
	return a
}

func doRequest(a *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func get(a *App, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return doRequest(a, req)
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(rec.Body.String())
	require.NoError(t, err)
	return doc
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRootRedirectsToBlog(t *testing.T) {
	a := newTestApp(t, testContent())
	rec := get(a, "/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/blog/", rec.Header().Get("Location"))
}

func TestListPage(t *testing.T) {
	a := newTestApp(t, testContent())
	rec := get(a, "/blog/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "private, no-cache", rec.Header().Get("Cache-Control"))

	doc := parseBody(t, rec)
	assert.Equal(t, "Blog - Joy With Wealth Blog", doc.Title())
	assert.True(t, dom.IsHidden(doc.ByID(IDBlogLoading)))
	assert.False(t, dom.IsHidden(doc.ByID(IDBlogPosts)))

	cards := dom.InnerHTML(doc.ByID(IDBlogPosts))
	first, second := strings.Index(cards, "Welcome"), strings.Index(cards, "Budgeting 101")
	require.True(t, first >= 0 && second >= 0)
	assert.Less(t, first, second, "cards keep index order")
	assert.Contains(t, cards, `href="/blog/posts/welcome/"`)

	assert.Contains(t, rec.Body.String(), `"@type":"WebSite"`)
	assert.NotNil(t, doc.ByID(consent.BannerID), "undecided visitors see the banner")
	assert.Nil(t, doc.ByID(consent.AnalyticsMarkerID))
}

func TestListPageTagFilter(t *testing.T) {
	a := newTestApp(t, testContent())
	doc := parseBody(t, get(a, "/blog/?tag=saving"))
	cards := dom.InnerHTML(doc.ByID(IDBlogPosts))
	assert.Contains(t, cards, "Welcome")
	assert.NotContains(t, cards, "Budgeting 101")
}

func TestListPageEmptyIndex(t *testing.T) {
	a := newTestApp(t, fstest.MapFS{"blog/posts.json": {Data: []byte(`[]`)}})
	doc := parseBody(t, get(a, "/blog/"))
	assert.Contains(t, dom.TextContent(doc.ByID(IDBlogPosts)), "No posts yet")
}

func TestListPageIndexUnavailable(t *testing.T) {
	a := newTestApp(t, fstest.MapFS{})
	rec := get(a, "/blog/")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseBody(t, rec)
	assert.True(t, dom.IsHidden(doc.ByID(IDBlogLoading)))
	assert.Contains(t, dom.TextContent(doc.ByID(IDBlogPosts)), "No posts yet")
}

func TestPostPage(t *testing.T) {
	a := newTestApp(t, testContent())
	rec := get(a, "/blog/posts/welcome/")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseBody(t, rec)
	assert.Equal(t, "Welcome - Joy With Wealth Blog", doc.Title())
	assert.Equal(t, "Welcome", dom.TextContent(doc.ByID(IDPostTitle)))
	assert.False(t, dom.IsHidden(doc.ByID(IDPostHeader)))
	assert.True(t, dom.IsHidden(doc.ByID(IDPostLoading)))
	assert.Contains(t, dom.TextContent(doc.ByID(IDPostMeta)), "Joy With Wealth")
	assert.Contains(t, dom.TextContent(doc.ByID(IDPostTags)), "Saving")

	body := doc.ByID(IDPostContent)
	assert.False(t, dom.IsHidden(body))
	assert.True(t, dom.HasClass(body, "prose-jww"))
	assert.NotContains(t, dom.TextContent(body), "title: Welcome", "front matter is stripped")

	assert.False(t, dom.IsHidden(doc.ByID(IDTableOfContents)))
	toc := dom.InnerHTML(doc.ByID(IDTOCList))
	assert.Contains(t, toc, `href="#why-save"`)
	assert.Contains(t, toc, `<li class="ml-4">`)
	assert.Contains(t, toc, `href="#next-steps"`)

	assert.Contains(t, rec.Body.String(), `"@type":"BlogPosting"`)
}

func TestPostPageWithoutHeadingsKeepsTOCHidden(t *testing.T) {
	a := newTestApp(t, testContent())
	doc := parseBody(t, get(a, "/blog/posts/budgeting/"))
	assert.True(t, dom.IsHidden(doc.ByID(IDTableOfContents)))
	assert.Contains(t, dom.TextContent(doc.ByID(IDPostMeta)), "Ana")
}

func TestPostPageNotFound(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"slug missing from index", "/blog/posts/orphan/"},
		{"markdown missing", "/blog/posts/nothing-here/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestApp(t, testContent())
			rec := get(a, tt.path)
			assert.Equal(t, http.StatusNotFound, rec.Code)

			doc := parseBody(t, rec)
			assert.Contains(t, dom.TextContent(doc.ByID(IDPostLoading)), "Post Not Found")
			assert.True(t, dom.IsHidden(doc.ByID(IDPostHeader)))
			assert.True(t, dom.IsHidden(doc.ByID(IDPostContent)))
		})
	}
}

func TestUnknownRouteRendersErrorPage(t *testing.T) {
	a := newTestApp(t, testContent())
	rec := get(a, "/nope/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	doc := parseBody(t, rec)
	assert.Equal(t, "Page Not Found - Joy With Wealth Blog", doc.Title())
	assert.Contains(t, dom.TextContent(doc.ByID(IDErrorMessage)), "does not exist")
}

func TestPostIndexJSON(t *testing.T) {
	a := newTestApp(t, testContent())
	rec := get(a, "/blog/posts.json?tag=basics")
	require.Equal(t, http.StatusOK, rec.Code)
	var posts []content.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	assert.Len(t, posts, 2)

	a = newTestApp(t, fstest.MapFS{})
	assert.Equal(t, http.StatusBadGateway, get(a, "/blog/posts.json").Code)
}

func TestConsentFlow(t *testing.T) {
	a := newTestApp(t, testContent())

	first := get(a, "/blog/")
	csrf := cookieNamed(first, "_csrf")
	require.NotNil(t, csrf)

	rec := get(a, "/api/consent")
	assert.JSONEq(t, `{"decided":false}`, rec.Body.String())

	form := url.Values{
		"choice": {"accept"},
		"_csrf":  {csrf.Value},
		"return": {"/blog/posts/welcome/"},
	}
	req := httptest.NewRequest(http.MethodPost, "/consent/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(csrf)
	rec = doRequest(a, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/blog/posts/welcome/", rec.Header().Get("Location"))

	sess := cookieNamed(rec, consent.SessionName)
	require.NotNil(t, sess)

	doc := parseBody(t, get(a, "/blog/", sess))
	assert.Nil(t, doc.ByID(consent.BannerID), "decided visitors are not prompted")
	assert.NotNil(t, doc.ByID(consent.AnalyticsMarkerID))
	assert.Nil(t, doc.ByID(consent.MarketingMarkerID), "placeholder pixel id never loads")

	rec = get(a, "/api/consent", sess)
	var status struct {
		Decided   bool `json:"decided"`
		Analytics bool `json:"analytics"`
		Marketing bool `json:"marketing"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Decided)
	assert.True(t, status.Analytics)
	assert.True(t, status.Marketing)
}

func TestConsentRejectsBadRequests(t *testing.T) {
	a := newTestApp(t, testContent())
	csrf := cookieNamed(get(a, "/blog/"), "_csrf")
	require.NotNil(t, csrf)

	post := func(form url.Values, withCookie bool) int {
		req := httptest.NewRequest(http.MethodPost, "/consent/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if withCookie {
			req.AddCookie(csrf)
		}
		return doRequest(a, req).Code
	}

	assert.Equal(t, http.StatusForbidden, post(url.Values{"choice": {"accept"}}, false))
	assert.Equal(t, http.StatusBadRequest, post(url.Values{"choice": {"maybe"}, "_csrf": {csrf.Value}}, true))
}

func TestFeedAndSitemap(t *testing.T) {
	a := newTestApp(t, testContent())

	rec := get(a, "/feed.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>Budgeting 101</title>")
	assert.Contains(t, rec.Body.String(), "http://localhost:3000/blog/posts/welcome/")

	rec = get(a, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<loc>http://localhost:3000/blog/posts/budgeting/</loc>")
	assert.Contains(t, rec.Body.String(), "<loc>http://localhost:3000/blog/?tag=saving</loc>")
}

func TestRobotsAndHealth(t *testing.T) {
	a := newTestApp(t, testContent())
	assert.Contains(t, get(a, "/robots.txt").Body.String(), "Sitemap: http://localhost:3000/sitemap.xml")
	rec := get(a, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestSetupRequiresSessionSecret(t *testing.T) {
	a := New(SiteConfig{}, WithContentSource(content.NewFSSource(fstest.MapFS{})))
	assert.Error(t, a.Setup())
}

func TestSafeReturnPath(t *testing.T) {
	tests := map[string]string{
		"/blog/posts/welcome/":  "/blog/posts/welcome/",
		"/blog/?tag=saving":     "/blog/?tag=saving",
		"":                      "/blog/",
		"//evil.example/":       "/blog/",
		"https://evil.example/": "/blog/",
		`/\evil.example`:        "/blog/",
		"relative/path":         "/blog/",
	}
	for in, want := range tests {
		assert.Equal(t, want, SafeReturnPath(in), in)
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Saving Early":       "saving-early",
		"  401(k) Basics!  ": "401-k-basics",
		"already-a-slug":     "already-a-slug",
		"---":                "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}
