package jwwblog

import (
	"encoding/xml"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/joywithwealth/jwwblog/content"
	"github.com/joywithwealth/jwwblog/views"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (a *App) renderSitemap(c echo.Context, posts []content.Post, tags []string) error {
	base := a.Config.URL
	urls := []sitemapURL{
		{Loc: views.BuildURL(base, "blog")},
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     views.BuildURL(base, "blog", "posts", p.Slug),
			LastMod: p.Date,
		})
	}
	for _, t := range tags {
		urls = append(urls, sitemapURL{
			Loc: views.BuildURL(base, "blog") + "?tag=" + url.QueryEscape(t),
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
