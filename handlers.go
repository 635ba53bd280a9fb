package jwwblog

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/joywithwealth/jwwblog/consent"
	"github.com/joywithwealth/jwwblog/content"
	"github.com/joywithwealth/jwwblog/dom"
	"github.com/joywithwealth/jwwblog/views"
)

const consentPath = "/consent/"

func (a *App) handleList(c echo.Context) error {
	ctx := c.Request().Context()
	doc, err := a.Pages.New(PageList)
	if err != nil {
		return err
	}
	tag := c.QueryParam("tag")
	if tag != "" {
		doc.SetTitle(strings.TrimSpace(tag) + " - " + a.Config.Name)
	} else {
		doc.SetTitle("Blog - " + a.Config.Name)
	}
	appendJSONLD(doc, views.WebsiteJsonLD(a.site()))
	if _, err := a.listPage().Render(ctx, doc, tag); err != nil {
		return err
	}
	if err := a.mountConsent(c, doc); err != nil {
		return err
	}
	return RenderDocument(c, http.StatusOK, doc)
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	doc, err := a.Pages.New(PagePost)
	if err != nil {
		return err
	}
	_, err = a.postPage().Render(ctx, doc, c.Request().URL.Path)
	status := http.StatusOK
	switch {
	case err == nil:
	case errors.Is(err, ErrNoSlug):
		return echo.ErrNotFound
	case errors.Is(err, ErrPostNotFound), errors.Is(err, content.ErrNotFound):
		slog.Debug("post not found", "path", c.Request().URL.Path, "error", err)
		status = http.StatusNotFound
	case errors.Is(err, ErrPostUnavailable):
		slog.Warn("post content unavailable", "path", c.Request().URL.Path, "error", err)
		status = http.StatusNotFound
	default:
		return err
	}
	if err := a.mountConsent(c, doc); err != nil {
		return err
	}
	return RenderDocument(c, status, doc)
}

// handleIndex serves the cached post index, optionally filtered by tag.
func (a *App) handleIndex(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context(), c.QueryParam("tag"))
	if err != nil {
		slog.Warn("post index unavailable", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "post index unavailable")
	}
	if posts == nil {
		posts = []content.Post{}
	}
	return c.JSON(http.StatusOK, posts)
}

func (a *App) handleConsent(c echo.Context) error {
	ip := c.RealIP()
	if !a.consentLimiter.Allow(ip) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
	}
	choice, ok := consent.ParseChoice(c.FormValue("choice"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown consent choice")
	}
	back := SafeReturnPath(c.FormValue("return"))

	banner := consent.NewBanner(ConsentStore(c), a.loader, nil)
	ctx := c.Request().Context()
	if err := banner.Mount(ctx, nil); err != nil {
		return err
	}

	var (
		d   consent.Decision
		err error
	)
	switch choice {
	case consent.ChoiceAccept:
		d, err = banner.AcceptAll()
	case consent.ChoiceEssential:
		d, err = banner.EssentialOnly()
	}
	if errors.Is(err, consent.ErrNotShown) {
		slog.Debug("consent already decided", "ip", ip)
		return c.Redirect(http.StatusSeeOther, back)
	}
	if err != nil {
		return err
	}

	if a.Ledger != nil {
		if err := a.Ledger.Record(ctx, d, choice, ip, c.Request().UserAgent(), back); err != nil {
			slog.Error("consent ledger write failed", "error", err)
		}
	}
	return c.Redirect(http.StatusSeeOther, back)
}

type consentStatus struct {
	Decided   bool  `json:"decided"`
	Analytics *bool `json:"analytics,omitempty"`
	Marketing *bool `json:"marketing,omitempty"`
	Timestamp int64 `json:"timestamp,omitempty"`
}

func (a *App) handleConsentStatus(c echo.Context) error {
	d, ok := ConsentStore(c).Read()
	if !ok {
		return c.JSON(http.StatusOK, consentStatus{})
	}
	return c.JSON(http.StatusOK, consentStatus{
		Decided:   true,
		Analytics: &d.AnalyticsAllowed,
		Marketing: &d.MarketingAllowed,
		Timestamp: d.DecidedAt.UnixMilli(),
	})
}

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.Cache.ListPosts(ctx, "")
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags(ctx)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts, tags)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleRobots(c echo.Context) error {
	sitemap := strings.TrimRight(a.Config.URL, "/") + "/sitemap.xml"
	return c.String(http.StatusOK, "User-agent: *\nAllow: /\n\nSitemap: "+sitemap+"\n")
}

func (a *App) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func handleRootRedirect(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/blog/")
}

// mountConsent runs the banner for this visitor: stored decisions load
// their scripts, otherwise the prompt is added to the page.
func (a *App) mountConsent(c echo.Context, doc *dom.Document) error {
	markup := views.ConsentBanner(views.ConsentForm{
		Action:    consentPath,
		Return:    c.Request().URL.RequestURI(),
		CSRFToken: CsrfToken(c),
	})
	return consent.NewBanner(ConsentStore(c), a.loader, markup).Mount(c.Request().Context(), doc)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}
	if code >= 500 {
		slog.Error("server error", "path", c.Request().URL.Path, "error", err)
	}
	if code != http.StatusNotFound && code < 500 {
		a.Echo.DefaultHTTPErrorHandler(err, c)
		return
	}

	doc, perr := a.Pages.New(PageError)
	if perr != nil {
		_ = RenderStatus(c, code, views.NotFound())
		return
	}
	if code == http.StatusNotFound {
		doc.SetTitle("Page Not Found - " + a.Config.Name)
		dom.SetText(doc.ByID(IDErrorMessage), "The page you are looking for does not exist.")
	} else {
		doc.SetTitle("Error - " + a.Config.Name)
		dom.SetText(doc.ByID(IDErrorMessage), "Something went wrong on our side. Please try again later.")
	}
	if merr := a.mountConsent(c, doc); merr != nil {
		slog.Debug("consent banner skipped on error page", "error", merr)
	}
	_ = RenderDocument(c, code, doc)
}
