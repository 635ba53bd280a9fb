// Package jwwblog renders the Joy With Wealth blog. Each page is parsed from
// its template, filled by the list or post controller through the
// template's element ids, gated by the visitor's cookie consent, and served
// by Echo.
//
// Posts come from a JSON index plus one markdown body per post, read from a
// remote origin or a local content tree.
package jwwblog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/joywithwealth/jwwblog/consent"
	"github.com/joywithwealth/jwwblog/content"
	"github.com/joywithwealth/jwwblog/dom"
	"github.com/joywithwealth/jwwblog/markdown"
	"github.com/joywithwealth/jwwblog/views"
)

// App is the central application. It wires together the content source,
// cache, page templates, consent handling, middleware and routes.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Content  *content.Client
	Cache    *PostCache
	Pages    *PageSet
	Pipeline *markdown.Pipeline
	Ledger   *consent.Ledger

	loader         consent.ScriptLoader
	consentLimiter *RateLimiter
	stopCleanup    func()
	source         content.Source
	pagesFS        fs.FS
	customRoutes   []func(*App)
	staticDir      string
}

// New creates an App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	e := echo.New()
	e.HideBanner = true

	a := &App{
		Config:    cfg,
		Echo:      e,
		Pipeline:  markdown.NewPipeline(),
		loader:    consent.ScriptLoader{AnalyticsID: cfg.AnalyticsID, PixelID: cfg.PixelID},
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init prepares content access and page templates. It is all the CLI needs
// to render pages without serving them.
func (a *App) Init() error {
	if a.source == nil {
		src, err := a.Config.contentSource()
		if err != nil {
			return fmt.Errorf("jwwblog: %w", err)
		}
		a.source = src
	}
	a.Content = content.NewClient(a.source)
	a.Cache = NewPostCache(a.Content, a.Config.PostCacheTTL)

	if a.pagesFS == nil {
		if a.Config.PagesDir != "" {
			a.pagesFS = os.DirFS(a.Config.PagesDir)
		} else {
			sub, err := fs.Sub(EmbeddedAssets, "embedded/pages")
			if err != nil {
				return fmt.Errorf("jwwblog: embedded pages: %w", err)
			}
			a.pagesFS = sub
		}
	}
	pages, err := LoadPages(a.pagesFS)
	if err != nil {
		return fmt.Errorf("jwwblog: %w", err)
	}
	a.Pages = pages
	return nil
}

// Setup runs Init and then installs the consent ledger, middleware and
// routes. After Setup the App can serve requests through a.Echo.
func (a *App) Setup() error {
	if a.Config.SessionSecret == "" {
		return errors.New("jwwblog: SessionSecret is required")
	}
	if err := a.Init(); err != nil {
		return err
	}

	a.consentLimiter = NewRateLimiter(10, time.Minute)

	if a.Config.ConsentLedgerPath != "" {
		ledger, err := consent.NewLedger(a.Config.ConsentLedgerPath)
		if err != nil {
			return fmt.Errorf("jwwblog: init consent ledger: %w", err)
		}
		a.Ledger = ledger
		a.stopCleanup = ledger.StartCleanupScheduler(a.Config.ConsentRetentionDays, 24*time.Hour)
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start sets the App up and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	defer a.Close()

	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/site.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/healthz", a.handleHealth)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", handleRootRedirect)
	e.GET("/blog/", a.handleList)
	e.GET(content.IndexPath, a.handleIndex)
	e.GET("/blog/posts/:slug/", a.handlePost)

	e.POST(consentPath, a.handleConsent)
	e.GET("/api/consent", a.handleConsentStatus)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.stopCleanup != nil {
		a.stopCleanup()
		a.stopCleanup = nil
	}
	if a.consentLimiter != nil {
		a.consentLimiter.Stop()
	}
	if a.Ledger != nil {
		return a.Ledger.Close()
	}
	return nil
}

func (a *App) site() views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
	}
}

func (a *App) listPage() *ListPage {
	return &ListPage{Posts: a.Cache}
}

func (a *App) postPage() *PostPage {
	return &PostPage{
		Index:    a.Cache,
		Bodies:   a.Content,
		Pipeline: a.Pipeline,
		Site:     a.site(),
	}
}

// RenderList builds the list page document without consent handling.
func (a *App) RenderList(ctx context.Context, tag string) (*dom.Document, error) {
	doc, err := a.Pages.New(PageList)
	if err != nil {
		return nil, err
	}
	if _, err := a.listPage().Render(ctx, doc, tag); err != nil {
		return nil, err
	}
	return doc, nil
}

// RenderPost builds the post page document for pagePath without consent
// handling. On load failures the returned document holds the error view.
func (a *App) RenderPost(ctx context.Context, pagePath string) (*dom.Document, error) {
	doc, err := a.Pages.New(PagePost)
	if err != nil {
		return nil, err
	}
	_, err = a.postPage().Render(ctx, doc, pagePath)
	return doc, err
}

func (c SiteConfig) contentSource() (content.Source, error) {
	switch {
	case c.ContentDir != "":
		return content.NewFSSource(os.DirFS(c.ContentDir)), nil
	case c.ContentURL != "":
		return content.NewHTTPSource(c.ContentURL, c.FetchTimeout)
	default:
		return nil, errors.New("CONTENT_URL or CONTENT_DIR is required")
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
