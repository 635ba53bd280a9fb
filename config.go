package jwwblog

import (
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/joywithwealth/jwwblog/content"
)

// SiteConfig holds all configuration for the blog.
type SiteConfig struct {
	Name        string // Title suffix (default "Joy With Wealth Blog")
	Author      string // Fallback author for posts without one (default "Joy With Wealth")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Feed and JSON-LD description

	Addr string // Listen address (default ":3000")

	ContentURL   string        // Origin publishing /blog/posts.json and the markdown bodies
	ContentDir   string        // Local tree with the same layout; wins over ContentURL
	PagesDir     string        // Optional directory overriding the embedded page templates
	FetchTimeout time.Duration // Per-request content fetch bound (default 10s)
	PostCacheTTL time.Duration // Post index cache TTL (default 5min)

	SessionSecret string // Required: signs the consent cookie
	CookieSecure  bool   // Set true for HTTPS

	AnalyticsID string // GA measurement id; the placeholder disables the tag
	PixelID     string // Facebook pixel id; the placeholder disables the tag

	ConsentLedgerPath    string // SQLite path; empty disables the ledger
	ConsentRetentionDays int    // Ledger retention (default 395)

	Env       string // APP_ENV, "development" switches to text logs
	SentryDSN string
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Joy With Wealth Blog"
	}
	if c.Author == "" {
		c.Author = "Joy With Wealth"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Description == "" {
		c.Description = "Insights on financial planning and wealth management."
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = 10 * time.Second
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.ConsentRetentionDays == 0 {
		c.ConsentRetentionDays = 395
	}
}

// IsDevelopment reports APP_ENV=development.
func (c SiteConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() (SiteConfig, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return SiteConfig{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := SiteConfig{
		Name:              os.Getenv("SITE_NAME"),
		Author:            os.Getenv("SITE_AUTHOR"),
		URL:               os.Getenv("SITE_URL"),
		Description:       os.Getenv("SITE_DESCRIPTION"),
		Addr:              os.Getenv("ADDR"),
		ContentURL:        os.Getenv("CONTENT_URL"),
		ContentDir:        os.Getenv("CONTENT_DIR"),
		PagesDir:          os.Getenv("PAGES_DIR"),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		AnalyticsID:       EnvOr("GA_MEASUREMENT_ID", "G-XXXXXXXXXX"),
		PixelID:           EnvOr("FB_PIXEL_ID", "XXXXXXXXXX"),
		ConsentLedgerPath: os.Getenv("CONSENT_LEDGER_PATH"),
		Env:               EnvOr("APP_ENV", "production"),
		SentryDSN:         os.Getenv("SENTRY_DSN"),
	}

	var err error
	if cfg.FetchTimeout, err = envDuration("FETCH_TIMEOUT"); err != nil {
		return SiteConfig{}, err
	}
	if cfg.PostCacheTTL, err = envDuration("POST_CACHE_TTL"); err != nil {
		return SiteConfig{}, err
	}
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		if cfg.CookieSecure, err = strconv.ParseBool(v); err != nil {
			return SiteConfig{}, fmt.Errorf("COOKIE_SECURE: %w", err)
		}
	}
	if v := os.Getenv("CONSENT_RETENTION_DAYS"); v != "" {
		if cfg.ConsentRetentionDays, err = strconv.Atoi(v); err != nil {
			return SiteConfig{}, fmt.Errorf("CONSENT_RETENTION_DAYS: %w", err)
		}
	}
	cfg.setDefaults()
	return cfg, nil
}

func envDuration(key string) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for site-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithContentSource replaces the source derived from ContentURL/ContentDir.
func WithContentSource(src content.Source) Option {
	return func(a *App) {
		a.source = src
	}
}

// WithPages loads page templates from fsys instead of the embedded ones.
func WithPages(fsys fs.FS) Option {
	return func(a *App) {
		a.pagesFS = fsys
	}
}
