package views

// SiteConfig holds the site-wide values fragments need.
type SiteConfig struct {
	Name        string // SITE_NAME    (default "Joy With Wealth Blog")
	URL         string // SITE_URL     (default "http://localhost:3000")
	Description string // SITE_DESCRIPTION
	Author      string // SITE_AUTHOR  (default "Joy With Wealth")
}

// ConsentForm carries what the banner form posts back.
type ConsentForm struct {
	Action    string // form target, "/consent/"
	Return    string // local path to come back to
	CSRFToken string
}
