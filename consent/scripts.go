package consent

import (
	"encoding/json"
	"fmt"
	"net/url"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/joywithwealth/jwwblog/dom"
)

// Placeholder identifiers shipped before launch. They suppress loading.
const (
	PlaceholderAnalyticsID = "G-XXXXXXXXXX"
	PlaceholderPixelID     = "XXXXXXXXXX"
)

// Marker element ids that make the loaders idempotent.
const (
	AnalyticsMarkerID = "ga-script"
	MarketingMarkerID = "fb-pixel"
)

const (
	gtagURL     = "https://www.googletagmanager.com/gtag/js"
	fbEvents    = "https://connect.facebook.net/en_US/fbevents.js"
	fbBootstrap = `!function(f,b,e,v,n,t,s){if(f.fbq)return;n=f.fbq=function(){n.callMethod?n.callMethod.apply(n,arguments):n.queue.push(arguments)};if(!f._fbq)f._fbq=n;n.push=n;n.loaded=!0;n.version='2.0';n.queue=[];t=b.createElement(e);t.async=!0;t.src=v;s=b.getElementsByTagName(e)[0];s.parentNode.insertBefore(t,s)}(window,document,'script',%s);`
)

// ScriptLoader injects the third-party tags into a page head.
type ScriptLoader struct {
	AnalyticsID string
	PixelID     string
}

// AnalyticsEnabled reports a real analytics identifier.
func (l ScriptLoader) AnalyticsEnabled() bool {
	return l.AnalyticsID != "" && l.AnalyticsID != PlaceholderAnalyticsID
}

// MarketingEnabled reports a real pixel identifier.
func (l ScriptLoader) MarketingEnabled() bool {
	return l.PixelID != "" && l.PixelID != PlaceholderPixelID
}

// LoadAnalytics adds the tag manager script and its init call. It reports
// whether anything was injected.
func (l ScriptLoader) LoadAnalytics(doc *dom.Document) bool {
	if doc == nil || !l.AnalyticsEnabled() {
		return false
	}
	if doc.ByID(AnalyticsMarkerID) != nil {
		return false
	}
	head := doc.Head()
	if head == nil {
		return false
	}
	id := jsString(l.AnalyticsID)

	src := gtagURL + "?id=" + url.QueryEscape(l.AnalyticsID)
	head.AppendChild(dom.NewElement(atom.Script,
		html.Attribute{Key: "id", Val: AnalyticsMarkerID},
		html.Attribute{Key: "async", Val: ""},
		html.Attribute{Key: "src", Val: src},
	))
	head.AppendChild(inlineScript(
		"window.dataLayer=window.dataLayer||[];" +
			"function gtag(){dataLayer.push(arguments);}" +
			"gtag('js',new Date());" +
			"gtag('config'," + id + ",{anonymize_ip:true});",
	))
	return true
}

// LoadMarketing installs the queued fbq callable, loads the vendor script
// and fires init plus a page view.
func (l ScriptLoader) LoadMarketing(doc *dom.Document) bool {
	if doc == nil || !l.MarketingEnabled() {
		return false
	}
	if doc.ByID(MarketingMarkerID) != nil {
		return false
	}
	head := doc.Head()
	if head == nil {
		return false
	}
	bootstrap := fmt.Sprintf(fbBootstrap, jsString(fbEvents))
	s := inlineScript(bootstrap +
		"fbq('init'," + jsString(l.PixelID) + ");" +
		"fbq('track','PageView');")
	dom.SetAttr(s, "id", MarketingMarkerID)
	head.AppendChild(s)
	return true
}

func inlineScript(js string) *html.Node {
	s := dom.NewElement(atom.Script)
	s.AppendChild(&html.Node{Type: html.TextNode, Data: js})
	return s
}

// jsString quotes s as a JavaScript string literal. The json encoder escapes
// <, > and & so the value cannot close the script element.
func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
