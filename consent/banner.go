package consent

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/a-h/templ"

	"github.com/joywithwealth/jwwblog/dom"
)

// BannerID is the id of the banner element.
const BannerID = "cookie-consent-banner"

// ErrNotShown is returned when a choice is made while the banner is not up.
var ErrNotShown = errors.New("consent: banner not shown")

// State is the banner lifecycle position within one page view.
type State int

const (
	StateUnknown State = iota
	StateShown
	StateDecided
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateShown:
		return "shown"
	case StateDecided:
		return "decided"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Banner drives the consent prompt for one page view.
type Banner struct {
	store  *Store
	loader ScriptLoader
	markup templ.Component

	doc   *dom.Document
	state State
}

// NewBanner wires a banner. markup renders the prompt; it may be nil when
// the banner only runs the state machine.
func NewBanner(store *Store, loader ScriptLoader, markup templ.Component) *Banner {
	return &Banner{store: store, loader: loader, markup: markup}
}

// State returns the current state.
func (b *Banner) State() State {
	return b.state
}

// Mount runs on page load. A stored decision loads the permitted scripts
// and the banner is never shown; otherwise the prompt is appended to body.
func (b *Banner) Mount(ctx context.Context, doc *dom.Document) error {
	if b.state != StateUnknown {
		return nil
	}
	b.doc = doc
	if d, ok := b.store.Read(); ok {
		b.apply(d)
		b.state = StateDecided
		return nil
	}
	b.state = StateShown
	if doc == nil || b.markup == nil || doc.ByID(BannerID) != nil {
		return nil
	}
	var buf bytes.Buffer
	if err := b.markup.Render(ctx, &buf); err != nil {
		return fmt.Errorf("render consent banner: %w", err)
	}
	return dom.AppendHTML(doc.Body(), buf.String())
}

// AcceptAll stores {true, true}, loads both scripts and removes the banner.
func (b *Banner) AcceptAll() (Decision, error) {
	return b.decide(true, true)
}

// EssentialOnly stores {false, false} and removes the banner.
func (b *Banner) EssentialOnly() (Decision, error) {
	return b.decide(false, false)
}

func (b *Banner) decide(analytics, marketing bool) (Decision, error) {
	if b.state != StateShown {
		return Decision{}, ErrNotShown
	}
	d := b.store.Write(analytics, marketing)
	b.apply(d)
	if b.doc != nil {
		dom.Remove(b.doc.ByID(BannerID))
	}
	b.state = StateDecided
	return d, nil
}

func (b *Banner) apply(d Decision) {
	if d.AnalyticsAllowed {
		b.loader.LoadAnalytics(b.doc)
	}
	if d.MarketingAllowed {
		b.loader.LoadMarketing(b.doc)
	}
}
