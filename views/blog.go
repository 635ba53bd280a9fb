package views

import (
	"context"
	"html"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/joywithwealth/jwwblog/content"
	"github.com/joywithwealth/jwwblog/markdown"
	"github.com/joywithwealth/jwwblog/prose"
)

const (
	dotSeparator = `<span class="w-1 h-1 rounded-full bg-powder-blue"></span>`
	newspaperSVG = `<path stroke-linecap="round" stroke-linejoin="round" stroke-width="1.5" d="M19 20H5a2 2 0 01-2-2V6a2 2 0 012-2h10a2 2 0 012 2v1m2 13a2 2 0 01-2-2V7m2 13a2 2 0 002-2V9a2 2 0 00-2-2h-2m-4-3H9M7 16h6M7 8h6v4H7V8z"></path>`
	cardTagClass = "px-2.5 py-1 text-xs font-medium bg-light-gold/20 text-dark-goldenrod rounded-full border border-light-gold/50"
	postTagClass = "px-3 py-1 text-xs font-medium bg-light-gold/20 text-dark-goldenrod rounded-full border border-light-gold/50"
	tocLinkClass = "text-air-force-blue hover:text-dark-goldenrod transition-colors"
)

var esc = html.EscapeString

func fragment(build func(b *strings.Builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		build(&b)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// PostCard renders the list card for one post.
func PostCard(p content.Post) templ.Component {
	return fragment(func(b *strings.Builder) { writeCard(b, p) })
}

// PostCards renders every card in index order as one fragment.
func PostCards(posts []content.Post) templ.Component {
	return fragment(func(b *strings.Builder) {
		for _, p := range posts {
			writeCard(b, p)
		}
	})
}

func writeCard(b *strings.Builder, p content.Post) {
	b.WriteString(`<a href="` + esc(p.Link()) + `" class="group block">`)
	b.WriteString(`<div class="bg-pure-white rounded-2xl border border-powder-blue/30 shadow-sm hover:shadow-md transition-shadow duration-300 overflow-hidden">`)
	if src := markdown.SafeURL(p.CoverImage); src != "" {
		b.WriteString(`<img src="` + src + `" alt="` + esc(p.Title) + `" loading="lazy" class="w-full h-48 object-cover rounded-t-2xl">`)
	} else {
		b.WriteString(`<div class="w-full h-48 bg-gradient-to-br from-tar-blue to-charcoal-blue rounded-t-2xl flex items-center justify-center">`)
		b.WriteString(`<svg class="w-16 h-16 text-powder-blue/40" fill="none" stroke="currentColor" viewBox="0 0 24 24">` + newspaperSVG + `</svg>`)
		b.WriteString(`</div>`)
	}
	b.WriteString(`<div class="p-6">`)
	b.WriteString(`<h2 class="text-xl font-bold text-pitch-black group-hover:text-dark-goldenrod transition-colors duration-200 mb-2">` + esc(p.Title) + `</h2>`)
	b.WriteString(`<div class="flex flex-wrap items-center gap-3 text-sm text-charcoal-blue mb-3">`)
	writeMeta(b, p, p.Author)
	b.WriteString(`</div>`)
	b.WriteString(`<p class="text-charcoal-blue leading-relaxed text-sm">` + esc(p.Excerpt) + `</p>`)
	if len(p.Tags) > 0 {
		b.WriteString(`<div class="flex flex-wrap gap-2 mt-4">`)
		for _, t := range p.Tags {
			b.WriteString(`<span class="` + cardTagClass + `">` + esc(t) + `</span>`)
		}
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div></div></a>`)
}

func writeMeta(b *strings.Builder, p content.Post, author string) {
	b.WriteString(`<span>` + esc(FormatDate(p.Date)) + `</span>`)
	b.WriteString(dotSeparator)
	b.WriteString(`<span>` + esc(author) + `</span>`)
	b.WriteString(dotSeparator)
	b.WriteString(`<span>` + strconv.Itoa(p.ReadingTime) + ` min read</span>`)
}

// EmptyList is the placeholder shown when there are no posts.
func EmptyList() templ.Component {
	return fragment(func(b *strings.Builder) {
		b.WriteString(`<div class="col-span-full text-center py-20">`)
		b.WriteString(`<svg class="w-16 h-16 text-powder-blue mx-auto mb-4" fill="none" stroke="currentColor" viewBox="0 0 24 24">` + newspaperSVG + `</svg>`)
		b.WriteString(`<h2 class="text-2xl font-serif font-bold text-pitch-black mb-2">No posts yet</h2>`)
		b.WriteString(`<p class="text-charcoal-blue">Check back soon for insights on financial planning and wealth management.</p>`)
		b.WriteString(`</div>`)
	})
}

// PostMeta renders date, author and reading time for the post header.
// An empty author falls back to defaultAuthor.
func PostMeta(p content.Post, defaultAuthor string) templ.Component {
	author := p.Author
	if author == "" {
		author = defaultAuthor
	}
	return fragment(func(b *strings.Builder) { writeMeta(b, p, author) })
}

// TagPills renders the post header tags, each linking to the filtered list.
func TagPills(tags []string) templ.Component {
	return fragment(func(b *strings.Builder) {
		for _, t := range tags {
			href := "/blog/?tag=" + url.QueryEscape(t)
			b.WriteString(`<a href="` + esc(href) + `" class="` + postTagClass + `">` + esc(t) + `</a>`)
		}
	})
}

// Cover renders the header image. Unsafe or empty URLs render nothing.
func Cover(p content.Post) templ.Component {
	return fragment(func(b *strings.Builder) {
		src := markdown.SafeURL(p.CoverImage)
		if src == "" {
			return
		}
		b.WriteString(`<img src="` + src + `" alt="` + esc(p.Title) + `" class="w-full rounded-2xl shadow-lg">`)
	})
}

// NotFound is the error view that replaces the post loading indicator.
func NotFound() templ.Component {
	return fragment(func(b *strings.Builder) {
		b.WriteString(`<div class="text-center py-20">`)
		b.WriteString(`<svg class="w-16 h-16 text-powder-blue mx-auto mb-4" fill="none" stroke="currentColor" viewBox="0 0 24 24">`)
		b.WriteString(`<path stroke-linecap="round" stroke-linejoin="round" stroke-width="1.5" d="M12 9v2m0 4h.01M21 12a9 9 0 11-18 0 9 9 0 0118 0z"></path>`)
		b.WriteString(`</svg>`)
		b.WriteString(`<h2 class="text-2xl font-serif font-bold text-pitch-black mb-2">Post Not Found</h2>`)
		b.WriteString(`<p class="text-charcoal-blue mb-6">The article you are looking for could not be loaded.</p>`)
		b.WriteString(`<a href="/blog/" class="px-6 py-3 bg-dark-goldenrod text-pure-white rounded-full font-medium hover:bg-honey-bronze transition-colors shadow-lg">Back to Blog</a>`)
		b.WriteString(`</div>`)
	})
}

// TOCItems renders one list item per entry; level 3 entries are indented.
func TOCItems(entries []prose.Entry) templ.Component {
	return fragment(func(b *strings.Builder) {
		for _, e := range entries {
			if e.Indented() {
				b.WriteString(`<li class="ml-4">`)
			} else {
				b.WriteString(`<li>`)
			}
			b.WriteString(`<a href="#` + esc(e.AnchorID) + `" class="` + tocLinkClass + `">` + esc(e.Label) + `</a></li>`)
		}
	})
}

// ConsentBanner is the cookie prompt. Both buttons submit the form with
// their choice.
func ConsentBanner(form ConsentForm) templ.Component {
	return fragment(func(b *strings.Builder) {
		b.WriteString(`<div id="cookie-consent-banner" class="fixed bottom-0 left-0 right-0 z-[100] bg-tar-blue text-pure-white p-4 shadow-2xl border-t border-air-force-blue/30">`)
		b.WriteString(`<form method="post" action="` + esc(form.Action) + `" class="max-w-7xl mx-auto flex flex-col sm:flex-row items-center justify-between gap-4">`)
		b.WriteString(`<input type="hidden" name="_csrf" value="` + esc(form.CSRFToken) + `">`)
		b.WriteString(`<input type="hidden" name="return" value="` + esc(form.Return) + `">`)
		b.WriteString(`<div class="text-sm text-powder-blue">`)
		b.WriteString(`We use cookies for analytics and marketing. By clicking &#34;Accept All&#34;, you consent to our use of cookies. `)
		b.WriteString(`<a href="/policies/#privacy-policy" class="underline text-light-gold hover:text-honey-bronze">Learn more</a>`)
		b.WriteString(`</div>`)
		b.WriteString(`<div class="flex gap-3 flex-shrink-0">`)
		b.WriteString(`<button type="submit" name="choice" value="essential" id="consent-reject" class="px-4 py-2 text-sm border border-powder-blue/50 rounded-full hover:bg-charcoal-blue transition-colors">Essential Only</button>`)
		b.WriteString(`<button type="submit" name="choice" value="accept" id="consent-accept" class="px-4 py-2 text-sm bg-dark-goldenrod text-pure-white rounded-full hover:bg-honey-bronze transition-colors font-medium">Accept All</button>`)
		b.WriteString(`</div></form></div>`)
	})
}

// String renders cmp to a string.
func String(ctx context.Context, cmp templ.Component) (string, error) {
	var b strings.Builder
	if err := cmp.Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}
