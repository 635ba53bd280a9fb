// Package prose applies the site's typography to rendered post content and
// derives the table of contents from its headings.
package prose

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/joywithwealth/jwwblog/dom"
)

// ContainerClass is assigned to the element that holds rendered content.
const ContainerClass = "prose-jww"

// Classes maps each styled element kind to its class string.
var Classes = map[atom.Atom]string{
	atom.H2:         "text-2xl font-serif font-bold text-pitch-black mt-10 mb-4",
	atom.H3:         "text-xl font-serif font-bold text-pitch-black mt-8 mb-3",
	atom.H4:         "text-lg font-bold text-pitch-black mt-6 mb-2",
	atom.P:          "text-tar-blue leading-relaxed mb-5",
	atom.A:          "text-air-force-blue hover:text-dark-goldenrod underline transition-colors",
	atom.Ul:         "list-disc list-inside text-tar-blue mb-5 space-y-2",
	atom.Ol:         "list-decimal list-inside text-tar-blue mb-5 space-y-2",
	atom.Blockquote: "border-l-4 border-dark-goldenrod pl-6 py-2 my-6 bg-light-gold/10 rounded-r-lg text-charcoal-blue italic",
	atom.Pre:        "bg-pitch-black text-light-blue rounded-xl p-6 overflow-x-auto mb-5 text-sm",
	atom.Code:       "bg-powder-blue/20 text-charcoal-blue px-1.5 py-0.5 rounded text-sm font-mono",
	atom.Img:        "rounded-xl shadow-md my-6 max-w-full h-auto",
	atom.Hr:         "border-t border-powder-blue/30 my-10",
	atom.Table:      "w-full border-collapse mb-5",
	atom.Th:         "bg-tar-blue text-pure-white text-left px-4 py-2 text-sm font-semibold",
	atom.Td:         "border-b border-powder-blue/30 px-4 py-2 text-sm",
}

// Style overwrites the class attribute of every styled element below
// container. Code blocks keep the classes of their highlighter: a <code>
// whose immediate parent is <pre> is skipped.
func Style(container *html.Node) {
	if container == nil {
		return
	}
	dom.SetAttr(container, "class", ContainerClass)
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		dom.Walk(c, func(n *html.Node) bool {
			class, ok := Classes[n.DataAtom]
			if !ok {
				return true
			}
			if n.DataAtom == atom.Code && n.Parent != nil && n.Parent.DataAtom == atom.Pre {
				return true
			}
			dom.SetAttr(n, "class", class)
			return true
		})
	}
}

// Entry is one line of the table of contents.
type Entry struct {
	AnchorID string
	Label    string
	Level    int
}

// Indented reports whether the entry sits under a preceding level-2 entry.
func (e Entry) Indented() bool {
	return e.Level == 3
}

// BuildTOC lists the h2 and h3 headings below container in document order.
// A heading without an id gets "heading-<i>", i being its position in the list.
func BuildTOC(container *html.Node) []Entry {
	if container == nil {
		return nil
	}
	headings := dom.Elements(container, atom.H2, atom.H3)
	entries := make([]Entry, 0, len(headings))
	for i, h := range headings {
		id, ok := dom.Attr(h, "id")
		if !ok || strings.TrimSpace(id) == "" {
			id = "heading-" + strconv.Itoa(i)
			dom.SetAttr(h, "id", id)
		}
		level := 2
		if h.DataAtom == atom.H3 {
			level = 3
		}
		entries = append(entries, Entry{
			AnchorID: id,
			Label:    strings.TrimSpace(dom.TextContent(h)),
			Level:    level,
		})
	}
	return entries
}
