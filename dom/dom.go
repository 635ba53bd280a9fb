// Package dom is a thin document model over golang.org/x/net/html. Page
// controllers use it the way browser scripts use the live DOM: look an
// element up by id, swap its children, toggle classes, then serialize.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HiddenClass is the utility class page templates use to hide a region.
const HiddenClass = "hidden"

// Document is a parsed HTML page owned by a single request.
type Document struct {
	root *html.Node
}

// Parse reads a complete HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Head returns the <head> element. The HTML parser always synthesizes one.
func (d *Document) Head() *html.Node {
	return First(d.root, atom.Head)
}

// Body returns the <body> element.
func (d *Document) Body() *html.Node {
	return First(d.root, atom.Body)
}

// ByID returns the first element whose id attribute equals id, or nil.
func (d *Document) ByID(id string) *html.Node {
	if d == nil || id == "" {
		return nil
	}
	var found *html.Node
	Walk(d.root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if v, ok := Attr(n, "id"); ok && v == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Title returns the text of the <title> element.
func (d *Document) Title() string {
	if t := First(d.root, atom.Title); t != nil {
		return TextContent(t)
	}
	return ""
}

// SetTitle replaces the <title> text, creating the element when missing.
func (d *Document) SetTitle(title string) {
	t := First(d.root, atom.Title)
	if t == nil {
		head := d.Head()
		if head == nil {
			return
		}
		t = NewElement(atom.Title)
		head.AppendChild(t)
	}
	SetText(t, title)
}

// Render serializes the whole document.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String serializes the document, returning "" on write failure.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Walk visits n and its descendants in document order. Only element nodes
// are passed to fn; returning false skips the element's subtree.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if n == nil {
		return
	}
	if n.Type == html.ElementNode && !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}

// Elements returns the descendants of n (n excluded) matching any of tags,
// in document order.
func Elements(n *html.Node, tags ...atom.Atom) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, func(e *html.Node) bool {
			for _, t := range tags {
				if e.DataAtom == t {
					out = append(out, e)
					break
				}
			}
			return true
		})
	}
	return out
}

// First returns the first element under n (n included) with the given tag.
func First(n *html.Node, tag atom.Atom) *html.Node {
	var found *html.Node
	Walk(n, func(e *html.Node) bool {
		if found != nil {
			return false
		}
		if e.DataAtom == tag {
			found = e
			return false
		}
		return true
	})
	return found
}

// NewElement builds a detached element node.
func NewElement(tag atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: tag,
		Data:     tag.String(),
		Attr:     attrs,
	}
}

// Attr returns the value of the attribute key on n.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces the attribute key on n.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes the attribute key from n.
func RemoveAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

// Classes returns the whitespace-separated class list of n.
func Classes(n *html.Node) []string {
	v, _ := Attr(n, "class")
	return strings.Fields(v)
}

// HasClass reports whether n carries class c.
func HasClass(n *html.Node, c string) bool {
	for _, have := range Classes(n) {
		if have == c {
			return true
		}
	}
	return false
}

// AddClass appends c to the class list of n unless already present.
func AddClass(n *html.Node, c string) {
	if n == nil || HasClass(n, c) {
		return
	}
	SetAttr(n, "class", strings.Join(append(Classes(n), c), " "))
}

// RemoveClass drops every occurrence of c from the class list of n.
func RemoveClass(n *html.Node, c string) {
	if n == nil {
		return
	}
	var kept []string
	for _, have := range Classes(n) {
		if have != c {
			kept = append(kept, have)
		}
	}
	if len(kept) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(kept, " "))
}

// Hide adds the hidden class.
func Hide(n *html.Node) { AddClass(n, HiddenClass) }

// Show removes the hidden class.
func Show(n *html.Node) { RemoveClass(n, HiddenClass) }

// IsHidden reports whether n carries the hidden class.
func IsHidden(n *html.Node) bool { return HasClass(n, HiddenClass) }

// TextContent concatenates all text nodes below n.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			collect(cc)
		}
	}
	collect(n)
	return b.String()
}

// RemoveChildren detaches every child of n.
func RemoveChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

// SetText replaces the children of n with a single text node.
func SetText(n *html.Node, s string) {
	if n == nil {
		return
	}
	RemoveChildren(n)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: s})
}

// Remove detaches n from its parent.
func Remove(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// ParseFragment parses markup as the children of an element shaped like
// parent. The returned nodes are detached.
func ParseFragment(markup string, parent *html.Node) ([]*html.Node, error) {
	ctx := NewElement(atom.Div)
	if parent != nil && parent.Type == html.ElementNode {
		ctx = NewElement(parent.DataAtom)
		ctx.Data = parent.Data
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	return nodes, nil
}

// SetInnerHTML replaces the children of n with the parsed markup in one step.
func SetInnerHTML(n *html.Node, markup string) error {
	if n == nil {
		return nil
	}
	nodes, err := ParseFragment(markup, n)
	if err != nil {
		return err
	}
	RemoveChildren(n)
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

// AppendHTML parses markup and appends the result to n's children.
func AppendHTML(n *html.Node, markup string) error {
	if n == nil {
		return nil
	}
	nodes, err := ParseFragment(markup, n)
	if err != nil {
		return err
	}
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

// InnerHTML serializes the children of n.
func InnerHTML(n *html.Node) string {
	if n == nil {
		return ""
	}
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return buf.String()
		}
	}
	return buf.String()
}
