package prose

import (
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/joywithwealth/jwwblog/dom"
)

func content(t *testing.T, inner string) *html.Node {
	t.Helper()
	doc, err := dom.ParseString(`<html><body><div id="post-content" class="hidden">` + inner + `</div></body></html>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc.ByID("post-content")
}

func class(n *html.Node) string {
	v, _ := dom.Attr(n, "class")
	return v
}

func TestStyleAssignsOneClassPerKind(t *testing.T) {
	c := content(t, `<h2 class="old">A</h2><h3>B</h3><h4>C</h4><p>text <a href="/x">link</a> <code>x</code></p>
<ul><li>u</li></ul><ol><li>o</li></ol><blockquote><p>q</p></blockquote><hr>
<img src="/a.png"><table><thead><tr><th>h</th></tr></thead><tbody><tr><td>d</td></tr></tbody></table>`)
	Style(c)

	if got := class(c); got != ContainerClass {
		t.Errorf("container class = %q, want %q", got, ContainerClass)
	}
	for _, tag := range []atom.Atom{atom.H2, atom.H3, atom.H4, atom.P, atom.A, atom.Ul, atom.Ol, atom.Blockquote, atom.Hr, atom.Img, atom.Table, atom.Th, atom.Td, atom.Code} {
		for _, n := range dom.Elements(c, tag) {
			if got := class(n); got != Classes[tag] {
				t.Errorf("<%s> class = %q, want %q", tag, got, Classes[tag])
			}
		}
	}
}

func TestStyleSkipsCodeInsidePre(t *testing.T) {
	c := content(t, `<pre><code class="language-go">fmt.Println()</code></pre><p><code>inline</code></p>`)
	Style(c)

	pre := dom.First(c, atom.Pre)
	if class(pre) != Classes[atom.Pre] {
		t.Errorf("pre class = %q", class(pre))
	}
	codes := dom.Elements(c, atom.Code)
	if len(codes) != 2 {
		t.Fatalf("expected 2 code elements, got %d", len(codes))
	}
	if got := class(codes[0]); got != "language-go" {
		t.Errorf("block code class should be untouched, got %q", got)
	}
	if got := class(codes[1]); got != Classes[atom.Code] {
		t.Errorf("inline code class = %q", got)
	}
}

func TestStyleIsIdempotent(t *testing.T) {
	c := content(t, `<p>a</p>`)
	Style(c)
	Style(c)
	if got := class(dom.First(c, atom.P)); got != Classes[atom.P] {
		t.Errorf("second pass changed class to %q", got)
	}
}

func TestBuildTOC(t *testing.T) {
	c := content(t, `<h2>Getting Started</h2><p>x</p><h3 id="budget">Budgeting</h3><h2>Investing</h2><h4>Skip</h4>`)
	entries := BuildTOC(c)

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []Entry{
		{AnchorID: "heading-0", Label: "Getting Started", Level: 2},
		{AnchorID: "budget", Label: "Budgeting", Level: 3},
		{AnchorID: "heading-2", Label: "Investing", Level: 2},
	}
	for i, e := range entries {
		if e != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, e, want[i])
		}
	}
	if entries[0].Indented() || !entries[1].Indented() {
		t.Error("only the level-3 entry should be indented")
	}
	if id, _ := dom.Attr(dom.First(c, atom.H2), "id"); id != "heading-0" {
		t.Errorf("synthetic id not written back, got %q", id)
	}
}

func TestBuildTOCNoHeadings(t *testing.T) {
	c := content(t, `<p>just text</p>`)
	if entries := BuildTOC(c); len(entries) != 0 {
		t.Errorf("expected no entries, got %v", entries)
	}
}
