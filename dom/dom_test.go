package dom

import (
	"strings"
	"testing"

	"golang.org/x/net/html/atom"
)

const page = `<!DOCTYPE html><html><head><title>Blog</title></head><body>
<div id="post-loading">Loading</div>
<article id="post-content" class="hidden mx-auto"></article>
</body></html>`

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := ParseString(s)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	return doc
}

func TestByID(t *testing.T) {
	doc := mustParse(t, page)
	n := doc.ByID("post-content")
	if n == nil {
		t.Fatal("expected #post-content")
	}
	if n.DataAtom != atom.Article {
		t.Errorf("ByID returned <%s>, want <article>", n.Data)
	}
	if doc.ByID("missing") != nil {
		t.Error("ByID(missing) should be nil")
	}
}

func TestClassToggling(t *testing.T) {
	doc := mustParse(t, page)
	n := doc.ByID("post-content")
	if !IsHidden(n) {
		t.Fatal("expected hidden class from template")
	}
	Show(n)
	if IsHidden(n) {
		t.Error("Show should remove hidden")
	}
	if !HasClass(n, "mx-auto") {
		t.Error("Show should keep other classes")
	}
	Hide(n)
	Hide(n)
	if got := Classes(n); len(got) != 2 {
		t.Errorf("Hide twice should not duplicate class, got %v", got)
	}
}

func TestSetTitle(t *testing.T) {
	doc := mustParse(t, page)
	doc.SetTitle("Welcome - Joy With Wealth Blog")
	if got := doc.Title(); got != "Welcome - Joy With Wealth Blog" {
		t.Errorf("Title() = %q", got)
	}
}

func TestSetInnerHTMLReplacesChildren(t *testing.T) {
	doc := mustParse(t, page)
	n := doc.ByID("post-loading")
	if err := SetInnerHTML(n, `<h2>Post Not Found</h2><a href="/blog/">Back</a>`); err != nil {
		t.Fatalf("SetInnerHTML: %v", err)
	}
	got := InnerHTML(n)
	if strings.Contains(got, "Loading") {
		t.Errorf("old children should be gone: %q", got)
	}
	if !strings.Contains(got, "<h2>Post Not Found</h2>") {
		t.Errorf("missing new markup: %q", got)
	}
}

func TestElementsDocumentOrder(t *testing.T) {
	doc := mustParse(t, `<div id="c"><h2>A</h2><section><h3>B</h3></section><h2>C</h2><h4>D</h4></div>`)
	c := doc.ByID("c")
	hs := Elements(c, atom.H2, atom.H3)
	var labels []string
	for _, h := range hs {
		labels = append(labels, TextContent(h))
	}
	if strings.Join(labels, ",") != "A,B,C" {
		t.Errorf("Elements order = %v, want [A B C]", labels)
	}
}

func TestRemove(t *testing.T) {
	doc := mustParse(t, page)
	Remove(doc.ByID("post-loading"))
	if doc.ByID("post-loading") != nil {
		t.Error("element should be detached")
	}
	Remove(nil)
}

func TestSetTextEscapesOnRender(t *testing.T) {
	doc := mustParse(t, page)
	SetText(doc.ByID("post-loading"), "<script>x</script>")
	if strings.Contains(doc.String(), "<script>x</script>") {
		t.Error("text content must be escaped when rendered")
	}
}
