package markdown

import (
	"errors"
	"strings"
	"testing"
)

func TestRendererHeadings(t *testing.T) {
	tests := []struct {
		input    string
		contains string
	}{
		{"# Heading 1", "<h1"},
		{"## Heading 2", `<h2 id="heading-2">Heading 2</h2>`},
		{"### Heading 3", `<h3 id="heading-3">Heading 3</h3>`},
	}
	r := NewRenderer()
	for _, tt := range tests {
		got, err := r.Render([]byte(tt.input))
		if err != nil {
			t.Fatalf("Render(%q): %v", tt.input, err)
		}
		if !strings.Contains(got, tt.contains) {
			t.Errorf("Render(%q) = %q, want it to contain %q", tt.input, got, tt.contains)
		}
	}
}

func TestRendererLists(t *testing.T) {
	r := NewRenderer()
	got, err := r.Render([]byte("- item 1\n- item 2\n\n1. first\n2. second"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<ul>", "<li>item 1</li>", "<ol>", "<li>second</li>"} {
		if !strings.Contains(got, want) {
			t.Errorf("lists output %q missing %q", got, want)
		}
	}
}

func TestRendererTable(t *testing.T) {
	r := NewRenderer()
	got, err := r.Render([]byte("| a | b |\n|---|---|\n| 1 | 2 |"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<table>", "<th>a</th>", "<td>2</td>"} {
		if !strings.Contains(got, want) {
			t.Errorf("table output %q missing %q", got, want)
		}
	}
}

func TestRendererStripsFrontMatter(t *testing.T) {
	r := NewRenderer()
	got, err := r.Render([]byte("---\ntitle: Hidden\n---\n\nBody text"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "Hidden") {
		t.Errorf("front matter leaked into output: %q", got)
	}
	if !strings.Contains(got, "<p>Body text</p>") {
		t.Errorf("body missing: %q", got)
	}
}

func TestRendererCodeBlockWithLanguage(t *testing.T) {
	r := NewRenderer()
	got, err := r.Render([]byte("```go\nfmt.Println(\"hello\")\n```"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `<pre><code class="language-go">`) {
		t.Errorf("code block should carry language class: %q", got)
	}
}

func TestPipelineSanitizes(t *testing.T) {
	p := NewPipeline()
	got := p.HTML("## Title\n\n<script>alert(1)</script>\n\n[x](javascript:alert(1)) [ok](https://example.com)")
	if strings.Contains(got, "<script>") {
		t.Errorf("script survived sanitizing: %q", got)
	}
	if strings.Contains(got, "javascript:") {
		t.Errorf("javascript url survived sanitizing: %q", got)
	}
	if !strings.Contains(got, `id="title"`) {
		t.Errorf("heading id should survive sanitizing: %q", got)
	}
	if !strings.Contains(got, `href="https://example.com"`) {
		t.Errorf("safe link dropped: %q", got)
	}
}

func TestPipelineKeepsSafeRawHTML(t *testing.T) {
	p := NewPipeline()
	got := p.HTML("Intro\n\n<details><summary>More</summary>hidden</details>\n\n" +
		"Text with <mark>highlight</mark> and <br> break.\n\n<script>alert(1)</script>\n")
	for _, want := range []string{"<details>", "<summary>More</summary>", "hidden", "<mark>highlight</mark>", "<br"} {
		if !strings.Contains(got, want) {
			t.Errorf("HTML() = %q, want it to contain %q", got, want)
		}
	}
	for _, unwanted := range []string{"<script", "alert(1)"} {
		if strings.Contains(got, unwanted) {
			t.Errorf("HTML() = %q, should not contain %q", got, unwanted)
		}
	}
}

func TestPipelineLinksAreFollowable(t *testing.T) {
	got := NewPipeline().HTML("[Budgeting](/blog/posts/budgeting/)")
	if !strings.Contains(got, `href="/blog/posts/budgeting/"`) {
		t.Fatalf("link dropped: %q", got)
	}
	if strings.Contains(got, "nofollow") {
		t.Errorf("post links should not be nofollow: %q", got)
	}
}

func TestPipelineWithoutRendererIsPreformatted(t *testing.T) {
	p := &Pipeline{Sanitizer: NewSanitizer()}
	got := p.HTML("# a <b>")
	if got != "<pre># a &lt;b&gt;</pre>" {
		t.Errorf("HTML() = %q", got)
	}
}

type failingRenderer struct{}

func (failingRenderer) Render([]byte) (string, error) { return "", errors.New("boom") }

func TestPipelineRendererFailureDegrades(t *testing.T) {
	p := &Pipeline{Renderer: failingRenderer{}}
	if got := p.HTML("text"); got != "<pre>text</pre>" {
		t.Errorf("HTML() = %q", got)
	}
}

func TestPipelineWithoutSanitizerKeepsRendererOutput(t *testing.T) {
	p := &Pipeline{Renderer: NewRenderer()}
	got := p.HTML("plain")
	if !strings.Contains(got, "<p>plain</p>") {
		t.Errorf("HTML() = %q", got)
	}
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://example.com/a.png", "https://example.com/a.png"},
		{"/images/cover.jpg", "/images/cover.jpg"},
		{"#section", "#section"},
		{"javascript:alert(1)", ""},
		{"data:image/png;base64,AAAA", ""},
		{"relative/path", ""},
		{"  ", ""},
		{"https://example.com/?a=1&b=2", "https://example.com/?a=1&amp;b=2"},
	}
	for _, tt := range tests {
		if got := SafeURL(tt.input); got != tt.expected {
			t.Errorf("SafeURL(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
