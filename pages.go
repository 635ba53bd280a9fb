package jwwblog

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/joywithwealth/jwwblog/dom"
)

// PageSet holds the raw page templates. Every request parses its own copy.
type PageSet struct {
	src map[PageKind]string
}

// LoadPages reads list.html, post.html and error.html from fsys and checks
// that each carries its contracted element ids.
func LoadPages(fsys fs.FS) (*PageSet, error) {
	ps := &PageSet{src: make(map[PageKind]string)}
	var problems []string
	for _, kind := range []PageKind{PageList, PagePost, PageError} {
		name := string(kind) + ".html"
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read page %s: %w", name, err)
		}
		doc, err := dom.ParseString(string(data))
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		for _, id := range requiredIDs[kind] {
			if doc.ByID(id) == nil {
				problems = append(problems, name+" is missing #"+id)
			}
		}
		ps.src[kind] = string(data)
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("page templates: %s", strings.Join(problems, "; "))
	}
	return ps, nil
}

// New parses a fresh document for kind.
func (ps *PageSet) New(kind PageKind) (*dom.Document, error) {
	src, ok := ps.src[kind]
	if !ok {
		return nil, fmt.Errorf("unknown page %q", kind)
	}
	return dom.ParseString(src)
}
