// Package scaffold provides the embedded templates the jwwblog CLI uses to
// start a new post in a content tree.
package scaffold

import "embed"

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

// PostRoot is the template directory copied into blog/posts/<slug>/.
const PostRoot = "templates/post"
