// Package web holds the browser shell: the page template and its static
// assets. The page template doubles as the UI source shipped in the
// deployment archive.
package web

import "embed"

// FS holds app.html and static/.
//
//go:embed app.html static
var FS embed.FS

// AppSource is the path of the page template within FS.
const AppSource = "app.html"
