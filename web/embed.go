package web

import "embed"

// TemplatesFS embeds the layout, the shared partials and one file per page.
//
//go:embed templates
var TemplatesFS embed.FS

// StaticFS embeds static assets (css/js).
//
//go:embed static
var StaticFS embed.FS
