// Package web embeds the browser assets: templates rendered by web/handlers and static files served under /static/.
package web

import "embed"

//go:embed static
var Static embed.FS

//go:embed templates
var Templates embed.FS
