package handlers

import (
	"html/template"
	"net/http"
)

// Renderer is what the server needs from a UI: its pages, its action endpoints and a stream of rendered frames.
type Renderer interface {
	Templates() *template.Template
	Handlers() map[string]func(w http.ResponseWriter, r *http.Request)
	Data() map[string]interface{}
	// Frames subscribes to rendered frames. The latest frame is delivered first; the returned func unsubscribes.
	Frames() (<-chan string, func())
}
