package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	ds "github.com/starfederation/datastar-go/datastar"

	"paneplot/web"
)

const SHUTDOWN_TIMEOUT = 5 * time.Second

type Server struct {
	renderer Renderer
	handler  *http.ServeMux
}

func NewServer(renderer Renderer) *Server {
	s := &Server{
		renderer: renderer,
	}

	handler := http.NewServeMux()
	handler.HandleFunc("/", s.IndexHandler)
	handler.HandleFunc("/tick", s.TickHandler)
	handler.Handle("/static/", http.FileServer(http.FS(web.Static)))

	for path, uiHandler := range renderer.Handlers() {
		handler.HandleFunc(path, uiHandler)
	}

	s.handler = handler

	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled. Open SSE streams end with ctx, so shutdown doesn't wait on them.
func (s *Server) Start(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:        addr,
		Handler:     s.handler,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("http shutdown", "err", err)
		}
	}()

	slog.Info("listening", "addr", addr)
	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// IndexHandler is the main entrypoint for the UI
func (s *Server) IndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	err := s.renderer.Templates().ExecuteTemplate(w, "index", s.renderer.Data())
	if err != nil {
		slog.Error("couldn't execute template for index", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// TickHandler streams every rendered frame to the client as an element patch.
func (s *Server) TickHandler(w http.ResponseWriter, r *http.Request) {
	frames, cancel := s.renderer.Frames()
	defer cancel()

	sse := ds.NewSSE(w, r)
	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			if err := sse.PatchElements(frame); err != nil {
				slog.Debug("tick stream closed", "err", err)
				return
			}
		}
	}
}
