package handlers

import (
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"sync"

	ds "github.com/starfederation/datastar-go/datastar"

	"paneplot/events"
	"paneplot/layout"
	"paneplot/store"
	"paneplot/web"
)

// FRAME_BUFFER is how many frames a slow client may lag before it starts skipping them.
const FRAME_BUFFER = 4

var (
	errBadFactor = errors.New("zoom factor must be positive")
	errBadRatio  = errors.New("split ratio must be a finite number")
)

// Workspace renders the workspace for browsers and turns their actions into store messages.
type Workspace struct {
	templates *template.Template
	inbox     chan<- store.Message
	frames    *events.Hub[string]

	mu      sync.Mutex
	frame   string
	signals string
}

// actionSig carries the values a browser action posts. Datastar sends the bound path and port signals, the pointer
// handlers in workspace.js send the rest.
type actionSig struct {
	Path   string   `json:"path"`
	Port   string   `json:"port"`
	Ratio  *float32 `json:"ratio"`
	X      float32  `json:"x"`
	Y      float32  `json:"y"`
	DX     float32  `json:"dx"`
	DY     float32  `json:"dy"`
	Factor float32  `json:"factor"`
}

func NewWorkspace(inbox chan<- store.Message) (workspace *Workspace, err error) {
	workspace = &Workspace{
		inbox:   inbox,
		frames:  events.NewHub[string](FRAME_BUFFER, true),
		signals: "{}",
	}
	workspace.templates, err = template.New("").ParseFS(web.Templates, "templates/workspace/*.gohtml")
	return workspace, err
}

func (d *Workspace) Templates() *template.Template {
	return d.templates
}

func (d *Workspace) Handlers() map[string]func(w http.ResponseWriter, r *http.Request) {
	return map[string]func(w http.ResponseWriter, r *http.Request){
		"/split":  d.handle(d.split),
		"/close":  d.handle(d.close),
		"/freeze": d.handle(d.freeze),
		"/resize": d.handle(d.resize),
		"/drop":   d.handle(d.drop),
		"/pan":    d.handle(d.pan),
		"/zoom":   d.handle(d.zoom),
		"/save": d.handle(func(_ *http.Request, sig *actionSig) (store.Message, error) {
			return store.Save{Path: sig.Path}, nil
		}),
		"/path": d.handle(func(_ *http.Request, sig *actionSig) (store.Message, error) {
			return store.PathChanged{Path: sig.Path}, nil
		}),
		"/port": d.handle(func(_ *http.Request, sig *actionSig) (store.Message, error) {
			return store.PortChanged{Port: sig.Port}, nil
		}),
		"/ports": d.handle(func(*http.Request, *actionSig) (store.Message, error) {
			return store.RefreshPorts{}, nil
		}),
	}
}

func (d *Workspace) Data() map[string]interface{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	return map[string]interface{}{
		"workspace": template.HTML(d.frame),
		"signals":   d.signals,
	}
}

func (d *Workspace) Frames() (<-chan string, func()) {
	_, frames, cancel := d.frames.Subscribe()
	return frames, cancel
}

// Observe renders the workspace and broadcasts the frame when it changed. It runs on the workspace goroutine.
func (d *Workspace) Observe(ws *store.Workspace) {
	var writer strings.Builder
	if err := d.templates.ExecuteTemplate(&writer, "workspace", newWorkspaceView(ws)); err != nil {
		slog.Error("couldn't execute workspace template", "err", err)
		return
	}
	frame := writer.String()

	signals, err := json.Marshal(map[string]string{"path": ws.Path(), "port": ws.Port()})
	if err != nil {
		slog.Error("couldn't encode signals", "err", err)
		return
	}

	d.mu.Lock()
	changed := frame != d.frame
	d.frame = frame
	d.signals = string(signals)
	d.mu.Unlock()

	if changed {
		d.frames.Broadcast(frame)
	}
}

// Close ends every open frame stream.
func (d *Workspace) Close() {
	d.frames.Close()
}

// handle reads the posted signals, builds a message and queues it for the workspace.
func (d *Workspace) handle(build func(r *http.Request, sig *actionSig) (store.Message, error)) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		// Read signals sent from the client
		var sig actionSig
		if err := ds.ReadSignals(r, &sig); err != nil {
			slog.Debug("error reading signals", "path", r.URL.Path, "err", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		msg, err := build(r, &sig)
		if err != nil {
			slog.Debug("bad request", "path", r.URL.Path, "err", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		select {
		case d.inbox <- msg:
			w.WriteHeader(http.StatusNoContent)
		case <-r.Context().Done():
		}
	}
}

func (d *Workspace) split(r *http.Request, _ *actionSig) (store.Message, error) {
	pane, err := layout.ParsePaneHandle(r.URL.Query().Get("pane"))
	if err != nil {
		return nil, err
	}
	return store.Split{Target: pane, Axis: layout.ParseAxis(r.URL.Query().Get("axis"))}, nil
}

func (d *Workspace) close(r *http.Request, _ *actionSig) (store.Message, error) {
	pane, err := layout.ParsePaneHandle(r.URL.Query().Get("pane"))
	if err != nil {
		return nil, err
	}
	return store.Close{Pane: pane}, nil
}

func (d *Workspace) freeze(r *http.Request, _ *actionSig) (store.Message, error) {
	pane, err := layout.ParsePaneHandle(r.URL.Query().Get("pane"))
	if err != nil {
		return nil, err
	}
	return store.ToggleFreeze{Pane: pane}, nil
}

func (d *Workspace) resize(r *http.Request, sig *actionSig) (store.Message, error) {
	split, err := layout.ParseSplitHandle(r.URL.Query().Get("split"))
	if err != nil {
		return nil, err
	}
	if sig.Ratio == nil || math.IsNaN(float64(*sig.Ratio)) || math.IsInf(float64(*sig.Ratio), 0) {
		return nil, errBadRatio
	}
	return store.Resize{Split: split, Ratio: *sig.Ratio}, nil
}

// drop moves the pane onto an explicit target and region when both are given, otherwise to the pointer position.
func (d *Workspace) drop(r *http.Request, sig *actionSig) (store.Message, error) {
	query := r.URL.Query()
	source, err := layout.ParsePaneHandle(query.Get("pane"))
	if err != nil {
		return nil, err
	}
	if !query.Has("target") {
		return store.DropAt{Source: source, Point: layout.Point{X: sig.X, Y: sig.Y}}, nil
	}
	target, err := layout.ParsePaneHandle(query.Get("target"))
	if err != nil {
		return nil, err
	}
	region, _ := layout.ParseRegion(query.Get("region"))
	return store.Drop{Source: source, Target: target, Region: region}, nil
}

func (d *Workspace) pan(r *http.Request, sig *actionSig) (store.Message, error) {
	pane, err := layout.ParsePaneHandle(r.URL.Query().Get("pane"))
	if err != nil {
		return nil, err
	}
	return store.Pan{Pane: pane, DX: sig.DX, DY: sig.DY}, nil
}

func (d *Workspace) zoom(r *http.Request, sig *actionSig) (store.Message, error) {
	pane, err := layout.ParsePaneHandle(r.URL.Query().Get("pane"))
	if err != nil {
		return nil, err
	}
	if !(sig.Factor > 0) {
		return nil, errBadFactor
	}
	return store.Zoom{Pane: pane, Factor: sig.Factor}, nil
}
