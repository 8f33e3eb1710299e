package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/matt-g-everett/fluidtx/stream"
	"github.com/matt-g-everett/fluidtx/svg"
	"github.com/matt-g-everett/fluidtx/viewport"
)

const shutdownTimeout = 5 * time.Second

// A Source is what the API exposes: the rendered document and its state.
type Source interface {
	Document() *svg.Document
	Snapshot() stream.Snapshot
	Viewport() viewport.Size
	Resize(width, height float64)
	Restart()
}

type Api struct {
	addr   string
	source Source
	mux    *http.ServeMux
}

// NewApi creates an instance of an Api serving source on addr.
func NewApi(addr string, source Source) *Api {
	a := new(Api)
	a.addr = addr
	a.source = source
	a.mux = http.NewServeMux()
	a.mux.HandleFunc("GET /{$}", a.handleSVG)
	a.mux.HandleFunc("GET /fluid.svg", a.handleSVG)
	a.mux.HandleFunc("GET /state", a.handleState)
	a.mux.HandleFunc("GET /viewport", a.handleViewport)
	a.mux.HandleFunc("PUT /viewport", a.handleResize)
	a.mux.HandleFunc("POST /restart", a.handleRestart)
	return a
}

// Handler returns the routes without starting a listener.
func (a *Api) Handler() http.Handler {
	return a.mux
}

// Serve listens until ctx is done, then shuts down gracefully.
func (a *Api) Serve(ctx context.Context) error {
	srv := &http.Server{Addr: a.addr, Handler: a.mux}

	errs := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s...", a.addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *Api) handleSVG(w http.ResponseWriter, r *http.Request) {
	data, err := a.source.Document().MarshalSVG()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

func (a *Api) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.source.Snapshot())
}

func (a *Api) handleViewport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.source.Viewport())
}

func (a *Api) handleResize(w http.ResponseWriter, r *http.Request) {
	var size viewport.Size
	if err := json.NewDecoder(r.Body).Decode(&size); err != nil {
		http.Error(w, "invalid viewport: "+err.Error(), http.StatusBadRequest)
		return
	}
	if size.Width < 0 || size.Height < 0 {
		http.Error(w, "invalid viewport: negative size", http.StatusBadRequest)
		return
	}

	a.source.Resize(size.Width, size.Height)
	writeJSON(w, http.StatusOK, a.source.Viewport())
}

func (a *Api) handleRestart(w http.ResponseWriter, r *http.Request) {
	a.source.Restart()
	w.WriteHeader(http.StatusAccepted)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Encode response: %v", err)
	}
}
