package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"arena3d/config"
	"arena3d/directory"
	"arena3d/game"
)

// Lister returns rooms advertised across all game processes.
type Lister interface {
	List(ctx context.Context) ([]directory.Listing, error)
}

type handlers struct {
	manager *game.Manager
	lister  Lister
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to write response")
	}
}

func (h *handlers) gameList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.manager.Summaries())
}

func (h *handlers) newGame(w http.ResponseWriter, r *http.Request) {
	room, err := h.manager.Create(r.URL.Query().Get("implementation"))
	if errors.Is(err, game.ErrUnknownTheme) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		log.WithError(err).Error("Failed to create room")
		http.Error(w, "Could not create room", http.StatusInternalServerError)
		return
	}
	w.Write([]byte(room.ID))
}

func (h *handlers) directoryList(w http.ResponseWriter, r *http.Request) {
	if h.lister == nil {
		writeJSON(w, []directory.Listing{})
		return
	}
	listings, err := h.lister.List(r.Context())
	if err != nil {
		log.WithError(err).Warn("Failed to list room directory")
		http.Error(w, "Directory unavailable", http.StatusServiceUnavailable)
		return
	}
	if listings == nil {
		listings = []directory.Listing{}
	}
	writeJSON(w, listings)
}

func snapshotSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, game.SnapshotSchema())
}

// NewMux wires the HTTP routes. lister may be nil when no directory is
// configured.
func NewMux(manager *game.Manager, lister Lister) *http.ServeMux {
	h := &handlers{manager: manager, lister: lister}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /list", h.gameList)
	mux.HandleFunc("POST /new", h.newGame)
	mux.HandleFunc("GET /directory", h.directoryList)
	mux.HandleFunc("GET /connect/{roomID}", manager.HandleConnection)
	mux.HandleFunc("GET /schema/snapshot", snapshotSchema)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	return mux
}

// Start serves HTTP until ctx is cancelled.
func Start(ctx context.Context, conf config.Config, manager *game.Manager, lister Lister) error {
	srv := &http.Server{
		Addr:    ":" + conf.HTTPPort,
		Handler: NewMux(manager, lister),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("HTTP server listening on ", conf.HTTPPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
