package handlers

import (
	"encoding/json"
	"net/http"

	"texd/internal/domain"
	"texd/internal/infra"
	"texd/internal/katex"
	"texd/internal/storage"
)

// App bundles the dependencies the HTTP handlers work against.
type App struct {
	Gateway *katex.Gateway
	Store   *storage.FileStore
	Journal domain.RenderJournal
	Logger  infra.Logger
}

// NewApp constructs the handler container. Store and Journal may be nil;
// the endpoints depending on them degrade gracefully.
func NewApp(gateway *katex.Gateway, store *storage.FileStore, journal domain.RenderJournal, logger infra.Logger) *App {
	return &App{
		Gateway: gateway,
		Store:   store,
		Journal: journal,
		Logger:  logger,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, map[string]string{"error": msg})
}
