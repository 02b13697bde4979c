package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
)

// Bitmap serves a persisted bitmap by content digest.
func (a *App) Bitmap(w http.ResponseWriter, r *http.Request) {
	if a.Store == nil {
		a.error(w, http.StatusNotFound, "bitmap persistence disabled")
		return
	}
	digest := chi.URLParam(r, "digest")
	data, err := a.Store.Read(r.Context(), "bitmaps/"+digest+".png")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			a.error(w, http.StatusNotFound, "bitmap not found")
			return
		}
		a.Logger.Error().Err(err).Str("digest", digest).Msg("handlers: read bitmap failed")
		a.error(w, http.StatusInternalServerError, "read bitmap failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
