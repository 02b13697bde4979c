package handlers

import (
	"net/http"

	"texd/internal/katex"
)

// Environments lists the structural TeX environments the engine
// supports, for client-side feature detection.
func (a *App) Environments(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"environments": katex.SupportedEnvironments(),
	})
}
