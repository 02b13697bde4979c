package handlers

import "net/http"

// RenderStats24h reports terminal outcome counts from the render
// journal for the trailing day.
func (a *App) RenderStats24h(w http.ResponseWriter, r *http.Request) {
	if a.Journal == nil {
		a.error(w, http.StatusServiceUnavailable, "render journal disabled")
		return
	}
	counts, err := a.Journal.StateCounts24h(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: journal stats failed")
		a.error(w, http.StatusInternalServerError, "stats query failed")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"window": "24h",
		"counts": counts,
	})
}
