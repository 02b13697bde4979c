package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"texd/internal/domain"
	"texd/internal/katex"
)

// Nginx's code for a request the client closed. It never reaches the
// client; it keeps the access log honest.
const statusClientClosedRequest = 499

type colorPayload struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

type renderPayload struct {
	Key         string        `json:"key"`
	Text        string        `json:"text"`
	DisplayMode bool          `json:"display_mode"`
	Color       *colorPayload `json:"color"`
	FontSize    float64       `json:"font_size"`
	MaxWidth    *float64      `json:"max_width"`
}

// Render runs one coalesced render job and answers with the bitmap or
// the job's terminal outcome: 200 PNG for completed, 204 for superseded,
// 409 for cancelled, 422 for invalid markup, 503 when the engine runtime
// is unavailable. A client that disconnects mid-wait cancels its own
// job on the way out.
func (a *App) Render(w http.ResponseWriter, r *http.Request) {
	var payload renderPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.error(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if payload.Color == nil {
		a.error(w, http.StatusBadRequest, "color is required")
		return
	}

	maxWidth := math.Inf(1)
	if payload.MaxWidth != nil {
		maxWidth = *payload.MaxWidth
	}
	req := katex.Request{
		Key:         payload.Key,
		Text:        payload.Text,
		DisplayMode: payload.DisplayMode,
		Color:       katex.Color{R: payload.Color.R, G: payload.Color.G, B: payload.Color.B, A: payload.Color.A},
		FontSize:    payload.FontSize,
		MaxWidth:    maxWidth,
	}

	out, err := a.Gateway.Render(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			a.error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			// Client gone; the gateway already released the job.
			w.WriteHeader(statusClientClosedRequest)
		default:
			a.error(w, http.StatusInternalServerError, "render failed")
		}
		return
	}

	switch out.State {
	case domain.JobStateCompleted:
		a.persistBitmap(r.Context(), req, out.Data)
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("X-Bitmap-Digest", a.Gateway.Digest(req))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(out.Data)
	case domain.JobStateSuperseded:
		w.WriteHeader(http.StatusNoContent)
	case domain.JobStateCancelled:
		a.json(w, http.StatusConflict, map[string]string{"status": "cancelled"})
	case domain.JobStateFailed:
		a.renderFailure(w, out.Err)
	default:
		a.error(w, http.StatusInternalServerError, "unexpected job state")
	}
}

// Cancel resolves the pending job for the key, if any. Always succeeds,
// including with nothing to cancel.
func (a *App) Cancel(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := a.Gateway.Cancel(r.Context(), key); err != nil {
		a.error(w, http.StatusInternalServerError, "cancel failed")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "cancelled", "key": key})
}

func (a *App) renderFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidMarkup):
		a.error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrUnsupportedRuntime):
		a.error(w, http.StatusServiceUnavailable, err.Error())
	default:
		a.error(w, http.StatusBadGateway, err.Error())
	}
}

func (a *App) persistBitmap(ctx context.Context, req katex.Request, data []byte) {
	if a.Store == nil || len(data) == 0 {
		return
	}
	// Detached from the request context so a disconnect after delivery
	// cannot abort the write.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	key := "bitmaps/" + a.Gateway.Digest(req) + ".png"
	if _, err := a.Store.Write(writeCtx, key, data); err != nil {
		a.Logger.Warn().Err(err).Str("key", req.Key).Msg("handlers: persist bitmap failed")
	}
}
