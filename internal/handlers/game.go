package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"snowman/internal/game"
	"snowman/internal/gateway"
	"snowman/internal/viewmodel"
	"snowman/views/components"
	"snowman/views/pages"
)

type GameHandler struct {
	store   *game.Store
	gateway gateway.Gateway
	cfg     Config
}

func NewGameHandler(store *game.Store, gw gateway.Gateway, cfg Config) *GameHandler {
	return &GameHandler{store: store, gateway: gw, cfg: cfg.withDefaults()}
}

// RegisterRoutes mounts the short-lived session routes.
func (h *GameHandler) RegisterRoutes(r chi.Router) {
	r.Route("/session/{id}", func(r chi.Router) {
		r.Get("/", h.gamePage)
		r.Get("/hud", h.hudFragment)
		r.Get("/outcome", h.outcomeFragment)
		r.Get("/snapshot", h.snapshot)
		r.Post("/submit", h.submitScore)
		r.Post("/restart", h.restart)
		r.Post("/leave", h.leave)
	})
}

// RegisterStreams mounts the long-lived SSE route.
func (h *GameHandler) RegisterStreams(r chi.Router) {
	r.Get("/session/{id}/stream", h.stream)
}

// ownedSession resolves the session in the URL and checks that the request
// carries its player's cookie.
func (h *GameHandler) ownedSession(w http.ResponseWriter, r *http.Request) (*game.Session, bool) {
	return lookupOwnedSession(h.store, w, r)
}

func lookupOwnedSession(store *game.Store, w http.ResponseWriter, r *http.Request) (*game.Session, bool) {
	sessionID := chi.URLParam(r, "id")
	session, ok := store.GetSession(sessionID)
	if !ok {
		http.NotFound(w, r)
		return nil, false
	}
	if playerID := playerIDFromCookie(r, sessionID); playerID == "" || playerID != session.Player.ID {
		http.Error(w, "not your session", http.StatusForbidden)
		return nil, false
	}
	return session, true
}

func (h *GameHandler) gamePage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	session, ok := h.store.GetSession(sessionID)
	if !ok || playerIDFromCookie(r, sessionID) != session.Player.ID {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	snap := session.Snapshot()
	data := viewmodel.GamePage{
		Title:      pageTitle,
		SessionID:  snap.ID,
		PlayerName: snap.PlayerName,
		Width:      int(snap.Viewport.Width),
		Height:     int(snap.Viewport.Height),
		HUD:        buildHUD(snap),
		Outcome:    buildOutcome(snap),
		Finished:   snap.State == game.StateFinished,
	}
	render(w, r, pages.GamePage(data))
}

func (h *GameHandler) hudFragment(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownedSession(w, r)
	if !ok {
		return
	}
	render(w, r, components.HUD(buildHUD(session.Snapshot())))
}

func (h *GameHandler) outcomeFragment(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownedSession(w, r)
	if !ok {
		return
	}
	render(w, r, components.Outcome(buildOutcome(session.Snapshot())))
}

func (h *GameHandler) snapshot(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownedSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

// submitScore sends a won session's score to the gateway. It runs only on an
// explicit request; a failure is recorded and can be retried the same way.
func (h *GameHandler) submitScore(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownedSession(w, r)
	if !ok {
		return
	}
	player, outcome, err := session.BeginSubmit()
	if err != nil {
		status := http.StatusConflict
		if errors.Is(err, game.ErrSubmitNotAllowed) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, err.Error(), status)
		return
	}
	h.store.Publish(session.ID, game.EventOutcome)

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.GatewayTimeout)
	defer cancel()
	err = h.gateway.SubmitScore(ctx, player, outcome.Score, outcome.TimeTaken)
	session.CompleteSubmit(err)
	if err != nil {
		h.cfg.Logger.Printf("submit score failed session=%s player=%s err=%v", session.ID, player.ID, err)
	} else {
		h.cfg.Logger.Printf("score submitted session=%s player=%s score=%d time=%d", session.ID, player.ID, outcome.Score, outcome.TimeTaken)
	}
	h.store.Publish(session.ID, game.EventOutcome)

	if r.Header.Get("Hx-Request") == "true" {
		render(w, r, components.Outcome(buildOutcome(session.Snapshot())))
		return
	}
	http.Redirect(w, r, "/session/"+session.ID, http.StatusSeeOther)
}

// restart ends the current session and starts a new one for the same player.
func (h *GameHandler) restart(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownedSession(w, r)
	if !ok {
		return
	}
	next, err := startSession(h.store, session.Player, session.Viewport)
	if err != nil {
		h.cfg.Logger.Printf("restart failed session=%s err=%v", session.ID, err)
		http.Error(w, "failed to restart", http.StatusInternalServerError)
		return
	}
	h.store.End(session.ID)
	clearPlayerCookie(w, session.ID)
	setPlayerCookie(w, next.ID, next.Player.ID)
	http.Redirect(w, r, "/session/"+next.ID, http.StatusSeeOther)
}

func (h *GameHandler) leave(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownedSession(w, r)
	if !ok {
		return
	}
	h.store.End(session.ID)
	clearPlayerCookie(w, session.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *GameHandler) stream(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownedSession(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	hub, ok := h.store.Broadcaster(session.ID)
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	send := func(events ...string) {
		snap := session.Snapshot()
		for _, event := range events {
			switch event {
			case game.EventHUD:
				writeSSE(w, game.EventHUD, renderToString(r, components.HUD(buildHUD(snap))))
			case game.EventOutcome:
				writeSSE(w, game.EventOutcome, renderToString(r, components.Outcome(buildOutcome(snap))))
			}
		}
		flusher.Flush()
	}
	send(game.EventHUD, game.EventOutcome)

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-sub:
			if !open {
				// Session ended.
				return
			}
			send(event)
		case <-keepAlive.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}

func buildHUD(snap game.Snapshot) viewmodel.HUDFragment {
	return viewmodel.HUDFragment{
		Remaining:   snap.Remaining,
		Duration:    snap.Duration,
		Score:       snap.Score,
		PartsPlaced: snap.PartsPlaced,
		TotalParts:  snap.TotalParts,
		State:       string(snap.State),
	}
}

func buildOutcome(snap game.Snapshot) viewmodel.OutcomeFragment {
	data := viewmodel.OutcomeFragment{
		SessionID:   snap.ID,
		Submit:      string(snap.Submit),
		SubmitError: snap.SubmitError,
	}
	if snap.Outcome == nil {
		return data
	}
	data.Finished = true
	data.IsWin = snap.Outcome.IsWin
	data.Score = snap.Outcome.Score
	data.PartsPlaced = snap.Outcome.PartsPlaced
	data.TotalParts = snap.Outcome.TotalParts
	data.TimeTaken = snap.Outcome.TimeTaken
	data.CanSubmit = snap.Outcome.IsWin && !snap.Closed &&
		(snap.Submit == game.SubmitIdle || snap.Submit == game.SubmitError)
	return data
}

func playerIDFromCookie(r *http.Request, sessionID string) string {
	cookie, err := r.Cookie(playerCookieName(sessionID))
	if err != nil {
		return ""
	}
	return cookie.Value
}

func setPlayerCookie(w http.ResponseWriter, sessionID string, playerID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName(sessionID),
		Value:    playerID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(24 * time.Hour),
	})
}

func clearPlayerCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName(sessionID),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func playerCookieName(sessionID string) string {
	return "snowman_player_" + sessionID
}
