package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"snowman/internal/game"
	"snowman/internal/gateway"
	"snowman/internal/users"
	"snowman/internal/viewmodel"
	"snowman/views/pages"
)

const pageTitle = "Snowman"

// Config carries the dependencies shared by the game handlers.
type Config struct {
	Logger         *log.Logger
	GatewayTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	if c.GatewayTimeout <= 0 {
		c.GatewayTimeout = 5 * time.Second
	}
	return c
}

type HomeHandler struct {
	store   *game.Store
	gateway gateway.Gateway
	cfg     Config
}

func NewHomeHandler(store *game.Store, gw gateway.Gateway, cfg Config) *HomeHandler {
	return &HomeHandler{store: store, gateway: gw, cfg: cfg.withDefaults()}
}

func (h *HomeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.home)
	r.Post("/login", h.login)
}

func (h *HomeHandler) home(w http.ResponseWriter, r *http.Request) {
	render(w, r, pages.HomePage(viewmodel.HomePage{Title: pageTitle}))
}

// login resolves the player through the gateway and starts a fresh session.
// A failed login leaves no session behind.
func (h *HomeHandler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := viewmodel.HomePage{
		Title: pageTitle,
		Name:  r.FormValue("name"),
		Phone: r.FormValue("phone"),
	}
	viewport := game.Viewport{
		Width:  parseFloat(r.FormValue("width")),
		Height: parseFloat(r.FormValue("height")),
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.GatewayTimeout)
	defer cancel()
	player, err := h.gateway.Login(ctx, form.Name, form.Phone)
	if err != nil {
		h.cfg.Logger.Printf("login failed phone=%q err=%v", form.Phone, err)
		status := http.StatusBadGateway
		form.Error = "Login is unavailable right now, please try again."
		if errors.Is(err, users.ErrInvalid) {
			status = http.StatusBadRequest
			form.Error = loginErrorMessage(err)
		}
		renderStatus(w, r, status, pages.HomePage(form))
		return
	}

	session, err := startSession(h.store, player, viewport)
	if err != nil {
		h.cfg.Logger.Printf("start session failed player=%s err=%v", player.ID, err)
		http.Error(w, "failed to start session", http.StatusInternalServerError)
		return
	}
	h.cfg.Logger.Printf("session started session=%s player=%s", session.ID, player.ID)
	setPlayerCookie(w, session.ID, player.ID)
	http.Redirect(w, r, "/session/"+session.ID, http.StatusSeeOther)
}

func startSession(store *game.Store, player game.Player, viewport game.Viewport) (*game.Session, error) {
	session := store.CreateSession(player, viewport)
	if err := session.Start(time.Now().UTC()); err != nil {
		store.End(session.ID)
		return nil, err
	}
	store.EnsureClockLoop(session.ID)
	return session, nil
}

func loginErrorMessage(err error) string {
	msg := err.Error()
	marker := users.ErrInvalid.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return msg
}

func parseFloat(value string) float64 {
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return parsed
}
