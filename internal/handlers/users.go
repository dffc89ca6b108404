package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"snowman/internal/gateway"
	"snowman/internal/users"
)

// UsersHandler serves the gateway API over a users store.
type UsersHandler struct {
	store  users.Store
	logger *log.Logger
}

func NewUsersHandler(store users.Store, logger *log.Logger) *UsersHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &UsersHandler{store: store, logger: logger}
}

func (h *UsersHandler) RegisterRoutes(r chi.Router) {
	r.Route("/user", func(r chi.Router) {
		r.Post("/login", h.login)
		r.Post("/submit", h.submit)
		r.Get("/{id}", h.get)
		r.Patch("/{id}/finish", h.finish)
	})
}

func (h *UsersHandler) login(w http.ResponseWriter, r *http.Request) {
	var req gateway.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.store.FindOrCreate(r.Context(), req.Name, req.Phone, users.DefaultClient)
	if err != nil {
		h.writeError(w, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// submit registers a user and records a result in one call.
func (h *UsersHandler) submit(w http.ResponseWriter, r *http.Request) {
	var req gateway.SubmitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := users.ValidateResult(req.Score, req.TimeTaken); err != nil {
		h.writeError(w, "submit", err)
		return
	}
	u, err := h.store.FindOrCreate(r.Context(), req.Name, req.Phone, req.ClientName)
	if err != nil {
		h.writeError(w, "submit", err)
		return
	}
	u, err = h.store.UpdateScore(r.Context(), u.ID, req.Score, req.TimeTaken)
	if err != nil {
		h.writeError(w, "submit", err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *UsersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(w, r)
	if !ok {
		return
	}
	u, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UsersHandler) finish(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(w, r)
	if !ok {
		return
	}
	var req gateway.FinishRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.store.UpdateScore(r.Context(), id, req.Score, req.TimeTaken)
	if err != nil {
		h.writeError(w, "finish", err)
		return
	}
	h.logger.Printf("user finished id=%d score=%d time=%d", u.ID, u.Score, u.TimeTaken)
	writeJSON(w, http.StatusOK, u)
}

func (h *UsersHandler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, users.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, gateway.ErrorResponse{Error: strings.TrimPrefix(err.Error(), users.ErrInvalid.Error()+": ")})
	case errors.Is(err, users.ErrNotFound):
		writeJSON(w, http.StatusNotFound, gateway.ErrorResponse{Error: err.Error()})
	default:
		h.logger.Printf("users %s failed err=%v", op, err)
		writeJSON(w, http.StatusInternalServerError, gateway.ErrorResponse{Error: "internal error"})
	}
}

func userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, gateway.ErrorResponse{Error: "invalid user id"})
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	if err := dec.Decode(target); err != nil {
		writeJSON(w, http.StatusBadRequest, gateway.ErrorResponse{Error: "invalid json body"})
		return false
	}
	return true
}
