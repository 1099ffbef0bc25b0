package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/identity"
)

type SessionHandler struct {
	workspaces *Workspaces
	log        *slog.Logger
}

func NewSessionHandler(workspaces *Workspaces, log *slog.Logger) *SessionHandler {
	return &SessionHandler{workspaces: workspaces, log: log}
}

type LoginRequestDTO struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// Login stores the credential the gateway issued at sign-in.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Token == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "token is required")
		return
	}

	ws := h.workspaces.Get(r.Context(), getClientID(r.Context()))
	id, err := ws.Session.Login(r.Context(), req.Token, req.Email)
	switch {
	case errors.Is(err, identity.ErrMalformedCredential), errors.Is(err, identity.ErrExpiredCredential):
		respondError(w, http.StatusBadRequest, "invalid_credential", err.Error())
		return
	case err != nil:
		h.log.ErrorContext(r.Context(), "login failed", "request_id", getRequestID(r.Context()), "error", err)
		respondError(w, http.StatusServiceUnavailable, "storage_unavailable", "could not store credential")
		return
	}

	respondJSON(w, http.StatusCreated, id)
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clientID := getClientID(r.Context())
	ws := h.workspaces.Get(r.Context(), clientID)
	if err := ws.Session.Logout(r.Context()); err != nil {
		h.log.ErrorContext(r.Context(), "logout failed", "request_id", getRequestID(r.Context()), "error", err)
		respondError(w, http.StatusServiceUnavailable, "storage_unavailable", "could not remove credential")
		return
	}
	h.workspaces.Forget(clientID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	ws := h.workspaces.Get(r.Context(), getClientID(r.Context()))
	id, err := ws.Session.Identity()
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, id)
}
