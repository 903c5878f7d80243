package httpapi

import (
	"net/http"

	"internship_tracker/internal/app"
	"internship_tracker/internal/domain/user"
)

type linkTelegramRequest struct {
	ChatID *int64 `json:"chat_id"`
}

func (h *handler) registerUser(w http.ResponseWriter, r *http.Request) {
	var in app.RegisterUserInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	u, err := h.svc.Users.Register(r.Context(), actorFrom(r.Context()), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *handler) listUsers(w http.ResponseWriter, r *http.Request) {
	role := user.Role(r.URL.Query().Get("role"))
	users, err := h.svc.Users.List(r.Context(), actorFrom(r.Context()), role)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	u, err := h.svc.Users.Get(r.Context(), actor, actor.ID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	u, err := h.svc.Users.Get(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handler) linkTelegram(w http.ResponseWriter, r *http.Request) {
	var req linkTelegramRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	u, err := h.svc.Users.LinkTelegram(r.Context(), actorFrom(r.Context()), req.ChatID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
