package httpapi

import (
	"net/http"

	"internship_tracker/internal/domain/application"
)

type createApplicationRequest struct {
	InternshipID int64 `json:"internship_id"`
}

type transitionRequest struct {
	Status application.Status `json:"status"`
}

func (h *handler) createApplication(w http.ResponseWriter, r *http.Request) {
	var req createApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	created, err := h.svc.Applications.Create(r.Context(), actorFrom(r.Context()), req.InternshipID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) listApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.svc.Applications.List(r.Context(), actorFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

func (h *handler) getApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	a, err := h.svc.Applications.Get(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *handler) approveApplication(w http.ResponseWriter, r *http.Request) {
	h.transitionTo(w, r, application.StatusMentorApproved)
}

func (h *handler) rejectApplication(w http.ResponseWriter, r *http.Request) {
	h.transitionTo(w, r, application.StatusMentorRejected)
}

func (h *handler) transitionApplication(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	h.transitionTo(w, r, req.Status)
}

func (h *handler) transitionTo(w http.ResponseWriter, r *http.Request, target application.Status) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	a, err := h.svc.Applications.Transition(r.Context(), actorFrom(r.Context()), id, target)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
