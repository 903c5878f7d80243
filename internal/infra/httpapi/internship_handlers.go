package httpapi

import (
	"net/http"

	"internship_tracker/internal/app"
)

func (h *handler) listInternships(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Internships.List(r.Context(), actorFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) createInternship(w http.ResponseWriter, r *http.Request) {
	var in app.CreateInternshipInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	created, err := h.svc.Internships.Create(r.Context(), actorFrom(r.Context()), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) getInternship(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	in, err := h.svc.Internships.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func (h *handler) closeInternship(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	in, err := h.svc.Internships.Close(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}
