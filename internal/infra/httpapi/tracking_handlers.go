package httpapi

import (
	"encoding/json"
	"net/http"

	"internship_tracker/internal/app"
)

type trackingRequest struct {
	Action app.Action      `json:"action"`
	Data   json.RawMessage `json:"data"`
}

func (h *handler) trackingAction(w http.ResponseWriter, r *http.Request) {
	var req trackingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	result, err := h.svc.Tracking.Dispatch(r.Context(), actorFrom(r.Context()), req.Action, req.Data)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	status := http.StatusOK
	if req.Action == app.ActionScheduleInterview || req.Action == app.ActionCreateOffer {
		status = http.StatusCreated
	}
	writeJSON(w, status, result)
}

func (h *handler) getTracking(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "application_id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	view, err := h.svc.Tracking.GetTracking(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handler) realtime(w http.ResponseWriter, r *http.Request) {
	progress, err := h.svc.Tracking.Realtime(r.Context(), actorFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}
