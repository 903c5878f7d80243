package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"internship_tracker/internal/common"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps err to its status code. Internal causes are logged and
// replaced by a generic message.
func writeError(w http.ResponseWriter, r *http.Request, log *logrus.Entry, err error) {
	status := common.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithFields(logrus.Fields{
			"request_id": requestIDFrom(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
		}).Error("Request failed with internal error")
	}

	body := errorResponse{Error: common.PublicMessage(err)}
	var appErr *common.Error
	if errors.As(err, &appErr) && appErr.Code == common.CodeValidation {
		body.Fields = appErr.Fields
	}
	writeJSON(w, status, body)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return common.NewError(common.CodeValidation, "request body is not valid JSON", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewValidationError("invalid "+name, map[string]string{name: "numeric"})
	}
	return id, nil
}

func queryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, common.NewValidationError(name+" is required", map[string]string{name: "required"})
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewValidationError("invalid "+name, map[string]string{name: "numeric"})
	}
	return id, nil
}
