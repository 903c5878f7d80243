package httpapi

import (
	"context"
	"net/http"
	"time"

	"internship_tracker/internal/app"
	"internship_tracker/internal/common"
	"internship_tracker/internal/infra/metrics"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Services are the use cases exposed over HTTP.
type Services struct {
	Users         *app.UserService
	Internships   *app.InternshipService
	Applications  *app.ApplicationService
	Tracking      *app.TrackingService
	Notifications *app.NotificationService
	Ping          func(ctx context.Context) error // optional storage health check
}

type handler struct {
	svc Services
	log *logrus.Entry
}

// NewRouter builds the API. Every /api route requires a bearer token.
func NewRouter(svc Services, auth *Authenticator, log *logrus.Entry, requestTimeout time.Duration) http.Handler {
	h := &handler{svc: svc, log: log}

	r := mux.NewRouter()
	r.Use(requestID, accessLog(log), recoverer(log), timeout(requestTimeout))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, log, common.NotFound("route"))
	})

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(auth.Middleware)

	api.HandleFunc("/applications", h.createApplication).Methods(http.MethodPost)
	api.HandleFunc("/applications", h.listApplications).Methods(http.MethodGet)
	api.HandleFunc("/applications/{id:[0-9]+}", h.getApplication).Methods(http.MethodGet)
	api.HandleFunc("/applications/{id:[0-9]+}/approve", h.approveApplication).Methods(http.MethodPut)
	api.HandleFunc("/applications/{id:[0-9]+}/reject", h.rejectApplication).Methods(http.MethodPut)
	api.HandleFunc("/applications/{id:[0-9]+}/status", h.transitionApplication).Methods(http.MethodPut)

	api.HandleFunc("/tracking", h.trackingAction).Methods(http.MethodPost)
	api.HandleFunc("/tracking", h.getTracking).Methods(http.MethodGet)
	api.HandleFunc("/tracking/realtime", h.realtime).Methods(http.MethodGet)

	api.HandleFunc("/internships", h.listInternships).Methods(http.MethodGet)
	api.HandleFunc("/internships", h.createInternship).Methods(http.MethodPost)
	api.HandleFunc("/internships/{id:[0-9]+}", h.getInternship).Methods(http.MethodGet)
	api.HandleFunc("/internships/{id:[0-9]+}/close", h.closeInternship).Methods(http.MethodPut)

	api.HandleFunc("/notifications", h.listNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id:[0-9]+}/read", h.markNotificationRead).Methods(http.MethodPut)

	api.HandleFunc("/users", h.registerUser).Methods(http.MethodPost)
	api.HandleFunc("/users", h.listUsers).Methods(http.MethodGet)
	api.HandleFunc("/users/me", h.me).Methods(http.MethodGet)
	api.HandleFunc("/users/me/telegram", h.linkTelegram).Methods(http.MethodPut)
	api.HandleFunc("/users/{id:[0-9]+}", h.getUser).Methods(http.MethodGet)

	return r
}

// NewServer wraps handler in an http.Server with conservative timeouts.
func NewServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if h.svc.Ping != nil {
		if err := h.svc.Ping(r.Context()); err != nil {
			h.log.WithError(err).Warn("Health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
