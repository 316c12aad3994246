package http

import (
	"net/http"

	"triage-waitlist/internal/delivery/http/handler"
	"triage-waitlist/internal/delivery/http/middleware"
	"triage-waitlist/pkg/response"

	"github.com/gorilla/mux"
)

type Router struct {
	router                  *mux.Router
	patientHandler          *handler.PatientHandler
	actionLogHandler        *handler.ActionLogHandler
	priorityHandler         *handler.PriorityHandler
	staffAuthMiddleware     *middleware.StaffAuthMiddleware
	corsMiddleware          *middleware.CORSMiddleware
	requestLoggerMiddleware *middleware.RequestLoggerMiddleware
}

func NewRouter(
	patientHandler *handler.PatientHandler,
	actionLogHandler *handler.ActionLogHandler,
	priorityHandler *handler.PriorityHandler,
	staffAuthMiddleware *middleware.StaffAuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	requestLoggerMiddleware *middleware.RequestLoggerMiddleware,
) *Router {
	return &Router{
		router:                  mux.NewRouter(),
		patientHandler:          patientHandler,
		actionLogHandler:        actionLogHandler,
		priorityHandler:         priorityHandler,
		staffAuthMiddleware:     staffAuthMiddleware,
		corsMiddleware:          corsMiddleware,
		requestLoggerMiddleware: requestLoggerMiddleware,
	}
}

// Setup registers the routes. Request logging and CORS wrap the whole router
// so unmatched routes and preflight requests pass through them too.
func (r *Router) Setup() http.Handler {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Public routes: self-registration, reassessment, waitlist display and queue lookup.
	// /patients/status is registered before /patients/{id} so it is not taken as an ID.
	api.HandleFunc("/patients", r.patientHandler.ListPatients).Methods(http.MethodGet)
	api.Handle("/patients", r.staffAuthMiddleware.Identify(http.HandlerFunc(r.patientHandler.AddPatient))).Methods(http.MethodPost)
	api.HandleFunc("/patients/status", r.patientHandler.GetPatientStatus).Methods(http.MethodGet)
	api.HandleFunc("/patients/{id}", r.patientHandler.GetPatient).Methods(http.MethodGet)
	api.Handle("/patients/{id}/pain", r.staffAuthMiddleware.Identify(http.HandlerFunc(r.patientHandler.ReassessPatient))).Methods(http.MethodPut)
	api.HandleFunc("/priorities", r.priorityHandler.GetAllPriorities).Methods(http.MethodGet)

	// Staff routes
	staff := api.NewRoute().Subrouter()
	staff.Use(r.staffAuthMiddleware.Authenticate)
	staff.HandleFunc("/patients/{id}/priority", r.patientHandler.ChangePriority).Methods(http.MethodPut)
	staff.HandleFunc("/patients/{id}/increase", r.patientHandler.IncreaseAttention).Methods(http.MethodPost)
	staff.HandleFunc("/patients/{id}/decrease", r.patientHandler.DecreaseAttention).Methods(http.MethodPost)
	staff.HandleFunc("/patients/{id}", r.patientHandler.RemovePatient).Methods(http.MethodDelete)
	staff.HandleFunc("/patients/{id}/action-logs", r.actionLogHandler.GetPatientActionLogs).Methods(http.MethodGet)
	staff.HandleFunc("/action-logs", r.actionLogHandler.GetAllActionLogs).Methods(http.MethodGet)
	staff.HandleFunc("/waitlist/summary", r.patientHandler.GetWaitlistSummary).Methods(http.MethodGet)

	r.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Route not found")
	})
	r.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w)
	})

	return r.requestLoggerMiddleware.Handle(r.corsMiddleware.Handle(r.router))
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
