package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	activityservice "pulseops/contexts/incident-response/activity-service"
	activityerrors "pulseops/contexts/incident-response/activity-service/domain/errors"
	activityhttp "pulseops/contexts/incident-response/activity-service/transport/http"
	evidenceservice "pulseops/contexts/incident-response/evidence-service"
	incidentservice "pulseops/contexts/incident-response/incident-service"
	incidenterrors "pulseops/contexts/incident-response/incident-service/domain/errors"
	incidenthttp "pulseops/contexts/incident-response/incident-service/transport/http"
	secretsservice "pulseops/contexts/identity-access/secrets-service"
	secretserrors "pulseops/contexts/identity-access/secrets-service/domain/errors"
	secretshttp "pulseops/contexts/identity-access/secrets-service/transport/http"
	"pulseops/internal/platform/metrics"
	"pulseops/internal/shared/correlation"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "pulseops/internal/platform/httpserver/docs"
)

type Server struct {
	mux      *http.ServeMux
	handler  http.Handler
	logger   *slog.Logger
	addr     string
	incident incidentservice.Module
	activity activityservice.Module
	evidence evidenceservice.Module
	secrets  secretsservice.Module
}

func New(
	incident incidentservice.Module,
	activity activityservice.Module,
	evidence evidenceservice.Module,
	secrets secretsservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		incident: incident,
		activity: activity,
		evidence: evidence,
		secrets:  secrets,
	}
	s.registerRoutes()
	s.handler = s.withCorrelation(s.mux)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.handler)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.Handle("GET /metrics", metrics.Handler())

	s.mux.HandleFunc("POST /api/incidents", s.handleCreateIncident)
	s.mux.HandleFunc("GET /api/incidents", s.handleListIncidents)
	s.mux.HandleFunc("GET /api/incidents/{id}", s.handleGetIncident)
	s.mux.HandleFunc("PATCH /api/incidents/{id}", s.handleUpdateIncident)
	s.mux.HandleFunc("POST /api/incidents/{id}/status", s.handleChangeStatus)

	s.mux.HandleFunc("POST /api/incidents/{incident_id}/evidence", s.handleUploadEvidence)
	s.mux.HandleFunc("GET /api/incidents/{incident_id}/evidence", s.handleListEvidence)
	s.mux.HandleFunc("GET /api/evidence/{id}", s.handleGetEvidence)
	s.mux.HandleFunc("GET /api/evidence/{id}/download", s.handleDownloadEvidence)

	s.mux.HandleFunc("GET /api/activity", s.handleListActivity)
	s.mux.HandleFunc("GET /api/stream", s.handleStream)

	s.mux.HandleFunc("POST /api/keys", s.handleCreateKey)
	s.mux.HandleFunc("GET /api/keys", s.handleListKeys)
	s.mux.HandleFunc("POST /internal/verify", s.handleVerifyKey)
}

// withCorrelation reads or mints the correlation id, threads it through the
// request context, and echoes it on the response before any handler runs.
func (s *Server) withCorrelation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id := strings.TrimSpace(r.Header.Get(correlation.Header)); id != "" {
			ctx = correlation.WithID(ctx, id)
		}
		ctx, id := correlation.Ensure(ctx)
		w.Header().Set(correlation.Header, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleCreateIncident(w http.ResponseWriter, r *http.Request) {
	var req incidenthttp.CreateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeIncidentError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.incident.Handler.CreateIncidentHandler(r.Context(), req, correlation.FromContext(r.Context()))
	if err != nil {
		writeIncidentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListIncidents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	resp, err := s.incident.Handler.ListIncidentsHandler(r.Context(), query.Get("status"), query.Get("severity"))
	if err != nil {
		writeIncidentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetIncident(w http.ResponseWriter, r *http.Request) {
	resp, err := s.incident.Handler.GetIncidentHandler(r.Context(), r.PathValue("id"))
	if err != nil {
		writeIncidentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateIncident(w http.ResponseWriter, r *http.Request) {
	var req incidenthttp.UpdateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeIncidentError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.incident.Handler.UpdateIncidentHandler(r.Context(), r.PathValue("id"), req, correlation.FromContext(r.Context()))
	if err != nil {
		writeIncidentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req incidenthttp.ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeIncidentError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.incident.Handler.ChangeStatusHandler(r.Context(), r.PathValue("id"), req, correlation.FromContext(r.Context()))
	if err != nil {
		writeIncidentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListActivity(w http.ResponseWriter, r *http.Request) {
	resp, err := s.activity.Handler.ListActivityHandler(r.Context(), r.URL.Query().Get("incidentId"))
	if err != nil {
		writeActivityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateKey(w http.ResponseWriter, r *http.Request) {
	var req secretshttp.CreateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSecretsError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.secrets.Handler.CreateKeyHandler(r.Context(), req)
	if err != nil {
		writeSecretsDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListKeys(w http.ResponseWriter, r *http.Request) {
	resp, err := s.secrets.Handler.ListKeysHandler(r.Context())
	if err != nil {
		writeSecretsDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVerifyKey(w http.ResponseWriter, r *http.Request) {
	var req secretshttp.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSecretsError(w, http.StatusUnauthorized, "unauthorized", "invalid verification request")
		return
	}

	resp, err := s.secrets.Handler.VerifyKeyHandler(r.Context(), req)
	if err != nil {
		writeSecretsError(w, http.StatusUnauthorized, "unauthorized", "api key rejected")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeIncidentDomainError(w http.ResponseWriter, err error) {
	var transitionErr *incidenterrors.InvalidTransitionError
	switch {
	case errors.Is(err, incidenterrors.ErrIncidentNotFound):
		writeIncidentError(w, http.StatusNotFound, "incident_not_found", err.Error())
	case errors.As(err, &transitionErr):
		writeJSON(w, http.StatusConflict, incidenthttp.ErrorResponse{
			Code:            "invalid_transition",
			Message:         err.Error(),
			CurrentStatus:   transitionErr.Current,
			RequestedStatus: transitionErr.Requested,
		})
	case errors.Is(err, incidenterrors.ErrInvalidTransition):
		writeIncidentError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, incidenterrors.ErrInvalidStatus):
		writeIncidentError(w, http.StatusBadRequest, "invalid_status", err.Error())
	case errors.Is(err, incidenterrors.ErrInvalidRequest):
		writeIncidentError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeIncidentError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeActivityDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, activityerrors.ErrInvalidRequest):
		writeActivityError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeActivityError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeSecretsDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, secretserrors.ErrInvalidRequest):
		writeSecretsError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, secretserrors.ErrKeyInvalid), errors.Is(err, secretserrors.ErrKeyNotFound):
		writeSecretsError(w, http.StatusUnauthorized, "unauthorized", "api key rejected")
	default:
		writeSecretsError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeIncidentError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, incidenthttp.ErrorResponse{Code: code, Message: message})
}

func writeActivityError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, activityhttp.ErrorResponse{Code: code, Message: message})
}

func writeSecretsError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, secretshttp.ErrorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
