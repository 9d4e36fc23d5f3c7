// internal/mockapi/server.go
package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	apperrors "job-portal-workers/internal/common/errors"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/common/metrics"
	"job-portal-workers/pkg/mockai"

	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

type Server struct {
	store  *Store
	logger logger.Logger
}

func NewServer(store *Store, log logger.Logger) *Server {
	return &Server{store: store, logger: log.WithFields(map[string]interface{}{"component": "mock-api"})}
}

// Router registers the fixed routes before the collection routes so that
// "auth" and "ai" never resolve as collection names.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.instrument)

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
	api.HandleFunc("/ai/authenticity", s.aiAuthenticity).Methods(http.MethodPost)
	api.HandleFunc("/ai/analyze", s.aiAnalyze).Methods(http.MethodPost)
	api.HandleFunc("/ai/chat", s.aiChat).Methods(http.MethodPost)

	api.HandleFunc("/{collection}", s.list).Methods(http.MethodGet)
	api.HandleFunc("/{collection}", s.create).Methods(http.MethodPost)
	api.HandleFunc("/{collection}/{id}", s.get).Methods(http.MethodGet)
	api.HandleFunc("/{collection}/{id}", s.update).Methods(http.MethodPatch)
	api.HandleFunc("/{collection}/{id}", s.delete).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})
	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		metrics.MockAPIRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		s.logger.Debug("request served", map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		})
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	filter := map[string]string{}
	for k, values := range r.URL.Query() {
		if len(values) > 0 {
			filter[k] = values[0]
		}
	}
	records, err := s.store.List(r.Context(), mux.Vars(r)["collection"], filter)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": records, "total": len(records)})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	rec, err := s.store.Get(r.Context(), vars["collection"], vars["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if !decodeBody(w, r, &body) {
		return
	}
	rec, err := s.store.Create(r.Context(), mux.Vars(r)["collection"], body)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	var patch map[string]interface{}
	if !decodeBody(w, r, &patch) {
		return
	}
	vars := mux.Vars(r)
	rec, err := s.store.Update(r.Context(), vars["collection"], vars["id"], patch)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.store.Delete(r.Context(), vars["collection"], vars["id"]); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeValidationFailed), "email and password are required")
		return
	}
	session, err := s.store.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) aiAuthenticity(w http.ResponseWriter, r *http.Request) {
	var job mockai.JobPosting
	if !decodeBody(w, r, &job) {
		return
	}
	if !s.delay(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, mockai.CheckJobAuthenticity(job))
}

type analyzeRequest struct {
	Text string `json:"text"`
	HTML bool   `json:"html"`
}

func (s *Server) aiAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !s.delay(w, r) {
		return
	}
	if !req.HTML {
		writeJSON(w, http.StatusOK, mockai.AnalyzeContent(req.Text))
		return
	}
	analysis, err := mockai.AnalyzeHTML(req.Text)
	if err != nil {
		writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeValidationFailed), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) aiChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !s.delay(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, mockai.GenerateChatResponse(req.Message))
}

// delay applies the store latency to routes that do not touch the store.
func (s *Server) delay(w http.ResponseWriter, r *http.Request) bool {
	if err := s.store.wait(r.Context()); err != nil {
		s.fail(w, err)
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownCollection):
		writeError(w, http.StatusNotFound, string(apperrors.ErrCodeStoreError), err.Error())
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, ErrInvalidRecord):
		writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeValidationFailed), err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "REQUEST_CANCELLED", err.Error())
	default:
		s.logger.Error("store error", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, string(apperrors.ErrCodeStoreError), "internal store error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeValidationFailed), "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
