package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/sanitycheck/internal/domain"
	apimw "github.com/hamed0406/sanitycheck/internal/httpapi/middleware"
	"github.com/hamed0406/sanitycheck/internal/service"
)

// RunService is what the HTTP layer needs; *service.Service implements it.
type RunService interface {
	TriggerRun(ctx context.Context) (*domain.RunReport, error)
	FetchRun(ctx context.Context, runID string) ([]domain.ReportEntry, error)
}

type Server struct {
	Logger *zap.Logger
	Runs   RunService
}

func NewServer(l *zap.Logger, runs RunService) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{Logger: l, Runs: runs}
}

// Router wires the routes. runRPM/runBurst rate-limit /run-tests per
// client IP; runRPM <= 0 disables the limit.
func (s *Server) Router(runRPM, runBurst int) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(apimw.AccessLog(s.Logger))
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.With(apimw.RateLimit(runRPM, runBurst)).Get("/run-tests", s.handleRunTests)
	r.Get("/results/{run_id}", s.handleResults)

	return r
}

type messageBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleRunTests(w http.ResponseWriter, r *http.Request) {
	rep, err := s.Runs.TriggerRun(r.Context())
	if err != nil {
		s.Logger.Error("run_tests_error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, messageBody{Message: "Error running tests", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "run_id")
	entries, err := s.Runs.FetchRun(r.Context(), runID)
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, messageBody{Message: "No results found for this run ID"})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, messageBody{Message: "Error fetching results", Error: err.Error()})
	default:
		writeJSON(w, http.StatusOK, entries)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
