// Package httpapi exposes the time-tracking services as a JSON REST API.
// The caller is identified by the X-User-ID header, which the fronting
// authentication layer sets.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexanderramin/tally/internal/service"
)

// UserHeader carries the authenticated caller id.
const UserHeader = "X-User-ID"

// Services bundles the use cases the API serves.
type Services struct {
	Timers     service.TimerService
	Logs       service.TimeLogService
	Timesheets service.TimesheetService
	Approvals  service.ApprovalService
}

type Server struct {
	svc    Services
	logger *slog.Logger
}

func NewServer(svc Services, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{svc: svc, logger: logger}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /timer/start", s.authed(s.handleTimerStart))
	mux.HandleFunc("GET /timer/active", s.authed(s.handleTimerActive))
	mux.HandleFunc("POST /timer/stop", s.authed(s.handleTimerStop))
	mux.HandleFunc("DELETE /timer/discard", s.authed(s.handleTimerDiscard))

	mux.HandleFunc("POST /timelogs", s.authed(s.handleCreateLog))
	mux.HandleFunc("GET /timelogs", s.authed(s.handleListLogs))

	mux.HandleFunc("GET /timesheets/user/{userId}/week/{weekId}", s.authed(s.handleGetWeek))
	mux.HandleFunc("POST /timesheets/save", s.authed(s.handleSaveEntries))
	mux.HandleFunc("POST /timesheets/submit", s.authed(s.handleSubmit))
	mux.HandleFunc("GET /timesheets/pending", s.authed(s.handlePending))
	mux.HandleFunc("PUT /timesheets/{id}/approve", s.authed(s.handleApprove))
	mux.HandleFunc("PUT /timesheets/{id}/reject", s.authed(s.handleReject))

	return s.withRecover(s.withRequestLog(mux))
}

// ListenAndServe serves the API on addr until ctx is cancelled, then drains
// in-flight requests for up to ten seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("http_listen", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// authedHandler receives the caller id resolved from UserHeader.
type authedHandler func(w http.ResponseWriter, r *http.Request, userID string)

func (s *Server) authed(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserHeader)
		if userID == "" {
			writeErrorBody(w, http.StatusUnauthorized, "unauthenticated", "missing "+UserHeader+" header")
			return
		}
		next(w, r, userID)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.InfoContext(r.Context(), "http_request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"user", r.Header.Get(UserHeader),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				s.logger.ErrorContext(r.Context(), "http_panic", "path", r.URL.Path, "panic", p)
				writeErrorBody(w, http.StatusInternalServerError, "internal", "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
