package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"planwrite/internal/observability"
)

// trackRequests reports every API call as a usage event and logs it.
func (s *Server) trackRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		s.log.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
		if s.deps.Tracker != nil && r.URL.Path != "/health" {
			observability.TrackAPIRequest(r.Context(), s.deps.Tracker, "api", r.Method, r.URL.Path, status, elapsed.Milliseconds())
		}
	})
}
