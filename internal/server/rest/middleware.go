package rest

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/postkeeper/internal/common"
	"github.com/dmitrijs2005/postkeeper/internal/server/auth"
	"github.com/go-chi/chi/v5/middleware"
)

// authGate admits only requests carrying a valid bearer token and stores the
// verified identity in the request context. Rejections never say why.
func (s *HTTPServer) authGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		if header == "" {
			s.unauthenticated(w)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, common.BearerPrefix))
		if token == "" {
			s.unauthenticated(w)
			return
		}

		id, err := s.codec.Decode(token)
		if err != nil {
			s.logger.Debug(r.Context(), "token rejected", "error", err)
			s.unauthenticated(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
	})
}

func (s *HTTPServer) unauthenticated(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="postkeeper"`)
	writeJSON(w, http.StatusUnauthorized, errorResponse{Error: common.ErrorUnauthorized.Error()})
}

// requestLogger logs one line per request; the level follows the status.
func (s *HTTPServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		args := []any{
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
		}

		switch {
		case status >= 500:
			s.logger.Error(r.Context(), "request failed", args...)
		case status >= 400:
			s.logger.Warn(r.Context(), "request completed with client error", args...)
		default:
			s.logger.Info(r.Context(), "request completed", args...)
		}
	})
}
