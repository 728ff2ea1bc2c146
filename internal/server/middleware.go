package server

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/novagadgets/novadesk/internal/observability"
)

func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return s.correlationMiddleware(
		s.loggingMiddleware(
			s.recoverMiddleware(next),
		),
	)
}

// correlationMiddleware attaches a request-scoped logger keyed by X-Request-ID
func (s *Server) correlationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(observability.CorrelationHeader)
		if id == "" || len(id) > 128 {
			id = observability.NewCorrelationID()
		}
		w.Header().Set(observability.CorrelationHeader, id)

		logger := s.Logger.With().Str("correlation_id", id).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		elapsed := time.Since(start)
		observability.RecordHTTPRequest(r.Method, sw.status, elapsed)
		observability.LoggerFromContext(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("latency", elapsed).
			Msg("HTTP request")
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				observability.LoggerFromContext(r.Context()).Error().
					Interface("panic", err).
					Str("path", r.URL.Path).
					Msg("Recovered from panic")
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(statusCode int) {
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// Hijack lets the WebSocket upgrader take over the connection
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
