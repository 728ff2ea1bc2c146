package server

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/novagadgets/novadesk/internal/config"
	"github.com/novagadgets/novadesk/internal/observability"
	"github.com/novagadgets/novadesk/internal/tramites"
	"github.com/novagadgets/novadesk/internal/webchat"
	"github.com/novagadgets/novadesk/internal/whatsapp"
)

// Server wires every HTTP surface of the service
type Server struct {
	Config      *config.Config
	WhatsApp    *whatsapp.Handler
	Chat        *webchat.Handler
	Tramites    *tramites.Handler
	ReadyChecks []observability.DependencyCheck
	Diagnostics observability.Diagnostics
	Logger      zerolog.Logger
}

// Routes returns the root handler with middleware applied
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	s.registerSystemRoutes(mux)
	s.registerWhatsAppRoutes(mux)
	s.registerChatRoutes(mux)
	if s.Tramites != nil {
		s.Tramites.Register(mux)
	}

	return s.withMiddleware(mux)
}

func (s *Server) registerSystemRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", handleIndex)
	mux.HandleFunc("GET /health", observability.HealthCheckHandler())
	mux.HandleFunc("GET /ready", observability.ReadinessHandler(s.ReadyChecks...))
	mux.HandleFunc("GET /test", observability.DiagnosticsHandler(s.Diagnostics))

	if s.Config.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}
}

func (s *Server) registerWhatsAppRoutes(mux *http.ServeMux) {
	if s.WhatsApp == nil {
		return
	}
	webhook := s.WhatsApp.Webhook()
	mux.Handle("POST /api/whatsapp/webhook", webhook)
	mux.Handle("POST /webhook", webhook)
	mux.Handle("POST /api/whatsapp/send", s.adminOnly(s.WhatsApp.Send()))
	mux.Handle("POST /api/whatsapp/status", s.WhatsApp.Status())
}

func (s *Server) registerChatRoutes(mux *http.ServeMux) {
	if s.Chat == nil {
		return
	}
	mux.Handle("POST /api/chat", s.Chat.Chat())
	mux.Handle("GET /ws/chat", s.Chat.Stream())
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "NovaDesk running",
	})
}

// adminOnly requires ADMIN_API_KEY through X-Admin-Key or a bearer token.
// Without a configured key the endpoint stays open.
func (s *Server) adminOnly(next http.Handler) http.Handler {
	expected := strings.TrimSpace(s.Config.AdminAPIKey)
	if expected == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provided := extractAdminKey(r)
		if subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) != 1 {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "No autorizado"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractAdminKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get("X-Admin-Key")); key != "" {
		return key
	}
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) > len("Bearer ") && strings.EqualFold(auth[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(auth[len("Bearer "):])
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
