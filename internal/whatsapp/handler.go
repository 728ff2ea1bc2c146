package whatsapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go/client"

	"github.com/novagadgets/novadesk/internal/assistant"
	"github.com/novagadgets/novadesk/internal/config"
	"github.com/novagadgets/novadesk/internal/observability"
)

const maxSendBodyBytes = 64 << 10

// Handler serves the Twilio webhook, the outbound send endpoint and delivery
// status callbacks
type Handler struct {
	responder     Responder
	sender        Sender
	validator     *client.RequestValidator // nil disables signature checks
	publicBaseURL string
	logger        zerolog.Logger
}

// NewHandler creates a WhatsApp handler
func NewHandler(cfg *config.Config, responder Responder, sender Sender, logger zerolog.Logger) *Handler {
	h := &Handler{
		responder:     responder,
		sender:        sender,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		logger:        logger.With().Str("component", "whatsapp").Logger(),
	}
	if cfg.TwilioValidateSignature {
		if cfg.TwilioAuthToken == "" {
			h.logger.Warn().Msg("TWILIO_VALIDATE_SIGNATURE set without TWILIO_AUTH_TOKEN, signatures will not be checked")
		} else {
			v := client.NewRequestValidator(cfg.TwilioAuthToken)
			h.validator = &v
		}
	}
	return h
}

// Webhook answers an inbound WhatsApp message with a TwiML envelope
func (h *Handler) Webhook() http.HandlerFunc {
	return h.requireSignature(func(w http.ResponseWriter, r *http.Request) {
		logger := observability.LoggerFromContext(r.Context())

		defer func() {
			if rec := recover(); rec != nil {
				logger.Error().Interface("panic", rec).Msg("Error processing webhook")
				writeTwiML(w, errorEnvelope)
			}
		}()

		body := strings.TrimSpace(r.PostFormValue("Body"))
		from := r.PostFormValue("From")
		if body == "" {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}

		observability.RecordMessageReceived("whatsapp")
		logger.Info().Str("from", from).Int("length", len(body)).Msg("WhatsApp message received")

		res := h.responder.Respond(r.Context(), assistant.Request{Message: body})

		envelope, err := RenderReply(res.Reply)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to render TwiML reply")
			envelope = errorEnvelope
		}

		logger.Info().Str("from", from).Str("path", string(res.Path)).Msg("WhatsApp reply sent")
		writeTwiML(w, envelope)
	})
}

type sendRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Send pushes a message to a WhatsApp number through the gateway
func (h *Handler) Send() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := observability.LoggerFromContext(r.Context())

		if c, ok := h.sender.(interface{ Configured() bool }); ok && !c.Configured() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Twilio no configurado"})
			return
		}

		var req sendRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSendBodyBytes)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("JSON inválido: %v", err)})
			return
		}
		if strings.TrimSpace(req.Phone) == "" || strings.TrimSpace(req.Message) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Falta 'phone' o 'message'"})
			return
		}

		sid, err := h.sender.Send(r.Context(), Address(req.Phone), req.Message)
		if errors.Is(err, ErrNotConfigured) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Twilio no configurado"})
			return
		}
		if err != nil {
			logger.Error().Err(err).Str("to", Address(req.Phone)).Msg("Failed to send WhatsApp message")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "enviado", "message_sid": sid})
	}
}

// Status records a delivery status callback
func (h *Handler) Status() http.HandlerFunc {
	return h.requireSignature(func(w http.ResponseWriter, r *http.Request) {
		sid := r.PostFormValue("MessageSid")
		status := r.PostFormValue("MessageStatus")

		observability.RecordStatusCallback(status)
		observability.LoggerFromContext(r.Context()).Info().
			Str("message_sid", sid).
			Str("message_status", status).
			Msg("Message status update")

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// requireSignature rejects requests whose X-Twilio-Signature does not match
func (h *Handler) requireSignature(next http.HandlerFunc) http.HandlerFunc {
	if h.validator == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form body", http.StatusBadRequest)
			return
		}

		params := make(map[string]string, len(r.PostForm))
		for k, v := range r.PostForm {
			if len(v) > 0 {
				params[k] = v[0]
			}
		}

		signature := r.Header.Get("X-Twilio-Signature")
		if !h.validator.Validate(h.requestURL(r), params, signature) {
			observability.LoggerFromContext(r.Context()).Warn().
				Str("path", r.URL.Path).
				Msg("Rejected request with invalid Twilio signature")
			http.Error(w, "invalid signature", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// requestURL rebuilds the public URL Twilio signed
func (h *Handler) requestURL(r *http.Request) string {
	if h.publicBaseURL != "" {
		return h.publicBaseURL + r.URL.RequestURI()
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

func writeTwiML(w http.ResponseWriter, envelope string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(envelope))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
