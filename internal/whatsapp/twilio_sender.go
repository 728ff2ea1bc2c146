package whatsapp

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/novagadgets/novadesk/internal/config"
	"github.com/novagadgets/novadesk/internal/observability"
)

// TwilioSender implements Sender using the Twilio REST API
type TwilioSender struct {
	client *twilio.RestClient // nil when credentials are missing
	from   string
	logger zerolog.Logger
}

// NewTwilioSender creates a sender from cfg. Without credentials every Send
// returns ErrNotConfigured.
func NewTwilioSender(cfg *config.Config, logger zerolog.Logger) *TwilioSender {
	s := &TwilioSender{
		from:   Address(cfg.TwilioPhoneNumber),
		logger: logger.With().Str("component", "twilio_sender").Logger(),
	}
	if cfg.TwilioConfigured() {
		s.client = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		})
	}
	return s
}

// Configured reports whether the sender holds gateway credentials
func (s *TwilioSender) Configured() bool {
	return s.client != nil
}

// Send delivers body to the WhatsApp address to
func (s *TwilioSender) Send(ctx context.Context, to, body string) (string, error) {
	if s.client == nil {
		return "", ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(Address(to))
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	observability.RecordGatewaySend(err == nil)
	if err != nil {
		return "", fmt.Errorf("failed to send whatsapp message: %w", err)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	s.logger.Info().Str("message_sid", sid).Str("to", Address(to)).Msg("WhatsApp message sent")
	return sid, nil
}
