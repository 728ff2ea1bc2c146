package whatsapp

import (
	"context"
	"errors"
	"strings"

	"github.com/novagadgets/novadesk/internal/assistant"
)

// ChannelPrefix marks WhatsApp addresses on the Twilio messaging API
const ChannelPrefix = "whatsapp:"

// ErrNotConfigured is returned by a Sender without gateway credentials
var ErrNotConfigured = errors.New("twilio not configured")

// Sender delivers outbound WhatsApp messages through the gateway
type Sender interface {
	// Send delivers body to the WhatsApp address to and returns the message SID
	Send(ctx context.Context, to, body string) (string, error)
}

// Responder produces the reply for an inbound message
type Responder interface {
	Respond(ctx context.Context, req assistant.Request) assistant.Result
}

// Address returns phone as a WhatsApp address, adding the channel prefix if missing
func Address(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, ChannelPrefix) {
		return phone
	}
	return ChannelPrefix + phone
}
