package whatsapp

import (
	"github.com/twilio/twilio-go/twiml"
)

// ErrorReply is sent back when an inbound message cannot be processed
const ErrorReply = "Disculpa, ocurrió un error procesando tu mensaje."

// errorEnvelope is served if even the TwiML builder fails
const errorEnvelope = `<?xml version="1.0" encoding="UTF-8"?><Response><Message>` + ErrorReply + `</Message></Response>`

// RenderReply wraps text in a messaging TwiML envelope
func RenderReply(text string) (string, error) {
	return twiml.Messages([]twiml.Element{
		&twiml.MessagingMessage{Body: text},
	})
}
