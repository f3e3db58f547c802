package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

const whatsappPrefix = "whatsapp:"

// WhatsAppSender sends WhatsApp messages through the Twilio REST API.
type WhatsAppSender struct {
	client *twilio.RestClient
	from   string
}

func NewWhatsAppSender(accountSID, authToken, from string) *WhatsAppSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &WhatsAppSender{client: client, from: from}
}

func (w *WhatsAppSender) Send(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(WhatsAppAddress(to))
	params.SetFrom(WhatsAppAddress(w.from))
	params.SetBody(body)

	if _, err := w.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send to %s: %w", to, err)
	}
	return nil
}

// WhatsAppAddress prefixes a phone number with the WhatsApp channel scheme.
func WhatsAppAddress(phone string) string {
	if strings.HasPrefix(phone, whatsappPrefix) {
		return phone
	}
	return whatsappPrefix + phone
}
