package utils

import (
	"fmt"
	"log"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// WhatsAppConfig holds Twilio credentials and the sender number.
type WhatsAppConfig struct {
	AccountSID  string
	AuthToken   string
	From        string
	CountryCode string
}

// WhatsAppSender delivers messages through the Twilio WhatsApp API.
type WhatsAppSender struct {
	from        string
	countryCode string
	create      func(*twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

func NewWhatsAppSender(cfg WhatsAppConfig) *WhatsAppSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &WhatsAppSender{
		from:        cfg.From,
		countryCode: cfg.CountryCode,
		create:      client.Api.CreateMessage,
	}
}

// FormatWhatsAppNumber turns a stored phone number into a Twilio WhatsApp
// address. Numbers without a leading + get countryCode prepended.
func FormatWhatsAppNumber(phone, countryCode string) string {
	phone = strings.TrimSpace(phone)
	if !strings.HasPrefix(phone, "+") {
		phone = countryCode + phone
	}
	return "whatsapp:" + phone
}

// Send delivers body to phone.
func (w *WhatsAppSender) Send(phone, body string) error {
	to := FormatWhatsAppNumber(phone, w.countryCode)

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(w.from)
	params.SetBody(body)

	resp, err := w.create(params)
	if err != nil {
		return fmt.Errorf("failed to send whatsapp message to %s: %w", to, err)
	}

	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	log.Printf("Sent WhatsApp message to %s (sid %s)", to, sid)
	return nil
}
