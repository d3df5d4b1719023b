package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

func TestFormatWhatsAppNumber(t *testing.T) {
	assert.Equal(t, "whatsapp:+919997186212", FormatWhatsAppNumber("9997186212", "+91"))
	assert.Equal(t, "whatsapp:+14155238886", FormatWhatsAppNumber("+14155238886", "+91"))
	assert.Equal(t, "whatsapp:+919997186212", FormatWhatsAppNumber(" 9997186212 ", "+91"))
}

func TestWhatsAppSender_Send(t *testing.T) {
	var got *twilioApi.CreateMessageParams
	sid := "SM123"
	sender := &WhatsAppSender{
		from:        "whatsapp:+14155238886",
		countryCode: "+91",
		create: func(p *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
			got = p
			return &twilioApi.ApiV2010Message{Sid: &sid}, nil
		},
	}

	require.NoError(t, sender.Send("9997186212", "hello"))
	require.NotNil(t, got)
	assert.Equal(t, "whatsapp:+919997186212", *got.To)
	assert.Equal(t, "whatsapp:+14155238886", *got.From)
	assert.Equal(t, "hello", *got.Body)
}

func TestWhatsAppSender_SendError(t *testing.T) {
	sender := &WhatsAppSender{
		from:        "whatsapp:+14155238886",
		countryCode: "+91",
		create: func(*twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
			return nil, errors.New("boom")
		},
	}
	assert.Error(t, sender.Send("9997186212", "hello"))
}
