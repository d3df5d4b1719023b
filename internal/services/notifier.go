package services

import (
	"context"
	"log"

	"github.com/chachabrian/tripguard-backend/internal/models"
)

// Mailer sends OTP emails.
type Mailer interface {
	SendVerificationOTP(email, otp string) error
	SendPasswordResetOTP(email, otp string) error
}

// Messenger sends a text message to a phone number.
type Messenger interface {
	Send(phone, body string) error
}

// PushSender delivers a push notification to a device token.
type PushSender interface {
	SendToToken(ctx context.Context, token string, payload PushPayload) error
}

// DisabledMessenger stands in when no messaging credentials are configured.
type DisabledMessenger struct{}

func (DisabledMessenger) Send(phone, body string) error {
	log.Printf("WhatsApp disabled, not sending to %s: %s", phone, body)
	return nil
}

// Notifier fans a notification out to every channel a user can receive.
// Delivery is best effort: failures are logged and never returned.
type Notifier struct {
	mailer    Mailer
	messenger Messenger
	push      PushSender
}

// NewNotifier builds a notifier. push may be nil.
func NewNotifier(mailer Mailer, messenger Messenger, push PushSender) *Notifier {
	if messenger == nil {
		messenger = DisabledMessenger{}
	}
	return &Notifier{mailer: mailer, messenger: messenger, push: push}
}

func (n *Notifier) SendVerificationOTP(email, otp string) {
	if err := n.mailer.SendVerificationOTP(email, otp); err != nil {
		log.Printf("Error sending verification email to %s: %v", email, err)
	}
}

func (n *Notifier) SendPasswordResetOTP(email, otp string) {
	if err := n.mailer.SendPasswordResetOTP(email, otp); err != nil {
		log.Printf("Error sending password reset email to %s: %v", email, err)
	}
}

// Message sends a WhatsApp message to phone.
func (n *Notifier) Message(phone, body string) {
	if err := n.messenger.Send(phone, body); err != nil {
		log.Printf("Error sending WhatsApp message: %v", err)
	}
}

// NotifyUser messages the user over WhatsApp and, when a device token is
// registered, as a push notification.
func (n *Notifier) NotifyUser(ctx context.Context, user *models.User, title, body string, data map[string]string) {
	n.Message(user.PhoneNo, body)

	if n.push == nil || user.DeviceToken == "" {
		return
	}
	payload := PushPayload{Title: title, Body: body, Data: data}
	if err := n.push.SendToToken(ctx, user.DeviceToken, payload); err != nil {
		log.Printf("Error sending push notification to %s: %v", user.Username, err)
	}
}
