package services

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Pusher sends push notifications through Firebase Cloud Messaging.
type Pusher struct {
	client *messaging.Client
}

// NewPusher initializes the Firebase Admin SDK from a service account file.
func NewPusher(ctx context.Context, serviceAccountPath string) (*Pusher, error) {
	opt := option.WithCredentialsFile(serviceAccountPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	log.Println("Firebase Cloud Messaging initialized successfully")
	return &Pusher{client: client}, nil
}

// PushPayload is the notification content.
type PushPayload struct {
	Title string
	Body  string
	Data  map[string]string
}

func buildMessage(token string, payload PushPayload) *messaging.Message {
	badge := 1
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: payload.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID:             "tripguard_trips",
				Sound:                 "default",
				DefaultSound:          true,
				Priority:              messaging.PriorityHigh,
				DefaultVibrateTimings: true,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
					Badge: &badge,
				},
			},
		},
	}
}

// SendToToken sends a notification to a specific FCM token
func (p *Pusher) SendToToken(ctx context.Context, token string, payload PushPayload) error {
	response, err := p.client.Send(ctx, buildMessage(token, payload))
	if err != nil {
		return fmt.Errorf("error sending message: %w", err)
	}

	log.Printf("Successfully sent push notification, response: %s", response)
	return nil
}
