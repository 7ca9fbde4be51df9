package notification

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"mediremind-backend/internal/model"
)

// ErrSubscriptionGone marks an endpoint the push service reports as
// permanently gone (404/410). The subscription must be deleted and never
// retried.
var ErrSubscriptionGone = errors.New("push subscription gone")

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of Sender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// PushPayload is the notification content delivered to a browser.
type PushPayload struct {
	Title      string
	Body       string
	Icon       string
	Badge      string
	Tag        string
	URL        string
	Disclaimer string
}

// pushMessage is the wire shape the service worker on the client expects.
type pushMessage struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	Icon       string `json:"icon"`
	Badge      string `json:"badge"`
	Tag        string `json:"tag"`
	Disclaimer string `json:"disclaimer,omitempty"`
	Data       struct {
		URL string `json:"url"`
	} `json:"data"`
}

// Pusher delivers web push notifications signed with the server's VAPID
// key pair. A Pusher built without keys is disabled: deliveries log a mock
// line and report success.
type Pusher struct {
	options *webpush.Options
	sender  Sender
}

// NewPusher creates a Pusher from the given webpush options. Pass options
// without a key pair to run with push delivery disabled.
func NewPusher(options *webpush.Options) *Pusher {
	return &Pusher{
		options: options,
		sender:  &WebPushSender{},
	}
}

// SetSender replaces the transport, used by tests.
func (p *Pusher) SetSender(s Sender) {
	p.sender = s
}

// Enabled reports whether a VAPID key pair is loaded.
func (p *Pusher) Enabled() bool {
	return p.options != nil && p.options.VAPIDPublicKey != "" && p.options.VAPIDPrivateKey != ""
}

// Deliver sends one notification to one subscription.
func (p *Pusher) Deliver(sub model.PushSubscription, payload PushPayload) error {
	if !p.Enabled() {
		log.Printf("[MOCK PUSH] Title: %s, Body: %s", payload.Title, payload.Body)
		return nil
	}

	msg := pushMessage{
		Title:      payload.Title,
		Body:       payload.Body,
		Icon:       payload.Icon,
		Badge:      payload.Badge,
		Tag:        payload.Tag,
		Disclaimer: payload.Disclaimer,
	}
	if msg.Icon == "" {
		msg.Icon = "/icons/pill-icon.png"
	}
	if msg.Badge == "" {
		msg.Badge = "/icons/badge.png"
	}
	if msg.Tag == "" {
		msg.Tag = "medication-reminder"
	}
	msg.Data.URL = payload.URL
	if msg.Data.URL == "" {
		msg.Data.URL = "/"
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %w", err)
	}

	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := p.sender.Send(body, wpSub, p.options)
	if err != nil {
		return fmt.Errorf("push transport error for %s: %w", sub.Endpoint, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusGone:
		return fmt.Errorf("endpoint %s returned %d: %w", sub.Endpoint, resp.StatusCode, ErrSubscriptionGone)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service returned %d for %s", resp.StatusCode, sub.Endpoint)
	}
	return nil
}
