// Package notify delivers assembled orders to the storefront over a pluggable
// transport (SMTP, SendGrid, Kafka or a Redis stream).
package notify

import (
	"context"
	"errors"
)

var (
	ErrDeliveryFailed     = errors.New("order notification delivery failed")
	ErrMissingCredentials = errors.New("notification credentials are not configured")
)

// Message is a fully formed notification, independent of the transport.
type Message struct {
	OrderID string `json:"order_id"`
	Subject string `json:"subject"`
	From    string `json:"from"`
	To      string `json:"to"`
	Body    string `json:"body"`
}

type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(ctx context.Context, msg Message) error

func (f NotifierFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}
