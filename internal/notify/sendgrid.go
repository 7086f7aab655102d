package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendgridClient interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error)
}

// SendGridNotifier delivers orders through the SendGrid v3 mail API
type SendGridNotifier struct {
	apiKey     string
	senderName string
	client     sendgridClient
}

func NewSendGridNotifier(apiKey, senderName string) *SendGridNotifier {
	return &SendGridNotifier{
		apiKey:     apiKey,
		senderName: senderName,
		client:     sendgrid.NewSendClient(apiKey),
	}
}

func (n *SendGridNotifier) Send(ctx context.Context, msg Message) error {
	if n.apiKey == "" {
		return ErrMissingCredentials
	}
	if msg.From == "" {
		return errors.New("from address is empty")
	}
	if msg.To == "" {
		return errors.New("to address is empty")
	}

	message := sgmail.NewSingleEmail(
		sgmail.NewEmail(n.senderName, msg.From),
		msg.Subject,
		sgmail.NewEmail("", msg.To),
		msg.Body,
		fmt.Sprintf("<pre>%s</pre>", msg.Body),
	)

	response, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d", response.StatusCode)
	}
	return nil
}
