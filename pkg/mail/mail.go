package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialnet/pkg/logger"
)

// Sender delivers transactional mail. The rest of the system only depends on
// this narrow contract.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

type sendgridSender struct {
	client   *sendgrid.Client
	fromName string
	fromAddr string
}

// NewSendgrid builds the production sender.
func NewSendgrid(apiKey, fromName, fromAddr string) Sender {
	return &sendgridSender{
		client:   sendgrid.NewSendClient(apiKey),
		fromName: fromName,
		fromAddr: fromAddr,
	}
}

func (s *sendgridSender) Send(ctx context.Context, to, subject, text, html string) error {
	from := sgmail.NewEmail(s.fromName, s.fromAddr)
	msg := sgmail.NewSingleEmail(from, subject, sgmail.NewEmail("", to), text, html)
	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d", resp.StatusCode)
	}
	return nil
}

type noopSender struct{}

// NewNoop logs instead of sending; used in dev and tests.
func NewNoop() Sender { return noopSender{} }

func (noopSender) Send(_ context.Context, to, subject, _, _ string) error {
	logger.Info("mail suppressed", zap.String("to", to), zap.String("subject", subject))
	return nil
}
