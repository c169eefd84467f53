package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"rentalhub-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendGridEmailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewSendGridEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &sendGridEmailService{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridEmailService) SendRentalNotification(ctx context.Context, toEmail, toName, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, toEmail)
	plainText := fmt.Sprintf("Hello %s,\n\n%s\n\nBest regards,\nThe RentalHub Team", toName, body)
	htmlContent := fmt.Sprintf("<p>Hello %s,</p><p>%s</p><p>Best regards,<br>The RentalHub Team</p>",
		html.EscapeString(toName), strings.ReplaceAll(html.EscapeString(body), "\n", "<br>"))

	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	logger.ExternalServiceCall("sendgrid", "send", "to", toEmail, "subject", subject)
	response, err := s.client.SendWithContext(ctx, message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "send", err, "to", toEmail)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// logEmailService only logs outgoing mail. It is used when no SendGrid key is configured.
type logEmailService struct{}

func NewLogEmailService() EmailService {
	return logEmailService{}
}

func (logEmailService) SendRentalNotification(ctx context.Context, toEmail, toName, subject, body string) error {
	logger.Info("Email not sent, SendGrid disabled", "to", toEmail, "subject", subject)
	return nil
}
