package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"polarflow/models"

	"go.uber.org/zap"
)

const resendEndpoint = "https://api.resend.com/emails"

// ResendEmailService sends transactional email through the Resend API.
type ResendEmailService struct {
	APIKey     string
	From       string
	Endpoint   string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewResendEmailService returns an email sender with a bounded timeout.
func NewResendEmailService(apiKey, from string, logger *zap.Logger) *ResendEmailService {
	return &ResendEmailService{
		APIKey:     apiKey,
		From:       from,
		Endpoint:   resendEndpoint,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Logger:     logger,
	}
}

type resendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendOrderConfirmation emails the payment confirmation, including visit
// details when the order is tied to a booking.
func (s *ResendEmailService) SendOrderConfirmation(ctx context.Context, ord *models.Order, b *models.Booking) error {
	subject := "Your payment is confirmed"
	body := fmt.Sprintf(
		"<p>Thanks for your order!</p><p>We received your payment of %s %.2f.</p>",
		ord.Currency, float64(ord.AmountCents)/100)

	if b != nil {
		offering, _ := models.OfferingByType(b.ServiceType)
		subject = fmt.Sprintf("Your %s visit is confirmed", offering.Name)
		body += fmt.Sprintf(
			"<p>Your %s visit is confirmed for %s at %s, %s.</p><p>Our team will arrive about 30 minutes early for setup.</p>",
			offering.Name,
			b.ScheduledAt.Format("Monday, January 2 at 3:04 PM"),
			b.Address.Line1, b.Address.City)
	}

	return s.send(ctx, ord.CustomerEmail, subject, body)
}

// SendVisitReminder emails the pre-visit reminder.
func (s *ResendEmailService) SendVisitReminder(ctx context.Context, email string, b *models.Booking) error {
	offering, _ := models.OfferingByType(b.ServiceType)
	subject := fmt.Sprintf("Reminder: your %s visit is tomorrow", offering.Name)
	body := fmt.Sprintf(
		"<p>Just a reminder that your %s visit is scheduled for %s.</p><p>Please make sure our team can access %s.</p>",
		offering.Name,
		b.ScheduledAt.Format("Monday, January 2 at 3:04 PM"),
		b.Address.Line1)
	return s.send(ctx, email, subject, body)
}

func (s *ResendEmailService) send(ctx context.Context, to, subject, html string) error {
	payload, err := json.Marshal(resendEmailRequest{
		From:    s.From,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email: %w", err)
	}

	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = resendEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		s.Logger.Error("email provider returned non-2xx",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody))
		return fmt.Errorf("email provider responded %d", resp.StatusCode)
	}

	s.Logger.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
