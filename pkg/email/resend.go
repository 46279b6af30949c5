package email

import (
	"fmt"

	"github.com/resend/resend-go/v3"

	"kpi-dashboard/pkg/config"
)

// Client sends transactional emails via Resend.
type Client struct {
	client    *resend.Client
	fromEmail string
	fromName  string
}

// NewClient returns a configured Resend client, or nil if not configured.
// Callers treat a nil client as "email delivery disabled".
func NewClient(cfg *config.EmailConfig) *Client {
	if cfg.ResendAPIKey == "" || cfg.FromAddress == "" {
		return nil
	}
	return &Client{
		client:    resend.NewClient(cfg.ResendAPIKey),
		fromEmail: cfg.FromAddress,
		fromName:  cfg.FromName,
	}
}

// Send sends an email to the given address.
func (c *Client) Send(toEmail, subject, htmlBody string) error {
	if c == nil {
		return fmt.Errorf("email: client not configured")
	}

	from := fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail)

	params := &resend.SendEmailRequest{
		From:    from,
		To:      []string{toEmail},
		Subject: subject,
		Html:    htmlBody,
	}

	if _, err := c.client.Emails.Send(params); err != nil {
		return fmt.Errorf("email: resend send: %w", err)
	}
	return nil
}

// SendInvitation sends a tenant invitation link to the invited address.
func (c *Client) SendInvitation(toEmail, tenantName, inviteURL string, expiresDays int) error {
	subject := fmt.Sprintf("You have been invited to %s on KPI Dashboard", tenantName)
	body := fmt.Sprintf(`
		<p>You have been invited to join <strong>%s</strong> on KPI Dashboard.</p>
		<p><a href="%s">Accept the invitation</a></p>
		<p>This link expires in %d days and can be used once.</p>`,
		tenantName, inviteURL, expiresDays)
	return c.Send(toEmail, subject, body)
}
