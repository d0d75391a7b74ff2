package mail

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendgridMailer delivers transactional mail through the SendGrid API.
type SendgridMailer struct {
	client   *sendgrid.Client
	from     *sgmail.Email
	subjPref string
}

func NewSendgridMailer(apiKey, fromName, fromAddr string) (*SendgridMailer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	if strings.TrimSpace(fromAddr) == "" {
		return nil, fmt.Errorf("from address is required")
	}

	return &SendgridMailer{
		client:   sendgrid.NewSendClient(apiKey),
		from:     sgmail.NewEmail(fromName, fromAddr),
		subjPref: "[StudyHub] ",
	}, nil
}

func (m *SendgridMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if m == nil || m.client == nil {
		return fmt.Errorf("mailer is not initialized")
	}
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("recipient address is required")
	}

	message := sgmail.NewSingleEmail(
		m.from,
		m.subjPref+subject,
		sgmail.NewEmail("", to),
		subject,
		htmlBody,
	)

	res, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid returned status %d: %s", res.StatusCode, strings.TrimSpace(res.Body))
	}

	return nil
}
