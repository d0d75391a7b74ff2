package channel

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/studyhub/notifier/internal/domain"
)

// Mailer is the outbound mail transport port. Implementations report success
// or failure only; the adapter never inspects provider internals.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

var emailTemplate = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: sans-serif; color: #333;">
    <h2>{{.Title}}</h2>
    <p>{{.Body}}</p>
    <hr>
    <p style="font-size: 12px; color: #999;">Sent by StudyHub on {{.SentAt}}</p>
  </body>
</html>
`))

type emailTemplateData struct {
	Title  string
	Body   string
	SentAt string
}

// EmailAdapter renders the fixed notification template and hands it to the
// mail transport.
type EmailAdapter struct {
	mailer Mailer
}

var _ Adapter = (*EmailAdapter)(nil)

func NewEmailAdapter(mailer Mailer) (*EmailAdapter, error) {
	if mailer == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	return &EmailAdapter{mailer: mailer}, nil
}

func (a *EmailAdapter) Channel() domain.Channel { return domain.ChannelEmail }

func (a *EmailAdapter) Send(ctx context.Context, user domain.User, msg Message) (*Receipt, error) {
	if !user.HasEmail() {
		return nil, ErrNoTarget
	}

	var body bytes.Buffer
	err := emailTemplate.Execute(&body, emailTemplateData{
		Title:  msg.Title,
		Body:   msg.Body,
		SentAt: msg.SentAt.UTC().Format("2006-01-02 15:04 MST"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render email: %w", err)
	}

	if err := a.mailer.Send(ctx, user.Email, msg.Title, body.String()); err != nil {
		return nil, fmt.Errorf("mail transport failed: %w", err)
	}

	return &Receipt{}, nil
}
