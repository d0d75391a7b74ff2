package mail

import (
	"context"

	"go.uber.org/zap"
)

// ConsoleMailer logs mail instead of sending it. Used when no SendGrid key is
// configured (local dev, CI).
type ConsoleMailer struct {
	logger *zap.Logger
}

func NewConsoleMailer(logger *zap.Logger) *ConsoleMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleMailer{logger: logger}
}

func (m *ConsoleMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.logger.Info("console mailer: email suppressed",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("bodyBytes", len(htmlBody)),
	)
	return nil
}
