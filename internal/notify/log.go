package notify

import (
	"context"

	"go.uber.org/zap"

	"carrete-admin/internal/identity"
)

// LogMailer writes reset messages to the log instead of sending them. It is
// meant for local development, where the token must be readable.
type LogMailer struct {
	log *zap.Logger
}

var _ identity.Mailer = LogMailer{}

func NewLogMailer(log *zap.Logger) LogMailer {
	return LogMailer{log: log}
}

func (m LogMailer) SendReset(_ context.Context, msg identity.ResetMessage) error {
	m.log.Info("password reset requested",
		zap.String("email", msg.Email),
		zap.String("token", msg.Token),
		zap.Time("expiresAt", msg.ExpiresAt),
	)
	return nil
}
