package email

import (
	"context"
	"log/slog"

	"github.com/jobtrail/jobtrail-backend/internal/core/ports"
)

// MockSMTPNotifier is a secondary adapter that mocks sending emails.
// It implements the ports.Notifier interface.
type MockSMTPNotifier struct {
	fromAddress string
	logger      *slog.Logger
}

// NewMockSMTPNotifier creates a new mock notifier.
func NewMockSMTPNotifier(fromAddress string, logger *slog.Logger) ports.Notifier {
	return &MockSMTPNotifier{
		fromAddress: fromAddress,
		logger:      logger.With("component", "email_notifier"),
	}
}

// Notify logs the notification to the console instead of sending an email.
// Callers fire it from their own goroutine; delivery is best-effort.
func (n *MockSMTPNotifier) Notify(_ context.Context, params ports.NotificationParams) {
	n.logger.Info("mock email sent",
		"from", n.fromAddress,
		"to", params.RecipientEmail,
		"subject", params.Subject,
		"body", params.Message,
	)
}
