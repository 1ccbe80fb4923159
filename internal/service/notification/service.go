package notification

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/notification"
)

// slogNotifier is a fire-and-forget Notifier that writes structured log
// events. Delivery to a real channel is an external collaborator; the
// engine only needs a sink that never blocks or fails the caller.
type slogNotifier struct {
	logger *slog.Logger
}

func NewSlogNotifier(logger *slog.Logger) notification.Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogNotifier{logger: logger}
}

func (n *slogNotifier) Notify(ctx context.Context, ev notification.Event) {
	n.logger.InfoContext(ctx, "notification",
		"employee_id", ev.EmployeeID,
		"type", string(ev.Type),
		"message", ev.Message,
		"occurred_at", ev.OccurredAt,
	)
}
