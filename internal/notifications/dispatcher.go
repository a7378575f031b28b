package notifications

import (
	"context"
	"encoding/json"
	"log/slog"
	"runtime/debug"
	"time"

	"readrover/internal/middleware"
	"readrover/internal/models"
	"readrover/internal/observability"
	"readrover/internal/repository"
)

// Dispatcher persists notifications and pushes them to the recipient's
// Redis channel. Dispatch is fire-and-forget: a failure in either leg is
// logged and never surfaces to the operation that triggered it.
type Dispatcher struct {
	repo     repository.NotificationRepository
	notifier *Notifier
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(repo repository.NotificationRepository, notifier *Notifier) *Dispatcher {
	return &Dispatcher{repo: repo, notifier: notifier}
}

// Dispatch records a notification for userID and publishes it. The work
// runs detached from the caller's request context so a finished request
// does not cancel delivery.
func (d *Dispatcher) Dispatch(_ context.Context, userID uint, kind models.NotificationKind, content string) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				middleware.Logger.Error("panic in notification dispatch",
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		notification := &models.Notification{
			UserID:  userID,
			Kind:    kind,
			Content: content,
		}
		if err := d.repo.Create(ctx, notification); err != nil {
			middleware.Logger.Error("failed to persist notification",
				slog.Uint64("user_id", uint64(userID)),
				slog.String("kind", string(kind)),
				slog.String("error", err.Error()),
			)
			return
		}

		payload, err := json.Marshal(notification)
		if err != nil {
			return
		}
		if err := d.notifier.PublishUser(ctx, userID, string(payload)); err != nil {
			middleware.Logger.Warn("failed to publish notification",
				slog.Uint64("user_id", uint64(userID)),
				slog.String("error", err.Error()),
			)
			return
		}
		observability.NotificationsPublished.WithLabelValues(string(kind)).Inc()
	}()
}
