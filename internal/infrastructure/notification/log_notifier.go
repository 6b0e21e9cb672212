package notification

import (
	"context"

	"github.com/b2bmarket/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LogNotifier writes notifications to the structured log. It stands in for
// the platform's real notification service; swapping in email or push
// delivery means replacing this one type.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new log-backed notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify records the notification
func (n *LogNotifier) Notify(_ context.Context, userID shared.PartyID, kind string, entityRef string, metadata map[string]string) error {
	fields := []zap.Field{
		zap.String("recipient", string(userID)),
		zap.String("kind", kind),
		zap.String("entity", entityRef),
	}
	for key, value := range metadata {
		fields = append(fields, zap.String(key, value))
	}
	n.logger.Info("notification", fields...)
	return nil
}

var _ shared.Notifier = (*LogNotifier)(nil)
