package notify

import (
	"context"
	"errors"

	"github.com/secmon-lab/isogap/pkg/domain/interfaces"
	"github.com/secmon-lab/isogap/pkg/domain/model"
	"github.com/secmon-lab/isogap/pkg/utils/logging"
)

// Logger writes every notification to the context logger
type Logger struct{}

var _ interfaces.Notifier = &Logger{}

func NewLogger() *Logger {
	return &Logger{}
}

func (l *Logger) Notify(ctx context.Context, n *model.Notification) error {
	logging.From(ctx).Info("notification",
		"level", n.Level,
		"title", n.Title,
		"message", n.Message,
		"domain", n.Domain,
	)
	return nil
}

// Multi delivers a notification to every notifier and joins their errors
type Multi []interfaces.Notifier

var _ interfaces.Notifier = Multi{}

func (m Multi) Notify(ctx context.Context, n *model.Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
