package interfaces

import (
	"context"

	"github.com/secmon-lab/isogap/pkg/domain/model"
)

// Notifier delivers user notifications. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, n *model.Notification) error
}
