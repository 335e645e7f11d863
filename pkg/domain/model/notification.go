package model

import (
	"time"

	"github.com/secmon-lab/isogap/pkg/domain/types"
)

// Notification is a short user facing message raised after a state
// transition, shown as a toast by the client.
type Notification struct {
	Level     types.NotificationLevel `json:"level"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Domain    types.DomainID          `json:"domain,omitempty"`
	View      types.View              `json:"view,omitempty"`
	CreatedAt time.Time               `json:"createdAt"`
}
