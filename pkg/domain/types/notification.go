package types

// NotificationLevel classifies a user notification (toast)
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
	NotificationInfo    NotificationLevel = "info"
)

func (l NotificationLevel) String() string {
	return string(l)
}
