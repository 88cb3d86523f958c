package api

import (
	"context"

	"github.com/iulianpascalau/ui-email-notification/services/notifier/common"
)

// NotificationEngine defines the component composing the notification emails
type NotificationEngine interface {
	BuildNotification(ctx context.Context, args common.NotificationArgs) (*common.Email, error)
	IsInterfaceNil() bool
}

// Sender defines the component delivering the composed emails
type Sender interface {
	Send(ctx context.Context, email *common.Email) error
	IsInterfaceNil() bool
}

// Storage defines the interface for persisting and querying the notification log
type Storage interface {
	// SaveNotification inserts or updates a notification log entry
	SaveNotification(ctx context.Context, record common.NotificationRecord) error

	// GetNotifications returns the newest entries, without their bodies
	GetNotifications(ctx context.Context, limit int) ([]common.NotificationRecord, error)

	// GetNotification returns a single entry including its body
	GetNotification(ctx context.Context, id string) (*common.NotificationRecord, error)

	// Close shuts down the database connection
	Close() error

	IsInterfaceNil() bool
}
