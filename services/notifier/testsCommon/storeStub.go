package testsCommon

import (
	"context"

	"github.com/iulianpascalau/ui-email-notification/services/notifier/common"
)

// StoreStub -
type StoreStub struct {
	SaveNotificationHandler func(ctx context.Context, record common.NotificationRecord) error
	GetNotificationsHandler func(ctx context.Context, limit int) ([]common.NotificationRecord, error)
	GetNotificationHandler  func(ctx context.Context, id string) (*common.NotificationRecord, error)
	CloseHandler            func() error
}

// SaveNotification -
func (stub *StoreStub) SaveNotification(ctx context.Context, record common.NotificationRecord) error {
	if stub.SaveNotificationHandler != nil {
		return stub.SaveNotificationHandler(ctx, record)
	}

	return nil
}

// GetNotifications -
func (stub *StoreStub) GetNotifications(ctx context.Context, limit int) ([]common.NotificationRecord, error) {
	if stub.GetNotificationsHandler != nil {
		return stub.GetNotificationsHandler(ctx, limit)
	}

	return make([]common.NotificationRecord, 0), nil
}

// GetNotification -
func (stub *StoreStub) GetNotification(ctx context.Context, id string) (*common.NotificationRecord, error) {
	if stub.GetNotificationHandler != nil {
		return stub.GetNotificationHandler(ctx, id)
	}

	return &common.NotificationRecord{}, nil
}

// Close -
func (stub *StoreStub) Close() error {
	if stub.CloseHandler != nil {
		return stub.CloseHandler()
	}

	return nil
}

// IsInterfaceNil -
func (stub *StoreStub) IsInterfaceNil() bool {
	return stub == nil
}
