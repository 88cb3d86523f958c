package testsCommon

import (
	"context"

	"github.com/iulianpascalau/ui-email-notification/services/notifier/common"
)

// NotificationEngineStub -
type NotificationEngineStub struct {
	BuildNotificationHandler func(ctx context.Context, args common.NotificationArgs) (*common.Email, error)
}

// BuildNotification -
func (stub *NotificationEngineStub) BuildNotification(ctx context.Context, args common.NotificationArgs) (*common.Email, error) {
	if stub.BuildNotificationHandler != nil {
		return stub.BuildNotificationHandler(ctx, args)
	}

	return &common.Email{}, nil
}

// IsInterfaceNil -
func (stub *NotificationEngineStub) IsInterfaceNil() bool {
	return stub == nil
}
