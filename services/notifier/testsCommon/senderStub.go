package testsCommon

import (
	"context"

	"github.com/iulianpascalau/ui-email-notification/services/notifier/common"
)

// SenderStub -
type SenderStub struct {
	SendHandler func(ctx context.Context, email *common.Email) error
}

// Send -
func (stub *SenderStub) Send(ctx context.Context, email *common.Email) error {
	if stub.SendHandler != nil {
		return stub.SendHandler(ctx, email)
	}

	return nil
}

// IsInterfaceNil -
func (stub *SenderStub) IsInterfaceNil() bool {
	return stub == nil
}
