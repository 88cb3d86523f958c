package testsCommon

import "github.com/iulianpascalau/ui-email-notification/services/notifier/common"

// ChartBuilderStub -
type ChartBuilderStub struct {
	BuildHandler func(rows []common.AggregatedRow, reportID string) (*common.InlineImage, error)
}

// Build -
func (stub *ChartBuilderStub) Build(rows []common.AggregatedRow, reportID string) (*common.InlineImage, error) {
	if stub.BuildHandler != nil {
		return stub.BuildHandler(rows, reportID)
	}

	return &common.InlineImage{}, nil
}

// IsInterfaceNil -
func (stub *ChartBuilderStub) IsInterfaceNil() bool {
	return stub == nil
}
