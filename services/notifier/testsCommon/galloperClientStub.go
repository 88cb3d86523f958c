package testsCommon

import (
	"context"

	"github.com/iulianpascalau/ui-email-notification/services/notifier/common"
)

// GalloperClientStub -
type GalloperClientStub struct {
	GetTestInfoHandler    func(ctx context.Context, target common.GalloperTarget, testID string) (*common.TestInfo, error)
	GetLastReportsHandler func(ctx context.Context, target common.GalloperTarget, name string, count int) ([]common.HistoricalReport, error)
	GetReportInfoHandler  func(ctx context.Context, target common.GalloperTarget, reportID string) (*common.ReportInfo, error)
	GetResultsHandler     func(ctx context.Context, target common.GalloperTarget, reportID string) ([]common.ResultRecord, error)
}

// GetTestInfo -
func (stub *GalloperClientStub) GetTestInfo(ctx context.Context, target common.GalloperTarget, testID string) (*common.TestInfo, error) {
	if stub.GetTestInfoHandler != nil {
		return stub.GetTestInfoHandler(ctx, target, testID)
	}

	return &common.TestInfo{}, nil
}

// GetLastReports -
func (stub *GalloperClientStub) GetLastReports(ctx context.Context, target common.GalloperTarget, name string, count int) ([]common.HistoricalReport, error) {
	if stub.GetLastReportsHandler != nil {
		return stub.GetLastReportsHandler(ctx, target, name, count)
	}

	return make([]common.HistoricalReport, 0), nil
}

// GetReportInfo -
func (stub *GalloperClientStub) GetReportInfo(ctx context.Context, target common.GalloperTarget, reportID string) (*common.ReportInfo, error) {
	if stub.GetReportInfoHandler != nil {
		return stub.GetReportInfoHandler(ctx, target, reportID)
	}

	return &common.ReportInfo{}, nil
}

// GetResults -
func (stub *GalloperClientStub) GetResults(ctx context.Context, target common.GalloperTarget, reportID string) ([]common.ResultRecord, error) {
	if stub.GetResultsHandler != nil {
		return stub.GetResultsHandler(ctx, target, reportID)
	}

	return make([]common.ResultRecord, 0), nil
}

// IsInterfaceNil -
func (stub *GalloperClientStub) IsInterfaceNil() bool {
	return stub == nil
}
