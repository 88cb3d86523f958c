package engine

import (
	"context"

	"github.com/iulianpascalau/ui-email-notification/services/notifier/common"
)

// GalloperClient defines the calls issued against the Galloper reporting API
type GalloperClient interface {
	GetTestInfo(ctx context.Context, target common.GalloperTarget, testID string) (*common.TestInfo, error)
	GetLastReports(ctx context.Context, target common.GalloperTarget, name string, count int) ([]common.HistoricalReport, error)
	GetReportInfo(ctx context.Context, target common.GalloperTarget, reportID string) (*common.ReportInfo, error)
	GetResults(ctx context.Context, target common.GalloperTarget, reportID string) ([]common.ResultRecord, error)
	IsInterfaceNil() bool
}

// Renderer defines the component able to produce the email body
type Renderer interface {
	Render(data common.TemplateData) (string, error)
	IsInterfaceNil() bool
}

// ChartBuilder defines the component able to produce the trend chart
type ChartBuilder interface {
	Build(rows []common.AggregatedRow, reportID string) (*common.InlineImage, error)
	IsInterfaceNil() bool
}
