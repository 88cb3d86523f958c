package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iulianpascalau/ui-email-notification/services/notifier/aggregator"
	"github.com/iulianpascalau/ui-email-notification/services/notifier/common"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

const (
	timestampLayout = "01/02/2006, 15:04:05"
	subjectFormat   = "[UI] Test results for %s. From %s."
)

var log = logger.GetOrCreate("engine")

// ArgsNotificationEngine defines the arguments needed to create a notification engine
type ArgsNotificationEngine struct {
	Client       GalloperClient
	Renderer     Renderer
	ChartBuilder ChartBuilder
	HistoryCount int
	TimeHandler  func() time.Time
}

// notificationEngine composes the UI test result emails
type notificationEngine struct {
	client       GalloperClient
	renderer     Renderer
	chartBuilder ChartBuilder
	historyCount int
	timeHandler  func() time.Time
}

// NewNotificationEngine creates a new engine instance
func NewNotificationEngine(args ArgsNotificationEngine) (*notificationEngine, error) {
	if check.IfNil(args.Client) {
		return nil, errors.New("nil galloper client")
	}
	if check.IfNil(args.Renderer) {
		return nil, errors.New("nil renderer")
	}
	if check.IfNil(args.ChartBuilder) {
		return nil, errors.New("nil chart builder")
	}
	if args.HistoryCount <= 0 {
		return nil, fmt.Errorf("invalid history count %d", args.HistoryCount)
	}
	if args.TimeHandler == nil {
		return nil, errors.New("nil time handler")
	}

	return &notificationEngine{
		client:       args.Client,
		renderer:     args.Renderer,
		chartBuilder: args.ChartBuilder,
		historyCount: args.HistoryCount,
		timeHandler:  args.TimeHandler,
	}, nil
}

// BuildNotification fetches the report data, aggregates the previous runs and composes the email.
// The email is returned, not sent. Any failure aborts the whole build.
func (e *notificationEngine) BuildNotification(ctx context.Context, args common.NotificationArgs) (*common.Email, error) {
	if len(args.GalloperURL) == 0 {
		return nil, errors.New("empty galloper url")
	}

	target := args.Target()
	log.Debug("building notification", "test", args.TestName, "test_id", args.TestID, "report_id", args.ReportID)

	info, err := e.client.GetTestInfo(ctx, target, args.TestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get test info: %w", err)
	}

	comparison, err := e.compareLastReports(ctx, target, info.Name)
	if err != nil {
		return nil, err
	}

	recipients := aggregator.ExtractRecipients(info.Emails)
	timestamp := e.timeHandler().Format(timestampLayout)
	subject := fmt.Sprintf(subjectFormat, info.Name, timestamp)

	reportInfo, err := e.client.GetReportInfo(ctx, target, args.ReportID)
	if err != nil {
		return nil, fmt.Errorf("failed to get report info: %w", err)
	}

	results, err := e.client.GetResults(ctx, target, args.ReportID)
	if err != nil {
		return nil, fmt.Errorf("failed to get report results: %w", err)
	}
	results = aggregator.AbsoluteReportLinks(results, args.GalloperURL)
	for _, result := range results {
		log.Trace("report result", "name", result.Name, "total_time", result.TotalTime, "report", result.Report)
	}

	body, err := e.renderer.Render(common.TemplateData{
		Params:     aggregator.BuildTemplateParams(*reportInfo, len(results)),
		Results:    results,
		Comparison: comparison,
	})
	if err != nil {
		return nil, err
	}

	chart, err := e.chartBuilder.Build(comparison, args.ReportID)
	if err != nil {
		return nil, fmt.Errorf("failed to build UI metrics chart: %w", err)
	}

	log.Debug("notification built", "test", args.TestName, "subject", subject, "recipients", len(recipients))

	return &common.Email{
		Name:        args.TestName,
		Subject:     subject,
		Recipients:  recipients,
		Body:        body,
		Attachments: []common.InlineImage{*chart},
		Timestamp:   timestamp,
	}, nil
}

func (e *notificationEngine) compareLastReports(ctx context.Context, target common.GalloperTarget, name string) ([]common.AggregatedRow, error) {
	reports, err := e.client.GetLastReports(ctx, target, name, e.historyCount)
	if err != nil {
		return nil, fmt.Errorf("failed to get last reports: %w", err)
	}

	comparison := make([]common.AggregatedRow, 0, len(reports))
	for _, report := range reports {
		results, errResults := e.client.GetResults(ctx, target, report.UID)
		if errResults != nil {
			return nil, fmt.Errorf("failed to get results of report %s: %w", report.UID, errResults)
		}

		row, errAggregate := aggregator.AggregateResults(report, results, target.URL)
		if errAggregate != nil {
			return nil, errAggregate
		}

		comparison = append(comparison, row)
	}

	return comparison, nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (e *notificationEngine) IsInterfaceNil() bool {
	return e == nil
}
