package aggregator

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/iulianpascalau/ui-email-notification/services/notifier/common"
)

const (
	statusPassed    = "PASSED"
	statusFailed    = "FAILED"
	defaultViewPort = "1920x1080"
	secondsToMillis = 1000
)

// ErrEmptyResults signals a report without any result record, its means can not be computed
var ErrEmptyResults = errors.New("report has no result records")

// AggregateResults computes the truncated means of the tracked metrics of one historical report.
// The total time is converted from seconds to milliseconds before averaging.
func AggregateResults(report common.HistoricalReport, results []common.ResultRecord, baseURL string) (common.AggregatedRow, error) {
	if len(results) == 0 {
		return common.AggregatedRow{}, fmt.Errorf("%w, report uid %s", ErrEmptyResults, report.UID)
	}

	var totalTime, tti, fvc, lvc float64
	for _, result := range results {
		totalTime += result.TotalTime * secondsToMillis
		tti += result.TTI
		fvc += result.FVC
		lvc += result.LVC
	}

	count := float64(len(results))

	return common.AggregatedRow{
		TotalTime: int(totalTime / count),
		TTI:       int(tti / count),
		FVC:       int(fvc / count),
		LVC:       int(lvc / count),
		Date:      DateLabel(report.StartTime),
		Report:    fmt.Sprintf("%s/visual/report?report_id=%s", baseURL, report.ID),
	}, nil
}

// DateLabel strips the first 2 and the last 3 characters of a start time,
// "2024-01-03 10:00:00" becomes "24-01-03 10:00"
func DateLabel(startTime string) string {
	end := len(startTime) - 3
	if end <= 2 {
		return ""
	}

	return startTime[2:end]
}

// ExtractRecipients splits the comma separated emails field. Values are neither trimmed nor validated.
func ExtractRecipients(emails string) []string {
	return strings.Split(emails, ",")
}

// Status maps the pass flag of a report to its displayed status
func Status(passed bool) string {
	if !passed {
		return statusFailed
	}

	return statusPassed
}

// BuildTemplateParams reshapes the report description into the flat record displayed in the email header
func BuildTemplateParams(info common.ReportInfo, pages int) common.TemplateParams {
	return common.TemplateParams{
		Scenario:  info.Name,
		StartTime: info.StartTime,
		Status:    Status(info.Passed),
		Duration:  info.Duration,
		Env:       info.Environment,
		Browser:   Capitalize(info.Browser),
		Version:   info.BrowserVersion,
		ViewPort:  defaultViewPort,
		Loops:     info.Loops,
		Pages:     pages,
	}
}

// AbsoluteReportLinks returns a copy of the results with every report link prefixed by the base URL
func AbsoluteReportLinks(results []common.ResultRecord, baseURL string) []common.ResultRecord {
	linked := make([]common.ResultRecord, 0, len(results))
	for _, result := range results {
		result.Report = baseURL + result.Report
		linked = append(linked, result)
	}

	return linked
}

// Capitalize upper cases the first letter and lower cases the rest, "fireFox" becomes "Firefox"
func Capitalize(value string) string {
	first, size := utf8.DecodeRuneInString(value)
	if size == 0 {
		return value
	}

	return string(unicode.ToUpper(first)) + strings.ToLower(value[size:])
}
