package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/iulianpascalau/ui-email-notification/services/notifier/common"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/tidwall/gjson"
)

const apiPrefix = "/api/v1"

var log = logger.GetOrCreate("client")

type galloperClient struct {
	client *http.Client
}

// NewGalloperClient creates a new Galloper API client. A zero timeout means the calls never time out.
func NewGalloperClient(timeout time.Duration) *galloperClient {
	return &galloperClient{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetTestInfo fetches the frontend test definition
func (gc *galloperClient) GetTestInfo(ctx context.Context, target common.GalloperTarget, testID string) (*common.TestInfo, error) {
	path := fmt.Sprintf("/tests/%s/frontend/%s?raw=1", url.PathEscape(target.ProjectID), url.PathEscape(testID))
	body, err := gc.get(ctx, target, path)
	if err != nil {
		return nil, err
	}

	fields, err := requiredFields(gjson.ParseBytes(body), "name", "emails")
	if err != nil {
		return nil, err
	}

	return &common.TestInfo{
		Name:   fields[0].String(),
		Emails: fields[1].String(),
	}, nil
}

// GetLastReports fetches the newest count reports of the named test, in the order the API delivers them
func (gc *galloperClient) GetLastReports(ctx context.Context, target common.GalloperTarget, name string, count int) ([]common.HistoricalReport, error) {
	query := url.Values{}
	query.Set("name", name)
	query.Set("count", strconv.Itoa(count))
	path := fmt.Sprintf("/observer/%s?%s", url.PathEscape(target.ProjectID), query.Encode())

	body, err := gc.get(ctx, target, path)
	if err != nil {
		return nil, err
	}

	items := gjson.ParseBytes(body).Array()
	reports := make([]common.HistoricalReport, 0, len(items))
	for _, item := range items {
		fields, errFields := requiredFields(item, "uid", "id", "start_time")
		if errFields != nil {
			return nil, errFields
		}

		reports = append(reports, common.HistoricalReport{
			UID:       fields[0].String(),
			ID:        fields[1].String(),
			StartTime: fields[2].String(),
		})
	}

	return reports, nil
}

// GetReportInfo fetches the report description
func (gc *galloperClient) GetReportInfo(ctx context.Context, target common.GalloperTarget, reportID string) (*common.ReportInfo, error) {
	query := url.Values{}
	query.Set("report_id", reportID)
	path := fmt.Sprintf("/observer/%s?%s", url.PathEscape(target.ProjectID), query.Encode())

	body, err := gc.get(ctx, target, path)
	if err != nil {
		return nil, err
	}

	fields, err := requiredFields(gjson.ParseBytes(body),
		"name", "start_time", "passed", "duration", "environment", "browser", "browser_version", "loops")
	if err != nil {
		return nil, err
	}

	return &common.ReportInfo{
		Name:           fields[0].String(),
		StartTime:      fields[1].String(),
		Passed:         fields[2].Bool(),
		Duration:       fields[3].String(),
		Environment:    fields[4].String(),
		Browser:        fields[5].String(),
		BrowserVersion: fields[6].String(),
		Loops:          fields[7].String(),
	}, nil
}

// GetResults fetches the per page results of a report, in ascending order
func (gc *galloperClient) GetResults(ctx context.Context, target common.GalloperTarget, reportID string) ([]common.ResultRecord, error) {
	path := fmt.Sprintf("/visual/%s/%s?order=asc", url.PathEscape(target.ProjectID), url.PathEscape(reportID))
	body, err := gc.get(ctx, target, path)
	if err != nil {
		return nil, err
	}

	items := gjson.ParseBytes(body).Array()
	results := make([]common.ResultRecord, 0, len(items))
	for _, item := range items {
		fields, errFields := requiredFields(item, "total_time", "tti", "fvc", "lvc", "report")
		if errFields != nil {
			return nil, errFields
		}

		results = append(results, common.ResultRecord{
			Name:      item.Get("name").String(),
			TotalTime: fields[0].Float(),
			TTI:       fields[1].Float(),
			FVC:       fields[2].Float(),
			LVC:       fields[3].Float(),
			Report:    fields[4].String(),
		})
	}

	return results, nil
}

func (gc *galloperClient) get(ctx context.Context, target common.GalloperTarget, path string) ([]byte, error) {
	fullURL := target.URL + apiPrefix + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "bearer "+target.Token)
	req.Header.Set("Content-type", "application/json")

	resp, err := gc.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &errStatusNotOK{
			statusCode: resp.StatusCode,
			body:       string(body),
		}
	}

	log.Trace("galloper call done", "path", path, "size", len(body))

	return body, nil
}

func requiredFields(doc gjson.Result, paths ...string) ([]gjson.Result, error) {
	results := make([]gjson.Result, 0, len(paths))
	for _, path := range paths {
		result := doc.Get(path)
		if !result.Exists() {
			return nil, errPathNotFound(path)
		}

		results = append(results, result)
	}

	return results, nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (gc *galloperClient) IsInterfaceNil() bool {
	return gc == nil
}
