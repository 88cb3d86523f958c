package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/iulianpascalau/ui-email-notification/services/notifier/config"
	"github.com/iulianpascalau/ui-email-notification/services/notifier/factory"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	serviceKey   = "test-service-key"
	templatePath = "../services/notifier/templates/ui_email_template.html"
)

var log = logger.GetOrCreate("e2e-test")

func newGalloperMock(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/tests/1/frontend/42", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bearer galloper-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"name": "checkout", "emails": "a@x.com,b@y.com"}`))
	})
	mux.HandleFunc("/api/v1/observer/1", func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.Query().Get("report_id")) > 0 {
			_, _ = w.Write([]byte(`{
				"name": "checkout", "start_time": "2024-01-03 14:05:09", "passed": true, "duration": "120",
				"environment": "staging", "browser": "chrome", "browser_version": "120", "loops": "2"
			}`))
			return
		}

		assert.Equal(t, "checkout", r.URL.Query().Get("name"))
		assert.Equal(t, "5", r.URL.Query().Get("count"))
		_, _ = w.Write([]byte(`[
			{"uid": "u2", "id": "77", "start_time": "2024-01-03 14:05:09"},
			{"uid": "u1", "id": "76", "start_time": "2024-01-02 10:00:00"}
		]`))
	})
	mux.HandleFunc("/api/v1/visual/1/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "asc", r.URL.Query().Get("order"))
		switch strings.TrimPrefix(r.URL.Path, "/api/v1/visual/1/") {
		case "77", "u2":
			_, _ = w.Write([]byte(`[
				{"name": "home", "total_time": 1, "tti": 800, "fvc": 300, "lvc": 900, "report": "/reports/home"},
				{"name": "cart", "total_time": 2, "tti": 1000, "fvc": 500, "lvc": 1100, "report": "/reports/cart"}
			]`))
		case "u1":
			_, _ = w.Write([]byte(`[
				{"name": "home", "total_time": 3, "tti": 1500, "fvc": 700, "lvc": 1800, "report": "/reports/old"}
			]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	return httptest.NewServer(mux)
}

func startNotifier(t *testing.T) (string, func()) {
	tempDir := t.TempDir()

	handler, err := factory.NewComponentsHandler(factory.ArgsComponentsHandler{
		SQLitePath:    filepath.Join(tempDir, "e2e_sqlite.db"),
		ServiceKeyApi: serviceKey,
		Config: config.Config{
			ListenAddress:           "127.0.0.1:0",
			RetentionSeconds:        3600,
			RequestTimeoutInSeconds: 10,
			TemplatePath:            templatePath,
			ChartDirectory:          tempDir,
		},
	})
	require.NoError(t, err)

	handler.Start()

	_, port, err := net.SplitHostPort(handler.GetServer().Address())
	require.NoError(t, err)

	// Given it's a goroutine, allow a small time to boot
	time.Sleep(100 * time.Millisecond)

	return fmt.Sprintf("http://127.0.0.1:%s", port), handler.Close
}

func doRequest(t *testing.T, method string, url string, body []byte) (int, []byte) {
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("X-Api-Key", serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, data
}

func TestE2EFlow(t *testing.T) {
	log.Info("======== 1. Start a mock Galloper API")
	galloper := newGalloperMock(t)
	defer galloper.Close()

	log.Info("======== 2. Start the notifier service via componentsHandler")
	notifierURL, closeNotifier := startNotifier(t)
	defer closeNotifier()

	log.Info("======== 3. Trigger a notification")
	payload, _ := json.Marshal(map[string]string{
		"test_id":      "42",
		"galloper_url": galloper.URL,
		"token":        "galloper-token",
		"project_id":   "1",
		"report_id":    "77",
		"test":         "checkout",
	})
	status, data := doRequest(t, http.MethodPost, notifierURL+"/api/notify", payload)
	require.Equal(t, http.StatusOK, status, string(data))

	var notifyResp struct {
		ID         string   `json:"id"`
		Subject    string   `json:"subject"`
		Recipients []string `json:"recipients"`
		Status     string   `json:"status"`
	}
	require.NoError(t, json.Unmarshal(data, &notifyResp))
	require.Equal(t, "built", notifyResp.Status)
	require.Equal(t, []string{"a@x.com", "b@y.com"}, notifyResp.Recipients)
	require.True(t, strings.HasPrefix(notifyResp.Subject, "[UI] Test results for checkout. From "))

	log.Info("======== 4. Fetch the notification record")
	status, data = doRequest(t, http.MethodGet, notifierURL+"/api/notifications/"+notifyResp.ID, nil)
	require.Equal(t, http.StatusOK, status)

	var record struct {
		ID       string `json:"id"`
		TestName string `json:"test"`
		ReportID string `json:"reportId"`
		Status   string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(data, &record))
	require.Equal(t, notifyResp.ID, record.ID)
	require.Equal(t, "checkout", record.TestName)
	require.Equal(t, "77", record.ReportID)

	log.Info("======== 5. Fetch and verify the rendered body")
	status, data = doRequest(t, http.MethodGet, notifierURL+"/api/notifications/"+notifyResp.ID+"/body", nil)
	require.Equal(t, http.StatusOK, status)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	require.NoError(t, err)

	require.Equal(t, "PASSED", strings.TrimSpace(doc.Find("#summary .status").Text()))
	require.Equal(t, "2", strings.TrimSpace(doc.Find("#summary .pages").Text()))
	require.Equal(t, "Chrome 120", strings.TrimSpace(doc.Find("#summary .browser").Text()))

	results := doc.Find("#results tr.result")
	require.Equal(t, 2, results.Length())
	href, _ := results.First().Find("a").Attr("href")
	require.Equal(t, galloper.URL+"/reports/home", href)

	comparison := doc.Find("#comparison tr.comparison")
	require.Equal(t, 2, comparison.Length())
	firstRow := comparison.First().Find("td")
	require.Equal(t, "24-01-03 14:05", firstRow.Eq(0).Text())
	require.Equal(t, "1500", firstRow.Eq(1).Text())
	require.Equal(t, "900", firstRow.Eq(2).Text())
	href, _ = firstRow.Eq(5).Find("a").Attr("href")
	require.Equal(t, galloper.URL+"/visual/report?report_id=77", href)

	src, _ := doc.Find("img").Attr("src")
	require.Equal(t, "cid:ui_metrics", src)

	log.Info("======== 6. The notification counter was increased")
	resp, err := http.Get(notifierURL + "/metrics")
	require.NoError(t, err)
	metrics, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.Contains(t, string(metrics), `ui_notifier_notifications_total{status="built"} 1`)
}

func TestE2EFlowWithGalloperFailure(t *testing.T) {
	log.Info("======== 1. Start a failing Galloper API")
	galloper := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal error"))
	}))
	defer galloper.Close()

	log.Info("======== 2. Start the notifier service via componentsHandler")
	notifierURL, closeNotifier := startNotifier(t)
	defer closeNotifier()

	log.Info("======== 3. Trigger a notification")
	payload, _ := json.Marshal(map[string]string{
		"test_id":      "42",
		"galloper_url": galloper.URL,
		"token":        "galloper-token",
		"project_id":   "1",
		"report_id":    "77",
		"test":         "checkout",
	})
	status, data := doRequest(t, http.MethodPost, notifierURL+"/api/notify", payload)
	require.Equal(t, http.StatusBadGateway, status)

	var notifyResp struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(data, &notifyResp))
	require.Equal(t, "failed", notifyResp.Status)
	require.Contains(t, notifyResp.Error, "failed to get test info")
	require.Contains(t, notifyResp.Error, "500")

	log.Info("======== 4. The failure is listed in the log")
	status, data = doRequest(t, http.MethodGet, notifierURL+"/api/notifications", nil)
	require.Equal(t, http.StatusOK, status)

	var list struct {
		Notifications []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(data, &list))
	require.Len(t, list.Notifications, 1)
	require.Equal(t, notifyResp.ID, list.Notifications[0].ID)
	require.Equal(t, "failed", list.Notifications[0].Status)
}
