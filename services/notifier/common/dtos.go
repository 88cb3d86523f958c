package common

// NotificationArgs is the inbound record that triggers a new notification
type NotificationArgs struct {
	TestID      string `json:"test_id"`
	GalloperURL string `json:"galloper_url"`
	Token       string `json:"token"`
	ProjectID   string `json:"project_id"`
	ReportID    string `json:"report_id"`
	TestName    string `json:"test"`
}

// Target returns the Galloper instance the arguments point to
func (args NotificationArgs) Target() GalloperTarget {
	return GalloperTarget{
		URL:       args.GalloperURL,
		Token:     args.Token,
		ProjectID: args.ProjectID,
	}
}

// GalloperTarget holds what is needed to issue authenticated calls against a Galloper project
type GalloperTarget struct {
	URL       string
	Token     string
	ProjectID string
}

// TestInfo is the frontend test definition
type TestInfo struct {
	Name   string
	Emails string
}

// HistoricalReport is one past execution of a test
type HistoricalReport struct {
	UID       string
	ID        string
	StartTime string
}

// ResultRecord holds the measurements of one tested page
type ResultRecord struct {
	Name      string
	TotalTime float64
	TTI       float64
	FVC       float64
	LVC       float64
	Report    string
}

// AggregatedRow holds the mean metrics of one historical report
type AggregatedRow struct {
	TotalTime int
	TTI       int
	FVC       int
	LVC       int
	Date      string
	Report    string
}

// ReportInfo describes the report the notification is built for
type ReportInfo struct {
	Name           string
	StartTime      string
	Passed         bool
	Duration       string
	Environment    string
	Browser        string
	BrowserVersion string
	Loops          string
}

// TemplateParams is the flat parameter record rendered in the email header
type TemplateParams struct {
	Scenario  string
	StartTime string
	Status    string
	Duration  string
	Env       string
	Browser   string
	Version   string
	ViewPort  string
	Loops     string
	Pages     int
}

// TemplateData is everything the email template is executed with
type TemplateData struct {
	Params     TemplateParams
	Results    []ResultRecord
	Comparison []AggregatedRow
}

// InlineImage is an image embedded in the email body and referenced by its content ID
type InlineImage struct {
	ContentID   string
	FileName    string
	ContentType string
	Data        []byte
}

// Email is the composed notification, ready to be handed to a delivery component
type Email struct {
	Name        string
	Subject     string
	Recipients  []string
	Body        string
	Attachments []InlineImage
	Timestamp   string
}

// NotificationStatus defines the outcome of a notification request
type NotificationStatus string

const (
	// StatusBuilt means the email was composed but not delivered
	StatusBuilt NotificationStatus = "built"
	// StatusSent means the email was composed and delivered
	StatusSent NotificationStatus = "sent"
	// StatusFailed means either the build or the delivery failed
	StatusFailed NotificationStatus = "failed"
)

// NotificationRecord is the log entry kept for every notification request
type NotificationRecord struct {
	ID         string             `json:"id"`
	TestName   string             `json:"test"`
	ReportID   string             `json:"reportId"`
	Subject    string             `json:"subject"`
	Recipients []string           `json:"recipients"`
	Body       string             `json:"-"`
	Status     NotificationStatus `json:"status"`
	Error      string             `json:"error,omitempty"`
	CreatedAt  int64              `json:"createdAt"`
}
