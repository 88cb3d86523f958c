package factory

import (
	"time"

	"github.com/iulianpascalau/ui-email-notification/services/notifier/api"
	"github.com/iulianpascalau/ui-email-notification/services/notifier/chart"
	"github.com/iulianpascalau/ui-email-notification/services/notifier/client"
	"github.com/iulianpascalau/ui-email-notification/services/notifier/config"
	"github.com/iulianpascalau/ui-email-notification/services/notifier/engine"
	"github.com/iulianpascalau/ui-email-notification/services/notifier/renderer"
	"github.com/iulianpascalau/ui-email-notification/services/notifier/sender"
	"github.com/iulianpascalau/ui-email-notification/services/notifier/storage"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("factory")

// ArgsComponentsHandler defines the arguments needed to create the components handler
type ArgsComponentsHandler struct {
	SQLitePath    string
	ServiceKeyApi string
	SMTPPassword  string
	Config        config.Config
}

type componentsHandler struct {
	engine api.NotificationEngine
	sender api.Sender
	store  api.Storage
	server Server
}

// NewComponentsHandler creates a new components handler
func NewComponentsHandler(args ArgsComponentsHandler) (*componentsHandler, error) {
	cfg := args.Config
	cfg.ApplyDefaults()

	galloper := client.NewGalloperClient(time.Duration(cfg.RequestTimeoutInSeconds) * time.Second)

	htmlRenderer, err := renderer.NewHTMLRenderer(cfg.TemplatePath)
	if err != nil {
		return nil, err
	}

	chartBuilder, err := chart.NewChartBuilder(chart.ArgsChartBuilder{
		Directory: cfg.ChartDirectory,
		Width:     cfg.ChartWidth,
		Height:    cfg.ChartHeight,
	})
	if err != nil {
		return nil, err
	}

	eng, err := engine.NewNotificationEngine(engine.ArgsNotificationEngine{
		Client:       galloper,
		Renderer:     htmlRenderer,
		ChartBuilder: chartBuilder,
		HistoryCount: cfg.HistoryCount,
		TimeHandler:  time.Now,
	})
	if err != nil {
		return nil, err
	}

	var emailSender api.Sender
	if cfg.DeliveryEnabled {
		emailSender, err = sender.NewSMTPSender(sender.ArgsSMTPSender{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: args.SMTPPassword,
			From:     cfg.SMTP.From,
		})
		if err != nil {
			return nil, err
		}
	} else {
		log.Info("email delivery is disabled, the notifications will only be built")
	}

	store, err := storage.NewSQLiteStorage(args.SQLitePath, cfg.RetentionSeconds)
	if err != nil {
		return nil, err
	}

	serverArgs := api.ArgsWebServer{
		ServiceKeyApi:  args.ServiceKeyApi,
		ListenAddress:  cfg.ListenAddress,
		Engine:         eng,
		Sender:         emailSender,
		Storage:        store,
		GeneralHandler: api.LoggingMiddleware,
	}

	server, err := api.NewServer(serverArgs)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &componentsHandler{
		engine: eng,
		sender: emailSender,
		store:  store,
		server: server,
	}, nil
}

// GetEngine returns the notification engine component
func (ch *componentsHandler) GetEngine() api.NotificationEngine {
	return ch.engine
}

// GetSender returns the sender component, nil if the delivery is disabled
func (ch *componentsHandler) GetSender() api.Sender {
	return ch.sender
}

// GetStore returns the storage component
func (ch *componentsHandler) GetStore() api.Storage {
	return ch.store
}

// GetServer returns the server component
func (ch *componentsHandler) GetServer() Server {
	return ch.server
}

// Start starts the inner components
func (ch *componentsHandler) Start() {
	ch.server.Start()
}

// Close closes the inner components
func (ch *componentsHandler) Close() {
	_ = ch.server.Close()
	_ = ch.store.Close()
}
