package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/iulianpascalau/ui-email-notification/commonGo"
	"github.com/iulianpascalau/ui-email-notification/services/notifier/common"
	"github.com/iulianpascalau/ui-email-notification/services/notifier/config"
	"github.com/iulianpascalau/ui-email-notification/services/notifier/factory"
	"github.com/iulianpascalau/ui-email-notification/services/notifier/sender"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/urfave/cli"
)

const (
	defaultLogsPath      = "logs"
	logFilePrefix        = "notifier"
	logFileLifeSpanInSec = 86400 // 24h
	logFileLifeSpanInMB  = 1024  // 1GB
	envFile              = "./.env"
	envServiceKey        = "SERVICE_KEY"
	envSMTPPassword      = "SMTP_PASSWORD"
	sqliteFile           = "db/notifications.sqlite"
)

// appVersion should be populated at build time using ldflags
// Usage examples:
// Linux/macOS:
//
//	go build -v -ldflags="-X main.appVersion=$(git describe --all | cut -c7-32)
var appVersion = "undefined"
var fileLogging commonGo.FileLoggingHandler

var (
	helpTemplate = `NAME:
   {{.Name}} - {{.Usage}}
USAGE:
   {{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}
   {{if len .Authors}}
AUTHOR:
   {{range .Authors}}{{ . }}{{end}}
   {{end}}{{if .Commands}}
GLOBAL OPTIONS:
   {{range .VisibleFlags}}{{.}}
   {{end}}
VERSION:
   {{.Version}}
   {{end}}
`

	log = logger.GetOrCreate("main")

	// logLevel defines the logger level
	logLevel = cli.StringFlag{
		Name: "log-level",
		Usage: "This flag specifies the logger `level(s)`. It can contain multiple comma-separated value. For example" +
			", if set to *:INFO the logs for all packages will have the INFO level. However, if set to *:INFO,api:DEBUG" +
			" the logs for all packages will have the INFO level, excepting the api package which will receive a DEBUG" +
			" log level.",
		Value: "*:" + logger.LogInfo.String(),
	}
	// logFile is used when the log output needs to be logged in a file
	logSaveFile = cli.BoolFlag{
		Name:  "log-save",
		Usage: "Boolean option for enabling log saving. If set, it will automatically save all the logs into a file.",
	}
	// workingDirectory defines a flag for the path for the working directory.
	workingDirectory = cli.StringFlag{
		Name:  "working-directory",
		Usage: "This flag specifies the `directory` where the service will store databases and logs.",
		Value: "",
	}
	// configurationFile defines the toml configuration file
	configurationFile = cli.StringFlag{
		Name:  "config",
		Usage: "The `filepath` of the main configuration file.",
		Value: "./config.toml",
	}
	// eventFile switches the service in the one-shot mode
	eventFile = cli.StringFlag{
		Name: "event",
		Usage: "The `filepath` of a JSON notification event. If set, the service builds (and, if enabled, sends) " +
			"a single notification and exits.",
	}
	// outputFile is used together with the event flag
	outputFile = cli.StringFlag{
		Name:  "output",
		Usage: "The `filepath` where the composed MIME message is written in the one-shot mode.",
	}
)

func main() {
	app := cli.NewApp()
	cli.AppHelpTemplate = helpTemplate
	app.Name = "UI tests email notification service"
	app.Version = fmt.Sprintf("%s/%s/%s-%s", appVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	app.Usage = "This is the entry point for composing and delivering the UI test result emails"
	app.Flags = []cli.Flag{
		logLevel,
		logSaveFile,
		workingDirectory,
		configurationFile,
		eventFile,
		outputFile,
	}
	app.Authors = []cli.Author{
		{
			Name:  "Iulian Pascalau",
			Email: "iulian.pascalau@gmail.com",
		},
	}

	app.Action = run

	defer func() {
		if fileLogging != nil {
			_ = fileLogging.Close()
		}
	}()

	err := app.Run(os.Args)
	if err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	saveLogFile := ctx.GlobalBool(logSaveFile.Name)
	workingDir := ctx.GlobalString(workingDirectory.Name)

	err := logger.SetLogLevel(ctx.GlobalString(logLevel.Name))
	if err != nil {
		return err
	}

	fileLogging, err = commonGo.AttachFileLogger(log, defaultLogsPath, logFilePrefix, saveLogFile, workingDir)
	if err != nil {
		return err
	}

	if !check.IfNil(fileLogging) {
		timeLogLifeSpan := time.Second * time.Duration(logFileLifeSpanInSec)
		sizeLogLifeSpanInMB := uint64(logFileLifeSpanInMB)
		err = fileLogging.ChangeFileLifeSpan(timeLogLifeSpan, sizeLogLifeSpanInMB)
		if err != nil {
			return err
		}
	}

	log.Info("Starting notification service", "version", appVersion, "pid", os.Getpid())

	required := map[string]string{
		envServiceKey: "",
	}
	optional := map[string]string{
		envSMTPPassword: "",
	}
	err = commonGo.ReadEnvFile(envFile, required, optional)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(ctx.GlobalString(configurationFile.Name))
	if err != nil {
		return err
	}

	handler, err := factory.NewComponentsHandler(factory.ArgsComponentsHandler{
		SQLitePath:    filepath.Join(workingDir, sqliteFile),
		ServiceKeyApi: required[envServiceKey],
		SMTPPassword:  optional[envSMTPPassword],
		Config:        *cfg,
	})
	if err != nil {
		return err
	}
	defer handler.Close()

	event := ctx.GlobalString(eventFile.Name)
	if len(event) > 0 {
		return notifyOnce(handler, event, ctx.GlobalString(outputFile.Name), cfg.SMTP.From)
	}

	handler.Start()

	log.Info("Notification service started", "address", handler.GetServer().Address())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	<-sigs

	log.Info("Application closing, calling Close on all subcomponents...")

	return nil
}

func notifyOnce(handler componentsHandler, eventPath string, outputPath string, from string) error {
	data, err := os.ReadFile(eventPath)
	if err != nil {
		return fmt.Errorf("failed to read event file '%s': %w", eventPath, err)
	}

	var args common.NotificationArgs
	err = json.Unmarshal(data, &args)
	if err != nil {
		return fmt.Errorf("failed to decode event file: %w", err)
	}

	ctx := context.Background()
	email, err := handler.GetEngine().BuildNotification(ctx, args)
	if err != nil {
		return err
	}

	record := common.NotificationRecord{
		ID:         uuid.NewString(),
		TestName:   args.TestName,
		ReportID:   args.ReportID,
		Subject:    email.Subject,
		Recipients: email.Recipients,
		Body:       email.Body,
		Status:     common.StatusBuilt,
		CreatedAt:  time.Now().Unix(),
	}

	emailSender := handler.GetSender()
	if !check.IfNil(emailSender) {
		err = emailSender.Send(ctx, email)
		if err != nil {
			record.Status = common.StatusFailed
			record.Error = err.Error()
		} else {
			record.Status = common.StatusSent
		}
	}

	errSave := handler.GetStore().SaveNotification(ctx, record)
	if errSave != nil {
		log.Warn("failed to save notification record", "id", record.ID, "error", errSave)
	}
	if err != nil {
		return err
	}

	log.Info("notification composed", "subject", email.Subject, "recipients", email.Recipients, "status", record.Status)

	if len(outputPath) == 0 {
		return nil
	}

	return writeMessage(outputPath, from, email)
}

func writeMessage(outputPath string, from string, email *common.Email) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	_, err = sender.NewMessage(from, email).WriteTo(f)

	return err
}
