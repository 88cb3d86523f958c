package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/iulianpascalau/ui-email-notification/services/notifier/common"
	"github.com/iulianpascalau/ui-email-notification/services/notifier/storage"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultListLimit = 20
	maxListLimit     = 500
)

var log = logger.GetOrCreate("api")

type server struct {
	router         *gin.Engine
	httpServer     *http.Server
	engine         NotificationEngine
	sender         Sender
	storage        Storage
	metrics        *serverMetrics
	serviceKey     string
	listenAddr     string
	generalHandler func(http.Handler) http.Handler
	wg             sync.WaitGroup
}

// NotifyResponse is returned by the /api/notify endpoint
type NotifyResponse struct {
	ID         string                    `json:"id"`
	Subject    string                    `json:"subject"`
	Recipients []string                  `json:"recipients"`
	Status     common.NotificationStatus `json:"status"`
	Error      string                    `json:"error,omitempty"`
}

// ArgsWebServer defines the web server arguments
type ArgsWebServer struct {
	ServiceKeyApi  string
	ListenAddress  string
	Engine         NotificationEngine
	Sender         Sender
	Storage        Storage
	GeneralHandler func(http.Handler) http.Handler
}

// NewServer initializes the Gin engine and mounts all routes. A nil Sender disables the delivery.
func NewServer(args ArgsWebServer) (*server, error) {
	if check.IfNil(args.Engine) {
		return nil, errors.New("nil notification engine")
	}
	if check.IfNil(args.Storage) {
		return nil, errors.New("storage is required")
	}
	if args.GeneralHandler == nil {
		return nil, errors.New("nil http handler")
	}
	if len(args.ServiceKeyApi) == 0 {
		return nil, errors.New("empty service key")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(gin.Recovery())

	s := &server{
		router:         router,
		engine:         args.Engine,
		sender:         args.Sender,
		storage:        args.Storage,
		metrics:        newServerMetrics(),
		serviceKey:     args.ServiceKeyApi,
		listenAddr:     args.ListenAddress,
		generalHandler: args.GeneralHandler,
	}

	s.setupRoutes()
	return s, nil
}

func (s *server) setupRoutes() {
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))

	api := s.router.Group("/api")
	api.Use(s.authAPIKey())
	{
		api.POST("/notify", s.handleNotify)
		api.GET("/notifications", s.handleGetNotifications)
		api.GET("/notifications/:id", s.handleGetNotification)
		api.GET("/notifications/:id/body", s.handleGetNotificationBody)
	}
}

// Start listens and serves connections
func (s *server) Start() {
	handler := s.generalHandler(s.router)

	s.httpServer = &http.Server{
		Addr:    s.listenAddr,
		Handler: handler,
	}

	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		log.Error("failed to listen", "error", err)
		return
	}
	s.listenAddr = ln.Addr().String()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Info("starting HTTP server", "address", s.listenAddr)

		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
		}
	}()
}

// Address returns the actual listen address
func (s *server) Address() string {
	return s.listenAddr
}

// Close gracefully stops the server. The storage is owned by the caller.
func (s *server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return err
		}
	}
	s.wg.Wait()

	return nil
}

// --- Middlewares ---

func (s *server) authAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-Api-Key")
		if key != s.serviceKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// --- Handlers ---

func (s *server) handleNotify(c *gin.Context) {
	var args common.NotificationArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	ctx := c.Request.Context()
	record := common.NotificationRecord{
		ID:        uuid.NewString(),
		TestName:  args.TestName,
		ReportID:  args.ReportID,
		CreatedAt: time.Now().Unix(),
	}

	log.Debug("received notification request", "sender", c.Request.RemoteAddr, "test", args.TestName, "report_id", args.ReportID)

	start := time.Now()
	email, err := s.engine.BuildNotification(ctx, args)
	s.metrics.buildDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		log.Warn("failed to build notification", "test", args.TestName, "report_id", args.ReportID, "error", err)

		record.Status = common.StatusFailed
		record.Error = err.Error()
		s.saveRecord(ctx, record)

		c.JSON(http.StatusBadGateway, NotifyResponse{
			ID:     record.ID,
			Status: record.Status,
			Error:  record.Error,
		})
		return
	}

	record.Subject = email.Subject
	record.Recipients = email.Recipients
	record.Body = email.Body
	record.Status = s.deliver(ctx, email, &record)
	s.saveRecord(ctx, record)

	statusCode := http.StatusOK
	if record.Status == common.StatusFailed {
		statusCode = http.StatusBadGateway
	}

	c.JSON(statusCode, NotifyResponse{
		ID:         record.ID,
		Subject:    record.Subject,
		Recipients: record.Recipients,
		Status:     record.Status,
		Error:      record.Error,
	})
}

func (s *server) deliver(ctx context.Context, email *common.Email, record *common.NotificationRecord) common.NotificationStatus {
	if check.IfNil(s.sender) {
		return common.StatusBuilt
	}

	err := s.sender.Send(ctx, email)
	if err != nil {
		log.Warn("failed to deliver notification", "subject", email.Subject, "error", err)
		record.Error = err.Error()

		return common.StatusFailed
	}

	return common.StatusSent
}

func (s *server) saveRecord(ctx context.Context, record common.NotificationRecord) {
	s.metrics.notifications.WithLabelValues(string(record.Status)).Inc()

	err := s.storage.SaveNotification(ctx, record)
	if err != nil {
		log.Warn("failed to save notification record", "id", record.ID, "error", err)
	}
}

func (s *server) handleGetNotifications(c *gin.Context) {
	limit := defaultListLimit
	if value := c.Query("limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = min(parsed, maxListLimit)
	}

	records, err := s.storage.GetNotifications(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": records})
}

func (s *server) handleGetNotification(c *gin.Context) {
	record, ok := s.getRecord(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, record)
}

func (s *server) handleGetNotificationBody(c *gin.Context) {
	record, ok := s.getRecord(c)
	if !ok {
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(record.Body))
}

func (s *server) getRecord(c *gin.Context) (*common.NotificationRecord, bool) {
	record, err := s.storage.GetNotification(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrNotificationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}

	return record, true
}
