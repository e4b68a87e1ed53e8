package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"admission-api/core/cache"
	"admission-api/core/config"
	"admission-api/core/constants"
	"admission-api/core/database"
	"admission-api/core/logger"
	"admission-api/core/middleware"
	"admission-api/core/storage"
	"admission-api/core/tasks"
	"admission-api/modules/appointment"
	"admission-api/modules/auth"
	"admission-api/modules/chatbot"
	"admission-api/modules/notification"
	"admission-api/modules/schedule"
	"admission-api/modules/ticket"
	ticketservice "admission-api/modules/ticket/service"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Run boots the API: config, database (with migrations), redis, the asynq
// client and worker, then every module's routes. Blocks until SIGINT/SIGTERM
// and shuts the pieces down in reverse order.
func Run() error {
	logger.Init()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()

	db, err := database.InitDB(database.DatabaseConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return err
	}
	if err := db.Migrate(ctx); err != nil {
		return err
	}

	c, err := cache.NewCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}

	taskClient := tasks.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer taskClient.Close()

	// Attachment storage is optional; without S3 config, tickets simply
	// reject uploads.
	var uploader ticketservice.AttachmentUploader
	if up, upErr := storage.NewUploader(cfg.S3); upErr != nil {
		logger.Warn("Server:Run:Storage:Disabled:", upErr)
	} else {
		uploader = up
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(echomw.RequestID())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	mw := middleware.NewMiddleware(c)

	auth.Init(e, db, c, mw)
	schedule.Init(e, db, mw)
	appointmentSvc := appointment.Init(e, db, c, taskClient, mw)
	ticket.Init(e, db, uploader, taskClient, mw)
	chatbot.Init(e, mw)
	notificationSvc := notification.Init(e, db, mw)

	worker := tasks.NewWorker(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, tasks.Handlers{
		DeliverNotification: notificationSvc.Deliver,
		ExpireAppointment: func(ctx context.Context, payload tasks.AppointmentExpirePayload) error {
			return appointmentSvc.ExpirePendingAppointment(ctx, payload.AppointmentID)
		},
	})
	if err := worker.Start(); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("Server:Run:Start:Error:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	worker.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
