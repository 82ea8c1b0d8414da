// Package main runs the event platform HTTP server with the live dashboard
// feed and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/musda-event/backend/config"
	"github.com/musda-event/backend/internal/agendas"
	"github.com/musda-event/backend/internal/auth"
	"github.com/musda-event/backend/internal/contents"
	"github.com/musda-event/backend/internal/emaillogs"
	"github.com/musda-event/backend/internal/guests"
	"github.com/musda-event/backend/internal/middleware"
	"github.com/musda-event/backend/internal/payments"
	"github.com/musda-event/backend/internal/realtime"
	"github.com/musda-event/backend/internal/sponsors"
	"github.com/musda-event/backend/internal/ticket"
	"github.com/musda-event/backend/internal/worker"
	"github.com/musda-event/backend/pkg/database"
	"github.com/musda-event/backend/pkg/mailer"
	"github.com/musda-event/backend/pkg/queue"
	"github.com/musda-event/backend/pkg/redis"
	"github.com/musda-event/backend/pkg/response"
	"github.com/musda-event/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" && cfg.AWS.TicketsBucket != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			TicketsBucket:        cfg.AWS.TicketsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 ticket store disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)
	if err := hub.Start(); err != nil {
		logger.Fatal("dashboard feed", zap.Error(err))
	}
	defer hub.Stop()

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)
	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		if err := authRepo.EnsureBootstrapAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			logger.Fatal("bootstrap admin", zap.Error(err))
		}
	}

	// Guests + ticket dispatch
	jobQueue := queue.NewQueue(rdb.Client, logger)
	dispatcher := ticket.NewDispatcher(jobQueue, cfg.Email.Enabled, cfg.Event.Name, logger)
	guestRepo := guests.NewRepository(pool)
	guestHandler := guests.NewHandler(guestRepo, dispatcher, hub, cfg.Event.Namespace, cfg.Event.PhoneCountryCode, logger)

	// Site content
	agendaHandler := agendas.NewHandler(agendas.NewRepository(pool))
	sponsorHandler := sponsors.NewHandler(sponsors.NewRepository(pool))
	paymentHandler := payments.NewHandler(payments.NewRepository(pool))
	contentHandler := contents.NewHandler(contents.NewRepository(pool))

	emailLogsRepo := emaillogs.NewRepository(pool)
	emailLogsHandler := emaillogs.NewHandler(emailLogsRepo)

	jwtValidate := func(token string) (email, role string, err error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return "", "", err
		}
		return claims.Email, claims.Role, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public: registration, tickets, site content
	router.POST("/register", guestHandler.Register)
	router.GET("/ticket/:id", guestHandler.GetTicket)
	router.GET("/agendas", agendaHandler.List)
	router.GET("/sponsors", sponsorHandler.List)
	router.GET("/payment-setting", paymentHandler.Get)
	router.GET("/contents/:key", contentHandler.Get)

	// Auth (public login only; admin creation requires an admin token)
	router.POST("/auth/login", authHandler.Login)

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		// Check-in desk (admin or scanner)
		api.POST("/scan", middleware.RequireRole("admin", "scanner"), guestHandler.Scan)
		api.GET("/guests", middleware.RequireRole("admin", "scanner"), guestHandler.List)

		// Guest administration
		api.PUT("/guest/:id", middleware.RequireRole("admin"), guestHandler.Update)
		api.DELETE("/guest/:id", middleware.RequireRole("admin"), guestHandler.Delete)
		api.POST("/send-ticket/:id", middleware.RequireRole("admin"), guestHandler.ResendTicket)

		// Admin accounts
		api.POST("/auth/register", middleware.RequireRole("admin"), authHandler.Register)
		api.GET("/admins", middleware.RequireRole("admin"), authHandler.List)

		// Email delivery log
		api.GET("/emails", middleware.RequireRole("admin"), emailLogsHandler.List)

		// Site content management
		api.POST("/agendas", middleware.RequireRole("admin"), agendaHandler.Create)
		api.PUT("/agendas/:id", middleware.RequireRole("admin"), agendaHandler.Update)
		api.DELETE("/agendas/:id", middleware.RequireRole("admin"), agendaHandler.Delete)
		api.POST("/sponsors", middleware.RequireRole("admin"), sponsorHandler.Create)
		api.PUT("/sponsors/:id", middleware.RequireRole("admin"), sponsorHandler.Update)
		api.DELETE("/sponsors/:id", middleware.RequireRole("admin"), sponsorHandler.Delete)
		api.PUT("/payment-setting", middleware.RequireRole("admin"), paymentHandler.Upsert)
		api.GET("/contents", middleware.RequireRole("admin"), contentHandler.List)
		api.PUT("/contents/:key", middleware.RequireRole("admin"), contentHandler.Set)
		api.DELETE("/contents/:key", middleware.RequireRole("admin"), contentHandler.Delete)
	}

	// WebSocket dashboard feed (token in query; no Authorization header on upgrades)
	router.GET("/ws", realtime.ServeWs(hub, logger, jwtValidate))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// In-process email worker. Deployments that run cmd/worker separately
	// leave EMAIL_ENABLED off here and on there.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if cfg.Email.Enabled {
		sender := mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			User:     cfg.Email.SMTPUser,
			Pass:     cfg.Email.SMTPPass,
			From:     cfg.Email.FromAddress,
			FromName: cfg.Email.FromName,
		}, logger)
		var ticketStore worker.TicketStore
		if s3Client != nil {
			ticketStore = s3Client
		}
		processor := worker.NewEmailProcessor(guestRepo, emailLogsRepo, ticketStore, sender, jobQueue, logger)
		go processor.Run(workerCtx)
		logger.Info("email worker started")
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
