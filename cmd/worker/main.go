// Package main runs the background email worker (ticket delivery with inline
// QR attachments).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/musda-event/backend/config"
	"github.com/musda-event/backend/internal/emaillogs"
	"github.com/musda-event/backend/internal/guests"
	"github.com/musda-event/backend/internal/worker"
	"github.com/musda-event/backend/pkg/database"
	"github.com/musda-event/backend/pkg/mailer"
	"github.com/musda-event/backend/pkg/queue"
	"github.com/musda-event/backend/pkg/redis"
	"github.com/musda-event/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if cfg.Email.SMTPHost == "" {
		logger.Fatal("SMTP_HOST is required for the email worker")
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var ticketStore worker.TicketStore
	if cfg.AWS.Region != "" && cfg.AWS.TicketsBucket != "" {
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			TicketsBucket:        cfg.AWS.TicketsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, logger)
		if err != nil {
			logger.Warn("s3 ticket store disabled", zap.Error(err))
		} else {
			ticketStore = s3Client
		}
	}

	sender := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.Email.SMTPHost,
		Port:     cfg.Email.SMTPPort,
		User:     cfg.Email.SMTPUser,
		Pass:     cfg.Email.SMTPPass,
		From:     cfg.Email.FromAddress,
		FromName: cfg.Email.FromName,
	}, logger)

	jobQueue := queue.NewQueue(rdb.Client, logger)
	processor := worker.NewEmailProcessor(guests.NewRepository(pool), emaillogs.NewRepository(pool), ticketStore, sender, jobQueue, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	logger.Info("email worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("email worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
