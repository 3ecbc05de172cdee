package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	apiHttp "github.com/investhub/backend/internal/api/http"
	"github.com/investhub/backend/internal/cache"
	"github.com/investhub/backend/internal/config"
	"github.com/investhub/backend/internal/db"
	"github.com/investhub/backend/internal/queue/asynqserver"
	"github.com/investhub/backend/internal/queue/client"
	"github.com/investhub/backend/internal/repository"
	"github.com/investhub/backend/internal/server"
	"github.com/investhub/backend/internal/service"
	"github.com/investhub/backend/internal/storage"
	"github.com/investhub/backend/internal/worker"
	"github.com/investhub/backend/pkg/email/smtp"
	"github.com/investhub/backend/pkg/hash"
	"github.com/investhub/backend/pkg/logger"
	"github.com/investhub/backend/pkg/token"

	"go.uber.org/zap"
)

func main() {
	// Init cfg from environment variables
	cfg := config.MustLoad()

	// Dependencies
	logger.SetupLogger(cfg.Env, cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting backend api")
	logger.Debug("debug messages are enabled")

	// Init database
	dbMySQL, err := db.New(cfg.Database)
	if err != nil {
		logger.Error("mysql connect problem", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		if err := dbMySQL.Close(); err != nil {
			logger.Error("error when closing mysql", zap.Error(err))
		}
	}()
	logger.Info("mysql connection done")

	if cfg.Database.MigrateOnStart {
		if err := db.Migrate(dbMySQL); err != nil {
			logger.Error("migrations failed", zap.Error(err))
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	// Init cache
	redisClient, err := cache.NewRedis(cfg.Cache)
	if err != nil {
		logger.Error("redis connect problem", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("error when closing redis", zap.Error(err))
		}
	}()

	// Init document storage
	documents, err := storage.NewMinioStorage(cfg.Storage)
	if err != nil {
		logger.Error("minio client creation failed", zap.Error(err))
		os.Exit(1)
	}
	ensureCtx, cancelEnsure := context.WithTimeout(context.Background(), 10*time.Second)
	err = documents.EnsureBucket(ensureCtx)
	cancelEnsure()
	if err != nil {
		logger.Error("minio bucket check failed", zap.Error(err))
		os.Exit(1)
	}

	// Queue client
	asynqClient := client.New(cfg.Cache)
	restoreClient := client.SetClient(asynqClient)
	defer func() {
		restoreClient()
		if err := asynqClient.Close(); err != nil {
			logger.Error("error when closing asynq client", zap.Error(err))
		}
	}()

	emailSender, err := smtp.NewSMTPSender(cfg.SMTP.From, cfg.SMTP.FromName, cfg.SMTP.Pass, cfg.SMTP.Host, cfg.SMTP.Port)
	if err != nil {
		logger.Error("smtp sender creation failed", zap.Error(err))
		os.Exit(1)
	}

	// Services, Repos & API Handlers
	repos := repository.NewRepositories(dbMySQL, redisClient)
	services := service.NewServices(service.Deps{
		Config:   cfg,
		Hasher:   hash.NewBcryptHasher(cfg.Auth.BcryptCost),
		Tokens:   token.NewRandomGenerator(),
		Repos:    repos,
		Storage:  documents,
		Enqueuer: client.Enqueuer{},
		Now:      time.Now,
	})
	handlers := apiHttp.NewHandlers(services, cfg)

	// Background workers
	workers := worker.NewWorkers(worker.Deps{
		EmailProvider: emailSender,
		Config:        cfg,
	})
	asynqSrv, mux := asynqserver.New(cfg, workers)
	if err := asynqSrv.Start(mux); err != nil {
		logger.Error("asynq server start failed", zap.Error(err))
		os.Exit(1)
	}

	// HTTP Server
	srv := server.NewServer(cfg, handlers.Init(cfg))
	go func() {
		if err := srv.Run(); err != nil {
			logger.Error("error occurred while running http server", zap.Error(err))
		}
	}()
	logger.Info("server started", zap.String("port", cfg.HttpServer.Port))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	<-quit

	const timeout = 5 * time.Second

	ctx, shutdown := context.WithTimeout(context.Background(), timeout)
	defer shutdown()

	if err := srv.Stop(ctx); err != nil {
		logger.Error("failed to stop server", zap.Error(err))
	}
	asynqSrv.Shutdown()

	logger.Info("app stopped")
}
