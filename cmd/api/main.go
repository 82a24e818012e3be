package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/abduss/docstore/internal/auth"
	"github.com/abduss/docstore/internal/config"
	"github.com/abduss/docstore/internal/document"
	"github.com/abduss/docstore/internal/folder"
	"github.com/abduss/docstore/internal/logger"
	"github.com/abduss/docstore/internal/metrics"
	"github.com/abduss/docstore/internal/server"
	"github.com/abduss/docstore/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logg, err := logger.Init()
	if err != nil {
		panic("init logger: " + err.Error())
	}
	defer logg.Sync()

	cfg, err := config.Load()
	if err != nil {
		logg.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gateway, err := storage.OpenGateway(ctx, cfg.ObjectStore)
	if err != nil {
		logg.Fatal("open object store",
			zap.String("driver", cfg.ObjectStore.Driver),
			zap.String("bucket", cfg.ObjectStore.Bucket),
			zap.Error(err))
	}
	gateway = metrics.InstrumentGateway(gateway)

	var authService *auth.Service
	if cfg.Auth.ServiceTokenSecret != "" {
		authService, err = auth.NewService(cfg.Auth)
		if err != nil {
			logg.Fatal("init auth", zap.Error(err))
		}
	} else {
		logg.Warn("DOCSTORE_SERVICE_TOKEN_SECRET not set, API is unauthenticated")
	}

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(server.Dependencies{
		Config:          cfg,
		Gateway:         gateway,
		AuthService:     authService,
		DocumentService: document.NewService(gateway, cfg.Documents, logg),
		FolderService:   folder.NewService(gateway, cfg.Documents, logg),
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logg.Info("docstore API listening",
			zap.String("address", cfg.Server.Address()),
			zap.String("driver", cfg.ObjectStore.Driver),
			zap.String("bucket", cfg.ObjectStore.Bucket),
			zap.String("category", cfg.Documents.Category))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logg.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logg.Error("shutdown error", zap.Error(err))
	}
}
