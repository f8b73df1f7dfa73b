// Package main runs the workshop certificate HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/stem-workshop/certificates/config"
	"github.com/stem-workshop/certificates/internal/auth"
	"github.com/stem-workshop/certificates/internal/certificate"
	"github.com/stem-workshop/certificates/internal/exports"
	"github.com/stem-workshop/certificates/internal/issuances"
	"github.com/stem-workshop/certificates/internal/qrcode"
	"github.com/stem-workshop/certificates/internal/registrations"
	"github.com/stem-workshop/certificates/pkg/database"
	"github.com/stem-workshop/certificates/pkg/queue"
	"github.com/stem-workshop/certificates/pkg/redis"
	"github.com/stem-workshop/certificates/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), database.PoolConfig{
		MaxConns: int32(cfg.Database.MaxConns),
	}, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	// Certificate archive (optional): Redis job queue + S3 presigned downloads.
	var (
		archiver issuances.Archiver
		signer   issuances.DownloadSigner
	)
	if cfg.Certificate.ArchiveEnabled {
		rdb, err := redis.NewClient(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		archiver = queue.NewQueue(rdb.Client, logger)

		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			CertificatesBucket:   cfg.AWS.CertificatesBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, logger)
		if err != nil {
			logger.Fatal("s3", zap.Error(err))
		}
		signer = s3Client
	}

	exportLoc, err := time.LoadLocation(cfg.Server.ExportTimezone)
	if err != nil {
		logger.Warn("unknown EXPORT_TIMEZONE, using UTC", zap.String("timezone", cfg.Server.ExportTimezone), zap.Error(err))
		exportLoc = time.UTC
	}

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	provider := auth.NewGoogleProvider(cfg.OAuth.GoogleClientID, cfg.OAuth.GoogleClientSecret, cfg.OAuth.RedirectURL)
	authService := auth.NewService(provider, jwtService, auth.NewRepository(pool), cfg.Admin.Emails, logger)
	gate, err := auth.NewGate(cfg.Admin.SecretCode, cfg.Admin.SecretCodeHash)
	if err != nil {
		logger.Fatal("secret code gate", zap.Error(err))
	}

	// Registrations
	registrationService := registrations.NewService(registrations.NewRepository(pool), logger)

	// Certificates
	renderer := certificate.NewRenderer(certificate.Config{
		LogoPath:      cfg.Certificate.LogoPath,
		SignaturePath: cfg.Certificate.SignaturePath,
	}, logger)
	issuanceService := issuances.NewService(
		issuances.NewRepository(pool),
		registrationService,
		archiver,
		issuances.Options{AllowDuplicates: cfg.Certificate.AllowDuplicates},
		logger,
	)

	router := newRouter(cfg.Server.CORSAllowedOrigins, authService, routeHandlers{
		auth:          auth.NewHandler(authService, gate, cfg.Server.CookieSecure, logger),
		registrations: registrations.NewHandler(registrationService, logger),
		qr:            qrcode.NewHandler(registrationService, cfg.Server.PublicBaseURL, logger),
		certificate:   certificate.NewHandler(renderer, logger),
		issuances:     issuances.NewHandler(issuanceService, signer, logger),
		exports:       exports.NewHandler(registrationService, issuanceService, exportLoc, logger),
	}, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening",
			zap.String("port", cfg.Server.Port),
			zap.Bool("archive_enabled", cfg.Certificate.ArchiveEnabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

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
