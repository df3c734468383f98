package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bloodcamp-api/internal/config"
	"github.com/bloodcamp-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/bloodcamp-api/internal/infrastructure/jwt"
	s3infra "github.com/bloodcamp-api/internal/infrastructure/s3"
	"github.com/bloodcamp-api/internal/infrastructure/smtp"
	"github.com/bloodcamp-api/internal/infrastructure/sns"
	transporthttp "github.com/bloodcamp-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()
	slog.SetDefault(newLogger(cfg))

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient, err := dynamo.NewClient(context.Background(), cfg)
	if err != nil {
		slog.Error("dynamodb client not available", "error", err)
		os.Exit(1)
	}
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		slog.Error("jwt provider not available", "error", err)
		os.Exit(1)
	}

	s3Client, err := s3infra.NewClient(context.Background(), cfg)
	if err != nil {
		slog.Error("s3 client not available", "error", err)
		os.Exit(1)
	}
	s3Store := s3infra.NewStore(s3Client, cfg)
	mailer := smtp.NewMailer(cfg)

	// SNS SMS sender (optional, decisions are still emailed without it).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		slog.Warn("sns sender not available", "error", err)
	}

	deps := &transporthttp.Deps{
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		AdminRepo:        dynamo.NewAdminRepo(dynamoClient, cfg.DynamoTables.Admins),
		AdminRequestRepo: dynamo.NewAdminRequestRepo(dynamoClient, cfg.DynamoTables.AdminRequests, cfg.DynamoTables.Admins),
		DonorRepo:        dynamo.NewDonorRepo(dynamoClient, cfg.DynamoTables.Donors),
		NoticeRepo:       dynamo.NewNoticeRepo(dynamoClient, cfg.DynamoTables.Notices),
		FormRepo:         dynamo.NewFormRepo(dynamoClient, cfg.DynamoTables.Forms),
		S3Store:          s3Store,
		Mailer:           mailer,
		SMSSender:        smsSender,
		JWTProvider:      jwtProvider,
	}
	svcs := transporthttp.NewServices(cfg, deps)

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 30*time.Second)
	if err := svcs.Admin.EnsureSuperAdmin(bootCtx, cfg.SuperAdminName, cfg.SuperAdminEmail, cfg.SuperAdminPassword); err != nil {
		slog.Error("super admin bootstrap failed", "error", err)
	}
	cancelBoot()

	router := transporthttp.NewRouter(cfg, deps, svcs)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// newLogger returns a JSON logger in production and a text logger otherwise.
func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
