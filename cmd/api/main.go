package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/infield/user-service/internal/api"
	mongodb "github.com/infield/user-service/internal/infrastructure/db/mongo"
	redisdb "github.com/infield/user-service/internal/infrastructure/db/redis"
	"github.com/infield/user-service/internal/infrastructure/sms"
	"github.com/infield/user-service/internal/pkg/config"
	"github.com/infield/user-service/pkg/logger"
)

// @title           Infield User Service
// @version         1.0
// @description     Profile management, user directory and phone verification for the Infield app.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "user-service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "infield-user-service",
		Env:     cfg.Env,
	})

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	if err := mongodb.NewUserRepository(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	notifier := sms.NewGateway(
		sms.NewTwilioClient(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken),
		sms.Config{SenderID: cfg.Twilio.SenderID, TestMode: cfg.IsTest()},
	)

	e := api.NewRouter(db, rdb, notifier, api.Options{
		JWTSecret:                 cfg.JWTSecret,
		JWTTTL:                    cfg.JWTTTL,
		PhoneVerificationCooldown: cfg.PhoneVerificationCooldown,
		EnableSwagger:             !cfg.IsProduction(),
	}, log)

	serverErrors := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		serverErrors <- e.Start(":" + cfg.Port)
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
