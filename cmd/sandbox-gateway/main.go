package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/config"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/identity"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/logger"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/sandbox"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/sandbox/otp"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/sandbox/repository"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/telemetry"
)

const serviceName = "sandbox-gateway"

func main() {
	cfg, err := config.LoadSandbox()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(os.Stdout, serviceName, cfg.LogLevel)
	slog.SetDefault(log)

	ctx := context.Background()
	tp, err := telemetry.NewProvider(ctx, cfg.OTLPEndpoint, serviceName)
	if err != nil {
		log.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}
	tp.SetGlobal()

	carts := repository.NewMemoryCartRepository()
	if cfg.SandboxCartStore == "mongo" {
		mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			log.Error("failed to connect to MongoDB", "error", err)
			os.Exit(1)
		}
		defer mongoDB.Client().Disconnect(context.Background())
		carts, err = repository.NewIndexedMongoRepository(ctx, mongoDB)
		if err != nil {
			log.Error("failed to prepare carts collection", "error", err)
			os.Exit(1)
		}
		log.Info("cart store ready", "store", "mongo", "db", cfg.MongoDBName)
	}

	orders := repository.NewMemoryOrderRepository()
	if cfg.SandboxOrderStore == "postgres" {
		pg, err := repository.NewPostgresRepository(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		if err := pg.RunMigrations(); err != nil {
			log.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		orders = pg
		log.Info("order store ready", "store", "postgres")
	}
	defer orders.Close()

	var codes otp.Store = otp.NewMemoryStore(cfg.SandboxCodeTTLDuration())
	if cfg.SandboxCodeStore == "redis" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Error("redis connection failed", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		codes = otp.NewRedisStore(redisClient, cfg.SandboxCodeTTLDuration())
		log.Info("code store ready", "store", "redis")
	}

	server := sandbox.NewServer(carts, orders, codes, identity.NewDecoder(cfg.JWTSecret), sandbox.Options{
		SMSAck:          cfg.SendCodeSMSAck,
		EmailAck:        cfg.SendCodeEmailAck,
		MaxCodeAttempts: cfg.SandboxCodeAttempts,
		Logger:          log,
	})

	srv := &http.Server{
		Addr:         cfg.SandboxAddr,
		Handler:      server.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("sandbox gateway starting", "addr", cfg.SandboxAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down sandbox gateway")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeoutDuration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	_ = tp.Shutdown(shutdownCtx)
	log.Info("sandbox gateway stopped")
}
