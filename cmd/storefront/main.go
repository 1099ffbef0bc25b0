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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/checkout"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/config"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/gateway"
	h "github.com/RobbanaAmenallah/Touskie-Byou3/internal/http"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/identity"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/logger"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/metrics"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/notify"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/telemetry"
)

const serviceName = "storefront"

func main() {
	cfg, err := config.Load()
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

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg, "bff")

	var credentials identity.CredentialStore = identity.NewMemoryStore()
	if cfg.CredentialStore == config.CredentialStoreRedis {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Error("redis connection failed", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		credentials = identity.NewRedisStore(redisClient, cfg.CredentialTTLDuration())
		log.Info("credential store ready", "store", "redis", "addr", cfg.RedisAddr)
	}

	decoder := identity.NewDecoder(cfg.JWTSecret)
	if !decoder.Verifies() {
		log.Warn("JWT_SECRET is empty; credentials are decoded without signature verification")
	}

	gw := gateway.NewClient(cfg.GatewayBaseURL, gateway.Options{
		Timeout: cfg.GatewayTimeoutDuration(),
		Logger:  log,
		Metrics: m,
	})

	var mailer notify.Mailer
	if cfg.EmailEnabled() {
		mailer = notify.NewEmailJSClient(cfg.EmailJSBaseURL, cfg.EmailJSServiceID, cfg.EmailJSTemplateID,
			cfg.EmailJSPublicKey, cfg.EmailJSPrivateKey)
	} else {
		log.Warn("EmailJS is not configured; confirmation emails will fail")
	}

	var publisher notify.EventPublisher
	if brokers := cfg.KafkaBrokersList(); len(brokers) > 0 {
		kp := notify.NewKafkaPublisher(cfg.KafkaPurchaseTopic, brokers...)
		defer kp.Close()
		publisher = kp
		log.Info("purchase events enabled", "topic", cfg.KafkaPurchaseTopic, "brokers", brokers)
	}

	dispatcher := notify.NewDispatcher(mailer, notify.Options{
		SenderLabel: cfg.NotifySenderLabel,
		Timeout:     cfg.NotifyTimeoutDuration(),
		Publisher:   publisher,
		Logger:      log,
		Metrics:     m,
	})

	workspaces := h.NewWorkspaces(h.WorkspaceDeps{
		Credentials: credentials,
		Decoder:     decoder,
		Gateway:     gw,
		Notifier:    dispatcher,
		Checkout: checkout.Options{
			SMSAck:   cfg.SendCodeSMSAck,
			EmailAck: cfg.SendCodeEmailAck,
			Logger:   log,
			Metrics:  m,
		},
		Logger:     log,
		IdleTTL:    cfg.WorkspaceIdleTTLDuration(),
		MaxClients: cfg.MaxWorkspaces,
	})

	handler := h.NewRouter(h.RouterConfig{
		Workspaces:     workspaces,
		Logger:         log,
		Metrics:        m,
		MetricsHandler: metrics.Handler(reg),
		RequestTimeout: 30 * time.Second,
		NotifyWait:     3 * time.Second,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront starting", "addr", cfg.HTTPAddr, "gateway", cfg.GatewayBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeoutDuration())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", "error", err)
	}
	log.Info("server exited")
}
