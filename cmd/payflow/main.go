package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/hostedpay/payflow/internal/config"
	"github.com/hostedpay/payflow/internal/events"
	"github.com/hostedpay/payflow/internal/flows"
	"github.com/hostedpay/payflow/internal/gateway"
	"github.com/hostedpay/payflow/internal/handler"
	"github.com/hostedpay/payflow/internal/handler/middleware"
	"github.com/hostedpay/payflow/internal/lock"
	"github.com/hostedpay/payflow/internal/metrics"
	"github.com/hostedpay/payflow/internal/persistence/postgres"
	"github.com/hostedpay/payflow/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting payflow service",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()
	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	paymentRepo := postgres.NewPaymentRepository(db.Pool)
	interactionRepo := postgres.NewInteractionRepository(db.Pool)

	registry := gateway.NewRegistry()
	registry.Register(cfg.Gateways.Remote.Name, gateway.NewHTTPGateway(gateway.HTTPConfig{
		Name:        cfg.Gateways.Remote.Name,
		BaseURL:     cfg.Gateways.Remote.BaseURL,
		ConnTimeout: cfg.Gateways.Remote.ConnTimeout,
	}), gateway.Traits{})
	if cfg.Gateways.Manual.Enabled {
		registry.Register(cfg.Gateways.Manual.Name, gateway.NewManualGateway(), gateway.Traits{Manual: true})
	}

	var locker lock.Locker = lock.NewKeyedMutex()
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		locker = lock.NewRedisLocker(redisClient, cfg.Redis.LockTTL)
		logger.Info("using redis completion locks", "addr", cfg.Redis.Addr)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		logger.Info("publishing status changes to kafka",
			"brokers", cfg.Kafka.Brokers,
			"topic", cfg.Kafka.Topic,
		)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewRecorder(promRegistry)

	orc := flows.NewOrchestrator(flows.Config{
		Payments:     paymentRepo,
		Log:          interactionRepo,
		Gateways:     registry,
		EndpointBase: cfg.Endpoint.BaseURL,
		Locks:        locker,
		Events:       publisher,
		Recorder:     recorder,
		Logger:       logger,
	})

	authorizeFlow := flows.NewAuthorizeFlow(orc)
	captureFlow := flows.NewCaptureFlow(orc)
	refundFlow := flows.NewRefundFlow(orc)
	voidFlow := flows.NewVoidFlow(orc)

	mux := http.NewServeMux()
	handler.NewPaymentHandler(orc, authorizeFlow, captureFlow, refundFlow, voidFlow).RegisterRoutes(mux)
	handler.NewEndpointHandler(orc, authorizeFlow, captureFlow, refundFlow, logger).RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Pool.Ping(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	h := middleware.Recovery(logger)(mux)
	h = middleware.Logging(logger)(h)
	h = middleware.Timeout(cfg.Server.ReadTimeout)(h)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	if cfg.Worker.Interval > 0 {
		expirationWorker := worker.NewExpirationWorker(
			paymentRepo,
			interactionRepo,
			cfg.Worker.Interval,
			cfg.Worker.MaxAge,
			cfg.Worker.BatchSize,
			logger,
		)
		go expirationWorker.Start(workerCtx)
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
