// Command unify runs the appointment-booking API: tenant, catalog, workforce
// and client directories plus the scheduling engine, over Postgres, with an
// outbox publisher to Kafka when brokers are configured.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/unifyhq/unify/internal/handlers"
	"github.com/unifyhq/unify/internal/outbox"
	"github.com/unifyhq/unify/internal/scheduling"
	"github.com/unifyhq/unify/internal/storage"
	"github.com/unifyhq/unify/libs/config"
	"github.com/unifyhq/unify/libs/db"
	"github.com/unifyhq/unify/libs/httpx"
	"github.com/unifyhq/unify/libs/kafkax"
	otelx "github.com/unifyhq/unify/libs/otel"
	"github.com/unifyhq/unify/libs/runtime"
)

const serviceName = "unify"

func main() {
	logger := runtime.NewLogger(serviceName)

	ctx, stop := runtime.SignalContext()
	defer stop()

	port, err := config.Port("PORT", "8080")
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	databaseURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	jwtSecret, err := config.RequiredString("JWT_SECRET")
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	shutdownTracing, err := otelx.Setup(ctx, otelx.ConfigFromEnv(serviceName))
	if err != nil {
		logger.Error("tracing setup failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	pool, err := db.Open(ctx, databaseURL)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := storage.CreateSchema(ctx, pool); err != nil {
		logger.Error("schema setup failed", "error", err)
		os.Exit(1)
	}

	accounts := storage.NewAccountRepository(pool)
	companies := storage.NewCompanyRepository(pool)
	catalog := storage.NewCatalogRepository(pool)
	workforce := storage.NewWorkforceRepository(pool)
	clients := storage.NewClientRepository(pool)
	appointments := storage.NewAppointmentRepository(pool)
	events := outbox.NewRepository(pool)

	engine := scheduling.NewEngine(catalog, workforce, clients, appointments, events, logger)

	readyChecks := []runtime.ReadyCheck{
		{Name: "postgres", Check: db.ReadyCheck(pool)},
	}

	kafkaBrokers := config.String("KAFKA_BROKERS", "")
	if publisher := outbox.NewPublisher(events, kafkaBrokers, config.String("KAFKA_TOPIC", "appointments.events"), logger); publisher != nil {
		go publisher.Run(ctx)
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(kafkaBrokers)})
		logger.Info("outbox publisher started", "brokers", kafkaBrokers)
	} else {
		logger.Info("outbox publisher disabled, no brokers configured")
	}

	// The limiter may add a redis readiness check, so build it before the mux.
	rateLimit := rateLimitMiddleware(logger, &readyChecks)

	mux := runtime.NewBaseMux(readyChecks...)
	handlers.RegisterRoutes(mux, jwtSecret,
		handlers.NewAuthHandler(accounts, jwtSecret, logger),
		handlers.NewCompanyHandler(companies, logger),
		handlers.NewCatalogHandler(catalog, workforce, logger),
		handlers.NewWorkforceHandler(workforce, catalog, logger),
		handlers.NewClientHandler(clients, logger),
		handlers.NewAppointmentHandler(engine, appointments, workforce, catalog, logger),
	)

	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: splitCSV(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type", httpx.RequestIDHeader},
			MaxAge:         10 * time.Minute,
		}),
		rateLimit,
		httpx.WithBodyLimit(1<<20),
		httpx.WithTimeout(30*time.Second),
	)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           otelhttp.NewHandler(handler, serviceName),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}

// rateLimitMiddleware prefers the Redis fixed-window limiter when REDIS_ADDR
// is set, falling back to the in-memory one otherwise.
func rateLimitMiddleware(logger *slog.Logger, readyChecks *[]runtime.ReadyCheck) httpx.Middleware {
	limit := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	window := time.Minute

	redisAddr := config.String("REDIS_ADDR", "")
	if redisAddr == "" {
		return httpx.NewRateLimiter(limit, window).Middleware()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: config.String("REDIS_PASSWORD", ""),
		DB:       config.Int("REDIS_DB", 0),
	})
	*readyChecks = append(*readyChecks, runtime.ReadyCheck{
		Name: "redis",
		Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
	})
	limiter := httpx.NewRedisRateLimiter(rdb, limit, window, serviceName)
	return limiter.Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
