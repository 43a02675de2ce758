// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/twmb/franz-go/pkg/kgo"

	"canvass/internal/events"
	"canvass/internal/guard"
	"canvass/internal/guard/marker"
	"canvass/internal/platform/config"
	"canvass/internal/platform/httpserver"
	"canvass/internal/platform/logger"
	platformmetrics "canvass/internal/platform/metrics"
	"canvass/internal/platform/postgres"
	platformredis "canvass/internal/platform/redis"
	qhandler "canvass/internal/questionnaire/handler"
	qmetrics "canvass/internal/questionnaire/metrics"
	qservice "canvass/internal/questionnaire/service"
	qstore "canvass/internal/questionnaire/store"
	"canvass/internal/questiontype"
	rhandler "canvass/internal/response/handler"
	rmetrics "canvass/internal/response/metrics"
	rservice "canvass/internal/response/service"
	rstore "canvass/internal/response/store"
	"canvass/internal/stats"
	"canvass/internal/token"
	httptransport "canvass/internal/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}

	responseStore := rstore.NewPostgres(pool)
	questionnaireStore := qstore.NewPostgres(pool)
	registry := questiontype.NewDefaultRegistry()

	var markers guard.SessionMarkerStore = marker.NewMemoryStore()
	if redisClient != nil {
		defer redisClient.Close()
		markers = marker.NewRedisStore(redisClient.Client)
	} else {
		log.Warn("redis not configured, session markers are process-local")
	}

	resolver, err := guard.NewResolver(responseStore, markers,
		guard.WithLogger(log),
		guard.WithMarkerTTL(cfg.Guard.SessionMarkerTTL),
	)
	if err != nil {
		return err
	}

	var publisher events.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := kgo.NewClient(
			kgo.SeedBrokers(cfg.Kafka.Brokers...),
			kgo.DefaultProduceTopic(cfg.Kafka.Topic),
		)
		if err != nil {
			return err
		}
		defer kafkaClient.Close()
		publisher = events.NewKafkaPublisher(kafkaClient, cfg.Kafka.Topic, events.WithLogger(log))
	} else {
		log.Warn("kafka not configured, domain facts are not published")
	}

	questionnaireService := qservice.New(questionnaireStore, registry,
		qservice.WithLogger(log),
		qservice.WithMetrics(qmetrics.New()),
		qservice.WithPublisher(publisher),
	)
	responseService := rservice.New(responseStore, questionnaireStore, registry, resolver,
		rservice.WithLogger(log),
		rservice.WithMetrics(rmetrics.New()),
		rservice.WithPublisher(publisher),
	)
	statsService := stats.New(responseStore, questionnaireStore, registry, stats.WithLogger(log))

	tokenService := token.NewService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
	validator := token.NewMiddlewareAdapter(tokenService)

	health := map[string]httptransport.HealthCheck{
		"postgres": pool.Ping,
	}
	if redisClient != nil {
		health["redis"] = redisClient.Health
	}

	router := httptransport.NewRouter(httptransport.Dependencies{
		Logger:         log,
		Metrics:        platformmetrics.New(),
		RequestTimeout: cfg.Server.RequestTimeout,
		Handlers: []httptransport.Registrar{
			qhandler.New(questionnaireService, statsService, validator, log),
			rhandler.New(responseService, questionnaireService, validator, log),
		},
		HealthChecks: health,
	})

	srv := httpserver.New(cfg.Server.Addr, router)
	return httpserver.Run(ctx, srv, log, cfg.Server.ShutdownTimeout)
}
