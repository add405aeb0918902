// Package bootstrap is the composition root. Keep construction/wiring here so
// module code stays framework-agnostic.
package bootstrap

import (
	"context"
	"log/slog"
	"strings"
	"time"

	activityservice "pulseops/contexts/incident-response/activity-service"
	activitymemory "pulseops/contexts/incident-response/activity-service/adapters/memory"
	activitypostgres "pulseops/contexts/incident-response/activity-service/adapters/postgres"
	activityapp "pulseops/contexts/incident-response/activity-service/application"
	activityports "pulseops/contexts/incident-response/activity-service/ports"
	evidenceservice "pulseops/contexts/incident-response/evidence-service"
	"pulseops/contexts/incident-response/evidence-service/adapters/memory"
	minioadapter "pulseops/contexts/incident-response/evidence-service/adapters/minio"
	evidencepostgres "pulseops/contexts/incident-response/evidence-service/adapters/postgres"
	evidenceports "pulseops/contexts/incident-response/evidence-service/ports"
	incidentservice "pulseops/contexts/incident-response/incident-service"
	incidentmemory "pulseops/contexts/incident-response/incident-service/adapters/memory"
	incidentpostgres "pulseops/contexts/incident-response/incident-service/adapters/postgres"
	incidentports "pulseops/contexts/incident-response/incident-service/ports"
	secretsservice "pulseops/contexts/identity-access/secrets-service"
	secretsmemory "pulseops/contexts/identity-access/secrets-service/adapters/memory"
	secretspostgres "pulseops/contexts/identity-access/secrets-service/adapters/postgres"
	secretsports "pulseops/contexts/identity-access/secrets-service/ports"
	"pulseops/internal/platform/config"
	"pulseops/internal/platform/db"
	"pulseops/internal/platform/dlq"
	"pulseops/internal/platform/httpserver"
	"pulseops/internal/platform/messaging"
	"pulseops/internal/platform/metrics"
	"pulseops/internal/shared/events"
)

// eventBus is what both the in-process bus and the kafka adapter provide:
// the publish side for producers and the consumer-group side for the router.
type eventBus interface {
	Publish(ctx context.Context, topic string, event events.Envelope) error
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, events.Envelope) error,
	) error
}

type APIApp struct {
	server   *httpserver.Server
	incident incidentservice.Module
	activity activityservice.Module
	postgres *db.Postgres
	kafka    *messaging.Kafka
	dlq      *dlq.Client
	cfg      config.Config
	logger   *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	app := &APIApp{cfg: cfg, logger: logger}

	bus, err := app.buildBus(logger)
	if err != nil {
		return nil, err
	}

	var (
		incidentRepo incidentports.Repository
		activityRepo activityports.Repository
		evidenceRepo evidenceports.Repository
		secretsRepo  secretsports.Repository
	)
	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		pg, err := db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		app.postgres = pg

		incidentRepo, err = incidentpostgres.NewRepository(pg.DB, logger)
		if err != nil {
			return nil, err
		}
		activityRepo, err = activitypostgres.NewRepository(pg.DB, logger)
		if err != nil {
			return nil, err
		}
		evidenceRepo, err = evidencepostgres.NewRepository(pg.DB)
		if err != nil {
			return nil, err
		}
		secretsRepo, err = secretspostgres.NewRepository(pg.DB)
		if err != nil {
			return nil, err
		}
	} else {
		incidentRepo = incidentmemory.NewStore()
		activityRepo = activitymemory.NewStore()
		evidenceRepo = memory.NewStore()
		secretsRepo = secretsmemory.NewStore()
	}

	objects, err := app.buildObjectStore(logger)
	if err != nil {
		return nil, err
	}

	var deadLetter activityports.DeadLetter
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		client := dlq.New(cfg.RedisAddr, "", logger)
		app.dlq = client
		deadLetter = client
	}

	app.incident = incidentservice.NewModule(incidentservice.Dependencies{
		Repo:           incidentRepo,
		Bus:            bus,
		Clock:          incidentpostgres.SystemClock{},
		IDGenerator:    incidentpostgres.UUIDGenerator{},
		Topic:          cfg.EventTopic,
		StaleThreshold: cfg.StaleThreshold,
		Logger:         logger,
	})

	app.activity = activityservice.NewModule(activityservice.Dependencies{
		Repo:              activityRepo,
		Subscriber:        bus,
		IDGenerator:       activitypostgres.UUIDGenerator{},
		DeadLetter:        deadLetter,
		Topic:             cfg.EventTopic,
		ConsumerGroup:     cfg.ConsumerGroup,
		StreamBuffer:      cfg.StreamBuffer,
		HeartbeatInterval: cfg.HeartbeatInterval,
		Logger:            logger,
	})
	instrumentHub(app.activity.Hub)

	evidenceModule := evidenceservice.NewModule(evidenceservice.Dependencies{
		Repo:        evidenceRepo,
		Objects:     objects,
		Bus:         bus,
		Clock:       evidencepostgres.SystemClock{},
		IDGenerator: evidencepostgres.UUIDGenerator{},
		Topic:       cfg.EventTopic,
		Logger:      logger,
	})

	secretsModule := secretsservice.NewModule(secretsservice.Dependencies{
		Repo:        secretsRepo,
		Clock:       secretspostgres.SystemClock{},
		IDGenerator: secretspostgres.UUIDGenerator{},
		Logger:      logger,
	})

	app.server = httpserver.New(
		app.incident,
		app.activity,
		evidenceModule,
		secretsModule,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return app, nil
}

func (a *APIApp) buildBus(logger *slog.Logger) (eventBus, error) {
	if a.cfg.EventBus == "kafka" {
		kafka, err := messaging.NewKafka(a.cfg.KafkaBrokers, logger)
		if err != nil {
			return nil, err
		}
		a.kafka = kafka
		return kafka, nil
	}
	return messaging.NewBus(logger), nil
}

func (a *APIApp) buildObjectStore(logger *slog.Logger) (evidenceports.ObjectStore, error) {
	if strings.TrimSpace(a.cfg.MinioEndpoint) == "" {
		return memory.NewStore(), nil
	}
	return minioadapter.New(context.Background(), minioadapter.Config{
		Endpoint:  a.cfg.MinioEndpoint,
		AccessKey: a.cfg.MinioAccessKey,
		SecretKey: a.cfg.MinioSecretKey,
		Bucket:    a.cfg.MinioBucket,
		UseSSL:    a.cfg.MinioUseSSL,
	}, logger)
}

// instrumentHub keeps the hub free of metrics imports; gauges live here.
func instrumentHub(hub *activityapp.Hub) {
	hub.OnSubscribe = func() { metrics.StreamSubscribers.Inc() }
	hub.OnUnsubscribe = func() { metrics.StreamSubscribers.Dec() }
	hub.OnDrop = func() { metrics.StreamDropped.Inc() }
}

func (a *APIApp) Run(ctx context.Context) error {
	if err := a.activity.Router.Start(ctx); err != nil {
		return err
	}

	go a.activity.Hub.Run(ctx)

	if a.cfg.EnableStaleDetector {
		go a.runStaleSweeps(ctx)
	}

	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"event_bus", a.cfg.EventBus,
	)
	return a.server.Start()
}

func (a *APIApp) runStaleSweeps(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.StaleCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.incident.Detector.RunOnce(ctx); err != nil {
				a.logger.Error("stale sweep run failed",
					"event", "bootstrap_stale_sweep_failed",
					"module", "internal/app/bootstrap",
					"layer", "platform",
					"error", err.Error(),
				)
			}
		}
	}
}

func (a *APIApp) Close() error {
	if a.dlq != nil {
		_ = a.dlq.Close()
	}
	if a.kafka != nil {
		_ = a.kafka.Close()
	}
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
