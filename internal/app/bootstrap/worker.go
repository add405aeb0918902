package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	activityservice "pulseops/contexts/incident-response/activity-service"
	activitypostgres "pulseops/contexts/incident-response/activity-service/adapters/postgres"
	activityports "pulseops/contexts/incident-response/activity-service/ports"
	incidentservice "pulseops/contexts/incident-response/incident-service"
	incidentpostgres "pulseops/contexts/incident-response/incident-service/adapters/postgres"
	"pulseops/internal/platform/config"
	"pulseops/internal/platform/db"
	"pulseops/internal/platform/dlq"
	"pulseops/internal/platform/messaging"
)

// WorkerApp runs the consuming side alone: the activity projection consumer
// and the stale-incident sweeps. Used when the bus is kafka and the API
// process is deployed separately from the consumers.
type WorkerApp struct {
	incident      incidentservice.Module
	activity      activityservice.Module
	postgres      *db.Postgres
	kafka         *messaging.Kafka
	dlq           *dlq.Client
	sweepInterval time.Duration
	enableSweeps  bool
	logger        *slog.Logger
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}
	if cfg.EventBus != "kafka" {
		return nil, errors.New("worker process requires EVENT_BUS=kafka; the in-process bus cannot span processes")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	incidentRepo, err := incidentpostgres.NewRepository(pg.DB, logger)
	if err != nil {
		return nil, err
	}
	activityRepo, err := activitypostgres.NewRepository(pg.DB, logger)
	if err != nil {
		return nil, err
	}

	var deadLetter activityports.DeadLetter
	var dlqClient *dlq.Client
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		dlqClient = dlq.New(cfg.RedisAddr, "", logger)
		deadLetter = dlqClient
	}

	incidentModule := incidentservice.NewModule(incidentservice.Dependencies{
		Repo:           incidentRepo,
		Bus:            kafka,
		Clock:          incidentpostgres.SystemClock{},
		IDGenerator:    incidentpostgres.UUIDGenerator{},
		Topic:          cfg.EventTopic,
		StaleThreshold: cfg.StaleThreshold,
		Logger:         logger,
	})

	activityModule := activityservice.NewModule(activityservice.Dependencies{
		Repo:              activityRepo,
		Subscriber:        kafka,
		IDGenerator:       activitypostgres.UUIDGenerator{},
		DeadLetter:        deadLetter,
		Topic:             cfg.EventTopic,
		ConsumerGroup:     cfg.ConsumerGroup,
		StreamBuffer:      cfg.StreamBuffer,
		HeartbeatInterval: cfg.HeartbeatInterval,
		Logger:            logger,
	})
	instrumentHub(activityModule.Hub)

	return &WorkerApp{
		incident:      incidentModule,
		activity:      activityModule,
		postgres:      pg,
		kafka:         kafka,
		dlq:           dlqClient,
		sweepInterval: cfg.StaleCheckInterval,
		enableSweeps:  cfg.EnableStaleDetector,
		logger:        logger,
	}, nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.activity.Router.Start(ctx); err != nil {
		return err
	}

	go w.activity.Hub.Run(ctx)

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"sweep_interval", w.sweepInterval.String(),
	)

	if !w.enableSweeps {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.incident.Detector.RunOnce(ctx); err != nil {
				w.logger.Error("stale sweep run failed",
					"event", "bootstrap_stale_sweep_failed",
					"module", "internal/app/bootstrap",
					"layer", "platform",
					"error", err.Error(),
				)
			}
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.dlq != nil {
		_ = w.dlq.Close()
	}
	if w.kafka != nil {
		_ = w.kafka.Close()
	}
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}
