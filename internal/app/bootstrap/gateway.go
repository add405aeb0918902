package bootstrap

import (
	"context"
	"log/slog"
	"net/http"

	"pulseops/internal/platform/config"
	"pulseops/internal/platform/gateway"
)

type GatewayApp struct {
	gateway *gateway.Gateway
	addr    string
	logger  *slog.Logger
}

func BuildGateway() (*GatewayApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "gateway")

	routes := gateway.DefaultRoutes(gateway.Backends{
		IncidentURL: cfg.IncidentServiceURL,
		ActivityURL: cfg.ActivityServiceURL,
		EvidenceURL: cfg.EvidenceServiceURL,
		SecretsURL:  cfg.SecretsServiceURL,
	})
	verifier := gateway.NewHTTPVerifier(cfg.SecretsServiceURL, cfg.VerifyTimeout)

	gw, err := gateway.New(routes, verifier, logger)
	if err != nil {
		return nil, err
	}

	return &GatewayApp{
		gateway: gw,
		addr:    normalizeAddr(cfg.GatewayPort),
		logger:  logger,
	}, nil
}

func (g *GatewayApp) Run(_ context.Context) error {
	g.logger.Info("gateway started",
		"event", "bootstrap_gateway_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"addr", g.addr,
	)
	return http.ListenAndServe(g.addr, g.gateway)
}

func (g *GatewayApp) Close() error { return nil }
