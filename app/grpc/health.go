package grpc

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

// HealthProbe drives the standard gRPC health service from periodic store pings.
type HealthProbe struct {
	server      *health.Server
	db          pinger
	serviceName string
	interval    time.Duration
	timeout     time.Duration
	logger      logrus.FieldLogger
}

func NewHealthProbe(db pinger, serviceName string, interval time.Duration) *HealthProbe {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &HealthProbe{
		server:      health.NewServer(),
		db:          db,
		serviceName: serviceName,
		interval:    interval,
		timeout:     3 * time.Second,
		logger:      logrus.WithField("module", "grpc-health"),
	}
}

func (p *HealthProbe) Server() *health.Server {
	return p.server
}

func (p *HealthProbe) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	pingCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := p.db.PingContext(pingCtx); err != nil {
		p.logger.WithError(err).Warn("Store ping failed")
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	p.server.SetServingStatus("", status)
	if p.serviceName != "" {
		p.server.SetServingStatus(p.serviceName, status)
	}
	return status
}

// Run probes until ctx is cancelled.
func (p *HealthProbe) Run(ctx context.Context) {
	p.Probe(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Probe(ctx)
		}
	}
}

func (p *HealthProbe) Shutdown() {
	p.server.Shutdown()
}
