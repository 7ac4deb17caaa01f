// Package server runs a service's HTTP API next to the gRPC health endpoint
// that Consul polls, and tears both down on shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/vasapolrittideah/formation-hub/shared/discovery"
	"github.com/vasapolrittideah/formation-hub/shared/utilities"
)

const shutdownTimeout = 30 * time.Second

// Options configures a Server.
type Options struct {
	ServiceName string
	HTTPPort    int
	GRPCPort    int
	Handler     http.Handler
	Discovery   discovery.Config
}

// Server owns the listeners of one service instance.
type Server struct {
	opts       Options
	logger     *zerolog.Logger
	httpServer *http.Server
	grpcServer *grpc.Server
	health     *health.Server
	instanceID string
}

// New creates a Server. Nothing listens until Run is called.
func New(opts Options, logger *zerolog.Logger) *Server {
	grpcServer := grpc.NewServer()

	return &Server{
		opts:   opts,
		logger: logger,
		httpServer: &http.Server{
			Addr:              ":" + strconv.Itoa(opts.HTTPPort),
			Handler:           opts.Handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		grpcServer: grpcServer,
		health:     utilities.RegisterHealthServer(grpcServer, opts.ServiceName),
		instanceID: fmt.Sprintf("%s-%s", opts.ServiceName, uuid.NewString()),
	}
}

// Run serves until ctx is cancelled or a listener fails, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	grpcListener, err := net.Listen("tcp", ":"+strconv.Itoa(s.opts.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen on grpc port: %w", err)
	}

	serverErr := make(chan error, 2)

	go func() {
		s.logger.Info().Int("port", s.opts.HTTPPort).Msg("http server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("http server: %w", err)
		}
	}()

	go func() {
		s.logger.Info().Int("port", s.opts.GRPCPort).Msg("grpc health server starting")
		if err := s.grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			serverErr <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	registry := s.register()

	var runErr error
	select {
	case runErr = <-serverErr:
		s.logger.Error().Err(runErr).Msg("server error, shutting down")
	case <-ctx.Done():
		s.logger.Info().Msg("shutdown requested")
	}

	s.shutdown(registry)

	return runErr
}

func (s *Server) register() *discovery.Registry {
	if !s.opts.Discovery.Enabled() {
		return nil
	}

	registry, err := discovery.NewRegistry(s.opts.Discovery)
	if err != nil {
		s.logger.Warn().Err(err).Msg("service discovery unavailable")
		return nil
	}

	if err := registry.Register(discovery.Registration{
		ID:       s.instanceID,
		Name:     s.opts.ServiceName,
		HTTPPort: s.opts.HTTPPort,
		GRPCPort: s.opts.GRPCPort,
		Tags:     []string{"http", "formation-hub"},
	}); err != nil {
		s.logger.Warn().Err(err).Msg("failed to register with consul")
		return nil
	}

	s.logger.Info().Str("instance_id", s.instanceID).Msg("registered with consul")

	return registry
}

func (s *Server) shutdown(registry *discovery.Registry) {
	s.health.Shutdown()

	if registry != nil {
		if err := registry.Deregister(s.instanceID); err != nil {
			s.logger.Warn().Err(err).Msg("failed to deregister from consul")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info().Msg("waiting for in-flight requests to complete")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("graceful shutdown failed, forcing close")
		_ = s.httpServer.Close()
	}

	s.grpcServer.GracefulStop()
	s.logger.Info().Msg("server shutdown complete")
}

// HealthStatus reports the status the gRPC health service currently advertises.
func (s *Server) HealthStatus(ctx context.Context) (grpc_health_v1.HealthCheckResponse_ServingStatus, error) {
	resp, err := s.health.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: s.opts.ServiceName})
	if err != nil {
		return grpc_health_v1.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}
