package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func TestServer_RunAndShutdown(t *testing.T) {
	logger := zerolog.Nop()
	s := New(Options{
		ServiceName: "test-service",
		Handler:     http.NotFoundHandler(),
	}, &logger)

	status, err := s.HealthStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, status)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	status, err = s.HealthStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, status)
}

func TestServer_InstanceIDIsUnique(t *testing.T) {
	logger := zerolog.Nop()
	a := New(Options{ServiceName: "svc"}, &logger)
	b := New(Options{ServiceName: "svc"}, &logger)

	assert.NotEqual(t, a.instanceID, b.instanceID)
	assert.Contains(t, a.instanceID, "svc-")
}
