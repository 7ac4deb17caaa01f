// Package discovery registers services with a Consul agent.
package discovery

import (
	"fmt"
	"net"
	"strconv"

	"github.com/hashicorp/consul/api"
)

// Config describes how a service announces itself.
type Config struct {
	ConsulAddr     string `env:"CONSUL_ADDR"`
	ServiceAddress string `env:"SERVICE_ADDRESS" envDefault:"127.0.0.1"`
}

// Enabled reports whether a Consul agent address has been configured.
func (c Config) Enabled() bool {
	return c.ConsulAddr != ""
}

// Registration identifies one registered service instance.
type Registration struct {
	ID       string
	Name     string
	HTTPPort int
	GRPCPort int
	Tags     []string
}

// Registry registers and deregisters service instances.
type Registry struct {
	client  *api.Client
	address string
}

// NewRegistry creates a Consul backed registry.
func NewRegistry(cfg Config) (*Registry, error) {
	client, err := api.NewClient(&api.Config{Address: cfg.ConsulAddr})
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	return &Registry{client: client, address: cfg.ServiceAddress}, nil
}

// Register announces the instance with a gRPC health check.
func (r *Registry) Register(reg Registration) error {
	return r.client.Agent().ServiceRegister(&api.AgentServiceRegistration{
		ID:      reg.ID,
		Name:    reg.Name,
		Address: r.address,
		Port:    reg.HTTPPort,
		Tags:    reg.Tags,
		Meta: map[string]string{
			"grpc_port": strconv.Itoa(reg.GRPCPort),
		},
		Check: &api.AgentServiceCheck{
			GRPC:                           net.JoinHostPort(r.address, strconv.Itoa(reg.GRPCPort)) + "/" + reg.Name,
			Interval:                       "10s",
			Timeout:                        "3s",
			DeregisterCriticalServiceAfter: "1m",
		},
	})
}

// Deregister removes the instance from the catalog.
func (r *Registry) Deregister(id string) error {
	return r.client.Agent().ServiceDeregister(id)
}
