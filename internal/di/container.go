// Package di provides the dependency injection container for the service.
package di

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"org-registry/internal/organization"
	"org-registry/internal/organization/config"
	"org-registry/internal/shared/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Container is a dependency injection container with lifecycle management.
type Container struct {
	mu        sync.RWMutex
	services  map[reflect.Type]interface{}
	factories map[reflect.Type]func() (interface{}, error)

	// Module instances
	OrganizationModule *organization.Module

	// Infrastructure
	Pool        *pgxpool.Pool
	RedisClient *redis.Client

	// Configuration
	Config *config.Config

	Logger logger.Logger
}

// NewContainer creates a new DI container.
func NewContainer() *Container {
	return &Container{
		services:  make(map[reflect.Type]interface{}),
		factories: make(map[reflect.Type]func() (interface{}, error)),
	}
}

// InitializeOrganization wires the organization module on top of the given
// infrastructure. The Redis client may be nil when events are disabled.
func (c *Container) InitializeOrganization(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pool == nil {
		return fmt.Errorf("database pool must be initialized before the organization module")
	}
	if c.Logger == nil {
		c.Logger = logger.NewLogger()
	}

	c.Config = cfg
	c.Pool = pool
	c.RedisClient = redisClient
	c.OrganizationModule = organization.NewModule(cfg, pool, redisClient, c.Logger)
	return nil
}

// Register registers a service instance.
func (c *Container) Register(service interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	serviceType := reflect.TypeOf(service)
	if serviceType.Kind() == reflect.Ptr {
		serviceType = serviceType.Elem()
	}

	c.services[serviceType] = service
	return nil
}

// RegisterFactory registers a factory function for a service.
func (c *Container) RegisterFactory(serviceType reflect.Type, factory func() (interface{}, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.factories[serviceType] = factory
	return nil
}

// Resolve resolves a service by type, instantiating it through a registered
// factory when needed.
func (c *Container) Resolve(serviceType reflect.Type) (interface{}, error) {
	c.mu.RLock()

	if service, exists := c.services[serviceType]; exists {
		c.mu.RUnlock()
		return service, nil
	}

	if factory, exists := c.factories[serviceType]; exists {
		c.mu.RUnlock()

		service, err := factory()
		if err != nil {
			return nil, fmt.Errorf("failed to create service: %w", err)
		}

		c.mu.Lock()
		c.services[serviceType] = service
		c.mu.Unlock()

		return service, nil
	}

	c.mu.RUnlock()
	return nil, fmt.Errorf("service of type %v not registered", serviceType)
}

// GetService is a generic helper for resolving services.
func GetService[T any](c *Container) (T, error) {
	var zero T
	serviceType := reflect.TypeOf(zero)

	service, err := c.Resolve(serviceType)
	if err != nil {
		return zero, err
	}

	if typedService, ok := service.(T); ok {
		return typedService, nil
	}

	return zero, fmt.Errorf("service is not of expected type %T", zero)
}

// GetOrganizationModule returns the organization module instance.
func (c *Container) GetOrganizationModule() *organization.Module {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.OrganizationModule
}

// HealthCheck pings the infrastructure the container manages.
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.Pool != nil {
		if err := c.Pool.Ping(ctx); err != nil {
			return fmt.Errorf("postgres health check failed: %w", err)
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis health check failed: %w", err)
		}
	}
	return nil
}

// Cleanup shuts down registered services and infrastructure in reverse
// order of initialization.
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error

	c.OrganizationModule = nil

	for _, service := range c.services {
		if cleaner, ok := service.(interface{ Cleanup(context.Context) error }); ok {
			if err := cleaner.Cleanup(ctx); err != nil {
				errs = append(errs, fmt.Errorf("failed to cleanup service: %w", err))
			}
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis client: %w", err))
		}
		c.RedisClient = nil
	}
	if c.Pool != nil {
		c.Pool.Close()
		c.Pool = nil
	}

	c.services = make(map[reflect.Type]interface{})
	c.factories = make(map[reflect.Type]func() (interface{}, error))

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}

// Close gracefully shuts down all services in the container with a timeout.
func (c *Container) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.Cleanup(ctx); err != nil {
		if c.Logger != nil {
			c.Logger.WithFields(map[string]interface{}{"error": err}).Warn("Cleanup errors occurred")
		}
		return err
	}
	return nil
}
