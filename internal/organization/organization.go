// Package organization wires the organization module: repository, usecase,
// HTTP handler and the Redis-backed event trail.
package organization

import (
	httpadapter "org-registry/internal/organization/adapter/http"
	redispersistence "org-registry/internal/organization/adapter/persistence"
	"org-registry/internal/organization/adapter/persistence/postgres"
	"org-registry/internal/organization/config"
	"org-registry/internal/organization/domain/model"
	"org-registry/internal/organization/domain/repository"
	"org-registry/internal/organization/usecase"
	"org-registry/internal/shared/database"
	"org-registry/internal/shared/eventbus"
	"org-registry/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Module bundles every component of the organization service.
type Module struct {
	Config     *config.Config
	Repository repository.OrganizationRepository
	Usecase    usecase.OrganizationUsecase
	Handler    *httpadapter.OrganizationHandler
	EventBus   *eventbus.EventBus
	EventStore *redispersistence.RedisEventStore
	Logger     logger.Logger
}

// NewModule creates and wires the organization module. The Redis client may
// be nil; lifecycle events are then kept on the in-process bus only.
func NewModule(cfg *config.Config, db database.DB, redisClient *redis.Client, log logger.Logger) *Module {
	bus := eventbus.NewEventBus(log)

	repo := postgres.NewOrganizationRepository(db, bus, log)
	uc := usecase.NewOrganizationUsecase(repo, log)
	handler := httpadapter.NewOrganizationHandler(uc, log)

	module := &Module{
		Config:     cfg,
		Repository: repo,
		Usecase:    uc,
		Handler:    handler,
		EventBus:   bus,
		Logger:     log,
	}

	if redisClient != nil {
		store := redispersistence.NewRedisEventStore(redisClient, log)
		handlerFn := store.EventHandler()
		for _, eventType := range []string{
			model.EventOrganizationCreated,
			model.EventOrganizationUpdated,
			model.EventOrganizationDeleted,
		} {
			bus.Subscribe(eventType, handlerFn)
		}
		module.EventStore = store
		log.Info("Redis event store subscribed to organization lifecycle events")
	}

	return module
}

// RegisterRoutes mounts the module's HTTP API on the router.
func (m *Module) RegisterRoutes(router fiber.Router) {
	m.Handler.RegisterRoutes(router)
}
