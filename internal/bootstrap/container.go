package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"clinic-erp-be/internal/access"
	"clinic-erp-be/internal/cacheinv"
	"clinic-erp-be/internal/config"
	"clinic-erp-be/internal/controller"
	"clinic-erp-be/internal/crud"
	"clinic-erp-be/internal/entityconfig"
	"clinic-erp-be/internal/locality"
	"clinic-erp-be/internal/pkg/logger"
	"clinic-erp-be/internal/registry"
	"clinic-erp-be/internal/repository/unitofwork"
	"clinic-erp-be/internal/resolver"
	"clinic-erp-be/internal/transform"
	pkgNats "clinic-erp-be/pkg/nats"
)

type Container struct {
	// HTTP surface
	EntityController controller.IEntityController

	// Engine internals exposed for main.go and graceful shutdown.
	Entities          *registry.Registry
	Configs           *entityconfig.Loader
	Orchestrator      *crud.Orchestrator
	ReadRegistry      *resolver.Registry
	InvalidationLoop  *cacheinv.Subscriber
	Logger            logger.ILogger
	NatsPublisher     *pkgNats.Publisher
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus (in-process invalidation signals)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	// NATS (audit stream). Optional: writes proceed without it.
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis (second cache tier). Optional: the local tier still works.
	var rdb *redis.Client
	if cfg.Cache.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.Cache.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.Cache.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	// 3. Engine core
	entities := registry.New()
	overrides := crud.NewOverrideTable()
	registerEntities(entities, overrides, db, uowFactory)

	configs := entityconfig.NewLoader(entities, sysLogger)
	transformer := transform.New(sysLogger)
	localityResolver := locality.NewResolver(db)

	readCache := cacheinv.NewReadCache(rdb, time.Duration(cfg.Cache.ReadTTLSeconds)*time.Second, sysLogger)
	invalidator := cacheinv.NewInvalidator(pubSub, sysLogger)
	invalidationLoop := cacheinv.NewSubscriber(pubSub, readCache, entities, sysLogger)

	var audit crud.AuditPublisher
	if natsPub != nil {
		audit = natsPub
	}

	orchestrator := crud.NewOrchestrator(
		entities,
		configs,
		transformer,
		uowFactory,
		overrides,
		localityResolver,
		invalidator,
		audit,
		sysLogger,
	)

	readRegistry := resolver.NewRegistry(entities, func(entityType string) interface{} {
		return resolver.NewGenericEntityService(entityType, db, entities, configs, readCache, sysLogger)
	}, sysLogger)

	scope := access.NewController(entities, configs, "")

	entityController := controller.NewEntityController(orchestrator, readRegistry, scope)

	return &Container{
		EntityController: entityController,
		Entities:         entities,
		Configs:          configs,
		Orchestrator:     orchestrator,
		ReadRegistry:     readRegistry,
		InvalidationLoop: invalidationLoop,
		Logger:           sysLogger,
		NatsPublisher:    natsPub,
	}
}
