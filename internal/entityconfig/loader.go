package entityconfig

import (
	"sync/atomic"

	"github.com/patrickmn/go-cache"

	"clinic-erp-be/internal/pkg/logger"
)

// Builder materializes the configuration for one entity type. Builders are
// registered in the entity registry at bootstrap, replacing the legacy
// import-a-module-and-find-an-attribute resolution.
type Builder func() *EntityConfiguration

// BuilderSource is the slice of the entity registry the loader needs.
type BuilderSource interface {
	ConfigBuilder(entityType string) (Builder, bool)
	CategoryOf(entityType string) (Category, bool)
}

// Loader resolves and caches one EntityConfiguration per entity type.
// Repeated lookups return the identical cached object.
type Loader struct {
	source BuilderSource
	cache  *cache.Cache
	log    logger.ILogger

	hits   atomic.Int64
	misses atomic.Int64
}

func NewLoader(source BuilderSource, log logger.ILogger) *Loader {
	return &Loader{
		source: source,
		cache:  cache.New(cache.NoExpiration, 0),
		log:    log,
	}
}

// Load returns the configuration for entityType, or (nil, false) when no
// builder is registered or the builder yields nothing. That outcome is a
// configuration-level absence, distinct from a data-level not-found.
func (l *Loader) Load(entityType string) (*EntityConfiguration, bool) {
	if x, found := l.cache.Get(entityType); found {
		l.hits.Add(1)
		return x.(*EntityConfiguration), true
	}
	l.misses.Add(1)

	builder, ok := l.source.ConfigBuilder(entityType)
	if !ok || builder == nil {
		l.log.Warn("entityconfig", "no config builder registered", map[string]interface{}{
			"entity_type": entityType,
		})
		return nil, false
	}

	cfg := builder()
	if cfg == nil {
		l.log.Warn("entityconfig", "config builder returned nothing", map[string]interface{}{
			"entity_type": entityType,
		})
		return nil, false
	}

	if cfg.EntityType == "" {
		cfg.EntityType = entityType
	}
	if cfg.Category == "" {
		if cat, ok := l.source.CategoryOf(entityType); ok {
			cfg.Category = cat
		}
	}

	l.cache.Set(entityType, cfg, cache.NoExpiration)
	return cfg, true
}

// Stats reports cache hit/miss counters.
func (l *Loader) Stats() (hits, misses int64) {
	return l.hits.Load(), l.misses.Load()
}

// Reset drops all cached configurations. Intended for tests and shutdown.
func (l *Loader) Reset() {
	l.cache.Flush()
}
