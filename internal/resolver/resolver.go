package resolver

import (
	"context"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"clinic-erp-be/internal/pkg/logger"
	"clinic-erp-be/internal/registry"
)

// SearchRequest is the read-path inbound shape.
type SearchRequest struct {
	EntityType string
	TenantID   uuid.UUID
	Filters    map[string]interface{}
	Limit      int
	Offset     int
	Sort       string
}

// SearchResult is the canonical search envelope. Search must always render,
// so failures surface as an error flag on a well-formed empty result.
type SearchResult struct {
	Items []map[string]interface{} `json:"items"`
	Total int64                    `json:"total"`
	Error string                   `json:"error,omitempty"`
}

// ItemResult is the canonical single-item envelope.
type ItemResult struct {
	Item  map[string]interface{} `json:"item,omitempty"`
	Found bool                   `json:"found"`
	Error string                 `json:"error,omitempty"`
}

// The legacy engine probed resolved services for conventionally-named
// methods in a fixed priority order. These interfaces make that order
// explicit: first match wins.

type EntitySearcher interface {
	SearchEntityData(ctx context.Context, req SearchRequest) (*SearchResult, error)
}

type EntityLister interface {
	ListEntityData(ctx context.Context, req SearchRequest) ([]map[string]interface{}, error)
}

type ItemGetter interface {
	GetItemData(ctx context.Context, tenantID, id uuid.UUID) (map[string]interface{}, error)
}

type ItemViewer interface {
	GetItemDetails(ctx context.Context, tenantID, id uuid.UUID) (map[string]interface{}, error)
}

// FallbackFactory builds the generic read service for an entity type.
type FallbackFactory func(entityType string) interface{}

// Registry resolves and caches one read-service instance per entity type
// for the process lifetime.
type Registry struct {
	entities  *registry.Registry
	instances *cache.Cache
	fallback  FallbackFactory
	log       logger.ILogger
}

func NewRegistry(entities *registry.Registry, fallback FallbackFactory, log logger.ILogger) *Registry {
	return &Registry{
		entities:  entities,
		instances: cache.New(cache.NoExpiration, 0),
		fallback:  fallback,
		log:       log,
	}
}

// Resolve returns the read service for entityType: the cached instance, else
// the declared constructor (entity-type-aware shape first, then the no-arg
// shape), else the generic fallback. The result is cached either way.
func (r *Registry) Resolve(entityType string) interface{} {
	if x, found := r.instances.Get(entityType); found {
		return x
	}

	var instance interface{}
	if reg, ok := r.entities.Get(entityType); ok && reg.Service != nil {
		switch ctor := reg.Service.(type) {
		case registry.EntityServiceFunc:
			instance = ctor(entityType)
		case registry.ServiceFunc:
			instance = ctor()
		default:
			r.log.Warn("resolver", "unsupported service constructor shape", map[string]interface{}{
				"entity_type": entityType,
			})
		}
	}
	if instance == nil {
		instance = r.fallback(entityType)
	}

	r.instances.Set(entityType, instance, cache.NoExpiration)
	return instance
}

// Clear drops all cached instances. Intended for tests.
func (r *Registry) Clear() {
	r.instances.Flush()
}

// SearchEntityData runs a search through the resolved service, degrading to
// an empty envelope rather than raising.
func (r *Registry) SearchEntityData(ctx context.Context, req SearchRequest) *SearchResult {
	svc := r.Resolve(req.EntityType)

	switch s := svc.(type) {
	case EntitySearcher:
		result, err := s.SearchEntityData(ctx, req)
		if err != nil {
			r.log.Error("resolver", "search failed", map[string]interface{}{
				"entity_type": req.EntityType, "error": err.Error(),
			})
			return &SearchResult{Items: []map[string]interface{}{}, Error: err.Error()}
		}
		if result == nil {
			return &SearchResult{Items: []map[string]interface{}{}}
		}
		if result.Items == nil {
			result.Items = []map[string]interface{}{}
		}
		return result
	case EntityLister:
		items, err := s.ListEntityData(ctx, req)
		if err != nil {
			return &SearchResult{Items: []map[string]interface{}{}, Error: err.Error()}
		}
		if items == nil {
			items = []map[string]interface{}{}
		}
		return &SearchResult{Items: items, Total: int64(len(items))}
	}

	// No search capability: a well-formed empty result, not an error.
	return &SearchResult{Items: []map[string]interface{}{}}
}

// GetItemData fetches one item through the resolved service, normalizing
// heterogeneous return shapes into the canonical envelope.
func (r *Registry) GetItemData(ctx context.Context, entityType string, tenantID, id uuid.UUID) *ItemResult {
	svc := r.Resolve(entityType)

	var item map[string]interface{}
	var err error
	switch g := svc.(type) {
	case ItemGetter:
		item, err = g.GetItemData(ctx, tenantID, id)
	case ItemViewer:
		item, err = g.GetItemDetails(ctx, tenantID, id)
	default:
		return &ItemResult{Found: false}
	}

	if err != nil {
		r.log.Error("resolver", "item fetch failed", map[string]interface{}{
			"entity_type": entityType, "error": err.Error(),
		})
		return &ItemResult{Found: false, Error: err.Error()}
	}
	if item == nil {
		return &ItemResult{Found: false}
	}
	return &ItemResult{Item: unwrap(item), Found: true}
}

// unwrap detects double-wrapped envelopes: a map holding nothing but one
// "item" or "data" key whose value is itself a map.
func unwrap(item map[string]interface{}) map[string]interface{} {
	if len(item) != 1 {
		return item
	}
	for _, key := range []string{"item", "data"} {
		if inner, ok := item[key]; ok {
			if m, ok := inner.(map[string]interface{}); ok {
				return m
			}
		}
	}
	return item
}
