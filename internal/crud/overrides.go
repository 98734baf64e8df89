package crud

import (
	"context"
	"sync"

	"github.com/go-openapi/inflect"
	"github.com/google/uuid"

	"clinic-erp-be/internal/record"
)

// OverrideArgs is the standardized argument set handed to every entity
// override: tenant and caller ids, the item id for update/delete/restore,
// and the payload keyed by the singularized entity type ("supplier_data").
type OverrideArgs struct {
	TenantID   uuid.UUID
	CallerID   uuid.UUID
	BranchID   *uuid.UUID
	ItemID     uuid.UUID
	PayloadKey string
	Payload    map[string]interface{}
}

// The legacy engine probed service modules for functions named
// "create_<singular>" and so on. Here each verb is an explicit capability
// interface; an entity service implements the ones it overrides and is
// registered in the typed table at bootstrap.

type Creator interface {
	CreateEntity(ctx context.Context, args OverrideArgs) (uuid.UUID, error)
}

type Updater interface {
	UpdateEntity(ctx context.Context, args OverrideArgs) error
}

type Deleter interface {
	DeleteEntity(ctx context.Context, args OverrideArgs) error
}

type Restorer interface {
	RestoreEntity(ctx context.Context, args OverrideArgs) error
}

// SoftDeleter lets an entity supply its own soft-delete behavior inside the
// generic delete path, instead of the manual marker stamping.
type SoftDeleter interface {
	SoftDeleteEntity(ctx context.Context, rec *record.Record, args OverrideArgs) error
}

// RestoreEligibility is consulted before a generic restore. A false result
// is a business-rule rejection carrying the reason, not a generic error.
type RestoreEligibility interface {
	CanRestore(ctx context.Context, rec *record.Record, args OverrideArgs) (bool, string)
}

// OverrideTable resolves entity services to their capabilities. The lookup
// per (entity_type, verb) is cached, so repeated operations pay no repeated
// type assertions.
type OverrideTable struct {
	mu       sync.RWMutex
	services map[string]interface{}
	lookup   sync.Map // "entity|verb" -> capability (or nil)
}

func NewOverrideTable() *OverrideTable {
	return &OverrideTable{services: make(map[string]interface{})}
}

// Register binds an override service to an entity type. Bootstrap-only.
func (t *OverrideTable) Register(entityType string, svc interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.services[entityType] = svc
}

func (t *OverrideTable) service(entityType string) interface{} {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.services[entityType]
}

func (t *OverrideTable) capability(entityType, verb string, probe func(interface{}) interface{}) interface{} {
	key := entityType + "|" + verb
	if cached, ok := t.lookup.Load(key); ok {
		return cached
	}
	var cap interface{}
	if svc := t.service(entityType); svc != nil {
		cap = probe(svc)
	}
	t.lookup.Store(key, cap)
	return cap
}

func (t *OverrideTable) creator(entityType string) (Creator, bool) {
	cap := t.capability(entityType, "create", func(svc interface{}) interface{} {
		if c, ok := svc.(Creator); ok {
			return c
		}
		return nil
	})
	c, ok := cap.(Creator)
	return c, ok && c != nil
}

func (t *OverrideTable) updater(entityType string) (Updater, bool) {
	cap := t.capability(entityType, "update", func(svc interface{}) interface{} {
		if u, ok := svc.(Updater); ok {
			return u
		}
		return nil
	})
	u, ok := cap.(Updater)
	return u, ok && u != nil
}

func (t *OverrideTable) deleter(entityType string) (Deleter, bool) {
	cap := t.capability(entityType, "delete", func(svc interface{}) interface{} {
		if d, ok := svc.(Deleter); ok {
			return d
		}
		return nil
	})
	d, ok := cap.(Deleter)
	return d, ok && d != nil
}

func (t *OverrideTable) restorer(entityType string) (Restorer, bool) {
	cap := t.capability(entityType, "restore", func(svc interface{}) interface{} {
		if r, ok := svc.(Restorer); ok {
			return r
		}
		return nil
	})
	r, ok := cap.(Restorer)
	return r, ok && r != nil
}

func (t *OverrideTable) softDeleter(entityType string) (SoftDeleter, bool) {
	cap := t.capability(entityType, "soft_delete", func(svc interface{}) interface{} {
		if s, ok := svc.(SoftDeleter); ok {
			return s
		}
		return nil
	})
	s, ok := cap.(SoftDeleter)
	return s, ok && s != nil
}

func (t *OverrideTable) restoreEligibility(entityType string) (RestoreEligibility, bool) {
	cap := t.capability(entityType, "restore_eligibility", func(svc interface{}) interface{} {
		if e, ok := svc.(RestoreEligibility); ok {
			return e
		}
		return nil
	})
	e, ok := cap.(RestoreEligibility)
	return e, ok && e != nil
}

// PayloadKey derives the override payload key from the entity type:
// "suppliers" becomes "supplier_data".
func PayloadKey(entityType string) string {
	return inflect.Singularize(entityType) + "_data"
}
