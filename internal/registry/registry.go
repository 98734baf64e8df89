package registry

import (
	"fmt"
	"sort"
	"sync"

	"clinic-erp-be/internal/entityconfig"
	"clinic-erp-be/internal/record"
)

// EntityServiceFunc is a read-service constructor that wants to know which
// entity type it serves (one factory shared by several registrations).
type EntityServiceFunc func(entityType string) interface{}

// ServiceFunc is a read-service constructor with no arguments.
type ServiceFunc func() interface{}

// Registration is the static metadata declared once per entity type at
// bootstrap. After Freeze the table is read-only, so request-handling code
// can consult it without coordination.
type Registration struct {
	EntityType string
	Category   entityconfig.Category

	// ConfigBuilder materializes the entity's configuration on first use.
	ConfigBuilder entityconfig.Builder

	// Service optionally binds a read service: an EntityServiceFunc, a
	// ServiceFunc, or nil for the generic fallback.
	Service interface{}

	// ModelPrototype optionally binds the physical model for the generic
	// write path. Entities without one can only be written via overrides.
	ModelPrototype record.Model

	Enabled bool

	// CustomURLs lets an entity opt out of generic routing per operation.
	// Templates may carry an "{id}" placeholder.
	CustomURLs map[entityconfig.Operation]string

	// CascadeInvalidates lists entity types whose read caches are also
	// stale after a write to this one.
	CascadeInvalidates []string
}

// Registry is the process-wide entity metadata table.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Registration
	frozen  bool
}

func New() *Registry {
	return &Registry{entries: make(map[string]*Registration)}
}

// Register adds a registration. It fails on duplicates and panics once the
// registry is frozen, since mutation after bootstrap is a programming error.
func (r *Registry) Register(reg Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		panic("registry: Register called after Freeze")
	}
	if reg.EntityType == "" {
		return fmt.Errorf("registry: empty entity type")
	}
	if _, exists := r.entries[reg.EntityType]; exists {
		return fmt.Errorf("registry: entity type %q already registered", reg.EntityType)
	}
	stored := reg
	r.entries[reg.EntityType] = &stored
	return nil
}

// MustRegister is Register for bootstrap code, where a bad declaration
// should stop the process.
func (r *Registry) MustRegister(reg Registration) {
	if err := r.Register(reg); err != nil {
		panic(err)
	}
}

// Freeze closes the registry for writes.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Get returns the registration for entityType. Never errors; absence is a
// normal outcome the caller maps to its own taxonomy.
func (r *Registry) Get(entityType string) (*Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[entityType]
	return reg, ok
}

func (r *Registry) IsMasterEntity(entityType string) bool {
	reg, ok := r.Get(entityType)
	return ok && reg.Category == entityconfig.CategoryMaster
}

func (r *Registry) IsTransactionEntity(entityType string) bool {
	reg, ok := r.Get(entityType)
	return ok && reg.Category == entityconfig.CategoryTransaction
}

// CustomURL returns the declared URL template for (entityType, op), if any.
func (r *Registry) CustomURL(entityType string, op entityconfig.Operation) (string, bool) {
	reg, ok := r.Get(entityType)
	if !ok || reg.CustomURLs == nil {
		return "", false
	}
	url, ok := reg.CustomURLs[op]
	return url, ok
}

// ConfigBuilder implements entityconfig.BuilderSource.
func (r *Registry) ConfigBuilder(entityType string) (entityconfig.Builder, bool) {
	reg, ok := r.Get(entityType)
	if !ok || reg.ConfigBuilder == nil {
		return nil, false
	}
	return reg.ConfigBuilder, true
}

// CategoryOf implements entityconfig.BuilderSource.
func (r *Registry) CategoryOf(entityType string) (entityconfig.Category, bool) {
	reg, ok := r.Get(entityType)
	if !ok {
		return "", false
	}
	return reg.Category, true
}

// CascadeTargets lists the entity types invalidated alongside entityType.
func (r *Registry) CascadeTargets(entityType string) []string {
	reg, ok := r.Get(entityType)
	if !ok {
		return nil
	}
	return reg.CascadeInvalidates
}

// Types lists every registered entity type, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entries))
	for entityType := range r.entries {
		out = append(out, entityType)
	}
	sort.Strings(out)
	return out
}
