package entityconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-erp-be/internal/pkg/logger"
)

type fakeSource struct {
	builders   map[string]Builder
	categories map[string]Category
	calls      map[string]int
}

func (f *fakeSource) ConfigBuilder(entityType string) (Builder, bool) {
	b, ok := f.builders[entityType]
	if !ok {
		return nil, false
	}
	inner := b
	return func() *EntityConfiguration {
		f.calls[entityType]++
		return inner()
	}, true
}

func (f *fakeSource) CategoryOf(entityType string) (Category, bool) {
	c, ok := f.categories[entityType]
	return c, ok
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		builders:   map[string]Builder{},
		categories: map[string]Category{},
		calls:      map[string]int{},
	}
}

func TestLoaderReturnsIdenticalPointer(t *testing.T) {
	src := newFakeSource()
	src.builders["suppliers"] = func() *EntityConfiguration {
		return &EntityConfiguration{EntityType: "suppliers", DisplayName: "Supplier"}
	}
	loader := NewLoader(src, logger.Nop())

	first, ok := loader.Load("suppliers")
	require.True(t, ok)
	second, ok := loader.Load("suppliers")
	require.True(t, ok)

	assert.Same(t, first, second)
	assert.Equal(t, 1, src.calls["suppliers"])

	hits, misses := loader.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLoaderInjectsIdentityAndCategory(t *testing.T) {
	src := newFakeSource()
	src.builders["patients"] = func() *EntityConfiguration {
		return &EntityConfiguration{DisplayName: "Patient"}
	}
	src.categories["patients"] = CategoryMaster

	loader := NewLoader(src, logger.Nop())
	cfg, ok := loader.Load("patients")
	require.True(t, ok)

	assert.Equal(t, "patients", cfg.EntityType)
	assert.Equal(t, CategoryMaster, cfg.Category)
}

func TestLoaderUnresolvable(t *testing.T) {
	src := newFakeSource()
	src.builders["broken"] = func() *EntityConfiguration { return nil }
	loader := NewLoader(src, logger.Nop())

	cfg, ok := loader.Load("missing")
	assert.False(t, ok)
	assert.Nil(t, cfg)

	cfg, ok = loader.Load("broken")
	assert.False(t, ok)
	assert.Nil(t, cfg)

	// a nil result is never cached: the builder runs again next time
	loader.Load("broken")
	assert.Equal(t, 2, src.calls["broken"])
}

func TestLoaderReset(t *testing.T) {
	src := newFakeSource()
	src.builders["suppliers"] = func() *EntityConfiguration {
		return &EntityConfiguration{EntityType: "suppliers"}
	}
	loader := NewLoader(src, logger.Nop())

	loader.Load("suppliers")
	loader.Reset()
	loader.Load("suppliers")

	assert.Equal(t, 2, src.calls["suppliers"])
}

func TestOperationAllowed(t *testing.T) {
	cfg := &EntityConfiguration{
		CreateEnabled: true,
		EditEnabled:   true,
		DeleteEnabled: true,
		SoftDelete:    false,
	}
	assert.True(t, cfg.OperationAllowed(OpCreate))
	assert.True(t, cfg.OperationAllowed(OpUpdate))
	assert.True(t, cfg.OperationAllowed(OpDelete))
	// restore needs soft delete
	assert.False(t, cfg.OperationAllowed(OpRestore))
	assert.True(t, cfg.OperationAllowed(OpList))

	cfg.SoftDelete = true
	assert.True(t, cfg.OperationAllowed(OpRestore))

	// the allowed-operations set narrows further
	cfg.AllowedOperations = map[Operation]bool{OpCreate: true, OpList: true}
	assert.True(t, cfg.OperationAllowed(OpCreate))
	assert.False(t, cfg.OperationAllowed(OpUpdate))
	assert.False(t, cfg.OperationAllowed(OpView))
}
