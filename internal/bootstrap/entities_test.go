package bootstrap

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-erp-be/internal/crud"
	"clinic-erp-be/internal/entityconfig"
	"clinic-erp-be/internal/pkg/logger"
	"clinic-erp-be/internal/record"
	"clinic-erp-be/internal/registry"
	"clinic-erp-be/internal/transform"
)

func registeredFleet(t *testing.T) (*registry.Registry, *entityconfig.Loader) {
	t.Helper()
	entities := registry.New()
	registerEntities(entities, crud.NewOverrideTable(), nil, nil)
	return entities, entityconfig.NewLoader(entities, logger.Nop())
}

// Every virtual field in every shipped configuration must resolve to a
// (container, key) pair; an unresolvable one silently drops submitted data.
func TestEveryRegisteredVirtualFieldResolves(t *testing.T) {
	entities, configs := registeredFleet(t)

	for _, entityType := range entities.Types() {
		cfg, ok := configs.Load(entityType)
		require.True(t, ok, "config for %s must load", entityType)

		for i := range cfg.Fields {
			def := &cfg.Fields[i]
			if !def.Virtual {
				continue
			}
			target, key, resolved := transform.ResolveVirtual(def)
			assert.True(t, resolved, "%s.%s has no container mapping", entityType, def.Name)
			assert.NotEmpty(t, target, "%s.%s resolved to an empty container", entityType, def.Name)
			assert.NotEmpty(t, key, "%s.%s resolved to an empty key", entityType, def.Name)
		}
	}
}

func TestSupplierVirtualFieldsSurviveTransform(t *testing.T) {
	_, configs := registeredFleet(t)
	cfg, ok := configs.Load("suppliers")
	require.True(t, ok)

	tr := transform.New(logger.Nop())
	out := tr.TransformForCreate(map[string]interface{}{
		"phone":               "021-1",
		"address":             "12 Clinic Road",
		"bank_account_number": "0099-1122",
	}, cfg)

	require.Contains(t, out.Containers, "contact_info")
	assert.Equal(t, "021-1", out.Containers["contact_info"]["phone"])
	assert.Equal(t, "12 Clinic Road", out.Containers["contact_info"]["address"])
	require.Contains(t, out.Containers, "bank_info")
	assert.Equal(t, "0099-1122", out.Containers["bank_info"]["account_number"])
}

func TestPatientAddressSurvivesTransform(t *testing.T) {
	_, configs := registeredFleet(t)
	cfg, ok := configs.Load("patients")
	require.True(t, ok)

	tr := transform.New(logger.Nop())
	out := tr.TransformForCreate(map[string]interface{}{
		"address": "7 Harbor Lane",
	}, cfg)

	require.Contains(t, out.Containers, "contact_info")
	assert.Equal(t, "7 Harbor Lane", out.Containers["contact_info"]["address"])
}

// Sortable and filterable columns named by the configurations must exist as
// physical columns wherever a model prototype is bound.
func TestFilterColumnsExistOnModels(t *testing.T) {
	entities, configs := registeredFleet(t)

	for _, entityType := range entities.Types() {
		reg, found := entities.Get(entityType)
		require.True(t, found)
		if reg.ModelPrototype == nil {
			continue
		}
		cfg, ok := configs.Load(entityType)
		require.True(t, ok)

		rec := record.New(reg.ModelPrototype)
		for i := range cfg.Fields {
			def := &cfg.Fields[i]
			if !def.Filterable || def.Virtual {
				continue
			}
			column := def.FilterColumn
			if column == "" {
				column = def.Name
			}
			assert.True(t, rec.Has(column),
				fmt.Sprintf("%s filter column %q missing on model", entityType, column))
		}
	}
}
