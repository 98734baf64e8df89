package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clinic-erp-be/internal/entityconfig"
)

func sortTestConfig() *entityconfig.EntityConfiguration {
	return &entityconfig.EntityConfiguration{
		EntityType:  "suppliers",
		DefaultSort: "created_at DESC",
		Fields: []entityconfig.FieldDefinition{
			{Name: "name", Filterable: true},
			{Name: "status", FilterColumn: "status_code"},
			{Name: "phone", Virtual: true, VirtualTarget: "contact_info", VirtualKey: "phone"},
		},
	}
}

func TestSortClauseWhitelistsConfiguredFields(t *testing.T) {
	cfg := sortTestConfig()

	assert.Equal(t, "name", sortClause("name", cfg))
	assert.Equal(t, "name ASC", sortClause("name asc", cfg))
	assert.Equal(t, "name DESC", sortClause("name DESC", cfg))

	// FilterColumn overrides the physical column
	assert.Equal(t, "status_code DESC", sortClause("status desc", cfg))
}

func TestSortClauseRejectsUnsafeInput(t *testing.T) {
	cfg := sortTestConfig()

	// raw SQL in the sort parameter must never reach ORDER BY
	assert.Equal(t, "created_at DESC", sortClause("name; DROP TABLE suppliers--", cfg))
	assert.Equal(t, "created_at DESC", sortClause("(SELECT pg_sleep(5))", cfg))
	assert.Equal(t, "created_at DESC", sortClause("name DESC, id", cfg))

	// unknown field, bad direction, virtual field
	assert.Equal(t, "created_at DESC", sortClause("password", cfg))
	assert.Equal(t, "created_at DESC", sortClause("name sideways", cfg))
	assert.Equal(t, "created_at DESC", sortClause("phone", cfg))

	// empty falls back to the configured default
	assert.Equal(t, "created_at DESC", sortClause("", cfg))
}
