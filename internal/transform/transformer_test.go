package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"clinic-erp-be/internal/entityconfig"
	"clinic-erp-be/internal/model"
	"clinic-erp-be/internal/pkg/logger"
	"clinic-erp-be/internal/record"
)

func patientCfg() *entityconfig.EntityConfiguration {
	return &entityconfig.EntityConfiguration{
		EntityType: "patients",
		Fields: []entityconfig.FieldDefinition{
			{Name: "full_name", Type: entityconfig.FieldText},
			{Name: "phone", Type: entityconfig.FieldText, Virtual: true},
			{Name: "mobile", Type: entityconfig.FieldText, Virtual: true},
			{Name: "blood_group", Type: entityconfig.FieldText, Virtual: true},
			{Name: "vip", Type: entityconfig.FieldBoolean},
			{Name: "balance", Type: entityconfig.FieldCurrency},
			{Name: "nickname", Type: entityconfig.FieldText, Virtual: true,
				VirtualTarget: "contact_info", VirtualKey: "nick"},
		},
	}
}

func TestConvertFieldValue(t *testing.T) {
	tr := New(logger.Nop())

	tests := []struct {
		name  string
		value interface{}
		def   entityconfig.FieldDefinition
		want  interface{}
	}{
		{"boolean yes", "Yes", entityconfig.FieldDefinition{Type: entityconfig.FieldBoolean}, true},
		{"boolean on", "on", entityconfig.FieldDefinition{Type: entityconfig.FieldBoolean}, true},
		{"boolean t", "t", entityconfig.FieldDefinition{Type: entityconfig.FieldBoolean}, true},
		{"boolean native", true, entityconfig.FieldDefinition{Type: entityconfig.FieldBoolean}, true},
		{"boolean no", "no", entityconfig.FieldDefinition{Type: entityconfig.FieldBoolean}, false},
		{"boolean empty", "", entityconfig.FieldDefinition{Type: entityconfig.FieldBoolean}, false},
		{"currency formatted", "1,250.50", entityconfig.FieldDefinition{Type: entityconfig.FieldCurrency}, 1250.50},
		{"currency prefixed", "Rp 2.000", entityconfig.FieldDefinition{Type: entityconfig.FieldCurrency}, 2.0},
		{"number native", 42.0, entityconfig.FieldDefinition{Type: entityconfig.FieldNumber}, 42.0},
		{"number negative", "-7", entityconfig.FieldDefinition{Type: entityconfig.FieldNumber}, -7.0},
		{"number malformed", "1.2.3", entityconfig.FieldDefinition{Type: entityconfig.FieldNumber}, nil},
		{"number empty", "  ", entityconfig.FieldDefinition{Type: entityconfig.FieldNumber}, nil},
		{"text passthrough", "hello", entityconfig.FieldDefinition{Type: entityconfig.FieldText}, "hello"},
		{"text nil", nil, entityconfig.FieldDefinition{Type: entityconfig.FieldText}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tr.ConvertFieldValue(tt.value, &tt.def)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransformForCreate(t *testing.T) {
	tr := New(logger.Nop())
	cfg := patientCfg()

	out := tr.TransformForCreate(map[string]interface{}{
		"full_name": "Jane Roe",
		"phone":     "021-555",
		"mobile":    "0812-9",
		"vip":       "yes",
		"balance":   "1,000",
		"id":        "attacker-supplied",
		"tenant_id": "attacker-supplied",
		"unknown":   "kept",
	}, cfg)

	assert.Equal(t, "Jane Roe", out.Fields["full_name"])
	assert.Equal(t, true, out.Fields["vip"])
	assert.Equal(t, 1000.0, out.Fields["balance"])
	assert.Equal(t, "kept", out.Fields["unknown"])

	// system-managed keys never pass through
	_, hasID := out.Fields["id"]
	_, hasTenant := out.Fields["tenant_id"]
	assert.False(t, hasID)
	assert.False(t, hasTenant)

	require.Contains(t, out.Containers, "contact_info")
	assert.Equal(t, "021-555", out.Containers["contact_info"]["phone"])
	assert.Equal(t, "0812-9", out.Containers["contact_info"]["mobile"])
	_, touchedMedical := out.Containers["medical_info"]
	assert.False(t, touchedMedical)
}

func TestTransformForCreateEmptyVirtualOmitted(t *testing.T) {
	tr := New(logger.Nop())

	out := tr.TransformForCreate(map[string]interface{}{
		"phone":  "  ",
		"mobile": "0812",
	}, patientCfg())

	require.Contains(t, out.Containers, "contact_info")
	_, hasPhone := out.Containers["contact_info"]["phone"]
	assert.False(t, hasPhone)
	assert.Equal(t, "0812", out.Containers["contact_info"]["mobile"])
}

func TestTransformForUpdateMergesSiblings(t *testing.T) {
	tr := New(logger.Nop())
	existing := record.Wrap(&model.Patient{
		ContactInfo: datatypes.JSONMap{"phone": "old", "mobile": "0812-9"},
	})

	out := tr.TransformForUpdate(map[string]interface{}{
		"phone": "new",
	}, existing, patientCfg())

	require.Contains(t, out.Containers, "contact_info")
	assert.Equal(t, "new", out.Containers["contact_info"]["phone"])
	// untouched sibling keys survive the merge
	assert.Equal(t, "0812-9", out.Containers["contact_info"]["mobile"])

	// the record's own container must not be mutated in place
	assert.Equal(t, "old", existing.Model().(*model.Patient).ContactInfo["phone"])
}

func TestTransformForUpdateEmptyDeletesOwnKey(t *testing.T) {
	tr := New(logger.Nop())
	existing := record.Wrap(&model.Patient{
		ContactInfo: datatypes.JSONMap{"phone": "021", "mobile": "0812"},
	})

	out := tr.TransformForUpdate(map[string]interface{}{
		"phone": "",
	}, existing, patientCfg())

	require.Contains(t, out.Containers, "contact_info")
	_, hasPhone := out.Containers["contact_info"]["phone"]
	assert.False(t, hasPhone)
	assert.Equal(t, "0812", out.Containers["contact_info"]["mobile"])
}

func TestTransformForUpdateLastKeyDeletedYieldsNullContainer(t *testing.T) {
	tr := New(logger.Nop())
	existing := record.Wrap(&model.Patient{
		ContactInfo: datatypes.JSONMap{"phone": "021"},
	})

	out := tr.TransformForUpdate(map[string]interface{}{
		"phone": "",
	}, existing, patientCfg())

	// container present but nil means "write an explicit null"
	require.Contains(t, out.Containers, "contact_info")
	assert.Nil(t, out.Containers["contact_info"])
}

func TestTransformForUpdateIdempotent(t *testing.T) {
	tr := New(logger.Nop())
	cfg := patientCfg()
	payload := map[string]interface{}{"phone": "new", "mobile": ""}

	existing := record.Wrap(&model.Patient{
		ContactInfo: datatypes.JSONMap{"phone": "old", "mobile": "gone", "fax": "f"},
	})
	first := tr.TransformForUpdate(payload, existing, cfg)

	applied := record.Wrap(&model.Patient{ContactInfo: first.Containers["contact_info"]})
	second := tr.TransformForUpdate(payload, applied, cfg)

	assert.Equal(t, first.Containers["contact_info"], second.Containers["contact_info"])
}

func TestTransformCorruptContainerTreatedAsEmpty(t *testing.T) {
	tr := New(logger.Nop())
	// a nil container column reads as an empty seed
	existing := record.Wrap(&model.Patient{ContactInfo: nil})

	out := tr.TransformForUpdate(map[string]interface{}{
		"phone": "021",
	}, existing, patientCfg())

	require.Contains(t, out.Containers, "contact_info")
	assert.Equal(t, datatypes.JSONMap{"phone": "021"}, out.Containers["contact_info"])
}

func TestResolveVirtual(t *testing.T) {
	// explicit mapping wins over convention
	target, key, ok := ResolveVirtual(&entityconfig.FieldDefinition{
		Name: "phone", Virtual: true, VirtualTarget: "other_box", VirtualKey: "p",
	})
	require.True(t, ok)
	assert.Equal(t, "other_box", target)
	assert.Equal(t, "p", key)

	// explicit target without key falls back to the field name
	target, key, ok = ResolveVirtual(&entityconfig.FieldDefinition{
		Name: "nickname", Virtual: true, VirtualTarget: "contact_info",
	})
	require.True(t, ok)
	assert.Equal(t, "contact_info", target)
	assert.Equal(t, "nickname", key)

	// convention table
	target, key, ok = ResolveVirtual(&entityconfig.FieldDefinition{Name: "blood_group", Virtual: true})
	require.True(t, ok)
	assert.Equal(t, "medical_info", target)
	assert.Equal(t, "blood_group", key)

	// unmapped virtual field resolves to nothing
	_, _, ok = ResolveVirtual(&entityconfig.FieldDefinition{Name: "mystery", Virtual: true})
	assert.False(t, ok)
}

func TestExtractVirtualFieldsForDisplay(t *testing.T) {
	tr := New(logger.Nop())
	rec := record.Wrap(&model.Patient{
		ContactInfo: datatypes.JSONMap{"phone": "021", "nick": "JJ"},
		MedicalInfo: datatypes.JSONMap{"blood_group": "O+"},
	})

	out := tr.ExtractVirtualFieldsForDisplay(rec, patientCfg())

	assert.Equal(t, "021", out["phone"])
	assert.Equal(t, "O+", out["blood_group"])
	assert.Equal(t, "JJ", out["nickname"])
	_, hasMobile := out["mobile"]
	assert.False(t, hasMobile)
}
