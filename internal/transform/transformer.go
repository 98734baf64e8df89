package transform

import (
	"encoding/json"
	"strconv"
	"strings"

	"gorm.io/datatypes"

	"clinic-erp-be/internal/entityconfig"
	"clinic-erp-be/internal/pkg/logger"
	"clinic-erp-be/internal/record"
)

// Output is what a transformation emits: converted physical fields plus the
// merged JSONB containers. A container present with a nil value must be
// written as an explicit null, distinguishing "no data" from "not touched".
type Output struct {
	Fields     map[string]interface{}
	Containers map[string]datatypes.JSONMap
}

// systemManagedKeys never pass through from a raw payload; the orchestrator
// owns them.
var systemManagedKeys = map[string]bool{
	"id":         true,
	"tenant_id":  true,
	"branch_id":  true,
	"created_at": true,
	"updated_at": true,
	"created_by": true,
	"updated_by": true,
	"deleted_at": true,
	"deleted_by": true,
	"csrf_token": true,
}

// conventionalContainers is the static fallback mapping for virtual fields
// declared without an explicit (target, key) pair. Legacy configurations
// relied on name-pattern guessing; this table makes the convention explicit
// and exhaustively testable.
var conventionalContainers = map[string]struct{ Target, Key string }{
	"phone":              {"contact_info", "phone"},
	"mobile":             {"contact_info", "mobile"},
	"fax":                {"contact_info", "fax"},
	"email":              {"contact_info", "email"},
	"website":            {"contact_info", "website"},
	"address_line1":      {"contact_info", "address_line1"},
	"address_line2":      {"contact_info", "address_line2"},
	"city":               {"contact_info", "city"},
	"postal_code":        {"contact_info", "postal_code"},
	"blood_group":        {"medical_info", "blood_group"},
	"allergies":          {"medical_info", "allergies"},
	"chronic_conditions": {"medical_info", "chronic_conditions"},
	"emergency_contact":  {"medical_info", "emergency_contact"},
	"bank_name":          {"bank_info", "bank_name"},
	"account_number":     {"bank_info", "account_number"},
	"account_holder":     {"bank_info", "account_holder"},
	"iban":               {"bank_info", "iban"},
	"swift_code":         {"bank_info", "swift_code"},
}

var truthyStrings = map[string]bool{
	"1": true, "true": true, "yes": true, "on": true, "y": true, "t": true,
}

// Transformer reconciles flat submitted fields against a configuration whose
// virtual fields are multiplexed into JSONB container columns. It never
// returns an error: malformed input degrades to null and is logged, since
// the engine must stay resilient across many legacy-shaped entities.
type Transformer struct {
	log logger.ILogger
}

func New(log logger.ILogger) *Transformer {
	return &Transformer{log: log}
}

// ConvertFieldValue coerces one submitted value according to its definition.
func (t *Transformer) ConvertFieldValue(value interface{}, def *entityconfig.FieldDefinition) interface{} {
	switch def.Type {
	case entityconfig.FieldBoolean:
		return truthyStrings[strings.ToLower(strings.TrimSpace(asString(value)))]

	case entityconfig.FieldNumber, entityconfig.FieldCurrency, entityconfig.FieldMultiMethodAmount:
		s := stripNumeric(asString(value))
		if s == "" {
			return nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			t.log.Warn("transform", "malformed numeric value", map[string]interface{}{
				"field": def.Name, "value": value,
			})
			return nil
		}
		return n

	default:
		if value == nil {
			return nil
		}
		return value
	}
}

// TransformForCreate maps a flat payload onto physical fields and fresh
// container values. Unknown fields pass through untouched (minus
// system-managed keys); empty virtual values are simply omitted.
func (t *Transformer) TransformForCreate(payload map[string]interface{}, cfg *entityconfig.EntityConfiguration) *Output {
	return t.transform(payload, nil, cfg)
}

// TransformForUpdate is TransformForCreate with merge-patch semantics: each
// touched container is seeded with a deep copy of the record's existing
// value, so an update never erases sibling keys. A submitted empty virtual
// value deletes exactly its own key.
func (t *Transformer) TransformForUpdate(payload map[string]interface{}, existing *record.Record, cfg *entityconfig.EntityConfiguration) *Output {
	return t.transform(payload, existing, cfg)
}

func (t *Transformer) transform(payload map[string]interface{}, existing *record.Record, cfg *entityconfig.EntityConfiguration) *Output {
	out := &Output{
		Fields:     make(map[string]interface{}),
		Containers: make(map[string]datatypes.JSONMap),
	}
	acc := make(map[string]map[string]interface{})

	seed := func(target string) map[string]interface{} {
		if m, ok := acc[target]; ok {
			return m
		}
		m := make(map[string]interface{})
		if existing != nil {
			for k, v := range t.containerValue(existing, target) {
				m[k] = v
			}
		}
		acc[target] = m
		return m
	}

	for name, value := range payload {
		def := cfg.Field(name)
		if def == nil {
			if !systemManagedKeys[name] {
				out.Fields[name] = value
			}
			continue
		}

		if !def.Virtual {
			out.Fields[name] = t.ConvertFieldValue(value, def)
			continue
		}

		target, key, ok := ResolveVirtual(def)
		if !ok {
			t.log.Warn("transform", "virtual field without container mapping", map[string]interface{}{
				"field": def.Name, "entity_type": cfg.EntityType,
			})
			continue
		}

		container := seed(target)
		if isEmpty(value) {
			delete(container, key)
			continue
		}
		converted := t.ConvertFieldValue(value, def)
		if converted == nil {
			delete(container, key)
			continue
		}
		container[key] = converted
	}

	for target, m := range acc {
		if len(m) == 0 {
			out.Containers[target] = nil
			continue
		}
		out.Containers[target] = datatypes.JSONMap(m)
	}
	return out
}

// ExtractVirtualFieldsForDisplay performs the inverse extraction, flattening
// container keys back into logical fields for re-populating edit surfaces.
func (t *Transformer) ExtractVirtualFieldsForDisplay(rec *record.Record, cfg *entityconfig.EntityConfiguration) map[string]interface{} {
	out := make(map[string]interface{})
	for i := range cfg.Fields {
		def := &cfg.Fields[i]
		if !def.Virtual {
			continue
		}
		target, key, ok := ResolveVirtual(def)
		if !ok {
			continue
		}
		if v, found := t.containerValue(rec, target)[key]; found {
			out[def.Name] = v
		}
	}
	return out
}

// ResolveVirtual resolves the (container, key) pair for a virtual field:
// explicit mapping first, then the convention table.
func ResolveVirtual(def *entityconfig.FieldDefinition) (target, key string, ok bool) {
	if def.VirtualTarget != "" {
		key = def.VirtualKey
		if key == "" {
			key = def.Name
		}
		return def.VirtualTarget, key, true
	}
	if conv, found := conventionalContainers[def.Name]; found {
		return conv.Target, conv.Key, true
	}
	return "", "", false
}

// containerValue reads a container column off a record as a plain map.
// Missing, null and corrupt values all come back as an empty map.
func (t *Transformer) containerValue(rec *record.Record, target string) map[string]interface{} {
	raw, ok := rec.Get(target)
	if !ok || raw == nil {
		return map[string]interface{}{}
	}
	switch v := raw.(type) {
	case datatypes.JSONMap:
		return deepCopy(v)
	case map[string]interface{}:
		return deepCopy(v)
	case datatypes.JSON:
		var m map[string]interface{}
		if err := json.Unmarshal(v, &m); err != nil || m == nil {
			return map[string]interface{}{}
		}
		return m
	case []byte:
		var m map[string]interface{}
		if err := json.Unmarshal(v, &m); err != nil || m == nil {
			return map[string]interface{}{}
		}
		return m
	default:
		t.log.Warn("transform", "container column has unexpected shape", map[string]interface{}{
			"target": target,
		})
		return map[string]interface{}{}
	}
}

func deepCopy(m map[string]interface{}) map[string]interface{} {
	raw, err := json.Marshal(m)
	if err != nil {
		return map[string]interface{}{}
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return map[string]interface{}{}
	}
	return out
}

func isEmpty(value interface{}) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func asString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return strings.Trim(string(raw), `"`)
	}
}

func stripNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
