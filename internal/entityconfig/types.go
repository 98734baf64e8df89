package entityconfig

// Category classifies how an entity behaves in the engine. MASTER entities
// are fully CRUD-able reference data; TRANSACTION entities are append-mostly
// business events written only by their own flows; REPORT and LOOKUP are
// read-only.
type Category string

const (
	CategoryMaster      Category = "MASTER"
	CategoryTransaction Category = "TRANSACTION"
	CategoryReport      Category = "REPORT"
	CategoryLookup      Category = "LOOKUP"
)

// Operation is the set of verbs the routing layer may submit.
type Operation string

const (
	OpCreate   Operation = "CREATE"
	OpUpdate   Operation = "UPDATE"
	OpDelete   Operation = "DELETE"
	OpRestore  Operation = "RESTORE"
	OpList     Operation = "LIST"
	OpView     Operation = "VIEW"
	OpDocument Operation = "DOCUMENT"
	OpExport   Operation = "EXPORT"
)

// WriteOperations are the verbs gated off entirely for TRANSACTION entities.
var WriteOperations = map[Operation]bool{
	OpCreate:  true,
	OpUpdate:  true,
	OpDelete:  true,
	OpRestore: true,
}

// FieldType tags how a field is rendered, coerced and stored.
type FieldType string

const (
	FieldText              FieldType = "text"
	FieldNumber            FieldType = "number"
	FieldCurrency          FieldType = "currency"
	FieldDate              FieldType = "date"
	FieldBoolean           FieldType = "boolean"
	FieldReference         FieldType = "reference"
	FieldEntitySearch      FieldType = "entity_search"
	FieldVirtualJSON       FieldType = "virtual_json"
	FieldMultiMethodAmount FieldType = "multi_method_amount"
	FieldCustom            FieldType = "custom"
)

// FieldDefinition describes one logical field of an entity. Virtual fields
// have no dedicated physical column: they live as VirtualKey inside the
// JSONB container column named by VirtualTarget.
type FieldDefinition struct {
	Name  string
	Label string
	Type  FieldType

	// Display flags.
	ShowInList   bool
	ShowInCreate bool
	ShowInEdit   bool
	ShowInView   bool

	Required bool
	Readonly bool

	// Virtual container mapping. When Virtual is set and Target/Key are
	// empty, the static convention table supplies them.
	Virtual       bool
	VirtualTarget string
	VirtualKey    string

	// Filter metadata for the read path.
	Filterable   bool
	FilterColumn string
}

// ActionDefinition describes a row-level action exposed alongside an entity.
type ActionDefinition struct {
	ID              string
	Label           string
	Permission      string
	Route           string
	NeedsConfirm    bool
	ListOnly        bool
}

// EntityConfiguration is the complete declarative description of one entity
// type. Effectively immutable after the loader materializes it.
type EntityConfiguration struct {
	EntityType   string
	Category     Category
	DisplayName  string
	PluralName   string
	PrimaryKey   string
	Fields       []FieldDefinition
	Actions      []ActionDefinition
	DefaultSort  string

	// Per-operation permission names matched against the caller's set.
	Permissions map[Operation]string

	// CRUD enablement.
	CreateEnabled bool
	EditEnabled   bool
	DeleteEnabled bool
	SoftDelete    bool

	// AllowedOperations further narrows what the flags permit. Empty means
	// "no extra narrowing".
	AllowedOperations map[Operation]bool

	// Defaults applied to columns left unset by the payload on create.
	Defaults map[string]interface{}
}

// Field returns the definition with the given name, or nil.
func (c *EntityConfiguration) Field(name string) *FieldDefinition {
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			return &c.Fields[i]
		}
	}
	return nil
}

// OperationAllowed checks the allowed-operations set and the CRUD flags.
func (c *EntityConfiguration) OperationAllowed(op Operation) bool {
	if len(c.AllowedOperations) > 0 && !c.AllowedOperations[op] {
		return false
	}
	switch op {
	case OpCreate:
		return c.CreateEnabled
	case OpUpdate:
		return c.EditEnabled
	case OpDelete:
		return c.DeleteEnabled
	case OpRestore:
		return c.DeleteEnabled && c.SoftDelete
	}
	return true
}
