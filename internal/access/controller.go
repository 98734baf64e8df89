package access

import (
	"fmt"
	"strings"

	"clinic-erp-be/internal/entityconfig"
	"clinic-erp-be/internal/registry"
)

// NoOpURL is the sentinel returned for operations that are reachable
// nowhere: disallowed and without a custom route.
const NoOpURL = "#"

// Controller gates which operations are reachable per entity and builds
// canonical operation URIs for the rendering layer.
type Controller struct {
	entities *registry.Registry
	configs  *entityconfig.Loader
	basePath string
}

func NewController(entities *registry.Registry, configs *entityconfig.Loader, basePath string) *Controller {
	if basePath == "" {
		basePath = "/api/entity/v1"
	}
	return &Controller{
		entities: entities,
		configs:  configs,
		basePath: strings.TrimRight(basePath, "/"),
	}
}

// categoryBaseline is what a category permits before any configuration is
// consulted: MASTER full CRUD plus export, TRANSACTION read plus export,
// everything else read-only.
func categoryBaseline(cat entityconfig.Category) map[entityconfig.Operation]bool {
	switch cat {
	case entityconfig.CategoryMaster:
		return map[entityconfig.Operation]bool{
			entityconfig.OpCreate: true, entityconfig.OpUpdate: true,
			entityconfig.OpDelete: true, entityconfig.OpRestore: true,
			entityconfig.OpList: true, entityconfig.OpView: true,
			entityconfig.OpDocument: true, entityconfig.OpExport: true,
		}
	case entityconfig.CategoryTransaction:
		return map[entityconfig.Operation]bool{
			entityconfig.OpList: true, entityconfig.OpView: true,
			entityconfig.OpDocument: true, entityconfig.OpExport: true,
		}
	default:
		return map[entityconfig.Operation]bool{
			entityconfig.OpList: true, entityconfig.OpView: true,
		}
	}
}

// ValidateOperation reports whether op is reachable for entityType. Write
// operations on TRANSACTION entities are rejected categorically, regardless
// of what the configuration claims.
func (c *Controller) ValidateOperation(entityType string, op entityconfig.Operation) bool {
	reg, ok := c.entities.Get(entityType)
	if !ok || !reg.Enabled {
		return false
	}
	if reg.Category == entityconfig.CategoryTransaction && entityconfig.WriteOperations[op] {
		return false
	}
	cfg, ok := c.configs.Load(entityType)
	if !ok {
		return false
	}
	return cfg.OperationAllowed(op)
}

// OperationURL builds the URI the rendering layer should point at for
// (entityType, op). Disallowed operations fall back to a registry-declared
// custom route before degrading to the no-op sentinel.
func (c *Controller) OperationURL(entityType string, op entityconfig.Operation, itemID string) string {
	if !c.ValidateOperation(entityType, op) {
		if template, ok := c.entities.CustomURL(entityType, op); ok {
			return strings.ReplaceAll(template, "{id}", itemID)
		}
		return NoOpURL
	}

	base := fmt.Sprintf("%s/%s", c.basePath, entityType)
	var url string
	switch op {
	case entityconfig.OpList, entityconfig.OpCreate:
		url = base
	case entityconfig.OpView, entityconfig.OpUpdate, entityconfig.OpDelete:
		url = base + "/{id}"
	case entityconfig.OpRestore:
		url = base + "/{id}/restore"
	case entityconfig.OpDocument:
		url = base + "/{id}/document"
	case entityconfig.OpExport:
		url = base + "/export"
	default:
		return NoOpURL
	}
	if itemID != "" {
		url = strings.ReplaceAll(url, "{id}", itemID)
	}
	return url
}

// AvailableActions derives the operation map for one caller: the category
// baseline, narrowed by ValidateOperation, narrowed again by the caller's
// permission set when one is supplied.
func (c *Controller) AvailableActions(entityType string, permissions []string) map[entityconfig.Operation]bool {
	reg, ok := c.entities.Get(entityType)
	if !ok || !reg.Enabled {
		return map[entityconfig.Operation]bool{}
	}

	var permSet map[string]bool
	if permissions != nil {
		permSet = make(map[string]bool, len(permissions))
		for _, p := range permissions {
			permSet[p] = true
		}
	}

	cfg, _ := c.configs.Load(entityType)

	actions := make(map[entityconfig.Operation]bool)
	for op, allowed := range categoryBaseline(reg.Category) {
		if !allowed || !c.ValidateOperation(entityType, op) {
			continue
		}
		if permSet != nil && cfg != nil {
			if required, named := cfg.Permissions[op]; named && required != "" && !permSet[required] {
				continue
			}
		}
		actions[op] = true
	}
	return actions
}
