package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"clinic-erp-be/internal/access"
	"clinic-erp-be/internal/crud"
	"clinic-erp-be/internal/entityconfig"
	"clinic-erp-be/internal/pkg/apperrors"
	"clinic-erp-be/internal/pkg/serverutils"
	"clinic-erp-be/internal/resolver"
)

// IEntityController is the single HTTP surface for every registered entity:
// one set of generic routes, dispatched by the :entity_type parameter.
type IEntityController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	View(ctx *fiber.Ctx) error
	Actions(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Restore(ctx *fiber.Ctx) error
	Document(ctx *fiber.Ctx) error
}

type entityController struct {
	orchestrator *crud.Orchestrator
	readRegistry *resolver.Registry
	scope        *access.Controller
}

func NewEntityController(orchestrator *crud.Orchestrator, readRegistry *resolver.Registry, scope *access.Controller) IEntityController {
	return &entityController{
		orchestrator: orchestrator,
		readRegistry: readRegistry,
		scope:        scope,
	}
}

func (c *entityController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/entity/v1")
	h.Use(serverutils.ClaimsMiddleware)
	h.Get(":entity_type", c.List)
	h.Post(":entity_type", c.Create)
	h.Get(":entity_type/actions", c.Actions)
	h.Get(":entity_type/:id", c.View)
	h.Put(":entity_type/:id", c.Update)
	h.Delete(":entity_type/:id", c.Delete)
	h.Post(":entity_type/:id/restore", c.Restore)
	h.Get(":entity_type/:id/document", c.Document)
}

func requestContext(ctx *fiber.Ctx) crud.RequestContext {
	rc := crud.RequestContext{}
	if s, ok := ctx.Locals("tenant_id").(string); ok {
		rc.TenantID, _ = uuid.Parse(s)
	}
	if s, ok := ctx.Locals("user_id").(string); ok {
		rc.CallerID, _ = uuid.Parse(s)
	}
	if s, ok := ctx.Locals("branch_id").(string); ok {
		if id, err := uuid.Parse(s); err == nil {
			rc.BranchID = &id
		}
	}
	if perms, ok := ctx.Locals("permissions").([]string); ok {
		rc.Permissions = perms
	}
	return rc
}

func (c *entityController) List(ctx *fiber.Ctx) error {
	entityType := ctx.Params("entity_type")
	if !c.scope.ValidateOperation(entityType, entityconfig.OpList) {
		return &apperrors.ValidationError{EntityType: entityType, Reason: "list is not available"}
	}
	rc := requestContext(ctx)

	filters := make(map[string]interface{})
	for key, values := range ctx.Queries() {
		switch key {
		case "limit", "offset", "sort":
		default:
			filters[key] = values
		}
	}

	result := c.readRegistry.SearchEntityData(ctx.Context(), resolver.SearchRequest{
		EntityType: entityType,
		TenantID:   rc.TenantID,
		Filters:    filters,
		Limit:      ctx.QueryInt("limit", 50),
		Offset:     ctx.QueryInt("offset", 0),
		Sort:       ctx.Query("sort"),
	})
	return ctx.JSON(serverutils.SuccessResponse("Success list "+entityType, result))
}

func (c *entityController) View(ctx *fiber.Ctx) error {
	entityType := ctx.Params("entity_type")
	if !c.scope.ValidateOperation(entityType, entityconfig.OpView) {
		return &apperrors.ValidationError{EntityType: entityType, Reason: "view is not available"}
	}
	rc := requestContext(ctx)
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return &apperrors.ValidationError{EntityType: entityType, Reason: "invalid item id"}
	}

	result := c.readRegistry.GetItemData(ctx.Context(), entityType, rc.TenantID, id)
	if !result.Found {
		return &apperrors.NotFoundError{EntityType: entityType, ID: id.String()}
	}
	return ctx.JSON(serverutils.SuccessResponse("Success view "+entityType, result))
}

func (c *entityController) Actions(ctx *fiber.Ctx) error {
	entityType := ctx.Params("entity_type")
	rc := requestContext(ctx)
	actions := c.scope.AvailableActions(entityType, rc.Permissions)

	urls := make(map[string]string, len(actions))
	for op := range actions {
		urls[string(op)] = c.scope.OperationURL(entityType, op, "")
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get actions", fiber.Map{
		"actions": actions,
		"urls":    urls,
	}))
}

func (c *entityController) Create(ctx *fiber.Ctx) error {
	entityType := ctx.Params("entity_type")
	var payload map[string]interface{}
	if err := ctx.BodyParser(&payload); err != nil {
		return &apperrors.ValidationError{EntityType: entityType, Reason: "invalid payload"}
	}

	id, err := c.orchestrator.Create(ctx.Context(), crud.WriteRequest{
		EntityType: entityType,
		Payload:    payload,
		Context:    requestContext(ctx),
	})
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create "+entityType, fiber.Map{"id": id}))
}

func (c *entityController) Update(ctx *fiber.Ctx) error {
	entityType := ctx.Params("entity_type")
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return &apperrors.ValidationError{EntityType: entityType, Reason: "invalid item id"}
	}
	var payload map[string]interface{}
	if err := ctx.BodyParser(&payload); err != nil {
		return &apperrors.ValidationError{EntityType: entityType, Reason: "invalid payload"}
	}

	if err := c.orchestrator.Update(ctx.Context(), crud.WriteRequest{
		EntityType: entityType,
		ItemID:     id,
		Payload:    payload,
		Context:    requestContext(ctx),
	}); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update "+entityType, fiber.Map{"id": id}))
}

func (c *entityController) Delete(ctx *fiber.Ctx) error {
	entityType := ctx.Params("entity_type")
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return &apperrors.ValidationError{EntityType: entityType, Reason: "invalid item id"}
	}

	if err := c.orchestrator.Delete(ctx.Context(), crud.WriteRequest{
		EntityType: entityType,
		ItemID:     id,
		Context:    requestContext(ctx),
	}); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete "+entityType, fiber.Map{"id": id}))
}

func (c *entityController) Restore(ctx *fiber.Ctx) error {
	entityType := ctx.Params("entity_type")
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return &apperrors.ValidationError{EntityType: entityType, Reason: "invalid item id"}
	}

	if err := c.orchestrator.Restore(ctx.Context(), crud.WriteRequest{
		EntityType: entityType,
		ItemID:     id,
		Context:    requestContext(ctx),
	}); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success restore "+entityType, fiber.Map{"id": id}))
}

// Document returns the URI the rendering layer serves this entity's
// printable document from. Rendering itself is outside this service.
func (c *entityController) Document(ctx *fiber.Ctx) error {
	entityType := ctx.Params("entity_type")
	url := c.scope.OperationURL(entityType, entityconfig.OpDocument, ctx.Params("id"))
	if url == access.NoOpURL {
		return &apperrors.ValidationError{EntityType: entityType, Reason: "document is not available"}
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get document url", fiber.Map{"url": url}))
}
